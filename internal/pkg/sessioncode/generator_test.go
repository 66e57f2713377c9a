package sessioncode

import (
	"strings"
	"testing"
)

func TestGenerateFormat(t *testing.T) {
	gen := NewGenerator(6)
	for i := 0; i < 200; i++ {
		code, err := gen.Generate()
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("Generate() length = %d, want 6 (code %q)", len(code), code)
		}
		for _, r := range code {
			if !strings.ContainsRune(Alphabet, r) {
				t.Fatalf("Generate() = %q, character %q outside [A-Z0-9]", code, r)
			}
		}
	}
}

func TestGenerateLengthFallback(t *testing.T) {
	tests := []struct {
		name   string
		length int
		want   int
	}{
		{"zero falls back to default", 0, DefaultLength},
		{"negative falls back to default", -3, DefaultLength},
		{"custom length honored", 8, 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := NewGenerator(tt.length)
			code, err := gen.Generate()
			if err != nil {
				t.Fatalf("Generate() error = %v", err)
			}
			if len(code) != tt.want {
				t.Errorf("Generate() length = %d, want %d", len(code), tt.want)
			}
		})
	}
}

func TestGenerateDispersion(t *testing.T) {
	// Not a randomness proof, just a sanity check that consecutive codes
	// are not constant.
	gen := NewGenerator(6)
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code, err := gen.Generate()
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		seen[code] = true
	}
	if len(seen) < 45 {
		t.Errorf("only %d distinct codes in 50 draws", len(seen))
	}
}
