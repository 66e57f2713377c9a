package qrpayload

import (
	"errors"
	"testing"
)

func TestEncode(t *testing.T) {
	got := Encode(12, 7, "AB12CD")
	want := "session:12;subject:7;code:AB12CD"
	if got != want {
		t.Errorf("Encode() = %q, want %q", got, want)
	}
}

func TestDecodeRoundTrip(t *testing.T) {
	tests := []struct {
		sessionID int64
		subjectID int64
		code      string
	}{
		{1, 1, "AB12CD"},
		{12345, 7, "ZZZZZZ"},
		{9223372036854775807, 1, "000000"},
	}
	for _, tt := range tests {
		payload := Encode(tt.sessionID, tt.subjectID, tt.code)
		decoded, err := Decode(payload)
		if err != nil {
			t.Fatalf("Decode(%q) error = %v", payload, err)
		}
		if decoded.SessionID != tt.sessionID || decoded.SubjectID != tt.subjectID || decoded.Code != tt.code {
			t.Errorf("Decode(%q) = %+v, want {%d %d %s}", payload, decoded, tt.sessionID, tt.subjectID, tt.code)
		}
	}
}

func TestDecodeMalformed(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"empty", ""},
		{"whitespace only", "   "},
		{"garbage without separators", "garbage"},
		{"part lacking colon", "session:1;nonsense;code:AB"},
		{"missing session key", "subject:1;code:AB12CD"},
		{"non-numeric session id", "session:abc;subject:1;code:XY"},
		{"non-numeric subject id", "session:1;subject:x;code:XY"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode(tt.payload); !errors.Is(err, ErrMalformedPayload) {
				t.Errorf("Decode(%q) error = %v, want %v", tt.payload, err, ErrMalformedPayload)
			}
		})
	}
}

func TestDecodeValueWithColon(t *testing.T) {
	// Only the first colon of each part separates key from value
	decoded, err := Decode("session:5;subject:2;code:AB:12")
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if decoded.Code != "AB:12" {
		t.Errorf("decoded.Code = %q, want %q", decoded.Code, "AB:12")
	}
}

func TestDecodeWithoutSubject(t *testing.T) {
	decoded, err := Decode("session:5;code:AB12CD")
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if decoded.SessionID != 5 || decoded.SubjectID != 0 || decoded.Code != "AB12CD" {
		t.Errorf("Decode() = %+v, want {5 0 AB12CD}", decoded)
	}
}
