package sessioncode

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Alphabet is the character set session codes are drawn from.
// 36^6 gives roughly 2.2 billion distinct 6-character codes, which is
// collision-resistant enough for short-lived sessions; the session store
// additionally enforces a unique index on codes and retries on conflict.
const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// DefaultLength is the standard session code length.
const DefaultLength = 6

// Generator produces fixed-length session codes from a cryptographically
// strong random source.
type Generator struct {
	length int
}

// NewGenerator creates a generator for codes of the given length.
// Non-positive lengths fall back to DefaultLength.
func NewGenerator(length int) *Generator {
	if length <= 0 {
		length = DefaultLength
	}
	return &Generator{length: length}
}

// Generate returns a new uppercase alphanumeric code.
func (g *Generator) Generate() (string, error) {
	max := big.NewInt(int64(len(Alphabet)))
	buf := make([]byte, g.length)
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to read random source: %w", err)
		}
		buf[i] = Alphabet[n.Int64()]
	}
	return string(buf), nil
}

// Length returns the configured code length.
func (g *Generator) Length() int {
	return g.length
}
