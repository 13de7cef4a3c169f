// Package codegen produces short codes for links.
// Generators should be safe for concurrent use.
package codegen

import (
	"crypto/rand"
	"errors"
	"io"
)

const (
	base36Chars = "0123456789abcdefghijklmnopqrstuvwxyz"

	// DefaultLength is the length of codes issued when the caller
	// does not supply one.
	DefaultLength = 6

	// Largest multiple of 36 that fits in a byte; bytes at or above it are
	// rejected so every character is equally likely.
	rejectAbove = 252
)

// Generator generates short codes.
// Implementations should be safe for concurrent use.
type Generator interface {
	Generate(length int) (string, error)
}

type base36Generator struct {
	rand io.Reader
}

// NewBase36 returns a generator of lowercase base-36 codes backed by crypto/rand.
//
// Codes are random, not unique. With 6 characters there are about 2.2e9
// possible codes, so callers must still check the store before inserting.
func NewBase36() Generator {
	return &base36Generator{rand: rand.Reader}
}

// Generate returns a random base-36 string of the given length.
func (g *base36Generator) Generate(length int) (string, error) {
	if length <= 0 {
		return "", errors.New("length must be positive")
	}

	out := make([]byte, 0, length)
	buf := make([]byte, length)

	for len(out) < length {
		if _, err := io.ReadFull(g.rand, buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if b >= rejectAbove {
				continue
			}
			out = append(out, base36Chars[int(b)%len(base36Chars)])
			if len(out) == length {
				break
			}
		}
	}

	return string(out), nil
}

// IsBase36 reports whether s consists only of characters a base-36
// generator can produce.
func IsBase36(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= '0' && c <= '9') && !(c >= 'a' && c <= 'z') {
			return false
		}
	}
	return true
}
