// Package idgen issues link identifiers.
package idgen

import (
	"fmt"

	"github.com/google/uuid"
)

// Generator generates unique identifiers.
// Implementations should be safe for concurrent use.
type Generator interface {
	Generate() (uuid.UUID, error)
}

type v7Gen struct {
	attempts int
	newV7    func() (uuid.UUID, error)
}

type V7Option func(*v7Gen)

// WithRetries sets how many extra attempts are made when uuid.NewV7 fails.
// Negative values are ignored.
func WithRetries(n int) V7Option {
	return func(g *v7Gen) {
		if n >= 0 {
			g.attempts = n + 1
		}
	}
}

// NewV7 returns a Generator that produces time-ordered UUID v7 values.
// Ordered ids keep inserts into the links primary key index local.
func NewV7(opts ...V7Option) Generator {
	g := &v7Gen{attempts: 2, newV7: uuid.NewV7}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *v7Gen) Generate() (uuid.UUID, error) {
	var last error
	for range g.attempts {
		id, err := g.newV7()
		if err == nil {
			return id, nil
		}
		last = err
	}
	return uuid.Nil, fmt.Errorf("uuid v7 generation failed after %d attempts: %w", g.attempts, last)
}
