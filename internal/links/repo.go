package links

import (
	"context"
	"errors"
	"time"

	"github.com/sundayezeilo/shortlink/internal/idgen"
)

var (
	// ErrNotFound is the root cause of every NotFound error from a Repository.
	ErrNotFound = errors.New("link not found")

	// ErrCodeTaken is the root cause when an insert hits the unique code constraint.
	ErrCodeTaken = errors.New("code already in use")
)

// Repository is the link store. Implementations map driver errors to errx
// kinds: missing rows to NotFound, unique code violations to Conflict and
// everything else to Unavailable.
type Repository interface {
	// Create inserts link. ID is assigned when zero; TotalClicks and
	// LastClickedAt are ignored and start at 0 and nil.
	Create(ctx context.Context, link Link) (Link, error)
	GetByCode(ctx context.Context, code string) (Link, error)
	// List returns every link, newest first.
	List(ctx context.Context) ([]Link, error)
	// RecordClick increments TotalClicks by one and sets LastClickedAt to at,
	// or to CreatedAt when at is earlier, in a single statement, returning
	// the updated link.
	RecordClick(ctx context.Context, code string, at time.Time) (Link, error)
	Delete(ctx context.Context, code string) error
	Count(ctx context.Context) (int64, error)
	Ping(ctx context.Context) error
}

// RepositoryConfig holds configuration shared by the repository implementations.
type RepositoryConfig struct {
	IDGenerator idgen.Generator
}

func (c *RepositoryConfig) idGenerator() idgen.Generator {
	if c == nil || c.IDGenerator == nil {
		return idgen.NewV7(idgen.WithRetries(1))
	}
	return c.IDGenerator
}
