package links

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	db "github.com/sundayezeilo/shortlink/internal/db/sqlc"
	"github.com/sundayezeilo/shortlink/internal/errx"
	"github.com/sundayezeilo/shortlink/internal/idgen"
)

// querier is the subset of *db.Queries the repository needs.
type querier interface {
	CreateLink(ctx context.Context, arg db.CreateLinkParams) (db.Link, error)
	GetLinkByCode(ctx context.Context, code string) (db.Link, error)
	ListLinks(ctx context.Context) ([]db.Link, error)
	RecordLinkClick(ctx context.Context, arg db.RecordLinkClickParams) (db.Link, error)
	DeleteLinkByCode(ctx context.Context, code string) (int64, error)
	CountLinks(ctx context.Context) (int64, error)
}

type pinger interface {
	Ping(ctx context.Context) error
}

type postgresRepo struct {
	q   querier
	db  pinger
	ids idgen.Generator
}

// NewPostgresRepository returns a Repository backed by PostgreSQL through the
// sqlc queries in internal/db/sqlc.
func NewPostgresRepository(pool *pgxpool.Pool, config *RepositoryConfig) Repository {
	return newPostgresRepo(db.New(pool), pool, config)
}

func newPostgresRepo(q querier, p pinger, config *RepositoryConfig) *postgresRepo {
	return &postgresRepo{
		q:   q,
		db:  p,
		ids: config.idGenerator(),
	}
}

func mustTime(ts pgtype.Timestamptz, field string) (time.Time, error) {
	if !ts.Valid {
		return time.Time{}, fmt.Errorf("%s unexpectedly NULL", field)
	}
	return ts.Time.UTC(), nil
}

func timePtr(ts pgtype.Timestamptz) *time.Time {
	if !ts.Valid {
		return nil
	}
	t := ts.Time.UTC()
	return &t
}

func timestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}

func fromPgLink(x db.Link) (Link, error) {
	createdAt, err := mustTime(x.CreatedAt, "created_at")
	if err != nil {
		return Link{}, err
	}

	return Link{
		ID:            x.ID,
		Code:          x.Code,
		TargetURL:     x.TargetUrl,
		TotalClicks:   x.TotalClicks,
		LastClickedAt: timePtr(x.LastClickedAt),
		CreatedAt:     createdAt,
	}, nil
}

func mapPgError(op string, err error) error {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return errx.E(op, errx.NotFound, ErrNotFound)

	case isPgCodeUniqueViolation(err):
		return errx.E(op, errx.Conflict, ErrCodeTaken)

	default:
		return errx.E(op, errx.Unavailable, err)
	}
}

func (r *postgresRepo) Create(ctx context.Context, link Link) (Link, error) {
	const op = "links.postgres.Create"

	if link.ID == uuid.Nil {
		id, err := r.ids.Generate()
		if err != nil {
			return Link{}, errx.E(op, errx.Internal, err)
		}
		link.ID = id
	}

	row, err := r.q.CreateLink(ctx, db.CreateLinkParams{
		ID:        link.ID,
		Code:      link.Code,
		TargetUrl: link.TargetURL,
		CreatedAt: timestamptz(link.CreatedAt),
	})
	if err != nil {
		return Link{}, mapPgError(op, err)
	}

	created, err := fromPgLink(row)
	if err != nil {
		return Link{}, errx.E(op, errx.Internal, err)
	}
	return created, nil
}

func (r *postgresRepo) GetByCode(ctx context.Context, code string) (Link, error) {
	const op = "links.postgres.GetByCode"

	row, err := r.q.GetLinkByCode(ctx, code)
	if err != nil {
		return Link{}, mapPgError(op, err)
	}

	link, err := fromPgLink(row)
	if err != nil {
		return Link{}, errx.E(op, errx.Internal, err)
	}
	return link, nil
}

func (r *postgresRepo) List(ctx context.Context) ([]Link, error) {
	const op = "links.postgres.List"

	rows, err := r.q.ListLinks(ctx)
	if err != nil {
		return nil, mapPgError(op, err)
	}

	out := make([]Link, 0, len(rows))
	for _, row := range rows {
		link, err := fromPgLink(row)
		if err != nil {
			return nil, errx.E(op, errx.Internal, err)
		}
		out = append(out, link)
	}
	return out, nil
}

func (r *postgresRepo) RecordClick(ctx context.Context, code string, at time.Time) (Link, error) {
	const op = "links.postgres.RecordClick"

	row, err := r.q.RecordLinkClick(ctx, db.RecordLinkClickParams{
		Code:          code,
		LastClickedAt: timestamptz(at),
	})
	if err != nil {
		return Link{}, mapPgError(op, err)
	}

	link, err := fromPgLink(row)
	if err != nil {
		return Link{}, errx.E(op, errx.Internal, err)
	}
	return link, nil
}

func (r *postgresRepo) Delete(ctx context.Context, code string) error {
	const op = "links.postgres.Delete"

	n, err := r.q.DeleteLinkByCode(ctx, code)
	if err != nil {
		return mapPgError(op, err)
	}
	if n == 0 {
		return errx.E(op, errx.NotFound, ErrNotFound)
	}
	return nil
}

func (r *postgresRepo) Count(ctx context.Context) (int64, error) {
	const op = "links.postgres.Count"

	n, err := r.q.CountLinks(ctx)
	if err != nil {
		return 0, mapPgError(op, err)
	}
	return n, nil
}

func (r *postgresRepo) Ping(ctx context.Context) error {
	const op = "links.postgres.Ping"

	if err := r.db.Ping(ctx); err != nil {
		return errx.E(op, errx.Unavailable, err)
	}
	return nil
}
