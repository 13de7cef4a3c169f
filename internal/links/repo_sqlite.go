package links

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sundayezeilo/shortlink/internal/errx"
	"github.com/sundayezeilo/shortlink/internal/idgen"
)

// Timestamps are stored as fixed-width UTC text so that ORDER BY on the
// column sorts chronologically.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const sqliteLinkColumns = `id, code, target_url, total_clicks, last_clicked_at, created_at`

type sqliteRepo struct {
	db  *sql.DB
	ids idgen.Generator
}

// NewSQLiteRepository returns a Repository backed by a database/sql handle
// opened with the sqlite or libsql driver.
func NewSQLiteRepository(db *sql.DB, config *RepositoryConfig) Repository {
	return &sqliteRepo{
		db:  db,
		ids: config.idGenerator(),
	}
}

func formatSQLiteTime(t time.Time) string {
	return t.UTC().Format(sqliteTimeLayout)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteLink(row rowScanner) (Link, error) {
	var (
		id            string
		link          Link
		lastClickedAt sql.NullString
		createdAt     string
	)

	if err := row.Scan(&id, &link.Code, &link.TargetURL, &link.TotalClicks, &lastClickedAt, &createdAt); err != nil {
		return Link{}, err
	}

	parsedID, err := uuid.Parse(id)
	if err != nil {
		return Link{}, fmt.Errorf("parse id %q: %w", id, err)
	}
	link.ID = parsedID

	link.CreatedAt, err = time.Parse(sqliteTimeLayout, createdAt)
	if err != nil {
		return Link{}, fmt.Errorf("parse created_at: %w", err)
	}

	if lastClickedAt.Valid {
		t, err := time.Parse(sqliteTimeLayout, lastClickedAt.String)
		if err != nil {
			return Link{}, fmt.Errorf("parse last_clicked_at: %w", err)
		}
		link.LastClickedAt = &t
	}

	return link, nil
}

func mapSQLiteError(op string, err error) error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return errx.E(op, errx.NotFound, ErrNotFound)

	case isSQLiteCodeUniqueViolation(err):
		return errx.E(op, errx.Conflict, ErrCodeTaken)

	default:
		return errx.E(op, errx.Unavailable, err)
	}
}

func (r *sqliteRepo) Create(ctx context.Context, link Link) (Link, error) {
	const op = "links.sqlite.Create"

	if link.ID == uuid.Nil {
		id, err := r.ids.Generate()
		if err != nil {
			return Link{}, errx.E(op, errx.Internal, err)
		}
		link.ID = id
	}

	row := r.db.QueryRowContext(ctx,
		`INSERT INTO links (id, code, target_url, created_at)
		 VALUES (?, ?, ?, ?)
		 RETURNING `+sqliteLinkColumns,
		link.ID.String(), link.Code, link.TargetURL, formatSQLiteTime(link.CreatedAt),
	)

	created, err := scanSQLiteLink(row)
	if err != nil {
		return Link{}, mapSQLiteError(op, err)
	}
	return created, nil
}

func (r *sqliteRepo) GetByCode(ctx context.Context, code string) (Link, error) {
	const op = "links.sqlite.GetByCode"

	row := r.db.QueryRowContext(ctx,
		`SELECT `+sqliteLinkColumns+` FROM links WHERE code = ?`, code)

	link, err := scanSQLiteLink(row)
	if err != nil {
		return Link{}, mapSQLiteError(op, err)
	}
	return link, nil
}

func (r *sqliteRepo) List(ctx context.Context) ([]Link, error) {
	const op = "links.sqlite.List"

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+sqliteLinkColumns+` FROM links ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, mapSQLiteError(op, err)
	}
	defer rows.Close()

	out := []Link{}
	for rows.Next() {
		link, err := scanSQLiteLink(rows)
		if err != nil {
			return nil, errx.E(op, errx.Internal, err)
		}
		out = append(out, link)
	}
	if err := rows.Err(); err != nil {
		return nil, mapSQLiteError(op, err)
	}
	return out, nil
}

func (r *sqliteRepo) RecordClick(ctx context.Context, code string, at time.Time) (Link, error) {
	const op = "links.sqlite.RecordClick"

	row := r.db.QueryRowContext(ctx,
		`UPDATE links
		 SET total_clicks = total_clicks + 1, last_clicked_at = max(created_at, ?)
		 WHERE code = ?
		 RETURNING `+sqliteLinkColumns,
		formatSQLiteTime(at), code,
	)

	link, err := scanSQLiteLink(row)
	if err != nil {
		return Link{}, mapSQLiteError(op, err)
	}
	return link, nil
}

func (r *sqliteRepo) Delete(ctx context.Context, code string) error {
	const op = "links.sqlite.Delete"

	res, err := r.db.ExecContext(ctx, `DELETE FROM links WHERE code = ?`, code)
	if err != nil {
		return mapSQLiteError(op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return errx.E(op, errx.Unavailable, err)
	}
	if n == 0 {
		return errx.E(op, errx.NotFound, ErrNotFound)
	}
	return nil
}

func (r *sqliteRepo) Count(ctx context.Context) (int64, error) {
	const op = "links.sqlite.Count"

	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM links`).Scan(&n); err != nil {
		return 0, mapSQLiteError(op, err)
	}
	return n, nil
}

func (r *sqliteRepo) Ping(ctx context.Context) error {
	const op = "links.sqlite.Ping"

	if err := r.db.PingContext(ctx); err != nil {
		return errx.E(op, errx.Unavailable, err)
	}
	return nil
}
