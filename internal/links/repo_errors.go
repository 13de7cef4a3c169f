package links

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const (
	pgUniqueViolation  = "23505"
	codeUniqueName     = "links_code_unique"
	sqliteUniqueOnCode = "UNIQUE constraint failed: links.code"
)

func isPgCodeUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == pgUniqueViolation &&
		pgErr.ConstraintName == codeUniqueName
}

// isSQLiteCodeUniqueViolation matches both the local modernc driver, which
// exposes extended result codes, and the libsql driver, which only returns text.
func isSQLiteCodeUniqueViolation(err error) bool {
	var sqErr *sqlite.Error
	if errors.As(err, &sqErr) && sqErr.Code() != sqlite3.SQLITE_CONSTRAINT_UNIQUE {
		return false
	}
	return strings.Contains(err.Error(), sqliteUniqueOnCode)
}
