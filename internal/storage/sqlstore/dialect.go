package sqlstore

import (
	"errors"
	"strconv"
	"strings"

	"github.com/lib/pq"
	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// dialect captures the differences between the supported SQL databases.
// Queries are written with ? placeholders and rebound per dialect.
type dialect struct {
	name string

	// migrationDir is the directory under migrations.FS holding this
	// dialect's schema.
	migrationDir string

	// greatest is the two-argument maximum function
	greatest string

	// addressOrder is appended to address in ORDER BY so ties sort by
	// byte order regardless of the database collation.
	addressOrder string

	// lockRooms, if set, runs first in every room assignment transaction
	// to serialize assignments. SQLite transactions are opened IMMEDIATE and
	// already hold the write lock.
	lockRooms string

	numberedParams bool

	isUniqueViolation func(error) bool
}

var sqliteDialect = dialect{
	name:              "sqlite",
	migrationDir:      "sqlite",
	greatest:          "MAX",
	isUniqueViolation: isSQLiteUniqueViolation,
}

var postgresDialect = dialect{
	name:              "postgres",
	migrationDir:      "postgres",
	greatest:          "GREATEST",
	addressOrder:      ` COLLATE "C"`,
	lockRooms:         "LOCK TABLE rooms IN EXCLUSIVE MODE",
	numberedParams:    true,
	isUniqueViolation: isPostgresUniqueViolation,
}

// rebind rewrites ? placeholders to $1, $2, ... for dialects that need it.
// Queries in this package never contain a literal question mark.
func (d dialect) rebind(query string) string {
	if !d.numberedParams {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isSQLiteUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	switch sqliteErr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
		return true
	}
	return false
}

const pqUniqueViolation = pq.ErrorCode("23505")

func isPostgresUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code == pqUniqueViolation
}
