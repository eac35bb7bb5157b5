// Package store persists the catalog, reviews, comments and users with GORM.
// Mutating operations take the acting principal explicitly and run the
// object-level authorization check once the target row is loaded.
package store

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// MaxPageSize caps the page size a client may request
const MaxPageSize = 100

// Page selects a window of a listing, Number is 1-based
type Page struct {
	Number int
	Size   int
}

// Normalize clamps the page to valid bounds, using def as the fallback size
func (p Page) Normalize(def int) Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Size < 1 {
		p.Size = def
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	return p
}

func (p Page) apply(q *gorm.DB) *gorm.DB {
	p = p.Normalize(MaxPageSize)
	return q.Offset((p.Number - 1) * p.Size).Limit(p.Size)
}

// likeEscaper escapes LIKE wildcards with likeEscapeChar, a character that
// needs no quoting in MySQL, PostgreSQL or SQLite string literals
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

const likeEscapeChar = "!"

// like builds a case-insensitive substring pattern matching s literally
func like(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}

// likeClause is the condition comparing column against a like() pattern
func likeClause(column string) string {
	return "LOWER(" + column + ") LIKE ? ESCAPE '" + likeEscapeChar + "'"
}

// isDuplicate reports a unique constraint violation from any supported driver
func isDuplicate(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || // sqlite
		strings.Contains(msg, "Duplicate entry") || // mysql
		strings.Contains(msg, "duplicate key value") // postgres
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
