// Package dialect describes the per-store SQL surface the adapters need:
// the default schema for metadata lookups and the placeholder style used
// in parameterized introspection queries.
package dialect

import (
	"strconv"
	"strings"
)

// PlaceholderStyle determines how bind parameters are written.
type PlaceholderStyle int

const (
	// QuestionMark uses ? placeholders (DuckDB, SQLite).
	QuestionMark PlaceholderStyle = iota
	// DollarNumber uses $1, $2, ... placeholders (PostgreSQL).
	DollarNumber
)

// Dialect holds the dialect configuration for one adapter type.
type Dialect struct {
	Name          string
	DefaultSchema string
	Placeholders  PlaceholderStyle
}

// FormatPlaceholder returns the bind placeholder for the n-th parameter
// (1-based).
func (d *Dialect) FormatPlaceholder(n int) string {
	if d.Placeholders == DollarNumber {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

// QuoteIdentifier wraps an identifier in double quotes, escaping embedded
// quotes. All supported stores accept standard double-quoted identifiers.
func (d *Dialect) QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// Builtin dialects for the shipped adapters.
var (
	Postgres = &Dialect{Name: "postgres", DefaultSchema: "public", Placeholders: DollarNumber}
	DuckDB   = &Dialect{Name: "duckdb", DefaultSchema: "main", Placeholders: QuestionMark}
	SQLite   = &Dialect{Name: "sqlite", DefaultSchema: "main", Placeholders: QuestionMark}
)
