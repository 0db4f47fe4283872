// Package adapter provides the database adapter contract used by the
// validation pipeline.
//
// An adapter owns one database/sql connection to a relational store and
// exposes the small surface the validator needs: statement execution,
// probe transactions, and schema introspection. Concrete implementations
// live in pkg/adapters/ subdirectories and register themselves at init
// time.
package adapter

import (
	"context"
	"database/sql"

	"github.com/leapstack-labs/sqlgate/pkg/dialect"
)

// Config holds the connection settings for one data source.
type Config struct {
	Type     string
	Path     string
	Host     string
	Port     int
	Database string
	Username string
	Password string
	Schema   string
	Options  map[string]string
}

// Column represents a column in a database table.
type Column struct {
	Name     string
	Type     string
	Nullable bool
	Position int
}

// TableMetadata holds metadata about a database table.
type TableMetadata struct {
	Schema  string
	Name    string
	Columns []Column
}

// Adapter defines the interface that all database adapters must implement.
type Adapter interface {
	// Connect establishes a connection to the database using the provided config.
	Connect(ctx context.Context, cfg Config) error

	// Close closes the database connection and releases resources.
	Close() error

	// Exec executes a SQL statement that doesn't return rows.
	Exec(ctx context.Context, sql string) error

	// Query executes a SQL statement that returns rows.
	Query(ctx context.Context, sql string) (*sql.Rows, error)

	// BeginTx starts a transaction. The validator's execution probe relies
	// on this to run statements it will always roll back.
	BeginTx(ctx context.Context) (*sql.Tx, error)

	// ListTables returns the names of all base tables visible in the
	// adapter's default schema.
	ListTables(ctx context.Context) ([]string, error)

	// GetTableMetadata retrieves column metadata for a specified table.
	GetTableMetadata(ctx context.Context, table string) (*TableMetadata, error)

	// Dialect returns the SQL dialect configuration for this adapter.
	Dialect() *dialect.Dialect
}
