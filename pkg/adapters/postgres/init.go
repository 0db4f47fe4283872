// Package postgres provides a PostgreSQL database adapter for sqlgate.
//
// This file registers the PostgreSQL adapter with the adapter registry.
// Import this package with a blank identifier to register the adapter:
//
//	import _ "github.com/leapstack-labs/sqlgate/pkg/adapters/postgres"
package postgres

import (
	"log/slog"

	"github.com/leapstack-labs/sqlgate/pkg/adapter"
)

func init() {
	adapter.Register("postgres", func(logger *slog.Logger) adapter.Adapter { return New(logger) })
}
