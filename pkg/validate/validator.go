// Package validate implements the SQL validation pipeline: given an
// untrusted SQL string and a reflected schema catalog, it decides whether
// the statement is safe to execute, semantically valid against the schema,
// and actually executable.
//
// Three checks run in fixed order and short-circuit on first failure:
//
//	Safety    - structural deny-list of DDL and mutating DML
//	Semantic  - table/column references must exist in the catalog
//	Execution - trial run inside an always-rolled-back transaction
//
// Cheap structural checks gate before reflection-dependent checks, which
// gate before touching the live store. Every call yields exactly one
// Verdict; a validation failure is never an error.
package validate

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/leapstack-labs/sqlgate/pkg/adapter"
)

// DefaultProbeTimeout bounds the execution probe when no explicit timeout
// is configured.
const DefaultProbeTimeout = 5 * time.Second

// Validator gates SQL statements against one data source. The catalog
// snapshot is immutable and shared by concurrent Validate calls; Reflect
// replaces it atomically, so in-flight validations never observe a
// half-built catalog.
type Validator struct {
	conn         adapter.Adapter
	catalog      atomic.Pointer[Catalog]
	logger       *slog.Logger
	probeTimeout time.Duration
}

// Option configures a Validator.
type Option func(*Validator)

// WithLogger sets the validator's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(v *Validator) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// WithProbeTimeout overrides the execution probe timeout.
func WithProbeTimeout(d time.Duration) Option {
	return func(v *Validator) {
		if d > 0 {
			v.probeTimeout = d
		}
	}
}

// New builds a validator over the given connection and reflects the schema
// catalog. Reflection failure is fatal: no meaningful validation can
// proceed without a catalog.
func New(ctx context.Context, conn adapter.Adapter, opts ...Option) (*Validator, error) {
	v := &Validator{
		conn:         conn,
		logger:       slog.New(slog.DiscardHandler),
		probeTimeout: DefaultProbeTimeout,
	}
	for _, opt := range opts {
		opt(v)
	}
	if err := v.Reflect(ctx); err != nil {
		return nil, err
	}
	return v, nil
}

// Reflect rebuilds the schema catalog from the live store and swaps it in
// atomically.
func (v *Validator) Reflect(ctx context.Context) error {
	cat, err := ReflectCatalog(ctx, v.conn)
	if err != nil {
		return err
	}
	v.catalog.Store(cat)
	v.logger.Debug("schema catalog reflected",
		slog.Int("tables", len(cat.tables)),
		slog.Int("columns", len(cat.columns)))
	return nil
}

// Catalog returns the current catalog snapshot.
func (v *Validator) Catalog() *Catalog {
	return v.catalog.Load()
}

// Validate runs the full pipeline on one SQL statement and returns its
// verdict. Safety, then Semantic, then Execution; the first failing stage
// wins.
func (v *Validator) Validate(ctx context.Context, sqlText string) Verdict {
	sqlText = strings.TrimSpace(sqlText)
	result, parseErr := Parse(sqlText)

	if parseErr != nil {
		if errors.Is(parseErr, ErrMultiStatement) {
			return fail(StageSafety, "%v", parseErr)
		}
		// Lexical fallback: an unparseable statement fails closed on
		// keyword presence, and is otherwise only provisionally safe.
		if kw, found := scanHarmfulKeywords(sqlText); found {
			return fail(StageSafety, "harmful keyword %s detected", kw)
		}
		// An unparseable statement cannot be schema-checked.
		return fail(StageSemantic, "statement could not be parsed: %v", parseErr)
	}

	if ok, reason := checkSafety(result); !ok {
		return fail(StageSafety, "%s", reason)
	}

	if ok, reason := checkSemantics(result, v.catalog.Load()); !ok {
		return fail(StageSemantic, "%s", reason)
	}

	if ok, reason := v.checkExecution(ctx, sqlText); !ok {
		return fail(StageExecution, "%s", reason)
	}

	return pass()
}
