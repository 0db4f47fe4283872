package validate

import (
	"context"
	"fmt"
	"log/slog"
)

// checkExecution runs the statement inside a transaction that is rolled
// back on every exit path, so the probe never persists a state change. The
// store's own runtime error text is reported verbatim. A per-probe timeout
// bounds how long the live store is touched.
func (v *Validator) checkExecution(ctx context.Context, sqlText string) (bool, string) {
	ctx, cancel := context.WithTimeout(ctx, v.probeTimeout)
	defer cancel()

	tx, err := v.conn.BeginTx(ctx)
	if err != nil {
		return false, fmt.Sprintf("failed to begin probe transaction: %v", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil {
			v.logger.Debug("probe rollback", slog.String("error", err.Error()))
		}
	}()

	rows, err := tx.QueryContext(ctx, sqlText)
	if err != nil {
		return false, err.Error()
	}
	defer func() { _ = rows.Close() }()

	// Drain the result so runtime errors that only surface during row
	// production (type mismatches, bad casts) are observed.
	for rows.Next() {
	}
	if err := rows.Err(); err != nil {
		return false, err.Error()
	}
	return true, ""
}
