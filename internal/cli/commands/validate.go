package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/leapstack-labs/sqlgate/internal/state"
	"github.com/leapstack-labs/sqlgate/pkg/validate"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"
)

// ErrValidationFailed marks a run in which at least one statement was
// rejected; the CLI maps it to a distinct exit code.
var ErrValidationFailed = errors.New("validation failed")

// validateConcurrency bounds how many files are validated at once in batch
// mode.
const validateConcurrency = 4

// ValidateOptions holds options for the validate command.
type ValidateOptions struct {
	Input string
}

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	opts := &ValidateOptions{}

	cmd := &cobra.Command{
		Use:   "validate [SQL | FILE...]",
		Short: "Validate SQL against the configured data source",
		Long: `Validate one or more SQL statements against a live data source.

Each statement is checked in three stages: safety (no DDL or mutating
DML), semantics (all referenced tables and columns exist in the reflected
schema), and execution (a trial run inside a rolled-back transaction).
Nothing the validator rejects should ever be executed for real.

When invoked without arguments on a terminal, enters interactive mode.`,
		Example: `  # Validate SQL directly
  sqlgate validate "SELECT country, AVG(value) AS avg_value FROM readings GROUP BY country"

  # Validate files (concurrently)
  sqlgate validate queries/daily.sql queries/rollup.sql

  # Read from a file or stdin
  sqlgate validate --input query.sql
  echo "SELECT 1" | sqlgate validate

  # Interactive mode
  sqlgate validate`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "Read SQL from file")

	return cmd
}

func runValidate(cmd *cobra.Command, args []string, opts *ValidateOptions) error {
	cfg := GetConfig(cmd.Context())
	format, _ := cmd.Root().PersistentFlags().GetString("output")
	if format == "" {
		format = cfg.Output
	}

	// Batch mode: every argument is an existing file.
	if len(args) > 0 && allFiles(args) {
		g, err := openGate(cmd)
		if err != nil {
			return err
		}
		defer g.Close()
		return validateFiles(cmd, g, args, format)
	}

	// Determine SQL source
	var sqlText string
	switch {
	case len(args) > 0:
		sqlText = strings.Join(args, " ")
	case opts.Input != "":
		content, err := os.ReadFile(opts.Input)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}
		sqlText = string(content)
	case !isTerminal(os.Stdin):
		content, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		sqlText = string(content)
	default:
		// No input, TTY detected - enter interactive mode
		return runValidateREPL(cmd, format)
	}

	g, err := openGate(cmd)
	if err != nil {
		return err
	}
	defer g.Close()

	verdict := validateAndRecord(cmd.Context(), g, sqlText)
	if err := renderVerdict(cmd.OutOrStdout(), "query", verdict, format); err != nil {
		return err
	}
	if !verdict.Passed {
		return ErrValidationFailed
	}
	return nil
}

// validateFiles checks each file's contents concurrently and renders the
// verdicts in argument order.
func validateFiles(cmd *cobra.Command, g *gate, files []string, format string) error {
	verdicts := make(map[string]validate.Verdict, len(files))
	var mu sync.Mutex

	eg, ctx := errgroup.WithContext(cmd.Context())
	eg.SetLimit(validateConcurrency)
	for _, file := range files {
		eg.Go(func() error {
			content, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", file, err)
			}
			verdict := validateAndRecord(ctx, g, string(content))
			mu.Lock()
			verdicts[file] = verdict
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	labels := make([]string, len(files))
	copy(labels, files)
	sort.Strings(labels)
	if err := renderVerdicts(cmd.OutOrStdout(), labels, verdicts, format); err != nil {
		return err
	}

	for _, verdict := range verdicts {
		if !verdict.Passed {
			return ErrValidationFailed
		}
	}
	return nil
}

// validateAndRecord runs one validation and best-effort records it in the
// history store.
func validateAndRecord(ctx context.Context, g *gate, sqlText string) validate.Verdict {
	start := time.Now()
	verdict := g.Validator.Validate(ctx, sqlText)

	if g.Store != nil {
		run := state.Run{
			Source:   g.SourceName,
			SQL:      strings.TrimSpace(sqlText),
			Passed:   verdict.Passed,
			Stage:    string(verdict.Stage),
			Message:  verdict.Message,
			Duration: time.Since(start),
		}
		if err := g.Store.RecordRun(ctx, run); err != nil {
			g.Logger.Warn("failed to record validation run", slog.String("error", err.Error()))
		}
	}
	return verdict
}

// allFiles reports whether every argument names an existing regular file.
func allFiles(args []string) bool {
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil || info.IsDir() {
			return false
		}
	}
	return true
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
