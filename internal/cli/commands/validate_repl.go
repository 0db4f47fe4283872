package commands

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
)

// runValidateREPL runs the interactive validation loop. Statements end
// with a semicolon or an empty line; dot-commands control the session.
func runValidateREPL(cmd *cobra.Command, format string) error {
	cfg := GetConfig(cmd.Context())

	g, err := openGate(cmd)
	if err != nil {
		return err
	}
	defer g.Close()

	historyFile := filepath.Join(filepath.Dir(cfg.StatePath), "validate_history")

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "sqlgate> ",
		HistoryFile:     historyFile,
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "sqlgate interactive validation (source: %s)\n", g.SourceName)
	_, _ = fmt.Fprintln(out, "Type SQL ending with ; to validate, .help for commands, .quit to exit")
	_, _ = fmt.Fprintln(out)

	var buffer strings.Builder
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			buffer.Reset()
			rl.SetPrompt("sqlgate> ")
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}

		line = strings.TrimSpace(line)
		if line == "" && buffer.Len() == 0 {
			continue
		}

		if buffer.Len() == 0 && strings.HasPrefix(line, ".") {
			if quit := handleDotCommand(cmd, g, line, format); quit {
				break
			}
			continue
		}

		buffer.WriteString(line)
		buffer.WriteString("\n")

		// A trailing semicolon or a blank line submits the statement.
		if !strings.HasSuffix(line, ";") && line != "" {
			rl.SetPrompt("    ...> ")
			continue
		}

		sqlText := strings.TrimSpace(buffer.String())
		buffer.Reset()
		rl.SetPrompt("sqlgate> ")
		if sqlText == "" {
			continue
		}

		verdict := validateAndRecord(cmd.Context(), g, strings.TrimSuffix(sqlText, ";"))
		if err := renderVerdict(out, "query", verdict, format); err != nil {
			return err
		}
	}
	return nil
}

// handleDotCommand executes a REPL dot-command, returning true to quit.
func handleDotCommand(cmd *cobra.Command, g *gate, line, format string) bool {
	out := cmd.OutOrStdout()
	switch line {
	case ".quit", ".exit":
		return true
	case ".schema":
		if err := renderCatalog(out, g.Validator.Catalog(), format); err != nil {
			_, _ = fmt.Fprintf(out, "error: %v\n", err)
		}
	case ".reflect":
		if err := g.Validator.Reflect(cmd.Context()); err != nil {
			_, _ = fmt.Fprintf(out, "error: %v\n", err)
		} else {
			_, _ = fmt.Fprintln(out, "schema catalog refreshed")
		}
	case ".help":
		_, _ = fmt.Fprintln(out, "Commands:")
		_, _ = fmt.Fprintln(out, "  .schema   show the reflected schema catalog")
		_, _ = fmt.Fprintln(out, "  .reflect  rebuild the schema catalog")
		_, _ = fmt.Fprintln(out, "  .quit     exit")
	default:
		_, _ = fmt.Fprintf(out, "unknown command %s (try .help)\n", line)
	}
	return false
}
