package commands

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

// watchDebounce coalesces rapid editor write bursts into one validation.
const watchDebounce = 100 * time.Millisecond

// NewWatchCommand creates the watch command.
func NewWatchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "watch DIR",
		Short: "Revalidate SQL files in a directory on change",
		Long: `Watch a directory tree and validate every .sql file as it is written.

Useful while iterating on generated or hand-written queries: each save
immediately reports which stage, if any, rejects the statement.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := GetConfig(cmd.Context())
			format, _ := cmd.Root().PersistentFlags().GetString("output")
			if format == "" {
				format = cfg.Output
			}

			dir := args[0]
			if info, err := os.Stat(dir); err != nil || !info.IsDir() {
				return fmt.Errorf("not a directory: %s", dir)
			}

			g, err := openGate(cmd)
			if err != nil {
				return err
			}
			defer g.Close()

			return watchAndValidate(cmd, g, dir, format)
		},
	}
}

func watchAndValidate(cmd *cobra.Command, g *gate, dir, format string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	if err := watchDirRecursive(watcher, dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	_, _ = fmt.Fprintf(out, "watching %s for .sql changes (source: %s)\n", dir, g.SourceName)

	// Per-file debounce timers
	timers := make(map[string]*time.Timer)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event := <-watcher.Events:
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
				_ = watcher.Add(event.Name)
				continue
			}
			if filepath.Ext(event.Name) != ".sql" {
				continue
			}

			name := event.Name
			if t, ok := timers[name]; ok {
				t.Stop()
			}
			timers[name] = time.AfterFunc(watchDebounce, func() {
				validateWatchedFile(ctx, g, out, name, format)
			})

		case err := <-watcher.Errors:
			g.Logger.Error("watcher error", "error", err)
		}
	}
}

func validateWatchedFile(ctx context.Context, g *gate, out io.Writer, name, format string) {
	content, err := os.ReadFile(name)
	if err != nil {
		g.Logger.Error("failed to read changed file", "file", name, "error", err)
		return
	}
	verdict := validateAndRecord(ctx, g, string(content))
	_ = renderVerdict(out, name, verdict, format)
}

// watchDirRecursive adds a directory and all subdirectories to the watcher.
func watchDirRecursive(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
}
