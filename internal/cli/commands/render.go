package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/leapstack-labs/sqlgate/internal/state"
	"github.com/leapstack-labs/sqlgate/pkg/validate"
)

// renderVerdict writes one verdict in the requested format. The label is
// what the verdict is for (a file name, or "query" for inline SQL).
func renderVerdict(w io.Writer, label string, verdict validate.Verdict, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Label string `json:"label,omitempty"`
			validate.Verdict
		}{Label: label, Verdict: verdict})
	case "table":
		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.AppendHeader(table.Row{"Query", "Result", "Stage", "Message"})
		t.AppendRow(table.Row{label, passFail(verdict.Passed), string(verdict.Stage), verdict.Message})
		t.Render()
		return nil
	default:
		if label != "" && label != "query" {
			fmt.Fprintf(w, "%s: ", label)
		}
		fmt.Fprintf(w, "%s: %s\n", passFail(verdict.Passed), verdict.Message)
		return nil
	}
}

// renderVerdicts writes a batch of verdicts keyed by label.
func renderVerdicts(w io.Writer, labels []string, verdicts map[string]validate.Verdict, format string) error {
	switch format {
	case "json":
		type entry struct {
			Label string `json:"label"`
			validate.Verdict
		}
		out := make([]entry, 0, len(labels))
		for _, label := range labels {
			out = append(out, entry{Label: label, Verdict: verdicts[label]})
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	case "table":
		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.AppendHeader(table.Row{"Query", "Result", "Stage", "Message"})
		for _, label := range labels {
			v := verdicts[label]
			t.AppendRow(table.Row{label, passFail(v.Passed), string(v.Stage), v.Message})
		}
		t.Render()
		return nil
	default:
		for _, label := range labels {
			v := verdicts[label]
			fmt.Fprintf(w, "%s: %s: %s\n", label, passFail(v.Passed), v.Message)
		}
		return nil
	}
}

// renderCatalog writes the reflected schema catalog.
func renderCatalog(w io.Writer, cat *validate.Catalog, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Tables  []string `json:"tables"`
			Columns []string `json:"columns"`
		}{Tables: cat.Tables(), Columns: cat.Columns()})
	case "table":
		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.AppendHeader(table.Row{"Kind", "Name"})
		for _, name := range cat.Tables() {
			t.AppendRow(table.Row{"table", name})
		}
		for _, name := range cat.Columns() {
			t.AppendRow(table.Row{"column", name})
		}
		t.Render()
		return nil
	default:
		fmt.Fprintf(w, "tables (%d):\n", len(cat.Tables()))
		for _, name := range cat.Tables() {
			fmt.Fprintf(w, "  %s\n", name)
		}
		fmt.Fprintf(w, "columns (%d):\n", len(cat.Columns()))
		for _, name := range cat.Columns() {
			fmt.Fprintf(w, "  %s\n", name)
		}
		return nil
	}
}

// renderRuns writes validation history entries.
func renderRuns(w io.Writer, runs []state.Run, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	default:
		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.AppendHeader(table.Row{"When", "Source", "Result", "Message", "SQL"})
		for _, run := range runs {
			t.AppendRow(table.Row{
				run.CreatedAt.Format("2006-01-02 15:04:05"),
				run.Source,
				passFail(run.Passed),
				truncate(run.Message, 60),
				truncate(run.SQL, 60),
			})
		}
		t.Render()
		return nil
	}
}

func passFail(passed bool) string {
	if passed {
		return "PASS"
	}
	return "FAIL"
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
