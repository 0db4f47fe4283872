package validate

import "fmt"

// Stage identifies which check of the pipeline produced a verdict.
type Stage string

const (
	// StageSafety is the structural deny-list check.
	StageSafety Stage = "Safety"
	// StageSemantic is the schema conformance check.
	StageSemantic Stage = "Semantic"
	// StageExecution is the rolled-back trial execution.
	StageExecution Stage = "Execution"
)

// Verdict is the structured result of one full validation run.
// A failing verdict's message identifies the stage and the specific
// offending names or underlying error text.
type Verdict struct {
	Passed  bool   `json:"passed"`
	Stage   Stage  `json:"stage,omitempty"`
	Message string `json:"message"`
}

// pass builds the single success verdict.
func pass() Verdict {
	return Verdict{Passed: true, Message: "all validations passed"}
}

// fail builds a failing verdict for the given stage in the
// "<Stage> failed: <detail>" format.
func fail(stage Stage, format string, args ...any) Verdict {
	return Verdict{
		Passed:  false,
		Stage:   stage,
		Message: fmt.Sprintf("%s failed: %s", stage, fmt.Sprintf(format, args...)),
	}
}
