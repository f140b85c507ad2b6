package domain

// Verdict is a syntax validator's answer for one source text.
type Verdict struct {
	Valid      bool
	Diagnostic string
}

// Accept returns a passing verdict.
func Accept() Verdict { return Verdict{Valid: true} }

// Reject returns a failing verdict carrying the validator's diagnostic.
// The diagnostic is an opaque payload owned by the validator; the pipeline
// passes it along verbatim.
func Reject(diagnostic string) Verdict { return Verdict{Diagnostic: diagnostic} }

// GenerationAttempt records one generation-or-correction cycle and its
// validation outcome. Attempt numbers are 1-based and strictly ordered
// within a run; the pipeline owns these records for the duration of the
// run and discards all but the last when it terminates.
type GenerationAttempt struct {
	Number     int    `json:"number"`
	Source     string `json:"source"`
	Valid      bool   `json:"valid"`
	Diagnostic string `json:"diagnostic,omitempty"`
}

// Result is the terminal value of a successful pipeline run. Diagnostics
// holds the verdicts of any attempts that were rejected before the run
// eventually succeeded.
type Result struct {
	Source       string   `json:"source"`
	SourcePath   string   `json:"source_path"`
	ArtifactPath string   `json:"artifact_path"`
	Attempts     int      `json:"attempts"`
	Diagnostics  []string `json:"diagnostics,omitempty"`
}
