package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kenjpais/diagram-generator/pkg/domain"
)

// HelpMarkdown lists the REPL commands.
const HelpMarkdown = `## Commands

| Command | Effect |
|---|---|
| /help, /h | show this help |
| /history | list recent runs |
| /clear | clear the screen |
| /exit, /quit, /q | leave |

Anything else is treated as a diagram request.
`

// ResultMarkdown formats a successful run for terminal display.
func ResultMarkdown(result *domain.Result) string {
	var b strings.Builder
	b.WriteString("## Diagram ready\n\n")
	fmt.Fprintf(&b, "- **artifact**: `%s`\n", result.ArtifactPath)
	fmt.Fprintf(&b, "- **source**: `%s`\n", result.SourcePath)
	fmt.Fprintf(&b, "- **attempts**: %d\n", result.Attempts)
	if len(result.Diagnostics) > 0 {
		b.WriteString("\nRejected drafts along the way:\n\n")
		for i, diag := range result.Diagnostics {
			fmt.Fprintf(&b, "%d. %s\n", i+1, diag)
		}
	}
	return b.String()
}

// FailureMarkdown formats a failed run, keeping the diagnostic trail and the
// last source text visible so the user can remediate by hand.
func FailureMarkdown(err error) string {
	var b strings.Builder

	var schemaErr *domain.SchemaError
	if errors.As(err, &schemaErr) {
		b.WriteString("## Invalid intent\n\n")
		fmt.Fprintf(&b, "%s\n", schemaErr.Error())
		return b.String()
	}

	var pipeErr *domain.PipelineError
	if !errors.As(err, &pipeErr) {
		b.WriteString("## Error\n\n")
		fmt.Fprintf(&b, "%v\n", err)
		return b.String()
	}

	b.WriteString("## Generation failed\n\n")
	fmt.Fprintf(&b, "- **reason**: `%s`\n", pipeErr.Reason)
	if pipeErr.Err != nil {
		fmt.Fprintf(&b, "- **cause**: %v\n", pipeErr.Err)
	}
	if len(pipeErr.Diagnostics) > 0 {
		b.WriteString("\nDiagnostics, in order:\n\n")
		for i, diag := range pipeErr.Diagnostics {
			fmt.Fprintf(&b, "%d. %s\n", i+1, diag)
		}
	}
	if pipeErr.LastSource != "" {
		b.WriteString("\nLast generated source:\n\n")
		fmt.Fprintf(&b, "```dot\n%s\n```\n", pipeErr.LastSource)
	}
	return b.String()
}

// HistoryMarkdown formats stored run records newest-first.
func HistoryMarkdown(records []domain.RunRecord) string {
	if len(records) == 0 {
		return "No runs recorded yet.\n"
	}

	var b strings.Builder
	b.WriteString("## Recent runs\n\n")
	b.WriteString("| Run | Status | Attempts | Artifact |\n|---|---|---|---|\n")
	for _, rec := range records {
		status := string(rec.Status)
		if rec.Status == domain.StatusFailed && rec.Reason != "" {
			status = fmt.Sprintf("%s (%s)", rec.Status, rec.Reason)
		}
		artifact := rec.ArtifactPath
		if artifact == "" {
			artifact = "-"
		}
		fmt.Fprintf(&b, "| %s | %s | %d | %s |\n", rec.ID, status, rec.Attempts, artifact)
	}
	return b.String()
}
