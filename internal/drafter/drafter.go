package drafter

import (
	"fmt"
	"strings"
	"time"

	"github.com/wrferreira1003/Bug-Finder/internal/model"
)

// Drafter renders a classified log into an issue draft. Given the same
// analysis and template configuration the output is identical.
type Drafter struct {
	defaultLabels []string
}

func New(defaultLabels []string) *Drafter {
	return &Drafter{defaultLabels: defaultLabels}
}

var severityEmoji = map[model.BugSeverity]string{
	model.SeverityCritical: "🚨",
	model.SeverityHigh:     "🔴",
	model.SeverityMedium:   "🟠",
	model.SeverityLow:      "🟡",
}

// Draft produces a new IssueDraft in state DRAFT, revision 1.
func (d *Drafter) Draft(record *model.LogRecord, analysis *model.BugAnalysis) *model.IssueDraft {
	title := analysis.TitleHint
	if title == "" {
		title = record.Message
	}
	title = fmt.Sprintf("[%s] %s", strings.ToUpper(string(analysis.Severity)), title)

	labels := make([]string, 0, len(d.defaultLabels)+2)
	labels = append(labels, d.defaultLabels...)
	labels = append(labels, string(analysis.Severity), string(analysis.Category))

	return &model.IssueDraft{
		Title:     title,
		Body:      d.renderBody(record, analysis),
		Labels:    dedupeLabels(labels),
		Status:    model.StatusDraft,
		Revision:  1,
		CreatedAt: time.Now().UTC(),
	}
}

func (d *Drafter) renderBody(record *model.LogRecord, analysis *model.BugAnalysis) string {
	var b strings.Builder

	emoji := severityEmoji[analysis.Severity]
	fmt.Fprintf(&b, "%s **Severity:** %s | **Category:** %s | **Confidence:** %.2f\n\n",
		emoji, analysis.Severity, analysis.Category, analysis.Confidence)

	b.WriteString("## Summary\n\n")
	fmt.Fprintf(&b, "%s\n\n", record.Message)

	b.WriteString("## Impact\n\n")
	fmt.Fprintf(&b, "Automated analysis classified this as a **%s** severity **%s** problem", analysis.Severity, analysis.Category)
	if len(analysis.AffectedComponents) > 0 {
		fmt.Fprintf(&b, " affecting `%s`", strings.Join(analysis.AffectedComponents, "`, `"))
	}
	b.WriteString(".\n\n")

	if len(analysis.PossibleCauses) > 0 {
		b.WriteString("## Possible Causes\n\n")
		for _, cause := range analysis.PossibleCauses {
			fmt.Fprintf(&b, "- %s\n", cause)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Technical Context\n\n")
	fmt.Fprintf(&b, "- **Timestamp:** %s\n", record.Timestamp.Format(time.RFC3339))
	fmt.Fprintf(&b, "- **Level:** %s\n", record.Level)
	if record.Service != "" {
		fmt.Fprintf(&b, "- **Service:** %s\n", record.Service)
	}
	if record.Component != "" {
		fmt.Fprintf(&b, "- **Component:** %s\n", record.Component)
	}
	if record.SourceFile != "" {
		fmt.Fprintf(&b, "- **Source:** %s\n", record.SourceFile)
	}
	b.WriteString("\n")

	b.WriteString("## Log Details\n\n")
	fmt.Fprintf(&b, "```\n%s\n```\n", record.Raw)

	if record.StackTrace != "" {
		b.WriteString("\n## Stack Trace\n\n")
		fmt.Fprintf(&b, "```\n%s\n```\n", record.StackTrace)
	}

	return b.String()
}

func dedupeLabels(labels []string) []string {
	seen := make(map[string]struct{}, len(labels))
	out := labels[:0]
	for _, l := range labels {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	return out
}
