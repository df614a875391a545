package drafter_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wrferreira1003/Bug-Finder/internal/drafter"
	"github.com/wrferreira1003/Bug-Finder/internal/model"
)

func sampleRecord() *model.LogRecord {
	return &model.LogRecord{
		Timestamp: time.Date(2024, 3, 14, 10, 22, 1, 0, time.UTC),
		Level:     model.LevelError,
		Message:   "database connection refused on checkout",
		Service:   "application_12345_0001",
		Component: "db.pool",
		Raw:       "2024-03-14 10:22:01 ERROR db.pool: database connection refused on checkout",
	}
}

func sampleAnalysis() *model.BugAnalysis {
	return &model.BugAnalysis{
		IsBug:              true,
		Confidence:         0.95,
		Severity:           model.SeverityHigh,
		Category:           model.CategoryDatabase,
		ShouldFile:         true,
		TitleHint:          "database connection refused on checkout",
		AffectedComponents: []string{"db.pool"},
		PossibleCauses:     []string{"database down", "connection pool exhausted"},
	}
}

func TestDraft_RendersTemplateSections(t *testing.T) {
	d := drafter.New([]string{"bug", "automated"})

	draft := d.Draft(sampleRecord(), sampleAnalysis())
	require.NotNil(t, draft)

	assert.Equal(t, "[HIGH] database connection refused on checkout", draft.Title)
	assert.Equal(t, model.StatusDraft, draft.Status)
	assert.Equal(t, 1, draft.Revision)
	assert.False(t, draft.UnreviewedComplete)

	for _, section := range []string{"## Summary", "## Impact", "## Possible Causes", "## Technical Context", "## Log Details"} {
		assert.Contains(t, draft.Body, section)
	}
	assert.Contains(t, draft.Body, "database connection refused on checkout")
	assert.Contains(t, draft.Body, "2024-03-14T10:22:01Z")
	assert.Contains(t, draft.Body, "```\n2024-03-14 10:22:01 ERROR db.pool: database connection refused on checkout\n```")
	assert.NotContains(t, draft.Body, "## Stack Trace")
}

func TestDraft_IncludesStackTraceSectionWhenPresent(t *testing.T) {
	d := drafter.New(nil)
	record := sampleRecord()
	record.StackTrace = "at pool.Get(pool.go:42)"

	draft := d.Draft(record, sampleAnalysis())
	assert.Contains(t, draft.Body, "## Stack Trace")
	assert.Contains(t, draft.Body, "at pool.Get(pool.go:42)")
}

func TestDraft_LabelsMergedAndDeduped(t *testing.T) {
	d := drafter.New([]string{"bug", "high"})

	draft := d.Draft(sampleRecord(), sampleAnalysis())
	assert.Equal(t, []string{"bug", "high", "database"}, draft.Labels)
}

func TestDraft_FallsBackToMessageWhenNoTitleHint(t *testing.T) {
	d := drafter.New(nil)
	analysis := sampleAnalysis()
	analysis.TitleHint = ""

	draft := d.Draft(sampleRecord(), analysis)
	assert.Equal(t, "[HIGH] database connection refused on checkout", draft.Title)
}

func TestDraft_IsDeterministic(t *testing.T) {
	d := drafter.New([]string{"bug"})
	record := sampleRecord()
	analysis := sampleAnalysis()

	first := d.Draft(record, analysis)
	second := d.Draft(record, analysis)
	assert.Equal(t, first.Title, second.Title)
	assert.Equal(t, first.Body, second.Body)
	assert.Equal(t, first.Labels, second.Labels)
}
