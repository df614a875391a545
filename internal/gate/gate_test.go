package gate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wrferreira1003/Bug-Finder/internal/dedup"
	"github.com/wrferreira1003/Bug-Finder/internal/gate"
	"github.com/wrferreira1003/Bug-Finder/internal/model"
)

func publishableAnalysis() *model.BugAnalysis {
	return &model.BugAnalysis{
		IsBug:      true,
		Confidence: 0.9,
		Severity:   model.SeverityHigh,
		Category:   model.CategoryDatabase,
		ShouldFile: true,
	}
}

func reviewedDraft() *model.IssueDraft {
	return &model.IssueDraft{
		Title:    "[HIGH] database connection refused",
		Body:     "## Summary\n...",
		Labels:   []string{"bug"},
		Status:   model.StatusReviewed,
		Revision: 1,
	}
}

func cleanVerdict() *dedup.Verdict {
	return &dedup.Verdict{IsDuplicate: false, Similarity: 0.1}
}

func TestDecide_PublishesReviewedNonDuplicate(t *testing.T) {
	g := gate.New(0.7, true)

	decision := g.Decide(publishableAnalysis(), reviewedDraft(), cleanVerdict())
	assert.True(t, decision.Publish)
	assert.Empty(t, decision.Reason)
}

func TestDecide_FailsClosed(t *testing.T) {
	g := gate.New(0.7, true)

	lowConfidence := publishableAnalysis()
	lowConfidence.Confidence = 0.5

	notFiling := publishableAnalysis()
	notFiling.ShouldFile = false

	duplicate := cleanVerdict()
	duplicate.IsDuplicate = true

	published := reviewedDraft()
	published.Status = model.StatusPublished

	unreviewed := reviewedDraft()
	unreviewed.Status = model.StatusDraft

	tests := []struct {
		name     string
		analysis *model.BugAnalysis
		draft    *model.IssueDraft
		verdict  *dedup.Verdict
	}{
		{"nil analysis", nil, reviewedDraft(), cleanVerdict()},
		{"nil draft", publishableAnalysis(), nil, cleanVerdict()},
		{"analysis declined filing", notFiling, reviewedDraft(), cleanVerdict()},
		{"confidence below threshold", lowConfidence, reviewedDraft(), cleanVerdict()},
		{"missing duplicate verdict", publishableAnalysis(), reviewedDraft(), nil},
		{"duplicate", publishableAnalysis(), reviewedDraft(), duplicate},
		{"already published", publishableAnalysis(), published, cleanVerdict()},
		{"never reviewed", publishableAnalysis(), unreviewed, cleanVerdict()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := g.Decide(tt.analysis, tt.draft, tt.verdict)
			assert.False(t, decision.Publish)
			assert.NotEmpty(t, decision.Reason, "every denial must state a reason")
		})
	}
}

func TestDecide_UnreviewedCompleteRespectsPolicy(t *testing.T) {
	exhausted := reviewedDraft()
	exhausted.Status = model.StatusRefined
	exhausted.UnreviewedComplete = true

	allow := gate.New(0.7, true)
	assert.True(t, allow.Decide(publishableAnalysis(), exhausted, cleanVerdict()).Publish)

	strict := gate.New(0.7, false)
	decision := strict.Decide(publishableAnalysis(), exhausted, cleanVerdict())
	assert.False(t, decision.Publish)
	assert.NotEmpty(t, decision.Reason)
}
