package review_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wrferreira1003/Bug-Finder/internal/drafter"
	"github.com/wrferreira1003/Bug-Finder/internal/model"
	"github.com/wrferreira1003/Bug-Finder/internal/review"
)

func wellFormedDraft() *model.IssueDraft {
	d := drafter.New([]string{"bug"})
	return d.Draft(
		&model.LogRecord{
			Timestamp: time.Date(2024, 3, 14, 10, 22, 1, 0, time.UTC),
			Level:     model.LevelError,
			Message:   "database connection refused",
			Raw:       "2024-03-14 10:22:01 ERROR db: database connection refused",
		},
		&model.BugAnalysis{
			Severity:  model.SeverityHigh,
			Category:  model.CategoryDatabase,
			TitleHint: "database connection refused",
		},
	)
}

func brokenDraft() *model.IssueDraft {
	return &model.IssueDraft{
		Title:    "",
		Body:     "no recognizable sections here",
		Status:   model.StatusDraft,
		Revision: 1,
	}
}

type stubReviewer struct {
	feedback *model.ReviewFeedback
	err      error
	calls    int
}

func (s *stubReviewer) ReviewDraft(ctx context.Context, draft *model.IssueDraft) (*model.ReviewFeedback, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.feedback, nil
}

func TestRun_ApprovesWellFormedDraftFirstPass(t *testing.T) {
	loop := review.NewLoop(2, nil)

	draft := loop.Run(context.Background(), wellFormedDraft(), &model.BugAnalysis{})

	assert.Equal(t, model.StatusReviewed, draft.Status)
	assert.Equal(t, 1, draft.Revision)
	assert.False(t, draft.UnreviewedComplete)
}

func TestRun_RefinesThenApproves(t *testing.T) {
	loop := review.NewLoop(2, nil)
	analysis := &model.BugAnalysis{
		Severity:  model.SeverityHigh,
		Category:  model.CategoryDatabase,
		TitleHint: "database connection refused",
	}

	draft := loop.Run(context.Background(), brokenDraft(), analysis)

	// First pass fails, refinement repairs title/sections/labels, second
	// pass approves.
	assert.Equal(t, model.StatusReviewed, draft.Status)
	assert.Equal(t, 2, draft.Revision)
	assert.False(t, draft.UnreviewedComplete)
	assert.NotEmpty(t, draft.Title)
	assert.NotEmpty(t, draft.Labels)
}

func TestRun_BudgetExhaustedFlagsUnreviewedComplete(t *testing.T) {
	// Quality reviewer that never approves forces exhaustion.
	reviewer := &stubReviewer{feedback: &model.ReviewFeedback{
		Approved:     false,
		Deficiencies: []string{"not actionable enough"},
	}}
	loop := review.NewLoop(2, reviewer)

	draft := loop.Run(context.Background(), wellFormedDraft(), &model.BugAnalysis{})

	assert.NotEqual(t, model.StatusReviewed, draft.Status)
	assert.True(t, draft.UnreviewedComplete)
	assert.Equal(t, 2, reviewer.calls, "review passes must stay within the iteration budget")
}

func TestRun_QualityReviewerFailureFallsBackToStructural(t *testing.T) {
	reviewer := &stubReviewer{err: errors.New("model unavailable")}
	loop := review.NewLoop(2, reviewer)

	draft := loop.Run(context.Background(), wellFormedDraft(), &model.BugAnalysis{})

	// Structural review alone approves a well-formed draft.
	assert.Equal(t, model.StatusReviewed, draft.Status)
	assert.False(t, draft.UnreviewedComplete)
}

func TestRun_AlwaysTerminates(t *testing.T) {
	reviewer := &stubReviewer{feedback: &model.ReviewFeedback{Approved: false, Deficiencies: []string{"never good"}}}
	loop := review.NewLoop(5, reviewer)

	done := make(chan struct{})
	go func() {
		loop.Run(context.Background(), brokenDraft(), &model.BugAnalysis{})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("review loop did not terminate")
	}
	require.Equal(t, 5, reviewer.calls)
}

func TestNewLoop_ClampsIterationsToAtLeastOne(t *testing.T) {
	loop := review.NewLoop(0, nil)
	draft := loop.Run(context.Background(), wellFormedDraft(), &model.BugAnalysis{})
	assert.Equal(t, model.StatusReviewed, draft.Status)
}
