package review

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/wrferreira1003/Bug-Finder/internal/model"
)

// approveScore is the structural score at which a draft is accepted.
const approveScore = 4

// QualityReviewer is an optional second opinion (AI-backed) consulted
// after the structural review. Implementations must be side-effect free
// with respect to the draft.
type QualityReviewer interface {
	ReviewDraft(ctx context.Context, draft *model.IssueDraft) (*model.ReviewFeedback, error)
}

// Loop runs the bounded review/refine state machine over a draft:
// DRAFT -> (review) -> REVIEWED, or -> (refine) -> DRAFT(v+1) -> ...
// until approval or the iteration budget is exhausted.
type Loop struct {
	maxIterations int
	quality       QualityReviewer // may be nil
}

func NewLoop(maxIterations int, quality QualityReviewer) *Loop {
	if maxIterations < 1 {
		maxIterations = 1
	}
	return &Loop{maxIterations: maxIterations, quality: quality}
}

// Run reviews and refines the draft in place. The returned draft is
// either REVIEWED (approved) or flagged UnreviewedComplete with its
// last revision intact. The loop never runs more than maxIterations
// review passes.
func (l *Loop) Run(ctx context.Context, draft *model.IssueDraft, analysis *model.BugAnalysis) *model.IssueDraft {
	for iteration := 1; iteration <= l.maxIterations; iteration++ {
		feedback := l.review(ctx, draft)

		if feedback.Approved {
			draft.Status = model.StatusReviewed
			log.Debug().Int("iteration", iteration).Int("revision", draft.Revision).Msg("Draft approved by review")
			return draft
		}

		if iteration == l.maxIterations {
			break
		}

		refine(draft, analysis, feedback)
		log.Debug().Int("iteration", iteration).Int("revision", draft.Revision).Strs("deficiencies", feedback.Deficiencies).Msg("Draft refined")
	}

	// Budget exhausted: the last draft is used as-is.
	draft.UnreviewedComplete = true
	log.Warn().Int("max_iterations", l.maxIterations).Int("revision", draft.Revision).Msg("Review budget exhausted, using last draft as-is")
	return draft
}

// review combines the structural check with the optional quality
// reviewer. A quality reviewer failure falls back to the structural
// verdict alone.
func (l *Loop) review(ctx context.Context, draft *model.IssueDraft) *model.ReviewFeedback {
	feedback := structuralReview(draft)

	if l.quality != nil {
		quality, err := l.quality.ReviewDraft(ctx, draft)
		if err != nil {
			log.Warn().Err(err).Msg("Quality review failed, using structural verdict only")
		} else {
			feedback.Suggestions = append(feedback.Suggestions, quality.Suggestions...)
			if !quality.Approved {
				feedback.Approved = false
				feedback.Deficiencies = append(feedback.Deficiencies, quality.Deficiencies...)
			}
		}
	}
	return feedback
}

// structuralReview scores the draft 0-5 against the issue template.
func structuralReview(draft *model.IssueDraft) *model.ReviewFeedback {
	feedback := &model.ReviewFeedback{}
	score := 0

	if t := strings.TrimSpace(draft.Title); t != "" && len(t) <= 120 {
		score++
	} else {
		feedback.Deficiencies = append(feedback.Deficiencies, "title missing or too long")
	}

	for _, section := range []string{"## Summary", "## Technical Context", "## Log Details"} {
		if strings.Contains(draft.Body, section) {
			score++
		} else {
			feedback.Deficiencies = append(feedback.Deficiencies, fmt.Sprintf("missing section %q", section))
		}
	}

	if len(draft.Labels) > 0 {
		score++
	} else {
		feedback.Deficiencies = append(feedback.Deficiencies, "no labels set")
	}

	feedback.Score = score
	feedback.Approved = score >= approveScore
	return feedback
}

// refine applies the review feedback and advances the draft to its
// next revision.
func refine(draft *model.IssueDraft, analysis *model.BugAnalysis, feedback *model.ReviewFeedback) {
	for _, deficiency := range feedback.Deficiencies {
		switch {
		case strings.Contains(deficiency, "title"):
			rebuildTitle(draft, analysis)
		case strings.Contains(deficiency, "## Summary"):
			draft.Body = "## Summary\n\n" + firstLine(draft.Body) + "\n\n" + draft.Body
		case strings.Contains(deficiency, "## Technical Context"):
			draft.Body += "\n## Technical Context\n\n_Not captured for this record._\n"
		case strings.Contains(deficiency, "## Log Details"):
			draft.Body += "\n## Log Details\n\n_Raw log unavailable._\n"
		case strings.Contains(deficiency, "labels"):
			draft.Labels = []string{"bug", string(analysis.Severity), string(analysis.Category)}
		}
	}

	// The refined draft re-enters review as the next revision.
	draft.Revision++
	draft.Status = model.StatusRefined
}

func rebuildTitle(draft *model.IssueDraft, analysis *model.BugAnalysis) {
	hint := analysis.TitleHint
	if hint == "" {
		hint = "Automated bug report"
	}
	if len(hint) > 90 {
		hint = hint[:87] + "..."
	}
	draft.Title = fmt.Sprintf("[%s] %s", strings.ToUpper(string(analysis.Severity)), hint)
}

func firstLine(body string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(body), "\n")
	return line
}
