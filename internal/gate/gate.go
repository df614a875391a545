package gate

import (
	"github.com/wrferreira1003/Bug-Finder/internal/dedup"
	"github.com/wrferreira1003/Bug-Finder/internal/model"
)

// Gate is the decision point controlling whether a reviewed draft
// becomes a real issue. It fails closed: any missing or ambiguous
// signal yields "do not publish" with a stated reason.
type Gate struct {
	minConfidence     float64
	publishUnreviewed bool
}

func New(minConfidence float64, publishUnreviewed bool) *Gate {
	return &Gate{minConfidence: minConfidence, publishUnreviewed: publishUnreviewed}
}

// Decision carries the publish verdict and, when negative, the reason.
type Decision struct {
	Publish bool   `json:"publish"`
	Reason  string `json:"reason,omitempty"`
}

func deny(reason string) Decision {
	return Decision{Publish: false, Reason: reason}
}

// Decide evaluates a draft against its analysis and duplicate verdict.
func (g *Gate) Decide(analysis *model.BugAnalysis, draft *model.IssueDraft, verdict *dedup.Verdict) Decision {
	if analysis == nil {
		return deny("no analysis available")
	}
	if draft == nil {
		return deny("no draft available")
	}
	if !analysis.ShouldFile {
		return deny("analysis decided against filing")
	}
	if analysis.Confidence < g.minConfidence {
		return deny("confidence below minimum threshold")
	}
	if verdict == nil {
		return deny("duplicate signal missing")
	}
	if verdict.IsDuplicate {
		return deny("duplicate of existing issue")
	}
	if draft.Status == model.StatusPublished {
		return deny("draft already published")
	}
	if draft.Status != model.StatusReviewed && !draft.UnreviewedComplete {
		return deny("draft has not completed review")
	}
	if draft.UnreviewedComplete && !g.publishUnreviewed {
		return deny("unreviewed drafts are not allowed to publish")
	}
	return Decision{Publish: true}
}
