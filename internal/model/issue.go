package model

import "time"

// DraftStatus is the lifecycle state of an issue draft.
type DraftStatus string

const (
	StatusDraft     DraftStatus = "DRAFT"
	StatusReviewed  DraftStatus = "REVIEWED"
	StatusRefined   DraftStatus = "REFINED"
	StatusPublished DraftStatus = "PUBLISHED"
)

// IssueDraft is the working copy of a GitHub issue as it moves through
// the review/refine loop. Only the loop mutates a draft; once Status is
// PUBLISHED it must not change again.
type IssueDraft struct {
	Title     string      `json:"title"`
	Body      string      `json:"body"` // markdown
	Labels    []string    `json:"labels"`
	Assignees []string    `json:"assignees,omitempty"`
	Status    DraftStatus `json:"status"`
	Revision  int         `json:"revision"`

	// UnreviewedComplete marks a draft whose review budget was exhausted
	// without approval; the last revision is used as-is.
	UnreviewedComplete bool `json:"unreviewed_complete,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// PublishedIssue is the record handed back by the issue tracker after a
// draft is filed.
type PublishedIssue struct {
	Number  int    `json:"number"`
	URL     string `json:"url"`
	HTMLURL string `json:"html_url"`
}

// ReviewFeedback is one review pass over a draft.
type ReviewFeedback struct {
	Approved     bool     `json:"approved"`
	Score        int      `json:"score"` // 0-5 structural quality score
	Deficiencies []string `json:"deficiencies,omitempty"`
	Suggestions  []string `json:"suggestions,omitempty"`
}

// IssueRecord is the persisted trace of a filed issue; its fingerprint
// is the comparison key for duplicate detection.
type IssueRecord struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Number      int       `json:"number" gorm:"index"`
	Title       string    `json:"title" gorm:"size:512"`
	HTMLURL     string    `json:"html_url" gorm:"size:512"`
	Severity    string    `json:"severity" gorm:"size:16;index"`
	Category    string    `json:"category" gorm:"size:32;index"`
	Fingerprint string    `json:"fingerprint" gorm:"size:2048"`
	Confidence  float64   `json:"confidence"`
	CreatedAt   time.Time `json:"created_at"`
}

func (IssueRecord) TableName() string {
	return "issue_records"
}
