package model

import "time"

// ProcessOutcome classifies how a pipeline run ended. Every run ends in
// exactly one outcome so callers can branch without inspecting errors.
type ProcessOutcome string

const (
	OutcomeRejected      ProcessOutcome = "rejected"       // malformed input, never classified
	OutcomeNoBug         ProcessOutcome = "no_bug"         // classified, not a bug
	OutcomeLowConfidence ProcessOutcome = "low_confidence" // bug signal below threshold, nothing filed
	OutcomeDuplicate     ProcessOutcome = "duplicate"      // matched an existing issue
	OutcomeNotPublished  ProcessOutcome = "not_published"  // gate declined
	OutcomePublished     ProcessOutcome = "published"      // issue filed and notification delivered
	OutcomePublishFailed ProcessOutcome = "publish_failed" // tracker rejected after retries
	OutcomeNotifyFailed  ProcessOutcome = "notify_failed"  // issue filed, notification exhausted retries
)

// ProcessResult is the structured result of one pipeline run.
type ProcessResult struct {
	ProcessID string         `json:"process_id"`
	Outcome   ProcessOutcome `json:"outcome"`
	Reason    string         `json:"reason,omitempty"`

	Record       *LogRecord         `json:"record,omitempty"`
	Analysis     *BugAnalysis       `json:"analysis,omitempty"`
	Draft        *IssueDraft        `json:"draft,omitempty"`
	Issue        *PublishedIssue    `json:"issue,omitempty"`
	DuplicateOf  *IssueRecord       `json:"duplicate_of,omitempty"`
	Notification *NotificationEvent `json:"notification,omitempty"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// PipelineStats are the per-run counters exposed by the status endpoint.
type PipelineStats struct {
	LogsProcessed      uint64 `json:"logs_processed"`
	BugsFound          uint64 `json:"bugs_found"`
	DuplicatesDetected uint64 `json:"duplicates_detected"`
	IssuesCreated      uint64 `json:"issues_created"`
	NotificationsSent  uint64 `json:"notifications_sent"`
	Failures           uint64 `json:"failures"`
}

// MetricEvent is one point written to the metric store.
type MetricEvent struct {
	Time       time.Time         `json:"time"`
	MetricName string            `json:"metric_name"`
	Service    string            `json:"service"`
	Tags       map[string]string `json:"tags"`
}
