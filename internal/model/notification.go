package model

import "time"

// DeliveryOutcome is the terminal state of a notification attempt series.
type DeliveryOutcome string

const (
	DeliveryDelivered DeliveryOutcome = "delivered"
	DeliveryFailed    DeliveryOutcome = "failed"
)

// NotificationEvent records the delivery of a publication event to an
// external channel. An event is terminal once delivered or its retries
// are exhausted; it is never silently dropped.
type NotificationEvent struct {
	IssueNumber int             `json:"issue_number"`
	IssueURL    string          `json:"issue_url"`
	Severity    BugSeverity     `json:"severity"`
	Attempts    int             `json:"attempts"`
	Outcome     DeliveryOutcome `json:"outcome"`
	Error       string          `json:"error,omitempty"`
	DeliveredAt time.Time       `json:"delivered_at,omitempty"`
}
