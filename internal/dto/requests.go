package dto

import (
	"time"

	"github.com/wrferreira1003/Bug-Finder/internal/model"
)

// LogSubmitRequest is the body of POST /api/v1/logs and
// POST /api/v1/logs/analyze. Content may be a plain text log line
// (with optional stack trace lines) or a JSON-encoded record.
type LogSubmitRequest struct {
	Content string `json:"content" binding:"required"`
	Source  string `json:"source"`
}

type LogSearchRequest struct {
	StartTime time.Time
	EndTime   time.Time
	Query     string
	Levels    []string
	Services  []string
	SortBy    string
	SortOrder string
	Page      int
	Size      int
}

type LogSearchResponse struct {
	Logs       []model.LogRecord `json:"logs"`
	TotalCount int64             `json:"totalCount"`
	Page       int               `json:"page"`
	Size       int               `json:"size"`
}

type IssueListRequest struct {
	Severity string
	Category string
	Page     int
	Size     int
}

type IssueListResponse struct {
	Issues     []model.IssueRecord `json:"issues"`
	TotalCount int64               `json:"totalCount"`
	Page       int                 `json:"page"`
	Size       int                 `json:"size"`
}

type MetricSummaryRequest struct {
	StartTime time.Time
	EndTime   time.Time
	Services  []string
}

type MetricSummaryResponse struct {
	LogsProcessed      int64 `json:"logs_processed"`
	BugsFound          int64 `json:"bugs_found"`
	IssuesCreated      int64 `json:"issues_created"`
	DuplicatesDetected int64 `json:"duplicates_detected"`
	NotificationsSent  int64 `json:"notifications_sent"`
}

// StatusResponse is the body of GET /api/v1/status.
type StatusResponse struct {
	Status  string              `json:"status"`
	Uptime  string              `json:"uptime"`
	Stats   model.PipelineStats `json:"stats"`
	Version string              `json:"version,omitempty"`
}
