package repository

import (
	"context"

	"github.com/wrferreira1003/Bug-Finder/internal/dto"
	"github.com/wrferreira1003/Bug-Finder/internal/model"
)

// IssueRepository persists filed issues. The stored fingerprints are
// the prior-issue set consulted by the duplicate detector.
type IssueRepository interface {
	Save(ctx context.Context, record *model.IssueRecord) error
	ListRecent(ctx context.Context, limit int) ([]model.IssueRecord, error)
	Search(ctx context.Context, req dto.IssueListRequest) (*dto.IssueListResponse, error)
}

// LogRepository searches the archived log records.
type LogRepository interface {
	Search(ctx context.Context, req dto.LogSearchRequest) (*dto.LogSearchResponse, error)
}

// MetricRepository reads back pipeline metric events.
type MetricRepository interface {
	GetSummary(ctx context.Context, req dto.MetricSummaryRequest) (*dto.MetricSummaryResponse, error)
}
