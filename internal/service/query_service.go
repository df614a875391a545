package service

import (
	"context"

	"github.com/wrferreira1003/Bug-Finder/internal/dto"
	"github.com/wrferreira1003/Bug-Finder/internal/repository"
)

// LogQueryService searches the archived log records.
type LogQueryService interface {
	SearchLogs(ctx context.Context, req dto.LogSearchRequest) (*dto.LogSearchResponse, error)
}

type logQueryService struct {
	logRepo repository.LogRepository
}

func NewLogQueryService(logRepo repository.LogRepository) LogQueryService {
	return &logQueryService{logRepo: logRepo}
}

func (s *logQueryService) SearchLogs(ctx context.Context, req dto.LogSearchRequest) (*dto.LogSearchResponse, error) {
	return s.logRepo.Search(ctx, req)
}

// IssueQueryService lists the issues the pipeline has filed.
type IssueQueryService interface {
	SearchIssues(ctx context.Context, req dto.IssueListRequest) (*dto.IssueListResponse, error)
}

type issueQueryService struct {
	issueRepo repository.IssueRepository
}

func NewIssueQueryService(issueRepo repository.IssueRepository) IssueQueryService {
	return &issueQueryService{issueRepo: issueRepo}
}

func (s *issueQueryService) SearchIssues(ctx context.Context, req dto.IssueListRequest) (*dto.IssueListResponse, error) {
	return s.issueRepo.Search(ctx, req)
}

// MetricQueryService reads back pipeline metric summaries.
type MetricQueryService interface {
	GetSummary(ctx context.Context, req dto.MetricSummaryRequest) (*dto.MetricSummaryResponse, error)
}

type metricQueryService struct {
	metricRepo repository.MetricRepository
}

func NewMetricQueryService(metricRepo repository.MetricRepository) MetricQueryService {
	return &metricQueryService{metricRepo: metricRepo}
}

func (s *metricQueryService) GetSummary(ctx context.Context, req dto.MetricSummaryRequest) (*dto.MetricSummaryResponse, error) {
	return s.metricRepo.GetSummary(ctx, req)
}
