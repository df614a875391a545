package mysql

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/wrferreira1003/Bug-Finder/internal/dto"
	"github.com/wrferreira1003/Bug-Finder/internal/model"
	"github.com/wrferreira1003/Bug-Finder/internal/repository"
)

type mysqlIssueRepository struct {
	db *gorm.DB
}

func NewIssueRepository(db *gorm.DB) repository.IssueRepository {
	return &mysqlIssueRepository{db: db}
}

func (r *mysqlIssueRepository) Save(ctx context.Context, record *model.IssueRecord) error {
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		log.Error().Err(err).Int("number", record.Number).Msg("Failed to save issue record")
		return fmt.Errorf("failed to save issue record: %w", err)
	}
	log.Debug().Int("number", record.Number).Msg("Saved issue record")
	return nil
}

// ListRecent returns the newest filed issues, the comparison set for
// duplicate detection.
func (r *mysqlIssueRepository) ListRecent(ctx context.Context, limit int) ([]model.IssueRecord, error) {
	if limit <= 0 {
		limit = 200
	}
	var records []model.IssueRecord
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list recent issues: %w", err)
	}
	return records, nil
}

func (r *mysqlIssueRepository) Search(ctx context.Context, req dto.IssueListRequest) (*dto.IssueListResponse, error) {
	query := r.db.WithContext(ctx).Model(&model.IssueRecord{})
	if req.Severity != "" {
		query = query.Where("severity = ?", req.Severity)
	}
	if req.Category != "" {
		query = query.Where("category = ?", req.Category)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count issue records: %w", err)
	}

	page := req.Page
	if page < 1 {
		page = 1
	}
	size := req.Size
	if size <= 0 || size > 500 {
		size = 50
	}

	var records []model.IssueRecord
	err := query.Order("created_at DESC").
		Offset((page - 1) * size).
		Limit(size).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search issue records: %w", err)
	}

	return &dto.IssueListResponse{
		Issues:     records,
		TotalCount: total,
		Page:       page,
		Size:       size,
	}, nil
}
