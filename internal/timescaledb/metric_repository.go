package timescaledb

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/wrferreira1003/Bug-Finder/internal/dto"
	"github.com/wrferreira1003/Bug-Finder/internal/repository"
)

type timescaleMetricRepository struct {
	pool       *pgxpool.Pool
	eventTable string
}

func NewTimescaleMetricRepository(pool *pgxpool.Pool) (repository.MetricRepository, error) {
	if pool == nil {
		log.Warn().Msg("TimescaleDB pool is nil in NewTimescaleMetricRepository.")
		return nil, errors.New("TimescaleDB connection pool is required for MetricRepository")
	}
	return &timescaleMetricRepository{
		pool:       pool,
		eventTable: metricEventsTableName,
	}, nil
}

func (r *timescaleMetricRepository) GetSummary(ctx context.Context, req dto.MetricSummaryRequest) (*dto.MetricSummaryResponse, error) {
	resp := &dto.MetricSummaryResponse{}

	whereClauses := []string{"time >= $1", "time < $2"}
	args := []interface{}{req.StartTime, req.EndTime}
	argCounter := 3

	if len(req.Services) > 0 {
		servicePlaceholders := make([]string, len(req.Services))
		for i, service := range req.Services {
			servicePlaceholders[i] = fmt.Sprintf("$%d", argCounter)
			args = append(args, service)
			argCounter++
		}
		whereClauses = append(whereClauses, fmt.Sprintf("service IN (%s)", strings.Join(servicePlaceholders, ",")))
	}
	whereSQL := strings.Join(whereClauses, " AND ")

	counters := []struct {
		metricName string
		target     *int64
	}{
		{"log_processed", &resp.LogsProcessed},
		{"bug_found", &resp.BugsFound},
		{"issue_created", &resp.IssuesCreated},
		{"duplicate_detected", &resp.DuplicatesDetected},
		{"notification_sent", &resp.NotificationsSent},
	}

	var lastErr error
	for _, c := range counters {
		countSQL := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE metric_name = '%s' AND %s", r.eventTable, c.metricName, whereSQL)
		if err := r.pool.QueryRow(ctx, countSQL, args...).Scan(c.target); err != nil {
			log.Error().Err(err).Str("metric", c.metricName).Msg("Failed to count metric events")
			lastErr = err
		}
	}

	if lastErr != nil && resp.LogsProcessed == 0 && resp.BugsFound == 0 && resp.IssuesCreated == 0 {
		return nil, fmt.Errorf("failed to get summary metrics: %w", lastErr)
	}

	return resp, nil
}
