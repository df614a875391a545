package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	kafkaGo "github.com/segmentio/kafka-go"

	"github.com/wrferreira1003/Bug-Finder/config"
	"github.com/wrferreira1003/Bug-Finder/internal/elasticsearch"
	"github.com/wrferreira1003/Bug-Finder/internal/kafka"
	"github.com/wrferreira1003/Bug-Finder/internal/model"
)

// LogConsumerService drains the raw log topic, runs each record
// through the pipeline and archives the outcome.
type LogConsumerService interface {
	Run(ctx context.Context, wg *sync.WaitGroup)
}

type logConsumerService struct {
	consumer    kafka.LogConsumer
	pipeline    PipelineService
	logStore    elasticsearch.LogStore
	batchSize   int
	maxWaitTime time.Duration
}

func NewLogConsumerService(
	consumer kafka.LogConsumer,
	pipeline PipelineService,
	logStore elasticsearch.LogStore,
	cfg *config.Config,
) LogConsumerService {
	return &logConsumerService{
		consumer:    consumer,
		pipeline:    pipeline,
		logStore:    logStore,
		batchSize:   cfg.LogProcessor.BatchSize,
		maxWaitTime: cfg.LogProcessor.MaxBatchWait,
	}
}

func (s *logConsumerService) Run(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()
	log.Info().Msg("Starting log consumer loop...")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Log consumer loop stopping due to context cancellation.")
			return
		default:
		}

		err := s.processBatch(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				log.Info().Msg("Context cancelled during batch processing.")
				return
			}
			log.Error().Err(err).Msg("Error processing consumer batch")
			time.Sleep(1 * time.Second)
		}
	}
}

func (s *logConsumerService) processBatch(ctx context.Context) error {
	records := make([]*model.LogRecord, 0, s.batchSize)
	originalMessages := make([]kafkaGo.Message, 0, s.batchSize)
	batchStartTime := time.Now()

	for len(records) < s.batchSize {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		remaining := s.maxWaitTime - time.Since(batchStartTime)
		if remaining <= 0 {
			break
		}
		fetchCtx, cancel := context.WithTimeout(ctx, remaining)
		record, originalMsg, err := s.consumer.FetchMessage(fetchCtx)
		cancel()

		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				log.Debug().Int("batch_size", len(records)).Msg("Max wait time reached, processing partial batch.")
				break
			}
			// Unmarshal failures still hand back the message so the
			// offset can be committed past the bad payload.
			if originalMsg.Topic != "" {
				log.Warn().Int64("offset", originalMsg.Offset).Msg("Tracking undecodable message for commit.")
				originalMessages = append(originalMessages, originalMsg)
				continue
			}
			return fmt.Errorf("failed to fetch kafka message: %w", err)
		}

		records = append(records, record)
		originalMessages = append(originalMessages, originalMsg)
	}

	if len(originalMessages) == 0 {
		return nil
	}

	archived := make([]elasticsearch.ArchivedRecord, 0, len(records))
	for _, record := range records {
		result := s.pipeline.ProcessRecord(ctx, record)
		archived = append(archived, archiveResult(result))
	}

	if len(archived) > 0 {
		if err := s.logStore.StoreRecords(ctx, archived); err != nil {
			log.Error().Err(err).Msg("Failed to archive processed records, skipping commit")
			return fmt.Errorf("failed archiving records: %w", err)
		}
	}

	if err := s.consumer.CommitMessages(ctx, originalMessages...); err != nil {
		log.Error().Err(err).Msg("Failed to commit Kafka messages after processing")
		return fmt.Errorf("failed committing kafka messages: %w", err)
	}
	log.Info().Int("batch_size", len(records)).Msg("Successfully processed and committed batch.")
	return nil
}

func archiveResult(result *model.ProcessResult) elasticsearch.ArchivedRecord {
	rec := elasticsearch.ArchivedRecord{
		Outcome:   string(result.Outcome),
		ProcessID: result.ProcessID,
	}
	if result.Record != nil {
		rec.LogRecord = *result.Record
	}
	if result.Analysis != nil {
		rec.Severity = string(result.Analysis.Severity)
		rec.Category = string(result.Analysis.Category)
		rec.Confidence = result.Analysis.Confidence
	}
	if result.Issue != nil {
		rec.IssueURL = result.Issue.HTMLURL
	}
	return rec
}
