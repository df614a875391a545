package service

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/wrferreira1003/Bug-Finder/config"
	"github.com/wrferreira1003/Bug-Finder/internal/filestate"
	"github.com/wrferreira1003/Bug-Finder/internal/kafka"
	"github.com/wrferreira1003/Bug-Finder/internal/model"
	"github.com/wrferreira1003/Bug-Finder/internal/parser"
)

// LogProducerService scans the configured log directory for new
// content and ships parsed records to Kafka for the pipeline consumer.
type LogProducerService interface {
	ProcessLogs(ctx context.Context) error
}

type logProducerService struct {
	parser      parser.LogParser
	producer    kafka.LogProducer
	cfg         *config.LogProcessorConfig
	stateMgr    filestate.Manager
	processLock sync.Mutex
}

func NewLogProducerService(
	cfg *config.Config,
	stateMgr filestate.Manager,
	logParser parser.LogParser,
	producer kafka.LogProducer,
) LogProducerService {
	return &logProducerService{
		cfg:      &cfg.LogProcessor,
		stateMgr: stateMgr,
		parser:   logParser,
		producer: producer,
	}
}

func (s *logProducerService) ProcessLogs(ctx context.Context) error {
	if !s.processLock.TryLock() {
		log.Warn().Msg("Log processing already in progress, skipping run.")
		return nil
	}
	defer s.processLock.Unlock()

	log.Info().Msg("Starting log scan cycle...")
	startTime := time.Now()

	currentState, err := s.stateMgr.LoadState()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load scan state")
		return fmt.Errorf("failed to load scan state: %w", err)
	}

	newState := make(filestate.ScanState, len(currentState))
	for k, v := range currentState {
		newState[k] = v
	}

	logFiles, err := s.findLogFiles()
	if err != nil {
		log.Error().Err(err).Msg("Failed to find log files")
		return fmt.Errorf("failed to find log files: %w", err)
	}
	log.Debug().Int("file_count", len(logFiles)).Msg("Found log files to scan")

	var totalLinesRead int64
	var totalRecordsSent int64
	var pending []model.LogRecord

	for _, filePath := range logFiles {
		linesRead, newOffset, records, err := s.scanFile(ctx, filePath, newState)
		if err != nil {
			log.Error().Err(err).Str("file", filePath).Msg("Failed to scan file")
			newState[filePath] = currentState[filePath]
			continue
		}

		newState[filePath] = newOffset
		if linesRead > 0 {
			totalLinesRead += linesRead
			pending = append(pending, records...)

			if len(pending) >= s.cfg.BatchSize {
				batch := make([]model.LogRecord, len(pending))
				copy(batch, pending)
				pending = pending[:0]

				if err := s.producer.Produce(ctx, batch); err != nil {
					log.Error().Err(err).Msg("Failed to send batch to Kafka")
				} else {
					totalRecordsSent += int64(len(batch))
				}
			}
		}
	}

	if len(pending) > 0 {
		if err := s.producer.Produce(ctx, pending); err != nil {
			log.Error().Err(err).Msg("Failed to send final batch to Kafka")
		} else {
			totalRecordsSent += int64(len(pending))
		}
	}

	if err := s.stateMgr.SaveState(newState); err != nil {
		log.Error().Err(err).Msg("Failed to save scan state")
		return fmt.Errorf("failed to save scan state: %w", err)
	}

	log.Info().
		Int64("lines_read", totalLinesRead).
		Int64("records_sent", totalRecordsSent).
		Int("files_scanned", len(logFiles)).
		Dur("duration", time.Since(startTime)).
		Msg("Finished log scan cycle.")

	return nil
}

func (s *logProducerService) findLogFiles() ([]string, error) {
	var logFiles []string
	appDirs, err := os.ReadDir(s.cfg.LogDirectory)
	if err != nil {
		return nil, fmt.Errorf("failed to read log directory: %w", err)
	}
	for _, appDir := range appDirs {
		if appDir.IsDir() && strings.HasPrefix(appDir.Name(), "application") {
			appDirPath := filepath.Join(s.cfg.LogDirectory, appDir.Name())
			files, err := os.ReadDir(appDirPath)
			if err != nil {
				log.Warn().Err(err).Str("dir", appDirPath).Msg("Failed to read application directory")
				continue
			}
			for _, file := range files {
				if !file.IsDir() && strings.HasSuffix(file.Name(), ".log") {
					logFiles = append(logFiles, filepath.Join(appDirPath, file.Name()))
				}
			}
		}
	}
	return logFiles, nil
}

// scanFile reads a file from its last known offset, grouping header
// lines with their continuation lines into single records.
func (s *logProducerService) scanFile(ctx context.Context, filePath string, state filestate.ScanState) (linesRead int64, newOffset int64, records []model.LogRecord, err error) {
	lastOffset := state[filePath]

	file, err := os.Open(filePath)
	if err != nil {
		return 0, lastOffset, nil, fmt.Errorf("failed to open file %s: %w", filePath, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return 0, lastOffset, nil, fmt.Errorf("failed to stat file %s: %w", filePath, err)
	}
	if info.Size() < lastOffset {
		log.Warn().Str("file", filePath).Int64("last_offset", lastOffset).Int64("current_size", info.Size()).Msg("File truncated or rotated, resetting offset.")
		lastOffset = 0
	}

	if _, err = file.Seek(lastOffset, 0); err != nil {
		return 0, lastOffset, nil, fmt.Errorf("failed to seek file %s to offset %d: %w", filePath, lastOffset, err)
	}

	serviceID := parser.ExtractServiceID(filePath)
	scanner := bufio.NewScanner(file)
	currentOffset := lastOffset

	var entryBuffer strings.Builder

	finalizeEntry := func() {
		content := entryBuffer.String()
		entryBuffer.Reset()
		if strings.TrimSpace(content) == "" {
			return
		}
		record, parseErr := s.parser.Parse(content, filePath)
		if parseErr != nil {
			log.Warn().Err(parseErr).Str("file", filePath).Msg("Skipping unparseable log entry")
			return
		}
		if record.Service == "" {
			record.Service = serviceID
		}
		records = append(records, *record)
	}

	for scanner.Scan() {
		line := scanner.Text()
		linesRead++
		currentOffset += int64(len(line)) + 1

		select {
		case <-ctx.Done():
			finalizeEntry()
			return linesRead, currentOffset, records, ctx.Err()
		default:
		}

		if s.parser.IsHeaderLine(line) {
			finalizeEntry()
			entryBuffer.WriteString(line)
		} else if entryBuffer.Len() > 0 {
			entryBuffer.WriteString("\n")
			entryBuffer.WriteString(line)
		} else {
			log.Warn().Str("file", filePath).Str("line", line).Msg("Orphan continuation line, skipping")
		}
	}

	if err := scanner.Err(); err != nil {
		finalizeEntry()
		return linesRead, currentOffset, records, fmt.Errorf("error reading file %s: %w", filePath, err)
	}

	finalizeEntry()

	log.Debug().Str("file", filePath).Int64("lines_read", linesRead).Int("records_created", len(records)).Msg("Finished scanning file")
	return linesRead, currentOffset, records, nil
}
