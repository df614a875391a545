package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/wrferreira1003/Bug-Finder/config"
	"github.com/wrferreira1003/Bug-Finder/internal/classifier"
	"github.com/wrferreira1003/Bug-Finder/internal/dedup"
	"github.com/wrferreira1003/Bug-Finder/internal/discord"
	"github.com/wrferreira1003/Bug-Finder/internal/drafter"
	"github.com/wrferreira1003/Bug-Finder/internal/gate"
	"github.com/wrferreira1003/Bug-Finder/internal/github"
	"github.com/wrferreira1003/Bug-Finder/internal/llm"
	"github.com/wrferreira1003/Bug-Finder/internal/model"
	"github.com/wrferreira1003/Bug-Finder/internal/parser"
	"github.com/wrferreira1003/Bug-Finder/internal/repository"
	"github.com/wrferreira1003/Bug-Finder/internal/review"
	"github.com/wrferreira1003/Bug-Finder/internal/timescaledb"
)

// PipelineService runs a raw log record through classification,
// duplicate detection, drafting, review and publication.
type PipelineService interface {
	ProcessContent(ctx context.Context, content string, source string) *model.ProcessResult
	ProcessRecord(ctx context.Context, record *model.LogRecord) *model.ProcessResult
	AnalyzeContent(ctx context.Context, content string, source string) (*model.ProcessResult, error)
	Stats() model.PipelineStats
	StartedAt() time.Time
}

type pipelineService struct {
	parser      parser.LogParser
	classifier  *classifier.Classifier
	llmSvc      llm.Service // nil when LLM enrichment is disabled
	detector    *dedup.Detector
	drafter     *drafter.Drafter
	reviewLoop  *review.Loop
	gate        *gate.Gate
	publisher   github.Publisher
	notifier    discord.Notifier
	issueRepo   repository.IssueRepository
	metricStore timescaledb.MetricStore

	startedAt time.Time

	logsProcessed      uint64
	bugsFound          uint64
	duplicatesDetected uint64
	issuesCreated      uint64
	notificationsSent  uint64
	failures           uint64
}

func NewPipelineService(
	cfg *config.Config,
	logParser parser.LogParser,
	llmSvc llm.Service,
	publisher github.Publisher,
	notifier discord.Notifier,
	issueRepo repository.IssueRepository,
	metricStore timescaledb.MetricStore,
) PipelineService {
	var quality review.QualityReviewer
	var enricher llm.Service
	if cfg.Gemini.Enabled && llmSvc != nil {
		quality = llmSvc
		enricher = llmSvc
	}
	return &pipelineService{
		parser:      logParser,
		classifier:  classifier.New(cfg.Pipeline.MinConfidence),
		llmSvc:      enricher,
		detector:    dedup.New(cfg.Pipeline.SimilarityThreshold),
		drafter:     drafter.New(cfg.GitHub.DefaultLabels),
		reviewLoop:  review.NewLoop(cfg.Pipeline.MaxReviewIterations, quality),
		gate:        gate.New(cfg.Pipeline.MinConfidence, cfg.Pipeline.PublishUnreviewed),
		publisher:   publisher,
		notifier:    notifier,
		issueRepo:   issueRepo,
		metricStore: metricStore,
		startedAt:   time.Now().UTC(),
	}
}

func (s *pipelineService) StartedAt() time.Time {
	return s.startedAt
}

func (s *pipelineService) Stats() model.PipelineStats {
	return model.PipelineStats{
		LogsProcessed:      atomic.LoadUint64(&s.logsProcessed),
		BugsFound:          atomic.LoadUint64(&s.bugsFound),
		DuplicatesDetected: atomic.LoadUint64(&s.duplicatesDetected),
		IssuesCreated:      atomic.LoadUint64(&s.issuesCreated),
		NotificationsSent:  atomic.LoadUint64(&s.notificationsSent),
		Failures:           atomic.LoadUint64(&s.failures),
	}
}

// ProcessContent parses raw content first; malformed input ends the run
// with OutcomeRejected instead of an error.
func (s *pipelineService) ProcessContent(ctx context.Context, content string, source string) *model.ProcessResult {
	record, err := s.parser.Parse(content, source)
	if err != nil {
		result := s.newResult()
		result.Outcome = model.OutcomeRejected
		result.Reason = err.Error()
		result.FinishedAt = time.Now().UTC()
		log.Warn().Str("process_id", result.ProcessID).Err(err).Msg("Rejected malformed log content")
		return result
	}
	return s.ProcessRecord(ctx, record)
}

func (s *pipelineService) ProcessRecord(ctx context.Context, record *model.LogRecord) *model.ProcessResult {
	result := s.newResult()
	result.Record = record
	defer func() {
		result.FinishedAt = time.Now().UTC()
	}()

	atomic.AddUint64(&s.logsProcessed, 1)
	events := []model.MetricEvent{s.metricEvent("log_processed", record, nil)}
	defer s.flushMetrics(ctx, &events)

	analysis := s.classifier.Classify(record)
	result.Analysis = analysis

	if !analysis.IsBug {
		result.Outcome = model.OutcomeNoBug
		result.Reason = "record does not look like a bug"
		return result
	}

	atomic.AddUint64(&s.bugsFound, 1)
	events = append(events, s.metricEvent("bug_found", record, map[string]string{
		"severity": string(analysis.Severity),
		"category": string(analysis.Category),
	}))

	if !analysis.ShouldFile {
		result.Outcome = model.OutcomeLowConfidence
		result.Reason = fmt.Sprintf("confidence %.2f or severity %s below filing threshold", analysis.Confidence, analysis.Severity)
		return result
	}

	if s.llmSvc != nil {
		enriched, err := s.llmSvc.EnrichAnalysis(ctx, record, analysis)
		if err != nil {
			log.Warn().Str("process_id", result.ProcessID).Err(err).Msg("LLM enrichment failed, keeping heuristic analysis")
		} else {
			analysis = enriched
			result.Analysis = analysis
		}
	}

	prior, err := s.issueRepo.ListRecent(ctx, 0)
	if err != nil {
		log.Error().Str("process_id", result.ProcessID).Err(err).Msg("Failed to load prior issues for duplicate detection")
		prior = nil
	}
	verdict := s.detector.Check(analysis, record, prior)
	if verdict.IsDuplicate {
		atomic.AddUint64(&s.duplicatesDetected, 1)
		events = append(events, s.metricEvent("duplicate_detected", record, map[string]string{
			"matched_issue": fmt.Sprintf("%d", verdict.MatchedWith.Number),
		}))
		result.Outcome = model.OutcomeDuplicate
		result.DuplicateOf = verdict.MatchedWith
		result.Reason = fmt.Sprintf("similarity %.2f with issue #%d", verdict.Similarity, verdict.MatchedWith.Number)
		s.commentDuplicate(ctx, result, verdict, record)
		return result
	}

	draft := s.drafter.Draft(record, analysis)
	draft = s.reviewLoop.Run(ctx, draft, analysis)
	result.Draft = draft

	decision := s.gate.Decide(analysis, draft, &verdict)
	if !decision.Publish {
		result.Outcome = model.OutcomeNotPublished
		result.Reason = decision.Reason
		log.Info().Str("process_id", result.ProcessID).Str("reason", decision.Reason).Msg("Publication gate declined draft")
		return result
	}

	issue, err := s.publisher.CreateIssue(ctx, draft)
	if err != nil {
		atomic.AddUint64(&s.failures, 1)
		result.Outcome = model.OutcomePublishFailed
		result.Reason = err.Error()
		log.Error().Str("process_id", result.ProcessID).Err(err).Msg("Failed to publish issue")
		return result
	}
	draft.Status = model.StatusPublished
	result.Issue = issue
	atomic.AddUint64(&s.issuesCreated, 1)
	events = append(events, s.metricEvent("issue_created", record, map[string]string{
		"issue_number": fmt.Sprintf("%d", issue.Number),
		"severity":     string(analysis.Severity),
	}))

	issueRecord := &model.IssueRecord{
		Number:      issue.Number,
		Title:       draft.Title,
		HTMLURL:     issue.HTMLURL,
		Severity:    string(analysis.Severity),
		Category:    string(analysis.Category),
		Fingerprint: dedup.Fingerprint(analysis.Category, record.Message),
		Confidence:  analysis.Confidence,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.issueRepo.Save(ctx, issueRecord); err != nil {
		log.Error().Str("process_id", result.ProcessID).Err(err).Msg("Failed to persist issue record; future duplicates of this bug may file again")
	}

	notification := s.notifier.NotifyIssue(ctx, issue, analysis, record.Message)
	result.Notification = notification
	if notification.Outcome == model.DeliveryDelivered {
		atomic.AddUint64(&s.notificationsSent, 1)
		events = append(events, s.metricEvent("notification_sent", record, nil))
		result.Outcome = model.OutcomePublished
	} else {
		atomic.AddUint64(&s.failures, 1)
		result.Outcome = model.OutcomeNotifyFailed
		result.Reason = notification.Error
	}

	log.Info().
		Str("process_id", result.ProcessID).
		Str("outcome", string(result.Outcome)).
		Int("issue_number", issue.Number).
		Msg("Pipeline run finished")
	return result
}

// AnalyzeContent runs classification and duplicate detection without
// publishing anything. The returned outcome states what a real run
// would have done.
func (s *pipelineService) AnalyzeContent(ctx context.Context, content string, source string) (*model.ProcessResult, error) {
	record, err := s.parser.Parse(content, source)
	if err != nil {
		return nil, err
	}

	result := s.newResult()
	result.Record = record
	defer func() {
		result.FinishedAt = time.Now().UTC()
	}()

	analysis := s.classifier.Classify(record)
	result.Analysis = analysis

	if !analysis.IsBug {
		result.Outcome = model.OutcomeNoBug
		return result, nil
	}
	if !analysis.ShouldFile {
		result.Outcome = model.OutcomeLowConfidence
		return result, nil
	}

	prior, err := s.issueRepo.ListRecent(ctx, 0)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load prior issues during dry-run analysis")
		prior = nil
	}
	verdict := s.detector.Check(analysis, record, prior)
	if verdict.IsDuplicate {
		result.Outcome = model.OutcomeDuplicate
		result.DuplicateOf = verdict.MatchedWith
		result.Reason = fmt.Sprintf("similarity %.2f with issue #%d", verdict.Similarity, verdict.MatchedWith.Number)
		return result, nil
	}

	result.Draft = s.drafter.Draft(record, analysis)
	result.Outcome = model.OutcomeNotPublished
	result.Reason = "dry run, nothing published"
	return result, nil
}

// commentDuplicate leaves a recurrence note on the matched issue. Best
// effort; a failed comment never fails the run.
func (s *pipelineService) commentDuplicate(ctx context.Context, result *model.ProcessResult, verdict dedup.Verdict, record *model.LogRecord) {
	body := fmt.Sprintf("Another occurrence of this bug was detected (similarity %.2f).\n\n```\n%s\n```", verdict.Similarity, record.Message)
	if err := s.publisher.CommentOnIssue(ctx, verdict.MatchedWith.Number, body); err != nil {
		log.Warn().Str("process_id", result.ProcessID).Int("issue_number", verdict.MatchedWith.Number).Err(err).Msg("Failed to comment on duplicate issue")
	}
}

func (s *pipelineService) newResult() *model.ProcessResult {
	return &model.ProcessResult{
		ProcessID: uuid.NewString(),
		StartedAt: time.Now().UTC(),
	}
}

func (s *pipelineService) metricEvent(name string, record *model.LogRecord, tags map[string]string) model.MetricEvent {
	return model.MetricEvent{
		Time:       time.Now().UTC(),
		MetricName: name,
		Service:    record.Service,
		Tags:       tags,
	}
}

func (s *pipelineService) flushMetrics(ctx context.Context, events *[]model.MetricEvent) {
	if s.metricStore == nil || len(*events) == 0 {
		return
	}
	if err := s.metricStore.StoreMetricEvents(ctx, *events); err != nil {
		log.Warn().Err(err).Msg("Failed to store pipeline metric events")
	}
}
