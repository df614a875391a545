package classifier

import (
	"strings"
	"time"

	"github.com/wrferreira1003/Bug-Finder/internal/model"
)

// Classifier maps a LogRecord to a BugAnalysis using deterministic
// keyword heuristics. It performs no I/O; the same record and
// configuration always yield the same analysis.
type Classifier struct {
	minConfidence float64
}

func New(minConfidence float64) *Classifier {
	return &Classifier{minConfidence: minConfidence}
}

// categoryPattern maps a keyword to its category and the confidence it
// contributes when matched.
type categoryPattern struct {
	keyword  string
	category model.BugCategory
	weight   float64
}

// Patterns are checked against the lowercased message and stack trace.
// Order matters: the first matching category wins the tag, but every
// match contributes its weight to the confidence score.
var patterns = []categoryPattern{
	{"connection refused", model.CategoryDatabase, 0.25},
	{"database", model.CategoryDatabase, 0.20},
	{"sql", model.CategoryDatabase, 0.15},
	{"deadlock", model.CategoryDatabase, 0.25},
	{"unauthorized", model.CategoryAuthentication, 0.20},
	{"authentication failed", model.CategoryAuthentication, 0.25},
	{"invalid token", model.CategoryAuthentication, 0.20},
	{"permission denied", model.CategorySecurity, 0.20},
	{"injection", model.CategorySecurity, 0.25},
	{"timeout", model.CategoryNetwork, 0.15},
	{"connection reset", model.CategoryNetwork, 0.20},
	{"unreachable", model.CategoryNetwork, 0.20},
	{"dns", model.CategoryNetwork, 0.15},
	{"status 500", model.CategoryAPI, 0.20},
	{"internal server error", model.CategoryAPI, 0.20},
	{"bad gateway", model.CategoryAPI, 0.20},
	{"null pointer", model.CategoryAPI, 0.20},
	{"nil pointer", model.CategoryAPI, 0.20},
	{"panic", model.CategoryAPI, 0.25},
	{"out of memory", model.CategoryPerformance, 0.25},
	{"slow query", model.CategoryPerformance, 0.15},
	{"memory leak", model.CategoryPerformance, 0.20},
	{"corrupt", model.CategoryDataIntegrity, 0.25},
	{"constraint violation", model.CategoryDataIntegrity, 0.20},
	{"checksum mismatch", model.CategoryDataIntegrity, 0.25},
	{"rate limit", model.CategoryThirdParty, 0.15},
	{"upstream", model.CategoryThirdParty, 0.10},
}

// baseConfidence is the contribution of the log level itself.
func baseConfidence(level model.LogLevel) float64 {
	switch level {
	case model.LevelCritical:
		return 0.6
	case model.LevelError:
		return 0.5
	case model.LevelWarning:
		return 0.3
	default:
		return 0.0
	}
}

func severityFor(level model.LogLevel, matched int) model.BugSeverity {
	switch level {
	case model.LevelCritical:
		return model.SeverityCritical
	case model.LevelError:
		if matched >= 2 {
			return model.SeverityHigh
		}
		return model.SeverityMedium
	case model.LevelWarning:
		if matched >= 2 {
			return model.SeverityMedium
		}
		return model.SeverityLow
	}
	return model.SeverityLow
}

// Classify derives a BugAnalysis from the record. ShouldFile is true
// only when the record looks like a real bug, confidence reaches the
// configured minimum, and severity is at least medium. DEBUG and INFO
// records never file.
func (c *Classifier) Classify(record *model.LogRecord) *model.BugAnalysis {
	analysis := &model.BugAnalysis{
		AnalyzedAt: time.Now().UTC(),
		Category:   model.CategoryUnknown,
	}

	if record.Level.Rank() < model.LevelWarning.Rank() {
		// Informational log: not a bug, nothing to file.
		analysis.Confidence = 0
		return analysis
	}

	haystack := strings.ToLower(record.Message)
	if record.StackTrace != "" {
		haystack += "\n" + strings.ToLower(record.StackTrace)
	}

	confidence := baseConfidence(record.Level)
	matched := 0
	for _, p := range patterns {
		if strings.Contains(haystack, p.keyword) {
			if analysis.Category == model.CategoryUnknown {
				analysis.Category = p.category
			}
			confidence += p.weight
			matched++
		}
	}
	if record.StackTrace != "" {
		confidence += 0.1
	}
	if confidence > 1.0 {
		confidence = 1.0
	}

	analysis.IsBug = record.Level.Rank() >= model.LevelError.Rank() || matched > 0
	analysis.Confidence = confidence
	analysis.Severity = severityFor(record.Level, matched)
	analysis.TitleHint = titleHint(record)
	if record.Component != "" {
		analysis.AffectedComponents = []string{record.Component}
	}
	analysis.SuggestedLabels = []string{string(analysis.Severity), string(analysis.Category)}

	analysis.ShouldFile = analysis.IsBug &&
		analysis.Confidence >= c.minConfidence &&
		analysis.Severity.Rank() >= model.SeverityMedium.Rank()

	return analysis
}

// titleHint condenses the message into a short issue title candidate.
func titleHint(record *model.LogRecord) string {
	msg := record.Message
	if idx := strings.IndexAny(msg, "\n"); idx > 0 {
		msg = msg[:idx]
	}
	if len(msg) > 80 {
		msg = msg[:77] + "..."
	}
	return msg
}
