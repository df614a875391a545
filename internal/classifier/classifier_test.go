package classifier_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wrferreira1003/Bug-Finder/internal/classifier"
	"github.com/wrferreira1003/Bug-Finder/internal/model"
)

func TestClassify_CriticalDatabaseFailureFiles(t *testing.T) {
	c := classifier.New(0.7)

	analysis := c.Classify(&model.LogRecord{
		Level:     model.LevelCritical,
		Message:   "database connection refused",
		Component: "db.pool",
	})

	require.NotNil(t, analysis)
	assert.True(t, analysis.IsBug)
	assert.Equal(t, model.SeverityCritical, analysis.Severity)
	assert.Equal(t, model.CategoryDatabase, analysis.Category)
	assert.InDelta(t, 1.0, analysis.Confidence, 0.001)
	assert.True(t, analysis.ShouldFile)
	assert.Equal(t, []string{"db.pool"}, analysis.AffectedComponents)
	assert.Contains(t, analysis.SuggestedLabels, "critical")
	assert.Contains(t, analysis.SuggestedLabels, "database")
}

func TestClassify_InfoIsNeverABug(t *testing.T) {
	c := classifier.New(0.7)

	analysis := c.Classify(&model.LogRecord{
		Level:   model.LevelInfo,
		Message: "user login successful",
	})

	assert.False(t, analysis.IsBug)
	assert.False(t, analysis.ShouldFile)
	assert.Zero(t, analysis.Confidence)
}

func TestClassify_DebugIsNeverABug(t *testing.T) {
	c := classifier.New(0.0)

	analysis := c.Classify(&model.LogRecord{
		Level:   model.LevelDebug,
		Message: "database connection refused", // keywords alone must not matter
	})

	assert.False(t, analysis.IsBug)
	assert.False(t, analysis.ShouldFile)
}

func TestClassify_ErrorBelowThresholdDoesNotFile(t *testing.T) {
	c := classifier.New(0.7)

	// Plain ERROR with no matching keywords: base confidence 0.5.
	analysis := c.Classify(&model.LogRecord{
		Level:   model.LevelError,
		Message: "unexpected value encountered",
	})

	assert.True(t, analysis.IsBug)
	assert.InDelta(t, 0.5, analysis.Confidence, 0.001)
	assert.False(t, analysis.ShouldFile)
	assert.Equal(t, model.SeverityMedium, analysis.Severity)
	assert.Equal(t, model.CategoryUnknown, analysis.Category)
}

func TestClassify_WarningWithSingleMatchIsLowSeverity(t *testing.T) {
	c := classifier.New(0.7)

	analysis := c.Classify(&model.LogRecord{
		Level:   model.LevelWarning,
		Message: "request timeout while calling billing",
	})

	assert.True(t, analysis.IsBug)
	assert.Equal(t, model.SeverityLow, analysis.Severity)
	// Low severity never files, regardless of confidence.
	assert.False(t, analysis.ShouldFile)
}

func TestClassify_StackTraceRaisesConfidence(t *testing.T) {
	c := classifier.New(0.7)

	without := c.Classify(&model.LogRecord{
		Level:   model.LevelError,
		Message: "nil pointer dereference in checkout",
	})
	with := c.Classify(&model.LogRecord{
		Level:      model.LevelError,
		Message:    "nil pointer dereference in checkout",
		StackTrace: "at checkout.Process(checkout.go:88)",
	})

	assert.Greater(t, with.Confidence, without.Confidence)
	assert.Equal(t, model.CategoryAPI, with.Category)
	assert.True(t, with.ShouldFile)
}

func TestClassify_IsDeterministic(t *testing.T) {
	c := classifier.New(0.7)
	record := &model.LogRecord{
		Level:   model.LevelError,
		Message: "deadlock detected on orders table",
	}

	first := c.Classify(record)
	for i := 0; i < 5; i++ {
		again := c.Classify(record)
		assert.Equal(t, first.Confidence, again.Confidence)
		assert.Equal(t, first.Severity, again.Severity)
		assert.Equal(t, first.Category, again.Category)
		assert.Equal(t, first.ShouldFile, again.ShouldFile)
	}
}

func TestClassify_TitleHintTruncates(t *testing.T) {
	c := classifier.New(0.7)
	long := make([]byte, 120)
	for i := range long {
		long[i] = 'a'
	}

	analysis := c.Classify(&model.LogRecord{
		Level:   model.LevelError,
		Message: string(long),
	})

	assert.Len(t, analysis.TitleHint, 80)
	assert.Equal(t, "...", analysis.TitleHint[77:])
}
