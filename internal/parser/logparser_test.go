package parser_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wrferreira1003/Bug-Finder/internal/model"
	"github.com/wrferreira1003/Bug-Finder/internal/parser"
)

func TestStructuredLogParser_ParseText(t *testing.T) {
	logParser := parser.NewStructuredLogParser()

	tests := []struct {
		name        string
		content     string
		source      string
		expectError bool
		expected    *model.LogRecord
	}{
		{
			name:    "Valid Error Line",
			content: "2024-03-14 10:22:01 ERROR payment-service: database connection refused",
			source:  "/logs/application_12345_0001/container.log",
			expected: &model.LogRecord{
				Timestamp:  mustParseTime(t, "2024-03-14 10:22:01"),
				Level:      model.LevelError,
				Message:    "database connection refused",
				Component:  "payment-service",
				SourceFile: "/logs/application_12345_0001/container.log",
				Raw:        "2024-03-14 10:22:01 ERROR payment-service: database connection refused",
			},
		},
		{
			name:    "Fatal Folds To Critical",
			content: "2024-03-14 10:22:01 FATAL db.pool: out of connections",
			expected: &model.LogRecord{
				Timestamp: mustParseTime(t, "2024-03-14 10:22:01"),
				Level:     model.LevelCritical,
				Message:   "out of connections",
				Component: "db.pool",
				Raw:       "2024-03-14 10:22:01 FATAL db.pool: out of connections",
			},
		},
		{
			name: "Continuation Lines Become Stack Trace",
			content: "2024-03-14 10:22:01 ERROR api: panic serving request\n" +
				"  at handler.Process(handler.go:42)\n" +
				"  at server.Serve(server.go:101)",
			expected: &model.LogRecord{
				Timestamp:  mustParseTime(t, "2024-03-14 10:22:01"),
				Level:      model.LevelError,
				Message:    "panic serving request",
				Component:  "api",
				StackTrace: "at handler.Process(handler.go:42)\n  at server.Serve(server.go:101)",
				Raw: "2024-03-14 10:22:01 ERROR api: panic serving request\n" +
					"  at handler.Process(handler.go:42)\n" +
					"  at server.Serve(server.go:101)",
			},
		},
		{
			name:        "Empty Content",
			content:     "   ",
			expectError: true,
		},
		{
			name:        "Unstructured Line",
			content:     "this is not a log line",
			expectError: true,
		},
		{
			name:        "Unknown Level",
			content:     "2024-03-14 10:22:01 BANANA api: something",
			expectError: true,
		},
		{
			name:        "Missing Message",
			content:     "2024-03-14 10:22:01 ERROR api:   ",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record, err := logParser.Parse(tt.content, tt.source)
			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, record)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, record)
			assert.Equal(t, tt.expected.Timestamp, record.Timestamp)
			assert.Equal(t, tt.expected.Level, record.Level)
			assert.Equal(t, tt.expected.Message, record.Message)
			assert.Equal(t, tt.expected.Component, record.Component)
			assert.Equal(t, tt.expected.StackTrace, record.StackTrace)
			assert.Equal(t, tt.expected.Raw, record.Raw)
		})
	}
}

func TestStructuredLogParser_ParseJSON(t *testing.T) {
	logParser := parser.NewStructuredLogParser()

	content := `{"timestamp":"2024-03-14T10:22:01Z","level":"error","message":"database connection refused","service":"payments","component":"db.pool","stack_trace":"at pool.go:12"}`
	record, err := logParser.Parse(content, "api")
	require.NoError(t, err)
	assert.Equal(t, model.LevelError, record.Level)
	assert.Equal(t, "database connection refused", record.Message)
	assert.Equal(t, "payments", record.Service)
	assert.Equal(t, "db.pool", record.Component)
	assert.Equal(t, "at pool.go:12", record.StackTrace)
	assert.Equal(t, time.Date(2024, 3, 14, 10, 22, 1, 0, time.UTC), record.Timestamp)

	_, err = logParser.Parse(`{"level":"error"}`, "api")
	assert.Error(t, err, "JSON without message must be rejected")

	_, err = logParser.Parse(`{"level":"wat","message":"x"}`, "api")
	assert.Error(t, err, "unknown level must be rejected")

	_, err = logParser.Parse(`{not json`, "api")
	assert.Error(t, err)
}

func TestStructuredLogParser_IsHeaderLine(t *testing.T) {
	logParser := parser.NewStructuredLogParser()

	assert.True(t, logParser.IsHeaderLine("2024-03-14 10:22:01 ERROR api: boom"))
	assert.True(t, logParser.IsHeaderLine(`{"level":"error","message":"boom"}`))
	assert.False(t, logParser.IsHeaderLine("  at handler.Process(handler.go:42)"))
	assert.False(t, logParser.IsHeaderLine("caused by: java.io.IOException"))
}

func TestExtractServiceID(t *testing.T) {
	assert.Equal(t, "application_12345_0001", parser.ExtractServiceID("/logs/application_12345_0001/container.log"))
	assert.Equal(t, "unknown_service", parser.ExtractServiceID("/var/log/system.log"))
}

func mustParseTime(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse("2006-01-02 15:04:05", value)
	require.NoError(t, err)
	return ts.UTC()
}
