package parser

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/wrferreira1003/Bug-Finder/internal/model"
)

// LogParser turns raw log content into a LogRecord. Content may be a
// plain text line (optionally followed by stack trace lines) or a JSON
// object. Malformed content is rejected here, before classification.
type LogParser interface {
	Parse(content string, source string) (*model.LogRecord, error)
	// IsHeaderLine reports whether a line starts a new record; lines
	// that don't are continuations (stack trace frames).
	IsHeaderLine(line string) bool
}

type structuredLogParser struct {
	lineRegex *regexp.Regexp
}

func NewStructuredLogParser() LogParser {
	// Groups: 1:Date, 2:Time, 3:Level, 4:Component, 5:Message
	regex := regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})[T ](\d{2}:\d{2}:\d{2})Z?\s+(\w+)\s+([\w\.\-]+)\s*:\s*(.*)$`)
	return &structuredLogParser{lineRegex: regex}
}

// jsonRecord is the accepted wire form for structured submissions.
type jsonRecord struct {
	Timestamp  string            `json:"timestamp"`
	Level      string            `json:"level"`
	Message    string            `json:"message"`
	Service    string            `json:"service"`
	Component  string            `json:"component"`
	StackTrace string            `json:"stack_trace"`
	Metadata   map[string]string `json:"metadata"`
}

func (p *structuredLogParser) Parse(content string, source string) (*model.LogRecord, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return nil, fmt.Errorf("empty log content")
	}

	if strings.HasPrefix(trimmed, "{") {
		return p.parseJSON(trimmed, source)
	}
	return p.parseText(trimmed, source)
}

func (p *structuredLogParser) parseJSON(content string, source string) (*model.LogRecord, error) {
	var jr jsonRecord
	if err := json.Unmarshal([]byte(content), &jr); err != nil {
		log.Debug().Err(err).Msg("Log content is not valid JSON")
		return nil, fmt.Errorf("invalid JSON log: %w", err)
	}

	if strings.TrimSpace(jr.Message) == "" {
		return nil, fmt.Errorf("JSON log has no message field")
	}

	level, ok := model.ParseLogLevel(strings.ToUpper(strings.TrimSpace(jr.Level)))
	if !ok {
		return nil, fmt.Errorf("JSON log has unknown level %q", jr.Level)
	}

	timestamp := time.Now().UTC()
	if jr.Timestamp != "" {
		ts, err := time.Parse(time.RFC3339, jr.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("failed to parse timestamp %q: %w", jr.Timestamp, err)
		}
		timestamp = ts.UTC()
	}

	return &model.LogRecord{
		Timestamp:  timestamp,
		Level:      level,
		Message:    strings.TrimSpace(jr.Message),
		Service:    jr.Service,
		Component:  jr.Component,
		StackTrace: jr.StackTrace,
		SourceFile: source,
		Metadata:   jr.Metadata,
		Raw:        content,
	}, nil
}

func (p *structuredLogParser) parseText(content string, source string) (*model.LogRecord, error) {
	lines := strings.Split(content, "\n")
	first := strings.TrimRight(lines[0], "\r")

	matches := p.lineRegex.FindStringSubmatch(first)
	if len(matches) != 6 {
		log.Debug().Str("line", first).Msg("Log line did not match expected format")
		return nil, fmt.Errorf("line does not match expected format: %s", first)
	}

	dateStr := matches[1]
	timeStr := matches[2]
	levelStr := strings.ToUpper(matches[3])
	component := matches[4]
	message := strings.TrimSpace(matches[5])

	level, ok := model.ParseLogLevel(levelStr)
	if !ok {
		return nil, fmt.Errorf("unknown log level %q", levelStr)
	}
	if message == "" {
		return nil, fmt.Errorf("log line has no message: %s", first)
	}

	const layout = "2006-01-02 15:04:05"
	timestamp, err := time.Parse(layout, dateStr+" "+timeStr)
	if err != nil {
		log.Error().Err(err).Str("datetime_string", dateStr+" "+timeStr).Msg("Failed to parse log timestamp")
		return nil, fmt.Errorf("failed to parse timestamp: %w", err)
	}

	// Continuation lines are the stack trace.
	var trace string
	if len(lines) > 1 {
		trace = strings.TrimSpace(strings.Join(lines[1:], "\n"))
	}

	return &model.LogRecord{
		Timestamp:  timestamp.UTC(),
		Level:      level,
		Message:    message,
		Component:  component,
		StackTrace: trace,
		SourceFile: source,
		Raw:        content,
	}, nil
}

func (p *structuredLogParser) IsHeaderLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	if strings.HasPrefix(trimmed, "{") {
		return true
	}
	return p.lineRegex.MatchString(strings.TrimRight(line, "\r"))
}

// ExtractServiceID derives the service identifier from the directory a
// log file was scanned from (e.g. application_12345_0001).
func ExtractServiceID(filePath string) string {
	dir := filepath.Dir(filePath)
	baseDir := filepath.Base(dir)
	if strings.HasPrefix(baseDir, "application_") {
		return baseDir
	}
	return "unknown_service"
}
