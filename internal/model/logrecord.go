package model

import "time"

// LogLevel is the severity level carried by an incoming log line.
type LogLevel string

const (
	LevelDebug    LogLevel = "DEBUG"
	LevelInfo     LogLevel = "INFO"
	LevelWarning  LogLevel = "WARNING"
	LevelError    LogLevel = "ERROR"
	LevelCritical LogLevel = "CRITICAL"
)

// ParseLogLevel normalizes the level tokens seen in the wild. FATAL is
// folded into CRITICAL and WARN into WARNING.
func ParseLogLevel(s string) (LogLevel, bool) {
	switch s {
	case "DEBUG", "TRACE":
		return LevelDebug, true
	case "INFO":
		return LevelInfo, true
	case "WARN", "WARNING":
		return LevelWarning, true
	case "ERROR":
		return LevelError, true
	case "CRITICAL", "FATAL":
		return LevelCritical, true
	}
	return "", false
}

// Rank orders levels from DEBUG (0) to CRITICAL (4).
func (l LogLevel) Rank() int {
	switch l {
	case LevelDebug:
		return 0
	case LevelInfo:
		return 1
	case LevelWarning:
		return 2
	case LevelError:
		return 3
	case LevelCritical:
		return 4
	}
	return -1
}

// LogRecord is a structured log accepted into the pipeline. Records are
// immutable once parsed; re-parsing produces a new record.
type LogRecord struct {
	Timestamp  time.Time         `json:"@timestamp"`
	Level      LogLevel          `json:"level"`
	Message    string            `json:"message"`
	Service    string            `json:"service,omitempty"`
	Component  string            `json:"component,omitempty"`
	StackTrace string            `json:"stack_trace,omitempty"`
	SourceFile string            `json:"source_file,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	Raw        string            `json:"raw_log"`
}
