package model

import "time"

// BugSeverity grades how critical a detected bug is.
type BugSeverity string

const (
	SeverityLow      BugSeverity = "low"
	SeverityMedium   BugSeverity = "medium"
	SeverityHigh     BugSeverity = "high"
	SeverityCritical BugSeverity = "critical"
)

// Rank orders severities from low (0) to critical (3).
func (s BugSeverity) Rank() int {
	switch s {
	case SeverityLow:
		return 0
	case SeverityMedium:
		return 1
	case SeverityHigh:
		return 2
	case SeverityCritical:
		return 3
	}
	return -1
}

// BugCategory tags the kind of problem found in a log.
type BugCategory string

const (
	CategoryAuthentication BugCategory = "authentication"
	CategoryDatabase       BugCategory = "database"
	CategoryAPI            BugCategory = "api"
	CategoryNetwork        BugCategory = "network"
	CategorySecurity       BugCategory = "security"
	CategoryPerformance    BugCategory = "performance"
	CategoryDataIntegrity  BugCategory = "data_integrity"
	CategoryThirdParty     BugCategory = "third_party"
	CategoryUnknown        BugCategory = "unknown"
)

// BugAnalysis is the verdict derived from one LogRecord. Instances are
// never mutated after creation; re-analysis creates a new one.
type BugAnalysis struct {
	IsBug      bool        `json:"is_bug"`
	Confidence float64     `json:"confidence"` // in [0,1]
	Severity   BugSeverity `json:"severity,omitempty"`
	Category   BugCategory `json:"category,omitempty"`
	ShouldFile bool        `json:"should_file"`

	TitleHint          string   `json:"title_hint,omitempty"`
	AffectedComponents []string `json:"affected_components,omitempty"`
	PossibleCauses     []string `json:"possible_causes,omitempty"`
	SuggestedLabels    []string `json:"suggested_labels,omitempty"`

	AnalyzedAt time.Time `json:"analyzed_at"`
}
