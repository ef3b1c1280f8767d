package schema

// Severity ranks a detected issue.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Weight returns the health-score penalty for the severity.
// These exact values are a compatibility contract with downstream
// consumers of the health score, not a tuning knob.
func (s Severity) Weight() int {
	switch s {
	case SeverityCritical:
		return 25
	case SeverityHigh:
		return 15
	case SeverityMedium:
		return 5
	case SeverityLow:
		return 2
	default:
		return 0
	}
}

// Level returns the numeric rank (higher = more severe), used for ordering.
func (s Severity) Level() int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// Issue categories. Each rule belongs to exactly one.
const (
	CategoryStructure     = "structure"
	CategoryErrorHandling = "error-handling"
	CategoryConfiguration = "configuration"
	CategorySecurity      = "security"
	CategoryPerformance   = "performance"
	CategoryMaintenance   = "maintenance"
)

// Issue is a single finding produced by exactly one detector rule.
// Findings are never merged or deduplicated across rules: overlapping
// issues from independent rules are independent evidence.
type Issue struct {
	Severity      Severity `json:"severity"`
	Category      string   `json:"category"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	NodeRefs      []string `json:"nodeRefs,omitempty"`
	FixSuggestion string   `json:"fixSuggestion"`
}

// IssueSummary counts issues by severity.
type IssueSummary struct {
	Critical int `json:"critical"`
	High     int `json:"high"`
	Medium   int `json:"medium"`
	Low      int `json:"low"`
	Total    int `json:"total"`
}

// Summarize tallies a list of issues by severity.
func Summarize(issues []Issue) IssueSummary {
	var s IssueSummary
	for _, iss := range issues {
		switch iss.Severity {
		case SeverityCritical:
			s.Critical++
		case SeverityHigh:
			s.High++
		case SeverityMedium:
			s.Medium++
		case SeverityLow:
			s.Low++
		}
	}
	s.Total = len(issues)
	return s
}
