package question

import (
	"strings"

	"github.com/Abraxas-365/gapflow/pkg/kernel"
)

// Priority ranks how much a gap hurts the overall CV/JD fit score
type Priority string

const (
	PriorityCritical   Priority = "CRITICAL"
	PriorityHigh       Priority = "HIGH"
	PriorityImportant  Priority = "IMPORTANT"
	PriorityMedium     Priority = "MEDIUM"
	PriorityNiceToHave Priority = "NICE_TO_HAVE"
	PriorityLow        Priority = "LOW"
	PriorityLogistical Priority = "LOGISTICAL"
)

// ParsePriority normalizes a raw priority string
func ParsePriority(raw string) Priority {
	p := Priority(strings.ToUpper(strings.TrimSpace(raw)))
	switch p {
	case PriorityCritical, PriorityHigh, PriorityImportant,
		PriorityMedium, PriorityNiceToHave, PriorityLow, PriorityLogistical:
		return p
	default:
		return ""
	}
}

// QualityThreshold is the minimum quality score an answer must reach to
// be accepted for a gap of this priority. Unknown priorities use the
// strict default of 7.
func (p Priority) QualityThreshold() int {
	switch p {
	case PriorityCritical:
		return 8
	case PriorityHigh, PriorityImportant:
		return 7
	case PriorityMedium, PriorityNiceToHave:
		return 6
	case PriorityLow, PriorityLogistical:
		return 5
	default:
		return 7
	}
}

// Gap is one identified deficiency between the CV and the JD. Gaps are
// immutable inputs for the life of a workflow.
type Gap struct {
	ID          kernel.GapID `json:"id" mapstructure:"id"`
	Title       string       `json:"title" mapstructure:"title"`
	Description string       `json:"description" mapstructure:"description"`
	Priority    Priority     `json:"priority" mapstructure:"priority"`
	Impact      float64      `json:"impact" mapstructure:"impact"` // percentage contribution to the fit score
}

// Question is the interview question generated for one gap
type Question struct {
	ID           kernel.QuestionID `json:"id"`
	QuestionText string            `json:"question_text"`
	Title        string            `json:"title"`
	Priority     Priority          `json:"priority"`
	Number       int               `json:"number"`
	Error        string            `json:"error,omitempty"`
}

// HasError reports whether this entry is a generation-failure placeholder
func (q Question) HasError() bool { return q.Error != "" }
