package answerflow

import (
	"strings"
	"time"

	"github.com/Abraxas-365/gapflow/interview/question"
	"github.com/Abraxas-365/gapflow/interview/resource"
	"github.com/Abraxas-365/gapflow/pkg/kernel"
)

// MaxRefinementIterations bounds the evaluate -> refine loop. At the
// cap the current answer is accepted regardless of score.
const MaxRefinementIterations = 2

// Step is a node of the workflow graph
type Step string

const (
	StepStart           Step = "start"
	StepExperienceCheck Step = "experience_check"
	StepDeepDive        Step = "deep_dive"
	StepCollect         Step = "collect"
	StepGenerate        Step = "generate"
	StepEvaluate        Step = "evaluate"
	StepRefine          Step = "refine"
	StepLearning        Step = "learning"
	StepComplete        Step = "complete"
	StepError           Step = "error"
)

// IsTerminal reports whether the workflow ends at this step
func (s Step) IsTerminal() bool {
	return s == StepComplete || s == StepError
}

// ChosenPath is the branch taken after the experience check
type ChosenPath string

const (
	PathDeepDive          ChosenPath = "deep_dive"
	PathLearningResources ChosenPath = "learning_resources"
	PathSkip              ChosenPath = "skip"
)

// ExperienceResponse is the user's reply to the experience check
type ExperienceResponse string

const (
	ExperienceYes            ExperienceResponse = "yes"
	ExperienceNo             ExperienceResponse = "no"
	ExperienceWillingToLearn ExperienceResponse = "willing_to_learn"
)

// ParseExperienceResponse normalizes a raw reply. Anything
// unrecognized is treated as "no", which routes to the skip path.
func ParseExperienceResponse(raw string) ExperienceResponse {
	switch ExperienceResponse(strings.ToLower(strings.TrimSpace(raw))) {
	case ExperienceYes:
		return ExperienceYes
	case ExperienceWillingToLearn:
		return ExperienceWillingToLearn
	default:
		return ExperienceNo
	}
}

// SuggestionType discriminates the input widget a suggestion expects
type SuggestionType string

const (
	SuggestionText        SuggestionType = "text"
	SuggestionTextarea    SuggestionType = "textarea"
	SuggestionSelect      SuggestionType = "select"
	SuggestionMultiselect SuggestionType = "multiselect"
	SuggestionNumber      SuggestionType = "number"
)

// ImprovementSuggestion is a structured prompt shown to the user, both
// as a deep-dive question and as refinement guidance after a weak answer
type ImprovementSuggestion struct {
	ID       string         `json:"id,omitempty" mapstructure:"id"`
	Type     SuggestionType `json:"type" mapstructure:"type"`
	Title    string         `json:"title" mapstructure:"title"`
	Examples []string       `json:"examples" mapstructure:"examples"`
	HelpText string         `json:"help_text,omitempty" mapstructure:"help_text"`
	Options  []string       `json:"options,omitempty" mapstructure:"options"`
	Required bool           `json:"required" mapstructure:"required"`
}

// QualityIssue is one defect the evaluator found in an answer
type QualityIssue struct {
	Label       string `json:"label" mapstructure:"label"`
	Description string `json:"description" mapstructure:"description"`
}

// WorkflowState is the single authoritative bag of values carried
// through one question's workflow. Nodes mutate it strictly in
// sequence; it is snapshotted at every node boundary.
type WorkflowState struct {
	SessionID  kernel.SessionID  `json:"session_id,omitempty" mapstructure:"session_id"`
	QuestionID kernel.QuestionID `json:"question_id" mapstructure:"question_id"`

	// Inputs, required on entry
	QuestionText string          `json:"question_text" mapstructure:"question_text"`
	QuestionData map[string]any  `json:"question_data,omitempty" mapstructure:"question_data"`
	GapInfo      question.Gap    `json:"gap_info" mapstructure:"gap_info"`
	UserID       kernel.UserID   `json:"user_id" mapstructure:"user_id"`
	ParsedCV     map[string]any  `json:"parsed_cv,omitempty" mapstructure:"parsed_cv"`
	ParsedJD     map[string]any  `json:"parsed_jd,omitempty" mapstructure:"parsed_jd"`
	Language     kernel.Language `json:"language" mapstructure:"language"`
	StartedAt    time.Time       `json:"started_at" mapstructure:"started_at"`

	// Populated during execution
	CurrentStep             Step               `json:"current_step,omitempty" mapstructure:"current_step"`
	HasExperience           *bool              `json:"has_experience,omitempty" mapstructure:"has_experience"`
	ChosenPath              ChosenPath         `json:"chosen_path,omitempty" mapstructure:"chosen_path"`
	ExperienceCheckResponse ExperienceResponse `json:"experience_check_response,omitempty" mapstructure:"experience_check_response"`

	StructuredInputs map[string]any `json:"structured_inputs,omitempty" mapstructure:"structured_inputs"`
	RawAnswer        string         `json:"raw_answer,omitempty" mapstructure:"raw_answer"`
	AdditionalData   map[string]any `json:"additional_data,omitempty" mapstructure:"additional_data"`

	GeneratedAnswer        string                      `json:"generated_answer,omitempty" mapstructure:"generated_answer"`
	QualityScore           *int                        `json:"quality_score,omitempty" mapstructure:"quality_score"`
	QualityIssues          []QualityIssue              `json:"quality_issues,omitempty" mapstructure:"quality_issues"`
	QualityStrengths       []string                    `json:"quality_strengths,omitempty" mapstructure:"quality_strengths"`
	ImprovementSuggestions []ImprovementSuggestion     `json:"improvement_suggestions,omitempty" mapstructure:"improvement_suggestions"`
	RefinedAnswer          string                      `json:"refined_answer,omitempty" mapstructure:"refined_answer"`
	RefinementIteration    int                         `json:"refinement_iteration" mapstructure:"refinement_iteration"`
	LearningResources      []resource.LearningResource `json:"learning_resources,omitempty" mapstructure:"learning_resources"`

	// Terminal fields
	FinalAnswer      string     `json:"final_answer,omitempty" mapstructure:"final_answer"`
	AnswerAccepted   *bool      `json:"answer_accepted,omitempty" mapstructure:"answer_accepted"`
	CompletedAt      *time.Time `json:"completed_at,omitempty" mapstructure:"completed_at"`
	TotalTimeSeconds float64    `json:"total_time_seconds,omitempty" mapstructure:"total_time_seconds"`
	Error            string     `json:"error,omitempty" mapstructure:"error"`

	// Extra preserves snapshot fields this version does not know about
	Extra map[string]any `json:"-" mapstructure:",remain"`
}

// Validate checks the required-on-entry field set
func (s *WorkflowState) Validate() error {
	switch {
	case s.QuestionID.IsEmpty():
		return ErrValidation("question_id is required")
	case s.QuestionText == "":
		return ErrValidation("question_text is required")
	case s.UserID.IsEmpty():
		return ErrValidation("user_id is required")
	case s.RefinementIteration != 0:
		return ErrValidation("refinement_iteration must start at 0")
	default:
		return nil
	}
}

// Threshold is the minimum acceptable quality score for this workflow's gap
func (s *WorkflowState) Threshold() int {
	return s.GapInfo.Priority.QualityThreshold()
}

// HasCollectedInputs reports whether the user already supplied material
// for answer generation; the collect node pauses when this is false
func (s *WorkflowState) HasCollectedInputs() bool {
	return len(s.StructuredInputs) > 0 || strings.TrimSpace(s.RawAnswer) != ""
}

// IsTerminal reports whether the workflow reached a terminal step
func (s *WorkflowState) IsTerminal() bool {
	return s.CurrentStep.IsTerminal()
}
