package answerflow

import (
	"time"

	"github.com/Abraxas-365/gapflow/interview/question"
	"github.com/Abraxas-365/gapflow/pkg/kernel"
)

// StartRequest opens a workflow for one question
type StartRequest struct {
	QuestionID              kernel.QuestionID `json:"question_id"`
	QuestionText            string            `json:"question_text"`
	QuestionData            map[string]any    `json:"question_data,omitempty"`
	GapInfo                 question.Gap      `json:"gap_info"`
	UserID                  kernel.UserID     `json:"user_id"`
	ParsedCV                map[string]any    `json:"parsed_cv,omitempty"`
	ParsedJD                map[string]any    `json:"parsed_jd,omitempty"`
	Language                kernel.Language   `json:"language,omitempty"`
	ExperienceCheckResponse string            `json:"experience_check_response"`
	StructuredInputs        map[string]any    `json:"structured_inputs,omitempty"`
	RawAnswer               string            `json:"raw_answer,omitempty"`
}

// ToState builds the initial workflow state for this request
func (r *StartRequest) ToState() *WorkflowState {
	return &WorkflowState{
		QuestionID:              r.QuestionID,
		QuestionText:            r.QuestionText,
		QuestionData:            r.QuestionData,
		GapInfo:                 r.GapInfo,
		UserID:                  r.UserID,
		ParsedCV:                r.ParsedCV,
		ParsedJD:                r.ParsedJD,
		Language:                r.Language.OrDefault(),
		StartedAt:               time.Now().UTC(),
		CurrentStep:             StepStart,
		ExperienceCheckResponse: ParseExperienceResponse(r.ExperienceCheckResponse),
		StructuredInputs:        r.StructuredInputs,
		RawAnswer:               r.RawAnswer,
	}
}

// ResumeRequest continues a paused workflow with new user input
type ResumeRequest struct {
	SessionID        kernel.SessionID  `json:"session_id"`
	QuestionID       kernel.QuestionID `json:"question_id"`
	StructuredInputs map[string]any    `json:"structured_inputs,omitempty"`
	RawAnswer        string            `json:"raw_answer,omitempty"`
	AdditionalData   map[string]any    `json:"additional_data,omitempty"`
}

// StateSummary is the lightweight view used for session listings
type StateSummary struct {
	SessionID           kernel.SessionID  `json:"session_id"`
	QuestionID          kernel.QuestionID `json:"question_id"`
	CurrentStep         Step              `json:"current_step"`
	ChosenPath          ChosenPath        `json:"chosen_path,omitempty"`
	RefinementIteration int               `json:"refinement_iteration"`
	HasGeneratedAnswer  bool              `json:"has_generated_answer"`
	HasFinalAnswer      bool              `json:"has_final_answer"`
	Error               string            `json:"error,omitempty"`
	StartedAt           time.Time         `json:"started_at"`
}

// Summary projects a state into its listing view
func (s *WorkflowState) Summary() StateSummary {
	return StateSummary{
		SessionID:           s.SessionID,
		QuestionID:          s.QuestionID,
		CurrentStep:         s.CurrentStep,
		ChosenPath:          s.ChosenPath,
		RefinementIteration: s.RefinementIteration,
		HasGeneratedAnswer:  s.GeneratedAnswer != "",
		HasFinalAnswer:      s.FinalAnswer != "",
		Error:               s.Error,
		StartedAt:           s.StartedAt,
	}
}
