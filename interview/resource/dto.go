package resource

import (
	"github.com/Abraxas-365/gapflow/pkg/kernel"
)

// SearchRequest asks for learning resources covering a skill gap
type SearchRequest struct {
	GapTitle       string          `json:"gap_title"`
	GapDescription string          `json:"gap_description,omitempty"`
	UserLevel      string          `json:"user_level,omitempty"`
	Mode           SearchMode      `json:"mode,omitempty"`
	Limit          int             `json:"limit,omitempty"`
	Language       kernel.Language `json:"language,omitempty"`
}

// Validate checks the request and normalizes defaults in place
func (r *SearchRequest) Validate() error {
	if r.GapTitle == "" {
		return ErrRegistry.New(CodeEmptyGapTitle)
	}
	if r.Mode != "" && !r.Mode.IsValid() {
		return ErrRegistry.New(CodeInvalidMode).WithDetail("mode", string(r.Mode))
	}
	r.Mode = r.Mode.OrDefault()
	if r.UserLevel == "" {
		r.UserLevel = "beginner"
	}
	if r.Limit <= 0 || r.Limit > 20 {
		r.Limit = 5
	}
	r.Language = r.Language.OrDefault()
	return nil
}

// SearchResponse carries ranked resources and which backends answered
type SearchResponse struct {
	Resources   []LearningResource `json:"resources"`
	Total       int                `json:"total"`
	SourcesUsed []string           `json:"sources_used"`
	Mode        SearchMode         `json:"search_mode"`
}
