package question

import "github.com/Abraxas-365/gapflow/pkg/kernel"

// GenerateBatchRequest asks for one question per gap
type GenerateBatchRequest struct {
	Gaps     []Gap           `json:"gaps"`
	ParsedCV map[string]any  `json:"parsed_cv"`
	ParsedJD map[string]any  `json:"parsed_jd"`
	Language kernel.Language `json:"language"`
}

// Validate checks the request before fanout
func (r *GenerateBatchRequest) Validate() error {
	if len(r.Gaps) == 0 {
		return ErrNoGapsProvided()
	}
	for i, gap := range r.Gaps {
		if gap.Title == "" {
			return ErrInvalidBatchRequest().WithDetail("gap_index", i).WithDetail("reason", "title is required")
		}
	}
	return nil
}

// GenerateBatchResponse carries the ordered questions; entries with a
// non-empty error are placeholders for per-gap failures
type GenerateBatchResponse struct {
	Questions []Question `json:"questions"`
	Total     int        `json:"total"`
	Failed    int        `json:"failed"`
}
