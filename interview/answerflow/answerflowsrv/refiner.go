package answerflowsrv

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Abraxas-365/gapflow/internal/ai/llmrouter"
	"github.com/Abraxas-365/gapflow/interview/answerflow"
)

// Refiner rewrites an answer to address the evaluator's issues,
// folding in whatever additional data the user supplied. Empty
// additional data is allowed; the rewrite just has less to work with.
type Refiner struct {
	llm         answerflow.TextGenerator
	model       string
	temperature float64
}

func NewRefiner(llm answerflow.TextGenerator, model string, temperature float64) *Refiner {
	return &Refiner{llm: llm, model: model, temperature: temperature}
}

func (r *Refiner) Refine(ctx context.Context, state *answerflow.WorkflowState) (string, []string, error) {
	raw, _, err := r.llm.Generate(ctx, llmrouter.Request{
		Model:       r.model,
		System:      answerRefinementSystem,
		Prompt:      buildRefinementPrompt(state),
		Temperature: r.temperature,
	})
	if err != nil {
		return "", nil, err
	}

	jsonPart := extractJSON(raw)
	if jsonPart != "" {
		var payload struct {
			RefinedAnswer    string   `json:"refined_answer"`
			ImprovementsMade []string `json:"improvements_made"`
		}
		if err := json.Unmarshal([]byte(jsonPart), &payload); err == nil && payload.RefinedAnswer != "" {
			return strings.TrimSpace(payload.RefinedAnswer), payload.ImprovementsMade, nil
		}
	}

	// Model ignored the schema; take the prose if there is any
	if text := strings.TrimSpace(raw); text != "" {
		return text, nil, nil
	}
	return "", nil, fmt.Errorf("refiner returned empty output")
}
