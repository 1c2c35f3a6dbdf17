package answerflowsrv

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Abraxas-365/gapflow/internal/ai/llmrouter"
	"github.com/Abraxas-365/gapflow/interview/answerflow"
)

// AnswerGenerator turns collected inputs into professional prose
type AnswerGenerator struct {
	llm         answerflow.TextGenerator
	model       string
	temperature float64
}

func NewAnswerGenerator(llm answerflow.TextGenerator, model string, temperature float64) *AnswerGenerator {
	return &AnswerGenerator{llm: llm, model: model, temperature: temperature}
}

func (g *AnswerGenerator) Generate(ctx context.Context, state *answerflow.WorkflowState) (string, error) {
	raw, _, err := g.llm.Generate(ctx, llmrouter.Request{
		Model:       g.model,
		System:      answerGenerationSystem,
		Prompt:      buildGenerationPrompt(state),
		Temperature: g.temperature,
	})
	if err != nil {
		return "", err
	}

	jsonPart := extractJSON(raw)
	if jsonPart != "" {
		var payload struct {
			ProfessionalAnswer string `json:"professional_answer"`
		}
		if err := json.Unmarshal([]byte(jsonPart), &payload); err == nil && payload.ProfessionalAnswer != "" {
			return strings.TrimSpace(payload.ProfessionalAnswer), nil
		}
	}

	if text := strings.TrimSpace(raw); text != "" {
		return text, nil
	}
	return "", fmt.Errorf("answer generator returned empty output")
}
