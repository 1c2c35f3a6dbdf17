package answerflowsrv

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Abraxas-365/gapflow/internal/ai/llmrouter"
	"github.com/Abraxas-365/gapflow/interview/answerflow"
)

const (
	minDeepDivePrompts = 3
	maxDeepDivePrompts = 6
)

// DeepDiveGenerator produces the structured prompts shown to a
// candidate who claims experience with the gap
type DeepDiveGenerator struct {
	llm         answerflow.TextGenerator
	model       string
	temperature float64
}

func NewDeepDiveGenerator(llm answerflow.TextGenerator, model string, temperature float64) *DeepDiveGenerator {
	return &DeepDiveGenerator{llm: llm, model: model, temperature: temperature}
}

// Generate returns between 3 and 6 suggestions. A thin model response
// is topped up from the standard prompt set rather than failing.
func (g *DeepDiveGenerator) Generate(ctx context.Context, state *answerflow.WorkflowState) ([]answerflow.ImprovementSuggestion, error) {
	raw, _, err := g.llm.Generate(ctx, llmrouter.Request{
		Model:       g.model,
		System:      deepDivePromptsSystem,
		Prompt:      buildDeepDivePrompt(state),
		Temperature: g.temperature,
	})
	if err != nil {
		return nil, err
	}

	prompts := parseDeepDivePrompts(raw)
	if len(prompts) < minDeepDivePrompts {
		prompts = topUpPrompts(prompts, state.GapInfo.Title)
	}
	if len(prompts) > maxDeepDivePrompts {
		prompts = prompts[:maxDeepDivePrompts]
	}
	return prompts, nil
}

type deepDivePromptPayload struct {
	ID          string   `json:"id"`
	Type        string   `json:"type"`
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	Placeholder string   `json:"placeholder"`
	HelpText    string   `json:"help_text"`
	Required    bool     `json:"required"`
}

func parseDeepDivePrompts(raw string) []answerflow.ImprovementSuggestion {
	jsonPart := extractJSON(raw)
	if jsonPart == "" {
		return nil
	}

	var payload struct {
		Prompts []deepDivePromptPayload `json:"prompts"`
	}
	if err := json.Unmarshal([]byte(jsonPart), &payload); err != nil {
		return nil
	}

	out := make([]answerflow.ImprovementSuggestion, 0, len(payload.Prompts))
	for i, p := range payload.Prompts {
		if p.Question == "" {
			continue
		}
		sug := answerflow.ImprovementSuggestion{
			ID:       p.ID,
			Type:     answerflow.SuggestionType(p.Type),
			Title:    p.Question,
			HelpText: p.HelpText,
			Options:  p.Options,
			Required: p.Required,
		}
		if sug.ID == "" {
			sug.ID = fmt.Sprintf("p%d", i+1)
		}
		if sug.Type == "" {
			sug.Type = answerflow.SuggestionText
		}
		if p.Placeholder != "" {
			sug.Examples = []string{p.Placeholder}
		}
		out = append(out, sug)
	}
	return out
}

// topUpPrompts fills out a thin set with the standard deep-dive prompts,
// skipping IDs already present
func topUpPrompts(prompts []answerflow.ImprovementSuggestion, gapTitle string) []answerflow.ImprovementSuggestion {
	have := make(map[string]struct{}, len(prompts))
	for _, p := range prompts {
		have[p.ID] = struct{}{}
	}
	for _, p := range defaultDeepDivePrompts(gapTitle) {
		if len(prompts) >= maxDeepDivePrompts {
			break
		}
		if _, ok := have[p.ID]; ok {
			continue
		}
		prompts = append(prompts, p)
	}
	return prompts
}

func defaultDeepDivePrompts(gapTitle string) []answerflow.ImprovementSuggestion {
	return []answerflow.ImprovementSuggestion{
		{
			ID:       "context",
			Type:     answerflow.SuggestionSelect,
			Title:    "Where did you gain this experience?",
			Options:  []string{"Work", "Side Project", "Online Course", "Hackathon", "Personal Learning"},
			Examples: []string{"Work"},
			Required: true,
		},
		{
			ID:       "duration",
			Type:     answerflow.SuggestionText,
			Title:    fmt.Sprintf("How long did you work with %s?", gapTitle),
			Examples: []string{"6 months", "2 projects"},
			Required: true,
		},
		{
			ID:       "tools",
			Type:     answerflow.SuggestionMultiselect,
			Title:    "Which specific tools/libraries did you use?",
			Examples: []string{"List the main ones"},
			Required: false,
		},
		{
			ID:       "achievement",
			Type:     answerflow.SuggestionTextarea,
			Title:    "What specific project/achievement can you describe?",
			Examples: []string{"Built a chatbot that handles 100+ queries daily"},
			HelpText: "Include what you built and the outcome",
			Required: true,
		},
		{
			ID:       "metrics",
			Type:     answerflow.SuggestionText,
			Title:    "Any measurable impact or results?",
			Examples: []string{"Reduced response time by 60%"},
			Required: false,
		},
	}
}
