package answerflowsrv

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Abraxas-365/gapflow/internal/ai/llmrouter"
	"github.com/Abraxas-365/gapflow/interview/answerflow"
)

// Evaluation is the structured quality verdict on one answer. The
// Acceptable field is what the model claimed; the engine recomputes
// acceptance from (score, gap priority) and never trusts it.
type Evaluation struct {
	Score       int
	Issues      []answerflow.QualityIssue
	Strengths   []string
	Suggestions []answerflow.ImprovementSuggestion
	Acceptable  bool
}

// Evaluator turns a free-text answer into a quality verdict
type Evaluator struct {
	llm         answerflow.TextGenerator
	model       string
	temperature float64
}

func NewEvaluator(llm answerflow.TextGenerator, model string, temperature float64) *Evaluator {
	return &Evaluator{llm: llm, model: model, temperature: temperature}
}

func (e *Evaluator) Evaluate(ctx context.Context, questionText, answer string) (*Evaluation, error) {
	raw, _, err := e.llm.Generate(ctx, llmrouter.Request{
		Model:       e.model,
		System:      qualityEvaluationSystem,
		Prompt:      buildEvaluationPrompt(questionText, answer),
		Temperature: e.temperature,
	})
	if err != nil {
		return nil, err
	}
	return parseEvaluation(raw)
}

// evaluationPayload accepts both output shapes the model produces:
// strengths as plain strings or as {label, description} objects, and
// suggestion examples as a string or an array.
type evaluationPayload struct {
	QualityScore int                       `json:"quality_score"`
	Issues       []answerflow.QualityIssue `json:"issues"`
	Strengths    []json.RawMessage         `json:"strengths"`
	Suggestions  []suggestionPayload       `json:"suggestions"`
	IsAcceptable bool                      `json:"is_acceptable"`
}

type suggestionPayload struct {
	ID       string          `json:"id"`
	Type     string          `json:"type"`
	Title    string          `json:"title"`
	Examples json.RawMessage `json:"examples"`
	HelpText string          `json:"help_text"`
	Options  []string        `json:"options"`
	Required bool            `json:"required"`
}

func parseEvaluation(raw string) (*Evaluation, error) {
	jsonPart := extractJSON(raw)
	if jsonPart == "" {
		return nil, fmt.Errorf("evaluator returned no JSON object")
	}

	var payload evaluationPayload
	if err := json.Unmarshal([]byte(jsonPart), &payload); err != nil {
		return nil, fmt.Errorf("evaluator output: %w", err)
	}

	eval := &Evaluation{
		Score:      clampScore(payload.QualityScore),
		Issues:     payload.Issues,
		Acceptable: payload.IsAcceptable,
	}

	for _, entry := range payload.Strengths {
		if s := parseStrength(entry); s != "" {
			eval.Strengths = append(eval.Strengths, s)
		}
	}

	for i, s := range payload.Suggestions {
		sug := answerflow.ImprovementSuggestion{
			ID:       s.ID,
			Type:     answerflow.SuggestionType(s.Type),
			Title:    s.Title,
			Examples: parseExamples(s.Examples),
			HelpText: s.HelpText,
			Options:  s.Options,
			Required: s.Required,
		}
		if sug.ID == "" {
			sug.ID = fmt.Sprintf("s%d", i+1)
		}
		if sug.Type == "" {
			sug.Type = answerflow.SuggestionText
		}
		if sug.Title == "" {
			continue
		}
		eval.Suggestions = append(eval.Suggestions, sug)
	}

	return eval, nil
}

func parseStrength(raw json.RawMessage) string {
	var plain string
	if err := json.Unmarshal(raw, &plain); err == nil {
		return plain
	}
	var obj answerflow.QualityIssue
	if err := json.Unmarshal(raw, &obj); err == nil && obj.Label != "" {
		if obj.Description == "" {
			return obj.Label
		}
		return fmt.Sprintf("%s: %s", obj.Label, obj.Description)
	}
	return ""
}

func parseExamples(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil && single != "" {
		return []string{single}
	}
	return nil
}

// clampScore forces the score into the 1..10 scale
func clampScore(score int) int {
	if score < 1 {
		return 1
	}
	if score > 10 {
		return 10
	}
	return score
}
