package questionsrv

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Abraxas-365/gapflow/interview/question"
	"github.com/Abraxas-365/gapflow/pkg/kernel"
)

// questionGenerationSystem is the stable system instruction. It must
// stay byte-identical across requests so the provider-side prompt cache
// can reuse it.
const questionGenerationSystem = `You are an expert at creating personalized interview questions.

Your role is to generate ONE focused question that helps candidates address skill/experience gaps.

GUIDELINES:
1. Create specific, actionable questions
2. Extract relevant experience or willingness to learn
3. Relate questions to job requirements
4. Keep questions answerable in 2-5 minutes
5. Use professional, encouraging tone

OUTPUT FORMAT:
Return a JSON object with these fields:
- question_text: The main question (clear and specific)
- context_why: Why this matters (1-2 sentences)
- expected_answer_type: "text" | "structured" | "both"
- estimated_time_minutes: 1-5

Generate questions that help candidates showcase their strengths and growth potential.`

// SystemPrompts exposes this package's stable instructions for cache warming
func SystemPrompts() map[string]string {
	return map[string]string{
		"question_generation": questionGenerationSystem,
	}
}

func buildQuestionPrompt(gap question.Gap, parsedCV, parsedJD map[string]any, language kernel.Language) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Gap: %s\n", gap.Title)
	if gap.Description != "" {
		fmt.Fprintf(&b, "Gap description: %s\n", gap.Description)
	}
	fmt.Fprintf(&b, "Priority: %s\n", gap.Priority)
	if summary := summarize(parsedCV, "summary", "skills", "experience"); summary != "" {
		fmt.Fprintf(&b, "Candidate background: %s\n", summary)
	}
	if summary := summarize(parsedJD, "title", "requirements"); summary != "" {
		fmt.Fprintf(&b, "Job requirements: %s\n", summary)
	}
	fmt.Fprintf(&b, "Answer language: %s\n", language.OrDefault().GetDisplayName())
	return b.String()
}

// summarize flattens selected keys of a parsed document, truncated so
// the variable prompt part stays short and the cached prefix dominates
func summarize(doc map[string]any, keys ...string) string {
	if len(doc) == 0 {
		return ""
	}
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		v, ok := doc[key]
		if !ok || v == nil {
			continue
		}
		s := fmt.Sprintf("%v", v)
		if len(s) > 200 {
			s = s[:200]
		}
		parts = append(parts, fmt.Sprintf("%s: %s", key, s))
	}
	return strings.Join(parts, "; ")
}

// parseQuestionText extracts the question from the model output,
// accepting either the requested JSON shape or plain text
func parseQuestionText(raw string) string {
	raw = strings.TrimSpace(raw)
	jsonPart := extractJSON(raw)
	if jsonPart != "" {
		var payload struct {
			QuestionText string `json:"question_text"`
		}
		if err := json.Unmarshal([]byte(jsonPart), &payload); err == nil && payload.QuestionText != "" {
			return strings.TrimSpace(payload.QuestionText)
		}
	}
	return cleanQuestionText(raw)
}

// extractJSON returns the first top-level JSON object in raw, tolerating
// markdown fences around it
func extractJSON(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return ""
	}
	return raw[start : end+1]
}
