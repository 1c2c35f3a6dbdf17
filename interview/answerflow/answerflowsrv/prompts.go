package answerflowsrv

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Abraxas-365/gapflow/interview/answerflow"
)

// The system instructions below must stay byte-identical across
// requests so the provider-side prompt cache can reuse them. Variable
// context always goes into the user part.

const qualityEvaluationSystem = `You are an expert at evaluating resume content quality.

Your role is to assess answers and provide constructive feedback.

EVALUATION CRITERIA:
1. Specificity: Includes specific technologies, tools, versions
2. Evidence: Has metrics, results, timeframes
3. Professional tone: Uses action verbs, clear language
4. Relevance: Directly addresses the question

SCORING SCALE (1-10):
- 1-3: Very weak (missing critical elements)
- 4-6: Needs improvement (lacks specificity or evidence)
- 7-8: Good (meets professional standards)
- 9-10: Excellent (outstanding detail and impact)

OUTPUT FORMAT:
Return JSON with:
- quality_score: 1-10 integer
- issues: Array of {label, description} objects
- strengths: Array of {label, description} objects
- suggestions: Array of improvement suggestions, each with type, title, examples, help_text
- is_acceptable: boolean (score >= 7)

Provide constructive, actionable feedback that helps improve answers.`

const answerGenerationSystem = `You are an expert resume writer creating professional experience descriptions.

Your role is to transform structured inputs into compelling resume bullets.

FORMAT RULES:
1. Use structured bullet format with project title
2. Include 3 sub-bullets: Build -> Engineer -> Impact
3. Start with strong action verbs (Built, Developed, Led, Engineered)
4. Include specific technologies from inputs
5. Add metrics/results when available
6. Keep each bullet to 1-2 sentences max
7. Maintain professional tone

EXAMPLE FORMAT:
**[Project Name] ([Tech Stack])**
  * [Build/Development bullet - what was created]
  * [Engineering/Technical bullet - architecture, methods, tools]
  * [Impact/Results bullet - metrics, outcomes, learnings]

OUTPUT FORMAT:
Return JSON with:
- professional_answer: Formatted answer string with bullets
- key_points: Array of key points included

Generate answers that demonstrate technical depth and business impact.`

const answerRefinementSystem = `You are an expert resume writer improving answers based on feedback.

Your role is to address quality issues and incorporate suggestions.

REFINEMENT APPROACH:
1. Review original answer and feedback
2. Address each quality issue systematically
3. Incorporate improvement suggestions
4. Add specific details from refinement data
5. Maintain professional structure and tone
6. Ensure all feedback is addressed

OUTPUT FORMAT:
Return JSON with:
- refined_answer: Improved answer addressing all feedback
- improvements_made: Array of specific improvements

Focus on concrete improvements that elevate answer quality.`

const deepDivePromptsSystem = `You are an expert at generating structured interview questions.

Given a skill gap, generate 4-6 targeted prompts to extract detailed experience.

Generate prompts that:
1. Identify WHERE they used it (work, side project, course, hackathon)
2. Capture DURATION/TIMELINE
3. List SPECIFIC TOOLS/TECHNOLOGIES used
4. Extract ACHIEVEMENTS/RESULTS with metrics if possible
5. Understand DEPTH of knowledge

OUTPUT FORMAT:
Return JSON with a "prompts" array. Each prompt has:
- id: short snake_case identifier
- type: "text" | "textarea" | "select" | "multiselect" | "number"
- question: the prompt shown to the candidate
- options: array of choices (select types only)
- placeholder: an example answer
- help_text: brief guidance
- required: boolean`

// SystemPrompts exposes this package's stable instructions for cache warming
func SystemPrompts() map[string]string {
	return map[string]string{
		"quality_evaluation": qualityEvaluationSystem,
		"answer_generation":  answerGenerationSystem,
		"answer_refinement":  answerRefinementSystem,
		"deep_dive_prompts":  deepDivePromptsSystem,
	}
}

func buildEvaluationPrompt(questionText, answer string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Question: %s\n\n", questionText)
	fmt.Fprintf(&b, "Answer:\n%s\n", answer)
	return b.String()
}

func buildGenerationPrompt(state *answerflow.WorkflowState) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Gap: %s\n", state.GapInfo.Title)
	if ctx := stringInput(state.StructuredInputs, "context"); ctx != "" {
		fmt.Fprintf(&b, "Experience context: %s\n", ctx)
	}
	if len(state.StructuredInputs) > 0 {
		if raw, err := json.Marshal(state.StructuredInputs); err == nil {
			fmt.Fprintf(&b, "Structured inputs: %s\n", raw)
		}
	}
	if state.RawAnswer != "" {
		fmt.Fprintf(&b, "Candidate's own words:\n%s\n", state.RawAnswer)
	}
	fmt.Fprintf(&b, "Answer language: %s\n", state.Language.OrDefault().GetDisplayName())
	return b.String()
}

func buildRefinementPrompt(state *answerflow.WorkflowState) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Original answer:\n%s\n\n", state.GeneratedAnswer)

	if len(state.QualityIssues) > 0 {
		b.WriteString("Quality issues:\n")
		for _, issue := range state.QualityIssues {
			fmt.Fprintf(&b, "- %s: %s\n", issue.Label, issue.Description)
		}
	} else {
		b.WriteString("Quality issues: none identified\n")
	}

	if len(state.AdditionalData) > 0 {
		if raw, err := json.Marshal(state.AdditionalData); err == nil {
			fmt.Fprintf(&b, "\nAdditional input from candidate: %s\n", raw)
		}
	} else {
		b.WriteString("\nAdditional input from candidate: none\n")
	}

	fmt.Fprintf(&b, "\nGap: %s\n", state.GapInfo.Title)
	if ctx := stringInput(state.StructuredInputs, "context"); ctx != "" {
		fmt.Fprintf(&b, "Experience context: %s\n", ctx)
	}
	if dur := stringInput(state.StructuredInputs, "duration"); dur != "" {
		fmt.Fprintf(&b, "Duration: %s\n", dur)
	}
	return b.String()
}

func buildDeepDivePrompt(state *answerflow.WorkflowState) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Gap: %s\n", state.GapInfo.Title)
	if state.GapInfo.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", state.GapInfo.Description)
	}
	fmt.Fprintf(&b, "Question: %s\n", state.QuestionText)
	if summary := cvSummary(state.ParsedCV); summary != "" {
		fmt.Fprintf(&b, "Candidate background: %s\n", summary)
	}
	return b.String()
}

// cvSummary flattens the parsed CV's headline keys, truncated so the
// variable prompt part stays short
func cvSummary(cv map[string]any) string {
	if len(cv) == 0 {
		return ""
	}
	parts := make([]string, 0, 3)
	for _, key := range []string{"summary", "skills", "experience"} {
		v, ok := cv[key]
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

func stringInput(inputs map[string]any, key string) string {
	if inputs == nil {
		return ""
	}
	if v, ok := inputs[key]; ok && v != nil {
		return fmt.Sprintf("%v", v)
	}
	return ""
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
