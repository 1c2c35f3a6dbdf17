package questionsrv

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/Abraxas-365/gapflow/internal/ai/llmrouter"
	"github.com/Abraxas-365/gapflow/interview/question"
	"github.com/Abraxas-365/gapflow/pkg/kernel"
)

// scriptedLLM answers based on the gap title embedded in the prompt
type scriptedLLM struct {
	mu       sync.Mutex
	calls    int
	failFor  map[string]error
	response func(prompt string) string
}

func (s *scriptedLLM) Generate(_ context.Context, req llmrouter.Request) (string, string, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	for title, err := range s.failFor {
		if strings.Contains(req.Prompt, title) {
			return "", "", err
		}
	}
	if s.response != nil {
		return s.response(req.Prompt), "gemini", nil
	}
	return `{"question_text": "Tell me about it?"}`, "gemini", nil
}

func gapsOf(titles ...string) []question.Gap {
	gaps := make([]question.Gap, len(titles))
	for i, title := range titles {
		gaps[i] = question.Gap{
			ID:       kernel.NewGapID(fmt.Sprintf("gap_%d", i)),
			Title:    title,
			Priority: question.PriorityMedium,
		}
	}
	return gaps
}

func TestGenerateBatchPreservesOrder(t *testing.T) {
	t.Parallel()

	titles := []string{"Go", "Kubernetes", "PostgreSQL", "Redis", "Kafka", "Terraform", "gRPC", "GraphQL"}
	llm := &scriptedLLM{
		response: func(prompt string) string {
			for _, title := range titles {
				if strings.Contains(prompt, "Gap: "+title+"\n") {
					return fmt.Sprintf(`{"question_text": "Experience with %s?"}`, title)
				}
			}
			return `{"question_text": "generic"}`
		},
	}
	svc := NewService(llm, "test-model", 0.3, 3)

	results := svc.GenerateBatch(context.Background(), gapsOf(titles...), nil, nil, kernel.LanguageEnglish)

	if len(results) != len(titles) {
		t.Fatalf("got %d results, want %d", len(results), len(titles))
	}
	for i, q := range results {
		if q.Number != i+1 {
			t.Errorf("results[%d].Number = %d, want %d", i, q.Number, i+1)
		}
		if !strings.Contains(q.QuestionText, titles[i]) {
			t.Errorf("results[%d] = %q, want question about %s", i, q.QuestionText, titles[i])
		}
	}
}

func TestGenerateBatchPerGapFailure(t *testing.T) {
	t.Parallel()

	titles := make([]string, 10)
	for i := range titles {
		titles[i] = fmt.Sprintf("Skill%d", i)
	}
	llm := &scriptedLLM{
		failFor: map[string]error{"Skill4": errors.New("all providers exhausted")},
	}
	svc := NewService(llm, "test-model", 0.3, 5)

	results := svc.GenerateBatch(context.Background(), gapsOf(titles...), nil, nil, kernel.LanguageEnglish)

	if len(results) != 10 {
		t.Fatalf("got %d results, want 10", len(results))
	}
	failed := results[4]
	if !failed.HasError() {
		t.Fatal("index 4 must carry the failure placeholder")
	}
	if failed.QuestionText != "Can you describe your experience with Skill4?" {
		t.Errorf("placeholder text = %q", failed.QuestionText)
	}
	if failed.ID.String() != "q5_fallback" {
		t.Errorf("placeholder id = %q, want q5_fallback", failed.ID)
	}
	if !strings.Contains(failed.Error, string(question.CodeGenerationFailed)) {
		t.Errorf("placeholder error = %q, must carry the generation-failure code", failed.Error)
	}
	for i, q := range results {
		if i != 4 && q.HasError() {
			t.Errorf("index %d unexpectedly failed: %s", i, q.Error)
		}
	}
}

func TestGenerateBatchCapsAtMaxQuestions(t *testing.T) {
	t.Parallel()

	titles := make([]string, MaxQuestions+5)
	for i := range titles {
		titles[i] = fmt.Sprintf("Skill%d", i)
	}
	svc := NewService(&scriptedLLM{}, "test-model", 0.3, 4)

	results := svc.GenerateBatch(context.Background(), gapsOf(titles...), nil, nil, kernel.LanguageEnglish)
	if len(results) != MaxQuestions {
		t.Errorf("got %d results, want %d", len(results), MaxQuestions)
	}
}

func TestGenerateBatchQuestionIDs(t *testing.T) {
	t.Parallel()

	svc := NewService(&scriptedLLM{}, "test-model", 0.3, 2)
	results := svc.GenerateBatch(context.Background(), gapsOf("Cloud Architecture (AWS)"), nil, nil, kernel.LanguageEnglish)

	if got := results[0].ID.String(); got != "q1_cloud_architecture_aws" {
		t.Errorf("id = %q, want q1_cloud_architecture_aws", got)
	}
}

func TestParseQuestionText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"json payload", `{"question_text": "How did you use Go?", "context_why": "x"}`, "How did you use Go?"},
		{"fenced json", "```json\n{\"question_text\": \"Why Redis?\"}\n```", "Why Redis?"},
		{"plain text", `Question: What about Kafka?`, "What about Kafka?"},
		{"quoted", `"Tell me more."`, "Tell me more."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := parseQuestionText(tt.raw); got != tt.want {
				t.Errorf("parseQuestionText(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}
