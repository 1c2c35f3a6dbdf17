package questionsrv

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/Abraxas-365/gapflow/internal/ai/llmrouter"
	"github.com/Abraxas-365/gapflow/interview/question"
	"github.com/Abraxas-365/gapflow/pkg/kernel"
	"github.com/Abraxas-365/gapflow/pkg/logx"
)

// MaxQuestions caps how many gaps one batch will generate for
const MaxQuestions = 10

// TextGenerator is the slice of the LLM router the fanout needs
type TextGenerator interface {
	Generate(ctx context.Context, req llmrouter.Request) (string, string, error)
}

var _ question.BatchGenerator = (*Service)(nil)

// Service generates interview questions for gaps, fanning out one
// goroutine per gap while preserving input order in the output
type Service struct {
	llm           TextGenerator
	model         string
	temperature   float64
	maxConcurrent int
}

func NewService(llm TextGenerator, model string, temperature float64, maxConcurrent int) *Service {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &Service{
		llm:           llm,
		model:         model,
		temperature:   temperature,
		maxConcurrent: maxConcurrent,
	}
}

// GenerateBatch produces one question per gap. The slice index of every
// result equals the index of its gap; a gap whose generation fails
// terminally yields a deterministic placeholder question instead of
// failing the batch.
func (s *Service) GenerateBatch(ctx context.Context, gaps []question.Gap, parsedCV, parsedJD map[string]any, language kernel.Language) []question.Question {
	if len(gaps) > MaxQuestions {
		logx.Warnf("questionsrv: batch of %d gaps capped at %d", len(gaps), MaxQuestions)
		gaps = gaps[:MaxQuestions]
	}

	started := time.Now()
	results := make([]question.Question, len(gaps))
	slots := make(chan struct{}, s.maxConcurrent)
	var wg sync.WaitGroup

	for i, gap := range gaps {
		wg.Add(1)
		go func(idx int, gap question.Gap) {
			defer wg.Done()
			slots <- struct{}{}
			defer func() { <-slots }()
			results[idx] = s.generateOne(ctx, idx, gap, parsedCV, parsedJD, language)
		}(i, gap)
	}
	wg.Wait()

	failed := 0
	for _, q := range results {
		if q.HasError() {
			failed++
		}
	}
	logx.Infof("questionsrv: generated %d questions (%d failed) in %s", len(results), failed, time.Since(started))

	return results
}

func (s *Service) generateOne(ctx context.Context, idx int, gap question.Gap, parsedCV, parsedJD map[string]any, language kernel.Language) question.Question {
	number := idx + 1

	text, provider, err := s.llm.Generate(ctx, llmrouter.Request{
		Model:       s.model,
		System:      questionGenerationSystem,
		Prompt:      buildQuestionPrompt(gap, parsedCV, parsedJD, language),
		Temperature: s.temperature,
	})
	if err != nil {
		logx.Warnf("questionsrv: gap %q generation failed: %v", gap.Title, err)
		return fallbackQuestion(number, gap, err)
	}

	text = parseQuestionText(text)
	if text == "" {
		return fallbackQuestion(number, gap, fmt.Errorf("empty question from %s", provider))
	}

	return question.Question{
		ID:           kernel.NewQuestionID(fmt.Sprintf("q%d_%s", number, snakeCase(gap.Title))),
		QuestionText: text,
		Title:        gap.Title,
		Priority:     gap.Priority,
		Number:       number,
	}
}

// fallbackQuestion is the deterministic placeholder for a failed gap.
// The error field carries the registered generation-failure code so
// clients can distinguish placeholders programmatically.
func fallbackQuestion(number int, gap question.Gap, cause error) question.Question {
	return question.Question{
		ID:           kernel.NewQuestionID(fmt.Sprintf("q%d_fallback", number)),
		QuestionText: fmt.Sprintf("Can you describe your experience with %s?", gap.Title),
		Title:        gap.Title,
		Priority:     gap.Priority,
		Number:       number,
		Error:        question.ErrGenerationFailed(cause).Error(),
	}
}

// cleanQuestionText strips quoting and numbering the model sometimes adds
func cleanQuestionText(text string) string {
	text = strings.TrimSpace(text)
	text = strings.Trim(text, "\"'")
	for _, prefix := range []string{"Question:", "Q:"} {
		if strings.HasPrefix(text, prefix) {
			text = strings.TrimSpace(strings.TrimPrefix(text, prefix))
		}
	}
	return text
}

func snakeCase(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteRune('_')
		}
	}
	return strings.Trim(b.String(), "_")
}
