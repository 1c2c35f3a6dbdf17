package questionapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/Abraxas-365/gapflow/interview/question"
	"github.com/Abraxas-365/gapflow/pkg/kernel"
	"github.com/gofiber/fiber/v2"
)

type fakeBatchGenerator struct {
	gaps      []question.Gap
	questions []question.Question
}

func (f *fakeBatchGenerator) GenerateBatch(_ context.Context, gaps []question.Gap, _, _ map[string]any, _ kernel.Language) []question.Question {
	f.gaps = gaps
	return f.questions
}

func TestGenerateBatchEndpoint(t *testing.T) {
	t.Parallel()

	gen := &fakeBatchGenerator{questions: []question.Question{
		{QuestionText: "How did you use Go?", Number: 1},
		{QuestionText: "Can you describe your experience with Kafka?", Number: 2,
			Error: question.ErrGenerationFailed(context.DeadlineExceeded).Error()},
	}}
	app := fiber.New()
	RegisterRoutes(app, NewHandlers(gen))

	body, err := json.Marshal(question.GenerateBatchRequest{
		Gaps: []question.Gap{{Title: "Go"}, {Title: "Kafka"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(fiber.MethodPost, "/api/questions/batch", bytes.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var out question.GenerateBatchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if out.Total != 2 || out.Failed != 1 {
		t.Errorf("total = %d, failed = %d, want 2 and 1", out.Total, out.Failed)
	}
	if len(gen.gaps) != 2 {
		t.Errorf("generator received %d gaps, want 2", len(gen.gaps))
	}
}
