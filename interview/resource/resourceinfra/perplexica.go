package resourceinfra

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Abraxas-365/gapflow/interview/resource"
	"github.com/Abraxas-365/gapflow/pkg/logx"
)

// PerplexicaClient talks to a self-hosted Perplexica instance, which
// returns an AI-synthesized answer plus cited sources.
type PerplexicaClient struct {
	baseURL        string
	http           *http.Client
	chatModel      string
	embeddingModel string
}

func NewPerplexicaClient(baseURL, chatModel, embeddingModel string) *PerplexicaClient {
	return &PerplexicaClient{
		baseURL:        strings.TrimRight(baseURL, "/"),
		http:           &http.Client{Timeout: 30 * time.Second},
		chatModel:      chatModel,
		embeddingModel: embeddingModel,
	}
}

type perplexicaModelRef struct {
	Provider string `json:"provider"`
	Name     string `json:"name"`
}

type perplexicaRequest struct {
	Query            string             `json:"query"`
	FocusMode        string             `json:"focusMode"`
	OptimizationMode string             `json:"optimizationMode"`
	ChatModel        perplexicaModelRef `json:"chatModel"`
	EmbeddingModel   perplexicaModelRef `json:"embeddingModel"`
	History          []any              `json:"history"`
	Stream           bool               `json:"stream"`
}

type perplexicaSource struct {
	PageContent string `json:"pageContent"`
	Metadata    struct {
		Title string `json:"title"`
		URL   string `json:"url"`
	} `json:"metadata"`
}

type perplexicaResponse struct {
	Message string             `json:"message"`
	Sources []perplexicaSource `json:"sources"`
}

// SearchLearning asks Perplexica for learning resources and maps its
// cited sources into the resource model. Hosts outside the allow list
// are dropped.
func (c *PerplexicaClient) SearchLearning(ctx context.Context, skill, userLevel string) ([]resource.LearningResource, error) {
	query := buildLearningQuery(skill, userLevel)

	payload := perplexicaRequest{
		Query:            query,
		FocusMode:        "webSearch",
		OptimizationMode: "balanced",
		ChatModel:        perplexicaModelRef{Provider: "gemini", Name: c.chatModel},
		EmbeddingModel:   perplexicaModelRef{Provider: "gemini", Name: c.embeddingModel},
		History:          []any{},
		Stream:           false,
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/search", bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("perplexica request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("perplexica status %d", resp.StatusCode)
	}

	var body perplexicaResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("perplexica decode: %w", err)
	}

	summary := truncate(body.Message, 300)
	out := make([]resource.LearningResource, 0, len(body.Sources))
	for _, src := range body.Sources {
		title := src.Metadata.Title
		link := src.Metadata.URL
		if title == "" || link == "" {
			continue
		}
		weight := resource.CredibilityWeight(link)
		if weight == 0 {
			continue
		}
		description := truncate(src.PageContent, 200)
		if description == "" {
			description = truncate(body.Message, 200)
		}
		out = append(out, resource.LearningResource{
			ID:          fmt.Sprintf("perplexica_%s", shortHash(link)),
			Title:       title,
			URL:         link,
			Description: description,
			Provider:    resource.ProviderFor(link),
			Source:      resource.SourcePerplexica,
			Credibility: weight,
			AISummary:   summary,
		})
	}
	return out, nil
}

// Healthy probes the instance root
func (c *PerplexicaClient) Healthy(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return false
	}
	resp, err := c.http.Do(req)
	if err != nil {
		logx.Warnf("perplexica health check failed: %v", err)
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// buildLearningQuery states the learning intent and the preferred
// platforms explicitly so the synthesis stays on course material
func buildLearningQuery(skill, userLevel string) string {
	year := time.Now().Year()
	return fmt.Sprintf(
		"Find the best %s %s courses, tutorials, and projects to learn in %d. "+
			"Priority: Udemy, Coursera, LinkedIn Learning, Pluralsight, freeCodeCamp, "+
			"YouTube tutorials, edX, Udacity, Khan Academy, and official documentation. "+
			"Exclude Reddit, forums, and discussion posts.",
		userLevel, skill, year,
	)
}

func shortHash(s string) string {
	sum := md5.Sum([]byte(s))
	return fmt.Sprintf("%x", sum[:4])
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n]
}
