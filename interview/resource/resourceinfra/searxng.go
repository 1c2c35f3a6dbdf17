package resourceinfra

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Abraxas-365/gapflow/interview/resource"
	"github.com/Abraxas-365/gapflow/pkg/kernel"
	"github.com/Abraxas-365/gapflow/pkg/logx"
)

// SearXNGClient talks to a self-hosted SearXNG meta-search instance
// over its JSON API.
type SearXNGClient struct {
	baseURL string
	http    *http.Client
	engines []string
}

func NewSearXNGClient(baseURL string) *SearXNGClient {
	return &SearXNGClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		engines: []string{"google", "duckduckgo", "bing"},
	}
}

type searxngResult struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Engine  string  `json:"engine"`
	Score   float64 `json:"score"`
}

type searxngResponse struct {
	Results []searxngResult `json:"results"`
}

// Search runs one query and maps results into the resource model.
// Results from hosts outside the learning-platform allow list are
// dropped here so callers only rank approved material.
func (c *SearXNGClient) Search(ctx context.Context, query string, limit int, language kernel.Language) ([]resource.LearningResource, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("categories", "general")
	params.Set("language", string(language.OrDefault()))
	params.Set("pageno", "1")
	params.Set("engines", strings.Join(c.engines, ","))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("searxng request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("searxng status %d", resp.StatusCode)
	}

	var body searxngResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("searxng decode: %w", err)
	}

	out := make([]resource.LearningResource, 0, limit)
	for _, r := range body.Results {
		if r.URL == "" || r.Title == "" {
			continue
		}
		weight := resource.CredibilityWeight(r.URL)
		if weight == 0 {
			continue
		}
		out = append(out, resource.LearningResource{
			ID:          fmt.Sprintf("web_%s", shortHash(r.URL)),
			Title:       r.Title,
			URL:         r.URL,
			Description: truncate(r.Content, 200),
			Provider:    resource.ProviderFor(r.URL),
			Source:      resource.SourceSearXNG,
			Engine:      r.Engine,
			Score:       r.Score,
			Credibility: weight,
		})
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

// Healthy probes the instance's healthz endpoint
func (c *SearXNGClient) Healthy(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", nil)
	if err != nil {
		return false
	}
	resp, err := c.http.Do(req)
	if err != nil {
		logx.Warnf("searxng health check failed: %v", err)
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
