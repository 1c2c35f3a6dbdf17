package resourcesrv

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/Abraxas-365/gapflow/interview/question"
	"github.com/Abraxas-365/gapflow/interview/resource"
	"github.com/Abraxas-365/gapflow/pkg/kernel"
	"github.com/Abraxas-365/gapflow/pkg/logx"
)

// Embedder is the slice of the embedding router the matcher needs
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, string, error)
}

// Service finds learning resources for skill gaps across a curated
// catalog, raw web search and AI-synthesized search, depending on mode.
type Service struct {
	catalog  resource.Catalog
	web      resource.WebSearcher
	ai       resource.AISearcher
	embedder Embedder

	// minimum catalog similarity before web fallback kicks in
	matchFloor float64
}

func NewService(catalog resource.Catalog, web resource.WebSearcher, ai resource.AISearcher, embedder Embedder) *Service {
	return &Service{
		catalog:    catalog,
		web:        web,
		ai:         ai,
		embedder:   embedder,
		matchFloor: 0.5,
	}
}

// Search dispatches on the requested mode, deduplicates by URL and
// ranks by platform credibility, then backend score.
func (s *Service) Search(ctx context.Context, req resource.SearchRequest) (*resource.SearchResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var all []resource.LearningResource
	var sources []string

	switch req.Mode {
	case resource.ModeLocalOnly:
		local := s.searchCatalog(ctx, req)
		if len(local) > 0 {
			sources = append(sources, "local_catalog")
		}
		all = append(all, local...)

	case resource.ModeWebOnly:
		web := s.searchWeb(ctx, req)
		if len(web) > 0 {
			sources = append(sources, "searxng_web")
		}
		all = append(all, web...)

	case resource.ModeHybrid:
		local := s.searchCatalog(ctx, req)
		if len(local) > 0 {
			sources = append(sources, "local_catalog")
		}
		web := s.searchWeb(ctx, req)
		if len(web) > 0 {
			sources = append(sources, "searxng_web")
		}
		all = append(append(all, local...), web...)

	case resource.ModePerplexica:
		ai := s.searchPerplexica(ctx, req)
		if len(ai) > 0 {
			sources = append(sources, "perplexica")
			all = append(all, ai...)
			break
		}
		// AI search unavailable or empty, degrade to raw web search
		web := s.searchWeb(ctx, req)
		if len(web) > 0 {
			sources = append(sources, "searxng_web_fallback")
		}
		all = append(all, web...)
	}

	ranked := rank(dedupe(all))
	if len(ranked) > req.Limit {
		ranked = ranked[:req.Limit]
	}
	if sources == nil {
		sources = []string{}
	}

	return &resource.SearchResponse{
		Resources:   ranked,
		Total:       len(ranked),
		SourcesUsed: sources,
		Mode:        req.Mode,
	}, nil
}

// SearchForGap adapts a workflow gap into a resource search. Failures
// surface as errors; the workflow decides how tolerant to be.
func (s *Service) SearchForGap(ctx context.Context, gap question.Gap, language kernel.Language) ([]resource.LearningResource, error) {
	resp, err := s.Search(ctx, resource.SearchRequest{
		GapTitle:       gap.Title,
		GapDescription: gap.Description,
		Language:       language,
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Resources) == 0 {
		return nil, resource.ErrRegistry.New(resource.CodeSearchFailed).
			WithDetail("gap", gap.Title)
	}
	return resp.Resources, nil
}

func (s *Service) searchWeb(ctx context.Context, req resource.SearchRequest) []resource.LearningResource {
	if s.web == nil {
		return nil
	}
	if !s.web.Healthy(ctx) {
		logx.Warn("resource search: searxng unavailable, skipping web search")
		return nil
	}
	query := buildLearningQuery(req.GapTitle, req.UserLevel)
	results, err := s.web.Search(ctx, query, req.Limit*2, req.Language)
	if err != nil {
		logx.Warnf("resource search: web search failed: %v", err)
		return nil
	}
	return results
}

func (s *Service) searchPerplexica(ctx context.Context, req resource.SearchRequest) []resource.LearningResource {
	if s.ai == nil {
		return nil
	}
	if !s.ai.Healthy(ctx) {
		logx.Warn("resource search: perplexica unavailable")
		return nil
	}
	results, err := s.ai.SearchLearning(ctx, req.GapTitle, req.UserLevel)
	if err != nil {
		logx.Warnf("resource search: perplexica failed: %v", err)
		return nil
	}
	return results
}

// buildLearningQuery crafts the web query: skill, level, freshness year
// and site: hints toward trusted platforms
func buildLearningQuery(skill, userLevel string) string {
	return fmt.Sprintf(
		"%s %s course tutorial %d (site:udemy.com OR site:coursera.org OR site:freecodecamp.org OR site:youtube.com OR site:edx.org)",
		skill, userLevel, time.Now().Year(),
	)
}

// dedupe keeps the first occurrence of each URL
func dedupe(in []resource.LearningResource) []resource.LearningResource {
	seen := make(map[string]struct{}, len(in))
	out := make([]resource.LearningResource, 0, len(in))
	for _, r := range in {
		if r.URL == "" {
			continue
		}
		if _, ok := seen[r.URL]; ok {
			continue
		}
		seen[r.URL] = struct{}{}
		out = append(out, r)
	}
	return out
}

// rank orders by platform credibility weight, then backend score.
// Stable so equal entries keep backend order.
func rank(in []resource.LearningResource) []resource.LearningResource {
	sort.SliceStable(in, func(i, j int) bool {
		if in[i].Credibility != in[j].Credibility {
			return in[i].Credibility > in[j].Credibility
		}
		return in[i].Score > in[j].Score
	})
	return in
}
