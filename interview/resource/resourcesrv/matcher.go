package resourcesrv

import (
	"context"
	"fmt"

	"github.com/Abraxas-365/gapflow/internal/ai/embeddings"
	"github.com/Abraxas-365/gapflow/interview/resource"
	"github.com/Abraxas-365/gapflow/pkg/kernel"
	"github.com/Abraxas-365/gapflow/pkg/logx"
)

// AddToCatalog embeds a curated resource and stores it for similarity
// matching. Source, provider and credibility are derived here; callers
// only supply the content fields.
func (s *Service) AddToCatalog(ctx context.Context, res resource.LearningResource) error {
	if s.catalog == nil {
		return resource.ErrRegistry.New(resource.CodeCatalogError).
			WithDetail("reason", "no catalog configured")
	}
	if res.Title == "" || res.URL == "" {
		return resource.ErrRegistry.New(resource.CodeEmptyGapTitle).
			WithDetail("reason", "title and url are required")
	}

	res.Source = resource.SourceCatalog
	res.Provider = resource.ProviderFor(res.URL)
	res.Credibility = resource.CredibilityWeight(res.URL)

	text := res.Title
	if res.Description != "" {
		text = fmt.Sprintf("%s: %s", res.Title, res.Description)
	}
	vec, provider, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return err
	}
	if provider == embeddings.ProviderZeroFallback {
		return resource.ErrRegistry.New(resource.CodeCatalogError).
			WithDetail("reason", "no embedding provider available")
	}

	return s.catalog.Insert(ctx, res, kernel.Embedding(vec))
}

// searchCatalog embeds the gap text and looks for near neighbours in
// the curated catalog. A zero-vector embedding (every provider down)
// or matches below the similarity floor yield nothing, letting the
// caller fall through to web search.
func (s *Service) searchCatalog(ctx context.Context, req resource.SearchRequest) []resource.LearningResource {
	if s.catalog == nil || s.embedder == nil {
		return nil
	}

	text := req.GapTitle
	if req.GapDescription != "" {
		text = fmt.Sprintf("%s: %s", req.GapTitle, req.GapDescription)
	}

	vec, provider, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil
	}
	if provider == embeddings.ProviderZeroFallback {
		logx.Warn("resource match: no embedding available, skipping catalog")
		return nil
	}

	matches, err := s.catalog.NearestMatches(ctx, kernel.Embedding(vec), req.Limit*4)
	if err != nil {
		logx.Warnf("resource match: catalog query failed: %v", err)
		return nil
	}

	kept := matches[:0]
	for _, m := range matches {
		if m.Score >= s.matchFloor {
			kept = append(kept, m)
		}
	}
	return kept
}
