package resource

import (
	"context"

	"github.com/Abraxas-365/gapflow/pkg/kernel"
)

// WebSearcher is a raw meta-search backend (SearXNG)
type WebSearcher interface {
	Search(ctx context.Context, query string, limit int, language kernel.Language) ([]LearningResource, error)
	Healthy(ctx context.Context) bool
}

// AISearcher is an answer-synthesis backend with cited sources (Perplexica)
type AISearcher interface {
	SearchLearning(ctx context.Context, skill, userLevel string) ([]LearningResource, error)
	Healthy(ctx context.Context) bool
}

// Catalog is the curated resource store with vector similarity lookup
type Catalog interface {
	// NearestMatches returns catalog rows ordered by cosine distance to
	// the gap embedding
	NearestMatches(ctx context.Context, embedding kernel.Embedding, limit int) ([]LearningResource, error)

	// Insert adds a curated resource with its embedding
	Insert(ctx context.Context, res LearningResource, embedding kernel.Embedding) error
}
