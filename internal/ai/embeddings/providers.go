package embeddings

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// geminiEmbedClient is the slice of the Gemini client this package
// needs; the shared llmrouter Gemini provider satisfies it.
type geminiEmbedClient interface {
	EmbedContent(ctx context.Context, model, text string) ([]float32, error)
}

// GeminiEmbedder is the primary embedding provider. Its model
// (text-embedding-004) is natively 768-dimensional.
type GeminiEmbedder struct {
	client geminiEmbedClient
	model  string
}

func NewGeminiEmbedder(client geminiEmbedClient, model string) *GeminiEmbedder {
	return &GeminiEmbedder{client: client, model: model}
}

func (g *GeminiEmbedder) Name() string { return "gemini" }

func (g *GeminiEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, errors.New("text cannot be empty")
	}
	return g.client.EmbedContent(ctx, g.model, text)
}

// OpenAIEmbedder is the secondary embedding provider. Its model has a
// larger native size, so the request pins the output dimensionality to
// the canonical one.
type OpenAIEmbedder struct {
	client *openai.Client
}

func NewOpenAIEmbedder(apiKey string) (*OpenAIEmbedder, error) {
	if apiKey == "" {
		return nil, errors.New("openai api key is required")
	}
	client := openai.NewClient(
		option.WithAPIKey(apiKey),
	)
	return &OpenAIEmbedder{client: &client}, nil
}

func (o *OpenAIEmbedder) Name() string { return "openai" }

func (o *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, errors.New("text cannot be empty")
	}

	resp, err := o.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: []string{text},
		},
		Model:      openai.EmbeddingModelTextEmbedding3Small,
		Dimensions: openai.Int(Dimension),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, errors.New("no embedding data returned")
	}

	// Convert []float64 to []float32
	embedding64 := resp.Data[0].Embedding
	embedding32 := make([]float32, len(embedding64))
	for i, v := range embedding64 {
		embedding32[i] = float32(v)
	}
	return embedding32, nil
}
