package resourceinfra

import (
	"context"
	"fmt"
	"time"

	"github.com/Abraxas-365/gapflow/interview/resource"
	"github.com/Abraxas-365/gapflow/pkg/kernel"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
)

// PostgresCatalog implements resource.Catalog on a pgvector-enabled
// PostgreSQL table of curated learning resources
type PostgresCatalog struct {
	db *sqlx.DB
}

func NewPostgresCatalog(db *sqlx.DB) *PostgresCatalog {
	return &PostgresCatalog{db: db}
}

type catalogModel struct {
	ID          string    `db:"id"`
	Title       string    `db:"title"`
	URL         string    `db:"url"`
	Description string    `db:"description"`
	Provider    string    `db:"provider"`
	Skill       string    `db:"skill"`
	Level       string    `db:"level"`
	Distance    float64   `db:"distance"`
	CreatedAt   time.Time `db:"created_at"`
}

func (m *catalogModel) toEntity() resource.LearningResource {
	created := m.CreatedAt
	return resource.LearningResource{
		ID:          m.ID,
		Title:       m.Title,
		URL:         m.URL,
		Description: m.Description,
		Provider:    m.Provider,
		Source:      resource.SourceCatalog,
		// Cosine distance in [0,2]; map to a similarity-style score
		Score:       1 - m.Distance,
		Credibility: resource.CredibilityWeight(m.URL),
		Skill:       m.Skill,
		Level:       m.Level,
		CreatedAt:   &created,
	}
}

// NearestMatches orders curated rows by cosine distance to the gap embedding
func (c *PostgresCatalog) NearestMatches(ctx context.Context, embedding kernel.Embedding, limit int) ([]resource.LearningResource, error) {
	query := `
		SELECT
			id, title, url, description, provider, skill, level, created_at,
			embedding <=> $1 AS distance
		FROM learning_resources
		ORDER BY embedding <=> $1
		LIMIT $2
	`

	var models []catalogModel
	err := c.db.SelectContext(ctx, &models, query, pgvector.NewVector([]float32(embedding)), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query resource catalog: %w", err)
	}

	out := make([]resource.LearningResource, 0, len(models))
	for i := range models {
		out = append(out, models[i].toEntity())
	}
	return out, nil
}

// Insert adds a curated resource together with its embedding
func (c *PostgresCatalog) Insert(ctx context.Context, res resource.LearningResource, embedding kernel.Embedding) error {
	query := `
		INSERT INTO learning_resources (
			id, title, url, description, provider, skill, level, embedding, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := c.db.ExecContext(ctx, query,
		res.ID, res.Title, res.URL, res.Description, res.Provider,
		res.Skill, res.Level, pgvector.NewVector([]float32(embedding)), time.Now().UTC(),
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return fmt.Errorf("resource %s already exists: %w", res.ID, err)
		}
		return fmt.Errorf("failed to insert resource: %w", err)
	}
	return nil
}
