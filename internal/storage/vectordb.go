package storage

import (
	"context"
	"fmt"

	"github.com/pgvector/pgvector-go"

	"github.com/flipsage/product-assistant/internal/agent"
	"github.com/flipsage/product-assistant/internal/processing"
)

// Review is one stored review chunk with its product metadata.
type Review struct {
	ID           int
	ProductTitle string
	Price        string
	Rating       string
	Content      string
}

// InsertReview adds a review chunk with its embedding.
func InsertReview(ctx context.Context, r Review, embedding []float32) error {
	_, err := DB.Exec(ctx,
		"INSERT INTO reviews (product_title, price, rating, content, embedding) VALUES ($1, $2, $3, $4, $5)",
		r.ProductTitle, r.Price, r.Rating, r.Content, pgvector.NewVector(embedding))
	return err
}

// QuerySimilar returns the top-k reviews nearest to the query embedding.
// No matches is an empty slice, not an error.
func QuerySimilar(ctx context.Context, queryEmb []float32, topK int) ([]Review, error) {
	rows, err := DB.Query(ctx,
		"SELECT id, product_title, COALESCE(price, ''), COALESCE(rating, ''), content FROM reviews ORDER BY embedding <-> $1 LIMIT $2",
		pgvector.NewVector(queryEmb), topK)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var results []Review
	for rows.Next() {
		var r Review
		if err := rows.Scan(&r.ID, &r.ProductTitle, &r.Price, &r.Rating, &r.Content); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// VectorRetriever implements agent.Retriever over the reviews table:
// embed the query, then nearest-neighbor search.
type VectorRetriever struct {
	embedder *processing.Embedder
}

func NewVectorRetriever(embedder *processing.Embedder) *VectorRetriever {
	return &VectorRetriever{embedder: embedder}
}

func (v *VectorRetriever) Retrieve(ctx context.Context, query string, topK int) ([]agent.Document, error) {
	emb, err := v.embedder.QueryEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	reviews, err := QuerySimilar(ctx, emb, topK)
	if err != nil {
		return nil, err
	}

	docs := make([]agent.Document, len(reviews))
	for i, r := range reviews {
		docs[i] = agent.Document{
			PageContent: r.Content,
			Metadata: map[string]string{
				agent.MetaProductTitle: r.ProductTitle,
				agent.MetaPrice:        r.Price,
				agent.MetaRating:       r.Rating,
			},
		}
	}
	return docs, nil
}
