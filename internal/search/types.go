package search

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_searcher.go -package=mocks notevault/internal/search Searcher

import (
	"context"
	"time"
)

// Result is a denormalized note snapshot with its relevance score and rank.
// Similarity is cosine similarity on the semantic path; on the lexical
// fallback path it carries the token-match score instead, which is not
// bounded to [0, 1].
type Result struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Tags       []string  `json:"tags"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	Similarity float64   `json:"similarity"`
	Rank       int       `json:"rank"`
}

// QueryMetadata describes a single search call. It is built fresh per call
// and never persisted.
type QueryMetadata struct {
	Query            string `json:"query"`
	ProcessingTimeMS int64  `json:"processing_time_ms"`
	TotalResults     int    `json:"total_results"`
}

// Response is the result set of one search call.
type Response struct {
	Results  []Result      `json:"results"`
	Metadata QueryMetadata `json:"query_metadata"`
}

// Searcher is the search surface consumed by the HTTP layer.
type Searcher interface {
	SemanticSearch(ctx context.Context, userID, query string, limit int, threshold float64, tags []string) (Response, error)
}
