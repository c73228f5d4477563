package storage

import "time"

// EmbeddingStatus tracks the embedding lifecycle of a note.
// Transitions happen only through the embedding queue or a content-change reset.
type EmbeddingStatus string

const (
	// EmbeddingPending means the note is awaiting embedding generation.
	EmbeddingPending EmbeddingStatus = "pending"
	// EmbeddingProcessing means a generation job is currently running for the note.
	EmbeddingProcessing EmbeddingStatus = "processing"
	// EmbeddingCompleted means a vector is stored for the note.
	EmbeddingCompleted EmbeddingStatus = "completed"
	// EmbeddingFailed means generation exhausted all retries; the note has no vector.
	EmbeddingFailed EmbeddingStatus = "failed"
)

// Note is a stored note record.
type Note struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user_id"`
	Title           string          `json:"title"`
	Content         string          `json:"content"`
	Tags            []string        `json:"tags"`
	Archived        bool            `json:"archived"`
	EmbeddingStatus EmbeddingStatus `json:"embedding_status"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// ScoredNote is a note paired with a relevance score from one of the search
// primitives: cosine similarity for the vector path, token-match score for
// the lexical path.
type ScoredNote struct {
	Note  *Note
	Score float64
}
