// Package search ranks notes against natural-language queries, preferring
// vector similarity and degrading to lexical matching when embeddings fail.
package search

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"notevault/internal/contextutil"
	"notevault/internal/embedding"
	"notevault/internal/storage"
)

// overfetchFactor pads the candidate query: threshold and tag filters run
// after the store primitives, so fetching exactly limit rows would underfill
// the final page whenever a filter drops candidates.
const overfetchFactor = 4

// Service orchestrates semantic search over a user's notes.
// It only reads note state; embedding writes belong to the queue.
type Service struct {
	provider embedding.Provider
	store    storage.NoteStore
}

// NewService creates a search service.
func NewService(provider embedding.Provider, store storage.NoteStore) *Service {
	return &Service{provider: provider, store: store}
}

// SemanticSearch ranks the user's non-archived notes against query.
//
// The semantic path embeds the query, ranks by cosine similarity and keeps
// results at or above threshold. Any embedding-path failure (provider not
// initialized, generation fault, dimension mismatch) silently switches to the
// lexical fallback, which ranks by token-match score and deliberately ignores
// threshold: the storage-level match predicate already excludes non-matching
// notes. An error is returned only when persistence fails on both paths.
//
// Input validation (non-empty query, limit and threshold ranges) is the
// caller's responsibility.
func (s *Service) SemanticSearch(ctx context.Context, userID, query string, limit int, threshold float64, tags []string) (Response, error) {
	logger := contextutil.LoggerFromContext(ctx)
	start := time.Now()

	results, err := s.similaritySearch(ctx, userID, query, limit, threshold, tags)
	if err != nil {
		logger.WarnContext(ctx, "semantic search unavailable, falling back to full-text search",
			"error", err)
		results, err = s.lexicalSearch(ctx, userID, query, limit, tags)
		if err != nil {
			return Response{}, fmt.Errorf("full-text search fallback: %w", err)
		}
	}

	return Response{
		Results: results,
		Metadata: QueryMetadata{
			Query:            query,
			ProcessingTimeMS: time.Since(start).Milliseconds(),
			TotalResults:     len(results),
		},
	}, nil
}

// similaritySearch runs the vector-ranking path.
func (s *Service) similaritySearch(ctx context.Context, userID, query string, limit int, threshold float64, tags []string) ([]Result, error) {
	queryVector, err := s.provider.GenerateEmbedding(ctx, query)
	if err != nil {
		return nil, err
	}

	candidates, err := s.store.SearchBySimilarity(ctx, userID, queryVector, limit*overfetchFactor)
	if err != nil {
		return nil, err
	}

	kept := make([]storage.ScoredNote, 0, len(candidates))
	for _, candidate := range candidates {
		if candidate.Score < threshold {
			continue
		}
		kept = append(kept, candidate)
	}

	return rank(kept, limit, tags), nil
}

// lexicalSearch runs the token-match fallback path.
func (s *Service) lexicalSearch(ctx context.Context, userID, query string, limit int, tags []string) ([]Result, error) {
	candidates, err := s.store.SearchByTokens(ctx, userID, tokenize(query), limit*overfetchFactor)
	if err != nil {
		return nil, err
	}

	return rank(candidates, limit, tags), nil
}

// rank applies the tag filter, sorts by score descending, truncates to limit
// and assigns sequential 1-based ranks.
func rank(candidates []storage.ScoredNote, limit int, tags []string) []Result {
	kept := make([]storage.ScoredNote, 0, len(candidates))
	for _, candidate := range candidates {
		if !math.IsNaN(candidate.Score) && !math.IsInf(candidate.Score, 0) &&
			hasAllTags(candidate.Note, tags) {
			kept = append(kept, candidate)
		}
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Score > kept[j].Score
	})
	if len(kept) > limit {
		kept = kept[:limit]
	}

	results := make([]Result, 0, len(kept))
	for i, candidate := range kept {
		note := candidate.Note
		results = append(results, Result{
			ID:         note.ID,
			UserID:     note.UserID,
			Title:      note.Title,
			Content:    note.Content,
			Tags:       note.Tags,
			CreatedAt:  note.CreatedAt,
			UpdatedAt:  note.UpdatedAt,
			Similarity: candidate.Score,
			Rank:       i + 1,
		})
	}

	return results
}

// hasAllTags reports whether the note's tag set is a superset of tags.
// Matching is exact and case-sensitive.
func hasAllTags(note *storage.Note, tags []string) bool {
	if len(tags) == 0 {
		return true
	}

	have := make(map[string]struct{}, len(note.Tags))
	for _, tag := range note.Tags {
		have[tag] = struct{}{}
	}
	for _, tag := range tags {
		if _, ok := have[tag]; !ok {
			return false
		}
	}
	return true
}

// tokenize splits a natural-language query into lowercase match tokens,
// dropping punctuation-only fragments.
func tokenize(query string) []string {
	fields := strings.Fields(strings.ToLower(query))
	tokens := make([]string, 0, len(fields))
	for _, field := range fields {
		token := strings.TrimFunc(field, func(r rune) bool {
			return !('a' <= r && r <= 'z' || '0' <= r && r <= '9' || r > 127)
		})
		if token != "" {
			tokens = append(tokens, token)
		}
	}
	return tokens
}
