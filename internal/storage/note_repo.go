package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_note_store.go -package=mocks notevault/internal/storage NoteStore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"notevault/internal/contextutil"
	"notevault/internal/vectorstore"
)

var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")
)

// NoteStore defines the interface for note and embedding storage operations.
type NoteStore interface {
	// Create inserts a new note. A missing ID is generated. The embedding
	// status starts as pending.
	Create(ctx context.Context, note *Note) error

	// Update persists title, content, tags and archived flag of an existing
	// note. When content or the archived flag changed, the stored vector is
	// discarded and the embedding status resets to pending; the returned
	// bool reports that reset so the caller can re-enqueue.
	Update(ctx context.Context, note *Note) (resetEmbedding bool, err error)

	// FindByID returns a note by ID, or ErrNotFound.
	FindByID(ctx context.Context, id string) (*Note, error)

	// Delete removes a note and its vector.
	Delete(ctx context.Context, id string) error

	// ListByUser returns all notes of a user, newest first.
	ListByUser(ctx context.Context, userID string, includeArchived bool) ([]*Note, error)

	// UpdateEmbeddingStatus sets the embedding status of a note.
	UpdateEmbeddingStatus(ctx context.Context, id string, status EmbeddingStatus) error

	// UpdateEmbedding stores the vector for a note and marks it completed.
	// The write is unconditional last-writer-wins keyed by note ID.
	UpdateEmbedding(ctx context.Context, id string, vector []float32) error

	// ClearEmbedding discards any stored vector and marks the note failed.
	ClearEmbedding(ctx context.Context, id string) error

	// SearchBySimilarity returns up to limit notes of the user ranked by
	// cosine similarity to queryVector. Only non-archived notes with a
	// completed embedding are eligible.
	SearchBySimilarity(ctx context.Context, userID string, queryVector []float32, limit int) ([]ScoredNote, error)

	// SearchByTokens returns up to limit non-archived notes of the user
	// matching at least one token, ranked by token-match score.
	SearchByTokens(ctx context.Context, userID string, tokens []string, limit int) ([]ScoredNote, error)
}

// NoteRepo implements NoteStore on SQLite for note records and a VectorStore
// for embedding vectors. A point exists in the vector store if and only if
// the note is non-archived with embedding_status = completed, which is what
// lets similarity search filter on user ID alone.
type NoteRepo struct {
	db         *sql.DB
	vectors    vectorstore.VectorStore
	collection string
}

// NewNoteRepo creates a new NoteRepo.
func NewNoteRepo(db *sql.DB, vectors vectorstore.VectorStore, collection string) *NoteRepo {
	return &NoteRepo{db: db, vectors: vectors, collection: collection}
}

// Create inserts a new note with embedding status pending.
func (r *NoteRepo) Create(ctx context.Context, note *Note) error {
	if note.ID == "" {
		note.ID = uuid.New().String()
	}
	if note.EmbeddingStatus == "" {
		note.EmbeddingStatus = EmbeddingPending
	}

	now := time.Now().UTC()
	note.CreatedAt = now
	note.UpdatedAt = now

	tagsJSON, err := marshalTags(note.Tags)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO notes (id, user_id, title, content, tags, archived, embedding_status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		note.ID, note.UserID, note.Title, note.Content, tagsJSON, note.Archived,
		string(note.EmbeddingStatus), now.Format(time.RFC3339), now.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert note: %w", err)
	}

	return nil
}

// Update persists note fields and resets embedding state when the content or
// the archived flag changed.
func (r *NoteRepo) Update(ctx context.Context, note *Note) (bool, error) {
	logger := contextutil.LoggerFromContext(ctx)

	existing, err := r.FindByID(ctx, note.ID)
	if err != nil {
		return false, err
	}

	reset := existing.Content != note.Content || existing.Archived != note.Archived
	status := existing.EmbeddingStatus
	if reset {
		status = EmbeddingPending
		// Discard the stale vector before the row update so search never
		// sees a point for content that no longer exists.
		if err := r.vectors.Delete(ctx, r.collection, []string{note.ID}); err != nil {
			logger.WarnContext(ctx, "failed to delete stale vector", "note_id", note.ID, "error", err)
		}
	}

	tagsJSON, err := marshalTags(note.Tags)
	if err != nil {
		return false, err
	}

	now := time.Now().UTC()
	note.UpdatedAt = now
	note.EmbeddingStatus = status

	_, err = r.db.ExecContext(ctx,
		`UPDATE notes SET title = ?, content = ?, tags = ?, archived = ?, embedding_status = ?, updated_at = ?
		 WHERE id = ?`,
		note.Title, note.Content, tagsJSON, note.Archived, string(status),
		now.Format(time.RFC3339), note.ID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update note: %w", err)
	}

	return reset, nil
}

// FindByID returns a note by ID, or ErrNotFound.
func (r *NoteRepo) FindByID(ctx context.Context, id string) (*Note, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, title, content, tags, archived, embedding_status, created_at, updated_at
		 FROM notes WHERE id = ?`, id)

	note, err := scanNote(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query note: %w", err)
	}

	return note, nil
}

// Delete removes a note and its vector.
func (r *NoteRepo) Delete(ctx context.Context, id string) error {
	logger := contextutil.LoggerFromContext(ctx)

	if err := r.vectors.Delete(ctx, r.collection, []string{id}); err != nil {
		logger.WarnContext(ctx, "failed to delete vector", "note_id", id, "error", err)
		// Continue anyway - the note row is the source of truth
	}

	result, err := r.db.ExecContext(ctx, "DELETE FROM notes WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}

	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		return ErrNotFound
	}

	return nil
}

// ListByUser returns all notes of a user, newest first.
func (r *NoteRepo) ListByUser(ctx context.Context, userID string, includeArchived bool) ([]*Note, error) {
	query := `SELECT id, user_id, title, content, tags, archived, embedding_status, created_at, updated_at
		 FROM notes WHERE user_id = ?`
	if !includeArchived {
		query += " AND archived = 0"
	}
	query += " ORDER BY updated_at DESC"

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var notes []*Note
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		notes = append(notes, note)
	}

	return notes, rows.Err()
}

// UpdateEmbeddingStatus sets the embedding status of a note.
func (r *NoteRepo) UpdateEmbeddingStatus(ctx context.Context, id string, status EmbeddingStatus) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE notes SET embedding_status = ? WHERE id = ?", string(status), id)
	if err != nil {
		return fmt.Errorf("failed to update embedding status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		return ErrNotFound
	}

	return nil
}

// UpdateEmbedding stores the vector for a note and marks it completed.
func (r *NoteRepo) UpdateEmbedding(ctx context.Context, id string, vector []float32) error {
	logger := contextutil.LoggerFromContext(ctx)

	note, err := r.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if note.Archived {
		// The note was archived while its generation was in flight.
		// Archived notes carry no vector; leave the note pending so an
		// unarchive triggers a fresh generation.
		logger.InfoContext(ctx, "note archived during embedding, skipping vector write", "note_id", id)
		return r.UpdateEmbeddingStatus(ctx, id, EmbeddingPending)
	}

	point := vectorstore.Point{
		ID:  id,
		Vec: vector,
		Meta: map[string]any{
			"user_id": note.UserID,
		},
	}
	if err := r.vectors.Upsert(ctx, r.collection, []vectorstore.Point{point}); err != nil {
		return fmt.Errorf("failed to store vector: %w", err)
	}

	return r.UpdateEmbeddingStatus(ctx, id, EmbeddingCompleted)
}

// ClearEmbedding discards any stored vector and marks the note failed.
func (r *NoteRepo) ClearEmbedding(ctx context.Context, id string) error {
	logger := contextutil.LoggerFromContext(ctx)

	if err := r.vectors.Delete(ctx, r.collection, []string{id}); err != nil {
		logger.WarnContext(ctx, "failed to delete vector", "note_id", id, "error", err)
	}

	return r.UpdateEmbeddingStatus(ctx, id, EmbeddingFailed)
}

// SearchBySimilarity returns up to limit notes ranked by cosine similarity.
func (r *NoteRepo) SearchBySimilarity(ctx context.Context, userID string, queryVector []float32, limit int) ([]ScoredNote, error) {
	logger := contextutil.LoggerFromContext(ctx)

	hits, err := r.vectors.Search(ctx, r.collection, queryVector, limit, map[string]any{
		"user_id": userID,
	})
	if err != nil {
		return nil, fmt.Errorf("similarity query: %w", err)
	}

	results := make([]ScoredNote, 0, len(hits))
	for _, hit := range hits {
		note, err := r.FindByID(ctx, hit.PointID)
		if err == ErrNotFound {
			// The note was deleted after its point; skip the orphan.
			logger.WarnContext(ctx, "vector hit without note row", "note_id", hit.PointID)
			continue
		}
		if err != nil {
			return nil, err
		}
		if note.Archived || note.EmbeddingStatus != EmbeddingCompleted {
			// Stale point from a racing update; the row is authoritative.
			continue
		}
		results = append(results, ScoredNote{Note: note, Score: float64(hit.Score)})
	}

	return results, nil
}

// SearchByTokens returns up to limit notes matching at least one token,
// ranked by token-match score. Title matches weigh double.
func (r *NoteRepo) SearchByTokens(ctx context.Context, userID string, tokens []string, limit int) ([]ScoredNote, error) {
	if len(tokens) == 0 {
		return nil, nil
	}

	query := `SELECT id, user_id, title, content, tags, archived, embedding_status, created_at, updated_at
		 FROM notes WHERE user_id = ? AND archived = 0 AND (`
	args := []any{userID}
	for i, token := range tokens {
		if i > 0 {
			query += " OR "
		}
		query += `LOWER(title) LIKE ? ESCAPE '\' OR LOWER(content) LIKE ? ESCAPE '\'`
		pattern := "%" + escapeLike(strings.ToLower(token)) + "%"
		args = append(args, pattern, pattern)
	}
	query += ")"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("lexical query: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var results []ScoredNote
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		results = append(results, ScoredNote{Note: note, Score: tokenScore(note, tokens)})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > limit {
		results = results[:limit]
	}

	return results, nil
}

// tokenScore counts token occurrences across title and content, with title
// occurrences weighted double.
func tokenScore(note *Note, tokens []string) float64 {
	title := strings.ToLower(note.Title)
	content := strings.ToLower(note.Content)

	var score float64
	for _, token := range tokens {
		token = strings.ToLower(token)
		if token == "" {
			continue
		}
		score += float64(2*strings.Count(title, token) + strings.Count(content, token))
	}
	return score
}

// escapeLike escapes SQL LIKE wildcards in a token.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}

// rowScanner is implemented by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanNote reads one note row.
func scanNote(row rowScanner) (*Note, error) {
	var note Note
	var tagsJSON string
	var status string
	var createdAtStr, updatedAtStr string

	err := row.Scan(&note.ID, &note.UserID, &note.Title, &note.Content, &tagsJSON,
		&note.Archived, &status, &createdAtStr, &updatedAtStr)
	if err != nil {
		return nil, err
	}

	note.EmbeddingStatus = EmbeddingStatus(status)

	if err := json.Unmarshal([]byte(tagsJSON), &note.Tags); err != nil {
		return nil, fmt.Errorf("failed to parse tags: %w", err)
	}
	if note.Tags == nil {
		note.Tags = []string{}
	}

	if note.CreatedAt, err = parseTimestamp(createdAtStr); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if note.UpdatedAt, err = parseTimestamp(updatedAtStr); err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return &note, nil
}

// parseTimestamp parses RFC3339 timestamps, falling back to the SQLite
// CURRENT_TIMESTAMP format.
func parseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", s)
}

// marshalTags serializes tags as a JSON array, never null.
func marshalTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("failed to marshal tags: %w", err)
	}
	return string(data), nil
}
