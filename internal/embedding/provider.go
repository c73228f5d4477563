// Package embedding defines the embedding provider contract and its HTTP implementation.
package embedding

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_provider.go -package=mocks notevault/internal/embedding Provider

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotInitialized is returned when GenerateEmbedding is called before Initialize has completed.
var ErrNotInitialized = errors.New("embedding provider not initialized")

// GenerationError wraps any internal fault of the embedding model.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("embedding generation failed: %v", e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// DimensionMismatchError is returned when the model produces a vector of the wrong length.
type DimensionMismatchError struct {
	Want int
	Got  int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("embedding dimension mismatch: want %d, got %d", e.Want, e.Got)
}

// Status describes the current state of a provider.
type Status struct {
	Initialized bool   `json:"is_initialized"`
	ModelID     string `json:"model_id"`
	Dimensions  int    `json:"dimensions"`
}

// Provider turns text into fixed-length embedding vectors.
// Implementations are expensive to construct and shared process-wide;
// consumers depend only on this contract.
type Provider interface {
	// Initialize prepares the provider for use. It is idempotent and must
	// complete before any GenerateEmbedding call.
	Initialize(ctx context.Context) error

	// GenerateEmbedding returns the embedding vector for text.
	// Calling it before Initialize fails with ErrNotInitialized. Internal
	// faults surface as *GenerationError, and vectors of the wrong length
	// as *DimensionMismatchError.
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)

	// Status reports whether the provider is initialized, which model it
	// serves and the vector size it produces.
	Status() Status
}
