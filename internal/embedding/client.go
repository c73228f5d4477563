package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
)

// Client is a Provider backed by an OpenAI-compatible embeddings endpoint
// (llama.cpp server, text-embeddings-inference, etc).
type Client struct {
	BaseURL    string
	APIKey     string
	Model      string
	Dimensions int

	client *http.Client

	mu          sync.RWMutex
	initialized bool
}

// NewClient creates a new embeddings client. dimensions is the vector size the
// model is expected to produce; every returned vector is validated against it.
func NewClient(baseURL, apiKey, model string, dimensions int) *Client {
	return &Client{
		BaseURL:    baseURL,
		APIKey:     apiKey,
		Model:      model,
		Dimensions: dimensions,
		client:     http.DefaultClient,
	}
}

// embedRequest represents the request payload for the embeddings API.
type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

// embedData represents a single embedding in the response.
type embedData struct {
	Embedding []float64 `json:"embedding"`
}

// embedResponse represents the response from the embeddings API.
type embedResponse struct {
	Data []embedData `json:"data"`
}

// Initialize verifies the model is reachable and produces vectors of the
// configured size. It is idempotent; repeated calls after a successful
// initialization are no-ops.
func (c *Client) Initialize(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.initialized {
		return nil
	}

	// Fail fast on an unreachable endpoint or a model with the wrong
	// output size, before any note is queued against this provider.
	vec, err := c.embed(ctx, "initialization probe")
	if err != nil {
		return fmt.Errorf("embedding provider initialization: %w", err)
	}
	if len(vec) != c.Dimensions {
		return &DimensionMismatchError{Want: c.Dimensions, Got: len(vec)}
	}

	c.initialized = true
	return nil
}

// GenerateEmbedding returns the embedding vector for text.
func (c *Client) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	c.mu.RLock()
	initialized := c.initialized
	c.mu.RUnlock()

	if !initialized {
		return nil, ErrNotInitialized
	}

	vec, err := c.embed(ctx, text)
	if err != nil {
		return nil, &GenerationError{Err: err}
	}
	if len(vec) != c.Dimensions {
		return nil, &DimensionMismatchError{Want: c.Dimensions, Got: len(vec)}
	}

	return vec, nil
}

// Status reports the provider state.
func (c *Client) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return Status{
		Initialized: c.initialized,
		ModelID:     c.Model,
		Dimensions:  c.Dimensions,
	}
}

// embed performs a single-input call against the embeddings endpoint.
func (c *Client) embed(ctx context.Context, text string) ([]float32, error) {
	url := fmt.Sprintf("%s/v1/embeddings", c.BaseURL)

	payload := embedRequest{
		Model: c.Model,
		Input: []string{text},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.APIKey))
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("bad status %d: %s", resp.StatusCode, string(raw))
	}

	var embResp embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&embResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(embResp.Data) != 1 {
		return nil, fmt.Errorf("expected 1 embedding, got %d", len(embResp.Data))
	}

	// Convert []float64 to []float32
	raw := embResp.Data[0].Embedding
	vec := make([]float32, len(raw))
	for i, v := range raw {
		vec[i] = float32(v)
	}

	return vec, nil
}
