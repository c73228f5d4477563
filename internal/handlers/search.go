package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"notevault/internal/contextutil"
	"notevault/internal/search"
)

const (
	defaultSearchLimit     = 10
	maxSearchLimit         = 100
	defaultSearchThreshold = 0.3
)

// SearchHandler handles semantic search requests.
type SearchHandler struct {
	searcher search.Searcher
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(searcher search.Searcher) *SearchHandler {
	return &SearchHandler{searcher: searcher}
}

// SearchRequest is the payload for a search query. Limit and Threshold are
// pointers so that absent and zero can be told apart.
type SearchRequest struct {
	Query     string   `json:"query"`
	Limit     *int     `json:"limit,omitempty"`
	Threshold *float64 `json:"threshold,omitempty"`
	Tags      []string `json:"tags,omitempty"`
}

// ServeHTTP handles POST /api/search.
func (h *SearchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, "Query is required")
		return
	}

	limit := defaultSearchLimit
	if req.Limit != nil {
		if *req.Limit < 1 || *req.Limit > maxSearchLimit {
			writeError(w, http.StatusBadRequest, "Limit must be between 1 and 100")
			return
		}
		limit = *req.Limit
	}

	threshold := defaultSearchThreshold
	if req.Threshold != nil {
		if *req.Threshold < 0 || *req.Threshold > 1 {
			writeError(w, http.StatusBadRequest, "Threshold must be between 0 and 1")
			return
		}
		threshold = *req.Threshold
	}

	resp, err := h.searcher.SemanticSearch(ctx, userID, req.Query, limit, threshold, req.Tags)
	if err != nil {
		logger.ErrorContext(ctx, "search failed", "query", req.Query, "error", err)
		writeError(w, http.StatusInternalServerError, "Search failed")
		return
	}

	if resp.Results == nil {
		resp.Results = []search.Result{}
	}
	writeJSON(w, http.StatusOK, resp)
}
