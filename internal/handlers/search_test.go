package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"go.uber.org/mock/gomock"

	"notevault/internal/search"
	search_mocks "notevault/internal/search/mocks"
)

func newSearchTestHandler(t *testing.T) (*SearchHandler, *search_mocks.MockSearcher) {
	t.Helper()
	ctrl := gomock.NewController(t)
	mockSearcher := search_mocks.NewMockSearcher(ctrl)
	return NewSearchHandler(mockSearcher), mockSearcher
}

func intptr(i int) *int           { return &i }
func floatptr(f float64) *float64 { return &f }

func TestSearchHandler_Defaults(t *testing.T) {
	handler, mockSearcher := newSearchTestHandler(t)

	mockSearcher.EXPECT().
		SemanticSearch(gomock.Any(), "user-1", "docker tips", defaultSearchLimit, defaultSearchThreshold, nil).
		Return(search.Response{
			Metadata: search.QueryMetadata{Query: "docker tips"},
		}, nil)

	rec := doJSON(t, handler, http.MethodPost, "/api/search", "user-1", SearchRequest{
		Query: "docker tips",
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var resp search.Response
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Results == nil {
		t.Error("results encoded as null, want []")
	}
	if resp.Metadata.Query != "docker tips" {
		t.Errorf("metadata query = %q, want docker tips", resp.Metadata.Query)
	}
}

func TestSearchHandler_ExplicitParams(t *testing.T) {
	handler, mockSearcher := newSearchTestHandler(t)

	mockSearcher.EXPECT().
		SemanticSearch(gomock.Any(), "user-1", "kubernetes", 25, 0.75, []string{"infra"}).
		Return(search.Response{}, nil)

	rec := doJSON(t, handler, http.MethodPost, "/api/search", "user-1", SearchRequest{
		Query:     "kubernetes",
		Limit:     intptr(25),
		Threshold: floatptr(0.75),
		Tags:      []string{"infra"},
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestSearchHandler_Validation(t *testing.T) {
	tests := []struct {
		name   string
		userID string
		body   SearchRequest
	}{
		{name: "missing user header", userID: "", body: SearchRequest{Query: "q"}},
		{name: "empty query", userID: "user-1", body: SearchRequest{Query: "   "}},
		{name: "limit too small", userID: "user-1", body: SearchRequest{Query: "q", Limit: intptr(0)}},
		{name: "limit too large", userID: "user-1", body: SearchRequest{Query: "q", Limit: intptr(101)}},
		{name: "threshold negative", userID: "user-1", body: SearchRequest{Query: "q", Threshold: floatptr(-0.1)}},
		{name: "threshold above one", userID: "user-1", body: SearchRequest{Query: "q", Threshold: floatptr(1.5)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, _ := newSearchTestHandler(t)
			rec := doJSON(t, handler, http.MethodPost, "/api/search", tt.userID, tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
			}
		})
	}
}

func TestSearchHandler_SearcherError(t *testing.T) {
	handler, mockSearcher := newSearchTestHandler(t)

	mockSearcher.EXPECT().
		SemanticSearch(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(search.Response{}, errors.New("database locked"))

	rec := doJSON(t, handler, http.MethodPost, "/api/search", "user-1", SearchRequest{Query: "q"})
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
}
