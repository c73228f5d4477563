package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"notevault/internal/embedding"
	"notevault/internal/handlers"
	"notevault/internal/queue"
	"notevault/internal/search"
	"notevault/internal/storage"
	"notevault/internal/vectorstore"
)

// EmbeddingQueue is the queue surface the HTTP layer needs.
type EmbeddingQueue interface {
	Enqueue(noteID string)
	Status() queue.Status
}

// Deps holds dependencies for the HTTP router.
type Deps struct {
	Store          storage.NoteStore
	Queue          EmbeddingQueue
	Searcher       search.Searcher
	VectorStore    vectorstore.VectorStore
	Provider       embedding.Provider
	CollectionName string
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(LoggerMiddleware)
	r.Use(CORS)

	noteHandler := handlers.NewNoteHandler(deps.Store, deps.Queue)
	searchHandler := handlers.NewSearchHandler(deps.Searcher)
	healthHandler := handlers.NewHealthHandler(deps.VectorStore, deps.Provider, deps.Queue, deps.CollectionName)

	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodGet, "/health", healthHandler)
		r.Method(http.MethodPost, "/search", searchHandler)

		r.Route("/notes", func(r chi.Router) {
			r.Post("/", noteHandler.Create)
			r.Get("/", noteHandler.List)
			r.Get("/{id}", noteHandler.Get)
			r.Put("/{id}", noteHandler.Update)
			r.Delete("/{id}", noteHandler.Delete)
		})
	})

	return r
}
