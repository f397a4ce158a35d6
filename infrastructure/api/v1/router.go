// Package v1 implements the corpus HTTP API.
package v1

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pondside/corpus/application/service"
	"github.com/pondside/corpus/domain/corpus"
	"github.com/pondside/corpus/infrastructure/api/middleware"
	"github.com/pondside/corpus/infrastructure/api/v1/dto"
)

// Router handles the corpus API endpoints.
type Router struct {
	sourceTexts *service.SourceTexts
	ingestion   *service.Ingestion
	retriever   *service.Retriever
	logger      *slog.Logger
}

// NewRouter creates a Router over the application services.
func NewRouter(
	sourceTexts *service.SourceTexts,
	ingestion *service.Ingestion,
	retriever *service.Retriever,
	logger *slog.Logger,
) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		sourceTexts: sourceTexts,
		ingestion:   ingestion,
		retriever:   retriever,
		logger:      logger,
	}
}

// Routes returns the chi router for the corpus endpoints.
func (rt *Router) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/healthz", rt.Health)
	router.Post("/sourceTexts", rt.CreateSourceText)
	router.Post("/snippets/fromSourceText", rt.CreateSnippets)
	router.Post("/embeddings/fromSourceText", rt.CreateEmbeddings)
	router.Get("/snippets/relevantToQuery", rt.RelevantSnippets)

	return router
}

// Health handles GET /healthz.
func (rt *Router) Health(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// CreateSourceText handles POST /sourceTexts.
func (rt *Router) CreateSourceText(w http.ResponseWriter, r *http.Request) {
	var body dto.SourceTextCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		middleware.WriteError(w, r, fmt.Errorf("%w: invalid request body", corpus.ErrValidation), rt.logger)
		return
	}

	text, err := rt.sourceTexts.Create(r.Context(), service.CreateParams{
		Name:        body.Name,
		Filename:    body.Filename,
		URL:         body.URL,
		Description: body.Description,
		Content:     body.Content,
	})
	if err != nil {
		middleware.WriteError(w, r, err, rt.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, dto.SourceTextResponse{
		ID:          text.ID().String(),
		Name:        text.Name(),
		Filename:    text.Filename(),
		URL:         text.URL(),
		Description: text.Description(),
		CreatedAt:   text.CreatedAt(),
	})
}

// CreateSnippets handles POST /snippets/fromSourceText.
func (rt *Router) CreateSnippets(w http.ResponseWriter, r *http.Request) {
	id, ok := rt.decodeSourceTextID(w, r)
	if !ok {
		return
	}

	count, err := rt.ingestion.CreateSnippets(r.Context(), id)
	if err != nil {
		middleware.WriteError(w, r, err, rt.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, dto.CreatedCountResponse{CreatedCount: count})
}

// CreateEmbeddings handles POST /embeddings/fromSourceText.
func (rt *Router) CreateEmbeddings(w http.ResponseWriter, r *http.Request) {
	id, ok := rt.decodeSourceTextID(w, r)
	if !ok {
		return
	}

	count, err := rt.ingestion.CreateEmbeddings(r.Context(), id)
	if err != nil {
		middleware.WriteError(w, r, err, rt.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, dto.CreatedCountResponse{CreatedCount: count})
}

// RelevantSnippets handles GET /snippets/relevantToQuery. The max parameter
// is clamped to the service ceiling silently.
func (rt *Router) RelevantSnippets(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if query == "" {
		middleware.WriteError(w, r, fmt.Errorf("%w: query parameter is required", corpus.ErrValidation), rt.logger)
		return
	}

	max := 0
	if raw := r.URL.Query().Get("max"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			middleware.WriteError(w, r, fmt.Errorf("%w: max must be an integer", corpus.ErrValidation), rt.logger)
			return
		}
		max = parsed
	}

	contents, err := rt.retriever.FindRelevant(r.Context(), query, max)
	if err != nil {
		middleware.WriteError(w, r, err, rt.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, contents)
}

func (rt *Router) decodeSourceTextID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	var body dto.FromSourceTextRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		middleware.WriteError(w, r, fmt.Errorf("%w: invalid request body", corpus.ErrValidation), rt.logger)
		return uuid.UUID{}, false
	}

	id, err := uuid.Parse(body.ID)
	if err != nil {
		middleware.WriteError(w, r, fmt.Errorf("%w: invalid source text id %q", corpus.ErrValidation, body.ID), rt.logger)
		return uuid.UUID{}, false
	}
	return id, true
}
