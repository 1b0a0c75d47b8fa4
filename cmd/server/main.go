package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"embed-gateway/internal/app"
	"embed-gateway/internal/cache"
	"embed-gateway/internal/embeddings"
	"embed-gateway/internal/events"
	"embed-gateway/internal/httputil"
	"embed-gateway/internal/store"
)

type createRequest struct {
	Text     string         `json:"text" validate:"required"`
	Metadata map[string]any `json:"metadata"`
}

type searchRequest struct {
	Query                  string         `json:"query" validate:"required"`
	TopK                   int            `json:"topK"`
	Filter                 map[string]any `json:"filter"`
	IncludeValues          bool           `json:"includeValues"`
	IncludeMetadata        *bool          `json:"includeMetadata"`
	ReturnSimilarityScores *bool          `json:"returnSimilarityScores"`
}

type searchResult struct {
	ID       string            `json:"id"`
	Score    *float32          `json:"score,omitempty"`
	Text     string            `json:"text"`
	Metadata map[string]any    `json:"metadata,omitempty"`
	Values   embeddings.Vector `json:"values,omitempty"`
}

type searchResponse struct {
	Query   string         `json:"query"`
	Results []searchResult `json:"results"`
	Total   int            `json:"total"`
}

func main() {
	deps, err := app.Build()
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		os.Exit(1)
	}
	r := httputil.NewRouter(deps.Log)
	registerRoutes(r, deps)

	addr := fmt.Sprintf(":%d", deps.Config.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		deps.Log.Info("gateway listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		deps.Log.Error("server failed", "err", err)
	}
	if err := deps.Store.Close(); err != nil {
		deps.Log.Warn("store close failed", "err", err)
	}
	if err := deps.Cache.Close(); err != nil {
		deps.Log.Warn("cache close failed", "err", err)
	}
}

func registerRoutes(r *chi.Mux, deps app.Deps) {
	r.Post("/embed", createHandler(deps))
	r.Get("/embed/{id}", getHandler(deps))
	r.Delete("/embed/{id}", deleteHandler(deps))
	// An absent id segment is a bad request, not an unknown route.
	r.Get("/embed/", missingIDHandler(deps))
	r.Delete("/embed/", missingIDHandler(deps))
	// Search exists only when the backing store can rank by similarity;
	// the key-value variant routes /search to the 404 handler.
	if searcher, ok := deps.Store.(store.Searcher); ok {
		r.Post("/search", searchHandler(deps, searcher))
	}
	r.Get("/healthz", httputil.HealthHandler(deps.Log))
}

func createHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := httputil.BearerToken(r)
		if !ok {
			httputil.Fail(deps.Log, w, "Missing Authorization header", nil, http.StatusUnauthorized)
			return
		}

		var req createRequest
		if err := decodeJSON(w, r, deps.Config.MaxBodySize, &req); err != nil {
			// Unparseable bodies get the same answer as a missing field.
			httputil.Fail(deps.Log, w, "Missing or invalid 'text' field", err, http.StatusBadRequest)
			return
		}
		if err := httputil.Validator.Struct(&req); err != nil {
			httputil.Fail(deps.Log, w, "Missing or invalid 'text' field", err, http.StatusBadRequest)
			return
		}

		ctx := r.Context()
		vec, err := deps.Embedder.Embed(ctx, token, req.Text)
		if err != nil {
			failEmbed(deps.Log, w, err, false)
			return
		}

		id := uuid.NewString()
		metadata := mergeMetadata(req.Text, req.Metadata)
		if err := deps.Store.Upsert(ctx, store.Record{ID: id, Vector: vec, Metadata: metadata}); err != nil {
			httputil.Fail(deps.Log, w, "Failed to store embedding", err, http.StatusInternalServerError)
			return
		}
		publishEvent(ctx, deps, events.EventTypeCreated, id)

		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"message":  "Embedding created successfully",
			"id":       id,
			"metadata": metadata,
		})
	}
}

func missingIDHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httputil.Fail(deps.Log, w, "Missing embedding ID", nil, http.StatusBadRequest)
	}
}

func getHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(chi.URLParam(r, "id"))
		if id == "" {
			httputil.Fail(deps.Log, w, "Missing embedding ID", nil, http.StatusBadRequest)
			return
		}

		recs, err := deps.Store.GetByIDs(r.Context(), []string{id})
		if err != nil {
			httputil.Fail(deps.Log, w, "Failed to retrieve embedding", err, http.StatusInternalServerError)
			return
		}
		if len(recs) == 0 {
			httputil.Fail(deps.Log, w, "Embedding not found", store.ErrNotFound, http.StatusNotFound)
			return
		}

		rec := recs[0]
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"id":        rec.ID,
			"text":      rec.Text(),
			"embedding": rec.Vector,
			"timestamp": rec.Timestamp(),
			"metadata":  rec.Metadata,
		})
	}
}

func searchHandler(deps app.Deps, searcher store.Searcher) http.HandlerFunc {
	cacheTTL := time.Duration(deps.Config.CacheTTL) * time.Second

	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := httputil.BearerToken(r)
		if !ok {
			httputil.Fail(deps.Log, w, "Missing Authorization header", nil, http.StatusUnauthorized)
			return
		}

		var req searchRequest
		if err := decodeJSON(w, r, deps.Config.MaxBodySize, &req); err != nil {
			httputil.Fail(deps.Log, w, "Missing or invalid 'query' field", err, http.StatusBadRequest)
			return
		}
		if err := httputil.Validator.Struct(&req); err != nil {
			httputil.Fail(deps.Log, w, "Missing or invalid 'query' field", err, http.StatusBadRequest)
			return
		}

		topK := req.TopK
		if topK == 0 {
			topK = 5
		}
		includeMetadata := req.IncludeMetadata == nil || *req.IncludeMetadata
		returnScores := req.ReturnSimilarityScores == nil || *req.ReturnSimilarityScores

		ctx := r.Context()

		// The key derives from request fields alone, so a cached response
		// skips the provider call as well as the store query.
		cacheKey := cache.GenerateCacheKey(req.Query, topK, req.Filter, req.IncludeValues, includeMetadata, returnScores)
		if cached, err := deps.Cache.GetSearchResult(ctx, cacheKey); err == nil && cached != nil {
			deps.Log.Info("search cache hit", "query", req.Query)
			httputil.WriteJSON(w, http.StatusOK, map[string]any{
				"query":   cached.Query,
				"results": cached.Results,
				"total":   cached.Total,
			})
			return
		}

		vec, err := deps.Embedder.Embed(ctx, token, req.Query)
		if err != nil {
			// Unlike create, the provider's raw error body is surfaced.
			failEmbed(deps.Log, w, err, true)
			return
		}
		if len(vec) == 0 {
			// Malformed upstream response, not a user input error.
			httputil.Fail(deps.Log, w, "Failed to generate query embedding", nil, http.StatusInternalServerError)
			return
		}

		matches, err := searcher.Query(ctx, vec, store.QueryOptions{
			TopK:           topK,
			Filter:         req.Filter,
			ReturnMetadata: true,
			ReturnValues:   req.IncludeValues,
		})
		if err != nil {
			httputil.Fail(deps.Log, w, "Search failed", err, http.StatusInternalServerError)
			return
		}

		// The store's ranking is passed through untouched.
		results := make([]searchResult, 0, len(matches))
		for _, m := range matches {
			res := searchResult{ID: m.ID}
			if returnScores {
				score := m.Score
				res.Score = &score
			}
			if text, ok := m.Metadata[store.MetaText].(string); ok {
				res.Text = text
			}
			if includeMetadata {
				res.Metadata = m.Metadata
			}
			if req.IncludeValues {
				res.Values = m.Vector
			}
			results = append(results, res)
		}
		resp := searchResponse{Query: req.Query, Results: results, Total: len(results)}

		if raw, err := json.Marshal(results); err == nil {
			if err := deps.Cache.SetSearchResult(ctx, cacheKey, &cache.SearchResult{
				Query:   resp.Query,
				Results: raw,
				Total:   resp.Total,
			}, cacheTTL); err != nil {
				deps.Log.Warn("failed to cache search result", "err", err)
			}
		}

		httputil.WriteJSON(w, http.StatusOK, resp)
	}
}

func deleteHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(chi.URLParam(r, "id"))
		if id == "" {
			httputil.Fail(deps.Log, w, "Missing embedding ID", nil, http.StatusBadRequest)
			return
		}

		ctx := r.Context()
		// The store is not asked whether the id existed; deletes are
		// idempotent from the caller's perspective.
		if err := deps.Store.DeleteByIDs(ctx, []string{id}); err != nil {
			httputil.Fail(deps.Log, w, "Failed to delete embedding", err, http.StatusInternalServerError)
			return
		}
		publishEvent(ctx, deps, events.EventTypeDeleted, id)
		if err := deps.Cache.InvalidateSearches(ctx); err != nil {
			deps.Log.Warn("failed to invalidate search cache", "err", err)
		}

		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"message": "Embedding deleted successfully",
			"id":      id,
		})
	}
}

// decodeJSON parses a request body into dst, bounding the read when
// maxBytes is positive.
func decodeJSON(w http.ResponseWriter, r *http.Request, maxBytes int64, dst any) error {
	body := r.Body
	if maxBytes > 0 {
		body = http.MaxBytesReader(w, body, maxBytes)
	}
	return json.NewDecoder(body).Decode(dst)
}

// mergeMetadata combines the system fields with caller-supplied metadata.
// Caller keys win on collision, preserving the original spread order.
func mergeMetadata(text string, callerMeta map[string]any) map[string]any {
	metadata := map[string]any{
		store.MetaText:      text,
		store.MetaTimestamp: time.Now().UTC().Format(time.RFC3339),
	}
	for k, v := range callerMeta {
		metadata[k] = v
	}
	return metadata
}

// failEmbed maps an embedding failure to a response, forwarding the
// provider's status code when known. includeBody additionally surfaces the
// provider's raw error payload in the message.
func failEmbed(log *slog.Logger, w http.ResponseWriter, err error, includeBody bool) {
	status := http.StatusInternalServerError
	message := "Failed to generate embedding"

	var ue *embeddings.UpstreamError
	if errors.As(err, &ue) {
		if ue.StatusCode != 0 {
			status = ue.StatusCode
		}
		if includeBody && ue.Body != "" {
			message = message + ": " + ue.Body
		}
	}
	httputil.Fail(log, w, message, err, status)
}

func publishEvent(ctx context.Context, deps app.Deps, eventType events.EventType, id string) {
	err := deps.Events.Publish(ctx, events.Event{
		Type:        eventType,
		EmbeddingID: id,
		OccurredAt:  time.Now().UTC(),
	})
	if err != nil {
		deps.Log.Warn("failed to publish event", "type", eventType, "embedding_id", id, "err", err)
	}
}
