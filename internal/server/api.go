// Package server exposes the concierge over HTTP for route handlers and the
// voice subsystem. Degradation inside the core always surfaces as a 200 with
// a fallback payload; this subsystem never answers 5xx for its own failures.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/scriptishrx/concierge/internal/concierge"
	"github.com/scriptishrx/concierge/internal/rag"
)

// API is the concierge HTTP server.
type API struct {
	svc    *concierge.Service
	engine *rag.Engine
	health *HealthServer
	server *http.Server
}

// Config configures the API server.
type Config struct {
	Addr    string
	Version string
}

// NewAPI creates the API server.
func NewAPI(cfg Config, svc *concierge.Service, engine *rag.Engine) *API {
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}

	a := &API{
		svc:    svc,
		engine: engine,
		health: NewHealthServer(&HealthConfig{Version: cfg.Version}),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/query", a.handleQuery)
	mux.HandleFunc("/v1/search", a.handleSearch)
	mux.HandleFunc("/v1/voice-context", a.handleVoiceContext)
	mux.HandleFunc("/v1/cache", a.handleCache)
	mux.Handle("/healthz", a.health.Handler())
	mux.Handle("/readyz", a.health.Handler())
	mux.Handle("/livez", a.health.Handler())

	a.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      loggingMiddleware(mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return a
}

// Health exposes the health server for check registration.
func (a *API) Health() *HealthServer { return a.health }

// Handler returns the full HTTP handler (used by tests).
func (a *API) Handler() http.Handler { return a.server.Handler }

// Start begins serving.
func (a *API) Start() error {
	a.health.SetReady(true)
	slog.Info("starting concierge API", "addr", a.server.Addr)
	if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("api server error: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the server.
func (a *API) Stop(ctx context.Context) error {
	a.health.SetReady(false)
	return a.server.Shutdown(ctx)
}

type queryRequest struct {
	Message  string `json:"message"`
	TenantID string `json:"tenant_id,omitempty"`
}

type queryResponse struct {
	Answer string `json:"answer"`
}

// handleQuery handles POST /v1/query.
func (a *API) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if !decodePost(w, r, &req) {
		return
	}
	if req.Message == "" {
		http.Error(w, "message is required", http.StatusBadRequest)
		return
	}

	answer := a.svc.Query(r.Context(), req.Message, req.TenantID)
	respondJSON(w, queryResponse{Answer: answer})
}

type searchResponse struct {
	Results      []rag.Result `json:"results"`
	BusinessName string       `json:"business_name"`
	Source       string       `json:"source,omitempty"`
}

// handleSearch handles POST /v1/search: runs the retrieval chain and
// returns the ranked results without synthesis.
func (a *API) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if !decodePost(w, r, &req) {
		return
	}
	if req.Message == "" {
		http.Error(w, "message is required", http.StatusBadRequest)
		return
	}

	results, name, source := a.engine.Retrieve(r.Context(), req.Message, req.TenantID)
	respondJSON(w, searchResponse{Results: results, BusinessName: name, Source: source})
}

// handleVoiceContext handles POST /v1/voice-context.
func (a *API) handleVoiceContext(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if !decodePost(w, r, &req) {
		return
	}
	if req.Message == "" {
		http.Error(w, "message is required", http.StatusBadRequest)
		return
	}

	respondJSON(w, a.svc.VoiceContextFor(r.Context(), req.Message, req.TenantID))
}

// handleCache handles DELETE /v1/cache?tenant=; omitting the tenant clears
// every key. FAQ-editing workflows call this after any content change.
func (a *API) handleCache(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	tenantID := r.URL.Query().Get("tenant")
	a.svc.ClearCache(r.Context(), tenantID)
	respondJSON(w, map[string]string{"status": "ok"})
}

func decodePost(w http.ResponseWriter, r *http.Request, dst any) bool {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return false
	}
	return true
}

func respondJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON", "error", err)
	}
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Debug("HTTP request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}
