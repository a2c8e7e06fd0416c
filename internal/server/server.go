// Package server exposes classification over HTTP so dashboards and
// other tools can use the engine without holding vendor API keys.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadfilter-cli/internal/aiclassify"
	"github.com/sells-group/leadfilter-cli/internal/filter"
	"github.com/sells-group/leadfilter-cli/internal/model"
	"github.com/sells-group/leadfilter-cli/internal/rules"
)

// Server routes classification requests to a Backend and the rule
// engine.
type Server struct {
	backend aiclassify.Backend
	ruleSet *rules.RuleSet
	router  chi.Router
}

// New builds the HTTP server. backend may be nil, in which case
// /v1/classify returns 503 and only the rule endpoints work.
func New(backend aiclassify.Backend, ruleSet *rules.RuleSet) *Server {
	s := &Server{
		backend: backend,
		ruleSet: ruleSet,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Post("/v1/classify", s.handleClassify)
	r.Post("/v1/filter", s.handleFilter)

	s.router = r
	return s
}

// Handler returns the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Serve listens on the given port until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Serve(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: s.router,
	}

	go func() {
		<-ctx.Done()
		zap.L().Info("server: shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	zap.L().Info("server: listening", zap.Int("port", port))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return eris.Wrap(err, "server: listen")
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	if s.backend == nil {
		writeError(w, http.StatusServiceUnavailable, "no classification backend configured")
		return
	}

	var req aiclassify.ClassifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" || req.ServiceType == "" {
		writeError(w, http.StatusBadRequest, "name and service_type are required")
		return
	}

	lead := model.Lead{Name: req.Name, Category: req.Category, Address: req.Address}
	verdict, err := s.backend.ClassifyOne(r.Context(), lead, req.ServiceType)
	if err != nil {
		zap.L().Error("server: classify failed",
			zap.String("business", req.Name),
			zap.Error(err),
		)
		writeError(w, http.StatusBadGateway, "classification failed")
		return
	}

	writeJSON(w, http.StatusOK, aiclassify.ClassifyResponse{
		IsServiceProvider: verdict.IsServiceProvider,
		Confidence:        verdict.Confidence,
		Reason:            verdict.Reason,
		Model:             verdict.ModelUsed,
	})
}

// filterRequest is the wire request for POST /v1/filter.
type filterRequest struct {
	ServiceType string       `json:"service_type"`
	Leads       []model.Lead `json:"leads"`
}

// filterResponse is the wire response from POST /v1/filter.
type filterResponse struct {
	model.BatchResult
	Summary model.Summary `json:"summary"`
}

func (s *Server) handleFilter(w http.ResponseWriter, r *http.Request) {
	var req filterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ServiceType == "" {
		writeError(w, http.StatusBadRequest, "service_type is required")
		return
	}

	o := filter.NewOrchestrator(s.ruleSet, nil, 0)
	result, _, summary, err := o.Run(r.Context(), req.Leads, req.ServiceType, filter.ModeRule, nil)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "filtering failed")
		return
	}

	writeJSON(w, http.StatusOK, filterResponse{BatchResult: result, Summary: summary})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
