package internal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Server exposes recommendations over HTTP for a single scope.
type Server struct {
	recommend *RecommendService
	catalogs  *CatalogService
	gatherer  prometheus.Gatherer
	logger    zerolog.Logger
	scope     string
}

func NewServer(
	recommend *RecommendService,
	catalogs *CatalogService,
	gatherer prometheus.Gatherer,
	logger zerolog.Logger,
	scopeHint string,
) *Server {
	return &Server{
		recommend: recommend,
		catalogs:  catalogs,
		gatherer:  gatherer,
		logger:    logger,
		scope:     scopeHint,
	}
}

type recommendRequest struct {
	Type           string `json:"type" validate:"required"`
	Season         string `json:"season" validate:"required"`
	Budget         string `json:"budget" validate:"required"`
	FamilyFriendly bool   `json:"family_friendly"`
	GirlsFriendly  bool   `json:"girls_friendly"`
	TopK           int    `json:"top_k" validate:"min=0,max=100"`
}

type recommendationJSON struct {
	Destination
	Score float64 `json:"score"`
}

type recommendResponse struct {
	RequestID       string               `json:"request_id"`
	Recommendations []recommendationJSON `json:"recommendations"`
}

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
	Value string `json:"value,omitempty"`
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(s.requestID)
	r.Use(s.accessLog)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/catalog", s.handleCatalog)
		r.Get("/catalog/options", s.handleOptions)
		r.Post("/recommendations", s.handleRecommend)
	})

	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	return r
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	return s.Serve(ctx, ln)
}

func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", ln.Addr().String()).Msg("serving recommendations")
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCatalog(w http.ResponseWriter, _ *http.Request) {
	rec, err := s.catalogs.Recommender(s.scope)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec.Destinations())
}

func (s *Server) handleOptions(w http.ResponseWriter, _ *http.Request) {
	rec, err := s.catalogs.Recommender(s.scope)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec.Options())
}

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	var req recommendRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request: " + err.Error()})
		return
	}
	if err := validatorInstance().Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request: " + err.Error()})
		return
	}

	results, err := s.recommend.Recommend(r.Context(), RecommendInput{
		Preference: Preference{
			Type:           req.Type,
			Season:         req.Season,
			Budget:         req.Budget,
			FamilyFriendly: req.FamilyFriendly,
			GirlsFriendly:  req.GirlsFriendly,
		},
		Limit: req.TopK,
		Scope: s.scope,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := recommendResponse{
		RequestID:       RequestIDFromContext(r.Context()),
		Recommendations: make([]recommendationJSON, len(results)),
	}
	for i, rec := range results {
		resp.Recommendations[i] = recommendationJSON{
			Destination: rec.Destination,
			Score:       rec.Score,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	var unknown *UnknownCategoryError
	switch {
	case errors.As(err, &unknown):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error: err.Error(),
			Field: string(unknown.Field),
			Value: unknown.Value,
		})
	case IsUserError(err):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	default:
		s.logger.Error().Err(err).Msg("request failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = NewRequestID()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(ContextWithRequestID(r.Context(), id)))
	})
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info().
			Str("request_id", RequestIDFromContext(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("took", time.Since(start)).
			Msg("http request")
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
