package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/poiesic/rankit"
	"github.com/poiesic/rankit/core"
	"github.com/poiesic/rankit/metrics"
	"github.com/poiesic/rankit/search"
	"github.com/urfave/cli/v2"
)

type server struct {
	lib     *rankit.Library
	metrics *metrics.SearchMetrics
	logger  *slog.Logger
}

type searchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

func serveCommand(c *cli.Context) error {
	m := metrics.NewSearchMetrics()
	lib, err := openLibrary(c, rankit.WithMetrics(m))
	if err != nil {
		return err
	}
	defer lib.Close()

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &server{lib: lib, metrics: m, logger: slog.Default().With("component", "server")}
	httpServer := &http.Server{
		Addr:         c.String("addr"),
		Handler:      srv.routes(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		srv.logger.Info("listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		srv.logger.Error("shutdown error", "err", err)
		return err
	}
	return nil
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.healthz)
	mux.HandleFunc("/search", s.search)
	mux.HandleFunc("/analyze", s.analyze)
	mux.Handle("/metrics", s.metrics.Handler())
	return s.metrics.Middleware(mux)
}

func (s *server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeHTTPJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) search(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeRequest(w, r)
	if !ok {
		return
	}

	results, err := s.lib.Search(r.Context(), req.Query, req.Limit)
	switch {
	case errors.Is(err, search.ErrInvalidMaxHits):
		writeHTTPJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, core.ErrCollaboratorUnavailable):
		s.logger.Warn("search unavailable", "err", err)
		writeHTTPJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
	case err != nil:
		s.logger.Error("search failed", "err", err)
		writeHTTPJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	default:
		writeHTTPJSON(w, http.StatusOK, results)
	}
}

func (s *server) analyze(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeRequest(w, r)
	if !ok {
		return
	}

	sq, err := s.lib.Engine().Analyze(r.Context(), req.Query)
	switch {
	case errors.Is(err, core.ErrCollaboratorUnavailable):
		s.logger.Warn("analysis unavailable", "err", err)
		writeHTTPJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
	case err != nil:
		writeHTTPJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	default:
		writeHTTPJSON(w, http.StatusOK, analysisOutput{SemanticAnalysis: sq})
	}
}

// decodeRequest reads the query from a JSON body on POST or from the q and
// limit parameters on GET.
func (s *server) decodeRequest(w http.ResponseWriter, r *http.Request) (searchRequest, bool) {
	var req searchRequest
	switch r.Method {
	case http.MethodGet:
		req.Query = r.URL.Query().Get("q")
		if limit := r.URL.Query().Get("limit"); limit != "" {
			n, err := strconv.Atoi(limit)
			if err != nil {
				writeHTTPJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid limit"})
				return req, false
			}
			req.Limit = n
		}
	case http.MethodPost:
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeHTTPJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
			return req, false
		}
	default:
		writeHTTPJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return req, false
	}

	if strings.TrimSpace(req.Query) == "" {
		writeHTTPJSON(w, http.StatusBadRequest, map[string]string{"error": "query is required"})
		return req, false
	}
	return req, true
}

func writeHTTPJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
