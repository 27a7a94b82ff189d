// Package server exposes the distillation pipeline over HTTP.
//
// Routes:
//
//	GET  /healthz               build information
//	POST /v1/analyze            distill a restore graph and store the result
//	GET  /v1/analyses           list stored analyses, newest first
//	GET  /v1/analyses/{id}      fetch a stored analysis
//
// Errors are returned as {"error": {"code": ..., "message": ...}} with the
// status derived from the error code.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/matzehuels/depdistill/pkg/analyzer"
	"github.com/matzehuels/depdistill/pkg/buildinfo"
	"github.com/matzehuels/depdistill/pkg/errors"
	"github.com/matzehuels/depdistill/pkg/pipeline"
	"github.com/matzehuels/depdistill/pkg/store"
)

// RequestIDHeader carries the request id on requests and responses.
const RequestIDHeader = "X-Request-ID"

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Options configures a Server.
type Options struct {
	// Root confines the restore graphs a request may name to this directory.
	// Relative graph paths are resolved against it. An empty Root accepts any
	// path readable by the server process.
	Root string
}

// Server serves the HTTP API.
type Server struct {
	runner *pipeline.Runner
	store  store.Store
	logger *log.Logger
	root   string
	router chi.Router
}

// New creates a Server. The runner's store is used for history and must be
// set.
func New(runner *pipeline.Runner, logger *log.Logger, opts Options) (*Server, error) {
	s := &Server{
		runner: runner,
		store:  runner.Store,
		logger: logger,
	}
	if opts.Root != "" {
		root, err := filepath.Abs(opts.Root)
		if err != nil {
			return nil, fmt.Errorf("resolve root %s: %w", opts.Root, err)
		}
		s.root = root
	}
	s.router = s.routes()
	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/analyze", s.handleAnalyze)
		r.Get("/analyses", s.handleList)
		r.Get("/analyses/{id}", s.handleGet)
	})
	return r
}

// =============================================================================
// Handlers
// =============================================================================

type healthResponse struct {
	Status string         `json:"status"`
	Build  buildinfo.Info `json:"build"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Build: buildinfo.Current()})
}

// AnalyzeRequest is the body of POST /v1/analyze.
type AnalyzeRequest struct {
	GraphPath string `json:"graphPath"`
	Search    string `json:"search,omitempty"`
	Libraries bool   `json:"libraries,omitempty"`
	Refresh   bool   `json:"refresh,omitempty"`
}

// AnalyzeResponse is the body returned by POST /v1/analyze.
type AnalyzeResponse struct {
	ID     string           `json:"id"`
	Cached bool             `json:"cached"`
	Stats  analyzer.Stats   `json:"stats"`
	Result *analyzer.Result `json:"result"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body"))
		return
	}
	if req.GraphPath == "" {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "graphPath is required"))
		return
	}
	graphPath, err := s.resolveGraph(req.GraphPath)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.runner.Execute(r.Context(), pipeline.Options{
		GraphPath:        graphPath,
		Search:           req.Search,
		IncludeLibraries: req.Libraries,
		Refresh:          req.Refresh,
		Formats:          []string{pipeline.FormatJSON},
		Save:             true,
		Logger:           loggerFrom(r.Context(), s.logger),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Location", "/v1/analyses/"+res.ID)
	writeJSON(w, http.StatusCreated, AnalyzeResponse{
		ID:     res.ID,
		Cached: res.CacheInfo.AnalyzeHit,
		Stats:  res.Analysis.Stats,
		Result: res.Analysis,
	})
}

// resolveGraph maps a requested graph path into the server root. Paths that
// leave the root are rejected.
func (s *Server) resolveGraph(path string) (string, error) {
	if s.root == "" {
		return path, nil
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.root, path)
	}
	path = filepath.Clean(path)
	rel, err := filepath.Rel(s.root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errors.New(errors.ErrCodeInvalidPath, "graphPath must be inside the server root")
	}
	return path, nil
}

// ListResponse is the body returned by GET /v1/analyses.
type ListResponse struct {
	Analyses []store.Analysis `json:"analyses"`
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "invalid limit: %q", v))
			return
		}
		limit = n
	}
	list, err := s.store.List(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if list == nil {
		list = []store.Analysis{}
	}
	writeJSON(w, http.StatusOK, ListResponse{Analyses: list})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	a, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// =============================================================================
// Responses
// =============================================================================

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code      errors.Code `json:"code"`
	Message   string      `json:"message"`
	RequestID string      `json:"requestId,omitempty"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	msg := errors.UserMessage(err)
	if status >= http.StatusInternalServerError {
		loggerFrom(r.Context(), s.logger).Error("request failed", "error", err)
		if code == errors.ErrCodeInternal {
			msg = "internal error"
		}
	}
	writeJSON(w, status, errorBody{Error: errorDetail{
		Code:      code,
		Message:   msg,
		RequestID: requestIDFrom(r.Context()),
	}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// =============================================================================
// Middleware
// =============================================================================

type ctxKey int

const (
	requestIDKey ctxKey = iota
	loggerKey
)

// requestID assigns each request a UUID, or keeps a valid incoming one.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		logger := s.logger.With("request", requestIDFrom(r.Context()))
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(context.WithValue(r.Context(), loggerKey, logger)))
		logger.Info(r.Method+" "+r.URL.Path, "status", ww.Status(), "elapsed", time.Since(start).Round(time.Millisecond))
	})
}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

func loggerFrom(ctx context.Context, fallback *log.Logger) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return fallback
}
