// Package server exposes the designtree pipeline over HTTP.
//
// Routes:
//
//	GET  /healthz       liveness check
//	GET  /v1/version    build information
//	POST /v1/validate   structural validation only
//	POST /v1/classify   validate and classify
//	POST /v1/resolve    the full validate → classify → layout → build run
//	POST /v1/render     resolve and return a Graphviz diagram
//
// Request bodies carry a design document and per-request options. The
// external classifier provider, endpoint and credentials are fixed by the
// server configuration and cannot be chosen by callers.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/designtree/pkg/buildinfo"
	"github.com/matzehuels/designtree/pkg/design"
	apperrors "github.com/matzehuels/designtree/pkg/errors"
	"github.com/matzehuels/designtree/pkg/pipeline"
	"github.com/matzehuels/designtree/pkg/render"
	"github.com/matzehuels/designtree/pkg/render/nodelink"
)

// Defaults for [Server].
const (
	DefaultMaxBodyBytes = 32 << 20
	DefaultReadTimeout  = 30 * time.Second
	DefaultWriteTimeout = 2 * time.Minute
	shutdownTimeout     = 10 * time.Second
)

// RequestIDHeader carries the request ID in both directions.
const RequestIDHeader = "X-Request-ID"

// Server serves the HTTP API.
type Server struct {
	runner       *pipeline.Runner
	base         pipeline.Options
	logger       *log.Logger
	maxBodyBytes int64
	readTimeout  time.Duration
	writeTimeout time.Duration
}

// Option configures a [Server].
type Option func(*Server)

// WithLogger sets the logger for request logs.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithBaseOptions sets the pipeline options every request starts from.
func WithBaseOptions(o pipeline.Options) Option {
	return func(s *Server) { s.base = o }
}

// WithMaxBodyBytes limits request body size.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBodyBytes = n
		}
	}
}

// WithTimeouts sets the HTTP read and write timeouts.
func WithTimeouts(read, write time.Duration) Option {
	return func(s *Server) {
		if read > 0 {
			s.readTimeout = read
		}
		if write > 0 {
			s.writeTimeout = write
		}
	}
}

// New creates a server running documents through runner.
func New(runner *pipeline.Runner, opts ...Option) *Server {
	s := &Server{
		runner:       runner,
		logger:       log.New(io.Discard),
		maxBodyBytes: DefaultMaxBodyBytes,
		readTimeout:  DefaultReadTimeout,
		writeTimeout: DefaultWriteTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Get("/version", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, buildinfo.Get())
		})
		r.Post("/validate", s.handleValidate)
		r.Post("/classify", s.handleClassify)
		r.Post("/resolve", s.handleResolve)
		r.Post("/render", s.handleRender)
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       s.readTimeout,
		WriteTimeout:      s.writeTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// =============================================================================
// Requests
// =============================================================================

// RequestOptions are the pipeline options a caller may set per request.
type RequestOptions struct {
	Threshold     string            `json:"threshold,omitempty"`
	MatchMode     string            `json:"match_mode,omitempty"`
	Tiers         map[string]string `json:"tiers,omitempty"`
	SkipClassify  bool              `json:"skip_classify,omitempty"`
	SkipLayout    bool              `json:"skip_layout,omitempty"`
	SkipHierarchy bool              `json:"skip_hierarchy,omitempty"`
	Refresh       bool              `json:"refresh,omitempty"`
}

// Request is the body of every POST route.
type Request struct {
	Document *design.Document `json:"document"`
	Options  RequestOptions   `json:"options"`

	// Render options, used by /v1/render only.
	Diagram  string `json:"diagram,omitempty"` // tree or plan
	Format   string `json:"format,omitempty"`  // dot or svg
	Detailed bool   `json:"detailed,omitempty"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error     string         `json:"error"`
	Code      apperrors.Code `json:"code"`
	RequestID string         `json:"request_id,omitempty"`
	NodeIDs   []string       `json:"node_ids,omitempty"`
}

func (s *Server) options(req *Request) pipeline.Options {
	o := s.base
	o.Logger = nil
	if req.Options.Threshold != "" {
		o.Threshold = req.Options.Threshold
	}
	if req.Options.MatchMode != "" {
		o.MatchMode = req.Options.MatchMode
	}
	if len(req.Options.Tiers) > 0 {
		o.Tiers = req.Options.Tiers
	}
	o.SkipClassify = o.SkipClassify || req.Options.SkipClassify
	o.SkipLayout = o.SkipLayout || req.Options.SkipLayout
	o.SkipHierarchy = o.SkipHierarchy || req.Options.SkipHierarchy
	o.Refresh = req.Options.Refresh
	o.Builder = nil
	return o
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request) (*Request, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.fail(w, r, apperrors.New(apperrors.ErrCodeInvalidInput, "request body exceeds %d bytes", s.maxBodyBytes))
			return nil, false
		}
		s.fail(w, r, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "decode request"))
		return nil, false
	}
	if req.Document == nil {
		s.fail(w, r, apperrors.New(apperrors.ErrCodeInvalidInput, "document is required"))
		return nil, false
	}
	return &req, true
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decode(w, r)
	if !ok {
		return
	}
	if err := pipeline.Validate(req.Document); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"valid":      true,
		"node_count": req.Document.NodeCount(),
	})
}

func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decode(w, r)
	if !ok {
		return
	}
	opts := s.options(req)
	opts.SkipClassify = false
	opts.SkipLayout = true
	opts.SkipHierarchy = true
	s.run(w, r, req.Document, opts)
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decode(w, r)
	if !ok {
		return
	}
	s.run(w, r, req.Document, s.options(req))
}

func (s *Server) run(w http.ResponseWriter, r *http.Request, d *design.Document, opts pipeline.Options) {
	res, err := s.runner.Execute(r.Context(), d, opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("X-Run-ID", res.RunID)
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decode(w, r)
	if !ok {
		return
	}
	format := req.Format
	if format == "" {
		format = render.FormatSVG
	}
	if format != render.FormatSVG && format != render.FormatDOT {
		s.fail(w, r, apperrors.New(apperrors.ErrCodeInvalidFormat, "unsupported format %q (use dot or svg)", format))
		return
	}

	res, err := s.runner.Execute(r.Context(), req.Document, s.options(req))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	var dot string
	switch req.Diagram {
	case "", "tree":
		dot = nodelink.ToDOT(res.Document, nodelink.Options{Detailed: req.Detailed})
	case "plan":
		if res.Plan == nil {
			s.fail(w, r, apperrors.New(apperrors.ErrCodeInvalidInput, "plan diagram requires the build stage"))
			return
		}
		dot = nodelink.PlanDOT(res.Plan)
	default:
		s.fail(w, r, apperrors.New(apperrors.ErrCodeInvalidInput, "unknown diagram %q (use tree or plan)", req.Diagram))
		return
	}

	out, err := nodelink.Render(r.Context(), dot, format, 1)
	if err != nil {
		s.fail(w, r, apperrors.Wrap(apperrors.ErrCodeInternal, err, "render"))
		return
	}
	if format == render.FormatSVG {
		w.Header().Set("Content-Type", "image/svg+xml")
	} else {
		w.Header().Set("Content-Type", "text/vnd.graphviz")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

// =============================================================================
// Errors and responses
// =============================================================================

// StatusFor maps an error code to an HTTP status.
func StatusFor(code apperrors.Code) int {
	switch code {
	case apperrors.ErrCodeInvalidInput, apperrors.ErrCodeInvalidConfig,
		apperrors.ErrCodeInvalidFormat, apperrors.ErrCodeInvalidTier, apperrors.ErrCodeInvalidPath:
		return http.StatusBadRequest
	case apperrors.ErrCodeInvalidDocument, apperrors.ErrCodeCycle, apperrors.ErrCodeDuplicateID:
		return http.StatusUnprocessableEntity
	case apperrors.ErrCodeNotFound, apperrors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case apperrors.ErrCodeClassifier:
		return http.StatusBadGateway
	case apperrors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case apperrors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	code := apperrors.GetCode(err)
	if code == "" {
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			code = apperrors.ErrCodeTimeout
		default:
			code = apperrors.ErrCodeInternal
		}
	}
	status := StatusFor(code)

	resp := ErrorResponse{
		Error:     apperrors.UserMessage(err),
		Code:      code,
		RequestID: RequestIDFrom(r.Context()),
	}
	var se *design.StructuralError
	if errors.As(err, &se) {
		resp.NodeIDs = se.NodeIDs
		resp.Error = fmt.Sprintf("%s: %v", resp.Error, se)
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "request_id", resp.RequestID, "code", code, "err", err)
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
