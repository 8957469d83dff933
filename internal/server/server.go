// Package server exposes treemaps over an HTTP API.
//
// Each client creates a session holding its own tree, then queries and edits
// it by screen position:
//
//	POST   /sessions                 create a session from a path, manifest or stored snapshot
//	GET    /sessions/{id}            session summary
//	GET    /sessions/{id}/tiles      visible tiles as JSON
//	GET    /sessions/{id}/at?x=&y=   the tile at a point
//	POST   /sessions/{id}/nodes/op   expand, collapse, delete, resize or move the tile at a point
//	POST   /sessions/{id}/frame      lay the tree out in a new frame
//	GET    /sessions/{id}/svg        the treemap as SVG
//	GET    /sessions/{id}/dot        the tree as a Graphviz diagram (?as=svg lays it out)
//	GET    /sessions/{id}/snapshot   the tree as a snapshot document
//	POST   /sessions/{id}/save       save the tree to the snapshot store
//	DELETE /sessions/{id}            drop the session
//	GET    /healthz                  liveness and build info
//
// Requests on one session are serialized; different sessions proceed in
// parallel.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/treemap/pkg/buildinfo"
	errs "github.com/matzehuels/treemap/pkg/errors"
	"github.com/matzehuels/treemap/pkg/observability"
	"github.com/matzehuels/treemap/pkg/pipeline"
)

// DefaultMaxSessions bounds the number of live sessions.
const DefaultMaxSessions = 64

// maxBodyBytes bounds request bodies, inline manifests included.
const maxBodyBytes = 8 << 20

var errTooManySessions = errors.New("too many sessions")

// Config configures a Server.
type Config struct {
	// Root restricts scanned paths to this directory. Empty allows any path.
	Root string
	// Width and Height are the default frame for new sessions.
	Width, Height int
	// MaxSessions bounds live sessions (default: DefaultMaxSessions).
	MaxSessions int
	// SessionTTL is how long an unused session survives (default: DefaultSessionTTL).
	SessionTTL time.Duration
	Logger     *log.Logger
}

// Server serves the treemap API.
type Server struct {
	runner   *pipeline.Runner
	cfg      Config
	logger   *log.Logger
	sessions *registry
	now      func() time.Time
}

// New creates a server that loads trees through runner.
func New(runner *pipeline.Runner, cfg Config) *Server {
	if cfg.Width <= 0 {
		cfg.Width = pipeline.DefaultWidth
	}
	if cfg.Height <= 0 {
		cfg.Height = pipeline.DefaultHeight
	}
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = DefaultMaxSessions
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = DefaultSessionTTL
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard)
	}
	return &Server{
		runner:   runner,
		cfg:      cfg,
		logger:   cfg.Logger,
		sessions: newRegistry(cfg.MaxSessions),
		now:      time.Now,
	}
}

// Handler returns the HTTP handler with all routes registered.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", s.handleHealth)

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.handleCreate)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.withSession(s.handleInfo))
			r.Delete("/", s.handleDelete)
			r.Get("/tiles", s.withSession(s.handleTiles))
			r.Get("/at", s.withSession(s.handleAt))
			r.Post("/nodes/op", s.withSession(s.handleOp))
			r.Post("/frame", s.withSession(s.handleFrame))
			r.Get("/svg", s.withSession(s.handleSVG))
			r.Get("/dot", s.withSession(s.handleDOT))
			r.Get("/snapshot", s.withSession(s.handleSnapshot))
			r.Post("/save", s.withSession(s.handleSave))
		})
	})

	return r
}

// Cleanup drops idle sessions and returns how many were removed.
func (s *Server) Cleanup() int {
	n := s.sessions.cleanup(s.now(), s.cfg.SessionTTL)
	if n > 0 {
		s.logger.Debug("expired sessions", "count", n)
		observability.Server().OnSessionCount(context.Background(), s.sessions.len())
	}
	return n
}

// RunCleanup calls Cleanup every interval until ctx is done.
func (s *Server) RunCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Cleanup()
		}
	}
}

// observe logs each request and reports it to the server hooks.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		dur := time.Since(start)
		s.logger.Debug("request", "method", r.Method, "route", route, "status", ww.Status(), "duration", dur)
		observability.Server().OnRequest(r.Context(), r.Method, route, ww.Status(), dur)
	})
}

// sessionHandler handles a request on a locked session.
type sessionHandler func(w http.ResponseWriter, r *http.Request, sess *session)

func (s *Server) withSession(h sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.sessions.get(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		sess.mu.Lock()
		defer sess.mu.Unlock()
		sess.touch(s.now())
		h(w, r, sess)
	}
}

// allowPath checks a scan path against the configured root.
func (s *Server) allowPath(p string) error {
	if s.cfg.Root == "" {
		return nil
	}
	root, err := filepath.Abs(s.cfg.Root)
	if err != nil {
		return errs.Wrap(errs.ErrCodeInternal, err, "resolve root")
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return errs.Wrap(errs.ErrCodeInvalidPath, err, "resolve %s", p)
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return errs.New(errs.ErrCodeInvalidPath, "path %s is outside the served root", p)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": s.sessions.len(),
		"build":    buildinfo.Get(),
	})
}

// errorResponse is the body of every failed request.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, err error) {
	status := errs.HTTPStatus(err)
	code := string(errs.GetCode(err))
	switch {
	case errors.Is(err, errTooManySessions):
		status, code = http.StatusTooManyRequests, "TOO_MANY_SESSIONS"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status, code = http.StatusServiceUnavailable, "CANCELLED"
	}
	if code == "" {
		code = string(errs.ErrCodeInternal)
	}
	writeJSON(w, status, errorResponse{Code: code, Message: errs.UserMessage(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeBytes(w http.ResponseWriter, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// decode reads a JSON body into v. Unknown fields are rejected.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidInput, err, "invalid request body")
	}
	return nil
}
