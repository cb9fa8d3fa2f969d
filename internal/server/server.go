// Package server serves the solver over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/go-watersort/watersort/internal/level"
	"github.com/go-watersort/watersort/internal/metrics"
	"github.com/go-watersort/watersort/solver"
)

const maxBodyBytes = 1 << 20

// Server is the HTTP API.
type Server struct {
	solver  *solver.Solver
	levels  []*level.Level
	logger  *log.Logger
	timeout time.Duration
}

// New returns a server checking puzzles with s. Requests taking longer than
// timeout are answered with 504; timeout <= 0 disables the limit.
func New(s *solver.Solver, levels []*level.Level, logger *log.Logger, timeout time.Duration) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{solver: s, levels: levels, logger: logger, timeout: timeout}
}

// Handler returns the routes of the API.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	})
	r.Handle("/metrics", metrics.Handler())

	r.Route("/v1", func(r chi.Router) {
		if s.timeout > 0 {
			r.Use(middleware.Timeout(s.timeout))
		}
		r.Post("/solve", s.handleSolve)
		r.Post("/generate", s.handleGenerate)
		r.Get("/levels", s.handleLevels)
		r.Get("/levels/{id}", s.handleLevel)
		r.Get("/levels/{id}/check", s.handleCheck)
	})
	return r
}

// ListenAndServe serves on addr until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.logger.Info("listening", "addr", addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		var route string
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			route = rctx.RoutePattern()
		}
		metrics.ObserveRequest(route, status)
		s.logger.Info("http",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"dur", time.Since(start).Round(time.Millisecond),
			"id", middleware.GetReqID(r.Context()),
		)
	})
}

type errorResp struct {
	Error string `json:"error"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("encode response", "err", err)
	}
}

// writeError answers err with a matching status. Context errors of a done
// request are left to the timeout middleware; a search stopped while the
// request is still live is answered with 503.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		if r.Context().Err() != nil {
			return
		}
		s.logger.Warn("search stopped", "err", err)
		s.writeJSON(w, http.StatusServiceUnavailable, errorResp{Error: err.Error()})
	case errors.Is(err, solver.ErrInvalidInput):
		s.writeJSON(w, http.StatusBadRequest, errorResp{Error: err.Error()})
	case errors.Is(err, level.ErrNotFound):
		s.writeJSON(w, http.StatusNotFound, errorResp{Error: err.Error()})
	default:
		s.logger.Error("request failed", "err", err)
		s.writeJSON(w, http.StatusInternalServerError, errorResp{Error: err.Error()})
	}
}

// decode reads the request body into v. An empty body is only accepted if
// allowEmpty is set.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any, allowEmpty bool) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	err := dec.Decode(v)
	if allowEmpty && errors.Is(err, io.EOF) {
		return true
	}
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResp{Error: "invalid JSON: " + err.Error()})
		return false
	}
	return true
}

// ---- Solve ----

type solveReq struct {
	Tubes    [][]string `json:"tubes"`
	MaxDepth *int       `json:"maxDepth,omitempty"`
}

type solveResp struct {
	Solvable   bool     `json:"solvable"`
	Outcome    string   `json:"outcome"`
	Nodes      int      `json:"nodes"`
	Iterations int      `json:"iterations"`
	Bound      int      `json:"bound"`
	DurationMs int64    `json:"durationMs"`
	Advisories []string `json:"advisories,omitempty"`
	Cached     bool     `json:"cached"`
}

func newSolveResp(res *solver.Result) solveResp {
	return solveResp{
		Solvable:   res.Solvable(),
		Outcome:    res.Outcome.String(),
		Nodes:      res.Nodes,
		Iterations: res.Iterations,
		Bound:      res.Bound,
		DurationMs: res.Duration.Milliseconds(),
		Advisories: res.Advisories,
		Cached:     res.Cached,
	}
}

func (s *Server) handleSolve(w http.ResponseWriter, r *http.Request) {
	var req solveReq
	if !s.decode(w, r, &req, false) {
		return
	}
	maxDepth := s.solver.MaxDepth()
	if req.MaxDepth != nil {
		maxDepth = *req.MaxDepth
	}
	res, err := s.solver.SolveDepth(r.Context(), req.Tubes, maxDepth)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, newSolveResp(res))
}

// ---- Levels ----

func (s *Server) handleLevels(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.levels)
}

func (s *Server) handleLevel(w http.ResponseWriter, r *http.Request) {
	l, err := level.Find(s.levels, chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, l)
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	l, err := level.Find(s.levels, chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	maxDepth := s.solver.MaxDepth()
	if v := r.URL.Query().Get("maxDepth"); v != "" {
		if maxDepth, err = strconv.Atoi(v); err != nil {
			s.writeJSON(w, http.StatusBadRequest, errorResp{Error: "invalid maxDepth: " + v})
			return
		}
	}
	res, err := s.solver.SolveDepth(r.Context(), l.Tubes, maxDepth)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, newSolveResp(res))
}

// ---- Generate ----

type generateReq struct {
	Colors int   `json:"colors"`
	Spare  int   `json:"spare"`
	Seed   int64 `json:"seed,omitempty"`
	Check  bool  `json:"check,omitempty"`
}

type generateResp struct {
	Level *level.Level `json:"level"`
	Seed  int64        `json:"seed"`
	Check *solveResp   `json:"check,omitempty"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	req := generateReq{Colors: 6, Spare: 2}
	if !s.decode(w, r, &req, true) {
		return
	}
	if req.Seed == 0 {
		req.Seed = time.Now().UnixNano()
	}
	l, err := level.Generate(rand.New(rand.NewSource(req.Seed)), req.Colors, req.Spare, s.solver.Capacity())
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResp{Error: err.Error()})
		return
	}

	resp := generateResp{Level: l, Seed: req.Seed}
	if req.Check {
		res, err := s.solver.Solve(r.Context(), l.Tubes)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		check := newSolveResp(res)
		resp.Check = &check
	}
	s.writeJSON(w, http.StatusOK, resp)
}
