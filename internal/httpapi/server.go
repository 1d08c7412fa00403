// Package httpapi exposes pipeline passes over HTTP.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"folionotify/internal/run"
	logx "folionotify/pkg/logx"
)

const DefaultShutdownTimeout = 10 * time.Second

// Runner performs one pass.
type Runner interface {
	Run(ctx context.Context) run.Outcome
}

type Server struct {
	runner Runner
	log    logx.Logger
}

func New(r Runner, log logx.Logger) *Server {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Server{runner: r, log: log}
}

// Handler routes GET|POST / to one pass and GET /healthz to a liveness probe.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleRun)
	r.Post("/", s.handleRun)
	r.Get("/healthz", s.handleHealth)
	return r
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	out := s.runner.Run(r.Context())
	s.log.Info("http pass finished",
		logx.String("run_id", out.RunID),
		logx.String("remote", r.RemoteAddr),
		logx.String("outcome", out.String()),
	)

	status := http.StatusOK
	if out.IsError() {
		status = http.StatusInternalServerError
	}
	if out.RunID != "" {
		w.Header().Set("X-Run-ID", out.RunID)
	}
	writeText(w, status, out.String())
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeText(w, http.StatusOK, "ok")
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

// ListenAndServe serves h on addr until ctx is done, then shuts down
// gracefully within shutdownTimeout.
func ListenAndServe(ctx context.Context, addr string, h http.Handler, shutdownTimeout time.Duration, log logx.Logger) error {
	if log.IsZero() {
		log = logx.Nop()
	}
	if shutdownTimeout <= 0 {
		shutdownTimeout = DefaultShutdownTimeout
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return serve(ctx, ln, h, shutdownTimeout, log)
}

func serve(ctx context.Context, ln net.Listener, h http.Handler, shutdownTimeout time.Duration, log logx.Logger) error {
	srv := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", logx.String("addr", ln.Addr().String()))
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown", logx.Err(err))
		return err
	}
	log.Info("http server stopped")
	return nil
}
