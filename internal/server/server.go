// Package server exposes the calculator engine over a JSON HTTP API.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"

	"github.com/klauspost/compress/gzhttp"
	"github.com/valyala/fastjson"

	"go.calcula.dev/internal/config"
	calcula "go.calcula.dev/pkg"
	"go.calcula.dev/pkg/calculators"
)

type Server struct {
	cfg     config.Config
	logger  *slog.Logger
	symbols *calcula.SymbolTable
	rules   calculators.PayrollRules
	parser  fastjson.ParserPool
	limiter *limiter
	srv     *http.Server
}

func New(cfg config.Config, logger *slog.Logger) *Server {
	s := &Server{
		cfg:     cfg,
		logger:  logger,
		symbols: calcula.NewGlobalSymbolTable(),
		rules:   calculators.DefaultIndiaRules,
	}

	if cfg.RateLimit > 0 {
		s.limiter = newLimiter(cfg.RateLimit, cfg.RateBurst)
	}

	// Built up front so Shutdown never races with Serve.
	s.srv = &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	return s
}

// WithPayrollRules replaces the rules used by the payroll calculators.
func (s *Server) WithPayrollRules(rules calculators.PayrollRules) *Server {
	s.rules = rules
	return s
}

// Handler returns the API with its middleware chain applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/functions", s.handleFunctions)
	mux.HandleFunc("POST /api/evaluate", s.handleEvaluate)
	mux.HandleFunc("POST /api/derivative", s.handleDerivative)
	mux.HandleFunc("POST /api/parse", s.handleParse)
	mux.HandleFunc("POST /api/ir", s.handleIR)
	mux.HandleFunc("POST /api/calc/{kind}", s.handleCalc)

	var h http.Handler = mux
	h = gzhttp.GzipHandler(h)
	h = s.authMiddleware(h)
	h = s.rateLimitMiddleware(h)
	h = s.loggingMiddleware(h)
	h = requestIDMiddleware(h)
	h = s.recoverMiddleware(h)

	return h
}

// Start runs the HTTP server on the configured address until Shutdown.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}

	return s.Serve(ln)
}

// Serve accepts connections on ln until Shutdown. A server that was shut
// down before Serve returns nil immediately.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("listening", "addr", ln.Addr().String())
	if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
