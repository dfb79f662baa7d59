// Package server exposes the analysis pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/joseph-ayodele/saferoad-advisor/internal/async"
	"github.com/joseph-ayodele/saferoad-advisor/internal/catalog"
	"github.com/joseph-ayodele/saferoad-advisor/internal/common"
	"github.com/joseph-ayodele/saferoad-advisor/internal/report"
)

// Analyzer is the pipeline surface the API needs.
type Analyzer interface {
	AnalyzeText(ctx context.Context, text string) report.Report
	AnalyzePDF(ctx context.Context, path string) report.Report
	Catalog() *catalog.Catalog
}

// Config holds HTTP server configuration.
type Config struct {
	Addr         string
	MaxUpload    int64 // bytes
	MaxTextChars int
}

// Server provides the HTTP endpoints.
type Server struct {
	echo     *echo.Echo
	analyzer Analyzer
	queue    async.Queue
	logger   *slog.Logger
	config   Config
}

// NewServer creates a server. The queue may be nil, in which case the
// asynchronous endpoints answer 503.
func NewServer(a Analyzer, q async.Queue, logger *slog.Logger, cfg Config) (*Server, error) {
	if a == nil {
		return nil, fmt.Errorf("analyzer cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.MaxUpload <= 0 {
		cfg.MaxUpload = 20 << 20
	}
	if cfg.MaxTextChars <= 0 {
		cfg.MaxTextChars = 100_000
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:     e,
		analyzer: a,
		queue:    q,
		logger:   logger,
		config:   cfg,
	}
	e.HTTPErrorHandler = s.handleError

	// Middleware
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.BodyLimit(fmt.Sprintf("%dB", cfg.MaxUpload+1<<20)))
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			rid := c.Response().Header().Get(echo.HeaderXRequestID)
			req := c.Request()
			c.SetRequest(req.WithContext(common.WithRequestID(req.Context(), rid)))

			err := next(c)
			if err != nil {
				c.Error(err)
			}
			logger.Info("http.request",
				"method", req.Method,
				"uri", req.RequestURI,
				"status", c.Response().Status,
				"elapsed_ms", time.Since(start).Milliseconds(),
				"request_id", rid,
			)
			return nil
		}
	})

	s.registerRoutes()
	return s, nil
}

// registerRoutes sets up the HTTP endpoints.
func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)

	v1 := s.echo.Group("/api/v1")
	v1.POST("/analyze", s.handleAnalyze)
	v1.POST("/analyze/pdf", s.handleAnalyzePDF)
	v1.POST("/analyses", s.handleSubmit)
	v1.POST("/analyses/pdf", s.handleSubmitPDF)
	v1.GET("/analyses/:id", s.handleGetAnalysis)
}

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	status, body := http.StatusInternalServerError, ErrorResponse{Code: "INTERNAL", Message: "internal error"}

	var appErr *common.AppError
	var httpErr *echo.HTTPError
	switch {
	case errors.As(err, &appErr):
		body = ErrorResponse{Code: appErr.Code, Message: appErr.Message}
		switch {
		case errors.Is(err, common.ErrInvalidInput):
			status = http.StatusBadRequest
		case errors.Is(err, common.ErrNotFound):
			status = http.StatusNotFound
		}
	case errors.Is(err, async.ErrQueueFull), errors.Is(err, async.ErrQueueClosed):
		status, body = http.StatusServiceUnavailable, ErrorResponse{Code: "UNAVAILABLE", Message: err.Error()}
	case errors.As(err, &httpErr):
		status = httpErr.Code
		body = ErrorResponse{Code: http.StatusText(status), Message: fmt.Sprint(httpErr.Message)}
	}
	if status >= 500 {
		s.logger.Error("http.error", "error", err, "uri", c.Request().RequestURI)
	}
	body.RequestID = c.Response().Header().Get(echo.HeaderXRequestID)

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(status)
		return
	}
	_ = c.JSON(status, body)
}

// Handler returns the server as an http.Handler.
func (s *Server) Handler() http.Handler { return s.echo }

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info("http.start", "addr", s.config.Addr)
	return s.echo.Start(s.config.Addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("http.shutdown")
	return s.echo.Shutdown(ctx)
}
