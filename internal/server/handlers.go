package server

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/labstack/echo/v4"

	"github.com/joseph-ayodele/saferoad-advisor/constants"
	"github.com/joseph-ayodele/saferoad-advisor/internal/async"
	"github.com/joseph-ayodele/saferoad-advisor/internal/common"
)

// AnalyzeRequest is the request body for POST /api/v1/analyze and /api/v1/analyses.
type AnalyzeRequest struct {
	Text string `json:"text"`
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status      string `json:"status"`
	CatalogSize int    `json:"catalog_size"`
	Catalog     string `json:"catalog"`
}

// SubmitResponse is the response body for accepted asynchronous analyses.
type SubmitResponse struct {
	ID     string              `json:"id"`
	Status constants.JobStatus `json:"status"`
}

func (s *Server) handleHealth(c echo.Context) error {
	cat := s.analyzer.Catalog()
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok", CatalogSize: cat.Len(), Catalog: cat.Source()})
}

func (s *Server) bindText(c echo.Context) (string, error) {
	var req AnalyzeRequest
	if err := c.Bind(&req); err != nil {
		s.logger.Warn("http.analyze.bind_failed", "error", err)
		return "", common.InvalidInputError("invalid request body")
	}
	v := common.NewValidator().Field("text", req.Text, common.MaxLength(s.config.MaxTextChars))
	if err := common.ValidateAndReturnError(v); err != nil {
		return "", err
	}
	return req.Text, nil
}

// handleAnalyze runs a synchronous text analysis. Empty text is not an error.
func (s *Server) handleAnalyze(c echo.Context) error {
	text, err := s.bindText(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, s.analyzer.AnalyzeText(c.Request().Context(), text))
}

func (s *Server) handleAnalyzePDF(c echo.Context) error {
	path, err := s.saveUpload(c)
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(path) }()
	return c.JSON(http.StatusOK, s.analyzer.AnalyzePDF(c.Request().Context(), path))
}

func (s *Server) handleSubmit(c echo.Context) error {
	if s.queue == nil {
		return async.ErrQueueClosed
	}
	text, err := s.bindText(c)
	if err != nil {
		return err
	}
	return s.enqueue(c, async.Job{Text: text})
}

func (s *Server) handleSubmitPDF(c echo.Context) error {
	if s.queue == nil {
		return async.ErrQueueClosed
	}
	path, err := s.saveUpload(c)
	if err != nil {
		return err
	}
	if err := s.enqueue(c, async.Job{Path: path, RemoveFile: true}); err != nil {
		_ = os.Remove(path)
		return err
	}
	return nil
}

func (s *Server) enqueue(c echo.Context, job async.Job) error {
	ctx := c.Request().Context()
	job.RequestID = common.RequestIDFromContext(ctx)
	rec, err := s.queue.Enqueue(ctx, job)
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderLocation, "/api/v1/analyses/"+rec.ID)
	return c.JSON(http.StatusAccepted, SubmitResponse{ID: rec.ID, Status: rec.Status})
}

func (s *Server) handleGetAnalysis(c echo.Context) error {
	if s.queue == nil {
		return async.ErrQueueClosed
	}
	id := c.Param("id")
	if err := common.ValidateAndReturnError(common.NewValidator().Field("id", id, common.Required, common.UUID)); err != nil {
		return err
	}
	rec, ok := s.queue.Get(id)
	if !ok {
		return common.NotFoundError(fmt.Sprintf("analysis %s not found", id))
	}
	return c.JSON(http.StatusOK, rec)
}

// saveUpload copies the multipart "file" field to a temp file and returns its path.
func (s *Server) saveUpload(c echo.Context) (string, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return "", common.InvalidInputError("multipart field \"file\" is required")
	}
	if fh.Size > s.config.MaxUpload {
		return "", common.InvalidInputErrorf("file exceeds %d bytes", s.config.MaxUpload)
	}
	if constants.MapExtToFormat(filepath.Ext(fh.Filename)) != constants.PDF {
		return "", common.InvalidInputErrorf("unsupported file type %q", filepath.Ext(fh.Filename))
	}
	return copyToTemp(fh)
}

func copyToTemp(fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer func() { _ = src.Close() }()

	dst, err := os.CreateTemp("", "saferoad-upload-*.pdf")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		_ = os.Remove(dst.Name())
		return "", fmt.Errorf("store upload: %w", err)
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(dst.Name())
		return "", fmt.Errorf("store upload: %w", err)
	}
	return dst.Name(), nil
}
