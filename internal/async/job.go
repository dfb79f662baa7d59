// Package async runs analyses on a bounded worker pool and remembers their results.
package async

import (
	"context"
	"time"

	"github.com/joseph-ayodele/saferoad-advisor/constants"
	"github.com/joseph-ayodele/saferoad-advisor/internal/report"
)

// Job is one queued analysis. Exactly one of Text or Path is used.
type Job struct {
	ID          string
	Text        string
	Path        string // report file; removed after analysis when RemoveFile is set
	RemoveFile  bool
	SubmittedAt time.Time
	RequestID   string
}

// Record is the externally visible state of a job.
type Record struct {
	ID          string              `json:"id"`
	Status      constants.JobStatus `json:"status"`
	Error       string              `json:"error,omitempty"`
	Report      *report.Report      `json:"report,omitempty"`
	SubmittedAt time.Time           `json:"submitted_at"`
	StartedAt   *time.Time          `json:"started_at,omitempty"`
	FinishedAt  *time.Time          `json:"finished_at,omitempty"`
}

// Analyzer is the part of the pipeline a worker needs.
type Analyzer interface {
	AnalyzeText(ctx context.Context, text string) report.Report
	AnalyzePDF(ctx context.Context, path string) report.Report
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) (Record, error)
	Get(id string) (Record, bool)
	Shutdown(ctx context.Context)
}
