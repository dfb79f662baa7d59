package constants

// JobStatus is the canonical status of an asynchronous analysis job.
type JobStatus string

const (
	JobStatusQueued  JobStatus = "QUEUED"  // accepted, waiting for a worker
	JobStatusRunning JobStatus = "RUNNING" // extraction, matching or summary in progress
	JobStatusDone    JobStatus = "DONE"    // report available
	JobStatusFailed  JobStatus = "FAILED"  // terminal failure
)

// Fallback summary texts. Every non-model summary starts with SummaryUnavailable.
const (
	SummaryUnavailable      = "AI summary unavailable"
	SummaryUnavailableEmpty = SummaryUnavailable + " (empty response)"
)
