package api

import (
	"time"

	"portscout/scanner"
)

// Job lifecycle states.
const (
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Job represents a scanning job managed by the API service.
type Job struct {
	// ID is the immutable identifier of the job (UUID v4).
	ID string `json:"id" format:"uuid" example:"a3f5c62e-1234-4f72-a84a-1c2d3e4f5678" description:"Immutable UUIDv4 identifier assigned when the job is accepted. Reuse it when polling."`
	// Status reflects the asynchronous lifecycle state of the job.
	Status string `json:"status" enums:"pending,running,completed,failed" example:"completed" description:"pending while queued, running while ports are probed, completed once a report is attached, failed when the host or port expression was rejected."`
	// Host is the hostname or IP literal submitted for the scan.
	Host string `json:"host" example:"scanme.nmap.org" description:"Target as submitted. Resolved to a single address, preferring IPv4."`
	// Ports is the submitted port expression.
	Ports string `json:"ports" example:"22,80,443,1000-1100" description:"Comma-separated single ports and inclusive ranges."`
	// TimeoutMs is the per-connection timeout in milliseconds.
	TimeoutMs int64 `json:"timeout_ms" example:"500" description:"Connect and banner read timeout per port."`
	// Workers is the pool size used for the scan.
	Workers int `json:"workers" example:"64" description:"Number of parallel connection attempts."`
	// Banner tells whether banner capture was requested.
	Banner bool `json:"banner" example:"true" description:"When true a line terminator is sent after connecting and the first reply is captured."`
	// Address is the resolved IP the job scanned.
	Address string `json:"address,omitempty" example:"45.33.32.156" description:"Literal IP chosen by resolution. Empty until the job runs."`
	// Family is the address family of Address.
	Family string `json:"family,omitempty" enums:"ipv4,ipv6" example:"ipv4" description:"Address family of the scanned address."`
	// Completed counts ports probed so far.
	Completed int `json:"completed" example:"512" description:"Number of ports whose probe has finished. Updated while running."`
	// Total is the number of ports selected by the expression.
	Total int `json:"total" example:"1024" description:"Number of distinct ports in the expression after normalisation."`
	// Interrupted marks a report built from a partial scan.
	Interrupted bool `json:"interrupted,omitempty" example:"false" description:"Set when the scan stopped early; the report then covers only the completed ports."`
	// Report lists open ports once the job completes.
	Report []scanner.OpenPort `json:"report,omitempty" description:"Open ports sorted ascending with service names and banner snippets."`
	// CreatedAt records when the job was accepted.
	CreatedAt time.Time `json:"created_at" format:"date-time" example:"2024-01-02T15:04:05Z" description:"UTC timestamp when the API accepted the request."`
	// CompletedAt is set once the job reaches a terminal state.
	CompletedAt *time.Time `json:"completed_at,omitempty" format:"date-time" example:"2024-01-02T15:06:30Z" description:"UTC timestamp when the job finished."`
	// Error contains context when a job fails.
	Error string `json:"error,omitempty" example:"could not resolve host example.invalid" description:"Present when status is failed, or when a partial report was produced."`
}

// CreateScanRequest is the payload for creating new scan jobs.
type CreateScanRequest struct {
	// Host is the hostname or IP address to probe.
	Host string `json:"host" binding:"required" example:"scanme.nmap.org" description:"Target to scan. Accepts IPv4/IPv6 literals and DNS names."`
	// Ports expresses the desired port selection using comma-separated values and ranges.
	Ports string `json:"ports" binding:"required" example:"22,80,443,8000-8100" description:"Single ports and inclusive ranges. Reversed ranges are swapped; ports outside 1-65535 are dropped."`
	// TimeoutMs overrides the default 500ms timeout.
	TimeoutMs int64 `json:"timeout_ms" binding:"omitempty,min=1,max=60000" example:"500" description:"Per-connection timeout in milliseconds."`
	// Workers overrides the default pool size.
	Workers int `json:"workers" binding:"omitempty,min=1,max=1024" example:"64" description:"Parallel connection attempts."`
	// Banner enables best-effort banner capture.
	Banner bool `json:"banner" example:"true" description:"Capture the first reply of each open port."`
}

// ScanAcceptedResponse captures the asynchronous acknowledgement returned after job submission.
type ScanAcceptedResponse struct {
	ID     string `json:"id" format:"uuid" example:"a3f5c62e-1234-4f72-a84a-1c2d3e4f5678"`
	Status string `json:"status" enums:"pending" example:"pending"`
}

// ErrorResponse provides a consistent structure for API error payloads.
type ErrorResponse struct {
	Error string `json:"error" example:"job not found"`
}

// HealthResponse is returned by the liveness endpoint.
type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}
