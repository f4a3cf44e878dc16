package api

import (
	"crypto/rand"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"

	"portscout/scanner"
)

// DefaultTimeoutMs is applied to requests that do not set timeout_ms.
const DefaultTimeoutMs = 500

// Server bundles dependencies for HTTP handlers.
type Server struct {
	store JobStore
}

// NewServer creates a new API server instance.
func NewServer(store JobStore) *Server {
	return &Server{store: store}
}

// RegisterRoutes attaches handlers to the provided Gin router group.
func (s *Server) RegisterRoutes(routes gin.IRoutes) {
	routes.POST("/scans", s.createScanHandler)
	routes.GET("/scans/:id", s.getScanHandler)
}

var uuidV4Pattern = regexp.MustCompile(`^[a-fA-F0-9]{8}-[a-fA-F0-9]{4}-[1-5][a-fA-F0-9]{3}-[abAB89][a-fA-F0-9]{3}-[a-fA-F0-9]{12}$`)

// @Summary      Create a new scan job
// @Description  Submit a host and port expression and let portscout probe it asynchronously. The handler validates the port expression, persists the job, and enqueues it for background consumers before returning a UUID.
// @Description  **Lifecycle**: POST /scans answers with HTTP 202 Accepted plus the job identifier. Poll GET /scans/{id} to observe pending → running → completed/failed. The report is attached on completion.
// @Tags         Scans
// @Accept       json
// @Produce      json
// @Param        scanRequest  body      CreateScanRequest     true  "Scan request parameters"
// @Success      202          {object}  ScanAcceptedResponse  "Scan accepted"
// @Failure      400          {object}  ErrorResponse         "Malformed JSON body, failed validation or empty port expression"
// @Failure      401          {object}  ErrorResponse         "Missing or incorrect API key"
// @Failure      429          {object}  ErrorResponse         "Rate limit exceeded"
// @Failure      500          {object}  ErrorResponse         "Internal error while persisting or queueing the job"
// @Security     ApiKeyAuth
// @Router       /scans [post]
func (s *Server) createScanHandler(c *gin.Context) {
	var req CreateScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("invalid request payload: %v", err)})
		return
	}

	// Port expressions are checked up front; host resolution happens in the consumer.
	ports, err := scanner.ParsePorts(req.Ports)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	if len(ports) == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: scanner.ErrNoPorts.Error()})
		return
	}

	jobID, err := generateUUID()
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to generate job id"})
		return
	}

	timeoutMs := req.TimeoutMs
	if timeoutMs == 0 {
		timeoutMs = DefaultTimeoutMs
	}
	workers := req.Workers
	if workers == 0 {
		workers = scanner.DefaultWorkers()
	}

	job := &Job{
		ID:        jobID,
		Status:    StatusPending,
		Host:      req.Host,
		Ports:     req.Ports,
		TimeoutMs: timeoutMs,
		Workers:   workers,
		Banner:    req.Banner,
		Total:     len(ports),
		CreatedAt: time.Now().UTC(),
	}

	ctx := c.Request.Context()
	if err := s.store.CreateJob(ctx, job); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to persist job"})
		return
	}

	if err := s.store.PushToQueue(ctx, job.ID); err != nil {
		job.Status = StatusFailed
		job.Error = "failed to queue job"
		now := time.Now().UTC()
		job.CompletedAt = &now
		_ = s.store.UpdateJob(ctx, job)

		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to queue job"})
		return
	}

	c.JSON(http.StatusAccepted, ScanAcceptedResponse{ID: job.ID, Status: job.Status})
}

// @Summary      Get scan status and report
// @Description  Retrieve a snapshot of a scan job. While pending or running the report is empty and completed/total show progress. Once completed the report lists open ports in ascending order.
// @Tags         Scans
// @Produce      json
// @Param        id   path      string         true  "Scan Job ID (UUID v4)"
// @Success      200  {object}  Job            "Current job snapshot"
// @Failure      400  {object}  ErrorResponse  "Malformed job identifier"
// @Failure      401  {object}  ErrorResponse  "Missing or incorrect API key"
// @Failure      404  {object}  ErrorResponse  "Job does not exist or has expired"
// @Failure      429  {object}  ErrorResponse  "Rate limit exceeded"
// @Failure      500  {object}  ErrorResponse  "Internal error when loading the job"
// @Security     ApiKeyAuth
// @Router       /scans/{id} [get]
func (s *Server) getScanHandler(c *gin.Context) {
	id := c.Param("id")
	if !uuidV4Pattern.MatchString(id) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid job id format"})
		return
	}
	job, err := s.store.GetJob(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrJobNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "job not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to load job"})
		return
	}

	c.JSON(http.StatusOK, job)
}

// @Summary  Liveness probe
// @Tags     Health
// @Produce  json
// @Success  200  {object}  HealthResponse
// @Router   /healthz [get]
func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

func generateUUID() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	// Variant bits; version 4 UUID.
	b[6] = (b[6] & 0x0f) | 0x40
	b[8] = (b[8] & 0x3f) | 0x80
	return fmt.Sprintf("%08x-%04x-%04x-%04x-%012x", b[0:4], b[4:6], b[6:8], b[8:10], b[10:16]), nil
}
