package api

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"portscout/scanner"
)

const (
	defaultPollWait = 2 * time.Second
	retryDelay      = time.Second
	progressSteps   = 20
)

// Consumer pops queued jobs and runs them through the scan engine.
type Consumer struct {
	store    JobStore
	executor *scanner.Executor
	resolver scanner.Resolver
	lookup   scanner.ServiceLookup
	logger   *slog.Logger
	pollWait time.Duration
}

// NewConsumer creates a queue consumer. A nil resolver uses the system resolver.
func NewConsumer(store JobStore, executor *scanner.Executor, resolver scanner.Resolver, lookup scanner.ServiceLookup, logger *slog.Logger) *Consumer {
	return &Consumer{
		store:    store,
		executor: executor,
		resolver: resolver,
		lookup:   lookup,
		logger:   logger,
		pollWait: defaultPollWait,
	}
}

// Run processes jobs until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return nil
		}

		jobID, err := c.store.PopFromQueue(ctx, c.pollWait)
		if err != nil {
			if errors.Is(err, ErrQueueEmpty) {
				continue
			}
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Error("consumer failed to pop job", "error", err)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(retryDelay):
			}
			continue
		}

		c.Process(ctx, jobID)
	}
}

// Process runs a single job and records its terminal state.
func (c *Consumer) Process(ctx context.Context, jobID string) {
	// Terminal states are written even when ctx was cancelled mid-scan.
	persistCtx := context.WithoutCancel(ctx)

	job, err := c.store.GetJob(ctx, jobID)
	if err != nil {
		if errors.Is(err, ErrJobNotFound) {
			c.logger.Warn("consumer job disappeared", "job_id", jobID)
			return
		}
		c.logger.Error("consumer failed to load job", "job_id", jobID, "error", err)
		return
	}

	job.Status = StatusRunning
	job.Error = ""
	job.Report = nil
	job.Completed = 0
	job.Interrupted = false
	job.CompletedAt = nil
	if err := c.store.UpdateJob(ctx, job); err != nil {
		c.logger.Error("consumer failed to mark job running", "job_id", jobID, "error", err)
		return
	}

	req := scanner.Request{
		Host:    job.Host,
		Ports:   job.Ports,
		Timeout: time.Duration(job.TimeoutMs) * time.Millisecond,
		Workers: job.Workers,
		Banner:  job.Banner,
	}

	start := time.Now()
	result, err := scanner.Run(ctx, c.executor, c.resolver, c.lookup, req, c.progress(persistCtx, job.ID))
	if result == nil {
		c.failJob(persistCtx, job, err)
		return
	}

	job.Status = StatusCompleted
	job.Address = result.Target.Address
	job.Family = result.Target.Family.String()
	job.Total = result.Total
	job.Completed = result.Completed
	job.Interrupted = result.Interrupted
	job.Report = result.Report
	if err != nil {
		job.Error = err.Error()
		c.logger.Warn("scan ended early", "job_id", job.ID, "completed", result.Completed, "total", result.Total, "error", err)
	}
	now := time.Now().UTC()
	job.CompletedAt = &now

	if err := c.store.UpdateJob(persistCtx, job); err != nil {
		c.logger.Error("consumer failed to update job", "job_id", job.ID, "error", err)
		return
	}
	c.logger.Info("scan completed", "job_id", job.ID, "host", job.Host, "address", job.Address,
		"open_ports", len(job.Report), "duration_ms", time.Since(start).Milliseconds())
}

// progress persists coarse progress, roughly every 5% of the job.
func (c *Consumer) progress(ctx context.Context, jobID string) scanner.ProgressFunc {
	return func(completed, total int) {
		step := max(total/progressSteps, 1)
		if completed%step != 0 && completed != total {
			return
		}
		if err := c.store.UpdateProgress(ctx, jobID, completed, total); err != nil {
			c.logger.Debug("consumer failed to record progress", "job_id", jobID, "error", err)
		}
	}
}

func (c *Consumer) failJob(ctx context.Context, job *Job, err error) {
	c.logger.Error("scan job failed", "job_id", job.ID, "error", err)
	job.Status = StatusFailed
	job.Error = err.Error()
	job.Report = nil
	now := time.Now().UTC()
	job.CompletedAt = &now
	if updateErr := c.store.UpdateJob(ctx, job); updateErr != nil {
		c.logger.Error("consumer failed to persist failed job", "job_id", job.ID, "error", updateErr)
	}
}
