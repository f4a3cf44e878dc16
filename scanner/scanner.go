package scanner

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"
)

var (
	// ErrInterrupted reports that the scan stopped before every task completed.
	ErrInterrupted = errors.New("scan interrupted")
	// ErrPoolFailure reports a failure of the worker pool itself rather than of a port probe.
	ErrPoolFailure = errors.New("worker pool failure")
)

// MaxWorkers caps the default pool size.
const MaxWorkers = 64

// ScanTask represents a single port scanning task.
type ScanTask struct {
	Family  Family
	Address string
	Port    int
	Timeout time.Duration
	Banner  bool
}

// ScanOutcome represents the result of one ScanTask. Banner is nil when nothing was captured.
type ScanOutcome struct {
	Port   int
	Open   bool
	Banner []byte
}

// ProgressFunc receives the number of completed tasks and the total.
type ProgressFunc func(completed, total int)

// DefaultWorkers returns min(64, NumCPU*4).
func DefaultWorkers() int {
	n := runtime.NumCPU() * 4
	if n > MaxWorkers {
		return MaxWorkers
	}
	if n < 1 {
		return 1
	}
	return n
}

// BuildTasks creates one task per port against the resolved target.
func BuildTasks(target ResolvedTarget, ports []int, timeout time.Duration, banner bool) []ScanTask {
	tasks := make([]ScanTask, 0, len(ports))
	for _, port := range ports {
		tasks = append(tasks, ScanTask{
			Family:  target.Family,
			Address: target.Address,
			Port:    port,
			Timeout: timeout,
			Banner:  banner,
		})
	}
	return tasks
}

// Executor runs scan tasks on a bounded pool of goroutines.
type Executor struct {
	Workers int
	Dialer  Dialer
}

// NewExecutor returns an Executor using a plain net.Dialer.
func NewExecutor(workers int) *Executor {
	return &Executor{Workers: workers, Dialer: defaultDialer()}
}

// Execute distributes tasks across the pool and collects one outcome per executed task.
// Outcomes arrive in completion order. When ctx is cancelled every outcome finished
// before the cancellation is returned together with ErrInterrupted. When a worker
// fails, the outcomes collected so far are returned with ErrPoolFailure.
func (e *Executor) Execute(ctx context.Context, tasks []ScanTask, onProgress ProgressFunc) ([]ScanOutcome, error) {
	workerCount := e.Workers
	if workerCount < 1 {
		workerCount = 1
	}
	if workerCount > len(tasks) && len(tasks) > 0 {
		workerCount = len(tasks)
	}
	dialer := e.Dialer
	if dialer == nil {
		dialer = defaultDialer()
	}

	total := len(tasks)
	outcomes := make([]ScanOutcome, 0, total)
	if total == 0 {
		return outcomes, nil
	}

	poolCtx, stop := context.WithCancel(ctx)
	defer stop()

	jobs := make(chan ScanTask)
	// Buffered to total so workers never block on a collector that already returned.
	results := make(chan ScanOutcome, total)
	failures := make(chan error, 1)

	var wg sync.WaitGroup
	for w := 0; w < workerCount; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			connectWorker(poolCtx, dialer, jobs, results, failures)
		}()
	}

	go func() {
		defer close(jobs)
		for _, task := range tasks {
			select {
			case <-poolCtx.Done():
				return
			case jobs <- task:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	for {
		select {
		case outcome, ok := <-results:
			if !ok {
				select {
				case err := <-failures:
					return outcomes, fmt.Errorf("%w: %w", ErrPoolFailure, err)
				default:
				}
				if ctx.Err() != nil && len(outcomes) < total {
					return outcomes, fmt.Errorf("%w: %w", ErrInterrupted, ctx.Err())
				}
				return outcomes, nil
			}
			outcomes = append(outcomes, outcome)
			if onProgress != nil {
				onProgress(len(outcomes), total)
			}
		case err := <-failures:
			outcomes = drain(results, outcomes, total, onProgress)
			return outcomes, fmt.Errorf("%w: %w", ErrPoolFailure, err)
		case <-ctx.Done():
			// Workers stop taking tasks and in-flight dials abort, so results closes
			// promptly. Everything finished before that is kept.
			for outcome := range results {
				outcomes = append(outcomes, outcome)
				if onProgress != nil {
					onProgress(len(outcomes), total)
				}
			}
			if len(outcomes) == total {
				return outcomes, nil
			}
			return outcomes, fmt.Errorf("%w: %w", ErrInterrupted, ctx.Err())
		}
	}
}

// drain collects the outcomes already waiting on results without blocking.
func drain(results <-chan ScanOutcome, outcomes []ScanOutcome, total int, onProgress ProgressFunc) []ScanOutcome {
	for {
		select {
		case outcome, ok := <-results:
			if !ok {
				return outcomes
			}
			outcomes = append(outcomes, outcome)
			if onProgress != nil {
				onProgress(len(outcomes), total)
			}
		default:
			return outcomes
		}
	}
}
