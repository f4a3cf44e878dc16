package scanner

import (
	"context"
	"time"
)

// Request describes a complete scan of one host.
type Request struct {
	Host    string
	Ports   string
	Timeout time.Duration
	Workers int
	Banner  bool
}

// Result is the outcome of Run. Report is valid even when Interrupted is set.
type Result struct {
	Target      ResolvedTarget
	Total       int
	Completed   int
	Interrupted bool
	Report      []OpenPort
}

// Plan parses the port specification and resolves the host. It fails before any
// connection is attempted.
func Plan(ctx context.Context, resolver Resolver, host, spec string) (ResolvedTarget, []int, error) {
	ports, err := ParsePorts(spec)
	if err != nil {
		return ResolvedTarget{}, nil, err
	}
	if len(ports) == 0 {
		return ResolvedTarget{}, nil, ErrNoPorts
	}

	target, err := Resolve(ctx, resolver, host)
	if err != nil {
		return ResolvedTarget{}, nil, err
	}
	return target, ports, nil
}

// Run performs a full scan. Errors from Plan abort the scan and return a nil Result.
// An interrupted or failed pool returns the partial Result together with the error.
func Run(ctx context.Context, executor *Executor, resolver Resolver, lookup ServiceLookup, req Request, onProgress ProgressFunc) (*Result, error) {
	target, ports, err := Plan(ctx, resolver, req.Host, req.Ports)
	if err != nil {
		return nil, err
	}

	tasks := BuildTasks(target, ports, req.Timeout, req.Banner)
	if executor == nil {
		executor = NewExecutor(DefaultWorkers())
	}
	if req.Workers > 0 {
		sized := *executor
		sized.Workers = req.Workers
		executor = &sized
	}

	outcomes, err := executor.Execute(ctx, tasks, onProgress)
	result := &Result{
		Target:      target,
		Total:       len(tasks),
		Completed:   len(outcomes),
		Interrupted: err != nil,
		Report:      Aggregate(outcomes, lookup),
	}
	return result, err
}
