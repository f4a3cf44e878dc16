package cli

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"portscout/logging"
	"portscout/scanner"
	"portscout/services"
)

// Exit codes.
const (
	ExitOK    = 0
	ExitUsage = 2
)

const (
	name    = "portscout"
	version = "v1.0.0"
	rule    = "------------------------------------------------------------------------"

	maxTimeout = time.Hour
)

// App wires the scan engine to a terminal. Zero fields fall back to the process defaults.
type App struct {
	Stdout   io.Writer
	Stderr   io.Writer
	Resolver scanner.Resolver
	Dialer   scanner.Dialer
	// SystemServices is merged into the service table unless --services is given.
	SystemServices string
}

type options struct {
	host         string
	ports        string
	timeout      float64
	workers      int
	banner       bool
	jsonOutput   bool
	servicesFile string
}

type jsonReport struct {
	Host        string             `json:"host"`
	Address     string             `json:"address"`
	Family      string             `json:"family"`
	Ports       string             `json:"ports"`
	Total       int                `json:"total"`
	Completed   int                `json:"completed"`
	Interrupted bool               `json:"interrupted"`
	OpenPorts   []scanner.OpenPort `json:"open_ports"`
}

// Run is the main entry point for the CLI application using the process streams.
func Run(ctx context.Context, args []string) int {
	app := &App{
		Stdout:         os.Stdout,
		Stderr:         os.Stderr,
		SystemServices: services.SystemFile,
	}
	return app.Run(ctx, args)
}

// Run parses args, scans and prints the report. It returns the process exit code.
// Cancelling ctx stops the scan and reports the outcomes gathered so far.
func (a *App) Run(ctx context.Context, args []string) int {
	stdout, stderr := a.Stdout, a.Stderr
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}

	level, err := logging.ParseLevel(os.Getenv("PORTSCOUT_LOG_LEVEL"), slog.LevelWarn)
	if err != nil {
		fmt.Fprintf(stderr, "[!] %v\n", err)
		return ExitUsage
	}
	logger := logging.Configure(stderr, level)

	opts, err := parseArgs(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitOK
		}
		fmt.Fprintf(stderr, "[!] %v\n", err)
		return ExitUsage
	}

	table := services.New()
	if opts.servicesFile != "" {
		if _, err := table.LoadFile(opts.servicesFile); err != nil {
			fmt.Fprintf(stderr, "[!] %v\n", err)
			return ExitUsage
		}
	} else if a.SystemServices != "" {
		if _, err := table.LoadFile(a.SystemServices); err != nil {
			logger.Debug("system services table not loaded", "error", err)
		}
	}
	logger.Debug("service names loaded", "entries", table.Len())

	target, ports, err := scanner.Plan(ctx, a.Resolver, opts.host, opts.ports)
	if err != nil {
		switch {
		case errors.Is(err, scanner.ErrResolution):
			fmt.Fprintf(stderr, "[!] Could not resolve host: %v\n", err)
		case errors.Is(err, scanner.ErrNoPorts):
			fmt.Fprintln(stderr, "[!] No valid ports specified.")
		default:
			fmt.Fprintf(stderr, "[!] %v\n", err)
		}
		return ExitUsage
	}

	if !opts.jsonOutput {
		printHeader(stdout)
		fmt.Fprintf(stdout, "Target : %s (%s)\n", opts.host, target.Address)
		fmt.Fprintf(stdout, "Range: %s  | Workers: %d  | Timeout: %gs  | Banner: %t\n",
			opts.ports, opts.workers, opts.timeout, opts.banner)
		fmt.Fprintln(stdout, rule)
	}

	timeout := time.Duration(opts.timeout * float64(time.Second))
	tasks := scanner.BuildTasks(target, ports, timeout, opts.banner)
	executor := &scanner.Executor{Workers: opts.workers, Dialer: a.Dialer}

	logger.Debug("scan started", "host", opts.host, "address", target.Address, "family", target.Family.String(), "ports", len(tasks), "workers", opts.workers)

	progress := NewReporter(stderr)
	outcomes, err := executor.Execute(ctx, tasks, progress.Update)
	progress.Finish()

	interrupted := false
	if err != nil {
		interrupted = true
		switch {
		case errors.Is(err, scanner.ErrInterrupted):
			fmt.Fprintln(stderr, "\n[!] Scan interrupted by user.")
		default:
			fmt.Fprintf(stderr, "\n[!] Failure while scanning: %v\n", err)
			logger.Error("scan failed", "host", opts.host, "error", err)
		}
	}

	report := scanner.Aggregate(outcomes, table.Name)
	logger.Debug("scan finished", "host", opts.host, "completed", len(outcomes), "total", len(tasks), "open", len(report))

	if opts.jsonOutput {
		return printJSON(stdout, stderr, jsonReport{
			Host:        opts.host,
			Address:     target.Address,
			Family:      target.Family.String(),
			Ports:       opts.ports,
			Total:       len(tasks),
			Completed:   len(outcomes),
			Interrupted: interrupted,
			OpenPorts:   report,
		})
	}

	printReport(stdout, opts.host, report)
	return ExitOK
}

// parseArgs accepts flags before and after the host argument.
func parseArgs(args []string, stderr io.Writer) (options, error) {
	opts := options{}
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: %s [options] <host>\n", name)
		fmt.Fprintf(stderr, "       %s serve\n\n", name)
		fs.PrintDefaults()
	}

	fs.StringVar(&opts.ports, "ports", "1-1024", "Ports to scan, e.g. 1-1024,3000,8080")
	fs.StringVar(&opts.ports, "p", "1-1024", "Shorthand for --ports")
	fs.Float64Var(&opts.timeout, "timeout", 0.5, "TCP socket timeout in seconds")
	fs.Float64Var(&opts.timeout, "t", 0.5, "Shorthand for --timeout")
	fs.IntVar(&opts.workers, "workers", scanner.DefaultWorkers(), "Number of parallel workers")
	fs.IntVar(&opts.workers, "w", scanner.DefaultWorkers(), "Shorthand for --workers")
	fs.BoolVar(&opts.banner, "banner", false, "Display service banners")
	fs.BoolVar(&opts.jsonOutput, "json", false, "Output results in JSON format")
	fs.StringVar(&opts.servicesFile, "services", "", "Additional services(5) file for service names")

	var positional []string
	rest := args
	for {
		if err := fs.Parse(rest); err != nil {
			return options{}, err
		}
		rest = fs.Args()
		if len(rest) == 0 {
			break
		}
		positional = append(positional, rest[0])
		rest = rest[1:]
	}

	if len(positional) != 1 {
		fs.Usage()
		return options{}, fmt.Errorf("expected exactly one target host, got %d", len(positional))
	}
	opts.host = strings.TrimSpace(positional[0])
	if opts.host == "" {
		return options{}, errors.New("target host must not be empty")
	}
	if !(opts.timeout > 0) {
		return options{}, fmt.Errorf("timeout must be greater than 0, got %g", opts.timeout)
	}
	if opts.timeout > maxTimeout.Seconds() {
		return options{}, fmt.Errorf("timeout must not exceed %gs, got %g", maxTimeout.Seconds(), opts.timeout)
	}
	if opts.workers < 1 {
		return options{}, fmt.Errorf("workers must be at least 1, got %d", opts.workers)
	}
	return opts, nil
}

func printHeader(w io.Writer) {
	border := "+" + strings.Repeat("-", 70) + "+"
	fmt.Fprintln(w, border)
	fmt.Fprintf(w, "| %s |\n", center(name, 68))
	fmt.Fprintf(w, "| %s |\n", center(version, 68))
	fmt.Fprintf(w, "| %s |\n", center("Parallel TCP port scanner", 68))
	fmt.Fprintln(w, border)
	fmt.Fprintln(w)
}

func center(s string, width int) string {
	if len(s) >= width {
		return s
	}
	left := (width - len(s)) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", width-len(s)-left)
}

// printReport prints the open ports in ascending order.
func printReport(w io.Writer, host string, report []scanner.OpenPort) {
	if len(report) == 0 {
		fmt.Fprintf(w, "\nThere are no open ports on %s\n", host)
	} else {
		fmt.Fprintf(w, "\nOpen port(s) found: (%d)\n", len(report))
		for _, entry := range report {
			fmt.Fprintln(w, scanner.FormatOpenPort(entry))
		}
	}
	fmt.Fprintln(w, rule)
}

// printJSON marshals and prints the report in JSON format.
func printJSON(stdout, stderr io.Writer, report jsonReport) int {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		fmt.Fprintf(stderr, "[!] Error encoding to JSON: %v\n", err)
		return ExitOK
	}
	fmt.Fprintln(stdout, string(data))
	return ExitOK
}
