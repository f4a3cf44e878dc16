package scanner

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"
)

// DefaultTimeout is used when a task carries no positive timeout.
const DefaultTimeout = 500 * time.Millisecond

const bannerReadSize = 1024

// bannerProbe is sent after connecting to coax a greeting out of line-based services.
var bannerProbe = []byte("\r\n")

// Dialer opens stream connections. *net.Dialer satisfies it.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

func defaultDialer() Dialer {
	return &net.Dialer{}
}

// connectWorker processes scan tasks using a full TCP handshake.
// A panic while probing is reported on failures and ends this worker.
func connectWorker(ctx context.Context, dialer Dialer, jobs <-chan ScanTask, results chan<- ScanOutcome, failures chan<- error) {
	for task := range jobs {
		if ctx.Err() != nil {
			return
		}

		outcome, completed, err := runTask(ctx, dialer, task)
		if err != nil {
			select {
			case failures <- err:
			default:
			}
			return
		}
		if !completed {
			return
		}
		// results holds one slot per task, so this send never blocks.
		results <- outcome
	}
}

func runTask(ctx context.Context, dialer Dialer, task ScanTask) (outcome ScanOutcome, completed bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("probing port %d: %v", task.Port, r)
		}
	}()
	outcome, completed = probePort(ctx, dialer, task)
	return outcome, completed, nil
}

// probePort attempts one connection. Connection failures of any kind mean closed,
// except a dial aborted by cancellation of ctx, which reports completed == false.
func probePort(ctx context.Context, dialer Dialer, task ScanTask) (outcome ScanOutcome, completed bool) {
	outcome = ScanOutcome{Port: task.Port}

	timeout := task.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	address := net.JoinHostPort(task.Address, strconv.Itoa(task.Port))
	conn, err := dialer.DialContext(dialCtx, task.Family.Network(), address)
	if err != nil {
		if ctx.Err() != nil && errors.Is(err, context.Canceled) {
			return outcome, false
		}
		return outcome, true
	}
	defer conn.Close()

	outcome.Open = true
	if task.Banner {
		// Cancellation cuts the banner read short; the port is still reported open.
		stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
		defer stop()
		outcome.Banner = grabBanner(conn, timeout)
	}
	return outcome, true
}

// grabBanner sends the probe and performs a single bounded read.
// It returns nil when nothing could be read; it never affects the open state.
func grabBanner(conn net.Conn, timeout time.Duration) []byte {
	_ = conn.SetWriteDeadline(time.Now().Add(timeout))
	if _, err := conn.Write(bannerProbe); err != nil {
		return nil
	}

	_ = conn.SetReadDeadline(time.Now().Add(timeout))
	buffer := make([]byte, bannerReadSize)
	n, _ := conn.Read(buffer)
	if n <= 0 {
		return nil
	}
	return buffer[:n]
}
