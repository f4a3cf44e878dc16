package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

const progressWidth = 30

// Reporter displays scan progress. It has no effect on results.
type Reporter interface {
	Update(completed, total int)
	Finish()
}

// NewReporter returns a progress bar bound to w when w is a terminal, and a silent
// reporter otherwise.
func NewReporter(w io.Writer) Reporter {
	if f, ok := w.(*os.File); ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		return &barReporter{w: w, lastPercent: -1}
	}
	return nopReporter{}
}

type nopReporter struct{}

func (nopReporter) Update(int, int) {}
func (nopReporter) Finish()         {}

type barReporter struct {
	w           io.Writer
	lastPercent int
	drawn       bool
}

// Update redraws the bar when the integer percentage changes.
func (r *barReporter) Update(completed, total int) {
	if total <= 0 {
		return
	}
	percent := completed * 100 / total
	if percent == r.lastPercent && completed != total {
		return
	}
	r.lastPercent = percent
	r.drawn = true

	filled := progressWidth * completed / total
	bar := strings.Repeat("#", filled) + strings.Repeat(" ", progressWidth-filled)
	fmt.Fprintf(r.w, "\rScanning: %3d%%|%s| %d/%d ports", percent, bar, completed, total)
}

func (r *barReporter) Finish() {
	if r.drawn {
		fmt.Fprintln(r.w)
	}
}
