package internal

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
)

// Reporter receives run progress. Calls come from a single goroutine, so
// implementations need no locking.
type Reporter interface {
	OnStart(total, workers int)
	OnResult(index, total int, r Result)
	OnFinish(s *Summary)
}

// ConsoleReporter prints one line per file and a summary block.
type ConsoleReporter struct {
	out     io.Writer
	ok      *color.Color
	fail    *color.Color
	dim     *color.Color
	Verbose bool
}

// NewConsoleReporter writes to out; mode is auto, always or never.
func NewConsoleReporter(out io.Writer, mode string) *ConsoleReporter {
	r := &ConsoleReporter{
		out:  out,
		ok:   color.New(color.FgGreen, color.Bold),
		fail: color.New(color.FgRed, color.Bold),
		dim:  color.New(color.Faint),
	}
	for _, c := range []*color.Color{r.ok, r.fail, r.dim} {
		switch mode {
		case "always":
			c.EnableColor()
		case "never":
			c.DisableColor()
		}
	}
	return r
}

func (r *ConsoleReporter) OnStart(total, workers int) {
	fmt.Fprintf(r.out, "Starting metadata updates for %s files using %d workers...\n\n", humanize.Comma(int64(total)), workers)
}

func (r *ConsoleReporter) OnResult(index, total int, res Result) {
	mark := r.ok.Sprint("✓")
	if !res.Outcome.Success() {
		mark = r.fail.Sprint("✗")
	}
	fmt.Fprintf(r.out, "[%s] %d/%d [%s] - %s\n", mark, index, total, res.RelPath, res.Status())
}

func (r *ConsoleReporter) OnFinish(s *Summary) {
	fmt.Fprintf(r.out, "\nSummary:\n")
	fmt.Fprintf(r.out, "Processed: %s/%s", humanize.Comma(int64(s.Succeeded)), humanize.Comma(int64(s.Total)))
	fmt.Fprintf(r.out, " %s\n", r.dim.Sprintf("(%s)", s.Duration.Round(time.Millisecond)))

	if len(s.Failures) == 0 {
		return
	}
	fmt.Fprintf(r.out, "\n%s\n", r.fail.Sprintf("Failed Files (%s):", humanize.Comma(int64(len(s.Failures)))))
	for _, f := range s.Failures {
		fmt.Fprintf(r.out, " - %s: %s\n", f.RelPath, f.Reason)
	}
	if r.Verbose && s.Errors != nil {
		fmt.Fprintf(r.out, "\n%s", s.Errors.GenerateReport())
	}
}
