package worker

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
)

const barWidth = 30

// Progress renders a one-line progress bar for a pool run. The pool counts
// tasks; each task covers perTask colours and the bar reports colours.
type Progress struct {
	start   time.Time
	out     io.Writer
	tasks   int
	done    int
	skipped int
	perTask int
	mu      sync.Mutex
	enabled bool
}

// NewProgress creates a progress bar writing to stderr.
func NewProgress(tasks, perTask int, enabled bool) *Progress {
	if perTask < 1 {
		perTask = 1
	}
	return &Progress{
		start:   time.Now(),
		out:     os.Stderr,
		tasks:   tasks,
		perTask: perTask,
		enabled: enabled,
	}
}

// SetOutput redirects the bar.
func (p *Progress) SetOutput(w io.Writer) {
	p.mu.Lock()
	p.out = w
	p.mu.Unlock()
}

// Update has the ProgressFunc signature. failed counts tasks that did not run
// to completion; their colours are not counted as scanned.
func (p *Progress) Update(completed, total, failed int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.done, p.tasks, p.skipped = completed, total, failed
	if p.enabled {
		fmt.Fprintf(p.out, "\r%-100s", p.line(time.Since(p.start)))
	}
}

// Callback returns Update as a ProgressFunc.
func (p *Progress) Callback() ProgressFunc {
	return p.Update
}

// Scanned returns the number of colours covered by completed tasks.
func (p *Progress) Scanned() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.scanned()
}

func (p *Progress) scanned() int {
	return (p.done - p.skipped) * p.perTask
}

// Done redraws the final state and ends the line.
func (p *Progress) Done() {
	if !p.enabled {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, "\r%-100s\n", p.line(time.Since(p.start)))
}

// Summary describes the finished run for the log.
func (p *Progress) Summary() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	elapsed := time.Since(p.start)
	scanned := p.scanned()
	s := fmt.Sprintf("Scanned %s colours in %s (%s colours/sec)",
		humanize.Comma(int64(scanned)), elapsed.Round(time.Second), humanize.Comma(int64(rate(scanned, elapsed))))
	if p.skipped > 0 {
		s += fmt.Sprintf(", %d of %d tasks skipped", p.skipped, p.tasks)
	}
	return s
}

// line renders the bar. Must be called with p.mu held.
func (p *Progress) line(elapsed time.Duration) string {
	scanned := p.scanned()
	all := p.tasks * p.perTask

	filled := barWidth
	if p.tasks > 0 && p.done < p.tasks {
		filled = barWidth * p.done / p.tasks
	}

	var b strings.Builder
	b.WriteByte('[')
	b.WriteString(strings.Repeat("█", filled))
	b.WriteString(strings.Repeat("░", barWidth-filled))
	fmt.Fprintf(&b, "] %s/%s colours", humanize.Comma(int64(scanned)), humanize.Comma(int64(all)))
	if p.skipped > 0 {
		fmt.Fprintf(&b, " (%d skipped)", p.skipped)
	}

	r := rate(scanned, elapsed)
	fmt.Fprintf(&b, " | %s/sec", humanize.Comma(int64(r)))

	switch {
	case p.done >= p.tasks:
		fmt.Fprintf(&b, " | done in %s", elapsed.Round(time.Second))
	case r > 0:
		eta := time.Duration(float64(all-scanned) / r * float64(time.Second))
		fmt.Fprintf(&b, " | ETA %s", eta.Round(time.Second))
	}
	return b.String()
}

func rate(n int, elapsed time.Duration) float64 {
	if elapsed <= 0 {
		return 0
	}
	return float64(n) / elapsed.Seconds()
}
