// Package progress reports sweep completion to the terminal or as
// machine-readable JSON lines.
package progress

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/term"
)

// Printer receives sweep lifecycle events.
type Printer interface {
	Start(total int)
	Step(done, total int)
	Complete(elapsed time.Duration)
}

// NewPrinter selects an output format. "plain" and "json" force a format;
// "auto" picks plain on a TTY and json otherwise.
func NewPrinter(mode string, w io.Writer) (Printer, error) {
	switch mode {
	case "plain":
		return &PlainPrinter{w: w}, nil
	case "json":
		return &JSONPrinter{w: w}, nil
	case "auto", "":
		if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			return &PlainPrinter{w: w}, nil
		}
		return &JSONPrinter{w: w}, nil
	}
	return nil, fmt.Errorf("unknown progress mode %q", mode)
}

// PlainPrinter writes a single-line percentage bar, rewriting it in place.
type PlainPrinter struct {
	w       io.Writer
	lastPct int
}

func (p *PlainPrinter) Start(total int) {
	p.lastPct = -1
	fmt.Fprintf(p.w, "running %d steps\n", total)
}

func (p *PlainPrinter) Step(done, total int) {
	if total == 0 {
		return
	}
	pct := done * 100 / total
	if pct == p.lastPct {
		return
	}
	p.lastPct = pct
	fmt.Fprintf(p.w, "\r%3d%% (%d/%d)", pct, done, total)
}

func (p *PlainPrinter) Complete(elapsed time.Duration) {
	fmt.Fprintf(p.w, "\rdone in %s          \n", elapsed.Round(time.Millisecond))
}

// JSONPrinter writes one JSON object per event.
type JSONPrinter struct {
	w io.Writer
}

func (p *JSONPrinter) Start(total int) {
	p.emit(map[string]interface{}{
		"event":       "sweep_start",
		"timestamp":   time.Now().Format(time.RFC3339),
		"total_steps": total,
	})
}

func (p *JSONPrinter) Step(done, total int) {
	p.emit(map[string]interface{}{
		"event": "sweep_step",
		"done":  done,
		"total": total,
	})
}

func (p *JSONPrinter) Complete(elapsed time.Duration) {
	p.emit(map[string]interface{}{
		"event":       "sweep_complete",
		"timestamp":   time.Now().Format(time.RFC3339),
		"duration_ms": elapsed.Milliseconds(),
	})
}

func (p *JSONPrinter) emit(data map[string]interface{}) {
	json.NewEncoder(p.w).Encode(data)
}

// Tracker bridges the sweep's per-step ticks onto a Printer over a channel,
// so the worker goroutine never touches the terminal directly. One producer
// calls Tick, one consumer runs Drain.
type Tracker struct {
	ch    chan struct{}
	done  chan struct{}
	total int
}

// NewTracker allocates a tracker for a sweep of total steps.
func NewTracker(total int) *Tracker {
	return &Tracker{
		ch:    make(chan struct{}, 64),
		done:  make(chan struct{}),
		total: total,
	}
}

// Tick records one completed step. Safe to call from the worker only.
func (t *Tracker) Tick() {
	t.ch <- struct{}{}
}

// Drain consumes ticks and forwards them to the printer until Close is
// called. It blocks; run it on the goroutine that owns the output.
func (t *Tracker) Drain(p Printer) {
	defer close(t.done)
	start := time.Now()
	p.Start(t.total)
	count := 0
	for range t.ch {
		count++
		p.Step(count, t.total)
	}
	p.Complete(time.Since(start))
}

// Close stops the drain loop and blocks until the final line is printed.
func (t *Tracker) Close() {
	close(t.ch)
	<-t.done
}
