package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

const progressRefresh = 300 * time.Millisecond

// progressPrinter redraws a single status line while hosts leave the
// reachability stage.
type progressPrinter struct {
	out   io.Writer
	label string

	mu          sync.Mutex
	total       int
	reachable   int
	unreachable int
	started     time.Time
	width       int // length of the last rendered line

	wake     chan struct{}
	quit     chan struct{}
	stopped  chan struct{}
	stopOnce sync.Once
}

func newProgressPrinter(total int, label string) *progressPrinter {
	return &progressPrinter{
		out:     os.Stdout,
		label:   label,
		total:   max(total, 1),
		wake:    make(chan struct{}, 1),
		quit:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

func (p *progressPrinter) Start() {
	p.mu.Lock()
	p.started = time.Now()
	p.mu.Unlock()
	go p.refresh()
}

// Increment records one host leaving the reachability stage.
func (p *progressPrinter) Increment(reachable bool) {
	p.mu.Lock()
	if reachable {
		p.reachable++
	} else {
		p.unreachable++
	}
	p.mu.Unlock()

	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// Stop halts redrawing and leaves the final counts on their own line.
func (p *progressPrinter) Stop() {
	p.stopOnce.Do(func() {
		close(p.quit)
		p.mu.Lock()
		running := !p.started.IsZero()
		p.mu.Unlock()
		if running {
			<-p.stopped
		}
		p.draw()
		fmt.Fprintln(p.out)
	})
}

func (p *progressPrinter) refresh() {
	defer close(p.stopped)
	ticker := time.NewTicker(progressRefresh)
	defer ticker.Stop()

	for {
		select {
		case <-p.quit:
			return
		case <-p.wake:
		case <-ticker.C:
		}
		p.draw()
	}
}

func (p *progressPrinter) draw() {
	p.mu.Lock()
	defer p.mu.Unlock()

	checked := p.reachable + p.unreachable
	p.total = max(p.total, checked)
	line := fmt.Sprintf("%s %s %d/%d hosts  %s %d  %s %d  %s",
		colorInfo("→"), p.label, checked, p.total,
		colorSuccess("reachable"), p.reachable,
		colorError("unreachable"), p.unreachable,
		time.Since(p.started).Round(100*time.Millisecond))

	pad := ""
	if n := len(line); n < p.width {
		pad = strings.Repeat(" ", p.width-n)
	}
	p.width = len(line)
	fmt.Fprintf(p.out, "\r%s%s", line, pad)
}
