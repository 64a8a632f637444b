package pipeline

import (
	"time"

	"github.com/rubiojr/lunchbox/pkg/core"
)

// DefaultDebounceQuiet is the quiet period a query must survive before it
// is emitted.
const DefaultDebounceQuiet = 500 * time.Millisecond

// Debouncer collapses a rapid sequence of query edits into at most one
// effective query per quiet period, measured from the last edit. An empty
// (or whitespace-only) query bypasses the quiet period entirely because it
// means "back to nearby mode". Emitting the same normalized query twice in a
// row is suppressed.
type Debouncer struct {
	quiet  time.Duration
	in     chan string
	out    chan string
	stopCh chan struct{}
	done   chan struct{}
}

// NewDebouncer creates and starts a debouncer. A quiet of 0 selects
// DefaultDebounceQuiet.
func NewDebouncer(quiet time.Duration) *Debouncer {
	if quiet <= 0 {
		quiet = DefaultDebounceQuiet
	}
	d := &Debouncer{
		quiet:  quiet,
		in:     make(chan string, 16),
		out:    make(chan string, 16),
		stopCh: make(chan struct{}),
		done:   make(chan struct{}),
	}
	go d.run()
	return d
}

// Input is the channel raw query edits are sent to.
func (d *Debouncer) Input() chan<- string { return d.in }

// Output is the channel effective queries are emitted on.
func (d *Debouncer) Output() <-chan string { return d.out }

// Stop terminates the debouncer. Pending (not yet emitted) input is
// discarded.
func (d *Debouncer) Stop() {
	close(d.stopCh)
	<-d.done
}

func (d *Debouncer) run() {
	defer close(d.done)

	var timer *time.Timer
	var timerC <-chan time.Time
	var pending string
	var hasPending bool
	var lastEmitted string
	var emittedAny bool

	stopTimer := func() {
		if timer != nil {
			timer.Stop()
			timer = nil
			timerC = nil
		}
	}

	emit := func(query string) {
		if emittedAny && query == lastEmitted {
			return
		}
		select {
		case d.out <- query:
			lastEmitted = query
			emittedAny = true
		case <-d.stopCh:
		}
	}

	for {
		select {
		case <-d.stopCh:
			stopTimer()
			return

		case raw := <-d.in:
			query := core.NormalizeQuery(raw)
			if query == "" {
				// Back to nearby mode: emit immediately, cancel any
				// pending text query.
				stopTimer()
				hasPending = false
				emit("")
				continue
			}
			pending = query
			hasPending = true
			stopTimer()
			timer = time.NewTimer(d.quiet)
			timerC = timer.C

		case <-timerC:
			timer = nil
			timerC = nil
			if hasPending {
				hasPending = false
				emit(pending)
			}
		}
	}
}
