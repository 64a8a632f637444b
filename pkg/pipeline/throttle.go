package pipeline

import (
	"time"

	"github.com/rubiojr/lunchbox/pkg/core"
)

const (
	// DefaultThrottleWindow is the minimum time between two emitted
	// location fixes.
	DefaultThrottleWindow = 2 * time.Second

	// DefaultMinMoveMeters is the minimum distance from the last emitted
	// fix for a new fix to count as a move at all. Fixes closer than this
	// are GPS jitter and are dropped outright.
	DefaultMinMoveMeters = 10.0
)

// Throttler collapses a rapid sequence of location fixes into at most one
// emission per time window, keeping only the most recent fix within a
// window. The very first fix is emitted immediately. Fixes within
// minMove meters of the last emitted fix are suppressed even after the
// window elapses.
type Throttler struct {
	window  time.Duration
	minMove float64
	in      chan core.Location
	out     chan core.Location
	stopCh  chan struct{}
	done    chan struct{}
	now     func() time.Time
}

// NewThrottler creates and starts a throttler. Zero values select the
// defaults.
func NewThrottler(window time.Duration, minMoveMeters float64) *Throttler {
	if window <= 0 {
		window = DefaultThrottleWindow
	}
	if minMoveMeters <= 0 {
		minMoveMeters = DefaultMinMoveMeters
	}
	t := &Throttler{
		window:  window,
		minMove: minMoveMeters,
		in:      make(chan core.Location, 16),
		out:     make(chan core.Location, 16),
		stopCh:  make(chan struct{}),
		done:    make(chan struct{}),
		now:     time.Now,
	}
	go t.run()
	return t
}

// Input is the channel raw location fixes are sent to.
func (t *Throttler) Input() chan<- core.Location { return t.in }

// Output is the channel throttled locations are emitted on.
func (t *Throttler) Output() <-chan core.Location { return t.out }

// Stop terminates the throttler. A pending (not yet emitted) fix is
// discarded.
func (t *Throttler) Stop() {
	close(t.stopCh)
	<-t.done
}

func (t *Throttler) run() {
	defer close(t.done)

	var timer *time.Timer
	var timerC <-chan time.Time
	var pending *core.Location
	var last core.Location
	var lastAt time.Time
	var emittedAny bool

	stopTimer := func() {
		if timer != nil {
			timer.Stop()
			timer = nil
			timerC = nil
		}
	}

	emit := func(loc core.Location) {
		select {
		case t.out <- loc:
			last = loc
			lastAt = t.now()
			emittedAny = true
		case <-t.stopCh:
		}
	}

	for {
		select {
		case <-t.stopCh:
			stopTimer()
			return

		case loc := <-t.in:
			if emittedAny && loc.DistanceTo(last) < t.minMove {
				// Jitter: not a real move, regardless of timing.
				continue
			}
			if !emittedAny || t.now().Sub(lastAt) >= t.window {
				stopTimer()
				pending = nil
				emit(loc)
				continue
			}
			// Inside the window: remember only the latest fix and arm a
			// timer for the window's remainder.
			candidate := loc
			pending = &candidate
			if timer == nil {
				remaining := t.window - t.now().Sub(lastAt)
				timer = time.NewTimer(remaining)
				timerC = timer.C
			}

		case <-timerC:
			timer = nil
			timerC = nil
			if pending != nil {
				loc := *pending
				pending = nil
				if loc.DistanceTo(last) >= t.minMove {
					emit(loc)
				}
			}
		}
	}
}
