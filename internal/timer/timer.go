// Package timer runs the background ticking process. It counts down (and
// past zero when asked to) on its own goroutine and reports each tick on a
// channel, so ticking is independent of whatever the UI is doing.
package timer

import (
	"sync"
	"time"
)

// Signal is one discrete tick from the background timer. ZeroCrossed is
// set exactly once, on the tick where the remaining time reaches zero.
// Countdown identifies the Start call that produced the tick; ticks from
// a replaced countdown can still sit buffered in the channel, and the
// consumer drops them by comparing this id.
type Signal struct {
	Remaining   int // seconds, negative once past zero
	ZeroCrossed bool
	Countdown   uint64
	At          time.Time
}

// Timer is the background ticker. Start arms it, Stop cancels all future
// ticks. Only one countdown runs at a time; starting again replaces it.
type Timer struct {
	mu        sync.Mutex
	interval  time.Duration
	signals   chan Signal
	cancel    chan struct{}
	running   bool
	countdown uint64
}

func New() *Timer {
	return newWithInterval(time.Second)
}

func newWithInterval(interval time.Duration) *Timer {
	return &Timer{
		interval: interval,
		signals:  make(chan Signal, 16),
	}
}

// Signals is the channel the engine consumes ticks from.
func (t *Timer) Signals() <-chan Signal {
	return t.signals
}

// Running reports whether a countdown is currently armed.
func (t *Timer) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

// Start arms the timer with the given remaining seconds and returns the
// new countdown's id. When pastZero is set the timer keeps ticking into
// negative territory until stopped; otherwise it stops itself after the
// zero-crossing tick.
func (t *Timer) Start(remaining int, pastZero bool) uint64 {
	t.mu.Lock()
	if t.running {
		close(t.cancel)
	}
	cancel := make(chan struct{})
	t.cancel = cancel
	t.running = true
	t.countdown++
	id := t.countdown
	t.mu.Unlock()

	go t.run(remaining, pastZero, id, cancel)
	return id
}

// Stop cancels future ticks. Pending signals already in the channel are
// left for the consumer to drain.
func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.running {
		return
	}
	close(t.cancel)
	t.running = false
}

func (t *Timer) run(remaining int, pastZero bool, id uint64, cancel chan struct{}) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			remaining--
			sig := Signal{Remaining: remaining, At: now, ZeroCrossed: remaining == 0, Countdown: id}
			if sig.ZeroCrossed {
				// Zero-crossings must not be dropped; the engine's
				// completion path depends on seeing this signal.
				select {
				case t.signals <- sig:
				case <-cancel:
					return
				}
				if !pastZero {
					t.mu.Lock()
					if t.cancel == cancel {
						t.running = false
					}
					t.mu.Unlock()
					return
				}
				continue
			}
			// Ordinary ticks are best-effort: a stalled consumer loses
			// display updates, not state.
			select {
			case t.signals <- sig:
			default:
			}

		case <-cancel:
			return
		}
	}
}
