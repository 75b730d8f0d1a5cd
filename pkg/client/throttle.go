package client

import (
	"sync"
	"time"
)

// DefaultCursorInterval is the cursor send ceiling, roughly one frame at
// 60Hz.
const DefaultCursorInterval = 16 * time.Millisecond

// cursorThrottle is a trailing-edge throttle: the first sample in a window
// arms a timer, later samples only overwrite the pending values, and when
// the window elapses the LAST sample is the one that fires. A burst of N
// samples therefore produces exactly one send, and the final position is
// never dropped.
type cursorThrottle struct {
	interval time.Duration
	emit     func(x, y float64)

	mu      sync.Mutex
	timer   *time.Timer
	armed   bool
	stopped bool
	lastX   float64
	lastY   float64
}

func newCursorThrottle(interval time.Duration, emit func(x, y float64)) *cursorThrottle {
	if interval <= 0 {
		interval = DefaultCursorInterval
	}
	return &cursorThrottle{interval: interval, emit: emit}
}

func (t *cursorThrottle) sample(x, y float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return
	}
	t.lastX, t.lastY = x, y
	if t.armed {
		return
	}
	t.armed = true
	t.timer = time.AfterFunc(t.interval, t.fire)
}

// fire emits while holding the lock so that stop() can guarantee no sample
// fires after it returns. Callers of sample must therefore never hold their
// own lock across the call.
func (t *cursorThrottle) fire() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped || !t.armed {
		return
	}
	t.armed = false
	t.emit(t.lastX, t.lastY)
}

// stop cancels any pending sample. After stop returns, emit will not be
// called again: an in-flight fire either completed already or sees stopped
// and bails.
func (t *cursorThrottle) stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
	t.armed = false
	if t.timer != nil {
		t.timer.Stop()
	}
}
