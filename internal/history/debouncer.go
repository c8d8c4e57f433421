package history

import (
	"sort"
	"sync"
	"time"
)

type pendingCall struct {
	seq   uint64
	timer *time.Timer
	fn    func()
}

// Debouncer runs the last function scheduled under a key once the key has
// been quiet for its delay. Trailing edge only.
type Debouncer struct {
	mu      sync.Mutex
	seq     uint64
	pending map[string]*pendingCall
	stopped bool
}

// NewDebouncer creates an idle debouncer.
func NewDebouncer() *Debouncer {
	return &Debouncer{pending: make(map[string]*pendingCall)}
}

// Schedule arms fn under key, replacing and restarting anything pending for
// the same key. It does nothing after Stop.
func (d *Debouncer) Schedule(key string, delay time.Duration, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if p, ok := d.pending[key]; ok {
		p.timer.Stop()
	}

	d.seq++
	seq := d.seq
	p := &pendingCall{seq: seq, fn: fn}
	p.timer = time.AfterFunc(delay, func() { d.fire(key, seq) })
	d.pending[key] = p
}

func (d *Debouncer) fire(key string, seq uint64) {
	d.mu.Lock()
	p, ok := d.pending[key]
	if !ok || p.seq != seq || d.stopped {
		d.mu.Unlock()
		return
	}
	delete(d.pending, key)
	d.mu.Unlock()

	p.fn()
}

// Cancel drops whatever is pending under key.
func (d *Debouncer) Cancel(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if p, ok := d.pending[key]; ok {
		p.timer.Stop()
		delete(d.pending, key)
	}
}

// CancelAll drops everything pending.
func (d *Debouncer) CancelAll() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.drain()
}

func (d *Debouncer) drain() []*pendingCall {
	calls := make([]*pendingCall, 0, len(d.pending))
	for key, p := range d.pending {
		p.timer.Stop()
		calls = append(calls, p)
		delete(d.pending, key)
	}
	sort.Slice(calls, func(i, j int) bool { return calls[i].seq < calls[j].seq })
	return calls
}

// Flush runs every pending function now, in scheduling order.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	calls := d.drain()
	d.mu.Unlock()

	for _, p := range calls {
		p.fn()
	}
}

// Pending reports whether anything is armed under key.
func (d *Debouncer) Pending(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.pending[key]
	return ok
}

// Stop cancels everything and ignores later Schedule calls. No function
// runs after Stop returns.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	d.drain()
}
