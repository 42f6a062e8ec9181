// Package syncer writes aggregates to the remote store in the background.
package syncer

import (
	"log/slog"
	"sync"
	"time"

	"github.com/mmynk/patungan/internal/metrics"
)

// Debouncer delays work per key until the key has been quiet for the window.
//
// Each key has at most one pending write; scheduling again replaces the
// pending closure and restarts the timer. Writes for the same key never
// overlap and run in schedule order, so the last scheduled write wins. A write
// that has started is never cancelled.
type Debouncer struct {
	window time.Duration

	mu      sync.Mutex
	pending map[string]*entry
	running map[string]*keyLock
	closed  bool
	wg      sync.WaitGroup
}

type entry struct {
	timer *time.Timer
	fn    func()
}

// keyLock serialises work for one key. users counts holders and waiters; the
// lock is dropped from the map when it reaches zero.
type keyLock struct {
	mu    sync.Mutex
	users int
}

// NewDebouncer creates a debouncer with the given quiet window.
func NewDebouncer(window time.Duration) *Debouncer {
	return &Debouncer{
		window:  window,
		pending: make(map[string]*entry),
		running: make(map[string]*keyLock),
	}
}

// Schedule arranges for fn to run once key has been quiet for the window.
// It reports false after Close.
func (d *Debouncer) Schedule(key string, fn func()) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return false
	}
	if e, ok := d.pending[key]; ok {
		if e.timer.Stop() {
			metrics.SyncCoalescedTotal.Inc()
			d.wg.Done()
		}
		delete(d.pending, key)
		metrics.SyncPending.Dec()
	}

	e := &entry{fn: fn}
	d.wg.Add(1)
	e.timer = time.AfterFunc(d.window, func() {
		defer d.wg.Done()
		d.fire(key, e)
	})
	d.pending[key] = e
	metrics.SyncPending.Inc()
	return true
}

// fire runs e if it is still the pending entry for key.
func (d *Debouncer) fire(key string, e *entry) {
	d.mu.Lock()
	if d.pending[key] != e {
		d.mu.Unlock()
		return
	}
	delete(d.pending, key)
	metrics.SyncPending.Dec()
	lock := d.acquire(key)
	d.mu.Unlock()

	d.run(key, lock, e.fn)
}

// acquire registers a user of the lock for key. d.mu must be held.
func (d *Debouncer) acquire(key string) *keyLock {
	l, ok := d.running[key]
	if !ok {
		l = &keyLock{}
		d.running[key] = l
	}
	l.users++
	return l
}

// run executes fn under the key's lock and releases the caller's claim on it.
func (d *Debouncer) run(key string, l *keyLock, fn func()) {
	l.mu.Lock()
	fn()
	l.mu.Unlock()

	d.mu.Lock()
	l.users--
	if l.users == 0 {
		delete(d.running, key)
	}
	d.mu.Unlock()
}

// Cancel drops the pending write for key, if any. It reports whether a write
// was dropped.
func (d *Debouncer) Cancel(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	e, ok := d.pending[key]
	if !ok {
		return false
	}
	delete(d.pending, key)
	metrics.SyncPending.Dec()
	if e.timer.Stop() {
		d.wg.Done()
	}
	return true
}

// CancelAndRun drops the pending write for key and then runs fn once any
// write already in flight for key has finished. Writes scheduled later run
// after fn.
func (d *Debouncer) CancelAndRun(key string, fn func()) {
	d.mu.Lock()
	if e, ok := d.pending[key]; ok {
		delete(d.pending, key)
		metrics.SyncPending.Dec()
		if e.timer.Stop() {
			d.wg.Done()
		}
	}
	lock := d.acquire(key)
	d.mu.Unlock()

	d.run(key, lock, fn)
}

// Pending reports whether a write is waiting for key.
func (d *Debouncer) Pending(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.pending[key]
	return ok
}

// Flush runs every pending write now, in the calling goroutine, and waits
// for writes already in flight.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	type job struct {
		key  string
		fn   func()
		lock *keyLock
	}
	var jobs []job
	for key, e := range d.pending {
		if e.timer.Stop() {
			d.wg.Done()
		}
		jobs = append(jobs, job{key: key, fn: e.fn, lock: d.acquire(key)})
		delete(d.pending, key)
		metrics.SyncPending.Dec()
	}
	d.mu.Unlock()

	if len(jobs) > 0 {
		slog.Debug("Flushing pending writes", "count", len(jobs))
	}
	for _, j := range jobs {
		d.run(j.key, j.lock, j.fn)
	}
	d.wg.Wait()
}

// Close flushes pending writes and rejects further scheduling.
func (d *Debouncer) Close() {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	d.Flush()
}
