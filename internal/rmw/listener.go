package rmw

import "sync"

// Listener is the per-endpoint inbound queue. The transport pushes raw
// payloads on its own goroutine; application code drains them with
// TakeNextData, which never blocks. While the owning endpoint takes part
// in a WaitSet call, the wait set's context is attached so Push can wake
// the blocked waiter.
type Listener struct {
	mu    sync.Mutex
	queue [][]byte
	wait  *waitContext
}

func NewListener() *Listener {
	return &Listener{}
}

// Push appends payload at the tail of the queue and notifies the attached
// wait context, if any. Called from transport delivery goroutines.
func (l *Listener) Push(payload []byte) {
	l.mu.Lock()
	l.queue = append(l.queue, payload)
	w := l.wait
	l.mu.Unlock()
	if w != nil {
		w.notify()
	}
}

// HasData reports whether at least one payload is queued. Non-blocking.
func (l *Listener) HasData() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue) > 0
}

// TakeNextData pops the front of the queue. Returns false when the queue
// is empty; never blocks.
func (l *Listener) TakeNextData() ([]byte, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.queue) == 0 {
		return nil, false
	}
	front := l.queue[0]
	l.queue[0] = nil
	l.queue = l.queue[1:]
	return front, true
}

// Len returns the number of queued payloads.
func (l *Listener) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

// attachCondition swaps in the wait context used by Push. Repeated calls
// replace the previous context; at most one is attached at a time.
func (l *Listener) attachCondition(w *waitContext) {
	l.mu.Lock()
	l.wait = w
	l.mu.Unlock()
}

// detachCondition clears the attached wait context. A no-op when nothing
// is attached.
func (l *Listener) detachCondition() {
	l.mu.Lock()
	l.wait = nil
	l.mu.Unlock()
}
