package rmw

// waitContext is the notification handle a WaitSet attaches to its
// listeners and guard conditions for the duration of one Wait call. It
// stands in for an externally owned mutex/condition pair: the capacity-1
// channel keeps a pending signal until it is drained, so a notification
// that races with the readiness check is never lost.
type waitContext struct {
	ready chan struct{}
}

func newWaitContext() *waitContext {
	return &waitContext{ready: make(chan struct{}, 1)}
}

// notify wakes the waiter if one is blocked, and otherwise leaves the
// signal pending. Never blocks, so it is safe to call from delivery
// goroutines while holding a listener's internal lock.
func (w *waitContext) notify() {
	select {
	case w.ready <- struct{}{}:
	default:
	}
}

// drain discards a stale signal left over from a previous Wait call.
func (w *waitContext) drain() {
	select {
	case <-w.ready:
	default:
	}
}
