package rmw

import (
	"sync/atomic"
	"time"
)

// WaitResult reports how a Wait call ended.
type WaitResult int

const (
	// Ready means at least one listener has data or one guard condition
	// has triggered.
	Ready WaitResult = iota
	// Timeout means the deadline elapsed with nothing ready.
	Timeout
)

// WaitForever blocks a Wait call until something becomes ready.
const WaitForever time.Duration = -1

// WaitSet multiplexes one blocking wait across any number of listeners
// and guard conditions. A single WaitSet supports one Wait call at a
// time; a concurrent call is rejected with ErrConcurrentWait.
type WaitSet struct {
	ctx     *waitContext
	waiting atomic.Bool
}

func NewWaitSet() *WaitSet {
	return &WaitSet{ctx: newWaitContext()}
}

// Wait blocks until a listed listener has data, a listed guard condition
// has triggered, or timeout elapses. A zero timeout polls without
// blocking; WaitForever (or any negative timeout) blocks indefinitely.
//
// On return, entries in listeners whose listener still has no data are
// set to nil so the caller can tell which handles are worth draining;
// non-nil entries have data for a subsequent TakeNextData. Nil entries
// in the input slices are skipped.
func (ws *WaitSet) Wait(listeners []*Listener, guards []*GuardCondition, timeout time.Duration) (WaitResult, error) {
	if ws == nil {
		return Timeout, ErrInvalidArgument
	}
	if !ws.waiting.CompareAndSwap(false, true) {
		return Timeout, ErrConcurrentWait
	}
	defer ws.waiting.Store(false)

	for _, l := range listeners {
		if l != nil {
			l.attachCondition(ws.ctx)
		}
	}
	for _, g := range guards {
		if g != nil {
			g.attachCondition(ws.ctx)
		}
	}
	// Detach on every exit path. Detaching takes each primitive's own
	// lock only, never the wait context, so it cannot deadlock against a
	// deliverer notifying concurrently.
	defer func() {
		for _, g := range guards {
			if g != nil {
				g.detachCondition()
			}
		}
		for i, l := range listeners {
			if l == nil {
				continue
			}
			l.detachCondition()
			if !l.HasData() {
				listeners[i] = nil
			}
		}
	}()

	// A signal left over from an earlier call would cause one spurious
	// wake; drop it before the first readiness check. Anything delivered
	// after the drain re-arms the channel, so the check-then-block window
	// cannot lose a wakeup.
	ws.ctx.drain()

	if checkReady(listeners, guards) {
		return Ready, nil
	}
	if timeout == 0 {
		return Timeout, nil
	}
	if timeout < 0 {
		for {
			<-ws.ctx.ready
			if checkReady(listeners, guards) {
				return Ready, nil
			}
		}
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	for {
		select {
		case <-ws.ctx.ready:
			if checkReady(listeners, guards) {
				return Ready, nil
			}
		case <-timer.C:
			return Timeout, nil
		}
	}
}

func checkReady(listeners []*Listener, guards []*GuardCondition) bool {
	for _, l := range listeners {
		if l != nil && l.HasData() {
			return true
		}
	}
	for _, g := range guards {
		if g != nil && g.HasTriggered() {
			return true
		}
	}
	return false
}
