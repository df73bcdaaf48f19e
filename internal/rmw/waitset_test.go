package rmw

import (
	"math/rand"
	"sync"
	"testing"
	"time"
)

func TestWaitReadyImmediatelyWithQueuedData(t *testing.T) {
	ws := NewWaitSet()
	l := NewListener()
	l.Push([]byte("x"))
	listeners := []*Listener{l}
	res, err := ws.Wait(listeners, nil, WaitForever)
	if err != nil {
		t.Fatalf("wait: %v", err)
	}
	if res != Ready {
		t.Fatalf("expected Ready, got %v", res)
	}
	if listeners[0] == nil {
		t.Fatal("listener with data must keep its slot")
	}
}

func TestWaitZeroTimeoutReturnsTimeoutFast(t *testing.T) {
	ws := NewWaitSet()
	l := NewListener()
	start := time.Now()
	res, err := ws.Wait([]*Listener{l}, nil, 0)
	if err != nil {
		t.Fatalf("wait: %v", err)
	}
	if res != Timeout {
		t.Fatalf("expected Timeout, got %v", res)
	}
	if elapsed := time.Since(start); elapsed > 10*time.Millisecond {
		t.Fatalf("zero-timeout wait took %v", elapsed)
	}
}

func TestWaitTimeoutElapses(t *testing.T) {
	ws := NewWaitSet()
	l := NewListener()
	start := time.Now()
	res, err := ws.Wait([]*Listener{l}, nil, 30*time.Millisecond)
	if err != nil {
		t.Fatalf("wait: %v", err)
	}
	if res != Timeout {
		t.Fatalf("expected Timeout, got %v", res)
	}
	if elapsed := time.Since(start); elapsed < 30*time.Millisecond {
		t.Fatalf("returned before the deadline: %v", elapsed)
	}
}

func TestWaitClearsEmptyListenerSlots(t *testing.T) {
	ws := NewWaitSet()
	withData := NewListener()
	withData.Push([]byte("x"))
	empty := NewListener()
	listeners := []*Listener{empty, withData}
	res, err := ws.Wait(listeners, nil, WaitForever)
	if err != nil || res != Ready {
		t.Fatalf("wait: %v %v", res, err)
	}
	if listeners[0] != nil {
		t.Fatal("empty listener slot should be cleared")
	}
	if listeners[1] != withData {
		t.Fatal("non-empty listener slot should be kept")
	}
}

func TestWaitWakesOnCrossGoroutineTrigger(t *testing.T) {
	ws := NewWaitSet()
	g := NewGuardCondition()
	delay := 20 * time.Millisecond
	go func() {
		time.Sleep(delay)
		g.Trigger()
	}()
	start := time.Now()
	res, err := ws.Wait(nil, []*GuardCondition{g}, WaitForever)
	if err != nil || res != Ready {
		t.Fatalf("wait: %v %v", res, err)
	}
	if elapsed := time.Since(start); elapsed > delay+100*time.Millisecond {
		t.Fatalf("wakeup took %v after a %v trigger delay", elapsed, delay)
	}
}

func TestWaitWakesOnCrossGoroutinePush(t *testing.T) {
	ws := NewWaitSet()
	l := NewListener()
	go func() {
		time.Sleep(10 * time.Millisecond)
		l.Push([]byte("x"))
	}()
	res, err := ws.Wait([]*Listener{l}, nil, time.Second)
	if err != nil || res != Ready {
		t.Fatalf("wait: %v %v", res, err)
	}
	if got, ok := l.TakeNextData(); !ok || string(got) != "x" {
		t.Fatalf("expected pushed payload, got %q (ok=%v)", got, ok)
	}
}

// A trigger strictly before the wait call must never be missed, whatever
// the interleaving of the triggering goroutine and the waiter.
func TestWaitLostWakeupFreedom(t *testing.T) {
	for i := 0; i < 500; i++ {
		ws := NewWaitSet()
		g := NewGuardCondition()
		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			if rand.Intn(2) == 0 {
				time.Sleep(time.Duration(rand.Intn(50)) * time.Microsecond)
			}
			g.Trigger()
		}()
		res, err := ws.Wait(nil, []*GuardCondition{g}, 2*time.Second)
		if err != nil {
			t.Fatalf("iteration %d: %v", i, err)
		}
		if res != Ready {
			t.Fatalf("iteration %d: trigger was lost, wait timed out", i)
		}
		wg.Wait()
	}
}

func TestWaitConcurrentCallRejected(t *testing.T) {
	ws := NewWaitSet()
	l := NewListener()
	started := make(chan struct{})
	done := make(chan struct{})
	go func() {
		close(started)
		_, _ = ws.Wait([]*Listener{l}, nil, 200*time.Millisecond)
		close(done)
	}()
	<-started
	time.Sleep(10 * time.Millisecond)
	if _, err := ws.Wait([]*Listener{NewListener()}, nil, 0); err != ErrConcurrentWait {
		t.Fatalf("expected ErrConcurrentWait, got %v", err)
	}
	<-done
}

func TestWaitNilWaitSet(t *testing.T) {
	var ws *WaitSet
	if _, err := ws.Wait(nil, nil, 0); err != ErrInvalidArgument {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestWaitReusableAcrossCalls(t *testing.T) {
	ws := NewWaitSet()
	g := NewGuardCondition()
	g.Trigger()
	if res, err := ws.Wait(nil, []*GuardCondition{g}, 0); err != nil || res != Ready {
		t.Fatalf("first wait: %v %v", res, err)
	}
	if !g.TakeAndReset() {
		t.Fatal("expected trigger to still be set after wait")
	}
	// Second call on the same wait set must not see a stale signal as data.
	if res, err := ws.Wait(nil, []*GuardCondition{g}, 0); err != nil || res != Timeout {
		t.Fatalf("second wait: %v %v", res, err)
	}
}
