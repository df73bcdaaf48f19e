package rmw

import (
	"errors"
	"testing"
	"time"

	"github.com/esteve/rmw-libp2p/internal/core/network"
)

func TestNewNodeValidation(t *testing.T) {
	if _, err := NewNode("", network.NewMemoryPubSub()); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("empty name: expected ErrInvalidArgument, got %v", err)
	}
	if _, err := NewNode("node", nil); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("nil transport: expected ErrInvalidArgument, got %v", err)
	}
	n, err := NewNode("node", network.NewMemoryPubSub())
	if err != nil {
		t.Fatalf("new node: %v", err)
	}
	if n.Name() != "node" {
		t.Fatalf("expected name %q, got %q", "node", n.Name())
	}
}

func TestTypeRegisteredOncePerNode(t *testing.T) {
	n, _ := NewNode("node", network.NewMemoryPubSub())
	// Distinct instances with the same type name; pointer identity tells
	// whether the registry deduplicated them.
	first := &int32Type{name: "test_msgs/Int32"}
	second := &int32Type{name: "test_msgs/Int32"}

	if _, err := n.RegisteredType("test_msgs/Int32"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound before registration, got %v", err)
	}

	p1, err := n.CreatePublisher("chatter", first, DefaultQoS)
	if err != nil {
		t.Fatalf("create publisher: %v", err)
	}
	p2, err := n.CreatePublisher("chatter2", second, DefaultQoS)
	if err != nil {
		t.Fatalf("create publisher 2: %v", err)
	}
	if p1.ts != p2.ts {
		t.Fatal("same type name must share one registration per node")
	}
	reg, err := n.RegisteredType("test_msgs/Int32")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if reg != p1.ts {
		t.Fatal("lookup must return the registered instance")
	}
}

func TestEndpointIdentitiesAreUnique(t *testing.T) {
	n, _ := NewNode("node", network.NewMemoryPubSub())
	seen := make(map[GID]struct{})
	for i := 0; i < 16; i++ {
		p, err := n.CreatePublisher("chatter", int32Type{name: "test_msgs/Int32"}, DefaultQoS)
		if err != nil {
			t.Fatalf("create publisher: %v", err)
		}
		if _, dup := seen[p.GID()]; dup {
			t.Fatal("duplicate endpoint identity")
		}
		seen[p.GID()] = struct{}{}
	}
}

func TestQoSDegradedToBestEffort(t *testing.T) {
	n, _ := NewNode("node", network.NewMemoryPubSub())
	requested := QoSProfile{
		History:     HistoryKeepAll,
		Depth:       100,
		Reliability: ReliabilityReliable,
		Durability:  DurabilityTransientLocal,
	}
	p, err := n.CreatePublisher("chatter", int32Type{name: "test_msgs/Int32"}, requested)
	if err != nil {
		t.Fatalf("create publisher: %v", err)
	}
	got := p.QoS()
	if got.History != HistoryKeepLast || got.Reliability != ReliabilityBestEffort || got.Durability != DurabilityVolatile {
		t.Fatalf("expected degraded profile, got %+v", got)
	}
	if got.Depth != 100 {
		t.Fatalf("depth should be kept, got %d", got.Depth)
	}
}

func TestPublisherCloseThenPublishFails(t *testing.T) {
	n, _ := NewNode("node", network.NewMemoryPubSub())
	p, err := n.CreatePublisher("chatter", int32Type{name: "test_msgs/Int32"}, DefaultQoS)
	if err != nil {
		t.Fatalf("create publisher: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if err := p.Publish(int32(1)); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestNodeCloseTearsDownEndpoints(t *testing.T) {
	n, _ := NewNode("node", network.NewMemoryPubSub())
	p, err := n.CreatePublisher("chatter", int32Type{name: "test_msgs/Int32"}, DefaultQoS)
	if err != nil {
		t.Fatalf("create publisher: %v", err)
	}
	s, err := n.CreateSubscription("chatter", int32Type{name: "test_msgs/Int32"}, DefaultQoS)
	if err != nil {
		t.Fatalf("create subscription: %v", err)
	}
	if err := n.Close(); err != nil {
		t.Fatalf("close node: %v", err)
	}
	if err := p.Publish(int32(1)); !errors.Is(err, ErrClosed) {
		t.Fatalf("publish after node close: expected ErrClosed, got %v", err)
	}
	if _, _, err := s.TakeNext(); !errors.Is(err, ErrClosed) {
		t.Fatalf("take after node close: expected ErrClosed, got %v", err)
	}
	if _, err := n.CreatePublisher("chatter", int32Type{name: "test_msgs/Int32"}, DefaultQoS); !errors.Is(err, ErrClosed) {
		t.Fatalf("create after node close: expected ErrClosed, got %v", err)
	}
	if err := n.Close(); err != nil {
		t.Fatalf("second node close: %v", err)
	}
}

func TestNodeCreateGuardCondition(t *testing.T) {
	n, _ := NewNode("node", network.NewMemoryPubSub())
	g, err := n.CreateGuardCondition()
	if err != nil {
		t.Fatalf("create guard condition: %v", err)
	}
	g.Trigger()
	res, err := NewWaitSet().Wait(nil, []*GuardCondition{g}, 0)
	if err != nil {
		t.Fatalf("wait: %v", err)
	}
	if res != Ready {
		t.Fatal("triggered guard condition not ready")
	}
	if err := g.Close(); err != nil {
		t.Fatalf("close guard condition: %v", err)
	}
	n.mu.Lock()
	live := len(n.endpoints)
	n.mu.Unlock()
	if live != 0 {
		t.Fatalf("guard condition still registered after close: %d endpoints", live)
	}
	if _, err := n.CreateGuardCondition(); err != nil {
		t.Fatalf("second create: %v", err)
	}
	if err := n.Close(); err != nil {
		t.Fatalf("close node: %v", err)
	}
	if _, err := n.CreateGuardCondition(); !errors.Is(err, ErrClosed) {
		t.Fatalf("create after node close: expected ErrClosed, got %v", err)
	}
	if err := g.Close(); err != nil {
		t.Fatalf("second guard close: %v", err)
	}
}

func TestPublishSubscribeRoundTrip(t *testing.T) {
	transport := network.NewMemoryPubSub()
	n, _ := NewNode("node", transport)
	pub, err := n.CreatePublisher("sensors", sensorReadingType{}, DefaultQoS)
	if err != nil {
		t.Fatalf("create publisher: %v", err)
	}
	sub, err := n.CreateSubscription("sensors", sensorReadingType{}, DefaultQoS)
	if err != nil {
		t.Fatalf("create subscription: %v", err)
	}

	sent := sensorReading{Label: "temp", Value: 21.5, Stale: false, Sample: 7}
	if err := pub.Publish(sent); err != nil {
		t.Fatalf("publish: %v", err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		msg, ok, err := sub.TakeNext()
		if err != nil {
			t.Fatalf("take: %v", err)
		}
		if ok {
			got := msg.(sensorReading)
			if got != sent {
				t.Fatalf("expected %+v, got %+v", sent, got)
			}
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("message never arrived")
}

func TestPublishSequenceAdvances(t *testing.T) {
	n, _ := NewNode("node", network.NewMemoryPubSub())
	p, err := n.CreatePublisher("chatter", int32Type{name: "test_msgs/Int32"}, DefaultQoS)
	if err != nil {
		t.Fatalf("create publisher: %v", err)
	}
	if p.SequenceNumber() != 0 {
		t.Fatalf("expected initial sequence 0, got %d", p.SequenceNumber())
	}
	for i := 1; i <= 3; i++ {
		if err := p.Publish(int32(i)); err != nil {
			t.Fatalf("publish %d: %v", i, err)
		}
		if got := p.SequenceNumber(); got != int64(i) {
			t.Fatalf("after %d publishes expected sequence %d, got %d", i, i, got)
		}
	}
}
