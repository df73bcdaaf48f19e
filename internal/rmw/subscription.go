package rmw

import (
	"fmt"
	"sync"

	"github.com/esteve/rmw-libp2p/internal/wire"
)

// Subscription is a typed read handle bound to one topic. A pump
// goroutine moves payloads from the transport's delivery channel into the
// subscription's Listener; the pump only enqueues and never calls back
// into a wait, so delivery stays fast and deadlock-free.
type Subscription struct {
	node     *Node
	topic    string
	gid      GID
	qos      QoSProfile
	ts       TypeSupport
	listener *Listener
	cancel   func()

	closeOnce sync.Once
	closed    chan struct{}
}

func (n *Node) CreateSubscription(topic string, ts TypeSupport, qos QoSProfile) (*Subscription, error) {
	if topic == "" || ts == nil {
		return nil, ErrInvalidArgument
	}
	listener, cancel, err := n.subscribeListener(topic)
	if err != nil {
		return nil, err
	}
	s := &Subscription{
		node:     n,
		topic:    topic,
		gid:      NewGID(),
		qos:      qos.effective(),
		ts:       n.types.register(ts),
		listener: listener,
		cancel:   cancel,
		closed:   make(chan struct{}),
	}
	if err := n.addEndpoint(s); err != nil {
		cancel()
		return nil, err
	}
	return s, nil
}

// subscribeListener joins topic on the transport and returns a Listener
// fed by a pump goroutine, plus the cancel releasing the transport
// subscription. The pump exits when the transport closes the channel.
func (n *Node) subscribeListener(topic string) (*Listener, func(), error) {
	ch, cancel, err := n.transport.Subscribe(topic)
	if err != nil {
		return nil, nil, fmt.Errorf("subscribe %q: %w", topic, err)
	}
	listener := NewListener()
	go func() {
		for msg := range ch {
			listener.Push(msg.Payload)
		}
	}()
	return listener, cancel, nil
}

func (s *Subscription) GID() GID {
	return s.gid
}

func (s *Subscription) Topic() string {
	return s.topic
}

func (s *Subscription) QoS() QoSProfile {
	return s.qos
}

// Listener exposes the inbound queue for use in a WaitSet.
func (s *Subscription) Listener() *Listener {
	return s.listener
}

// TakeNext pops and decodes the next queued message. The second return
// is false when nothing is queued.
func (s *Subscription) TakeNext() (any, bool, error) {
	select {
	case <-s.closed:
		return nil, false, ErrClosed
	default:
	}
	payload, ok := s.listener.TakeNextData()
	if !ok {
		return nil, false, nil
	}
	msg, err := s.ts.Decode(wire.NewReader(payload))
	if err != nil {
		return nil, false, fmt.Errorf("decode %s: %w", s.ts.TypeName(), err)
	}
	return msg, true, nil
}

// Close releases the transport subscription. A second Close is a no-op.
func (s *Subscription) Close() error {
	s.closeOnce.Do(func() {
		close(s.closed)
		s.cancel()
		s.node.removeEndpoint(s)
	})
	return nil
}
