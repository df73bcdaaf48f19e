package rmw

import (
	"fmt"
	"sync/atomic"

	"github.com/esteve/rmw-libp2p/internal/wire"
)

// Publisher is a typed write handle bound to one topic. Each publisher
// carries its own identity and a monotonically increasing sequence
// counter; both are stable for the publisher's lifetime.
type Publisher struct {
	node   *Node
	topic  string
	gid    GID
	qos    QoSProfile
	ts     TypeSupport
	seq    atomic.Int64
	closed atomic.Bool
}

// CreatePublisher registers ts with the node's type registry (reusing an
// earlier registration for the same type name) and returns a publisher
// on topic.
func (n *Node) CreatePublisher(topic string, ts TypeSupport, qos QoSProfile) (*Publisher, error) {
	if topic == "" || ts == nil {
		return nil, ErrInvalidArgument
	}
	p := newPublisher(n, topic, n.types.register(ts), qos)
	if err := n.addEndpoint(p); err != nil {
		return nil, err
	}
	return p, nil
}

func newPublisher(n *Node, topic string, ts TypeSupport, qos QoSProfile) *Publisher {
	return &Publisher{
		node:  n,
		topic: topic,
		gid:   NewGID(),
		qos:   qos.effective(),
		ts:    ts,
	}
}

func (p *Publisher) GID() GID {
	return p.gid
}

func (p *Publisher) Topic() string {
	return p.topic
}

// QoS returns the profile actually honored, which may be a degraded form
// of what was requested.
func (p *Publisher) QoS() QoSProfile {
	return p.qos
}

// SequenceNumber returns the sequence number the next publish will use.
func (p *Publisher) SequenceNumber() int64 {
	return p.seq.Load()
}

// nextSequence claims the sequence number for one publish.
func (p *Publisher) nextSequence() int64 {
	return p.seq.Add(1) - 1
}

// Publish encodes msg in codec field order and sends it on the topic.
// Plain messages carry no header; only correlated RPC frames do.
func (p *Publisher) Publish(msg any) error {
	if p.closed.Load() {
		return ErrClosed
	}
	if msg == nil {
		return ErrInvalidArgument
	}
	w := wire.NewWriter()
	if err := p.ts.Encode(msg, w); err != nil {
		return fmt.Errorf("encode %s: %w", p.ts.TypeName(), err)
	}
	p.nextSequence()
	return p.publishRaw(w.Bytes())
}

// publishRaw sends already-encoded bytes. Used by the request/response
// layer, which frames its own header.
func (p *Publisher) publishRaw(payload []byte) error {
	if p.closed.Load() {
		return ErrClosed
	}
	if err := p.node.transport.Publish(p.topic, payload); err != nil {
		return fmt.Errorf("publish on %q: %w", p.topic, err)
	}
	return nil
}

// Close releases the publisher. Publishing afterwards fails with
// ErrClosed; a second Close is a no-op.
func (p *Publisher) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	p.node.removeEndpoint(p)
	return nil
}
