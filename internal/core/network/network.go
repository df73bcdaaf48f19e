// Package network is the transport boundary: best-effort, topic-addressed
// publish/subscribe with no ordering or delivery guarantees across peers.
// Everything above it (queueing, waits, request/response correlation) is
// built in internal/rmw.
package network

import "errors"

// ErrTransportClosed is returned by publish/subscribe after Close.
var ErrTransportClosed = errors.New("transport closed")

// Message is the transport envelope delivered to subscribers.
type Message struct {
	Topic   string
	Payload []byte
}

// subscribeBuffer is the per-subscriber channel depth. Delivery beyond it
// is dropped; the transport is best-effort by contract.
const subscribeBuffer = 64

// PubSub is the minimal interface the middleware consumes. Subscribe
// returns a delivery channel and a cancel func releasing the
// subscription; the channel is closed when the subscription ends.
type PubSub interface {
	Publish(topic string, payload []byte) error
	Subscribe(topic string) (<-chan Message, func(), error)
}
