// Package rmw synthesizes publish, subscribe, request and respond with a
// synchronous blocking-wait programming model on top of a best-effort
// topic pub/sub transport. The transport offers one-way topic delivery
// only; everything else (queueing, multiplexed waits, request/response
// correlation) is built here.
package rmw

import (
	"sync"

	"github.com/esteve/rmw-libp2p/internal/core/network"
)

type endpoint interface {
	Close() error
}

// Node is the root handle endpoints hang off. It holds the transport
// reference, its own type registry, and the set of live endpoints so
// Close can release everything that is still open. The node does not own
// the transport; callers may share one transport across nodes.
type Node struct {
	name      string
	transport network.PubSub
	types     *typeRegistry

	mu        sync.Mutex
	endpoints map[endpoint]struct{}
	closed    bool
}

func NewNode(name string, transport network.PubSub) (*Node, error) {
	if name == "" || transport == nil {
		return nil, ErrInvalidArgument
	}
	return &Node{
		name:      name,
		transport: transport,
		types:     newTypeRegistry(),
		endpoints: make(map[endpoint]struct{}),
	}, nil
}

func (n *Node) Name() string {
	return n.name
}

// RegisteredType returns the TypeSupport registered under name, or
// ErrNotFound if no endpoint has registered it yet.
func (n *Node) RegisteredType(name string) (TypeSupport, error) {
	return n.types.lookup(name)
}

func (n *Node) addEndpoint(e endpoint) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return ErrClosed
	}
	n.endpoints[e] = struct{}{}
	return nil
}

func (n *Node) removeEndpoint(e endpoint) {
	n.mu.Lock()
	delete(n.endpoints, e)
	n.mu.Unlock()
}

// Close tears down every endpoint still open on the node. Endpoints
// closed individually beforehand are skipped; a second Close is a no-op.
func (n *Node) Close() error {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return nil
	}
	n.closed = true
	open := make([]endpoint, 0, len(n.endpoints))
	for e := range n.endpoints {
		open = append(open, e)
	}
	n.endpoints = make(map[endpoint]struct{})
	n.mu.Unlock()

	var firstErr error
	for _, e := range open {
		if err := e.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
