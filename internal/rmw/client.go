package rmw

import (
	"fmt"
	"sync"

	"github.com/esteve/rmw-libp2p/internal/wire"
)

// correlationHeaderSize is the fixed prefix of every RPC frame: 16 bytes
// of requester identity followed by an int64 sequence number.
const correlationHeaderSize = 16 + 8

func requestTopicFor(service string) string {
	return service + "/request"
}

// responseTopicFor derives a client's private response topic from its
// identity. Service side and client side must agree on this derivation;
// it is the only addressing the transport offers.
func responseTopicFor(service string, gid GID) string {
	return service + "/response/" + gid.String()
}

// Client is the requester half of a correlated RPC pair. It publishes on
// the shared request topic and listens on a private response topic named
// after its own identity.
type Client struct {
	node        *Node
	serviceName string
	requestPub  *Publisher
	listener    *Listener
	cancel      func()
	reqType     TypeSupport
	respType    TypeSupport

	closeOnce sync.Once
	closed    chan struct{}
}

func (n *Node) CreateClient(serviceName string, reqType, respType TypeSupport, qos QoSProfile) (*Client, error) {
	if serviceName == "" || reqType == nil || respType == nil {
		return nil, ErrInvalidArgument
	}
	requestPub := newPublisher(n, requestTopicFor(serviceName), n.types.register(reqType), qos)
	listener, cancel, err := n.subscribeListener(responseTopicFor(serviceName, requestPub.GID()))
	if err != nil {
		return nil, err
	}
	c := &Client{
		node:        n,
		serviceName: serviceName,
		requestPub:  requestPub,
		listener:    listener,
		cancel:      cancel,
		reqType:     requestPub.ts,
		respType:    n.types.register(respType),
		closed:      make(chan struct{}),
	}
	if err := n.addEndpoint(c); err != nil {
		cancel()
		return nil, err
	}
	return c, nil
}

// GID is the client's identity: the identity of its request publisher,
// which is what the service sees in every request header.
func (c *Client) GID() GID {
	return c.requestPub.GID()
}

func (c *Client) ServiceName() string {
	return c.serviceName
}

// Listener exposes the response queue for use in a WaitSet.
func (c *Client) Listener() *Listener {
	return c.listener
}

// SendRequest frames req with the correlation header and publishes it on
// the shared request topic. The returned sequence number is what the
// caller later matches a TakeResponse header against; the transport
// itself provides no request/response linkage.
func (c *Client) SendRequest(req any) (int64, error) {
	select {
	case <-c.closed:
		return 0, ErrClosed
	default:
	}
	if req == nil {
		return 0, ErrInvalidArgument
	}
	gid := c.requestPub.GID()
	seq := c.requestPub.nextSequence()
	w := wire.NewWriter()
	w.WriteBytes(gid[:])
	w.WriteInt64(seq)
	if err := c.reqType.Encode(req, w); err != nil {
		return 0, fmt.Errorf("encode %s: %w", c.reqType.TypeName(), err)
	}
	if err := c.requestPub.publishRaw(w.Bytes()); err != nil {
		return 0, err
	}
	return seq, nil
}

// TakeResponse pops the next queued response, returning the decoded
// message and its correlation id. The second return is false when the
// queue is empty. Matching the id's sequence number against the one
// SendRequest returned is the caller's responsibility.
func (c *Client) TakeResponse() (any, RequestID, bool, error) {
	select {
	case <-c.closed:
		return nil, RequestID{}, false, ErrClosed
	default:
	}
	payload, ok := c.listener.TakeNextData()
	if !ok {
		return nil, RequestID{}, false, nil
	}
	msg, id, err := decodeFrame(payload, c.respType)
	if err != nil {
		return nil, RequestID{}, false, err
	}
	return msg, id, true, nil
}

// ServerIsAvailable would need a discovery protocol the gossip transport
// does not provide; it returns ErrUnsupported unconditionally.
func (c *Client) ServerIsAvailable() (bool, error) {
	return false, ErrUnsupported
}

// Close releases the response subscription and the request publisher.
// A second Close is a no-op.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		close(c.closed)
		c.cancel()
		_ = c.requestPub.Close()
		c.node.removeEndpoint(c)
	})
	return nil
}

// decodeFrame splits an RPC frame into its correlation id and decoded
// payload.
func decodeFrame(payload []byte, ts TypeSupport) (any, RequestID, error) {
	if len(payload) < correlationHeaderSize {
		return nil, RequestID{}, fmt.Errorf("frame of %d bytes shorter than correlation header: %w", len(payload), wire.ErrUnderrun)
	}
	r := wire.NewReader(payload)
	gidBytes, err := r.ReadFixed(16)
	if err != nil {
		return nil, RequestID{}, fmt.Errorf("read identity: %w", err)
	}
	seq, err := r.ReadInt64()
	if err != nil {
		return nil, RequestID{}, fmt.Errorf("read sequence: %w", err)
	}
	var id RequestID
	copy(id.Writer[:], gidBytes)
	id.Sequence = seq
	msg, err := ts.Decode(r)
	if err != nil {
		return nil, RequestID{}, fmt.Errorf("decode %s: %w", ts.TypeName(), err)
	}
	return msg, id, nil
}
