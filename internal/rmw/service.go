package rmw

import (
	"fmt"
	"sync"

	"github.com/esteve/rmw-libp2p/internal/wire"
)

// Service is the responder half of a correlated RPC pair. It listens on
// the shared request topic and answers each request on the requester's
// private response topic, derived from the identity carried in the
// request header.
type Service struct {
	node     *Node
	name     string
	listener *Listener
	cancel   func()
	reqType  TypeSupport
	respType TypeSupport

	mu           sync.Mutex
	pending      map[RequestID]*Publisher
	responsePubs map[GID]*Publisher
	closed       bool
}

func (n *Node) CreateService(name string, reqType, respType TypeSupport, qos QoSProfile) (*Service, error) {
	if name == "" || reqType == nil || respType == nil {
		return nil, ErrInvalidArgument
	}
	listener, cancel, err := n.subscribeListener(requestTopicFor(name))
	if err != nil {
		return nil, err
	}
	s := &Service{
		node:         n,
		name:         name,
		listener:     listener,
		cancel:       cancel,
		reqType:      n.types.register(reqType),
		respType:     n.types.register(respType),
		pending:      make(map[RequestID]*Publisher),
		responsePubs: make(map[GID]*Publisher),
	}
	if err := n.addEndpoint(s); err != nil {
		cancel()
		return nil, err
	}
	return s, nil
}

func (s *Service) Name() string {
	return s.name
}

// Listener exposes the request queue for use in a WaitSet.
func (s *Service) Listener() *Listener {
	return s.listener
}

// TakeRequest pops the next queued request, returning the decoded payload
// and the correlation id to answer it with. The second return is false
// when the queue is empty. A response publisher for the requester is set
// up here so SendResponse only has to look it up; publishers are cached
// per requester identity, one topic per concurrently active client.
func (s *Service) TakeRequest() (any, RequestID, bool, error) {
	payload, ok := s.listener.TakeNextData()
	if !ok {
		return nil, RequestID{}, false, nil
	}
	msg, id, err := decodeFrame(payload, s.reqType)
	if err != nil {
		return nil, RequestID{}, false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, RequestID{}, false, ErrClosed
	}
	pub, ok := s.responsePubs[id.Writer]
	if !ok {
		pub = newPublisher(s.node, responseTopicFor(s.name, id.Writer), s.respType, DefaultQoS)
		s.responsePubs[id.Writer] = pub
	}
	s.pending[id] = pub
	return msg, id, true, nil
}

// SendResponse answers the request identified by id. The pending entry is
// single use: it is erased here, and a second call for the same id fails
// with ErrNotFound without publishing anything.
func (s *Service) SendResponse(id RequestID, resp any) error {
	if resp == nil {
		return ErrInvalidArgument
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	pub, ok := s.pending[id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("no pending request for %s seq %d: %w", id.Writer, id.Sequence, ErrNotFound)
	}
	delete(s.pending, id)
	s.mu.Unlock()

	w := wire.NewWriter()
	w.WriteBytes(id.Writer[:])
	w.WriteInt64(id.Sequence)
	if err := s.respType.Encode(resp, w); err != nil {
		return fmt.Errorf("encode %s: %w", s.respType.TypeName(), err)
	}
	return pub.publishRaw(w.Bytes())
}

// EvictResponsePublisher drops the cached response publisher for a
// requester identity, along with any still-pending requests from it.
// Callers that track client lifetimes use this to bound the cache.
func (s *Service) EvictResponsePublisher(gid GID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if pub, ok := s.responsePubs[gid]; ok {
		delete(s.responsePubs, gid)
		_ = pub.Close()
	}
	for id := range s.pending {
		if id.Writer == gid {
			delete(s.pending, id)
		}
	}
}

// Close releases the request subscription and every cached response
// publisher. Pending requests are dropped unanswered; the requester's
// wait simply times out, as with any lost best-effort message.
func (s *Service) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	pubs := make([]*Publisher, 0, len(s.responsePubs))
	for _, pub := range s.responsePubs {
		pubs = append(pubs, pub)
	}
	s.pending = make(map[RequestID]*Publisher)
	s.responsePubs = make(map[GID]*Publisher)
	s.mu.Unlock()

	s.cancel()
	for _, pub := range pubs {
		_ = pub.Close()
	}
	s.node.removeEndpoint(s)
	return nil
}
