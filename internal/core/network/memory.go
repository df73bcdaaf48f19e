package network

import (
	"sync"
)

// MemoryPubSub is a process-local transport used by tests and single-node
// runs. Delivery is immediate fan-out to every subscriber of the topic;
// a full subscriber channel drops the message, matching the best-effort
// contract of the real transport.
type MemoryPubSub struct {
	mu     sync.RWMutex
	nextID int
	closed bool
	subs   map[string]map[int]chan Message
}

func NewMemoryPubSub() *MemoryPubSub {
	return &MemoryPubSub{subs: make(map[string]map[int]chan Message)}
}

func (m *MemoryPubSub) Publish(topic string, payload []byte) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return ErrTransportClosed
	}
	for _, ch := range m.subs[topic] {
		msg := Message{Topic: topic, Payload: append([]byte(nil), payload...)}
		select {
		case ch <- msg:
		default:
			// Non-blocking send so one slow subscriber cannot stall publishers.
		}
	}
	return nil
}

func (m *MemoryPubSub) Subscribe(topic string) (<-chan Message, func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, nil, ErrTransportClosed
	}
	if _, ok := m.subs[topic]; !ok {
		m.subs[topic] = make(map[int]chan Message)
	}
	id := m.nextID
	m.nextID++
	ch := make(chan Message, subscribeBuffer)
	m.subs[topic][id] = ch

	cancel := func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if subsByTopic, ok := m.subs[topic]; ok {
			if sub, exists := subsByTopic[id]; exists {
				delete(subsByTopic, id)
				close(sub)
			}
			if len(subsByTopic) == 0 {
				delete(m.subs, topic)
			}
		}
	}
	return ch, cancel, nil
}

// Close drops every subscription and fails subsequent calls.
func (m *MemoryPubSub) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	for _, subsByTopic := range m.subs {
		for _, ch := range subsByTopic {
			close(ch)
		}
	}
	m.subs = make(map[string]map[int]chan Message)
	return nil
}
