package rmw

import "sync"

// GuardCondition is a user-triggerable boolean event that can take part in
// a multiplexed wait alongside listeners.
type GuardCondition struct {
	node *Node

	mu        sync.Mutex
	triggered bool
	wait      *waitContext
}

// NewGuardCondition returns a standalone guard condition, owned by the
// caller. Node-owned ones come from Node.CreateGuardCondition.
func NewGuardCondition() *GuardCondition {
	return &GuardCondition{}
}

// CreateGuardCondition returns a guard condition registered with the
// node, so Node.Close releases it along with the other endpoints.
func (n *Node) CreateGuardCondition() (*GuardCondition, error) {
	g := &GuardCondition{node: n}
	if err := n.addEndpoint(g); err != nil {
		return nil, err
	}
	return g, nil
}

// Close deregisters a node-owned guard condition and drops any attached
// wait context. There is no transport state to release; a second Close
// is a no-op.
func (g *GuardCondition) Close() error {
	g.detachCondition()
	if g.node != nil {
		g.node.removeEndpoint(g)
	}
	return nil
}

// Trigger sets the flag and notifies the attached wait context, if any.
func (g *GuardCondition) Trigger() {
	g.mu.Lock()
	g.triggered = true
	w := g.wait
	g.mu.Unlock()
	if w != nil {
		w.notify()
	}
}

// HasTriggered is the level-style peek: it reports the flag without
// clearing it.
func (g *GuardCondition) HasTriggered() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.triggered
}

// TakeAndReset is the edge-style read: it atomically reports and clears
// the flag, so a caller can tell "became ready since last observed"
// without consuming an event peeked elsewhere.
func (g *GuardCondition) TakeAndReset() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	t := g.triggered
	g.triggered = false
	return t
}

func (g *GuardCondition) attachCondition(w *waitContext) {
	g.mu.Lock()
	g.wait = w
	g.mu.Unlock()
}

func (g *GuardCondition) detachCondition() {
	g.mu.Lock()
	g.wait = nil
	g.mu.Unlock()
}
