package rmw

import (
	"sync"

	"github.com/esteve/rmw-libp2p/internal/wire"
)

// TypeSupport names a message type and encodes/decodes it field by field.
// The introspection-driven field walker that derives the order from a
// struct definition lives outside this package; an implementation simply
// visits its fields in the same fixed order as its peers.
type TypeSupport interface {
	TypeName() string
	Encode(msg any, w *wire.Writer) error
	Decode(r *wire.Reader) (any, error)
}

// typeRegistry maps type names to their registered TypeSupport. Each node
// owns its own registry; the same type used by several endpoints on one
// node is registered once and shared.
type typeRegistry struct {
	mu    sync.Mutex
	types map[string]TypeSupport
}

func newTypeRegistry() *typeRegistry {
	return &typeRegistry{types: make(map[string]TypeSupport)}
}

// register stores ts under its type name on first use and returns the
// instance registered for that name, which may be an earlier one.
func (tr *typeRegistry) register(ts TypeSupport) TypeSupport {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	if existing, ok := tr.types[ts.TypeName()]; ok {
		return existing
	}
	tr.types[ts.TypeName()] = ts
	return ts
}

// lookup returns the TypeSupport registered under name.
func (tr *typeRegistry) lookup(name string) (TypeSupport, error) {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	ts, ok := tr.types[name]
	if !ok {
		return nil, ErrNotFound
	}
	return ts, nil
}
