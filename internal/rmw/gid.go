package rmw

import "github.com/google/uuid"

// GID is the opaque 16-byte identity of an endpoint, unique and stable for
// the lifetime of the process.
type GID [16]byte

// NewGID returns a fresh random identity.
func NewGID() GID {
	return GID(uuid.New())
}

// String returns the canonical UUID form, used to derive per-client
// response topic names.
func (g GID) String() string {
	return uuid.UUID(g).String()
}

// RequestID links a response to its originating request: the requester's
// identity plus the sequence number returned by SendRequest.
type RequestID struct {
	Writer   GID
	Sequence int64
}
