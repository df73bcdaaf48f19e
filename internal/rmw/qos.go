package rmw

// QoS policies requested by callers. Gossip delivery only ever provides
// keep-last, volatile, best-effort semantics; any other requested value
// is accepted and recorded but not honored.

type HistoryPolicy int

const (
	HistoryKeepLast HistoryPolicy = iota
	HistoryKeepAll
)

type ReliabilityPolicy int

const (
	ReliabilityBestEffort ReliabilityPolicy = iota
	ReliabilityReliable
)

type DurabilityPolicy int

const (
	DurabilityVolatile DurabilityPolicy = iota
	DurabilityTransientLocal
)

type QoSProfile struct {
	History     HistoryPolicy
	Depth       int
	Reliability ReliabilityPolicy
	Durability  DurabilityPolicy
}

// DefaultQoS matches what the transport actually delivers.
var DefaultQoS = QoSProfile{
	History:     HistoryKeepLast,
	Depth:       10,
	Reliability: ReliabilityBestEffort,
	Durability:  DurabilityVolatile,
}

// effective returns the profile the transport will honor for a requested
// profile: the degraded keep-last/volatile/best-effort subset, keeping
// the requested depth.
func (q QoSProfile) effective() QoSProfile {
	e := q
	e.History = HistoryKeepLast
	e.Reliability = ReliabilityBestEffort
	e.Durability = DurabilityVolatile
	if e.Depth <= 0 {
		e.Depth = DefaultQoS.Depth
	}
	return e
}
