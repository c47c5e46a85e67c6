package types

// MessageKind discriminates control messages on the decision-process channel.
type MessageKind int

// Message kind constants. Wire values are fixed; the decision process
// dispatches on them.
const (
	// KindInit is reserved and unused in the steady-state loop.
	KindInit MessageKind = 0
	// KindStart opens the handshake that assigns the flow identifier.
	KindStart MessageKind = 1
	// KindEnd announces flow termination. Sent without a snapshot.
	KindEnd MessageKind = 2
	// KindAlive carries periodic state and implicitly requests a decision.
	KindAlive MessageKind = 3
	// KindObserve carries an out-of-band observation tagged with an
	// observer id and step counter.
	KindObserve MessageKind = 4
)

// String returns the kind name for logging.
func (k MessageKind) String() string {
	switch k {
	case KindInit:
		return "init"
	case KindStart:
		return "start"
	case KindEnd:
		return "end"
	case KindAlive:
		return "alive"
	case KindObserve:
		return "observe"
	default:
		return "unknown"
	}
}

// ControlMessage is the envelope sent over the decision-process channel.
//
// State is omitted from the encoded payload entirely when nil; the decision
// process treats absence as "no snapshot", not as an empty snapshot.
// Observer and Step are present iff Kind == KindObserve.
type ControlMessage struct {
	// Kind is the message type discriminator.
	Kind MessageKind `json:"type"`
	// FlowID is the flow identifier, always present.
	FlowID int `json:"flow_id"`
	// State is the flow statistics snapshot, included for alive/observe.
	State *StateSnapshot `json:"state,omitempty"`
	// Observer identifies the observer for observe messages.
	Observer *int `json:"observer,omitempty"`
	// Step is the observation step counter for observe messages.
	Step *int `json:"step,omitempty"`
}

// ControlReply is the decision-process response. Every decision reply
// carries cwnd; the handshake reply additionally carries flow_id.
//
// Pointer fields distinguish "absent" from zero so malformed replies can be
// rejected rather than applied as cwnd 0.
type ControlReply struct {
	// Cwnd is the congestion window to assign, in packets.
	Cwnd *int `json:"cwnd"`
	// FlowID is the assigned flow identifier (handshake reply only).
	FlowID *int `json:"flow_id"`
}
