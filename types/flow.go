package types

// FlowMeta identifies one controlled flow for logging and the tick trace.
type FlowMeta struct {
	// SessionID is a unique identifier for this client process invocation.
	SessionID string
	// FlowID is the flow identifier, either from the --id flag or assigned
	// by the decision process during the handshake. Immutable once set.
	FlowID int
	// Algorithm is the congestion-control algorithm name in effect.
	Algorithm string
}
