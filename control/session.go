// Package control drives one TCP data flow: a fixed-period control loop
// shipping statistics to the decision process, a traffic generator
// saturating the flow, and the lifecycle watcher that coordinates
// shutdown between them.
package control

import (
	"sync/atomic"

	"github.com/flowpilot-io/flowpilot/types"
)

// Session is the shared shutdown context for one controlled flow. It is
// passed explicitly to the control loop, the traffic generator, and the
// lifecycle watcher; there is no package-level state.
//
// The liveness flag is the only cross-goroutine mutable state. Both
// workers read it every iteration; only the lifecycle watcher clears it.
// Staleness of at most one tick or one write is acceptable, so a plain
// atomic read/write discipline suffices.
type Session struct {
	meta *types.FlowMeta
	live atomic.Bool
}

// NewSession creates a live session for the given flow.
func NewSession(meta *types.FlowMeta) *Session {
	s := &Session{meta: meta}
	s.live.Store(true)
	return s
}

// Live reports whether the flow is still active.
func (s *Session) Live() bool {
	return s.live.Load()
}

// Stop clears the liveness flag. Returns true for exactly one caller; the
// lifecycle watcher uses this to run the termination sequence once.
func (s *Session) Stop() bool {
	return s.live.CompareAndSwap(true, false)
}

// FlowID returns the flow identifier. Immutable after startup; every
// message sent on the decision channel carries it.
func (s *Session) FlowID() int {
	return s.meta.FlowID
}

// Meta returns the flow metadata.
func (s *Session) Meta() *types.FlowMeta {
	return s.meta
}
