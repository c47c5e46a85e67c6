package control

import (
	"sync"

	"github.com/flowpilot-io/flowpilot/types"
)

// RowSink receives one row per successful control-loop tick. Implemented
// by the performance log, the tick-trace recorder, and the dashboard.
type RowSink interface {
	Append(types.TickRow) error
}

// StubSink records appended rows for testing.
type StubSink struct {
	mu   sync.Mutex
	Rows []types.TickRow
}

// NewStubSink creates a new stub sink.
func NewStubSink() *StubSink {
	return &StubSink{}
}

// Append implements RowSink by recording the row.
func (s *StubSink) Append(row types.TickRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Rows = append(s.Rows, row)
	return nil
}

// Count returns the number of recorded rows.
func (s *StubSink) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Rows)
}

// Verify StubSink implements RowSink.
var _ RowSink = (*StubSink)(nil)
