package control

import (
	"errors"
	"testing"

	"github.com/flowpilot-io/flowpilot/flow"
	"github.com/flowpilot-io/flowpilot/metrics"
	"github.com/flowpilot-io/flowpilot/types"
)

// stoppingWriter accepts writes and clears the session flag after a fixed
// number of them.
type stoppingWriter struct {
	session *Session
	writes  int
	stopAt  int
}

func (w *stoppingWriter) Write(p []byte) (int, error) {
	w.writes++
	if w.writes == w.stopAt {
		w.session.Stop()
	}
	return len(p), nil
}

func TestGenerator_StopsOnFlagClear(t *testing.T) {
	session := NewSession(&types.FlowMeta{FlowID: 1})
	w := &stoppingWriter{session: session, stopAt: 5}
	collector := metrics.NewCollector(1, "cubic")
	gen := NewGenerator(session, w, quietLogger(), collector)

	if err := gen.Run(); err != nil {
		t.Fatalf("Run returned %v, want nil", err)
	}
	if w.writes != 5 {
		t.Errorf("writes = %d, want exactly 5 (no writes after flag clear)", w.writes)
	}
	if got := collector.Snapshot().BytesGenerated; got != int64(5*PayloadSize) {
		t.Errorf("BytesGenerated = %d, want %d", got, 5*PayloadSize)
	}
}

type failingWriter struct {
	err error
}

func (w *failingWriter) Write([]byte) (int, error) {
	return 0, w.err
}

func TestGenerator_WriteFailureIsFatal(t *testing.T) {
	session := NewSession(&types.FlowMeta{FlowID: 1})
	sockErr := &flow.SocketError{Op: "write", Err: errors.New("broken pipe")}
	gen := NewGenerator(session, &failingWriter{err: sockErr}, quietLogger(), nil)

	err := gen.Run()
	if err == nil {
		t.Fatal("Run returned nil, want socket error")
	}
	var got *flow.SocketError
	if !errors.As(err, &got) {
		t.Fatalf("error type = %T, want *flow.SocketError", err)
	}
}

func TestGenerator_NoWritesWhenAlreadyStopped(t *testing.T) {
	session := NewSession(&types.FlowMeta{FlowID: 1})
	session.Stop()
	w := &stoppingWriter{session: session, stopAt: -1}
	gen := NewGenerator(session, w, quietLogger(), nil)

	if err := gen.Run(); err != nil {
		t.Fatalf("Run returned %v, want nil", err)
	}
	if w.writes != 0 {
		t.Errorf("writes = %d, want 0", w.writes)
	}
}
