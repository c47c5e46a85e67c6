// Package trace records every control-loop tick to a binary trace file
// for offline analysis and replay. Records are length-prefixed msgpack
// documents, 4-byte big-endian prefix, one record per tick.
package trace

import (
	"encoding/binary"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/flowpilot-io/flowpilot/types"
)

// lengthPrefixSize is the size of the record length prefix in bytes.
const lengthPrefixSize = 4

// TickRecord is the trace file record for one tick.
type TickRecord struct {
	// Version is the trace format version, types.Version at write time.
	Version string `msgpack:"version"`
	// TsMicros is the record timestamp, microseconds since the unix epoch.
	TsMicros int64 `msgpack:"ts_us"`
	// FlowID is the flow identifier.
	FlowID int `msgpack:"flow_id"`
	// Snapshot is the statistics captured at the start of the tick.
	Snapshot types.StateSnapshot `msgpack:"state"`
	// Assigned is the congestion window applied this tick.
	Assigned int `msgpack:"cwnd"`
	// LatencyMicros is the decision latency in microseconds.
	LatencyMicros int64 `msgpack:"latency_us"`
}

// Recorder appends tick records to a trace file. Implements the control
// package's RowSink.
type Recorder struct {
	mu     sync.Mutex
	file   *os.File
	flowID int
	closed bool
	now    func() time.Time
}

// NewRecorder creates (or truncates) the trace file.
func NewRecorder(path string, flowID int) (*Recorder, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("trace file %s: %w", path, err)
	}
	return &Recorder{file: file, flowID: flowID, now: time.Now}, nil
}

// Append writes one tick record.
func (r *Recorder) Append(row types.TickRow) error {
	record := TickRecord{
		Version:       types.Version,
		TsMicros:      r.now().UnixMicro(),
		FlowID:        r.flowID,
		Snapshot:      row.Snapshot,
		Assigned:      row.Assigned,
		LatencyMicros: row.LatencyMicros,
	}
	payload, err := msgpack.Marshal(&record)
	if err != nil {
		return fmt.Errorf("trace encode: %w", err)
	}

	frame := make([]byte, lengthPrefixSize+len(payload))
	binary.BigEndian.PutUint32(frame[:lengthPrefixSize], uint32(len(payload)))
	copy(frame[lengthPrefixSize:], payload)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return fmt.Errorf("trace recorder closed")
	}
	if _, err := r.file.Write(frame); err != nil {
		return fmt.Errorf("trace write: %w", err)
	}
	return nil
}

// Close closes the trace file. Idempotent.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	return r.file.Close()
}
