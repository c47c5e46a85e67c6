package control

import (
	"time"

	"github.com/flowpilot-io/flowpilot/flow"
	"github.com/flowpilot-io/flowpilot/ipc"
	"github.com/flowpilot-io/flowpilot/log"
	"github.com/flowpilot-io/flowpilot/metrics"
	"github.com/flowpilot-io/flowpilot/types"
)

// DataFlow is the slice of the flow handle the control loop needs:
// statistics retrieval and window assignment. The write path belongs
// exclusively to the traffic generator.
type DataFlow interface {
	Stats(kind flow.RequestKind) (*types.StateSnapshot, error)
	SetWindow(cwnd int) error
}

// Decider is the send/receive slice of the decision-process channel.
type Decider interface {
	Send(*types.ControlMessage) error
	Receive() ([]byte, error)
}

// DefaultInterval is the control period when none is configured.
const DefaultInterval = 20 * time.Millisecond

// Loop is the fixed-period driver of the control cycle. Each tick it
// captures a snapshot, ships it to the decision process, applies the
// returned window, and fans the row out to the configured sinks.
//
// The loop is single-goroutine; ticks never overlap. A tick blocks on the
// statistics read, the decision round trip, and the fixed-phase sleep.
// There is no timeout on the round trip: an unresponsive decision process
// stalls the loop indefinitely.
type Loop struct {
	session   *Session
	flow      DataFlow
	decider   Decider
	interval  time.Duration
	sinks     []RowSink
	collector *metrics.Collector
	log       *log.Logger
}

// NewLoop creates a control loop. An interval of zero selects
// DefaultInterval.
func NewLoop(session *Session, dataFlow DataFlow, decider Decider, interval time.Duration, logger *log.Logger, collector *metrics.Collector, sinks ...RowSink) *Loop {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Loop{
		session:   session,
		flow:      dataFlow,
		decider:   decider,
		interval:  interval,
		sinks:     sinks,
		collector: collector,
		log:       logger,
	}
}

// Deadline returns the target time of the nth tick for a loop started at
// start. Scheduling is fixed-phase: deadlines are absolute multiples of
// the interval from the start time, so per-tick processing delay does not
// accumulate into period drift.
func Deadline(start time.Time, n int, interval time.Duration) time.Time {
	return start.Add(time.Duration(n) * interval)
}

// Run executes ticks until the session's liveness flag clears, then exits
// without further I/O. Socket errors are fatal and returned.
func (l *Loop) Run() error {
	start := time.Now()
	for n := 1; l.session.Live(); n++ {
		if err := l.tick(); err != nil {
			return err
		}
		time.Sleep(time.Until(Deadline(start, n, l.interval)))
	}
	l.log.Info("control loop stopped", nil)
	return nil
}

// tick runs one control cycle: capture, send, receive, apply, record.
func (l *Loop) tick() error {
	snapshot, err := l.flow.Stats(flow.RequestAction)
	if err != nil {
		return err
	}

	msg := &types.ControlMessage{
		Kind:   types.KindAlive,
		FlowID: l.session.FlowID(),
		State:  snapshot,
	}
	if err := l.decider.Send(msg); err != nil {
		return err
	}
	sent := time.Now()

	payload, err := l.decider.Receive()
	if err != nil {
		return err
	}
	l.collector.Tick()

	reply, err := ipc.DecodeReply(payload)
	if err != nil {
		// Malformed reply: hold the current window, skip the tick.
		l.log.Warn("failed to parse decision, skipping tick", map[string]any{
			"payload": string(payload),
			"error":   err.Error(),
		})
		l.collector.TickSkipped()
		return nil
	}

	if err := l.flow.SetWindow(*reply.Cwnd); err != nil {
		return err
	}
	latency := time.Since(sent)
	l.collector.WindowApplied()
	l.log.Debug("applied window", map[string]any{
		"cwnd":       *reply.Cwnd,
		"elapsed_us": latency.Microseconds(),
	})

	row := types.TickRow{
		Snapshot:      *snapshot,
		Assigned:      *reply.Cwnd,
		LatencyMicros: latency.Microseconds(),
	}
	for _, sink := range l.sinks {
		if err := sink.Append(row); err != nil {
			l.log.Warn("row sink append failed", map[string]any{"error": err.Error()})
		}
	}
	return nil
}
