// Package metrics provides per-session counter collection for one
// controlled flow. The Collector is a leaf package with no internal
// dependencies; the run command prints a Snapshot at exit.
package metrics

import "sync"

// Snapshot is an immutable point-in-time view of session counters.
// Returned by Collector.Snapshot(). Safe to read concurrently after
// creation.
type Snapshot struct {
	// Control loop
	Ticks          int64
	WindowsApplied int64
	TicksSkipped   int64

	// Traffic generator
	BytesGenerated int64

	// Dimensions (informational, set at construction)
	FlowID    int
	Algorithm string
}

// Collector accumulates counters during one session. Thread-safe via
// sync.Mutex; all increment methods are nil-receiver safe so wiring
// without metrics (tests, replay) costs nothing.
type Collector struct {
	mu sync.Mutex

	ticks          int64
	windowsApplied int64
	ticksSkipped   int64
	bytesGenerated int64

	flowID    int
	algorithm string
}

// NewCollector creates a Collector with dimension labels.
func NewCollector(flowID int, algorithm string) *Collector {
	return &Collector{flowID: flowID, algorithm: algorithm}
}

// Tick records one completed control-loop round trip.
func (c *Collector) Tick() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ticks++
}

// WindowApplied records a successfully applied decision.
func (c *Collector) WindowApplied() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.windowsApplied++
}

// TickSkipped records a tick skipped on a malformed reply.
func (c *Collector) TickSkipped() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ticksSkipped++
}

// AddBytes records payload written by the traffic generator.
func (c *Collector) AddBytes(n int64) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bytesGenerated += n
}

// Snapshot returns an immutable view of all counters.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		Ticks:          c.ticks,
		WindowsApplied: c.windowsApplied,
		TicksSkipped:   c.ticksSkipped,
		BytesGenerated: c.bytesGenerated,
		FlowID:         c.flowID,
		Algorithm:      c.algorithm,
	}
}
