package types

// StateSnapshot is one tick's flow statistics as read from the kernel.
// Produced fresh each control-loop tick and never mutated afterwards.
//
// Field names match the wire document consumed by the decision process and
// the columns of the performance log.
type StateSnapshot struct {
	// MinRTT is the minimum observed round-trip time in microseconds.
	MinRTT uint32 `json:"min_rtt" msgpack:"min_rtt"`
	// AvgURTT is the average micro-RTT over the sampling window.
	AvgURTT uint32 `json:"avg_urtt" msgpack:"avg_urtt"`
	// Cnt is the number of RTT samples behind AvgURTT.
	Cnt uint32 `json:"cnt" msgpack:"cnt"`
	// SRTT is the kernel's smoothed RTT in its internal tick units.
	// Right-shift by 3 to convert to microseconds; see SRTTMicros.
	SRTT uint32 `json:"srtt_us" msgpack:"srtt_us"`
	// AvgThr is the average throughput over the sampling window.
	AvgThr uint64 `json:"avg_thr" msgpack:"avg_thr"`
	// ThrCnt is the number of throughput samples behind AvgThr.
	ThrCnt uint32 `json:"thr_cnt" msgpack:"thr_cnt"`
	// PacingRate is the current pacing rate in bytes per second.
	PacingRate uint64 `json:"pacing_rate" msgpack:"pacing_rate"`
	// LossBytes is the cumulative count of lost bytes.
	LossBytes uint64 `json:"loss_bytes" msgpack:"loss_bytes"`
	// PacketsOut is the number of packets currently outstanding.
	PacketsOut uint32 `json:"packets_out" msgpack:"packets_out"`
	// RetransOut is the number of retransmitted packets outstanding.
	RetransOut uint32 `json:"retrans_out" msgpack:"retrans_out"`
	// MaxPacketsOut is the peak of PacketsOut over the flow's lifetime.
	MaxPacketsOut uint32 `json:"max_packets_out" msgpack:"max_packets_out"`
	// Cwnd is the congestion window currently installed in the kernel.
	Cwnd uint32 `json:"cwnd" msgpack:"cwnd"`
}

// SRTTMicros converts the kernel's smoothed-RTT representation to
// microseconds. The kernel stores srtt left-shifted by 3.
func (s *StateSnapshot) SRTTMicros() uint32 {
	return s.SRTT >> 3
}

// TickRow is the record handed to row sinks after each successful tick:
// the captured snapshot plus the window the decision process assigned.
// Ticks skipped on a malformed reply produce no row.
type TickRow struct {
	// Snapshot is the statistics captured at the start of the tick.
	Snapshot StateSnapshot
	// Assigned is the congestion window applied this tick.
	Assigned int
	// LatencyMicros is the send-to-apply decision latency in microseconds.
	LatencyMicros int64
}
