package control

import (
	"bufio"
	"fmt"
	"os"
	"sync"

	"github.com/flowpilot-io/flowpilot/types"
)

// PerfHeader is the tab-separated header row of the performance log.
const PerfHeader = "min_rtt\tavg_urtt\tcnt\tsrtt_us\tavg_thr\tthr_cnt\tpacing_rate\t" +
	"loss_bytes\tpackets_out\tretrans_out\tmax_packets_out\tCWND in Kernel\tCWND to Assign"

// PerfLog appends one tab-separated row per successful tick, mirroring
// the snapshot plus the assigned window. The srtt_us column carries the
// kernel value converted to microseconds.
type PerfLog struct {
	mu     sync.Mutex
	file   *os.File
	w      *bufio.Writer
	closed bool
}

// OpenPerfLog creates (or truncates) the log file and writes the header.
func OpenPerfLog(path string) (*PerfLog, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("%s: error opening for writing: %w", path, err)
	}
	w := bufio.NewWriter(file)
	if _, err := fmt.Fprintln(w, PerfHeader); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("%s: error writing header: %w", path, err)
	}
	return &PerfLog{file: file, w: w}, nil
}

// Append implements RowSink.
func (p *PerfLog) Append(row types.TickRow) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return fmt.Errorf("perf log closed")
	}
	_, err := fmt.Fprintln(p.w, FormatRow(row))
	return err
}

// Close flushes and closes the log. Idempotent: the lifecycle watcher may
// race a normal shutdown here.
func (p *PerfLog) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	if err := p.w.Flush(); err != nil {
		_ = p.file.Close()
		return err
	}
	return p.file.Close()
}

// FormatRow renders one performance-log row without a trailing newline.
// Shared with the replay command, which re-renders trace records in the
// same format.
func FormatRow(row types.TickRow) string {
	s := &row.Snapshot
	return fmt.Sprintf("%d\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%d",
		s.MinRTT, s.AvgURTT, s.Cnt, s.SRTTMicros(), s.AvgThr, s.ThrCnt,
		s.PacingRate, s.LossBytes, s.PacketsOut, s.RetransOut,
		s.MaxPacketsOut, s.Cwnd, row.Assigned)
}

// Verify PerfLog implements RowSink.
var _ RowSink = (*PerfLog)(nil)
