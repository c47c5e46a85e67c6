package cmd

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/flowpilot-io/flowpilot/control"
	"github.com/flowpilot-io/flowpilot/trace"
	"github.com/flowpilot-io/flowpilot/types"
)

func TestReplayTo_RendersPerfRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flow.trace")
	rec, err := trace.NewRecorder(path, 7)
	if err != nil {
		t.Fatalf("NewRecorder failed: %v", err)
	}
	rows := []types.TickRow{
		{Snapshot: types.StateSnapshot{SRTT: 9600, Cwnd: 15}, Assigned: 12, LatencyMicros: 500},
		{Snapshot: types.StateSnapshot{SRTT: 8000, Cwnd: 12}, Assigned: 14, LatencyMicros: 430},
	}
	for _, row := range rows {
		if err := rec.Append(row); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}
	if err := rec.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	var sb strings.Builder
	if err := replayTo(&sb, path, 0); err != nil {
		t.Fatalf("replayTo failed: %v", err)
	}

	lines := strings.Split(strings.TrimRight(sb.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("output has %d lines, want header plus 2 rows", len(lines))
	}
	if lines[0] != control.PerfHeader {
		t.Errorf("first line = %q, want perf header", lines[0])
	}

	cols := strings.Split(lines[1], "\t")
	if len(cols) != 13 {
		t.Fatalf("row has %d columns, want 13", len(cols))
	}
	if cols[3] != "1200" {
		t.Errorf("srtt_us = %q, want 1200", cols[3])
	}
	if cols[11] != "15" || cols[12] != "12" {
		t.Errorf("cwnd columns = %q/%q, want 15/12", cols[11], cols[12])
	}
}

func TestReplayTo_MissingFile(t *testing.T) {
	var sb strings.Builder
	if err := replayTo(&sb, filepath.Join(t.TempDir(), "absent.trace"), 0); err == nil {
		t.Fatal("replayTo succeeded on a missing trace")
	}
}
