package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/flowpilot-io/flowpilot/types"
)

func testRow(cwnd uint32, assigned int) types.TickRow {
	return types.TickRow{
		Snapshot:      types.StateSnapshot{Cwnd: cwnd, SRTT: 9600, PacingRate: 1000, PacketsOut: 12},
		Assigned:      assigned,
		LatencyMicros: 500,
	}
}

func TestModel_TickAddsRow(t *testing.T) {
	m := newModel(&types.FlowMeta{FlowID: 7, Algorithm: "astraea"})

	updated, _ := m.Update(tickMsg{row: testRow(15, 12)})
	m = updated.(model)

	rows := m.table.Rows()
	if len(rows) != 1 {
		t.Fatalf("table has %d rows, want 1", len(rows))
	}
	if rows[0][1] != "15" || rows[0][2] != "12" {
		t.Errorf("row = %v, want cwnd 15 assigned 12", rows[0])
	}
	if m.ticks != 1 {
		t.Errorf("ticks = %d, want 1", m.ticks)
	}
}

func TestModel_RowsCapped(t *testing.T) {
	m := newModel(&types.FlowMeta{FlowID: 1})
	for i := 0; i < maxRows+10; i++ {
		updated, _ := m.Update(tickMsg{row: testRow(uint32(i), i)})
		m = updated.(model)
	}
	if got := len(m.table.Rows()); got != maxRows {
		t.Errorf("table has %d rows, want capped at %d", got, maxRows)
	}
}

func TestModel_QuitKeys(t *testing.T) {
	m := newModel(&types.FlowMeta{FlowID: 1})
	for _, key := range []string{"q", "esc"} {
		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)})
		if key == "q" && cmd == nil {
			t.Errorf("key %q did not quit", key)
		}
	}
}

func TestModel_View(t *testing.T) {
	m := newModel(&types.FlowMeta{FlowID: 7, Algorithm: "astraea"})
	updated, _ := m.Update(tickMsg{row: testRow(15, 12)})
	m = updated.(model)

	view := m.View()
	if !strings.Contains(view, "flow 7") {
		t.Errorf("view missing flow id: %q", view)
	}
	if !strings.Contains(view, "astraea") {
		t.Errorf("view missing algorithm: %q", view)
	}
}

// stubProgram records messages sent to the dashboard.
type stubProgram struct {
	msgs []tea.Msg
}

func (p *stubProgram) Send(msg tea.Msg) {
	p.msgs = append(p.msgs, msg)
}

func TestDashboard_AppendForwardsRow(t *testing.T) {
	program := &stubProgram{}
	d := &Dashboard{program: program, done: make(chan struct{})}

	if err := d.Append(testRow(10, 11)); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if len(program.msgs) != 1 {
		t.Fatalf("program received %d messages, want 1", len(program.msgs))
	}
	msg, ok := program.msgs[0].(tickMsg)
	if !ok {
		t.Fatalf("message type = %T, want tickMsg", program.msgs[0])
	}
	if msg.row.Assigned != 11 {
		t.Errorf("forwarded assigned = %d, want 11", msg.row.Assigned)
	}
}
