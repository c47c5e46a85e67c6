package tui

import (
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/flowpilot-io/flowpilot/types"
)

// maxRows is how many recent ticks the table retains.
const maxRows = 32

// teaProgram abstracts tea.Program for testing.
type teaProgram interface {
	Send(tea.Msg)
}

// tickMsg carries one control-loop row into the model.
type tickMsg struct {
	row types.TickRow
}

// Dashboard renders recent ticks in a live table. It implements the
// control package's RowSink; Append is called from the control loop
// goroutine and hands the row to the bubbletea program.
type Dashboard struct {
	program teaProgram
	done    chan struct{}
}

// NewDashboard starts the bubbletea program for the given flow. When the
// user quits the dashboard, the process receives an interrupt so the
// normal lifecycle shutdown runs.
func NewDashboard(meta *types.FlowMeta) *Dashboard {
	d := &Dashboard{done: make(chan struct{})}
	program := tea.NewProgram(newModel(meta), tea.WithAltScreen())
	d.program = program
	go func() {
		_, _ = program.Run()
		close(d.done)
		if proc, err := os.FindProcess(os.Getpid()); err == nil {
			_ = proc.Signal(os.Interrupt)
		}
	}()
	return d
}

// Append implements RowSink.
func (d *Dashboard) Append(row types.TickRow) error {
	d.program.Send(tickMsg{row: row})
	return nil
}

// Wait blocks until the dashboard program has exited.
func (d *Dashboard) Wait() {
	<-d.done
}

// model is the bubbletea model behind the dashboard.
type model struct {
	meta    *types.FlowMeta
	table   table.Model
	ticks   int
	lastRow *types.TickRow
}

func newModel(meta *types.FlowMeta) model {
	columns := []table.Column{
		{Title: "tick", Width: 6},
		{Title: "cwnd", Width: 6},
		{Title: "assigned", Width: 8},
		{Title: "srtt_us", Width: 8},
		{Title: "pacing", Width: 12},
		{Title: "loss", Width: 8},
		{Title: "lat_us", Width: 7},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithHeight(maxRows/2),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.Bold(true).Foreground(primaryColor)
	styles.Selected = lipgloss.NewStyle()
	t.SetStyles(styles)
	return model{meta: meta, table: t}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
	case tickMsg:
		m.ticks++
		m.lastRow = &msg.row
		rows := append(m.table.Rows(), table.Row{
			fmt.Sprintf("%d", m.ticks),
			fmt.Sprintf("%d", msg.row.Snapshot.Cwnd),
			fmt.Sprintf("%d", msg.row.Assigned),
			fmt.Sprintf("%d", msg.row.Snapshot.SRTTMicros()),
			fmt.Sprintf("%d", msg.row.Snapshot.PacingRate),
			fmt.Sprintf("%d", msg.row.Snapshot.LossBytes),
			fmt.Sprintf("%d", msg.row.LatencyMicros),
		})
		if len(rows) > maxRows {
			rows = rows[len(rows)-maxRows:]
		}
		m.table.SetRows(rows)
		m.table.GotoBottom()
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m model) View() string {
	title := TitleStyle.Render(fmt.Sprintf("flowpilot — flow %d (%s)", m.meta.FlowID, m.meta.Algorithm))

	summary := ""
	if m.lastRow != nil {
		summary = lipgloss.JoinVertical(lipgloss.Left,
			LabelStyle.Render("ticks")+AppliedStyle.Render(fmt.Sprintf("%d", m.ticks)),
			LabelStyle.Render("kernel cwnd")+ValueStyle.Render(fmt.Sprintf("%d", m.lastRow.Snapshot.Cwnd)),
			LabelStyle.Render("assigned")+ValueStyle.Render(fmt.Sprintf("%d", m.lastRow.Assigned)),
			LabelStyle.Render("packets out")+ValueStyle.Render(fmt.Sprintf("%d", m.lastRow.Snapshot.PacketsOut)),
		)
	}

	footer := FooterStyle.Render("q to quit")
	return lipgloss.JoinVertical(lipgloss.Left, title, summary, m.table.View(), footer)
}
