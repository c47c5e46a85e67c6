package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/flowpilot-io/flowpilot/control"
	"github.com/flowpilot-io/flowpilot/trace"
	"github.com/flowpilot-io/flowpilot/types"
)

// ReplayCommand returns the replay command. Replay is read-only: it
// renders a recorded trace in the performance-log format without touching
// any socket.
func ReplayCommand() *cli.Command {
	return &cli.Command{
		Name:  "replay",
		Usage: "Render a recorded tick trace as performance-log rows",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "trace",
				Usage:    "Path of the trace file to replay",
				Required: true,
			},
			&cli.Float64Flag{
				Name:  "speed",
				Usage: "Timing multiplier (0 replays without delay, 1 real time)",
			},
		},
		Action: replayAction,
	}
}

func replayAction(c *cli.Context) error {
	return replayTo(os.Stdout, c.String("trace"), c.Float64("speed"))
}

func replayTo(w io.Writer, path string, speed float64) error {
	if _, err := fmt.Fprintln(w, control.PerfHeader); err != nil {
		return err
	}
	err := trace.ReplayFile(path, speed, func(rec *trace.TickRecord) error {
		_, err := fmt.Fprintln(w, control.FormatRow(recordRow(rec)))
		return err
	})
	if err != nil {
		return cli.Exit(fmt.Sprintf("replay failed: %v", err), exitFailure)
	}
	return nil
}

// recordRow converts a trace record back into the row shape the
// performance-log formatter understands.
func recordRow(rec *trace.TickRecord) types.TickRow {
	return types.TickRow{
		Snapshot:      rec.Snapshot,
		Assigned:      rec.Assigned,
		LatencyMicros: rec.LatencyMicros,
	}
}
