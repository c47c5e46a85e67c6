// Package cmd provides CLI commands for the flowpilot binary.
package cmd

import (
	"github.com/urfave/cli/v2"

	"github.com/flowpilot-io/flowpilot/ipc"
)

// runFlags returns the flags for the run command. The remote address is
// required, but may come from either the flags or a config file, so the
// flags themselves are not marked Required; resolveSettings enforces it
// after the merge.
func runFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "ip",
			Usage: "Remote IP of the data-flow destination",
		},
		&cli.IntFlag{
			Name:  "port",
			Usage: "Remote port of the data-flow destination",
		},
		&cli.StringFlag{
			Name:  "cong",
			Usage: "Congestion-control algorithm (\"astraea\" selects RL mode)",
			Value: "cubic",
		},
		&cli.IntFlag{
			Name:  "interval",
			Usage: "Control period in milliseconds",
			Value: 20,
		},
		&cli.IntFlag{
			Name:  "id",
			Usage: "Flow identifier (ignored in RL mode; the handshake assigns one)",
		},
		&cli.StringFlag{
			Name:  "perf-log",
			Usage: "Path of the tab-separated performance log (optional)",
		},
		&cli.StringFlag{
			Name:  "trace",
			Usage: "Path of the binary tick trace (optional)",
		},
		&cli.BoolFlag{
			Name:  "dashboard",
			Usage: "Show a live terminal dashboard of recent ticks",
		},
		&cli.StringFlag{
			Name:  "decision-endpoint",
			Usage: "Unix-socket path of the decision process",
			Value: ipc.DefaultEndpoint,
		},
		&cli.StringFlag{
			Name:  "config",
			Usage: "Path to a flowpilot.yaml config file",
		},
		&cli.BoolFlag{
			Name:  "quiet",
			Usage: "Suppress the run summary",
		},
	}
}
