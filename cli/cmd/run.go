package cmd

import (
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/flowpilot-io/flowpilot/cli/config"
	"github.com/flowpilot-io/flowpilot/cli/tui"
	"github.com/flowpilot-io/flowpilot/control"
	"github.com/flowpilot-io/flowpilot/flow"
	"github.com/flowpilot-io/flowpilot/iox"
	"github.com/flowpilot-io/flowpilot/ipc"
	"github.com/flowpilot-io/flowpilot/log"
	"github.com/flowpilot-io/flowpilot/metrics"
	"github.com/flowpilot-io/flowpilot/trace"
	"github.com/flowpilot-io/flowpilot/types"
)

// Exit codes for the run command.
const (
	exitSuccess = 0
	exitFailure = 1
)

// rlAlgorithm is the algorithm name that switches the process into
// RL-driven mode: flow-identifier handshake, control-plugin activation,
// and the control loop against the decision process.
const rlAlgorithm = "astraea"

// controlPluginMode is the activation mode passed to the kernel plugin.
const controlPluginMode = 2

// RunCommand returns the run command, the only command that drives a flow.
func RunCommand() *cli.Command {
	return &cli.Command{
		Name:   "run",
		Usage:  "Drive one TCP data flow under the configured algorithm",
		Flags:  runFlags(),
		Action: runAction,
	}
}

// runChoice holds the merged flag and config-file settings for one run.
type runChoice struct {
	ip        string
	port      int
	algorithm string
	interval  time.Duration
	flowID    int
	perfLog   string
	tracePath string
	dashboard bool
	endpoint  string
	quiet     bool
}

func (r *runChoice) rlMode() bool {
	return r.algorithm == rlAlgorithm
}

// resolveSettings merges the config file (if any) with the command-line
// flags. Explicitly set flags win; flag defaults fill only what the
// config file leaves empty.
func resolveSettings(c *cli.Context) (*runChoice, error) {
	var cfg config.Config
	if path := c.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = *loaded
	}

	choice := &runChoice{
		ip:        cfg.Remote.IP,
		port:      cfg.Remote.Port,
		algorithm: cfg.Algorithm,
		interval:  cfg.Interval.Duration,
		perfLog:   cfg.PerfLog,
		tracePath: cfg.Trace,
		dashboard: cfg.Dashboard,
		endpoint:  cfg.Decision.Endpoint,
		quiet:     c.Bool("quiet"),
	}
	if cfg.FlowID != nil {
		choice.flowID = *cfg.FlowID
	}

	if c.IsSet("ip") {
		choice.ip = c.String("ip")
	}
	if c.IsSet("port") {
		choice.port = c.Int("port")
	}
	if c.IsSet("cong") || choice.algorithm == "" {
		choice.algorithm = c.String("cong")
	}
	if c.IsSet("interval") || choice.interval == 0 {
		choice.interval = time.Duration(c.Int("interval")) * time.Millisecond
	}
	if c.IsSet("id") {
		choice.flowID = c.Int("id")
	}
	if c.IsSet("perf-log") {
		choice.perfLog = c.String("perf-log")
	}
	if c.IsSet("trace") {
		choice.tracePath = c.String("trace")
	}
	if c.IsSet("dashboard") {
		choice.dashboard = c.Bool("dashboard")
	}
	if c.IsSet("decision-endpoint") || choice.endpoint == "" {
		choice.endpoint = c.String("decision-endpoint")
	}

	if choice.ip == "" {
		return nil, fmt.Errorf("remote ip required (--ip or config file)")
	}
	if choice.port <= 0 || choice.port > 65535 {
		return nil, fmt.Errorf("valid remote port required (--port or config file)")
	}
	return choice, nil
}

func runAction(c *cli.Context) error {
	choice, err := resolveSettings(c)
	if err != nil {
		return cli.Exit(err.Error(), exitFailure)
	}

	meta := &types.FlowMeta{
		SessionID: uuid.NewString(),
		FlowID:    choice.flowID,
		Algorithm: choice.algorithm,
	}
	logger := log.NewLogger(meta)
	session := control.NewSession(meta)

	// Signals are watched before anything is dialed: an interrupt during a
	// stalled dial or handshake still runs the termination sequence.
	lifecycle := control.NewLifecycle(session, nil, logger)
	lifecycle.Watch(syscall.SIGINT, syscall.SIGTERM)

	// RL mode: the handshake runs synchronously before any worker starts
	// and the assigned flow identifier replaces the configured one.
	var channel *ipc.Channel
	if choice.rlMode() {
		channel, err = ipc.Dial(choice.endpoint)
		if err != nil {
			return cli.Exit(err.Error(), exitFailure)
		}
		lifecycle.AttachChannel(channel)
		id, err := channel.Handshake()
		if err != nil {
			return cli.Exit(fmt.Sprintf("handshake with decision process failed: %v", err), exitFailure)
		}
		meta.FlowID = id
		logger = logger.WithFlowID(id)
	}

	logger.Info("starting flow", map[string]any{
		"remote":   net.JoinHostPort(choice.ip, strconv.Itoa(choice.port)),
		"interval": choice.interval.String(),
		"rl_mode":  choice.rlMode(),
	})

	conn, err := flow.Dial(net.JoinHostPort(choice.ip, strconv.Itoa(choice.port)))
	if err != nil {
		return cli.Exit(err.Error(), exitFailure)
	}
	if err := conn.SetCongestionControl(choice.algorithm); err != nil {
		iox.DiscardClose(conn)
		return cli.Exit(err.Error(), exitFailure)
	}
	if choice.rlMode() {
		// Plugin activation is only defined on a connected socket.
		if err := conn.EnableControlPlugin(controlPluginMode); err != nil {
			iox.DiscardClose(conn)
			return cli.Exit(err.Error(), exitFailure)
		}
	}

	var sinks []control.RowSink
	var closers []io.Closer
	if choice.perfLog != "" {
		perf, err := control.OpenPerfLog(choice.perfLog)
		if err != nil {
			iox.DiscardClose(conn)
			return cli.Exit(err.Error(), exitFailure)
		}
		sinks = append(sinks, perf)
		closers = append(closers, perf)
		lifecycle.AddCloser(perf)
	}
	if choice.tracePath != "" {
		rec, err := trace.NewRecorder(choice.tracePath, meta.FlowID)
		if err != nil {
			iox.DiscardClose(conn)
			return cli.Exit(err.Error(), exitFailure)
		}
		sinks = append(sinks, rec)
		closers = append(closers, rec)
		lifecycle.AddCloser(rec)
	}
	if choice.dashboard {
		sinks = append(sinks, tui.NewDashboard(meta))
	}

	collector := metrics.NewCollector(meta.FlowID, choice.algorithm)

	// Two workers share the flow handle: the generator owns the write
	// path, the loop owns statistics and window assignment. A fatal error
	// in either clears the liveness flag so the other drains out.
	var wg sync.WaitGroup
	errCh := make(chan error, 2)

	wg.Add(1)
	go func() {
		defer wg.Done()
		gen := control.NewGenerator(session, conn, logger, collector)
		if err := gen.Run(); err != nil {
			logger.Error("traffic generator failed", map[string]any{"error": err.Error()})
			session.Stop()
			errCh <- err
		}
	}()

	if choice.rlMode() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			loop := control.NewLoop(session, conn, channel, choice.interval, logger, collector, sinks...)
			if err := loop.Run(); err != nil {
				logger.Error("control loop failed", map[string]any{"error": err.Error()})
				session.Stop()
				errCh <- err
			}
		}()
	}

	wg.Wait()

	for _, cl := range closers {
		iox.DiscardClose(cl)
	}
	iox.DiscardClose(channel)
	iox.DiscardClose(conn)

	close(errCh)
	var runErr error
	for err := range errCh {
		if runErr == nil {
			runErr = err
		}
	}

	if !choice.quiet {
		printSummary(os.Stdout, collector.Snapshot())
	}
	if runErr != nil {
		return cli.Exit(runErr.Error(), exitFailure)
	}
	return cli.Exit("", exitSuccess)
}

// printSummary writes the end-of-run counter summary.
func printSummary(w io.Writer, snap metrics.Snapshot) {
	fmt.Fprintf(w, "flow %d (%s)\n", snap.FlowID, snap.Algorithm)
	fmt.Fprintf(w, "  ticks:           %d\n", snap.Ticks)
	fmt.Fprintf(w, "  windows applied: %d\n", snap.WindowsApplied)
	fmt.Fprintf(w, "  ticks skipped:   %d\n", snap.TicksSkipped)
	fmt.Fprintf(w, "  bytes generated: %d\n", snap.BytesGenerated)
}
