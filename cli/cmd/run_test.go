package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/flowpilot-io/flowpilot/ipc"
	"github.com/flowpilot-io/flowpilot/metrics"
)

// resolveFromArgs runs resolveSettings through a real flag parse.
func resolveFromArgs(t *testing.T, args ...string) (*runChoice, error) {
	t.Helper()

	var choice *runChoice
	var resolveErr error
	app := &cli.App{
		Commands: []*cli.Command{{
			Name:  "run",
			Flags: runFlags(),
			Action: func(c *cli.Context) error {
				choice, resolveErr = resolveSettings(c)
				return nil
			},
		}},
	}
	if err := app.Run(append([]string{"flowpilot", "run"}, args...)); err != nil {
		t.Fatalf("app run: %v", err)
	}
	return choice, resolveErr
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "flowpilot.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestResolveSettings_FlagDefaults(t *testing.T) {
	choice, err := resolveFromArgs(t, "--ip", "10.0.0.2", "--port", "5201")
	if err != nil {
		t.Fatalf("resolveSettings failed: %v", err)
	}

	if choice.algorithm != "cubic" {
		t.Errorf("algorithm = %q, want default cubic", choice.algorithm)
	}
	if choice.interval != 20*time.Millisecond {
		t.Errorf("interval = %v, want default 20ms", choice.interval)
	}
	if choice.endpoint != ipc.DefaultEndpoint {
		t.Errorf("endpoint = %q, want %q", choice.endpoint, ipc.DefaultEndpoint)
	}
	if choice.rlMode() {
		t.Error("cubic should not select RL mode")
	}
}

func TestResolveSettings_ConfigSuppliesValues(t *testing.T) {
	path := writeConfigFile(t, `
remote:
  ip: 10.0.0.2
  port: 5201
algorithm: astraea
interval: 30ms
flow_id: 4
decision:
  endpoint: /run/decision.sock
`)

	choice, err := resolveFromArgs(t, "--config", path)
	if err != nil {
		t.Fatalf("resolveSettings failed: %v", err)
	}

	if choice.ip != "10.0.0.2" || choice.port != 5201 {
		t.Errorf("remote = %s:%d, want 10.0.0.2:5201", choice.ip, choice.port)
	}
	if choice.algorithm != "astraea" {
		t.Errorf("algorithm = %q, want astraea from config", choice.algorithm)
	}
	if choice.interval != 30*time.Millisecond {
		t.Errorf("interval = %v, want 30ms from config", choice.interval)
	}
	if choice.flowID != 4 {
		t.Errorf("flowID = %d, want 4 from config", choice.flowID)
	}
	if choice.endpoint != "/run/decision.sock" {
		t.Errorf("endpoint = %q, want config value", choice.endpoint)
	}
	if !choice.rlMode() {
		t.Error("astraea should select RL mode")
	}
}

func TestResolveSettings_FlagOverridesConfig(t *testing.T) {
	path := writeConfigFile(t, `
remote:
  ip: 10.0.0.2
  port: 5201
algorithm: astraea
interval: 30ms
`)

	choice, err := resolveFromArgs(t, "--config", path,
		"--cong", "cubic", "--interval", "10", "--port", "9000")
	if err != nil {
		t.Fatalf("resolveSettings failed: %v", err)
	}

	if choice.algorithm != "cubic" {
		t.Errorf("algorithm = %q, want flag override cubic", choice.algorithm)
	}
	if choice.interval != 10*time.Millisecond {
		t.Errorf("interval = %v, want flag override 10ms", choice.interval)
	}
	if choice.port != 9000 {
		t.Errorf("port = %d, want flag override 9000", choice.port)
	}
}

func TestResolveSettings_MissingRemote(t *testing.T) {
	if _, err := resolveFromArgs(t); err == nil {
		t.Fatal("resolveSettings succeeded without a remote address")
	}
	if _, err := resolveFromArgs(t, "--ip", "10.0.0.2"); err == nil {
		t.Fatal("resolveSettings succeeded without a port")
	}
	if _, err := resolveFromArgs(t, "--ip", "10.0.0.2", "--port", "70000"); err == nil {
		t.Fatal("resolveSettings succeeded with an out-of-range port")
	}
}

func TestPrintSummary(t *testing.T) {
	var sb strings.Builder
	printSummary(&sb, metrics.Snapshot{
		FlowID:         7,
		Algorithm:      "astraea",
		Ticks:          100,
		WindowsApplied: 98,
		TicksSkipped:   2,
		BytesGenerated: 1 << 20,
	})

	out := sb.String()
	for _, want := range []string{"flow 7 (astraea)", "ticks:", "100", "windows applied: 98", "ticks skipped:   2"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}
