package log

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/flowpilot-io/flowpilot/types"
)

func testMeta() *types.FlowMeta {
	return &types.FlowMeta{
		SessionID: "sess-001",
		FlowID:    3,
		Algorithm: "astraea",
	}
}

func TestLogger_ContextFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(testMeta()).WithOutput(&buf)

	logger.Info("flow started", map[string]any{"interval_ms": 20})

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not JSON: %v (%s)", err, buf.String())
	}
	if entry["session_id"] != "sess-001" {
		t.Errorf("session_id = %v, want sess-001", entry["session_id"])
	}
	if entry["flow_id"].(float64) != 3 {
		t.Errorf("flow_id = %v, want 3", entry["flow_id"])
	}
	if entry["algorithm"] != "astraea" {
		t.Errorf("algorithm = %v, want astraea", entry["algorithm"])
	}
	if entry["message"] != "flow started" {
		t.Errorf("message = %v, want flow started", entry["message"])
	}
	if entry["level"] != "info" {
		t.Errorf("level = %v, want info", entry["level"])
	}
}

func TestLogger_WithFlowID(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(testMeta()).WithOutput(&buf).WithFlowID(7)

	logger.Warn("decision skipped", nil)

	out := buf.String()
	if !strings.Contains(out, `"flow_id":7`) {
		t.Errorf("output missing reassigned flow_id: %s", out)
	}
	if !strings.Contains(out, `"level":"warn"`) {
		t.Errorf("output missing warn level: %s", out)
	}
}

func TestLogger_WithFlowIDReplacesField(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(testMeta()).WithOutput(&buf).WithFlowID(7)

	logger.Info("handshake complete", nil)

	out := buf.String()
	if got := strings.Count(out, `"flow_id"`); got != 1 {
		t.Fatalf("entry carries %d flow_id fields, want exactly 1: %s", got, out)
	}
	if strings.Contains(out, `"flow_id":3`) {
		t.Errorf("entry still carries the pre-handshake flow_id: %s", out)
	}
	if !strings.Contains(out, `"session_id":"sess-001"`) {
		t.Errorf("entry lost the session id: %s", out)
	}
}

func TestSugaredLogger(t *testing.T) {
	var buf bytes.Buffer
	sugar := NewLogger(testMeta()).WithOutput(&buf).Sugar()

	sugar.Infof("control interval is %dms", 20)

	if !strings.Contains(buf.String(), "control interval is 20ms") {
		t.Errorf("output missing formatted message: %s", buf.String())
	}
}
