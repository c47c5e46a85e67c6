package types

import (
	"encoding/json"
	"testing"
)

func TestMessageKind_String(t *testing.T) {
	cases := []struct {
		kind MessageKind
		want string
	}{
		{KindInit, "init"},
		{KindStart, "start"},
		{KindEnd, "end"},
		{KindAlive, "alive"},
		{KindObserve, "observe"},
		{MessageKind(99), "unknown"},
	}
	for _, tc := range cases {
		if got := tc.kind.String(); got != tc.want {
			t.Errorf("MessageKind(%d).String() = %q, want %q", tc.kind, got, tc.want)
		}
	}
}

func TestControlMessage_StateOmittedWhenNil(t *testing.T) {
	msg := ControlMessage{Kind: KindEnd, FlowID: 3}
	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if _, present := doc["state"]; present {
		t.Errorf("state field present in %s, want omitted", data)
	}
	if _, present := doc["observer"]; present {
		t.Errorf("observer field present in %s, want omitted", data)
	}
	if doc["type"].(float64) != 2 {
		t.Errorf("type = %v, want 2", doc["type"])
	}
}

func TestControlMessage_ObserveCarriesObserverAndStep(t *testing.T) {
	observer, step := 4, 17
	msg := ControlMessage{
		Kind:     KindObserve,
		FlowID:   1,
		State:    &StateSnapshot{Cwnd: 10},
		Observer: &observer,
		Step:     &step,
	}
	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if doc["observer"].(float64) != 4 {
		t.Errorf("observer = %v, want 4", doc["observer"])
	}
	if doc["step"].(float64) != 17 {
		t.Errorf("step = %v, want 17", doc["step"])
	}
	if _, present := doc["state"]; !present {
		t.Error("state field missing from observe message")
	}
}

func TestStateSnapshot_SRTTMicros(t *testing.T) {
	cases := []struct {
		raw  uint32
		want uint32
	}{
		{0, 0},
		{8, 1},
		{200000, 25000},
		{7, 0},
	}
	for _, tc := range cases {
		s := StateSnapshot{SRTT: tc.raw}
		if got := s.SRTTMicros(); got != tc.want {
			t.Errorf("SRTTMicros(%d) = %d, want %d", tc.raw, got, tc.want)
		}
	}
}
