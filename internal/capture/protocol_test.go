package capture

import (
	"encoding/json"
	"testing"
)

func TestCommandMarshalStart(t *testing.T) {
	cmd := Command{
		Cmd:    "start",
		Locale: "en-US",
		Device: "Built-in Microphone",
	}

	data, err := json.Marshal(cmd)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var got Command
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if got.Cmd != "start" {
		t.Errorf("cmd = %q, want %q", got.Cmd, "start")
	}
	if got.Locale != "en-US" {
		t.Errorf("locale = %q, want %q", got.Locale, "en-US")
	}
	if got.Device != "Built-in Microphone" {
		t.Errorf("device = %q, want %q", got.Device, "Built-in Microphone")
	}
}

func TestCommandOmitsEmptyFields(t *testing.T) {
	cmd := Command{Cmd: "stop"}
	data, err := json.Marshal(cmd)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal raw: %v", err)
	}

	if _, ok := raw["locale"]; ok {
		t.Error("stop command should omit locale")
	}
	if _, ok := raw["device"]; ok {
		t.Error("stop command should omit device")
	}
}

func TestResponseUnmarshalError(t *testing.T) {
	raw := `{"ok":false,"error":"microphone access denied"}`

	var resp Response
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if resp.OK {
		t.Error("ok = true, want false")
	}
	if resp.Error != "microphone access denied" {
		t.Errorf("error = %q", resp.Error)
	}
}

func TestEventUnmarshalPartialAndFinal(t *testing.T) {
	var partial Event
	if err := json.Unmarshal([]byte(`{"event":"partial","text":"hel"}`), &partial); err != nil {
		t.Fatalf("unmarshal partial: %v", err)
	}
	if partial.Event != "partial" || partial.Text != "hel" {
		t.Errorf("partial = %+v", partial)
	}

	var final Event
	if err := json.Unmarshal([]byte(`{"event":"final","text":"hello."}`), &final); err != nil {
		t.Fatalf("unmarshal final: %v", err)
	}
	if final.Event != "final" || final.Text != "hello." {
		t.Errorf("final = %+v", final)
	}
}
