package mq

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
)

func TestNewAlertEvent(t *testing.T) {
	value := 3.14
	event := NewAlertEvent(SourceSensor, "⚠️ هشدار: سطح متان بالاست! (3.14)", &value)

	if _, err := uuid.Parse(event.ID); err != nil {
		t.Errorf("Expected uuid id, got %s", event.ID)
	}
	if event.LoggedAt.IsZero() {
		t.Error("Expected logged_at to be set")
	}

	body, err := event.Encode()
	if err != nil {
		t.Fatalf("Failed to encode: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(body, &decoded); err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}
	if decoded["source"] != SourceSensor {
		t.Errorf("Expected source sensor, got %v", decoded["source"])
	}
	if decoded["value"] != 3.14 {
		t.Errorf("Expected value 3.14, got %v", decoded["value"])
	}
}

func TestAlertEvent_ManualOmitsValue(t *testing.T) {
	body, err := NewAlertEvent(SourceManual, "⚠️ هشدار: ریزش - تونل ۳", nil).Encode()
	if err != nil {
		t.Fatalf("Failed to encode: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(body, &decoded); err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}
	if _, ok := decoded["value"]; ok {
		t.Error("Expected value to be omitted for manual alerts")
	}
}
