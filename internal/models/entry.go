package models

import "fmt"

// Line prefixes and templates written to the alert log
const (
	AlertPrefix         = "⚠️ هشدار: "
	sensorAlertTemplate = AlertPrefix + "سطح متان بالاست! (%.2f)"
)

// StatusEntry represents one daily safety status report
type StatusEntry struct {
	Date   string `validate:"required"`
	Status string `validate:"required"`
}

// Line serializes the entry as it is stored in the status log
func (e StatusEntry) Line() string {
	return e.Date + " - " + e.Status
}

// AlertEntry represents a manually recorded alert
type AlertEntry struct {
	Type        string `validate:"required"`
	Description string `validate:"required"`
}

// Line serializes the entry as it is stored in the alert log
func (e AlertEntry) Line() string {
	return AlertPrefix + e.Type + " - " + e.Description
}

// SensorAlertLine is the alert log line written when a methane reading breaches the threshold
func SensorAlertLine(value float64) string {
	return fmt.Sprintf(sensorAlertTemplate, value)
}

// Reports is the read-only content shown in the reports view
type Reports struct {
	Status string `json:"status"`
	Alerts string `json:"alerts"`
}
