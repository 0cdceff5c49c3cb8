package sensor

import (
	"fmt"
	"math/rand"

	"github.com/septivank/mine-safety-console/internal/logstore"
	"github.com/septivank/mine-safety-console/internal/models"
	"go.uber.org/zap"
)

const (
	// MaxMethaneLevel is the exclusive upper bound of simulated readings (ppm)
	MaxMethaneLevel = 5.0
	// DangerThreshold is the level above which a reading is dangerous
	DangerThreshold = 2.5
)

const (
	readingTemplate  = "سطح گاز متان: %.2f ppm\n"
	dangerousMessage = "🚨 هشدار: سطح گاز متان خطرناک است!"
	safeMessage      = "✅ وضعیت سالم."
)

// Level is the classification of a reading
type Level string

const (
	Safe      Level = "SAFE"
	Dangerous Level = "DANGEROUS"
)

// Source produces raw methane readings in [0, MaxMethaneLevel)
type Source interface {
	Sample() float64
}

// UniformSource draws readings uniformly from [0, MaxMethaneLevel)
type UniformSource struct{}

// Sample returns the next simulated reading
func (UniformSource) Sample() float64 {
	return rand.Float64() * MaxMethaneLevel
}

// AlertAppender is the part of the log store the simulator writes to
type AlertAppender interface {
	Append(id logstore.FileID, line string) error
}

// Reading is the outcome of one simulation
type Reading struct {
	Value float64 `json:"value"`
	Level Level   `json:"level"`
	// AlertLine is the line appended to the alert log, empty for safe readings
	AlertLine string `json:"alert_line,omitempty"`
	Message   string `json:"message"`
}

// Dangerous reports whether the reading breached the threshold
func (r Reading) Dangerous() bool {
	return r.Level == Dangerous
}

// Simulator draws methane readings and logs alerts for dangerous ones
type Simulator struct {
	source Source
	alerts AlertAppender
	logger *zap.Logger
}

// NewSimulator creates a new simulator
func NewSimulator(source Source, alerts AlertAppender, logger *zap.Logger) *Simulator {
	return &Simulator{
		source: source,
		alerts: alerts,
		logger: logger,
	}
}

// Classify compares value with the danger threshold
func Classify(value float64) Level {
	if value > DangerThreshold {
		return Dangerous
	}
	return Safe
}

// Simulate draws one reading, appends an alert when it is dangerous and returns the display message
func (s *Simulator) Simulate() (Reading, error) {
	value := s.source.Sample()
	reading := Reading{
		Value: value,
		Level: Classify(value),
	}

	msg := fmt.Sprintf(readingTemplate, value)
	if reading.Dangerous() {
		reading.AlertLine = models.SensorAlertLine(value)
		if err := s.alerts.Append(logstore.Alerts, reading.AlertLine); err != nil {
			return Reading{}, fmt.Errorf("failed to log methane alert: %w", err)
		}
		msg += dangerousMessage
	} else {
		msg += safeMessage
	}
	reading.Message = msg

	s.logger.Info("methane reading simulated",
		zap.Float64("value", value),
		zap.String("level", string(reading.Level)),
	)

	return reading, nil
}
