package service

import (
	"context"
	"fmt"

	"github.com/septivank/mine-safety-console/internal/logstore"
	"github.com/septivank/mine-safety-console/internal/models"
	"github.com/septivank/mine-safety-console/internal/mq"
	"github.com/septivank/mine-safety-console/internal/report"
	"github.com/septivank/mine-safety-console/internal/sensor"
	"github.com/septivank/mine-safety-console/internal/validator"
	"go.uber.org/zap"
)

// LogStore is the log access the console needs
type LogStore interface {
	Append(id logstore.FileID, line string) error
	ReadAll(id logstore.FileID) (string, error)
}

// AlertPublisher fans alert events out. It is optional.
type AlertPublisher interface {
	PublishAlert(ctx context.Context, event mq.AlertEvent) error
}

// ConsoleService runs the operations behind every menu action
type ConsoleService struct {
	store     LogStore
	simulator *sensor.Simulator
	exporter  *report.Exporter
	validator *validator.Validator
	publisher AlertPublisher
	logger    *zap.Logger
}

// NewConsoleService creates a new console service. publisher may be nil.
func NewConsoleService(
	store LogStore,
	simulator *sensor.Simulator,
	exporter *report.Exporter,
	validator *validator.Validator,
	publisher AlertPublisher,
	logger *zap.Logger,
) *ConsoleService {
	return &ConsoleService{
		store:     store,
		simulator: simulator,
		exporter:  exporter,
		validator: validator,
		publisher: publisher,
		logger:    logger,
	}
}

// RecordStatus validates and appends a status entry. Nothing is written when validation fails.
func (s *ConsoleService) RecordStatus(ctx context.Context, entry models.StatusEntry) (validator.ValidationResult, error) {
	result := s.validator.ValidateStatus(entry)
	if !result.IsValid {
		s.logger.Debug("status form rejected", zap.Strings("missing", result.Missing))
		return result, nil
	}

	if err := s.store.Append(logstore.Reports, entry.Line()); err != nil {
		s.logger.Error("failed to record status", zap.Error(err))
		return result, fmt.Errorf("failed to record status: %w", err)
	}

	s.logger.Info("status recorded", zap.String("date", entry.Date))
	return result, nil
}

// RecordAlert validates and appends an alert entry, then publishes it
func (s *ConsoleService) RecordAlert(ctx context.Context, entry models.AlertEntry) (validator.ValidationResult, error) {
	result := s.validator.ValidateAlert(entry)
	if !result.IsValid {
		s.logger.Debug("alert form rejected", zap.Strings("missing", result.Missing))
		return result, nil
	}

	line := entry.Line()
	if err := s.store.Append(logstore.Alerts, line); err != nil {
		s.logger.Error("failed to record alert", zap.Error(err))
		return result, fmt.Errorf("failed to record alert: %w", err)
	}

	s.logger.Info("alert recorded", zap.String("type", entry.Type))
	s.publish(ctx, mq.NewAlertEvent(mq.SourceManual, line, nil))
	return result, nil
}

// Reports returns both logs, or their fallbacks when they do not exist yet
func (s *ConsoleService) Reports(ctx context.Context) (models.Reports, error) {
	status, err := s.store.ReadAll(logstore.Reports)
	if err != nil {
		return models.Reports{}, fmt.Errorf("failed to read status log: %w", err)
	}
	alerts, err := s.store.ReadAll(logstore.Alerts)
	if err != nil {
		return models.Reports{}, fmt.Errorf("failed to read alert log: %w", err)
	}
	return models.Reports{Status: status, Alerts: alerts}, nil
}

// SimulateSensor draws a methane reading. Dangerous readings are logged and published.
func (s *ConsoleService) SimulateSensor(ctx context.Context) (sensor.Reading, error) {
	reading, err := s.simulator.Simulate()
	if err != nil {
		s.logger.Error("sensor simulation failed", zap.Error(err))
		return sensor.Reading{}, err
	}

	if reading.Dangerous() {
		value := reading.Value
		s.publish(ctx, mq.NewAlertEvent(mq.SourceSensor, reading.AlertLine, &value))
	}

	return reading, nil
}

// GenerateReport renders the PDF and returns its layout and location
func (s *ConsoleService) GenerateReport(ctx context.Context) (report.Document, string, error) {
	doc, err := s.exporter.Generate()
	if err != nil {
		s.logger.Error("report generation failed", zap.Error(err))
		return report.Document{}, "", fmt.Errorf("failed to generate report: %w", err)
	}
	return doc, s.exporter.OutputPath(), nil
}

// publish logs but never fails the calling operation
func (s *ConsoleService) publish(ctx context.Context, event mq.AlertEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishAlert(ctx, event); err != nil {
		s.logger.Error("failed to publish alert event",
			zap.Error(err),
			zap.String("event_id", event.ID),
			zap.String("source", event.Source),
		)
	}
}
