package main

import (
	"context"

	"github.com/septivank/mine-safety-console/internal/config"
	"github.com/septivank/mine-safety-console/internal/controller"
	"github.com/septivank/mine-safety-console/internal/logstore"
	"github.com/septivank/mine-safety-console/internal/mq"
	"github.com/septivank/mine-safety-console/internal/report"
	"github.com/septivank/mine-safety-console/internal/sensor"
	"github.com/septivank/mine-safety-console/internal/service"
	"github.com/septivank/mine-safety-console/internal/validator"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// ProvideLogStore creates the text log store over the configured files
func ProvideLogStore(cfg *config.Config, logger *zap.Logger) (*logstore.Store, error) {
	return logstore.NewStore(logstore.Paths{
		Reports: cfg.Storage.ReportsFile,
		Alerts:  cfg.Storage.AlertsFile,
	}, logger)
}

// ProvideSimulator creates the methane sensor simulator
func ProvideSimulator(store *logstore.Store, logger *zap.Logger) *sensor.Simulator {
	return sensor.NewSimulator(sensor.UniformSource{}, store, logger)
}

// ProvideValidator creates a new validator instance
func ProvideValidator() *validator.Validator {
	return validator.NewValidator()
}

// ProvideExporter creates the PDF report exporter
func ProvideExporter(store *logstore.Store, cfg *config.Config, logger *zap.Logger) (*report.Exporter, error) {
	return report.NewExporter(store, report.Options{
		OutputPath: cfg.Report.OutputPath,
		FontPath:   cfg.Report.FontPath,
		Compress:   cfg.Report.Compress,
	}, logger)
}

// ProvideAlertPublisher connects to RabbitMQ when configured. It returns a nil publisher otherwise.
func ProvideAlertPublisher(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) (service.AlertPublisher, error) {
	if !cfg.RabbitMQ.Enabled() {
		logger.Info("RABBITMQ_URL not set, alert fan-out disabled")
		return nil, nil
	}

	conn, err := mq.NewConnection(lc, logger, cfg.RabbitMQ.URL)
	if err != nil {
		return nil, err
	}

	publisher, err := mq.NewPublisher(conn, cfg.RabbitMQ.AlertExchange, cfg.RabbitMQ.AlertRoutingKey, logger)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return publisher.Close()
		},
	})

	return publisher, nil
}

// ProvideConsoleService creates the console service
func ProvideConsoleService(
	store *logstore.Store,
	simulator *sensor.Simulator,
	exporter *report.Exporter,
	validator *validator.Validator,
	publisher service.AlertPublisher,
	logger *zap.Logger,
) *service.ConsoleService {
	return service.NewConsoleService(store, simulator, exporter, validator, publisher, logger)
}

// ProvideController creates the view controller
func ProvideController(svc *service.ConsoleService, logger *zap.Logger) *controller.Controller {
	return controller.New(svc, logger)
}
