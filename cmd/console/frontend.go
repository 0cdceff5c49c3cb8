package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/septivank/mine-safety-console/internal/config"
	"github.com/septivank/mine-safety-console/internal/controller"
	"github.com/septivank/mine-safety-console/internal/frontend/cli"
	"github.com/septivank/mine-safety-console/internal/frontend/web"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func startFrontend(
	lc fx.Lifecycle,
	shutdowner fx.Shutdowner,
	cfg *config.Config,
	ctrl *controller.Controller,
	logger *zap.Logger,
) {
	if cfg.Frontend == config.FrontendWeb {
		startWeb(lc, shutdowner, cfg, ctrl, logger)
		return
	}
	startCLI(lc, shutdowner, cfg, ctrl, logger)
}

// startCLI runs one terminal session and shuts the app down when it ends
func startCLI(
	lc fx.Lifecycle,
	shutdowner fx.Shutdowner,
	cfg *config.Config,
	ctrl *controller.Controller,
	logger *zap.Logger,
) {
	ctx, cancel := context.WithCancel(context.Background())

	var opener cli.Opener
	if cfg.Report.Open {
		opener = cli.BrowserOpener
	}
	term := cli.NewTerminal(os.Stdin, os.Stdout, opener, logger)
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(startCtx context.Context) error {
			logger.Info("starting terminal session",
				zap.String("reports", cfg.Storage.ReportsFile),
				zap.String("alerts", cfg.Storage.AlertsFile))

			go func() {
				defer close(done)
				if err := ctrl.Run(ctx, term, term); err != nil && ctx.Err() == nil {
					logger.Error("terminal session failed", zap.Error(err))
				}
				if err := shutdowner.Shutdown(); err != nil {
					logger.Error("failed to request shutdown", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
				logger.Info("terminal session stopped")
				return nil
			case <-stopCtx.Done():
				return stopCtx.Err()
			}
		},
	})
}

// startWeb serves the HTTP front end for the lifetime of the app
func startWeb(
	lc fx.Lifecycle,
	shutdowner fx.Shutdowner,
	cfg *config.Config,
	ctrl *controller.Controller,
	logger *zap.Logger,
) {
	sessions := web.NewSessionManager(time.Duration(cfg.HTTP.SessionTTLMinutes) * time.Minute)
	server := web.NewServer(ctrl, sessions, web.Options{
		ServiceName: cfg.ServiceName,
		ReportPath:  cfg.Report.OutputPath,
	}, logger)
	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)

	lc.Append(fx.Hook{
		OnStart: func(startCtx context.Context) error {
			go func() {
				if err := server.Start(addr); err != nil {
					logger.Error("http server failed", zap.Error(err))
					_ = shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			if err := server.Shutdown(stopCtx); err != nil {
				logger.Error("failed to stop http server", zap.Error(err))
				return err
			}
			logger.Info("http front end stopped gracefully")
			return nil
		},
	})
}
