package main

import (
	"github.com/septivank/mine-safety-console/internal/config"
	"github.com/septivank/mine-safety-console/internal/logging"
	"go.uber.org/zap"
)

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	return logging.NewLogger(logging.Options{
		ServiceName: cfg.ServiceName,
		Level:       cfg.Log.Level,
		File:        cfg.Log.File,
		Interactive: cfg.Frontend == config.FrontendCLI,
	})
}
