package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/septivank/mine-safety-console/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func main() {
	// Load .env from the working directory or one of its parents
	envPaths := []string{
		".env",
		"../../.env", // running from bin/
	}

	if workDir, err := os.Getwd(); err == nil {
		parentDir := filepath.Dir(workDir)
		grandParentDir := filepath.Dir(parentDir)

		envPaths = append(envPaths,
			filepath.Join(workDir, ".env"),
			filepath.Join(parentDir, ".env"),
			filepath.Join(grandParentDir, ".env"),
		)
	}

	envLoaded := false
	for _, envPath := range envPaths {
		if _, err := os.Stat(envPath); err == nil {
			if err := godotenv.Load(envPath); err == nil {
				absPath, _ := filepath.Abs(envPath)
				fmt.Fprintf(os.Stderr, "Loaded environment from: %s\n", absPath)
				envLoaded = true
				break
			}
		}
	}

	if !envLoaded {
		fmt.Fprintln(os.Stderr, "No .env file found, using system environment variables")
	}

	app := fx.New(
		fx.NopLogger,
		fx.Provide(
			config.Load,
			newLogger,
			ProvideLogStore,
			ProvideSimulator,
			ProvideValidator,
			ProvideExporter,
			ProvideAlertPublisher,
			ProvideConsoleService,
			ProvideController,
		),
		fx.Invoke(startFrontend),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	tempLogger, _ := newLogger(&config.Config{ServiceName: "mine-safety-console"})

	startCtx, startCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startCancel()

	if err := app.Start(startCtx); err != nil {
		if startCtx.Err() == context.DeadlineExceeded {
			tempLogger.Error("APPLICATION START TIMEOUT: failed to start within 30 seconds. When RABBITMQ_URL is set the broker must be reachable.")
		}
		tempLogger.Fatal("failed to start application", zap.Error(err))
	}

	// Wait for an interrupt, or for the terminal session to end
	select {
	case <-ctx.Done():
	case <-app.Wait():
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer stopCancel()
	if err := app.Stop(stopCtx); err != nil {
		fmt.Fprintln(os.Stderr, "error stopping app:", err)
	}
}
