package config

import (
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATA_DIR", "")
	t.Setenv("FRONTEND", "")
	t.Setenv("HTTP_PORT", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.ServiceName != "mine-safety-console" {
		t.Errorf("Expected default service name, got %s", cfg.ServiceName)
	}
	if cfg.Frontend != FrontendCLI {
		t.Errorf("Expected cli frontend, got %s", cfg.Frontend)
	}
	if cfg.Storage.ReportsFile != "daily_reports.txt" {
		t.Errorf("Expected daily_reports.txt, got %s", cfg.Storage.ReportsFile)
	}
	if cfg.Storage.AlertsFile != "alerts.txt" {
		t.Errorf("Expected alerts.txt, got %s", cfg.Storage.AlertsFile)
	}
	if cfg.Report.OutputPath != "report.pdf" {
		t.Errorf("Expected report.pdf, got %s", cfg.Report.OutputPath)
	}
	if cfg.RabbitMQ.Enabled() {
		t.Error("Expected broker to be disabled without RABBITMQ_URL")
	}
}

func TestLoad_DataDirResolvesRelativePaths(t *testing.T) {
	dir := t.TempDir()
	abs := filepath.Join(dir, "elsewhere", "alerts.log")

	t.Setenv("DATA_DIR", dir)
	t.Setenv("REPORTS_FILE", "reports.log")
	t.Setenv("ALERTS_FILE", abs)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Storage.ReportsFile != filepath.Join(dir, "reports.log") {
		t.Errorf("Expected reports file under data dir, got %s", cfg.Storage.ReportsFile)
	}
	if cfg.Storage.AlertsFile != abs {
		t.Errorf("Expected absolute alerts path to be kept, got %s", cfg.Storage.AlertsFile)
	}
}

func TestLoad_InvalidFrontend(t *testing.T) {
	t.Setenv("FRONTEND", "gui")

	if _, err := Load(); err == nil {
		t.Error("Expected error for unknown frontend")
	}
}

func TestLoad_InvalidPort(t *testing.T) {
	t.Setenv("HTTP_PORT", "70000")

	if _, err := Load(); err == nil {
		t.Error("Expected error for out of range port")
	}
}

func TestGetEnvAsBool_FallsBackOnGarbage(t *testing.T) {
	t.Setenv("REPORT_COMPRESS", "maybe")

	if !getEnvAsBool("REPORT_COMPRESS", true) {
		t.Error("Expected default value for unparsable bool")
	}
}
