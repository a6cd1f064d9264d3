package config

import (
	"log/slog"
	"os"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"ZOTP_EXPORT_DIR", "ZOTP_LOG_LEVEL", "ZOTP_LOG_FILE", "ZOTP_SCAN_WORKERS"} {
		// Setenv restores the original value on cleanup
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ExportDir != "." {
		t.Errorf("ExportDir = %q, want .", cfg.ExportDir)
	}
	if cfg.LogLevel != slog.LevelWarn {
		t.Errorf("LogLevel = %v, want warn", cfg.LogLevel)
	}
	if cfg.LogFile != "" {
		t.Errorf("LogFile = %q, want empty", cfg.LogFile)
	}
	if cfg.ScanWorkers != 4 {
		t.Errorf("ScanWorkers = %d, want 4", cfg.ScanWorkers)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("ZOTP_EXPORT_DIR", "/tmp/out")
	t.Setenv("ZOTP_LOG_LEVEL", "DEBUG")
	t.Setenv("ZOTP_LOG_FILE", "/tmp/zotp.log")
	t.Setenv("ZOTP_SCAN_WORKERS", "8")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ExportDir != "/tmp/out" {
		t.Errorf("ExportDir = %q", cfg.ExportDir)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v, want debug", cfg.LogLevel)
	}
	if cfg.LogFile != "/tmp/zotp.log" {
		t.Errorf("LogFile = %q", cfg.LogFile)
	}
	if cfg.ScanWorkers != 8 {
		t.Errorf("ScanWorkers = %d, want 8", cfg.ScanWorkers)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"unknown level", "ZOTP_LOG_LEVEL", "verbose"},
		{"non-numeric workers", "ZOTP_SCAN_WORKERS", "many"},
		{"zero workers", "ZOTP_SCAN_WORKERS", "0"},
		{"empty export dir", "ZOTP_EXPORT_DIR", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("ZOTP_EXPORT_DIR", ".")
			t.Setenv("ZOTP_LOG_LEVEL", "warn")
			t.Setenv("ZOTP_SCAN_WORKERS", "4")
			t.Setenv(tt.key, tt.val)

			if _, err := Load(); err == nil {
				t.Errorf("Load() with %s=%q should fail", tt.key, tt.val)
			}
		})
	}
}
