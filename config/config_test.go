package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

func cleanupEnv() {
	for _, name := range GetEnvVars() {
		_ = os.Unsetenv(name)
	}
}

func TestLoadValidConfig(t *testing.T) {
	cleanupEnv()
	_ = os.Setenv("PORT", "8002")
	_ = os.Setenv("ADDRESS", "127.0.0.1")
	_ = os.Setenv("ENV", "dev")
	_ = os.Setenv("LOG_LEVEL", "info")
	_ = os.Setenv("VETLEK_PATH", "datasets/a.json")
	defer cleanupEnv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.Port != "8002" {
		t.Errorf("Expected port 8002, got %s", cfg.Port)
	}
	if cfg.Env != EnvDevelopment {
		t.Errorf("Expected env dev, got %s", cfg.Env)
	}
	if cfg.VetLekPath != "datasets/a.json" {
		t.Errorf("Expected VETLEK_PATH override, got %s", cfg.VetLekPath)
	}
}

func TestLoadWithDefaults(t *testing.T) {
	cleanupEnv()
	defer cleanupEnv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.Port != "8000" {
		t.Errorf("Expected default port 8000, got %s", cfg.Port)
	}
	if cfg.DataDriver != DriverFile {
		t.Errorf("Expected default driver file, got %s", cfg.DataDriver)
	}
	if cfg.VidalPath != "data/vidal.json" {
		t.Errorf("Expected default vidal path, got %s", cfg.VidalPath)
	}
	if cfg.MonographPath != "data/vetlek_monographs.html" {
		t.Errorf("Expected default monograph path, got %s", cfg.MonographPath)
	}
	if cfg.RefreshAt != "" {
		t.Errorf("Expected refresh disabled by default, got %q", cfg.RefreshAt)
	}
	if cfg.ReportTimeout != 10*time.Second {
		t.Errorf("Expected default report timeout 10s, got %s", cfg.ReportTimeout)
	}
}

func TestInvalidPort(t *testing.T) {
	testCases := []struct {
		port     string
		expected string
	}{
		{"abc", "PORT must be a valid number"},
		{"0", "PORT must be between 1 and 65535"},
		{"65536", "PORT must be between 1 and 65535"},
		{"80", "PORT 80 is privileged"},
	}

	for _, tc := range testCases {
		t.Run(tc.port, func(t *testing.T) {
			cleanupEnv()
			defer cleanupEnv()
			_ = os.Setenv("PORT", tc.port)

			_, err := Load()
			if err == nil {
				t.Fatalf("Expected error for port %s", tc.port)
			}
			if !strings.Contains(err.Error(), tc.expected) {
				t.Errorf("Expected error containing %q, got %v", tc.expected, err)
			}
		})
	}
}

func TestValidateEnvAndLogLevel(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr bool
	}{
		{"staging env", "ENV", "staging", false},
		{"upper case env", "ENV", "PROD", false},
		{"unknown env", "ENV", "qa", true},
		{"warning level", "LOG_LEVEL", "warning", false},
		{"unknown level", "LOG_LEVEL", "trace", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cleanupEnv()
			defer cleanupEnv()
			_ = os.Setenv(tt.key, tt.value)

			_, err := Load()
			if (err != nil) != tt.wantErr {
				t.Errorf("Load() with %s=%s error = %v, wantErr %v", tt.key, tt.value, err, tt.wantErr)
			}
		})
	}
}

func TestValidateDataSource(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"file driver default", map[string]string{}, ""},
		{"http driver with url", map[string]string{"DATA_DRIVER": "http", "DATA_ROOT": "https://cdn.example.org/vet"}, ""},
		{"http driver without scheme", map[string]string{"DATA_DRIVER": "http", "DATA_ROOT": "cdn.example.org"}, "http(s) base URL"},
		{"s3 without bucket", map[string]string{"DATA_DRIVER": "s3"}, "S3_BUCKET is required"},
		{"s3 with bucket", map[string]string{"DATA_DRIVER": "s3", "S3_BUCKET": "vet-data"}, ""},
		{"unknown driver", map[string]string{"DATA_DRIVER": "ftp"}, "DATA_DRIVER must be one of"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cleanupEnv()
			defer cleanupEnv()
			for k, v := range tt.env {
				_ = os.Setenv(k, v)
			}

			_, err := Load()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Expected no error, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidateReportURL(t *testing.T) {
	tests := []struct {
		raw     string
		wantErr bool
	}{
		{"", false},
		{"https://host.local/bridge", false},
		{"/relative/path", true},
		{"ftp://host/bridge", true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			err := validateReportURL(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateReportURL(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
		})
	}
}

func TestValidateAddress(t *testing.T) {
	tests := []struct {
		address string
		wantErr bool
	}{
		{"localhost", false},
		{"10.0.0.5", false},
		{"0.0.0.0", false},
		{"8.8.8.8", true},
		{"not-an-ip", true},
	}

	for _, tt := range tests {
		t.Run(tt.address, func(t *testing.T) {
			err := validateAddress(tt.address)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateAddress(%q) error = %v, wantErr %v", tt.address, err, tt.wantErr)
			}
		})
	}
}
