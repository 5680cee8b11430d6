package config

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		config      Config
		wantErr     bool
		errorString string
	}{
		{
			name: "valid config",
			config: Config{
				DBPath:           "./test.db",
				Timezone:         "Europe/Rome",
				LogLevel:         "info",
				BalanceCacheSize: 256,
				BalanceCacheTTL:  5 * time.Minute,
			},
			wantErr: false,
		},
		{
			name: "empty timezone means system local",
			config: Config{
				DBPath:           "./test.db",
				LogLevel:         "debug",
				BalanceCacheSize: 1,
				BalanceCacheTTL:  time.Second,
			},
			wantErr: false,
		},
		{
			name: "empty database path",
			config: Config{
				LogLevel:         "info",
				BalanceCacheSize: 256,
				BalanceCacheTTL:  5 * time.Minute,
			},
			wantErr:     true,
			errorString: "database path cannot be empty",
		},
		{
			name: "invalid timezone",
			config: Config{
				DBPath:           "./test.db",
				Timezone:         "Mars/Olympus",
				LogLevel:         "info",
				BalanceCacheSize: 256,
				BalanceCacheTTL:  5 * time.Minute,
			},
			wantErr:     true,
			errorString: "invalid timezone 'Mars/Olympus'",
		},
		{
			name: "invalid log level",
			config: Config{
				DBPath:           "./test.db",
				LogLevel:         "verbose",
				BalanceCacheSize: 256,
				BalanceCacheTTL:  5 * time.Minute,
			},
			wantErr:     true,
			errorString: "invalid log level 'verbose': must be debug, info, warn or error",
		},
		{
			name: "cache size too small",
			config: Config{
				DBPath:           "./test.db",
				LogLevel:         "info",
				BalanceCacheSize: 0,
				BalanceCacheTTL:  5 * time.Minute,
			},
			wantErr:     true,
			errorString: "invalid balance cache size 0: must be at least 1",
		},
		{
			name: "cache TTL too short",
			config: Config{
				DBPath:           "./test.db",
				LogLevel:         "info",
				BalanceCacheSize: 256,
				BalanceCacheTTL:  100 * time.Millisecond,
			},
			wantErr:     true,
			errorString: "invalid balance cache TTL 100ms: must be at least 1 second",
		},
		{
			name: "multiple errors reported together",
			config: Config{
				DBPath:           "./test.db",
				LogLevel:         "loud",
				BalanceCacheSize: -1,
				BalanceCacheTTL:  5 * time.Minute,
			},
			wantErr:     true,
			errorString: "invalid log level 'loud'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Validate() expected error, got nil")
				}
				if !strings.Contains(err.Error(), tt.errorString) {
					t.Errorf("Validate() error = %v, want it to contain %q", err, tt.errorString)
				}
			} else if err != nil {
				t.Errorf("Validate() unexpected error: %v", err)
			}
		})
	}
}

func TestConfig_ValidateCreatesDatabaseDirectory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "moneta.db")
	cfg := Config{
		DBPath:           dbPath,
		LogLevel:         "info",
		BalanceCacheSize: 256,
		BalanceCacheTTL:  5 * time.Minute,
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() unexpected error: %v", err)
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("MONETA_DB_PATH", "")
	t.Setenv("MONETA_TZ", "")
	t.Setenv("MONETA_LOG_LEVEL", "")
	t.Setenv("MONETA_BALANCE_CACHE_SIZE", "")
	t.Setenv("MONETA_BALANCE_CACHE_TTL", "")

	cfg := Load()
	if cfg.DBPath != "./data/moneta.db" {
		t.Errorf("DBPath = %q, want ./data/moneta.db", cfg.DBPath)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
	if cfg.BalanceCacheSize != 256 {
		t.Errorf("BalanceCacheSize = %d, want 256", cfg.BalanceCacheSize)
	}
	if cfg.BalanceCacheTTL != 5*time.Minute {
		t.Errorf("BalanceCacheTTL = %v, want 5m", cfg.BalanceCacheTTL)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("MONETA_DB_PATH", "/tmp/ledger.db")
	t.Setenv("MONETA_TZ", "Europe/Rome")
	t.Setenv("MONETA_LOG_LEVEL", "debug")
	t.Setenv("MONETA_BALANCE_CACHE_SIZE", "64")
	t.Setenv("MONETA_BALANCE_CACHE_TTL", "30s")

	cfg := Load()
	if cfg.DBPath != "/tmp/ledger.db" {
		t.Errorf("DBPath = %q, want /tmp/ledger.db", cfg.DBPath)
	}
	if cfg.Timezone != "Europe/Rome" {
		t.Errorf("Timezone = %q, want Europe/Rome", cfg.Timezone)
	}
	if cfg.BalanceCacheSize != 64 {
		t.Errorf("BalanceCacheSize = %d, want 64", cfg.BalanceCacheSize)
	}
	if cfg.BalanceCacheTTL != 30*time.Second {
		t.Errorf("BalanceCacheTTL = %v, want 30s", cfg.BalanceCacheTTL)
	}
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("MONETA_BALANCE_CACHE_SIZE", "lots")
	t.Setenv("MONETA_BALANCE_CACHE_TTL", "soon")

	cfg := Load()
	if cfg.BalanceCacheSize != 256 {
		t.Errorf("BalanceCacheSize = %d, want default 256", cfg.BalanceCacheSize)
	}
	if cfg.BalanceCacheTTL != 5*time.Minute {
		t.Errorf("BalanceCacheTTL = %v, want default 5m", cfg.BalanceCacheTTL)
	}
}
