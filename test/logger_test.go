package test

import (
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	logpkg "github.com/rinkstats/hockey-stats-service/internal/logger"
)

func TestLoggerNew(t *testing.T) {
	tests := []struct {
		name        string
		config      *logpkg.LoggerConfig
		expectError bool
		wantLevel   zerolog.Level
	}{
		{
			name: "valid production environment",
			config: &logpkg.LoggerConfig{
				ServiceName:    "hockey-stats-service",
				ServiceVersion: "1.0.0",
				Env:            "prod",
				Level:          "info",
			},
			expectError: false,
			wantLevel:   zerolog.InfoLevel,
		},
		{
			name: "invalid environment rejected",
			config: &logpkg.LoggerConfig{
				ServiceName: "bad-service",
				Env:         "wrong-env",
				Level:       "debug",
			},
			expectError: true,
		},
		{
			name: "invalid log level rejected",
			config: &logpkg.LoggerConfig{
				ServiceName: "hockey-stats-service",
				Env:         "prod",
				Level:       "loud",
			},
			expectError: true,
		},
		{
			name: "staging uses warn level",
			config: &logpkg.LoggerConfig{
				ServiceName:    "hockey-stats-service",
				ServiceVersion: "2.0.0",
				Env:            "staging",
				Level:          "warn",
			},
			expectError: false,
			wantLevel:   zerolog.WarnLevel,
		},
		{
			name: "dev console without debug",
			config: &logpkg.LoggerConfig{
				ServiceName: "hockey-stats-service",
				Env:         "dev",
				Level:       "info",
			},
			expectError: false,
			wantLevel:   zerolog.InfoLevel,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := logpkg.New(tc.config)
			if tc.expectError {
				assert.NotNil(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.wantLevel, zerolog.GlobalLevel())
		})
	}

	t.Run("debug log file creation", func(t *testing.T) {
		config := &logpkg.LoggerConfig{
			ServiceName: "hockey-stats-service",
			Env:         "dev",
			Level:       "debug",
		}
		_, err := logpkg.New(config)
		assert.NoError(t, err)

		_, statErr := os.Stat("logs/debug.log")
		assert.NoError(t, statErr)

		t.Cleanup(func() {
			if err := os.Remove("logs/debug.log"); err != nil && !os.IsNotExist(err) {
				t.Logf("cleanup failed: %v", err)
			}
		})
	})
}
