package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

type LoggerConfig struct {
	Level          string                 `json:"level,omitempty" validate:"oneof=debug info warn error"`
	Format         string                 `json:"format,omitempty" validate:"oneof=json console"`
	TimeField      string                 `json:"timeField,omitempty"`
	TimeFormat     string                 `json:"timeFormat,omitempty" validate:"oneof=rfc3339 rfc3339nano unix unix_ms"`
	ServiceName    string                 `json:"serviceName,omitempty"`
	ServiceVersion string                 `json:"serviceVersion,omitempty"`
	Env            string                 `json:"env,omitempty" validate:"oneof=dev staging prod"`
	WithCaller     bool                   `json:"withCaller,omitempty"`
	Stacktrace     bool                   `json:"stacktrace,omitempty"`
	Fields         map[string]interface{} `json:"fields,omitempty"`
}

func New(logg *LoggerConfig) (logger zerolog.Logger, err error) {
	logg.setDefaults()

	v := validator.New()
	if err = v.Struct(logg); err != nil {
		return logger, fmt.Errorf("logger config validation error: %w", err)
	}

	// apply time settings from config
	zerolog.TimestampFieldName = logg.TimeField
	zerolog.TimeFieldFormat = logg.TimeFormat

	base := func(w io.Writer) zerolog.Logger {
		return zerolog.New(w).
			With().
			Timestamp().
			Str("service", logg.ServiceName).
			Str("version", logg.ServiceVersion).
			Str("env", logg.Env).
			Logger()
	}

	switch logg.Env {
	case "prod", "staging":
		// production-like environments: JSON logs only, stdout is king
		logger = base(os.Stdout)

	case "dev":
		consoleWriter := zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: logg.TimeFormat,
		}
		if logg.Level == "debug" {
			// development + debug: console for humans, file for full history
			logPath := "logs/debug.log"
			if mkErr := os.MkdirAll(filepath.Dir(logPath), 0755); mkErr == nil {
				if file, ferr := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666); ferr == nil {
					logger = base(zerolog.MultiLevelWriter(consoleWriter, file))
					break
				}
			}
			// fallback to console only if the file cannot be opened
			logger = base(consoleWriter)
		} else {
			logger = base(consoleWriter)
		}
	}

	if logg.WithCaller {
		logger = logger.With().Caller().Logger()
	}
	if logg.Stacktrace {
		logger = logger.With().Stack().Logger()
	}
	if len(logg.Fields) > 0 {
		logger = logger.With().Fields(logg.Fields).Logger()
	}

	// set log level globally (important: must be after ParseLevel)
	level, err := zerolog.ParseLevel(logg.Level)
	if err != nil {
		return logger, err
	}
	zerolog.SetGlobalLevel(level)

	return logger, nil
}

func (c *LoggerConfig) setDefaults() {
	if c.Env == "" {
		c.Env = "prod"
	}

	// level defaults depend on environment
	if c.Level == "" {
		if c.Env == "dev" {
			c.Level = "debug"
		} else {
			c.Level = "info"
		}
	}

	if c.Format == "" {
		if c.Env == "dev" {
			c.Format = "console"
		} else {
			c.Format = "json"
		}
	}

	if c.TimeField == "" {
		c.TimeField = "ts"
	}
	if c.TimeFormat == "" {
		c.TimeFormat = "rfc3339nano"
	}

	if !c.WithCaller && c.Env == "dev" {
		c.WithCaller = true
	}
	if !c.Stacktrace && c.Env != "dev" {
		c.Stacktrace = true
	}

	if c.ServiceName == "" {
		c.ServiceName = "hockey-stats-service"
	}
	if c.ServiceVersion == "" {
		c.ServiceVersion = "0.1.0"
	}

	if c.Fields == nil {
		c.Fields = make(map[string]interface{})
	}
}
