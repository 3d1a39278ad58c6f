package config

import (
	"github.com/rinkstats/hockey-stats-service/internal/logger"
)

type Config struct {
	Logger   logger.LoggerConfig `mapstructure:"logger"`
	Postgres PostgresConfig      `mapstructure:"postgres"`
	Server   ServerConfig        `mapstructure:"server"`
	Pipeline PipelineConfig      `mapstructure:"pipeline"`
}

// PostgresConfig carries connection and pool tuning parameters.
// Durations are plain seconds to keep the YAML flat.
type PostgresConfig struct {
	Host              string `mapstructure:"host"`
	Port              int    `mapstructure:"port"`
	User              string `mapstructure:"user"`
	Password          string `mapstructure:"password"`
	DBName            string `mapstructure:"dbname"`
	SSLMode           string `mapstructure:"sslmode"`
	MaxConns          int32  `mapstructure:"max_conns"`
	MinConns          int32  `mapstructure:"min_conns"`
	MaxConnLifetime   int    `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime   int    `mapstructure:"max_conn_idle_time"`
	HealthCheckPeriod int    `mapstructure:"health_check_period"`
}

type ServerConfig struct {
	Port        int `mapstructure:"port"`
	MetricsPort int `mapstructure:"metrics_port"`
}

// PipelineConfig bounds reprocessing fan-out and per-player unit time.
type PipelineConfig struct {
	MaxWorkers int `mapstructure:"max_workers"`
	// UnitTimeout is the per-player reprocess budget in seconds.
	UnitTimeout int `mapstructure:"unit_timeout"`
}
