// Package config loads and validates the overlay's tunable parameters:
// timeouts, retry budgets, the successor list size, and the ambient
// logging/telemetry configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"chorddht/internal/chorderr"
)

// MinPeriodicInterval and MaxPeriodicInterval bound periodic_interval_ms,
// per the specification (500 <= T <= 300000).
const (
	MinPeriodicInterval = 500 * time.Millisecond
	MaxPeriodicInterval = 300000 * time.Millisecond
)

// FileLoggerConfig configures lumberjack-backed file logging.
type FileLoggerConfig struct {
	Path       string `yaml:"path"`
	MaxSize    int    `yaml:"maxSize"`
	MaxBackups int    `yaml:"maxBackups"`
	MaxAge     int    `yaml:"maxAge"`
	Compress   bool   `yaml:"compress"`
}

// LoggerConfig configures the zap-backed structured logger.
type LoggerConfig struct {
	Level    string           `yaml:"level"`
	Encoding string           `yaml:"encoding"`
	Mode     string           `yaml:"mode"`
	File     FileLoggerConfig `yaml:"file"`
}

// TracingConfig configures the OpenTelemetry tracer provider used to trace
// lookup chains across the ring.
type TracingConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Exporter string `yaml:"exporter"`
	Endpoint string `yaml:"endpoint"`
}

// TelemetryConfig is the top-level telemetry section.
type TelemetryConfig struct {
	Tracing TracingConfig `yaml:"tracing"`
}

// DHTConfig holds the Chord protocol parameters enumerated in the
// specification's external-interfaces section.
type DHTConfig struct {
	MaxNodeInitRetries    int           `yaml:"maxNodeInitRetries"`
	MaxFilePublishRetries int           `yaml:"maxFilePublishRetries"`
	PeriodicInterval      time.Duration `yaml:"periodicInterval"`
	MaxSuccessorNumber    int           `yaml:"maxSuccessorNumber"`
	RPCTimeout            time.Duration `yaml:"rpcTimeout"`
	TransportMaxRetries   int           `yaml:"transportMaxRetries"`
}

// Config is the full, parsed configuration document.
type Config struct {
	Logger    LoggerConfig    `yaml:"logger"`
	DHT       DHTConfig       `yaml:"dht"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// Default returns the configuration implied by the specification's default
// values, used whenever no config file is supplied.
func Default() Config {
	return Config{
		Logger: LoggerConfig{Level: "info", Encoding: "console", Mode: "stdout"},
		DHT: DHTConfig{
			MaxNodeInitRetries:    3,
			MaxFilePublishRetries: 5,
			PeriodicInterval:      2500 * time.Millisecond,
			MaxSuccessorNumber:    3,
			RPCTimeout:            5000 * time.Millisecond,
			TransportMaxRetries:   5,
		},
		Telemetry: TelemetryConfig{Tracing: TracingConfig{Enabled: false, Exporter: "stdout"}},
	}
}

// Load reads and parses a YAML configuration file, starting from Default()
// so that unset fields keep their specified defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ApplyEnvOverrides overrides selected fields from environment variables,
// letting containerized deployments configure nodes without a file.
func (cfg *Config) ApplyEnvOverrides() {
	if v := os.Getenv("CHORD_PERIODIC_INTERVAL_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil {
			cfg.DHT.PeriodicInterval = time.Duration(ms) * time.Millisecond
		}
	}
	if v := os.Getenv("CHORD_RPC_TIMEOUT_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil {
			cfg.DHT.RPCTimeout = time.Duration(ms) * time.Millisecond
		}
	}
	if v := os.Getenv("CHORD_MAX_SUCCESSORS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.DHT.MaxSuccessorNumber = n
		}
	}
	if v := os.Getenv("CHORD_LOG_LEVEL"); v != "" {
		cfg.Logger.Level = v
	}
	if v := os.Getenv("CHORD_LOG_MODE"); v != "" {
		cfg.Logger.Mode = v
	}
	if v := os.Getenv("CHORD_TRACE_ENABLED"); v != "" {
		cfg.Telemetry.Tracing.Enabled = strings.EqualFold(v, "true") || v == "1"
	}
}

// Validate performs structural and semantic validation. PeriodicInterval
// out of [MinPeriodicInterval, MaxPeriodicInterval] is reported via the
// chorderr.InvalidTimeout kind, exactly as the specification requires.
func (cfg *Config) Validate() error {
	if cfg.DHT.PeriodicInterval < MinPeriodicInterval || cfg.DHT.PeriodicInterval > MaxPeriodicInterval {
		return chorderr.New(chorderr.InvalidTimeout,
			fmt.Sprintf("periodic_interval_ms must be in [%d, %d], got %d",
				MinPeriodicInterval.Milliseconds(), MaxPeriodicInterval.Milliseconds(),
				cfg.DHT.PeriodicInterval.Milliseconds()))
	}
	if cfg.DHT.MaxSuccessorNumber <= 0 {
		return fmt.Errorf("dht.maxSuccessorNumber must be > 0")
	}
	if cfg.DHT.RPCTimeout <= 0 {
		return fmt.Errorf("dht.rpcTimeout must be > 0")
	}
	if cfg.DHT.MaxNodeInitRetries <= 0 {
		return fmt.Errorf("dht.maxNodeInitRetries must be > 0")
	}
	if cfg.DHT.MaxFilePublishRetries <= 0 {
		return fmt.Errorf("dht.maxFilePublishRetries must be > 0")
	}
	switch cfg.Logger.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logger.level: %s", cfg.Logger.Level)
	}
	if cfg.Telemetry.Tracing.Enabled {
		switch cfg.Telemetry.Tracing.Exporter {
		case "stdout", "otlp":
		default:
			return fmt.Errorf("invalid telemetry.tracing.exporter: %s", cfg.Telemetry.Tracing.Exporter)
		}
	}
	return nil
}
