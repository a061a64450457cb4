// Package config loads the stack configuration using viper
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config is the top-level configuration. It maps to the `resea:` root key
// in YAML; environment variables use the RESEA_ prefix (e.g.,
// RESEA_ENDPOINT_MAX_RX_QUEUE)
type Config struct {
	Log      LogConfig      `mapstructure:"log"`
	Endpoint EndpointConfig `mapstructure:"endpoint"`
	Echo     EchoConfig     `mapstructure:"echo"`
}

// LogConfig configures the logger
type LogConfig struct {
	Level  string     `mapstructure:"level"`  // trace | debug | info | warn | error
	Format string     `mapstructure:"format"` // text | json
	File   FileConfig `mapstructure:"file"`
}

// FileConfig configures the rotated log file written next to stderr
type FileConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Path       string `mapstructure:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	MaxBackups int    `mapstructure:"max_backups"`
	Compress   bool   `mapstructure:"compress"`
}

// EndpointConfig bounds the queues of datagram endpoints. Zero means
// unbounded
type EndpointConfig struct {
	MaxTxQueue int `mapstructure:"max_tx_queue"`
	MaxRxQueue int `mapstructure:"max_rx_queue"`
}

// EchoConfig configures the pcap echo sample
type EchoConfig struct {
	Port    uint16 `mapstructure:"port"`
	Input   string `mapstructure:"input"`
	Output  string `mapstructure:"output"`
	SnapLen uint32 `mapstructure:"snaplen"`
}

type configRoot struct {
	Resea Config `mapstructure:"resea"`
}

// Load loads configuration from the YAML file at path. An empty path loads
// the defaults, still subject to environment overrides
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Key "resea.log.level" maps to env "RESEA_LOG_LEVEL"
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	var root configRoot
	if err := v.Unmarshal(&root); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg := root.Resea

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("resea.log.level", "info")
	v.SetDefault("resea.log.format", "text")
	v.SetDefault("resea.log.file.enabled", false)
	v.SetDefault("resea.log.file.path", "/var/log/resea/resea.log")
	v.SetDefault("resea.log.file.max_size_mb", 100)
	v.SetDefault("resea.log.file.max_age_days", 30)
	v.SetDefault("resea.log.file.max_backups", 5)
	v.SetDefault("resea.log.file.compress", true)

	v.SetDefault("resea.endpoint.max_tx_queue", 0)
	v.SetDefault("resea.endpoint.max_rx_queue", 0)

	v.SetDefault("resea.echo.port", 7)
	v.SetDefault("resea.echo.input", "")
	v.SetDefault("resea.echo.output", "echo.pcap")
	v.SetDefault("resea.echo.snaplen", 65535)
}

// Validate checks the configuration for values the stack can't run with
func (c *Config) Validate() error {
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("unsupported log format: %s (must be text or json)", c.Log.Format)
	}

	if c.Log.File.Enabled && c.Log.File.Path == "" {
		return fmt.Errorf("log file output requires 'path'")
	}

	if c.Endpoint.MaxTxQueue < 0 || c.Endpoint.MaxRxQueue < 0 {
		return fmt.Errorf("endpoint queue bounds must not be negative (tx %d, rx %d)", c.Endpoint.MaxTxQueue, c.Endpoint.MaxRxQueue)
	}

	return nil
}
