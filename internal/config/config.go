// Package config loads and validates the scanner's configuration document:
// a typed record enumerating every recognized key from spec §6, rejecting
// anything unknown.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// LoggingConfig mirrors the Python common.logging_config.LoggingConfig
// model: level/format/optional file, case-insensitive on input.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

var validLevels = map[string]bool{"DEBUG": true, "INFO": true, "WARNING": true, "ERROR": true}
var validFormats = map[string]bool{"simple": true, "detailed": true, "json": true}

func (l *LoggingConfig) normalizeAndValidate() error {
	if l.Level == "" {
		l.Level = "INFO"
	}
	l.Level = strings.ToUpper(l.Level)
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level: invalid value %q", l.Level)
	}

	if l.Format == "" {
		l.Format = "json"
	}
	l.Format = strings.ToLower(l.Format)
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format: invalid value %q", l.Format)
	}
	return nil
}

// ScannerConfig mirrors the recognized scanner.* keys from spec §6.
type ScannerConfig struct {
	TargetMediaPath string `mapstructure:"target_media_path"`
	WorkerThreads   int    `mapstructure:"worker_threads"`
	WorkerProcesses int    `mapstructure:"worker_processes"`
	QueueMaxSize    int    `mapstructure:"queue_maxsize"`
	BatchSize       int    `mapstructure:"batch_size"`
	UseFFprobe      bool   `mapstructure:"use_ffprobe"`
	UseExiftool     bool   `mapstructure:"use_exiftool"`

	// DatabasePath is not enumerated in spec §6's table directly but is
	// required to locate the catalog output named in §6 ("Catalog
	// output... at the configured path"); it is validated the same way.
	DatabasePath string `mapstructure:"database_path"`

	// SidecarToleranceSeconds configures the C6 timestamp-fallback window
	// (spec §4.6 step 2, default 1 second, "configurable").
	SidecarToleranceSeconds int `mapstructure:"sidecar_tolerance_seconds"`

	// MaxDecodePixels is loaded from config but not read by any extractor;
	// resolution extraction reads only image headers whatever the size.
	MaxDecodePixels int64 `mapstructure:"max_decode_pixels"`

	// Strict makes a scan with at least one recorded per-file error exit
	// non-zero. It is set only through this config key; there is no
	// command-line flag for it.
	Strict bool `mapstructure:"strict"`

	MinCPUWorkers int `mapstructure:"min_cpu_workers"`
	MinIOWorkers  int `mapstructure:"min_io_workers"`
}

// Config is the root configuration record. Unknown top-level sections or
// fields are rejected by Load via viper's strict unmarshal.
type Config struct {
	Logging LoggingConfig `mapstructure:"logging"`
	Scanner ScannerConfig `mapstructure:"scanner"`
}

// defaults mirrors the Pydantic field defaults in the Python
// TakeoutExtractorConfig/LoggingConfig models, adapted to the scanner's
// own fields.
func defaults() Config {
	return Config{
		Logging: LoggingConfig{Level: "INFO", Format: "json"},
		Scanner: ScannerConfig{
			WorkerThreads:           4,
			WorkerProcesses:         0, // 0 means auto-detect, see autodetect.go
			QueueMaxSize:            1000,
			BatchSize:               100,
			SidecarToleranceSeconds: 1,
			MaxDecodePixels:         64_000_000,
			MinCPUWorkers:           1,
			MinIOWorkers:            3,
		},
	}
}

// Load reads the configuration document at path (format auto-detected by
// viper from its extension: yaml, json, toml), validates it, and expands
// any ${VAR} placeholders in path-like fields.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	cfg := defaults()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	// UnmarshalExact rejects keys that don't map onto the struct,
	// implementing the "unknown top-level sections or fields are
	// rejected" requirement from spec §6.
	if err := v.UnmarshalExact(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Logging.normalizeAndValidate(); err != nil {
		return nil, err
	}
	if err := cfg.Scanner.validate(); err != nil {
		return nil, err
	}

	cfg.Logging.File = ExpandPathVariables(cfg.Logging.File)
	cfg.Scanner.TargetMediaPath = ExpandPathVariables(cfg.Scanner.TargetMediaPath)
	cfg.Scanner.DatabasePath = ExpandPathVariables(cfg.Scanner.DatabasePath)

	cfg.Scanner.applyAutoDetect()

	return &cfg, nil
}

func (s *ScannerConfig) validate() error {
	if s.TargetMediaPath == "" {
		return fmt.Errorf("scanner.target_media_path is required")
	}
	if s.DatabasePath == "" {
		return fmt.Errorf("scanner.database_path is required")
	}
	if s.WorkerThreads < 1 {
		return fmt.Errorf("scanner.worker_threads must be >= 1")
	}
	if s.WorkerProcesses < 0 {
		return fmt.Errorf("scanner.worker_processes must be >= 1 (or 0 for auto-detect)")
	}
	if s.QueueMaxSize < 1 {
		return fmt.Errorf("scanner.queue_maxsize must be >= 1")
	}
	if s.BatchSize < 1 {
		return fmt.Errorf("scanner.batch_size must be >= 1")
	}
	return nil
}
