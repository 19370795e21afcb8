package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where rmfile looks for its optional configuration
const DefaultPath = "/etc/rmfile/config.yaml"

type LoggingCfg struct {
	Enabled      bool   `yaml:"enabled" json:"enabled"`             // Off unless the operator opts in
	File         string `yaml:"file" json:"file"`                   // Log file path
	RotationDays int    `yaml:"rotation_days" json:"rotation_days"` // Days to keep logs before rotation
}

type HistoryCfg struct {
	Enabled       bool   `yaml:"enabled" json:"enabled"`               // Record every invocation to SQLite
	DatabasePath  string `yaml:"database_path" json:"database_path"`   // Path to SQLite database for removal history
	RetentionDays int    `yaml:"retention_days" json:"retention_days"` // Prune records older than this (0 = keep forever)
}

type MetricsCfg struct {
	TextfilePath   string `yaml:"textfile_path" json:"textfile_path"`     // node_exporter textfile collector output
	PushgatewayURL string `yaml:"pushgateway_url" json:"pushgateway_url"` // Optional Prometheus Pushgateway
	Job            string `yaml:"job" json:"job"`                         // Pushgateway job name
}

type SafetyCfg struct {
	Enabled        bool     `yaml:"enabled" json:"enabled"`
	AllowedRoots   []string `yaml:"allowed_roots" json:"allowed_roots"`
	ProtectedPaths []string `yaml:"protected_paths" json:"protected_paths"`
}

type Config struct {
	Logging LoggingCfg `yaml:"logging" json:"logging"`
	History HistoryCfg `yaml:"history" json:"history"`
	Metrics MetricsCfg `yaml:"metrics" json:"metrics"`
	Safety  SafetyCfg  `yaml:"safety" json:"safety"`
}

var (
	errInvalidPath  = errors.New("path must be absolute")
	errNegativeDays = errors.New("day count cannot be negative")
)

func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	cfg, err := decode(f)
	if err != nil {
		return nil, err
	}
	if err := cfg.validateAndDefault(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOptional behaves like Load but returns defaults when the file does not exist
func LoadOptional(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Default returns the configuration used when no file is present
func Default() *Config {
	cfg := &Config{}
	// Empty config cannot fail validation
	_ = cfg.validateAndDefault()
	return cfg
}

func decode(r io.Reader) (*Config, error) {
	cfg := &Config{}
	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return cfg, nil
}

func (c *Config) validateAndDefault() error {
	if c.Logging.File == "" {
		c.Logging.File = "/var/log/rmfile/rmfile.log"
	}
	if c.Logging.RotationDays <= 0 {
		c.Logging.RotationDays = 30
	}

	if c.History.DatabasePath == "" {
		c.History.DatabasePath = "/var/lib/rmfile/history.db"
	}
	if c.History.RetentionDays < 0 {
		return fmt.Errorf("history.retention_days: %w", errNegativeDays)
	}

	if c.Metrics.Job == "" {
		c.Metrics.Job = "rmfile"
	}

	var err error
	if c.Logging.File, err = cleanAbsolute(c.Logging.File); err != nil {
		return fmt.Errorf("logging.file: %w", err)
	}
	if c.History.DatabasePath, err = cleanAbsolute(c.History.DatabasePath); err != nil {
		return fmt.Errorf("history.database_path: %w", err)
	}
	if c.Metrics.TextfilePath != "" {
		if c.Metrics.TextfilePath, err = cleanAbsolute(c.Metrics.TextfilePath); err != nil {
			return fmt.Errorf("metrics.textfile_path: %w", err)
		}
	}

	roots := make([]string, 0, len(c.Safety.AllowedRoots))
	for _, r := range c.Safety.AllowedRoots {
		cr, err := cleanAbsolute(r)
		if err != nil {
			return fmt.Errorf("safety.allowed_roots: %w", err)
		}
		roots = append(roots, cr)
	}
	c.Safety.AllowedRoots = roots

	protected := make([]string, 0, len(c.Safety.ProtectedPaths))
	for _, p := range c.Safety.ProtectedPaths {
		cp, err := cleanAbsolute(p)
		if err != nil {
			return fmt.Errorf("safety.protected_paths: %w", err)
		}
		protected = append(protected, cp)
	}
	c.Safety.ProtectedPaths = protected

	return nil
}

func cleanAbsolute(p string) (string, error) {
	if p == "" {
		return "", errInvalidPath
	}
	cp := filepath.Clean(p)
	if !filepath.IsAbs(cp) {
		return "", fmt.Errorf("%w: %s", errInvalidPath, p)
	}
	return cp, nil
}

// LoggingEnabled reports whether the file logger should be opened
func (c *Config) LoggingEnabled() bool {
	return c.Logging.Enabled
}
