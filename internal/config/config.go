// Package config loads optional CLI defaults from a YAML file, the
// way the teacher's migration config loads its operator-facing
// settings, but unmarshals directly via yaml.v3 instead of the
// teacher's hand-rolled line scanner (its config package declares
// gopkg.in/yaml.v3 in go.mod but never actually imports it).
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds CLI defaults that can be overridden by flags.
type Config struct {
	Format string       `yaml:"format"`
	Filter FilterConfig `yaml:"filter"`
	Live   LiveConfig   `yaml:"live"`
	Log    LogConfig    `yaml:"log"`

	path string
}

type FilterConfig struct {
	Databases []uint64 `yaml:"databases"`
	Types     []string `yaml:"types"`
	KeyRegexp string   `yaml:"keyRegexp"`
}

type LiveConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	QPS      int    `yaml:"qps"`
}

type LogConfig struct {
	Dir   string `yaml:"dir"`
	Level string `yaml:"level"`
}

// ValidationError collects configuration issues.
type ValidationError struct {
	Path   string
	Errors []string
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString("invalid configuration")
	if e.Path != "" {
		b.WriteString(": ")
		b.WriteString(e.Path)
	}
	for _, err := range e.Errors {
		b.WriteString("\n - ")
		b.WriteString(err)
	}
	return b.String()
}

// Load reads and validates a YAML config file.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}

	file, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("open config file %s: %w", absPath, err)
	}
	defer file.Close()

	var cfg Config
	if err := yaml.NewDecoder(file).Decode(&cfg); err != nil && err != io.EOF {
		return nil, fmt.Errorf("parse config %s: %w", absPath, err)
	}

	cfg.path = absPath
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyDefaults fills in zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Format == "" {
		c.Format = "json"
	}
	if c.Log.Dir == "" {
		c.Log.Dir = "."
	}
	if c.Log.Level == "" {
		c.Log.Level = "INFO"
	}
}

// Validate ensures the config is usable.
func (c *Config) Validate() error {
	var errs []string

	switch c.Format {
	case "json", "plain", "protocol", "nil":
	default:
		errs = append(errs, fmt.Sprintf("format must be one of json, plain, protocol, nil (got %q)", c.Format))
	}
	if c.Live.Addr != "" && c.Live.QPS < 0 {
		errs = append(errs, "live.qps must be >= 0")
	}
	switch strings.ToUpper(c.Log.Level) {
	case "DEBUG", "INFO", "WARN", "ERROR":
	default:
		errs = append(errs, fmt.Sprintf("log.level must be one of DEBUG, INFO, WARN, ERROR (got %q)", c.Log.Level))
	}

	if len(errs) > 0 {
		return &ValidationError{Path: c.path, Errors: errs}
	}
	return nil
}
