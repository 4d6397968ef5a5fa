package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formbuilder/pkg/codec"
)

// Config holds the formbuilder configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Designer DesignerConfig `yaml:"designer"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Addr            string `yaml:"addr"`
	ReadTimeoutSec  int    `yaml:"read_timeout_sec"`
	WriteTimeoutSec int    `yaml:"write_timeout_sec"`
	ShutdownSec     int    `yaml:"shutdown_timeout_sec"`
	EventBuffer     int    `yaml:"event_buffer"` // per websocket subscriber
}

// DesignerConfig holds settings shared by the designer front ends.
type DesignerConfig struct {
	Locale       string `yaml:"locale"`
	FormFile     string `yaml:"form_file"`   // loaded on start when present
	ExportPath   string `yaml:"export_path"` // extension picks the format
	TemplatesDir string `yaml:"templates_dir"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Env   string `yaml:"env"`   // prod, dev, local (default: dev)
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// Load reads configuration from a YAML file. An empty path yields the
// defaults. ${VAR} and ${VAR:-default} are expanded from the environment.
func Load(path string) (Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		data = expandEnvVars(data)
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadDotEnv loads KEY=VALUE pairs from the given files into the process
// environment without overriding variables that are already set. Missing
// files are skipped.
func LoadDotEnv(paths ...string) error {
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", path, err)
		}
	}
	return nil
}

// GetEnv returns the current environment from FORMBUILDER_ENV, defaulting to
// "dev".
func GetEnv() string {
	if env := os.Getenv("FORMBUILDER_ENV"); env != "" {
		return env
	}
	return "dev"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8080"
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.HTTP.EventBuffer <= 0 {
		c.HTTP.EventBuffer = 32
	}
	if c.Designer.Locale == "" {
		c.Designer.Locale = "en"
	}
	if c.Designer.ExportPath == "" {
		c.Designer.ExportPath = codec.DefaultFileName
	}
	if c.Logging.Env == "" {
		c.Logging.Env = GetEnv()
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.HTTP.Addr) == "" {
		return fmt.Errorf("http.addr is required")
	}
	if _, err := language.Parse(c.Designer.Locale); err != nil {
		return fmt.Errorf("designer.locale %q is not a language tag: %w", c.Designer.Locale, err)
	}
	if _, err := codec.FormatFromPath(c.Designer.ExportPath); err != nil {
		return fmt.Errorf("designer.export_path: %w", err)
	}
	switch c.Logging.Env {
	case "prod", "dev", "local":
	default:
		return fmt.Errorf("logging.env must be prod, dev or local, got %q", c.Logging.Env)
	}
	return nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1])
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
