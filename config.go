package amdago

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
)

// ErrConfigValidation is returned when configuration validation fails
var ErrConfigValidation = errors.New("configuration validation failed")

// Config represents the amdago configuration
type Config struct {
	Service ServiceConfig `yaml:"service"`
	Table   TableConfig   `yaml:"table"`
	Session SessionConfig `yaml:"session"`
	Export  ExportConfig  `yaml:"export"`
}

// ServiceConfig holds AMDA web service connection settings
type ServiceConfig struct {
	EntryPoint string `yaml:"entry_point"`
	Timeout    int    `yaml:"timeout"` // seconds
	UserID     string `yaml:"user_id"` // anonymous access when empty
}

// TableConfig holds PDS table loading settings
type TableConfig struct {
	Separator string `yaml:"separator"`
}

// SessionConfig holds local session cache settings
type SessionConfig struct {
	Path string `yaml:"path"`
}

// ExportConfig holds NetCDF export settings
type ExportConfig struct {
	Prefix string `yaml:"prefix"`
	Dir    string `yaml:"dir"`
}

// HTTPTimeout returns the service timeout as a duration
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.Service.Timeout) * time.Second
}

// LoadConfig loads configuration from the specified file
func LoadConfig(configPath string) (*Config, error) {
	// Load .env files first
	err := loadEnvFiles()
	if err != nil {
		return nil, fmt.Errorf("failed to load environment files: %w", err)
	}

	// Check if config file exists
	_, err = os.Stat(configPath)
	if os.IsNotExist(err) {
		// Return default configuration if file doesn't exist
		config := getDefaultConfig()
		expandConfigEnvVars(config)

		return config, nil
	}

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse YAML with strict mode to detect unknown fields
	var config Config

	err = yaml.UnmarshalWithOptions(data, &config, yaml.Strict())
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Validate the configuration
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	// Apply defaults for missing values
	applyDefaults(&config)

	// Expand environment variables
	expandConfigEnvVars(&config)

	return &config, nil
}

// validateConfig validates the configuration for common errors and inconsistencies
func validateConfig(config *Config) error {
	if config.Service.Timeout < 0 {
		return fmt.Errorf("%w: service.timeout must be non-negative, got %d", ErrConfigValidation, config.Service.Timeout)
	}

	if len(config.Table.Separator) > 1 {
		return fmt.Errorf("%w: table.separator must be a single character, got %q", ErrConfigValidation, config.Table.Separator)
	}

	return nil
}

// getDefaultConfig returns the default configuration
func getDefaultConfig() *Config {
	return &Config{
		Service: ServiceConfig{
			EntryPoint: "http://amda.irap.omp.eu/php/rest/",
			Timeout:    30,
		},
		Table: TableConfig{
			Separator: " ",
		},
		Session: SessionConfig{
			Path: "amda.db",
		},
		Export: ExportConfig{
			Prefix: "dataset",
			Dir:    ".",
		},
	}
}

// applyDefaults applies default values to missing configuration fields
func applyDefaults(config *Config) {
	if config.Service.EntryPoint == "" {
		config.Service.EntryPoint = "http://amda.irap.omp.eu/php/rest/"
	}

	if config.Service.Timeout == 0 {
		config.Service.Timeout = 30
	}

	if config.Table.Separator == "" {
		config.Table.Separator = " "
	}

	if config.Session.Path == "" {
		config.Session.Path = "amda.db"
	}

	if config.Export.Prefix == "" {
		config.Export.Prefix = "dataset"
	}

	if config.Export.Dir == "" {
		config.Export.Dir = "."
	}
}

// loadEnvFiles loads environment variables from .env files
func loadEnvFiles() error {
	// Try to load .env file from current directory
	if fileExists(".env") {
		err := godotenv.Load(".env")
		if err != nil {
			return fmt.Errorf("failed to load .env file: %w", err)
		}
	}

	return nil
}

// expandEnvVars expands environment variables in the format ${VAR} or $VAR
func expandEnvVars(s string) string {
	// Pattern for ${VAR} format
	re1 := regexp.MustCompile(`\$\{([^}]+)\}`)
	s = re1.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1] // Remove ${ and }
		return os.Getenv(varName)
	})

	// Pattern for $VAR format (word boundaries)
	re2 := regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)`)
	s = re2.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[1:] // Remove $
		return os.Getenv(varName)
	})

	return s
}

// expandConfigEnvVars recursively expands environment variables in config
func expandConfigEnvVars(config *Config) {
	config.Service.EntryPoint = expandEnvVars(config.Service.EntryPoint)
	config.Service.UserID = expandEnvVars(config.Service.UserID)
	config.Session.Path = expandEnvVars(config.Session.Path)
	config.Export.Dir = expandEnvVars(config.Export.Dir)
}

// fileExists checks if a file exists
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
