package config

import (
	"os"
	"runtime"
	"strconv"

	"statdesc/internal/errors"

	"github.com/joho/godotenv"
)

// Config represents the complete application configuration
type Config struct {
	Output   OutputConfig
	Analysis AnalysisConfig
	Server   ServerConfig
	LogLevel string
}

// OutputConfig controls which artifacts an export writes
type OutputConfig struct {
	Dir          string
	Charts       bool
	HTML         bool
	MaxTableRows int
}

// AnalysisConfig holds analysis settings
type AnalysisConfig struct {
	Workers int
}

// ServerConfig holds HTTP API settings
type ServerConfig struct {
	Port        string
	MaxUploadMB int
	UploadDir   string
}

// MaxUploadBytes is the upload limit in bytes
func (s ServerConfig) MaxUploadBytes() int64 {
	return int64(s.MaxUploadMB) << 20
}

// Load reads an optional .env file, then environment variables, and
// validates the result
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, errors.WithCode(errors.CodeConfigInvalid, errors.Wrap(err, "failed to read .env"))
	}
	return FromEnv()
}

// FromEnv builds the configuration from environment variables only
func FromEnv() (*Config, error) {
	config := &Config{
		Output:   *loadOutputConfig(),
		Analysis: *loadAnalysisConfig(),
		Server:   *loadServerConfig(),
		LogLevel: getEnvOrDefault("LOG_LEVEL", "INFO"),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func loadOutputConfig() *OutputConfig {
	return &OutputConfig{
		Dir:          getEnvOrDefault("STATDESC_OUTPUT_DIR", "./output"),
		Charts:       getEnvBoolOrDefault("STATDESC_CHARTS", true),
		HTML:         getEnvBoolOrDefault("STATDESC_HTML", true),
		MaxTableRows: getEnvIntOrDefault("STATDESC_MAX_TABLE_ROWS", 20),
	}
}

func loadAnalysisConfig() *AnalysisConfig {
	return &AnalysisConfig{
		Workers: getEnvIntOrDefault("STATDESC_WORKERS", runtime.NumCPU()),
	}
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:        getEnvOrDefault("STATDESC_API_PORT", "8080"),
		MaxUploadMB: getEnvIntOrDefault("STATDESC_MAX_UPLOAD_MB", 50),
		UploadDir:   getEnvOrDefault("STATDESC_UPLOAD_DIR", ""),
	}
}

func validateConfig(config *Config) error {
	if config.Output.Dir == "" {
		return errors.ConfigInvalid("output directory is required")
	}
	if config.Output.MaxTableRows <= 0 {
		return errors.ConfigInvalid("STATDESC_MAX_TABLE_ROWS must be positive")
	}
	if config.Analysis.Workers <= 0 {
		return errors.ConfigInvalid("STATDESC_WORKERS must be positive")
	}
	port, err := strconv.Atoi(config.Server.Port)
	if err != nil || port <= 0 || port > 65535 {
		return errors.ConfigInvalid("STATDESC_API_PORT must be a TCP port")
	}
	if config.Server.MaxUploadMB <= 0 {
		return errors.ConfigInvalid("STATDESC_MAX_UPLOAD_MB must be positive")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
