package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// MinPort is the minimum valid port number
	MinPort = 1
	// MaxPort is the maximum valid port number
	MaxPort = 65535
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
	App       AppConfig       `yaml:"app"`
	Pipeline  PipelineConfig  `yaml:"pipeline"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Analysis  AnalysisConfig  `yaml:"analysis"`
	OpenAI    OpenAIConfig    `yaml:"openai"`
	Suno      SunoConfig      `yaml:"suno"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level        string `yaml:"level"`
	Format       string `yaml:"format"`
	Output       string `yaml:"output"`
	EnableCaller bool   `yaml:"enable_caller"`
}

// AppConfig holds application metadata
type AppConfig struct {
	Name        string `yaml:"name"`
	Version     string `yaml:"version"`
	Environment string `yaml:"environment"`
}

// PipelineConfig holds processing pipeline settings
type PipelineConfig struct {
	MaxVideoDuration  time.Duration `yaml:"max_video_duration"`
	PollInterval      time.Duration `yaml:"poll_interval"`
	GenerationTimeout time.Duration `yaml:"generation_timeout"`
	UploadDir         string        `yaml:"upload_dir"`
	OutputDir         string        `yaml:"output_dir"`
}

// RateLimitConfig holds per-client admission control settings
type RateLimitConfig struct {
	Window        time.Duration `yaml:"window"`
	MaxRequests   int           `yaml:"max_requests"`
	DebugRequests int           `yaml:"debug_requests"`
}

// AnalysisConfig holds Google Cloud video analysis settings
type AnalysisConfig struct {
	Bucket           string        `yaml:"bucket"`
	OperationTimeout time.Duration `yaml:"operation_timeout"`
}

// OpenAIConfig holds prompt synthesis settings. The API key comes from the
// OPENAI_API_KEY environment variable, not from this file.
type OpenAIConfig struct {
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
}

// SunoConfig holds music generation API settings. The API key comes from
// the SUNO_API_KEY environment variable, not from this file.
type SunoConfig struct {
	BaseURL        string        `yaml:"base_url"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// Load reads and parses the configuration file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port < MinPort || c.Server.Port > MaxPort {
		return fmt.Errorf("invalid server port: %d (must be between %d and %d)", c.Server.Port, MinPort, MaxPort)
	}

	if c.Pipeline.MaxVideoDuration <= 0 {
		return fmt.Errorf("pipeline max_video_duration must be greater than 0")
	}

	if c.Pipeline.PollInterval <= 0 {
		return fmt.Errorf("pipeline poll_interval must be greater than 0")
	}

	if c.Pipeline.GenerationTimeout <= c.Pipeline.PollInterval {
		return fmt.Errorf("pipeline generation_timeout must be greater than poll_interval")
	}

	if c.Pipeline.UploadDir == "" {
		return fmt.Errorf("pipeline upload_dir is required")
	}

	if c.Pipeline.OutputDir == "" {
		return fmt.Errorf("pipeline output_dir is required")
	}

	if c.RateLimit.Window <= 0 {
		return fmt.Errorf("rate_limit window must be greater than 0")
	}

	if c.RateLimit.MaxRequests <= 0 {
		return fmt.Errorf("rate_limit max_requests must be greater than 0")
	}

	if c.RateLimit.DebugRequests <= 0 {
		return fmt.Errorf("rate_limit debug_requests must be greater than 0")
	}

	if c.Analysis.Bucket == "" {
		return fmt.Errorf("analysis bucket is required")
	}

	if c.Suno.BaseURL == "" {
		return fmt.Errorf("suno base_url is required")
	}

	return nil
}
