// Package config loads service settings from defaults, an optional YAML file
// and the environment, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"e5_server/embedding/openai"

	"gopkg.in/yaml.v3"
)

const (
	BackendOpenAI = "openai"
	BackendGRPC   = "grpc"
)

// Config holds all service configuration.
type Config struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	// GRPCPort exposes the loaded model over gRPC as well; 0 disables it.
	GRPCPort int `yaml:"grpc_port"`

	Model ModelConfig `yaml:"model"`
	Log   LogConfig   `yaml:"log"`
}

// ModelConfig describes the model and the backend that serves it.
type ModelConfig struct {
	Name string `yaml:"name"`
	// Dimension is checked against the backend at load time; 0 means detect.
	Dimension int `yaml:"dimension"`
	// Backend is "openai" (an OpenAI-compatible embeddings server) or "grpc"
	// (another e5 server).
	Backend string `yaml:"backend"`
	// Endpoint is the backend base URL or gRPC address. The openai backend
	// falls back to a local text-embeddings-inference server when empty.
	Endpoint  string `yaml:"endpoint"`
	APIKeyEnv string `yaml:"api_key_env"`
	// LoadTimeout bounds the startup probe.
	LoadTimeout time.Duration `yaml:"load_timeout"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		Host:     "127.0.0.1",
		Port:     8765,
		GRPCPort: 0,
		Model: ModelConfig{
			Name:        "intfloat/multilingual-e5-large",
			Dimension:   1024,
			Backend:     BackendOpenAI,
			Endpoint:    "",
			APIKeyEnv:   openai.DefaultAPIKeyEnv,
			LoadTimeout: 2 * time.Minute,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads path (when non-empty) over the defaults, then applies
// environment overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("E5_HOST"); v != "" {
		c.Host = v
	}
	if err := envInt("E5_PORT", &c.Port); err != nil {
		return err
	}
	if err := envInt("E5_GRPC_PORT", &c.GRPCPort); err != nil {
		return err
	}
	if v := os.Getenv("E5_MODEL"); v != "" {
		c.Model.Name = v
	}
	if err := envInt("E5_DIMENSION", &c.Model.Dimension); err != nil {
		return err
	}
	if v := os.Getenv("E5_BACKEND"); v != "" {
		c.Model.Backend = v
	}
	if v := os.Getenv("E5_BACKEND_URL"); v != "" {
		c.Model.Endpoint = v
	}
	if v := os.Getenv("E5_API_KEY_ENV"); v != "" {
		c.Model.APIKeyEnv = v
	}
	if v := os.Getenv("E5_LOAD_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid E5_LOAD_TIMEOUT %q: %w", v, err)
		}
		c.Model.LoadTimeout = d
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
	return nil
}

func envInt(name string, dst *int) error {
	v := os.Getenv(name)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", name, v, err)
	}
	*dst = n
	return nil
}

// Validate checks that the configuration can be served.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.GRPCPort < 0 || c.GRPCPort > 65535 {
		return fmt.Errorf("invalid grpc port: %d", c.GRPCPort)
	}
	if c.GRPCPort != 0 && c.GRPCPort == c.Port {
		return fmt.Errorf("grpc port %d collides with http port", c.GRPCPort)
	}
	if c.Model.Name == "" {
		return errors.New("empty model name")
	}
	if c.Model.Dimension < 0 {
		return fmt.Errorf("invalid model dimension: %d", c.Model.Dimension)
	}
	switch c.Model.Backend {
	case BackendOpenAI, BackendGRPC:
	default:
		return fmt.Errorf("unknown model backend: %q", c.Model.Backend)
	}
	if c.Model.Backend == BackendGRPC && c.Model.Endpoint == "" {
		return errors.New("grpc backend requires an endpoint")
	}
	if c.Model.LoadTimeout <= 0 {
		return fmt.Errorf("invalid load timeout: %s", c.Model.LoadTimeout)
	}
	return nil
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// GRPCAddr returns the gRPC listen address, or "" when gRPC is disabled.
func (c *Config) GRPCAddr() string {
	if c.GRPCPort == 0 {
		return ""
	}
	return net.JoinHostPort(c.Host, strconv.Itoa(c.GRPCPort))
}
