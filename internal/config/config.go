// internal/config/config.go
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	RabbitMQ struct {
		URL string `yaml:"url"`
	} `yaml:"rabbitmq"`

	Database struct {
		URL string `yaml:"url"`
	} `yaml:"database"`

	Fiken struct {
		BaseURL     string `yaml:"base_url"`
		APIToken    string `yaml:"api_token"`
		CompanySlug string `yaml:"company_slug"`
	} `yaml:"fiken"`

	HTTP struct {
		Addr string `yaml:"addr"`
	} `yaml:"http"`

	Auth struct {
		JWTSecret string `yaml:"jwt_secret"`
	} `yaml:"auth"`
}

func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.applyEnv()
	if cfg.HTTP.Addr == "" {
		cfg.HTTP.Addr = ":8080"
	}
	if cfg.Fiken.BaseURL == "" {
		cfg.Fiken.BaseURL = "https://api.fiken.no/api/v2"
	}
	return cfg, nil
}

// applyEnv lets deployment environments override file values, mainly
// for secrets that should not live in config.yaml.
func (c *Config) applyEnv() {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Database.URL = v
	}
	if v := os.Getenv("RABBITMQ_URL"); v != "" {
		c.RabbitMQ.URL = v
	}
	if v := os.Getenv("FIKEN_API_TOKEN"); v != "" {
		c.Fiken.APIToken = v
	}
	if v := os.Getenv("FIKEN_COMPANY_SLUG"); v != "" {
		c.Fiken.CompanySlug = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		c.Auth.JWTSecret = v
	}
}
