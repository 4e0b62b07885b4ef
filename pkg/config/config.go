// Package config loads the process configuration from the environment.
package config

import (
	"github.com/Abraxas-365/chatgate/pkg/errx"
	"github.com/caarlos0/env/v11"
)

// Config is the root configuration, one section per concern.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	OAuth    OAuthConfig
	Gate     GateConfig
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port        string   `env:"PORT" envDefault:"8080"`
	CORSOrigins string   `env:"CORS_ORIGINS" envDefault:"*"`
	FrontendURL string   `env:"FRONTEND_URL" envDefault:"http://localhost:5173"`
	AppVersion  string   `env:"APP_VERSION" envDefault:"1.0.0"`
	Debug       bool     `env:"DEBUG" envDefault:"false"`
	TrustedIPs  []string `env:"TRUSTED_PROXIES" envSeparator:","`
}

// Load parses the environment into a Config.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, errx.Wrap(err, "failed to load configuration", errx.TypeInternal)
	}
	return &cfg, nil
}
