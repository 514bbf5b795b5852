package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config contains client configuration parameters.
type Config struct {
	LogLevel      int           `env:"LOG_LEVEL" envDefault:"0"`
	LogFile       string        `env:"LOG_FILE"`
	RelyingParty  RelyingParty  `envPrefix:"RP_"`
	Authenticator Authenticator `envPrefix:"AUTHENTICATOR_"`
	Ceremony      Ceremony      `envPrefix:"CEREMONY_"`
	Telemetry     Telemetry     `envPrefix:"OTEL_"`
}

// RelyingParty contains parameters of the remote relying-party service.
type RelyingParty struct {
	URL         string        `env:"URL" envDefault:"http://localhost:8000"`
	HTTPTimeout time.Duration `env:"HTTP_TIMEOUT" envDefault:"30s"`
	// CAFile adds a certificate authority for self-hosted deployments.
	CAFile         string `env:"CA_FILE"`
	ClientCertFile string `env:"CLIENT_CERT_FILE"`
	ClientKeyFile  string `env:"CLIENT_KEY_FILE"`
}

// Authenticator contains parameters of the software platform authenticator.
type Authenticator struct {
	StorePath   string `env:"STORE_PATH" envDefault:"passkeys.db"`
	Origin      string `env:"ORIGIN" envDefault:"http://localhost:3000"`
	RPID        string `env:"RP_ID" envDefault:"localhost"`
	AutoApprove bool   `env:"AUTO_APPROVE" envDefault:"false"`
}

// Ceremony contains registration and authentication ceremony parameters.
type Ceremony struct {
	Timeout time.Duration `env:"TIMEOUT" envDefault:"60s"`
}

// Telemetry contains opt-in tracing parameters.
type Telemetry struct {
	Enabled  bool   `env:"ENABLED" envDefault:"false"`
	Endpoint string `env:"ENDPOINT"`
}

// NewConfig loads an optional .env file and then configuration from environment variables.
func NewConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &cfg, nil
}
