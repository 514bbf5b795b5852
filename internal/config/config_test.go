package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_DefaultValues(t *testing.T) {
	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, 0, cfg.LogLevel)
	assert.Equal(t, "", cfg.LogFile)
	assert.Equal(t, "http://localhost:8000", cfg.RelyingParty.URL)
	assert.Equal(t, 30*time.Second, cfg.RelyingParty.HTTPTimeout)
	assert.Equal(t, "", cfg.RelyingParty.CAFile)
	assert.Equal(t, "passkeys.db", cfg.Authenticator.StorePath)
	assert.Equal(t, "http://localhost:3000", cfg.Authenticator.Origin)
	assert.Equal(t, "localhost", cfg.Authenticator.RPID)
	assert.False(t, cfg.Authenticator.AutoApprove)
	assert.Equal(t, 60*time.Second, cfg.Ceremony.Timeout)
	assert.False(t, cfg.Telemetry.Enabled)
	assert.Equal(t, "", cfg.Telemetry.Endpoint)
}

func TestNewConfig_EnvironmentOverrides(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		expected func(*Config)
	}{
		{
			name: "log override",
			envVars: map[string]string{
				"LOG_LEVEL": "-4",
				"LOG_FILE":  "/tmp/diary.log",
			},
			expected: func(cfg *Config) {
				assert.Equal(t, -4, cfg.LogLevel)
				assert.Equal(t, "/tmp/diary.log", cfg.LogFile)
			},
		},
		{
			name: "relying party override",
			envVars: map[string]string{
				"RP_URL":              "https://diary.homelab.local",
				"RP_HTTP_TIMEOUT":     "5s",
				"RP_CA_FILE":          "/etc/diary/ca.pem",
				"RP_CLIENT_CERT_FILE": "/etc/diary/client.crt",
				"RP_CLIENT_KEY_FILE":  "/etc/diary/client.key",
			},
			expected: func(cfg *Config) {
				assert.Equal(t, "https://diary.homelab.local", cfg.RelyingParty.URL)
				assert.Equal(t, 5*time.Second, cfg.RelyingParty.HTTPTimeout)
				assert.Equal(t, "/etc/diary/ca.pem", cfg.RelyingParty.CAFile)
				assert.Equal(t, "/etc/diary/client.crt", cfg.RelyingParty.ClientCertFile)
				assert.Equal(t, "/etc/diary/client.key", cfg.RelyingParty.ClientKeyFile)
			},
		},
		{
			name: "authenticator override",
			envVars: map[string]string{
				"AUTHENTICATOR_STORE_PATH":   "/var/lib/diary/keys.db",
				"AUTHENTICATOR_ORIGIN":       "https://diary.homelab.local",
				"AUTHENTICATOR_RP_ID":        "diary.homelab.local",
				"AUTHENTICATOR_AUTO_APPROVE": "true",
			},
			expected: func(cfg *Config) {
				assert.Equal(t, "/var/lib/diary/keys.db", cfg.Authenticator.StorePath)
				assert.Equal(t, "https://diary.homelab.local", cfg.Authenticator.Origin)
				assert.Equal(t, "diary.homelab.local", cfg.Authenticator.RPID)
				assert.True(t, cfg.Authenticator.AutoApprove)
			},
		},
		{
			name: "ceremony override",
			envVars: map[string]string{
				"CEREMONY_TIMEOUT": "2m",
			},
			expected: func(cfg *Config) {
				assert.Equal(t, 2*time.Minute, cfg.Ceremony.Timeout)
			},
		},
		{
			name: "telemetry override",
			envVars: map[string]string{
				"OTEL_ENABLED":  "true",
				"OTEL_ENDPOINT": "http://collector:4318",
			},
			expected: func(cfg *Config) {
				assert.True(t, cfg.Telemetry.Enabled)
				assert.Equal(t, "http://collector:4318", cfg.Telemetry.Endpoint)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for key, value := range tt.envVars {
				t.Setenv(key, value)
			}

			cfg, err := NewConfig()
			require.NoError(t, err)

			tt.expected(cfg)
		})
	}
}

func TestNewConfig_InvalidDuration(t *testing.T) {
	t.Setenv("CEREMONY_TIMEOUT", "soon")

	_, err := NewConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config")
}
