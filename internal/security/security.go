package security

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"

	"github.com/ameyamatmk/voice-diary/internal/model"
)

var (
	_ model.TransportSecurity = (*TLSTrust)(nil)
	_ model.TransportSecurity = (*SystemTrust)(nil)
)

// TLSTrust represents TLS settings for a self-hosted relying party.
// It trusts an additional certificate authority and may present a client certificate.
type TLSTrust struct {
	caFileName         string
	certFileName       string
	privateKeyFileName string
}

// NewTLSTrust creates a new TLSTrust instance.
//
// Parameters:
//   - caFileName: Path to a PEM bundle of certificate authorities to trust
//   - certFileName: Optional path to a client certificate
//   - privateKeyFileName: Optional path to the client certificate's private key
//
// Returns a pointer to the newly created TLSTrust instance.
func NewTLSTrust(caFileName, certFileName, privateKeyFileName string) *TLSTrust {
	return &TLSTrust{
		caFileName:         caFileName,
		certFileName:       certFileName,
		privateKeyFileName: privateKeyFileName,
	}
}

// TLSConfig builds a TLS configuration whose root pool holds the system roots
// plus the configured authorities.
//
// Returns the configuration or an error if a file cannot be loaded.
func (t *TLSTrust) TLSConfig() (*tls.Config, error) {
	pool, err := x509.SystemCertPool()
	if err != nil {
		pool = x509.NewCertPool()
	}

	if t.caFileName != "" {
		pem, err := os.ReadFile(t.caFileName)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA bundle: %w", err)
		}
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("failed to parse CA bundle %s: no certificates found", t.caFileName)
		}
	}

	cfg := &tls.Config{
		RootCAs:    pool,
		MinVersion: tls.VersionTLS12,
	}

	if t.certFileName != "" || t.privateKeyFileName != "" {
		cert, err := tls.LoadX509KeyPair(t.certFileName, t.privateKeyFileName)
		if err != nil {
			return nil, fmt.Errorf("failed to load TLS certificate: %w", err)
		}
		cfg.Certificates = []tls.Certificate{cert}
	}

	return cfg, nil
}

// SystemTrust uses the platform's default TLS settings.
type SystemTrust struct{}

// NewSystemTrust creates a new SystemTrust instance.
func NewSystemTrust() *SystemTrust {
	return &SystemTrust{}
}

// TLSConfig returns nil, leaving the HTTP transport defaults in place.
func (SystemTrust) TLSConfig() (*tls.Config, error) {
	return nil, nil
}
