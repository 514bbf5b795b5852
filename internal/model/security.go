package model

import "crypto/tls"

// TransportSecurity supplies the TLS settings for connections to the relying party.
// A nil config means the platform defaults.
type TransportSecurity interface {
	TLSConfig() (*tls.Config, error)
}
