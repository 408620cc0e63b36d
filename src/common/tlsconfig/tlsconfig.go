// Package tlsconfig builds client TLS settings for database connections.
package tlsconfig

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
)

// Config holds client TLS options for the destination connection.
// When disabled, the sslmode of the connection string applies unchanged.
type Config struct {
	Enabled bool `yaml:"enabled" json:"enabled" default:"false"`

	// CertFile and KeyFile enable mutual TLS; both or none must be set.
	CertFile string `yaml:"certFile" json:"certFile" validate:"required_with=KeyFile"`
	KeyFile  string `yaml:"keyFile" json:"keyFile" validate:"required_with=CertFile"`

	// CACertFile verifies the server certificate. System roots are used if empty.
	CACertFile string `yaml:"caCertFile" json:"caCertFile"`

	// MinVersion is one of "1.2" or "1.3".
	MinVersion string `yaml:"minVersion" json:"minVersion" default:"1.2" validate:"omitempty,oneof=1.2 1.3"`

	// InsecureSkipVerify should only be used against local test servers.
	InsecureSkipVerify bool `yaml:"insecureSkipVerify" json:"insecureSkipVerify" default:"false"`

	// ServerName overrides the host name used for certificate verification.
	ServerName string `yaml:"serverName" json:"serverName"`
}

// IsEnabled reports whether c is non-nil and enabled.
func (c *Config) IsEnabled() bool {
	return c != nil && c.Enabled
}

// BuildClientConfig returns nil when TLS is disabled.
func (c *Config) BuildClientConfig() (*tls.Config, error) {
	if !c.IsEnabled() {
		return nil, nil
	}

	// #nosec G402 - InsecureSkipVerify defaults to false and is opt-in for tests
	config := &tls.Config{
		MinVersion:         c.minVersion(),
		InsecureSkipVerify: c.InsecureSkipVerify,
		ServerName:         c.ServerName,
	}

	if c.CertFile != "" && c.KeyFile != "" {
		cert, err := tls.LoadX509KeyPair(c.CertFile, c.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load client certificate and key: %w", err)
		}
		config.Certificates = []tls.Certificate{cert}
	} else if c.CertFile != "" || c.KeyFile != "" {
		return nil, fmt.Errorf("both certFile and keyFile must be provided for client authentication")
	}

	if c.CACertFile != "" {
		caCert, err := os.ReadFile(c.CACertFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA certificate: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(caCert) {
			return nil, fmt.Errorf("failed to parse CA certificate")
		}
		config.RootCAs = pool
	}

	return config, nil
}

func (c *Config) minVersion() uint16 {
	if c.MinVersion == "1.3" {
		return tls.VersionTLS13
	}
	return tls.VersionTLS12
}
