package tlsconfig

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTestCertificate writes a self-signed ECDSA certificate and key to a temp dir.
func writeTestCertificate(t *testing.T) (certFile, keyFile string) {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	require.NoError(t, err)

	template := x509.Certificate{
		SerialNumber:          serial,
		Subject:               pkix.Name{CommonName: "localhost"},
		NotBefore:             time.Now(),
		NotAfter:              time.Now().Add(time.Hour),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth},
		BasicConstraintsValid: true,
		IsCA:                  true,
		DNSNames:              []string{"localhost"},
	}
	der, err := x509.CreateCertificate(rand.Reader, &template, &template, &key.PublicKey, key)
	require.NoError(t, err)

	keyBytes, err := x509.MarshalECPrivateKey(key)
	require.NoError(t, err)

	dir := t.TempDir()
	certFile = filepath.Join(dir, "cert.pem")
	keyFile = filepath.Join(dir, "key.pem")
	require.NoError(t, os.WriteFile(certFile, pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}), 0o600))
	require.NoError(t, os.WriteFile(keyFile, pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyBytes}), 0o600))
	return certFile, keyFile
}

func TestDisabledReturnsNil(t *testing.T) {
	var nilCfg *Config
	c, err := nilCfg.BuildClientConfig()
	require.NoError(t, err)
	assert.Nil(t, c)

	c, err = (&Config{}).BuildClientConfig()
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestBuildClientConfig(t *testing.T) {
	c, err := (&Config{Enabled: true, ServerName: "db.internal"}).BuildClientConfig()
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, uint16(tls.VersionTLS12), c.MinVersion)
	assert.Equal(t, "db.internal", c.ServerName)
	assert.False(t, c.InsecureSkipVerify)

	c, err = (&Config{Enabled: true, MinVersion: "1.3", InsecureSkipVerify: true}).BuildClientConfig()
	require.NoError(t, err)
	assert.Equal(t, uint16(tls.VersionTLS13), c.MinVersion)
	assert.True(t, c.InsecureSkipVerify)
}

func TestBuildClientConfigWithCertificates(t *testing.T) {
	certFile, keyFile := writeTestCertificate(t)

	c, err := (&Config{Enabled: true, CertFile: certFile, KeyFile: keyFile, CACertFile: certFile}).BuildClientConfig()
	require.NoError(t, err)
	assert.Len(t, c.Certificates, 1)
	assert.NotNil(t, c.RootCAs)
}

func TestBuildClientConfigErrors(t *testing.T) {
	certFile, _ := writeTestCertificate(t)

	_, err := (&Config{Enabled: true, CertFile: certFile}).BuildClientConfig()
	require.Error(t, err)

	_, err = (&Config{Enabled: true, CertFile: "/nonexistent/cert.pem", KeyFile: "/nonexistent/key.pem"}).BuildClientConfig()
	require.Error(t, err)

	_, err = (&Config{Enabled: true, CACertFile: "/nonexistent/ca.pem"}).BuildClientConfig()
	require.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.pem")
	require.NoError(t, os.WriteFile(bad, []byte("not a certificate"), 0o600))
	_, err = (&Config{Enabled: true, CACertFile: bad}).BuildClientConfig()
	require.ErrorContains(t, err, "failed to parse CA certificate")
}
