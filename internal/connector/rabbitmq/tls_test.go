package rabbitmq

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"errors"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	keystore "github.com/pavlo-v-chernykh/keystore-go/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	storePassword = "changeit"
	keyPassphrase = "keysecret"
)

type testStores struct {
	keystore   string
	truststore string
}

// writeStores generates a CA, a client certificate signed by it, and
// writes a JKS keystore (client key + chain) and truststore (CA) to dir.
func writeStores(t *testing.T, dir string) testStores {
	t.Helper()
	now := time.Now()

	caKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	caTmpl := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: "test-ca"},
		NotBefore:             now.Add(-time.Hour),
		NotAfter:              now.Add(time.Hour),
		IsCA:                  true,
		BasicConstraintsValid: true,
		KeyUsage:              x509.KeyUsageCertSign,
	}
	caDER, err := x509.CreateCertificate(rand.Reader, caTmpl, caTmpl, &caKey.PublicKey, caKey)
	require.NoError(t, err)
	caCert, err := x509.ParseCertificate(caDER)
	require.NoError(t, err)

	clientKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	clientTmpl := &x509.Certificate{
		SerialNumber: big.NewInt(2),
		Subject:      pkix.Name{CommonName: "connector"},
		NotBefore:    now.Add(-time.Hour),
		NotAfter:     now.Add(time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth},
	}
	clientDER, err := x509.CreateCertificate(rand.Reader, clientTmpl, caCert, &clientKey.PublicKey, caKey)
	require.NoError(t, err)
	pkcs8, err := x509.MarshalPKCS8PrivateKey(clientKey)
	require.NoError(t, err)

	ks := keystore.New()
	require.NoError(t, ks.SetPrivateKeyEntry("client", keystore.PrivateKeyEntry{
		CreationTime: now,
		PrivateKey:   pkcs8,
		CertificateChain: []keystore.Certificate{
			{Type: "X509", Content: clientDER},
			{Type: "X509", Content: caDER},
		},
	}, []byte(keyPassphrase)))

	ts := keystore.New()
	require.NoError(t, ts.SetTrustedCertificateEntry("ca", keystore.TrustedCertificateEntry{
		CreationTime: now,
		Certificate:  keystore.Certificate{Type: "X509", Content: caDER},
	}))

	out := testStores{
		keystore:   filepath.Join(dir, "client.jks"),
		truststore: filepath.Join(dir, "trust.jks"),
	}
	storeTo(t, out.keystore, ks)
	storeTo(t, out.truststore, ts)
	return out
}

func storeTo(t *testing.T, path string, ks keystore.KeyStore) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, ks.Store(f, []byte(storePassword)))
}

func tlsSettings(s testStores) TLSSettings {
	return TLSSettings{
		KeystoreLocation:   s.keystore,
		KeystorePassword:   storePassword,
		KeystorePassphrase: keyPassphrase,
		KeystoreType:       StoreTypeJKS,
		TruststoreLocation: s.truststore,
		TruststorePassword: storePassword,
		TruststoreType:     StoreTypeJKS,
		Protocol:           ProtocolTLSv13,
	}
}

func TestBuildSecureContext(t *testing.T) {
	stores := writeStores(t, t.TempDir())

	sc, err := BuildSecureContext(tlsSettings(stores))
	require.NoError(t, err)

	assert.Equal(t, ProtocolTLSv13, sc.Protocol())
	assert.Equal(t, 1, sc.Identities())
	assert.Equal(t, 1, sc.TrustAnchors())

	cfg := sc.Config()
	assert.Equal(t, uint16(tls.VersionTLS12), cfg.MinVersion)
	assert.Equal(t, uint16(tls.VersionTLS13), cfg.MaxVersion)
	require.Len(t, cfg.Certificates, 1)
	assert.Len(t, cfg.Certificates[0].Certificate, 2)
	assert.Equal(t, "connector", cfg.Certificates[0].Leaf.Subject.CommonName)
	assert.NotNil(t, cfg.RootCAs)

	cfg.MaxVersion = tls.VersionTLS12
	cfg.Certificates = nil
	again := sc.Config()
	assert.Equal(t, uint16(tls.VersionTLS13), again.MaxVersion)
	assert.Len(t, again.Certificates, 1)
}

func TestBuildSecureContext_Protocols(t *testing.T) {
	stores := writeStores(t, t.TempDir())

	tests := []struct {
		protocol string
		max      uint16
	}{
		{ProtocolTLS, 0},
		{ProtocolTLSv12, tls.VersionTLS12},
		{"tlsv1.3", tls.VersionTLS13},
	}
	for _, tt := range tests {
		t.Run(tt.protocol, func(t *testing.T) {
			s := tlsSettings(stores)
			s.Protocol = tt.protocol
			sc, err := BuildSecureContext(s)
			require.NoError(t, err)
			assert.Equal(t, tt.protocol, sc.Protocol())
			assert.Equal(t, tt.max, sc.Config().MaxVersion)
		})
	}
}

func TestBuildSecureContext_Errors(t *testing.T) {
	dir := t.TempDir()
	stores := writeStores(t, dir)
	pem := filepath.Join(dir, "ca.pem")
	require.NoError(t, os.WriteFile(pem, []byte("-----BEGIN CERTIFICATE-----\n"), 0o600))
	full, err := os.ReadFile(stores.keystore)
	require.NoError(t, err)
	cut := filepath.Join(dir, "cut.jks")
	require.NoError(t, os.WriteFile(cut, full[:len(full)/2], 0o600))

	tests := []struct {
		name   string
		mutate func(*TLSSettings)
		want   error
		store  string
	}{
		{"unsupported protocol", func(s *TLSSettings) { s.Protocol = "SSLv3" }, ErrUnsupportedProtocol, "protocol"},
		{"keystore missing", func(s *TLSSettings) { s.KeystoreLocation = filepath.Join(dir, "nope.jks") }, ErrStoreUnreadable, "keystore"},
		{"keystore location unset", func(s *TLSSettings) { s.KeystoreLocation = "" }, ErrStoreUnreadable, "keystore"},
		{"keystore not JKS", func(s *TLSSettings) { s.KeystoreLocation = pem }, ErrStoreFormat, "keystore"},
		{"keystore truncated", func(s *TLSSettings) { s.KeystoreLocation = cut }, ErrStoreFormat, "keystore"},
		{"keystore type", func(s *TLSSettings) { s.KeystoreType = "PKCS12" }, ErrUnsupportedStoreType, "keystore"},
		{"keystore password", func(s *TLSSettings) { s.KeystorePassword = "wrongpass" }, ErrStorePassword, "keystore"},
		{"key passphrase", func(s *TLSSettings) { s.KeystorePassphrase = "wrongpass" }, ErrKeyPassphrase, "keystore"},
		{"no key entry", func(s *TLSSettings) { s.KeystoreLocation = stores.truststore }, ErrNoKeyEntry, "keystore"},
		{"truststore missing", func(s *TLSSettings) { s.TruststoreLocation = filepath.Join(dir, "nope.jks") }, ErrStoreUnreadable, "truststore"},
		{"truststore type", func(s *TLSSettings) { s.TruststoreType = "JCEKS" }, ErrUnsupportedStoreType, "truststore"},
		{"truststore password", func(s *TLSSettings) { s.TruststorePassword = "wrongpass" }, ErrStorePassword, "truststore"},
		{"no trust anchors", func(s *TLSSettings) { s.TruststoreLocation = stores.keystore }, ErrNoTrustAnchors, "truststore"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := tlsSettings(stores)
			tt.mutate(&s)

			sc, err := BuildSecureContext(s)
			require.Error(t, err)
			assert.Nil(t, sc)
			assert.ErrorIs(t, err, tt.want)

			var ce *CredentialError
			require.True(t, errors.As(err, &ce))
			assert.Equal(t, tt.store, ce.Store)
		})
	}
}

func TestCredentialError_Message(t *testing.T) {
	err := &CredentialError{Store: "keystore", Path: "/etc/client.jks", Err: ErrStoreUnreadable, Cause: os.ErrNotExist}
	assert.Equal(t, `keystore "/etc/client.jks": store file cannot be read: file does not exist`, err.Error())
	assert.ErrorIs(t, err, os.ErrNotExist)
}
