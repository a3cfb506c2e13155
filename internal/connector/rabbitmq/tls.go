package rabbitmq

import (
	"bytes"
	"crypto/sha1" // #nosec G505 - JKS integrity digest is SHA-1
	"crypto/tls"
	"crypto/x509"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"unicode/utf16"

	"github.com/cobolbaby/kafka-connect-rabbitmq/internal/util"
	keystore "github.com/pavlo-v-chernykh/keystore-go/v4"
)

const (
	StoreTypeJKS = "JKS"

	ProtocolTLS    = "TLS"
	ProtocolTLSv12 = "TLSv1.2"
	ProtocolTLSv13 = "TLSv1.3"
)

const (
	jksMagic      = 0xFEEDFEED
	jksWhitener   = "Mighty Aphrodite"
	jksDigestSize = sha1.Size
)

// protocols maps a protocol name to the highest version it negotiates.
// "TLS" leaves the ceiling to crypto/tls.
var protocols = map[string]uint16{
	ProtocolTLS:    0,
	ProtocolTLSv12: tls.VersionTLS12,
	ProtocolTLSv13: tls.VersionTLS13,
}

var (
	ErrStoreUnreadable      = errors.New("store file cannot be read")
	ErrStoreFormat          = errors.New("invalid keystore format")
	ErrStorePassword        = errors.New("keystore was tampered with, or password was incorrect")
	ErrUnsupportedStoreType = errors.New("unsupported store type")
	ErrKeyPassphrase        = errors.New("cannot recover key with the given passphrase")
	ErrNoKeyEntry           = errors.New("keystore has no private key entry")
	ErrNoTrustAnchors       = errors.New("truststore has no trusted certificate entry")
	ErrMalformedEntry       = errors.New("malformed store entry")
	ErrUnsupportedProtocol  = errors.New("unsupported TLS protocol")
)

// CredentialError reports which store (or protocol) could not be turned
// into TLS material. Err is one of the Err* values above; Cause, when set,
// is the underlying failure.
type CredentialError struct {
	Store string
	Path  string
	Err   error
	Cause error
}

func (e *CredentialError) Error() string {
	msg := fmt.Sprintf("%s %q: %v", e.Store, e.Path, e.Err)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *CredentialError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}

// SecureContext is the client identity and trust anchors loaded from the
// configured stores. It is never modified after BuildSecureContext.
type SecureContext struct {
	protocol string
	config   *tls.Config
	identity int
	anchors  int
}

// Protocol is the configured protocol name, e.g. TLSv1.3.
func (s *SecureContext) Protocol() string { return s.protocol }

// Config returns a copy of the TLS client configuration.
func (s *SecureContext) Config() *tls.Config { return s.config.Clone() }

// Identities is the number of client certificates offered to the broker.
func (s *SecureContext) Identities() int { return s.identity }

// TrustAnchors is the number of certificates trusted for the broker.
func (s *SecureContext) TrustAnchors() int { return s.anchors }

// BuildSecureContext reads the keystore and truststore named in t and
// assembles a TLS client configuration for the named protocol. Any failure
// is returned as a *CredentialError.
func BuildSecureContext(t TLSSettings) (*SecureContext, error) {
	maxVersion, ok := lookupProtocol(t.Protocol)
	if !ok {
		return nil, &CredentialError{Store: "protocol", Path: t.Protocol, Err: ErrUnsupportedProtocol}
	}

	ks, err := loadStore("keystore", t.KeystoreLocation, t.KeystoreType, t.KeystorePassword)
	if err != nil {
		return nil, err
	}
	certs, err := identities(ks, t.KeystoreLocation, t.KeystorePassphrase)
	if err != nil {
		return nil, err
	}

	ts, err := loadStore("truststore", t.TruststoreLocation, t.TruststoreType, t.TruststorePassword)
	if err != nil {
		return nil, err
	}
	pool, n, err := trustAnchors(ts, t.TruststoreLocation)
	if err != nil {
		return nil, err
	}

	cfg := &tls.Config{
		Certificates: certs,
		RootCAs:      pool,
		MinVersion:   tls.VersionTLS12,
		MaxVersion:   maxVersion,
	}
	util.App.Debug().
		Str("protocol", t.Protocol).
		Int("identities", len(certs)).
		Int("trustAnchors", n).
		Msg("tls context built")
	return &SecureContext{protocol: t.Protocol, config: cfg, identity: len(certs), anchors: n}, nil
}

func lookupProtocol(name string) (uint16, bool) {
	for p, v := range protocols {
		if strings.EqualFold(p, name) {
			return v, true
		}
	}
	return 0, false
}

func loadStore(kind, path, storeType, password string) (keystore.KeyStore, error) {
	fail := func(err, cause error) (keystore.KeyStore, error) {
		return keystore.KeyStore{}, &CredentialError{Store: kind, Path: path, Err: err, Cause: cause}
	}
	if !strings.EqualFold(storeType, StoreTypeJKS) {
		return fail(ErrUnsupportedStoreType, fmt.Errorf("%q", storeType))
	}
	if path == "" {
		return fail(ErrStoreUnreadable, errors.New("location is not set"))
	}
	b, err := os.ReadFile(path) // #nosec G304 - store path is operator supplied
	if err != nil {
		return fail(ErrStoreUnreadable, err)
	}
	if len(b) < 4 || binary.BigEndian.Uint32(b) != jksMagic {
		return fail(ErrStoreFormat, nil)
	}
	ks := keystore.New()
	if err := ks.Load(bytes.NewReader(b), []byte(password)); err != nil {
		if truncated(err) || digestMatches(b, password) {
			return fail(ErrStoreFormat, err)
		}
		return fail(ErrStorePassword, err)
	}
	return ks, nil
}

func truncated(err error) bool {
	return errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) ||
		strings.HasSuffix(err.Error(), io.ErrUnexpectedEOF.Error())
}

// digestMatches checks the trailing SHA-1 of a JKS file, keyed by the store
// password as UTF-16BE followed by the whitener. A match means the password
// is right and any load failure lies in the entries.
func digestMatches(b []byte, password string) bool {
	if len(b) < 4+jksDigestSize {
		return false
	}
	h := sha1.New() // #nosec G401
	for _, r := range utf16.Encode([]rune(password)) {
		h.Write([]byte{byte(r >> 8), byte(r)})
	}
	h.Write([]byte(jksWhitener))
	body := len(b) - jksDigestSize
	h.Write(b[:body])
	return bytes.Equal(h.Sum(nil), b[body:])
}

func identities(ks keystore.KeyStore, path, passphrase string) ([]tls.Certificate, error) {
	fail := func(err, cause error) ([]tls.Certificate, error) {
		return nil, &CredentialError{Store: "keystore", Path: path, Err: err, Cause: cause}
	}
	var out []tls.Certificate
	for _, alias := range sortedAliases(ks) {
		if !ks.IsPrivateKeyEntry(alias) {
			continue
		}
		entry, err := ks.GetPrivateKeyEntry(alias, []byte(passphrase))
		if err != nil {
			return fail(ErrKeyPassphrase, fmt.Errorf("alias %s: %w", alias, err))
		}
		key, err := x509.ParsePKCS8PrivateKey(entry.PrivateKey)
		if err != nil {
			return fail(ErrMalformedEntry, fmt.Errorf("alias %s: %w", alias, err))
		}
		if len(entry.CertificateChain) == 0 {
			return fail(ErrMalformedEntry, fmt.Errorf("alias %s: empty certificate chain", alias))
		}
		cert := tls.Certificate{PrivateKey: key}
		for i, c := range entry.CertificateChain {
			parsed, err := x509.ParseCertificate(c.Content)
			if err != nil {
				return fail(ErrMalformedEntry, fmt.Errorf("alias %s: %w", alias, err))
			}
			if i == 0 {
				cert.Leaf = parsed
			}
			cert.Certificate = append(cert.Certificate, c.Content)
		}
		out = append(out, cert)
	}
	if len(out) == 0 {
		return fail(ErrNoKeyEntry, nil)
	}
	return out, nil
}

func trustAnchors(ks keystore.KeyStore, path string) (*x509.CertPool, int, error) {
	pool := x509.NewCertPool()
	n := 0
	for _, alias := range sortedAliases(ks) {
		if !ks.IsTrustedCertificateEntry(alias) {
			continue
		}
		entry, err := ks.GetTrustedCertificateEntry(alias)
		if err != nil {
			return nil, 0, &CredentialError{Store: "truststore", Path: path, Err: ErrMalformedEntry, Cause: err}
		}
		cert, err := x509.ParseCertificate(entry.Certificate.Content)
		if err != nil {
			return nil, 0, &CredentialError{Store: "truststore", Path: path, Err: ErrMalformedEntry,
				Cause: fmt.Errorf("alias %s: %w", alias, err)}
		}
		pool.AddCert(cert)
		n++
	}
	if n == 0 {
		return nil, 0, &CredentialError{Store: "truststore", Path: path, Err: ErrNoTrustAnchors}
	}
	return pool, n, nil
}

func sortedAliases(ks keystore.KeyStore) []string {
	aliases := ks.Aliases()
	sort.Strings(aliases)
	return aliases
}
