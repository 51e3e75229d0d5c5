// Package testutil provides TLS material and listening addresses for
// tests of the application layer.
package testutil

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// File names of the generated certificate and key.
const (
	CertFile = "server.pem"
	KeyFile  = "server.key"
)

// CreateTLSCert writes a self-signed certificate for 127.0.0.1 and its
// private key into dir.
func CreateTLSCert(dir string) error {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return err
	}

	notBefore := time.Now()
	notAfter := notBefore.Add(1 * time.Hour)

	serialNumberLimit := new(big.Int).Lsh(big.NewInt(1), 128)
	serialNumber, err := rand.Int(rand.Reader, serialNumberLimit)
	if err != nil {
		return err
	}

	template := x509.Certificate{
		SerialNumber: serialNumber,
		Subject: pkix.Name{
			Organization: []string{"spymsg"},
			CommonName:   "localhost",
		},
		NotBefore:             notBefore,
		NotAfter:              notAfter,
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
		IsCA:                  true,
		IPAddresses:           []net.IP{net.ParseIP("127.0.0.1")},
	}

	der, err := x509.CreateCertificate(rand.Reader, &template, &template, &priv.PublicKey, priv)
	if err != nil {
		return err
	}
	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	if err := os.WriteFile(filepath.Join(dir, CertFile), certPEM, 0644); err != nil {
		return err
	}

	b, err := x509.MarshalECPrivateKey(priv)
	if err != nil {
		return err
	}
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: b})
	return os.WriteFile(filepath.Join(dir, KeyFile), keyPEM, 0600)
}

// CreateTLSCertForTest creates a certificate in a temporary directory
// removed at the end of the test, and returns the directory.
func CreateTLSCertForTest(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := CreateTLSCert(dir); err != nil {
		t.Fatal(err)
	}
	return dir
}

// FreeTCPAddress returns a "tcp://127.0.0.1:port" address whose port
// was free when the function returned.
func FreeTCPAddress(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()
	return "tcp://" + ln.Addr().String()
}

// UnixAddress returns a "unix://" address of a socket inside a
// temporary directory.
func UnixAddress(t *testing.T) string {
	t.Helper()
	return "unix://" + filepath.Join(t.TempDir(), "spymsg.sock")
}
