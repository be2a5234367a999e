package utils

import (
	"crypto/tls"
	"os"
	"path/filepath"
	"testing"
)

func TestEnsureSelfSignedCert(t *testing.T) {
	dir := t.TempDir()
	cert := filepath.Join(dir, "certs", "server.crt")
	key := filepath.Join(dir, "certs", "server.key")

	if err := EnsureSelfSignedCert(cert, key, "weather.local"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, err := tls.LoadX509KeyPair(cert, key); err != nil {
		t.Fatalf("expected a usable key pair, got %v", err)
	}
	st, err := os.Stat(cert)
	if err != nil {
		t.Fatal(err)
	}

	// existing files are kept
	if err := EnsureSelfSignedCert(cert, key, "other"); err != nil {
		t.Fatalf("expected no error on second call, got %v", err)
	}
	st2, _ := os.Stat(cert)
	if !st2.ModTime().Equal(st.ModTime()) {
		t.Error("expected the existing certificate to be left untouched")
	}
}
