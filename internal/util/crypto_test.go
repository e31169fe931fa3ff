package util

import (
	"crypto/tls"
	"path/filepath"
	"testing"
	"time"
)

func TestGenerateSelfSignedCert(t *testing.T) {
	dir := t.TempDir()
	cert := filepath.Join(dir, "tls", "api.crt")
	key := filepath.Join(dir, "tls", "api.key")

	if err := GenerateSelfSignedCert(cert, key, "avista.local", time.Hour); err != nil {
		t.Fatalf("GenerateSelfSignedCert: %v", err)
	}

	pair, err := tls.LoadX509KeyPair(cert, key)
	if err != nil {
		t.Fatalf("generated pair does not load: %v", err)
	}
	if len(pair.Certificate) != 1 {
		t.Errorf("chain length = %d", len(pair.Certificate))
	}
}
