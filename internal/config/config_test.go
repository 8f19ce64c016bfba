package config

import (
	"os"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"PORT", "TLS_CERT", "TLS_KEY", "CATALOG_PATH", "CATALOG_DSN", "RATE_LIMIT", "RATE_BURST", "SESSION_TTL"} {
		t.Setenv(k, "")
	}
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	chdir(t, t.TempDir())

	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.RateLimit != 5 || cfg.RateBurst != 10 {
		t.Fatalf("rate = %v/%d, want 5/10", cfg.RateLimit, cfg.RateBurst)
	}
	if cfg.TLS() {
		t.Fatalf("TLS enabled without cert")
	}
	if cfg.SessionTTL != 2*time.Hour {
		t.Fatalf("SessionTTL = %v, want 2h", cfg.SessionTTL)
	}
}

func TestLoad_FromEnv(t *testing.T) {
	clearEnv(t)
	chdir(t, t.TempDir())
	t.Setenv("PORT", "9090")
	t.Setenv("CATALOG_PATH", "/etc/aquaquote/catalog.yaml")
	t.Setenv("RATE_LIMIT", "2.5")
	t.Setenv("RATE_BURST", "4")
	t.Setenv("TLS_CERT", "server.crt")
	t.Setenv("TLS_KEY", "server.key")
	t.Setenv("SESSION_TTL", "45m")

	cfg := Load()
	if cfg.SessionTTL != 45*time.Minute {
		t.Fatalf("SessionTTL = %v, want 45m", cfg.SessionTTL)
	}
	if cfg.Port != "9090" || cfg.CatalogPath != "/etc/aquaquote/catalog.yaml" {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.RateLimit != 2.5 || cfg.RateBurst != 4 {
		t.Fatalf("rate = %v/%d, want 2.5/4", cfg.RateLimit, cfg.RateBurst)
	}
	if !cfg.TLS() {
		t.Fatalf("TLS not enabled")
	}
}

func TestLoad_HalfTLSIsDropped(t *testing.T) {
	clearEnv(t)
	chdir(t, t.TempDir())
	t.Setenv("TLS_CERT", "server.crt")

	if cfg := Load(); cfg.TLS() || cfg.TLSCert != "" {
		t.Fatalf("cfg = %+v, want TLS disabled", cfg)
	}
}

func TestLoad_BadNumbersFallBack(t *testing.T) {
	clearEnv(t)
	chdir(t, t.TempDir())
	t.Setenv("RATE_LIMIT", "fast")
	t.Setenv("RATE_BURST", "-3")
	t.Setenv("SESSION_TTL", "forever")

	cfg := Load()
	if cfg.RateLimit != 5 || cfg.RateBurst != 10 {
		t.Fatalf("rate = %v/%d, want defaults", cfg.RateLimit, cfg.RateBurst)
	}
	if cfg.SessionTTL != 2*time.Hour {
		t.Fatalf("SessionTTL = %v, want default", cfg.SessionTTL)
	}
}
