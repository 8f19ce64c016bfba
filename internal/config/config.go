package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultPort      = "8080"
	defaultRateLimit = 5.0
	defaultRateBurst = 10
	defaultTTL       = 2 * time.Hour
)

type Config struct {
	Port        string
	TLSCert     string
	TLSKey      string
	CatalogPath string
	CatalogDSN  string
	RateLimit   float64
	RateBurst   int
	SessionTTL  time.Duration
}

// Load reads the process environment, after a best-effort .env load.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("config: .env: %v", err)
	}

	cfg := Config{
		Port:        os.Getenv("PORT"),
		TLSCert:     os.Getenv("TLS_CERT"),
		TLSKey:      os.Getenv("TLS_KEY"),
		CatalogPath: os.Getenv("CATALOG_PATH"),
		CatalogDSN:  os.Getenv("CATALOG_DSN"),
		RateLimit:   envFloat("RATE_LIMIT", defaultRateLimit),
		RateBurst:   int(envFloat("RATE_BURST", defaultRateBurst)),
		SessionTTL:  envDuration("SESSION_TTL", defaultTTL),
	}
	if cfg.Port == "" {
		cfg.Port = defaultPort
	}
	if (cfg.TLSCert == "") != (cfg.TLSKey == "") {
		log.Print("warning: TLS_CERT and TLS_KEY must be set together, serving plain HTTP")
		cfg.TLSCert, cfg.TLSKey = "", ""
	}
	return cfg
}

func (c Config) TLS() bool {
	return c.TLSCert != "" && c.TLSKey != ""
}

func envFloat(key string, def float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		log.Printf("warning: %s=%q is not a positive number, using %v", key, s, def)
		return def
	}
	return v
}

func envDuration(key string, def time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		log.Printf("warning: %s=%q is not a positive duration, using %v", key, s, def)
		return def
	}
	return d
}
