package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultAuthSecret signs tokens when AUTH_HMAC_SECRET is unset. It is
// public; only use it for local development.
const DefaultAuthSecret = "dev-secret-change-me"

type Config struct {
	HTTPAddr       string
	RequestTimeout time.Duration

	DBDriver string
	DBDSN    string

	BlobBasePath string // reading material lives under here

	AuthSecret   string
	TokenTTL     time.Duration
	EnableSignup bool

	// Bootstrap admin; skipped when AdminEmail is empty.
	AdminEmail    string
	AdminPassHash string // bcrypt

	CORSOrigins []string

	SessionIdleTimeout   time.Duration
	SessionSweepInterval time.Duration
}

// Load reads the given .env files (default ".env") into the process
// environment. Missing files are not an error; variables already set win.
func Load(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

func FromEnv() Config {
	return Config{
		HTTPAddr:       envOr("HTTP_ADDR", ":8080"),
		RequestTimeout: envDuration("REQUEST_TIMEOUT", 15*time.Second),

		DBDriver:     envOr("DB_DRIVER", "sqlite"),
		DBDSN:        envOr("DB_DSN", ""),
		BlobBasePath: envOr("BLOB_BASE_PATH", "./data"),

		AuthSecret:   envOr("AUTH_HMAC_SECRET", DefaultAuthSecret),
		TokenTTL:     envDuration("TOKEN_TTL", 24*time.Hour),
		EnableSignup: envBool("ENABLE_SIGNUP", true),

		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassHash: os.Getenv("ADMIN_PASS_HASH"),

		CORSOrigins: csvOr("CORS_ORIGINS", "http://localhost:3000,http://localhost:8081,http://localhost:19006"),

		SessionIdleTimeout:   envDuration("SESSION_IDLE_TIMEOUT", 2*time.Hour),
		SessionSweepInterval: envDuration("SESSION_SWEEP_INTERVAL", 5*time.Minute),
	}
}

// InsecureSecret reports whether tokens are signed with DefaultAuthSecret.
func (c Config) InsecureSecret() bool { return c.AuthSecret == DefaultAuthSecret }

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envBool(k string, def bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return def
	}
}

// envDuration accepts Go durations ("90s", "2h") or bare seconds.
func envDuration(k string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if d, err := time.ParseDuration(v + "s"); err == nil {
		return d
	}
	return def
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
