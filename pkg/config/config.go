// pkg/config/config.go
package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env      string
	HTTPAddr string

	// API keys accepted by the key-auth middleware. Empty disables auth
	// (dev mode).
	APIKeys []string

	// Tenant configuration cache freshness window.
	ConfigTTL time.Duration

	// Optional YAML registry overriding the built-in entitlement
	// definitions used when a tenant's default config is generated.
	EntitlementRegistryPath string

	// Default rate limits written into newly created tenant configs.
	RateLimitCreate int
	RateLimitRead   int

	// Pagination defaults written into newly created tenant configs.
	MaxResultsPerPage int
	DefaultPageSize   int

	// Redis & Postgres
	RedisURL    string
	DatabaseURL string
}

func Load() Config {
	_ = godotenv.Load()
	cfg := Config{
		Env:                     env("SCIM_ENV", "dev"),
		HTTPAddr:                env("SCIM_HTTP_ADDR", ":8080"),
		APIKeys:                 envList("SCIM_API_KEYS"),
		ConfigTTL:               envDur("SCIM_CONFIG_TTL_SEC", 30) * time.Second,
		EntitlementRegistryPath: env("SCIM_ENTITLEMENT_REGISTRY", ""),
		RateLimitCreate:         envInt("SCIM_RATE_LIMIT_CREATE", 10),
		RateLimitRead:           envInt("SCIM_RATE_LIMIT_READ", 100),
		MaxResultsPerPage:       envInt("SCIM_MAX_RESULTS_PER_PAGE", 100),
		DefaultPageSize:         envInt("SCIM_DEFAULT_PAGE_SIZE", 100),
		RedisURL:                env("REDIS_URL", ""),
		DatabaseURL:             env("DATABASE_URL", ""),
	}
	if cfg.DatabaseURL == "" && cfg.RedisURL == "" {
		log.Println("[WARN] DATABASE_URL / REDIS_URL not set; using in-memory tenant config store for dev")
	}
	return cfg
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func envDur(k string, def int) time.Duration {
	if v := os.Getenv(k); v != "" {
		i, _ := strconv.Atoi(v)
		return time.Duration(i)
	}
	return time.Duration(def)
}

func envList(k string) []string {
	v := os.Getenv(k)
	if v == "" {
		return nil
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
