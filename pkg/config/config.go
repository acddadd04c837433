// pkg/config/config.go
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"tenantgate/pkg/problems"
	"tenantgate/pkg/token"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

type Config struct {
	Env      string
	HTTPAddr string
	LogLevel string

	// Token signing
	JWTSecret    string
	JWTExpiresIn string // raw seconds or <n>{s,m,h,d}

	// Secret hashing
	SecretHashAlgo string
	BcryptCost     int

	// Redis & Postgres
	RedisURL    string
	DatabaseURL string

	// Tenant seeding (JSON inline or JSON/YAML file)
	TenantSeedJSON string
	TenantSeedFile string

	ProblemBaseURL  string
	OTLPEndpoint    string
	ShutdownTimeout time.Duration
}

// Load reads .env files for the current APP_ENV, then the process
// environment. Later files override earlier ones; variables already present in
// the process environment always win.
func Load() Config {
	loadDotenv()
	appEnv := env("APP_ENV", EnvDevelopment)

	defaultLevel := "info"
	if appEnv == EnvDevelopment {
		defaultLevel = "debug"
	}
	cfg := Config{
		Env:             appEnv,
		HTTPAddr:        env("HTTP_ADDR", ":3000"),
		LogLevel:        env("LOG_LEVEL", defaultLevel),
		JWTSecret:       env("JWT_SECRET", ""),
		JWTExpiresIn:    env("JWT_EXPIRES_IN", "1h"),
		SecretHashAlgo:  env("SECRET_HASH_ALGO", "bcrypt"),
		BcryptCost:      envInt("BCRYPT_COST", 10),
		RedisURL:        env("REDIS_URL", ""),
		DatabaseURL:     env("DATABASE_URL", ""),
		TenantSeedJSON:  env("TENANT_SEED_JSON", ""),
		TenantSeedFile:  env("TENANT_SEED_FILE", ""),
		ProblemBaseURL:  env("PROBLEM_BASE_URL", ""),
		OTLPEndpoint:    env("OTEL_EXPORTER_OTLP_TRACES_ENDPOINT", env("OTEL_EXPORTER_OTLP_ENDPOINT", "")),
		ShutdownTimeout: envDur("SHUTDOWN_TIMEOUT_SEC", 10) * time.Second,
	}
	if cfg.DatabaseURL == "" && cfg.RedisURL == "" {
		log.Println("[WARN] DATABASE_URL and REDIS_URL not set, using in-memory tenant store")
	}
	return cfg
}

// IsDevelopment reports whether internal error detail may be exposed.
func (c Config) IsDevelopment() bool { return c.Env == EnvDevelopment }

// Validate reports every configuration problem at once as a
// ConfigurationError. A service with an invalid configuration must not serve.
func (c Config) Validate() error {
	var errs []error
	switch c.Env {
	case EnvDevelopment, EnvProduction, EnvTest:
	default:
		errs = append(errs, fmt.Errorf("APP_ENV must be one of development, production, test (got %q)", c.Env))
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error", "fatal":
	default:
		errs = append(errs, fmt.Errorf("LOG_LEVEL %q is not a valid level", c.LogLevel))
	}
	if strings.TrimSpace(c.JWTSecret) == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if _, err := token.ParseExpiry(c.JWTExpiresIn); err != nil {
		errs = append(errs, err)
	}
	switch c.SecretHashAlgo {
	case "bcrypt", "argon2id":
	default:
		errs = append(errs, fmt.Errorf("SECRET_HASH_ALGO %q is not supported", c.SecretHashAlgo))
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be between 4 and 31 (got %d)", c.BcryptCost))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Errorf("SHUTDOWN_TIMEOUT_SEC must be a positive number of seconds (got %v)", c.ShutdownTimeout))
	}
	if len(errs) > 0 {
		return problems.Configuration("invalid configuration", errors.Join(errs...))
	}
	return nil
}

// loadDotenv reads .env and .env.local first, so APP_ENV set there selects
// the environment-specific files that follow.
func loadDotenv() {
	merged := map[string]string{}
	read := func(files ...string) {
		for _, f := range files {
			vals, err := godotenv.Read(f)
			if err != nil {
				continue
			}
			for k, v := range vals {
				merged[k] = v
			}
		}
	}
	read(".env", ".env.local")
	appEnv := os.Getenv("APP_ENV")
	if appEnv == "" {
		appEnv = merged["APP_ENV"]
	}
	if appEnv == "" {
		appEnv = EnvDevelopment
	}
	read(".env."+appEnv, ".env."+appEnv+".local")
	for k, v := range merged {
		if _, set := os.LookupEnv(k); !set {
			_ = os.Setenv(k, v)
		}
	}
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil {
			return -1
		}
		return i
	}
	return def
}

func envDur(k string, def int) time.Duration {
	if v := os.Getenv(k); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil {
			return -1
		}
		return time.Duration(i)
	}
	return time.Duration(def)
}
