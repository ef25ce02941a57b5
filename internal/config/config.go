package config // package config loads application configuration from environment variables

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Optional groups (cache, rate limit, redis) have
// their own loaders in this package.
type Config struct {
	Env         string        // application environment (development, production)
	Port        string        // HTTP port to listen on
	DatabaseURL string        // postgres connection string
	PGSSL       bool          // require TLS to postgres
	JWTSecret   string        // secret used to sign JWTs
	TokenTTL    time.Duration // lifetime of issued tokens
	ClientURL   string        // front-end origin, used for CORS and verification links
	RabbitURL   string        // broker URL; empty disables event publishing
	SeedOnStart bool          // insert demo data when serving
	SeedPass    string        // password given to seeded accounts
}

// Load reads an optional .env file and then the environment.  Required
// variables are enforced by must() and missing values halt the process.
func Load() Config {
	_ = godotenv.Load()
	return Config{
		Env:         envStr("APP_ENV", "development"),
		Port:        envStr("PORT", "3000"),
		DatabaseURL: must("DATABASE_URL"),
		PGSSL:       envBool("PGSSL", false),
		JWTSecret:   must("JWT_SECRET"),
		TokenTTL:    time.Duration(envInt("TOKEN_TTL_HOURS", 168)) * time.Hour,
		ClientURL:   envStr("CLIENT_URL", "http://localhost:5173"),
		RabbitURL:   envStr("RABBITMQ_URL", ""),
		SeedOnStart: envBool("SEED_ON_START", true),
		SeedPass:    envStr("SEED_PASSWORD", "outy1234"),
	}
}

// IsDevelopment reports whether the service runs with developer defaults.
func (c Config) IsDevelopment() bool { return c.Env == "development" || c.Env == "dev" }

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v := envStr(key, "")
	if v == "" {
		log.Fatal().Str("key", key).Msg("missing required env var")
	}
	return v
}
