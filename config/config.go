package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// Config is loaded once at startup and passed by value; nothing mutates it
// afterwards.
type Config struct {
	DatabaseURL string
	HTTPAddr    string

	SessionSecret []byte
	TokenIssuer   string
	TokenTTL      time.Duration
	SessionTTL    time.Duration

	MFAIssuer  string
	BcryptCost int

	CookieSecure bool
}

func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %s", err)
	}

	secret := os.Getenv("SESSION_SECRET")
	if secret == "" {
		return Config{}, errors.New("SESSION_SECRET is required")
	}

	cfg := Config{
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		HTTPAddr:      envOr("HTTP_ADDR", ":8080"),
		SessionSecret: []byte(secret),
		TokenIssuer:   envOr("TOKEN_ISSUER", "mfaportal"),
		TokenTTL:      envDuration("TOKEN_TTL", 15*time.Minute),
		SessionTTL:    envDuration("SESSION_TTL", 30*time.Minute),
		MFAIssuer:     envOr("MFA_ISSUER", "MFA Portal"),
		BcryptCost:    envInt("BCRYPT_COST", bcrypt.DefaultCost),
		CookieSecure:  os.Getenv("COOKIE_SECURE") != "false",
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("invalid %s %q, using %s", key, value, fallback)
		return fallback
	}
	return parsed
}

func envInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("invalid %s %q, using %d", key, value, fallback)
		return fallback
	}
	return parsed
}
