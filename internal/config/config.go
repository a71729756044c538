package config

import (
	"os"
	"strconv"
	"time"

	"plate-backend/internal/env"
)

// Config is resolved exactly once at process start. Handlers never read the
// environment directly.
type Config struct {
	Env  string
	Port int

	DatabaseURL         string
	StripeWebhookSecret string
	StripeSecretKey     string
	ExpoAccessToken     string
	JWTSecret           string

	AWSRegion       string
	RateLimitTable  string
	RateLimitMax    int
	RateLimitWindow time.Duration

	MetroMakerCap int
	MetroTakerCap int
}

func Default() Config {
	return Config{
		Env:             "dev",
		Port:            5000,
		DatabaseURL:     "",
		JWTSecret:       "",
		RateLimitMax:    60,
		RateLimitWindow: time.Minute,
		MetroMakerCap:   50,
		MetroTakerCap:   500,
	}
}

func EnvDefaults() Config {
	return fromEnv(Default())
}

func fromEnv(c Config) Config {
	if v := os.Getenv("PLATE_ENV"); v != "" {
		c.Env = v
	}
	if v := os.Getenv("PLATE_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Port = p
		}
	}
	if v := env.First("PLATE_DATABASE_URL", "DATABASE_URL", "SUPABASE_DB_URL"); v != "" {
		c.DatabaseURL = v
	}
	if v := env.First("PLATE_STRIPE_WEBHOOK_SECRET", "STRIPE_WEBHOOK_SECRET"); v != "" {
		c.StripeWebhookSecret = v
	}
	if v := env.First("PLATE_STRIPE_SECRET_KEY", "STRIPE_SECRET_KEY"); v != "" {
		c.StripeSecretKey = v
	}
	if v := env.First("PLATE_EXPO_ACCESS_TOKEN", "EXPO_ACCESS_TOKEN"); v != "" {
		c.ExpoAccessToken = v
	}
	if v := os.Getenv("PLATE_JWT_SECRET"); v != "" {
		c.JWTSecret = v
	}
	if v := env.First("PLATE_AWS_REGION", "AWS_REGION"); v != "" {
		c.AWSRegion = v
	}
	if v := os.Getenv("PLATE_RATELIMIT_TABLE"); v != "" {
		c.RateLimitTable = v
	}
	if v := os.Getenv("PLATE_RATELIMIT_MAX"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.RateLimitMax = n
		}
	}
	if v := os.Getenv("PLATE_RATELIMIT_WINDOW_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.RateLimitWindow = time.Duration(n) * time.Second
		}
	}
	if v := os.Getenv("PLATE_METRO_MAKER_CAP"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.MetroMakerCap = n
		}
	}
	if v := os.Getenv("PLATE_METRO_TAKER_CAP"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.MetroTakerCap = n
		}
	}
	return c
}
