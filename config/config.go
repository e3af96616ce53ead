// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config carries everything the api process needs to start.
type Config struct {
	// Addr is the HTTP listen address.
	Addr string
	// DatabaseURL is the pgx connection string. Required.
	DatabaseURL string
	// JWTSigningKey signs staff and candidate tokens. Required.
	JWTSigningKey string
	// RedisAddr enables verification rate limiting when set.
	RedisAddr string
	// KafkaBrokers enables outbox publishing when set.
	KafkaBrokers []string
	// DispatchInterval is the outbox polling period.
	DispatchInterval time.Duration
	// VerifyAttemptsPerMinute caps verification attempts per client.
	VerifyAttemptsPerMinute int
}

// FromEnv reads configuration, applying defaults for everything optional.
func FromEnv() (Config, error) {
	cfg := Config{
		Addr:                    getenv("ADDR", ":8080"),
		DatabaseURL:             os.Getenv("DATABASE_URL"),
		JWTSigningKey:           os.Getenv("JWT_SIGNING_KEY"),
		RedisAddr:               os.Getenv("REDIS_ADDR"),
		DispatchInterval:        5 * time.Second,
		VerifyAttemptsPerMinute: 10,
	}

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("config: DATABASE_URL is required")
	}
	if cfg.JWTSigningKey == "" {
		return Config{}, fmt.Errorf("config: JWT_SIGNING_KEY is required")
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}

	if raw := os.Getenv("DISPATCH_INTERVAL"); raw != "" {
		interval, err := time.ParseDuration(raw)
		if err != nil {
			return Config{}, fmt.Errorf("config: DISPATCH_INTERVAL: %w", err)
		}
		cfg.DispatchInterval = interval
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
