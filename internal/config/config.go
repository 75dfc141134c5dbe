// Package config loads service configuration from the environment, with a
// .env file picked up when present.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the service.
type Config struct {
	// Server
	Port string

	// Storage
	DBPath string

	// JWT
	JwtSecret string
	JwtTTL    time.Duration

	// Receipt parse service
	ParserBaseURL string
	ParserTimeout time.Duration

	// S3-compatible image storage. Image persistence is disabled when
	// Bucket is empty.
	AwsAccessKeyID     string
	AwsSecretAccessKey string
	AwsRegion          string
	S3Bucket           string
	S3Endpoint         string
	ImageBaseURL       string
}

// Load reads configuration from the environment. JWT_SECRET is required;
// everything else has a default.
func Load() (*Config, error) {
	// Missing .env is fine; env vars may come from the environment proper.
	_ = godotenv.Load()

	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		DBPath:             getEnv("DB_PATH", "./data/splitr.db"),
		JwtSecret:          os.Getenv("JWT_SECRET"),
		ParserBaseURL:      getEnv("PARSER_URL", "http://localhost:8000"),
		AwsAccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
		AwsSecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		AwsRegion:          getEnv("AWS_REGION", "auto"),
		S3Bucket:           os.Getenv("S3_BUCKET"),
		S3Endpoint:         os.Getenv("S3_ENDPOINT"),
		ImageBaseURL:       os.Getenv("IMAGE_BASE_URL"),
	}

	if cfg.JwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	var err error
	cfg.JwtTTL, err = getDuration("JWT_TTL_HOURS", time.Hour, 24*time.Hour)
	if err != nil {
		return nil, err
	}
	cfg.ParserTimeout, err = getDuration("PARSER_TIMEOUT_SECONDS", time.Second, 60*time.Second)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getDuration(key string, unit, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, value)
	}
	return time.Duration(n) * unit, nil
}
