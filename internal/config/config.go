package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// Server
	Port        int    `envconfig:"PORT" default:"3000"`
	Environment string `envconfig:"ENV" default:"development"`

	// Database
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	// Providers
	FaceProvider string `envconfig:"FACE_PROVIDER" default:"insight"`
	OCRProvider  string `envconfig:"OCR_PROVIDER" default:"rekognition"`
	InsightURL   string `envconfig:"INSIGHT_URL" default:"http://localhost:5005"`
	AWSRegion    string `envconfig:"AWS_REGION" default:"us-east-1"`

	// Security
	APIKeyHash string `envconfig:"API_KEY_HASH" required:"true"`

	// Liveness tuning
	SessionTTL     time.Duration `envconfig:"SESSION_TTL" default:"600s"`
	SmileThreshold float64       `envconfig:"SMILE_THRESHOLD" default:"50.0"`
	SpoofThreshold float64       `envconfig:"SPOOF_THRESHOLD" default:"0.3"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
