package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds the inference service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	ModelPath       string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Prediction event publishing. Disabled when KafkaBrokers is empty.
	KafkaBrokers         []string
	KafkaPredictionTopic string
}

// PublishEnabled reports whether prediction events should be written to Kafka.
func (c *Config) PublishEnabled() bool { return len(c.KafkaBrokers) > 0 }

// Load reads the inference service configuration from environment variables,
// applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	var brokers []string
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		brokers = sharedcfg.ParseBrokers(v)
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8000"),
		ModelPath:       sharedcfg.EnvOrDefault("MODEL_PATH", "models/thunderstorm_model.json"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		KafkaBrokers:         brokers,
		KafkaPredictionTopic: sharedcfg.EnvOrDefault("KAFKA_PREDICTION_TOPIC", "thunderstorm-predictions"),
	}

	if cfg.ModelPath == "" {
		return nil, errors.New("MODEL_PATH is required")
	}
	if cfg.PublishEnabled() && cfg.KafkaPredictionTopic == "" {
		return nil, errors.New("KAFKA_PREDICTION_TOPIC is required when KAFKA_BROKERS is set")
	}

	return cfg, nil
}

// UIConfig holds the client UI settings.
type UIConfig struct {
	Addr            string
	APIURL          string
	APITimeout      time.Duration
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
}

// LoadUI reads the client UI configuration from environment variables.
func LoadUI() (*UIConfig, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	timeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("API_TIMEOUT", "10s"))
	if err != nil || timeout <= 0 {
		return nil, errors.New("invalid API_TIMEOUT")
	}

	cfg := &UIConfig{
		Addr:            sharedcfg.EnvOrDefault("UI_ADDR", ":8501"),
		APIURL:          sharedcfg.EnvOrDefault("API_URL", "http://localhost:8000/predict"),
		APITimeout:      timeout,
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
	}

	u, err := url.Parse(cfg.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid API_URL %q", cfg.APIURL)
	}

	return cfg, nil
}
