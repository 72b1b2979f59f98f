package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration, loaded from the environment.
type Config struct {
	Server        ServerConfig
	Mongo         MongoConfig
	Bunny         BunnyConfig
	Scraper       ScraperConfig
	Whisper       WhisperConfig
	Analyzer      AnalyzerConfig
	Internal      InternalConfig
	Transcription TranscriptionConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8080"`
}

// MongoConfig holds document store configuration.
type MongoConfig struct {
	URI      string `envconfig:"MONGO_URI" required:"true"`
	Database string `envconfig:"MONGO_DATABASE" default:"reel_harvester"`
}

// BunnyConfig holds Bunny Stream CDN configuration.
type BunnyConfig struct {
	APIKey     string        `envconfig:"BUNNY_API_KEY" required:"true"`
	LibraryID  string        `envconfig:"BUNNY_LIBRARY_ID" required:"true"`
	StreamBase string        `envconfig:"BUNNY_STREAM_BASE" default:"https://video.bunnycdn.com"`
	Timeout    time.Duration `envconfig:"BUNNY_TIMEOUT" default:"2m"`
}

// ScraperConfig holds the platform scraping service configuration.
type ScraperConfig struct {
	BaseURL string        `envconfig:"SCRAPER_BASE_URL" required:"true"`
	APIKey  string        `envconfig:"SCRAPER_API_KEY"`
	Timeout time.Duration `envconfig:"SCRAPER_TIMEOUT" default:"45s"`
}

// WhisperConfig holds the transcription service configuration.
type WhisperConfig struct {
	ServerURL string `envconfig:"WHISPER_SERVER_URL" required:"true"`
	Model     string `envconfig:"WHISPER_MODEL" default:"ggml-large-v3-turbo"`
}

// AnalyzerConfig holds the script analysis service configuration.
type AnalyzerConfig struct {
	APIKey  string        `envconfig:"ANALYZER_API_KEY"`
	BaseURL string        `envconfig:"ANALYZER_BASE_URL" default:"https://api.openai.com/v1"`
	Model   string        `envconfig:"ANALYZER_MODEL" default:"gpt-4o-mini"`
	Timeout time.Duration `envconfig:"ANALYZER_TIMEOUT" default:"60s"`
}

// InternalConfig holds the shared secret guarding internal-only routes.
type InternalConfig struct {
	APISecret string `envconfig:"INTERNAL_API_SECRET" required:"true"`
}

// TranscriptionConfig holds background enrichment configuration.
type TranscriptionConfig struct {
	Timeout time.Duration `envconfig:"TRANSCRIPTION_TIMEOUT" default:"5m"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}
	return cfg, nil
}
