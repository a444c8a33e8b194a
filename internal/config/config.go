package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds all runtime settings, resolved from the environment.
type Config struct {
	HTTPAddr  string `env:"HTTP_ADDR" envDefault:":8080"`
	RunLocal  bool   `env:"RUN_LOCAL" envDefault:"false"`
	AWSRegion string `env:"AWS_REGION" envDefault:"eu-west-2"`

	ItemsTable  string `env:"ITEMS_TABLE" envDefault:"ItemTableWithImages"`
	ImageBucket string `env:"IMAGE_BUCKET" envDefault:"oortcloud-test1"`

	// ScratchRoot is where per-request image download directories are
	// created; empty means the OS temp directory.
	ScratchRoot     string `env:"IMAGE_SCRATCH_DIR"`
	SearchBaseURL   string `env:"IMAGE_SEARCH_URL" envDefault:"https://www.bing.com/images/search"`
	DownloadWorkers int    `env:"IMAGE_DOWNLOAD_WORKERS" envDefault:"1"`
	MaxCandidates   int    `env:"IMAGE_MAX_CANDIDATES" envDefault:"5"`

	URLExpirySeconds int    `env:"DOWNLOAD_URL_EXPIRY_SECONDS" envDefault:"60"`
	MetricsNamespace string `env:"METRICS_NAMESPACE" envDefault:"ItemCatalog"`
}

// Load parses the configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	return cfg, nil
}
