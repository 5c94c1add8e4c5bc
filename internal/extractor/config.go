package extractor

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the extractor settings.
type Config struct {
	BackendURL    string
	ProviderURL   string
	ProviderToken string
	PageSize      int
	PageDelay     time.Duration
	OutputDir     string
	StatePath     string

	// Timeout bounds each call to the backend API. Provider page fetches are not bounded.
	Timeout time.Duration
}

// LoadConfig reads settings from the environment; flags may override them later.
func LoadConfig() (Config, error) {
	pageSize, err := strconv.Atoi(getEnv("PAGE_SIZE", strconv.Itoa(DefaultPageSize)))
	if err != nil || pageSize <= 0 {
		return Config{}, fmt.Errorf("invalid PAGE_SIZE %q", os.Getenv("PAGE_SIZE"))
	}

	delay, err := time.ParseDuration(getEnv("PAGE_DELAY", "100ms"))
	if err != nil || delay < 0 {
		return Config{}, fmt.Errorf("invalid PAGE_DELAY %q", os.Getenv("PAGE_DELAY"))
	}

	statePath := os.Getenv("EXTRACTOR_STATE")
	if statePath == "" {
		if statePath, err = DefaultStatePath(); err != nil {
			return Config{}, err
		}
	}

	return Config{
		BackendURL:    getEnv("BACKEND_URL", "http://localhost:5000/api"),
		ProviderURL:   getEnv("PROVIDER_URL", DefaultProviderURL),
		ProviderToken: os.Getenv("PROVIDER_TOKEN"),
		PageSize:      pageSize,
		PageDelay:     delay,
		OutputDir:     getEnv("OUTPUT_DIR", "."),
		StatePath:     statePath,
		Timeout:       30 * time.Second,
	}, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
