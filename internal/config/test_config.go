package config

import "time"

// TestConfig returns a config suitable for testing
func TestConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:    MemoryPath, // in-memory sqlite database
			Backend: "sqlite",
			Timeout: 1 * time.Second,
		},
		Feed: FeedConfig{
			HTTPTimeout:       5 * time.Second,
			UserAgent:         "pequod-test/1.0",
			MaxEntryAge:       5 * 24 * time.Hour,
			SyncConcurrency:   2,
			MaxBodyBytes:      1 << 20,
			AllowPrivateHosts: true,
		},
		UI:    defaultConfig().UI,
		Media: defaultConfig().Media,
		Log:   LogConfig{Level: "off"},
	}
}
