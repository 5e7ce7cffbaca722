// Package config manages application configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Config holds all application configuration.
type Config struct {
	// APIKey is the YouTube Data API credential. Its absence is a
	// recoverable condition when prior output exists.
	APIKey string `json:"api_key"`

	// ChannelID is the channel whose playlists are crawled.
	ChannelID string `json:"channel_id"`

	// OutputDir is the root of the emitted data tree.
	OutputDir string `json:"output_dir"`

	// PageSize is the listing-page size.
	PageSize int `json:"page_size"`

	// SearchChunkSize is the flat search index chunk size.
	SearchChunkSize int `json:"search_chunk_size"`

	// RecentWindow bounds how many recent uploads the incremental
	// planner inspects.
	RecentWindow int `json:"recent_window"`

	// RequestsPerSecond paces YouTube API calls.
	RequestsPerSecond float64 `json:"requests_per_second"`
}

// DefaultConfig returns configuration with the site's fixed constants.
func DefaultConfig() *Config {
	return &Config{
		ChannelID:         "UCHUZYEvS7utmviL1C3EYrwA",
		OutputDir:         filepath.Join("public", "data"),
		PageSize:          24,
		SearchChunkSize:   500,
		RecentWindow:      100,
		RequestsPerSecond: 8,
	}
}

// Load loads configuration from defaults, then an optional config
// file, then environment variables.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	if err := cfg.loadFromFile(); err != nil {
		// Config file is optional
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	cfg.loadFromEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFromFile attempts to load config from durussync.json in the
// current directory or the user config directory.
func (c *Config) loadFromFile() error {
	paths := []string{
		"durussync.json",
		filepath.Join(os.Getenv("HOME"), ".config", "durussync", "durussync.json"),
	}

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return err
		}

		if err := json.Unmarshal(data, c); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
		return nil
	}

	return os.ErrNotExist
}

// loadFromEnv overrides config with environment variables.
func (c *Config) loadFromEnv() {
	if v := os.Getenv("YOUTUBE_API_KEY"); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv("DURUSSYNC_CHANNEL_ID"); v != "" {
		c.ChannelID = v
	}
	if v := os.Getenv("DURUSSYNC_OUTPUT_DIR"); v != "" {
		c.OutputDir = v
	}
	if v := os.Getenv("DURUSSYNC_PAGE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.PageSize = n
		}
	}
	if v := os.Getenv("DURUSSYNC_SEARCH_CHUNK_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.SearchChunkSize = n
		}
	}
	if v := os.Getenv("DURUSSYNC_RECENT_WINDOW"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RecentWindow = n
		}
	}
	if v := os.Getenv("DURUSSYNC_REQUESTS_PER_SECOND"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.RequestsPerSecond = f
		}
	}
}

// Validate checks configuration validity.
func (c *Config) Validate() error {
	if c.ChannelID == "" {
		return fmt.Errorf("channel_id must be set")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output_dir must be set")
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("page_size must be positive")
	}
	if c.SearchChunkSize <= 0 {
		return fmt.Errorf("search_chunk_size must be positive")
	}
	if c.RecentWindow <= 0 {
		return fmt.Errorf("recent_window must be positive")
	}
	if c.RequestsPerSecond <= 0 {
		return fmt.Errorf("requests_per_second must be positive")
	}
	return nil
}
