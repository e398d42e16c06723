package main

import (
	"encoding/json"
	"fmt"
	"os"
)

// StoreConfig selects and configures the blob store holding serialized maps.
type StoreConfig struct {
	Kind      string `json:"kind"`                 // local, memory, minio or s3
	Root      string `json:"root,omitempty"`       // local directory
	Bucket    string `json:"bucket,omitempty"`     // minio and s3
	Prefix    string `json:"prefix,omitempty"`     // key prefix for minio and s3
	Endpoint  string `json:"endpoint,omitempty"`   // minio host:port, or a custom s3 endpoint URL
	Region    string `json:"region,omitempty"`     // s3 region
	AccessKey string `json:"access_key,omitempty"` // minio credentials
	SecretKey string `json:"secret_key,omitempty"`
	Secure    bool   `json:"secure,omitempty"` // use TLS for minio
}

// Merge applies non-zero values from source into c.
func (c *StoreConfig) Merge(source *StoreConfig) {
	if source.Kind != "" {
		c.Kind = source.Kind
	}
	if source.Root != "" {
		c.Root = source.Root
	}
	if source.Bucket != "" {
		c.Bucket = source.Bucket
	}
	if source.Prefix != "" {
		c.Prefix = source.Prefix
	}
	if source.Endpoint != "" {
		c.Endpoint = source.Endpoint
	}
	if source.Region != "" {
		c.Region = source.Region
	}
	if source.AccessKey != "" {
		c.AccessKey = source.AccessKey
	}
	if source.SecretKey != "" {
		c.SecretKey = source.SecretKey
	}
	if source.Secure {
		c.Secure = true
	}
}

// Config holds the settings of the eqs command.
type Config struct {
	Store       StoreConfig `json:"store"`
	Compression string      `json:"compression,omitempty"` // none, lz4 or zstd
	Workers     int         `json:"workers,omitempty"`     // goroutines per operation; 0 uses every CPU
	LogLevel    string      `json:"log_level,omitempty"`
	IOLimit     int         `json:"io_limit,omitempty"` // bytes per second; 0 disables throttling
}

// DefaultConfig stores maps in the current directory without compression.
func DefaultConfig() Config {
	return Config{
		Store: StoreConfig{
			Kind: "local",
			Root: ".",
		},
		Compression: "none",
		LogLevel:    "warn",
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	c.Store.Merge(&source.Store)

	if source.Compression != "" {
		c.Compression = source.Compression
	}
	if source.Workers > 0 {
		c.Workers = source.Workers
	}
	if source.LogLevel != "" {
		c.LogLevel = source.LogLevel
	}
	if source.IOLimit > 0 {
		c.IOLimit = source.IOLimit
	}
}

// LoadConfig reads a JSON config file, merges it with defaults, and returns
// the resulting Config.
func LoadConfig(filename string) (*Config, error) {
	cfg := DefaultConfig()

	//nolint:gosec // G304: the config path is chosen by the user
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var loaded Config
	if err := json.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.Merge(&loaded)
	return &cfg, nil
}
