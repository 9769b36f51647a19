package storage

import (
	"path"
	"strings"
)

// Config holds S3-compatible storage configuration.
// Embed this in your app config for env parsing with caarlos0/env.
type Config struct {
	// Bucket is the S3 bucket name (required).
	Bucket string `env:"STORAGE_BUCKET"`

	// AccessKey is the AWS access key ID (required).
	AccessKey string `env:"STORAGE_ACCESS_KEY"`

	// SecretKey is the AWS secret access key (required).
	SecretKey string `env:"STORAGE_SECRET_KEY"`

	// Endpoint is the custom S3 endpoint URL (optional, for MinIO or other S3-compatible services).
	Endpoint string `env:"STORAGE_ENDPOINT"`

	// Region is the AWS region (default: us-east-1).
	Region string `env:"STORAGE_REGION" envDefault:"us-east-1"`

	// Prefix is prepended to every key (optional).
	Prefix string `env:"STORAGE_PREFIX"`

	// PathStyle enables path-style URLs (required for MinIO).
	PathStyle bool `env:"STORAGE_PATH_STYLE"`

	// MaxObjectSize is the largest object Read accepts, in bytes (default: 25MB).
	MaxObjectSize int64 `env:"STORAGE_MAX_OBJECT_SIZE" envDefault:"26214400"`
}

// Default configuration values.
const (
	DefaultRegion        = "us-east-1"
	DefaultMaxObjectSize = 25 << 20 // 25MB, the common provider attachment limit
)

// Enabled reports whether enough is configured to create a client.
func (c Config) Enabled() bool {
	return c.Bucket != ""
}

// applyDefaults fills in default values for empty config fields.
func (c *Config) applyDefaults() {
	if c.Region == "" {
		c.Region = DefaultRegion
	}
	if c.MaxObjectSize <= 0 {
		c.MaxObjectSize = DefaultMaxObjectSize
	}
	c.Prefix = strings.Trim(c.Prefix, "/")
}

// validate checks that required configuration fields are set.
func (c *Config) validate() error {
	if c.Bucket == "" || c.AccessKey == "" || c.SecretKey == "" {
		return ErrInvalidConfig
	}
	return nil
}

// objectKey joins the configured prefix and key.
// Keys that are empty or climb out of the prefix are rejected.
func (c *Config) objectKey(key string) (string, error) {
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	if key == "" {
		return "", ErrInvalidKey
	}
	for _, seg := range strings.Split(key, "/") {
		if seg == ".." {
			return "", ErrInvalidKey
		}
	}
	if c.Prefix == "" {
		return key, nil
	}
	return path.Join(c.Prefix, key), nil
}
