// Package config defines service configuration structures and loading hooks.
//
// Conventions:
//   - New() returns a Config populated with defaults.
//   - Load(ctx) layers a .env file, an optional YAML file and BOOKS_* env vars on top.
//   - Errors returned from this package match ErrLoadConfig or ErrInvalidConfig.
package config

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel error kinds; every error returned by Load matches one of them.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
)

// Storage backends.
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendS3     = "s3"
	BackendRedis  = "redis"
)

// Id assignment strategies.
const (
	IDStrategyLength = "length"
	IDStrategyMax    = "max"
)

const defaultMaxBodyBytes = 1 << 20

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. "localhost:3000".
	Addr string `koanf:"addr"`

	// StorageBackend selects where the books document lives: file, memory, s3, redis.
	StorageBackend string `koanf:"storage_backend"`

	// DataFile is the path of the JSON document for the file backend.
	DataFile string `koanf:"data_file"`

	// InitIfMissing creates an empty collection at startup when the document does not exist.
	InitIfMissing bool `koanf:"init_if_missing"`

	// IDStrategy picks how new ids are computed: "length" (len+1) or "max" (max id + 1).
	IDStrategy string `koanf:"id_strategy"`

	// StrictPayloads rejects create/update bodies without title or author.
	StrictPayloads bool `koanf:"strict_payloads"`

	// MaxBodyBytes caps request body size.
	MaxBodyBytes int64 `koanf:"max_body_bytes"`

	// S3 backend.
	S3Bucket   string `koanf:"s3_bucket"`
	S3Key      string `koanf:"s3_key"`
	S3Region   string `koanf:"s3_region"`
	S3Endpoint string `koanf:"s3_endpoint"`

	// Redis backend.
	RedisURL string `koanf:"redis_url"`
	RedisKey string `koanf:"redis_key"`

	// DocsTitle and DocsVersion feed the generated API description.
	DocsTitle   string `koanf:"docs_title"`
	DocsVersion string `koanf:"docs_version"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:       "info",
		LogFormat:      "text",
		Addr:           "localhost:3000",
		StorageBackend: BackendFile,
		DataFile:       "./books.json",
		InitIfMissing:  true,
		IDStrategy:     IDStrategyLength,
		StrictPayloads: true,
		MaxBodyBytes:   defaultMaxBodyBytes,
		S3Key:          "books.json",
		RedisKey:       "books",
		DocsTitle:      "Books API Documentation",
		DocsVersion:    "0.0.1",
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	switch c.IDStrategy {
	case IDStrategyLength, IDStrategyMax:
	default:
		return fmt.Errorf("%w: unknown id_strategy %q", ErrInvalidConfig, c.IDStrategy)
	}
	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("%w: max_body_bytes must be positive", ErrInvalidConfig)
	}

	switch c.StorageBackend {
	case BackendFile:
		if strings.TrimSpace(c.DataFile) == "" {
			return fmt.Errorf("%w: data_file must not be empty", ErrInvalidConfig)
		}
	case BackendMemory:
	case BackendS3:
		if c.S3Bucket == "" || c.S3Key == "" {
			return fmt.Errorf("%w: s3 backend requires s3_bucket and s3_key", ErrInvalidConfig)
		}
	case BackendRedis:
		if c.RedisURL == "" || c.RedisKey == "" {
			return fmt.Errorf("%w: redis backend requires redis_url and redis_key", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown storage_backend %q", ErrInvalidConfig, c.StorageBackend)
	}
	return nil
}
