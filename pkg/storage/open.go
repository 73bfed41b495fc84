package storage

import (
	"context"
	"slices"
	"strings"
	"time"

	errs "github.com/matzehuels/blokdust/pkg/errors"
)

// Driver names accepted by [Open].
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverRedis  = "redis"
	DriverMongo  = "mongo"
	DriverS3     = "s3"
	DriverHTTP   = "http"
)

// Drivers lists the supported driver names.
var Drivers = []string{DriverMemory, DriverFile, DriverRedis, DriverMongo, DriverS3, DriverHTTP}

// Config selects and configures a backend.
type Config struct {
	Driver string `toml:"driver"`

	// File
	Dir string `toml:"dir"`

	// Redis
	RedisURL    string        `toml:"redis_url"`
	RedisPrefix string        `toml:"redis_prefix"`
	RedisTTL    time.Duration `toml:"redis_ttl"`

	// Mongo
	MongoURI        string `toml:"mongo_uri"`
	MongoDatabase   string `toml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection"`

	// S3
	S3Bucket    string `toml:"s3_bucket"`
	S3Region    string `toml:"s3_region"`
	S3Endpoint  string `toml:"s3_endpoint"`
	S3PathStyle bool   `toml:"s3_path_style"`
	S3Prefix    string `toml:"s3_prefix"`

	// HTTP
	HTTPURL string `toml:"http_url"`

	// Timeout bounds connection setup and HTTP requests.
	Timeout time.Duration `toml:"timeout"`
}

// Validate checks that the driver is known and its required settings are set.
func (c Config) Validate() error {
	driver := strings.ToLower(c.Driver)
	if !slices.Contains(Drivers, driver) {
		return errs.New(errs.ErrCodeInvalidInput, "unknown storage driver %q (want one of %s)",
			c.Driver, strings.Join(Drivers, ", "))
	}
	var missing string
	switch driver {
	case DriverRedis:
		if c.RedisURL == "" {
			missing = "redis_url"
		}
	case DriverMongo:
		if c.MongoURI == "" {
			missing = "mongo_uri"
		}
	case DriverS3:
		if c.S3Bucket == "" {
			missing = "s3_bucket"
		}
	case DriverHTTP:
		if c.HTTPURL == "" {
			missing = "http_url"
		}
	}
	if missing != "" {
		return errs.New(errs.ErrCodeInvalidInput, "storage driver %s requires %s", driver, missing)
	}
	if c.Timeout < 0 {
		return errs.New(errs.ErrCodeInvalidInput, "storage timeout must not be negative")
	}
	return nil
}

// Open creates the backend named by cfg.Driver, instrumented with the
// storage hooks.
func Open(ctx context.Context, cfg Config) (Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	driver := strings.ToLower(cfg.Driver)
	var (
		s   Store
		err error
	)
	switch driver {
	case DriverMemory:
		s = NewMemory()
	case DriverFile:
		s, err = NewFile(cfg.Dir)
	case DriverRedis:
		s, err = NewRedis(ctx, cfg.RedisURL, cfg.RedisPrefix, cfg.RedisTTL)
	case DriverMongo:
		s, err = NewMongo(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection)
	case DriverS3:
		s, err = NewS3(ctx, S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			PathStyle: cfg.S3PathStyle,
			Prefix:    cfg.S3Prefix,
		})
	case DriverHTTP:
		s, err = NewHTTP(cfg.HTTPURL, nil, cfg.Timeout)
	}
	if err != nil {
		return nil, err
	}
	return Instrument(driver, s), nil
}
