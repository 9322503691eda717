// Package config defines the engine's Config struct and validation,
// populated either programmatically via functional options (the common
// case for an embedded SDK) or from environment variables for the
// example daemon (cmd/eventcored).
package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/rudderlabs/rudder-go-batch-engine/pkg/eventbatch/model"
)

// Defaults favor conservative, explicit tuning.
const (
	DefaultMaxPayloadSize = 32 * 1024
	DefaultMaxBatchSize   = 500 * 1024
)

// Config holds the upload engine's tunables plus the domain-stack
// options (Redis/Postgres KV backend selection, archival, control
// plane, diagnostics).
type Config struct {
	DataPlaneURL string `env:"DATA_PLANE_URL" validate:"required,url"`
	WriteKey     string `env:"WRITE_KEY"      validate:"required"`

	GzipEnabled bool                  `env:"GZIP_ENABLED"`
	Platform    model.PlatformType    `env:"-"`

	MaxPayloadSize int `env:"MAX_PAYLOAD_SIZE" validate:"gt=0"`
	MaxBatchSize   int `env:"MAX_BATCH_SIZE"   validate:"gt=0"`

	// BaseDir is the file-backend root directory; empty means the
	// in-memory backends are used instead (tests, short-lived embeds).
	BaseDir string `env:"BASE_DIR"`

	// Redis/Postgres KV backend DSNs; at most one should be set. Empty
	// means the file/memory KeyValueStore backend is used.
	RedisAddr  string `env:"REDIS_ADDR"`
	PostgresDSN string `env:"POSTGRES_DSN"`

	// ArchiveEnabled turns on the optional Mongo archival sink, off by
	// default.
	ArchiveEnabled bool   `env:"ARCHIVE_ENABLED"`
	ArchiveMongoURI string `env:"ARCHIVE_MONGO_URI"`

	// ControlPlaneAddr, when non-empty, starts the gRPC control-plane
	// listener.
	ControlPlaneAddr string `env:"CONTROL_PLANE_ADDR"`

	// DiagnosticsAddr, when non-empty, starts the read-only fiber
	// diagnostics server.
	DiagnosticsAddr string `env:"DIAGNOSTICS_ADDR"`

	// LogLevel tunes internal/platform/mlog's zap backend.
	LogLevel string `env:"LOG_LEVEL"`
}

// Option mutates a Config under construction.
type Option func(*Config)

// WithDataPlaneURL sets the data-plane base URL.
func WithDataPlaneURL(url string) Option { return func(c *Config) { c.DataPlaneURL = url } }

// WithWriteKey sets the write key.
func WithWriteKey(key string) Option { return func(c *Config) { c.WriteKey = key } }

// WithGzip toggles request-body compression.
func WithGzip(enabled bool) Option { return func(c *Config) { c.GzipEnabled = enabled } }

// WithPlatform sets the deployment platform type.
func WithPlatform(p model.PlatformType) Option { return func(c *Config) { c.Platform = p } }

// WithMaxPayloadSize sets the per-event size cap.
func WithMaxPayloadSize(n int) Option { return func(c *Config) { c.MaxPayloadSize = n } }

// WithMaxBatchSize sets the open-batch rollover threshold.
func WithMaxBatchSize(n int) Option { return func(c *Config) { c.MaxBatchSize = n } }

// WithBaseDir selects the file-backed storage root.
func WithBaseDir(dir string) Option { return func(c *Config) { c.BaseDir = dir } }

// WithRedisAddr selects the Redis-backed KeyValueStore.
func WithRedisAddr(addr string) Option { return func(c *Config) { c.RedisAddr = addr } }

// WithPostgresDSN selects the Postgres-backed KeyValueStore.
func WithPostgresDSN(dsn string) Option { return func(c *Config) { c.PostgresDSN = dsn } }

// WithArchive enables the Mongo archival sink.
func WithArchive(mongoURI string) Option {
	return func(c *Config) {
		c.ArchiveEnabled = true
		c.ArchiveMongoURI = mongoURI
	}
}

// WithControlPlaneAddr starts the gRPC control plane on addr.
func WithControlPlaneAddr(addr string) Option { return func(c *Config) { c.ControlPlaneAddr = addr } }

// WithDiagnosticsAddr starts the diagnostics HTTP server on addr.
func WithDiagnosticsAddr(addr string) Option { return func(c *Config) { c.DiagnosticsAddr = addr } }

// WithLogLevel sets the zap log level ("debug", "info", "warn", "error").
func WithLogLevel(level string) Option { return func(c *Config) { c.LogLevel = level } }

// New builds a Config from defaults plus the given options, then
// validates it.
func New(opts ...Option) (Config, error) {
	c := Config{
		MaxPayloadSize: DefaultMaxPayloadSize,
		MaxBatchSize:   DefaultMaxBatchSize,
		Platform:       model.Server,
		LogLevel:       "info",
	}

	for _, opt := range opts {
		opt(&c)
	}

	if err := c.Validate(); err != nil {
		return Config{}, err
	}

	return c, nil
}

// Validate runs struct-tag validation via go-playground/validator.
func (c Config) Validate() error {
	v := validator.New()

	if err := v.Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	return nil
}
