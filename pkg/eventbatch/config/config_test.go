package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rudderlabs/rudder-go-batch-engine/pkg/eventbatch/model"
)

func TestNewAppliesDefaults(t *testing.T) {
	c, err := New(
		WithDataPlaneURL("https://data.example.com"),
		WithWriteKey("write-key"),
	)
	require.NoError(t, err)

	assert.Equal(t, DefaultMaxPayloadSize, c.MaxPayloadSize)
	assert.Equal(t, DefaultMaxBatchSize, c.MaxBatchSize)
	assert.Equal(t, model.Server, c.Platform)
	assert.Equal(t, "info", c.LogLevel)
}

func TestNewOptionsOverrideDefaults(t *testing.T) {
	c, err := New(
		WithDataPlaneURL("https://data.example.com"),
		WithWriteKey("write-key"),
		WithGzip(true),
		WithPlatform(model.Mobile),
		WithMaxPayloadSize(1024),
		WithMaxBatchSize(2048),
		WithBaseDir("/tmp/eventcored"),
		WithRedisAddr("localhost:6379"),
		WithArchive("mongodb://localhost:27017"),
		WithControlPlaneAddr(":9090"),
		WithDiagnosticsAddr(":8080"),
		WithLogLevel("debug"),
	)
	require.NoError(t, err)

	assert.True(t, c.GzipEnabled)
	assert.Equal(t, model.Mobile, c.Platform)
	assert.Equal(t, 1024, c.MaxPayloadSize)
	assert.Equal(t, 2048, c.MaxBatchSize)
	assert.Equal(t, "/tmp/eventcored", c.BaseDir)
	assert.Equal(t, "localhost:6379", c.RedisAddr)
	assert.True(t, c.ArchiveEnabled)
	assert.Equal(t, "mongodb://localhost:27017", c.ArchiveMongoURI)
	assert.Equal(t, ":9090", c.ControlPlaneAddr)
	assert.Equal(t, ":8080", c.DiagnosticsAddr)
	assert.Equal(t, "debug", c.LogLevel)
}

func TestNewRequiresDataPlaneURLAndWriteKey(t *testing.T) {
	_, err := New()
	assert.Error(t, err)

	_, err = New(WithWriteKey("write-key"))
	assert.Error(t, err)

	_, err = New(WithDataPlaneURL("https://data.example.com"))
	assert.Error(t, err)
}

func TestNewRejectsMalformedURL(t *testing.T) {
	_, err := New(WithDataPlaneURL("not-a-url"), WithWriteKey("write-key"))
	assert.Error(t, err)
}

func TestValidateRejectsNonPositiveSizes(t *testing.T) {
	c, err := New(WithDataPlaneURL("https://data.example.com"), WithWriteKey("write-key"))
	require.NoError(t, err)

	c.MaxPayloadSize = 0
	assert.Error(t, c.Validate())

	c.MaxPayloadSize = DefaultMaxPayloadSize
	c.MaxBatchSize = -1
	assert.Error(t, c.Validate())
}
