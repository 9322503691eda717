// Package bootstrap wires a Config into a running engine: Storage,
// Uploader, and the optional control-plane/diagnostics/archive
// surfaces, in the audit component's InitServers idiom
// (cmd/app/main.go -> internal/bootstrap/{config,service}.go).
package bootstrap

import (
	"fmt"

	"github.com/rudderlabs/rudder-go-batch-engine/internal/platform/envconfig"
	"github.com/rudderlabs/rudder-go-batch-engine/internal/platform/mlog"
	"github.com/rudderlabs/rudder-go-batch-engine/internal/platform/mopentelemetry"
	"github.com/rudderlabs/rudder-go-batch-engine/pkg/eventbatch/config"
	"github.com/rudderlabs/rudder-go-batch-engine/pkg/eventbatch/model"
)

const ApplicationName = "eventcored"

// DaemonConfig is the top-level env-loaded configuration for
// cmd/eventcored, layering daemon-only concerns (telemetry resource
// attributes, platform selection) over the engine's own Config.
type DaemonConfig struct {
	EngineConfig config.Config

	PlatformName string `env:"PLATFORM_TYPE"` // "server" or "mobile"

	OtelServiceName       string `env:"OTEL_RESOURCE_SERVICE_NAME"`
	OtelServiceVersion    string `env:"OTEL_RESOURCE_SERVICE_VERSION"`
	OtelCollectorEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

// LoadDaemonConfig loads a .env file (if present) then populates a
// DaemonConfig from the process environment.
func LoadDaemonConfig() (DaemonConfig, error) {
	envconfig.LoadDotEnv()

	var dc DaemonConfig

	if err := envconfig.Load(&dc.EngineConfig); err != nil {
		return DaemonConfig{}, fmt.Errorf("bootstrap: loading engine config: %w", err)
	}

	if err := envconfig.Load(&dc); err != nil {
		return DaemonConfig{}, fmt.Errorf("bootstrap: loading daemon config: %w", err)
	}

	dc.EngineConfig.Platform = parsePlatform(dc.PlatformName)

	if dc.EngineConfig.MaxPayloadSize == 0 {
		dc.EngineConfig.MaxPayloadSize = config.DefaultMaxPayloadSize
	}

	if dc.EngineConfig.MaxBatchSize == 0 {
		dc.EngineConfig.MaxBatchSize = config.DefaultMaxBatchSize
	}

	if err := dc.EngineConfig.Validate(); err != nil {
		return DaemonConfig{}, err
	}

	return dc, nil
}

func parsePlatform(name string) model.PlatformType {
	if name == "mobile" {
		return model.Mobile
	}

	return model.Server
}

// NewLogger builds the zap-backed Logger for the given level.
func NewLogger(level string) (mlog.Logger, error) {
	logger, err := mlog.NewZapLogger(level)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: building logger: %w", err)
	}

	return logger, nil
}

// NewTelemetry builds a Telemetry bootstrap (not yet started) from dc.
func NewTelemetry(dc DaemonConfig) *mopentelemetry.Telemetry {
	return &mopentelemetry.Telemetry{
		ServiceName:       dc.OtelServiceName,
		ServiceVersion:    dc.OtelServiceVersion,
		CollectorEndpoint: dc.OtelCollectorEndpoint,
	}
}
