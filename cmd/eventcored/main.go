// Command eventcored runs the batch-upload engine as a standalone daemon:
// one Uploader per write key, driven entirely by environment
// configuration. Most hosts embed pkg/eventbatch directly; this binary
// exists for standalone deployments and as a reference wiring for
// internal/bootstrap.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rudderlabs/rudder-go-batch-engine/internal/bootstrap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dc, err := bootstrap.LoadDaemonConfig()
	if err != nil {
		panic(err)
	}

	logger, err := bootstrap.NewLogger(dc.EngineConfig.LogLevel)
	if err != nil {
		panic(err)
	}

	telemetry := bootstrap.NewTelemetry(dc)

	shutdownTelemetry, err := telemetry.Init(ctx)
	if err != nil {
		logger.Errorf("eventcored: initializing telemetry: %v", err)
		os.Exit(1)
	}

	defer func() {
		if err := shutdownTelemetry(context.Background()); err != nil {
			logger.Errorf("eventcored: shutting down telemetry: %v", err)
		}
	}()

	svc, err := bootstrap.NewService(ctx, dc, logger)
	if err != nil {
		logger.Errorf("eventcored: building service: %v", err)
		os.Exit(1)
	}

	defer svc.Close()

	svc.Run()

	if dc.EngineConfig.ControlPlaneAddr != "" {
		go func() {
			if err := svc.ListenControlPlane(dc.EngineConfig.ControlPlaneAddr); err != nil {
				logger.Errorf("eventcored: control plane listener stopped: %v", err)
			}
		}()

		logger.Infof("eventcored: control plane listening on %s", dc.EngineConfig.ControlPlaneAddr)
	}

	if dc.EngineConfig.DiagnosticsAddr != "" {
		go func() {
			if err := svc.ListenDiagnostics(dc.EngineConfig.DiagnosticsAddr); err != nil {
				logger.Errorf("eventcored: diagnostics listener stopped: %v", err)
			}
		}()

		logger.Infof("eventcored: diagnostics listening on %s", dc.EngineConfig.DiagnosticsAddr)
	}

	logger.Infof("eventcored: engine running for write key %q against %s", dc.EngineConfig.WriteKey, dc.EngineConfig.DataPlaneURL)

	<-ctx.Done()

	logger.Infof("eventcored: shutdown signal received, draining")

	svc.Uploader.Flush()
}
