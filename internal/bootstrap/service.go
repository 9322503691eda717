package bootstrap

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"google.golang.org/grpc"

	"github.com/rudderlabs/rudder-go-batch-engine/internal/platform/mlog"
	"github.com/rudderlabs/rudder-go-batch-engine/pkg/eventbatch/archive"
	"github.com/rudderlabs/rudder-go-batch-engine/pkg/eventbatch/backoff"
	"github.com/rudderlabs/rudder-go-batch-engine/pkg/eventbatch/batchmanager"
	"github.com/rudderlabs/rudder-go-batch-engine/pkg/eventbatch/config"
	"github.com/rudderlabs/rudder-go-batch-engine/pkg/eventbatch/controlplane"
	"github.com/rudderlabs/rudder-go-batch-engine/pkg/eventbatch/diagnostics"
	"github.com/rudderlabs/rudder-go-batch-engine/pkg/eventbatch/kvstore"
	"github.com/rudderlabs/rudder-go-batch-engine/pkg/eventbatch/kvstore/postgreskv"
	"github.com/rudderlabs/rudder-go-batch-engine/pkg/eventbatch/kvstore/rediskv"
	"github.com/rudderlabs/rudder-go-batch-engine/pkg/eventbatch/retryheaders"
	"github.com/rudderlabs/rudder-go-batch-engine/pkg/eventbatch/storage"
	"github.com/rudderlabs/rudder-go-batch-engine/pkg/eventbatch/transport"
	"github.com/rudderlabs/rudder-go-batch-engine/pkg/eventbatch/uploader"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Service is a fully wired engine instance for one write key: the
// Uploader plus whichever optional surfaces (control plane, diagnostics,
// archive) the config turned on. Run starts the worker; the listeners
// are started separately. Close cancels the uploader, stops the
// listeners and closes the Redis/Postgres connections.
type Service struct {
	Uploader *uploader.Uploader
	Storage  *storage.Storage

	controlPlane   *controlplane.EngineServer
	grpcServer     *grpc.Server
	diagnosticsSrv *diagnostics.Server
	archiveSink    *archive.Sink

	redisClient *redis.Client
	pgPool      *pgxpool.Pool
}

// NewService wires a DaemonConfig into a Service, following the audit
// component's InitServers convention: connection structs first, then
// repository/backend constructors, then the use-case struct on top.
func NewService(ctx context.Context, dc DaemonConfig, logger mlog.Logger) (*Service, error) {
	cfg := dc.EngineConfig

	counterStore, redisClient, pgPool, err := newCounterStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	batches, err := newBatchManager(cfg, counterStore)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: building batch manager: %w", err)
	}

	st := storage.New(batches, counterStore, cfg.MaxPayloadSize)

	httpClient := transport.NewHTTPClient(&http.Client{Timeout: 30 * time.Second}, cfg.DataPlaneURL, cfg.WriteKey, cfg.GzipEnabled, ApplicationName)

	retryHdrs := retryheaders.New(st)
	backoffPolicy := backoff.New(backoff.DefaultUploadBackoffConfig())

	svc := &Service{Storage: st, redisClient: redisClient, pgPool: pgPool}

	if cfg.ArchiveEnabled {
		conn := &archive.Connection{URI: cfg.ArchiveMongoURI, Database: "eventcored"}
		svc.archiveSink = archive.NewSink(conn, logger)

		if err := svc.archiveSink.EnsureCollection(ctx); err != nil {
			return nil, fmt.Errorf("bootstrap: preparing archive collection: %w", err)
		}
	}

	// onInvalidWriteKey/onSourceDisabled are filled in below once the
	// control plane (if any) exists, so the Uploader can be built once
	// with its final callbacks and the EngineServer can hold the actual
	// Uploader it controls.
	var onInvalidWriteKey, onSourceDisabled func()

	callbacks := uploader.Callbacks{
		OnInvalidWriteKey: func() {
			logger.Errorf("bootstrap: write key %q rejected by data plane, uploader cancelled", cfg.WriteKey)

			if onInvalidWriteKey != nil {
				onInvalidWriteKey()
			}
		},
		OnSourceDisabled: func() {
			logger.Errorf("bootstrap: source for write key %q disabled, uploader cancelled", cfg.WriteKey)

			if onSourceDisabled != nil {
				onSourceDisabled()
			}
		},
	}

	if svc.archiveSink != nil {
		sink := svc.archiveSink
		writeKey := cfg.WriteKey
		callbacks.OnSuccess = func(batchID int64, payload string) {
			sink.Archive(context.Background(), writeKey, batchID, payload)
		}
	}

	svc.Uploader = uploader.New(st, httpClient, retryHdrs, backoffPolicy, callbacks, logger)

	if cfg.ControlPlaneAddr != "" {
		svc.controlPlane = controlplane.NewEngineServer(svc.Uploader, backoffPolicy, retryHdrs, logger)
		svc.grpcServer = grpc.NewServer()
		controlplane.RegisterServer(svc.grpcServer, svc.controlPlane)

		onInvalidWriteKey = svc.controlPlane.PublishInvalidWriteKey
		onSourceDisabled = svc.controlPlane.PublishSourceDisabled
	}

	if cfg.DiagnosticsAddr != "" {
		svc.diagnosticsSrv = diagnostics.NewServer(svc.Uploader, backoffPolicy, retryHdrs, logger)
	}

	return svc, nil
}

// newCounterStore picks the KeyValueStore backend for the open-batch
// counter and retry metadata: Redis or Postgres if configured, else the
// file/memory backend alongside the batch files themselves. Closed batch
// content always stays local (file or memory) regardless of this
// choice — only the small counter/retry-metadata keys move off-box.
func newCounterStore(ctx context.Context, cfg config.Config) (kvstore.KeyValueStore, *redis.Client, *pgxpool.Pool, error) {
	switch {
	case cfg.RedisAddr != "":
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		return rediskv.New(ctx, client, "eventcored"), client, nil, nil

	case cfg.PostgresDSN != "":
		pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("bootstrap: connecting to postgres: %w", err)
		}

		store, err := postgreskv.New(ctx, pool, "eventcored")
		if err != nil {
			pool.Close()
			return nil, nil, nil, fmt.Errorf("bootstrap: preparing postgres kv store: %w", err)
		}

		return store, nil, pool, nil

	case cfg.BaseDir != "":
		store, err := kvstore.NewFileStore(cfg.BaseDir, cfg.WriteKey)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("bootstrap: opening file kv store: %w", err)
		}

		return store, nil, nil, nil

	default:
		return kvstore.NewMemoryStore(), nil, nil, nil
	}
}

// newBatchManager picks the BatchManager backend: file-backed when
// BaseDir is set, otherwise in-memory. Unlike the counter store, this
// choice is never overridden by Redis/Postgres — batch files are always
// local.
func newBatchManager(cfg config.Config, counter kvstore.KeyValueStore) (batchmanager.BatchManager, error) {
	if cfg.BaseDir != "" {
		return batchmanager.NewFileBatchManager(cfg.BaseDir, cfg.WriteKey, cfg.Platform, counter, cfg.MaxBatchSize)
	}

	return batchmanager.NewMemoryBatchManager(cfg.WriteKey, cfg.Platform, counter, cfg.MaxBatchSize), nil
}

// Run starts the uploader worker. Callers wanting the control-plane or
// diagnostics listeners start those separately via ListenControlPlane /
// ListenDiagnostics, typically each in its own goroutine.
func (s *Service) Run() {
	s.Uploader.Start()
}

// ListenControlPlane starts the gRPC control-plane listener on addr,
// blocking until it stops. Call in its own goroutine.
func (s *Service) ListenControlPlane(addr string) error {
	if s.grpcServer == nil {
		return nil
	}

	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("bootstrap: control plane listen on %s: %w", addr, err)
	}

	return s.grpcServer.Serve(lis)
}

// ListenDiagnostics starts the diagnostics HTTP server on addr, blocking
// until it stops. Call in its own goroutine.
func (s *Service) ListenDiagnostics(addr string) error {
	if s.diagnosticsSrv == nil {
		return nil
	}

	return s.diagnosticsSrv.Listen(addr)
}

// Close cancels the uploader, stops the control-plane and diagnostics
// servers, and closes the Redis client or Postgres pool. The archive
// sink's Mongo client is not disconnected.
func (s *Service) Close() {
	s.Uploader.Cancel()

	if s.grpcServer != nil {
		s.grpcServer.GracefulStop()
	}

	if s.diagnosticsSrv != nil {
		_ = s.diagnosticsSrv.Shutdown()
	}

	if s.redisClient != nil {
		_ = s.redisClient.Close()
	}

	if s.pgPool != nil {
		s.pgPool.Close()
	}
}
