package controlplane

import (
	"context"
	"sync"

	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/rudderlabs/rudder-go-batch-engine/internal/platform/mlog"
	"github.com/rudderlabs/rudder-go-batch-engine/pkg/eventbatch/backoff"
	"github.com/rudderlabs/rudder-go-batch-engine/pkg/eventbatch/retryheaders"
	"github.com/rudderlabs/rudder-go-batch-engine/pkg/eventbatch/uploader"
)

// EngineServer implements Server against a running Uploader. Host
// callback events (invalid write-key, source disabled) are published
// to every currently-connected WatchHostEvents subscriber.
type EngineServer struct {
	uploader *uploader.Uploader
	backoff  *backoff.Policy
	retry    *retryheaders.Provider
	logger   mlog.Logger

	mu   sync.Mutex
	subs map[chan *structpb.Struct]struct{}
}

// NewEngineServer builds an EngineServer.
func NewEngineServer(u *uploader.Uploader, b *backoff.Policy, retry *retryheaders.Provider, logger mlog.Logger) *EngineServer {
	if logger == nil {
		logger = &mlog.NoneLogger{}
	}

	return &EngineServer{
		uploader: u,
		backoff:  b,
		retry:    retry,
		logger:   logger,
		subs:     make(map[chan *structpb.Struct]struct{}),
	}
}

// Flush implements Server.
func (s *EngineServer) Flush(_ context.Context, _ *emptypb.Empty) (*emptypb.Empty, error) {
	s.uploader.Flush()
	return &emptypb.Empty{}, nil
}

// Cancel implements Server.
func (s *EngineServer) Cancel(_ context.Context, _ *emptypb.Empty) (*emptypb.Empty, error) {
	s.uploader.Cancel()
	return &emptypb.Empty{}, nil
}

// Status implements Server.
func (s *EngineServer) Status(_ context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	fields := map[string]any{
		"state":             s.uploader.State().String(),
		"pendingSignals":    float64(s.uploader.PendingSignals()),
		"backoffExhausted":  s.backoff.Exhausted(),
	}

	if rec, ok := s.retry.Peek(); ok {
		fields["lastRetryReason"] = rec.Reason
	}

	st, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, err
	}

	return st, nil
}

// WatchHostEvents implements Server: it blocks, streaming host callback
// events until the subscriber disconnects.
func (s *EngineServer) WatchHostEvents(_ *emptypb.Empty, stream ControlPlane_WatchHostEventsServer) error {
	ch := make(chan *structpb.Struct, 8)

	s.mu.Lock()
	s.subs[ch] = struct{}{}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.subs, ch)
		s.mu.Unlock()
	}()

	for {
		select {
		case <-stream.Context().Done():
			return stream.Context().Err()
		case event := <-ch:
			if err := stream.Send(event); err != nil {
				return err
			}
		}
	}
}

// PublishInvalidWriteKey notifies every subscriber that the engine
// cancelled on an Error401. Wire this up as the
// uploader.Callbacks.OnInvalidWriteKey hook.
func (s *EngineServer) PublishInvalidWriteKey() {
	s.publish("invalid_write_key", "write key rejected by data plane (401)")
}

// PublishSourceDisabled notifies every subscriber that the engine
// cancelled on an Error404. Wire this up as the
// uploader.Callbacks.OnSourceDisabled hook.
func (s *EngineServer) PublishSourceDisabled() {
	s.publish("source_disabled", "source disabled by data plane (404)")
}

func (s *EngineServer) publish(kind, message string) {
	event, err := structpb.NewStruct(map[string]any{
		"kind":    kind,
		"message": message,
	})
	if err != nil {
		s.logger.Errorf("controlplane: building host event: %v", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for ch := range s.subs {
		select {
		case ch <- event:
		default:
			s.logger.Warn("controlplane: dropping host event, subscriber channel full")
		}
	}
}
