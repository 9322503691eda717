// Package uploader implements the Uploader state machine: it drains an
// unbounded signal channel, rolls over pending events on
// each signal, and uploads every closed batch sequentially through an
// HTTPSender, driving RetryHeadersProvider and BackoffPolicy between
// attempts.
package uploader

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rudderlabs/rudder-go-batch-engine/internal/platform/mlog"
	"github.com/rudderlabs/rudder-go-batch-engine/pkg/eventbatch/backoff"
	"github.com/rudderlabs/rudder-go-batch-engine/pkg/eventbatch/model"
	"github.com/rudderlabs/rudder-go-batch-engine/pkg/eventbatch/retryheaders"
	"github.com/rudderlabs/rudder-go-batch-engine/pkg/eventbatch/storage"
	"github.com/rudderlabs/rudder-go-batch-engine/pkg/eventbatch/transport"
)

// State is one of the three Uploader states.
type State int32

const (
	Idle State = iota
	Running
	Cancelled
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Callbacks are the host-level hooks invoked for fatal-for-stream
// errors: the persisted batch is kept, the worker cancels
// itself, and the host decides what to do next (surface an error,
// disable the source, prompt for new credentials, …).
type Callbacks struct {
	OnInvalidWriteKey func()
	OnSourceDisabled  func()

	// OnSuccess, if set, is invoked with the final upload payload
	// immediately before the batch is removed from Storage on Success
	// — the archival hook (pkg/eventbatch/archive), a supplemented
	// feature absent from the original spec that never changes core
	// removal semantics.
	OnSuccess func(batchID int64, payload string)
}

func (c Callbacks) invalidWriteKey() {
	if c.OnInvalidWriteKey != nil {
		c.OnInvalidWriteKey()
	}
}

func (c Callbacks) sourceDisabled() {
	if c.OnSourceDisabled != nil {
		c.OnSourceDisabled()
	}
}

func (c Callbacks) archived(batchID int64, payload string) {
	if c.OnSuccess != nil {
		c.OnSuccess(batchID, payload)
	}
}

// Storage is the subset of storage.Storage the worker drives.
type Storage interface {
	Rollover() error
	ReadEvent() string
	ReadBatchContent(id int64) (string, bool)
	Remove(id int64) bool
}

var _ Storage = (*storage.Storage)(nil)

// Uploader is the state machine described above. Zero value is not
// usable; build with New.
type Uploader struct {
	storage   Storage
	sender    transport.HTTPSender
	retryHdrs *retryheaders.Provider
	backoffP  *backoff.Policy
	callbacks Callbacks
	logger    mlog.Logger

	// nowMs is the clock seam; overridable in tests.
	nowMs func() int64

	mu     sync.Mutex
	state  atomic.Int32
	signal chan struct{}
	cancel context.CancelFunc
	wg     sync.WaitGroup

	lastAnonymousID string
}

// New builds an Uploader in the Idle state.
func New(s Storage, sender transport.HTTPSender, retryHdrs *retryheaders.Provider, backoffP *backoff.Policy, callbacks Callbacks, logger mlog.Logger) *Uploader {
	if logger == nil {
		logger = &mlog.NoneLogger{}
	}

	u := &Uploader{
		storage:   s,
		sender:    sender,
		retryHdrs: retryHdrs,
		backoffP:  backoffP,
		callbacks: callbacks,
		logger:    logger,
		nowMs:     func() int64 { return time.Now().UnixMilli() },
	}
	u.state.Store(int32(Idle))

	return u
}

// State returns the current state.
func (u *Uploader) State() State {
	return State(u.state.Load())
}

// PendingSignals reports how many flush signals are queued but not yet
// drained by the worker. Diagnostic only (pkg/eventbatch/diagnostics,
// pkg/eventbatch/controlplane).
func (u *Uploader) PendingSignals() int {
	u.mu.Lock()
	defer u.mu.Unlock()

	return len(u.signal)
}

// Start spawns the single worker task if not already Running. Valid
// from Idle or Cancelled; idempotent while Running.
func (u *Uploader) Start() {
	u.mu.Lock()
	defer u.mu.Unlock()

	if State(u.state.Load()) == Running {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	u.cancel = cancel
	sig := make(chan struct{}, 1<<20) // effectively unbounded
	u.signal = sig
	u.state.Store(int32(Running))

	u.wg.Add(1)

	go u.run(ctx, sig)
}

// Flush sends the upload sentinel without blocking. A flush against a
// closed or absent signal channel (Idle/Cancelled) is silently dropped.
func (u *Uploader) Flush() {
	// Held across the non-blocking send so terminalCancel cannot close
	// the channel between the nil check and the send.
	u.mu.Lock()
	defer u.mu.Unlock()

	ch := u.signal
	if ch == nil {
		return
	}

	select {
	case ch <- struct{}{}:
	default:
		// channel full (1<<20 signals already pending): drop this one.
	}
}

// Cancel stops the worker and transitions to Cancelled. Safe to call
// multiple times. Blocks until the worker has returned.
func (u *Uploader) Cancel() {
	u.terminalCancel()
	u.wg.Wait()
}

// terminalCancel tears down the channel/context without waiting for
// the worker — callable from inside the worker goroutine itself (the
// Error401/Error404 terminal handlers also cancel the worker) as well
// as from Cancel.
func (u *Uploader) terminalCancel() {
	u.mu.Lock()
	cancel := u.cancel
	ch := u.signal
	u.cancel = nil
	u.signal = nil
	u.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	if ch != nil {
		close(ch)
	}

	u.state.Store(int32(Cancelled))
}

// run is the worker's outer loop: drain the signal channel until
// cancelled, invoking the per-signal upload pass for each. sig is
// captured once at spawn time so the loop never reads the mutex-guarded
// u.signal field directly — terminalCancel and Start both reassign it
// concurrently.
func (u *Uploader) run(ctx context.Context, sig chan struct{}) {
	defer u.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-sig:
			if !ok {
				return
			}

			u.uploadPass(ctx)
		}
	}
}
