package backoff

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// Policy implements BackoffPolicy: delay_with_backoff
// suspends the caller for an exponentially growing base duration capped
// at cfg.MaxBackoff, plus random jitter of up to cfg.JitterFactor times
// that base (so with jitter the actual delay can exceed MaxBackoff and
// successive delays are not strictly non-decreasing); reset restarts the
// progression. Safe for concurrent use, though the Uploader only ever
// drives one Policy from its single worker.
type Policy struct {
	cfg Config

	mu      sync.Mutex
	attempt int
}

// New builds a Policy from cfg. Panics if cfg fails Validate — a
// misconfigured retry policy is a startup-time programming error, not a
// runtime condition to recover from.
func New(cfg Config) *Policy {
	if err := cfg.Validate(); err != nil {
		panic(err)
	}

	return &Policy{cfg: cfg}
}

// nextDelay computes the un-jittered base delay for the current attempt
// and advances the counter. Caller must hold mu.
func (p *Policy) nextDelay() time.Duration {
	base := p.cfg.InitialBackoff << p.attempt // exponential: initial * 2^attempt
	if base <= 0 || base > p.cfg.MaxBackoff || p.attempt >= p.cfg.MaxRetries {
		base = p.cfg.MaxBackoff
	}

	if p.attempt < p.cfg.MaxRetries {
		p.attempt++
	}

	return p.applyJitter(base)
}

func (p *Policy) applyJitter(d time.Duration) time.Duration {
	if p.cfg.JitterFactor <= 0 {
		return d
	}

	jitterRange := float64(d) * p.cfg.JitterFactor
	jitter := time.Duration(rand.Float64() * jitterRange) //nolint:gosec

	return d + jitter
}

// Delay suspends the caller for the next backoff duration, or returns
// ctx.Err() if ctx is cancelled first — this is how the Uploader's
// retry loop honours cooperative cancellation while asleep.
func (p *Policy) Delay(ctx context.Context) error {
	p.mu.Lock()
	d := p.nextDelay()
	p.mu.Unlock()

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Reset restarts the progression from InitialBackoff.
func (p *Policy) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.attempt = 0
}

// Exhausted reports whether the progression has reached cfg.MaxRetries.
// Diagnostic only — the Uploader's retry loop never consults this to
// abort a batch; it is surfaced to the diagnostics package
// (pkg/eventbatch/diagnostics) for operator visibility.
func (p *Policy) Exhausted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.attempt >= p.cfg.MaxRetries
}
