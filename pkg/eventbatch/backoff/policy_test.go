package backoff

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func testConfig() Config {
	return Config{
		MaxRetries:     3,
		InitialBackoff: 10 * time.Millisecond,
		MaxBackoff:     40 * time.Millisecond,
		JitterFactor:   0,
	}
}

func TestPolicyDelayMonotoneUntilCap(t *testing.T) {
	p := New(testConfig())
	ctx := context.Background()

	start := time.Now()
	assert.NoError(t, p.Delay(ctx))
	first := time.Since(start)

	start = time.Now()
	assert.NoError(t, p.Delay(ctx))
	second := time.Since(start)

	assert.GreaterOrEqual(t, second, first)
}

func TestPolicyExhausted(t *testing.T) {
	p := New(testConfig())
	ctx := context.Background()

	assert.False(t, p.Exhausted())

	for i := 0; i < 3; i++ {
		assert.NoError(t, p.Delay(ctx))
	}

	assert.True(t, p.Exhausted())
}

func TestPolicyResetRestartsProgression(t *testing.T) {
	p := New(testConfig())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		assert.NoError(t, p.Delay(ctx))
	}

	assert.True(t, p.Exhausted())

	p.Reset()

	assert.False(t, p.Exhausted())
}

func TestPolicyDelayCancelledContext(t *testing.T) {
	p := New(Config{
		MaxRetries:     3,
		InitialBackoff: time.Hour,
		MaxBackoff:     time.Hour,
		JitterFactor:   0,
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := p.Delay(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPolicyDelayNeverExceedsMaxBackoffPlusJitter(t *testing.T) {
	cfg := Config{
		MaxRetries:     5,
		InitialBackoff: 5 * time.Millisecond,
		MaxBackoff:     10 * time.Millisecond,
		JitterFactor:   0.5,
	}
	p := New(cfg)
	ctx := context.Background()

	maxPossible := cfg.MaxBackoff + time.Duration(float64(cfg.MaxBackoff)*cfg.JitterFactor)

	for i := 0; i < 5; i++ {
		start := time.Now()
		assert.NoError(t, p.Delay(ctx))
		elapsed := time.Since(start)
		assert.LessOrEqual(t, elapsed, maxPossible+5*time.Millisecond)
	}
}

func TestNewPanicsOnInvalidConfig(t *testing.T) {
	assert.Panics(t, func() {
		New(Config{MaxRetries: 0})
	})
}

func TestConfigWithBuilders(t *testing.T) {
	cfg := DefaultUploadBackoffConfig().
		WithMaxRetries(5).
		WithInitialBackoff(2 * time.Second).
		WithMaxBackoff(time.Minute).
		WithJitterFactor(0.1)

	assert.Equal(t, 5, cfg.MaxRetries)
	assert.Equal(t, 2*time.Second, cfg.InitialBackoff)
	assert.Equal(t, time.Minute, cfg.MaxBackoff)
	assert.Equal(t, 0.1, cfg.JitterFactor)
}

func TestConfigValidate(t *testing.T) {
	testCases := []struct {
		name    string
		cfg     Config
		wantErr bool
		field   string
	}{
		{"valid", DefaultUploadBackoffConfig(), false, ""},
		{"zero max retries", testConfig().WithMaxRetries(0), true, "MaxRetries"},
		{"zero initial backoff", testConfig().WithInitialBackoff(0), true, "InitialBackoff"},
		{"zero max backoff", testConfig().WithMaxBackoff(0), true, "MaxBackoff"},
		{"max less than initial", testConfig().WithMaxBackoff(1 * time.Millisecond), true, "MaxBackoff"},
		{"jitter too high", testConfig().WithJitterFactor(1.5), true, "JitterFactor"},
		{"jitter negative", testConfig().WithJitterFactor(-0.1), true, "JitterFactor"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()

			if !tc.wantErr {
				assert.NoError(t, err)
				return
			}

			assert.Error(t, err)

			var valErr ConfigValidationError
			assert.ErrorAs(t, err, &valErr)
			assert.Equal(t, tc.field, valErr.Field)
		})
	}
}
