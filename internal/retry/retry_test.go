package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fast(n int) Config {
	return Config{MaxRetries: n, InitialBackoff: time.Millisecond}
}

func TestDo(t *testing.T) {
	transient := errors.New("transient")
	fatal := errors.New("fatal")
	retryTransient := func(err error) bool { return errors.Is(err, transient) }

	tests := []struct {
		name        string
		cfg         Config
		failures    []error
		shouldRetry ShouldRetryFunc
		wantCalls   int
		wantErr     error
		wantMsg     string
	}{
		{
			name:      "first attempt succeeds",
			cfg:       fast(3),
			wantCalls: 1,
		},
		{
			name:        "succeeds after retries",
			cfg:         fast(5),
			failures:    []error{transient, transient},
			shouldRetry: retryTransient,
			wantCalls:   3,
		},
		{
			name:        "exhausted",
			cfg:         fast(3),
			failures:    []error{transient, transient, transient, transient},
			shouldRetry: retryTransient,
			wantCalls:   3,
			wantErr:     transient,
			wantMsg:     "failed after 3 retries",
		},
		{
			name:        "non retryable stops",
			cfg:         fast(5),
			failures:    []error{transient, fatal, transient},
			shouldRetry: retryTransient,
			wantCalls:   2,
			wantErr:     fatal,
		},
		{
			name:      "nil predicate retries everything",
			cfg:       fast(2),
			failures:  []error{fatal, fatal},
			wantCalls: 2,
			wantErr:   fatal,
		},
		{
			name:      "zero retries still calls once",
			cfg:       Config{},
			failures:  []error{fatal},
			wantCalls: 1,
			wantErr:   fatal,
			wantMsg:   "failed after 1 retries",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := Do(context.Background(), tt.cfg, func() error {
				calls++
				if calls <= len(tt.failures) {
					return tt.failures[calls-1]
				}
				return nil
			}, tt.shouldRetry)

			assert.Equal(t, tt.wantCalls, calls)
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestDo_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	calls := 0
	err := Do(ctx, Config{MaxRetries: 10, InitialBackoff: time.Hour}, func() error {
		calls++
		cancel()
		return errors.New("error")
	}, nil)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestBackoff(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		attempt int
		want    time.Duration
	}{
		{"first retry", Config{InitialBackoff: 10 * time.Millisecond, MaxRetries: 5}, 1, 10 * time.Millisecond},
		{"doubles", Config{InitialBackoff: 10 * time.Millisecond, MaxRetries: 5}, 4, 80 * time.Millisecond},
		{"capped", Config{InitialBackoff: 10 * time.Millisecond, MaxBackoff: 50 * time.Millisecond, MaxRetries: 5}, 4, 50 * time.Millisecond},
		{"jitter", Config{InitialBackoff: 100 * time.Millisecond, MaxRetries: 5, Jitter: 0.5}, 2, 240 * time.Millisecond},
		{"overflow falls back to cap", Config{InitialBackoff: time.Second, MaxBackoff: time.Minute, MaxRetries: 100}, 80, time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, backoff(tt.cfg, tt.attempt))
		})
	}
}

func TestConflicts(t *testing.T) {
	cfg := Conflicts()
	assert.Equal(t, 10, cfg.MaxRetries)
	assert.Greater(t, cfg.MaxBackoff, cfg.InitialBackoff)
}
