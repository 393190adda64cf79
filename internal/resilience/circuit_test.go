package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func newTestBreaker(threshold int, cooldown time.Duration) (*Breaker, *fakeClock, *[]string) {
	clock := &fakeClock{t: time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)}
	var transitions []string
	b := NewBreaker(BreakerConfig{
		FailureThreshold: threshold,
		Cooldown:         cooldown,
		OnStateChange: func(from, to State) {
			transitions = append(transitions, from.String()+"->"+to.String())
		},
	})
	b.now = clock.now
	return b, clock, &transitions
}

func fail(context.Context) (int, error) { return 0, errors.New("upstream down") }
func succeed(context.Context) (int, error) { return 1, nil }

func TestBreaker_OpensAfterThreshold(t *testing.T) {
	b, _, transitions := newTestBreaker(3, time.Minute)
	ctx := context.Background()

	for range 3 {
		_, err := Call(ctx, b, fail)
		require.Error(t, err)
	}
	assert.Equal(t, StateOpen, b.State())

	called := false
	_, err := Call(ctx, b, func(context.Context) (int, error) {
		called = true
		return 0, nil
	})
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)
	assert.Equal(t, []string{"closed->open"}, *transitions)
}

func TestBreaker_SuccessResetsFailures(t *testing.T) {
	b, _, _ := newTestBreaker(2, time.Minute)
	ctx := context.Background()

	_, _ = Call(ctx, b, fail)
	_, _ = Call(ctx, b, succeed)
	_, _ = Call(ctx, b, fail)
	assert.Equal(t, StateClosed, b.State())
}

func TestBreaker_HalfOpenProbe(t *testing.T) {
	b, clock, transitions := newTestBreaker(1, time.Minute)
	ctx := context.Background()

	_, _ = Call(ctx, b, fail)
	assert.Equal(t, StateOpen, b.State())

	clock.t = clock.t.Add(time.Minute)
	assert.Equal(t, StateHalfOpen, b.State())

	v, err := Call(ctx, b, succeed)
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	assert.Equal(t, StateClosed, b.State())
	assert.Equal(t, []string{"closed->open", "open->half-open", "half-open->closed"}, *transitions)
}

func TestBreaker_FailedProbeReopens(t *testing.T) {
	b, clock, _ := newTestBreaker(1, time.Minute)
	ctx := context.Background()

	_, _ = Call(ctx, b, fail)
	clock.t = clock.t.Add(2 * time.Minute)
	_, err := Call(ctx, b, fail)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, StateOpen, b.State())

	_, err = Call(ctx, b, succeed)
	assert.ErrorIs(t, err, ErrCircuitOpen)
}

func TestBreaker_CanceledCallerDoesNotCount(t *testing.T) {
	b, _, _ := newTestBreaker(1, time.Minute)
	_, _ = Call(context.Background(), b, func(context.Context) (int, error) {
		return 0, context.Canceled
	})
	assert.Equal(t, StateClosed, b.State())
}

func TestNewBreaker_Defaults(t *testing.T) {
	b := NewBreaker(BreakerConfig{})
	assert.Equal(t, 5, b.cfg.FailureThreshold)
	assert.Equal(t, 30*time.Second, b.cfg.Cooldown)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "closed", StateClosed.String())
	assert.Equal(t, "open", StateOpen.String())
	assert.Equal(t, "half-open", StateHalfOpen.String())
	assert.Equal(t, "unknown", State(9).String())
}
