package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCircuitBreakerOpensAfterThreshold(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		FailureThreshold: 3,
		RecoveryTimeout:  time.Hour,
		SuccessThreshold: 1,
	})

	failing := errors.New("backend down")
	for i := 0; i < 3; i++ {
		err := cb.Execute(func() error { return failing })
		assert.ErrorIs(t, err, failing)
	}

	err := cb.Execute(func() error { return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
}

func TestCircuitBreakerRecovers(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		FailureThreshold: 1,
		RecoveryTimeout:  10 * time.Millisecond,
		SuccessThreshold: 1,
	})

	require.Error(t, cb.Execute(func() error { return errors.New("boom") }))
	assert.False(t, cb.Allow())

	time.Sleep(20 * time.Millisecond)

	// Half-open: one success closes the breaker again.
	require.NoError(t, cb.Execute(func() error { return nil }))
	assert.True(t, cb.Allow())
}

func TestCircuitBreakerHalfOpenFailureReopens(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		FailureThreshold: 1,
		RecoveryTimeout:  10 * time.Millisecond,
		SuccessThreshold: 2,
	})

	require.Error(t, cb.Execute(func() error { return errors.New("boom") }))
	time.Sleep(20 * time.Millisecond)

	require.Error(t, cb.Execute(func() error { return errors.New("still down") }))
	assert.False(t, cb.Allow())
}

func TestRegistryExecuteWithRetry(t *testing.T) {
	reg := NewRegistry(time.Hour)
	reg.Register("model-api", nil)

	attempts := 0
	err := reg.ExecuteWithRetry(context.Background(), "model-api", func() error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestRegistryExecuteWithRetryGivesUp(t *testing.T) {
	reg := NewRegistry(time.Hour)
	reg.Register("model-api", nil)

	permanent := errors.New("permanent")
	err := reg.ExecuteWithRetry(context.Background(), "model-api", func() error {
		return permanent
	})

	assert.ErrorIs(t, err, permanent)
}

func TestRegistryExecuteWithRetryHonorsContext(t *testing.T) {
	reg := NewRegistry(time.Hour)
	reg.Register("model-api", nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := reg.ExecuteWithRetry(ctx, "model-api", func() error {
		return errors.New("transient")
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRegistryDegradationLevels(t *testing.T) {
	reg := NewRegistry(time.Hour)
	reg.Register("model-api", nil)

	// Below the minimum sample size the level stays normal.
	reg.RecordRequest("model-api", false)
	health := reg.AllServiceHealth()["model-api"]
	assert.Equal(t, LevelNormal, health.Level)

	// Sustained failures escalate to emergency and stop calls.
	for i := 0; i < 10; i++ {
		reg.RecordError("model-api", errors.New("boom"))
	}
	health = reg.AllServiceHealth()["model-api"]
	assert.Equal(t, LevelEmergency, health.Level)
	assert.False(t, reg.IsAvailable("model-api"))
}

func TestRegistryUnknownServiceIsAvailable(t *testing.T) {
	reg := NewRegistry(time.Hour)
	assert.True(t, reg.IsAvailable("never-registered"))
}
