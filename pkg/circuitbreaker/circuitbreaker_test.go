package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func TestTripsAfterConsecutiveFailures(t *testing.T) {
	cb := New(Settings{Name: "test", FailureThreshold: 3, Cooldown: time.Minute})

	for i := 0; i < 3; i++ {
		err := cb.Execute(func() error { return errBoom })
		require.ErrorIs(t, err, errBoom)
	}
	assert.Equal(t, StateOpen, cb.State())

	err := cb.Execute(func() error { return nil })
	assert.ErrorIs(t, err, ErrOpen)
}

func TestSuccessResetsFailureCount(t *testing.T) {
	cb := New(Settings{Name: "test", FailureThreshold: 2, Cooldown: time.Minute})

	require.Error(t, cb.Execute(func() error { return errBoom }))
	require.NoError(t, cb.Execute(func() error { return nil }))
	require.Error(t, cb.Execute(func() error { return errBoom }))

	assert.Equal(t, StateClosed, cb.State())
}

func TestProbeAfterCooldownClosesOnSuccess(t *testing.T) {
	cb := New(Settings{Name: "test", FailureThreshold: 1, Cooldown: 10 * time.Millisecond})

	require.Error(t, cb.Execute(func() error { return errBoom }))
	require.Equal(t, StateOpen, cb.State())

	time.Sleep(20 * time.Millisecond)

	require.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, StateClosed, cb.State())
}

func TestProbeFailureReopens(t *testing.T) {
	cb := New(Settings{Name: "test", FailureThreshold: 1, Cooldown: 10 * time.Millisecond})

	require.Error(t, cb.Execute(func() error { return errBoom }))
	time.Sleep(20 * time.Millisecond)

	require.ErrorIs(t, cb.Execute(func() error { return errBoom }), errBoom)
	assert.Equal(t, StateOpen, cb.State())

	assert.ErrorIs(t, cb.Execute(func() error { return nil }), ErrOpen)
}
