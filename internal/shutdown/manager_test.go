package shutdown

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mood-canvas/internal/logger"
)

func TestShutdownRunsComponentsInReverseOrder(t *testing.T) {
	m := NewManager(logger.NoOp{})

	var order []string
	m.Register("bus", Func(func() { order = append(order, "bus") }))
	m.Register("gui", Func(func() { order = append(order, "gui") }))
	m.Register("handlers", Func(func() { order = append(order, "handlers") }))

	m.Shutdown()

	assert.Equal(t, []string{"handlers", "gui", "bus"}, order)
	assert.Error(t, m.Context().Err())

	select {
	case <-m.Done():
	default:
		t.Fatal("done channel not closed")
	}
}

func TestShutdownIsIdempotent(t *testing.T) {
	m := NewManager(logger.NoOp{})

	calls := 0
	m.Register("counter", Func(func() { calls++ }))

	m.Shutdown()
	m.Shutdown()

	assert.Equal(t, 1, calls)
}

func TestShutdownDoesNotWaitForeverOnSlowComponent(t *testing.T) {
	m := NewManager(logger.NoOp{})
	m.SetTimeout(20 * time.Millisecond)

	release := make(chan struct{})
	defer close(release)
	m.Register("stuck", Func(func() { <-release }))

	start := time.Now()
	m.Shutdown()
	assert.Less(t, time.Since(start), time.Second)
}

func TestRunCompletesAndShutsDown(t *testing.T) {
	m := NewManager(logger.NoOp{})

	stopped := false
	m.Register("store", Func(func() { stopped = true }))

	err := m.Run(func(ctx context.Context) error {
		assert.NoError(t, ctx.Err())
		return nil
	})

	require.NoError(t, err)
	assert.True(t, stopped)
	assert.Error(t, m.Context().Err())
}

func TestRunPassesThroughErrors(t *testing.T) {
	m := NewManager(logger.NoOp{})
	boom := errors.New("image generation: connection refused")

	err := m.Run(func(context.Context) error { return boom })

	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrInterrupted)
}

func TestRunReportsInterruption(t *testing.T) {
	m := NewManager(logger.NoOp{})

	err := m.Run(func(ctx context.Context) error {
		go m.Shutdown()
		<-ctx.Done()
		return ctx.Err()
	})

	assert.ErrorIs(t, err, ErrInterrupted)
	assert.ErrorIs(t, err, context.Canceled)
}
