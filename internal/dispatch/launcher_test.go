package dispatch

import (
	"context"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoroutineLauncher(t *testing.T) {
	t.Parallel()

	t.Run("runs the worker once per trigger", func(t *testing.T) {
		t.Parallel()

		var runs atomic.Int32
		done := make(chan struct{}, 2)
		launcher := NewGoroutineLauncher(func(context.Context) (bool, error) {
			runs.Add(1)
			done <- struct{}{}
			return true, nil
		}, slog.Default())

		require.NoError(t, launcher.Launch(context.Background()))
		require.NoError(t, launcher.Launch(context.Background()))

		for i := 0; i < 2; i++ {
			select {
			case <-done:
			case <-time.After(time.Second):
				t.Fatal("worker invocation did not run")
			}
		}
		assert.Equal(t, int32(2), runs.Load())
	})

	t.Run("does not block on the work", func(t *testing.T) {
		t.Parallel()

		release := make(chan struct{})
		launcher := NewGoroutineLauncher(func(context.Context) (bool, error) {
			<-release
			return true, nil
		}, slog.Default())

		start := time.Now()
		require.NoError(t, launcher.Launch(context.Background()))
		assert.Less(t, time.Since(start), 100*time.Millisecond)
		close(release)
	})

	t.Run("recovers from a panicking worker", func(t *testing.T) {
		t.Parallel()

		done := make(chan struct{})
		launcher := NewGoroutineLauncher(func(context.Context) (bool, error) {
			defer close(done)
			panic("boom")
		}, slog.Default())

		require.NoError(t, launcher.Launch(context.Background()))
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("worker invocation did not run")
		}
		// Give the deferred recover a moment; the test fails by crashing
		// the process if the panic escapes.
		time.Sleep(10 * time.Millisecond)
	})

	t.Run("nil run panics", func(t *testing.T) {
		t.Parallel()
		assert.Panics(t, func() { NewGoroutineLauncher(nil, slog.Default()) })
	})
}

func TestNoopLauncher(t *testing.T) {
	t.Parallel()
	assert.NoError(t, NoopLauncher{}.Launch(context.Background()))
}
