package offload

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDo_ReturnsClosureResult(t *testing.T) {
	e := New(2)
	defer e.Close()

	ran := false
	err := e.Do(context.Background(), func() error {
		ran = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran)
}

func TestDo_PropagatesError(t *testing.T) {
	e := New(1)
	defer e.Close()

	sentinel := errors.New("encode failed")
	err := e.Do(context.Background(), func() error { return sentinel })
	assert.ErrorIs(t, err, sentinel)
}

func TestDo_PanicBecomesError(t *testing.T) {
	e := New(1)
	defer e.Close()

	err := e.Do(context.Background(), func() error { panic("renderer segfault") })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "renderer segfault")

	// The worker survived the panic and keeps serving tasks.
	err = e.Do(context.Background(), func() error { return nil })
	assert.NoError(t, err)
}

func TestDo_CancelledBeforePickupNeverRuns(t *testing.T) {
	e := New(1)
	defer e.Close()

	// Occupy the only worker so the next task sits in the queue.
	blocked := make(chan struct{})
	release := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = e.Do(context.Background(), func() error {
			close(blocked)
			<-release
			return nil
		})
	}()
	<-blocked

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var ran atomic.Bool
	err := e.Do(ctx, func() error {
		ran.Store(true)
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)

	close(release)
	wg.Wait()
	assert.False(t, ran.Load(), "cancelled task must never start")
}

func TestDo_CancelAfterDispatchRunsToCompletion(t *testing.T) {
	e := New(1)
	defer e.Close()

	started := make(chan struct{})
	finished := make(chan struct{})
	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() {
		errCh <- e.Do(ctx, func() error {
			close(started)
			time.Sleep(20 * time.Millisecond)
			close(finished)
			return nil
		})
	}()

	<-started
	cancel()

	// Do returns promptly with the cancellation even though the closure is
	// still running.
	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Do did not return after cancellation")
	}

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("dispatched closure was interrupted")
	}
}

func TestDo_ConcurrentTasks(t *testing.T) {
	e := New(4)
	defer e.Close()

	var count atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = e.Do(context.Background(), func() error {
				count.Add(1)
				return nil
			})
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(32), count.Load())
}

func TestClose_WaitsForInFlight(t *testing.T) {
	e := New(2)

	var done atomic.Bool
	errCh := make(chan error, 1)
	started := make(chan struct{})
	go func() {
		errCh <- e.Do(context.Background(), func() error {
			close(started)
			time.Sleep(10 * time.Millisecond)
			done.Store(true)
			return nil
		})
	}()

	<-started
	e.Close()
	assert.True(t, done.Load(), "Close returned before the in-flight task finished")
	assert.NoError(t, <-errCh)
}
