package async_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifykit/pkg/async"
)

func TestRunAndAwait(t *testing.T) {
	t.Parallel()

	f := async.Run(context.Background(), 21, func(_ context.Context, n int) (int, error) {
		return n * 2, nil
	})

	result, err := f.Await()
	require.NoError(t, err)
	assert.Equal(t, 42, result)
	assert.True(t, f.IsComplete())
}

func TestRunPropagatesError(t *testing.T) {
	t.Parallel()

	wantErr := errors.New("boom")
	f := async.Run(context.Background(), "x", func(_ context.Context, _ string) (string, error) {
		return "", wantErr
	})

	_, err := f.Await()
	require.ErrorIs(t, err, wantErr)
}

func TestRunCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := async.Run(ctx, 0, func(_ context.Context, _ int) (int, error) {
		t.Fatal("function must not run with a pre-cancelled context")
		return 0, nil
	})

	_, err := f.Await()
	require.ErrorIs(t, err, context.Canceled)
}

func TestAwaitWithTimeout(t *testing.T) {
	t.Parallel()

	started := make(chan struct{})
	release := make(chan struct{})
	f := async.Run(context.Background(), 0, func(_ context.Context, _ int) (int, error) {
		close(started)
		<-release
		return 7, nil
	})

	<-started
	_, err := f.AwaitWithTimeout(10 * time.Millisecond)
	require.ErrorIs(t, err, async.ErrTimeout)

	close(release)
	result, err := f.Await()
	require.NoError(t, err)
	assert.Equal(t, 7, result)
}

func TestWaitAllPreservesOrder(t *testing.T) {
	t.Parallel()

	futures := make([]*async.Future[int], 5)
	for i := range futures {
		futures[i] = async.Run(context.Background(), i, func(_ context.Context, n int) (int, error) {
			time.Sleep(time.Duration(5-n) * time.Millisecond)
			return n, nil
		})
	}

	results, err := async.WaitAll(futures...)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, results)
}

func TestWaitAllCollectsAllDespiteError(t *testing.T) {
	t.Parallel()

	failing := async.Run(context.Background(), 0, func(_ context.Context, _ int) (int, error) {
		return 0, errors.New("first failure")
	})
	succeeding := async.Run(context.Background(), 0, func(_ context.Context, _ int) (int, error) {
		return 9, nil
	})

	results, err := async.WaitAll(failing, succeeding)
	require.Error(t, err)
	assert.Equal(t, 9, results[1], "later futures are still awaited and collected")
}
