package main

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunServices_WaitsForBackground(t *testing.T) {
	var finished atomic.Bool
	slowWorker := func(ctx context.Context) error {
		<-ctx.Done()
		// Незавершённая обработка сообщения после отмены.
		time.Sleep(50 * time.Millisecond)
		finished.Store(true)
		return nil
	}

	errServer := errors.New("listen failed")
	err := runServices(context.Background(), slog.Default(), func(ctx context.Context) error {
		return errServer
	}, slowWorker)

	require.ErrorIs(t, err, errServer)
	assert.True(t, finished.Load(), "background work must finish before runServices returns")
}

func TestRunServices_ParentCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var stopped atomic.Int32
	worker := func(ctx context.Context) error {
		<-ctx.Done()
		stopped.Add(1)
		return errors.New("stopped")
	}

	done := make(chan error, 1)
	go func() {
		done <- runServices(ctx, slog.Default(), func(ctx context.Context) error {
			<-ctx.Done()
			return nil
		}, worker, worker)
	}()

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("runServices did not return after cancel")
	}
	assert.Equal(t, int32(2), stopped.Load())
}
