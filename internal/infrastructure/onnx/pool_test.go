package onnx

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leaf-doctor/internal/domain/entity"
)

type fakeRunner struct {
	out       []float32
	err       error
	destroyed atomic.Bool
	runs      atomic.Int32
}

func (f *fakeRunner) Run(input []float32) ([]float32, error) {
	f.runs.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.out, nil
}

func (f *fakeRunner) Destroy() {
	f.destroyed.Store(true)
}

type fakeFactory struct {
	mu      sync.Mutex
	created []*fakeRunner
	out     []float32
	err     error
	calls   int
	failOn  int // номер вызова, начиная с 1, который вернёт ошибку
}

func (f *fakeFactory) New() (runner, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil || f.calls == f.failOn {
		return nil, errors.New("factory failure")
	}
	r := &fakeRunner{out: f.out}
	f.created = append(f.created, r)
	return r, nil
}

func (f *fakeFactory) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.created)
}

func TestSessionPool_AcquireRelease(t *testing.T) {
	f := &fakeFactory{}
	p, err := newSessionPool(2, time.Second, f.New, nil)
	require.NoError(t, err)
	defer p.Destroy()

	ctx := context.Background()
	a, err := p.Acquire(ctx)
	require.NoError(t, err)
	b, err := p.Acquire(ctx)
	require.NoError(t, err)
	require.NotSame(t, a, b)
	require.Equal(t, 2, p.Stats().InUse)

	p.Release(a, true)
	p.Release(b, true)

	stats := p.Stats()
	assert.Equal(t, 0, stats.InUse)
	assert.Equal(t, int64(2), stats.TotalAcquired)
	assert.Equal(t, int64(2), stats.TotalReleased)
	assert.Equal(t, 2, f.count())
}

func TestSessionPool_AcquireTimeout(t *testing.T) {
	f := &fakeFactory{}
	p, err := newSessionPool(1, 20*time.Millisecond, f.New, nil)
	require.NoError(t, err)
	defer p.Destroy()

	r, err := p.Acquire(context.Background())
	require.NoError(t, err)
	defer p.Release(r, true)

	_, err = p.Acquire(context.Background())
	require.ErrorIs(t, err, entity.ErrModelBusy)
	require.Equal(t, int64(1), p.Stats().AcquireFailures)
}

func TestSessionPool_AcquireCancelled(t *testing.T) {
	f := &fakeFactory{}
	p, err := newSessionPool(1, time.Minute, f.New, nil)
	require.NoError(t, err)
	defer p.Destroy()

	r, err := p.Acquire(context.Background())
	require.NoError(t, err)
	defer p.Release(r, true)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = p.Acquire(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestSessionPool_ReplacesBrokenSession(t *testing.T) {
	f := &fakeFactory{}
	p, err := newSessionPool(1, time.Second, f.New, nil)
	require.NoError(t, err)
	defer p.Destroy()

	r, err := p.Acquire(context.Background())
	require.NoError(t, err)
	p.Release(r, false)

	require.True(t, r.(*fakeRunner).destroyed.Load())
	require.Equal(t, 2, f.count())
	require.Equal(t, int64(1), p.Stats().Replaced)

	next, err := p.Acquire(context.Background())
	require.NoError(t, err)
	require.NotSame(t, r, next)
	p.Release(next, true)
}

func TestSessionPool_RetriesFailedReplacement(t *testing.T) {
	f := &fakeFactory{failOn: 2}
	p, err := newSessionPool(1, 20*time.Millisecond, f.New, nil)
	require.NoError(t, err)
	defer p.Destroy()

	r, err := p.Acquire(context.Background())
	require.NoError(t, err)
	p.Release(r, false)
	require.Len(t, p.LastErrors(), 1)

	// Следующий Acquire пробует восполнить пул ещё раз.
	next, err := p.Acquire(context.Background())
	require.NoError(t, err)
	p.Release(next, true)
	require.Equal(t, 2, f.count())
}

func TestSessionPool_InitFailure(t *testing.T) {
	f := &fakeFactory{failOn: 2}
	_, err := newSessionPool(3, time.Second, f.New, nil)
	require.Error(t, err)
	require.True(t, f.created[0].destroyed.Load())
}

func TestSessionPool_Destroy(t *testing.T) {
	f := &fakeFactory{}
	p, err := newSessionPool(2, time.Second, f.New, nil)
	require.NoError(t, err)

	inUse, err := p.Acquire(context.Background())
	require.NoError(t, err)

	p.Destroy()
	p.Destroy()

	_, err = p.Acquire(context.Background())
	require.ErrorIs(t, err, ErrPoolClosed)

	p.Release(inUse, true)
	for _, r := range f.created {
		require.True(t, r.destroyed.Load())
	}
}
