package onnx

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"leaf-doctor/internal/domain/entity"
)

const (
	// DefaultPoolSize число параллельных сессий инференса.
	DefaultPoolSize = 2
	// DefaultAcquireTimeout сколько ждать свободную сессию.
	DefaultAcquireTimeout = 5 * time.Second
	// maxRecordedErrors сколько последних ошибок пересоздания хранить.
	maxRecordedErrors = 10
)

// ErrPoolClosed пул уже закрыт.
var ErrPoolClosed = errors.New("session pool is closed")

// PoolStats счётчики пула для /metrics и /health.
type PoolStats struct {
	Size            int
	InUse           int
	TotalAcquired   int64
	TotalReleased   int64
	AcquireFailures int64
	Replaced        int64
	WaitTime        time.Duration
}

// sessionPool раздаёт сессии по одной на вызов. Сломанная сессия пересоздаётся.
type sessionPool struct {
	sessions       chan runner
	size           int
	factory        func() (runner, error)
	acquireTimeout time.Duration
	logger         *slog.Logger

	mu         sync.Mutex
	closed     bool
	missing    int
	stats      PoolStats
	lastErrors []error
}

func newSessionPool(size int, acquireTimeout time.Duration, factory func() (runner, error), logger *slog.Logger) (*sessionPool, error) {
	if size <= 0 {
		size = DefaultPoolSize
	}
	if acquireTimeout <= 0 {
		acquireTimeout = DefaultAcquireTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}

	p := &sessionPool{
		sessions:       make(chan runner, size),
		size:           size,
		factory:        factory,
		acquireTimeout: acquireTimeout,
		logger:         logger,
		stats:          PoolStats{Size: size},
	}

	for i := 0; i < size; i++ {
		r, err := factory()
		if err != nil {
			p.Destroy()
			return nil, fmt.Errorf("failed to initialize session %d: %w", i, err)
		}
		p.sessions <- r
	}

	return p, nil
}

// Acquire ждёт свободную сессию не дольше acquireTimeout.
func (p *sessionPool) Acquire(ctx context.Context) (runner, error) {
	if p.isClosed() {
		return nil, ErrPoolClosed
	}
	p.replenish()

	start := time.Now()
	timer := time.NewTimer(p.acquireTimeout)
	defer timer.Stop()

	select {
	case r, ok := <-p.sessions:
		if !ok {
			return nil, ErrPoolClosed
		}
		p.mu.Lock()
		p.stats.InUse++
		p.stats.TotalAcquired++
		p.stats.WaitTime += time.Since(start)
		p.mu.Unlock()
		return r, nil
	case <-timer.C:
		p.mu.Lock()
		p.stats.AcquireFailures++
		p.mu.Unlock()
		return nil, fmt.Errorf("%w: timeout after %s", entity.ErrModelBusy, p.acquireTimeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Release возвращает сессию в пул. Если healthy=false, сессия уничтожается
// и на её место создаётся новая. Если создать не удалось, пул работает
// с меньшим числом сессий и пробует снова при следующем Release.
func (p *sessionPool) Release(r runner, healthy bool) {
	p.mu.Lock()
	p.stats.InUse--
	p.stats.TotalReleased++
	if !healthy {
		p.missing++
	}
	closed := p.closed
	p.mu.Unlock()

	if closed || !healthy {
		r.Destroy()
	}
	if closed {
		return
	}

	p.replenish()
	if healthy {
		p.put(r)
	}
}

// replenish восполняет уничтоженные сессии.
func (p *sessionPool) replenish() {
	for {
		p.mu.Lock()
		if p.missing == 0 || p.closed {
			p.mu.Unlock()
			return
		}
		// Резервируем слот до создания, чтобы параллельные Release не создали лишнюю сессию.
		p.missing--
		p.mu.Unlock()

		replacement, err := p.factory()
		if err != nil {
			p.mu.Lock()
			p.missing++
			p.mu.Unlock()
			p.recordError(err)
			p.logger.Error("Failed to replace inference session", "error", err)
			return
		}

		p.mu.Lock()
		p.stats.Replaced++
		p.mu.Unlock()
		p.put(replacement)
	}
}

func (p *sessionPool) put(r runner) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		r.Destroy()
		return
	}
	p.sessions <- r
}

// Stats возвращает снимок счётчиков.
func (p *sessionPool) Stats() PoolStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

// LastErrors последние ошибки пересоздания сессий.
func (p *sessionPool) LastErrors() []error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]error(nil), p.lastErrors...)
}

// Destroy закрывает пул и уничтожает свободные сессии.
// Занятые сессии уничтожаются при возврате.
func (p *sessionPool) Destroy() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.sessions)
	p.mu.Unlock()

	for r := range p.sessions {
		r.Destroy()
	}
}

func (p *sessionPool) isClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

func (p *sessionPool) recordError(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.lastErrors = append(p.lastErrors, err)
	if len(p.lastErrors) > maxRecordedErrors {
		p.lastErrors = p.lastErrors[1:]
	}
}
