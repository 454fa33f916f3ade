// Package pool runs assistant side work on bounded ants goroutine pools:
// the per-file fan-out of knowledge searches and fire-and-forget ledger
// writes.
package pool

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kart-io/logger"
	"github.com/panjf2000/ants/v2"
)

var (
	ErrPoolClosed        = errors.New("pool: closed")
	ErrInvalidPoolConfig = errors.New("pool: invalid config")
	ErrPoolOverload      = errors.New("pool: saturated")
)

// Config 协程池配置。
type Config struct {
	Capacity int
	// ExpiryDuration 空闲 worker 的回收时间。
	ExpiryDuration time.Duration
	// Nonblocking 为 true 时池满直接返回 ErrPoolOverload。
	Nonblocking bool
	// MaxBlockingTasks 阻塞模式下排队上限，0 不限。
	MaxBlockingTasks int
	// PanicHandler 默认记录日志。
	PanicHandler func(any)
}

// SearchPoolConfig 知识库检索：阻塞提交，每个知识文件一个任务。
func SearchPoolConfig() *Config {
	return &Config{Capacity: 16, ExpiryDuration: 30 * time.Second}
}

// BackgroundPoolConfig 后台写入：池满即拒绝，调用方只记日志。
func BackgroundPoolConfig() *Config {
	return &Config{Capacity: 8, ExpiryDuration: time.Minute, Nonblocking: true, MaxBlockingTasks: 100}
}

// Stats is a point in time view of a pool's counters.
type Stats struct {
	Running   int
	Submitted int64
	Completed int64
	Rejected  int64
	Panics    int64
}

// Pool is a named ants pool. Submit and Map are safe for concurrent use.
type Pool struct {
	name string
	ants *ants.Pool

	mu     sync.Mutex
	closed atomic.Bool

	submitted, completed, rejected, panics atomic.Int64
}

// NewPool starts a pool. A nil config means SearchPoolConfig.
func NewPool(name string, cfg *Config) (*Pool, error) {
	if cfg == nil {
		cfg = SearchPoolConfig()
	}
	if cfg.Capacity <= 0 {
		return nil, fmt.Errorf("%w: capacity %d", ErrInvalidPoolConfig, cfg.Capacity)
	}

	p := &Pool{name: name}
	onPanic := cfg.PanicHandler
	if onPanic == nil {
		onPanic = func(r any) { logger.Errorw("Worker panic recovered", "pool", name, "panic", r) }
	}

	a, err := ants.NewPool(cfg.Capacity,
		ants.WithExpiryDuration(cfg.ExpiryDuration),
		ants.WithNonblocking(cfg.Nonblocking),
		ants.WithMaxBlockingTasks(cfg.MaxBlockingTasks),
		ants.WithPanicHandler(func(r any) {
			p.panics.Add(1)
			onPanic(r)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("pool %s: %w", name, err)
	}
	p.ants = a

	logger.Debugw("Worker pool started", "pool", name, "capacity", cfg.Capacity)
	return p, nil
}

func (p *Pool) Name() string { return p.name }
func (p *Pool) Cap() int     { return p.ants.Cap() }

// Submit queues task. It maps ants' overload and closed errors onto
// ErrPoolOverload and ErrPoolClosed.
func (p *Pool) Submit(task func()) error {
	if p.closed.Load() {
		return ErrPoolClosed
	}
	err := p.ants.Submit(func() {
		p.submitted.Add(1)
		task()
		p.completed.Add(1)
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ants.ErrPoolOverload):
		p.rejected.Add(1)
		return ErrPoolOverload
	case errors.Is(err, ants.ErrPoolClosed):
		return ErrPoolClosed
	}
	return err
}

// SubmitWithContext skips task when ctx is done before it starts.
func (p *Pool) SubmitWithContext(ctx context.Context, task func()) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return p.Submit(func() {
		if ctx.Err() == nil {
			task()
		}
	})
}

// Map runs fn(ctx, i) for i in [0, n) and waits for all of them. The first
// failure cancels ctx for tasks not yet started and is returned; otherwise
// the parent's error, if any.
func (p *Pool) Map(parent context.Context, n int, fn func(ctx context.Context, i int) error) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	var (
		wg    sync.WaitGroup
		once  sync.Once
		first error
	)
	fail := func(err error) {
		once.Do(func() {
			first = err
			cancel()
		})
	}

	for i := range n {
		wg.Add(1)
		err := p.Submit(func() {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}
			if err := fn(ctx, i); err != nil {
				fail(err)
			}
		})
		if err != nil {
			wg.Done()
			fail(err)
			break
		}
	}
	wg.Wait()

	if first != nil {
		return first
	}
	return parent.Err()
}

func (p *Pool) markClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed.Load() {
		return false
	}
	p.closed.Store(true)
	return true
}

// Release stops the pool without waiting for queued work.
func (p *Pool) Release() {
	if p.markClosed() {
		p.ants.Release()
		logger.Debugw("Worker pool released", "pool", p.name)
	}
}

// ReleaseTimeout waits up to timeout for running work to drain.
func (p *Pool) ReleaseTimeout(timeout time.Duration) error {
	if !p.markClosed() {
		return nil
	}
	return p.ants.ReleaseTimeout(timeout)
}

func (p *Pool) Stats() Stats {
	return Stats{
		Running:   p.ants.Running(),
		Submitted: p.submitted.Load(),
		Completed: p.completed.Load(),
		Rejected:  p.rejected.Load(),
		Panics:    p.panics.Load(),
	}
}
