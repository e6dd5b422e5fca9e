package pipeline

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"recipe-importer/internal/core/recipe"
	"recipe-importer/internal/pkg/common"
)

// ErrRunnerClosed Runner 已關閉
var ErrRunnerClosed = errors.New("pipeline runner is closed")

// RunnerOptions 佇列設定
type RunnerOptions struct {
	Workers int
	MaxSize int
	// Timeout 單次匯入的時間上限，0 表示不限制
	Timeout time.Duration
}

// Status 佇列狀態
type Status struct {
	QueueLength    int `json:"queue_length"`
	Active         int `json:"active"`
	ProcessedCount int `json:"processed_count"`
	FailedCount    int `json:"failed_count"`
	MaxQueueSize   int `json:"max_queue_size"`
	Workers        int `json:"workers"`
}

type outcome struct {
	draft *recipe.Draft
	err   error
}

type job struct {
	ctx    context.Context
	src    Source
	result chan outcome
}

// Runner 有上限的匯入佇列，每個工作使用新的 Orchestrator
type Runner struct {
	deps    Deps
	opts    []Option
	cfg     RunnerOptions
	queue   chan *job
	done    chan struct{}
	wg      sync.WaitGroup
	once    sync.Once
	active  int64
	success int64
	failed  int64
}

// NewRunner 建立並啟動 worker
func NewRunner(deps Deps, cfg RunnerOptions, opts ...Option) *Runner {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = 1
	}
	r := &Runner{
		deps:  deps,
		opts:  opts,
		cfg:   cfg,
		queue: make(chan *job, cfg.MaxSize),
		done:  make(chan struct{}),
	}
	for i := 0; i < cfg.Workers; i++ {
		r.wg.Add(1)
		go r.worker(i)
	}
	return r
}

// Submit 排入一次匯入並等待結果。佇列已滿時立即回傳 common.ErrQueueFull。
func (r *Runner) Submit(ctx context.Context, src Source) (*recipe.Draft, error) {
	select {
	case <-r.done:
		return nil, ErrRunnerClosed
	default:
	}

	j := &job{ctx: ctx, src: src, result: make(chan outcome, 1)}
	select {
	case r.queue <- j:
		common.LogDebug("import enqueued",
			zap.String("source", string(src.Kind)),
			zap.Int("queue_length", len(r.queue)),
			zap.Int("max_queue_size", r.cfg.MaxSize),
		)
	default:
		return nil, common.ErrQueueFull
	}

	select {
	case out := <-j.result:
		return out.draft, out.err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-r.done:
		return nil, ErrRunnerClosed
	}
}

// Status 佇列狀態
func (r *Runner) Status() Status {
	return Status{
		QueueLength:    len(r.queue),
		Active:         int(atomic.LoadInt64(&r.active)),
		ProcessedCount: int(atomic.LoadInt64(&r.success)),
		FailedCount:    int(atomic.LoadInt64(&r.failed)),
		MaxQueueSize:   r.cfg.MaxSize,
		Workers:        r.cfg.Workers,
	}
}

// Close 停止接收工作並等待 worker 結束
func (r *Runner) Close() {
	r.once.Do(func() {
		close(r.done)
	})
	r.wg.Wait()
}

func (r *Runner) worker(id int) {
	defer r.wg.Done()
	for {
		select {
		case <-r.done:
			return
		case j := <-r.queue:
			r.process(id, j)
		}
	}
}

func (r *Runner) process(id int, j *job) {
	if err := j.ctx.Err(); err != nil {
		j.result <- outcome{err: err}
		return
	}

	atomic.AddInt64(&r.active, 1)
	defer atomic.AddInt64(&r.active, -1)

	ctx := j.ctx
	if r.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.Timeout)
		defer cancel()
	}

	draft, err := New(r.deps, r.opts...).Start(ctx, j.src)
	if err != nil {
		atomic.AddInt64(&r.failed, 1)
	} else {
		atomic.AddInt64(&r.success, 1)
	}
	common.LogDebug("import processed", zap.Int("worker", id), zap.Bool("ok", err == nil))
	j.result <- outcome{draft: draft, err: err}
}
