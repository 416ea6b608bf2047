// Package worker выполняет фоновые задачи (история, события) вне потока страницы.
package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

type Task func(ctx context.Context)

var (
	ErrNotStarted = errors.New("worker pool is not started")
	ErrStopped    = errors.New("worker pool is stopped")
	ErrQueueFull  = errors.New("worker pool task queue is full")
)

type Stats struct {
	Workers       int    `json:"workers"`
	Busy          int    `json:"busy"`
	QueueLength   int    `json:"queueLength"`
	QueueCapacity int    `json:"queueCapacity"`
	Processed     uint64 `json:"processed"`
	Panics        uint64 `json:"panics"`
}

type Pool struct {
	tasks         chan Task
	wg            sync.WaitGroup
	size          int
	submitTimeout time.Duration
	logger        zerolog.Logger

	mu      sync.RWMutex
	started bool
	stopped bool
	ctx     context.Context
	cancel  context.CancelFunc

	busy      atomic.Int32
	processed atomic.Uint64
	panics    atomic.Uint64
}

// NewPool очередь по умолчанию size*10, как у пула анализа
func NewPool(size, queueSize int, submitTimeout time.Duration, logger zerolog.Logger) *Pool {
	if size <= 0 {
		size = 1
	}
	if queueSize <= 0 {
		queueSize = size * 10
	}
	if submitTimeout <= 0 {
		submitTimeout = time.Second
	}
	return &Pool{
		tasks:         make(chan Task, queueSize),
		size:          size,
		submitTimeout: submitTimeout,
		logger:        logger,
	}
}

func (p *Pool) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return
	}
	p.started = true
	p.ctx, p.cancel = context.WithCancel(ctx)

	for i := 0; i < p.size; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}

	p.logger.Info().Int("workers", p.size).Int("queue_capacity", cap(p.tasks)).Msg("Worker pool started")
}

// Stop закрывает очередь, дожидается выполнения уже принятых задач
func (p *Pool) Stop() {
	p.mu.Lock()
	if !p.started || p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.tasks)
	p.mu.Unlock()

	p.wg.Wait()
	p.cancel()

	p.logger.Info().Uint64("processed", p.processed.Load()).Msg("Worker pool stopped")
}

// Submit ставит задачу в очередь; при полной очереди ждет submitTimeout
func (p *Pool) Submit(task Task) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if !p.started {
		return ErrNotStarted
	}
	if p.stopped {
		return ErrStopped
	}

	select {
	case p.tasks <- task:
		return nil
	default:
	}

	p.logger.Warn().Msg("Worker pool task queue is full")

	timer := time.NewTimer(p.submitTimeout)
	defer timer.Stop()

	select {
	case p.tasks <- task:
		return nil
	case <-timer.C:
		p.logger.Error().Msg("Failed to submit task to worker pool (timeout)")
		return ErrQueueFull
	}
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()

	p.logger.Debug().Int("worker_id", id).Msg("Worker started")

	for task := range p.tasks {
		p.run(id, task)
	}

	p.logger.Debug().Int("worker_id", id).Msg("Worker stopped")
}

func (p *Pool) run(id int, task Task) {
	p.busy.Add(1)

	defer func() {
		if r := recover(); r != nil {
			p.panics.Add(1)
			p.logger.Error().
				Int("worker_id", id).
				Interface("panic", r).
				Msg("Worker recovered from panic")
		}

		p.processed.Add(1)
		p.busy.Add(-1)
	}()

	task(p.ctx)
}

func (p *Pool) Stats() Stats {
	return Stats{
		Workers:       p.size,
		Busy:          int(p.busy.Load()),
		QueueLength:   len(p.tasks),
		QueueCapacity: cap(p.tasks),
		Processed:     p.processed.Load(),
		Panics:        p.panics.Load(),
	}
}
