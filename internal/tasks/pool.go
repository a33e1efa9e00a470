package tasks

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/topsync/internal/shared"
	"golang.org/x/time/rate"
)

// Job is a unit of background work. Failures are logged, never returned to the submitter.
type Job struct {
	Name string
	Run  func(ctx context.Context) error
}

// Pool runs submitted jobs on a fixed set of workers, paced by a shared rate limiter.
//
// Jobs run on the pool's own context, detached from whatever request submitted them.
type Pool struct {
	jobs    chan Job
	limiter *rate.Limiter
	logger  *log.Logger
	workers int

	ctx    context.Context
	cancel context.CancelFunc

	wg       sync.WaitGroup
	mu       sync.RWMutex
	started  bool
	stopped  bool
	stopOnce sync.Once
}

// NewPool creates a pool from the workers configuration. Non-positive values fall back to one worker,
// a one-slot queue and 5 jobs per second.
func NewPool(cfg shared.WorkersConfig, logger *log.Logger) *Pool {
	if cfg.Count < 1 {
		cfg.Count = 1
	}
	if cfg.QueueSize < 1 {
		cfg.QueueSize = 1
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 5.0
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Pool{
		jobs:    make(chan Job, cfg.QueueSize),
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), 1),
		logger:  shared.WithLogger(logger, "component", "pool"),
		workers: cfg.Count,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start launches the worker goroutines. Calling it more than once has no effect.
func (p *Pool) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started || p.stopped {
		return
	}
	p.started = true

	for range p.workers {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for job := range p.jobs {
				p.process(job)
			}
		}()
	}
}

// Submit queues a job without blocking and reports whether it was accepted.
//
// Jobs are dropped with a warning when the queue is full or the pool is stopped.
func (p *Pool) Submit(job Job) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.stopped {
		p.logger.Warn("dropping job, pool stopped", "job", job.Name)
		return false
	}

	select {
	case p.jobs <- job:
		return true
	default:
		p.logger.Warn("dropping job, queue full", "job", job.Name)
		return false
	}
}

// Stop closes the queue and waits for queued jobs to finish.
func (p *Pool) Stop() {
	p.stopOnce.Do(func() {
		p.mu.Lock()
		p.stopped = true
		close(p.jobs)
		p.mu.Unlock()

		p.wg.Wait()
		p.cancel()
	})
}

func (p *Pool) process(job Job) {
	if err := p.limiter.Wait(p.ctx); err != nil {
		p.logger.Warn("job cancelled", "job", job.Name, "error", err)
		return
	}

	if err := job.Run(p.ctx); err != nil {
		p.logger.Error("job failed", "job", job.Name, "error", err)
		return
	}
	p.logger.Info("job completed", "job", job.Name)
}
