// Package worker runs queued item generation requests into the item bank.
package worker

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/psychometrician/internal/adapters/mq/queue"
	"github.com/okian/psychometrician/internal/domain/generator"
	"github.com/okian/psychometrician/internal/domain/model"
	"github.com/okian/psychometrician/pkg/logger"
	"github.com/okian/psychometrician/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerCount  = 2
	defaultTimeout      = 30 * time.Second
	poolShutdownTimeout = 30 * time.Second
)

// Generator drafts an item from the current bank.
type Generator interface {
	Generate(ctx context.Context, bank []model.Item, req generator.Request) (model.Item, error)
}

// Bank is the item bank generated items are appended to.
type Bank interface {
	All(ctx context.Context) ([]model.Item, error)
	Append(ctx context.Context, item model.Item) (model.Item, error)
}

// Tracker receives the outcome of each request.
type Tracker interface {
	Started(ctx context.Context, requestID string)
	Completed(ctx context.Context, requestID string, item model.Item)
	Failed(ctx context.Context, requestID string, err error)
}

// Queue defines how workers receive requests.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Request
}

// InMemoryWorker processes generation requests one at a time.
type InMemoryWorker struct {
	queue     Queue
	generator Generator
	bank      Bank
	tracker   Tracker
	name      string
	timeout   time.Duration

	done chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, gen Generator, bank Bank, tracker Tracker, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:     q,
		generator: gen,
		bank:      bank,
		tracker:   tracker,
		name:      "worker",
		timeout:   defaultTimeout,
		done:      make(chan struct{}),
		logger:    logger.Get().Named("worker"),
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}

	return w
}

// Run processes requests until the queue is closed and drained or ctx is
// done.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	for req := range w.queue.Dequeue(ctx) {
		if err := w.process(ctx, req); err != nil {
			w.logger.Error(ctx, "generation failed",
				logger.String("request_id", req.ID),
				logger.Error(err),
			)
		}
	}
}

// Done is closed when Run returns.
func (w *InMemoryWorker) Done() <-chan struct{} {
	return w.done
}

// process generates one item and appends it to the bank.
func (w *InMemoryWorker) process(ctx context.Context, req queue.Request) error {
	start := time.Now()
	defer func() {
		metrics.RecordGenerationLatency(float64(time.Since(start).Milliseconds()))
	}()

	w.tracker.Started(ctx, req.ID)

	genCtx := ctx
	if w.timeout > 0 {
		var cancel context.CancelFunc
		genCtx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	fail := func(kind string, err error) error {
		metrics.RecordGeneration(metrics.GenerationFailed)
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", kind)
		w.tracker.Failed(ctx, req.ID, err)
		return err
	}

	bank, err := w.bank.All(genCtx)
	if err != nil {
		return fail("bank_read", fmt.Errorf("read bank: %w", err))
	}

	item, err := w.generator.Generate(genCtx, bank, req.Request)
	if err != nil {
		return fail("generate", fmt.Errorf("generate item: %w", err))
	}

	stored, err := w.bank.Append(genCtx, item)
	if err != nil {
		return fail("bank_append", fmt.Errorf("append item: %w", err))
	}

	metrics.RecordGeneration(metrics.GenerationDone)
	w.tracker.Completed(ctx, req.ID, stored)
	w.logger.Info(ctx, "item generated",
		logger.String("request_id", req.ID),
		logger.Int("item_id", stored.ID),
		logger.String("domain", stored.Domain),
		logger.Float64("difficulty", stored.Difficulty),
	)
	return nil
}

// Pool manages multiple workers sharing one queue.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue

	startOnce sync.Once
	started   atomic.Bool
	logger    logger.Logger
}

// NewPool creates a new worker pool. workerCount below one uses the default.
func NewPool(workerCount int, q Queue, gen Generator, bank Bank, tracker Tracker, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = defaultWorkerCount
	}

	pool := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		logger:  logger.Get().Named("worker-pool"),
	}

	for i := 0; i < workerCount; i++ {
		workerOpts := append([]Option{WithName("worker-" + strconv.Itoa(i))}, opts...)
		pool.workers[i] = NewInMemoryWorker(q, gen, bank, tracker, workerOpts...)
	}

	return pool
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return len(p.workers)
}

// Start starts all workers in the pool. Later calls are no-ops.
func (p *Pool) Start(ctx context.Context) {
	p.startOnce.Do(func() {
		p.started.Store(true)
		for _, worker := range p.workers {
			go worker.Run(ctx)
		}
		metrics.UpdateWorkerActiveCount(len(p.workers))
		p.logger.Info(ctx, "worker pool started", logger.Int("workers", len(p.workers)))
	})
}

// Shutdown closes the queue and waits for the workers to drain it.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	if !p.started.Load() {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, worker := range p.workers {
		select {
		case <-worker.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
			return fmt.Errorf("worker pool shutdown: %w", shutdownCtx.Err())
		}
	}

	metrics.UpdateWorkerActiveCount(0)
	return nil
}
