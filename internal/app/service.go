// Package service provides the questionnaire service behind the HTTP API and
// the terminal driver. It owns the item bank, the scorer, the single active
// session and the item generation pipeline.
package service

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/okian/psychometrician/internal/adapters/llm"
	"github.com/okian/psychometrician/internal/adapters/mq/queue"
	"github.com/okian/psychometrician/internal/adapters/mq/worker"
	"github.com/okian/psychometrician/internal/adapters/repository"
	"github.com/okian/psychometrician/internal/domain/adaptive"
	"github.com/okian/psychometrician/internal/domain/dedupe"
	"github.com/okian/psychometrician/internal/domain/generator"
	"github.com/okian/psychometrician/internal/domain/model"
	"github.com/okian/psychometrician/internal/domain/scoring"
	"github.com/okian/psychometrician/pkg/logger"
	"github.com/okian/psychometrician/pkg/metrics"
	"github.com/okian/psychometrician/pkg/tracing"
)

// Default service configuration constants.
const (
	defaultQuota           = 10
	defaultInitialAbility  = 0.5
	defaultSeed            = 42
	defaultWorkerCount     = 2
	defaultQueueSize       = 64
	defaultStatusCacheSize = 1024
	defaultReplayCacheSize = 256
	stopTimeout            = 30 * time.Second
	tracerName             = "github.com/okian/psychometrician/internal/app"
)

// Service implements the questionnaire operations used by the drivers.
type Service struct {
	mu sync.RWMutex // guards lifecycle fields

	// Core components
	store     repository.Store
	scorer    scoring.Scorer
	completer generator.Completer
	replay    dedupe.Deduper
	statuses  *lru.Cache[string, GenerationStatus]
	queue     *queue.InMemoryQueue
	pool      *worker.Pool
	tracer    trace.Tracer

	// Session state; one controller at a time.
	sessionMu  sync.Mutex
	controller *adaptive.Controller
	rng        *rand.Rand

	// Configuration
	quota           int
	initialAbility  float64
	seed            int64
	workerCount     int
	queueSize       int
	statusCacheSize int
	replayCacheSize int
	newID           func() string

	started bool

	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		quota:           defaultQuota,
		initialAbility:  defaultInitialAbility,
		seed:            defaultSeed,
		workerCount:     defaultWorkerCount,
		queueSize:       defaultQueueSize,
		statusCacheSize: defaultStatusCacheSize,
		replayCacheSize: defaultReplayCacheSize,
		newID:           uuid.NewString,
		tracer:          tracing.Tracer(tracerName),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes the bank, the scorer and the generation pipeline. A
// service started without a store serves the built-in sample bank, and
// without a completer drafts items from templates.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.logger.Info(ctx, "starting questionnaire service...")

	if s.store == nil {
		store, err := repository.NewMemoryStore(repository.SampleBank()...)
		if err != nil {
			return fmt.Errorf("load sample bank: %w", err)
		}
		s.store = store
		s.logger.Info(ctx, "using built-in sample bank")
	}
	if s.scorer == nil {
		s.scorer = scoring.NewResponseScorer()
	}
	if s.completer == nil {
		s.completer = llm.NewTemplateCompleter()
	}

	seed := s.seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	s.rng = rand.New(rand.NewSource(seed)) //nolint:gosec // selection does not need crypto randomness

	s.replay = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.replayCacheSize))

	statuses, err := lru.New[string, GenerationStatus](s.statusCacheSize)
	if err != nil {
		return fmt.Errorf("create status cache: %w", err)
	}
	s.statuses = statuses

	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	gen := generator.New(s.completer,
		generator.WithRand(rand.New(rand.NewSource(seed+1))), //nolint:gosec // item drafting does not need crypto randomness
	)
	s.pool = worker.NewPool(s.workerCount, s.queue, gen, s.store, &statusTracker{svc: s},
		worker.WithLogger(s.logger.Named("worker")),
	)
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "questionnaire service started",
		logger.Int("bank_size", s.store.Count(ctx)),
		logger.Int("item_quota", s.quota),
		logger.Int("workers", s.workerCount),
		logger.Int("queue_size", s.queueSize),
	)

	return nil
}

// Stop drains the generation pipeline and closes the bank.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()

	s.logger.Info(ctx, "stopping questionnaire service...")

	if s.pool != nil {
		if err := s.pool.Shutdown(ctx); err != nil {
			s.logger.Error(ctx, "worker pool shutdown failed", logger.Error(err))
		}
	}

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Error(ctx, "closing item bank failed", logger.Error(err))
		}
	}

	s.started = false
	s.logger.Info(ctx, "questionnaire service stopped")
}

func (s *Service) running() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}

// Items returns the item bank in insertion order.
func (s *Service) Items(ctx context.Context) ([]model.Item, error) {
	if !s.running() {
		return nil, ErrNotRunning
	}
	return s.store.All(ctx)
}

// BankSummary returns the total and per-domain item counts.
func (s *Service) BankSummary(ctx context.Context) (repository.Summary, error) {
	if !s.running() {
		return repository.Summary{}, ErrNotRunning
	}
	return s.store.Summary(ctx)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"itemQuota":   s.quota,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
	}

	if s.started {
		queueLen := s.queue.Len(ctx)
		bankSize := s.store.Count(ctx)

		stats["queueLength"] = queueLen
		stats["bankSize"] = bankSize
		stats["trackedRequests"] = s.statuses.Len()
		stats["replayEntries"] = s.replay.Size()

		s.sessionMu.Lock()
		if s.controller != nil {
			stats["sessionState"] = s.controller.State().String()
			stats["answered"] = s.controller.Answered()
		} else {
			stats["sessionState"] = adaptive.StateNotStarted.String()
			stats["answered"] = 0
		}
		s.sessionMu.Unlock()

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateBankSize(bankSize)
	}

	return stats
}

// fail marks span as failed with err and returns err.
func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
