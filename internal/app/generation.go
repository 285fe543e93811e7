package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/okian/psychometrician/internal/adapters/mq/queue"
	"github.com/okian/psychometrician/internal/domain/generator"
	"github.com/okian/psychometrician/internal/domain/model"
	"github.com/okian/psychometrician/pkg/logger"
	"github.com/okian/psychometrician/pkg/metrics"
)

// Generation request states.
const (
	StatusPending = "pending"
	StatusDone    = "done"
	StatusFailed  = "failed"
)

// GenerationStatus is the tracked state of one generation request.
type GenerationStatus struct {
	ID         string            `json:"id"`
	Status     string            `json:"status"`
	Request    generator.Request `json:"request"`
	Item       *model.Item       `json:"item,omitempty"`
	Error      string            `json:"error,omitempty"`
	EnqueuedAt time.Time         `json:"enqueued_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// Terminal reports whether the request has finished.
func (g GenerationStatus) Terminal() bool {
	return g.Status == StatusDone || g.Status == StatusFailed
}

// RequestGeneration queues the drafting of one new item. The returned status
// is pending; poll GenerationStatus with its id. ErrBackpressure means the
// queue is full and the caller should retry later.
func (s *Service) RequestGeneration(ctx context.Context, req generator.Request) (GenerationStatus, error) {
	ctx, span := s.tracer.Start(ctx, "service.RequestGeneration")
	defer span.End()

	if !s.running() {
		return GenerationStatus{}, fail(span, ErrNotRunning)
	}
	if req.Domain != "" && strings.TrimSpace(req.Domain) == "" {
		return GenerationStatus{}, fail(span, fmt.Errorf("%w: blank domain", ErrInvalidRequest))
	}
	if d := req.Difficulty; d != nil && (*d < 0 || *d > 1) {
		return GenerationStatus{}, fail(span, fmt.Errorf("%w: difficulty %v outside [0,1]", ErrInvalidRequest, *d))
	}

	now := time.Now().UTC()
	status := GenerationStatus{
		ID:         s.newID(),
		Status:     StatusPending,
		Request:    req,
		EnqueuedAt: now,
		UpdatedAt:  now,
	}
	s.statuses.Add(status.ID, status)

	err := s.queue.Enqueue(ctx, queue.Request{ID: status.ID, Request: req, EnqueuedAt: now})
	if err != nil {
		s.statuses.Remove(status.ID)
		metrics.RecordGeneration(metrics.GenerationRejected)
		if errors.Is(err, queue.ErrFull) {
			s.logger.Warn(ctx, "generation queue full", logger.Int("capacity", s.queue.Cap()))
			return GenerationStatus{}, fail(span, fmt.Errorf("%w: %w", ErrBackpressure, err))
		}
		return GenerationStatus{}, fail(span, fmt.Errorf("enqueue generation: %w", err))
	}

	span.SetAttributes(
		attribute.String("generation.id", status.ID),
		attribute.String("generation.domain", req.Domain),
	)
	s.logger.Info(ctx, "generation requested",
		logger.String("request_id", status.ID),
		logger.String("domain", req.Domain),
	)

	return status, nil
}

// GenerationStatus returns the tracked state of request id.
func (s *Service) GenerationStatus(_ context.Context, id string) (GenerationStatus, error) {
	if !s.running() {
		return GenerationStatus{}, ErrNotRunning
	}
	status, ok := s.statuses.Get(id)
	if !ok {
		return GenerationStatus{}, fmt.Errorf("%w: %s", ErrUnknownRequest, id)
	}
	return status, nil
}

// statusTracker records worker outcomes in the service's status cache.
type statusTracker struct {
	svc *Service
}

func (t *statusTracker) update(id string, fn func(*GenerationStatus)) {
	status, ok := t.svc.statuses.Peek(id)
	if !ok {
		status = GenerationStatus{ID: id}
	}
	fn(&status)
	status.UpdatedAt = time.Now().UTC()
	t.svc.statuses.Add(id, status)
}

// Started keeps the request pending; only its timestamp moves.
func (t *statusTracker) Started(_ context.Context, id string) {
	t.update(id, func(g *GenerationStatus) {
		g.Status = StatusPending
	})
}

func (t *statusTracker) Completed(_ context.Context, id string, item model.Item) {
	t.update(id, func(g *GenerationStatus) {
		g.Status = StatusDone
		g.Item = &item
	})
}

func (t *statusTracker) Failed(_ context.Context, id string, err error) {
	t.update(id, func(g *GenerationStatus) {
		g.Status = StatusFailed
		g.Error = err.Error()
	})
}
