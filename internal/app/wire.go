package service

import (
	"context"
	"fmt"

	"github.com/okian/psychometrician/internal/adapters/llm"
	"github.com/okian/psychometrician/internal/adapters/repository"
	"github.com/okian/psychometrician/internal/config"
	"github.com/okian/psychometrician/internal/domain/model"
	"github.com/okian/psychometrician/internal/domain/scoring"
	"github.com/okian/psychometrician/pkg/logger"
)

// NewFromConfig builds a Service from cfg: it opens the configured bank,
// builds the scorer and the completer. The returned service is not started.
func NewFromConfig(ctx context.Context, cfg *config.Config, opts ...Option) (*Service, error) {
	store, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	completer, err := llm.NewCompleter(ctx, cfg.GeneratorProvider, cfg.GenAIAPIKey, cfg.GenAIModel)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("create completer: %w", err)
	}

	base := []Option{
		WithStore(store),
		WithScorer(NewScorer(cfg)),
		WithCompleter(completer),
		WithItemQuota(cfg.ItemQuota),
		WithInitialAbility(cfg.InitialAbility),
		WithRandomSeed(cfg.RandomSeed),
		WithWorkerCount(cfg.GeneratorWorkers),
		WithQueueSize(cfg.GeneratorQueueSize),
		WithStatusCacheSize(cfg.GenerationStatusCache),
		WithReplayCacheSize(cfg.ReplayCacheSize),
	}
	return New(append(base, opts...)...), nil
}

// NewScorer builds the response scorer described by cfg.
func NewScorer(cfg *config.Config) *scoring.ResponseScorer {
	table := make(map[string]scoring.Thresholds, len(cfg.DomainThresholds))
	for domain, t := range cfg.DomainThresholds {
		table[domain] = scoring.Thresholds{Moderate: t.Moderate, High: t.High}
	}

	return scoring.NewResponseScorer(
		scoring.WithDefaultThresholds(scoring.Thresholds{
			Moderate: cfg.ModerateThreshold,
			High:     cfg.HighThreshold,
		}),
		scoring.WithDomainThresholdsFromConfig(table),
		scoring.WithInvertedDomains(cfg.InvertedDomains...),
		scoring.WithNegationMarkers(cfg.NegationMarkers...),
	)
}

// OpenStore opens the item bank named by cfg. The bank file, or the built-in
// sample bank when none is configured, seeds the store; a SQLite store is
// seeded only while empty.
func OpenStore(ctx context.Context, cfg *config.Config) (repository.Store, error) {
	items, err := loadItems(cfg.BankPath)
	if err != nil {
		return nil, err
	}

	switch cfg.BankStore {
	case config.StoreSQLite:
		store, err := repository.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite bank: %w", err)
		}
		seeded, err := store.Seed(ctx, items)
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("seed sqlite bank: %w", err)
		}
		logger.Get().Named("service").Info(ctx, "sqlite item bank opened",
			logger.String("path", cfg.SQLitePath),
			logger.Int("seeded", seeded),
			logger.Int("bank_size", store.Count(ctx)),
		)
		return store, nil
	case config.StoreMemory, "":
		store, err := repository.NewMemoryStore(items...)
		if err != nil {
			return nil, fmt.Errorf("build memory bank: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("%w: bank_store %q", config.ErrInvalidConfig, cfg.BankStore)
	}
}

func loadItems(path string) ([]model.Item, error) {
	if path == "" {
		return repository.SampleBank(), nil
	}
	items, err := repository.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load bank %s: %w", path, err)
	}
	return items, nil
}
