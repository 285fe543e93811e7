// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Load layers a YAML file and PSYM_ environment variables over them.
// - Validation failures wrap ErrInvalidConfig.
package config

import (
	"context"
	"fmt"
	"strings"
)

// Bank store kinds.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

// Generator providers.
const (
	ProviderTemplate = "template"
	ProviderGenAI    = "genai"
)

// Thresholds bands one domain's scores.
type Thresholds struct {
	Moderate float64 `koanf:"moderate"`
	High     float64 `koanf:"high"`
}

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// BankPath names a JSON or YAML item bank. Empty uses the built-in bank.
	BankPath string `koanf:"bank_path"`

	// BankStore selects where the bank lives: memory or sqlite.
	BankStore string `koanf:"bank_store"`

	// SQLitePath is the database file used when BankStore is sqlite.
	SQLitePath string `koanf:"sqlite_path"`

	// ItemQuota is the number of responses that completes a session.
	ItemQuota int `koanf:"item_quota"`

	// InitialAbility is the ability estimate a session starts from.
	InitialAbility float64 `koanf:"initial_ability"`

	// RandomSeed seeds fallback selection. Zero seeds from the clock.
	RandomSeed int64 `koanf:"random_seed"`

	// ModerateThreshold and HighThreshold band domains without their own entry.
	ModerateThreshold float64 `koanf:"moderate_threshold"`
	HighThreshold     float64 `koanf:"high_threshold"`

	// DomainThresholds overrides the bands per domain.
	DomainThresholds map[string]Thresholds `koanf:"domain_thresholds"`

	// InvertedDomains are reverse-scored unless the item text is negated.
	InvertedDomains []string `koanf:"inverted_domains"`

	// NegationMarkers suppress inversion when found in an item's text.
	NegationMarkers []string `koanf:"negation_markers"`

	// GeneratorProvider selects the completer: template or genai.
	GeneratorProvider string `koanf:"generator_provider"`
	GenAIModel        string `koanf:"genai_model"`
	GenAIAPIKey       string `koanf:"genai_api_key"`

	// GeneratorWorkers and GeneratorQueueSize size the generation pipeline.
	GeneratorWorkers   int `koanf:"generator_workers"`
	GeneratorQueueSize int `koanf:"generator_queue_size"`

	// GenerationStatusCache bounds how many request outcomes are remembered.
	GenerationStatusCache int `koanf:"generation_status_cache"`

	// ReplayCacheSize bounds how many answered tickets are remembered.
	ReplayCacheSize int `koanf:"replay_cache_size"`

	// TracingEnabled turns on the stdout span exporter.
	TracingEnabled bool `koanf:"tracing_enabled"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention and is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:              "info",
		Addr:                  ":9080",
		BankStore:             StoreMemory,
		SQLitePath:            "psychometrician.db",
		ItemQuota:             10,
		InitialAbility:        0.5,
		RandomSeed:            42,
		ModerateThreshold:     0.3,
		HighThreshold:         0.7,
		DomainThresholds:      map[string]Thresholds{},
		InvertedDomains:       []string{"sociability", "conscientiousness"},
		NegationMarkers:       []string{"don't"},
		GeneratorProvider:     ProviderTemplate,
		GenAIModel:            "gemini-2.0-flash",
		GeneratorWorkers:      2,
		GeneratorQueueSize:    64,
		GenerationStatusCache: 1024,
		ReplayCacheSize:       256,
	}
}

// Validate checks field ranges and enumerations.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.ItemQuota < 1:
		return fmt.Errorf("%w: item_quota must be at least 1, got %d", ErrInvalidConfig, c.ItemQuota)
	case c.InitialAbility < 0 || c.InitialAbility > 1:
		return fmt.Errorf("%w: initial_ability must be in [0,1], got %g", ErrInvalidConfig, c.InitialAbility)
	case !ordered(c.ModerateThreshold, c.HighThreshold):
		return fmt.Errorf("%w: thresholds must satisfy 0 <= moderate <= high <= 1", ErrInvalidConfig)
	case c.GeneratorWorkers < 1:
		return fmt.Errorf("%w: generator_workers must be at least 1", ErrInvalidConfig)
	case c.GeneratorQueueSize < 1:
		return fmt.Errorf("%w: generator_queue_size must be at least 1", ErrInvalidConfig)
	}

	for domain, th := range c.DomainThresholds {
		if !ordered(th.Moderate, th.High) {
			return fmt.Errorf("%w: domain_thresholds.%s must satisfy 0 <= moderate <= high <= 1", ErrInvalidConfig, domain)
		}
	}

	switch c.BankStore {
	case StoreMemory:
	case StoreSQLite:
		if strings.TrimSpace(c.SQLitePath) == "" {
			return fmt.Errorf("%w: sqlite_path must not be empty", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown bank_store %q", ErrInvalidConfig, c.BankStore)
	}

	switch c.GeneratorProvider {
	case ProviderTemplate, ProviderGenAI:
	default:
		return fmt.Errorf("%w: unknown generator_provider %q", ErrInvalidConfig, c.GeneratorProvider)
	}
	return nil
}

func ordered(moderate, high float64) bool {
	return moderate >= 0 && moderate <= high && high <= 1
}
