// Package repository stores the item bank and loads it from files.
package repository

import (
	"context"
	"sort"

	"github.com/okian/psychometrician/internal/domain/model"
)

// Summary counts bank items overall and per domain.
type Summary struct {
	Total   int            `json:"total"`
	Domains map[string]int `json:"domains"`
}

// SortedDomains returns the summary's domains in lexical order.
func (s Summary) SortedDomains() []string {
	out := make([]string, 0, len(s.Domains))
	for d := range s.Domains {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// Store provides read/append access to the item bank.
type Store interface {
	// All returns every item in insertion order.
	All(ctx context.Context) ([]model.Item, error)

	// Get returns the item with id.
	// Returns ErrNotFound if there is none.
	Get(ctx context.Context, id int) (model.Item, error)

	// Append validates item, assigns it the next id (max existing id + 1)
	// and stores it. The stored item is returned.
	Append(ctx context.Context, item model.Item) (model.Item, error)

	// Count returns the number of items in the bank.
	Count(ctx context.Context) int

	// Summary returns the total and per-domain item counts.
	Summary(ctx context.Context) (Summary, error)

	Close() error
}

func summarize(items []model.Item) Summary {
	s := Summary{Total: len(items), Domains: make(map[string]int)}
	for _, item := range items {
		if item.HasDomain() {
			s.Domains[item.Domain]++
		}
	}
	return s
}

func validateAppend(item model.Item) error {
	probe := item
	probe.ID = 1
	if err := probe.Validate(); err != nil {
		return wrapInvalid(err)
	}
	return nil
}
