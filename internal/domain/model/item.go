// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"strings"
)

// ResponseType tags the answer format of an item.
type ResponseType string

// Supported response types.
const (
	ResponseTypeLikert5 ResponseType = "likert_5"
)

// IsLikert reports whether t belongs to the Likert family ("likert_*").
func (t ResponseType) IsLikert() bool {
	return strings.HasPrefix(string(t), "likert")
}

// Known psychological domains. The domain set is open; items may carry
// domains outside this list.
const (
	DomainAnxiety           = "anxiety"
	DomainDepression        = "depression"
	DomainStress            = "stress"
	DomainAttention         = "attention"
	DomainSociability       = "sociability"
	DomainConscientiousness = "conscientiousness"
	DomainFatigue           = "fatigue"
)

// KnownDomains returns the fixed domain list in its canonical order.
func KnownDomains() []string {
	return []string{
		DomainAnxiety,
		DomainDepression,
		DomainStress,
		DomainAttention,
		DomainSociability,
		DomainConscientiousness,
		DomainFatigue,
	}
}

// DefaultDifficulty is applied to items loaded without a difficulty.
const DefaultDifficulty = 0.5

// Item is one immutable test item from the bank.
type Item struct {
	ID         int          `json:"id" yaml:"id"`
	Text       string       `json:"text" yaml:"text"`
	Type       ResponseType `json:"type" yaml:"type"`
	Domain     string       `json:"domain,omitempty" yaml:"domain,omitempty"`
	Difficulty float64      `json:"difficulty" yaml:"difficulty"`
}

// HasDomain reports whether the item is tagged with a domain.
func (i Item) HasDomain() bool {
	return i.Domain != ""
}

// Validate checks the per-item invariants. Any integer is a valid id; id
// uniqueness is a bank-level concern and is checked by the stores.
func (i Item) Validate() error {
	if strings.TrimSpace(i.Text) == "" {
		return fmt.Errorf("item %d: text must not be empty", i.ID)
	}
	if i.Difficulty < 0 || i.Difficulty > 1 {
		return fmt.Errorf("item %d: difficulty %.3f outside [0,1]", i.ID, i.Difficulty)
	}
	return nil
}
