// Package generator drafts new questionnaire items with a text completer.
//
// The completer sees a short prompt with the target domain and a couple of
// existing items from that domain; whatever it returns is cut down to a
// single statement.
package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"sync"

	"github.com/kaptinlin/jsonrepair"

	"github.com/okian/psychometrician/internal/domain/model"
)

const (
	defaultMaxExamples = 2
	minDifficulty      = 0.1
	maxDifficulty      = 0.9
)

// Completer turns a prompt into free text.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Request describes the item to draft. Zero values are filled in by the
// generator: a random known domain and a random difficulty.
type Request struct {
	Domain     string   `json:"domain,omitempty"`
	Difficulty *float64 `json:"difficulty,omitempty"`
}

// Generator drafts items. The id of a drafted item is left zero; the item
// bank assigns it on append.
type Generator struct {
	completer   Completer
	domains     []string
	maxExamples int

	mu  sync.Mutex // guards rng
	rng *rand.Rand
}

// New creates a generator over completer.
func New(completer Completer, opts ...Option) *Generator {
	g := &Generator{
		completer:   completer,
		domains:     model.KnownDomains(),
		maxExamples: defaultMaxExamples,
		rng:         rand.New(rand.NewSource(rand.Int63())), //nolint:gosec // item drafting does not need crypto randomness
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Resolve fills the defaults of req.
func (g *Generator) Resolve(req Request) (string, float64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	domain := strings.TrimSpace(req.Domain)
	if domain == "" {
		domain = g.domains[g.rng.Intn(len(g.domains))]
	}

	var difficulty float64
	if req.Difficulty != nil {
		difficulty = clamp(*req.Difficulty)
	} else {
		raw := minDifficulty + g.rng.Float64()*(maxDifficulty-minDifficulty)
		difficulty = math.Round(raw*10) / 10
	}
	return domain, difficulty
}

// Generate drafts one item for req using bank for examples.
func (g *Generator) Generate(ctx context.Context, bank []model.Item, req Request) (model.Item, error) {
	if g.completer == nil {
		return model.Item{}, ErrNoCompleter
	}
	if req.Domain != "" && strings.TrimSpace(req.Domain) == "" {
		return model.Item{}, ErrInvalidDomain
	}

	domain, difficulty := g.Resolve(req)
	prompt := BuildPrompt(domain, Examples(bank, domain, g.maxExamples))

	completion, err := g.completer.Complete(ctx, prompt)
	if err != nil {
		return model.Item{}, fmt.Errorf("complete prompt for %s: %w", domain, err)
	}

	text := ExtractText(completion)
	if text == "" {
		return model.Item{}, ErrEmptyItem
	}

	return model.Item{
		Text:       text,
		Type:       model.ResponseTypeLikert5,
		Domain:     domain,
		Difficulty: difficulty,
	}, nil
}

// Examples returns the texts of up to limit bank items in domain, in bank
// order.
func Examples(bank []model.Item, domain string, limit int) []string {
	var out []string
	for _, item := range bank {
		if len(out) >= limit {
			break
		}
		if item.Domain == domain {
			out = append(out, item.Text)
		}
	}
	return out
}

// BuildPrompt renders the completion prompt.
func BuildPrompt(domain string, examples []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate a new psychological assessment question about %s.\n\n", domain)
	if len(examples) > 0 {
		b.WriteString("Here are some examples:\n")
		for _, ex := range examples {
			fmt.Fprintf(&b, "- %s\n", ex)
		}
	}
	fmt.Fprintf(&b, "\nNew %s assessment question: ", domain)
	return b.String()
}

// ExtractText cuts a completion down to a single item statement. A JSON
// object with a "text" field wins, repaired first if it is malformed.
// Otherwise the first double-quoted segment is taken, then the first
// sentence, then the whole trimmed completion.
func ExtractText(completion string) string {
	s := strings.TrimSpace(completion)
	if s == "" {
		return ""
	}

	if text, ok := jsonText(s); ok {
		return text
	}

	if strings.Contains(s, `"`) {
		parts := strings.SplitN(s, `"`, 3)
		return strings.TrimSpace(parts[1])
	}
	if i := strings.Index(s, "."); i >= 0 {
		return strings.TrimSpace(s[:i]) + "."
	}
	return s
}

func jsonText(s string) (string, bool) {
	start := strings.Index(s, "{")
	if start < 0 {
		return "", false
	}
	raw := s[start:]
	if end := strings.LastIndex(raw, "}"); end >= 0 {
		raw = raw[:end+1]
	}

	var payload struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		fixed, repairErr := jsonrepair.JSONRepair(raw)
		if repairErr != nil {
			return "", false
		}
		if err := json.Unmarshal([]byte(fixed), &payload); err != nil {
			return "", false
		}
	}
	text := strings.TrimSpace(payload.Text)
	return text, text != ""
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
