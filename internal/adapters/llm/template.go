// Package llm provides text completers for item generation.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sync"
)

var promptDomain = regexp.MustCompile(`question about ([^.\n]+)\.`)

var domainStems = map[string][]string{
	"anxiety": {
		"I feel nervous before ordinary events.",
		"I find it hard to stop worrying once I start.",
		"Unexpected noises make me jumpy.",
	},
	"depression": {
		"I have lost interest in things I used to enjoy.",
		"Getting out of bed feels pointless.",
		"I feel hopeless about the future.",
	},
	"stress": {
		"Small problems feel overwhelming to me.",
		"I feel pressure even when I am resting.",
		"I snap at people when things pile up.",
	},
	"attention": {
		"I lose track of conversations halfway through.",
		"I start tasks and leave them unfinished.",
		"My mind wanders when I read.",
	},
	"sociability": {
		"I look forward to meeting new people.",
		"I enjoy being the centre of a group.",
		"I start conversations with strangers easily.",
	},
	"conscientiousness": {
		"I plan my week ahead of time.",
		"I double-check my work before handing it in.",
		"I keep my promises even when it is inconvenient.",
	},
	"fatigue": {
		"I feel drained by mid-afternoon.",
		"Even light effort leaves me exhausted.",
		"I wake up tired after a full night of sleep.",
	},
}

// TemplateCompleter answers generation prompts from a fixed phrase list.
// It works offline and cycles through the phrases of each domain.
type TemplateCompleter struct {
	mu   sync.Mutex
	next map[string]int
}

// NewTemplateCompleter creates an offline completer.
func NewTemplateCompleter() *TemplateCompleter {
	return &TemplateCompleter{next: make(map[string]int)}
}

// Complete returns a JSON object whose text is the next phrase for the
// prompt's domain. Domains without phrases get a generic statement.
func (t *TemplateCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	m := promptDomain.FindStringSubmatch(prompt)
	if m == nil {
		return "", ErrUnknownDomain
	}
	domain := m[1]

	t.mu.Lock()
	i := t.next[domain]
	t.next[domain] = i + 1
	t.mu.Unlock()

	var text string
	if stems := domainStems[domain]; len(stems) > 0 {
		text = stems[i%len(stems)]
	} else {
		text = fmt.Sprintf("Questions about %s describe me well.", domain)
	}

	out, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return "", fmt.Errorf("encode completion: %w", err)
	}
	return string(out), nil
}
