package repository

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/okian/psychometrician/internal/domain/model"
)

// Bank file formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

//go:embed sample_items.json
var sampleBank []byte

// rawItem mirrors model.Item with optional fields left nil when absent.
type rawItem struct {
	ID         int      `json:"id" yaml:"id"`
	Text       string   `json:"text" yaml:"text"`
	Type       string   `json:"type" yaml:"type"`
	Domain     string   `json:"domain" yaml:"domain"`
	Difficulty *float64 `json:"difficulty" yaml:"difficulty"`
}

type bankDocument struct {
	Items *[]rawItem `json:"items" yaml:"items"`
}

// LoadFile reads a JSON or YAML bank document chosen by file extension.
func LoadFile(path string) ([]model.Item, error) {
	var format string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		format = FormatJSON
	case ".yaml", ".yml":
		format = FormatYAML
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read bank file: %w", err)
	}
	items, err := Decode(data, format)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return items, nil
}

// SampleBank returns the built-in bank.
func SampleBank() []model.Item {
	items, err := Decode(sampleBank, FormatJSON)
	if err != nil {
		panic(fmt.Sprintf("embedded sample bank: %v", err))
	}
	return items
}

// Decode parses a bank document. Items without a type become likert_5 and
// items without a difficulty get the default difficulty. Every item is
// validated and ids must be unique.
func Decode(data []byte, format string) ([]model.Item, error) {
	var doc bankDocument
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode json bank: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("decode yaml bank: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	if doc.Items == nil {
		return nil, ErrMissingItems
	}

	seen := make(map[int]struct{}, len(*doc.Items))
	items := make([]model.Item, 0, len(*doc.Items))
	for _, raw := range *doc.Items {
		item := raw.toItem()
		if err := item.Validate(); err != nil {
			return nil, wrapInvalid(err)
		}
		if _, dup := seen[item.ID]; dup {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateID, item.ID)
		}
		seen[item.ID] = struct{}{}
		items = append(items, item)
	}
	return items, nil
}

func (r rawItem) toItem() model.Item {
	item := model.Item{
		ID:         r.ID,
		Text:       strings.TrimSpace(r.Text),
		Type:       model.ResponseType(r.Type),
		Domain:     strings.TrimSpace(r.Domain),
		Difficulty: model.DefaultDifficulty,
	}
	if item.Type == "" {
		item.Type = model.ResponseTypeLikert5
	}
	if r.Difficulty != nil {
		item.Difficulty = *r.Difficulty
	}
	return item
}

func wrapInvalid(err error) error {
	return fmt.Errorf("%w: %w", ErrInvalidItem, err)
}
