// Package source loads plan item snapshots from a file, an HTTP endpoint or
// a live plan page in headless Chromium.
package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hangyu-feng/myplan-calendar/internal/config"
	"github.com/hangyu-feng/myplan-calendar/internal/extract"
)

var ErrUnknownKind = errors.New("source: unknown kind")

// Source produces the plan items currently visible to the user.
type Source interface {
	Load(ctx context.Context) ([]extract.Item, error)
}

// New builds the Source selected by cfg.Kind.
func New(cfg config.SourceConfig) (Source, error) {
	switch cfg.Kind {
	case config.SourceFile:
		if cfg.Path == "" {
			return nil, errors.New("source: file path is empty")
		}
		return &File{Path: cfg.Path}, nil
	case config.SourceURL:
		if cfg.URL == "" {
			return nil, errors.New("source: url is empty")
		}
		return NewHTTP(cfg.URL, cfg.CacheDir, cfg.Timeout()), nil
	case config.SourceBrowser:
		if cfg.URL == "" {
			return nil, errors.New("source: plan page url is empty")
		}
		return &Browser{URL: cfg.URL, WaitSelector: cfg.WaitSelector, Timeout: cfg.Timeout()}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, cfg.Kind)
	}
}

// document is the wrapped snapshot form: {"items": [...]}.
type document struct {
	Items []extract.Item `json:"items" yaml:"items"`
}

// DecodeJSON accepts either a bare item list or a document wrapping one.
func DecodeJSON(data []byte) ([]extract.Item, error) {
	var items []extract.Item
	if err := json.Unmarshal(data, &items); err == nil {
		return items, nil
	}
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("source: decode json snapshot: %w", err)
	}
	return doc.Items, nil
}

// DecodeYAML is DecodeJSON for YAML snapshots.
func DecodeYAML(data []byte) ([]extract.Item, error) {
	var items []extract.Item
	if err := yaml.Unmarshal(data, &items); err == nil {
		return items, nil
	}
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("source: decode yaml snapshot: %w", err)
	}
	return doc.Items, nil
}

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}
