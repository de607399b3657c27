package source

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hangyu-feng/myplan-calendar/internal/extract"
	appLog "github.com/hangyu-feng/myplan-calendar/internal/log"
)

// File reads a snapshot saved on disk. ".json" files are decoded as JSON,
// anything else as YAML.
type File struct {
	Path string
}

func (f *File) Load(ctx context.Context) ([]extract.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("source: read %s: %w", f.Path, err)
	}

	var items []extract.Item
	if isJSON(f.Path) {
		items, err = DecodeJSON(data)
	} else {
		items, err = DecodeYAML(data)
	}
	if err != nil {
		return nil, err
	}
	appLog.Debug("snapshot file loaded", "path", f.Path, "items", len(items))
	return items, nil
}

// Save writes items as a YAML snapshot that File can load back.
func Save(path string, items []extract.Item) error {
	data, err := yaml.Marshal(document{Items: items})
	if err != nil {
		return fmt.Errorf("source: encode snapshot: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}
