// Package features turns client-submitted field maps into model input vectors.
package features

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// Column is one model input. Categorical columns list their levels in the
// order the model was trained with; numeric columns have none.
type Column struct {
	Name       string   `json:"name"`
	Categories []string `json:"categories,omitempty"`
}

// Categorical reports whether the column expects a level index.
func (c Column) Categorical() bool {
	return len(c.Categories) > 0
}

// CategoryIndex returns the position of level among the column's categories.
func (c Column) CategoryIndex(level string) (int, bool) {
	for i, cat := range c.Categories {
		if cat == level {
			return i, true
		}
	}
	return 0, false
}

// Schema is the ordered list of columns the model expects. A nil Schema means
// the column layout is unknown.
type Schema []Column

type schemaFile struct {
	Columns Schema `json:"columns"`
}

// Names returns the column names in model order.
func (s Schema) Names() []string {
	names := make([]string, len(s))
	for i, c := range s {
		names[i] = c.Name
	}
	return names
}

// LoadSchema reads a schema sidecar. A missing file yields a nil Schema and no error.
func LoadSchema(path string) (Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read schema: %w", err)
	}
	return ParseSchema(data)
}

// ParseSchema decodes `{"columns": [{"name": ..., "categories": [...]}]}`.
func ParseSchema(data []byte) (Schema, error) {
	var file schemaFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode schema: %w", err)
	}
	if len(file.Columns) == 0 {
		return nil, errors.New("schema has no columns")
	}

	seen := make(map[string]struct{}, len(file.Columns))
	for i, c := range file.Columns {
		if c.Name == "" {
			return nil, fmt.Errorf("schema column %d has no name", i)
		}
		if _, dup := seen[c.Name]; dup {
			return nil, fmt.Errorf("schema column %q listed twice", c.Name)
		}
		seen[c.Name] = struct{}{}
	}
	return file.Columns, nil
}
