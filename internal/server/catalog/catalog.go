// Package catalog serves keyword lookups over the operator-maintained list
// of downloadable items.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/dmitrijs2005/gatekeeper/internal/common"
	"github.com/dmitrijs2005/gatekeeper/internal/filex"
	"github.com/dmitrijs2005/gatekeeper/internal/logging"
	"gopkg.in/yaml.v3"
)

// Item is one catalog entry. Password may be empty.
type Item struct {
	Name     string `json:"name" yaml:"name"`
	URL      string `json:"url" yaml:"url"`
	Password string `json:"password,omitempty" yaml:"password,omitempty"`
}

// Catalog is an immutable, in-memory item list.
type Catalog struct {
	items []Item
}

func New(items []Item) *Catalog {
	return &Catalog{items: items}
}

// Load reads the catalog from path. JSON is the default; files ending in
// .yaml or .yml are parsed as YAML. A missing file yields an empty catalog.
func Load(ctx context.Context, path string, log logging.Logger) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Warn(ctx, "catalog file not found, serving empty catalog", "path", path)
			return New(nil), nil
		}
		return nil, fmt.Errorf("error reading catalog: %w", err)
	}

	var items []Item
	switch ext := filex.Ext(path); ext {
	case ".json", "":
		err = json.Unmarshal(data, &items)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &items)
	default:
		return nil, fmt.Errorf("%w: %s", common.ErrorUnsupportedCatalogFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("error parsing catalog %s: %w", path, err)
	}

	log.Info(ctx, "catalog loaded", "path", path, "items", len(items))
	return New(items), nil
}

// Search returns the items whose name contains keyword, in file order.
func (c *Catalog) Search(keyword string) []Item {
	var out []Item
	for _, it := range c.items {
		if strings.Contains(it.Name, keyword) {
			out = append(out, it)
		}
	}
	return out
}

func (c *Catalog) Len() int { return len(c.items) }
