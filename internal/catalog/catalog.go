// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog loads the static product catalog used by incremental search.
// A Catalog is immutable after construction and safe to share between
// matchers and goroutines.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/safebites/pkg/types"
)

// ErrDuplicateID is returned when two catalog entries share an id.
var ErrDuplicateID = errors.New("duplicate product id")

//go:embed products.yaml
var defaultCatalog []byte

// Catalog is an ordered, read-only sequence of products.
type Catalog struct {
	products []types.Product
}

// New validates products and returns a catalog preserving their order.
// Names are trimmed; ids must be unique and names non-empty.
func New(products []types.Product) (*Catalog, error) {
	seen := make(map[int]bool, len(products))
	out := make([]types.Product, 0, len(products))
	for i, p := range products {
		p.Name = strings.TrimSpace(p.Name)
		if p.Name == "" {
			return nil, fmt.Errorf("product at index %d (id %d): empty name", i, p.ID)
		}
		if seen[p.ID] {
			return nil, fmt.Errorf("product %q: %w %d", p.Name, ErrDuplicateID, p.ID)
		}
		seen[p.ID] = true
		out = append(out, p)
	}
	return &Catalog{products: out}, nil
}

// Parse decodes a YAML or JSON list of {id, name} entries.
func Parse(data []byte) (*Catalog, error) {
	var products []types.Product
	if err := yaml.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	return New(products)
}

// Load reads a catalog file. YAML and JSON are both accepted.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog %s: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Default returns the catalog bundled with the binary.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// LoadOrDefault loads path, or the bundled catalog when path is empty.
func LoadOrDefault(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	return Load(path)
}

// Len returns the number of products.
func (c *Catalog) Len() int { return len(c.products) }

// Products returns a copy of the catalog in its original order.
func (c *Catalog) Products() []types.Product {
	out := make([]types.Product, len(c.products))
	copy(out, c.products)
	return out
}

// Each calls fn for every product in order until fn returns false.
func (c *Catalog) Each(fn func(types.Product) bool) {
	for _, p := range c.products {
		if !fn(p) {
			return
		}
	}
}

// Lookup returns the product with the given id.
func (c *Catalog) Lookup(id int) (types.Product, bool) {
	for _, p := range c.products {
		if p.ID == id {
			return p, true
		}
	}
	return types.Product{}, false
}
