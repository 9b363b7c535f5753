package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/skintellect/storefront/internal/model"
)

//go:embed products.yaml
var defaultCatalog []byte

// Catalog is the immutable product list the storefront sells.
type Catalog struct {
	products []model.Product
	byID     map[string]int
}

// Default returns the embedded catalog.
func Default() *Catalog {
	c, err := Parse(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog: %v", err))
	}
	return c
}

// Load reads a YAML catalog from path, or returns the embedded one when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(b)
}

// Parse decodes and validates a YAML product list.
func Parse(b []byte) (*Catalog, error) {
	var products []model.Product
	if err := yaml.Unmarshal(b, &products); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return New(products)
}

// New validates products and builds the id index.
func New(products []model.Product) (*Catalog, error) {
	c := &Catalog{
		products: make([]model.Product, 0, len(products)),
		byID:     make(map[string]int, len(products)),
	}
	for i, p := range products {
		switch {
		case strings.TrimSpace(p.ID) == "":
			return nil, fmt.Errorf("product %d: missing id", i)
		case p.Price < 0:
			return nil, fmt.Errorf("product %s: negative price", p.ID)
		case len(p.Ingredients) == 0:
			return nil, fmt.Errorf("product %s: no ingredients", p.ID)
		}
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("product %s: duplicate id", p.ID)
		}
		c.byID[p.ID] = len(c.products)
		c.products = append(c.products, p)
	}
	return c, nil
}

// All returns a copy of every product in catalog order.
func (c *Catalog) All() []model.Product {
	out := make([]model.Product, len(c.products))
	copy(out, c.products)
	return out
}

// Get looks a product up by id.
func (c *Catalog) Get(id string) (model.Product, bool) {
	i, ok := c.byID[id]
	if !ok {
		return model.Product{}, false
	}
	return c.products[i], true
}

// Len returns the number of products.
func (c *Catalog) Len() int {
	return len(c.products)
}

// Query filters the catalog. Empty fields match everything.
type Query struct {
	Text        string
	Ingredients []string
}

// Search returns products whose name or brand contains Text and that contain every
// requested ingredient as a substring of one of their ingredients. Matching ignores case.
func (c *Catalog) Search(q Query) []model.Product {
	text := strings.ToLower(strings.TrimSpace(q.Text))
	wanted := NormalizeIngredients(q.Ingredients)

	matched := []model.Product{}
	for _, p := range c.products {
		if text != "" &&
			!strings.Contains(strings.ToLower(p.Name), text) &&
			!strings.Contains(strings.ToLower(p.Brand), text) {
			continue
		}
		if !hasAllIngredients(p, wanted) {
			continue
		}
		matched = append(matched, p)
	}
	return matched
}

// NormalizeIngredients trims filters, drops blanks and removes exact duplicates.
func NormalizeIngredients(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, ing := range in {
		ing = strings.TrimSpace(ing)
		if ing == "" || seen[ing] {
			continue
		}
		seen[ing] = true
		out = append(out, ing)
	}
	return out
}

func hasAllIngredients(p model.Product, wanted []string) bool {
	for _, w := range wanted {
		w = strings.ToLower(w)
		found := false
		for _, ing := range p.Ingredients {
			if strings.Contains(strings.ToLower(ing), w) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
