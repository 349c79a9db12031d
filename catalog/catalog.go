// Package catalog holds the product specification table shown on the site.
package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed products.yaml
var productsYAML []byte

var ErrNotFound = errors.New("catalog: product not found")

type Spec struct {
	Label  string   `yaml:"label" json:"label"`
	Values []string `yaml:"values" json:"values"`
}

type Section struct {
	Title string `yaml:"title" json:"title"`
	Specs []Spec `yaml:"specs" json:"specs"`
}

type Product struct {
	Name     string    `yaml:"name" json:"name"`
	Sections []Section `yaml:"sections" json:"sections"`
}

// Section returns the named section, matched case-insensitively.
func (p Product) Section(title string) (Section, bool) {
	for _, s := range p.Sections {
		if strings.EqualFold(s.Title, title) {
			return s, true
		}
	}
	return Section{}, false
}

// Catalog is an ordered product list.
type Catalog struct {
	Products []Product `yaml:"products" json:"products"`
}

// Load returns the embedded catalog.
func Load() (*Catalog, error) {
	return Decode(bytes.NewReader(productsYAML))
}

// Decode parses a catalog document. Every product must have a unique name
// and every section a title.
func Decode(r io.Reader) (*Catalog, error) {
	var c Catalog
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("catalog: decode: %w", err)
	}
	seen := make(map[string]bool, len(c.Products))
	for i, p := range c.Products {
		if p.Name == "" {
			return nil, fmt.Errorf("catalog: product %d has no name", i)
		}
		key := strings.ToLower(p.Name)
		if seen[key] {
			return nil, fmt.Errorf("catalog: duplicate product %q", p.Name)
		}
		seen[key] = true
		for j, s := range p.Sections {
			if s.Title == "" {
				return nil, fmt.Errorf("catalog: %s section %d has no title", p.Name, j)
			}
		}
	}
	return &c, nil
}

// Find looks a product up by name, case-insensitively.
func (c *Catalog) Find(name string) (Product, error) {
	for _, p := range c.Products {
		if strings.EqualFold(p.Name, name) {
			return p, nil
		}
	}
	return Product{}, fmt.Errorf("%w: %s", ErrNotFound, name)
}

func (c *Catalog) Names() []string {
	names := make([]string, len(c.Products))
	for i, p := range c.Products {
		names[i] = p.Name
	}
	return names
}

// Row is one line of the side-by-side comparison table.
type Row struct {
	Label  string
	Values [][]string // one entry per product, in catalog order
}

// Table groups rows by section title in first-seen order, aligning every
// product's values under a shared label. Products lacking a spec get an
// empty cell.
func (c *Catalog) Table() []TableSection {
	var out []TableSection
	index := map[string]int{}
	for pi, p := range c.Products {
		for _, s := range p.Sections {
			si, ok := index[s.Title]
			if !ok {
				si = len(out)
				index[s.Title] = si
				out = append(out, TableSection{Title: s.Title})
			}
			for _, spec := range s.Specs {
				row := out[si].row(spec.Label, len(c.Products))
				row.Values[pi] = spec.Values
			}
		}
	}
	return out
}

type TableSection struct {
	Title string
	Rows  []*Row
}

func (t *TableSection) row(label string, n int) *Row {
	for _, r := range t.Rows {
		if r.Label == label {
			return r
		}
	}
	r := &Row{Label: label, Values: make([][]string, n)}
	t.Rows = append(t.Rows, r)
	return r
}
