// Package catalog holds the static ingredient and cooking method data used to
// build dog recipes. The data is embedded in the binary and decoded once.
package catalog

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalogYAML []byte

// Pools groups dog-safe ingredients by nutritional role.
type Pools struct {
	Proteins    []string `yaml:"proteins" json:"proteins"`
	Vegetables  []string `yaml:"vegetables" json:"vegetables"`
	HealthyFats []string `yaml:"healthy_fats" json:"healthy_fats"`
	Supplements []string `yaml:"supplements" json:"supplements"`
}

// CookingMethod pairs an ordered instruction list with a fixed preparation time.
type CookingMethod struct {
	Name            string   `yaml:"name" json:"name"`
	Instructions    []string `yaml:"instructions" json:"instructions"`
	PrepTimeMinutes int      `yaml:"prep_time_minutes" json:"prep_time_minutes"`
}

type document struct {
	Ingredients Pools           `yaml:"ingredients"`
	Unsafe      []string        `yaml:"unsafe"`
	Methods     []CookingMethod `yaml:"methods"`
}

// Catalog is immutable once loaded. Accessors hand out copies.
type Catalog struct {
	pools   Pools
	unsafe  []string
	unsafeM map[string]struct{}
	methods []CookingMethod
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the catalog embedded in the binary.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Load(bytes.NewReader(defaultCatalogYAML))
		if err != nil {
			panic(fmt.Sprintf("catalog: embedded catalog is invalid: %v", err))
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// Load decodes and validates a YAML catalog document.
func Load(r io.Reader) (*Catalog, error) {
	var doc document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	if err := doc.validate(); err != nil {
		return nil, err
	}

	c := &Catalog{
		pools: Pools{
			Proteins:    cloneStrings(doc.Ingredients.Proteins),
			Vegetables:  cloneStrings(doc.Ingredients.Vegetables),
			HealthyFats: cloneStrings(doc.Ingredients.HealthyFats),
			Supplements: cloneStrings(doc.Ingredients.Supplements),
		},
		unsafe:  make([]string, 0, len(doc.Unsafe)),
		unsafeM: make(map[string]struct{}, len(doc.Unsafe)),
		methods: make([]CookingMethod, 0, len(doc.Methods)),
	}
	for _, u := range doc.Unsafe {
		key := normalize(u)
		if _, dup := c.unsafeM[key]; dup {
			continue
		}
		c.unsafeM[key] = struct{}{}
		c.unsafe = append(c.unsafe, key)
	}
	for _, m := range doc.Methods {
		c.methods = append(c.methods, m.clone())
	}
	return c, nil
}

func (d *document) validate() error {
	pools := map[string][]string{
		"proteins":     d.Ingredients.Proteins,
		"vegetables":   d.Ingredients.Vegetables,
		"healthy_fats": d.Ingredients.HealthyFats,
		"supplements":  d.Ingredients.Supplements,
	}
	for name, pool := range pools {
		if len(pool) == 0 {
			return fmt.Errorf("catalog: ingredient pool %q is empty", name)
		}
	}
	if len(d.Methods) == 0 {
		return fmt.Errorf("catalog: at least one cooking method is required")
	}
	for i, m := range d.Methods {
		if strings.TrimSpace(m.Name) == "" {
			return fmt.Errorf("catalog: cooking method %d has no name", i)
		}
		if len(m.Instructions) == 0 {
			return fmt.Errorf("catalog: cooking method %q has no instructions", m.Name)
		}
		if m.PrepTimeMinutes <= 0 {
			return fmt.Errorf("catalog: cooking method %q must have a positive prep time", m.Name)
		}
	}
	return nil
}

// Pools returns a copy of the unfiltered ingredient pools.
func (c *Catalog) Pools() Pools {
	return c.pools.clone()
}

// Unsafe returns the lowercased unsafe ingredient set.
func (c *Catalog) Unsafe() []string {
	return cloneStrings(c.unsafe)
}

// Methods returns a copy of the cooking methods in catalog order.
func (c *Catalog) Methods() []CookingMethod {
	out := make([]CookingMethod, len(c.methods))
	for i, m := range c.methods {
		out[i] = m.clone()
	}
	return out
}

// MethodCount is the number of cooking methods available.
func (c *Catalog) MethodCount() int {
	return len(c.methods)
}

// Method returns the cooking method at index i.
func (c *Catalog) Method(i int) CookingMethod {
	return c.methods[i].clone()
}

// IsUnsafe reports whether the ingredient is in the unsafe set.
func (c *Catalog) IsUnsafe(ingredient string) bool {
	_, ok := c.unsafeM[normalize(ingredient)]
	return ok
}

// Allows reports whether an ingredient is neither unsafe nor excluded by any
// of the restriction keywords.
func (c *Catalog) Allows(ingredient string, restrictions []string) bool {
	return !c.IsUnsafe(ingredient) && !IsRestricted(ingredient, restrictions)
}

// SafePools filters every pool independently, dropping unsafe ingredients and
// any ingredient matched by a restriction keyword. A pool may come back empty.
func (c *Catalog) SafePools(restrictions []string) Pools {
	keep := func(pool []string) []string {
		out := make([]string, 0, len(pool))
		for _, ing := range pool {
			if c.Allows(ing, restrictions) {
				out = append(out, ing)
			}
		}
		return out
	}
	return Pools{
		Proteins:    keep(c.pools.Proteins),
		Vegetables:  keep(c.pools.Vegetables),
		HealthyFats: keep(c.pools.HealthyFats),
		Supplements: keep(c.pools.Supplements),
	}
}

// IsRestricted reports whether the lowercased ingredient contains any of the
// lowercased restriction keywords as a substring. Blank keywords never match.
func IsRestricted(ingredient string, restrictions []string) bool {
	name := strings.ToLower(ingredient)
	for _, r := range restrictions {
		kw := normalize(r)
		if kw == "" {
			continue
		}
		if strings.Contains(name, kw) {
			return true
		}
	}
	return false
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func (p Pools) clone() Pools {
	return Pools{
		Proteins:    cloneStrings(p.Proteins),
		Vegetables:  cloneStrings(p.Vegetables),
		HealthyFats: cloneStrings(p.HealthyFats),
		Supplements: cloneStrings(p.Supplements),
	}
}

func (m CookingMethod) clone() CookingMethod {
	m.Instructions = cloneStrings(m.Instructions)
	return m
}

func cloneStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
