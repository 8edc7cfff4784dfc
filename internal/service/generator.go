package service

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"sync/atomic"
	"time"

	"github.com/pageza/vegan-dog-recipes/backend/internal/catalog"
	"github.com/pageza/vegan-dog-recipes/backend/internal/model"
	"github.com/pageza/vegan-dog-recipes/backend/internal/types"
)

// RandomSource picks an index in [0, n). Implementations must be safe for
// concurrent use when the generator is shared.
type RandomSource interface {
	Intn(n int) int
}

type globalRandom struct{}

func (globalRandom) Intn(n int) int {
	return rand.IntN(n)
}

// RecipeGenerator builds vegan dog recipes from the catalog. It performs no
// I/O and never fails.
type RecipeGenerator struct {
	catalog *catalog.Catalog
	random  RandomSource
	now     func() time.Time
	nextID  atomic.Int64
}

// GeneratorOption customises a RecipeGenerator
type GeneratorOption func(*RecipeGenerator)

// WithRandomSource replaces the default math/rand source.
func WithRandomSource(r RandomSource) GeneratorOption {
	return func(g *RecipeGenerator) {
		g.random = r
	}
}

// WithClock replaces time.Now for the created_at stamp.
func WithClock(now func() time.Time) GeneratorOption {
	return func(g *RecipeGenerator) {
		g.now = now
	}
}

// NewRecipeGenerator creates a new RecipeGenerator instance
func NewRecipeGenerator(c *catalog.Catalog, opts ...GeneratorOption) *RecipeGenerator {
	if c == nil {
		c = catalog.Default()
	}
	g := &RecipeGenerator{
		catalog: c,
		random:  globalRandom{},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate returns a new, unsaved recipe for the request.
//
// Random draws happen in a fixed order: protein, vegetable, vegetable,
// healthy fat, supplement, then cooking method. A pool emptied by the
// restrictions contributes nothing.
func (g *RecipeGenerator) Generate(req types.GenerateRecipeRequest) *model.Recipe {
	size := req.DogSize.Normalize()

	ingredients := g.selectIngredients(req.PreferredIngredients, req.DietaryRestrictions)

	methodIndex := g.random.Intn(g.catalog.MethodCount())
	method := g.catalog.Method(methodIndex)

	description := describe(size, method.Name, req.DietaryRestrictions, req.PreferredIngredients)

	return &model.Recipe{
		ID:              g.nextID.Add(1),
		Name:            fmt.Sprintf("Vegan %s Dog %s", size.Label(), method.Name),
		Description:     &description,
		Ingredients:     model.JSONStringArray(ingredients),
		Instructions:    model.JSONStringArray(method.Instructions),
		PrepTimeMinutes: method.PrepTimeMinutes,
		Servings:        size.Servings(),
		CreatedAt:       g.now(),
	}
}

func (g *RecipeGenerator) selectIngredients(preferred, restrictions []string) []string {
	pools := g.catalog.SafePools(restrictions)

	selected := make([]string, 0, len(preferred)+5)
	for _, pref := range preferred {
		if g.catalog.Allows(pref, restrictions) {
			selected = append(selected, pref)
		}
	}

	draws := [][]string{
		pools.Proteins,
		pools.Vegetables,
		pools.Vegetables,
		pools.HealthyFats,
		pools.Supplements,
	}
	for _, pool := range draws {
		if pick, ok := g.pick(pool); ok {
			selected = append(selected, pick)
		}
	}

	return dedupe(selected)
}

func (g *RecipeGenerator) pick(pool []string) (string, bool) {
	if len(pool) == 0 {
		return "", false
	}
	return pool[g.random.Intn(len(pool))], true
}

func describe(size types.DogSize, method string, restrictions, preferred []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "A nutritious vegan recipe specially crafted for %s dogs using %s cooking method.",
		size, strings.ToLower(method))
	if len(restrictions) > 0 {
		fmt.Fprintf(&b, " Avoids: %s.", strings.Join(restrictions, ", "))
	}
	if len(preferred) > 0 {
		fmt.Fprintf(&b, " Features preferred ingredients: %s.", strings.Join(preferred, ", "))
	}
	return b.String()
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
