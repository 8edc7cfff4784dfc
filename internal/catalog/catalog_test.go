package catalog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c := Default()
	require.NotNil(t, c)

	pools := c.Pools()
	assert.Len(t, pools.Proteins, 5)
	assert.Len(t, pools.Vegetables, 7)
	assert.Len(t, pools.HealthyFats, 3)
	assert.Len(t, pools.Supplements, 4)

	assert.ElementsMatch(t, []string{"onion", "garlic", "grape", "raisin", "avocado", "chocolate"}, c.Unsafe())

	methods := c.Methods()
	require.Len(t, methods, 3)
	assert.Equal(t, "Steamed Bowl", methods[0].Name)
	assert.Equal(t, 25, methods[0].PrepTimeMinutes)
	assert.Equal(t, "Baked Medley", methods[1].Name)
	assert.Equal(t, 35, methods[1].PrepTimeMinutes)
	assert.Equal(t, "Slow Cooked Stew", methods[2].Name)
	assert.Equal(t, 45, methods[2].PrepTimeMinutes)
	for _, m := range methods {
		assert.Len(t, m.Instructions, 6)
	}
}

func TestDefaultIsLoadedOnce(t *testing.T) {
	assert.Same(t, Default(), Default())
}

func TestAccessorsReturnCopies(t *testing.T) {
	c := Default()

	pools := c.Pools()
	pools.Proteins[0] = "bacon"
	assert.Equal(t, "quinoa", c.Pools().Proteins[0])

	m := c.Method(0)
	m.Instructions[0] = "changed"
	assert.NotEqual(t, "changed", c.Method(0).Instructions[0])

	unsafe := c.Unsafe()
	unsafe[0] = "carrots"
	assert.False(t, c.IsUnsafe("carrots"))
}

func TestIsUnsafe(t *testing.T) {
	c := Default()

	assert.True(t, c.IsUnsafe("onion"))
	assert.True(t, c.IsUnsafe("Chocolate"))
	assert.True(t, c.IsUnsafe("  GRAPE "))
	assert.False(t, c.IsUnsafe("grapefruit"))
	assert.False(t, c.IsUnsafe("carrots"))
}

func TestIsRestricted(t *testing.T) {
	tests := []struct {
		name         string
		ingredient   string
		restrictions []string
		want         bool
	}{
		{"no restrictions", "quinoa", nil, false},
		{"exact match", "quinoa", []string{"quinoa"}, true},
		{"substring match", "flaxseed oil", []string{"oil"}, true},
		{"case insensitive", "Sweet Potato", []string{"POTATO"}, true},
		{"blank keyword ignored", "peas", []string{"", "  "}, false},
		{"unrelated keyword", "peas", []string{"soy"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRestricted(tt.ingredient, tt.restrictions))
		})
	}
}

func TestSafePools(t *testing.T) {
	c := Default()

	pools := c.SafePools([]string{"oil", "seeds"})
	assert.Empty(t, pools.HealthyFats)
	assert.Equal(t, []string{"quinoa", "lentils", "chickpeas"}, pools.Proteins)
	assert.Len(t, pools.Vegetables, 7)
	// "apple (no seeds)" contains the keyword too.
	assert.Equal(t, []string{"pumpkin puree", "blueberries", "oats"}, pools.Supplements)
}

func TestSafePoolsDropsUnsafeCatalogEntries(t *testing.T) {
	doc := `
ingredients:
  proteins: [lentils, Onion]
  vegetables: [carrots, garlic]
  healthy_fats: [coconut oil]
  supplements: [grape, oats]
unsafe: [onion, garlic, grape]
methods:
  - name: Raw Mix
    prep_time_minutes: 10
    instructions: [Mix]
`
	c, err := Load(strings.NewReader(doc))
	require.NoError(t, err)

	pools := c.SafePools(nil)
	assert.Equal(t, []string{"lentils"}, pools.Proteins)
	assert.Equal(t, []string{"carrots"}, pools.Vegetables)
	assert.Equal(t, []string{"oats"}, pools.Supplements)
}

func TestLoadRejectsInvalidDocuments(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{
			name: "empty pool",
			doc: `
ingredients: {proteins: [], vegetables: [peas], healthy_fats: [coconut oil], supplements: [oats]}
methods: [{name: Bowl, prep_time_minutes: 5, instructions: [Mix]}]
`,
		},
		{
			name: "no methods",
			doc: `
ingredients: {proteins: [lentils], vegetables: [peas], healthy_fats: [coconut oil], supplements: [oats]}
`,
		},
		{
			name: "method without instructions",
			doc: `
ingredients: {proteins: [lentils], vegetables: [peas], healthy_fats: [coconut oil], supplements: [oats]}
methods: [{name: Bowl, prep_time_minutes: 5, instructions: []}]
`,
		},
		{
			name: "non positive prep time",
			doc: `
ingredients: {proteins: [lentils], vegetables: [peas], healthy_fats: [coconut oil], supplements: [oats]}
methods: [{name: Bowl, prep_time_minutes: 0, instructions: [Mix]}]
`,
		},
		{
			name: "unknown field",
			doc: `
ingredients: {proteins: [lentils], vegetables: [peas], healthy_fats: [coconut oil], supplements: [oats]}
methods: [{name: Bowl, prep_time_minutes: 5, instructions: [Mix]}]
sauces: [ketchup]
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.doc))
			assert.Error(t, err)
		})
	}
}
