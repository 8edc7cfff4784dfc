package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONStringArrayValue(t *testing.T) {
	v, err := JSONStringArray(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)

	v, err = JSONStringArray{"peas", "oats"}.Value()
	require.NoError(t, err)
	assert.Equal(t, `["peas","oats"]`, v)
}

func TestJSONStringArrayScan(t *testing.T) {
	var a JSONStringArray

	require.NoError(t, a.Scan([]byte(`["peas","oats"]`)))
	assert.Equal(t, JSONStringArray{"peas", "oats"}, a)

	require.NoError(t, a.Scan(`["carrots"]`))
	assert.Equal(t, JSONStringArray{"carrots"}, a)

	require.NoError(t, a.Scan(nil))
	assert.Equal(t, JSONStringArray{}, a)

	require.NoError(t, a.Scan("null"))
	assert.Equal(t, JSONStringArray{}, a)

	assert.Error(t, a.Scan(42))
	assert.Error(t, a.Scan("not json"))
}

func TestRecipeJSONShape(t *testing.T) {
	r := Recipe{ID: 7, Name: "Vegan Small Dog Steamed Bowl", PrepTimeMinutes: 25, Servings: 1}

	b, err := json.Marshal(r)
	require.NoError(t, err)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Nil(t, out["description"])
	assert.Equal(t, []interface{}{}, out["ingredients"])
	assert.Equal(t, []interface{}{}, out["instructions"])
	assert.EqualValues(t, 25, out["prep_time_minutes"])
	assert.Contains(t, out, "created_at")
}
