package feature

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInfer(t *testing.T) {
	c, err := Infer("sunny,85,85.5,false", ",")
	require.NoError(t, err)
	require.Equal(t, 4, c.Len())
	assert.Equal(t, Categorical, c.Feature(0).Type())
	assert.Equal(t, Numerical, c.Feature(1).Type())
	assert.Equal(t, Numerical, c.Feature(2).Type())
	assert.Equal(t, Categorical, c.Feature(3).Type())
	for i, f := range c.Features() {
		assert.Equal(t, i, f.Index())
	}
	assert.Equal(t, "Column0", c.Feature(0).Name())
	assert.Equal(t, "Column3", c.Feature(3).Name())
}

func TestInferCustomDelimiter(t *testing.T) {
	c, err := Infer("1;2;three", ";")
	require.NoError(t, err)
	require.Equal(t, 3, c.Len())
	assert.Equal(t, Numerical, c.Feature(0).Type())
	assert.Equal(t, Categorical, c.Feature(2).Type())
}

func TestInferEmptySample(t *testing.T) {
	c, err := Infer("", ",")
	assert.Nil(t, c)
	require.Error(t, err)
	assert.IsType(t, SchemaError(""), err)
}

func TestNewCatalogValidation(t *testing.T) {
	_, err := NewCatalog([]*Feature{
		New("a", Categorical, 0),
		New("b", Categorical, 2),
	})
	require.Error(t, err)
	assert.IsType(t, SchemaError(""), err)

	_, err = NewCatalog([]*Feature{
		New("a", Categorical, 0),
		New("a", Numerical, 1),
	})
	require.Error(t, err)
	assert.IsType(t, SchemaError(""), err)
}

func TestLookup(t *testing.T) {
	c, err := Infer("sunny,85", ",")
	require.NoError(t, err)
	f, ok := c.Lookup("Column1")
	require.True(t, ok)
	assert.Equal(t, 1, f.Index())
	_, ok = c.Lookup("humidity")
	assert.False(t, ok)
}

func TestRename(t *testing.T) {
	c, err := Infer("sunny,85,no", ",")
	require.NoError(t, err)
	require.NoError(t, c.Rename([]string{"outlook", "humidity", "play"}))
	f, ok := c.Lookup("humidity")
	require.True(t, ok)
	assert.Equal(t, 1, f.Index())
	assert.Equal(t, Numerical, f.Type())
	_, ok = c.Lookup("Column1")
	assert.False(t, ok)
}

func TestRenameMismatch(t *testing.T) {
	c, err := Infer("sunny,85,no", ",")
	require.NoError(t, err)
	err = c.Rename([]string{"outlook", "humidity"})
	require.Error(t, err)
	assert.IsType(t, SchemaError(""), err)

	err = c.Rename([]string{"outlook", "outlook", "play"})
	require.Error(t, err)
	assert.IsType(t, SchemaError(""), err)
}

func TestResolveDefaults(t *testing.T) {
	c, err := Infer("sunny,85,windy,no", ",")
	require.NoError(t, err)
	xIndices, yIndex, err := c.Resolve(nil, "")
	require.NoError(t, err)
	assert.Equal(t, 3, yIndex)
	assert.Equal(t, []int{0, 1, 2}, xIndices)
}

func TestResolveExplicit(t *testing.T) {
	c, err := Infer("sunny,85,windy,no", ",")
	require.NoError(t, err)
	require.NoError(t, c.Rename([]string{"outlook", "humidity", "wind", "play"}))

	xIndices, yIndex, err := c.Resolve([]string{"outlook", "wind"}, "play")
	require.NoError(t, err)
	assert.Equal(t, 3, yIndex)
	assert.Equal(t, []int{0, 2}, xIndices)

	// the target is dropped from an explicit predictor list
	xIndices, yIndex, err = c.Resolve([]string{"outlook", "play"}, "play")
	require.NoError(t, err)
	assert.Equal(t, 3, yIndex)
	assert.Equal(t, []int{0}, xIndices)

	xIndices, yIndex, err = c.Resolve(nil, "humidity")
	require.NoError(t, err)
	assert.Equal(t, 1, yIndex)
	assert.Equal(t, []int{0, 2, 3}, xIndices)
}

func TestResolveUnknownFeature(t *testing.T) {
	c, err := Infer("sunny,no", ",")
	require.NoError(t, err)
	_, _, err = c.Resolve(nil, "humidity")
	require.Error(t, err)
	_, _, err = c.Resolve([]string{"humidity"}, "")
	require.Error(t, err)
}
