package tree

import (
	"testing"

	"github.com/dilo00o/spark-dectree/feature"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvalidSplit(t *testing.T) {
	assert.False(t, InvalidSplit().Valid())
	assert.True(t, SplitPoint{FeatureIndex: 0}.Valid())
	assert.True(t, SplitPoint{FeatureIndex: 3, Category: "sunny"}.Valid())
}

func TestBranchNumerical(t *testing.T) {
	humidity := feature.New("humidity", feature.Numerical, 1)
	sp := SplitPoint{FeatureIndex: 1, Threshold: 80}

	left, err := sp.Branch("75", humidity)
	require.NoError(t, err)
	assert.True(t, left)

	left, err = sp.Branch("80", humidity)
	require.NoError(t, err)
	assert.True(t, left)

	left, err = sp.Branch("85.5", humidity)
	require.NoError(t, err)
	assert.False(t, left)

	_, err = sp.Branch("soggy", humidity)
	require.Error(t, err)
}

func TestBranchCategorical(t *testing.T) {
	outlook := feature.New("outlook", feature.Categorical, 0)
	sp := SplitPoint{FeatureIndex: 0, Category: "sunny"}

	left, err := sp.Branch("sunny", outlook)
	require.NoError(t, err)
	assert.True(t, left)

	left, err = sp.Branch("rain", outlook)
	require.NoError(t, err)
	assert.False(t, left)
}

func TestNodeLeaf(t *testing.T) {
	assert.True(t, (&Node{Value: "yes"}).Leaf())
	assert.False(t, (&Node{Split: &SplitPoint{FeatureIndex: 0}}).Leaf())
}
