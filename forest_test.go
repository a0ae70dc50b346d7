package dectree_test

import (
	"context"
	"strings"
	"testing"

	dectree "github.com/dilo00o/spark-dectree"
	"github.com/dilo00o/spark-dectree/feature"
	"github.com/dilo00o/spark-dectree/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func leafModel(t *testing.T, value string) *tree.Model {
	m := tree.NewModel()
	require.NoError(t, m.Attach(tree.RootID, &tree.Node{Value: value}))
	m.Complete = true
	return m
}

func numericLeafModel(t *testing.T, value string) *tree.Model {
	m := leafModel(t, value)
	catalog, err := feature.NewCatalog([]*feature.Feature{
		feature.New("price", feature.Numerical, 0),
	})
	require.NoError(t, err)
	m.Catalog = catalog
	m.YIndex = 0
	return m
}

func TestForestVote(t *testing.T) {
	forest := &dectree.Forest{Trees: []*tree.Model{
		leafModel(t, "yes"),
		leafModel(t, "no"),
		leafModel(t, "yes"),
	}}
	assert.Equal(t, "yes", forest.PredictRecord([]string{"?"}))
}

func TestForestVoteTie(t *testing.T) {
	forest := &dectree.Forest{Trees: []*tree.Model{
		leafModel(t, "rain"),
		leafModel(t, "sunny"),
	}}
	// ties resolve to the lexicographically smallest value
	assert.Equal(t, "rain", forest.PredictRecord([]string{"?"}))
}

func TestForestAbstentions(t *testing.T) {
	forest := &dectree.Forest{Trees: []*tree.Model{
		tree.NewModel(),
		leafModel(t, "yes"),
	}}
	assert.Equal(t, "yes", forest.PredictRecord([]string{"?"}))

	allUnknown := &dectree.Forest{Trees: []*tree.Model{tree.NewModel()}}
	assert.Equal(t, tree.Unknown, allUnknown.PredictRecord([]string{"?"}))

	empty := &dectree.Forest{}
	assert.Equal(t, tree.Unknown, empty.PredictRecord([]string{"?"}))
}

func TestForestNumericMean(t *testing.T) {
	forest := &dectree.Forest{Trees: []*tree.Model{
		numericLeafModel(t, "10"),
		numericLeafModel(t, "20"),
	}}
	assert.Equal(t, "15", forest.PredictRecord([]string{"?"}))
}

func TestForestNumericAbstention(t *testing.T) {
	unknownTree := tree.NewModel()
	unknownTree.Catalog = numericLeafModel(t, "0").Catalog
	forest := &dectree.Forest{Trees: []*tree.Model{
		numericLeafModel(t, "10"),
		unknownTree,
	}}
	assert.Equal(t, "10", forest.PredictRecord([]string{"?"}))
}

func forestGrowerFactory() *dectree.Grower {
	return dectree.NewGrower(dectree.NewID3Strategy())
}

func TestForestGrower(t *testing.T) {
	ctx := context.Background()
	forestGrower := dectree.NewForestGrower(forestGrowerFactory)
	forestGrower.SetTrainingData(dataset(t, weatherRecords))
	forestGrower.SetTreeCount(3)
	forestGrower.SetBootstrap(false)

	forest, err := forestGrower.Grow(ctx, "", nil)
	require.NoError(t, err)
	require.Len(t, forest.Trees, 3)

	for record, expected := range map[string]string{
		"sunny,weak,?":    "no",
		"overcast,weak,?": "yes",
		"rain,weak,?":     "yes",
	} {
		assert.Equal(t, expected, forest.PredictRecord(strings.Split(record, ",")), record)
	}
}

func TestForestOfOneMatchesStandaloneTree(t *testing.T) {
	ctx := context.Background()
	forestGrower := dectree.NewForestGrower(forestGrowerFactory)
	forestGrower.SetTrainingData(dataset(t, weatherRecords))
	forestGrower.SetTreeCount(1)
	forestGrower.SetBootstrap(false)
	forest, err := forestGrower.Grow(ctx, "", nil)
	require.NoError(t, err)
	require.Len(t, forest.Trees, 1)

	standalone := forestGrowerFactory()
	require.NoError(t, standalone.SetTrainingData(ctx, dataset(t, weatherRecords)))
	model, err := standalone.Grow(ctx, "", nil)
	require.NoError(t, err)

	for _, record := range weatherRecords {
		fields := strings.Split(record, ",")
		assert.Equal(t, model.PredictRecord(fields, nil), forest.PredictRecord(fields), record)
	}
}

func TestForestGrowerBootstrapDeterminism(t *testing.T) {
	ctx := context.Background()
	records := []string{
		"sunny,weak,no",
		"sunny,strong,no",
		"overcast,weak,yes",
		"overcast,strong,yes",
		"rain,weak,yes",
		"rain,strong,yes",
	}
	grow := func() *dectree.Forest {
		forestGrower := dectree.NewForestGrower(forestGrowerFactory)
		forestGrower.SetTrainingData(dataset(t, records))
		forestGrower.SetTreeCount(4)
		forestGrower.SetSeed(7)
		forest, err := forestGrower.Grow(ctx, "", nil)
		require.NoError(t, err)
		return forest
	}

	first, second := grow(), grow()
	require.Equal(t, len(first.Trees), len(second.Trees))
	for _, record := range records {
		fields := strings.Split(record, ",")
		assert.Equal(t, first.PredictRecord(fields), second.PredictRecord(fields), record)
	}
}

func TestForestPredictDataset(t *testing.T) {
	ctx := context.Background()
	forestGrower := dectree.NewForestGrower(forestGrowerFactory)
	forestGrower.SetTrainingData(dataset(t, weatherRecords))
	forestGrower.SetBootstrap(false)
	forest, err := forestGrower.Grow(ctx, "", nil)
	require.NoError(t, err)

	predictions, err := forest.Predict(ctx, dataset(t, []string{
		"rain,weak,?",
		"sunny,weak,?",
	}), "")
	require.NoError(t, err)
	collected, err := predictions.Collect(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"yes", "no"}, collected)
}

func TestForestGrowerErrors(t *testing.T) {
	ctx := context.Background()
	forestGrower := dectree.NewForestGrower(forestGrowerFactory)
	_, err := forestGrower.Grow(ctx, "", nil)
	require.Error(t, err)
	assert.IsType(t, dectree.BuildError(""), err)
}
