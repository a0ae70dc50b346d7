package tree

import (
	"strings"
	"testing"

	"github.com/dilo00o/spark-dectree/feature"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func weatherCatalog(t *testing.T) *feature.Catalog {
	c, err := feature.NewCatalog([]*feature.Feature{
		feature.New("outlook", feature.Categorical, 0),
		feature.New("humidity", feature.Numerical, 1),
		feature.New("play", feature.Categorical, 2),
	})
	require.NoError(t, err)
	return c
}

/*
weatherModel assembles the tree

	outlook == sunny
	|__humidity <= 80
	   |__yes
	   |__no
	|__yes

the way a build does, one node per open position.
*/
func weatherModel(t *testing.T) *Model {
	m := NewModel()
	m.Catalog = weatherCatalog(t)
	m.XIndices = []int{0, 1}
	m.YIndex = 2
	require.NoError(t, m.Attach(RootID, &Node{
		Value: "yes",
		Split: &SplitPoint{FeatureIndex: 0, Category: "sunny"},
	}))
	require.NoError(t, m.Attach(2, &Node{
		Value: "yes",
		Split: &SplitPoint{FeatureIndex: 1, Threshold: 80},
	}))
	require.NoError(t, m.Attach(3, &Node{Value: "yes"}))
	require.NoError(t, m.Attach(4, &Node{Value: "yes"}))
	require.NoError(t, m.Attach(5, &Node{Value: "no"}))
	return m
}

func TestAttachAndLocate(t *testing.T) {
	m := weatherModel(t)
	assert.False(t, m.Empty())

	for id, value := range map[ID]string{3: "yes", 4: "yes", 5: "no"} {
		n, err := m.Locate(id)
		require.NoError(t, err)
		assert.Equal(t, id, n.ID)
		assert.Equal(t, value, n.Value)
		assert.True(t, n.Leaf())
	}
	root, err := m.Locate(RootID)
	require.NoError(t, err)
	assert.False(t, root.Leaf())
}

func TestLocateWalksOffTree(t *testing.T) {
	m := weatherModel(t)
	for _, id := range []ID{8, 12, 0, -1} {
		_, err := m.Locate(id)
		require.Error(t, err, "id %d", id)
		addrErr, ok := err.(*AddressingError)
		require.True(t, ok, "id %d", id)
		assert.Equal(t, id, addrErr.ID)
		assert.NotEmpty(t, addrErr.Snapshot)
	}

	empty := NewModel()
	_, err := empty.Locate(RootID)
	require.Error(t, err)
}

func TestAttachUnderLeaf(t *testing.T) {
	m := weatherModel(t)
	err := m.Attach(10, &Node{Value: "maybe"})
	require.Error(t, err)
	assert.IsType(t, &AddressingError{}, err)
}

func TestOpen(t *testing.T) {
	m := NewModel()
	m.Catalog = weatherCatalog(t)
	assert.Equal(t, []ID{RootID}, m.Open())

	require.NoError(t, m.Attach(RootID, &Node{
		Split: &SplitPoint{FeatureIndex: 0, Category: "sunny"},
	}))
	assert.Equal(t, []ID{2, 3}, m.Open())

	require.NoError(t, m.Attach(2, &Node{
		Split: &SplitPoint{FeatureIndex: 1, Threshold: 80},
	}))
	assert.Equal(t, []ID{3, 4, 5}, m.Open())

	require.NoError(t, m.Attach(3, &Node{Value: "yes"}))
	require.NoError(t, m.Attach(4, &Node{Value: "yes"}))
	require.NoError(t, m.Attach(5, &Node{Value: "no"}))
	assert.Empty(t, m.Open())
}

func TestRoute(t *testing.T) {
	m := NewModel()
	m.Catalog = weatherCatalog(t)
	id, ok := m.Route(strings.Split("sunny,75,yes", ","))
	assert.True(t, ok)
	assert.Equal(t, RootID, id)

	require.NoError(t, m.Attach(RootID, &Node{
		Split: &SplitPoint{FeatureIndex: 0, Category: "sunny"},
	}))
	id, ok = m.Route(strings.Split("sunny,75,yes", ","))
	assert.True(t, ok)
	assert.Equal(t, ID(2), id)
	id, ok = m.Route(strings.Split("rain,75,yes", ","))
	assert.True(t, ok)
	assert.Equal(t, ID(3), id)

	full := weatherModel(t)
	// settled on a decided leaf
	_, ok = full.Route(strings.Split("sunny,75,yes", ","))
	assert.False(t, ok)
	// malformed with respect to the splits along the path
	_, ok = full.Route(strings.Split("sunny,soggy,yes", ","))
	assert.False(t, ok)
}

func TestPredictRecord(t *testing.T) {
	m := weatherModel(t)
	for record, expected := range map[string]string{
		"sunny,75,?":    "yes",
		"sunny,80,?":    "yes",
		"sunny,90,?":    "no",
		"rain,10,?":     "yes",
		"overcast,99,?": "yes",
	} {
		assert.Equal(t, expected, m.PredictRecord(strings.Split(record, ","), nil), record)
	}
}

func TestPredictRecordFaults(t *testing.T) {
	m := weatherModel(t)
	assert.Equal(t, Unknown, m.PredictRecord(strings.Split("sunny,soggy,?", ","), nil))
	assert.Equal(t, Unknown, m.PredictRecord([]string{"sunny"}, nil))
	assert.Equal(t, Unknown, NewModel().PredictRecord([]string{"sunny", "75", "?"}, nil))
}

func TestPredictRecordIgnoredBranches(t *testing.T) {
	m := weatherModel(t)
	fields := strings.Split("sunny,90,?", ",")
	assert.Equal(t, "no", m.PredictRecord(fields, nil))
	// with the subtree under node 2 ignored, the root's own value answers
	assert.Equal(t, "yes", m.PredictRecord(fields, map[ID]bool{2: true}))
	assert.Equal(t, "yes", m.PredictRecord(fields, map[ID]bool{5: true}))
}

func TestPredictRecordOpenBranch(t *testing.T) {
	m := NewModel()
	m.Catalog = weatherCatalog(t)
	require.NoError(t, m.Attach(RootID, &Node{
		Value: "yes",
		Split: &SplitPoint{FeatureIndex: 0, Category: "sunny"},
	}))
	// both children are still open: the root's value answers
	assert.Equal(t, "yes", m.PredictRecord(strings.Split("sunny,75,?", ","), nil))

	noValue := NewModel()
	noValue.Catalog = weatherCatalog(t)
	require.NoError(t, noValue.Attach(RootID, &Node{
		Split: &SplitPoint{FeatureIndex: 0, Category: "sunny"},
	}))
	assert.Equal(t, Unknown, noValue.PredictRecord(strings.Split("sunny,75,?", ","), nil))
}
