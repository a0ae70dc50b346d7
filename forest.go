package dectree

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/dilo00o/spark-dectree/engine"
	"github.com/dilo00o/spark-dectree/tree"
)

/*
Forest is an ordered collection of independently grown tree models
whose predictions are aggregated per record: by majority vote for
categorical targets, with ties resolving to the lexicographically
smallest value, and by arithmetic mean for numerical targets.
*/
type Forest struct {
	Trees []*tree.Model
}

/*
PredictRecord takes the ordered fields of one record, collects every
member tree's prediction for it and returns the aggregate. Trees
answering the tree.Unknown sentinel abstain; if every tree abstains
the aggregate is tree.Unknown.
*/
func (f *Forest) PredictRecord(fields []string) string {
	if len(f.Trees) == 0 {
		return tree.Unknown
	}
	if f.Trees[0].NumericTarget() {
		var sum float64
		var count int
		for _, m := range f.Trees {
			v := m.PredictRecord(fields, nil)
			if v == tree.Unknown {
				continue
			}
			fv, err := strconv.ParseFloat(v, 64)
			if err != nil {
				continue
			}
			sum += fv
			count++
		}
		if count == 0 {
			return tree.Unknown
		}
		return strconv.FormatFloat(sum/float64(count), 'g', -1, 64)
	}
	votes := make(map[string]int)
	for _, m := range f.Trees {
		if v := m.PredictRecord(fields, nil); v != tree.Unknown {
			votes[v]++
		}
	}
	if len(votes) == 0 {
		return tree.Unknown
	}
	values := make([]string, 0, len(votes))
	for v := range votes {
		values = append(values, v)
	}
	sort.Strings(values)
	winner := values[0]
	for _, v := range values[1:] {
		if votes[v] > votes[winner] {
			winner = v
		}
	}
	return winner
}

/*
Predict applies the forest to every record of the given dataset in one
pass of the execution engine and returns the dataset of aggregated
predictions, one per input record in matching order.
*/
func (f *Forest) Predict(ctx context.Context, data engine.Dataset, delimiter string) (engine.Dataset, error) {
	if delimiter == "" && len(f.Trees) > 0 {
		delimiter = f.Trees[0].Delimiter
	}
	return data.Map(ctx, func(record string) (string, error) {
		return f.PredictRecord(strings.Split(record, delimiter)), nil
	})
}

/*
ForestGrower grows a forest of trees, each on an independent bootstrap
sample of the training data, through grower instances supplied by a
factory. Member trees share no mutable state: a tree's failure to grow
is logged and skipped, never aborting the remaining trees.
*/
type ForestGrower struct {
	newGrower func() *Grower
	data      engine.Dataset
	trees     int
	bootstrap bool
	seed      int64
	logger    Logger
}

/*
NewForestGrower takes a factory returning fresh, configured grower
instances and returns a forest grower defaulting to one tree with
bootstrap sampling enabled.
*/
func NewForestGrower(factory func() *Grower) *ForestGrower {
	return &ForestGrower{
		newGrower: factory,
		trees:     1,
		bootstrap: true,
		logger:    noopLogger{},
	}
}

// SetLogger replaces the forest grower's logger.
func (fg *ForestGrower) SetLogger(l Logger) {
	if l == nil {
		l = noopLogger{}
	}
	fg.logger = l
}

// SetTrainingData keeps the dataset member trees will sample from.
func (fg *ForestGrower) SetTrainingData(data engine.Dataset) {
	fg.data = data
}

// SetTreeCount sets the number of trees to grow.
func (fg *ForestGrower) SetTreeCount(n int) {
	if n < 1 {
		n = 1
	}
	fg.trees = n
}

// SetBootstrap enables or disables bootstrap sampling. With it
// disabled every tree trains on the full dataset.
func (fg *ForestGrower) SetBootstrap(bootstrap bool) {
	fg.bootstrap = bootstrap
}

// SetSeed fixes the seed bootstrap samples are drawn from, making the
// sampling reproducible.
func (fg *ForestGrower) SetSeed(seed int64) {
	fg.seed = seed
}

/*
Grow builds the forest: for each member tree it draws an independent
bootstrap sample of the training data, constructs a fresh grower
through the factory and runs a full build predicting the given target
feature from the given predictors. It returns a BuildError if the
training data was never set or no member tree could be grown at all;
individual tree failures only shrink the forest.
*/
func (fg *ForestGrower) Grow(ctx context.Context, yName string, xNames []string) (*Forest, error) {
	if fg.data == nil {
		return nil, BuildError("forest build invoked before training data was set")
	}
	count, err := fg.data.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting training records: %v", err)
	}
	forest := &Forest{}
	for i := 0; i < fg.trees; i++ {
		m, err := fg.growTree(ctx, i, count, yName, xNames)
		if err != nil {
			fg.logger.Logf("growing tree %d of %d: %v", i+1, fg.trees, err)
			continue
		}
		forest.Trees = append(forest.Trees, m)
	}
	if len(forest.Trees) == 0 {
		return nil, BuildError("no tree of the forest could be grown")
	}
	return forest, nil
}

func (fg *ForestGrower) growTree(ctx context.Context, i, count int, yName string, xNames []string) (*tree.Model, error) {
	data := fg.data
	if fg.bootstrap {
		var err error
		data, err = fg.data.Sample(ctx, count, fg.seed+int64(i))
		if err != nil {
			return nil, fmt.Errorf("sampling training records: %v", err)
		}
	}
	g := fg.newGrower()
	if err := g.SetTrainingData(ctx, data); err != nil {
		return nil, err
	}
	return g.Grow(ctx, yName, xNames)
}
