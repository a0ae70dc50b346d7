package dectree

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/dilo00o/spark-dectree/engine"
	"github.com/dilo00o/spark-dectree/feature"
	"github.com/dilo00o/spark-dectree/tree"
)

/*
NodeSplit is the outcome a splitting strategy computes for one open
tree position: the statistics of the records routed there, and either
the split point dividing them, or a leaf decision, or the invalid
split sentinel when no usable split or statistics exist.
*/
type NodeSplit struct {
	ID    tree.ID
	Split tree.SplitPoint
	Stats *tree.Stats
	Leaf  bool
}

/*
Strategy computes, in one pass of the execution engine over the
training data, the split or stop decision for every open position of
the model. Implementations differ only in the impurity criterion they
rank candidate splits with; all of them must honor the model's
stopping parameters.
*/
type Strategy interface {
	SplitLevel(ctx context.Context, data engine.Dataset, m *tree.Model, open []tree.ID) ([]*NodeSplit, error)
}

/*
Criterion measures the impurity of the target values aggregated on a
statistics object: the lower, the purer. Splits are ranked by the
impurity reduction they achieve.
*/
type Criterion func(s *tree.Stats) float64

// EntropyCriterion ranks splits by information gain, as the ID3 family
// of builders does. Numerical targets fall back to variance.
func EntropyCriterion(s *tree.Stats) float64 {
	if s.Numeric {
		return s.Variance()
	}
	return s.Entropy()
}

// GiniCriterion ranks splits by Gini impurity reduction for
// categorical targets and by variance reduction for numerical ones, as
// the CART family of builders does.
func GiniCriterion(s *tree.Stats) float64 {
	if s.Numeric {
		return s.Variance()
	}
	return s.Gini()
}

type levelStrategy struct {
	criterion Criterion
}

// NewID3Strategy returns a Strategy that ranks candidate splits with
// EntropyCriterion.
func NewID3Strategy() Strategy {
	return &levelStrategy{criterion: EntropyCriterion}
}

// NewCARTStrategy returns a Strategy that ranks candidate splits with
// GiniCriterion.
func NewCARTStrategy() Strategy {
	return &levelStrategy{criterion: GiniCriterion}
}

// NewStrategy returns a Strategy ranking candidate splits with the
// given criterion.
func NewStrategy(c Criterion) Strategy {
	return &levelStrategy{criterion: c}
}

/*
nodeAccumulator aggregates, for the records routed to one open
position, the target statistics and, per predictor feature, the target
statistics of every distinct feature value. Malformed records are
counted and otherwise ignored, so one bad record cannot abort a level.
*/
type nodeAccumulator struct {
	catalog  *feature.Catalog
	xIndices []int
	yIndex   int
	numeric  bool
	delim    string
	stats    *tree.Stats
	perValue map[int]map[string]*tree.Stats
	errored  int
}

func newNodeAccumulator(m *tree.Model) *nodeAccumulator {
	numeric := m.NumericTarget()
	perValue := make(map[int]map[string]*tree.Stats, len(m.XIndices))
	for _, i := range m.XIndices {
		perValue[i] = make(map[string]*tree.Stats)
	}
	return &nodeAccumulator{
		catalog:  m.Catalog,
		xIndices: m.XIndices,
		yIndex:   m.YIndex,
		numeric:  numeric,
		delim:    m.Delimiter,
		stats:    tree.NewStats(numeric),
		perValue: perValue,
	}
}

func (a *nodeAccumulator) Add(record string) error {
	fields := strings.Split(record, a.delim)
	if len(fields) != a.catalog.Len() || a.yIndex >= len(fields) {
		a.errored++
		return nil
	}
	target := fields[a.yIndex]
	if err := a.stats.Add(target); err != nil {
		a.errored++
		return nil
	}
	for _, i := range a.xIndices {
		values := a.perValue[i]
		s := values[fields[i]]
		if s == nil {
			s = tree.NewStats(a.numeric)
			values[fields[i]] = s
		}
		// target already validated above
		s.Add(target)
	}
	return nil
}

func (a *nodeAccumulator) Merge(o engine.Accumulator) error {
	other, ok := o.(*nodeAccumulator)
	if !ok {
		return fmt.Errorf("merging node aggregates: got %T", o)
	}
	a.stats.Merge(other.stats)
	a.errored += other.errored
	for i, values := range other.perValue {
		mine := a.perValue[i]
		for v, s := range values {
			if ms := mine[v]; ms != nil {
				ms.Merge(s)
			} else {
				mine[v] = s
			}
		}
	}
	return nil
}

/*
SplitLevel routes every record to its current open position, folds
per-position statistics in one pass of the engine and turns each
position's aggregate into a NodeSplit. Open positions no error-free
record reached come back with the invalid split sentinel.
*/
func (ls *levelStrategy) SplitLevel(ctx context.Context, data engine.Dataset, m *tree.Model, open []tree.ID) ([]*NodeSplit, error) {
	openSet := make(map[tree.ID]bool, len(open))
	for _, id := range open {
		openSet[id] = true
	}
	delim := m.Delimiter
	key := func(record string) (int64, bool) {
		id, ok := m.Route(strings.Split(record, delim))
		if !ok || !openSet[id] {
			return 0, false
		}
		return int64(id), true
	}
	accs, err := data.AggregateByKey(ctx, key, func() engine.Accumulator {
		return newNodeAccumulator(m)
	})
	if err != nil {
		return nil, fmt.Errorf("aggregating level statistics: %v", err)
	}
	results := make([]*NodeSplit, 0, len(open))
	for _, id := range open {
		acc, _ := accs[int64(id)].(*nodeAccumulator)
		results = append(results, ls.decide(id, acc, m))
	}
	return results, nil
}

/*
decide evaluates the stopping criteria for one open position and, when
none force a leaf, searches its aggregate for the best-ranked split.
*/
func (ls *levelStrategy) decide(id tree.ID, acc *nodeAccumulator, m *tree.Model) *NodeSplit {
	if acc == nil || acc.stats.Count == 0 {
		return &NodeSplit{ID: id, Split: tree.InvalidSplit()}
	}
	stats := acc.stats
	if stats.Count <= m.MinSplit {
		return &NodeSplit{ID: id, Stats: stats, Leaf: true}
	}
	if stats.Numeric {
		if stats.CV() < m.CVThreshold {
			return &NodeSplit{ID: id, Stats: stats, Leaf: true}
		}
	} else if ls.criterion(stats) <= m.CVThreshold {
		return &NodeSplit{ID: id, Stats: stats, Leaf: true}
	}
	if m.MaxDepth > 0 && id.Depth() >= m.MaxDepth {
		return &NodeSplit{ID: id, Stats: stats, Leaf: true}
	}
	best, gain := ls.bestSplit(acc)
	if !best.Valid() || gain <= 0 {
		return &NodeSplit{ID: id, Stats: stats, Leaf: true}
	}
	if gain < m.MaxComplexity {
		return &NodeSplit{ID: id, Stats: stats, Leaf: true}
	}
	return &NodeSplit{ID: id, Split: best, Stats: stats}
}

func (ls *levelStrategy) bestSplit(acc *nodeAccumulator) (tree.SplitPoint, float64) {
	best := tree.InvalidSplit()
	var bestGain float64
	for _, i := range acc.xIndices {
		f := acc.catalog.Feature(i)
		if f == nil {
			continue
		}
		var sp tree.SplitPoint
		var gain float64
		var ok bool
		if f.Type() == feature.Numerical {
			sp, gain, ok = ls.bestNumericalSplit(i, acc)
		} else {
			sp, gain, ok = ls.bestCategoricalSplit(i, acc)
		}
		if ok && (gain > bestGain || !best.Valid()) && gain > 0 {
			best = sp
			bestGain = gain
		}
	}
	return best, bestGain
}

/*
bestCategoricalSplit evaluates, for every distinct value of the
feature, the binary partition into records equal to the value and the
rest, and returns the best one. Candidate values are tried in sorted
order so ties resolve deterministically.
*/
func (ls *levelStrategy) bestCategoricalSplit(index int, acc *nodeAccumulator) (tree.SplitPoint, float64, bool) {
	values := acc.perValue[index]
	if len(values) < 2 {
		return tree.InvalidSplit(), 0, false
	}
	sorted := make([]string, 0, len(values))
	for v := range values {
		sorted = append(sorted, v)
	}
	sort.Strings(sorted)
	total := acc.stats
	best := tree.InvalidSplit()
	var bestGain float64
	for _, v := range sorted {
		left := values[v]
		right := subtractStats(total, left)
		gain, ok := ls.gain(total, left, right)
		if ok && gain > bestGain {
			best = tree.SplitPoint{FeatureIndex: index, Category: v}
			bestGain = gain
		}
	}
	return best, bestGain, best.Valid()
}

/*
bestNumericalSplit sorts the distinct values observed for the feature,
accumulates left-side statistics across them and evaluates the
threshold between each pair of consecutive values, returning the best
one.
*/
func (ls *levelStrategy) bestNumericalSplit(index int, acc *nodeAccumulator) (tree.SplitPoint, float64, bool) {
	values := acc.perValue[index]
	type valueStats struct {
		value float64
		stats *tree.Stats
	}
	parsed := make([]valueStats, 0, len(values))
	for v, s := range values {
		fv, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			continue
		}
		parsed = append(parsed, valueStats{fv, s})
	}
	if len(parsed) < 2 {
		return tree.InvalidSplit(), 0, false
	}
	sort.Slice(parsed, func(i, j int) bool { return parsed[i].value < parsed[j].value })
	total := acc.stats
	left := tree.NewStats(total.Numeric)
	best := tree.InvalidSplit()
	var bestGain float64
	for i := 0; i < len(parsed)-1; i++ {
		left.Merge(parsed[i].stats)
		right := subtractStats(total, left)
		gain, ok := ls.gain(total, left, right)
		if ok && gain > bestGain {
			best = tree.SplitPoint{
				FeatureIndex: index,
				Threshold:    (parsed[i].value + parsed[i+1].value) / 2.0,
			}
			bestGain = gain
		}
	}
	return best, bestGain, best.Valid()
}

// gain returns the impurity reduction of dividing total into left and
// right; partitions leaving one side empty are not usable.
func (ls *levelStrategy) gain(total, left, right *tree.Stats) (float64, bool) {
	if left.Count == 0 || right.Count == 0 {
		return 0, false
	}
	n := float64(total.Count)
	weighted := ls.criterion(left)*float64(left.Count)/n + ls.criterion(right)*float64(right.Count)/n
	return ls.criterion(total) - weighted, true
}

// subtractStats returns the statistics of the records on total that
// are not on left. left must aggregate a subset of total's records.
func subtractStats(total, left *tree.Stats) *tree.Stats {
	right := tree.NewStats(total.Numeric)
	right.Count = total.Count - left.Count
	right.Sum = total.Sum - left.Sum
	right.SquareSum = total.SquareSum - left.SquareSum
	for class, count := range total.ClassCounts {
		if diff := count - left.ClassCounts[class]; diff > 0 {
			right.ClassCounts[class] = diff
		}
	}
	return right
}
