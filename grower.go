package dectree

import (
	"context"
	"fmt"
	"strings"

	"github.com/dilo00o/spark-dectree/engine"
	"github.com/dilo00o/spark-dectree/feature"
	"github.com/dilo00o/spark-dectree/tree"
)

/*
Parameters holds the stopping and parsing configuration of a build.
Setting them on a grower propagates them into its owned model, so a
persisted and resumed build keeps using consistent parameters.
*/
type Parameters struct {
	// MinSplit is the record count at or under which a node becomes
	// a leaf regardless of its target spread.
	MinSplit int
	// CVThreshold stops nodes whose target coefficient of variation
	// (impurity, for categorical targets) falls under (at, for
	// categorical targets) this value.
	CVThreshold float64
	// MaxDepth caps the depth of the tree; 0 means no cap.
	MaxDepth int
	// MaxComplexity is the minimum impurity reduction a split must
	// achieve to be worth branching on.
	MaxComplexity float64
	// Delimiter separates the fields of a raw record.
	Delimiter string
}

// DefaultParameters returns the parameters builds start from: no
// stopping criteria beyond structural ones and a comma delimiter.
func DefaultParameters() Parameters {
	return Parameters{Delimiter: ","}
}

/*
Grower grows one decision tree. It owns its model exclusively and is
single-threaded control logic: each growth level issues exactly one
data-parallel pass to the execution engine through the splitting
strategy and blocks until the pass returns the level's per-node
aggregates.
*/
type Grower struct {
	strategy      Strategy
	model         *tree.Model
	data          engine.Dataset
	useCache      bool
	checkpoint    tree.ModelStore
	checkpointKey string
	logger        Logger
	// positions skipped with an invalid split and no statistics at
	// all; they stay unresolved on the tree and are not retried
	// within this build session.
	unresolved map[tree.ID]bool
}

// NewGrower returns a grower that will develop nodes with the given
// splitting strategy, configured with DefaultParameters.
func NewGrower(strategy Strategy) *Grower {
	g := &Grower{
		strategy:   strategy,
		model:      tree.NewModel(),
		logger:     noopLogger{},
		unresolved: make(map[tree.ID]bool),
	}
	g.SetParameters(DefaultParameters())
	return g
}

// SetLogger replaces the grower's logger.
func (g *Grower) SetLogger(l Logger) {
	if l == nil {
		l = noopLogger{}
	}
	g.logger = l
}

// SetCache makes the grower pin the training dataset on the engine
// for the duration of a build, amortizing the repeated per-level
// passes, and release it afterwards.
func (g *Grower) SetCache(useCache bool) {
	g.useCache = useCache
}

// SetCheckpoint makes the grower save its model to the given store
// under the given key after every completed level.
func (g *Grower) SetCheckpoint(store tree.ModelStore, key string) {
	g.checkpoint = store
	g.checkpointKey = key
}

// SetParameters sets the build parameters, propagating them into the
// owned model.
func (g *Grower) SetParameters(p Parameters) {
	if p.Delimiter == "" {
		p.Delimiter = ","
	}
	g.model.MinSplit = p.MinSplit
	g.model.CVThreshold = p.CVThreshold
	g.model.MaxDepth = p.MaxDepth
	g.model.MaxComplexity = p.MaxComplexity
	g.model.Delimiter = p.Delimiter
}

// Model returns the model the grower owns.
func (g *Grower) Model() *tree.Model {
	return g.model
}

// Catalog returns the feature catalog inferred from the training
// data, or nil if no training data has been set.
func (g *Grower) Catalog() *feature.Catalog {
	return g.model.Catalog
}

/*
SetCatalog replaces the catalog inferred from the training data with an
explicitly declared one, overriding both feature names and types. It
returns a DataError if training data was already set and the declared
catalog does not have one feature per field.
*/
func (g *Grower) SetCatalog(c *feature.Catalog) error {
	if g.model.Catalog != nil && c.Len() != g.model.Catalog.Len() {
		return DataError(fmt.Sprintf("declared catalog describes %d features, the data has %d fields", c.Len(), g.model.Catalog.Len()))
	}
	g.model.Catalog = c
	return nil
}

/*
SetTrainingData takes a dataset of raw delimited records, infers the
feature catalog from its first record and the configured delimiter and
keeps the dataset for the growth passes. It returns a DataError if the
dataset is empty.
*/
func (g *Grower) SetTrainingData(ctx context.Context, data engine.Dataset) error {
	if data == nil {
		return DataError("training dataset is not set")
	}
	first, err := data.First(ctx)
	if err != nil {
		if err == engine.ErrEmptyDataset {
			return DataError("training dataset is empty")
		}
		return fmt.Errorf("reading sample record: %v", err)
	}
	catalog, err := feature.Infer(first, g.model.Delimiter)
	if err != nil {
		return err
	}
	g.model.Catalog = catalog
	g.data = data
	return nil
}

/*
Grow builds the tree to completion: it resolves the target and
predictor features on the catalog (the target defaulting to the last
feature, the predictors to all others), then repeats the level loop
until no position of the tree remains open, and returns the completed
model. It returns a BuildError if the training data was never set or
the features cannot be resolved.
*/
func (g *Grower) Grow(ctx context.Context, yName string, xNames []string) (*tree.Model, error) {
	if g.data == nil {
		return nil, BuildError("build invoked before training data was set")
	}
	xIndices, yIndex, err := g.model.Catalog.Resolve(xNames, yName)
	if err != nil {
		return nil, buildErrorf("resolving features: %v", err)
	}
	if len(xIndices) == 0 {
		return nil, BuildError("no predictor features remain after excluding the target")
	}
	g.model.XIndices = xIndices
	g.model.YIndex = yIndex
	return g.grow(ctx)
}

/*
Resume loads a previously persisted, possibly incomplete model from
the given store, restores its configuration and resolved features and,
unless the model is already complete, re-enters the growth loop on the
restored open-node frontier with the given training data. Resuming a
complete model only logs and returns it.
*/
func (g *Grower) Resume(ctx context.Context, data engine.Dataset, store tree.ModelStore, key string) (*tree.Model, error) {
	m, err := store.Load(ctx, key)
	if err != nil {
		return nil, err
	}
	g.model = m
	if m.Complete {
		g.logger.Logf("model %q is already complete, nothing to resume", key)
		return m, nil
	}
	if data == nil {
		return nil, BuildError("resume invoked without training data")
	}
	g.data = data
	g.logger.Logf("resuming build of model %q on %d open nodes", key, len(m.Open()))
	return g.grow(ctx)
}

func (g *Grower) grow(ctx context.Context) (*tree.Model, error) {
	if g.useCache {
		if err := g.data.Cache(ctx); err != nil {
			return nil, fmt.Errorf("caching training dataset: %v", err)
		}
		defer g.data.Uncache(ctx)
	}
	for {
		done, err := g.GrowLevel(ctx)
		if err != nil {
			return nil, err
		}
		if done {
			return g.model, nil
		}
	}
}

/*
GrowLevel develops every currently open position of the tree in one
pass of the execution engine and assembles the outcome into the model,
checkpointing it if a checkpoint store is configured. It returns true
once no developable position remains and the model has been marked
complete.
*/
func (g *Grower) GrowLevel(ctx context.Context) (bool, error) {
	open := g.open()
	if len(open) == 0 {
		g.model.Complete = true
		if err := g.saveCheckpoint(ctx); err != nil {
			return false, err
		}
		return true, nil
	}
	results, err := g.strategy.SplitLevel(ctx, g.data, g.model, open)
	if err != nil {
		return false, err
	}
	if err = g.updateModel(results); err != nil {
		return false, err
	}
	if err = g.saveCheckpoint(ctx); err != nil {
		return false, err
	}
	return false, nil
}

// open returns the model's open frontier minus the positions already
// found undevelopable.
func (g *Grower) open() []tree.ID {
	var open []tree.ID
	for _, id := range g.model.Open() {
		if !g.unresolved[id] {
			open = append(open, id)
		}
	}
	return open
}

/*
updateModel attaches the nodes a level's outcomes describe: a leaf for
every stop decision, an internal node with two still-undecided child
slots for every split. Outcomes carrying the invalid split sentinel
with usable statistics are forced into leaves; those without any
statistics are logged and left unresolved on the tree. Assembly is
deterministic given the set of outcomes: each node hangs purely off
its ID.
*/
func (g *Grower) updateModel(results []*NodeSplit) error {
	for _, r := range results {
		leaf := r.Leaf
		if !leaf && !r.Split.Valid() {
			if r.Stats == nil || r.Stats.Count == 0 {
				g.logger.Logf("no usable records reached node %d, leaving it unresolved", r.ID)
				g.unresolved[r.ID] = true
				continue
			}
			g.logger.Logf("no valid split for node %d, forcing a leaf", r.ID)
			leaf = true
		}
		n := &tree.Node{Value: r.Stats.Predicted(), Stats: r.Stats}
		if !leaf {
			sp := r.Split
			n.Split = &sp
		}
		if err := g.model.Attach(r.ID, n); err != nil {
			return err
		}
	}
	return nil
}

func (g *Grower) saveCheckpoint(ctx context.Context) error {
	if g.checkpoint == nil {
		return nil
	}
	if err := g.checkpoint.Save(ctx, g.checkpointKey, g.model); err != nil {
		return fmt.Errorf("checkpointing model %q: %v", g.checkpointKey, err)
	}
	return nil
}

/*
PredictRecord takes the ordered fields of one record and a set of
branch IDs to ignore and returns the value the model predicts for it,
or the tree.Unknown sentinel if the record is malformed or walks into
an absent branch.
*/
func (g *Grower) PredictRecord(fields []string, ignore map[tree.ID]bool) string {
	return g.model.PredictRecord(fields, ignore)
}

/*
Predict applies the model to every record of the given dataset in one
pass of the execution engine and returns the dataset of predicted
values, one per input record in matching order. An empty delimiter
defaults to the model's. Per-record prediction faults yield the
tree.Unknown sentinel and never abort the batch.
*/
func (g *Grower) Predict(ctx context.Context, data engine.Dataset, delimiter string, ignore map[tree.ID]bool) (engine.Dataset, error) {
	return Predict(ctx, g.model, data, delimiter, ignore)
}

/*
Predict applies a model to every record of the given dataset in one
pass of the execution engine and returns the dataset of predicted
values, one per input record in matching order. An empty delimiter
defaults to the model's. Per-record prediction faults yield the
tree.Unknown sentinel and never abort the batch.
*/
func Predict(ctx context.Context, m *tree.Model, data engine.Dataset, delimiter string, ignore map[tree.ID]bool) (engine.Dataset, error) {
	if delimiter == "" {
		delimiter = m.Delimiter
	}
	return data.Map(ctx, func(record string) (string, error) {
		return m.PredictRecord(strings.Split(record, delimiter), ignore), nil
	})
}
