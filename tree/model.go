package tree

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/dilo00o/spark-dectree/feature"
)

/*
Unknown is the sentinel value returned by predictions that cannot be
made, because of a malformed record, a missing feature value or a gap
in the tree. Per-record prediction faults are contained behind this
sentinel instead of aborting a whole batch.
*/
const Unknown = "unknown"

/*
Model is a decision tree under construction or fully grown, together
with the build configuration it was (or is being) grown with. It owns
its root node exclusively and, transitively, the whole tree.

A model starts empty, is mutated incrementally as each build level
completes, and is marked Complete when no node remains open. A model
serialized while incomplete can be reloaded and resumed.
*/
type Model struct {
	Root    *Node
	Catalog *feature.Catalog
	// Indices of the predictor features and the target feature on
	// the catalog.
	XIndices []int
	YIndex   int
	// Stopping parameters: nodes with MinSplit records or fewer, or
	// whose target coefficient of variation (impurity for categorical
	// targets) is under CVThreshold, or at MaxDepth, or whose best
	// split gains less than MaxComplexity, become leaves.
	MinSplit      int
	CVThreshold   float64
	MaxDepth      int
	MaxComplexity float64
	Delimiter     string
	Complete      bool
}

// NewModel returns an empty model with the default comma delimiter.
func NewModel() *Model {
	return &Model{Delimiter: ","}
}

// Empty returns whether the model has no root node yet.
func (m *Model) Empty() bool {
	return m.Root == nil
}

// NumericTarget returns whether the model's target feature is
// numerical.
func (m *Model) NumericTarget() bool {
	if m.Catalog == nil {
		return false
	}
	f := m.Catalog.Feature(m.YIndex)
	return f != nil && f.Type() == feature.Numerical
}

/*
Locate takes an ID and returns the node at that position of the tree.
It derives the left/right path from the bits of the ID and walks it
from the root, so the cost is proportional to the node's depth, not to
the size of the tree. It returns an *AddressingError carrying the ID
and a snapshot of the tree if the path walks off an existing node.
*/
func (m *Model) Locate(id ID) (*Node, error) {
	if id < RootID || m.Root == nil {
		return nil, &AddressingError{ID: id, Snapshot: m.String()}
	}
	n := m.Root
	for i := id.Depth() - 1; i >= 0; i-- {
		if n.Leaf() {
			return nil, &AddressingError{ID: id, Snapshot: m.String()}
		}
		if id>>uint(i)&1 == 0 {
			n = n.Left
		} else {
			n = n.Right
		}
		if n == nil {
			return nil, &AddressingError{ID: id, Snapshot: m.String()}
		}
	}
	return n, nil
}

/*
Attach takes an ID and a node and hangs the node at that position of
the tree: as the root if the model is empty, regardless of the ID, or
as the left or right child of the node at the ID's parent position
otherwise. It returns an *AddressingError if the parent cannot be
located or is a leaf.
*/
func (m *Model) Attach(id ID, n *Node) error {
	n.ID = id
	if m.Empty() {
		m.Root = n
		return nil
	}
	parent, err := m.Locate(id.Parent())
	if err != nil {
		return err
	}
	if parent.Leaf() {
		return &AddressingError{ID: id, Snapshot: m.String()}
	}
	if id.IsLeft() {
		parent.Left = n
	} else {
		parent.Right = n
	}
	return nil
}

/*
Open returns the IDs of the currently open positions of the tree, in
ascending order: the child slots of internal nodes whose sub-node has
not been decided yet, or the root position for an empty model. The
model is complete exactly when no position remains open.
*/
func (m *Model) Open() []ID {
	if m.Empty() {
		return []ID{RootID}
	}
	var open []ID
	var walk func(n *Node)
	walk = func(n *Node) {
		if n.Leaf() {
			return
		}
		if n.Left == nil {
			open = append(open, n.ID.Left())
		} else {
			walk(n.Left)
		}
		if n.Right == nil {
			open = append(open, n.ID.Right())
		} else {
			walk(n.Right)
		}
	}
	walk(m.Root)
	sort.Slice(open, func(i, j int) bool { return open[i] < open[j] })
	return open
}

/*
Route takes the ordered fields of a record and returns the ID of the
open position the record currently belongs to. The boolean is false
when the record is already settled on a decided leaf, or when it is
malformed with respect to the split tests along its path, and must not
take part in the level's aggregation.
*/
func (m *Model) Route(fields []string) (ID, bool) {
	if m.Empty() {
		return RootID, true
	}
	n := m.Root
	for {
		if n.Leaf() {
			return 0, false
		}
		childID, child, ok := m.branch(n, fields)
		if !ok {
			return 0, false
		}
		if child == nil {
			return childID, true
		}
		n = child
	}
}

/*
PredictRecord takes the ordered fields of a record and a set of branch
IDs to ignore and walks the tree from the root, following each internal
node's split test against the corresponding field, to return the
predicted value. Branches whose ID is on the ignore set are treated as
absent, which allows evaluating partial or pruned trees; walking into
an absent or undecided branch predicts the deepest decided node's own
value. Any per-record fault yields the Unknown sentinel.
*/
func (m *Model) PredictRecord(fields []string, ignore map[ID]bool) string {
	if m.Empty() {
		return Unknown
	}
	n := m.Root
	for {
		if n.Leaf() {
			return valueOrUnknown(n.Value)
		}
		childID, child, ok := m.branch(n, fields)
		if !ok {
			return Unknown
		}
		if child == nil || ignore[childID] {
			return valueOrUnknown(n.Value)
		}
		n = child
	}
}

func (m *Model) branch(n *Node, fields []string) (ID, *Node, bool) {
	sp := n.Split
	if sp.FeatureIndex < 0 || sp.FeatureIndex >= len(fields) {
		return 0, nil, false
	}
	f := m.Catalog.Feature(sp.FeatureIndex)
	if f == nil {
		return 0, nil, false
	}
	left, err := sp.Branch(fields[sp.FeatureIndex], f)
	if err != nil {
		return 0, nil, false
	}
	if left {
		return n.ID.Left(), n.Left, true
	}
	return n.ID.Right(), n.Right, true
}

func valueOrUnknown(v string) string {
	if v == "" {
		return Unknown
	}
	return v
}

func (m *Model) String() string {
	if m.Empty() {
		return "(empty model)"
	}
	return m.subtreeString(m.Root, "")
}

func (m *Model) subtreeString(n *Node, indent string) string {
	result := fmt.Sprintf("%s%v\n", indent, n)
	if n.Leaf() {
		return result
	}
	for _, child := range []*Node{n.Left, n.Right} {
		if child == nil {
			result = fmt.Sprintf("%s%s|__(open)\n", result, indent)
			continue
		}
		sub := m.subtreeString(child, indent+"   ")
		result = fmt.Sprintf("%s%s|__%s", result, indent, strings.TrimPrefix(sub, indent+"   "))
	}
	return result
}

/*
ModelStore is an interface to persist models under a key and load them
back, used both for finished trees and for mid-build checkpoints.

All its methods take a context that may allow cancelling the operation
if the implementation supports it.
*/
type ModelStore interface {
	// Save persists the model under the given key, overwriting any
	// previous snapshot stored there.
	Save(ctx context.Context, key string, m *Model) error
	// Load returns the model stored under the given key, or an error
	// if there is none or it cannot be decoded.
	Load(ctx context.Context, key string) (*Model, error)
}
