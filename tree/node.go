package tree

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dilo00o/spark-dectree/feature"
)

// InvalidFeature is the feature index carried by the invalid
// SplitPoint sentinel.
const InvalidFeature = -1

/*
SplitPoint describes where a node's data is divided between its two
children. For numerical features records whose value is less than or
equal to Threshold go left and the rest go right; for categorical
features records whose value equals Category go left and the rest go
right.
*/
type SplitPoint struct {
	FeatureIndex int
	Threshold    float64
	Category     string
}

/*
InvalidSplit returns the sentinel split point flagging a candidate node
for which no usable split or statistics exist, for example a node no
error-free record reached.
*/
func InvalidSplit() SplitPoint {
	return SplitPoint{FeatureIndex: InvalidFeature}
}

// Valid returns whether the split point is not the invalid sentinel.
func (sp SplitPoint) Valid() bool {
	return sp.FeatureIndex != InvalidFeature
}

/*
Branch takes a field value and the feature the split applies to and
returns whether a record with that value belongs on the left branch.
It returns an error if a numerical feature's value cannot be parsed.
*/
func (sp SplitPoint) Branch(value string, f *feature.Feature) (bool, error) {
	if f.Type() == feature.Numerical {
		v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return false, fmt.Errorf("branching on %s: %v", f.Name(), err)
		}
		return v <= sp.Threshold, nil
	}
	return value == sp.Category, nil
}

func (sp SplitPoint) String() string {
	if !sp.Valid() {
		return "invalid split"
	}
	if sp.Category != "" {
		return fmt.Sprintf("feature %d is %s", sp.FeatureIndex, sp.Category)
	}
	return fmt.Sprintf("feature %d <= %g", sp.FeatureIndex, sp.Threshold)
}

/*
Node is a node of the tree. A node carries the value predicted for the
records routed to it and the statistics that value was derived from.
Leaf nodes have a nil Split and no children; internal nodes carry the
split point dividing their records and own their children exclusively,
each child nil until the corresponding sub-node is decided on a later
level.
*/
type Node struct {
	ID    ID
	Value string
	Stats *Stats
	Split *SplitPoint
	Left  *Node
	Right *Node
}

// Leaf returns whether the node is terminal.
func (n *Node) Leaf() bool {
	return n.Split == nil
}

func (n *Node) String() string {
	if n.Leaf() {
		return fmt.Sprintf("[%d -> %s]", n.ID, n.Value)
	}
	return fmt.Sprintf("[%d %v]", n.ID, n.Split)
}
