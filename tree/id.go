package tree

import (
	"fmt"
	"math/bits"
)

/*
ID identifies a node by its position in the binary tree: the root is 1,
the left child of node k is 2k and its right child is 2k+1. The bits of
the ID after the leading one encode the path from the root, so the
parent of any node and the full path down to it can be derived from the
integer alone, without parent pointers or a full traversal.
*/
type ID int64

// RootID is the ID of the node at the root of every tree.
const RootID ID = 1

// Parent returns the ID of the node's parent.
func (id ID) Parent() ID {
	return id >> 1
}

// IsLeft returns whether the node is the left child of its parent.
func (id ID) IsLeft() bool {
	return id%2 == 0
}

// Left returns the ID of the node's left child.
func (id ID) Left() ID {
	return 2 * id
}

// Right returns the ID of the node's right child.
func (id ID) Right() ID {
	return 2*id + 1
}

// Depth returns the length of the path from the root to the node:
// 0 for the root, 1 for its children and so on.
func (id ID) Depth() int {
	return bits.Len64(uint64(id)) - 1
}

/*
AddressingError is returned when the path encoded by an ID walks off
the existing tree, that is, when a node's parent is missing or the tree
is malformed. It carries the offending ID and a snapshot of the tree
for diagnosis: it flags an internal consistency defect, not a condition
callers are expected to recover from.
*/
type AddressingError struct {
	ID       ID
	Snapshot string
}

func (e *AddressingError) Error() string {
	return fmt.Sprintf("locating node %d: path walks off the tree:\n%s", e.ID, e.Snapshot)
}
