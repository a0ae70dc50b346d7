package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIDChildren(t *testing.T) {
	assert.Equal(t, ID(2), RootID.Left())
	assert.Equal(t, ID(3), RootID.Right())
	assert.Equal(t, ID(10), ID(5).Left())
	assert.Equal(t, ID(11), ID(5).Right())
}

func TestIDParent(t *testing.T) {
	for _, id := range []ID{2, 3, 10, 11, 100, 101} {
		if id.IsLeft() {
			assert.Equal(t, id, id.Parent().Left(), "id %d", id)
		} else {
			assert.Equal(t, id, id.Parent().Right(), "id %d", id)
		}
	}
	assert.Equal(t, RootID, ID(2).Parent())
	assert.Equal(t, RootID, ID(3).Parent())
}

func TestIDIsLeft(t *testing.T) {
	assert.True(t, ID(2).IsLeft())
	assert.False(t, ID(3).IsLeft())
	assert.True(t, ID(6).IsLeft())
	assert.False(t, ID(7).IsLeft())
}

func TestIDDepth(t *testing.T) {
	assert.Equal(t, 0, RootID.Depth())
	assert.Equal(t, 1, ID(2).Depth())
	assert.Equal(t, 1, ID(3).Depth())
	assert.Equal(t, 2, ID(4).Depth())
	assert.Equal(t, 2, ID(7).Depth())
	assert.Equal(t, 3, ID(8).Depth())
	assert.Equal(t, 10, ID(1024).Depth())
}
