package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGridSetAndQuery(t *testing.T) {
	g := NewGrid()
	tests := []struct {
		x, y, z int
	}{
		{0, 0, 0},
		{15, 15, 15},
		{16, 0, 0},
		{-1, -1, -1},
		{-17, 40, 3},
	}
	for _, tt := range tests {
		g.Set(tt.x, tt.y, tt.z, true)
	}
	for _, tt := range tests {
		assert.True(t, g.IsSolid(tt.x, tt.y, tt.z), "cell %v", tt)
	}
	assert.False(t, g.IsSolid(1, 0, 0))
	assert.False(t, g.IsSolid(-2, -1, -1))
}

func TestGridClearingDropsEmptySections(t *testing.T) {
	g := NewGrid()
	g.Set(3, 3, 3, true)
	g.Set(3, 3, 3, true)
	require.Equal(t, 1, g.SectionCount())

	g.Set(3, 3, 3, false)
	assert.False(t, g.IsSolid(3, 3, 3))
	assert.Equal(t, 0, g.SectionCount())

	g.Set(100, 0, 0, false)
	assert.Equal(t, 0, g.SectionCount())
}

func TestGridFill(t *testing.T) {
	g, err := NewGridFromBoxes([]Box{
		{Min: [3]int{-20, -1, -20}, Max: [3]int{20, -1, 20}},
	})
	require.NoError(t, err)

	assert.True(t, g.IsSolid(-20, -1, -20))
	assert.True(t, g.IsSolid(20, -1, 20))
	assert.True(t, g.IsSolid(0, -1, 0))
	assert.False(t, g.IsSolid(0, 0, 0))
	assert.False(t, g.IsSolid(21, -1, 0))
	// x and z each span [-20, 20]: sections -2..1 on both axes, one layer in y.
	assert.Equal(t, 16, g.SectionCount())
}

func TestGridFillRejectsInvertedRange(t *testing.T) {
	_, err := NewGridFromBoxes([]Box{{Min: [3]int{1, 0, 0}, Max: [3]int{0, 0, 0}}})
	require.Error(t, err)
}

func TestNilGridIsEmpty(t *testing.T) {
	var g *Grid
	assert.False(t, g.IsSolid(0, 0, 0))
}

func TestFloorDivMod16(t *testing.T) {
	tests := []struct {
		v, div, mod int
	}{
		{0, 0, 0},
		{15, 0, 15},
		{16, 1, 0},
		{-1, -1, 15},
		{-16, -1, 0},
		{-17, -2, 15},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.div, floorDiv16(tt.v), "floorDiv16(%d)", tt.v)
		assert.Equal(t, tt.mod, floorMod16(tt.v), "floorMod16(%d)", tt.v)
	}
}
