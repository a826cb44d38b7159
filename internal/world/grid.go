package world

import (
	"fmt"
	"sync"
)

const (
	ChunkSize        = 16
	BlocksPerSection = ChunkSize * ChunkSize * ChunkSize
)

type ChunkPos struct {
	X int32
	Y int32
	Z int32
}

// section is a 16x16x16 solidity bitset.
type section struct {
	bits  [BlocksPerSection / 64]uint64
	count int
}

// Grid is a sparse voxel terrain store. Cells are grouped into 16^3
// sections; empty sections are dropped.
type Grid struct {
	mu       sync.RWMutex
	sections map[ChunkPos]*section
}

func NewGrid() *Grid {
	return &Grid{sections: make(map[ChunkPos]*section)}
}

// Box is an inclusive cell range.
type Box struct {
	Min [3]int
	Max [3]int
}

// NewGridFromBoxes fills every box into a fresh grid.
func NewGridFromBoxes(boxes []Box) (*Grid, error) {
	g := NewGrid()
	for i, b := range boxes {
		if err := g.Fill(b.Min, b.Max); err != nil {
			return nil, fmt.Errorf("box %d: %w", i, err)
		}
	}
	return g, nil
}

// Fill marks every cell in the inclusive range [min, max] solid.
func (g *Grid) Fill(min, max [3]int) error {
	for i := 0; i < 3; i++ {
		if max[i] < min[i] {
			return fmt.Errorf("invalid fill range: min=%v max=%v", min, max)
		}
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	for y := min[1]; y <= max[1]; y++ {
		for x := min[0]; x <= max[0]; x++ {
			for z := min[2]; z <= max[2]; z++ {
				g.setLocked(x, y, z, true)
			}
		}
	}
	return nil
}

func (g *Grid) Set(x, y, z int, solid bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.setLocked(x, y, z, solid)
}

func (g *Grid) IsSolid(x, y, z int) bool {
	if g == nil {
		return false
	}
	pos, index := cellIndex(x, y, z)

	g.mu.RLock()
	defer g.mu.RUnlock()
	s, ok := g.sections[pos]
	if !ok {
		return false
	}
	return s.bits[index/64]&(1<<(index%64)) != 0
}

// SectionCount returns the number of non-empty sections.
func (g *Grid) SectionCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.sections)
}

func (g *Grid) setLocked(x, y, z int, solid bool) {
	if g.sections == nil {
		g.sections = make(map[ChunkPos]*section)
	}
	pos, index := cellIndex(x, y, z)
	s, ok := g.sections[pos]
	if !ok {
		if !solid {
			return
		}
		s = &section{}
		g.sections[pos] = s
	}

	word, bit := index/64, uint64(1)<<(index%64)
	was := s.bits[word]&bit != 0
	switch {
	case solid && !was:
		s.bits[word] |= bit
		s.count++
	case !solid && was:
		s.bits[word] &^= bit
		s.count--
		if s.count == 0 {
			delete(g.sections, pos)
		}
	}
}

func cellIndex(x, y, z int) (ChunkPos, int) {
	pos := ChunkPos{X: int32(floorDiv16(x)), Y: int32(floorDiv16(y)), Z: int32(floorDiv16(z))}
	index := floorMod16(y)*ChunkSize*ChunkSize + floorMod16(z)*ChunkSize + floorMod16(x)
	return pos, index
}

func floorDiv16(v int) int {
	q := v / 16
	if v < 0 && v%16 != 0 {
		q--
	}
	return q
}

func floorMod16(v int) int {
	m := v % 16
	if m < 0 {
		m += 16
	}
	return m
}
