// Package world owns the in-memory block store: chunk columns, their
// lazy generation, and the palette/heightmap/light encoding that turns a
// column into the bytes a vanilla client's Chunk Data packet expects.
package world

const (
	SectionHeight    = 16
	SectionsPerChunk = 24
	BlocksPerSection = SectionHeight * SectionHeight * SectionHeight
	MinY             = -64
	MaxY             = 319 // inclusive
	WorldHeight      = MaxY - MinY + 1
)

// BlockPos is a world-space block coordinate.
type BlockPos struct {
	X, Y, Z int32
}

// ColumnPos keys a chunk column by its chunk coordinates.
type ColumnPos struct {
	X, Z int32
}

// Section is one 16x16x16 slab of a column. Index order is
// localY*256 + localZ*16 + localX.
type Section [BlocksPerSection]int32

// Column is a realized 24-section chunk column spanning world y in
// [MinY, MaxY].
type Column struct {
	Pos      ColumnPos
	Sections [SectionsPerChunk]Section
}

// sectionIndex maps a world y to its section slot, 0 at the bottom.
func sectionIndex(y int32) int {
	return int((y - MinY) / SectionHeight)
}

// GetBlock returns the block-state id at a column-local position.
// Out-of-range coordinates read as air (0).
func (c *Column) GetBlock(lx, y, lz int32) int32 {
	if lx < 0 || lx >= SectionHeight || lz < 0 || lz >= SectionHeight || y < MinY || y > MaxY {
		return 0
	}
	sec := sectionIndex(y)
	ly := (y - MinY) % SectionHeight
	idx := ly*SectionHeight*SectionHeight + lz*SectionHeight + lx
	return c.Sections[sec][idx]
}

// SetBlock sets the block-state id at a column-local position.
// Out-of-range writes are discarded.
func (c *Column) SetBlock(lx, y, lz int32, state int32) {
	if lx < 0 || lx >= SectionHeight || lz < 0 || lz >= SectionHeight || y < MinY || y > MaxY {
		return
	}
	sec := sectionIndex(y)
	ly := (y - MinY) % SectionHeight
	idx := ly*SectionHeight*SectionHeight + lz*SectionHeight + lx
	c.Sections[sec][idx] = state
}

// Heightmap computes the MOTION_BLOCKING heightmap: for each (x,z), the
// world y of the first non-solid (air) block at or above the terrain,
// scanning down from the top of the world.
func (c *Column) Heightmap() [256]int32 {
	var hm [256]int32
	for lx := int32(0); lx < SectionHeight; lx++ {
		for lz := int32(0); lz < SectionHeight; lz++ {
			top := int32(MaxY + 1)
			for y := int32(MaxY); y >= MinY; y-- {
				if c.GetBlock(lx, y, lz) == 0 {
					top = y
					continue
				}
				break
			}
			hm[lz*SectionHeight+lx] = top
		}
	}
	return hm
}

// IsFlat reports whether every column in the heightmap sits at y=65, the
// flat-world convention that selects the fixed ground-section-index=8
// light encoding.
func IsFlat(hm [256]int32) bool {
	for _, h := range hm {
		if h != 65 {
			return false
		}
	}
	return true
}
