package world

// Generator is the pluggable terrain-generation capability: the world
// holds exactly one concrete implementation, chosen at start-up, and
// treats it as deterministic for a fixed (seed, config).
type Generator interface {
	GenerateColumn(cx, cz int32) *Column
	GenerateHeightmap(cx, cz int32) [256]int32
}

// Block-state ids for the handful of block types the flat generator and
// the in-scope dig/place opcodes need. Real id assignment comes from an
// external block-state registry this server only consumes by numeric id;
// these constants are the flat world's fixed palette.
const (
	BlockAir     int32 = 0
	BlockBedrock int32 = 79
	BlockDirt    int32 = 10
	BlockGrass   int32 = 9
)

// FlatGenerator produces the vanilla flat-world layout: bedrock at y=-64,
// dirt through y=63, grass at y=64, air above. The layout keeps the
// heightmap uniform at 65, which takes the "flat" light-encoding branch
// with its fixed ground section at index 8, and puts a player spawned at
// (0,65,0) directly on the grass layer.
type FlatGenerator struct{}

func NewFlatGenerator() *FlatGenerator { return &FlatGenerator{} }

func (g *FlatGenerator) GenerateColumn(cx, cz int32) *Column {
	col := &Column{Pos: ColumnPos{X: cx, Z: cz}}
	for lx := int32(0); lx < SectionHeight; lx++ {
		for lz := int32(0); lz < SectionHeight; lz++ {
			col.SetBlock(lx, MinY, lz, BlockBedrock)
			for y := int32(MinY + 1); y <= 63; y++ {
				col.SetBlock(lx, y, lz, BlockDirt)
			}
			col.SetBlock(lx, 64, lz, BlockGrass)
		}
	}
	return col
}

func (g *FlatGenerator) GenerateHeightmap(cx, cz int32) [256]int32 {
	var hm [256]int32
	for i := range hm {
		hm[i] = 65 // first air cell is one above the grass layer at y=64
	}
	return hm
}
