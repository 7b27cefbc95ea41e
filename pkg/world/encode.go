package world

import (
	"bytes"

	"github.com/StoreStation/VibeCraft/pkg/protocol"
)

// blockBitsMin/Max and biomeBitsMin/Max bound the indirect palette
// widths: block containers widen between 4 and 8 bits per entry; the
// single-value biome containers written here never need more than that
// floor.
const (
	blockBitsMin = 4
	blockBitsMax = 8
	biomeBitsMin = 1
	biomeBitsMax = 3
)

// EncodeColumnData writes, for each of the 24 sections bottom-up, a 16-bit
// non-air block count, a block-state paletted container, and a
// single-value biome container.
func EncodeColumnData(col *Column) ([]byte, error) {
	var buf bytes.Buffer
	for s := 0; s < SectionsPerChunk; s++ {
		sec := &col.Sections[s]

		count := int16(0)
		values := make([]int32, BlocksPerSection)
		for i, id := range sec {
			values[i] = id
			if id != 0 {
				count++
			}
		}

		if err := protocol.WriteShort(&buf, count); err != nil {
			return nil, err
		}
		if err := protocol.WritePalettedContainer(&buf, values, blockBitsMin, blockBitsMax); err != nil {
			return nil, err
		}

		biomes := make([]int32, 64) // one entry per 4x4x4 biome cell, 64 per section
		if err := protocol.WritePalettedContainer(&buf, biomes, biomeBitsMin, biomeBitsMax); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// EncodeHeightmap packs a 256-entry MOTION_BLOCKING heightmap at 9 bits per
// entry, 7 entries per 64-bit long, clamped to 9 bits.
func EncodeHeightmap(hm [256]int32) []int64 {
	const bitsPerEntry = 9
	const entriesPerLong = 64 / bitsPerEntry // 7
	const mask = int64(1)<<bitsPerEntry - 1

	numLongs := (len(hm) + entriesPerLong - 1) / entriesPerLong
	longs := make([]int64, numLongs)
	for i, h := range hm {
		v := int64(h) & mask
		l := i / entriesPerLong
		shift := uint(i%entriesPerLong) * bitsPerEntry
		longs[l] |= v << shift
	}
	return longs
}

// LightData is the decoded shape of a chunk's light section: four section
// masks (26 bits: 24 sections plus a bottom and top sentinel) plus the
// 2048-byte-per-section nibble arrays for every set sky-light bit. Block
// light is uniformly empty; the server computes sky light only.
type LightData struct {
	SkyLightMask        *protocol.BitSet
	BlockLightMask      *protocol.BitSet
	EmptySkyLightMask   *protocol.BitSet
	EmptyBlockLightMask *protocol.BitSet
	SkyLightArrays      [][2048]byte
}

const lightMaskLen = SectionsPerChunk + 2 // 24 sections + bottom/top sentinel

// EncodeLight builds a column's light data. The uniform "flat" layout
// (heightmap==65 everywhere) and the general terrain layout are two
// distinct code paths rather than one unified computation, even though
// they agree on a flat input.
func EncodeLight(hm [256]int32) *LightData {
	if IsFlat(hm) {
		return encodeLightFlat()
	}
	return encodeLightTerrain(hm)
}

// encodeLightFlat is the flat-world fast path: the ground section index
// is fixed at 8, the flat-world convention, without scanning the
// heightmap for a minimum.
func encodeLightFlat() *LightData {
	const groundSection = 8
	return buildLightData(groundSection, func(lx, lz int32) int32 { return 65 })
}

// encodeLightTerrain computes the ground section from the minimum
// heightmap value across the column, then derives each section's nibble
// array from that column's own height.
func encodeLightTerrain(hm [256]int32) *LightData {
	minHeight := hm[0]
	for _, h := range hm {
		if h < minHeight {
			minHeight = h
		}
	}
	groundSection := sectionIndex(minHeight)
	if groundSection < 0 {
		groundSection = 0
	}
	if groundSection >= SectionsPerChunk {
		groundSection = SectionsPerChunk - 1
	}
	return buildLightData(groundSection, func(lx, lz int32) int32 { return hm[lz*SectionHeight+lx] })
}

func buildLightData(groundSection int, heightAt func(lx, lz int32) int32) *LightData {
	skyMask := protocol.NewBitSet(lightMaskLen)
	emptySkyMask := protocol.NewBitSet(lightMaskLen)
	blockMask := protocol.NewBitSet(lightMaskLen)
	emptyBlockMask := protocol.NewBitSet(lightMaskLen)

	// Bit 0 is the sentinel below the world (always dark); bit lightMaskLen-1
	// is the sentinel above the world (always fully sky-lit).
	emptySkyMask.Set(0)
	skyMask.Set(lightMaskLen - 1)
	emptyBlockMask.Set(0)
	emptyBlockMask.Set(lightMaskLen - 1)

	var arrays [][2048]byte
	topArray := fullBrightArray()

	for s := 0; s < SectionsPerChunk; s++ {
		bit := s + 1
		emptyBlockMask.Set(bit)
		if s < groundSection {
			emptySkyMask.Set(bit)
			continue
		}
		skyMask.Set(bit)
		arrays = append(arrays, skyLightSection(s, heightAt))
	}
	arrays = append(arrays, topArray)

	return &LightData{
		SkyLightMask:        skyMask,
		BlockLightMask:      blockMask,
		EmptySkyLightMask:   emptySkyMask,
		EmptyBlockLightMask: emptyBlockMask,
		SkyLightArrays:      arrays,
	}
}

func fullBrightArray() [2048]byte {
	var arr [2048]byte
	for i := range arr {
		arr[i] = 0xFF
	}
	return arr
}

// skyLightSection computes the 4-bit nibble array for section s: cells at
// or above the column's heightmap are fully lit (15); below, light
// decreases by one per block downward, floored at 0.
func skyLightSection(s int, heightAt func(lx, lz int32) int32) [2048]byte {
	var arr [2048]byte
	baseY := int32(MinY + s*SectionHeight)
	for ly := int32(0); ly < SectionHeight; ly++ {
		worldY := baseY + ly
		for lz := int32(0); lz < SectionHeight; lz++ {
			for lx := int32(0); lx < SectionHeight; lx++ {
				height := heightAt(lx, lz)
				var level int32
				if worldY >= height {
					level = 15
				} else {
					level = 15 - (height - worldY)
					if level < 0 {
						level = 0
					}
				}
				idx := ly*SectionHeight*SectionHeight + lz*SectionHeight + lx
				byteIdx := idx / 2
				if idx%2 == 0 {
					arr[byteIdx] = (arr[byteIdx] & 0x0F) | byte(level<<4)
				} else {
					arr[byteIdx] = (arr[byteIdx] & 0xF0) | byte(level)
				}
			}
		}
	}
	return arr
}
