package world

import (
	"bytes"
	"testing"

	"github.com/StoreStation/VibeCraft/pkg/protocol"
)

func TestEncodeColumnDataUniformAirSection(t *testing.T) {
	col := &Column{}
	data, err := EncodeColumnData(col)
	if err != nil {
		t.Fatalf("EncodeColumnData: %v", err)
	}

	r := bytes.NewReader(data)
	count, err := protocol.ReadShort(r)
	if err != nil || count != 0 {
		t.Fatalf("first section block count = %v (%v), want 0", count, err)
	}
	bitsPerEntry, err := protocol.ReadByte(r)
	if err != nil || bitsPerEntry != 0 {
		t.Fatalf("first section bitsPerEntry = %v (%v), want 0 (single-value)", bitsPerEntry, err)
	}
	id, _, err := protocol.ReadVarInt(r)
	if err != nil || id != 0 {
		t.Fatalf("first section single-value id = %v (%v), want 0", id, err)
	}
}

func TestEncodeColumnDataFlatCountsMatchNonAir(t *testing.T) {
	gen := NewFlatGenerator()
	col := gen.GenerateColumn(0, 0)
	data, err := EncodeColumnData(col)
	if err != nil {
		t.Fatalf("EncodeColumnData: %v", err)
	}

	r := bytes.NewReader(data)
	// Section 0 (y=-64..-49) is entirely bedrock/dirt: 4096 non-air blocks.
	count, err := protocol.ReadShort(r)
	if err != nil {
		t.Fatalf("ReadShort: %v", err)
	}
	if count != BlocksPerSection {
		t.Errorf("section 0 non-air count = %d, want %d", count, BlocksPerSection)
	}
}

func TestEncodeHeightmapPacking(t *testing.T) {
	var hm [256]int32
	for i := range hm {
		hm[i] = 65
	}
	longs := EncodeHeightmap(hm)
	wantLongs := (256 + 6) / 7
	if len(longs) != wantLongs {
		t.Fatalf("EncodeHeightmap length = %d, want %d", len(longs), wantLongs)
	}

	// Unpack and verify round trip.
	const bitsPerEntry = 9
	const entriesPerLong = 7
	mask := int64(1)<<bitsPerEntry - 1
	for i := range hm {
		l := longs[i/entriesPerLong]
		shift := uint(i%entriesPerLong) * bitsPerEntry
		v := (l >> shift) & mask
		if int32(v) != 65 {
			t.Fatalf("heightmap entry %d = %d, want 65", i, v)
		}
	}
}

func TestEncodeLightFlatVsTerrainBranches(t *testing.T) {
	var flatHM [256]int32
	for i := range flatHM {
		flatHM[i] = 65
	}
	flatLight := EncodeLight(flatHM)
	if flatLight.SkyLightMask == nil {
		t.Fatal("flat light data missing sky mask")
	}

	terrainHM := flatHM
	terrainHM[0] = 70 // break uniformity -> takes the terrain branch
	terrainLight := EncodeLight(terrainHM)
	if terrainLight.SkyLightMask == nil {
		t.Fatal("terrain light data missing sky mask")
	}

	// Ground section for the flat branch is fixed at 8 regardless of input.
	if !flatLight.SkyLightMask.Get(8 + 1) {
		t.Errorf("flat branch: expected section 8 to carry sky light")
	}
}

func TestEncodeLightMaskLength(t *testing.T) {
	var hm [256]int32
	for i := range hm {
		hm[i] = 65
	}
	light := EncodeLight(hm)
	if light.SkyLightMask.Len() != lightMaskLen {
		t.Errorf("SkyLightMask length = %d, want %d", light.SkyLightMask.Len(), lightMaskLen)
	}
}

func TestEncodeLightBlockLightUniformlyEmpty(t *testing.T) {
	var hm [256]int32
	for i := range hm {
		hm[i] = 65
	}
	light := EncodeLight(hm)
	for i := 0; i < lightMaskLen; i++ {
		if light.BlockLightMask.Get(i) {
			t.Fatalf("block light mask bit %d set, want block light uniformly empty", i)
		}
	}
}

func TestSkyLightValuesDecreaseBelowHeightmap(t *testing.T) {
	hm := [256]int32{}
	for i := range hm {
		hm[i] = 65
	}
	groundSection := sectionIndex(65)
	arr := skyLightSection(groundSection, func(lx, lz int32) int32 { return 65 })

	// y = MinY + groundSection*16 .. +15; cell at y=65 should be lit 15,
	// cell one below (y=64) should be 14.
	baseY := int32(MinY + groundSection*SectionHeight)
	lyAt65 := 65 - baseY
	lyAt64 := 64 - baseY

	idx65 := lyAt65*SectionHeight*SectionHeight + 0
	idx64 := lyAt64*SectionHeight*SectionHeight + 0

	get := func(idx int32) byte {
		b := arr[idx/2]
		if idx%2 == 0 {
			return (b >> 4) & 0x0F
		}
		return b & 0x0F
	}

	if v := get(idx65); v != 15 {
		t.Errorf("light at heightmap level = %d, want 15", v)
	}
	if v := get(idx64); v != 14 {
		t.Errorf("light one below heightmap = %d, want 14", v)
	}
}

func TestSkyLightSectionNibblePlacement(t *testing.T) {
	// Two adjacent block indices with distinct light levels must land in
	// byte 0's high nibble (index 2i) and low nibble (index 2i+1)
	// respectively.
	const groundSection = 8
	baseY := int32(MinY + groundSection*SectionHeight)
	arr := skyLightSection(groundSection, func(lx, lz int32) int32 { return baseY + 1 })

	// ly=0 -> worldY=baseY, one below the heightmap -> level 14.
	// lx=0,lz=0 gives idx=0; lx=1,lz=0 gives idx=1.
	b := arr[0]
	high := (b >> 4) & 0x0F
	low := b & 0x0F
	if high != 14 {
		t.Errorf("block index 0 (high nibble) = %d, want 14", high)
	}
	if low != 14 {
		t.Errorf("block index 1 (low nibble) = %d, want 14", low)
	}

	// Now vary light across the pair: idx 0 at heightmap, idx 1 below it.
	arr2 := skyLightSection(groundSection, func(lx, lz int32) int32 {
		if lx == 0 {
			return baseY // idx 0 lit fully
		}
		return baseY + 1 // idx 1 one below -> 14
	})
	b2 := arr2[0]
	if got := (b2 >> 4) & 0x0F; got != 15 {
		t.Errorf("block index 0 (high nibble) = %d, want 15", got)
	}
	if got := b2 & 0x0F; got != 14 {
		t.Errorf("block index 1 (low nibble) = %d, want 14", got)
	}
}
