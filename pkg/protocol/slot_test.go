package protocol

import (
	"bytes"
	"testing"
)

func TestReadSlotEmpty(t *testing.T) {
	var buf bytes.Buffer
	WriteVarInt(&buf, 0)

	slot, err := ReadSlot(&buf)
	if err != nil {
		t.Fatalf("ReadSlot: %v", err)
	}
	if !slot.Empty {
		t.Errorf("ReadSlot(count=0) = %+v, want Empty", slot)
	}
}

func TestReadSlotNoComponents(t *testing.T) {
	var buf bytes.Buffer
	WriteVarInt(&buf, 1) // count
	WriteVarInt(&buf, 5) // item id
	WriteVarInt(&buf, 0) // add components
	WriteVarInt(&buf, 0) // remove components

	slot, err := ReadSlot(&buf)
	if err != nil {
		t.Fatalf("ReadSlot: %v", err)
	}
	if slot.Empty || slot.ItemCount != 1 || slot.ItemID != 5 {
		t.Errorf("ReadSlot = %+v, want count=1 id=5", slot)
	}
	if len(slot.AddComponents) != 0 || len(slot.RemoveComponents) != 0 {
		t.Errorf("ReadSlot components = %+v, want none", slot)
	}
}

func TestReadSlotWithComponents(t *testing.T) {
	var buf bytes.Buffer
	WriteVarInt(&buf, 1) // count
	WriteVarInt(&buf, 9) // item id
	WriteVarInt(&buf, 1) // one add component
	WriteVarInt(&buf, 2) // two remove components

	// Add component: type id 100, payload is a minimal text component NBT.
	WriteVarInt(&buf, 100)
	WriteTextComponent(&buf, "custom name")

	WriteVarInt(&buf, 200)
	WriteVarInt(&buf, 201)

	slot, err := ReadSlot(&buf)
	if err != nil {
		t.Fatalf("ReadSlot: %v", err)
	}
	if slot.Empty || slot.ItemCount != 1 || slot.ItemID != 9 {
		t.Fatalf("ReadSlot = %+v", slot)
	}
	if len(slot.AddComponents) != 1 || slot.AddComponents[0] != 100 {
		t.Errorf("AddComponents = %v, want [100]", slot.AddComponents)
	}
	if len(slot.RemoveComponents) != 2 || slot.RemoveComponents[0] != 200 || slot.RemoveComponents[1] != 201 {
		t.Errorf("RemoveComponents = %v, want [200 201]", slot.RemoveComponents)
	}
}

func TestReadSlotUnknownComponentPayloadSkipped(t *testing.T) {
	var buf bytes.Buffer
	WriteVarInt(&buf, 1)
	WriteVarInt(&buf, 1)
	WriteVarInt(&buf, 2) // two add components, both opaque compounds
	WriteVarInt(&buf, 0)

	WriteVarInt(&buf, 50)
	WriteByte(&buf, nbtCompound)
	writeNamedString(&buf, "k", "v")
	WriteByte(&buf, nbtEnd)

	WriteVarInt(&buf, 51)
	WriteTextComponent(&buf, "another")

	// Trailing marker byte confirms the reader consumed exactly the two
	// component payloads and stopped, not wandering past them.
	buf.WriteByte(0xAA)

	slot, err := ReadSlot(&buf)
	if err != nil {
		t.Fatalf("ReadSlot: %v", err)
	}
	if len(slot.AddComponents) != 2 {
		t.Fatalf("AddComponents = %v, want 2 entries", slot.AddComponents)
	}
	if buf.Len() != 1 || buf.Bytes()[0] != 0xAA {
		t.Errorf("reader left %d trailing bytes %v, want exactly the 0xAA marker", buf.Len(), buf.Bytes())
	}
}

func TestWriteClientboundSlot(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteClientboundSlot(&buf, 3, 42); err != nil {
		t.Fatalf("WriteClientboundSlot: %v", err)
	}

	count, _, _ := ReadVarInt(&buf)
	id, _, _ := ReadVarInt(&buf)
	addCount, _, _ := ReadVarInt(&buf)
	removeCount, _, _ := ReadVarInt(&buf)
	if count != 3 || id != 42 || addCount != 0 || removeCount != 0 {
		t.Errorf("WriteClientboundSlot fields = (%d,%d,%d,%d), want (3,42,0,0)", count, id, addCount, removeCount)
	}
}

func TestWriteClientboundSlotEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteClientboundSlot(&buf, 0, 0); err != nil {
		t.Fatalf("WriteClientboundSlot: %v", err)
	}
	if buf.Len() != 1 || buf.Bytes()[0] != 0x00 {
		t.Errorf("empty slot encoded as %v, want single 0x00 byte", buf.Bytes())
	}
}
