package protocol

import "io"

// Slot is the decoded shape of a serverbound item stack:
// itemCount, itemId, and the raw component-type lists. AddComponents'
// payloads are not parsed; unknown component data is walked past with
// the NBT skipper, a diagnostic-only heuristic.
type Slot struct {
	Empty            bool
	ItemCount        int32
	ItemID           int32
	AddComponents    []int32 // component type ids with a payload we skipped
	RemoveComponents []int32
}

// ReadSlot decodes a serverbound slot. An itemCount of 0 (or less) means
// an empty slot with no further fields.
func ReadSlot(r io.Reader) (Slot, error) {
	count, _, err := ReadVarInt(r)
	if err != nil {
		return Slot{}, err
	}
	if count <= 0 {
		return Slot{Empty: true}, nil
	}

	itemID, _, err := ReadVarInt(r)
	if err != nil {
		return Slot{}, err
	}

	numAdd, _, err := ReadVarInt(r)
	if err != nil {
		return Slot{}, err
	}
	numRemove, _, err := ReadVarInt(r)
	if err != nil {
		return Slot{}, err
	}

	slot := Slot{ItemCount: count, ItemID: itemID}
	for i := int32(0); i < numAdd; i++ {
		typeID, _, err := ReadVarInt(r)
		if err != nil {
			return Slot{}, err
		}
		// The payload schema is component-specific and out of scope; walk
		// past it as a generic NBT value so the rest of the slot (and the
		// connection) stays parseable.
		if err := SkipNBT(r); err != nil {
			return Slot{}, err
		}
		slot.AddComponents = append(slot.AddComponents, typeID)
	}
	for i := int32(0); i < numRemove; i++ {
		typeID, _, err := ReadVarInt(r)
		if err != nil {
			return Slot{}, err
		}
		slot.RemoveComponents = append(slot.RemoveComponents, typeID)
	}
	return slot, nil
}

// WriteClientboundSlot writes a clientbound slot with no components: an
// item count, an item id, and zero add/remove component counts.
func WriteClientboundSlot(w io.Writer, itemCount int32, itemID int32) error {
	if itemCount <= 0 {
		_, err := WriteVarInt(w, 0)
		return err
	}
	if _, err := WriteVarInt(w, itemCount); err != nil {
		return err
	}
	if _, err := WriteVarInt(w, itemID); err != nil {
		return err
	}
	if _, err := WriteVarInt(w, 0); err != nil { // add components
		return err
	}
	_, err := WriteVarInt(w, 0) // remove components
	return err
}
