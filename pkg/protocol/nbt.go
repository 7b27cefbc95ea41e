package protocol

import (
	"encoding/binary"
	"io"
)

// NBT tag ids, restricted to the subset this package ever writes or walks
// over. Layout conventions (big-endian 16-bit name length, no name on
// TAG_End) are grounded on the chunkymonkey nbt package's tag table.
const (
	nbtEnd       = 0x00
	nbtByte      = 0x01
	nbtShort     = 0x02
	nbtInt       = 0x03
	nbtLong      = 0x04
	nbtFloat     = 0x05
	nbtDouble    = 0x06
	nbtByteArray = 0x07
	nbtString    = 0x08
	nbtList      = 0x09
	nbtCompound  = 0x0A
	nbtIntArray  = 0x0B
	nbtLongArray = 0x0C
)

// WriteNBTString writes a TAG_String's length-prefixed payload (used for
// both the name and the value): a big-endian uint16 byte length followed
// by the UTF-8 bytes.
func writeNBTString(w io.Writer, s string) error {
	b := []byte(s)
	var lenBuf [2]byte
	binary.BigEndian.PutUint16(lenBuf[:], uint16(len(b)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}

// WriteTextComponent writes a minimal {"text":"..."} chat component as an
// unnamed TAG_Compound: one named TAG_String entry "text" followed by
// TAG_End. This is the NBT shape modern clientbound chat/registry
// payloads embed.
func WriteTextComponent(w io.Writer, text string) error {
	if err := WriteByte(w, nbtCompound); err != nil {
		return err
	}
	if err := writeNamedString(w, "text", text); err != nil {
		return err
	}
	return WriteByte(w, nbtEnd)
}

func writeNamedString(w io.Writer, name, value string) error {
	if err := WriteByte(w, nbtString); err != nil {
		return err
	}
	if err := writeNBTString(w, name); err != nil {
		return err
	}
	return writeNBTString(w, value)
}

// SkipNBT reads one complete network-NBT tag (type byte + payload, with no
// name on the root tag; entries inside a TAG_Compound carry names),
// recursing through TAG_List and TAG_Compound, and discards it. It is
// used to walk past slot-component payloads whose exact schema this
// server does not otherwise consume. It is diagnostic-only: a malformed or
// unrecognized tag id returns an error rather than looping forever.
func SkipNBT(r io.Reader) error {
	tagType, err := ReadByte(r)
	if err != nil {
		return err
	}
	if tagType == nbtEnd {
		return nil
	}
	return skipNBTPayload(r, tagType)
}

func skipNBTPayload(r io.Reader, tagType byte) error {
	switch tagType {
	case nbtEnd:
		return nil
	case nbtByte:
		_, err := ReadByte(r)
		return err
	case nbtShort:
		_, err := ReadShort(r)
		return err
	case nbtInt:
		_, err := ReadInt(r)
		return err
	case nbtLong:
		_, err := ReadLong(r)
		return err
	case nbtFloat:
		_, err := ReadFloat(r)
		return err
	case nbtDouble:
		_, err := ReadDouble(r)
		return err
	case nbtString:
		_, err := readNBTString(r)
		return err
	case nbtByteArray:
		n, err := ReadInt(r)
		if err != nil {
			return err
		}
		_, err = ReadBytes(r, int(n))
		return err
	case nbtIntArray:
		n, err := ReadInt(r)
		if err != nil {
			return err
		}
		for i := int32(0); i < n; i++ {
			if _, err := ReadInt(r); err != nil {
				return err
			}
		}
		return nil
	case nbtLongArray:
		n, err := ReadInt(r)
		if err != nil {
			return err
		}
		for i := int32(0); i < n; i++ {
			if _, err := ReadLong(r); err != nil {
				return err
			}
		}
		return nil
	case nbtList:
		elemType, err := ReadByte(r)
		if err != nil {
			return err
		}
		n, err := ReadInt(r)
		if err != nil {
			return err
		}
		for i := int32(0); i < n; i++ {
			if err := skipNBTPayload(r, elemType); err != nil {
				return err
			}
		}
		return nil
	case nbtCompound:
		for {
			childType, err := ReadByte(r)
			if err != nil {
				return err
			}
			if childType == nbtEnd {
				return nil
			}
			if _, err := readNBTString(r); err != nil {
				return err
			}
			if err := skipNBTPayload(r, childType); err != nil {
				return err
			}
		}
	default:
		return ErrTruncatedField
	}
}

func readNBTString(r io.Reader) (string, error) {
	var lenBuf [2]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return "", err
	}
	n := binary.BigEndian.Uint16(lenBuf[:])
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}
