package protocol

import (
	"bytes"
	"io"
	"math"
)

// lpVec3MinMagnitude is the smallest per-axis magnitude that still gets a
// non-zero encoding; below it (and for NaN, coerced to zero) the payload
// collapses to the single byte 0x00.
const lpVec3MinMagnitude = 3.051944088384301e-5

const lpVec3Clamp = 1.7179869183e10

// WriteLpVec3 encodes a low-precision velocity: clamp each
// axis to ±1.7179869183e10 (NaN becomes zero), and if every axis is below
// the minimum magnitude, emit the single byte 0x00. Otherwise pack a
// 48-bit little-endian lead word plus an optional continuation VarInt.
func WriteLpVec3(w io.Writer, x, y, z float64) error {
	x = clampLpVec3(x)
	y = clampLpVec3(y)
	z = clampLpVec3(z)

	m := math.Abs(x)
	if math.Abs(y) > m {
		m = math.Abs(y)
	}
	if math.Abs(z) > m {
		m = math.Abs(z)
	}

	if m < lpVec3MinMagnitude {
		return WriteByte(w, 0x00)
	}

	scale := math.Ceil(m)
	scaleInt := int64(scale)
	needContinuation := scaleInt >= 3

	pack := func(v float64) uint64 {
		return uint64(math.Round((v/scale*0.5 + 0.5) * 32766))
	}

	px, py, pz := pack(x), pack(y), pack(z)
	lead := (px << 3) | (py << 18) | (pz << 33) | uint64(scaleInt&3)
	if needContinuation {
		lead |= 4
	}

	var buf [6]byte
	buf[0] = byte(lead)
	buf[1] = byte(lead >> 8)
	buf[2] = byte(lead >> 16)
	buf[3] = byte(lead >> 24)
	buf[4] = byte(lead >> 32)
	buf[5] = byte(lead >> 40)
	if _, err := w.Write(buf[:]); err != nil {
		return err
	}

	if needContinuation {
		if _, err := WriteVarInt(w, int32(scaleInt>>2)); err != nil {
			return err
		}
	}
	return nil
}

// ReadLpVec3 decodes a low-precision velocity written by WriteLpVec3. LpVec3
// is always the last field of its packet, so the zero-sentinel (a lone
// 0x00 byte, versus the 6-byte lead word of a real encoding) is
// disambiguated by whether any bytes remain in r rather than by content.
func ReadLpVec3(r *bytes.Reader) (x, y, z float64, err error) {
	first, err := ReadByte(r)
	if err != nil {
		return 0, 0, 0, err
	}
	if first == 0x00 && r.Len() == 0 {
		return 0, 0, 0, nil
	}

	var rest [5]byte
	if _, err := io.ReadFull(r, rest[:]); err != nil {
		return 0, 0, 0, err
	}
	lead := uint64(first) | uint64(rest[0])<<8 | uint64(rest[1])<<16 |
		uint64(rest[2])<<24 | uint64(rest[3])<<32 | uint64(rest[4])<<40
	return decodeLpVec3Lead(r, lead)
}

func decodeLpVec3Lead(r io.Reader, lead uint64) (x, y, z float64, err error) {
	scaleInt := int64(lead & 3)
	needContinuation := lead&4 != 0
	if needContinuation {
		hi, _, err := ReadVarInt(r)
		if err != nil {
			return 0, 0, 0, err
		}
		scaleInt |= int64(hi) << 2
	}
	scale := float64(scaleInt)

	unpack := func(shift uint) float64 {
		v := float64((lead>>shift)&0x7FFF) / 32766
		return (v - 0.5) * 2 * scale
	}
	return unpack(3), unpack(18), unpack(33), nil
}

func clampLpVec3(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	if v > lpVec3Clamp {
		return lpVec3Clamp
	}
	if v < -lpVec3Clamp {
		return -lpVec3Clamp
	}
	return v
}
