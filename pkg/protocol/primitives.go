package protocol

import (
	"crypto/md5"
	"encoding/binary"
	"io"
	"math"

	"github.com/google/uuid"
)

// ReadString reads a VarInt-length-prefixed UTF-8 string. max is the
// maximum character count the caller will accept; the decoder fails once
// the encoded byte length exceeds max*3 (the worst case for a UTF-8 code
// point under max characters).
func ReadString(r io.Reader, max int) (string, error) {
	length, _, err := ReadVarInt(r)
	if err != nil {
		return "", err
	}
	if length < 0 || int(length) > max*3 {
		return "", ErrStringTooLong
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

// WriteString writes a VarInt-length-prefixed UTF-8 string.
func WriteString(w io.Writer, s string) error {
	b := []byte(s)
	if _, err := WriteVarInt(w, int32(len(b))); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}

// UUID is a 128-bit identifier, written big-endian regardless of host
// endianness. It is an alias of google/uuid's UUID type.
type UUID = uuid.UUID

// ReadUUID reads a 16-byte big-endian UUID.
func ReadUUID(r io.Reader) (UUID, error) {
	var buf [16]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return UUID{}, err
	}
	return uuid.FromBytes(buf[:])
}

// WriteUUID writes a 16-byte big-endian UUID.
func WriteUUID(w io.Writer, id UUID) error {
	b, err := id.MarshalBinary()
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// OfflineUUID derives the vanilla-server offline-mode player UUID: an
// MD5 (version 3) name-based UUID over "OfflinePlayer:<username>", with no
// namespace prefix in the hashed bytes.
func OfflineUUID(username string) UUID {
	h := md5.Sum([]byte("OfflinePlayer:" + username))
	h[6] = h[6]&0x0f | 0x30 // version 3
	h[8] = h[8]&0x3f | 0x80 // RFC 4122 variant
	return UUID(h)
}

func ReadShort(r io.Reader) (int16, error) {
	var buf [2]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return int16(binary.BigEndian.Uint16(buf[:])), nil
}

func WriteShort(w io.Writer, v int16) error {
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], uint16(v))
	_, err := w.Write(buf[:])
	return err
}

func ReadUnsignedShort(r io.Reader) (uint16, error) {
	var buf [2]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(buf[:]), nil
}

func WriteUnsignedShort(w io.Writer, v uint16) error {
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

func ReadInt(r io.Reader) (int32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return int32(binary.BigEndian.Uint32(buf[:])), nil
}

func WriteInt(w io.Writer, v int32) error {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], uint32(v))
	_, err := w.Write(buf[:])
	return err
}

func ReadLong(r io.Reader) (int64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(buf[:])), nil
}

func WriteLong(w io.Writer, v int64) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(v))
	_, err := w.Write(buf[:])
	return err
}

func ReadFloat(r io.Reader) (float32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return math.Float32frombits(binary.BigEndian.Uint32(buf[:])), nil
}

func WriteFloat(w io.Writer, v float32) error {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], math.Float32bits(v))
	_, err := w.Write(buf[:])
	return err
}

func ReadDouble(r io.Reader) (float64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.BigEndian.Uint64(buf[:])), nil
}

func WriteDouble(w io.Writer, v float64) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], math.Float64bits(v))
	_, err := w.Write(buf[:])
	return err
}

func ReadBool(r io.Reader) (bool, error) {
	var buf [1]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return false, err
	}
	return buf[0] != 0, nil
}

func WriteBool(w io.Writer, v bool) error {
	var b byte
	if v {
		b = 1
	}
	_, err := w.Write([]byte{b})
	return err
}

func ReadByte(r io.Reader) (byte, error) {
	var buf [1]byte
	_, err := io.ReadFull(r, buf[:])
	return buf[0], err
}

func WriteByte(w io.Writer, v byte) error {
	_, err := w.Write([]byte{v})
	return err
}

func ReadBytes(r io.Reader, n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func WriteBytes(w io.Writer, b []byte) error {
	_, err := w.Write(b)
	return err
}

// Position packs a block position into a single int64: X in bits 63..38
// (26-bit signed), Z in bits 37..12 (26-bit signed), Y in bits 11..0
// (12-bit signed).
type Position struct {
	X, Z int32
	Y    int32
}

func PositionToLong(p Position) int64 {
	x := int64(p.X) & 0x3FFFFFF
	z := int64(p.Z) & 0x3FFFFFF
	y := int64(p.Y) & 0xFFF
	return (x << 38) | (z << 12) | y
}

func PositionFromLong(v int64) Position {
	x := int32(v >> 38)
	y := int32(v << 52 >> 52) // sign-extend the low 12 bits
	z := int32(v << 26 >> 38) // sign-extend the middle 26 bits
	return Position{X: x, Y: y, Z: z}
}

func ReadPosition(r io.Reader) (Position, error) {
	v, err := ReadLong(r)
	if err != nil {
		return Position{}, err
	}
	return PositionFromLong(v), nil
}

func WritePosition(w io.Writer, p Position) error {
	return WriteLong(w, PositionToLong(p))
}

// Angle is a single byte encoding of a rotation in degrees:
// round(deg * 256 / 360) mod 256.
type Angle byte

func AngleFromDegrees(deg float64) Angle {
	scaled := math.Round(deg * 256.0 / 360.0)
	v := int64(scaled) % 256
	if v < 0 {
		v += 256
	}
	return Angle(byte(v))
}

func (a Angle) Degrees() float64 {
	return float64(a) * 360.0 / 256.0
}

func ReadAngle(r io.Reader) (Angle, error) {
	b, err := ReadByte(r)
	return Angle(b), err
}

func WriteAngle(w io.Writer, a Angle) error {
	return WriteByte(w, byte(a))
}
