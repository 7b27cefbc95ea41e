package protocol

import (
	"encoding/binary"
	"io"
)

// BitSet is a variable-length bit set: a VarInt word count followed by
// that many 64-bit little-endian words. Bit i lives in word i/64 at bit
// i%64.
type BitSet struct {
	words []uint64
	n     int // number of bits the caller asked for
}

// NewBitSet allocates a BitSet sized to hold n bits.
func NewBitSet(n int) *BitSet {
	return &BitSet{words: make([]uint64, (n+63)/64), n: n}
}

func (b *BitSet) Len() int { return b.n }

func (b *BitSet) Set(i int) {
	b.words[i/64] |= 1 << uint(i%64)
}

func (b *BitSet) Get(i int) bool {
	if i/64 >= len(b.words) {
		return false
	}
	return b.words[i/64]&(1<<uint(i%64)) != 0
}

// ReadBitSet reads a VarInt word count followed by that many
// little-endian 64-bit words.
func ReadBitSet(r io.Reader) (*BitSet, error) {
	count, _, err := ReadVarInt(r)
	if err != nil {
		return nil, err
	}
	if count < 0 {
		return nil, ErrTruncatedField
	}
	words := make([]uint64, count)
	var buf [8]byte
	for i := range words {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return nil, err
		}
		words[i] = binary.LittleEndian.Uint64(buf[:])
	}
	return &BitSet{words: words, n: int(count) * 64}, nil
}

// WriteBitSet writes the VarInt word count followed by the little-endian
// words.
func WriteBitSet(w io.Writer, b *BitSet) error {
	if _, err := WriteVarInt(w, int32(len(b.words))); err != nil {
		return err
	}
	var buf [8]byte
	for _, word := range b.words {
		binary.LittleEndian.PutUint64(buf[:], word)
		if _, err := w.Write(buf[:]); err != nil {
			return err
		}
	}
	return nil
}

// FixedBitSet is a fixed-size bit set of n bits, packed ceil(n/8) bytes
// with bit i in byte i/8 at bit i%8 (LSB first), used for masks whose
// length is implied by context rather than self-described on the wire.
type FixedBitSet struct {
	bytes []byte
	n     int
}

func NewFixedBitSet(n int) *FixedBitSet {
	return &FixedBitSet{bytes: make([]byte, (n+7)/8), n: n}
}

func (b *FixedBitSet) Len() int { return b.n }

func (b *FixedBitSet) Set(i int) {
	b.bytes[i/8] |= 1 << uint(i%8)
}

func (b *FixedBitSet) Get(i int) bool {
	if i/8 >= len(b.bytes) {
		return false
	}
	return b.bytes[i/8]&(1<<uint(i%8)) != 0
}

func (b *FixedBitSet) Bytes() []byte { return b.bytes }

func ReadFixedBitSet(r io.Reader, n int) (*FixedBitSet, error) {
	buf := make([]byte, (n+7)/8)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return &FixedBitSet{bytes: buf, n: n}, nil
}

func WriteFixedBitSet(w io.Writer, b *FixedBitSet) error {
	_, err := w.Write(b.bytes)
	return err
}
