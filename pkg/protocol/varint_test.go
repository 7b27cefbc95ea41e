package protocol

import (
	"bytes"
	"testing"
)

func TestVarInt(t *testing.T) {
	tests := []struct {
		value    int32
		expected []byte
	}{
		{0, []byte{0x00}},
		{1, []byte{0x01}},
		{127, []byte{0x7F}},
		{128, []byte{0x80, 0x01}},
		{255, []byte{0xFF, 0x01}},
		{25565, []byte{0xDD, 0xC7, 0x01}},
		{2097151, []byte{0xFF, 0xFF, 0x7F}},
		{2147483647, []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x07}},
		{-1, []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x0F}},
		{-2147483648, []byte{0x80, 0x80, 0x80, 0x80, 0x08}},
	}

	for _, tt := range tests {
		var buf bytes.Buffer
		if _, err := WriteVarInt(&buf, tt.value); err != nil {
			t.Fatalf("WriteVarInt(%d) error: %v", tt.value, err)
		}
		if !bytes.Equal(buf.Bytes(), tt.expected) {
			t.Errorf("WriteVarInt(%d) = %v, want %v", tt.value, buf.Bytes(), tt.expected)
		}
		if got := VarIntSize(tt.value); got != len(tt.expected) {
			t.Errorf("VarIntSize(%d) = %d, want %d", tt.value, got, len(tt.expected))
		}

		val, n, err := ReadVarInt(bytes.NewReader(tt.expected))
		if err != nil {
			t.Fatalf("ReadVarInt error: %v", err)
		}
		if val != tt.value {
			t.Errorf("ReadVarInt = %d, want %d", val, tt.value)
		}
		if n != len(tt.expected) {
			t.Errorf("ReadVarInt bytes read = %d, want %d", n, len(tt.expected))
		}
	}
}

func TestVarIntRoundTripSweep(t *testing.T) {
	samples := []int32{0, 1, -1, 42, -42, 1 << 20, -(1 << 20), 2147483647, -2147483648}
	for _, v := range samples {
		var buf bytes.Buffer
		if _, err := WriteVarInt(&buf, v); err != nil {
			t.Fatalf("WriteVarInt(%d): %v", v, err)
		}
		if buf.Len() > 5 {
			t.Errorf("VarInt(%d) encoded to %d bytes, want <= 5", v, buf.Len())
		}
		got, _, err := ReadVarInt(&buf)
		if err != nil {
			t.Fatalf("ReadVarInt(%d): %v", v, err)
		}
		if got != v {
			t.Errorf("round trip %d -> %d", v, got)
		}
	}
}

func TestVarIntOverLong(t *testing.T) {
	// 6 continuation bytes: always-set high bit, over the 5-byte bound.
	data := []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x00}
	if _, _, err := ReadVarInt(bytes.NewReader(data)); err != ErrMalformedVarInt {
		t.Fatalf("ReadVarInt over-long = %v, want ErrMalformedVarInt", err)
	}
}

func TestVarLongRoundTripSweep(t *testing.T) {
	samples := []int64{0, 1, -1, 42, -42, 1 << 40, -(1 << 40), 9223372036854775807, -9223372036854775808}
	for _, v := range samples {
		var buf bytes.Buffer
		if _, err := WriteVarLong(&buf, v); err != nil {
			t.Fatalf("WriteVarLong(%d): %v", v, err)
		}
		if buf.Len() > 10 {
			t.Errorf("VarLong(%d) encoded to %d bytes, want <= 10", v, buf.Len())
		}
		got, _, err := ReadVarLong(&buf)
		if err != nil {
			t.Fatalf("ReadVarLong(%d): %v", v, err)
		}
		if got != v {
			t.Errorf("round trip %d -> %d", v, got)
		}
	}
}

func TestVarLongOverLong(t *testing.T) {
	data := make([]byte, 12)
	for i := range data {
		data[i] = 0xFF
	}
	data[11] = 0x00
	if _, _, err := ReadVarLong(bytes.NewReader(data)); err != ErrMalformedVarLong {
		t.Fatalf("ReadVarLong over-long = %v, want ErrMalformedVarLong", err)
	}
}
