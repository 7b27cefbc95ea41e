// Package protocol implements the Minecraft Java Edition wire format for
// protocol version 773: framing, primitive codecs, the paletted container,
// and the minimal NBT subset the server needs.
package protocol

import "errors"

// Error kinds a connection's reader loop recovers from locally by closing
// the offending peer. They are sentinel values rather than a
// single generic error so callers can tell transport failure apart from a
// malformed payload.
var (
	ErrMalformedVarInt  = errors.New("protocol: malformed varint")
	ErrMalformedVarLong = errors.New("protocol: malformed varlong")
	ErrStringTooLong    = errors.New("protocol: string exceeds max length")
	ErrFrameTooLarge    = errors.New("protocol: frame exceeds maximum size")
	ErrTruncatedField   = errors.New("protocol: truncated field")

	// ErrInvalidPaletteIndex is a fatal bug for the chunk being encoded, not
	// for the connection; callers abort that one encode and keep the peer.
	ErrInvalidPaletteIndex = errors.New("protocol: palette index out of range")
)

// MaxFrameLength is the largest permitted VarInt-prefixed frame length:
// the largest value representable in a 3-byte VarInt.
const MaxFrameLength = 2097151
