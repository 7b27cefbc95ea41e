package protocol

import (
	"bytes"
	"io"
)

// ProtocolVersion is the Java Edition protocol version this server speaks
// (release ~1.21.x).
const ProtocolVersion = 773

// Connection phases. Transitions are monotonic: HANDSHAKING -> LOGIN ->
// CONFIGURATION -> PLAY, never backward.
type Phase int

const (
	PhaseHandshaking Phase = iota
	PhaseLogin
	PhaseConfiguration
	PhasePlay
)

func (p Phase) String() string {
	switch p {
	case PhaseHandshaking:
		return "handshaking"
	case PhaseLogin:
		return "login"
	case PhaseConfiguration:
		return "configuration"
	case PhasePlay:
		return "play"
	default:
		return "unknown"
	}
}

// Packet is a decoded (id, payload) pair. Data holds the payload bytes
// following the VarInt packet id.
type Packet struct {
	ID   int32
	Data []byte
}

// ReadPacket reads one length-prefixed frame and splits out the VarInt
// packet id from its payload. Frames over MaxFrameLength fail with
// ErrFrameTooLarge; an incomplete frame propagates the
// underlying read error so the caller can keep accumulating bytes.
func ReadPacket(r io.Reader) (*Packet, error) {
	length, _, err := ReadVarInt(r)
	if err != nil {
		return nil, err
	}
	if length < 0 || int(length) > MaxFrameLength {
		return nil, ErrFrameTooLarge
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, err
	}

	pr := bytes.NewReader(payload)
	packetID, idLen, err := ReadVarInt(pr)
	if err != nil {
		return nil, err
	}
	return &Packet{ID: packetID, Data: payload[idLen:]}, nil
}

// WritePacket writes the VarInt(length) + VarInt(id) + payload frame in
// a single buffered write.
func WritePacket(w io.Writer, p *Packet) error {
	idSize := VarIntSize(p.ID)
	totalLen := int32(idSize + len(p.Data))

	buf := bytes.NewBuffer(make([]byte, 0, VarIntSize(totalLen)+int(totalLen)))
	if _, err := WriteVarInt(buf, totalLen); err != nil {
		return err
	}
	if _, err := WriteVarInt(buf, p.ID); err != nil {
		return err
	}
	buf.Write(p.Data)

	_, err := w.Write(buf.Bytes())
	return err
}

// MarshalPacket builds a Packet from an id and a payload-writing closure.
func MarshalPacket(id int32, builder func(w *bytes.Buffer)) *Packet {
	var buf bytes.Buffer
	builder(&buf)
	return &Packet{ID: id, Data: buf.Bytes()}
}
