package server

import (
	"bytes"
	"fmt"

	"github.com/StoreStation/VibeCraft/pkg/protocol"
)

// handleHandshake parses the single Handshaking-phase packet:
// protocolVersion, serverAddress, serverPort, intent. Intent 2 (login) and
// 3 (transfer, treated as login here) move the connection to
// LOGIN; intent 1 (status) is not implemented.
func (s *Server) handleHandshake(pkt *protocol.Packet) (protocol.Phase, error) {
	if pkt.ID != idHandshake {
		return protocol.PhaseHandshaking, fmt.Errorf("unexpected handshake opcode 0x%02X", pkt.ID)
	}

	r := bytes.NewReader(pkt.Data)
	_, _, err := protocol.ReadVarInt(r) // protocol version; unchecked, an offline server speaks one version
	if err != nil {
		return protocol.PhaseHandshaking, err
	}
	if _, err := protocol.ReadString(r, 255); err != nil { // server address
		return protocol.PhaseHandshaking, err
	}
	if _, err := protocol.ReadUnsignedShort(r); err != nil { // server port
		return protocol.PhaseHandshaking, err
	}
	intent, _, err := protocol.ReadVarInt(r)
	if err != nil {
		return protocol.PhaseHandshaking, err
	}

	switch intent {
	case 2, 3:
		return protocol.PhaseLogin, nil
	case 1:
		return protocol.PhaseHandshaking, fmt.Errorf("status handshakes are not implemented by this core")
	default:
		return protocol.PhaseHandshaking, fmt.Errorf("unknown handshake intent %d", intent)
	}
}
