package server

import (
	"bytes"
	"fmt"
	"log"
	"net"

	"github.com/StoreStation/VibeCraft/pkg/protocol"
)

// handleLoginPacket processes the two serverbound LOGIN-phase opcodes:
// Login Start creates the Player and replies with Login Success; Login
// Acknowledged is the signal that advances the connection to
// CONFIGURATION. It returns the (possibly newly created) player and
// whether the phase should advance.
func (s *Server) handleLoginPacket(conn net.Conn, pkt *protocol.Packet) (*Player, bool, error) {
	switch pkt.ID {
	case idLoginStart:
		p, err := s.handleLoginStart(conn, pkt)
		return p, false, err
	case idLoginAcknowledged:
		return nil, true, nil
	default:
		log.Printf("server: unknown login opcode 0x%02X, discarding", pkt.ID)
		return nil, false, nil
	}
}

func (s *Server) handleLoginStart(conn net.Conn, pkt *protocol.Packet) (*Player, error) {
	r := bytes.NewReader(pkt.Data)
	username, err := protocol.ReadString(r, 16)
	if err != nil {
		return nil, err
	}
	uuid, err := protocol.ReadUUID(r)
	if err != nil {
		return nil, err
	}

	player := newPlayer(s.ctx, conn, username, uuid, s.ids)
	player.Phase = protocol.PhaseLogin

	loginSuccess := protocol.MarshalPacket(idLoginSuccess, func(w *bytes.Buffer) {
		protocol.WriteUUID(w, uuid)
		protocol.WriteString(w, username)
		protocol.WriteVarInt(w, 0) // number of properties
	})
	if err := protocol.WritePacket(conn, loginSuccess); err != nil {
		return nil, fmt.Errorf("login success: %w", err)
	}
	log.Printf("server: %s logging in (uuid %s)", username, uuid)
	return player, nil
}
