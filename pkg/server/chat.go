package server

import (
	"bytes"
	"fmt"

	"github.com/StoreStation/VibeCraft/pkg/chat"
	"github.com/StoreStation/VibeCraft/pkg/protocol"
)

// Chat signing/acknowledgement is part of the online-mode security model
// this server doesn't implement; the
// signature and acknowledged bitset are parsed only so the connection
// stays framed, never verified.
const chatAckBits = 20

// handleChatMessage decodes a serverbound Chat Message and rebroadcasts it
// to every connected player as a System Chat Message,
// using pkg/chat's NBT-flattened text component rather than the legacy
// JSON-string encoding.
func (s *Server) handleChatMessage(p *Player, r *bytes.Reader) {
	message, err := protocol.ReadString(r, 256)
	if err != nil {
		return
	}
	if _, err := protocol.ReadLong(r); err != nil { // timestamp
		return
	}
	if _, err := protocol.ReadLong(r); err != nil { // salt
		return
	}
	hasSignature, err := protocol.ReadBool(r)
	if err != nil {
		return
	}
	if hasSignature {
		if _, err := protocol.ReadBytes(r, 256); err != nil {
			return
		}
	}
	if _, _, err := protocol.ReadVarInt(r); err != nil { // message count
		return
	}
	if _, err := protocol.ReadFixedBitSet(r, chatAckBits); err != nil { // acknowledged
		return
	}

	s.broadcastSystemMessage(chat.Text(fmt.Sprintf("<%s> %s", p.Username, message)))
}

// broadcastSystemMessage sends a System Chat Message to every connected
// player, flattening msg through the NBT text-component writer.
func (s *Server) broadcastSystemMessage(msg chat.Message) {
	pkt := protocol.MarshalPacket(idCBSystemChatMessage, func(w *bytes.Buffer) {
		protocol.WriteTextComponent(w, msg.Flatten())
		protocol.WriteBool(w, false) // overlay (action bar)
	})
	for _, p := range s.allPlayers() {
		p.send(pkt)
	}
}

// announceJoin/announceLeave publish the join/leave chat lines pkg/chat
// exists to format.
func (s *Server) announceJoin(p *Player) {
	s.broadcastSystemMessage(chat.Colored(p.Username+" joined the game", "yellow"))
}

func (s *Server) announceLeave(p *Player) {
	s.broadcastSystemMessage(chat.Colored(p.Username+" left the game", "yellow"))
}
