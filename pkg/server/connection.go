package server

import (
	"log"
	"net"

	"github.com/StoreStation/VibeCraft/pkg/protocol"
)

// handleConnection owns one TCP peer end to end: it reads frames in a tight
// loop, decodes them with pkg/protocol, and dispatches by the connection's
// current phase. Phase transitions are monotonic; once a
// handler bound to phase P runs its transition, handlePlayPacket and
// friends are the only code that can still execute for this peer.
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	phase := protocol.PhaseHandshaking
	var player *Player

	for {
		pkt, err := protocol.ReadPacket(conn)
		if err != nil {
			if player != nil {
				s.disconnect(player)
			}
			return
		}

		switch phase {
		case protocol.PhaseHandshaking:
			next, err := s.handleHandshake(pkt)
			if err != nil {
				log.Printf("server: handshake from %s: %v", conn.RemoteAddr(), err)
				return
			}
			phase = next

		case protocol.PhaseLogin:
			p, advance, err := s.handleLoginPacket(conn, pkt)
			if err != nil {
				log.Printf("server: login from %s: %v", conn.RemoteAddr(), err)
				return
			}
			if p != nil {
				player = p
			}
			if advance {
				phase = protocol.PhaseConfiguration
				player.Phase = phase
				s.enterConfiguration(player)
			}

		case protocol.PhaseConfiguration:
			advance := s.handleConfigPacket(player, pkt)
			if advance {
				phase = protocol.PhasePlay
				player.Phase = phase
				s.enterPlay(player)
			}

		case protocol.PhasePlay:
			s.handlePlayPacket(player, pkt)
		}
	}
}

func (s *Server) disconnect(p *Player) {
	p.close()
	s.removePlayer(p)
	remaining := toEntities(s.allPlayers())
	s.vis.Disconnect(playerEntity(p), remaining)
	if p.Phase == protocol.PhasePlay {
		s.announceLeave(p)
	}
	log.Printf("server: %s disconnected", p.Username)
}
