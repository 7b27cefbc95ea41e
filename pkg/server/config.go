package server

import (
	"bytes"
	"log"

	"github.com/StoreStation/VibeCraft/pkg/protocol"
	"github.com/StoreStation/VibeCraft/pkg/registry"
)

// enterConfiguration emits the three fixed CONFIGURATION-phase packets in
// order: Known Packs, one Registry Data per required registry,
// then Finish Configuration.
func (s *Server) enterConfiguration(p *Player) {
	knownPacks := protocol.MarshalPacket(idClientboundKnownPacks, func(w *bytes.Buffer) {
		protocol.WriteVarInt(w, 1)
		protocol.WriteString(w, "minecraft")
		protocol.WriteString(w, "core")
		protocol.WriteString(w, "773")
	})
	p.send(knownPacks)

	for _, regID := range registry.RequiredRegistries {
		entries := s.registry.Entries(regID)
		pkt := protocol.MarshalPacket(idRegistryData, func(w *bytes.Buffer) {
			protocol.WriteString(w, regID)
			protocol.WriteVarInt(w, int32(len(entries)))
			for _, e := range entries {
				protocol.WriteString(w, e.ID)
				hasNBT := len(e.NBT) > 0
				protocol.WriteBool(w, hasNBT)
				if hasNBT {
					w.Write(e.NBT)
				}
			}
		})
		p.send(pkt)
	}

	p.send(protocol.MarshalPacket(idFinishConfiguration, func(w *bytes.Buffer) {}))
}

// handleConfigPacket processes serverbound CONFIGURATION opcodes. Client
// Information, Plugin Message and Serverbound Known Packs are
// recorded but never gate the transition; only Acknowledge Finish
// Configuration does.
func (s *Server) handleConfigPacket(p *Player, pkt *protocol.Packet) bool {
	r := bytes.NewReader(pkt.Data)
	switch pkt.ID {
	case idClientInformation:
		if _, err := protocol.ReadString(r, 16); err != nil { // locale
			return false
		}
		_, _ = protocol.ReadByte(r)      // view distance
		_, _, _ = protocol.ReadVarInt(r) // chat mode
		_, _ = protocol.ReadBool(r)      // chat colors
		_, _ = protocol.ReadByte(r)      // displayed skin parts
		_, _, _ = protocol.ReadVarInt(r) // main hand
		_, _ = protocol.ReadBool(r)      // enable text filtering
		_, _ = protocol.ReadBool(r)      // allow server listings
		return false

	case idPluginMessageConfig:
		// channel + remaining payload bytes: read and discard, unknown
		// channels are not fatal.
		_, _ = protocol.ReadString(r, 32767)
		return false

	case idServerboundKnownPacksConfig:
		count, _, err := protocol.ReadVarInt(r)
		if err != nil {
			return false
		}
		for i := int32(0); i < count; i++ {
			if _, err := protocol.ReadString(r, 32767); err != nil {
				return false
			}
			if _, err := protocol.ReadString(r, 32767); err != nil {
				return false
			}
			if _, err := protocol.ReadString(r, 32767); err != nil {
				return false
			}
		}
		return false

	case idAckFinishConfiguration:
		return true

	default:
		log.Printf("server: unknown configuration opcode 0x%02X, discarding", pkt.ID)
		return false
	}
}
