package server

import (
	"bytes"
	"log"

	"github.com/StoreStation/VibeCraft/pkg/protocol"
)

// SpawnX/Y/Z is the fixed spawn point every player enters the world at.
const (
	SpawnX = 0
	SpawnY = 65
	SpawnZ = 0
)

// enterPlay runs the fixed PLAY-entry sequence, in order: Login
// (play), Synchronize Player Position, Update Time, Game Event(13), the
// synchronous 3x3 spawn-chunk batch, starting the keep-alive task, and
// finally informing the visibility manager a new player joined. The
// world-time task is server-wide and started by Start, not here.
func (s *Server) enterPlay(p *Player) {
	p.mu.Lock()
	p.X, p.Y, p.Z = SpawnX, SpawnY, SpawnZ
	p.Yaw, p.Pitch, p.HeadYaw = 0, 0, 0
	p.OnGround = true
	p.teleportID = 1
	p.mu.Unlock()

	p.send(protocol.MarshalPacket(idCBLogin, func(w *bytes.Buffer) {
		protocol.WriteInt(w, p.EntityID)
		protocol.WriteVarInt(w, 1)
		protocol.WriteString(w, "minecraft:overworld")
		protocol.WriteVarInt(w, int32(s.config.MaxPlayers))
		protocol.WriteVarInt(w, s.viewDistance())
		protocol.WriteVarInt(w, s.viewDistance())
		protocol.WriteBool(w, false) // reduced debug info
		protocol.WriteBool(w, true)  // enable respawn screen
		protocol.WriteBool(w, false) // limited crafting
		protocol.WriteString(w, "minecraft:overworld")
		protocol.WriteLong(w, s.config.Seed) // hashed seed
		protocol.WriteByte(w, 0)             // game mode: survival
		protocol.WriteByte(w, 0xFF)          // previous game mode: none
		protocol.WriteBool(w, false)         // is debug
		protocol.WriteBool(w, false)         // is flat
		protocol.WriteBool(w, false)         // has death location
		protocol.WriteVarInt(w, 0)           // portal cooldown
		protocol.WriteVarInt(w, 63)          // sea level
		protocol.WriteBool(w, false)         // enforces secure chat
	}))

	p.send(protocol.MarshalPacket(idCBSynchronizePlayerPosition, func(w *bytes.Buffer) {
		protocol.WriteVarInt(w, p.teleportID)
		protocol.WriteDouble(w, SpawnX)
		protocol.WriteDouble(w, SpawnY)
		protocol.WriteDouble(w, SpawnZ)
		protocol.WriteFloat(w, 0) // velocity x
		protocol.WriteFloat(w, 0) // velocity y
		protocol.WriteFloat(w, 0) // velocity z
		protocol.WriteFloat(w, 0) // yaw
		protocol.WriteFloat(w, 0) // pitch
		protocol.WriteInt(w, 0)   // flags: all absolute
	}))

	s.sendUpdateTime(p)

	p.send(protocol.MarshalPacket(idCBGameEvent, func(w *bytes.Buffer) {
		protocol.WriteByte(w, 13) // start waiting for level chunks
		protocol.WriteFloat(w, 0)
	}))

	s.startStreamer(p)
	s.sendSpawnBatch(p, SpawnX>>4, SpawnZ>>4)
	p.lastCx, p.lastCz = SpawnX>>4, SpawnZ>>4

	s.addPlayer(p)
	go s.keepAliveLoop(p)

	others := s.otherPlayers(p.EntityID)
	for _, other := range others {
		s.sendPlayerInfoAdd(other, p)
		s.sendPlayerInfoAdd(p, other)
	}
	s.sendPlayerInfoAdd(p, p)

	s.vis.Join(playerEntity(p), toEntities(others))
	s.announceJoin(p)

	log.Printf("server: %s (eid %d) entered play", p.Username, p.EntityID)
}

// handlePlayPacket dispatches the serverbound PLAY opcodes this server
// consumes. Unknown opcodes are logged and discarded, never
// fatal.
func (s *Server) handlePlayPacket(p *Player, pkt *protocol.Packet) {
	r := bytes.NewReader(pkt.Data)
	switch pkt.ID {
	case idSBKeepAlive:
		s.handleKeepAliveResponse(p, r)

	case idSBSetPlayerPosition:
		x, _ := protocol.ReadDouble(r)
		y, _ := protocol.ReadDouble(r)
		z, _ := protocol.ReadDouble(r)
		onGround, _ := protocol.ReadBool(r)
		s.updatePosition(p, x, y, z, onGround)

	case idSBSetPlayerPosRot:
		x, _ := protocol.ReadDouble(r)
		y, _ := protocol.ReadDouble(r)
		z, _ := protocol.ReadDouble(r)
		yaw, _ := protocol.ReadFloat(r)
		pitch, _ := protocol.ReadFloat(r)
		onGround, _ := protocol.ReadBool(r)
		s.updatePositionRotation(p, x, y, z, yaw, pitch, onGround)

	case idSBSetPlayerRotation:
		yaw, _ := protocol.ReadFloat(r)
		pitch, _ := protocol.ReadFloat(r)
		onGround, _ := protocol.ReadBool(r)
		s.updateRotation(p, yaw, pitch, onGround)

	case idSBPlayerAction:
		s.handlePlayerAction(p, r)

	case idSBUseItemOn:
		s.handleUseItemOn(p, r)

	case idSBSwingArm:
		_, _, _ = protocol.ReadVarInt(r) // hand
		s.broadcastAnimation(p)

	case idSBSetHeldItem:
		slot, _ := protocol.ReadShort(r)
		p.mu.Lock()
		p.ActiveSlot = int32(slot)
		p.mu.Unlock()

	case idSBSetCreativeModeSlot:
		slotIdx, _ := protocol.ReadShort(r)
		slot, err := protocol.ReadSlot(r)
		if err != nil {
			// Unknown slot components make the rest of the packet
			// unwalkable; log and keep the connection (the skipper is
			// diagnostic-only, never load-bearing).
			log.Printf("server: unparseable creative slot from %s: %v", p.Username, err)
			return
		}
		s.setInventorySlot(p, int(slotIdx), slot)

	case idSBClickContainer, idSBClickContainerButton, idSBCloseContainer:
		// Click resolution belongs to the external inventory container;
		// the server only needs to keep the connection parseable for
		// these opcodes, not resolve clicks.
		drainPacket(r)

	case idSBChatMessage:
		s.handleChatMessage(p, r)

	default:
		log.Printf("server: unknown play opcode 0x%02X from %s, discarding", pkt.ID, p.Username)
	}
}

func drainPacket(r *bytes.Reader) {
	_, _ = r.Read(make([]byte, r.Len()))
}

func (s *Server) setInventorySlot(p *Player, idx int, slot protocol.Slot) {
	if idx < 0 || idx >= len(p.Inventory) {
		return
	}
	p.mu.Lock()
	if slot.Empty {
		p.Inventory[idx] = Slot{Empty: true}
	} else {
		p.Inventory[idx] = Slot{ItemID: slot.ItemID, Count: slot.ItemCount}
	}
	stored := p.Inventory[idx]
	p.mu.Unlock()

	// Echo the accepted contents back as a Set Container Slot so client
	// and server agree on the slot; clientbound slots carry no components.
	p.send(protocol.MarshalPacket(idCBSetContainerSlot, func(w *bytes.Buffer) {
		protocol.WriteVarInt(w, 0) // window id: player inventory
		protocol.WriteVarInt(w, 0) // state id
		protocol.WriteShort(w, int16(idx))
		if stored.Empty {
			protocol.WriteClientboundSlot(w, 0, 0)
		} else {
			protocol.WriteClientboundSlot(w, stored.Count, stored.ItemID)
		}
	}))
}

func (s *Server) updatePosition(p *Player, x, y, z float64, onGround bool) {
	p.mu.Lock()
	p.X, p.Y, p.Z = x, y, z
	p.OnGround = onGround
	p.mu.Unlock()
	s.afterMove(p)
}

func (s *Server) updatePositionRotation(p *Player, x, y, z float64, yaw, pitch float32, onGround bool) {
	p.mu.Lock()
	p.X, p.Y, p.Z = x, y, z
	p.Yaw, p.Pitch = yaw, pitch
	p.HeadYaw = yaw
	p.OnGround = onGround
	p.mu.Unlock()
	s.afterMove(p)
}

func (s *Server) updateRotation(p *Player, yaw, pitch float32, onGround bool) {
	p.mu.Lock()
	p.Yaw, p.Pitch = yaw, pitch
	p.HeadYaw = yaw
	p.OnGround = onGround
	p.mu.Unlock()
	// Rotation-only: position is unchanged, so no range re-evaluation and
	// no chunk recompute; viewers get Update Entity Rotation plus the
	// usual Rotate Head check.
	s.vis.Rotate(playerEntity(p), toEntities(s.otherPlayers(p.EntityID)))
}

// afterMove re-evaluates visibility range for every other player and
// pushes the delta-encoded or teleport move to whichever viewers already
// have this player visible, then recomputes the desired
// chunk square if the player crossed a chunk boundary.
func (s *Server) afterMove(p *Player) {
	mover := playerEntity(p)
	others := s.otherPlayers(p.EntityID)
	// Both directions: a stationary player must see the mover arrive, and
	// the mover must see stationary players it walks into range of.
	for _, other := range others {
		otherEnt := playerEntity(other)
		s.vis.UpdateRange(otherEnt, mover)
		s.vis.UpdateRange(mover, otherEnt)
	}
	s.vis.Move(mover, toEntities(others))

	cp := p.chunkPos()
	p.mu.Lock()
	crossed := cp.X != p.lastCx || cp.Z != p.lastCz
	if crossed {
		p.lastCx, p.lastCz = cp.X, cp.Z
	}
	p.mu.Unlock()
	if crossed && p.reqMgr != nil {
		p.reqMgr.UpdateDesiredChunks(desiredSquare(cp.X, cp.Z, s.viewDistance()))
	}
}
