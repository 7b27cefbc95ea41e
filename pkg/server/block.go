package server

import (
	"bytes"
	"log"
	"math"

	"github.com/google/uuid"

	"github.com/StoreStation/VibeCraft/pkg/protocol"
	"github.com/StoreStation/VibeCraft/pkg/registry"
	"github.com/StoreStation/VibeCraft/pkg/streamer"
	"github.com/StoreStation/VibeCraft/pkg/world"
)

// The block-breaking damage formula and the inventory slot container are
// external collaborators this server never implements; dig/place
// here only performs the direct wire consequence of the serverbound
// opcode (set a block, tell viewers), not hardness/tool-speed modeling.

// handlePlayerAction processes Player Action: on dig-finish (status 2)
// it breaks the targeted block and publishes Block Update, Set Block
// Destroy Stage and the break World Event to every viewer in range.
func (s *Server) handlePlayerAction(p *Player, r *bytes.Reader) {
	status, _, err := protocol.ReadVarInt(r)
	if err != nil {
		return
	}
	pos, err := protocol.ReadPosition(r)
	if err != nil {
		return
	}
	_, _ = protocol.ReadByte(r)      // face
	_, _, _ = protocol.ReadVarInt(r) // sequence

	switch status {
	case 0: // start digging
		p.mu.Lock()
		p.diggingAt = &pos
		p.mu.Unlock()
	case 1: // cancel digging
		p.mu.Lock()
		p.diggingAt = nil
		p.mu.Unlock()
	case 2: // finish digging
		// A finish must match the block the preceding start targeted; a
		// finish for some other block is ignored. A finish with no start
		// at all is allowed (instant breaks never send one).
		p.mu.Lock()
		started := p.diggingAt
		p.mu.Unlock()
		if started != nil && *started != pos {
			log.Printf("server: %s finished digging %v but started at %v, ignoring", p.Username, pos, *started)
			return
		}
		s.breakBlock(p, pos)
	case 3, 4: // drop item stack / drop single item
		s.dropItem(p)
	}
}

// dropItem spawns a transient item entity at the player's eye position and
// sends it off with an outward velocity, publishing a Set Entity Velocity
// packet encoded with LpVec3. The entity is not tracked beyond this
// broadcast: the held-item data that would give it real contents lives in
// the external inventory container, so only the wire event is produced.
func (s *Server) dropItem(p *Player) {
	p.mu.Lock()
	x, y, z := p.X, p.Y+1.62, p.Z
	yaw, pitch := p.Yaw, p.Pitch
	p.mu.Unlock()

	yawRad := float64(yaw) * math.Pi / 180
	pitchRad := float64(pitch) * math.Pi / 180
	speed := 0.3
	vx := -math.Sin(yawRad) * math.Cos(pitchRad) * speed
	vy := -math.Sin(pitchRad)*speed + 0.1
	vz := math.Cos(yawRad) * math.Cos(pitchRad) * speed

	id := s.ids.AllocateNonPlayer()
	entityUUID := uuid.New()
	typeID := registry.EntityTypeProtocolID["minecraft:item"]

	spawn := protocol.MarshalPacket(idCBSpawnEntity, func(w *bytes.Buffer) {
		protocol.WriteVarInt(w, id)
		protocol.WriteUUID(w, entityUUID)
		protocol.WriteVarInt(w, typeID)
		protocol.WriteDouble(w, x)
		protocol.WriteDouble(w, y)
		protocol.WriteDouble(w, z)
		protocol.WriteAngle(w, 0)
		protocol.WriteAngle(w, 0)
		protocol.WriteAngle(w, 0)
		protocol.WriteVarInt(w, 0)
		protocol.WriteShort(w, 0)
		protocol.WriteShort(w, 0)
		protocol.WriteShort(w, 0)
	})
	velocity := protocol.MarshalPacket(idCBSetEntityVelocity, func(w *bytes.Buffer) {
		protocol.WriteVarInt(w, id)
		protocol.WriteLpVec3(w, vx, vy, vz)
	})
	for _, v := range s.allPlayers() {
		v.send(spawn)
		v.send(velocity)
	}
}

// worldEventBlockBreak is the World Event id for "block break + block
// break particles and sound"; its data field carries the broken state id.
const worldEventBlockBreak = 2001

func (s *Server) breakBlock(p *Player, pos protocol.Position) {
	broken := s.world.GetBlock(world.BlockPos{X: pos.X, Y: pos.Y, Z: pos.Z})
	s.world.SetBlock(world.BlockPos{X: pos.X, Y: pos.Y, Z: pos.Z}, world.BlockAir)

	viewers := s.viewersOf(pos)
	blockUpdate := protocol.MarshalPacket(idCBBlockUpdate, func(w *bytes.Buffer) {
		protocol.WritePosition(w, pos)
		protocol.WriteVarInt(w, world.BlockAir)
	})
	destroyStage := protocol.MarshalPacket(idCBSetBlockDestroyStage, func(w *bytes.Buffer) {
		protocol.WriteVarInt(w, p.EntityID)
		protocol.WritePosition(w, pos)
		protocol.WriteByte(w, 10) // clears the breaking overlay
	})
	worldEvent := protocol.MarshalPacket(idCBWorldEvent, func(w *bytes.Buffer) {
		protocol.WriteInt(w, worldEventBlockBreak)
		protocol.WritePosition(w, pos)
		protocol.WriteInt(w, broken)
		protocol.WriteBool(w, false) // not global
	})
	for _, v := range viewers {
		v.send(blockUpdate)
		v.send(destroyStage)
		v.send(worldEvent)
	}

	p.mu.Lock()
	p.diggingAt = nil
	p.mu.Unlock()
}

// handleUseItemOn processes Use Item On: the external slot
// container decides what the held item is, so this server only derives the
// target position from location+face and places a fixed representative
// block, exercising the in-scope opcode without modeling item data.
func (s *Server) handleUseItemOn(p *Player, r *bytes.Reader) {
	_, _, err := protocol.ReadVarInt(r) // hand
	if err != nil {
		return
	}
	pos, err := protocol.ReadPosition(r)
	if err != nil {
		return
	}
	face, _, _ := protocol.ReadVarInt(r)
	_, _ = protocol.ReadFloat(r)     // cursor x
	_, _ = protocol.ReadFloat(r)     // cursor y
	_, _ = protocol.ReadFloat(r)     // cursor z
	_, _ = protocol.ReadBool(r)      // inside block
	_, _, _ = protocol.ReadVarInt(r) // sequence

	target := faceOffset(pos, int32(face))
	s.world.SetBlock(world.BlockPos{X: target.X, Y: target.Y, Z: target.Z}, world.BlockDirt)

	viewers := s.viewersOf(target)
	pkt := protocol.MarshalPacket(idCBBlockUpdate, func(w *bytes.Buffer) {
		protocol.WritePosition(w, target)
		protocol.WriteVarInt(w, world.BlockDirt)
	})
	for _, v := range viewers {
		v.send(pkt)
	}
}

// faceOffset steps one block along the given face direction (vanilla
// Direction ids: 0=-Y,1=+Y,2=-Z,3=+Z,4=-X,5=+X).
func faceOffset(pos protocol.Position, face int32) protocol.Position {
	switch face {
	case 0:
		return protocol.Position{X: pos.X, Y: pos.Y - 1, Z: pos.Z}
	case 1:
		return protocol.Position{X: pos.X, Y: pos.Y + 1, Z: pos.Z}
	case 2:
		return protocol.Position{X: pos.X, Y: pos.Y, Z: pos.Z - 1}
	case 3:
		return protocol.Position{X: pos.X, Y: pos.Y, Z: pos.Z + 1}
	case 4:
		return protocol.Position{X: pos.X - 1, Y: pos.Y, Z: pos.Z}
	case 5:
		return protocol.Position{X: pos.X + 1, Y: pos.Y, Z: pos.Z}
	default:
		return pos
	}
}

// viewersOf returns every connected player whose loaded-chunk set covers
// the column containing pos, the server's notion of "viewers in range" for
// block events.
func (s *Server) viewersOf(pos protocol.Position) []*Player {
	col := streamer.Pos{X: pos.X >> 4, Z: pos.Z >> 4}
	var out []*Player
	for _, p := range s.allPlayers() {
		p.mu.Lock()
		loaded := p.loadedChunks[col]
		p.mu.Unlock()
		if loaded {
			out = append(out, p)
		}
	}
	return out
}

// broadcastAnimation publishes Entity Animation (swing main arm) to every
// other connected player.
func (s *Server) broadcastAnimation(p *Player) {
	pkt := protocol.MarshalPacket(idCBEntityAnimation, func(w *bytes.Buffer) {
		protocol.WriteVarInt(w, p.EntityID)
		protocol.WriteByte(w, 0) // swing main arm
	})
	for _, other := range s.otherPlayers(p.EntityID) {
		other.send(pkt)
	}
}
