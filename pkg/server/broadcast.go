package server

import (
	"bytes"

	"github.com/StoreStation/VibeCraft/pkg/entity"
	"github.com/StoreStation/VibeCraft/pkg/protocol"
	"github.com/StoreStation/VibeCraft/pkg/registry"
)

// broadcaster is the concrete entity.Broadcaster the visibility manager
// drives: it looks up the viewer's live connection by UUID and writes the
// matching entity packet. pkg/entity never touches net.Conn directly; this
// is the only place a UUID turns back into a connection.
type broadcaster struct {
	s *Server
}

func (b *broadcaster) viewerConn(viewer [16]byte) (*Player, bool) {
	return b.s.playerByUUID(viewer)
}

func (b *broadcaster) SpawnEntity(viewer [16]byte, e *entity.Entity) {
	p, ok := b.viewerConn(viewer)
	if !ok {
		return
	}
	typeID := registry.EntityTypeProtocolID[e.TypeName]
	pkt := protocol.MarshalPacket(idCBSpawnEntity, func(w *bytes.Buffer) {
		protocol.WriteVarInt(w, e.ID)
		protocol.WriteUUID(w, e.UUID)
		protocol.WriteVarInt(w, typeID)
		protocol.WriteDouble(w, e.Pose.X)
		protocol.WriteDouble(w, e.Pose.Y)
		protocol.WriteDouble(w, e.Pose.Z)
		protocol.WriteAngle(w, protocol.AngleFromDegrees(float64(e.Pose.Pitch)))
		protocol.WriteAngle(w, protocol.AngleFromDegrees(float64(e.Pose.Yaw)))
		protocol.WriteAngle(w, protocol.AngleFromDegrees(float64(e.Pose.HeadYaw)))
		protocol.WriteVarInt(w, 0) // data
		protocol.WriteShort(w, 0)  // velocity x
		protocol.WriteShort(w, 0)  // velocity y
		protocol.WriteShort(w, 0)  // velocity z
	})
	p.send(pkt)
}

func (b *broadcaster) RemoveEntities(viewer [16]byte, entityID int32) {
	p, ok := b.viewerConn(viewer)
	if !ok {
		return
	}
	pkt := protocol.MarshalPacket(idCBRemoveEntities, func(w *bytes.Buffer) {
		protocol.WriteVarInt(w, 1)
		protocol.WriteVarInt(w, entityID)
	})
	p.send(pkt)
}

func (b *broadcaster) TeleportEntity(viewer [16]byte, entityID int32, pose entity.Pose) {
	p, ok := b.viewerConn(viewer)
	if !ok {
		return
	}
	pkt := protocol.MarshalPacket(idCBTeleportEntity, func(w *bytes.Buffer) {
		protocol.WriteVarInt(w, entityID)
		protocol.WriteDouble(w, pose.X)
		protocol.WriteDouble(w, pose.Y)
		protocol.WriteDouble(w, pose.Z)
		protocol.WriteDouble(w, 0) // velocity x
		protocol.WriteDouble(w, 0) // velocity y
		protocol.WriteDouble(w, 0) // velocity z
		protocol.WriteAngle(w, protocol.AngleFromDegrees(float64(pose.Yaw)))
		protocol.WriteAngle(w, protocol.AngleFromDegrees(float64(pose.Pitch)))
		protocol.WriteBool(w, true) // on ground
	})
	p.send(pkt)
}

func (b *broadcaster) UpdatePositionRotation(viewer [16]byte, entityID int32, dx, dy, dz int16, yaw, pitch float32) {
	p, ok := b.viewerConn(viewer)
	if !ok {
		return
	}
	pkt := protocol.MarshalPacket(idCBUpdateEntityPositionRotation, func(w *bytes.Buffer) {
		protocol.WriteVarInt(w, entityID)
		protocol.WriteShort(w, dx)
		protocol.WriteShort(w, dy)
		protocol.WriteShort(w, dz)
		protocol.WriteAngle(w, protocol.AngleFromDegrees(float64(yaw)))
		protocol.WriteAngle(w, protocol.AngleFromDegrees(float64(pitch)))
		protocol.WriteBool(w, true) // on ground
	})
	p.send(pkt)
}

func (b *broadcaster) UpdateRotation(viewer [16]byte, entityID int32, yaw, pitch float32) {
	p, ok := b.viewerConn(viewer)
	if !ok {
		return
	}
	pkt := protocol.MarshalPacket(idCBUpdateEntityRotation, func(w *bytes.Buffer) {
		protocol.WriteVarInt(w, entityID)
		protocol.WriteAngle(w, protocol.AngleFromDegrees(float64(yaw)))
		protocol.WriteAngle(w, protocol.AngleFromDegrees(float64(pitch)))
		protocol.WriteBool(w, true)
	})
	p.send(pkt)
}

func (b *broadcaster) RotateHead(viewer [16]byte, entityID int32, headYaw float32) {
	p, ok := b.viewerConn(viewer)
	if !ok {
		return
	}
	pkt := protocol.MarshalPacket(idCBRotateHead, func(w *bytes.Buffer) {
		protocol.WriteVarInt(w, entityID)
		protocol.WriteAngle(w, protocol.AngleFromDegrees(float64(headYaw)))
	})
	p.send(pkt)
}

func (b *broadcaster) PlayerInfoRemove(viewer [16]byte, target [16]byte) {
	p, ok := b.viewerConn(viewer)
	if !ok {
		return
	}
	pkt := protocol.MarshalPacket(idCBPlayerInfoRemove, func(w *bytes.Buffer) {
		protocol.WriteVarInt(w, 1)
		protocol.WriteUUID(w, target)
	})
	p.send(pkt)
}

// sendPlayerInfoAdd emits a Player Info Update(Add Player|Update Listed)
// entry for target to viewer.
func (s *Server) sendPlayerInfoAdd(viewer *Player, target *Player) {
	pkt := protocol.MarshalPacket(idCBPlayerInfoUpdate, func(w *bytes.Buffer) {
		protocol.WriteByte(w, playerInfoActionAddPlayer|playerInfoActionUpdateListed)
		protocol.WriteVarInt(w, 1)
		protocol.WriteUUID(w, target.UUID)
		protocol.WriteString(w, target.Username)
		protocol.WriteVarInt(w, 0)  // properties
		protocol.WriteBool(w, true) // listed
	})
	viewer.send(pkt)
}
