// Package entity holds the abstract entity record and the per-player
// visibility/broadcast manager that turns movement into delta-encoded
// wire packets for the peers that can see it.
package entity

import (
	"sync/atomic"

	"github.com/StoreStation/VibeCraft/pkg/protocol"
)

// Pose is an entity's position and look.
type Pose struct {
	X, Y, Z    float64
	Yaw, Pitch float32
	HeadYaw    float32
}

// Velocity is an entity's per-axis velocity, in blocks per tick.
type Velocity struct {
	VX, VY, VZ float64
}

// Entity is the abstract in-world record: an id, UUID, a registry-backed
// type, a pose and a velocity. Players are the only concrete kind the
// server drives, but dropped items are spawned as entities too.
type Entity struct {
	ID       int32
	UUID     protocol.UUID
	TypeName string // entity_type registry name, e.g. "minecraft:player"
	Pose     Pose
	Velocity Velocity
}

// idAllocator hands out entity ids that are never reused for the life of
// the process: players from 1 upward, other entities from 1000 upward.
type idAllocator struct {
	nextPlayer    int64
	nextNonPlayer int64
}

func newIDAllocator() *idAllocator {
	return &idAllocator{nextPlayer: 1, nextNonPlayer: 1000}
}

func (a *idAllocator) allocatePlayer() int32 {
	return int32(atomic.AddInt64(&a.nextPlayer, 1) - 1)
}

func (a *idAllocator) allocateNonPlayer() int32 {
	return int32(atomic.AddInt64(&a.nextNonPlayer, 1) - 1)
}

// IDAllocator is the process-wide entity id source. It is a field on the
// world/server, never a hidden package-level singleton.
type IDAllocator struct {
	inner *idAllocator
}

func NewIDAllocator() *IDAllocator {
	return &IDAllocator{inner: newIDAllocator()}
}

func (a *IDAllocator) AllocatePlayer() int32    { return a.inner.allocatePlayer() }
func (a *IDAllocator) AllocateNonPlayer() int32 { return a.inner.allocateNonPlayer() }
