package server

import (
	"context"
	"net"
	"sync"

	"github.com/StoreStation/VibeCraft/pkg/entity"
	"github.com/StoreStation/VibeCraft/pkg/protocol"
	"github.com/StoreStation/VibeCraft/pkg/streamer"
)

// Slot is the server's in-memory view of one inventory slot: only the
// fields the server itself ever reads are kept; full item semantics belong
// to the external inventory container.
type Slot struct {
	Empty  bool
	ItemID int32
	Count  int32
}

// Player is one connected player's runtime record: stable identity (UUID,
// username), the fields the play-phase handlers mutate, and the set of
// currently loaded chunks/visible entities that back the streaming and
// visibility subsystems.
type Player struct {
	mu sync.Mutex

	EntityID int32
	UUID     protocol.UUID
	Username string

	Conn  net.Conn
	Phase protocol.Phase

	X, Y, Z  float64
	Yaw      float32
	Pitch    float32
	HeadYaw  float32
	OnGround bool

	ActiveSlot int32 // selected hotbar slot, 0-8
	Inventory  [46]Slot

	teleportID     int32
	keepAliveNonce int64

	loadedChunks   map[streamer.Pos]bool
	lastCx, lastCz int32
	diggingAt      *protocol.Position

	reqMgr  *streamer.RequestManager
	workers *streamer.WorkerPool
	health  *streamer.HealthMonitor

	shutdown  chan struct{}
	closeOnce sync.Once

	// ctx is cancelled on disconnect and propagates to every per-player
	// background task (keep-alive, streamer workers, health
	// monitor, debounce drainer) so a connection's teardown is atomic.
	ctx    context.Context
	cancel context.CancelFunc
}

// newPlayer builds a Player record for a freshly authenticated connection.
// Entity ids come from the server's single IDAllocator; player ids start
// at 1 and are never reused.
func newPlayer(ctx context.Context, conn net.Conn, username string, uuid protocol.UUID, ids *entity.IDAllocator) *Player {
	pctx, cancel := context.WithCancel(ctx)
	p := &Player{
		EntityID: ids.AllocatePlayer(),
		UUID:     uuid,
		Username: username,
		Conn:     conn,
		Phase:    protocol.PhaseHandshaking,
		shutdown: make(chan struct{}),
		ctx:      pctx,
		cancel:   cancel,
	}
	for i := range p.Inventory {
		p.Inventory[i] = Slot{Empty: true}
	}
	return p
}

// Pose snapshots the player's current position/rotation as an entity.Pose.
func (p *Player) Pose() entity.Pose {
	p.mu.Lock()
	defer p.mu.Unlock()
	return entity.Pose{X: p.X, Y: p.Y, Z: p.Z, Yaw: p.Yaw, Pitch: p.Pitch, HeadYaw: p.HeadYaw}
}

func (p *Player) chunkPos() streamer.Pos {
	p.mu.Lock()
	defer p.mu.Unlock()
	return streamer.Pos{X: int32(p.X) >> 4, Z: int32(p.Z) >> 4}
}

// send writes a packet to the player's connection. One writer at a time
// owns the socket; the mutex here serializes the
// handler goroutine against the streamer workers and background loops that
// also write to this player.
func (p *Player) send(pkt *protocol.Packet) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return protocol.WritePacket(p.Conn, pkt)
}

func (p *Player) close() {
	p.closeOnce.Do(func() {
		p.cancel()
		close(p.shutdown)
		p.Conn.Close()
	})
}
