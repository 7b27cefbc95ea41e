package entity

import (
	"math"
	"sync"

	"github.com/StoreStation/VibeCraft/pkg/protocol"
)

// ViewRadius is the Euclidean distance (in blocks) within which a player
// keeps another entity in its visible set.
const ViewRadius = 48.0

// teleportThreshold is the absolute per-axis delta (blocks) above which a
// move is sent as an absolute Teleport Entity instead of a delta, which
// caps the delta encoding at a magnitude 16-bit signed can hold.
const teleportThreshold = 8.0

// pairKey identifies one (viewer, target) visibility record. Caches are
// keyed by the viewer's UUID rather than a pointer so no ownership cycle
// between viewer and target can form.
type pairKey struct {
	viewerHi uint64
	viewerLo uint64
	target   int32
}

func keyFor(viewer [16]byte, target int32) pairKey {
	var hi, lo uint64
	for i := 0; i < 8; i++ {
		hi = hi<<8 | uint64(viewer[i])
	}
	for i := 8; i < 16; i++ {
		lo = lo<<8 | uint64(viewer[i])
	}
	return pairKey{viewerHi: hi, viewerLo: lo, target: target}
}

type posSnapshot struct{ x, y, z float64 }
type rotSnapshot struct{ yaw, pitch float32 }

// Broadcaster is the interface the visibility manager drives to actually
// put bytes on a viewer's wire. The server package supplies the concrete
// implementation (one that looks up the viewer's connection and writes a
// packet); this package never touches net.Conn directly.
type Broadcaster interface {
	SpawnEntity(viewer [16]byte, e *Entity)
	RemoveEntities(viewer [16]byte, entityID int32)
	TeleportEntity(viewer [16]byte, entityID int32, pose Pose)
	UpdatePositionRotation(viewer [16]byte, entityID int32, dx, dy, dz int16, yaw, pitch float32)
	UpdateRotation(viewer [16]byte, entityID int32, yaw, pitch float32)
	RotateHead(viewer [16]byte, entityID int32, headYaw float32)
	PlayerInfoRemove(viewer [16]byte, target [16]byte)
}

// Manager tracks, for each ordered (viewer, target) pair currently within
// range, the last position/rotation/head-yaw sent to the viewer. The three
// caches are independently locked and always acquired position → rotation
// → head-yaw, so no code path can deadlock against another that
// also follows that order.
type Manager struct {
	broadcaster Broadcaster

	posMu    sync.Mutex
	posCache map[pairKey]posSnapshot

	rotMu    sync.Mutex
	rotCache map[pairKey]rotSnapshot

	headMu    sync.Mutex
	headCache map[pairKey]float32

	// visible[viewerUUID] = set of target entity ids the viewer currently sees.
	visMu   sync.Mutex
	visible map[[16]byte]map[int32]bool
}

func NewManager(b Broadcaster) *Manager {
	return &Manager{
		broadcaster: b,
		posCache:    make(map[pairKey]posSnapshot),
		rotCache:    make(map[pairKey]rotSnapshot),
		headCache:   make(map[pairKey]float32),
		visible:     make(map[[16]byte]map[int32]bool),
	}
}

func dist(ax, ay, az, bx, by, bz float64) float64 {
	dx, dy, dz := ax-bx, ay-by, az-bz
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

func inRange(a, b Pose) bool {
	return dist(a.X, a.Y, a.Z, b.X, b.Y, b.Z) <= ViewRadius
}

// Join introduces a newly connected player to every other currently known
// player: for every ordered pair within range, seeds both directions'
// caches and emits a Spawn Entity.
func (m *Manager) Join(newPlayer *Entity, others []*Entity) {
	for _, other := range others {
		if other.ID == newPlayer.ID {
			continue
		}
		if inRange(newPlayer.Pose, other.Pose) {
			m.seedAndSpawn(newPlayer.UUID, other)
		}
		if inRange(other.Pose, newPlayer.Pose) {
			m.seedAndSpawn(other.UUID, newPlayer)
		}
	}
}

func (m *Manager) seedAndSpawn(viewer protocol.UUID, target *Entity) {
	k := keyFor(viewer, target.ID)

	m.posMu.Lock()
	m.posCache[k] = posSnapshot{target.Pose.X, target.Pose.Y, target.Pose.Z}
	m.posMu.Unlock()

	m.rotMu.Lock()
	m.rotCache[k] = rotSnapshot{target.Pose.Yaw, target.Pose.Pitch}
	m.rotMu.Unlock()

	m.headMu.Lock()
	m.headCache[k] = target.Pose.HeadYaw
	m.headMu.Unlock()

	m.visMu.Lock()
	if m.visible[viewer] == nil {
		m.visible[viewer] = make(map[int32]bool)
	}
	m.visible[viewer][target.ID] = true
	m.visMu.Unlock()

	m.broadcaster.SpawnEntity(viewer, target)
}

// Move updates every viewer that has mover visible, emitting a Teleport
// Entity when any axis delta is ≥ 8.0, otherwise a delta-encoded Update
// Entity Position and Rotation, followed by a Rotate Head if the cached
// head yaw changed enough.
func (m *Manager) Move(mover *Entity, viewers []*Entity) {
	for _, viewer := range viewers {
		if viewer.ID == mover.ID {
			continue
		}
		m.moveForViewer(viewer.UUID, mover)
	}
}

func (m *Manager) moveForViewer(viewer protocol.UUID, mover *Entity) {
	k := keyFor(viewer, mover.ID)

	// Range transitions are handled by UpdateRange, called by the server
	// package alongside Move on every movement event; here we only push movement to
	// viewers that already have mover visible.
	m.visMu.Lock()
	wasVisible := m.visible[viewer] != nil && m.visible[viewer][mover.ID]
	m.visMu.Unlock()

	if !wasVisible {
		return
	}

	m.posMu.Lock()
	last, ok := m.posCache[k]
	if !ok {
		m.posCache[k] = posSnapshot{mover.Pose.X, mover.Pose.Y, mover.Pose.Z}
		m.posMu.Unlock()
		return
	}
	dx := mover.Pose.X - last.x
	dy := mover.Pose.Y - last.y
	dz := mover.Pose.Z - last.z
	teleport := math.Abs(dx) >= teleportThreshold || math.Abs(dy) >= teleportThreshold || math.Abs(dz) >= teleportThreshold

	if teleport {
		m.posCache[k] = posSnapshot{mover.Pose.X, mover.Pose.Y, mover.Pose.Z}
		m.posMu.Unlock()
		m.broadcaster.TeleportEntity(viewer, mover.ID, mover.Pose)
	} else {
		m.posCache[k] = posSnapshot{mover.Pose.X, mover.Pose.Y, mover.Pose.Z}
		m.posMu.Unlock()
		encDx := int16(math.Round(dx * 4096))
		encDy := int16(math.Round(dy * 4096))
		encDz := int16(math.Round(dz * 4096))
		m.broadcaster.UpdatePositionRotation(viewer, mover.ID, encDx, encDy, encDz, mover.Pose.Yaw, mover.Pose.Pitch)
	}

	m.rotMu.Lock()
	m.rotCache[k] = rotSnapshot{mover.Pose.Yaw, mover.Pose.Pitch}
	m.rotMu.Unlock()

	m.headMu.Lock()
	cachedHead, ok := m.headCache[k]
	headChanged := !ok || math.Abs(float64(cachedHead-mover.Pose.HeadYaw)) > 0.01
	if headChanged {
		m.headCache[k] = mover.Pose.HeadYaw
	}
	m.headMu.Unlock()

	if headChanged {
		m.broadcaster.RotateHead(viewer, mover.ID, mover.Pose.HeadYaw)
	}
}

// Rotate pushes a rotation-only move (Set Player Rotation, no position
// change) to every viewer that has mover visible, emitting Update Entity
// Rotation followed by the same Rotate Head check a positional move gets.
func (m *Manager) Rotate(mover *Entity, viewers []*Entity) {
	for _, viewer := range viewers {
		if viewer.ID == mover.ID {
			continue
		}
		m.rotateForViewer(viewer.UUID, mover)
	}
}

func (m *Manager) rotateForViewer(viewer protocol.UUID, mover *Entity) {
	k := keyFor(viewer, mover.ID)

	m.visMu.Lock()
	wasVisible := m.visible[viewer] != nil && m.visible[viewer][mover.ID]
	m.visMu.Unlock()

	if !wasVisible {
		return
	}

	m.rotMu.Lock()
	m.rotCache[k] = rotSnapshot{mover.Pose.Yaw, mover.Pose.Pitch}
	m.rotMu.Unlock()
	m.broadcaster.UpdateRotation(viewer, mover.ID, mover.Pose.Yaw, mover.Pose.Pitch)

	m.headMu.Lock()
	cachedHead, ok := m.headCache[k]
	headChanged := !ok || math.Abs(float64(cachedHead-mover.Pose.HeadYaw)) > 0.01
	if headChanged {
		m.headCache[k] = mover.Pose.HeadYaw
	}
	m.headMu.Unlock()

	if headChanged {
		m.broadcaster.RotateHead(viewer, mover.ID, mover.Pose.HeadYaw)
	}
}

// UpdateRange re-evaluates whether mover is in range of viewer, emitting
// Spawn Entity / Remove Entities as the pair crosses the view radius.
func (m *Manager) UpdateRange(viewer *Entity, mover *Entity) {
	k := keyFor(viewer.UUID, mover.ID)
	within := inRange(viewer.Pose, mover.Pose)

	m.visMu.Lock()
	set := m.visible[viewer.UUID]
	wasVisible := set != nil && set[mover.ID]
	m.visMu.Unlock()

	if within && !wasVisible {
		m.seedAndSpawn(viewer.UUID, mover)
		return
	}
	if !within && wasVisible {
		m.visMu.Lock()
		delete(m.visible[viewer.UUID], mover.ID)
		m.visMu.Unlock()

		m.posMu.Lock()
		delete(m.posCache, k)
		m.posMu.Unlock()
		m.rotMu.Lock()
		delete(m.rotCache, k)
		m.rotMu.Unlock()
		m.headMu.Lock()
		delete(m.headCache, k)
		m.headMu.Unlock()

		m.broadcaster.RemoveEntities(viewer.UUID, mover.ID)
	}
}

// Disconnect removes every cache entry where uuid is either the viewer or
// the target, emitting Player Info Remove and Remove Entities to every
// remaining player, whether or not it had this entity visible.
func (m *Manager) Disconnect(departing *Entity, remaining []*Entity) {
	for _, other := range remaining {
		if other.ID == departing.ID {
			continue
		}
		// Both directions: other watching departing, and departing
		// watching other.
		asTarget := keyFor(other.UUID, departing.ID)
		asViewer := keyFor(departing.UUID, other.ID)

		m.visMu.Lock()
		delete(m.visible[other.UUID], departing.ID)
		delete(m.visible, departing.UUID)
		m.visMu.Unlock()

		m.posMu.Lock()
		delete(m.posCache, asTarget)
		delete(m.posCache, asViewer)
		m.posMu.Unlock()
		m.rotMu.Lock()
		delete(m.rotCache, asTarget)
		delete(m.rotCache, asViewer)
		m.rotMu.Unlock()
		m.headMu.Lock()
		delete(m.headCache, asTarget)
		delete(m.headCache, asViewer)
		m.headMu.Unlock()

		m.broadcaster.PlayerInfoRemove(other.UUID, departing.UUID)
		m.broadcaster.RemoveEntities(other.UUID, departing.ID)
	}
}
