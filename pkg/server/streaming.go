package server

import (
	"bytes"
	"time"

	"github.com/StoreStation/VibeCraft/pkg/protocol"
	"github.com/StoreStation/VibeCraft/pkg/streamer"
	"github.com/StoreStation/VibeCraft/pkg/world"
)

// ViewDistance is the reference radius (in chunks) a player's streamer
// keeps loaded absent a configured override: 10 chunks yields a 21x21 =
// 441-column square.
const ViewDistance = 10

// viewDistance returns the server's configured view-distance radius,
// falling back to the reference value for a zero-value Config (e.g. one
// built directly rather than through DefaultConfig).
func (s *Server) viewDistance() int32 {
	if s.config.ViewDistance <= 0 {
		return ViewDistance
	}
	return s.config.ViewDistance
}

// drainerPoll is how often the debounce drainer checks whether a pending
// desired-set update has cleared the debounce window.
const drainerPoll = 100 * time.Millisecond

// desiredSquare returns every chunk position within radius (Chebyshev) of
// (cx,cz), used for both the 3x3 spawn batch (radius 1) and the full view
// distance square.
func desiredSquare(cx, cz, radius int32) []streamer.Pos {
	out := make([]streamer.Pos, 0, (2*radius+1)*(2*radius+1))
	for x := cx - radius; x <= cx+radius; x++ {
		for z := cz - radius; z <= cz+radius; z++ {
			out = append(out, streamer.Pos{X: x, Z: z})
		}
	}
	return out
}

// encodeChunk realizes (generating if necessary) and encodes one column
// into the wire-ready payload the worker pool ships.
func (s *Server) encodeChunk(pos streamer.Pos) (streamer.ColumnData, error) {
	col := s.world.GetOrCreateColumn(world.ColumnPos{X: pos.X, Z: pos.Z})
	blockData, err := world.EncodeColumnData(col)
	if err != nil {
		return streamer.ColumnData{}, err
	}
	hm := col.Heightmap()
	return streamer.ColumnData{
		BlockData: blockData,
		Heightmap: world.EncodeHeightmap(hm),
		Light:     world.EncodeLight(hm),
	}, nil
}

// sendChunk ships a Chunk Data and Update Light packet to p.
func (s *Server) sendChunk(p *Player, pos streamer.Pos, data streamer.ColumnData) {
	light, _ := data.Light.(*world.LightData)
	pkt := protocol.MarshalPacket(idCBChunkDataAndUpdateLight, func(w *bytes.Buffer) {
		protocol.WriteInt(w, pos.X)
		protocol.WriteInt(w, pos.Z)

		protocol.WriteVarInt(w, int32(len(data.Heightmap)))
		for _, l := range data.Heightmap {
			protocol.WriteLong(w, l)
		}

		protocol.WriteVarInt(w, int32(len(data.BlockData)))
		w.Write(data.BlockData)
		protocol.WriteVarInt(w, 0) // block entities

		if light != nil {
			protocol.WriteBitSet(w, light.SkyLightMask)
			protocol.WriteBitSet(w, light.BlockLightMask)
			protocol.WriteBitSet(w, light.EmptySkyLightMask)
			protocol.WriteBitSet(w, light.EmptyBlockLightMask)
			protocol.WriteVarInt(w, int32(len(light.SkyLightArrays)))
			for _, arr := range light.SkyLightArrays {
				protocol.WriteVarInt(w, int32(len(arr)))
				w.Write(arr[:])
			}
			protocol.WriteVarInt(w, 0) // block light arrays: always empty
		}
	})
	p.send(pkt)
}

// startStreamer wires up one player's request manager, worker pool, health
// monitor and debounce drainer, all cancelled together when
// p.ctx is cancelled on disconnect.
func (s *Server) startStreamer(p *Player) {
	p.reqMgr = streamer.NewRequestManager(p.EntityID)
	p.workers = streamer.NewWorkerPool(p.reqMgr, s.encodeChunk, func(pos streamer.Pos, data streamer.ColumnData) {
		s.sendChunk(p, pos, data)
		p.mu.Lock()
		if p.loadedChunks == nil {
			p.loadedChunks = make(map[streamer.Pos]bool)
		}
		p.loadedChunks[pos] = true
		p.mu.Unlock()
	})
	p.health = streamer.NewHealthMonitor(p.reqMgr)

	// Columns leaving the desired set come off the loaded sets too, so
	// block-event broadcasts stop targeting a column the client has since
	// dropped. The client unloads out-of-range chunks on its own; no
	// unload packet is sent.
	p.reqMgr.SetUnloadFunc(func(removed []streamer.Pos) {
		p.mu.Lock()
		for _, pos := range removed {
			delete(p.loadedChunks, pos)
		}
		p.mu.Unlock()
		for _, pos := range removed {
			p.workers.Unload(pos)
		}
	})

	go p.workers.Run(p.ctx)
	go p.health.Run(p.ctx)
	go s.debounceDrainer(p)
}

// debounceDrainer polls ProcessPendingUpdates every 100ms so a desired-set
// change installs once its debounce window elapses, without per-update
// timers.
func (s *Server) debounceDrainer(p *Player) {
	ticker := time.NewTicker(drainerPoll)
	defer ticker.Stop()
	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			cp := p.chunkPos()
			if p.reqMgr.ProcessPendingUpdates(cp.X, cp.Z) {
				p.workers.SetPlayerChunk(cp.X, cp.Z)
			}
		}
	}
}

// sendSpawnBatch installs and synchronously waits for the 3x3 spawn-chunk
// square, bypassing the debounce window, then widens the desired set to
// the full view-distance square for the drainer to pick up normally. The
// wait is bounded at 5s.
func (s *Server) sendSpawnBatch(p *Player, spawnCx, spawnCz int32) {
	spawnSet := desiredSquare(spawnCx, spawnCz, 1)
	p.reqMgr.UpdateDesiredChunks(spawnSet)
	p.reqMgr.ProcessUpdatesImmediately()
	p.workers.SetPlayerChunk(spawnCx, spawnCz)

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if allLoaded(p.workers, spawnSet) {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	full := desiredSquare(spawnCx, spawnCz, s.viewDistance())
	p.reqMgr.UpdateDesiredChunks(full)
}

func allLoaded(pool *streamer.WorkerPool, want []streamer.Pos) bool {
	for _, pos := range want {
		if !pool.IsLoaded(pos) {
			return false
		}
	}
	return true
}
