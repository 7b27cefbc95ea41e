package server

import (
	"bytes"
	"sync/atomic"
	"time"

	"github.com/StoreStation/VibeCraft/pkg/protocol"
)

// TickInterval is the server's tick rate: 20 ticks/second, the vanilla
// rate.
const TickInterval = 50 * time.Millisecond

// ticksPerDay bounds the wrapping time-of-day counter.
const ticksPerDay = 24000

// worldTimeLoop advances the world tick counter once per tick and
// publishes Update Time to every connected player. The loop runs for the
// server's lifetime and stops when the server's context is cancelled.
func (s *Server) worldTimeLoop() {
	ticker := time.NewTicker(TickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			atomic.AddInt64(&s.worldTick, 1)
			for _, p := range s.allPlayers() {
				s.sendUpdateTime(p)
			}
		}
	}
}

func (s *Server) sendUpdateTime(p *Player) {
	tick := atomic.LoadInt64(&s.worldTick)
	timeOfDay := tick % ticksPerDay
	pkt := protocol.MarshalPacket(idCBUpdateTime, func(w *bytes.Buffer) {
		protocol.WriteLong(w, tick)
		protocol.WriteLong(w, timeOfDay)
	})
	p.send(pkt)
}
