package server

import (
	"bytes"
	"log"
	"time"

	"github.com/StoreStation/VibeCraft/pkg/protocol"
)

// KeepAliveInterval is how often a connected player's keep-alive task
// emits a fresh nonce.
const KeepAliveInterval = 10 * time.Second

// keepAliveLoop emits clientbound Keep Alive every 10s with a fresh
// millisecond-epoch nonce, retaining only the most recently sent one.
// The task is cancelled via p.ctx on disconnect.
func (s *Server) keepAliveLoop(p *Player) {
	ticker := time.NewTicker(KeepAliveInterval)
	defer ticker.Stop()
	for {
		select {
		case <-p.ctx.Done():
			return
		case now := <-ticker.C:
			nonce := now.UnixMilli()
			p.mu.Lock()
			p.keepAliveNonce = nonce
			p.mu.Unlock()
			pkt := protocol.MarshalPacket(idCBKeepAlive, func(w *bytes.Buffer) {
				protocol.WriteLong(w, nonce)
			})
			if err := p.send(pkt); err != nil {
				return
			}
		}
	}
}

// handleKeepAliveResponse matches a serverbound Keep Alive against the
// retained nonce; a mismatch is logged but not fatal.
func (s *Server) handleKeepAliveResponse(p *Player, r *bytes.Reader) {
	nonce, err := protocol.ReadLong(r)
	if err != nil {
		return
	}
	p.mu.Lock()
	expected := p.keepAliveNonce
	p.mu.Unlock()
	if nonce != expected {
		log.Printf("server: keep-alive mismatch from %s (got %d, want %d)", p.Username, nonce, expected)
	}
}
