// Package server owns one TCP peer per connection, drives it through the
// handshake/login/configuration/play state machine, and
// coordinates the shared world, chunk-streaming and entity-visibility
// subsystems across every connected player.
//
// Dispatch is a switch on the connection's current phase that hands each
// packet to that phase's handler, which in turn switches on the opcode;
// there is no (phase, opcode) lookup table. The phase only moves forward,
// so a handler of a retired phase is never reached again.
package server

import (
	"context"
	"fmt"
	"log"
	"net"
	"sync"

	"github.com/StoreStation/VibeCraft/pkg/entity"
	"github.com/StoreStation/VibeCraft/pkg/protocol"
	"github.com/StoreStation/VibeCraft/pkg/registry"
	"github.com/StoreStation/VibeCraft/pkg/world"
)

// Config holds the server's command-line/YAML-overlay settings.
type Config struct {
	Address      string
	MaxPlayers   int
	MOTD         string
	Seed         int64
	ViewDistance int32
}

// DefaultConfig returns the stock flag defaults for a local server.
func DefaultConfig() Config {
	return Config{
		Address:      ":25565",
		MaxPlayers:   20,
		MOTD:         "A VibeCraft Server",
		ViewDistance: 10,
	}
}

// Server owns the listener, the shared world and the set of connected
// players. It is never a package-level singleton: every piece of
// mutable state needed to run a world lives on this struct.
type Server struct {
	config   Config
	world    *world.Store
	registry registry.Snapshot
	ids      *entity.IDAllocator
	vis      *entity.Manager

	listener net.Listener

	mu      sync.Mutex
	players map[int32]*Player
	byUUID  map[protocol.UUID]*Player

	ctx    context.Context
	cancel context.CancelFunc

	stopCh chan struct{}

	worldTick int64 // atomic: server tick counter
}

// New builds a Server around a flat-world generator and the default
// registry snapshot. Callers that need a different generator or
// registry snapshot can build one with NewWithWorld.
func New(config Config) *Server {
	return NewWithWorld(config, world.NewStore(world.NewFlatGenerator()), registry.Default())
}

// NewWithWorld allows tests (and alternate deployments) to supply their own
// generator-backed store and registry snapshot without touching Server's
// internals.
func NewWithWorld(config Config, w *world.Store, reg registry.Snapshot) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		config:   config,
		world:    w,
		registry: reg,
		ids:      entity.NewIDAllocator(),
		players:  make(map[int32]*Player),
		byUUID:   make(map[protocol.UUID]*Player),
		ctx:      ctx,
		cancel:   cancel,
		stopCh:   make(chan struct{}),
	}
	s.vis = entity.NewManager(&broadcaster{s})
	return s
}

// Start binds the listener and runs the accept loop until Stop is called.
// TCP_NODELAY is enabled on every accepted peer.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return fmt.Errorf("server: listen %s: %w", s.config.Address, err)
	}
	s.listener = ln
	go s.acceptLoop()
	go s.worldTimeLoop()
	return nil
}

// StopChan lets main select on an internally initiated shutdown alongside
// an OS signal.
func (s *Server) StopChan() <-chan struct{} { return s.stopCh }

// Stop closes the listener and cancels every connection's shutdown token;
// it does not block for in-flight connections to fully drain.
func (s *Server) Stop() {
	s.cancel()
	if s.listener != nil {
		s.listener.Close()
	}
	s.mu.Lock()
	conns := make([]*Player, 0, len(s.players))
	for _, p := range s.players {
		conns = append(conns, p)
	}
	s.mu.Unlock()
	for _, p := range conns {
		p.close()
	}
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.ctx.Done():
				return
			default:
				log.Printf("server: accept error: %v", err)
				return
			}
		}
		if tcp, ok := conn.(*net.TCPConn); ok {
			tcp.SetNoDelay(true)
		}
		go s.handleConnection(conn)
	}
}

func (s *Server) addPlayer(p *Player) {
	s.mu.Lock()
	s.players[p.EntityID] = p
	s.byUUID[p.UUID] = p
	s.mu.Unlock()
}

func (s *Server) removePlayer(p *Player) {
	s.mu.Lock()
	delete(s.players, p.EntityID)
	delete(s.byUUID, p.UUID)
	s.mu.Unlock()
}

func (s *Server) playerByUUID(id protocol.UUID) (*Player, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.byUUID[id]
	return p, ok
}

// otherPlayers returns a snapshot of every connected player except
// exclude; iteration never holds the connections lock.
func (s *Server) otherPlayers(exclude int32) []*Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Player, 0, len(s.players))
	for id, p := range s.players {
		if id != exclude {
			out = append(out, p)
		}
	}
	return out
}

func (s *Server) allPlayers() []*Player {
	return s.otherPlayers(-1)
}

func (s *Server) playerByID(id int32) (*Player, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.players[id]
	return p, ok
}

func toEntities(players []*Player) []*entity.Entity {
	out := make([]*entity.Entity, len(players))
	for i, p := range players {
		out[i] = playerEntity(p)
	}
	return out
}

func playerEntity(p *Player) *entity.Entity {
	return &entity.Entity{ID: p.EntityID, UUID: p.UUID, TypeName: "minecraft:player", Pose: p.Pose()}
}
