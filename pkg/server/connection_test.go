package server

import (
	"bytes"
	"net"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/StoreStation/VibeCraft/pkg/protocol"
	"github.com/StoreStation/VibeCraft/pkg/registry"
)

// readPackets drains conn into ch until conn is closed or the test ends.
func readPackets(conn net.Conn, ch chan<- *protocol.Packet) {
	for {
		pkt, err := protocol.ReadPacket(conn)
		if err != nil {
			close(ch)
			return
		}
		ch <- pkt
	}
}

func nextPacket(t *testing.T, ch <-chan *protocol.Packet) *protocol.Packet {
	t.Helper()
	select {
	case pkt, ok := <-ch:
		if !ok {
			t.Fatal("connection closed before expected packet arrived")
		}
		return pkt
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a packet")
		return nil
	}
}

// TestPlayEntryOrdering drives a single connection through handshake, login
// and configuration, then asserts the fixed PLAY-entry packet sequence:
// Login(play), Synchronize Player Position, Update
// Time, Game Event(13), then exactly one Chunk Data packet per column in
// the synchronous 3x3 spawn batch, all before anything else, since this
// single-player test never starts the world-time loop or a second peer
// that could interleave other traffic.
func TestPlayEntryOrdering(t *testing.T) {
	s := NewWithWorld(DefaultConfig(), newTestWorld(), registry.Default())

	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()

	go s.handleConnection(serverConn)

	ch := make(chan *protocol.Packet, 64)
	go readPackets(clientConn, ch)

	// Handshaking.
	mustWrite(t, clientConn, protocol.MarshalPacket(idHandshake, func(w *bytes.Buffer) {
		protocol.WriteVarInt(w, protocol.ProtocolVersion)
		protocol.WriteString(w, "localhost")
		protocol.WriteUnsignedShort(w, 25565)
		protocol.WriteVarInt(w, 2) // login intent
	}))

	// Login. Login Success must echo the UUID the client sent in Login
	// Start, not a server-derived one.
	clientUUID := uuid.New()
	mustWrite(t, clientConn, protocol.MarshalPacket(idLoginStart, func(w *bytes.Buffer) {
		protocol.WriteString(w, "relic")
		protocol.WriteUUID(w, clientUUID)
	}))
	loginSuccess := nextPacket(t, ch)
	if loginSuccess.ID != idLoginSuccess {
		t.Fatalf("first packet id = 0x%02X, want Login Success 0x%02X", loginSuccess.ID, idLoginSuccess)
	}
	gotUUID, err := protocol.ReadUUID(bytes.NewReader(loginSuccess.Data))
	if err != nil {
		t.Fatalf("ReadUUID on Login Success: %v", err)
	}
	if gotUUID != clientUUID {
		t.Fatalf("Login Success uuid = %v, want client-supplied %v", gotUUID, clientUUID)
	}
	mustWrite(t, clientConn, protocol.MarshalPacket(idLoginAcknowledged, func(w *bytes.Buffer) {}))

	// Configuration: Known Packs + one Registry Data per required registry
	// + Finish Configuration, then immediately acknowledge.
	if pkt := nextPacket(t, ch); pkt.ID != idClientboundKnownPacks {
		t.Fatalf("configuration packet id = 0x%02X, want Known Packs 0x%02X", pkt.ID, idClientboundKnownPacks)
	}
	for range registry.RequiredRegistries {
		if pkt := nextPacket(t, ch); pkt.ID != idRegistryData {
			t.Fatalf("configuration packet id = 0x%02X, want Registry Data 0x%02X", pkt.ID, idRegistryData)
		}
	}
	if pkt := nextPacket(t, ch); pkt.ID != idFinishConfiguration {
		t.Fatalf("configuration packet id = 0x%02X, want Finish Configuration 0x%02X", pkt.ID, idFinishConfiguration)
	}
	mustWrite(t, clientConn, protocol.MarshalPacket(idAckFinishConfiguration, func(w *bytes.Buffer) {}))

	// Play entry, in the fixed order enterPlay emits.
	wantOrder := []int32{idCBLogin, idCBSynchronizePlayerPosition, idCBUpdateTime, idCBGameEvent}
	for _, want := range wantOrder {
		if pkt := nextPacket(t, ch); pkt.ID != want {
			t.Fatalf("play-entry packet id = 0x%02X, want 0x%02X", pkt.ID, want)
		}
	}

	chunkCount := 0
	for chunkCount < 9 {
		pkt := nextPacket(t, ch)
		if pkt.ID != idCBChunkDataAndUpdateLight {
			t.Fatalf("packet id = 0x%02X while draining the spawn batch, want Chunk Data 0x%02X", pkt.ID, idCBChunkDataAndUpdateLight)
		}
		chunkCount++
	}
}

func mustWrite(t *testing.T, conn net.Conn, pkt *protocol.Packet) {
	t.Helper()
	if err := protocol.WritePacket(conn, pkt); err != nil {
		t.Fatalf("write packet 0x%02X: %v", pkt.ID, err)
	}
}
