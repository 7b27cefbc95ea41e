package streamer

import (
	"context"
	"sync"
	"time"
)

// NumWorkers is the fixed worker-pool size.
const NumWorkers = 6

// pollInterval bounds how long an idle worker waits before re-checking the
// queue even without a wake signal, so a wake signal that reaches only one
// worker still lets the others drain the rest of a batch promptly.
const pollInterval = 50 * time.Millisecond

// ColumnData is the encoded payload a worker ships for one chunk column.
type ColumnData struct {
	BlockData []byte
	Heightmap []int64
	Light     any
}

// EncodeFunc produces the wire-ready payload for a chunk column. The
// server wires this to the world store's GetOrCreateColumn plus
// pkg/world's EncodeColumnData/EncodeHeightmap/EncodeLight.
type EncodeFunc func(pos Pos) (ColumnData, error)

// SendFunc ships an encoded column (Chunk Data + Update Light) to the
// viewer. The server wires this to the player's connection writer.
type SendFunc func(pos Pos, data ColumnData)

// WorkerPool pulls QUEUED requests from a RequestManager, encodes them and
// ships the result, nearest-to-the-player first.
type WorkerPool struct {
	manager *RequestManager
	encode  EncodeFunc
	send    SendFunc

	mu       sync.Mutex
	playerCx int32
	playerCz int32

	loadedMu sync.Mutex
	loaded   map[Pos]bool
}

// NewWorkerPool builds a pool bound to one player's request manager.
func NewWorkerPool(manager *RequestManager, encode EncodeFunc, send SendFunc) *WorkerPool {
	return &WorkerPool{
		manager: manager,
		encode:  encode,
		send:    send,
		loaded:  make(map[Pos]bool),
	}
}

// SetPlayerChunk updates the chunk coordinate workers sort distance
// against; the caller updates this whenever the player crosses a chunk
// boundary.
func (p *WorkerPool) SetPlayerChunk(cx, cz int32) {
	p.mu.Lock()
	p.playerCx, p.playerCz = cx, cz
	p.mu.Unlock()
}

func (p *WorkerPool) playerChunk() (int32, int32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playerCx, p.playerCz
}

// Run starts NumWorkers goroutines and blocks until ctx is cancelled.
func (p *WorkerPool) Run(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(NumWorkers)
	for i := 0; i < NumWorkers; i++ {
		go func() {
			defer wg.Done()
			p.runWorker(ctx)
		}()
	}
	wg.Wait()
}

func (p *WorkerPool) runWorker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		cx, cz := p.playerChunk()
		req, ok := p.manager.NextQueued(cx, cz)
		if !ok {
			select {
			case <-ctx.Done():
				return
			case <-p.manager.Wake():
			case <-time.After(pollInterval):
			}
			continue
		}

		p.process(req)
	}
}

func (p *WorkerPool) process(req *Request) {
	if !p.manager.IsDesired(req.Pos) {
		p.manager.MarkDone(req.Pos)
		return
	}

	data, err := p.encode(req.Pos)
	if err != nil {
		p.manager.MarkDone(req.Pos)
		return
	}

	if p.manager.IsCancelled(req.Pos) {
		p.manager.MarkDone(req.Pos)
		return
	}

	p.send(req.Pos, data)

	p.loadedMu.Lock()
	p.loaded[req.Pos] = true
	p.loadedMu.Unlock()

	p.manager.MarkDone(req.Pos)
}

// Unload drops pos from the delivered set after the column leaves the
// player's desired set.
func (p *WorkerPool) Unload(pos Pos) {
	p.loadedMu.Lock()
	delete(p.loaded, pos)
	p.loadedMu.Unlock()
}

// IsLoaded reports whether pos has been delivered to the player.
func (p *WorkerPool) IsLoaded(pos Pos) bool {
	p.loadedMu.Lock()
	defer p.loadedMu.Unlock()
	return p.loaded[pos]
}

// Loaded returns a snapshot of the player's loaded-column set.
func (p *WorkerPool) Loaded() []Pos {
	p.loadedMu.Lock()
	defer p.loadedMu.Unlock()
	out := make([]Pos, 0, len(p.loaded))
	for pos := range p.loaded {
		out = append(out, pos)
	}
	return out
}
