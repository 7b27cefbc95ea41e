package streamer

import (
	"testing"
	"time"
)

func square(cx, cz, radius int32) []Pos {
	var out []Pos
	for x := cx - radius; x <= cx+radius; x++ {
		for z := cz - radius; z <= cz+radius; z++ {
			out = append(out, Pos{X: x, Z: z})
		}
	}
	return out
}

func TestProcessPendingUpdatesWaitsForDebounce(t *testing.T) {
	m := NewRequestManagerWithDebounce(1, 50*time.Millisecond)
	m.UpdateDesiredChunks(square(0, 0, 1))

	if m.ProcessPendingUpdates(0, 0) {
		t.Fatal("expected install to be deferred until debounce window elapses")
	}
	time.Sleep(60 * time.Millisecond)
	if !m.ProcessPendingUpdates(0, 0) {
		t.Fatal("expected install after debounce window elapsed")
	}
}

func TestInstallQueuesAllNewColumns(t *testing.T) {
	m := NewRequestManagerWithDebounce(1, time.Millisecond)
	d := square(0, 0, 1) // 3x3 = 9
	m.UpdateDesiredChunks(d)
	time.Sleep(2 * time.Millisecond)
	m.ProcessPendingUpdates(0, 0)

	queuedCount := 0
	for _, pos := range d {
		if s, ok := m.StateOf(pos); ok && s == Queued {
			queuedCount++
		}
	}
	if queuedCount != len(d) {
		t.Errorf("queued count = %d, want %d", queuedCount, len(d))
	}
}

func TestProcessUpdatesImmediatelyBypassesDebounce(t *testing.T) {
	m := NewRequestManager(1) // production 150ms debounce
	m.UpdateDesiredChunks(square(0, 0, 1))
	if !m.ProcessUpdatesImmediately() {
		t.Fatal("expected immediate install to succeed without waiting")
	}
}

func TestInstallCancelsRemovedColumns(t *testing.T) {
	m := NewRequestManagerWithDebounce(1, time.Millisecond)
	m.UpdateDesiredChunks(square(0, 0, 1))
	time.Sleep(2 * time.Millisecond)
	m.ProcessPendingUpdates(0, 0)

	m.UpdateDesiredChunks(square(5, 0, 1))
	time.Sleep(2 * time.Millisecond)
	m.ProcessPendingUpdates(0, 0)

	s, ok := m.StateOf(Pos{X: 0, Z: 0})
	if !ok || s != Cancelled {
		t.Errorf("state of dropped column = %v (ok=%v), want CANCELLED", s, ok)
	}
}

func TestInstallReportsRemovedColumnsToUnloadFunc(t *testing.T) {
	m := NewRequestManagerWithDebounce(1, time.Millisecond)
	var unloaded []Pos
	m.SetUnloadFunc(func(removed []Pos) { unloaded = append(unloaded, removed...) })

	m.UpdateDesiredChunks(square(0, 0, 1))
	time.Sleep(2 * time.Millisecond)
	m.ProcessPendingUpdates(0, 0)
	if len(unloaded) != 0 {
		t.Fatalf("first install reported %d unloads, want 0", len(unloaded))
	}

	// A fully disjoint desired set replaces all 9 columns.
	m.UpdateDesiredChunks(square(5, 0, 1))
	time.Sleep(2 * time.Millisecond)
	m.ProcessPendingUpdates(0, 0)

	if len(unloaded) != 9 {
		t.Fatalf("unloaded count = %d, want 9", len(unloaded))
	}
	for _, pos := range unloaded {
		if pos.X >= 4 {
			t.Errorf("unloaded %v is still in the new desired set", pos)
		}
	}
}

func TestNextQueuedReturnsNearestFirst(t *testing.T) {
	m := NewRequestManagerWithDebounce(1, time.Millisecond)
	m.UpdateDesiredChunks([]Pos{{X: 5, Z: 5}, {X: 1, Z: 0}, {X: 0, Z: 0}})
	time.Sleep(2 * time.Millisecond)
	m.ProcessPendingUpdates(0, 0)

	req, ok := m.NextQueued(0, 0)
	if !ok {
		t.Fatal("expected a queued request")
	}
	if req.Pos != (Pos{X: 0, Z: 0}) {
		t.Errorf("nearest request = %v, want {0 0}", req.Pos)
	}
	if req.State != Loading {
		t.Errorf("state after NextQueued = %v, want LOADING", req.State)
	}
}

func TestNextQueuedEmptyWhenNoneQueued(t *testing.T) {
	m := NewRequestManager(1)
	if _, ok := m.NextQueued(0, 0); ok {
		t.Error("expected no queued request on a fresh manager")
	}
}

func TestMarkDoneRetiresRequest(t *testing.T) {
	m := NewRequestManagerWithDebounce(1, time.Millisecond)
	m.UpdateDesiredChunks([]Pos{{X: 0, Z: 0}})
	time.Sleep(2 * time.Millisecond)
	m.ProcessPendingUpdates(0, 0)

	req, _ := m.NextQueued(0, 0)
	m.MarkDone(req.Pos)

	if _, ok := m.StateOf(req.Pos); ok {
		t.Error("expected request to be gone after MarkDone")
	}
}

func TestCancelStuckRequeuesOldLoading(t *testing.T) {
	m := NewRequestManagerWithDebounce(1, time.Millisecond)
	m.UpdateDesiredChunks([]Pos{{X: 0, Z: 0}})
	time.Sleep(2 * time.Millisecond)
	m.ProcessPendingUpdates(0, 0)
	m.NextQueued(0, 0) // -> LOADING

	requeued := m.CancelStuck(0) // everything in-flight looks "old" at threshold 0
	if len(requeued) != 1 {
		t.Fatalf("requeued count = %d, want 1", len(requeued))
	}
	s, _ := m.StateOf(requeued[0])
	if s != Queued {
		t.Errorf("state after CancelStuck = %v, want QUEUED", s)
	}
}

func TestCancelStuckLeavesFreshLoadingAlone(t *testing.T) {
	m := NewRequestManagerWithDebounce(1, time.Millisecond)
	m.UpdateDesiredChunks([]Pos{{X: 0, Z: 0}})
	time.Sleep(2 * time.Millisecond)
	m.ProcessPendingUpdates(0, 0)
	m.NextQueued(0, 0)

	requeued := m.CancelStuck(time.Hour)
	if len(requeued) != 0 {
		t.Errorf("expected no requeues for a fresh LOADING request, got %d", len(requeued))
	}
}

func TestInstalledReflectsLatestDesiredSet(t *testing.T) {
	m := NewRequestManagerWithDebounce(1, time.Millisecond)
	d := square(0, 0, 10) // 21x21 = 441
	m.UpdateDesiredChunks(d)
	time.Sleep(2 * time.Millisecond)
	m.ProcessPendingUpdates(0, 0)

	if got := len(m.Installed()); got != 441 {
		t.Errorf("installed set size = %d, want 441", got)
	}
}
