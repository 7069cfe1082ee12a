package game

import (
	"context"
	"testing"
	"time"
)

type recordingReconciler struct {
	calls  []string
	frames []uint64
}

func (r *recordingReconciler) Apply(w *World) {
	r.calls = append(r.calls, "apply")
	r.frames = append(r.frames, w.Frame())
}

func (r *recordingReconciler) Flush(w *World) {
	r.calls = append(r.calls, "flush")
	r.frames = append(r.frames, w.Frame())
	w.DrainOutbox()
}

// TestNewEngine verifies engine creation with correct defaults
func TestNewEngine(t *testing.T) {
	tests := []struct {
		name     string
		tickRate int
		want     int
	}{
		{"standard 60 FPS", 60, 60},
		{"low 30 FPS", 30, 30},
		{"invalid falls back", 0, 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, _ := newTestWorld(t)
			engine := NewEngine(w, tt.tickRate)
			if engine.tickRate != tt.want {
				t.Errorf("Expected tick rate %d, got %d", tt.want, engine.tickRate)
			}
			if engine.Snapshot() == nil {
				t.Error("Engine should publish an initial snapshot")
			}
		})
	}
}

func TestEngineTickOrder(t *testing.T) {
	w, _ := newTestWorld(t)
	engine := NewEngine(w, 60)
	rec := &recordingReconciler{}
	engine.SetReconciler(rec)

	engine.Tick()
	engine.Tick()

	want := []string{"apply", "flush", "apply", "flush"}
	if len(rec.calls) != len(want) {
		t.Fatalf("Expected %v, got %v", want, rec.calls)
	}
	for i := range want {
		if rec.calls[i] != want[i] {
			t.Errorf("Call %d: expected %s, got %s", i, want[i], rec.calls[i])
		}
	}
	// Apply sees the previous frame, Flush sees the stepped one
	if rec.frames[0] != 0 || rec.frames[1] != 1 || rec.frames[2] != 1 || rec.frames[3] != 2 {
		t.Errorf("Unexpected frame sequence %v", rec.frames)
	}
	if engine.Snapshot().Frame != 2 {
		t.Errorf("Expected snapshot of frame 2, got %d", engine.Snapshot().Frame)
	}
}

func TestEngineDoSerializesAccess(t *testing.T) {
	w, _ := newTestWorld(t)
	engine := NewEngine(w, 60)
	engine.Do(func(w *World) {
		addLocal(w, CharPikachu, 2, 2)
		w.HandleKey(KeyRight, nil)
	})
	for i := 0; i < 8; i++ {
		engine.Tick()
	}
	snap := engine.Snapshot()
	if len(snap.Players) != 1 || snap.Players[0].X != 96 {
		t.Errorf("Expected player at x=96 after one step, got %+v", snap.Players)
	}
}

// TestEngineStartStop verifies engine can start and stop without panics
func TestEngineStartStop(t *testing.T) {
	w, _ := newTestWorld(t)
	engine := NewEngine(w, 120)

	engine.Start()
	time.Sleep(50 * time.Millisecond)
	engine.Stop()

	// Should not panic on double stop
	engine.Stop()

	if engine.Snapshot().Frame == 0 {
		t.Error("Expected at least one frame while running")
	}
}

func TestEngineRunStopsOnCancel(t *testing.T) {
	w, _ := newTestWorld(t)
	engine := NewEngine(w, 120)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	go func() {
		engine.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
