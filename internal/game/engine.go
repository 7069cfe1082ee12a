package game

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"pokemon-arena/internal/logger"
	"pokemon-arena/internal/observability"
)

// Reconciler moves messages between the network and the world. Apply runs
// at the start of a frame, Flush at the end. Both run on the engine
// goroutine with the world locked, so the world keeps a single writer.
type Reconciler interface {
	Apply(w *World)
	Flush(w *World)
}

// Engine drives the fixed-rate simulation loop of one client.
type Engine struct {
	mu         sync.Mutex
	world      *World
	reconciler Reconciler

	tickRate int
	running  bool
	ticker   *time.Ticker
	stopChan chan struct{}
	done     chan struct{}

	// Latest immutable snapshot for renderers and status endpoints
	snapshot atomic.Pointer[WorldSnapshot]
}

// NewEngine creates an engine over a world.
func NewEngine(world *World, tickRate int) *Engine {
	if tickRate <= 0 {
		tickRate = 60
	}
	e := &Engine{
		world:    world,
		tickRate: tickRate,
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
	e.snapshot.Store(world.Snapshot())
	return e
}

// SetReconciler attaches the network layer. Call before Start.
func (e *Engine) SetReconciler(r Reconciler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.reconciler = r
}

// Start begins the game loop
func (e *Engine) Start() {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return
	}
	e.running = true
	e.ticker = time.NewTicker(time.Second / time.Duration(e.tickRate))
	e.mu.Unlock()

	go func() {
		defer close(e.done)
		for {
			select {
			case <-e.ticker.C:
				e.Tick()
			case <-e.stopChan:
				return
			}
		}
	}()

	logger.Log.Infof("🎮 Simulation started at %d FPS", e.tickRate)
}

// Stop stops the game loop and waits for the current frame to finish.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	e.running = false
	e.ticker.Stop()
	close(e.stopChan)
	e.mu.Unlock()

	<-e.done
	logger.Log.Info("🛑 Simulation stopped")
}

// Run starts the loop and blocks until ctx is cancelled.
func (e *Engine) Run(ctx context.Context) {
	e.Start()
	<-ctx.Done()
	e.Stop()
}

// Tick runs one frame: inbound messages, simulation, outbound flush.
func (e *Engine) Tick() {
	start := time.Now()
	dt := 1.0 / float64(e.tickRate)

	e.mu.Lock()
	if e.reconciler != nil {
		e.reconciler.Apply(e.world)
	}
	e.world.Step(dt)
	if e.reconciler != nil {
		e.reconciler.Flush(e.world)
	}
	snap := e.world.Snapshot()
	owner := e.world.IsEnemyOwner()
	e.mu.Unlock()

	e.snapshot.Store(snap)

	if owner {
		observability.SetEnemiesSimulated(len(snap.Enemies))
	} else {
		observability.SetEnemiesSimulated(0)
	}
	observability.SetProjectilesAlive(len(snap.Projectiles))
	observability.RecordFrame(time.Since(start))
}

// Do runs fn with exclusive access to the world. Input handlers use it so
// they never race the frame loop.
func (e *Engine) Do(fn func(w *World)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(e.world)
}

// Snapshot returns the state published by the last frame.
func (e *Engine) Snapshot() *WorldSnapshot {
	return e.snapshot.Load()
}
