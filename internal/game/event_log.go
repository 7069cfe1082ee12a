package game

import (
	"encoding/json"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"pokemon-arena/internal/observability"
)

// EventLogConfig bounds an EventLog.
type EventLogConfig struct {
	Capacity         int           // Ring size; the oldest event is overwritten when full
	GlobalRate       rate.Limit    // Events per second across all sources
	GlobalBurst      int
	SourceRate       rate.Limit // Events per second for one source id
	SourceBurst      int
	FlushInterval    time.Duration // How often the writer drains the ring
	FlushBatch       int           // Events per write batch
	SourceLimiterTTL time.Duration // Idle source limiters are dropped after this
}

// DefaultEventLogConfig sizes the log for one lobby's worth of traffic.
func DefaultEventLogConfig() EventLogConfig {
	return EventLogConfig{
		Capacity:         1024,
		GlobalRate:       2000,
		GlobalBurst:      200,
		SourceRate:       60,
		SourceBurst:      6,
		FlushInterval:    100 * time.Millisecond,
		FlushBatch:       64,
		SourceLimiterTTL: 5 * time.Minute,
	}
}

// EventLogStats is a point-in-time view of the log counters.
type EventLogStats struct {
	Total   uint64 `json:"total"`   // events accepted into the ring
	Dropped uint64 `json:"dropped"` // rate limited or overwritten
	Pending int    `json:"pending"` // accepted but not yet written
	Running bool   `json:"running"`
}

// EventLog records simulation events (damage, defeats, abilities, enemy
// lifecycle) to an append-only JSONL file for replay and debugging. It is
// bounded and rate-limited so a noisy fight cannot stall the frame loop.
type EventLog struct {
	cfg EventLogConfig

	mu      sync.Mutex
	ring    []Event
	start   int // index of the oldest pending event
	pending int
	seq     uint64

	globalLimiter  *rate.Limiter
	sourceLimiters map[string]*sourceLimiter

	writerWg sync.WaitGroup
	stopChan chan struct{}
	stopOnce sync.Once
	running  atomic.Bool

	file   *os.File
	fileMu sync.Mutex

	droppedCount atomic.Uint64
	totalCount   atomic.Uint64
}

type sourceLimiter struct {
	limiter  *rate.Limiter
	lastUsed time.Time
}

// NewEventLog creates an event log with the default bounds.
func NewEventLog() *EventLog {
	return NewEventLogWithConfig(DefaultEventLogConfig())
}

// NewEventLogWithConfig creates an event log. Zero fields take defaults.
func NewEventLogWithConfig(cfg EventLogConfig) *EventLog {
	def := DefaultEventLogConfig()
	if cfg.Capacity <= 0 {
		cfg.Capacity = def.Capacity
	}
	if cfg.GlobalRate <= 0 {
		cfg.GlobalRate, cfg.GlobalBurst = def.GlobalRate, def.GlobalBurst
	}
	if cfg.SourceRate <= 0 {
		cfg.SourceRate, cfg.SourceBurst = def.SourceRate, def.SourceBurst
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = def.FlushInterval
	}
	if cfg.FlushBatch <= 0 {
		cfg.FlushBatch = def.FlushBatch
	}
	if cfg.SourceLimiterTTL <= 0 {
		cfg.SourceLimiterTTL = def.SourceLimiterTTL
	}
	return &EventLog{
		cfg:            cfg,
		ring:           make([]Event, cfg.Capacity),
		globalLimiter:  rate.NewLimiter(cfg.GlobalRate, cfg.GlobalBurst),
		sourceLimiters: make(map[string]*sourceLimiter),
		stopChan:       make(chan struct{}),
	}
}

// Start begins the async writer. An empty path keeps events in memory
// only, which is what tests use.
func (el *EventLog) Start(filePath string) error {
	if el.running.Load() {
		return nil
	}
	if filePath != "" {
		file, err := os.OpenFile(filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return err
		}
		el.file = file
	}

	el.running.Store(true)
	el.writerWg.Add(2)
	go el.writerLoop()
	go el.cleanupLoop()
	return nil
}

// Stop flushes what is pending and closes the file.
func (el *EventLog) Stop() {
	el.stopOnce.Do(func() {
		el.running.Store(false)
		close(el.stopChan)
		el.writerWg.Wait()

		el.fileMu.Lock()
		if el.file != nil {
			el.file.Close()
		}
		el.fileMu.Unlock()
	})
}

// Emit adds an event. It returns false if the log is stopped or the
// event was rate limited. A full ring overwrites its oldest event.
func (el *EventLog) Emit(event Event) bool {
	if el == nil || !el.running.Load() {
		return false
	}

	el.mu.Lock()
	defer el.mu.Unlock()

	now := time.Now()
	if !el.globalLimiter.AllowN(now, 1) {
		el.drop("global")
		return false
	}
	// A poison tick storm from one source must not starve the others.
	if event.Source != "" && !el.limiterFor(event.Source, now).AllowN(now, 1) {
		el.drop("source")
		return false
	}

	if el.pending == len(el.ring) {
		el.start = (el.start + 1) % len(el.ring)
		el.pending--
		el.drop("overflow")
	}
	el.seq++
	event.Sequence = el.seq
	el.ring[(el.start+el.pending)%len(el.ring)] = event
	el.pending++

	el.totalCount.Add(1)
	return true
}

// EmitSimple builds and emits an event in one call.
func (el *EventLog) EmitSimple(eventType EventType, frame uint64, source string, payload interface{}) bool {
	if el == nil || !el.running.Load() {
		return false
	}
	return el.Emit(NewEvent(eventType, frame, source, payload))
}

// Stats returns the current counters.
func (el *EventLog) Stats() EventLogStats {
	el.mu.Lock()
	pending := el.pending
	el.mu.Unlock()
	return EventLogStats{
		Total:   el.totalCount.Load(),
		Dropped: el.droppedCount.Load(),
		Pending: pending,
		Running: el.running.Load(),
	}
}

func (el *EventLog) drop(reason string) {
	el.droppedCount.Add(1)
	observability.RecordEventDropped(reason)
}

// limiterFor returns the source's limiter. Caller holds mu.
func (el *EventLog) limiterFor(source string, now time.Time) *rate.Limiter {
	entry, ok := el.sourceLimiters[source]
	if !ok {
		entry = &sourceLimiter{limiter: rate.NewLimiter(el.cfg.SourceRate, el.cfg.SourceBurst)}
		el.sourceLimiters[source] = entry
	}
	entry.lastUsed = now
	return entry.limiter
}

func (el *EventLog) writerLoop() {
	defer el.writerWg.Done()

	ticker := time.NewTicker(el.cfg.FlushInterval)
	defer ticker.Stop()

	batch := make([]Event, 0, el.cfg.FlushBatch)
	for {
		select {
		case <-el.stopChan:
			for {
				batch = el.collectBatch(batch[:0])
				if len(batch) == 0 {
					return
				}
				el.flushBatch(batch)
			}
		case <-ticker.C:
			batch = el.collectBatch(batch[:0])
			if len(batch) > 0 {
				el.flushBatch(batch)
			}
		}
	}
}

func (el *EventLog) cleanupLoop() {
	defer el.writerWg.Done()

	ticker := time.NewTicker(el.cfg.SourceLimiterTTL)
	defer ticker.Stop()

	for {
		select {
		case <-el.stopChan:
			return
		case <-ticker.C:
			el.pruneSourceLimiters(time.Now().Add(-el.cfg.SourceLimiterTTL))
		}
	}
}

func (el *EventLog) pruneSourceLimiters(cutoff time.Time) {
	el.mu.Lock()
	defer el.mu.Unlock()
	for source, entry := range el.sourceLimiters {
		if entry.lastUsed.Before(cutoff) {
			delete(el.sourceLimiters, source)
		}
	}
}

// collectBatch moves up to FlushBatch pending events out of the ring.
func (el *EventLog) collectBatch(batch []Event) []Event {
	el.mu.Lock()
	defer el.mu.Unlock()
	for el.pending > 0 && len(batch) < el.cfg.FlushBatch {
		batch = append(batch, el.ring[el.start])
		el.ring[el.start] = Event{}
		el.start = (el.start + 1) % len(el.ring)
		el.pending--
	}
	return batch
}

// flushBatch appends events as newline-delimited JSON.
func (el *EventLog) flushBatch(batch []Event) {
	el.fileMu.Lock()
	defer el.fileMu.Unlock()

	if el.file == nil {
		return
	}
	for _, event := range batch {
		data, err := json.Marshal(event)
		if err != nil {
			continue
		}
		el.file.Write(append(data, '\n'))
	}
}
