package game

import (
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"

	"pokemon-arena/internal/config"
	"pokemon-arena/internal/mapgen"
	"pokemon-arena/internal/rng"
)

// Wave spawning tuning (owner only)
const (
	FirstWaveDelay   = 3.0
	WaveInterval     = 15.0
	spawnTries       = 64
	spawnMinDistance = 5 // tiles from any player
)

// WorldOptions configures a new World.
type WorldOptions struct {
	Map       *mapgen.Map
	Config    config.SimConfig
	Abilities config.AbilityCatalog
	Clock     Clock
	LocalID   string    // ID of the player simulated by this client
	Events    *EventLog // optional
}

// World owns every simulated entity. It is not safe for concurrent use;
// the engine goroutine is its only writer, and the sync layer reaches it
// through Engine.Do or between frames.
type World struct {
	Map       *mapgen.Map
	Config    config.SimConfig
	Abilities config.AbilityCatalog

	LocalID string
	owner   string

	players     map[string]*Player
	enemies     map[string]Enemy
	projectiles []*Projectile
	traps       map[string]*Trap

	// DarkRoom is the remaining darkness time in seconds.
	DarkRoom float64

	outbox []Outbound
	clock  Clock
	events *EventLog
	rng    *rng.Mulberry32

	frame     uint64
	waveTimer float64
	idSeq     uint64
}

// NewWorld creates an empty world over a generated map.
func NewWorld(opts WorldOptions) *World {
	clock := opts.Clock
	if clock == nil {
		clock = SystemClock{}
	}
	if opts.Abilities.Characters == nil {
		opts.Abilities = config.DefaultAbilities()
	}
	return &World{
		Map:       opts.Map,
		Config:    opts.Config,
		Abilities: opts.Abilities,
		LocalID:   opts.LocalID,
		players:   make(map[string]*Player),
		enemies:   make(map[string]Enemy),
		traps:     make(map[string]*Trap),
		clock:     clock,
		events:    opts.Events,
		rng:       rng.New(opts.Map.Seed ^ 0x9E3779B9),
		waveTimer: FirstWaveDelay,
	}
}

// Frame returns how many steps have run.
func (w *World) Frame() uint64 { return w.frame }

// Step advances the simulation by dt seconds: local players move, then
// their timers and statuses tick, then the owner simulates enemies, then
// projectiles travel and collide.
func (w *World) Step(dt float64) {
	w.frame++

	local := w.localPlayers()
	for _, p := range local {
		p.updateMovement(w)
	}
	for _, p := range local {
		p.updateStatus(dt, w)
	}
	w.updateTraps(dt)
	if w.DarkRoom > 0 {
		w.DarkRoom = countdown(w.DarkRoom, dt)
	}

	w.updateEnemies(dt)
	w.updateProjectiles(dt)
}

// TileAt converts a pixel position to a tile.
func (w *World) TileAt(x, y float64) (int, int) {
	ts := w.Config.TileSize
	return int(math.Floor(x / ts)), int(math.Floor(y / ts))
}

// CanEnter reports whether p may step onto tile (x, y).
func (w *World) CanEnter(p *Player, x, y int) bool {
	if !w.Map.InBounds(x, y) {
		return false
	}
	cell := w.Map.At(x, y)
	if cell == mapgen.Floor {
		return true
	}
	if t, ok := BehaviorFor(p.Character).(Traverser); ok {
		return t.CanEnter(p, cell)
	}
	return false
}

// --- players ---

// AddPlayer registers a player. An existing player with the same ID is
// replaced.
func (w *World) AddPlayer(p *Player) {
	w.players[p.ID] = p
}

// SpawnLocalPlayer creates this client's player on the map spawn tile.
func (w *World) SpawnLocalPlayer(name, character string) *Player {
	p := NewPlayer(w.LocalID, name, character, w.Map.Spawn, w.Config.TileSize)
	w.AddPlayer(p)
	return p
}

// LocalPlayer returns this client's player, or nil.
func (w *World) LocalPlayer() *Player {
	return w.players[w.LocalID]
}

// Player looks up a player by ID.
func (w *World) Player(id string) *Player {
	return w.players[id]
}

// Players returns every player ordered by ID.
func (w *World) Players() []*Player {
	out := make([]*Player, 0, len(w.players))
	for _, p := range w.players {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// PlayerCount returns the number of players.
func (w *World) PlayerCount() int { return len(w.players) }

func (w *World) localPlayers() []*Player {
	out := make([]*Player, 0, 1)
	for _, p := range w.Players() {
		if !p.Remote {
			out = append(out, p)
		}
	}
	return out
}

// DamagePlayer applies damage to a local player, or asks the owning client
// to do it when the target is a mirror.
func (w *World) DamagePlayer(target *Player, amount float64, from string) {
	if target == nil || amount <= 0 || target.Defeated {
		return
	}
	if target.Remote {
		w.Emit(PlayerHit{Target: target.ID, Amount: amount, From: from})
		return
	}
	defeated := target.TakeDamage(amount)
	w.record(EventTypeDamage, from, DamagePayload{SourceID: from, TargetID: target.ID, Amount: amount, TargetHP: target.HP})
	if defeated {
		w.record(EventTypeDefeat, from, DefeatPayload{TargetID: target.ID})
	}
}

// deliverStatus applies a status locally or sends it to the target's client.
func (w *World) deliverStatus(target *Player, apply StatusApply) {
	if target.Remote {
		w.Emit(apply)
		return
	}
	w.applyStatusLocal(target, apply)
}

func (w *World) applyStatusLocal(target *Player, apply StatusApply) {
	switch apply.Type {
	case StatusSleep:
		target.ApplySleep(apply.Duration)
	case StatusPoison:
		target.ApplyPoison(apply.Duration, PoisonDamagePerTick, PoisonTickInterval, w.clock.Now())
	default:
		return
	}
	w.record(EventTypeStatus, apply.From, apply)
}

// --- enemies ---

// IsEnemyOwner reports whether this client simulates enemies.
func (w *World) IsEnemyOwner() bool {
	return w.owner != "" && w.owner == w.LocalID
}

// EnemyOwner returns the ID of the client simulating enemies.
func (w *World) EnemyOwner() string { return w.owner }

// Enemy looks up an enemy by ID.
func (w *World) Enemy(id string) Enemy {
	return w.enemies[id]
}

// Enemies returns every enemy ordered by ID.
func (w *World) Enemies() []Enemy {
	out := make([]Enemy, 0, len(w.enemies))
	for _, e := range w.enemies {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Base().ID < out[j].Base().ID })
	return out
}

// EnemyCount returns the number of enemies.
func (w *World) EnemyCount() int { return len(w.enemies) }

// SpawnEnemy creates an owner-simulated enemy at a tile and announces it.
// Non-owners cannot spawn enemies.
func (w *World) SpawnEnemy(kind EnemyKind, tileX, tileY int) Enemy {
	if !w.IsEnemyOwner() || !w.Map.Walkable(tileX, tileY) {
		return nil
	}
	stats := DefaultStats(kind)
	e := newEnemy(EnemySnapshot{
		ID:    "enemy-" + uuid.NewString(),
		Kind:  kind,
		X:     float64(tileX) * w.Config.TileSize,
		Y:     float64(tileY) * w.Config.TileSize,
		HP:    stats.MaxHP,
		Stats: stats,
	})
	w.enemies[e.Base().ID] = e
	w.Emit(EnemySpawned{Enemy: e.Base().Snapshot()})
	w.record(EventTypeEnemySpawn, w.LocalID, e.Base().Snapshot())
	return e
}

// NearestEnemy returns the closest live enemy within maxRange of (x, y).
// A zero range is unlimited.
func (w *World) NearestEnemy(x, y, maxRange float64) Enemy {
	var best Enemy
	bestDist := math.Inf(1)
	for _, e := range w.Enemies() {
		b := e.Base()
		if b.Defeated || b.Removed != "" {
			continue
		}
		d := math.Hypot(b.X-x, b.Y-y)
		if maxRange > 0 && d > maxRange {
			continue
		}
		if d < bestDist {
			best, bestDist = e, d
		}
	}
	return best
}

// HitEnemy applies damage when this client owns enemies and reports the
// hit to the owner otherwise.
func (w *World) HitEnemy(e Enemy, amount float64, sourceCharacter, from string) {
	b := e.Base()
	if !w.IsEnemyOwner() {
		w.Emit(EnemyHit{EnemyID: b.ID, Amount: amount, SourceCharacter: sourceCharacter, From: from})
		return
	}
	if e.TakeDamage(amount, sourceCharacter) {
		w.record(EventTypeDamage, from, DamagePayload{SourceID: from, TargetID: b.ID, Amount: amount, TargetHP: b.HP})
	}
}

func (w *World) updateEnemies(dt float64) {
	if !w.IsEnemyOwner() {
		return
	}
	for _, e := range w.Enemies() {
		e.Base().tickStatus(dt)
		e.Update(dt, w)
	}
	w.removeFinishedEnemies()
	w.updateWaves(dt)
}

func (w *World) removeFinishedEnemies() {
	for _, e := range w.Enemies() {
		b := e.Base()
		if b.Removed == "" {
			continue
		}
		delete(w.enemies, b.ID)
		w.Emit(EnemyRemoved{ID: b.ID, Reason: b.Removed})
		w.record(EventTypeEnemyRemove, w.LocalID, EnemyRemoved{ID: b.ID, Reason: b.Removed})
		if b.Defeated {
			w.record(EventTypeDefeat, w.LocalID, DefeatPayload{TargetID: b.ID, Enemy: true})
		}
	}
}

// updateWaves spawns a new wave once the arena has been clear for a while.
func (w *World) updateWaves(dt float64) {
	if w.Config.EnemyWaveSize <= 0 || len(w.enemies) > 0 {
		return
	}
	w.waveTimer -= dt
	if w.waveTimer > 0 {
		return
	}
	w.waveTimer = WaveInterval
	kinds := [...]EnemyKind{EnemyBrawler, EnemyTurret, EnemyWeepingAngel}
	for i := 0; i < w.Config.EnemyWaveSize; i++ {
		x, y, ok := w.randomSpawnTile()
		if !ok {
			continue
		}
		w.SpawnEnemy(kinds[w.rng.Intn(len(kinds))], x, y)
	}
}

// randomSpawnTile picks a walkable tile away from every player.
func (w *World) randomSpawnTile() (int, int, bool) {
	for i := 0; i < spawnTries; i++ {
		x, y := w.rng.Intn(w.Map.Width), w.rng.Intn(w.Map.Height)
		if !w.Map.Walkable(x, y) {
			continue
		}
		near := false
		for _, p := range w.players {
			if abs(p.TileX-x)+abs(p.TileY-y) < spawnMinDistance {
				near = true
				break
			}
		}
		if !near {
			return x, y, true
		}
	}
	return 0, 0, false
}

// applyConfusion confuses owner-simulated enemies near a dance.
func (w *World) applyConfusion(cast AbilityCast) {
	if !w.IsEnemyOwner() {
		return
	}
	for _, e := range w.Enemies() {
		b := e.Base()
		if cast.Range > 0 && math.Hypot(b.X-cast.X, b.Y-cast.Y) > cast.Range {
			continue
		}
		b.Confused = math.Max(b.Confused, cast.Duration)
	}
}

// applyBubble traps one owner-simulated enemy.
func (w *World) applyBubble(cast AbilityCast) {
	if !w.IsEnemyOwner() {
		return
	}
	if e := w.enemies[cast.Target]; e != nil {
		b := e.Base()
		b.Bubbled = math.Max(b.Bubbled, cast.Duration)
	}
}

func (w *World) setDarkRoom(d float64) {
	w.DarkRoom = math.Max(w.DarkRoom, d)
}

// --- projectiles ---

// AddProjectile stores a projectile unless the cap is reached.
func (w *World) AddProjectile(p *Projectile) bool {
	if w.Config.MaxProjectiles > 0 && len(w.projectiles) >= w.Config.MaxProjectiles {
		return false
	}
	w.projectiles = append(w.projectiles, p)
	return true
}

// Projectiles returns the live projectiles.
func (w *World) Projectiles() []*Projectile {
	return w.projectiles
}

// nextProjectileID is unique per client; peers namespace it by owner.
func (w *World) nextProjectileID() string {
	w.idSeq++
	return fmt.Sprintf("proj_%s_%d", w.LocalID, w.idSeq)
}

// updateProjectiles moves projectiles and resolves collisions in place.
func (w *World) updateProjectiles(dt float64) {
	alive := w.projectiles[:0]
	for _, proj := range w.projectiles {
		if !proj.Update(dt) {
			continue
		}
		tx, ty := w.TileAt(proj.X, proj.Y)
		if w.Map.At(tx, ty) == mapgen.Wall {
			continue
		}
		if !proj.Mirror && w.resolveHit(proj) {
			continue
		}
		alive = append(alive, proj)
	}
	for i := len(alive); i < len(w.projectiles); i++ {
		w.projectiles[i] = nil
	}
	w.projectiles = alive
}

// resolveHit applies the first collision of a locally simulated projectile.
func (w *World) resolveHit(proj *Projectile) bool {
	ts := w.Config.TileSize
	if proj.FromEnemy {
		for _, p := range w.Players() {
			if p.Defeated || p.Phasing {
				continue
			}
			if cx, cy := p.Center(ts); proj.Hits(cx, cy) {
				w.DamagePlayer(p, proj.Damage, proj.OwnerID)
				return true
			}
		}
		return false
	}
	for _, e := range w.Enemies() {
		b := e.Base()
		if b.Defeated || b.Removed != "" {
			continue
		}
		if cx, cy := b.Center(ts); proj.Hits(cx, cy) {
			w.HitEnemy(e, proj.Damage, proj.SourceCharacter, proj.OwnerID)
			return true
		}
	}
	return false
}

// --- outbox ---

// Emit queues an outbound event for the sync layer.
func (w *World) Emit(o Outbound) {
	w.outbox = append(w.outbox, o)
}

// DrainOutbox returns and clears the queued outbound events.
func (w *World) DrainOutbox() []Outbound {
	out := w.outbox
	w.outbox = nil
	return out
}

func (w *World) record(t EventType, source string, payload interface{}) {
	if w.events == nil {
		return
	}
	w.events.EmitSimple(t, w.frame, source, payload)
}

func (w *World) recordAbility(p *Player, out Outbound) {
	w.record(EventTypeAbility, p.ID, out)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
