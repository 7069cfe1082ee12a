package game

import "pokemon-arena/internal/mapgen"

// Item is a held item that modifies movement.
type Item string

const (
	ItemProtectivePads Item = "protective-pads"
	ItemChoiceScarf    Item = "choice-scarf"
)

// ChoiceScarfMultiplier is applied after terrain slowdown.
const ChoiceScarfMultiplier = 1.5

// TrapKind is a tile hazard placed by an ability.
type TrapKind string

const (
	TrapSand   TrapKind = "sand"
	TrapPoison TrapKind = "poison"
)

// Trap lifetimes in seconds.
const (
	SandTrapLifetime   = 20.0
	PoisonTrapLifetime = 8.0
)

// Trap is a hazard overlay on a single tile. Traps are keyed by the
// "x,y" tile key and expire when TTL reaches zero.
type Trap struct {
	Kind TrapKind
	From string
	TTL  float64
}

// PlaceTrap overlays a trap on a walkable tile, replacing any trap that
// was there. Returns false when the tile cannot hold one.
func (w *World) PlaceTrap(x, y int, kind TrapKind, from string, ttl float64) bool {
	if !w.Map.Walkable(x, y) {
		return false
	}
	if ttl <= 0 {
		ttl = SandTrapLifetime
	}
	w.traps[mapgen.Key(x, y)] = &Trap{Kind: kind, From: from, TTL: ttl}
	return true
}

// TrapAt returns the trap on a tile, or nil.
func (w *World) TrapAt(x, y int) *Trap {
	return w.traps[mapgen.Key(x, y)]
}

// TrapCount returns how many traps are active.
func (w *World) TrapCount() int {
	return len(w.traps)
}

func (w *World) updateTraps(dt float64) {
	for key, t := range w.traps {
		t.TTL -= dt
		if t.TTL <= 0 {
			delete(w.traps, key)
		}
	}
}

// onPlayerArrive runs when a local player finishes a step onto a tile.
func (w *World) onPlayerArrive(p *Player) {
	t := w.TrapAt(p.TileX, p.TileY)
	if t == nil || t.Kind != TrapPoison || t.From == p.ID {
		return
	}
	p.ApplyPoison(TrapPoisonDuration, PoisonDamagePerTick, PoisonTickInterval, w.clock.Now())
	w.record(EventTypeStatus, t.From, map[string]interface{}{"target": p.ID, "type": StatusPoison})
}
