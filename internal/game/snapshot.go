package game

import (
	"fmt"
	"sort"
	"time"
)

// PlayerView is an immutable copy of player state for rendering
// Uses value types (not pointers) to ensure immutability
type PlayerView struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Character string    `json:"character"` // as displayed, overlays applied
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
	Dir       Direction `json:"dir"`
	Anim      string    `json:"anim"`
	HP        float64   `json:"hp"`
	MaxHP     float64   `json:"maxHp"`
	Defeated  bool      `json:"defeated"`
	Phasing   bool      `json:"phasing"`
	Flying    bool      `json:"flying"`
	Asleep    bool      `json:"asleep"`
	Poisoned  bool      `json:"poisoned"`
	Typing    bool      `json:"typing"`
	Remote    bool      `json:"remote"`
}

// ProjectileView is an immutable projectile for rendering
type ProjectileView struct {
	X, Y      float64
	Rotation  float64
	FromEnemy bool
}

// TrapView is an immutable trap for rendering
type TrapView struct {
	X, Y int
	Kind TrapKind
}

// WorldSnapshot is a complete immutable world state for rendering and
// status endpoints. It is produced at the end of each frame.
type WorldSnapshot struct {
	Frame     uint64
	Timestamp time.Time
	Owner     string
	DarkRoom  float64

	Players     []PlayerView
	Enemies     []EnemySnapshot
	Projectiles []ProjectileView
	Traps       []TrapView
}

// Snapshot copies the current world state.
func (w *World) Snapshot() *WorldSnapshot {
	snap := &WorldSnapshot{
		Frame:       w.frame,
		Timestamp:   w.clock.Now(),
		Owner:       w.owner,
		DarkRoom:    w.DarkRoom,
		Players:     make([]PlayerView, 0, len(w.players)),
		Enemies:     w.EnemySnapshots(),
		Projectiles: make([]ProjectileView, 0, len(w.projectiles)),
		Traps:       make([]TrapView, 0, len(w.traps)),
	}
	for _, p := range w.Players() {
		snap.Players = append(snap.Players, PlayerView{
			ID:        p.ID,
			Name:      p.Name,
			Character: p.DisplayCharacter(),
			X:         p.X,
			Y:         p.Y,
			Dir:       p.Dir,
			Anim:      p.Anim,
			HP:        p.HP,
			MaxHP:     p.MaxHP,
			Defeated:  p.Defeated,
			Phasing:   p.Phasing,
			Flying:    p.Flying,
			Asleep:    p.Asleep(),
			Poisoned:  p.Status.Poison != nil,
			Typing:    p.Typing,
			Remote:    p.Remote,
		})
	}
	for _, proj := range w.projectiles {
		snap.Projectiles = append(snap.Projectiles, ProjectileView{X: proj.X, Y: proj.Y, Rotation: proj.Rotation, FromEnemy: proj.FromEnemy})
	}
	for key, t := range w.traps {
		var x, y int
		if _, err := fmt.Sscanf(key, "%d,%d", &x, &y); err == nil {
			snap.Traps = append(snap.Traps, TrapView{X: x, Y: y, Kind: t.Kind})
		}
	}
	sort.Slice(snap.Traps, func(i, j int) bool {
		if snap.Traps[i].Y != snap.Traps[j].Y {
			return snap.Traps[i].Y < snap.Traps[j].Y
		}
		return snap.Traps[i].X < snap.Traps[j].X
	})
	return snap
}
