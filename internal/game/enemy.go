package game

import (
	"math"

	"pokemon-arena/internal/mapgen"
)

// EnemyKind selects an enemy variant.
type EnemyKind string

const (
	EnemyTurret       EnemyKind = "turret"
	EnemyBrawler      EnemyKind = "brawler"
	EnemyWeepingAngel EnemyKind = "weepingAngel"
)

// Removal reasons carried by EnemyRemoved.
const (
	ReasonDefeated  = "defeated"
	ReasonStared    = "stared"
	ReasonDespawned = "despawned"
)

// Enemy combat tuning
const (
	EnemyProjectileSpeed = 5.0 // pixels per frame
	EnemyProjectileLife  = 2.0 // seconds
	enemyHitboxMargin    = 4.0
	confusedSpeedFactor  = 0.5
)

// EnemyStats are the fixed numbers of an enemy.
type EnemyStats struct {
	MaxHP          float64 `json:"maxHp" msgpack:"maxHp"`
	Speed          float64 `json:"speed" msgpack:"speed"`
	Damage         float64 `json:"damage" msgpack:"damage"`
	DetectRange    float64 `json:"detectRange" msgpack:"detectRange"`
	AttackRange    float64 `json:"attackRange" msgpack:"attackRange"`
	AttackCooldown float64 `json:"attackCooldown" msgpack:"attackCooldown"`
}

// DefaultStats returns the stock numbers for a variant.
func DefaultStats(kind EnemyKind) EnemyStats {
	switch kind {
	case EnemyTurret:
		return EnemyStats{MaxHP: 40, Speed: 0, Damage: 8, DetectRange: 256, AttackRange: 256, AttackCooldown: 1.5}
	case EnemyWeepingAngel:
		return EnemyStats{MaxHP: 80, Speed: 3, Damage: 25, DetectRange: 480, AttackRange: 28, AttackCooldown: 2}
	default:
		return EnemyStats{MaxHP: 60, Speed: 2, Damage: 12, DetectRange: 320, AttackRange: 28, AttackCooldown: 1}
	}
}

// EnemySnapshot is the replicated state of an enemy.
type EnemySnapshot struct {
	ID       string     `json:"id" msgpack:"id"`
	Kind     EnemyKind  `json:"kind" msgpack:"kind"`
	X        float64    `json:"x" msgpack:"x"`
	Y        float64    `json:"y" msgpack:"y"`
	HP       float64    `json:"hp" msgpack:"hp"`
	Stats    EnemyStats `json:"stats" msgpack:"stats"`
	Bubbled  float64    `json:"bubbled,omitempty" msgpack:"bubbled,omitempty"`
	Confused float64    `json:"confused,omitempty" msgpack:"confused,omitempty"`
	Stunned  float64    `json:"stunned,omitempty" msgpack:"stunned,omitempty"`
	Defeated bool       `json:"defeated,omitempty" msgpack:"defeated,omitempty"`
}

// Enemy is implemented by every enemy variant.
type Enemy interface {
	Base() *EnemyBase
	// Update advances the enemy one frame. Only the enemy owner calls it.
	Update(dt float64, w *World)
	// TakeDamage applies a hit from a character. Returns false when the
	// hit had no effect.
	TakeDamage(amount float64, sourceCharacter string) bool
}

// EnemyBase is the state shared by all variants.
type EnemyBase struct {
	ID    string
	Kind  EnemyKind
	X, Y  float64 // top-left pixel position
	HP    float64
	Stats EnemyStats

	// Timed conditions in seconds
	Bubbled  float64
	Confused float64
	Stunned  float64

	AttackTimer float64
	Defeated    bool
	Removed     string // non-empty once the enemy should leave the world
	Mirror      bool   // simulated by another client
}

// Base returns the shared state.
func (b *EnemyBase) Base() *EnemyBase { return b }

// TakeDamage clamps HP at zero and marks the enemy defeated once.
func (b *EnemyBase) TakeDamage(amount float64, _ string) bool {
	if amount <= 0 || b.Defeated {
		return false
	}
	b.HP -= amount
	if b.HP <= 0 {
		b.HP = 0
		b.Defeated = true
		b.Removed = ReasonDefeated
	}
	return true
}

// Center returns the pixel center of the enemy.
func (b *EnemyBase) Center(tileSize float64) (float64, float64) {
	return b.X + tileSize/2, b.Y + tileSize/2
}

// Snapshot copies the replicated state.
func (b *EnemyBase) Snapshot() EnemySnapshot {
	return EnemySnapshot{
		ID:       b.ID,
		Kind:     b.Kind,
		X:        b.X,
		Y:        b.Y,
		HP:       b.HP,
		Stats:    b.Stats,
		Bubbled:  b.Bubbled,
		Confused: b.Confused,
		Stunned:  b.Stunned,
		Defeated: b.Defeated,
	}
}

func (b *EnemyBase) applySnapshot(s EnemySnapshot) {
	b.X, b.Y = s.X, s.Y
	b.HP = s.HP
	b.Stats = s.Stats
	b.Bubbled, b.Confused, b.Stunned = s.Bubbled, s.Confused, s.Stunned
	b.Defeated = s.Defeated
}

// tickStatus counts down timed conditions and the attack timer.
func (b *EnemyBase) tickStatus(dt float64) {
	b.Bubbled = countdown(b.Bubbled, dt)
	b.Confused = countdown(b.Confused, dt)
	b.Stunned = countdown(b.Stunned, dt)
	b.AttackTimer = countdown(b.AttackTimer, dt)
}

// inert reports whether the enemy may not act this frame.
func (b *EnemyBase) inert() bool {
	return b.Bubbled > 0 || b.Defeated
}

func countdown(v, dt float64) float64 {
	if v <= dt {
		return 0
	}
	return v - dt
}

// newEnemy builds a variant from a snapshot.
func newEnemy(s EnemySnapshot) Enemy {
	base := EnemyBase{ID: s.ID, Kind: s.Kind}
	base.applySnapshot(s)
	switch s.Kind {
	case EnemyTurret:
		return &Turret{EnemyBase: base}
	case EnemyWeepingAngel:
		return &WeepingAngel{EnemyBase: base}
	default:
		base.Kind = EnemyBrawler
		return &Brawler{EnemyBase: base}
	}
}

// FindClosestPlayer returns the nearest player within maxRange that an
// enemy can target, or nil. Flying, phasing and defeated players are
// skipped. Ties go to the lowest player ID.
func FindClosestPlayer(w *World, x, y, maxRange float64) *Player {
	var best *Player
	bestDist := math.Inf(1)
	for _, p := range w.Players() {
		if p.Defeated || p.Flying || p.Phasing {
			continue
		}
		d := math.Hypot(p.X-x, p.Y-y)
		if d > maxRange {
			continue
		}
		if d < bestDist {
			best, bestDist = p, d
		}
	}
	return best
}

// moveEnemy applies a velocity one axis at a time so an enemy slides
// along walls instead of stopping dead.
func (w *World) moveEnemy(b *EnemyBase, vx, vy float64) {
	if nx := b.X + vx; !w.enemyBlocked(nx, b.Y) {
		b.X = nx
	}
	if ny := b.Y + vy; !w.enemyBlocked(b.X, ny) {
		b.Y = ny
	}
}

// enemyBlocked checks the corners of an enemy hitbox at (x, y).
func (w *World) enemyBlocked(x, y float64) bool {
	ts := w.Config.TileSize
	lo, hi := enemyHitboxMargin, ts-1-enemyHitboxMargin
	corners := [4][2]float64{{x + lo, y + lo}, {x + hi, y + lo}, {x + lo, y + hi}, {x + hi, y + hi}}
	for _, c := range corners {
		tx, ty := w.TileAt(c[0], c[1])
		if !w.Map.Walkable(tx, ty) {
			return true
		}
	}
	return false
}

// LineOfSight walks the segment between two pixel points in steps
// proportional to its length and reports whether no wall is crossed.
func (w *World) LineOfSight(x0, y0, x1, y1 float64) bool {
	dist := math.Hypot(x1-x0, y1-y0)
	steps := int(math.Ceil(dist / (w.Config.TileSize / 4)))
	for i := 1; i < steps; i++ {
		t := float64(i) / float64(steps)
		tx, ty := w.TileAt(x0+(x1-x0)*t, y0+(y1-y0)*t)
		if w.Map.At(tx, ty) == mapgen.Wall {
			return false
		}
	}
	return true
}

// chase moves toward (tx, ty). Confusion reverses and slows the chase.
func (w *World) chase(b *EnemyBase, tx, ty float64) {
	dx, dy := tx-b.X, ty-b.Y
	dist := math.Hypot(dx, dy)
	if dist == 0 || b.Stats.Speed <= 0 {
		return
	}
	speed := b.Stats.Speed
	if b.Confused > 0 {
		dx, dy = -dx, -dy
		speed *= confusedSpeedFactor
	}
	w.moveEnemy(b, dx/dist*speed, dy/dist*speed)
}
