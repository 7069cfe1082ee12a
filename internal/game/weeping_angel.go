package game

import "math"

// WeepingAngel tuning
const (
	AngelStareLimit   = 3.0  // seconds of continuous observation before it crumbles
	AngelAbsenceLimit = 90.0 // seconds without a target before it despawns
)

// angelBreakers are the characters whose attacks can hurt an angel.
var angelBreakers = map[string]bool{
	CharGengar:    true,
	CharSableye:   true,
	CharMismagius: true,
	CharZoroark:   true,
}

// CanDamageAngel reports whether a character's hits affect angels.
func CanDamageAngel(character string) bool {
	return angelBreakers[character]
}

// WeepingAngel freezes while watched and crumbles if watched too long.
type WeepingAngel struct {
	EnemyBase
	StareTime float64
	Absent    float64
}

// TakeDamage ignores hits from characters outside the allow-list.
func (a *WeepingAngel) TakeDamage(amount float64, sourceCharacter string) bool {
	if !CanDamageAngel(sourceCharacter) {
		return false
	}
	return a.EnemyBase.TakeDamage(amount, sourceCharacter)
}

// Update freezes while watched, otherwise hunts the closest player.
func (a *WeepingAngel) Update(dt float64, w *World) {
	if a.inert() {
		return
	}
	if w.angelWatched(&a.EnemyBase) {
		a.StareTime += dt
		if a.StareTime >= AngelStareLimit {
			a.Removed = ReasonStared
		}
		return
	}
	a.StareTime = 0

	target := FindClosestPlayer(w, a.X, a.Y, a.Stats.DetectRange)
	if target == nil {
		a.Absent += dt
		if a.Absent >= AngelAbsenceLimit {
			a.Removed = ReasonDespawned
		}
		return
	}
	a.Absent = 0

	if a.Stunned > 0 {
		return
	}
	if math.Hypot(target.X-a.X, target.Y-a.Y) > a.Stats.AttackRange {
		w.chase(&a.EnemyBase, target.X, target.Y)
		return
	}
	if a.AttackTimer > 0 {
		return
	}
	a.AttackTimer = a.Stats.AttackCooldown
	w.DamagePlayer(target, a.Stats.Damage, a.ID)
}

// angelWatched reports whether any active player within sight range faces
// the enemy.
func (w *World) angelWatched(b *EnemyBase) bool {
	for _, p := range w.Players() {
		if p.Defeated || p.Asleep() {
			continue
		}
		if ViewCone(b.Stats.DetectRange).Contains(p.X, p.Y, b.X, b.Y, p.Dir.Angle()) {
			return true
		}
	}
	return false
}
