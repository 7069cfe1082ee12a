package game

import "math"

// Brawler chases the closest player and hits it in melee range.
type Brawler struct {
	EnemyBase
}

// Update chases or attacks.
func (b *Brawler) Update(dt float64, w *World) {
	if b.inert() {
		return
	}
	if b.Stunned > 0 {
		return
	}
	target := FindClosestPlayer(w, b.X, b.Y, b.Stats.DetectRange)
	if target == nil {
		return
	}
	if math.Hypot(target.X-b.X, target.Y-b.Y) > b.Stats.AttackRange {
		w.chase(&b.EnemyBase, target.X, target.Y)
		return
	}
	if b.AttackTimer > 0 {
		return
	}
	b.AttackTimer = b.Stats.AttackCooldown
	w.DamagePlayer(target, b.Stats.Damage, b.ID)
	if target.Character == CharPikachu {
		b.Stunned = StaticStunDuration
	}
}
