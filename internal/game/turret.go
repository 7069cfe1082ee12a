package game

// Turret is stationary and shoots at players it can see.
type Turret struct {
	EnemyBase
}

// Update fires at the closest visible player when the attack timer is ready.
func (t *Turret) Update(dt float64, w *World) {
	if t.inert() {
		return
	}
	if t.Stunned > 0 || t.AttackTimer > 0 {
		return
	}
	target := FindClosestPlayer(w, t.X, t.Y, t.Stats.DetectRange)
	if target == nil {
		return
	}
	cx, cy := t.Center(w.Config.TileSize)
	px, py := target.Center(w.Config.TileSize)
	if !w.LineOfSight(cx, cy, px, py) {
		return
	}
	dx, dy := px-cx, py-cy
	if t.Confused > 0 {
		dx, dy = -dx, -dy
	}
	proj := NewProjectile(w.nextProjectileID(), t.ID, cx, cy, dx, dy, EnemyProjectileSpeed, t.Stats.Damage, EnemyProjectileLife)
	proj.FromEnemy = true
	if !w.AddProjectile(proj) {
		return
	}
	t.AttackTimer = t.Stats.AttackCooldown
	w.Emit(proj.Fired())
}
