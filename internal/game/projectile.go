package game

import "math"

// Projectile is a moving shot. Positions are pixel centers.
// Projectiles travel through space over multiple frames and check collision each frame.
type Projectile struct {
	ID      string // Unique identifier
	OwnerID string // Player or enemy that fired it

	// Position and motion
	X, Y   float64 // Current position
	VX, VY float64 // Velocity (pixels per frame)

	// Combat
	Damage          float64
	HitRadius       float64
	SourceCharacter string // Shooter's displayed character, reported with enemy hits
	FromEnemy       bool

	// Mirror projectiles were fired on another client. They are drawn and
	// stopped by walls but never deal damage here.
	Mirror bool

	Rotation float64 // Angle of travel (radians)
	Lifetime float64 // Remaining seconds
}

// Projectile system constants
const (
	ProjectileRadius = 6.0  // Collision radius
	TargetRadius     = 12.0 // Player and enemy hitbox radius
)

// NewProjectile creates a projectile at (x, y) travelling along (dx, dy).
func NewProjectile(id, ownerID string, x, y, dx, dy, speed, damage, lifetime float64) *Projectile {
	dist := math.Hypot(dx, dy)
	if dist == 0 {
		dist = 1 // Prevent division by zero
	}
	dirX, dirY := dx/dist, dy/dist
	return &Projectile{
		ID:        id,
		OwnerID:   ownerID,
		X:         x,
		Y:         y,
		VX:        dirX * speed,
		VY:        dirY * speed,
		Damage:    damage,
		HitRadius: ProjectileRadius,
		Rotation:  math.Atan2(dirY, dirX),
		Lifetime:  lifetime,
	}
}

// Update moves the projectile and decrements its lifetime.
// Returns false if the projectile should be removed.
func (p *Projectile) Update(dt float64) bool {
	p.X += p.VX
	p.Y += p.VY
	p.Lifetime -= dt
	return p.Lifetime > 0
}

// Hits tests the projectile against a circular target centered at (cx, cy).
func (p *Projectile) Hits(cx, cy float64) bool {
	return math.Hypot(cx-p.X, cy-p.Y) < p.HitRadius+TargetRadius
}

// Fired describes the projectile for peers.
func (p *Projectile) Fired() ProjectileFired {
	return ProjectileFired{
		ID:        p.ID,
		OwnerID:   p.OwnerID,
		X:         p.X,
		Y:         p.Y,
		VX:        p.VX,
		VY:        p.VY,
		Lifetime:  p.Lifetime,
		FromEnemy: p.FromEnemy,
	}
}

// mirrorProjectile rebuilds a peer's projectile for display.
func mirrorProjectile(msg ProjectileFired) *Projectile {
	return &Projectile{
		ID:        msg.ID,
		OwnerID:   msg.OwnerID,
		X:         msg.X,
		Y:         msg.Y,
		VX:        msg.VX,
		VY:        msg.VY,
		HitRadius: ProjectileRadius,
		FromEnemy: msg.FromEnemy,
		Mirror:    true,
		Rotation:  math.Atan2(msg.VY, msg.VX),
		Lifetime:  msg.Lifetime,
	}
}
