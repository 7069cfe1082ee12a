package game

import "time"

// StatusType names a timed condition that one player can put on another.
type StatusType string

const (
	StatusSleep  StatusType = "sleep"
	StatusPoison StatusType = "poison"
)

// Poison tuning. Duration counts down with the frame delta while damage
// ticks are spaced on the wall clock, so a stalled tab does not skip the
// countdown and a fast monitor does not tick damage faster.
const (
	PoisonDamagePerTick = 2.0
	PoisonTickInterval  = time.Second
	TrapPoisonDuration  = 4.0
)

// Poison is a damage-over-time effect.
type Poison struct {
	Duration      float64 // seconds remaining
	DamagePerTick float64
	TickInterval  time.Duration
	LastTick      time.Time
}

// StatusSet holds the conditions currently affecting a player.
type StatusSet struct {
	Poison *Poison
	Sleep  float64 // seconds remaining
}

// Asleep reports whether the player is currently put to sleep.
func (p *Player) Asleep() bool {
	return p.Status.Sleep > 0
}

// ApplySleep puts the player to sleep, extending an active sleep if the
// new one lasts longer. A sleeping player stops where it stands.
func (p *Player) ApplySleep(duration float64) {
	if duration <= 0 || p.Defeated {
		return
	}
	if duration > p.Status.Sleep {
		p.Status.Sleep = duration
	}
	p.Anim = AnimSleep
}

// ApplyPoison replaces any active poison with a fresh one. The first
// damage tick lands one interval after now.
func (p *Player) ApplyPoison(duration, damagePerTick float64, interval time.Duration, now time.Time) {
	if duration <= 0 || p.Defeated {
		return
	}
	p.Status.Poison = &Poison{
		Duration:      duration,
		DamagePerTick: damagePerTick,
		TickInterval:  interval,
		LastTick:      now,
	}
}

// ClearStatus removes every active condition.
func (p *Player) ClearStatus() {
	p.Status = StatusSet{}
	if p.Anim == AnimSleep {
		p.Anim = AnimIdle
	}
}

// updateStatus advances timers and cooldowns for one frame.
func (p *Player) updateStatus(dt float64, w *World) {
	if p.AbilityCooldown > 0 {
		p.AbilityCooldown -= dt
		if p.AbilityCooldown < 0 {
			p.AbilityCooldown = 0
		}
	}
	if p.FireCooldown > 0 {
		p.FireCooldown -= dt
		if p.FireCooldown < 0 {
			p.FireCooldown = 0
		}
	}

	if p.Status.Sleep > 0 {
		p.Status.Sleep -= dt
		if p.Status.Sleep <= 0 {
			p.Status.Sleep = 0
			if p.Anim == AnimSleep {
				p.Anim = AnimIdle
			}
		}
	}

	if ps := p.Status.Poison; ps != nil {
		now := w.clock.Now()
		if now.Sub(ps.LastTick) >= ps.TickInterval {
			ps.LastTick = now
			w.DamagePlayer(p, ps.DamagePerTick*poisonScale(p), p.ID)
		}
		ps.Duration -= dt
		if ps.Duration <= 0 {
			p.Status.Poison = nil
		}
	}
}
