package game

import (
	"math"

	"pokemon-arena/internal/config"
	"pokemon-arena/internal/mapgen"
)

// Direction is the facing of a player.
type Direction string

const (
	DirUp    Direction = "up"
	DirDown  Direction = "down"
	DirLeft  Direction = "left"
	DirRight Direction = "right"
)

// Vector returns the unit tile step for the direction.
func (d Direction) Vector() (int, int) {
	switch d {
	case DirUp:
		return 0, -1
	case DirLeft:
		return -1, 0
	case DirRight:
		return 1, 0
	default:
		return 0, 1
	}
}

// directionOf picks a facing for a step. Horizontal wins on diagonals.
func directionOf(dx, dy int) Direction {
	switch {
	case dx < 0:
		return DirLeft
	case dx > 0:
		return DirRight
	case dy < 0:
		return DirUp
	default:
		return DirDown
	}
}

// Animation names shared with the renderer.
const (
	AnimIdle  = "idle"
	AnimWalk  = "walk"
	AnimSleep = "sleep"
	AnimFaint = "faint"
)

// Player tuning
const (
	PlayerMaxHP           = 100.0
	PlayerProjectileSpeed = 8.0 // pixels per frame
	PlayerProjectileDmg   = 10.0
	PlayerProjectileLife  = 1.5 // seconds
	PlayerFireCooldown    = 0.4
)

// OverlayKind distinguishes the two identity-swapping abilities.
type OverlayKind string

const (
	OverlayTransform OverlayKind = "transform"
	OverlayIllusion  OverlayKind = "illusion"
)

// Overlay replaces the appearance a player shows to others while
// remembering who the player really is.
type Overlay struct {
	Kind     OverlayKind
	Original string // the player's own character key
	Display  string // character key shown instead
	Target   string // player whose look was borrowed
	Via      string // character whose ability created the overlay
}

// CopiedAbility is an ability snapshot taken with sketch.
type CopiedAbility struct {
	Character string
	Config    config.AbilityConfig
}

// Player is a participant in the arena. Local players are simulated by
// this client; remote players are mirrors written only by the sync layer.
type Player struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Character string `json:"character"`

	// Grid position and pixel position (top-left of the tile)
	TileX   int     `json:"tileX"`
	TileY   int     `json:"tileY"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	TargetX int     `json:"-"`
	TargetY int     `json:"-"`
	Moving  bool    `json:"moving"`

	Dir   Direction `json:"dir"`
	Anim  string    `json:"anim"`
	Scale float64   `json:"scale"`

	HP       float64 `json:"hp"`
	MaxHP    float64 `json:"maxHp"`
	Level    int     `json:"level"`
	Currency int     `json:"currency"`
	Defeated bool    `json:"defeated"`
	Items    []Item  `json:"items"`

	Status  StatusSet      `json:"-"`
	Overlay *Overlay       `json:"-"`
	Phasing bool           `json:"phasing"`
	Flying  bool           `json:"flying"`
	Copied  *CopiedAbility `json:"-"`

	AbilityCooldown float64 `json:"-"`
	FireCooldown    float64 `json:"-"`

	Typing     bool  `json:"typing"`
	Remote     bool  `json:"-"`
	LastUpdate int64 `json:"-"` // timestamp (ms) of the last applied mirror record
}

// NewPlayer creates a player standing on the given tile.
func NewPlayer(id, name, character string, at mapgen.Point, tileSize float64) *Player {
	return &Player{
		ID:        id,
		Name:      name,
		Character: character,
		TileX:     at.X,
		TileY:     at.Y,
		X:         float64(at.X) * tileSize,
		Y:         float64(at.Y) * tileSize,
		TargetX:   at.X,
		TargetY:   at.Y,
		Dir:       DirDown,
		Anim:      AnimIdle,
		Scale:     1,
		HP:        PlayerMaxHP,
		MaxHP:     PlayerMaxHP,
		Level:     1,
	}
}

// DisplayCharacter returns the character other players should see.
func (p *Player) DisplayCharacter() string {
	if p.Overlay != nil && p.Overlay.Display != "" {
		return p.Overlay.Display
	}
	return p.Character
}

// CombatCharacter is the character credited with the player's hits. A
// transform takes on the copied character; an illusion is only skin deep.
func (p *Player) CombatCharacter() string {
	if p.Overlay != nil && p.Overlay.Kind == OverlayTransform && p.Overlay.Display != "" {
		return p.Overlay.Display
	}
	return p.Character
}

// HasItem reports whether the player holds the item.
func (p *Player) HasItem(item Item) bool {
	for _, it := range p.Items {
		if it == item {
			return true
		}
	}
	return false
}

// GiveItem adds an item if it is not already held.
func (p *Player) GiveItem(item Item) {
	if !p.HasItem(item) {
		p.Items = append(p.Items, item)
	}
}

// Move starts a one-tile step. It is rejected, with no state change, when
// a step is already in progress, the player cannot act, or the destination
// cannot be entered.
func (p *Player) Move(dx, dy int, w *World) bool {
	if p.Moving || p.Defeated || p.Asleep() {
		return false
	}
	if dx == 0 && dy == 0 {
		return false
	}
	dx, dy = sign(dx), sign(dy)
	tx, ty := p.TileX+dx, p.TileY+dy
	if !w.CanEnter(p, tx, ty) {
		return false
	}
	p.TargetX, p.TargetY = tx, ty
	p.Moving = true
	p.Dir = directionOf(dx, dy)
	p.Anim = AnimWalk
	return true
}

// Face turns the player without moving.
func (p *Player) Face(d Direction) {
	if !p.Defeated && !p.Asleep() {
		p.Dir = d
	}
}

// EffectiveSpeed returns pixels per frame for the current tile.
func (p *Player) EffectiveSpeed(w *World) float64 {
	speed := w.Config.BaseSpeed
	if t := w.TrapAt(p.TileX, p.TileY); t != nil && t.Kind == TrapSand && !p.HasItem(ItemProtectivePads) {
		speed *= w.Config.SandSlow
	}
	if p.HasItem(ItemChoiceScarf) {
		speed *= ChoiceScarfMultiplier
	}
	return speed
}

// updateMovement advances an in-progress step toward the target tile and
// snaps onto it once within one speed step.
func (p *Player) updateMovement(w *World) {
	if !p.Moving {
		return
	}
	speed := p.EffectiveSpeed(w)
	tx := float64(p.TargetX) * w.Config.TileSize
	ty := float64(p.TargetY) * w.Config.TileSize
	dx, dy := tx-p.X, ty-p.Y

	if math.Abs(dx) <= speed && math.Abs(dy) <= speed {
		p.X, p.Y = tx, ty
		p.TileX, p.TileY = p.TargetX, p.TargetY
		p.Moving = false
		if p.Anim == AnimWalk {
			p.Anim = AnimIdle
		}
		w.onPlayerArrive(p)
		return
	}

	step := speed
	if w.Config.NormalizeDiagonal && dx != 0 && dy != 0 {
		step /= math.Sqrt2
	}
	p.X += signf(dx) * math.Min(step, math.Abs(dx))
	p.Y += signf(dy) * math.Min(step, math.Abs(dy))
}

// TakeDamage lowers health, never below zero. Returns true only on the
// call that first defeats the player.
func (p *Player) TakeDamage(amount float64) bool {
	if amount <= 0 || p.Defeated {
		return false
	}
	p.HP -= amount
	if p.HP > 0 {
		return false
	}
	p.HP = 0
	p.Defeated = true
	p.Moving = false
	p.Anim = AnimFaint
	p.Status = StatusSet{}
	return true
}

// Heal raises health up to MaxHP.
func (p *Player) Heal(amount float64) {
	if amount <= 0 || p.Defeated {
		return
	}
	p.HP = math.Min(p.HP+amount, p.MaxHP)
}

// Revive restores a defeated player at full health on the given tile.
func (p *Player) Revive(at mapgen.Point, tileSize float64) {
	p.HP = p.MaxHP
	p.Defeated = false
	p.Status = StatusSet{}
	p.TileX, p.TileY = at.X, at.Y
	p.TargetX, p.TargetY = at.X, at.Y
	p.X, p.Y = float64(at.X)*tileSize, float64(at.Y)*tileSize
	p.Moving = false
	p.Anim = AnimIdle
}

// Center returns the pixel center of the player's sprite.
func (p *Player) Center(tileSize float64) (float64, float64) {
	return p.X + tileSize/2, p.Y + tileSize/2
}

// DistanceTo returns the pixel distance between two players.
func (p *Player) DistanceTo(other *Player) float64 {
	return math.Hypot(other.X-p.X, other.Y-p.Y)
}

// Fire shoots a projectile in direction (dx, dy), or along the facing
// when the direction is zero. Returns nil if the player cannot shoot.
func (p *Player) Fire(w *World, dx, dy float64) *Projectile {
	if p.Remote || p.Defeated || p.Asleep() || p.FireCooldown > 0 {
		return nil
	}
	if dx == 0 && dy == 0 {
		fx, fy := p.Dir.Vector()
		dx, dy = float64(fx), float64(fy)
	}
	cx, cy := p.Center(w.Config.TileSize)
	proj := NewProjectile(w.nextProjectileID(), p.ID, cx, cy, dx, dy, PlayerProjectileSpeed, PlayerProjectileDmg, PlayerProjectileLife)
	proj.SourceCharacter = p.CombatCharacter()
	if !w.AddProjectile(proj) {
		return nil
	}
	p.FireCooldown = PlayerFireCooldown
	w.Emit(proj.Fired())
	return proj
}

// abilityConfig resolves the configuration for a behavior the player runs.
func (p *Player) abilityConfig(w *World, character string) (config.AbilityConfig, bool) {
	if p.Copied != nil && p.Copied.Character == character && character != p.Character {
		return p.Copied.Config, true
	}
	return w.Abilities.Get(character)
}

// UseAbility runs the player's own active ability. It returns the outbound
// message that was emitted, or nil when the ability was rejected.
func (p *Player) UseAbility(w *World, target *Player) Outbound {
	if p.Remote || p.Defeated || p.Asleep() {
		return nil
	}
	b := BehaviorFor(p.Character)
	if b == nil {
		return nil
	}
	cfg, ok := p.abilityConfig(w, p.Character)
	if !ok || !cfg.IsActive() {
		return nil
	}
	out := b.UseAbility(AbilityContext{World: w, Player: p, Config: cfg, Character: p.Character}, target)
	if out != nil {
		w.recordAbility(p, out)
	}
	return out
}

// UseCopiedAbility runs the ability captured by sketch.
func (p *Player) UseCopiedAbility(w *World, target *Player) Outbound {
	if p.Remote || p.Defeated || p.Asleep() || p.Copied == nil || !p.Copied.Config.IsActive() {
		return nil
	}
	b := BehaviorFor(p.Copied.Character)
	if b == nil {
		return nil
	}
	ctx := AbilityContext{World: w, Player: p, Config: p.Copied.Config, Character: p.Copied.Character}
	out := b.UseAbility(ctx, target)
	if out != nil {
		w.recordAbility(p, out)
	}
	return out
}

// RevertAbility ends a reversible ability (transform or illusion).
func (p *Player) RevertAbility(w *World) Outbound {
	if p.Remote || p.Overlay == nil {
		return nil
	}
	r, ok := BehaviorFor(p.Overlay.Via).(Reverter)
	if !ok {
		return nil
	}
	cfg, _ := p.abilityConfig(w, p.Overlay.Via)
	out := r.RevertAbility(AbilityContext{World: w, Player: p, Config: cfg, Character: p.Overlay.Via})
	if out != nil {
		w.recordAbility(p, out)
	}
	return out
}

func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	}
	return 0
}

func signf(v float64) float64 {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	}
	return 0
}
