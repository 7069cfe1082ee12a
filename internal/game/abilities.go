package game

import (
	"pokemon-arena/internal/config"
	"pokemon-arena/internal/mapgen"
)

// Character keys with ability behavior.
const (
	CharHypno       = "Hypno"
	CharGengar      = "Gengar"
	CharSableye     = "Sableye"
	CharCorviknight = "Corviknight"
	CharDitto       = "Ditto"
	CharZoroark     = "Hisuian Zoroark"
	CharSmeargle    = "Smeargle"
	CharCacturne    = "Cacturne"
	CharScolipede   = "Scolipede"
	CharSpinda      = "Spinda"
	CharMismagius   = "Mismagius"
	CharPrimarina   = "Primarina"
	CharSnorlax     = "Snorlax"
	CharPikachu     = "Pikachu"
)

// AbilityContext is everything a behavior may touch while it runs.
type AbilityContext struct {
	World     *World
	Player    *Player
	Config    config.AbilityConfig
	Character string // character whose behavior is running
}

func (ctx AbilityContext) ready() bool {
	return ctx.Player.AbilityCooldown <= 0
}

func (ctx AbilityContext) startCooldown() {
	ctx.Player.AbilityCooldown = ctx.Config.Cooldown
}

// inRange treats a zero range as unlimited.
func (ctx AbilityContext) inRange(target *Player) bool {
	if ctx.Config.Range <= 0 {
		return true
	}
	return ctx.Player.DistanceTo(target) <= ctx.Config.Range
}

func (ctx AbilityContext) emit(o Outbound) Outbound {
	ctx.World.Emit(o)
	return o
}

// Behavior is a character's active ability. UseAbility returns the
// outbound message describing the effect, or nil when rejected. A
// rejected call leaves the player and the world unchanged.
type Behavior interface {
	UseAbility(ctx AbilityContext, target *Player) Outbound
}

// Reverter is implemented by behaviors that can be ended early.
type Reverter interface {
	RevertAbility(ctx AbilityContext) Outbound
}

// Traverser is implemented by behaviors that let the player enter
// cells that are normally blocked.
type Traverser interface {
	CanEnter(p *Player, cell mapgen.Cell) bool
}

// BehaviorFor returns the active behavior of a character, or nil for
// passive and unknown characters.
func BehaviorFor(character string) Behavior {
	switch character {
	case CharHypno:
		return hypnosis{}
	case CharGengar:
		return toggle{flag: flagPhasing}
	case CharSableye:
		return toggle{flag: flagPhasing, cooldownOnEnable: true}
	case CharCorviknight:
		return toggle{flag: flagFlying, cooldownOnEnable: true}
	case CharDitto:
		return transform{}
	case CharZoroark:
		return illusion{}
	case CharSmeargle:
		return sketch{}
	case CharCacturne:
		return sandSnare{}
	case CharScolipede:
		return poisonTrail{}
	case CharSpinda:
		return confusionDance{}
	case CharMismagius:
		return darkRoom{}
	case CharPrimarina:
		return bubble{}
	}
	return nil
}

// poisonScale is Snorlax's thick fat passive.
func poisonScale(p *Player) float64 {
	if p.Character == CharSnorlax {
		return 0.5
	}
	return 1
}

// StaticStunDuration is how long Pikachu's static stuns a brawler that
// lands a melee hit.
const StaticStunDuration = 1.5

func validTarget(p, target *Player) bool {
	return target != nil && target != p && target.ID != p.ID && !target.Defeated
}

// hypnosis puts a target in range to sleep.
type hypnosis struct{}

func (hypnosis) UseAbility(ctx AbilityContext, target *Player) Outbound {
	p := ctx.Player
	if !ctx.ready() || !validTarget(p, target) || !ctx.inRange(target) {
		return nil
	}
	ctx.startCooldown()
	apply := StatusApply{Target: target.ID, Type: StatusSleep, Duration: ctx.Config.Duration, From: p.ID}
	ctx.World.deliverStatus(target, apply)
	return apply
}

type toggleFlag string

const (
	flagPhasing toggleFlag = "phasing"
	flagFlying  toggleFlag = "flying"
)

// toggle switches phasing or flying. Gengar pays the cooldown when the
// toggle closes, Sableye and Corviknight when it opens. Closing is always
// allowed unless it would leave the player inside a blocked cell.
type toggle struct {
	flag             toggleFlag
	cooldownOnEnable bool
}

func (t toggle) get(p *Player) bool {
	if t.flag == flagFlying {
		return p.Flying
	}
	return p.Phasing
}

func (t toggle) set(p *Player, on bool) {
	if t.flag == flagFlying {
		p.Flying = on
	} else {
		p.Phasing = on
	}
}

func (t toggle) UseAbility(ctx AbilityContext, _ *Player) Outbound {
	p := ctx.Player
	on := t.get(p)
	if !on {
		if !ctx.ready() {
			return nil
		}
		t.set(p, true)
		if t.cooldownOnEnable {
			ctx.startCooldown()
		}
	} else {
		if p.Moving || !ctx.World.Map.Walkable(p.TileX, p.TileY) {
			return nil
		}
		t.set(p, false)
		if !t.cooldownOnEnable {
			ctx.startCooldown()
		}
	}
	return ctx.emit(AbilityCast{Name: CastToggle, From: p.ID, Flag: string(t.flag), Active: !on})
}

func (t toggle) CanEnter(p *Player, cell mapgen.Cell) bool {
	switch t.flag {
	case flagPhasing:
		return p.Phasing && cell == mapgen.Wall
	case flagFlying:
		return p.Flying && (cell == mapgen.Water || cell == mapgen.Tree)
	}
	return false
}

// transform copies another player's appearance. The cooldown starts on
// revert.
type transform struct{}

func (transform) UseAbility(ctx AbilityContext, target *Player) Outbound {
	p := ctx.Player
	if !ctx.ready() || p.Overlay != nil || !validTarget(p, target) || !ctx.inRange(target) {
		return nil
	}
	if target.Character == CharDitto || target.DisplayCharacter() == CharDitto {
		return nil
	}
	display := target.DisplayCharacter()
	p.Overlay = &Overlay{Kind: OverlayTransform, Original: p.Character, Display: display, Target: target.ID, Via: ctx.Character}
	return ctx.emit(AbilityCast{Name: CastTransform, From: p.ID, Target: target.ID, TargetCharacter: display})
}

func (transform) RevertAbility(ctx AbilityContext) Outbound {
	p := ctx.Player
	if p.Overlay == nil || p.Overlay.Kind != OverlayTransform {
		return nil
	}
	p.Overlay = nil
	ctx.startCooldown()
	return ctx.emit(AbilityCast{Name: CastTransform, From: p.ID, IsRevert: true})
}

// illusion disguises the player as another player. The cooldown starts
// on revert.
type illusion struct{}

func (illusion) UseAbility(ctx AbilityContext, target *Player) Outbound {
	p := ctx.Player
	if !ctx.ready() || p.Overlay != nil || !validTarget(p, target) || !ctx.inRange(target) {
		return nil
	}
	if target.Character == CharZoroark {
		return nil
	}
	display := target.DisplayCharacter()
	p.Overlay = &Overlay{Kind: OverlayIllusion, Original: p.Character, Display: display, Target: target.ID, Via: ctx.Character}
	return ctx.emit(AbilityCast{Name: CastIllusion, From: p.ID, Target: target.ID, TargetCharacter: display})
}

func (illusion) RevertAbility(ctx AbilityContext) Outbound {
	p := ctx.Player
	if p.Overlay == nil || p.Overlay.Kind != OverlayIllusion {
		return nil
	}
	p.Overlay = nil
	ctx.startCooldown()
	return ctx.emit(AbilityCast{Name: CastRevertIllusion, From: p.ID})
}

// sketch snapshots the target's active ability. Targets without one
// leave the player with an empty copy.
type sketch struct{}

func (sketch) UseAbility(ctx AbilityContext, target *Player) Outbound {
	p := ctx.Player
	if !ctx.ready() || !validTarget(p, target) || !ctx.inRange(target) {
		return nil
	}
	copied := CopiedAbility{Config: config.NoAbility}
	if target.Character != CharSmeargle && BehaviorFor(target.Character) != nil {
		if cfg, ok := ctx.World.Abilities.Get(target.Character); ok && cfg.IsActive() {
			copied = CopiedAbility{Character: target.Character, Config: cfg}
		}
	}
	p.Copied = &copied
	ctx.startCooldown()
	return ctx.emit(AbilityCast{Name: CastSketch, From: p.ID, Target: target.ID, TargetCharacter: copied.Character})
}

// CanEnter lets a copied traversal ability work for Smeargle.
func (sketch) CanEnter(p *Player, cell mapgen.Cell) bool {
	if p.Copied == nil {
		return false
	}
	if t, ok := BehaviorFor(p.Copied.Character).(Traverser); ok {
		return t.CanEnter(p, cell)
	}
	return false
}

// sandSnare places a slowing trap on the tile the player faces.
type sandSnare struct{}

func (sandSnare) UseAbility(ctx AbilityContext, _ *Player) Outbound {
	p := ctx.Player
	if !ctx.ready() {
		return nil
	}
	fx, fy := p.Dir.Vector()
	x, y := p.TileX+fx, p.TileY+fy
	ttl := ctx.Config.Duration
	if ttl <= 0 {
		ttl = SandTrapLifetime
	}
	if !ctx.World.PlaceTrap(x, y, TrapSand, p.ID, ttl) {
		return nil
	}
	ctx.startCooldown()
	return ctx.emit(AbilityCast{Name: CastSandSnare, From: p.ID, TileX: x, TileY: y, Duration: ttl})
}

// poisonTrail leaves a poison tile under the player. The owner is immune.
type poisonTrail struct{}

func (poisonTrail) UseAbility(ctx AbilityContext, _ *Player) Outbound {
	p := ctx.Player
	if !ctx.ready() {
		return nil
	}
	ttl := ctx.Config.Duration
	if ttl <= 0 {
		ttl = PoisonTrapLifetime
	}
	if !ctx.World.PlaceTrap(p.TileX, p.TileY, TrapPoison, p.ID, ttl) {
		return nil
	}
	ctx.startCooldown()
	return ctx.emit(AbilityCast{Name: CastPoisonTrail, From: p.ID, TileX: p.TileX, TileY: p.TileY, Duration: ttl})
}

// confusionDance confuses every enemy within range of the dancer.
type confusionDance struct{}

func (confusionDance) UseAbility(ctx AbilityContext, _ *Player) Outbound {
	p := ctx.Player
	if !ctx.ready() {
		return nil
	}
	ctx.startCooldown()
	cast := AbilityCast{Name: CastConfusionDance, From: p.ID, X: p.X, Y: p.Y, Duration: ctx.Config.Duration, Range: ctx.Config.Range}
	ctx.World.applyConfusion(cast)
	return ctx.emit(cast)
}

// darkRoom darkens the arena for everyone.
type darkRoom struct{}

func (darkRoom) UseAbility(ctx AbilityContext, _ *Player) Outbound {
	p := ctx.Player
	if !ctx.ready() {
		return nil
	}
	ctx.startCooldown()
	ctx.World.setDarkRoom(ctx.Config.Duration)
	return ctx.emit(AbilityCast{Name: CastDarkRoom, From: p.ID, Duration: ctx.Config.Duration})
}

// bubble traps the nearest enemy in range.
type bubble struct{}

func (bubble) UseAbility(ctx AbilityContext, _ *Player) Outbound {
	p := ctx.Player
	if !ctx.ready() {
		return nil
	}
	e := ctx.World.NearestEnemy(p.X, p.Y, ctx.Config.Range)
	if e == nil {
		return nil
	}
	ctx.startCooldown()
	cast := AbilityCast{Name: CastBubble, From: p.ID, Target: e.Base().ID, Duration: ctx.Config.Duration}
	ctx.World.applyBubble(cast)
	return ctx.emit(cast)
}
