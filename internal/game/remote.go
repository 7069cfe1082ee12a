package game

import (
	"errors"
	"fmt"
	"math"

	"pokemon-arena/internal/config"
)

// Errors returned by the apply methods. The sync layer counts them; none
// of them is fatal.
var (
	ErrStale          = errors.New("stale update")
	ErrSelf           = errors.New("update about the local player")
	ErrNotOwner       = errors.New("not the enemy owner")
	ErrIsOwner        = errors.New("enemy owner ignores mirrored enemy state")
	ErrUnknownEntity  = errors.New("unknown entity")
	ErrUnknownAbility = errors.New("unknown ability")
	ErrNotAddressed   = errors.New("message addressed to another player")
)

// RemoteState is the replicated record of a player simulated elsewhere.
type RemoteState struct {
	ID        string
	Name      string
	Character string
	X, Y      float64
	Dir       Direction
	Anim      string
	Typing    bool
	Scale     float64
	Timestamp int64 // sender clock, milliseconds
}

// LocalState describes the local player for broadcasting.
func (w *World) LocalState(timestamp int64) (RemoteState, bool) {
	p := w.LocalPlayer()
	if p == nil {
		return RemoteState{}, false
	}
	return RemoteState{
		ID:        p.ID,
		Name:      p.Name,
		Character: p.Character,
		X:         p.X,
		Y:         p.Y,
		Dir:       p.Dir,
		Anim:      p.Anim,
		Typing:    p.Typing,
		Scale:     p.Scale,
		Timestamp: timestamp,
	}, true
}

// UpsertRemotePlayer creates or updates a mirror. Records older than the
// last applied one are dropped.
func (w *World) UpsertRemotePlayer(s RemoteState) error {
	if s.ID == "" {
		return ErrUnknownEntity
	}
	if s.ID == w.LocalID {
		return ErrSelf
	}
	p := w.players[s.ID]
	if p == nil {
		p = &Player{ID: s.ID, HP: PlayerMaxHP, MaxHP: PlayerMaxHP, Level: 1, Remote: true}
		w.players[s.ID] = p
	} else if s.Timestamp < p.LastUpdate {
		return ErrStale
	}
	ts := w.Config.TileSize
	p.Name = s.Name
	p.Character = s.Character
	p.X, p.Y = s.X, s.Y
	p.TileX, p.TileY = int(math.Round(s.X/ts)), int(math.Round(s.Y/ts))
	p.TargetX, p.TargetY = p.TileX, p.TileY
	p.Dir = s.Dir
	if p.Dir == "" {
		p.Dir = DirDown
	}
	p.Anim = s.Anim
	p.Typing = s.Typing
	p.Scale = s.Scale
	if p.Scale == 0 {
		p.Scale = 1
	}
	p.LastUpdate = s.Timestamp
	return nil
}

// RemovePlayer drops a player. Any overlay borrowed from it stays.
func (w *World) RemovePlayer(id string) bool {
	if _, ok := w.players[id]; !ok {
		return false
	}
	delete(w.players, id)
	return true
}

// ApplyAbilityCast mirrors another client's ability on this world.
func (w *World) ApplyAbilityCast(cast AbilityCast) error {
	if cast.From == w.LocalID {
		return ErrSelf
	}
	caster := w.players[cast.From]

	switch cast.Name {
	case CastSandSnare:
		w.PlaceTrap(cast.TileX, cast.TileY, TrapSand, cast.From, cast.Duration)
	case CastPoisonTrail:
		w.PlaceTrap(cast.TileX, cast.TileY, TrapPoison, cast.From, cast.Duration)
	case CastConfusionDance:
		w.applyConfusion(cast)
	case CastBubble:
		w.applyBubble(cast)
	case CastDarkRoom:
		w.setDarkRoom(cast.Duration)
	case CastTransform, CastIllusion, CastRevertIllusion, CastSketch, CastToggle:
		if caster == nil {
			return fmt.Errorf("%w: player %s", ErrUnknownEntity, cast.From)
		}
		w.applyCasterChange(caster, cast)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAbility, cast.Name)
	}
	return nil
}

func (w *World) applyCasterChange(caster *Player, cast AbilityCast) {
	switch cast.Name {
	case CastTransform:
		if cast.IsRevert {
			caster.Overlay = nil
			return
		}
		caster.Overlay = &Overlay{Kind: OverlayTransform, Original: caster.Character, Display: cast.TargetCharacter, Target: cast.Target, Via: CharDitto}
	case CastIllusion:
		caster.Overlay = &Overlay{Kind: OverlayIllusion, Original: caster.Character, Display: cast.TargetCharacter, Target: cast.Target, Via: CharZoroark}
	case CastRevertIllusion:
		caster.Overlay = nil
	case CastSketch:
		copied := CopiedAbility{Config: config.NoAbility}
		if cfg, ok := w.Abilities.Get(cast.TargetCharacter); ok && cast.TargetCharacter != "" {
			copied = CopiedAbility{Character: cast.TargetCharacter, Config: cfg}
		}
		caster.Copied = &copied
	case CastToggle:
		if toggleFlag(cast.Flag) == flagFlying {
			caster.Flying = cast.Active
		} else {
			caster.Phasing = cast.Active
		}
	}
}

// ApplyStatus applies a status another client aimed at the local player.
func (w *World) ApplyStatus(msg StatusApply) error {
	if msg.Target != w.LocalID {
		return ErrNotAddressed
	}
	p := w.LocalPlayer()
	if p == nil {
		return ErrUnknownEntity
	}
	w.applyStatusLocal(p, msg)
	return nil
}

// ApplyPlayerHit applies damage another client dealt to the local player.
func (w *World) ApplyPlayerHit(msg PlayerHit) error {
	if msg.Target != w.LocalID {
		return ErrNotAddressed
	}
	p := w.LocalPlayer()
	if p == nil {
		return ErrUnknownEntity
	}
	w.DamagePlayer(p, msg.Amount, msg.From)
	return nil
}

// ApplyEnemyHit applies damage a peer dealt to an enemy this client owns.
func (w *World) ApplyEnemyHit(msg EnemyHit) error {
	if !w.IsEnemyOwner() {
		return ErrNotOwner
	}
	e := w.enemies[msg.EnemyID]
	if e == nil {
		return fmt.Errorf("%w: enemy %s", ErrUnknownEntity, msg.EnemyID)
	}
	w.HitEnemy(e, msg.Amount, msg.SourceCharacter, msg.From)
	return nil
}

// ApplyEnemySpawn adds a mirror of an enemy the owner spawned.
func (w *World) ApplyEnemySpawn(msg EnemySpawned) error {
	return w.upsertMirror(msg.Enemy)
}

// ApplyEnemyState overwrites mirrors with the owner's snapshots.
func (w *World) ApplyEnemyState(snaps []EnemySnapshot) error {
	if w.IsEnemyOwner() {
		return ErrIsOwner
	}
	for _, s := range snaps {
		if err := w.upsertMirror(s); err != nil {
			return err
		}
	}
	return nil
}

func (w *World) upsertMirror(s EnemySnapshot) error {
	if w.IsEnemyOwner() {
		return ErrIsOwner
	}
	if s.ID == "" {
		return ErrUnknownEntity
	}
	if e := w.enemies[s.ID]; e != nil {
		e.Base().applySnapshot(s)
		return nil
	}
	e := newEnemy(s)
	e.Base().Mirror = true
	w.enemies[s.ID] = e
	return nil
}

// ApplyEnemyRemove drops a mirrored enemy.
func (w *World) ApplyEnemyRemove(msg EnemyRemoved) error {
	if w.IsEnemyOwner() {
		return ErrIsOwner
	}
	if _, ok := w.enemies[msg.ID]; !ok {
		return ErrUnknownEntity
	}
	delete(w.enemies, msg.ID)
	return nil
}

// ApplyProjectileFired adds a display-only copy of a peer's projectile.
func (w *World) ApplyProjectileFired(msg ProjectileFired) error {
	if msg.OwnerID == w.LocalID {
		return ErrSelf
	}
	if msg.FromEnemy && w.IsEnemyOwner() {
		return ErrIsOwner
	}
	if !w.AddProjectile(mirrorProjectile(msg)) {
		return fmt.Errorf("projectile cap reached")
	}
	return nil
}

// SetEnemyOwner records which client simulates enemies. Gaining ownership
// adopts every mirror so enemies keep moving from their last known state;
// losing it turns local enemies into mirrors.
func (w *World) SetEnemyOwner(id string) {
	prev := w.owner
	if prev == id {
		return
	}
	w.owner = id
	becameOwner := w.IsEnemyOwner()
	for _, e := range w.enemies {
		e.Base().Mirror = !becameOwner
	}
	if becameOwner {
		w.waveTimer = FirstWaveDelay
	}
	w.record(EventTypeOwnerChange, id, OwnerChangePayload{Previous: prev, Current: id})
}

// EnemySnapshots returns the state of every enemy ordered by ID.
func (w *World) EnemySnapshots() []EnemySnapshot {
	enemies := w.Enemies()
	out := make([]EnemySnapshot, 0, len(enemies))
	for _, e := range enemies {
		out = append(out, e.Base().Snapshot())
	}
	return out
}
