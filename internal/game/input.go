package game

// Key bindings for the local player.
const (
	KeyUp      = "ArrowUp"
	KeyDown    = "ArrowDown"
	KeyLeft    = "ArrowLeft"
	KeyRight   = "ArrowRight"
	KeyAbility = "q"
	KeyRevert  = "r"
	KeyCopied  = "e"
	KeyFire    = " "
)

// KeyHandler is implemented by behaviors with extra key bindings.
type KeyHandler interface {
	OnKeyDown(ctx AbilityContext, key string, target *Player) Outbound
}

// OnKeyDown lets Smeargle fire its sketched ability.
func (sketch) OnKeyDown(ctx AbilityContext, key string, target *Player) Outbound {
	if key != KeyCopied {
		return nil
	}
	return ctx.Player.UseCopiedAbility(ctx.World, target)
}

// HandleKey routes a key press for the local player. target is the player
// currently selected for targeted abilities and may be nil. It reports
// whether the key did anything.
func (w *World) HandleKey(key string, target *Player) bool {
	p := w.LocalPlayer()
	if p == nil {
		return false
	}
	switch key {
	case KeyUp:
		return p.Move(0, -1, w)
	case KeyDown:
		return p.Move(0, 1, w)
	case KeyLeft:
		return p.Move(-1, 0, w)
	case KeyRight:
		return p.Move(1, 0, w)
	case KeyAbility:
		return p.UseAbility(w, target) != nil
	case KeyRevert:
		return p.RevertAbility(w) != nil
	case KeyFire:
		return p.Fire(w, 0, 0) != nil
	}
	if h, ok := BehaviorFor(p.Character).(KeyHandler); ok {
		cfg, _ := p.abilityConfig(w, p.Character)
		return h.OnKeyDown(AbilityContext{World: w, Player: p, Config: cfg, Character: p.Character}, key, target) != nil
	}
	return false
}
