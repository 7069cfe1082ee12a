package game

import (
	"testing"

	"pokemon-arena/internal/config"
	"pokemon-arena/internal/mapgen"
)

func countKind(out []Outbound, kind string) int {
	n := 0
	for _, o := range out {
		if KindOf(o) == kind {
			n++
		}
	}
	return n
}

func TestBehaviorForPassiveIsNil(t *testing.T) {
	for _, c := range []string{CharSnorlax, CharPikachu, "Missingno"} {
		if BehaviorFor(c) != nil {
			t.Errorf("Expected no active behavior for %s", c)
		}
	}
	w, _ := newTestWorld(t)
	p := addLocal(w, CharSnorlax, 2, 2)
	if p.UseAbility(w, nil) != nil {
		t.Error("Passive character should not use an ability")
	}
}

func TestHypnosisAppliesRemoteSleep(t *testing.T) {
	w, _ := newTestWorld(t)
	p := addLocal(w, CharHypno, 2, 2)
	target := addRemote(w, "p2", CharPikachu, 4, 2)

	out := p.UseAbility(w, target)
	apply, ok := out.(StatusApply)
	if !ok {
		t.Fatalf("Expected StatusApply, got %T", out)
	}
	if apply.Target != "p2" || apply.Type != StatusSleep || apply.Duration != 3 {
		t.Errorf("Unexpected status %+v", apply)
	}
	if p.AbilityCooldown != 10 {
		t.Errorf("Expected cooldown 10, got %v", p.AbilityCooldown)
	}
	if target.Asleep() {
		t.Error("A mirror is only put to sleep by its own client")
	}
}

func TestCooldownGatesSecondCall(t *testing.T) {
	w, _ := newTestWorld(t)
	p := addLocal(w, CharHypno, 2, 2)
	target := addRemote(w, "p2", CharPikachu, 4, 2)

	if p.UseAbility(w, target) == nil {
		t.Fatal("First call should succeed")
	}
	if p.UseAbility(w, target) != nil {
		t.Error("Second call during cooldown should be a no-op")
	}
	if n := countKind(w.DrainOutbox(), "status"); n != 1 {
		t.Errorf("Expected side effects once, got %d status messages", n)
	}
}

func TestHypnosisOutOfRange(t *testing.T) {
	w, _ := newTestWorld(t)
	p := addLocal(w, CharHypno, 2, 2)
	target := addRemote(w, "p2", CharPikachu, 10, 8)

	if p.UseAbility(w, target) != nil {
		t.Error("Target beyond range should be rejected")
	}
	if p.AbilityCooldown != 0 {
		t.Error("Rejected ability must not start the cooldown")
	}
}

func TestDittoCannotTransformIntoDitto(t *testing.T) {
	w, _ := newTestWorld(t)
	p := addLocal(w, CharDitto, 2, 2)
	target := addRemote(w, "p2", CharDitto, 3, 2)

	if out := p.UseAbility(w, target); out != nil {
		t.Fatalf("Expected nil, got %+v", out)
	}
	if p.Overlay != nil || p.AbilityCooldown != 0 || len(w.DrainOutbox()) != 0 {
		t.Error("Rejected transform must not mutate state")
	}
	if p.UseAbility(w, p) != nil {
		t.Error("Ditto must not transform into itself")
	}
}

func TestDittoTransformAndRevert(t *testing.T) {
	w, _ := newTestWorld(t)
	p := addLocal(w, CharDitto, 2, 2)
	target := addRemote(w, "p2", CharGengar, 3, 2)

	out := p.UseAbility(w, target)
	cast, ok := out.(AbilityCast)
	if !ok || cast.Name != CastTransform || cast.TargetCharacter != CharGengar {
		t.Fatalf("Unexpected transform result %+v", out)
	}
	if p.DisplayCharacter() != CharGengar || p.Overlay.Original != CharDitto {
		t.Errorf("Expected Ditto shown as Gengar, got %s (original %s)", p.DisplayCharacter(), p.Overlay.Original)
	}
	if p.AbilityCooldown != 0 {
		t.Error("Transform cooldown starts on revert")
	}
	if p.CombatCharacter() != CharGengar {
		t.Errorf("Transformed hits count as the copied character, got %s", p.CombatCharacter())
	}

	rev, ok := p.RevertAbility(w).(AbilityCast)
	if !ok || !rev.IsRevert {
		t.Fatalf("Expected a revert cast, got %+v", rev)
	}
	if p.DisplayCharacter() != CharDitto || p.AbilityCooldown != 12 {
		t.Errorf("Expected Ditto with cooldown 12, got %s with %v", p.DisplayCharacter(), p.AbilityCooldown)
	}
	if p.RevertAbility(w) != nil {
		t.Error("Nothing left to revert")
	}
}

func TestIllusionGuardsAndReverts(t *testing.T) {
	w, _ := newTestWorld(t)
	p := addLocal(w, CharZoroark, 2, 2)
	other := addRemote(w, "p2", CharZoroark, 3, 2)
	target := addRemote(w, "p3", CharSpinda, 3, 3)

	if p.UseAbility(w, other) != nil {
		t.Error("Illusion must not copy another Zoroark")
	}
	if p.UseAbility(w, target) == nil {
		t.Fatal("Illusion onto Spinda should succeed")
	}
	if p.DisplayCharacter() != CharSpinda || p.CombatCharacter() != CharZoroark {
		t.Errorf("Illusion changes looks only, got display=%s combat=%s", p.DisplayCharacter(), p.CombatCharacter())
	}
	rev, _ := p.RevertAbility(w).(AbilityCast)
	if rev.Name != CastRevertIllusion || p.AbilityCooldown != 15 {
		t.Errorf("Expected revertIllusion with cooldown 15, got %q with %v", rev.Name, p.AbilityCooldown)
	}
}

func TestGengarTogglePhasing(t *testing.T) {
	w, _ := newTestWorld(t)
	p := addLocal(w, CharGengar, 1, 1)

	if p.UseAbility(w, nil) == nil || !p.Phasing {
		t.Fatal("Toggle on should enable phasing")
	}
	if p.AbilityCooldown != 0 {
		t.Error("Gengar pays its cooldown on toggle-off")
	}
	if !p.Move(-1, 0, w) {
		t.Fatal("Phasing player should enter walls")
	}
	stepN(w, 8, frame)

	if p.UseAbility(w, nil) != nil {
		t.Error("Toggle-off inside a wall must be refused")
	}
	p.Move(1, 0, w)
	stepN(w, 8, frame)

	if p.UseAbility(w, nil) == nil || p.Phasing {
		t.Fatal("Toggle-off on floor should succeed")
	}
	if p.AbilityCooldown != 6 {
		t.Errorf("Expected cooldown 6 after toggle-off, got %v", p.AbilityCooldown)
	}
}

func TestSableyeToggleOffIgnoresCooldown(t *testing.T) {
	w, _ := newTestWorld(t)
	p := addLocal(w, CharSableye, 2, 2)

	p.UseAbility(w, nil)
	if !p.Phasing || p.AbilityCooldown != 6 {
		t.Fatalf("Sableye pays cooldown on toggle-on, got phasing=%v cd=%v", p.Phasing, p.AbilityCooldown)
	}
	if p.UseAbility(w, nil) == nil || p.Phasing {
		t.Error("Toggle-off should run during cooldown")
	}
	if p.UseAbility(w, nil) != nil {
		t.Error("Toggle-on should wait for the cooldown")
	}
}

func TestCorviknightFliesOverWater(t *testing.T) {
	w, _ := newTestWorld(t)
	w.Map.Walls[2][3] = mapgen.Water
	p := addLocal(w, CharCorviknight, 2, 2)

	if p.Move(1, 0, w) {
		t.Fatal("Water should block a grounded player")
	}
	p.UseAbility(w, nil)
	if !p.Flying {
		t.Fatal("Fly should enable flying")
	}
	if !p.Move(1, 0, w) {
		t.Error("Flying player should cross water")
	}
}

func TestSmeargleSketch(t *testing.T) {
	w, _ := newTestWorld(t)
	p := addLocal(w, CharSmeargle, 2, 2)
	hypno := addRemote(w, "p2", CharHypno, 3, 2)
	snorlax := addRemote(w, "p3", CharSnorlax, 2, 3)

	if p.UseAbility(w, snorlax) == nil {
		t.Fatal("Sketch on a passive target should still succeed")
	}
	if p.Copied == nil || p.Copied.Config != config.NoAbility {
		t.Errorf("Expected the no-ability placeholder, got %+v", p.Copied)
	}
	if p.UseCopiedAbility(w, hypno) != nil {
		t.Error("Placeholder copy cannot be used")
	}

	p.AbilityCooldown = 0
	p.UseAbility(w, hypno)
	if p.Copied.Character != CharHypno || p.Copied.Config.Cooldown != 10 {
		t.Fatalf("Expected hypnosis copy, got %+v", p.Copied)
	}

	// The copy is a snapshot
	live := w.Abilities.Characters[CharHypno]
	live.Cooldown = 99
	w.Abilities.Characters[CharHypno] = live
	if p.Copied.Config.Cooldown != 10 {
		t.Error("Copied ability must not follow catalog changes")
	}

	p.AbilityCooldown = 0
	w.DrainOutbox()
	if _, ok := p.UseCopiedAbility(w, hypno).(StatusApply); !ok {
		t.Fatal("Copied hypnosis should apply sleep")
	}
}

func TestSandSnarePlacesTrapAhead(t *testing.T) {
	w, _ := newTestWorld(t)
	p := addLocal(w, CharCacturne, 2, 2)
	before := *p

	cast, ok := p.UseAbility(w, nil).(AbilityCast)
	if !ok || cast.Name != CastSandSnare {
		t.Fatalf("Expected sandSnare cast, got %+v", cast)
	}
	if cast.TileX != 2 || cast.TileY != 3 {
		t.Errorf("Expected trap at (2,3), got (%d,%d)", cast.TileX, cast.TileY)
	}
	if trap := w.TrapAt(2, 3); trap == nil || trap.Kind != TrapSand {
		t.Error("Sand trap should be on the world overlay")
	}
	if p.HP != before.HP || p.X != before.X || p.Y != before.Y || p.Moving {
		t.Error("Environmental ability must not change the player beyond cooldown")
	}
}

func TestPoisonTrailSparesOwner(t *testing.T) {
	w, _ := newTestWorld(t)
	p := addLocal(w, CharScolipede, 2, 2)

	p.UseAbility(w, nil)
	p.Move(1, 0, w)
	stepN(w, 8, frame)
	p.Move(-1, 0, w)
	stepN(w, 8, frame)

	if p.Status.Poison != nil {
		t.Error("Owner should be immune to its own trail")
	}
}

func TestPoisonTrailHurtsOthers(t *testing.T) {
	w, _ := newTestWorld(t)
	p := addLocal(w, CharPikachu, 2, 2)
	addRemote(w, "p2", CharScolipede, 5, 5)

	err := w.ApplyAbilityCast(AbilityCast{Name: CastPoisonTrail, From: "p2", TileX: 3, TileY: 2, Duration: 6})
	if err != nil {
		t.Fatalf("ApplyAbilityCast: %v", err)
	}
	p.Move(1, 0, w)
	stepN(w, 8, frame)

	if p.Status.Poison == nil {
		t.Error("Stepping on a peer's trail should poison")
	}
}

func TestConfusionDanceAndBubble(t *testing.T) {
	w, _ := newTestWorld(t)
	w.SetEnemyOwner("p1")
	p := addLocal(w, CharSpinda, 2, 2)
	near := w.SpawnEnemy(EnemyBrawler, 4, 2)
	far := w.SpawnEnemy(EnemyBrawler, 10, 8)

	p.UseAbility(w, nil)
	if near.Base().Confused != 5 || far.Base().Confused != 0 {
		t.Errorf("Expected only the near enemy confused, got near=%v far=%v", near.Base().Confused, far.Base().Confused)
	}

	p.Character = CharPrimarina
	p.AbilityCooldown = 0
	cast, ok := p.UseAbility(w, nil).(AbilityCast)
	if !ok || cast.Target != near.Base().ID {
		t.Fatalf("Expected bubble on the nearest enemy, got %+v", cast)
	}
	if near.Base().Bubbled != 4 {
		t.Errorf("Expected bubbled 4, got %v", near.Base().Bubbled)
	}
}

func TestBubbleWithoutEnemyIsRejected(t *testing.T) {
	w, _ := newTestWorld(t)
	p := addLocal(w, CharPrimarina, 2, 2)
	if p.UseAbility(w, nil) != nil || p.AbilityCooldown != 0 {
		t.Error("Bubble needs an enemy in range")
	}
}

func TestDarkRoom(t *testing.T) {
	w, _ := newTestWorld(t)
	p := addLocal(w, CharMismagius, 2, 2)
	p.UseAbility(w, nil)
	if w.DarkRoom != 8 {
		t.Errorf("Expected darkness for 8s, got %v", w.DarkRoom)
	}
	stepN(w, 9, 1)
	if w.DarkRoom != 0 {
		t.Errorf("Darkness should fade, got %v", w.DarkRoom)
	}
}

func TestHandleKeyRoutesCopiedAbility(t *testing.T) {
	w, _ := newTestWorld(t)
	p := addLocal(w, CharSmeargle, 2, 2)
	hypno := addRemote(w, "p2", CharHypno, 3, 2)

	if !w.HandleKey(KeyAbility, hypno) {
		t.Fatal("Sketch key should succeed")
	}
	p.AbilityCooldown = 0
	if !w.HandleKey(KeyCopied, hypno) {
		t.Error("Copied ability key should use the sketch")
	}
	if !w.HandleKey(KeyRight, nil) || !p.Moving {
		t.Error("Arrow key should start a step")
	}
}
