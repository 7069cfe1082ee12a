package game

import (
	"errors"
	"testing"
)

func TestUpsertRemotePlayerLastWriteWins(t *testing.T) {
	w, _ := newTestWorld(t)

	if err := w.UpsertRemotePlayer(RemoteState{ID: "p2", Character: CharGengar, X: 96, Y: 64, Dir: DirLeft, Timestamp: 200}); err != nil {
		t.Fatalf("UpsertRemotePlayer: %v", err)
	}
	p := w.Player("p2")
	if p == nil || !p.Remote || p.TileX != 3 || p.TileY != 2 {
		t.Fatalf("Expected mirror on tile (3,2), got %+v", p)
	}

	err := w.UpsertRemotePlayer(RemoteState{ID: "p2", Character: CharGengar, X: 0, Y: 0, Timestamp: 100})
	if !errors.Is(err, ErrStale) {
		t.Errorf("Expected ErrStale, got %v", err)
	}
	if p.X != 96 {
		t.Error("Stale record must not be applied")
	}

	if err := w.UpsertRemotePlayer(RemoteState{ID: "p1", Timestamp: 300}); !errors.Is(err, ErrSelf) {
		t.Errorf("Expected ErrSelf for the local ID, got %v", err)
	}
}

func TestRemoveRemotePlayer(t *testing.T) {
	w, _ := newTestWorld(t)
	w.UpsertRemotePlayer(RemoteState{ID: "p2", Timestamp: 1})
	if !w.RemovePlayer("p2") || w.Player("p2") != nil {
		t.Error("Expected p2 to be removed")
	}
	if w.RemovePlayer("p2") {
		t.Error("Removing twice should report false")
	}
}

func TestApplyAbilityCastMirrorsCaster(t *testing.T) {
	w, _ := newTestWorld(t)
	w.UpsertRemotePlayer(RemoteState{ID: "p2", Character: CharDitto, Timestamp: 1})
	w.UpsertRemotePlayer(RemoteState{ID: "p3", Character: CharGengar, Timestamp: 1})

	w.ApplyAbilityCast(AbilityCast{Name: CastTransform, From: "p2", Target: "p3", TargetCharacter: CharGengar})
	if got := w.Player("p2").DisplayCharacter(); got != CharGengar {
		t.Errorf("Expected p2 shown as Gengar, got %s", got)
	}
	w.ApplyAbilityCast(AbilityCast{Name: CastTransform, From: "p2", IsRevert: true})
	if got := w.Player("p2").DisplayCharacter(); got != CharDitto {
		t.Errorf("Expected p2 back to Ditto, got %s", got)
	}

	w.ApplyAbilityCast(AbilityCast{Name: CastToggle, From: "p3", Flag: "phasing", Active: true})
	if !w.Player("p3").Phasing {
		t.Error("Toggle cast should set phasing on the mirror")
	}

	if err := w.ApplyAbilityCast(AbilityCast{Name: "hyperBeam", From: "p3"}); !errors.Is(err, ErrUnknownAbility) {
		t.Errorf("Expected ErrUnknownAbility, got %v", err)
	}
	if err := w.ApplyAbilityCast(AbilityCast{Name: CastIllusion, From: "ghost"}); !errors.Is(err, ErrUnknownEntity) {
		t.Errorf("Expected ErrUnknownEntity, got %v", err)
	}
}

func TestApplyStatusOnlyForLocalPlayer(t *testing.T) {
	w, _ := newTestWorld(t)
	p := addLocal(w, CharPikachu, 2, 2)

	if err := w.ApplyStatus(StatusApply{Target: "p2", Type: StatusSleep, Duration: 3}); !errors.Is(err, ErrNotAddressed) {
		t.Errorf("Expected ErrNotAddressed, got %v", err)
	}
	if err := w.ApplyStatus(StatusApply{Target: "p1", Type: StatusSleep, Duration: 3, From: "p2"}); err != nil {
		t.Fatalf("ApplyStatus: %v", err)
	}
	if !p.Asleep() {
		t.Error("Local player should be asleep")
	}
}

func TestApplyPlayerHit(t *testing.T) {
	w, _ := newTestWorld(t)
	p := addLocal(w, CharPikachu, 2, 2)
	if err := w.ApplyPlayerHit(PlayerHit{Target: "p1", Amount: 25, From: "e1"}); err != nil {
		t.Fatalf("ApplyPlayerHit: %v", err)
	}
	if p.HP != 75 {
		t.Errorf("Expected HP 75, got %v", p.HP)
	}
}

func TestApplyEnemyHitRequiresOwnership(t *testing.T) {
	w, _ := newTestWorld(t)
	w.SetEnemyOwner("p9")
	w.ApplyEnemySpawn(EnemySpawned{Enemy: EnemySnapshot{ID: "e1", Kind: EnemyWeepingAngel, HP: 80, Stats: DefaultStats(EnemyWeepingAngel)}})

	if err := w.ApplyEnemyHit(EnemyHit{EnemyID: "e1", Amount: 10, SourceCharacter: CharGengar}); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("Expected ErrNotOwner, got %v", err)
	}

	w.SetEnemyOwner("p1")
	if err := w.ApplyEnemyHit(EnemyHit{EnemyID: "e1", Amount: 10, SourceCharacter: CharPikachu}); err != nil {
		t.Fatalf("ApplyEnemyHit: %v", err)
	}
	if hp := w.Enemy("e1").Base().HP; hp != 80 {
		t.Errorf("Angel ignores Pikachu, got HP %v", hp)
	}
	w.ApplyEnemyHit(EnemyHit{EnemyID: "e1", Amount: 10, SourceCharacter: CharGengar})
	if hp := w.Enemy("e1").Base().HP; hp != 70 {
		t.Errorf("Expected HP 70, got %v", hp)
	}
}

func TestOwnerHandoffAdoptsMirrors(t *testing.T) {
	w, _ := newTestWorld(t)
	w.SetEnemyOwner("p0")
	addLocal(w, CharPikachu, 2, 2)
	w.ApplyEnemySpawn(EnemySpawned{Enemy: EnemySnapshot{ID: "e1", Kind: EnemyBrawler, X: 192, Y: 64, HP: 60, Stats: DefaultStats(EnemyBrawler)}})

	w.SetEnemyOwner("p1")
	if !w.IsEnemyOwner() {
		t.Fatal("Expected local ownership")
	}
	b := w.Enemy("e1").Base()
	if b.Mirror {
		t.Error("Adopted enemy should no longer be a mirror")
	}
	w.Step(frame)
	if b.X == 192 {
		t.Error("Adopted enemy should be simulated locally")
	}

	if err := w.ApplyEnemyState([]EnemySnapshot{{ID: "e1", X: 0}}); !errors.Is(err, ErrIsOwner) {
		t.Errorf("Owner must ignore mirrored enemy state, got %v", err)
	}

	w.SetEnemyOwner("p0")
	if !w.Enemy("e1").Base().Mirror {
		t.Error("Losing ownership turns enemies into mirrors")
	}
}

func TestApplyEnemyStateAndRemove(t *testing.T) {
	w, _ := newTestWorld(t)
	w.SetEnemyOwner("p0")
	snaps := []EnemySnapshot{
		{ID: "e1", Kind: EnemyTurret, X: 32, Y: 32, HP: 40, Stats: DefaultStats(EnemyTurret)},
		{ID: "e2", Kind: EnemyBrawler, X: 64, Y: 64, HP: 60, Stats: DefaultStats(EnemyBrawler)},
	}
	if err := w.ApplyEnemyState(snaps); err != nil {
		t.Fatalf("ApplyEnemyState: %v", err)
	}
	snaps[1].HP = 12
	w.ApplyEnemyState(snaps[1:])
	if hp := w.Enemy("e2").Base().HP; hp != 12 {
		t.Errorf("Expected HP 12, got %v", hp)
	}
	if _, ok := w.Enemy("e1").(*Turret); !ok {
		t.Errorf("Expected a turret mirror, got %T", w.Enemy("e1"))
	}

	if err := w.ApplyEnemyRemove(EnemyRemoved{ID: "e1", Reason: ReasonDefeated}); err != nil {
		t.Fatalf("ApplyEnemyRemove: %v", err)
	}
	if w.EnemyCount() != 1 {
		t.Errorf("Expected 1 enemy, got %d", w.EnemyCount())
	}
}

func TestApplyProjectileFiredIsVisualOnly(t *testing.T) {
	w, _ := newTestWorld(t)
	p := addLocal(w, CharPikachu, 4, 2)
	w.SetEnemyOwner("p0")

	err := w.ApplyProjectileFired(ProjectileFired{ID: "x", OwnerID: "e1", X: 48, Y: 80, VX: 5, Lifetime: 2, FromEnemy: true})
	if err != nil {
		t.Fatalf("ApplyProjectileFired: %v", err)
	}
	stepN(w, 30, frame)
	if p.HP != PlayerMaxHP {
		t.Errorf("Mirror projectiles never deal damage, got HP %v", p.HP)
	}
	if err := w.ApplyProjectileFired(ProjectileFired{ID: "y", OwnerID: "p1"}); !errors.Is(err, ErrSelf) {
		t.Errorf("Expected ErrSelf for own projectile, got %v", err)
	}
}
