package game

import (
	"testing"

	"pokemon-arena/internal/mapgen"
)

func ownerWorld(t *testing.T) *World {
	t.Helper()
	w, _ := newTestWorld(t)
	w.SetEnemyOwner(w.LocalID)
	return w
}

func TestEnemyTakeDamageClamps(t *testing.T) {
	e := newEnemy(EnemySnapshot{ID: "e1", Kind: EnemyBrawler, HP: 60, Stats: DefaultStats(EnemyBrawler)})

	if !e.TakeDamage(1e6, CharPikachu) {
		t.Fatal("Hit should land")
	}
	b := e.Base()
	if b.HP != 0 || !b.Defeated || b.Removed != ReasonDefeated {
		t.Errorf("Expected HP 0 and defeated, got %v defeated=%v", b.HP, b.Defeated)
	}
	if e.TakeDamage(5, CharPikachu) {
		t.Error("Defeated enemy should ignore further hits")
	}
}

func TestWeepingAngelDamageImmunity(t *testing.T) {
	tests := []struct {
		source string
		wantHP float64
	}{
		{CharPikachu, 80},
		{CharHypno, 80},
		{CharGengar, 70},
		{CharSableye, 70},
		{CharMismagius, 70},
		{CharZoroark, 70},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			e := newEnemy(EnemySnapshot{ID: "a", Kind: EnemyWeepingAngel, HP: 80, Stats: DefaultStats(EnemyWeepingAngel)})
			e.TakeDamage(10, tt.source)
			if got := e.Base().HP; got != tt.wantHP {
				t.Errorf("Expected HP %v, got %v", tt.wantHP, got)
			}
		})
	}
}

func TestFindClosestPlayerSkipsUntargetable(t *testing.T) {
	w, _ := newTestWorld(t)
	phasing := addLocal(w, CharGengar, 2, 2)
	phasing.Phasing = true
	flying := addRemote(w, "p2", CharCorviknight, 2, 3)
	flying.Flying = true
	far := addRemote(w, "p3", CharPikachu, 8, 8)

	if got := FindClosestPlayer(w, 64, 64, 1000); got != far {
		t.Errorf("Expected the only targetable player, got %v", got)
	}
	far.Defeated = true
	if got := FindClosestPlayer(w, 64, 64, 1000); got != nil {
		t.Errorf("Expected nil, got %s", got.ID)
	}
}

func TestBubbledEnemyIsInert(t *testing.T) {
	w := ownerWorld(t)
	addLocal(w, CharPikachu, 2, 2)
	e := w.SpawnEnemy(EnemyBrawler, 6, 2)
	e.Base().Bubbled = 1
	x := e.Base().X

	stepN(w, 30, frame)
	if e.Base().X != x {
		t.Error("Bubbled brawler should not move")
	}
	stepN(w, 40, frame)
	if e.Base().X == x {
		t.Error("Brawler should chase once the bubble pops")
	}
}

func TestTurretNeedsLineOfSight(t *testing.T) {
	w := ownerWorld(t)
	addLocal(w, CharPikachu, 6, 1)
	w.SpawnEnemy(EnemyTurret, 1, 1)
	w.DrainOutbox()

	w.Map.Walls[1][3] = mapgen.Wall
	w.Step(frame)
	if len(w.Projectiles()) != 0 {
		t.Fatal("Turret should not fire through a wall")
	}

	w.Map.Walls[1][3] = mapgen.Floor
	w.Step(frame)
	if len(w.Projectiles()) != 1 {
		t.Fatalf("Expected one turret shot, got %d", len(w.Projectiles()))
	}
	if n := countKind(w.DrainOutbox(), "projectile"); n != 1 {
		t.Errorf("Expected ProjectileFired broadcast, got %d", n)
	}

	w.Step(frame)
	if len(w.Projectiles()) != 1 {
		t.Error("Turret should wait for its cooldown")
	}
}

func TestTurretShotDamagesPlayer(t *testing.T) {
	w := ownerWorld(t)
	p := addLocal(w, CharPikachu, 5, 1)
	w.SpawnEnemy(EnemyTurret, 1, 1)

	stepN(w, 40, frame)
	if p.HP != PlayerMaxHP-DefaultStats(EnemyTurret).Damage {
		t.Errorf("Expected one turret hit, got HP %v", p.HP)
	}
}

func TestTurretShotAtMirrorSendsPlayerHit(t *testing.T) {
	w := ownerWorld(t)
	target := addRemote(w, "p2", CharPikachu, 5, 1)
	w.SpawnEnemy(EnemyTurret, 1, 1)

	stepN(w, 40, frame)
	if target.HP != PlayerMaxHP {
		t.Error("Mirror HP belongs to its own client")
	}
	var hits int
	for _, o := range w.DrainOutbox() {
		if h, ok := o.(PlayerHit); ok && h.Target == "p2" {
			hits++
		}
	}
	if hits != 1 {
		t.Errorf("Expected one PlayerHit, got %d", hits)
	}
}

func TestBrawlerSlidesAlongWall(t *testing.T) {
	w := ownerWorld(t)
	w.Map.Walls[3][2] = mapgen.Wall
	addLocal(w, CharPikachu, 5, 1)
	e := w.SpawnEnemy(EnemyBrawler, 2, 4)
	b := e.Base()

	stepN(w, 10, frame)
	if b.X <= 64 {
		t.Errorf("Brawler should keep moving along X, got x=%v", b.X)
	}
	if w.enemyBlocked(b.X, b.Y) {
		t.Errorf("Brawler ended inside a wall at (%v,%v)", b.X, b.Y)
	}
}

func TestConfusedBrawlerRetreats(t *testing.T) {
	w := ownerWorld(t)
	addLocal(w, CharPikachu, 2, 4)
	e := w.SpawnEnemy(EnemyBrawler, 6, 4)
	b := e.Base()
	b.Confused = 10

	w.Step(frame)
	if b.X != 192+DefaultStats(EnemyBrawler).Speed*confusedSpeedFactor {
		t.Errorf("Confused brawler should back off at half speed, got x=%v", b.X)
	}
}

func TestStaticStunsBrawler(t *testing.T) {
	w := ownerWorld(t)
	p := addLocal(w, CharPikachu, 2, 2)
	e := w.SpawnEnemy(EnemyBrawler, 3, 3)
	b := e.Base()
	b.X, b.Y = 64, 84

	w.Step(frame)
	if p.HP != PlayerMaxHP-DefaultStats(EnemyBrawler).Damage {
		t.Fatalf("Expected a melee hit, got HP %v", p.HP)
	}
	if b.Stunned != StaticStunDuration {
		t.Errorf("Expected static stun %v, got %v", StaticStunDuration, b.Stunned)
	}
}

func TestWeepingAngelFreezesWhileWatched(t *testing.T) {
	w := ownerWorld(t)
	p := addLocal(w, CharPikachu, 2, 2)
	p.Dir = DirRight
	e := w.SpawnEnemy(EnemyWeepingAngel, 6, 2)
	a := e.(*WeepingAngel)
	x := a.X

	stepN(w, 5, 0.5)
	if a.X != x {
		t.Fatal("Watched angel must not move")
	}
	w.Step(0.5)
	if w.Enemy(a.ID) != nil {
		t.Fatal("Angel watched for 3s should crumble")
	}
	removed := false
	for _, o := range w.DrainOutbox() {
		if r, ok := o.(EnemyRemoved); ok && r.ID == a.ID && r.Reason == ReasonStared {
			removed = true
		}
	}
	if !removed {
		t.Error("Expected EnemyRemoved with reason stared")
	}
}

func TestWeepingAngelStareMustBeContinuous(t *testing.T) {
	w := ownerWorld(t)
	p := addLocal(w, CharPikachu, 2, 2)
	p.Dir = DirRight
	e := w.SpawnEnemy(EnemyWeepingAngel, 9, 2)
	a := e.(*WeepingAngel)

	stepN(w, 4, 0.5)
	p.Dir = DirLeft
	w.Step(frame)
	if a.StareTime != 0 {
		t.Errorf("Looking away resets the stare, got %v", a.StareTime)
	}
	if a.X >= 288 {
		t.Error("Unwatched angel should approach")
	}
}

func TestWeepingAngelDespawnsWithoutTargets(t *testing.T) {
	w := ownerWorld(t)
	e := w.SpawnEnemy(EnemyWeepingAngel, 6, 2)

	stepN(w, 8, 10)
	if w.Enemy(e.Base().ID) == nil {
		t.Fatal("Angel should survive 80s alone")
	}
	w.Step(10)
	if w.Enemy(e.Base().ID) != nil {
		t.Error("Angel should despawn after 90s alone")
	}
}

func TestMirrorsAreNotSimulated(t *testing.T) {
	w, _ := newTestWorld(t)
	w.SetEnemyOwner("p9")
	addLocal(w, CharPikachu, 2, 2)
	snap := EnemySnapshot{ID: "e1", Kind: EnemyBrawler, X: 192, Y: 64, HP: 60, Stats: DefaultStats(EnemyBrawler)}
	if err := w.ApplyEnemySpawn(EnemySpawned{Enemy: snap}); err != nil {
		t.Fatalf("ApplyEnemySpawn: %v", err)
	}

	stepN(w, 30, frame)
	if b := w.Enemy("e1").Base(); b.X != 192 || !b.Mirror {
		t.Errorf("Mirror should stay where the owner put it, got x=%v mirror=%v", b.X, b.Mirror)
	}
}
