package mapgen

import (
	"flag"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

var update = flag.Bool("update", false, "rewrite golden snapshots in testdata")

var allTypes = []Type{Dungeon, Plains, Forest}

// TestGenerateDeterministic verifies identical arguments produce identical maps
func TestGenerateDeterministic(t *testing.T) {
	for _, typ := range allTypes {
		t.Run(string(typ), func(t *testing.T) {
			for _, seed := range []uint32{0, 1, 1234, 987654321} {
				a := Generate(48, 32, seed, typ)
				b := Generate(48, 32, seed, typ)
				if !reflect.DeepEqual(a.Walls, b.Walls) {
					t.Fatalf("seed %d: walls differ between runs", seed)
				}
				if a.Spawn != b.Spawn {
					t.Fatalf("seed %d: spawn differs: %v vs %v", seed, a.Spawn, b.Spawn)
				}
				if !reflect.DeepEqual(a, b) {
					t.Fatalf("seed %d: maps differ between runs", seed)
				}
			}
		})
	}
}

// TestSpawnWalkable verifies spawn is a passable cell for 100+ seeds
func TestSpawnWalkable(t *testing.T) {
	for _, typ := range allTypes {
		t.Run(string(typ), func(t *testing.T) {
			for seed := uint32(0); seed < 150; seed++ {
				m := Generate(40+int(seed%17), 24+int(seed%11), seed*7919, typ)
				if !m.Walkable(m.Spawn.X, m.Spawn.Y) {
					t.Fatalf("seed %d: spawn %v is not walkable (cell %d)", seed, m.Spawn, m.At(m.Spawn.X, m.Spawn.Y))
				}
			}
		})
	}
}

// TestDungeonConnectivity verifies every passable cell is reachable from spawn
func TestDungeonConnectivity(t *testing.T) {
	for seed := uint32(0); seed < 100; seed++ {
		m := Generate(48, 32, seed, Dungeon)
		reached := floodFill(m, m.Spawn)
		if total := m.PassableCount(); reached != total {
			t.Fatalf("seed %d: reached %d of %d passable cells\n%s", seed, reached, total, m)
		}
	}
}

// TestDungeonBorderIsSolid verifies carving never opens the outer ring
func TestDungeonBorderIsSolid(t *testing.T) {
	m := Generate(48, 32, 77, Dungeon)
	for x := 0; x < m.Width; x++ {
		if m.Walls[0][x] != Wall || m.Walls[m.Height-1][x] != Wall {
			t.Fatalf("Expected solid top/bottom border at x=%d", x)
		}
	}
	for y := 0; y < m.Height; y++ {
		if m.Walls[y][0] != Wall || m.Walls[y][m.Width-1] != Wall {
			t.Fatalf("Expected solid left/right border at y=%d", y)
		}
	}
}

// TestDungeonGoldenSnapshot pins the 48x32 seed 1234 dungeon. Run with
// -update to rewrite the snapshot after an intentional generator change.
func TestDungeonGoldenSnapshot(t *testing.T) {
	m := Generate(48, 32, 1234, Dungeon)
	got := m.String()
	path := filepath.Join("testdata", "dungeon_48x32_1234.golden")

	if *update {
		if err := os.WriteFile(path, []byte(got), 0o644); err != nil {
			t.Fatalf("failed to record golden snapshot: %v", err)
		}
		t.Logf("recorded golden snapshot %s", path)
		return
	}

	want, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read golden snapshot %s (run with -update to record it): %v", path, err)
	}
	if string(want) != got {
		t.Errorf("dungeon 48x32 seed 1234 drifted from golden snapshot\nwant:\n%s\ngot:\n%s", want, got)
	}
	if want := (Point{X: 36, Y: 24}); m.Spawn != want {
		t.Errorf("Expected spawn %v, got %v", want, m.Spawn)
	}
}

// TestForestLayout checks path tiles, tree exclusion and spawn on path
func TestForestLayout(t *testing.T) {
	m := Generate(40, 30, 2024, Forest)
	if m.Tiles == nil {
		t.Fatal("Expected forest to produce a tile grid")
	}

	spawnTile := m.Tiles[m.Spawn.Y][m.Spawn.X]
	if spawnTile == tileDirt || spawnTile == tileGrass || spawnTile == tileTree {
		t.Errorf("Expected spawn on a path tile, got %+v", spawnTile)
	}

	for _, tree := range m.Trees {
		if m.Walls[tree.Y][tree.X] != Tree {
			t.Errorf("Tree %v not marked in walls", tree)
		}
		for oy := -1; oy <= 1; oy++ {
			for ox := -1; ox <= 1; ox++ {
				x, y := tree.X+ox, tree.Y+oy
				if !m.InBounds(x, y) {
					continue
				}
				if isPathTile(m.Tiles[y][x]) {
					t.Errorf("Tree %v grows next to path at (%d,%d)", tree, x, y)
				}
			}
		}
	}

	// Every walk ends on the top row
	top := false
	for x := 0; x < m.Width; x++ {
		if isPathTile(m.Tiles[0][x]) {
			top = true
		}
	}
	if !top {
		t.Error("Expected at least one path to reach the top row")
	}
}

// TestPlainsHasWaterAndTrees checks plains stamping produced terrain
func TestPlainsHasWaterAndTrees(t *testing.T) {
	m := Generate(64, 48, 5, Plains)
	water := 0
	for y := range m.Walls {
		for x := range m.Walls[y] {
			if m.Walls[y][x] == Water {
				water++
			}
		}
	}
	if water == 0 {
		t.Error("Expected plains to contain water")
	}
	for _, tree := range m.Trees {
		if m.Walls[tree.Y][tree.X] != Tree {
			t.Errorf("Tree list entry %v is not a tree cell", tree)
		}
	}
	if m.Tiles != nil {
		t.Error("Expected plains to have no tile grid")
	}
}

// TestRecordRoundTrip verifies a lobby record regenerates the same map
func TestRecordRoundTrip(t *testing.T) {
	m := Generate(50, 30, 31337, Forest)
	again := m.Record().Generate()
	if !reflect.DeepEqual(m, again) {
		t.Error("Expected record to regenerate an identical map")
	}
}

// TestParseType checks the default algorithm for unknown types
func TestParseType(t *testing.T) {
	tests := map[string]Type{
		"dungeon":  Dungeon,
		"PLAINS":   Plains,
		" forest ": Forest,
		"":         Dungeon,
		"swamp":    Dungeon,
	}
	for in, want := range tests {
		if got := ParseType(in); got != want {
			t.Errorf("ParseType(%q): expected %s, got %s", in, want, got)
		}
	}
}

// TestMinimumSize verifies tiny requests are raised to MinSize
func TestMinimumSize(t *testing.T) {
	for _, typ := range allTypes {
		m := Generate(1, 2, 9, typ)
		if m.Width != MinSize || m.Height != MinSize {
			t.Errorf("%s: expected %dx%d, got %dx%d", typ, MinSize, MinSize, m.Width, m.Height)
		}
		if !m.Walkable(m.Spawn.X, m.Spawn.Y) {
			t.Errorf("%s: spawn %v not walkable on minimum map", typ, m.Spawn)
		}
	}
}

func isPathTile(ref TileRef) bool {
	return ref != tileDirt && ref != tileGrass && ref != tileTree
}

func floodFill(m *Map, from Point) int {
	seen := newGrid[bool](m.Width, m.Height)
	queue := []Point{from}
	seen[from.Y][from.X] = true
	count := 0
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		count++
		for _, d := range dirs4 {
			nx, ny := p.X+d.X, p.Y+d.Y
			if m.Walkable(nx, ny) && !seen[ny][nx] {
				seen[ny][nx] = true
				queue = append(queue, Point{X: nx, Y: ny})
			}
		}
	}
	return count
}
