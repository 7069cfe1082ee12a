package preview

import (
	"bytes"
	"image/png"
	"testing"

	"pokemon-arena/internal/game"
	"pokemon-arena/internal/mapgen"
)

func TestRenderSize(t *testing.T) {
	m := mapgen.Generate(20, 12, 99, mapgen.Plains)

	img := Render(m, nil, Options{CellSize: 4})
	if b := img.Bounds(); b.Dx() != 80 || b.Dy() != 48 {
		t.Errorf("Expected 80x48, got %dx%d", b.Dx(), b.Dy())
	}

	img = Render(m, nil, Options{CellSize: 4, Legend: true})
	if b := img.Bounds(); b.Dy() != 48+legendHeight {
		t.Errorf("Expected legend footer, got height %d", b.Dy())
	}
}

func TestRenderColorsCells(t *testing.T) {
	m := &mapgen.Map{Width: 8, Height: 8, Type: mapgen.Dungeon, Spawn: mapgen.Point{X: 4, Y: 4}}
	m.Walls = make([][]mapgen.Cell, 8)
	for y := range m.Walls {
		m.Walls[y] = make([]mapgen.Cell, 8)
	}
	m.Walls[0][0] = mapgen.Wall
	img := Render(m, nil, Options{CellSize: 2})

	r, g, b, _ := img.At(0, 0).RGBA()
	wr, wg, wb, _ := colorWall.RGBA()
	if r != wr || g != wg || b != wb {
		t.Errorf("Expected wall color at origin, got %v,%v,%v", r>>8, g>>8, b>>8)
	}
	r, g, b, _ = img.At(5, 5).RGBA()
	fr, fg, fb, _ := colorFloor.RGBA()
	if r != fr || g != fg || b != fb {
		t.Errorf("Expected floor color at (2,2), got %v,%v,%v", r>>8, g>>8, b>>8)
	}
}

func TestWritePNGWithSnapshot(t *testing.T) {
	m := mapgen.Generate(16, 16, 5, mapgen.Forest)
	snap := &game.WorldSnapshot{
		Players: []game.PlayerView{{ID: "p1", X: 64, Y: 64}},
		Enemies: []game.EnemySnapshot{{ID: "e1", Kind: game.EnemyTurret, X: 128, Y: 96}},
		Traps:   []game.TrapView{{X: 3, Y: 3, Kind: game.TrapSand}},
	}
	var buf bytes.Buffer
	if err := WritePNG(&buf, m, snap, DefaultOptions()); err != nil {
		t.Fatalf("WritePNG: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if img.Bounds().Dx() != 16*DefaultOptions().CellSize {
		t.Errorf("Unexpected width %d", img.Bounds().Dx())
	}
}
