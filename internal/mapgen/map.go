// Package mapgen builds the lobby map from (width, height, seed, type).
//
// A lobby stores only its Record; every client calls Generate with the same
// arguments and gets a byte-identical grid. Each algorithm consumes the PRNG
// in a fixed order, so nothing here may be reordered or parallelised.
package mapgen

import (
	"fmt"
	"strings"

	"pokemon-arena/internal/rng"
)

// Cell is the passability class of a grid cell.
type Cell uint8

const (
	Floor Cell = iota // walkable
	Wall              // solid rock
	Water             // lakes and rivers
	Tree              // tree obstacle
)

// Type selects the generation algorithm.
type Type string

const (
	Dungeon Type = "dungeon"
	Plains  Type = "plains"
	Forest  Type = "forest"
)

// ParseType maps a stored type string to a Type. Unknown values fall back to
// Dungeon, the default algorithm.
func ParseType(s string) Type {
	switch Type(strings.ToLower(strings.TrimSpace(s))) {
	case Plains:
		return Plains
	case Forest:
		return Forest
	default:
		return Dungeon
	}
}

// MinSize is the smallest width or height the generators accept.
const MinSize = 8

// Point is a tile coordinate.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// TileRef is a column/row coordinate into the tile atlas.
type TileRef struct {
	Col int `json:"col"`
	Row int `json:"row"`
}

// Map is a generated level. Grids are indexed [y][x] and are not mutated
// after generation; runtime overlays live on the game world.
type Map struct {
	Width  int         `json:"width"`
	Height int         `json:"height"`
	Type   Type        `json:"type"`
	Seed   uint32      `json:"seed"`
	Walls  [][]Cell    `json:"walls"`
	Tiles  [][]TileRef `json:"tiles,omitempty"`
	Trees  []Point     `json:"trees"`
	EdgesV [][]bool    `json:"edgesV"`
	EdgesH [][]bool    `json:"edgesH"`
	Spawn  Point       `json:"spawn"`
}

// Record is what a lobby persists for its map.
type Record struct {
	Width  int    `json:"w"`
	Height int    `json:"h"`
	Seed   uint32 `json:"seed"`
	Type   Type   `json:"type"`
}

// Generate regenerates the map described by the record.
func (r Record) Generate() *Map {
	return Generate(r.Width, r.Height, r.Seed, r.Type)
}

// Record returns the persistable description of the map.
func (m *Map) Record() Record {
	return Record{Width: m.Width, Height: m.Height, Seed: m.Seed, Type: m.Type}
}

// Generate builds a map. Sizes below MinSize are raised to MinSize.
func Generate(width, height int, seed uint32, typ Type) *Map {
	width = max(width, MinSize)
	height = max(height, MinSize)
	typ = ParseType(string(typ))

	m := &Map{
		Width:  width,
		Height: height,
		Type:   typ,
		Seed:   seed,
		Walls:  newGrid[Cell](width, height),
		EdgesV: newGrid[bool](width, height),
		EdgesH: newGrid[bool](width, height),
		Trees:  []Point{},
	}
	r := rng.New(seed)

	switch typ {
	case Plains:
		generatePlains(m, r)
	case Forest:
		generateForest(m, r)
	default:
		generateDungeon(m, r)
	}
	return m
}

// InBounds reports whether (x,y) lies on the grid.
func (m *Map) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < m.Width && y < m.Height
}

// At returns the cell at (x,y); out-of-bounds reads as Wall.
func (m *Map) At(x, y int) Cell {
	if !m.InBounds(x, y) {
		return Wall
	}
	return m.Walls[y][x]
}

// Walkable reports whether a player can stand on (x,y).
func (m *Map) Walkable(x, y int) bool {
	return m.At(x, y) == Floor
}

// PassableCount returns the number of walkable cells.
func (m *Map) PassableCount() int {
	n := 0
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if m.Walls[y][x] == Floor {
				n++
			}
		}
	}
	return n
}

// String renders the grid as ASCII, one row per line.
func (m *Map) String() string {
	var b strings.Builder
	b.Grow((m.Width + 1) * m.Height)
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if m.Spawn.X == x && m.Spawn.Y == y {
				b.WriteByte('@')
				continue
			}
			switch m.Walls[y][x] {
			case Floor:
				b.WriteByte('.')
			case Wall:
				b.WriteByte('#')
			case Water:
				b.WriteByte('~')
			case Tree:
				b.WriteByte('T')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Key formats a tile coordinate as the string key used by runtime overlays.
func Key(x, y int) string {
	return fmt.Sprintf("%d,%d", x, y)
}

func newGrid[T any](width, height int) [][]T {
	g := make([][]T, height)
	for y := range g {
		g[y] = make([]T, width)
	}
	return g
}

func (m *Map) fill(c Cell) {
	for y := range m.Walls {
		for x := range m.Walls[y] {
			m.Walls[y][x] = c
		}
	}
}

// collectTrees rebuilds the tree list from the grid in row-major order.
func (m *Map) collectTrees() {
	m.Trees = m.Trees[:0]
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if m.Walls[y][x] == Tree {
				m.Trees = append(m.Trees, Point{X: x, Y: y})
			}
		}
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
