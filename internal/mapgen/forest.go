package mapgen

import "pokemon-arena/internal/rng"

// Forest generation constants
const (
	forestWalks      = 3
	forestKeepDir    = 0.6  // Chance a walk keeps its previous heading
	forestDirtChance = 0.3  // Chance an off-path cell is dirt rather than grass
	forestTreeChance = 0.12 // Chance a grass cell clear of paths grows a tree
)

// Path connectivity bits.
const (
	linkN = 1 << iota
	linkE
	linkS
	linkW
)

var (
	tileDirt  = TileRef{Col: 0, Row: 4}
	tileGrass = TileRef{Col: 1, Row: 4}
	tileTree  = TileRef{Col: 2, Row: 4}
)

// pathAtlas maps a 4-neighbour connectivity mask to its path tile.
var pathAtlas = [16]TileRef{
	0:                             {Col: 0, Row: 0}, // isolated
	linkN:                         {Col: 1, Row: 0}, // dead end opening north
	linkE:                         {Col: 2, Row: 0}, // dead end opening east
	linkS:                         {Col: 3, Row: 0}, // dead end opening south
	linkW:                         {Col: 0, Row: 1}, // dead end opening west
	linkN | linkS:                 {Col: 1, Row: 1}, // vertical
	linkE | linkW:                 {Col: 2, Row: 1}, // horizontal
	linkN | linkE:                 {Col: 3, Row: 1}, // corner
	linkE | linkS:                 {Col: 0, Row: 2}, // corner
	linkS | linkW:                 {Col: 1, Row: 2}, // corner
	linkW | linkN:                 {Col: 2, Row: 2}, // corner
	linkN | linkE | linkS:         {Col: 3, Row: 2}, // T west-closed
	linkE | linkS | linkW:         {Col: 0, Row: 3}, // T north-closed
	linkS | linkW | linkN:         {Col: 1, Row: 3}, // T east-closed
	linkW | linkN | linkE:         {Col: 2, Row: 3}, // T south-closed
	linkN | linkE | linkS | linkW: {Col: 3, Row: 3}, // cross
}

type heading int

const (
	north heading = iota
	west
	east
)

// generateForest lays random walks from the bottom row to the top, tiles the
// path by connectivity, textures the rest and scatters trees away from paths.
func generateForest(m *Map, r *rng.Mulberry32) {
	m.fill(Floor)
	m.Tiles = newGrid[TileRef](m.Width, m.Height)

	onPath := newGrid[bool](m.Width, m.Height)
	var cells []Point
	mark := func(x, y int) {
		if !onPath[y][x] {
			onPath[y][x] = true
			cells = append(cells, Point{X: x, Y: y})
		}
	}

	for walk := 0; walk < forestWalks; walk++ {
		x, y := r.Intn(m.Width), m.Height-1
		dir := north
		mark(x, y)
		for steps := 0; y > 0 && steps < m.Width*m.Height; steps++ {
			if !r.Chance(forestKeepDir) {
				if dir == north {
					if r.Intn(2) == 0 {
						dir = west
					} else {
						dir = east
					}
				} else {
					dir = north
				}
			}
			nx, ny := x, y
			switch dir {
			case north:
				ny--
			case west:
				nx--
			case east:
				nx++
			}
			if nx < 0 || nx >= m.Width {
				dir = north
				nx, ny = x, y-1
			}
			x, y = nx, ny
			mark(x, y)
		}
	}

	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if onPath[y][x] {
				m.Tiles[y][x] = pathAtlas[pathMask(onPath, x, y)]
				continue
			}
			if r.Chance(forestDirtChance) {
				m.Tiles[y][x] = tileDirt
				continue
			}
			m.Tiles[y][x] = tileGrass
			if !nearPath(onPath, x, y) && r.Chance(forestTreeChance) {
				m.Walls[y][x] = Tree
				m.Tiles[y][x] = tileTree
			}
		}
	}

	m.collectTrees()
	m.Spawn = cells[r.Intn(len(cells))]
}

func pathMask(onPath [][]bool, x, y int) int {
	mask := 0
	h, w := len(onPath), len(onPath[0])
	if y > 0 && onPath[y-1][x] {
		mask |= linkN
	}
	if x < w-1 && onPath[y][x+1] {
		mask |= linkE
	}
	if y < h-1 && onPath[y+1][x] {
		mask |= linkS
	}
	if x > 0 && onPath[y][x-1] {
		mask |= linkW
	}
	return mask
}

// nearPath reports whether any cell in the 3x3 window around (x,y) is path.
func nearPath(onPath [][]bool, x, y int) bool {
	for oy := -1; oy <= 1; oy++ {
		for ox := -1; ox <= 1; ox++ {
			py, px := y+oy, x+ox
			if py < 0 || px < 0 || py >= len(onPath) || px >= len(onPath[0]) {
				continue
			}
			if onPath[py][px] {
				return true
			}
		}
	}
	return false
}
