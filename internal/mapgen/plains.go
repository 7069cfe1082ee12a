package mapgen

import "pokemon-arena/internal/rng"

// Plains generation constants
const (
	plainsWaterArea     = 500 // One water blob per this many cells
	plainsTreeArea      = 400 // One tree cluster per this many cells
	plainsTreeDensity   = 0.6 // Chance a cell inside a cluster gets a tree
	plainsRiverTurn     = 0.2 // Chance a river bends on a step
	plainsSpawnTries    = 200
	plainsMaxRivers     = 2
	plainsMinBlobRadius = 2
	plainsMaxBlobRadius = 4
)

// Eight directions clockwise from east.
var dirs8 = [8]Point{{1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}, {0, -1}, {1, -1}}

// generatePlains stamps water blobs and tree clusters onto open ground, picks
// a spawn, then runs rivers across the map that never flood the spawn cell.
func generatePlains(m *Map, r *rng.Mulberry32) {
	m.fill(Floor)

	blobs := max(1, m.Width*m.Height/plainsWaterArea)
	for i := 0; i < blobs; i++ {
		cx, cy := r.Intn(m.Width), r.Intn(m.Height)
		m.stampDisk(cx, cy, r.Range(plainsMinBlobRadius, plainsMaxBlobRadius), func(x, y int) {
			m.Walls[y][x] = Water
		})
	}

	clusters := max(1, m.Width*m.Height/plainsTreeArea)
	for i := 0; i < clusters; i++ {
		cx, cy := r.Intn(m.Width), r.Intn(m.Height)
		m.stampDisk(cx, cy, r.Range(1, 3), func(x, y int) {
			if m.Walls[y][x] == Floor && r.Chance(plainsTreeDensity) {
				m.Walls[y][x] = Tree
			}
		})
	}

	m.Spawn = Point{X: m.Width / 2, Y: m.Height / 2}
	found := false
	for try := 0; try < plainsSpawnTries; try++ {
		x, y := r.Intn(m.Width), r.Intn(m.Height)
		if m.Walls[y][x] == Floor {
			m.Spawn = Point{X: x, Y: y}
			found = true
			break
		}
	}
	if !found {
		m.Walls[m.Spawn.Y][m.Spawn.X] = Floor
	}

	rivers := r.Range(1, plainsMaxRivers)
	for i := 0; i < rivers; i++ {
		m.runRiver(r)
	}

	m.collectTrees()
}

// runRiver walks from the west edge eastwards. The walk keeps its heading
// unless a turn roll fires; it bends between E, NE and SE so it never doubles
// back.
func (m *Map) runRiver(r *rng.Mulberry32) {
	x, y := 0, r.Intn(m.Height)
	dir := 0
	for steps := 0; steps < m.Width+m.Height; steps++ {
		if !m.InBounds(x, y) {
			return
		}
		if x != m.Spawn.X || y != m.Spawn.Y {
			m.Walls[y][x] = Water
		}
		if r.Chance(plainsRiverTurn) {
			if dir == 0 {
				if r.Intn(2) == 0 {
					dir = 1
				} else {
					dir = 7
				}
			} else {
				dir = 0
			}
		}
		x += dirs8[dir].X
		y += dirs8[dir].Y
	}
}

// stampDisk calls fn for every in-bounds cell within radius of (cx,cy), in
// row-major order.
func (m *Map) stampDisk(cx, cy, radius int, fn func(x, y int)) {
	for y := cy - radius; y <= cy+radius; y++ {
		for x := cx - radius; x <= cx+radius; x++ {
			if !m.InBounds(x, y) {
				continue
			}
			dx, dy := x-cx, y-cy
			if dx*dx+dy*dy <= radius*radius {
				fn(x, y)
			}
		}
	}
}
