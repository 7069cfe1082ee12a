package mapgen

import "pokemon-arena/internal/rng"

// Dungeon generation constants
const (
	dungeonNodeSpacing = 8   // Distance between candidate room centers
	dungeonJitter      = 2   // Max positional jitter per node
	dungeonMinRadius   = 2   // Smallest room disk radius
	dungeonMaxRadius   = 3   // Largest room disk radius
	dungeonCorridor    = 1   // Capsule half-thickness
	dungeonSmoothPass  = 2   // Cellular automaton passes
	dungeonSmoothMin   = 6   // Passable neighbours needed to erode a wall
	dungeonGapChance   = 0.5 // Chance a qualifying wall becomes a shortcut
	dungeonSpawnTries  = 500
)

var dirs4 = [4]Point{{0, -1}, {1, 0}, {0, 1}, {-1, 0}}

type link struct{ a, b int }

// generateDungeon carves rooms around a jittered node grid joined by a random
// spanning tree plus a few diagonal loops. Every carve stamps a disk of at
// least radius 1 along 8-connected walks, so all floor is 4-connected.
func generateDungeon(m *Map, r *rng.Mulberry32) {
	m.fill(Wall)

	cols := max(1, (m.Width-2)/dungeonNodeSpacing)
	rows := max(1, (m.Height-2)/dungeonNodeSpacing)
	nodes := make([]Point, 0, cols*rows)
	for j := 0; j < rows; j++ {
		for i := 0; i < cols; i++ {
			cx := 1 + i*dungeonNodeSpacing + dungeonNodeSpacing/2 + r.Range(-dungeonJitter, dungeonJitter)
			cy := 1 + j*dungeonNodeSpacing + dungeonNodeSpacing/2 + r.Range(-dungeonJitter, dungeonJitter)
			nodes = append(nodes, Point{
				X: clamp(cx, 2, m.Width-3),
				Y: clamp(cy, 2, m.Height-3),
			})
		}
	}

	links := spanningTree(cols, rows, r)
	links = addDiagonalLinks(links, cols, rows, r)

	for _, n := range nodes {
		m.carveDisk(n.X, n.Y, r.Range(dungeonMinRadius, dungeonMaxRadius))
	}
	for _, l := range links {
		m.carveCapsule(nodes[l.a], nodes[l.b], dungeonCorridor)
	}

	for pass := 0; pass < dungeonSmoothPass; pass++ {
		m.smooth()
	}
	m.punchGaps(r)

	m.Spawn = nodes[0]
	for try := 0; try < dungeonSpawnTries; try++ {
		x, y := r.Intn(m.Width), r.Intn(m.Height)
		if m.Walls[y][x] == Floor {
			m.Spawn = Point{X: x, Y: y}
			break
		}
	}
}

// spanningTree runs an iterative randomized depth-first search over the node
// grid and returns the tree edges.
func spanningTree(cols, rows int, r *rng.Mulberry32) []link {
	total := cols * rows
	visited := make([]bool, total)
	links := make([]link, 0, total)

	start := r.Intn(total)
	visited[start] = true
	stack := []int{start}
	options := make([]int, 0, 4)

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		ci, cj := cur%cols, cur/cols

		options = options[:0]
		for _, d := range dirs4 {
			ni, nj := ci+d.X, cj+d.Y
			if ni < 0 || nj < 0 || ni >= cols || nj >= rows {
				continue
			}
			if n := nj*cols + ni; !visited[n] {
				options = append(options, n)
			}
		}
		if len(options) == 0 {
			stack = stack[:len(stack)-1]
			continue
		}

		next := options[r.Intn(len(options))]
		visited[next] = true
		links = append(links, link{a: cur, b: next})
		stack = append(stack, next)
	}
	return links
}

// addDiagonalLinks adds a bounded number of extra diagonal edges for loops.
func addDiagonalLinks(links []link, cols, rows int, r *rng.Mulberry32) []link {
	if cols < 2 || rows < 2 {
		return links
	}
	seen := make(map[link]bool)
	attempts := max(1, cols*rows/5)
	for i := 0; i < attempts; i++ {
		n := r.Intn(cols * rows)
		ci, cj := n%cols, n/cols
		di := 1
		if r.Intn(2) == 0 {
			di = -1
		}
		ni, nj := ci+di, cj+1
		if ni < 0 || ni >= cols || nj >= rows {
			continue
		}
		l := link{a: n, b: nj*cols + ni}
		if seen[l] {
			continue
		}
		seen[l] = true
		links = append(links, l)
	}
	return links
}

// carveDisk clears every interior cell within radius of (cx,cy).
func (m *Map) carveDisk(cx, cy, radius int) {
	for y := cy - radius; y <= cy+radius; y++ {
		for x := cx - radius; x <= cx+radius; x++ {
			if x < 1 || y < 1 || x > m.Width-2 || y > m.Height-2 {
				continue
			}
			dx, dy := x-cx, y-cy
			if dx*dx+dy*dy <= radius*radius {
				m.Walls[y][x] = Floor
			}
		}
	}
}

// carveCapsule stamps disks along a Bresenham walk from a to b.
func (m *Map) carveCapsule(a, b Point, radius int) {
	bresenham(a, b, func(p Point) {
		m.carveDisk(p.X, p.Y, radius)
	})
}

func bresenham(a, b Point, visit func(Point)) {
	x, y := a.X, a.Y
	dx := abs(b.X - a.X)
	dy := -abs(b.Y - a.Y)
	sx, sy := 1, 1
	if a.X > b.X {
		sx = -1
	}
	if a.Y > b.Y {
		sy = -1
	}
	e := dx + dy
	for {
		visit(Point{X: x, Y: y})
		if x == b.X && y == b.Y {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x += sx
		}
		if e2 <= dx {
			e += dx
			y += sy
		}
	}
}

// smooth erodes interior walls surrounded by mostly floor. Reads come from a
// snapshot so the pass is order-independent.
func (m *Map) smooth() {
	snap := newGrid[Cell](m.Width, m.Height)
	for y := range m.Walls {
		copy(snap[y], m.Walls[y])
	}
	for y := 1; y < m.Height-1; y++ {
		for x := 1; x < m.Width-1; x++ {
			if snap[y][x] != Wall {
				continue
			}
			open := 0
			for oy := -1; oy <= 1; oy++ {
				for ox := -1; ox <= 1; ox++ {
					if (ox != 0 || oy != 0) && snap[y+oy][x+ox] == Floor {
						open++
					}
				}
			}
			if open >= dungeonSmoothMin {
				m.Walls[y][x] = Floor
			}
		}
	}
}

// punchGaps opens single-tile shortcuts through walls that separate two
// floor cells, recording them in EdgesH / EdgesV.
func (m *Map) punchGaps(r *rng.Mulberry32) {
	attempts := m.Width * m.Height / 64
	for i := 0; i < attempts; i++ {
		x := r.Range(1, m.Width-2)
		y := r.Range(1, m.Height-2)
		if !r.Chance(dungeonGapChance) || m.Walls[y][x] != Wall {
			continue
		}
		switch {
		case m.Walls[y][x-1] == Floor && m.Walls[y][x+1] == Floor:
			m.Walls[y][x] = Floor
			m.EdgesH[y][x] = true
		case m.Walls[y-1][x] == Floor && m.Walls[y+1][x] == Floor:
			m.Walls[y][x] = Floor
			m.EdgesV[y][x] = true
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
