// Package preview draws debug images of generated maps and live worlds.
package preview

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"

	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"

	"pokemon-arena/internal/game"
	"pokemon-arena/internal/mapgen"
)

// Options controls the rendering.
type Options struct {
	CellSize int     // pixels per tile
	TileSize float64 // world pixels per tile, for snapshot overlays
	Legend   bool    // footer with type, seed and spawn
}

// DefaultOptions returns a readable size for maps up to ~100 tiles.
func DefaultOptions() Options {
	return Options{CellSize: 8, TileSize: 32, Legend: true}
}

const legendHeight = 16

var (
	colorFloor  = color.RGBA{196, 184, 150, 255}
	colorWall   = color.RGBA{54, 48, 60, 255}
	colorWater  = color.RGBA{58, 120, 196, 255}
	colorTree   = color.RGBA{40, 110, 52, 255}
	colorSpawn  = color.RGBA{255, 214, 0, 255}
	colorSand   = color.RGBA{230, 200, 110, 255}
	colorPoison = color.RGBA{150, 70, 190, 255}
	colorPlayer = color.RGBA{255, 255, 255, 255}
	colorEnemy  = color.RGBA{220, 50, 50, 255}
	colorShot   = color.RGBA{255, 140, 0, 255}
	colorLegend = color.RGBA{12, 12, 28, 255}
)

func cellColor(c mapgen.Cell) color.Color {
	switch c {
	case mapgen.Wall:
		return colorWall
	case mapgen.Water:
		return colorWater
	case mapgen.Tree:
		return colorTree
	default:
		return colorFloor
	}
}

// Render draws the map and, when snap is non-nil, its traps, enemies,
// projectiles and players on top.
func Render(m *mapgen.Map, snap *game.WorldSnapshot, opts Options) image.Image {
	if opts.CellSize <= 0 {
		opts.CellSize = DefaultOptions().CellSize
	}
	if opts.TileSize <= 0 {
		opts.TileSize = DefaultOptions().TileSize
	}
	cs := float64(opts.CellSize)
	width := m.Width * opts.CellSize
	height := m.Height * opts.CellSize
	if opts.Legend {
		height += legendHeight
	}

	dc := gg.NewContext(width, height)
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			dc.SetColor(cellColor(m.At(x, y)))
			dc.DrawRectangle(float64(x)*cs, float64(y)*cs, cs, cs)
			dc.Fill()
		}
	}

	dc.SetColor(colorSpawn)
	dc.SetLineWidth(2)
	dc.DrawRectangle(float64(m.Spawn.X)*cs+1, float64(m.Spawn.Y)*cs+1, cs-2, cs-2)
	dc.Stroke()

	if snap != nil {
		drawSnapshot(dc, snap, cs/opts.TileSize, cs)
	}

	if opts.Legend {
		dc.SetColor(colorLegend)
		dc.DrawRectangle(0, float64(height-legendHeight), float64(width), legendHeight)
		dc.Fill()
		dc.SetFontFace(basicfont.Face7x13)
		dc.SetColor(color.White)
		dc.DrawStringAnchored(fmt.Sprintf("%s %dx%d seed=%d spawn=%d,%d",
			m.Type, m.Width, m.Height, m.Seed, m.Spawn.X, m.Spawn.Y),
			4, float64(height)-legendHeight/2, 0, 0.35)
	}
	return dc.Image()
}

func drawSnapshot(dc *gg.Context, snap *game.WorldSnapshot, scale, cs float64) {
	for _, t := range snap.Traps {
		if t.Kind == game.TrapPoison {
			dc.SetColor(colorPoison)
		} else {
			dc.SetColor(colorSand)
		}
		dc.DrawRectangle(float64(t.X)*cs+cs/4, float64(t.Y)*cs+cs/4, cs/2, cs/2)
		dc.Fill()
	}

	// Entity positions are top-left corners; draw at the tile center.
	half := cs / 2
	for _, e := range snap.Enemies {
		if e.Defeated {
			continue
		}
		dc.SetColor(colorEnemy)
		dc.DrawRegularPolygon(3, e.X*scale+half, e.Y*scale+half, half, 0)
		dc.Fill()
	}
	for _, p := range snap.Projectiles {
		dc.SetColor(colorShot)
		dc.DrawCircle(p.X*scale, p.Y*scale, cs/6+1)
		dc.Fill()
	}
	for _, p := range snap.Players {
		if p.Defeated {
			continue
		}
		dc.SetColor(colorPlayer)
		dc.DrawCircle(p.X*scale+half, p.Y*scale+half, half*0.8)
		dc.Fill()
	}
}

// WritePNG renders and encodes the image.
func WritePNG(w io.Writer, m *mapgen.Map, snap *game.WorldSnapshot, opts Options) error {
	if err := png.Encode(w, Render(m, snap, opts)); err != nil {
		return fmt.Errorf("encode map preview: %w", err)
	}
	return nil
}
