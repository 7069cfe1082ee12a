// Command mapgen prints the map a lobby record produces and can write a
// PNG preview of it.
package main

import (
	"flag"
	"fmt"
	"os"

	"pokemon-arena/internal/logger"
	"pokemon-arena/internal/mapgen"
	"pokemon-arena/internal/preview"
)

func main() {
	width := flag.Int("w", 48, "width in tiles")
	height := flag.Int("h", 32, "height in tiles")
	seed := flag.Uint("seed", 1234, "generator seed")
	typ := flag.String("type", "dungeon", "dungeon, plains or forest")
	out := flag.String("png", "", "write a PNG preview to this path")
	cell := flag.Int("cell", preview.DefaultOptions().CellSize, "PNG pixels per tile")
	quiet := flag.Bool("q", false, "do not print the ASCII grid")
	flag.Parse()

	logger.Init()

	m := mapgen.Generate(*width, *height, uint32(*seed), mapgen.ParseType(*typ))
	if !*quiet {
		fmt.Print(m.String())
	}
	fmt.Printf("type=%s size=%dx%d seed=%d spawn=%d,%d passable=%d\n",
		m.Type, m.Width, m.Height, m.Seed, m.Spawn.X, m.Spawn.Y, m.PassableCount())

	if *out == "" {
		return
	}
	f, err := os.Create(*out)
	if err != nil {
		logger.Log.WithError(err).Fatal("❌ Could not create preview file")
	}
	defer f.Close()

	opts := preview.DefaultOptions()
	opts.CellSize = *cell
	if err := preview.WritePNG(f, m, nil, opts); err != nil {
		logger.Log.WithError(err).Fatal("❌ Could not write preview")
	}
	logger.Log.WithField("path", *out).Info("🖼️ Preview written")
}
