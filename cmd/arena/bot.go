package main

import (
	"hash/fnv"

	"pokemon-arena/internal/game"
	"pokemon-arena/internal/rng"
)

var botKeys = []string{game.KeyUp, game.KeyDown, game.KeyLeft, game.KeyRight}

// bot drives the local player of a headless client: it wanders, fires
// now and then and uses its ability on the nearest peer.
type bot struct {
	r *rng.Mulberry32
}

func newBot(uid string) *bot {
	h := fnv.New32a()
	h.Write([]byte(uid))
	return &bot{r: rng.New(h.Sum32())}
}

// act presses at most one key. It runs with the world locked.
func (b *bot) act(w *game.World) string {
	p := w.LocalPlayer()
	if p == nil || p.Defeated {
		return ""
	}
	switch {
	case b.r.Chance(0.1):
		if w.HandleKey(game.KeyAbility, nearestPeer(w, p)) {
			return game.KeyAbility
		}
	case b.r.Chance(0.2):
		if w.HandleKey(game.KeyFire, nil) {
			return game.KeyFire
		}
	}
	key := botKeys[b.r.Intn(len(botKeys))]
	if w.HandleKey(key, nil) {
		return key
	}
	return ""
}

func nearestPeer(w *game.World, self *game.Player) *game.Player {
	var best *game.Player
	for _, p := range w.Players() {
		if p.ID == self.ID || p.Defeated {
			continue
		}
		if best == nil || self.DistanceTo(p) < self.DistanceTo(best) {
			best = p
		}
	}
	return best
}
