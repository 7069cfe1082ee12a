package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"pokemon-arena/internal/config"
	"pokemon-arena/internal/game"
	"pokemon-arena/internal/lifecycle"
	"pokemon-arena/internal/logger"
	"pokemon-arena/internal/mapgen"
	"pokemon-arena/internal/netsync"
	"pokemon-arena/internal/observability"
	"pokemon-arena/internal/preview"
	"pokemon-arena/internal/relay"
)

func main() {
	mapType := flag.String("type", "dungeon", "map type when the lobby has to be created")
	wander := flag.Bool("bot", true, "drive the local player automatically")
	snapshotPath := flag.String("snapshot", "", "write a PNG of the final world state to this path")
	flag.Parse()

	if err := godotenv.Load(".env"); err != nil {
		logger.Log.Debug("💡 No .env file found, using environment variables only")
	}
	logger.Init()

	appConfig := config.Load()
	clientCfg := appConfig.Client
	uid := uuid.NewString()
	log := logger.Log.WithFields(logrus.Fields{"uid": uid, "lobby": clientCfg.LobbyID})

	abilities, err := config.LoadAbilities(clientCfg.AbilitiesPath)
	if err != nil {
		log.WithError(err).Warn("⚠️ Ability catalog unavailable, using defaults")
	}

	observability.StartDebugServer(observability.DefaultDebugConfig())

	root := lifecycle.New(context.Background(), "arena")
	defer func() {
		if err := root.Close(); err != nil {
			log.WithError(err).Warn("shutdown errors")
		}
	}()

	info, err := joinLobby(root.Context(), &http.Client{Timeout: 10 * time.Second},
		clientCfg.RelayURL, clientCfg.LobbyID, *mapType)
	if err != nil {
		log.WithError(err).Fatal("❌ Could not join lobby")
	}
	codec, err := netsync.CodecByName(info.Codec)
	if err != nil {
		log.WithError(err).Fatal("❌ Lobby uses an unknown codec")
	}

	m := info.Map.Generate()
	log.WithFields(logrus.Fields{
		"type":  m.Type,
		"seed":  m.Seed,
		"size":  [2]int{m.Width, m.Height},
		"codec": codec.Name(),
	}).Info("🗺️ Map generated")

	events := game.NewEventLog()
	if path := clientCfg.EventLogPath; path != "" {
		if err := events.Start(path); err != nil {
			log.WithError(err).Warn("⚠️ Event log disabled")
		} else {
			root.Defer(func() {
				events.Stop()
				stats := events.Stats()
				log.WithFields(logrus.Fields{
					"path":    path,
					"total":   stats.Total,
					"dropped": stats.Dropped,
				}).Info("📝 Event log closed")
			})
		}
	}

	world := game.NewWorld(game.WorldOptions{
		Map:       m,
		Config:    appConfig.Sim,
		Abilities: abilities,
		LocalID:   uid,
		Events:    events,
	})
	world.SpawnLocalPlayer(clientCfg.Username, clientCfg.Character)

	// The match scope owns everything tied to this lobby session.
	match := root.Child("match")

	transport := relay.NewClient(relay.Options{
		URL:      wsBase(clientCfg.RelayURL) + "/lobbies/" + info.ID + "/ws",
		UID:      uid,
		Username: clientCfg.Username,
		Binary:   codec.Binary(),
	})
	if err := transport.Connect(match.Context()); err != nil {
		log.WithError(err).Fatal("❌ Could not reach relay")
	}
	match.Add(transport)
	match.Go(transport.Run)

	syncer := netsync.NewSyncer(netsync.SyncerOptions{
		Config:    appConfig.Sync,
		Codec:     codec,
		Transport: transport,
		Authority: netsync.NewAuthority(uid),
	})

	engine := game.NewEngine(world, appConfig.Sim.TickRate)
	engine.SetReconciler(syncer)
	match.Go(engine.Run)

	if *wander {
		b := newBot(uid)
		match.Go(func(ctx context.Context) {
			ticker := time.NewTicker(250 * time.Millisecond)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					engine.Do(func(w *game.World) { b.act(w) })
				}
			}
		})
	}

	log.WithField("character", clientCfg.Character).Info("✅ Arena client running. Press Ctrl+C to stop.")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("🛑 Shutting down...")
	if err := match.Close(); err != nil {
		log.WithError(err).Warn("match shutdown errors")
	}
	if *snapshotPath != "" {
		writeSnapshot(*snapshotPath, m, engine.Snapshot(), appConfig.Sim.TileSize, log)
	}
	log.Info("👋 Goodbye!")
}

func writeSnapshot(path string, m *mapgen.Map, snap *game.WorldSnapshot, tileSize float64, log *logrus.Entry) {
	f, err := os.Create(path)
	if err != nil {
		log.WithError(err).Warn("⚠️ Snapshot not written")
		return
	}
	defer f.Close()

	opts := preview.DefaultOptions()
	opts.TileSize = tileSize
	if err := preview.WritePNG(f, m, snap, opts); err != nil {
		log.WithError(err).Warn("⚠️ Snapshot not written")
		return
	}
	log.WithField("path", path).Info("🖼️ Snapshot written")
}
