package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"pokemon-arena/internal/api"
	"pokemon-arena/internal/config"
	"pokemon-arena/internal/logger"
	"pokemon-arena/internal/observability"
)

func main() {
	// Load .env file from parent directory
	if err := godotenv.Load("../.env"); err != nil {
		// Try current directory as fallback
		if err := godotenv.Load(".env"); err != nil {
			logger.Log.Info("💡 No .env file found, using environment variables only")
		}
	}
	logger.Init()

	logger.Log.Info("🎮 ================================")
	logger.Log.Info("🎮  POKEMON ARENA - LOBBY RELAY")
	logger.Log.Info("🎮 ================================")

	serverCfg := config.ServerFromEnv()
	logger.Log.WithFields(logrus.Fields{
		"port":       serverCfg.Port,
		"maxLobbies": serverCfg.MaxLobbies,
		"maxMembers": serverCfg.MaxLobbyMembers,
	}).Info("🛡️ Relay limits")

	observability.StartDebugServer(observability.DefaultDebugConfig())

	server := api.NewServer(serverCfg)

	go func() {
		if err := server.Start(); err != nil {
			logger.Log.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	logger.Log.Info("✅ Relay ready! Press Ctrl+C to stop.")
	<-quit

	logger.Log.Info("🛑 Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Log.WithError(err).Warn("⚠️ Unclean shutdown")
	}
	logger.Log.Info("👋 Goodbye!")
}
