package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"classclash"
	"classclash/internal/catalog"
	"classclash/internal/config"
	"classclash/internal/handlers"
	"classclash/internal/store"
	"classclash/internal/ws"
)

func main() {
	// Load server configuration
	cfg, err := config.LoadConfig("")
	if err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}

	logger, err := buildLogger(cfg.Server.LogLevel, cfg.Server.LogFormat)
	if err != nil {
		log.Fatal("Failed to build logger: ", err)
	}
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.String("addr", cfg.Server.Host+":"+cfg.Server.Port),
		zap.Int("maxPlayersPerRoom", cfg.Game.MaxPlayersPerRoom))

	// Load question packs fail-fast: the embedded pack plus anything in
	// the packs directory.
	cat := catalog.New()
	if err := cat.Load(classclash.DefaultPackJSON, cfg.Server.PacksDir); err != nil {
		logger.Fatal("failed to load question packs", zap.Error(err))
	}
	logger.Info("question packs loaded", zap.Int("packs", cat.Len()))

	// Wire store and socket server together. The store needs the
	// broadcaster before any room is created.
	s := store.NewMemoryStore(cfg, cat, logger)
	sock := ws.NewServer(cfg, s, logger)
	s.SetBroadcaster(sock)

	h := handlers.New(cfg, s, cat, sock, classclash.DefaultPackJSON, logger)
	r := handlers.SetupRouter(h, cfg, nil)

	reaperCtx, stopReaper := context.WithCancel(context.Background())
	defer stopReaper()
	s.StartReaper(reaperCtx)

	addr := cfg.Server.Host + ":" + cfg.Server.Port
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout, // 0 keeps websocket connections alive
	}

	go func() {
		logger.Info("starting server", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	stopReaper()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server gracefully stopped")
}

// buildLogger creates a zap logger honoring LOG_LEVEL and LOG_FORMAT
func buildLogger(level, format string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	var zcfg zap.Config
	if format == "console" {
		zcfg = zap.NewDevelopmentConfig()
	} else {
		zcfg = zap.NewProductionConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	return zcfg.Build()
}
