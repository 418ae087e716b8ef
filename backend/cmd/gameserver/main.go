package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/Cmav0711/Untitled-Horse-Game-2/backend/internal/config"
	"github.com/Cmav0711/Untitled-Horse-Game-2/backend/internal/shared/logger"
)

func main() {
	configPath := pflag.StringP("config", "c", "", "YAML config file (overrides TUNING_FILE)")
	pflag.Parse()

	log := logger.New("gameserver")
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	log = log.Level(logger.ParseLevel(cfg.LogLevel))

	s := newServer(cfg, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go s.runSimulationLoop(ctx)
	go s.runReplicationLoop(ctx)

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	log.Info().
		Str("addr", cfg.Addr).
		Int("tick_hz", cfg.TickHz).
		Int("replication_hz", cfg.ReplicationHz).
		Strs("archetypes", cfg.ArchetypeNames()).
		Msg("authoritative game server listening")
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server failed")
	}
}
