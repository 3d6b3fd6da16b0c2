package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/claude/bodymap/internal/config"
	"github.com/claude/bodymap/internal/logging"
	"github.com/claude/bodymap/internal/mcp"
	"github.com/claude/bodymap/internal/muscles"
	"github.com/claude/bodymap/internal/recovery"
	"github.com/claude/bodymap/internal/server"
	"github.com/claude/bodymap/internal/storage"
	"github.com/claude/bodymap/internal/tracker"
	"tailscale.com/tsnet"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	migrateOnly := flag.Bool("migrate-only", false, "run migrations and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// validate() already rejected unknown level names.
	level, _ := logging.ParseLevel(cfg.Log.Level)
	log := logging.New(os.Stdout, level)
	log.Info("bodymap starting", "version", Version)

	dsn := cfg.Database.DSN()
	if err := storage.RunMigrations(dsn, "migrations"); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}
	log.Info("migrations applied")

	if *migrateOnly {
		log.Info("migrate-only: exiting")
		return
	}

	ctx := context.Background()
	db, err := storage.New(ctx, dsn)
	if err != nil {
		log.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	log.Info("database connected")

	table := muscles.Default()
	if cfg.Recovery.MuscleTable != "" {
		table, err = muscles.Load(cfg.Recovery.MuscleTable)
		if err != nil {
			log.Error("failed to load muscle table", "path", cfg.Recovery.MuscleTable, "error", err)
			os.Exit(1)
		}
		log.Info("muscle table loaded", "path", cfg.Recovery.MuscleTable, "groups", len(table.Groups()))
	}

	trackers := tracker.NewManager(db, table, recovery.DefaultConstants(), log)
	evictCtx, stopEvict := context.WithCancel(ctx)
	defer stopEvict()
	go trackers.EvictIdle(evictCtx, time.Hour, 10*time.Minute)
	mcpSrv := mcp.New(&mcp.TrackerSource{Trackers: trackers, Catalog: table}, Version, log)
	opts := []server.Option{server.WithMCP(mcpSrv)}

	// Start server: tsnet or plain HTTP
	var listener net.Listener

	if cfg.Tailscale.Enabled {
		tsServer := &tsnet.Server{
			Hostname: cfg.Tailscale.Hostname,
			Dir:      cfg.Tailscale.StateDir,
		}
		if err := tsServer.Start(); err != nil {
			log.Error("tsnet start failed", "error", err)
			os.Exit(1)
		}
		defer tsServer.Close()

		lc, err := tsServer.LocalClient()
		if err != nil {
			log.Error("tsnet local client failed", "error", err)
			os.Exit(1)
		}
		opts = append(opts, server.WithIdentity(server.TailscaleIdentity(lc, db, log)))

		listener, err = tsServer.Listen("tcp", ":80")
		if err != nil {
			log.Error("tsnet listen failed", "error", err)
			os.Exit(1)
		}
		log.Info("tsnet server starting", "hostname", cfg.Tailscale.Hostname)
	} else {
		dev := server.UserInfo{Login: cfg.Auth.DevLogin, DisplayName: "Local Dev User"}
		opts = append(opts, server.WithIdentity(server.StoredIdentity(db, dev, log)))

		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		listener, err = net.Listen("tcp", addr)
		if err != nil {
			log.Error("listen failed", "addr", addr, "error", err)
			os.Exit(1)
		}
		log.Info("server starting", "addr", addr, "mode", "dev (no tailscale)", "login", dev.Login)
	}

	srv := server.New(db, trackers, table, cfg.Auth.APIKey, log, opts...)
	httpSrv := &http.Server{Handler: srv}

	go func() {
		if err := httpSrv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("shutting down", "signal", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	log.Info("server stopped")
}
