package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/awsl-project/lsdir/internal/bridge"
	"github.com/awsl-project/lsdir/internal/config"
	"github.com/awsl-project/lsdir/internal/core"
	"github.com/awsl-project/lsdir/internal/handler"
	"github.com/awsl-project/lsdir/internal/repository/gormdb"
	"github.com/awsl-project/lsdir/internal/version"
)

func main() {
	addr := flag.String("addr", "", "Server address (default: "+config.DefaultAddr+")")
	dataDir := flag.String("data", "", "Data directory for database, logs and lsdir.toml (default: ~/.config/lsdir)")
	dsn := flag.String("dsn", "", "Database DSN (default: SQLite in the data directory)")
	showVersion := flag.Bool("version", false, "Show version information and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("lsdir", version.Full())
		os.Exit(0)
	}

	cfg, err := config.Load(config.Overrides{Addr: *addr, DataDir: *dataDir, DSN: *dsn})
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	registry := bridge.NewRegistry()
	deps := bridge.Deps{RecentLimit: cfg.RecentLimit}

	var db *gormdb.DB
	if !cfg.DisableHistory {
		if cfg.DSN != "" {
			log.Printf("Using database DSN from configuration")
			db, err = gormdb.NewDBWithDSN(cfg.DSN)
		} else {
			db, err = gormdb.NewDB(cfg.DBPath())
		}
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		defer db.Close()
		deps.RecentDirs = gormdb.NewRecentDirRepository(db)
	}
	bridge.NewCommands(registry, deps)

	authMiddleware := handler.NewAuthMiddleware()
	if authMiddleware.IsEnabled() {
		log.Println("Bridge authentication is enabled")
	} else {
		log.Printf("Bridge authentication is disabled (set %s to enable)", handler.AdminPasswordEnvKey)
	}

	components := core.NewServerComponents(registry, authMiddleware)

	// Setup log output to broadcast via WebSocket
	logWriter := handler.NewWebSocketLogWriter(components.WebSocketHub, os.Stdout, cfg.LogPath())
	defer logWriter.Close()
	log.SetOutput(logWriter)

	server, err := core.NewManagedServer(&core.ServerConfig{
		Addr:        cfg.Addr,
		Components:  components,
		ServeStatic: cfg.ServeStatic,
	})
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}

	log.Printf("Starting lsdir server %s on %s", version.Info(), server.GetAddr())
	log.Printf("Data directory: %s", cfg.DataDir)
	log.Printf("  Log file: %s", cfg.LogPath())
	log.Printf("Commands: %v", registry.Names())
	log.Printf("Invoke:    http://%s/api/invoke/{command}", server.GetAddr())
	log.Printf("WebSocket: ws://%s/ws", server.GetAddr())

	<-ctx.Done()
	log.Printf("Received shutdown signal, initiating graceful shutdown...")

	if err := server.Stop(context.Background()); err != nil {
		log.Printf("Server stop error: %v", err)
	}
	log.Printf("Server stopped")
}
