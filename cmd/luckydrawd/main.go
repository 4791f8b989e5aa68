// Command luckydrawd runs the lucky-draw wheel service: prize list and draw
// history over HTTP, server-side spin simulation, and live websocket wheel
// sessions, backed by SQLite with optional remote key-value sync.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/shij-yuan/lucky-draw/internal/api"
	"github.com/shij-yuan/lucky-draw/internal/config"
	"github.com/shij-yuan/lucky-draw/internal/remote"
	"github.com/shij-yuan/lucky-draw/internal/store"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to YAML config file")
		listen     = flag.String("listen", "", "override listen address")
		dbPath     = flag.String("db", "", "override SQLite database path")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[luckydrawd] ", log.LstdFlags)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatalf("config_load_failed error=%q", err)
	}
	if *listen != "" {
		cfg.Listen = *listen
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}

	if err := run(cfg, logger); err != nil {
		logger.Fatalf("server_failed error=%q", err)
	}
}

func run(cfg *config.Config, logger *log.Logger) error {
	db, err := store.NewSQLiteDB(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		return err
	}

	var st store.Store = db
	if cfg.Remote.Enabled {
		client := remote.NewClient(remote.Config{
			BaseURL:   cfg.Remote.BaseURL,
			Token:     cfg.Remote.Token,
			UserAgent: "luckydrawd/" + api.ServiceVersion,
		})
		timeout := time.Duration(cfg.Remote.TimeoutMS) * time.Millisecond
		st = store.NewFallback(db, client, timeout, logger)
		logger.Printf("remote_sync_enabled base_url=%s", cfg.Remote.BaseURL)
	}

	server := api.NewServer(st, api.Config{
		WheelCenterX:    cfg.Wheel.CenterX,
		WheelCenterY:    cfg.Wheel.CenterY,
		WheelRadius:     cfg.Wheel.Radius,
		HistoryPageSize: cfg.History.PageSize,
	})

	httpServer := &http.Server{
		Addr:    cfg.Listen,
		Handler: server.Routes(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Printf("server_starting listen=%s db=%s", cfg.Listen, cfg.Database.Path)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Printf("server_stopping")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
