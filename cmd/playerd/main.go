// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Command playerd is the local playback agent: it hosts the playback
// orchestrator behind an HTTP control surface with Prometheus metrics,
// position persistence and config hot reload.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/shuliangfu/video-player/internal/api"
	"github.com/shuliangfu/video-player/internal/backend"
	"github.com/shuliangfu/video-player/internal/config"
	"github.com/shuliangfu/video-player/internal/history"
	plog "github.com/shuliangfu/video-player/internal/log"
	"github.com/shuliangfu/video-player/internal/media"
	"github.com/shuliangfu/video-player/internal/netstatus"
	"github.com/shuliangfu/video-player/internal/persistence/sqlite"
	"github.com/shuliangfu/video-player/internal/player"
	"github.com/shuliangfu/video-player/internal/resilience"
)

var (
	version   = "v1.0.0"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "player.yaml", "path to config file (YAML)")
	checkDB := flag.Bool("check-db", false, "verify history store integrity and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "playerd: %v\n", err)
		os.Exit(1)
	}

	if *checkDB {
		dbPath := filepath.Join(cfg.DataDir, "player.db")
		diags, err := sqlite.VerifyIntegrity(dbPath, sqlite.CheckFull)
		if err != nil {
			fmt.Fprintf(os.Stderr, "playerd: %v\n", err)
			os.Exit(1)
		}
		if len(diags) > 0 {
			for _, d := range diags {
				fmt.Fprintln(os.Stderr, d)
			}
			os.Exit(1)
		}
		fmt.Printf("%s: ok\n", dbPath)
		os.Exit(0)
	}

	logger, logLevel := plog.NewDynamic(plog.Config{
		Level:   cfg.LogLevel,
		Output:  os.Stderr,
		Service: "playerd",
	})
	log := plog.WithComponent(logger, "daemon")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := history.Open(filepath.Join(cfg.DataDir, "player.db"), plog.WithComponent(logger, "history"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open history store")
	}
	defer store.Close()

	p, err := player.New(player.Options{
		Logger:         plog.WithComponent(logger, "player"),
		Surface:        media.NewHeadless(0),
		SurfaceFactory: func() media.Surface { return media.NewHeadless(0) },
		Network: netstatus.NewManual(netstatus.Snapshot{
			Online: true,
			Class:  netstatus.ClassWired,
		}),
		Store: store,
		Backends: backend.FactoryOptions{
			FallbackToProgressive: true,
			DASH: backend.DASHOptions{
				StreamingDelaySeconds: cfg.DASH.StreamingDelaySeconds,
				AutoBitrateSwitch:     cfg.DASH.AutoBitrateSwitch,
			},
			FLV: backend.FLVOptions{
				ReconnectDelay:       cfg.FLV.ReconnectDelay,
				MaxReconnectAttempts: cfg.FLV.MaxReconnectAttempts,
			},
		},
		FallbackSources: cfg.FallbackSources,
		Playlist:        cfg.Playlist,
		LoopMode:        cfg.LoopMode,
		Autoplay:        cfg.Autoplay,
		Retry: resilience.Policy{
			BaseDelay:   cfg.Retry.BaseDelay,
			MaxDelay:    cfg.Retry.MaxDelay,
			MaxAttempts: cfg.Retry.MaxAttempts,
		},
		PreloadEnabled: cfg.Preload.Enabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to construct player")
	}
	defer p.Destroy()

	p.SetVolume(cfg.Volume)
	p.SetPlaybackRate(cfg.PlaybackRate)

	holder := config.NewHolder(cfg, *configPath, plog.WithComponent(logger, "config"))
	if err := holder.StartWatcher(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to start config watcher")
	}
	defer holder.Stop()

	// Only dynamic fields apply at reload; structural fields (source,
	// playlist, server address) require a restart.
	reloads := make(chan config.Config, 1)
	holder.RegisterListener(reloads)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case next := <-reloads:
				p.SetRetryPolicy(resilience.Policy{
					BaseDelay:   next.Retry.BaseDelay,
					MaxDelay:    next.Retry.MaxDelay,
					MaxAttempts: next.Retry.MaxAttempts,
				})
				p.SetPreloadEnabled(next.Preload.Enabled)
				if err := logLevel.SetString(next.LogLevel); err != nil {
					log.Warn().Err(err).Msg("log level not applied")
				}
				log.Info().Msg("dynamic configuration applied")
			}
		}
	}()

	server := api.NewServer(p, api.Config{
		RatePerMinute: cfg.Server.RatePerMinute,
		ReportPath:    filepath.Join(cfg.DataDir, "performance-report.json"),
	}, plog.WithComponent(logger, "api"))

	httpServer := &http.Server{
		Addr:         cfg.Server.Listen,
		Handler:      server.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	if cfg.Source != "" {
		p.LoadSource(cfg.Source)
	} else if !p.LoadCurrent() {
		log.Warn().Msg("no initial source loaded")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", cfg.Server.Listen).Msg("control API listening")
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("agent terminated")
		os.Exit(1)
	}
	log.Info().Msg("agent stopped")
}
