// physd serves speculative motion tests for a scene over a websocket.
package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gopxl/mainthread/v2"
	"github.com/pkg/errors"

	"physical/internal/config"
	"physical/internal/physics"
	"physical/internal/scene"
	"physical/internal/server"
)

func main() {
	configPath := flag.String("config", "", "TOML configuration file")
	scenePath := flag.String("scene", "", "scene file, overrides [scene] path")
	addr := flag.String("addr", "", "listen address, overrides [server] addr")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			slog.Error("physd: config", "err", err)
			os.Exit(1)
		}
	}
	if *scenePath != "" {
		cfg.Scene.Path = *scenePath
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	// Engine mutation is confined to the main thread; every other goroutine
	// reaches it through mainthread.Call.
	var runErr error
	mainthread.Run(func() {
		runErr = run(cfg)
	})
	if runErr != nil {
		slog.Error("physd: exit", "err", runErr)
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	log := cfg.NewLogger(os.Stderr)
	detail, err := cfg.DefaultDetail()
	if err != nil {
		return err
	}

	engine := physics.NewEngine(cfg.EngineOptions(log)...)
	loader := scene.NewLoader(engine, log)
	loader.Cells = cfg.Scene.MeshCells
	loader.Detail = detail

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Scene.Path != "" {
		mainthread.Call(func() { err = loader.LoadFile(cfg.Scene.Path) })
		if err != nil {
			return err
		}
		if cfg.Scene.Watch {
			go func() {
				err := scene.Watch(ctx, cfg.Scene.Path, log, func() {
					var err error
					mainthread.Call(func() { err = loader.LoadFile(cfg.Scene.Path) })
					if err != nil {
						log.Warn("physd: reload kept previous scene", "err", err)
					}
				})
				if err != nil && !errors.Is(err, context.Canceled) {
					log.Warn("physd: scene watcher stopped", "err", err)
				}
			}()
		}
	}

	srv := server.New(engine,
		server.WithLogger(log),
		server.WithReadLimit(cfg.Server.ReadLimit),
		server.WithCaller(mainthread.Call),
	)
	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := engine.Exec(ctx, cfg.Physics.Tick.Duration); err != nil && !errors.Is(err, context.Canceled) {
			log.Warn("physd: stepping stopped", "err", err)
		}
	}()

	serveErr := make(chan error, 1)
	go func() {
		log.Info("physd: listening", "addr", cfg.Server.Addr, "objects", engine.Len())
		serveErr <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		return errors.Wrap(err, "serve")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown")
	}
	log.Info("physd: stopped", "steps", engine.Clock().Steps)
	return nil
}
