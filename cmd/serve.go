package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/urfave/cli/v3"

	"github.com/rubiojr/lunchbox/pkg/api"
	"github.com/rubiojr/lunchbox/pkg/config"
	"github.com/rubiojr/lunchbox/pkg/pipeline"
)

// ServeCommand creates the serve command
func ServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the HTTP API server and search pipeline",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "listen",
				Usage: "Address to listen on",
				Value: ":8080",
			},
			&cli.BoolFlag{
				Name:  "mock",
				Usage: "Use the offline mock backend",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return serve(ctx, c.String("config"), c.String("listen"), c.Bool("mock"))
		},
	}
}

// serverRuntime bundles everything one configuration produces: the pipeline
// coordinator, its dependencies and the HTTP handler. Reloading swaps the
// whole runtime.
type serverRuntime struct {
	coordinator *pipeline.Coordinator
	handler     http.Handler
	cleanup     func()
}

func startRuntime(ctx context.Context, cfg *config.Config, mock bool) (*serverRuntime, error) {
	if mock {
		cfg.Mock = true
	}

	deps, cleanup, err := buildDeps(cfg)
	if err != nil {
		return nil, err
	}

	coordinator := pipeline.NewCoordinator(pipeline.Config{
		RadiusMeters:   cfg.RadiusMeters,
		DebounceQuiet:  cfg.DebounceInterval.Duration,
		ThrottleWindow: cfg.ThrottleWindow.Duration,
		MinMoveMeters:  cfg.MinMoveMeters,
		PageTokenDelay: cfg.PageTokenDelay.Duration,
	}, deps)
	if err := coordinator.Start(ctx); err != nil {
		cleanup()
		return nil, fmt.Errorf("starting pipeline: %w", err)
	}

	server := api.NewServer(coordinator, deps, cfg.RadiusMeters)
	mux := http.NewServeMux()
	server.RegisterRoutes(mux)

	return &serverRuntime{
		coordinator: coordinator,
		handler:     mux,
		cleanup:     cleanup,
	}, nil
}

func (rt *serverRuntime) stop() {
	rt.coordinator.Stop()
	rt.cleanup()
}

// switchableHandler lets the HTTP server survive configuration reloads: the
// listener stays up while the handler behind it is swapped.
type switchableHandler struct {
	current atomic.Value
}

func (h *switchableHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.current.Load().(http.Handler).ServeHTTP(w, r)
}

// serve runs the API server until interrupted, reloading on SIGHUP or when
// the config file changes on disk.
func serve(ctx context.Context, configPath, listen string, mock bool) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	serveCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	rt, err := startRuntime(serveCtx, cfg, mock)
	if err != nil {
		return err
	}

	handler := &switchableHandler{}
	handler.current.Store(rt.handler)

	httpServer := &http.Server{
		Addr:    listen,
		Handler: api.CorsMiddleware(handler),
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Infof("listening on %s", listen)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Signal handling - includes SIGHUP for reload
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	// Set up filesystem watcher for the config file
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Warnf("creating config file watcher: %v", err)
	} else {
		defer func() {
			if err := watcher.Close(); err != nil {
				logger.Warnf("closing config file watcher: %v", err)
			}
		}()
		if err := watcher.Add(configPath); err != nil {
			logger.Warnf("watching config file %s: %v", configPath, err)
		} else {
			logger.Infof("watching config file for changes: %s", configPath)
		}
	}

	reload := func() {
		newCfg, err := config.LoadConfig(configPath)
		if err != nil {
			logger.Errorf("reloading config: %v", err)
			return
		}
		newRt, err := startRuntime(serveCtx, newCfg, mock)
		if err != nil {
			logger.Errorf("restarting pipeline with new config: %v", err)
			return
		}
		handler.current.Store(newRt.handler)
		old := rt
		rt = newRt
		old.stop()
		logger.Infof("configuration reloaded")
	}

	shutdown := func() error {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warnf("http shutdown: %v", err)
		}
		rt.stop()
		return nil
	}

	var watcherEvents chan fsnotify.Event
	var watcherErrors chan error
	if watcher != nil {
		watcherEvents = watcher.Events
		watcherErrors = watcher.Errors
	}

	for {
		select {
		case err := <-serverErr:
			rt.stop()
			return fmt.Errorf("http server: %w", err)

		case <-serveCtx.Done():
			return shutdown()

		case sig := <-sigCh:
			switch sig {
			case syscall.SIGHUP:
				logger.Infof("received SIGHUP, reloading configuration")
				reload()
			case syscall.SIGINT, syscall.SIGTERM:
				fmt.Println("\nShutting down...")
				return shutdown()
			}

		case event, ok := <-watcherEvents:
			if !ok {
				continue
			}
			// Editors often replace the file rather than writing in place.
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove) {
				if event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove) {
					time.Sleep(200 * time.Millisecond)
					if _, err := os.Stat(configPath); os.IsNotExist(err) {
						logger.Warnf("config file removed and not replaced, skipping reload")
						continue
					}
					if err := watcher.Add(configPath); err != nil {
						logger.Warnf("re-adding config file to watcher: %v", err)
					}
				} else {
					time.Sleep(100 * time.Millisecond)
				}
				logger.Infof("config file changed (%s), reloading", event.Op)
				reload()
			}

		case err, ok := <-watcherErrors:
			if !ok {
				continue
			}
			logger.Warnf("config file watcher: %v", err)
		}
	}
}
