package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/Versifine/momentum/internal/app"
	"github.com/Versifine/momentum/internal/config"
	"github.com/Versifine/momentum/internal/debug"
	"github.com/Versifine/momentum/internal/logger"
	"github.com/Versifine/momentum/internal/scenario"
)

type options struct {
	configPath string
	console    bool
	watch      bool
	realtime   bool
	travel     bool
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "configs/config.yaml", "path to the YAML configuration")
	flag.BoolVar(&opts.console, "console", false, "drive the first actor from the terminal")
	flag.BoolVar(&opts.watch, "watch", false, "restart the session when configuration files change")
	flag.BoolVar(&opts.realtime, "realtime", false, "pace scenario ticks on the wall clock")
	flag.BoolVar(&opts.travel, "travel", false, "log distance travelled and speed in console mode")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("momentum exited with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		return err
	}
	if err := logger.Init(loggerConfig(cfg)); err != nil {
		return err
	}
	defer logger.Close()

	if opts.console && opts.watch {
		slog.Warn("-watch is ignored in console mode")
		opts.watch = false
	}

	var events <-chan string
	if opts.watch {
		w, err := config.NewWatcher(watchDirs(opts.configPath, cfg)...)
		if err != nil {
			return fmt.Errorf("watch config: %w", err)
		}
		defer w.Close()
		events = w.Events
		go func() {
			for err := range w.Errors {
				slog.Warn("Config watcher error", "error", err)
			}
		}()
	}

	reload := func(path string) {
		slog.Info("Configuration changed, restarting session", "file", path)
		next, err := config.Load(opts.configPath)
		if err != nil {
			slog.Error("Reload failed, keeping previous configuration", "error", err)
			return
		}
		cfg = next
		if err := logger.Reconfigure(loggerConfig(cfg)); err != nil {
			slog.Warn("Logger reconfigure failed", "error", err)
		}
	}

	for {
		sessCtx, cancel := context.WithCancel(ctx)
		done := make(chan error, 1)
		go func(cfg *config.Config) {
			done <- runSession(sessCtx, opts, cfg)
		}(cfg)

		select {
		case err := <-done:
			cancel()
			if events == nil || ctx.Err() != nil {
				return err
			}
			if err != nil {
				slog.Error("Session failed, waiting for changes", "error", err)
			}
			select {
			case <-ctx.Done():
				return nil
			case path, ok := <-events:
				if !ok {
					return nil
				}
				reload(path)
			}
		case path, ok := <-events:
			cancel()
			<-done
			if !ok {
				return nil
			}
			reload(path)
		}
	}
}

func runSession(ctx context.Context, opts options, cfg *config.Config) error {
	baseDir := filepath.Dir(opts.configPath)
	s, err := app.Build(cfg, baseDir)
	if err != nil {
		return err
	}

	if opts.console {
		b, ok := s.Primary()
		if !ok {
			return fmt.Errorf("console needs at least one actor")
		}
		c := debug.NewConsole(b, s.Effects, debug.WithTravelLogging(opts.travel, opts.travel))
		return c.Start(ctx)
	}

	if cfg.Simulation.Scenario == "" {
		return fmt.Errorf("no scenario configured; set simulation.scenario or pass -console")
	}
	sc, err := scenario.Load(resolve(baseDir, cfg.Simulation.Scenario))
	if err != nil {
		return err
	}
	runner, err := scenario.NewRunner(s.World, s.Effects, sc, cfg.TickInterval(),
		scenario.WithSnapshotInterval(cfg.Simulation.SnapshotInterval),
		scenario.WithRealtime(opts.realtime),
	)
	if err != nil {
		return err
	}
	snap, err := runner.Run(ctx)
	if err != nil {
		return err
	}
	slog.Info("Final state", "state", snap.String())
	return nil
}

func loggerConfig(cfg *config.Config) logger.Config {
	return logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		File:   cfg.Logging.File,
	}
}

func watchDirs(configPath string, cfg *config.Config) []string {
	baseDir := filepath.Dir(configPath)
	dirs := []string{baseDir}
	if cfg.Simulation.Scenario != "" {
		dirs = append(dirs, filepath.Dir(resolve(baseDir, cfg.Simulation.Scenario)))
	}
	for _, e := range cfg.Effects {
		if e.Kind == config.EffectScript {
			dirs = append(dirs, filepath.Dir(resolve(baseDir, e.Script)))
		}
	}
	return dirs
}

func resolve(baseDir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}
