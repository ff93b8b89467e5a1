package command

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/slotkv/internal/cli/config"
	"github.com/yndnr/slotkv/internal/core/domain"
	"github.com/yndnr/slotkv/internal/infra/confloader"
	"github.com/yndnr/slotkv/internal/infra/shutdown"
	"github.com/yndnr/slotkv/internal/telemetry/logger"
)

// WatchCommand returns the watch command.
func WatchCommand() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Print the entries whenever another writer changes the slots",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:    "interval",
				Aliases: []string{"i"},
				Value:   time.Second,
				Usage:   "Poll interval",
			},
			&cli.IntFlag{
				Name:  "max-updates",
				Usage: "Exit after printing this many snapshots (0: until interrupted)",
			},
		},
		Action: watchRun,
	}
}

// activeConfigPath returns the config file this invocation read, if any.
func activeConfigPath(c *cli.Context) string {
	if p := c.String("config"); p != "" {
		return p
	}
	if _, err := os.Stat(config.DefaultConfigPath()); err == nil {
		return config.DefaultConfigPath()
	}
	return ""
}

func watchRun(c *cli.Context) (err error) {
	rt, err := GetRuntime(c)
	if err != nil {
		return err
	}
	interval := c.Duration("interval")
	if interval <= 0 {
		return fmt.Errorf("interval must be positive, got %s", interval)
	}

	s, err := openStore(rt)
	if err != nil {
		return err
	}

	h := shutdown.NewHandler(5 * time.Second)
	h.OnShutdown(func(context.Context) error { return s.Close() })
	defer func() {
		if serr := h.Run(); serr != nil && err == nil {
			err = serr
		}
	}()

	ctx, stop := h.Context(rt.Ctx)
	defer stop()
	log := logger.L(ctx)

	wake := make(chan struct{}, 1)
	cfgPath := activeConfigPath(c)

	var paths []string
	if rt.Config.Storage.Backend == config.BackendSQLite {
		paths = append(paths, rt.Config.Storage.Path)
	}
	if cfgPath != "" {
		paths = append(paths, cfgPath)
	}
	if len(paths) > 0 {
		w, err := confloader.NewWatcher(
			confloader.WithWatcherLogger(log),
			confloader.WithWatcherFilter(confloader.MatchBase(paths...)),
		)
		if err != nil {
			return fmt.Errorf("create watcher: %w", err)
		}
		h.OnShutdown(func(context.Context) error { return w.Stop() })

		for _, p := range paths {
			if err := w.Watch(p); err != nil {
				return fmt.Errorf("watch %s: %w", p, err)
			}
		}
		w.OnChange(func(path string) {
			if cfgPath != "" && filepath.Base(path) == filepath.Base(cfgPath) {
				reloadLogLevel(c, rt, cfgPath)
				return
			}
			select {
			case wake <- struct{}{}:
			default:
			}
		})
		w.StartAsync()
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var last []domain.Entry
	printed := 0
	for {
		entries, err := s.Engine.Entries(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		if printed == 0 || !slices.Equal(entries, last) {
			if err := printSnapshot(c, rt, entries); err != nil {
				return err
			}
			last = entries
			printed++
			if limit := c.Int("max-updates"); limit > 0 && printed >= limit {
				return nil
			}
		}

		select {
		case <-ctx.Done():
			log.Debug("watch stopped", "snapshots", printed)
			return nil
		case <-ticker.C:
		case <-wake:
		}
	}
}

func printSnapshot(c *cli.Context, rt *Runtime, entries []domain.Entry) error {
	if tableOutput(rt) {
		fmt.Fprintf(out(c), "--- %s (%d entries)\n", time.Now().Format(time.RFC3339), len(entries))
	}
	return render(c, rt, entries)
}

func reloadLogLevel(c *cli.Context, rt *Runtime, path string) {
	log := logger.L(rt.Ctx)
	cfg, err := config.Load(path, flagOverrides(c))
	if err != nil {
		log.Warn("config reload failed", "path", path, "error", err)
		return
	}
	prev := logger.GetLevel()
	logger.SetLevel(cfg.Log.Level)
	if now := logger.GetLevel(); now != prev {
		log.Info("log level changed", "from", prev, "to", now)
	}
}
