package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/slotkv/internal/cli/config"
	"github.com/yndnr/slotkv/internal/cli/output"
	"github.com/yndnr/slotkv/internal/infra/buildinfo"
	"github.com/yndnr/slotkv/internal/telemetry/logger"
	"github.com/yndnr/slotkv/internal/telemetry/metric"
)

const runtimeKey = "runtime"

// Runtime is the per-invocation state shared by all commands.
type Runtime struct {
	Config  *config.Config
	Metrics *metric.Registry
	Ctx     context.Context
}

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "slotkv",
		Usage:   "Key/value store packed into size-limited slots",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			GetCommand(),
			SetCommand(),
			RemoveCommand(),
			ClearCommand(),
			KeysCommand(),
			ListCommand(),
			LenCommand(),
			RemainingCommand(),
			SlotsCommand(),
			StatsCommand(),
			WatchCommand(),
			ConfigCommand(),
			VersionCommand(),
		},
		Before:               before,
		EnableBashCompletion: true,
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Config file (default ~/.slotkv/config.yaml when present)",
			EnvVars: []string{"SLOTKV_CONFIG"},
		},
		&cli.StringFlag{
			Name:    "backend",
			Aliases: []string{"b"},
			Usage:   "Slot medium: sqlite, badger, memory",
		},
		&cli.StringFlag{
			Name:    "path",
			Aliases: []string{"p"},
			Usage:   "Medium path (sqlite file or badger directory)",
		},
		&cli.StringFlag{
			Name:    "location",
			Aliases: []string{"l"},
			Usage:   "Slot location: session, persistent",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level: debug, info, warn, error",
		},
	}
}

// flagOverrides maps explicitly set global flags to config keys.
func flagOverrides(c *cli.Context) map[string]any {
	keys := map[string]string{
		"backend":   "storage.backend",
		"path":      "storage.path",
		"location":  "storage.location",
		"output":    "output",
		"log-level": "log.level",
	}
	flags := make(map[string]any)
	for flag, key := range keys {
		if c.IsSet(flag) {
			flags[key] = c.String(flag)
		}
	}
	return flags
}

// configFileForLoad returns the --config path, or "" when the invocation is
// "config init" creating that file.
func configFileForLoad(c *cli.Context) string {
	path := c.String("config")
	if path == "" || c.Args().Get(0) != "config" || c.Args().Get(1) != "init" {
		return path
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return ""
	}
	return path
}

func before(c *cli.Context) error {
	cfg, err := config.Load(configFileForLoad(c), flagOverrides(c))
	if err != nil {
		return err
	}
	if _, err := output.ParseFormat(cfg.Output); err != nil {
		return err
	}

	l := logger.Install(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: c.App.ErrWriter,
	})

	ctx := c.Context
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = logger.WithOperationID(logger.WithLogger(ctx, l))

	if c.App.Metadata == nil {
		c.App.Metadata = make(map[string]any)
	}
	c.App.Metadata[runtimeKey] = &Runtime{
		Config:  cfg,
		Metrics: metric.NewRegistry(),
		Ctx:     ctx,
	}
	return nil
}

// GetRuntime retrieves the runtime prepared by the Before hook.
func GetRuntime(c *cli.Context) (*Runtime, error) {
	if rt, ok := c.App.Metadata[runtimeKey].(*Runtime); ok {
		return rt, nil
	}
	return nil, fmt.Errorf("runtime not initialized")
}

// render writes data in the configured output format.
func render(c *cli.Context, rt *Runtime, data any) error {
	format, err := output.ParseFormat(rt.Config.Output)
	if err != nil {
		return err
	}
	return output.NewFormatter(format).Format(c.App.Writer, data)
}

// tableOutput reports whether human-oriented extras should be printed.
func tableOutput(rt *Runtime) bool {
	f, _ := output.ParseFormat(rt.Config.Output)
	return f == output.FormatTable
}

func out(c *cli.Context) io.Writer {
	return c.App.Writer
}
