package command

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/slotkv/internal/cli/config"
	"github.com/yndnr/slotkv/internal/cli/output"
)

// ConfigCommand returns the config subcommand group.
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Configuration management",
		Subcommands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show the effective configuration",
				Action: configShow,
			},
			{
				Name:  "init",
				Usage: "Write a default config file",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "force",
						Aliases: []string{"f"},
						Usage:   "Overwrite an existing file",
					},
				},
				Action: configInit,
			},
			{
				Name:   "path",
				Usage:  "Print the config file path",
				Action: configPath,
			},
		},
	}
}

func configShow(c *cli.Context) error {
	rt, err := GetRuntime(c)
	if err != nil {
		return err
	}
	if tableOutput(rt) {
		// Nested sections read better as YAML than as a flattened table.
		return output.NewFormatter(output.FormatYAML).Format(out(c), rt.Config)
	}
	return render(c, rt, rt.Config)
}

func targetConfigPath(c *cli.Context) string {
	if p := c.String("config"); p != "" {
		return p
	}
	return config.DefaultConfigPath()
}

func configInit(c *cli.Context) error {
	path := targetConfigPath(c)
	if _, err := os.Stat(path); err == nil && !c.Bool("force") {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if err := config.Save(config.Default(), path); err != nil {
		return err
	}
	fmt.Fprintf(out(c), "Wrote %s\n", path)
	return nil
}

func configPath(c *cli.Context) error {
	path := activeConfigPath(c)
	if path == "" {
		path = config.DefaultConfigPath() + " (not present)"
	}
	_, err := fmt.Fprintln(out(c), path)
	return err
}
