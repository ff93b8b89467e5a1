package command

import (
	"github.com/urfave/cli/v2"

	"github.com/yndnr/slotkv/internal/infra/buildinfo"
)

// VersionCommand returns the version command.
func VersionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Show build information",
		Action: func(c *cli.Context) error {
			rt, err := GetRuntime(c)
			if err != nil {
				return err
			}
			return render(c, rt, buildinfo.Get())
		},
	}
}
