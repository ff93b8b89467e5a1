package command

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"
)

// Exit codes.
const (
	exitNotFound = 3
	exitNoSpace  = 4
)

// GetCommand returns the get command.
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Print the value stored under KEY",
		ArgsUsage: "KEY",
		Action:    entryGet,
	}
}

func entryGet(c *cli.Context) error {
	key := c.Args().First()
	if key == "" {
		return fmt.Errorf("key required")
	}
	rt, err := GetRuntime(c)
	if err != nil {
		return err
	}

	return withStore(rt, func(s *Store) error {
		value, ok, err := s.Engine.Get(rt.Ctx, key)
		if err != nil {
			return err
		}
		if !ok {
			return cli.Exit(fmt.Sprintf("key %q not found", key), exitNotFound)
		}
		if tableOutput(rt) {
			_, err := fmt.Fprintln(out(c), value)
			return err
		}
		return render(c, rt, map[string]string{"key": key, "value": value})
	})
}

// SetCommand returns the set command.
func SetCommand() *cli.Command {
	return &cli.Command{
		Name:      "set",
		Aliases:   []string{"put"},
		Usage:     "Store VALUE under KEY",
		ArgsUsage: "KEY VALUE",
		Action:    entrySet,
	}
}

func entrySet(c *cli.Context) error {
	if c.NArg() != 2 {
		return fmt.Errorf("expected KEY VALUE, got %d arguments", c.NArg())
	}
	key, value := c.Args().Get(0), c.Args().Get(1)

	rt, err := GetRuntime(c)
	if err != nil {
		return err
	}

	return withStore(rt, func(s *Store) error {
		ok, err := s.Engine.Set(rt.Ctx, key, value)
		if err != nil {
			return err
		}
		if !ok {
			remaining, _ := s.Engine.SizeRemaining(rt.Ctx)
			return cli.Exit(fmt.Sprintf("not enough space for %q (about %d bytes remaining)", key, remaining), exitNoSpace)
		}
		return nil
	})
}

// RemoveCommand returns the rm command.
func RemoveCommand() *cli.Command {
	return &cli.Command{
		Name:      "rm",
		Aliases:   []string{"remove", "del"},
		Usage:     "Remove one or more keys",
		ArgsUsage: "KEY...",
		Action:    entryRemove,
	}
}

func entryRemove(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("at least one key required")
	}
	rt, err := GetRuntime(c)
	if err != nil {
		return err
	}

	return withStore(rt, func(s *Store) error {
		for _, key := range c.Args().Slice() {
			if err := s.Engine.Remove(rt.Ctx, key); err != nil {
				return fmt.Errorf("remove %q: %w", key, err)
			}
		}
		return nil
	})
}

// ClearCommand returns the clear command.
func ClearCommand() *cli.Command {
	return &cli.Command{
		Name:  "clear",
		Usage: "Remove every entry of the location",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "force",
				Aliases: []string{"f"},
				Usage:   "Skip confirmation",
			},
		},
		Action: entryClear,
	}
}

func entryClear(c *cli.Context) error {
	rt, err := GetRuntime(c)
	if err != nil {
		return err
	}

	if !c.Bool("force") {
		fmt.Fprintf(out(c), "Remove all entries of location %q? [y/N]: ", rt.Config.Storage.Location)
		line, _ := bufio.NewReader(c.App.Reader).ReadString('\n')
		if confirm := strings.TrimSpace(line); confirm != "y" && confirm != "Y" {
			fmt.Fprintln(out(c), "Cancelled.")
			return nil
		}
	}

	return withStore(rt, func(s *Store) error {
		return s.Engine.Clear(rt.Ctx)
	})
}

// KeysCommand returns the keys command.
func KeysCommand() *cli.Command {
	return &cli.Command{
		Name:   "keys",
		Usage:  "List keys in insertion order",
		Action: entryKeys,
	}
}

func entryKeys(c *cli.Context) error {
	rt, err := GetRuntime(c)
	if err != nil {
		return err
	}

	return withStore(rt, func(s *Store) error {
		keys, err := s.Engine.Keys(rt.Ctx)
		if err != nil {
			return err
		}
		if tableOutput(rt) {
			for _, k := range keys {
				fmt.Fprintln(out(c), k)
			}
			return nil
		}
		return render(c, rt, keys)
	})
}

// ListCommand returns the list command.
func ListCommand() *cli.Command {
	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "List entries with their values",
		Action:  entryList,
	}
}

func entryList(c *cli.Context) error {
	rt, err := GetRuntime(c)
	if err != nil {
		return err
	}

	return withStore(rt, func(s *Store) error {
		entries, err := s.Engine.Entries(rt.Ctx)
		if err != nil {
			return err
		}
		return render(c, rt, entries)
	})
}

// LenCommand returns the len command.
func LenCommand() *cli.Command {
	return &cli.Command{
		Name:   "len",
		Usage:  "Print the number of entries",
		Action: entryLen,
	}
}

func entryLen(c *cli.Context) error {
	rt, err := GetRuntime(c)
	if err != nil {
		return err
	}

	return withStore(rt, func(s *Store) error {
		n, err := s.Engine.Len(rt.Ctx)
		if err != nil {
			return err
		}
		if tableOutput(rt) {
			_, err := fmt.Fprintln(out(c), n)
			return err
		}
		return render(c, rt, map[string]int{"len": n})
	})
}
