package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"
	"primamateria.systems/becomepass/internal/config"
	"primamateria.systems/becomepass/internal/inventory"
)

var Version string

func main() {
	ctx := context.Background()
	if err := newApp(os.Stdout).Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp(out io.Writer) *cli.Command {
	var g globalFlags

	return &cli.Command{
		Name:      "becomepass",
		Usage:     "Look up become passwords for inventory hosts and groups",
		Writer:    out,
		ErrWriter: os.Stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Usage:       "ansible.cfg or TOML config file",
				Aliases:     []string{"c"},
				Destination: &g.configFile,
				Sources:     cli.EnvVars("ANSIBLE_CONFIG"),
			},
			&cli.StringFlag{
				Name:        "host-command",
				Usage:       "Command to look up the password of a host",
				Destination: &g.hostCommand,
			},
			&cli.StringFlag{
				Name:        "group-command",
				Usage:       "Command to look up the password of a group",
				Destination: &g.groupCommand,
			},
			&cli.StringFlag{
				Name:        "stage",
				Usage:       "Stage the lookup runs in: all, inventory or task",
				Destination: &g.stage,
			},
			&cli.StringFlag{
				Name:        "basedir",
				Usage:       "Directory relative commands run from",
				Destination: &g.basedir,
			},
			&cli.StringFlag{
				Name:        "format",
				Aliases:     []string{"f"},
				Usage:       "Output format. Supports json,yaml,toml",
				Value:       "json",
				Destination: &g.format,
			},
			&cli.BoolFlag{
				Name:        "debug",
				Aliases:     []string{"v"},
				Usage:       "Verbose output",
				Destination: &g.debug,
			},
			&cli.DurationFlag{
				Name:        "timeout",
				Usage:       "Give up on lookups taking longer than this",
				Destination: &g.timeout,
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "host",
				Usage:     "Look up the password of a single host",
				ArgsUsage: "HOSTNAME",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					name := cmd.Args().First()
					if name == "" {
						return cli.Exit("specify a host", 1)
					}
					return lookupEntities(ctx, &g, cmd.Root().Writer, inventory.NewHost(name))
				},
			},
			{
				Name:      "group",
				Usage:     "Look up the password of a single group",
				ArgsUsage: "GROUP",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					name := cmd.Args().First()
					if name == "" {
						return cli.Exit("specify a group", 1)
					}
					return lookupEntities(ctx, &g, cmd.Root().Writer, inventory.NewGroup(name))
				},
			},
			{
				Name:  "inventory",
				Usage: "Resolve passwords the way the inventory applies them",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "inventory",
						Aliases:  []string{"i"},
						Usage:    "INI or YAML inventory file",
						Required: true,
						Sources:  cli.EnvVars("ANSIBLE_INVENTORY"),
					},
					&cli.StringFlag{
						Name:  "host",
						Usage: "Show variables of a single host",
					},
					&cli.BoolFlag{
						Name:  "list",
						Usage: "Show variables of every host",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					path := cmd.String("inventory")
					host := cmd.String("host")
					list := cmd.Bool("list")
					if host == "" && !list {
						return cli.Exit("inventory needs one of --host or --list", 1)
					}
					return inventoryVars(ctx, &g, cmd.Root().Writer, path, host)
				},
			},
			{
				Name:  "config",
				Usage: "Dump active config",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					c, _, err := setup(ctx, &g)
					if err != nil {
						return err
					}
					fmt.Fprint(cmd.Root().Writer, c)
					return nil
				},
			},
			{
				Name:  "version",
				Usage: "show version",
				Action: func(_ context.Context, cmd *cli.Command) error {
					fmt.Fprintf(cmd.Root().Writer, "becomepass version %v\n", Version)
					return nil
				},
			},
		},
	}
}

func lookupEntities(ctx context.Context, g *globalFlags, w io.Writer, entities ...inventory.Entity) error {
	c, plugin, err := setup(ctx, g)
	if err != nil {
		return err
	}
	ctx, cancel := withTimeout(ctx, g.timeout)
	defer cancel()
	vars, err := plugin.GetVarsForStage(ctx, config.StageTask, c.BaseDir, entities...)
	if err != nil {
		return err
	}
	return render(w, vars, g.format)
}

// inventoryVars prints the variables of host, or of every host keyed by name
// when host is empty.
func inventoryVars(ctx context.Context, g *globalFlags, w io.Writer, path, host string) error {
	_, plugin, err := setup(ctx, g)
	if err != nil {
		return err
	}
	inv, err := inventory.Load(path)
	if err != nil {
		return err
	}
	workdir := inv.Dir
	if g.basedir != "" {
		workdir = g.basedir
	}
	ctx, cancel := withTimeout(ctx, g.timeout)
	defer cancel()

	hosts := []string{host}
	if host == "" {
		hosts = inv.Hosts()
	}
	hostvars := make(map[string]any, len(hosts))
	for _, h := range hosts {
		entities, err := inv.EntitiesFor(h)
		if err != nil {
			return err
		}
		vars, err := plugin.GetVarsForStage(ctx, config.StageInventory, workdir, entities...)
		if err != nil {
			return fmt.Errorf("error resolving variables for %v: %w", h, err)
		}
		hostvars[h] = vars
	}
	if host != "" {
		return render(w, hostvars[host], g.format)
	}
	return render(w, map[string]any{"_meta": map[string]any{"hostvars": hostvars}}, g.format)
}
