package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"
	"primamateria.systems/becomepass/internal/becomepass"
	"primamateria.systems/becomepass/internal/config"
)

type globalFlags struct {
	configFile   string
	hostCommand  string
	groupCommand string
	stage        string
	basedir      string
	format       string
	debug        bool
	timeout      time.Duration
}

func (g *globalFlags) cliflags() map[string]any {
	cliflags := make(map[string]any)
	if g.hostCommand != "" {
		cliflags[config.HostCommandKey] = g.hostCommand
	}
	if g.groupCommand != "" {
		cliflags[config.GroupCommandKey] = g.groupCommand
	}
	if g.stage != "" {
		cliflags[config.StageKey] = g.stage
	}
	if g.basedir != "" {
		cliflags[config.BaseDirKey] = g.basedir
	}
	return cliflags
}

func setupLogger(debug bool) {
	if debug {
		log.Default().SetLevel(log.DebugLevel)
		log.Default().SetReportCaller(true)
	}
}

func setup(ctx context.Context, g *globalFlags) (*config.Config, *becomepass.Plugin, error) {
	setupLogger(g.debug)
	configFile := g.configFile
	if configFile == "" {
		configFile = config.FindConfigFile()
	}
	if configFile != "" {
		log.Debug("using config file", "path", configFile)
	}
	c, err := config.Load(ctx, configFile, g.cliflags())
	if err != nil {
		return nil, nil, err
	}
	return c, becomepass.NewPlugin(c, becomepass.NewResolver(nil), log.Default()), nil
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

func render(w io.Writer, v any, format string) error {
	switch format {
	case "", "json":
		out, err := json.MarshalIndent(v, "", "    ")
		if err != nil {
			return fmt.Errorf("error converting to json: %w", err)
		}
		_, err = fmt.Fprintf(w, "%s\n", out)
		return err
	case "yaml":
		enc := yaml.NewEncoder(w)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("error converting to yaml: %w", err)
		}
		return enc.Close()
	case "toml":
		return toml.NewEncoder(w).Encode(v)
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}
