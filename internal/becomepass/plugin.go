package becomepass

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"primamateria.systems/becomepass/internal/config"
	"primamateria.systems/becomepass/internal/inventory"
)

// Diagnostics receives verbose notices. *log.Logger satisfies it.
type Diagnostics interface {
	Debug(msg any, keyvals ...any)
}

// Plugin looks up become passwords for inventory entities.
type Plugin struct {
	options  Options
	resolver *Resolver
	diag     Diagnostics
}

func NewPlugin(options Options, resolver *Resolver, diag Diagnostics) *Plugin {
	if resolver == nil {
		resolver = NewResolver(nil)
	}
	if diag == nil {
		diag = log.Default()
	}
	return &Plugin{
		options:  options,
		resolver: resolver,
		diag:     diag,
	}
}

// GetVars resolves the entities in order and merges every password found.
// Any error aborts the lookup and no variables are returned.
func (p *Plugin) GetVars(ctx context.Context, workdir string, entities ...inventory.Entity) (map[string]any, error) {
	data := make(map[string]any)
	for _, e := range entities {
		command, ok, err := Select(e, p.options)
		if err != nil {
			return nil, err
		}
		if !ok {
			option, _ := optionFor(e.Kind)
			p.diag.Debug(fmt.Sprintf("%v %v not configured", config.Section, option), "entity", e.Name)
			continue
		}
		p.diag.Debug("looking up become password", "kind", e.Kind, "entity", e.Name, "command", command)
		password, ok, err := p.resolver.Resolve(ctx, command, e.String(), workdir)
		if err != nil {
			return nil, err
		}
		if !ok {
			p.diag.Debug("command returned no password", "entity", e.Name, "command", command)
			continue
		}
		data, err = Merge(data, PasswordVar, password)
		if err != nil {
			return nil, fmt.Errorf("error merging variables for %v: %w", e.Name, err)
		}
	}
	return data, nil
}

// GetVarsForStage is GetVars gated on the configured stage option. Outside
// the configured stage it returns an empty map without running anything.
func (p *Plugin) GetVarsForStage(ctx context.Context, stage, workdir string, entities ...inventory.Entity) (map[string]any, error) {
	if !p.options.RunsAt(stage) {
		configured, _ := p.options.Get(config.StageKey)
		p.diag.Debug("skipping lookup outside configured stage", "stage", stage, "configured", configured)
		return make(map[string]any), nil
	}
	return p.GetVars(ctx, workdir, entities...)
}
