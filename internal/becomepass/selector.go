package becomepass

import (
	"fmt"

	"primamateria.systems/becomepass/internal/config"
	"primamateria.systems/becomepass/internal/inventory"
)

// Options is the read-only option lookup the plugin needs. *config.Config
// satisfies it.
type Options interface {
	Get(name string) (string, bool)
	RunsAt(stage string) bool
}

func optionFor(kind inventory.Kind) (string, error) {
	switch kind {
	case inventory.KindHost:
		return config.HostCommandKey, nil
	case inventory.KindGroup:
		return config.GroupCommandKey, nil
	default:
		return "", fmt.Errorf("%w, got %v instead", inventory.ErrUnsupportedEntityKind, kind)
	}
}

// Select returns the command configured for the entity's kind. A missing or
// empty option is not an error, it just means no command is selected.
func Select(e inventory.Entity, opts Options) (string, bool, error) {
	option, err := optionFor(e.Kind)
	if err != nil {
		return "", false, err
	}
	command, ok := opts.Get(option)
	return command, ok, nil
}
