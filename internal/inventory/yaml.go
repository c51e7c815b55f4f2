package inventory

import (
	"gopkg.in/yaml.v3"
)

type yamlGroup struct {
	Hosts    map[string]any        `yaml:"hosts"`
	Children map[string]*yamlGroup `yaml:"children"`
	Vars     map[string]any        `yaml:"vars"`
}

// LoadYAML parses an Ansible YAML inventory rooted at one or more top level
// groups, normally just all.
func LoadYAML(data []byte) (*Inventory, error) {
	var root map[string]*yamlGroup
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	inv := New()
	for name, g := range root {
		inv.addYAMLGroup(name, g)
	}
	inv.Finalize()
	return inv, nil
}

func (inv *Inventory) addYAMLGroup(name string, g *yamlGroup) {
	inv.group(name)
	if g == nil {
		return
	}
	for host := range g.Hosts {
		inv.AddHost(name, host)
	}
	for child, cg := range g.Children {
		if name != GroupAll {
			inv.AddChild(name, child)
		}
		inv.addYAMLGroup(child, cg)
	}
}
