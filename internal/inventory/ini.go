package inventory

import (
	"strings"

	"gopkg.in/ini.v1"
)

// LoadINI parses an Ansible style INI inventory. Hosts listed before the first
// section are ungrouped, [name] sections list hosts, [name:children] sections
// list child groups. Host variables and [name:vars] sections are ignored.
func LoadINI(data []byte) (*Inventory, error) {
	f, err := ini.LoadSources(ini.LoadOptions{
		AllowBooleanKeys:   true,
		KeyValueDelimiters: "=",
	}, data)
	if err != nil {
		return nil, err
	}
	inv := New()
	for _, section := range f.Sections() {
		name := section.Name()
		group, suffix, _ := strings.Cut(name, ":")
		if name == ini.DefaultSection {
			group = ""
		}
		switch suffix {
		case "vars":
			inv.group(group)
			continue
		case "children":
			for _, key := range section.Keys() {
				if child := entryName(key.Name()); child != "" {
					inv.AddChild(group, child)
				}
			}
			continue
		}
		if group != "" {
			inv.group(group)
		}
		for _, key := range section.Keys() {
			if host := entryName(key.Name()); host != "" {
				inv.AddHost(group, host)
			}
		}
	}
	inv.Finalize()
	return inv, nil
}

// entryName strips inline variables from an inventory line key.
func entryName(key string) string {
	fields := strings.Fields(key)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
