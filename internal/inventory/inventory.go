package inventory

import (
	"cmp"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/emirpasic/gods/sets/treeset"
)

const (
	GroupAll       = "all"
	GroupUngrouped = "ungrouped"
)

var (
	ErrHostNotFound  = errors.New("host not found in inventory")
	ErrGroupNotFound = errors.New("group not found in inventory")
)

type Group struct {
	Name    string
	parents *treeset.Set
	hosts   *treeset.Set
}

func newGroup(name string) *Group {
	return &Group{
		Name:    name,
		parents: treeset.NewWithStringComparator(),
		hosts:   treeset.NewWithStringComparator(),
	}
}

type Host struct {
	Name   string
	groups *treeset.Set
}

// Inventory is a read-only view of hosts and their group memberships.
type Inventory struct {
	// Dir is the directory the inventory was loaded from, if any.
	Dir    string
	hosts  map[string]*Host
	groups map[string]*Group
}

func New() *Inventory {
	inv := &Inventory{
		hosts:  make(map[string]*Host),
		groups: make(map[string]*Group),
	}
	inv.group(GroupAll)
	inv.group(GroupUngrouped)
	return inv
}

func Load(path string) (*Inventory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading inventory: %w", err)
	}
	var inv *Inventory
	switch filepath.Ext(path) {
	case ".yml", ".yaml":
		inv, err = LoadYAML(data)
	default:
		inv, err = LoadINI(data)
	}
	if err != nil {
		return nil, fmt.Errorf("error parsing inventory %v: %w", path, err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	inv.Dir = filepath.Dir(abs)
	log.Debug("loaded inventory", "path", path, "hosts", len(inv.hosts), "groups", len(inv.groups))
	return inv, nil
}

func (inv *Inventory) group(name string) *Group {
	g, ok := inv.groups[name]
	if !ok {
		g = newGroup(name)
		inv.groups[name] = g
	}
	return g
}

func (inv *Inventory) AddHost(group, name string) {
	h, ok := inv.hosts[name]
	if !ok {
		h = &Host{Name: name, groups: treeset.NewWithStringComparator()}
		inv.hosts[name] = h
	}
	if group == "" || group == GroupAll {
		return
	}
	h.groups.Add(group)
	inv.group(group).hosts.Add(name)
}

func (inv *Inventory) AddChild(parent, child string) {
	inv.group(parent)
	inv.group(child).parents.Add(parent)
}

// Finalize applies the implicit group rules: every group descends from all
// and hosts without any explicit group land in ungrouped.
func (inv *Inventory) Finalize() {
	for name, g := range inv.groups {
		if name != GroupAll && g.parents.Empty() {
			g.parents.Add(GroupAll)
		}
	}
	for name, h := range inv.hosts {
		if h.groups.Empty() {
			h.groups.Add(GroupUngrouped)
			inv.groups[GroupUngrouped].hosts.Add(name)
		}
	}
}

func (inv *Inventory) Hosts() []string {
	set := treeset.NewWithStringComparator()
	for name := range inv.hosts {
		set.Add(name)
	}
	return toStrings(set)
}

func (inv *Inventory) Groups() []string {
	set := treeset.NewWithStringComparator()
	for name := range inv.groups {
		set.Add(name)
	}
	return toStrings(set)
}

// GroupHosts lists the hosts directly assigned to a group.
func (inv *Inventory) GroupHosts(name string) ([]string, error) {
	g, ok := inv.groups[name]
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrGroupNotFound, name)
	}
	return toStrings(g.hosts), nil
}

func (inv *Inventory) depth(name string, seen map[string]bool) int {
	if seen[name] {
		return 0
	}
	seen[name] = true
	defer delete(seen, name)
	g, ok := inv.groups[name]
	if !ok {
		return 0
	}
	d := 0
	for _, p := range g.parents.Values() {
		d = max(d, inv.depth(p.(string), seen)+1)
	}
	return d
}

type rankedGroup struct {
	name  string
	depth int
}

// EntitiesFor returns the entities whose variables apply to host, lowest
// precedence first: all, then every group the host belongs to directly or
// through a parent ordered by depth and name, then the host itself.
func (inv *Inventory) EntitiesFor(host string) ([]Entity, error) {
	h, ok := inv.hosts[host]
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrHostNotFound, host)
	}
	ranked := treeset.NewWith(func(a, b any) int {
		left, right := a.(rankedGroup), b.(rankedGroup)
		if c := cmp.Compare(left.depth, right.depth); c != 0 {
			return c
		}
		return cmp.Compare(left.name, right.name)
	})
	visited := make(map[string]bool)
	var walk func(name string)
	walk = func(name string) {
		if visited[name] {
			return
		}
		visited[name] = true
		ranked.Add(rankedGroup{name: name, depth: inv.depth(name, map[string]bool{})})
		if g, ok := inv.groups[name]; ok {
			for _, p := range g.parents.Values() {
				walk(p.(string))
			}
		}
	}
	walk(GroupAll)
	for _, g := range h.groups.Values() {
		walk(g.(string))
	}

	entities := make([]Entity, 0, ranked.Size()+1)
	for _, v := range ranked.Values() {
		entities = append(entities, NewGroup(v.(rankedGroup).name))
	}
	return append(entities, NewHost(host)), nil
}

func toStrings(s *treeset.Set) []string {
	result := make([]string, s.Size())
	for k, v := range s.Values() {
		result[k] = v.(string)
	}
	return result
}
