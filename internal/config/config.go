package config

import (
	"fmt"
	"slices"

	"github.com/knadh/koanf/v2"
)

// Section is the ansible.cfg section holding the plugin options.
const Section = "znerol.become_password.command"

const (
	HostCommandKey  = "host_command"
	GroupCommandKey = "group_command"
	StageKey        = "stage"
	BaseDirKey      = "basedir"
)

const (
	StageAll       = "all"
	StageInventory = "inventory"
	StageTask      = "task"
)

var validStages = []string{"", StageAll, StageInventory, StageTask}

type Config struct {
	HostCommand  string
	GroupCommand string
	Stage        string
	// BaseDir is the directory the configuration was loaded from. Relative
	// commands run from here.
	BaseDir string
}

func NewConfig(k *koanf.Koanf) (*Config, error) {
	var c Config
	c.HostCommand = k.String(HostCommandKey)
	c.GroupCommand = k.String(GroupCommandKey)
	c.Stage = k.String(StageKey)
	c.BaseDir = k.String(BaseDirKey)
	return &c, nil
}

// Get returns the named option and whether it is set to a non-empty value.
func (c *Config) Get(name string) (string, bool) {
	var v string
	switch name {
	case HostCommandKey:
		v = c.HostCommand
	case GroupCommandKey:
		v = c.GroupCommand
	case StageKey:
		v = c.Stage
	case BaseDirKey:
		v = c.BaseDir
	}
	return v, v != ""
}

func (c *Config) Validate() error {
	if !slices.Contains(validStages, c.Stage) {
		return fmt.Errorf("invalid stage %q, must be one of all, inventory, task", c.Stage)
	}
	return nil
}

// RunsAt reports whether lookups are enabled for the given stage. An unset
// stage or "all" enables every stage.
func (c *Config) RunsAt(stage string) bool {
	if c.Stage == "" || c.Stage == StageAll || stage == StageAll {
		return true
	}
	return c.Stage == stage
}

func (c *Config) String() string {
	var result string
	result += fmt.Sprintf("Host command: %v\n", c.HostCommand)
	result += fmt.Sprintf("Group command: %v\n", c.GroupCommand)
	result += fmt.Sprintf("Stage: %v\n", c.Stage)
	result += fmt.Sprintf("Base dir: %v\n", c.BaseDir)
	return result
}
