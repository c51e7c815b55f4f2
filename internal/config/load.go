package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"gopkg.in/ini.v1"
)

const (
	EnvPrefix   = "BECOMEPASS_"
	StageEnvVar = "ANSIBLE_VARS_PLUGIN_STAGE"
	// TOMLSection holds the options in a TOML config. Top-level keys are
	// read when the table is absent.
	TOMLSection = "become_password"
)

// FindConfigFile returns the first ansible.cfg found in the usual search
// order, or an empty string.
func FindConfigFile() string {
	if v, ok := os.LookupEnv("ANSIBLE_CONFIG"); ok && v != "" {
		return v
	}
	candidates := []string{"ansible.cfg"}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".ansible.cfg"))
	}
	candidates = append(candidates, "/etc/ansible/ansible.cfg")
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return ""
}

func loadINI(path string) (map[string]any, error) {
	f, err := ini.Load(path)
	if err != nil {
		return nil, err
	}
	result := make(map[string]any)
	section, err := f.GetSection(Section)
	if err != nil {
		log.Debug("config section not present", "file", path, "section", Section)
		return result, nil
	}
	for k, v := range section.KeysHash() {
		result[k] = v
	}
	return result, nil
}

// LoadConfigs builds the layered configuration: config file, then environment,
// then cli flags, each overriding the previous one.
func LoadConfigs(_ context.Context, configFile string, cliflags map[string]any) (*koanf.Koanf, error) {
	k := koanf.New(".")
	fileConf := koanf.New(".")
	envConf := koanf.New(".")
	cliConf := koanf.New(".")
	if configFile != "" {
		var err error
		if filepath.Ext(configFile) == ".toml" {
			err = fileConf.Load(file.Provider(configFile), toml.Parser())
			if err == nil && fileConf.Exists(TOMLSection) {
				fileConf = fileConf.Cut(TOMLSection)
			}
		} else {
			var values map[string]any
			values, err = loadINI(configFile)
			if err == nil {
				err = fileConf.Load(confmap.Provider(values, "."), nil)
			}
		}
		if err != nil {
			return nil, fmt.Errorf("error loading config file: %w", err)
		}
		abs, err := filepath.Abs(configFile)
		if err != nil {
			return nil, err
		}
		if !fileConf.Exists(BaseDirKey) {
			if err := fileConf.Set(BaseDirKey, filepath.Dir(abs)); err != nil {
				return nil, err
			}
		}
	}
	err := envConf.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.Replace(strings.ToLower(
			strings.TrimPrefix(s, EnvPrefix)), "__", ".", 1)
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("error loading config from env: %w", err)
	}
	err = envConf.Load(env.Provider(StageEnvVar, ".", func(s string) string {
		if s != StageEnvVar {
			return ""
		}
		return StageKey
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("error loading config from env: %w", err)
	}
	err = cliConf.Load(confmap.Provider(cliflags, "."), nil)
	if err != nil {
		return nil, err
	}
	err = k.Merge(fileConf)
	if err != nil {
		return nil, fmt.Errorf("error building config: %w", err)
	}
	err = k.Merge(envConf)
	if err != nil {
		return nil, fmt.Errorf("error building config: %w", err)
	}
	err = k.Merge(cliConf)
	if err != nil {
		return nil, fmt.Errorf("error building config: %w", err)
	}

	return k, nil
}

// Load is LoadConfigs followed by NewConfig and Validate.
func Load(ctx context.Context, configFile string, cliflags map[string]any) (*Config, error) {
	if configFile != "" {
		if _, err := os.Stat(configFile); errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config file %v not found", configFile)
		}
	}
	k, err := LoadConfigs(ctx, configFile, cliflags)
	if err != nil {
		return nil, fmt.Errorf("error generating config blob: %w", err)
	}
	c, err := NewConfig(k)
	if err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("error validating config: %w", err)
	}
	return c, nil
}
