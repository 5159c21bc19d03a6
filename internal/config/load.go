package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

const appName = "photosphere"

// Load loads configuration with priority: defaults < file < flags.
// An explicitly named file must exist; otherwise the first of
// ./photosphere.yaml, ./photosphere.toml and the user config dir is used.
func Load(flags *Flags) (*Config, error) {
	cfg := Default()

	path := ""
	if flags != nil && flags.ConfigPath != "" {
		expanded, err := homedir.Expand(flags.ConfigPath)
		if err != nil {
			return nil, fmt.Errorf("expanding %s: %w", flags.ConfigPath, err)
		}
		path = expanded
	} else {
		path = findConfigFile()
	}

	if path != "" {
		if err := LoadFile(cfg, path); err != nil {
			return nil, err
		}
	}

	if flags != nil {
		flags.apply(cfg)
	}

	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile merges the file at path into cfg. The format follows the
// extension: .toml is TOML, anything else is YAML.
func LoadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config %s: %w", path, err)
	}

	if isTOML(path) {
		err = toml.Unmarshal(data, cfg)
	} else {
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	cfg.path = path
	return nil
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// findConfigFile looks for a config file in standard locations.
func findConfigFile() string {
	var candidates []string
	for _, ext := range []string{".yaml", ".yml", ".toml"} {
		candidates = append(candidates, appName+ext)
	}
	if dir := ConfigDir(); dir != "" {
		for _, ext := range []string{".yaml", ".yml", ".toml"} {
			candidates = append(candidates, filepath.Join(dir, "config"+ext))
		}
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the platform-specific config directory.
func ConfigDir() string {
	home, err := homedir.Dir()
	if err != nil {
		return ""
	}

	switch runtime.GOOS {
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, appName)
		}
		return filepath.Join(home, "AppData", "Roaming", appName)
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", appName)
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, appName)
		}
		return filepath.Join(home, ".config", appName)
	}
}

// expandPaths resolves ~ in user supplied paths. Relative panorama and
// output paths are taken relative to the config file.
func (c *Config) expandPaths() error {
	for _, p := range []*string{&c.Panorama.Path, &c.Output.Path, &c.Logging.LogFile} {
		if *p == "" {
			continue
		}
		expanded, err := homedir.Expand(*p)
		if err != nil {
			return fmt.Errorf("expanding %s: %w", *p, err)
		}
		*p = expanded
	}

	if c.path != "" && c.Panorama.Path != "" && !filepath.IsAbs(c.Panorama.Path) {
		c.Panorama.Path = filepath.Join(filepath.Dir(c.path), c.Panorama.Path)
	}
	return nil
}
