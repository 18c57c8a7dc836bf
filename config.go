package main

import (
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Config is the host configuration read from YAML, before flags apply.
type Config struct {
	Log     LogConfig     `yaml:"log"`
	Trace   TraceConfig   `yaml:"trace"`
	Plugins PluginsConfig `yaml:"plugins"`
	Shell   []string      `yaml:"shell"`
}

type LogConfig struct {
	File  string `yaml:"file"`
	JSON  bool   `yaml:"json"`
	Level string `yaml:"level"`
}

// TraceConfig selects which '>>>' statements print. an empty section
// disables tracing, "*" matches every section.
type TraceConfig struct {
	Section string `yaml:"section"`
	Level   int    `yaml:"level"`
}

type PluginsConfig struct {
	Path []string `yaml:"path"`
}

func Defaults() *Config {
	return &Config{
		Log:   LogConfig{Level: "warn"},
		Shell: defaultShell(),
	}
}

// LoadConfig reads the first config file found. with nothing to read the
// defaults come back with an empty path.
func LoadConfig(explicit string, getenv func(string) string) (*Config, string, error) {
	path, err := resolveConfigPath(explicit, getenv)
	if err != nil || path == "" {
		return Defaults(), "", err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fef("failed to read config: %w", err)
	}
	data = interpolateEnv(data, getenv)

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, "", fef("failed to parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, "", fef("invalid config %s: %w", path, err)
	}

	base := filepath.Dir(path)
	for i, p := range cfg.Plugins.Path {
		if !filepath.IsAbs(p) {
			cfg.Plugins.Path[i] = filepath.Join(base, p)
		}
	}
	return cfg, path, nil
}

func (c *Config) validate() error {
	if _, err := parseLogLevel(c.Log.Level); err != nil {
		return err
	}
	if len(c.Shell) == 0 {
		return fef("shell must name at least a program")
	}
	if c.Trace.Level < 0 {
		return fef("trace level must not be negative")
	}
	return nil
}

// resolveConfigPath : explicit path, then $MSCRIPT_CONFIG, ./.mscript.yaml
// and ~/.mscript.yaml.
func resolveConfigPath(explicit string, getenv func(string) string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fef("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	if envPath := getenv("MSCRIPT_CONFIG"); envPath != "" {
		if _, err := os.Stat(envPath); err != nil {
			return "", fef("MSCRIPT_CONFIG file not found: %s", envPath)
		}
		return envPath, nil
	}

	if _, err := os.Stat(".mscript.yaml"); err == nil {
		return ".mscript.yaml", nil
	}

	home, err := os.UserHomeDir()
	if err == nil {
		p := filepath.Join(home, ".mscript.yaml")
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", nil
}

var envPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// interpolateEnv replaces ${VAR} and ${VAR:-default} patterns with environment values.
func interpolateEnv(data []byte, getenv func(string) string) []byte {
	return envPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		parts := envPattern.FindSubmatch(match)
		if len(parts) < 2 {
			return match
		}
		value := getenv(string(parts[1]))
		if value == "" && len(parts) >= 3 && len(parts[2]) > 0 {
			value = string(parts[2])
		}
		return []byte(value)
	})
}

// hostFromConfig builds the host capabilities a runtime is given.
func hostFromConfig(cfg *Config) (*Host, error) {
	host := DefaultHost()
	host.Shell = append([]string(nil), cfg.Shell...)
	host.traceSection = cfg.Trace.Section
	host.traceLevel = cfg.Trace.Level

	level, err := parseLogLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	if cfg.Log.File != "" {
		if host.Log, err = OpenLogFile(cfg.Log.File, cfg.Log.JSON, level); err != nil {
			return nil, err
		}
	} else {
		host.Log = NewLogger(os.Stderr, cfg.Log.JSON, level)
	}
	return host, nil
}
