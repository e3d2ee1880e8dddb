package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// FileName is the optional config file read from the working directory
const FileName = "fa-tree.toml"

// EnvPrefix prefixes environment overrides (e.g., FA_TREE_PORT=9090)
const EnvPrefix = "FA_TREE_"

// Config holds all configuration for the application
type Config struct {
	API         string        `koanf:"api"`        // Base URL of the finance-assistant REST API
	Snapshots   string        `koanf:"snapshots"`  // Directory of <resource>.json snapshots; replaces the API when set
	Resources   []string      `koanf:"resources"`  // Hierarchical resources to load
	Plugin      string        `koanf:"plugin"`     // Budgeting plugin records are linked against
	WebMode     bool          `koanf:"web"`        // Serve the hierarchy API instead of printing
	Port        int           `koanf:"port"`       // Web server port
	Watch       bool          `koanf:"watch"`      // Rebuild when snapshot files change
	State       string        `koanf:"state"`      // Column layout file
	ExpandAll   bool          `koanf:"expand-all"` // Print fully expanded trees
	Timeout     time.Duration `koanf:"timeout"`    // Per-request timeout against the API
	Verbosity   string        `koanf:"verbosity"`
	VerboseCnt  int           `koanf:"verbose"`
	JSONLogs    bool          `koanf:"json-logs"`
	OpenBrowser bool          `koanf:"open"`
}

// Defaults returns the built-in configuration values
func Defaults() map[string]interface{} {
	return map[string]interface{}{
		"api":        "http://localhost:8000/api",
		"snapshots":  "",
		"resources":  []string{"categories", "payees"},
		"plugin":     "ynab",
		"web":        false,
		"port":       8080,
		"watch":      false,
		"state":      "",
		"expand-all": false,
		"timeout":    "10s",
		"verbosity":  "",
		"verbose":    0,
		"json-logs":  false,
		"open":       false,
	}
}

// Flags registers the command-line flags understood by Load
func Flags(name string) *pflag.FlagSet {
	f := pflag.NewFlagSet(name, pflag.ContinueOnError)
	f.String("api", "http://localhost:8000/api", "Base URL of the finance-assistant API")
	f.String("snapshots", "", "Directory with <resource>.json snapshots (read-only, replaces --api)")
	f.StringSlice("resources", []string{"categories", "payees"}, "Resources to load")
	f.String("plugin", "ynab", "Budgeting plugin to link records against")
	f.Bool("web", false, "Serve the hierarchy API instead of printing")
	f.Int("port", 8080, "Port for web server (only used with --web)")
	f.Bool("watch", false, "Rebuild when snapshot files change (requires --snapshots)")
	f.String("state", "", "Column layout file (default: XDG state dir)")
	f.Bool("expand-all", false, "Print trees fully expanded")
	f.Duration("timeout", 10*time.Second, "Per-request timeout against the API")
	f.String("verbosity", "", "Log level: trace, debug, info, warn, error")
	f.CountP("verbose", "v", "Increase log verbosity (-v debug, -vv trace)")
	f.Bool("json-logs", false, "Emit logs as JSON")
	f.Bool("open", false, "Open the browser when serving")
	return f
}

// Load loads configuration from defaults, config file, environment variables, and flags.
// Priority: Flags > Env > Config File > Defaults
func Load(f *pflag.FlagSet) (*Config, error) {
	return load(f, FileName)
}

func load(f *pflag.FlagSet, path string) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(makeMapProvider(Defaults()), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file (optional); a missing file is fine
	if path != "" {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
	}

	// 3. Environment variables. Underscores become dashes so that
	// FA_TREE_EXPAND_ALL maps to expand-all.
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(
			strings.TrimPrefix(s, EnvPrefix)), "_", "-")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags (only the ones explicitly set override lower layers)
	if f != nil {
		if err := k.Load(posflag.Provider(f, ".", k), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Env values arrive as a single comma-separated string
	cfg.Resources = splitList(cfg.Resources)

	if err := cfg.finish(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) finish() error {
	c.API = strings.TrimRight(c.API, "/")

	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.Watch && c.Snapshots == "" {
		return fmt.Errorf("--watch requires --snapshots")
	}
	if c.Snapshots == "" && c.API == "" {
		return fmt.Errorf("either --api or --snapshots must be set")
	}
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}

	if c.State == "" {
		path, err := xdg.StateFile("fa-tree/layouts.json")
		if err != nil {
			return fmt.Errorf("failed to resolve state file: %w", err)
		}
		c.State = path
	}
	return nil
}

func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// Helper to use map as a provider
type mapProvider struct {
	m map[string]interface{}
}

func makeMapProvider(m map[string]interface{}) *mapProvider {
	return &mapProvider{m: m}
}

func (p *mapProvider) Read() (map[string]interface{}, error) {
	return p.m, nil
}

func (p *mapProvider) ReadBytes() ([]byte, error) {
	return nil, fmt.Errorf("not implemented")
}
