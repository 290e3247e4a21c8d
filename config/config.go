// Package config loads and persists the toolkit's workspace settings.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultFileName is the config file looked up in a workspace.
const DefaultFileName = ".nuclide.yaml"

// Config models the persisted settings for the blame gutter and the
// diagnostics event subscription.
type Config struct {
	// GutterName names the gutter allocated per editor.
	GutterName string `yaml:"gutter_name"`

	// LoadingDelayMS is how long a blame fetch may run before the loading
	// indicator appears.
	LoadingDelayMS int `yaml:"loading_delay_ms"`

	// RunOnTheFly subscribes diagnostics providers to edit events instead
	// of save events.
	RunOnTheFly bool `yaml:"run_on_the_fly"`

	// GrammarScopes limits providers to these grammars unless
	// AllGrammarScopes is set.
	GrammarScopes []string `yaml:"grammar_scopes,omitempty"`

	// AllGrammarScopes subscribes providers across every grammar.
	AllGrammarScopes bool `yaml:"all_grammar_scopes"`

	// CacheDB is the SQLite file caching blame snapshots. Empty disables
	// the cache.
	CacheDB string `yaml:"cache_db,omitempty"`

	// DisableCache bypasses the snapshot cache even when CacheDB is set.
	DisableCache bool `yaml:"disable_cache,omitempty"`
}

// Default returns the settings used when no config file exists.
func Default() Config {
	return Config{
		GutterName:       "blame",
		LoadingDelayMS:   2000,
		AllGrammarScopes: true,
	}
}

// LoadingDelay converts the configured delay to a duration.
func (c Config) LoadingDelay() time.Duration {
	return time.Duration(c.LoadingDelayMS) * time.Millisecond
}

// DefaultPath resolves the config file inside a workspace directory.
func DefaultPath(workspace string) string {
	if workspace == "" {
		workspace = "."
	}
	return filepath.Join(workspace, DefaultFileName)
}

// Load reads the configuration at path. Callers typically treat
// os.ErrNotExist as "use Default()".
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	if cfg.GutterName == "" {
		cfg.GutterName = Default().GutterName
	}
	if cfg.LoadingDelayMS <= 0 {
		cfg.LoadingDelayMS = Default().LoadingDelayMS
	}
	return cfg, nil
}

// Save writes the configuration to path, creating parent directories.
func Save(path string, cfg Config) error {
	if path == "" {
		return errors.New("config path required")
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}
