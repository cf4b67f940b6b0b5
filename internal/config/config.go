// Package config loads the process configuration: the distance-scoring
// settings, the focused application's (peer, path), and the declared
// indicator list. Compiled-in defaults are overridden by an optional YAML
// file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ayatana-go/menuhud/internal/settings"
	"github.com/ayatana-go/menuhud/pkg/menumodel"
)

// Config is the top-level configuration document.
type Config struct {
	Settings  SettingsConfig              `yaml:"settings"`
	Focused   FocusedConfig               `yaml:"focused"`
	Indicators []IndicatorConfig          `yaml:"indicators"`
}

// SettingsConfig mirrors settings.Settings with YAML tags; zero-valued
// fields fall back to settings.Default()'s values at Resolve time.
type SettingsConfig struct {
	AddPenalty       *uint64 `yaml:"add_penalty"`
	AddPenaltyPre    *uint64 `yaml:"add_penalty_pre"`
	DropPenalty      *uint64 `yaml:"drop_penalty"`
	DropPenaltyEnd   *uint64 `yaml:"drop_penalty_end"`
	TransposePenalty *uint64 `yaml:"transpose_penalty"`
	SwapPenalty      *uint64 `yaml:"swap_penalty"`
	SwapPenaltyCase  *uint64 `yaml:"swap_penalty_case"`
	IndicatorPenalty *uint64 `yaml:"indicator_penalty"`
	MaxDistance      *uint64 `yaml:"max_distance"`
}

// FocusedConfig names the application whose menu tree is searched.
type FocusedConfig struct {
	BusName    string `yaml:"bus_name"`
	ObjectPath string `yaml:"object_path"`
}

// IndicatorConfig is one declared indicator entry.
type IndicatorConfig struct {
	BusName     string `yaml:"bus_name"`
	ObjectPath  string `yaml:"object_path"`
	DisplayName string `yaml:"display_name"`
	LabelPrefix string `yaml:"label_prefix"`
}

// Default returns compiled-in defaults: settings.Default()'s penalties, no
// focused application, and no declared indicators.
func Default() *Config {
	return &Config{}
}

// Load reads path as YAML and merges it over Default(). A missing file is
// not an error; the caller gets compiled-in defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// ResolveSettings builds a settings.Settings from c, falling back to
// settings.Default() field by field for anything left unset in YAML.
func (c *Config) ResolveSettings() *settings.Settings {
	def := settings.Default()
	s := c.Settings
	return &settings.Settings{
		AddPenalty:       orDefault(s.AddPenalty, def.AddPenalty),
		AddPenaltyPre:    orDefault(s.AddPenaltyPre, def.AddPenaltyPre),
		DropPenalty:      orDefault(s.DropPenalty, def.DropPenalty),
		DropPenaltyEnd:   orDefault(s.DropPenaltyEnd, def.DropPenaltyEnd),
		TransposePenalty: orDefault(s.TransposePenalty, def.TransposePenalty),
		SwapPenalty:      orDefault(s.SwapPenalty, def.SwapPenalty),
		SwapPenaltyCase:  orDefault(s.SwapPenaltyCase, def.SwapPenaltyCase),
		IndicatorPenalty: orDefault(s.IndicatorPenalty, def.IndicatorPenalty),
		MaxDistance:      orDefault(s.MaxDistance, def.MaxDistance),
	}
}

// ResolveIndicators converts the declared indicator list into the shared
// menumodel shape the search orchestrator consumes.
func (c *Config) ResolveIndicators() []menumodel.IndicatorDescriptor {
	out := make([]menumodel.IndicatorDescriptor, len(c.Indicators))
	for i, ind := range c.Indicators {
		out[i] = menumodel.IndicatorDescriptor{
			BusName:     ind.BusName,
			ObjectPath:  ind.ObjectPath,
			DisplayName: ind.DisplayName,
			LabelPrefix: ind.LabelPrefix,
		}
	}
	return out
}

func orDefault(v *uint64, def uint64) uint64 {
	if v == nil {
		return def
	}
	return *v
}
