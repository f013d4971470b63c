// Package config holds the agent's YAML-backed settings: the learning
// parameters consulted by the chunking gate and namer, and the trace
// category toggles.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the full agent configuration.
type Config struct {
	Agent    AgentConfig    `yaml:"agent"`
	Learning LearningConfig `yaml:"learning"`
	Trace    TraceConfig    `yaml:"trace"`
	Modules  ModulesConfig  `yaml:"modules"`
}

// AgentConfig names the agent instance.
type AgentConfig struct {
	Name string `yaml:"name"`
}

// ModulesConfig toggles the optional subsystems the agent reports in its
// status banner. The core consults Smem to decide whether long-term
// identifiers are expected.
type ModulesConfig struct {
	Smem  bool `yaml:"smem"`
	Epmem bool `yaml:"epmem"`
	RL    bool `yaml:"rl"`
	WMA   bool `yaml:"wma"`
}

// LearningConfig holds the explanation-based chunking settings.
type LearningConfig struct {
	Enabled bool `yaml:"enabled"`

	// Except suppresses learning in states flagged chunk-free; Only limits
	// learning to states flagged chunky; BottomOnly limits learning to the
	// bottom of the goal stack. At most one is normally set.
	Except     bool `yaml:"except"`
	Only       bool `yaml:"only"`
	BottomOnly bool `yaml:"bottom_only"`

	// NamingStyle is "numbered" or "descriptive".
	NamingStyle string `yaml:"naming_style"`

	// MaxChunks and MaxDupes bound rules learned per decision cycle.
	MaxChunks uint64 `yaml:"max_chunks"`
	MaxDupes  uint64 `yaml:"max_dupes"`

	// Timers enables the learning-pipeline timer taxonomy.
	Timers bool `yaml:"timers"`
}

// TraceConfig toggles the trace categories.
type TraceConfig struct {
	ChunkNames         bool `yaml:"chunk_names"`
	Chunks             bool `yaml:"chunks"`
	JustificationNames bool `yaml:"justification_names"`
	Justifications     bool `yaml:"justifications"`
	ChunkWarnings      bool `yaml:"chunk_warnings"`
}

// DefaultConfig returns the settings a fresh agent starts with.
func DefaultConfig() Config {
	return Config{
		Agent: AgentConfig{Name: "agent"},
		Learning: LearningConfig{
			Enabled:     true,
			NamingStyle: "numbered",
			MaxChunks:   50,
			MaxDupes:    3,
		},
		Trace: TraceConfig{
			ChunkNames:    true,
			ChunkWarnings: true,
		},
	}
}

// Load reads a YAML config file. A missing file returns defaults.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Save writes the config as YAML.
func (c Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Validate rejects values the core cannot act on.
func (c Config) Validate() error {
	switch c.Learning.NamingStyle {
	case "", "numbered", "descriptive":
	default:
		return fmt.Errorf("config: unknown naming_style %q", c.Learning.NamingStyle)
	}
	return nil
}
