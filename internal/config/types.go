package config

import "time"

// CurrentConfigVersion is the schema version for the config file.
// Increment when making breaking changes to the config structure.
const CurrentConfigVersion = 1

// Config represents the complete .pbdeck.yaml configuration file.
type Config struct {
	Version int `yaml:"version" mapstructure:"version"`

	// InventoryGlob matches the YAML inventory files to load and merge.
	InventoryGlob string `yaml:"inventory_glob" mapstructure:"inventory_glob"`

	// PlaybookGlob matches the playbook files offered in the picker.
	PlaybookGlob string `yaml:"playbook_glob" mapstructure:"playbook_glob"`

	Engine EngineConfig `yaml:"engine" mapstructure:"engine"`
	Output OutputConfig `yaml:"output" mapstructure:"output"`
	Splash SplashConfig `yaml:"splash" mapstructure:"splash"`

	// LogFile receives TUI session logs. Empty disables file logging.
	LogFile string `yaml:"log_file" mapstructure:"log_file"`

	// WatchCatalog reloads inventories and playbooks when their files change.
	WatchCatalog bool `yaml:"watch_catalog" mapstructure:"watch_catalog"`
}

// EngineConfig controls how the external automation engine is invoked.
type EngineConfig struct {
	// Command is the engine executable, looked up on PATH.
	Command string `yaml:"command" mapstructure:"command"`

	// Args are extra arguments appended before the playbook path.
	Args []string `yaml:"args" mapstructure:"args"`

	// VaultFlag is passed when a vault passphrase was captured. The
	// passphrase itself goes over the child's stdin pipe, never argv.
	VaultFlag string `yaml:"vault_flag" mapstructure:"vault_flag"`

	// PTY runs the engine under a pseudo-terminal so it line-buffers and
	// colors output. stdout and stderr arrive as one combined stream.
	PTY bool `yaml:"pty" mapstructure:"pty"`

	// TerminateGrace is how long to wait after a polite termination signal
	// before force-killing the process group.
	TerminateGrace time.Duration `yaml:"terminate_grace" mapstructure:"terminate_grace"`

	// Env contains extra environment variables for the engine process.
	Env map[string]string `yaml:"env" mapstructure:"env"`
}

// OutputConfig controls the output pane and headless run output.
type OutputConfig struct {
	// BufferLines caps the output ring buffer; oldest lines are evicted.
	BufferLines int `yaml:"buffer_lines" mapstructure:"buffer_lines"`

	// Color mode: "auto", "always", or "never".
	Color string `yaml:"color" mapstructure:"color"`

	// TickInterval is the TUI redraw/animation cadence.
	TickInterval time.Duration `yaml:"tick_interval" mapstructure:"tick_interval"`
}

// SplashConfig controls the startup splash screen.
type SplashConfig struct {
	Enabled  bool          `yaml:"enabled" mapstructure:"enabled"`
	Duration time.Duration `yaml:"duration" mapstructure:"duration"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version:       CurrentConfigVersion,
		InventoryGlob: "inventory/*.yml",
		PlaybookGlob:  "playbooks/*.yml",
		Engine: EngineConfig{
			Command:        "ansible-playbook",
			Args:           []string{},
			VaultFlag:      "--ask-vault-pass",
			PTY:            false,
			TerminateGrace: 10 * time.Second,
			Env: map[string]string{
				"ANSIBLE_FORCE_COLOR": "1",
				"PYTHONUNBUFFERED":    "1",
			},
		},
		Output: OutputConfig{
			BufferLines:  10000,
			Color:        "auto",
			TickInterval: 100 * time.Millisecond,
		},
		Splash: SplashConfig{
			Enabled:  true,
			Duration: 3 * time.Second,
		},
		WatchCatalog: true,
	}
}
