package config

import (
	"fmt"
	"strings"

	"github.com/pbdeck/pbdeck/internal/errors"
)

// Validate checks a loaded config for values the rest of the program cannot
// work with. It returns the first problem found.
func Validate(cfg *Config) error {
	if cfg.Version > CurrentConfigVersion {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Config version %d is newer than this build supports (%d)", cfg.Version, CurrentConfigVersion),
			"Upgrade pbdeck or lower the version field")
	}

	if strings.TrimSpace(cfg.InventoryGlob) == "" {
		return errors.New(errors.ErrConfig,
			"inventory_glob is empty",
			"Set inventory_glob to a pattern like inventory/*.yml")
	}

	if strings.TrimSpace(cfg.PlaybookGlob) == "" {
		return errors.New(errors.ErrConfig,
			"playbook_glob is empty",
			"Set playbook_glob to a pattern like playbooks/*.yml")
	}

	if strings.TrimSpace(cfg.Engine.Command) == "" {
		return errors.New(errors.ErrConfig,
			"engine.command is empty",
			"Set engine.command to the automation executable, e.g. ansible-playbook")
	}

	if cfg.Output.BufferLines <= 0 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("output.buffer_lines must be positive, got %d", cfg.Output.BufferLines),
			"Use a capacity like 10000")
	}

	if cfg.Engine.TerminateGrace <= 0 {
		return errors.New(errors.ErrConfig,
			"engine.terminate_grace must be positive",
			"Use a duration like 10s")
	}

	if cfg.Output.TickInterval <= 0 {
		return errors.New(errors.ErrConfig,
			"output.tick_interval must be positive",
			"Use a duration like 100ms")
	}

	switch cfg.Output.Color {
	case "auto", "always", "never":
	default:
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("output.color must be auto, always, or never, got %q", cfg.Output.Color),
			"Pick one of: auto, always, never")
	}

	return nil
}
