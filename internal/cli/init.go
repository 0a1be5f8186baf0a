package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/pbdeck/pbdeck/internal/config"
	"github.com/pbdeck/pbdeck/internal/errors"
)

var initForce bool

// configTemplate is written by `pbdeck init`. It mirrors DefaultConfig so
// a fresh file changes nothing until edited.
const configTemplate = `version: 1

# Globs for the catalog. Inventories are merged; broken files are skipped.
inventory_glob: "inventory/*.yml"
playbook_glob: "playbooks/*.yml"

engine:
  command: ansible-playbook
  args: []
  # Passed when a vault passphrase was captured. The passphrase itself is
  # delivered over stdin, never argv.
  vault_flag: "--ask-vault-pass"
  # Run under a pseudo-terminal for colored, unbuffered engine output.
  pty: false
  # SIGTERM -> wait -> SIGKILL escalation window on cancel.
  terminate_grace: 10s
  env:
    ANSIBLE_FORCE_COLOR: "1"
    PYTHONUNBUFFERED: "1"

output:
  buffer_lines: 10000
  color: auto          # auto, always, never
  tick_interval: 100ms

splash:
  enabled: true
  duration: 3s

# Write session logs here (the console cannot log to stderr).
# log_file: .pbdeck.log

watch_catalog: true
`

// initCmd scaffolds a .pbdeck.yaml in the current directory.
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a .pbdeck.yaml configuration",
	Long: `Create a .pbdeck.yaml in the current directory with documented
defaults.

Examples:
  pbdeck init
  pbdeck init --force`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return initConfig(initForce)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing config")
}

func initConfig(force bool) error {
	path := filepath.Join(".", config.ConfigFileName)

	if _, err := os.Stat(path); err == nil && !force {
		var overwrite bool
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("%s already exists. Overwrite?", config.ConfigFileName)).
					Value(&overwrite),
			),
		)
		if err := form.Run(); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Re-run with --force to overwrite without prompting")
		}
		if !overwrite {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	if err := os.WriteFile(path, []byte(configTemplate), 0o644); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot write "+path,
			"Check directory permissions")
	}

	fmt.Printf("Created %s\n", path)
	fmt.Println("Edit inventory_glob and playbook_glob, then run `pbdeck`.")
	return nil
}
