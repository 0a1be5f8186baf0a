package cli

import (
	"fmt"
	"os/exec"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/pbdeck/pbdeck/internal/config"
	"github.com/pbdeck/pbdeck/internal/inventory"
	"github.com/pbdeck/pbdeck/internal/playbook"
	"github.com/pbdeck/pbdeck/internal/ui"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose configuration, inventory, and engine problems",
	Long: `Check that pbdeck can find and parse its configuration, that the
engine command is installed, and that the inventory and playbook globs
match parseable files.

Examples:
  pbdeck doctor
  pbdeck doctor --config ./ops/.pbdeck.yaml`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDoctor()
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

// checkResult is one diagnostic line: pass/fail plus an optional hint.
type checkResult struct {
	ok         bool
	message    string
	suggestion string
}

func pass(format string, a ...interface{}) checkResult {
	return checkResult{ok: true, message: fmt.Sprintf(format, a...)}
}

func fail(message, suggestion string) checkResult {
	return checkResult{message: message, suggestion: suggestion}
}

// runDoctor runs every check even after failures so the operator sees the
// whole picture in one pass.
func runDoctor() error {
	headerStyle := lipgloss.NewStyle().Bold(true)

	fmt.Println()
	fmt.Println(headerStyle.Render("pbdeck diagnostic report"))
	fmt.Println()

	cfg, configResults := checkConfig()
	sections := []struct {
		name    string
		results []checkResult
	}{
		{"CONFIG", configResults},
		{"ENGINE", checkEngine(cfg)},
		{"INVENTORY", checkInventory(cfg)},
		{"PLAYBOOKS", checkPlaybooks(cfg)},
	}

	issues := 0
	for _, section := range sections {
		fmt.Println(headerStyle.Render(section.name))
		for _, r := range section.results {
			renderCheck(r)
			if !r.ok {
				issues++
			}
		}
		fmt.Println()
	}

	successStyle := lipgloss.NewStyle().Foreground(ui.ColorSuccess)
	errorStyle := lipgloss.NewStyle().Foreground(ui.ColorError)
	if issues == 0 {
		fmt.Printf("%s Everything looks good\n", successStyle.Render(ui.SymbolSuccess))
	} else {
		fmt.Printf("%s %d issue%s found\n",
			errorStyle.Render(ui.SymbolFail), issues, pluralSuffix(issues))
	}
	fmt.Println()
	return nil
}

func renderCheck(r checkResult) {
	successStyle := lipgloss.NewStyle().Foreground(ui.ColorSuccess)
	errorStyle := lipgloss.NewStyle().Foreground(ui.ColorError)
	mutedStyle := lipgloss.NewStyle().Foreground(ui.ColorMuted)

	if r.ok {
		fmt.Printf("  %s %s\n", successStyle.Render(ui.SymbolSuccess), r.message)
		return
	}
	fmt.Printf("  %s %s\n", errorStyle.Render(ui.SymbolFail), r.message)
	if r.suggestion != "" {
		fmt.Printf("    %s\n", mutedStyle.Render(r.suggestion))
	}
}

// checkConfig resolves and validates the config, returning whatever config
// the later sections should check against (defaults when none was found).
func checkConfig() (*config.Config, []checkResult) {
	var results []checkResult

	path, err := config.Find(configFlag)
	switch {
	case err != nil:
		results = append(results, fail(
			"Cannot resolve config file: "+err.Error(),
			"Check the --config path"))
		return config.DefaultConfig(), results
	case path == "":
		results = append(results, pass("No %s found, using built-in defaults", config.ConfigFileName))
		return config.DefaultConfig(), results
	}
	results = append(results, pass("Config found at %s", path))

	cfg, err := config.Load(path)
	if err != nil {
		results = append(results, fail(
			"Config does not parse: "+err.Error(),
			"Fix the YAML or regenerate it with: pbdeck init --force"))
		return config.DefaultConfig(), results
	}
	if err := config.Validate(cfg); err != nil {
		results = append(results, fail(
			"Config is invalid: "+err.Error(),
			"Compare against the template from: pbdeck init"))
		return cfg, results
	}
	results = append(results, pass("Config parses and validates"))
	return cfg, results
}

func checkEngine(cfg *config.Config) []checkResult {
	var results []checkResult

	if cfg.Engine.Command == "" {
		return append(results, fail(
			"No engine command configured",
			"Set engine.command in "+config.ConfigFileName))
	}
	path, err := exec.LookPath(cfg.Engine.Command)
	if err != nil {
		results = append(results, fail(
			fmt.Sprintf("%s not found on PATH", cfg.Engine.Command),
			"Install it or point engine.command at the right executable"))
	} else {
		results = append(results, pass("%s found at %s", cfg.Engine.Command, path))
	}

	if cfg.Engine.VaultFlag == "" {
		results = append(results, fail(
			"No vault flag configured; vault mode runs will not prompt the engine",
			"Set engine.vault_flag (usually --ask-vault-pass)"))
	} else {
		results = append(results, pass("Vault flag: %s", cfg.Engine.VaultFlag))
	}
	return results
}

func checkInventory(cfg *config.Config) []checkResult {
	var results []checkResult

	cat, loadErrs := inventory.LoadGlob(cfg.InventoryGlob)
	for _, err := range loadErrs {
		results = append(results, fail(err.Error(), ""))
	}
	if cat == nil {
		return results
	}
	sites := cat.Sites()
	hosts := len(cat.Hosts)
	if hosts == 0 {
		results = append(results, fail(
			fmt.Sprintf("No hosts matched by %q", cfg.InventoryGlob),
			"Check inventory_glob and that the inventory files define hosts"))
	} else {
		results = append(results, pass("%d host%s across %d site%s",
			hosts, pluralSuffix(hosts), len(sites), pluralSuffix(len(sites))))
	}
	return results
}

func checkPlaybooks(cfg *config.Config) []checkResult {
	books, err := playbook.LoadGlob(cfg.PlaybookGlob)
	if err != nil {
		return []checkResult{fail(
			"Cannot scan playbooks: "+err.Error(),
			"Check playbook_glob in "+config.ConfigFileName)}
	}
	if len(books) == 0 {
		return []checkResult{fail(
			fmt.Sprintf("No playbooks matched by %q", cfg.PlaybookGlob),
			"Check playbook_glob and the playbook directory")}
	}
	return []checkResult{pass("%d playbook%s found", len(books), pluralSuffix(len(books)))}
}

// pluralSuffix returns "s" if n != 1.
func pluralSuffix(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
