// Package cli wires the pbdeck commands: the bare root opens the
// interactive console, with headless subcommands for scripting and CI.
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pbdeck/pbdeck/internal/config"
	"github.com/pbdeck/pbdeck/internal/logger"
	"github.com/pbdeck/pbdeck/internal/tui"
)

// Persistent flags
var (
	configFlag   string
	debugLogFlag string
	noSplashFlag bool
)

// rootCmd opens the interactive console. Positional args pre-lock the site
// filter, matched case-insensitively against the inventory.
var rootCmd = &cobra.Command{
	Use:   "pbdeck [site]",
	Short: "Interactive console for running automation playbooks",
	Long: `pbdeck is a terminal console for launching automation playbooks
against an inventory of network and infrastructure hosts.

Run it bare to open the console. Pass a site name to lock the site
filter for the session.

Examples:
  pbdeck
  pbdeck dc1
  pbdeck --no-splash --config ./ops/.pbdeck.yaml`,
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		log, closeLog := sessionLogger(cfg)
		defer closeLog()

		return tui.Run(tui.Options{
			Config:     cfg,
			SiteFilter: strings.Join(args, " "),
			NoSplash:   noSplashFlag,
			Log:        log,
		})
	},
}

// Execute runs the root command. Called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&debugLogFlag, "debug-log", "", "write debug logs to this file")
	rootCmd.Flags().BoolVar(&noSplashFlag, "no-splash", false, "skip the startup splash")
}

// loadConfig resolves and validates configuration for every command.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadOrDefault(configFlag)
	if err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// sessionLogger picks the log sink: a file when configured (the console
// cannot log to stderr while it owns the screen), stderr otherwise.
func sessionLogger(cfg *config.Config) (logger.Logger, func() error) {
	path := debugLogFlag
	if path == "" {
		path = cfg.LogFile
	}
	if path != "" {
		return logger.NewFileLogger(path, "pbdeck")
	}
	return logger.NewEnvLogger("[pbdeck]"), func() error { return nil }
}
