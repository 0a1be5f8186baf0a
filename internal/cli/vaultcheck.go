package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pbdeck/pbdeck/internal/engine"
	"github.com/pbdeck/pbdeck/internal/vault"
)

// vaultCheckCmd verifies a passphrase against an encrypted file without
// invoking the automation engine, using the envelope's own HMAC.
var vaultCheckCmd = &cobra.Command{
	Use:   "vault-check [vault-file]",
	Short: "Verify a vault passphrase against an encrypted file",
	Long: `Check that a passphrase matches an ansible-vault encrypted file.

The passphrase is read from the terminal and verified offline against the
vault envelope; nothing is decrypted and nothing touches disk.

Examples:
  pbdeck vault-check group_vars/all/secrets.yml`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		secret, err := promptPassphrase()
		if err != nil {
			return err
		}
		defer engine.Zeroize(secret)

		if err := vault.Verify(args[0], secret); err != nil {
			return err
		}
		fmt.Println("✓ passphrase matches")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(vaultCheckCmd)
}
