// AngelaMos | 2026
// cmd_keys.go

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/carterperez-dev/templates/storefront/internal/auth"
)

var (
	privateKeyPath string
	publicKeyPath  string
)

// storectl genkeys
var genKeysCmd = &cobra.Command{
	Use:   "genkeys",
	Short: "Generate the ES256 key pair used to sign session tokens",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := auth.GenerateKeyPair(privateKeyPath, publicKeyPath); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s and %s\n", privateKeyPath, publicKeyPath)
		return nil
	},
}

func init() {
	genKeysCmd.Flags().StringVar(&privateKeyPath, "private", "keys/private.pem", "private key output path")
	genKeysCmd.Flags().StringVar(&publicKeyPath, "public", "keys/public.pem", "public key output path")
}
