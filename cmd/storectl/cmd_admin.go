// AngelaMos | 2026
// cmd_admin.go

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/carterperez-dev/templates/storefront/internal/auth"
	"github.com/carterperez-dev/templates/storefront/internal/setting"
	"github.com/carterperez-dev/templates/storefront/internal/user"
)

// storectl promote <email>
var promoteCmd = &cobra.Command{
	Use:   "promote <email>",
	Short: "Grant the admin role to an existing account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		e, err := boot(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		u, err := user.NewService(user.NewRepository(e.db.DB)).PromoteByEmail(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", u.Email, u.Role)
		return nil
	},
}

var settingCmd = &cobra.Command{
	Use:   "setting",
	Short: "Read or change runtime settings",
}

// storectl setting get <key>
var settingGetCmd = &cobra.Command{
	Use:  "get <key>",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		e, err := boot(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		s, err := setting.NewService(setting.NewRepository(e.db.DB), e.logger).Get(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), s.Value)
		return nil
	},
}

// storectl setting set <key> <value>
var settingSetCmd = &cobra.Command{
	Use:  "set <key> <value>",
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		e, err := boot(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		s, err := setting.NewService(setting.NewRepository(e.db.DB), e.logger).Set(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s=%s\n", s.Key, s.Value)
		return nil
	},
}

// storectl prune-tokens
var pruneTokensCmd = &cobra.Command{
	Use:   "prune-tokens",
	Short: "Delete expired and spent password reset tokens",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		e, err := boot(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		svc := auth.NewService(
			auth.NewRepository(e.db.DB),
			user.NewService(user.NewRepository(e.db.DB)),
			auth.NewLogMailer(e.logger, false),
			e.logger,
			e.cfg.Password,
			e.cfg.App.PublicURL,
		)

		n, err := svc.PruneResetTokens(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "pruned %d tokens\n", n)
		return nil
	},
}

func init() {
	settingCmd.AddCommand(settingGetCmd)
	settingCmd.AddCommand(settingSetCmd)
}
