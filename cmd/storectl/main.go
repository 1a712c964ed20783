// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/carterperez-dev/templates/storefront/internal/config"
	"github.com/carterperez-dev/templates/storefront/internal/core"
)

var configPath string

func main() {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)

	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "storectl",
	Short:         "Operator tooling for the storefront API",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&configPath, "config", "config.yaml", "path to config file",
	)

	rootCmd.AddCommand(genKeysCmd)
	rootCmd.AddCommand(reconcileCmd)
	rootCmd.AddCommand(promoteCmd)
	rootCmd.AddCommand(settingCmd)
	rootCmd.AddCommand(pruneTokensCmd)
}

// env is what a command needs to talk to storage.
type env struct {
	cfg    *config.Config
	db     *core.Database
	logger *slog.Logger
}

func (e *env) Close() {
	if err := e.db.Close(); err != nil {
		e.logger.Error("database close error", "error", err)
	}
}

// boot loads config and opens the database.
func boot(ctx context.Context) (*env, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	return &env{cfg: cfg, db: db, logger: logger}, nil
}
