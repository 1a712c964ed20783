// AngelaMos | 2026
// cmd_payments.go

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/carterperez-dev/templates/storefront/internal/order"
	"github.com/carterperez-dev/templates/storefront/internal/payment"
)

// reconcileService is the part of *payment.Service the reconcile command
// drives.
type reconcileService interface {
	ReconcileAny(ctx context.Context, orderID string) (*order.Order, error)
	Sweep(ctx context.Context, limit int) (payment.SweepResult, error)
}

// openReconciler builds the reconcile service and returns a release func.
var openReconciler = func(ctx context.Context) (reconcileService, func(), error) {
	e, err := boot(ctx)
	if err != nil {
		return nil, nil, err
	}

	svc := payment.NewService(
		order.NewRepository(e.db.DB),
		payment.NewClient(e.cfg.Gateway),
		e.logger,
	)
	return svc, e.Close, nil
}

var reconcileLimit int

// storectl reconcile
var reconcileCmd = &cobra.Command{
	Use:   "reconcile [order-id]",
	Short: "Reconcile one order, or sweep pending invoiced orders, against the gateway",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if reconcileLimit <= 0 {
			return fmt.Errorf("--limit must be positive")
		}

		ctx := cmd.Context()

		svc, release, err := openReconciler(ctx)
		if err != nil {
			return err
		}
		defer release()

		out := cmd.OutOrStdout()

		if len(args) == 1 {
			o, err := svc.ReconcileAny(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s status=%s payment_status=%s\n", o.ID, o.Status, o.PaymentStatus)
			return nil
		}

		result, err := svc.Sweep(ctx, reconcileLimit)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "checked=%d failed=%d\n", result.Checked, result.Failed)
		if result.Failed > 0 {
			return fmt.Errorf("%d orders failed to reconcile", result.Failed)
		}
		return nil
	},
}

func init() {
	reconcileCmd.Flags().IntVar(&reconcileLimit, "limit", 100, "maximum orders per sweep")
}
