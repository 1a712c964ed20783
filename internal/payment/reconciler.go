// AngelaMos | 2026
// reconciler.go

package payment

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/templates/storefront/internal/core"
	"github.com/carterperez-dev/templates/storefront/internal/order"
)

const defaultReconcileAttempts = 3

// OrderStore is the slice of the order repository reconciliation needs.
type OrderStore interface {
	GetByID(ctx context.Context, id string) (*order.Order, error)
	ApplyPayment(ctx context.Context, update order.PaymentUpdate) (bool, error)
}

// Reconciler brings an order in line with a gateway invoice snapshot. It
// is safe to call repeatedly with the same or an older snapshot.
type Reconciler struct {
	orders      OrderStore
	logger      *slog.Logger
	maxAttempts int
}

func NewReconciler(orders OrderStore, logger *slog.Logger) *Reconciler {
	return &Reconciler{
		orders:      orders,
		logger:      logger,
		maxAttempts: defaultReconcileAttempts,
	}
}

// Reconcile applies inv to o and returns the order as stored afterwards.
// An invoice that belongs to a different order, or whose amount does not
// match the order total, fails with core.ErrIntegrity and writes nothing.
func (r *Reconciler) Reconcile(
	ctx context.Context,
	o *order.Order,
	inv *Invoice,
) (*order.Order, error) {
	ctx, span := core.StartSpan(ctx, "payment.reconcile",
		attribute.String("order.id", o.ID),
		attribute.String("invoice.status", inv.Status),
	)
	defer span.End()

	if err := checkIntegrity(o, inv); err != nil {
		core.ReconcileOutcomes.WithLabelValues("integrity").Inc()
		core.SetSpanError(ctx, err)
		r.logger.ErrorContext(ctx, "invoice does not match order",
			"order_id", o.ID,
			"stored_invoice", o.InvoiceNumber(),
			"gateway_invoice", inv.ID,
			"error", err,
		)
		return nil, err
	}

	current := o
	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		update, err := planUpdate(current, inv)
		if err != nil {
			core.ReconcileOutcomes.WithLabelValues("gateway_error").Inc()
			core.SetSpanError(ctx, err)
			return nil, err
		}

		if update == nil {
			core.ReconcileOutcomes.WithLabelValues("noop").Inc()
			if current.Status == order.StatusCancelled && isPaidStatus(inv.Status) {
				r.logger.WarnContext(ctx, "payment reported for cancelled order",
					"order_id", current.ID,
					"invoice_id", inv.ID,
				)
			}
			return current, nil
		}

		applied, err := r.orders.ApplyPayment(ctx, *update)
		if err != nil {
			core.SetSpanError(ctx, err)
			return nil, err
		}

		fresh, err := r.orders.GetByID(ctx, current.ID)
		if err != nil {
			return nil, err
		}

		if applied {
			core.ReconcileOutcomes.WithLabelValues("applied").Inc()
			core.AddSpanEvent(ctx, "payment.applied",
				attribute.String("order.status", fresh.Status),
				attribute.String("order.payment_status", fresh.PaymentStatus),
			)
			r.logger.InfoContext(ctx, "payment reconciled",
				"order_id", fresh.ID,
				"from", update.FromStatus,
				"to", fresh.Status,
				"payment_status", fresh.PaymentStatus,
			)
			return fresh, nil
		}

		core.ReconcileOutcomes.WithLabelValues("lost_race").Inc()
		r.logger.DebugContext(ctx, "order changed during reconciliation",
			"order_id", current.ID,
			"expected", update.FromStatus,
			"found", fresh.Status,
			"attempt", attempt,
		)
		current = fresh
	}

	return nil, core.ConflictError(
		fmt.Sprintf("order %s kept changing during reconciliation", o.ID),
	)
}

func checkIntegrity(o *order.Order, inv *Invoice) error {
	if !o.HasInvoice() || o.InvoiceNumber() != inv.ID {
		return fmt.Errorf(
			"invoice %q does not belong to order %s: %w",
			inv.ID, o.ID, core.ErrIntegrity,
		)
	}

	if !isPaidStatus(inv.Status) {
		return nil
	}

	amount := inv.Amount
	if inv.PaidAmount != nil {
		amount = *inv.PaidAmount
	}
	if amount.IsZero() {
		return nil
	}

	cents, err := AmountToCents(amount)
	if err != nil {
		return err
	}
	if cents != o.TotalCents {
		return fmt.Errorf(
			"paid %d cents for order %s totalling %d: %w",
			cents, o.ID, o.TotalCents, core.ErrIntegrity,
		)
	}

	return nil
}

// planUpdate maps the gateway status onto the order lifecycle. A nil
// update means the order already reflects the snapshot or the snapshot
// would move it backwards.
func planUpdate(o *order.Order, inv *Invoice) (*order.PaymentUpdate, error) {
	var channel *string
	if inv.PaymentChannel != "" {
		ch := inv.PaymentChannel
		channel = &ch
	}

	switch strings.ToUpper(inv.Status) {
	case InvoicePaid, InvoiceSettled:
		paymentStatus := order.PaymentPaid
		if strings.EqualFold(inv.Status, InvoiceSettled) {
			paymentStatus = order.PaymentSettled
		}

		switch o.Status {
		case order.StatusPending:
			return &order.PaymentUpdate{
				OrderID:        o.ID,
				FromStatus:     order.StatusPending,
				ToStatus:       order.StatusPaid,
				PaymentStatus:  paymentStatus,
				PaymentChannel: channel,
			}, nil
		case order.StatusPaid, order.StatusFulfilled:
			if o.PaymentStatus == paymentStatus || o.PaymentStatus == order.PaymentSettled {
				return nil, nil
			}
			return &order.PaymentUpdate{
				OrderID:        o.ID,
				FromStatus:     o.Status,
				ToStatus:       o.Status,
				PaymentStatus:  paymentStatus,
				PaymentChannel: channel,
			}, nil
		}
		return nil, nil

	case InvoiceExpired:
		if o.Status != order.StatusPending {
			return nil, nil
		}
		return &order.PaymentUpdate{
			OrderID:       o.ID,
			FromStatus:    order.StatusPending,
			ToStatus:      order.StatusCancelled,
			PaymentStatus: order.PaymentExpired,
		}, nil

	case InvoicePending:
		if o.Status != order.StatusPending || o.PaymentStatus == order.PaymentPending {
			return nil, nil
		}
		return &order.PaymentUpdate{
			OrderID:       o.ID,
			FromStatus:    order.StatusPending,
			ToStatus:      order.StatusPending,
			PaymentStatus: order.PaymentPending,
		}, nil
	}

	return nil, fmt.Errorf("unknown invoice status %q: %w", inv.Status, core.ErrGateway)
}

func isPaidStatus(status string) bool {
	s := strings.ToUpper(status)
	return s == InvoicePaid || s == InvoiceSettled
}
