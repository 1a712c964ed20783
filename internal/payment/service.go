// AngelaMos | 2026
// service.go

package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/carterperez-dev/templates/storefront/internal/core"
	"github.com/carterperez-dev/templates/storefront/internal/order"
)

type OrderRepository interface {
	OrderStore
	GetForUser(ctx context.Context, id, userID string) (*order.Order, error)
	SetInvoice(ctx context.Context, id, number, url string) (bool, error)
	ListPendingWithInvoice(ctx context.Context, limit int) ([]order.Order, error)
}

type Service struct {
	orders     OrderRepository
	gateway    Gateway
	reconciler *Reconciler
	logger     *slog.Logger
}

func NewService(
	orders OrderRepository,
	gateway Gateway,
	logger *slog.Logger,
) *Service {
	return &Service{
		orders:     orders,
		gateway:    gateway,
		reconciler: NewReconciler(orders, logger),
		logger:     logger,
	}
}

// CreateInvoice asks the gateway to bill a pending order. An order that
// already has an invoice gets it back unchanged.
func (s *Service) CreateInvoice(
	ctx context.Context,
	userID, email, orderID string,
) (*InvoiceResponse, error) {
	o, err := s.orders.GetForUser(ctx, orderID, userID)
	if err != nil {
		return nil, err
	}

	if o.HasInvoice() {
		return toInvoiceResponse(o), nil
	}
	if o.Status != order.StatusPending {
		return nil, core.ConflictError("only pending orders can be invoiced")
	}

	inv, err := s.gateway.CreateInvoice(ctx, InvoiceRequest{
		OrderID:     o.ID,
		AmountCents: o.TotalCents,
		PayerEmail:  email,
		Description: "Order " + o.ID,
	})
	if err != nil {
		s.logger.WarnContext(ctx, "create invoice failed",
			"order_id", o.ID,
			"error", err,
		)
		return nil, err
	}

	ok, err := s.orders.SetInvoice(ctx, o.ID, inv.ID, inv.InvoiceURL)
	if err != nil {
		return nil, err
	}

	fresh, err := s.orders.GetByID(ctx, o.ID)
	if err != nil {
		return nil, err
	}

	if !ok {
		if fresh.HasInvoice() {
			s.logger.InfoContext(ctx, "invoice attached concurrently",
				"order_id", o.ID,
				"kept", fresh.InvoiceNumber(),
				"discarded", inv.ID,
			)
			return toInvoiceResponse(fresh), nil
		}
		return nil, core.ConflictError("order is no longer pending")
	}

	s.logger.InfoContext(ctx, "invoice created",
		"order_id", o.ID,
		"invoice_id", inv.ID,
		"amount_cents", o.TotalCents,
	)

	return toInvoiceResponse(fresh), nil
}

// ReconcileForUser pulls the invoice from the gateway for one of the
// caller's orders.
func (s *Service) ReconcileForUser(
	ctx context.Context,
	userID, orderID string,
) (*order.Order, error) {
	o, err := s.orders.GetForUser(ctx, orderID, userID)
	if err != nil {
		return nil, err
	}
	return s.reconcileWithGateway(ctx, o)
}

func (s *Service) ReconcileAny(ctx context.Context, orderID string) (*order.Order, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return s.reconcileWithGateway(ctx, o)
}

// reconcileWithGateway leaves the order untouched when the gateway cannot
// be read.
func (s *Service) reconcileWithGateway(
	ctx context.Context,
	o *order.Order,
) (*order.Order, error) {
	if !o.HasInvoice() {
		return nil, core.ConflictError("order has no invoice")
	}

	inv, err := s.gateway.GetInvoice(ctx, o.InvoiceNumber())
	if err != nil {
		core.ReconcileOutcomes.WithLabelValues("gateway_error").Inc()
		s.logger.WarnContext(ctx, "gateway unavailable for reconciliation",
			"order_id", o.ID,
			"error", err,
		)
		return nil, err
	}

	return s.reconciler.Reconcile(ctx, o, inv)
}

// HandleNotification reconciles a pushed invoice snapshot. Deliveries are
// at-least-once so repeats resolve to the current order.
func (s *Service) HandleNotification(
	ctx context.Context,
	inv *Invoice,
) (*order.Order, error) {
	if _, err := uuid.Parse(inv.ExternalID); err != nil {
		return nil, fmt.Errorf("notification for %q: %w", inv.ExternalID, core.ErrNotFound)
	}

	o, err := s.orders.GetByID(ctx, inv.ExternalID)
	if err != nil {
		return nil, err
	}

	return s.reconciler.Reconcile(ctx, o, inv)
}

type SweepResult struct {
	Checked int
	Failed  int
}

// Sweep reconciles up to limit pending invoiced orders. Failures are
// logged and left for the next sweep.
func (s *Service) Sweep(ctx context.Context, limit int) (SweepResult, error) {
	var result SweepResult

	orders, err := s.orders.ListPendingWithInvoice(ctx, limit)
	if err != nil {
		return result, err
	}

	for i := range orders {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}

		result.Checked++
		if _, err := s.reconcileWithGateway(ctx, &orders[i]); err != nil {
			result.Failed++
			level := slog.LevelWarn
			if errors.Is(err, core.ErrIntegrity) {
				level = slog.LevelError
			}
			s.logger.Log(ctx, level, "sweep reconcile failed",
				"order_id", orders[i].ID,
				"error", err,
			)
		}
	}

	return result, nil
}
