// AngelaMos | 2026
// reconciler_test.go

package payment

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/storefront/internal/core"
	"github.com/carterperez-dev/templates/storefront/internal/order"
)

func TestReconcilePaidIsAppliedOnce(t *testing.T) {
	ctx := context.Background()
	store := newMemOrders(invoicedOrder(orderOneID, "u1", "inv-1", 115000))
	rec := NewReconciler(store, discardLogger())
	snapshot := paidSnapshot("inv-1", orderOneID, 115000)

	current, err := store.GetByID(ctx, orderOneID)
	require.NoError(t, err)

	first, err := rec.Reconcile(ctx, current, snapshot)
	require.NoError(t, err)
	assert.Equal(t, order.StatusPaid, first.Status)
	assert.Equal(t, order.PaymentPaid, first.PaymentStatus)
	require.NotNil(t, first.PaymentChannel)
	assert.Equal(t, "BCA", *first.PaymentChannel)

	second, err := rec.Reconcile(ctx, first, snapshot)
	require.NoError(t, err)
	assert.Equal(t, order.StatusPaid, second.Status)

	assert.Equal(t, 1, store.applyCalls)
	assert.Equal(t, 1, store.stockDecrement)
}

func TestReconcileStaleSnapshotOnStaleOrder(t *testing.T) {
	ctx := context.Background()
	store := newMemOrders(invoicedOrder(orderOneID, "u1", "inv-1", 115000))
	rec := NewReconciler(store, discardLogger())
	snapshot := paidSnapshot("inv-1", orderOneID, 115000)

	stale, err := store.GetByID(ctx, orderOneID)
	require.NoError(t, err)

	_, err = rec.Reconcile(ctx, stale, snapshot)
	require.NoError(t, err)

	// A second trigger that read the order before the first write landed.
	got, err := rec.Reconcile(ctx, stale, snapshot)
	require.NoError(t, err)
	assert.Equal(t, order.StatusPaid, got.Status)
	assert.Equal(t, 1, store.stockDecrement)
}

func TestReconcileRejectsForeignInvoice(t *testing.T) {
	ctx := context.Background()
	stored := invoicedOrder(orderOneID, "u1", "inv-1", 115000)
	store := newMemOrders(stored)
	rec := NewReconciler(store, discardLogger())

	_, err := rec.Reconcile(ctx, stored, paidSnapshot("inv-other", orderOneID, 115000))
	require.ErrorIs(t, err, core.ErrIntegrity)

	got, err := store.GetByID(ctx, orderOneID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusPending, got.Status)
	assert.Equal(t, order.PaymentPending, got.PaymentStatus)
	assert.Zero(t, store.applyCalls)
}

func TestReconcileRejectsOrderWithoutInvoice(t *testing.T) {
	stored := pendingOrder(orderOneID, "u1", 1000)
	rec := NewReconciler(newMemOrders(stored), discardLogger())

	_, err := rec.Reconcile(context.Background(), stored, paidSnapshot("inv-1", orderOneID, 1000))
	assert.ErrorIs(t, err, core.ErrIntegrity)
}

func TestReconcileAmountMustMatchTotal(t *testing.T) {
	tests := []struct {
		name    string
		paid    string
		wantErr bool
	}{
		{name: "exact", paid: "1150.00", wantErr: false},
		{name: "short", paid: "1149.99", wantErr: true},
		{name: "sub-cent", paid: "1150.001", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stored := invoicedOrder(orderOneID, "u1", "inv-1", 115000)
			store := newMemOrders(stored)
			rec := NewReconciler(store, discardLogger())

			snapshot := paidSnapshot("inv-1", orderOneID, 115000)
			snapshot.PaidAmount = decimalPtr(tt.paid)

			_, err := rec.Reconcile(context.Background(), stored, snapshot)
			if tt.wantErr {
				require.ErrorIs(t, err, core.ErrIntegrity)
				assert.Zero(t, store.applyCalls)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestReconcileStatusMapping(t *testing.T) {
	tests := []struct {
		name              string
		startStatus       string
		startPayment      string
		invoiceStatus     string
		wantStatus        string
		wantPaymentStatus string
		wantWrites        int
	}{
		{
			name:              "expired pending order is cancelled",
			startStatus:       order.StatusPending,
			startPayment:      order.PaymentPending,
			invoiceStatus:     InvoiceExpired,
			wantStatus:        order.StatusCancelled,
			wantPaymentStatus: order.PaymentExpired,
			wantWrites:        1,
		},
		{
			name:              "expiry never cancels a paid order",
			startStatus:       order.StatusPaid,
			startPayment:      order.PaymentPaid,
			invoiceStatus:     InvoiceExpired,
			wantStatus:        order.StatusPaid,
			wantPaymentStatus: order.PaymentPaid,
		},
		{
			name:              "settled after paid updates payment only",
			startStatus:       order.StatusPaid,
			startPayment:      order.PaymentPaid,
			invoiceStatus:     InvoiceSettled,
			wantStatus:        order.StatusPaid,
			wantPaymentStatus: order.PaymentSettled,
			wantWrites:        1,
		},
		{
			name:              "paid never regresses settled",
			startStatus:       order.StatusPaid,
			startPayment:      order.PaymentSettled,
			invoiceStatus:     InvoicePaid,
			wantStatus:        order.StatusPaid,
			wantPaymentStatus: order.PaymentSettled,
		},
		{
			name:              "settled on fulfilled order keeps it fulfilled",
			startStatus:       order.StatusFulfilled,
			startPayment:      order.PaymentPaid,
			invoiceStatus:     InvoiceSettled,
			wantStatus:        order.StatusFulfilled,
			wantPaymentStatus: order.PaymentSettled,
			wantWrites:        1,
		},
		{
			name:              "pending marks the payment pending",
			startStatus:       order.StatusPending,
			startPayment:      order.PaymentUnpaid,
			invoiceStatus:     InvoicePending,
			wantStatus:        order.StatusPending,
			wantPaymentStatus: order.PaymentPending,
			wantWrites:        1,
		},
		{
			name:              "pending never regresses a paid order",
			startStatus:       order.StatusPaid,
			startPayment:      order.PaymentPaid,
			invoiceStatus:     InvoicePending,
			wantStatus:        order.StatusPaid,
			wantPaymentStatus: order.PaymentPaid,
		},
		{
			name:              "payment on a cancelled order is ignored",
			startStatus:       order.StatusCancelled,
			startPayment:      order.PaymentExpired,
			invoiceStatus:     InvoicePaid,
			wantStatus:        order.StatusCancelled,
			wantPaymentStatus: order.PaymentExpired,
		},
		{
			name:              "lower case status is accepted",
			startStatus:       order.StatusPending,
			startPayment:      order.PaymentPending,
			invoiceStatus:     "paid",
			wantStatus:        order.StatusPaid,
			wantPaymentStatus: order.PaymentPaid,
			wantWrites:        1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stored := invoicedOrder(orderOneID, "u1", "inv-1", 115000)
			stored.Status = tt.startStatus
			stored.PaymentStatus = tt.startPayment
			store := newMemOrders(stored)
			rec := NewReconciler(store, discardLogger())

			snapshot := paidSnapshot("inv-1", orderOneID, 115000)
			snapshot.Status = tt.invoiceStatus

			current, err := store.GetByID(context.Background(), orderOneID)
			require.NoError(t, err)

			got, err := rec.Reconcile(context.Background(), current, snapshot)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, got.Status)
			assert.Equal(t, tt.wantPaymentStatus, got.PaymentStatus)
			assert.Equal(t, tt.wantWrites, store.applyCalls)
		})
	}
}

func TestReconcileUnknownStatusIsGatewayError(t *testing.T) {
	stored := invoicedOrder(orderOneID, "u1", "inv-1", 1000)
	store := newMemOrders(stored)
	rec := NewReconciler(store, discardLogger())

	snapshot := paidSnapshot("inv-1", orderOneID, 1000)
	snapshot.Status = "REFUNDED"

	_, err := rec.Reconcile(context.Background(), stored, snapshot)
	require.ErrorIs(t, err, core.ErrGateway)
	assert.Zero(t, store.applyCalls)
}

func TestReconcileConvergesAfterLosingRace(t *testing.T) {
	ctx := context.Background()
	stored := invoicedOrder(orderOneID, "u1", "inv-1", 1000)
	store := newMemOrders(stored)
	rec := NewReconciler(store, discardLogger())

	current, err := store.GetByID(ctx, orderOneID)
	require.NoError(t, err)

	store.beforeApply = func(o *order.Order) {
		o.Status = order.StatusCancelled
		o.PaymentStatus = order.PaymentExpired
	}

	got, err := rec.Reconcile(ctx, current, paidSnapshot("inv-1", orderOneID, 1000))
	require.NoError(t, err)
	assert.Equal(t, order.StatusCancelled, got.Status)
	assert.Equal(t, 1, store.applyCalls)
	assert.Zero(t, store.stockDecrement)
}
