// AngelaMos | 2026
// fakes_test.go

package payment

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/carterperez-dev/templates/storefront/internal/core"
	"github.com/carterperez-dev/templates/storefront/internal/order"
)

var errGatewayDown = fmt.Errorf("get_invoice: %w: connection refused", core.ErrGateway)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memOrders enforces the same conditional-update rule as the SQL
// repository: a write applies only while the stored status equals the
// expected one.
type memOrders struct {
	mu     sync.Mutex
	orders map[string]*order.Order

	applyCalls     int
	stockDecrement int

	// beforeApply runs once, ahead of the next ApplyPayment, to simulate a
	// concurrent writer.
	beforeApply func(o *order.Order)
}

func newMemOrders(orders ...*order.Order) *memOrders {
	m := &memOrders{orders: map[string]*order.Order{}}
	for _, o := range orders {
		m.orders[o.ID] = o
	}
	return m
}

func (m *memOrders) GetByID(_ context.Context, id string) (*order.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	o, ok := m.orders[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *memOrders) GetForUser(ctx context.Context, id, userID string) (*order.Order, error) {
	o, err := m.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, core.ErrNotFound
	}
	return o, nil
}

func (m *memOrders) ApplyPayment(_ context.Context, u order.PaymentUpdate) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.applyCalls++
	o := m.orders[u.OrderID]

	if m.beforeApply != nil {
		m.beforeApply(o)
		m.beforeApply = nil
	}

	if o.Status != u.FromStatus {
		return false, nil
	}

	o.Status = u.ToStatus
	o.PaymentStatus = u.PaymentStatus
	if u.PaymentChannel != nil {
		o.PaymentChannel = u.PaymentChannel
	}
	if u.ToStatus == order.StatusPaid && u.FromStatus != order.StatusPaid {
		m.stockDecrement++
	}
	return true, nil
}

func (m *memOrders) SetInvoice(_ context.Context, id, number, url string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	o := m.orders[id]
	if o.Status != order.StatusPending || o.HasInvoice() {
		return false, nil
	}
	o.PaymentInvoiceNumber = &number
	o.PaymentInvoiceURL = &url
	o.PaymentStatus = order.PaymentPending
	return true, nil
}

func (m *memOrders) ListPendingWithInvoice(_ context.Context, limit int) ([]order.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []order.Order
	for _, o := range m.orders {
		if o.Status == order.StatusPending && o.HasInvoice() && len(out) < limit {
			out = append(out, *o)
		}
	}
	return out, nil
}

type fakeGateway struct {
	mu       sync.Mutex
	invoices map[string]*Invoice
	created  []InvoiceRequest
	nextID   int
	failGet  map[string]error
	failNext error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		invoices: map[string]*Invoice{},
		failGet:  map[string]error{},
	}
}

func (g *fakeGateway) CreateInvoice(_ context.Context, req InvoiceRequest) (*Invoice, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.failNext != nil {
		err := g.failNext
		g.failNext = nil
		return nil, err
	}

	g.nextID++
	g.created = append(g.created, req)
	id := "inv-" + strconv.Itoa(g.nextID)
	inv := &Invoice{
		ID:         id,
		ExternalID: req.OrderID,
		Status:     InvoicePending,
		Amount:     CentsToAmount(req.AmountCents),
		InvoiceURL: "https://pay.example/" + id,
	}
	g.invoices[id] = inv
	return inv, nil
}

func (g *fakeGateway) GetInvoice(_ context.Context, id string) (*Invoice, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err, ok := g.failGet[id]; ok {
		return nil, err
	}
	inv, ok := g.invoices[id]
	if !ok {
		return nil, core.ErrGateway
	}
	cp := *inv
	return &cp, nil
}

func (g *fakeGateway) settle(id, status string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.invoices[id].Status = status
}

const (
	orderOneID = "4f2f9c4e-58f4-4b45-9a55-3f0cf3a0a001"
	orderTwoID = "4f2f9c4e-58f4-4b45-9a55-3f0cf3a0a002"
)

func pendingOrder(id, userID string, totalCents int64) *order.Order {
	return &order.Order{
		ID:            id,
		UserID:        userID,
		Status:        order.StatusPending,
		PaymentStatus: order.PaymentUnpaid,
		TotalCents:    totalCents,
		Items:         []order.Item{},
	}
}

func invoicedOrder(id, userID, invoiceID string, totalCents int64) *order.Order {
	o := pendingOrder(id, userID, totalCents)
	o.PaymentInvoiceNumber = &invoiceID
	o.PaymentStatus = order.PaymentPending
	return o
}

func paidSnapshot(invoiceID, orderID string, totalCents int64) *Invoice {
	amount := CentsToAmount(totalCents)
	return &Invoice{
		ID:             invoiceID,
		ExternalID:     orderID,
		Status:         InvoicePaid,
		Amount:         amount,
		PaidAmount:     &amount,
		PaymentChannel: "BCA",
	}
}

func decimalPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}
