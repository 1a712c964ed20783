// AngelaMos | 2026
// entity.go

package order

import (
	"time"

	"github.com/carterperez-dev/templates/storefront/internal/shipping"
)

const (
	StatusPending   = "pending"
	StatusPaid      = "paid"
	StatusCancelled = "cancelled"
	StatusFulfilled = "fulfilled"
)

// Payment statuses mirror the gateway's view of the invoice.
const (
	PaymentUnpaid  = "unpaid"
	PaymentPending = "pending"
	PaymentPaid    = "paid"
	PaymentSettled = "settled"
	PaymentExpired = "expired"
)

type Order struct {
	ID                   string     `db:"id"`
	UserID               string     `db:"user_id"`
	Status               string     `db:"status"`
	PaymentStatus        string     `db:"payment_status"`
	PaymentChannel       *string    `db:"payment_channel"`
	PaymentInvoiceNumber *string    `db:"payment_invoice_number"`
	PaymentInvoiceURL    *string    `db:"payment_invoice_url"`
	ShippingCostCents    int64      `db:"shipping_cost_cents"`
	TotalCents           int64      `db:"total_cents"`
	PaidAt               *time.Time `db:"paid_at"`
	CreatedAt            time.Time  `db:"created_at"`
	UpdatedAt            time.Time  `db:"updated_at"`

	Items []Item `db:"-"`
}

type Item struct {
	ID         string `db:"id"`
	OrderID    string `db:"order_id"`
	ProductID  string `db:"product_id"`
	Position   int    `db:"position"`
	Quantity   int    `db:"quantity"`
	PriceCents int64  `db:"price_cents"`
}

func (i Item) SubtotalCents() int64 {
	return int64(i.Quantity) * i.PriceCents
}

// Line is one requested cart entry before prices are known.
type Line struct {
	ProductID string
	Quantity  int
}

var transitions = map[string][]string{
	StatusPending: {StatusPaid, StatusCancelled},
	StatusPaid:    {StatusCancelled, StatusFulfilled},
}

// CanTransition reports whether the lifecycle allows moving from one
// status to another. Staying put is not a transition.
func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func IsTerminal(status string) bool {
	return status == StatusCancelled || status == StatusFulfilled
}

func (o *Order) HasInvoice() bool {
	return o.PaymentInvoiceNumber != nil && *o.PaymentInvoiceNumber != ""
}

func (o *Order) InvoiceNumber() string {
	if o.PaymentInvoiceNumber == nil {
		return ""
	}
	return *o.PaymentInvoiceNumber
}

func TotalQuantity(items []Item) int {
	total := 0
	for _, it := range items {
		total += it.Quantity
	}
	return total
}

// ComputeTotals derives shipping from the final quantity and returns it
// with the grand total: item subtotals plus shipping.
func ComputeTotals(items []Item) (shippingCents, totalCents int64) {
	shippingCents = shipping.Cost(TotalQuantity(items))

	totalCents = shippingCents
	for _, it := range items {
		totalCents += it.SubtotalCents()
	}

	return shippingCents, totalCents
}

// MergeLines folds repeated products into one line, keeping the position
// of the first occurrence.
func MergeLines(lines []Line) []Line {
	merged := make([]Line, 0, len(lines))
	index := make(map[string]int, len(lines))

	for _, l := range lines {
		if i, ok := index[l.ProductID]; ok {
			merged[i].Quantity += l.Quantity
			continue
		}
		index[l.ProductID] = len(merged)
		merged = append(merged, l)
	}

	return merged
}

// PaymentUpdate is one reconciliation write. ToStatus equal to FromStatus
// updates payment fields only.
type PaymentUpdate struct {
	OrderID        string
	FromStatus     string
	ToStatus       string
	PaymentStatus  string
	PaymentChannel *string
}
