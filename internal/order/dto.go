// AngelaMos | 2026
// dto.go

package order

import (
	"time"
)

type LineRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity"   validate:"required,min=1,max=1000"`
}

type CreateOrderRequest struct {
	Items []LineRequest `json:"items" validate:"required,min=1,max=100,dive"`
}

func (r CreateOrderRequest) Lines() []Line {
	lines := make([]Line, 0, len(r.Items))
	for _, it := range r.Items {
		lines = append(lines, Line{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return lines
}

type ItemResponse struct {
	ProductID     string `json:"product_id"`
	Quantity      int    `json:"quantity"`
	PriceCents    int64  `json:"price_cents"`
	SubtotalCents int64  `json:"subtotal_cents"`
}

type OrderResponse struct {
	ID                   string         `json:"id"`
	UserID               string         `json:"user_id"`
	Status               string         `json:"status"`
	PaymentStatus        string         `json:"payment_status"`
	PaymentChannel       *string        `json:"payment_channel"`
	PaymentInvoiceNumber *string        `json:"payment_invoice_number"`
	PaymentInvoiceURL    *string        `json:"payment_invoice_url"`
	Items                []ItemResponse `json:"items"`
	ShippingCostCents    int64          `json:"shipping_cost_cents"`
	TotalCents           int64          `json:"total_cents"`
	PaidAt               *time.Time     `json:"paid_at"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
}

type PaymentStatusResponse struct {
	OrderID       string `json:"order_id"`
	Status        string `json:"status"`
	PaymentStatus string `json:"payment_status"`
}

type ListOrdersParams struct {
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
	Status   string `json:"status"`
	UserID   string `json:"user_id"`
}

func (p *ListOrdersParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
}

func (p *ListOrdersParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

func ToOrderResponse(o *Order) OrderResponse {
	items := make([]ItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, ItemResponse{
			ProductID:     it.ProductID,
			Quantity:      it.Quantity,
			PriceCents:    it.PriceCents,
			SubtotalCents: it.SubtotalCents(),
		})
	}

	return OrderResponse{
		ID:                   o.ID,
		UserID:               o.UserID,
		Status:               o.Status,
		PaymentStatus:        o.PaymentStatus,
		PaymentChannel:       o.PaymentChannel,
		PaymentInvoiceNumber: o.PaymentInvoiceNumber,
		PaymentInvoiceURL:    o.PaymentInvoiceURL,
		Items:                items,
		ShippingCostCents:    o.ShippingCostCents,
		TotalCents:           o.TotalCents,
		PaidAt:               o.PaidAt,
		CreatedAt:            o.CreatedAt,
		UpdatedAt:            o.UpdatedAt,
	}
}

func ToOrderResponseList(orders []Order) []OrderResponse {
	responses := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		responses = append(responses, ToOrderResponse(&orders[i]))
	}
	return responses
}
