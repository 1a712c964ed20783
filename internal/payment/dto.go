// AngelaMos | 2026
// dto.go

package payment

import (
	"github.com/carterperez-dev/templates/storefront/internal/order"
)

type InvoiceResponse struct {
	OrderID       string `json:"order_id"`
	InvoiceNumber string `json:"invoice_number"`
	InvoiceURL    string `json:"invoice_url"`
	PaymentStatus string `json:"payment_status"`
}

type NotificationResponse struct {
	OrderID       string `json:"order_id"`
	Status        string `json:"status"`
	PaymentStatus string `json:"payment_status"`
}

func toInvoiceResponse(o *order.Order) *InvoiceResponse {
	resp := &InvoiceResponse{
		OrderID:       o.ID,
		InvoiceNumber: o.InvoiceNumber(),
		PaymentStatus: o.PaymentStatus,
	}
	if o.PaymentInvoiceURL != nil {
		resp.InvoiceURL = *o.PaymentInvoiceURL
	}
	return resp
}
