// AngelaMos | 2026
// gateway.go

package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/templates/storefront/internal/config"
	"github.com/carterperez-dev/templates/storefront/internal/core"
)

// Invoice statuses as reported by the gateway.
const (
	InvoicePending = "PENDING"
	InvoicePaid    = "PAID"
	InvoiceSettled = "SETTLED"
	InvoiceExpired = "EXPIRED"
)

// Invoice is the gateway's view of a charge. It is also the body of the
// gateway's asynchronous notifications.
type Invoice struct {
	ID             string           `json:"id"              validate:"required"`
	ExternalID     string           `json:"external_id"     validate:"required"`
	Status         string           `json:"status"          validate:"required"`
	Amount         decimal.Decimal  `json:"amount"`
	PaidAmount     *decimal.Decimal `json:"paid_amount,omitempty"`
	PaymentChannel string           `json:"payment_channel,omitempty"`
	InvoiceURL     string           `json:"invoice_url,omitempty"`
	Currency       string           `json:"currency,omitempty"`
}

type InvoiceRequest struct {
	OrderID     string
	AmountCents int64
	PayerEmail  string
	Description string
}

type Gateway interface {
	CreateInvoice(ctx context.Context, req InvoiceRequest) (*Invoice, error)
	GetInvoice(ctx context.Context, id string) (*Invoice, error)
}

// Client talks to an invoice API authenticated with the secret key as the
// basic-auth user name.
type Client struct {
	baseURL         string
	secretKey       string
	currency        string
	invoiceDuration time.Duration
	http            *http.Client
}

func NewClient(cfg config.GatewayConfig) *Client {
	return &Client{
		baseURL:         strings.TrimRight(cfg.BaseURL, "/"),
		secretKey:       cfg.SecretKey,
		currency:        cfg.Currency,
		invoiceDuration: cfg.InvoiceDuration,
		http: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

type createInvoiceBody struct {
	ExternalID      string      `json:"external_id"`
	Amount          json.Number `json:"amount"`
	Currency        string      `json:"currency,omitempty"`
	PayerEmail      string      `json:"payer_email,omitempty"`
	Description     string      `json:"description,omitempty"`
	InvoiceDuration int64       `json:"invoice_duration,omitempty"`
}

func (c *Client) CreateInvoice(
	ctx context.Context,
	req InvoiceRequest,
) (*Invoice, error) {
	body := createInvoiceBody{
		ExternalID:      req.OrderID,
		Amount:          json.Number(CentsToAmount(req.AmountCents).StringFixed(2)),
		Currency:        c.currency,
		PayerEmail:      req.PayerEmail,
		Description:     req.Description,
		InvoiceDuration: int64(c.invoiceDuration / time.Second),
	}

	var inv Invoice
	if err := c.do(ctx, "create_invoice", http.MethodPost, "/v2/invoices", body, &inv); err != nil {
		return nil, err
	}

	return &inv, nil
}

func (c *Client) GetInvoice(ctx context.Context, id string) (*Invoice, error) {
	var inv Invoice
	path := "/v2/invoices/" + url.PathEscape(id)
	if err := c.do(ctx, "get_invoice", http.MethodGet, path, nil, &inv); err != nil {
		return nil, err
	}

	return &inv, nil
}

// do sends one request. Transport failures, timeouts, non-2xx answers and
// undecodable bodies all wrap core.ErrGateway so callers can retry later.
func (c *Client) do(
	ctx context.Context,
	operation, method, path string,
	in, out any,
) (err error) {
	ctx, span := core.StartSpan(ctx, "gateway."+operation,
		attribute.String("http.method", method),
	)
	defer span.End()

	start := time.Now()
	defer func() {
		result := "ok"
		if err != nil {
			result = "error"
			core.SetSpanError(ctx, err)
		}
		core.GatewayRequestDuration.
			WithLabelValues(operation, result).
			Observe(time.Since(start).Seconds())
	}()

	var reader io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", operation, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build %s request: %w", operation, err)
	}
	req.SetBasicAuth(c.secretKey, "")
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w: %w", operation, core.ErrGateway, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512)) //nolint:errcheck
		return fmt.Errorf("%s: %w: status %d: %s",
			operation, core.ErrGateway, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(out); err != nil {
		return fmt.Errorf("%s: %w: decode response: %w", operation, core.ErrGateway, err)
	}

	return nil
}

// CentsToAmount converts integer minor units into the gateway's decimal
// major units.
func CentsToAmount(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// AmountToCents converts a gateway amount to minor units. Amounts with
// sub-cent precision are rejected rather than rounded.
func AmountToCents(amount decimal.Decimal) (int64, error) {
	shifted := amount.Shift(2)
	if !shifted.Equal(shifted.Truncate(0)) {
		return 0, fmt.Errorf("amount %s has sub-cent precision: %w", amount, core.ErrIntegrity)
	}
	return shifted.IntPart(), nil
}
