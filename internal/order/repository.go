// AngelaMos | 2026
// repository.go

package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/templates/storefront/internal/core"
)

type Repository interface {
	Create(ctx context.Context, o *Order, lines []Line) error
	GetByID(ctx context.Context, id string) (*Order, error)
	GetForUser(ctx context.Context, id, userID string) (*Order, error)
	List(ctx context.Context, params ListOrdersParams) ([]Order, int, error)
	ListPendingWithInvoice(ctx context.Context, limit int) ([]Order, error)
	Transition(ctx context.Context, id, from, to string) (bool, error)
	ApplyPayment(ctx context.Context, update PaymentUpdate) (bool, error)
	SetInvoice(ctx context.Context, id, number, url string) (bool, error)
	CountByStatus(ctx context.Context) (map[string]int, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const orderColumns = `id, user_id, status, payment_status, payment_channel,
	payment_invoice_number, payment_invoice_url, shipping_cost_cents,
	total_cents, paid_at, created_at, updated_at`

const itemColumns = `id, order_id, product_id, position, quantity, price_cents`

type productPrice struct {
	ID         string `db:"id"`
	PriceCents int64  `db:"price_cents"`
}

// Create prices the lines from the products table and writes the order,
// its items and its totals in one transaction. Lines must already be
// merged so each product appears once.
func (r *repository) Create(ctx context.Context, o *Order, lines []Line) error {
	if len(lines) == 0 {
		return core.ValidationError("order must contain at least one item")
	}

	ids := make([]string, 0, len(lines))
	for _, l := range lines {
		if l.Quantity < 1 {
			return core.ValidationError("quantity must be at least 1")
		}
		ids = append(ids, l.ProductID)
	}

	return core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query, args, err := sqlx.In(
			`SELECT id, price_cents FROM products WHERE id IN (?) FOR SHARE`,
			ids,
		)
		if err != nil {
			return fmt.Errorf("build price query: %w", err)
		}

		var prices []productPrice
		if err := tx.SelectContext(ctx, &prices, tx.Rebind(query), args...); err != nil {
			return fmt.Errorf("load prices: %w", err)
		}

		priceOf := make(map[string]int64, len(prices))
		for _, p := range prices {
			priceOf[p.ID] = p.PriceCents
		}

		items := make([]Item, 0, len(lines))
		for i, l := range lines {
			price, ok := priceOf[l.ProductID]
			if !ok {
				return core.ValidationError("unknown product " + l.ProductID)
			}
			items = append(items, Item{
				ID:         uuid.New().String(),
				OrderID:    o.ID,
				ProductID:  l.ProductID,
				Position:   i,
				Quantity:   l.Quantity,
				PriceCents: price,
			})
		}

		o.Status = StatusPending
		o.PaymentStatus = PaymentUnpaid
		o.ShippingCostCents, o.TotalCents = ComputeTotals(items)

		err = tx.QueryRowxContext(ctx, `
			INSERT INTO orders (
				id, user_id, status, payment_status,
				shipping_cost_cents, total_cents
			) VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING created_at, updated_at`,
			o.ID,
			o.UserID,
			o.Status,
			o.PaymentStatus,
			o.ShippingCostCents,
			o.TotalCents,
		).Scan(&o.CreatedAt, &o.UpdatedAt)
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		for _, it := range items {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO order_items (
					id, order_id, product_id, position, quantity, price_cents
				) VALUES ($1, $2, $3, $4, $5, $6)`,
				it.ID,
				it.OrderID,
				it.ProductID,
				it.Position,
				it.Quantity,
				it.PriceCents,
			); err != nil {
				return fmt.Errorf("insert order item: %w", err)
			}
		}

		o.Items = items
		return nil
	})
}

func (r *repository) GetByID(ctx context.Context, id string) (*Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	return r.getOne(ctx, query, id)
}

// GetForUser hides orders of other users behind core.ErrNotFound.
func (r *repository) GetForUser(
	ctx context.Context,
	id, userID string,
) (*Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1 AND user_id = $2`
	return r.getOne(ctx, query, id, userID)
}

func (r *repository) getOne(
	ctx context.Context,
	query string,
	args ...any,
) (*Order, error) {
	var o Order
	err := r.db.GetContext(ctx, &o, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get order: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}

	orders := []Order{o}
	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}

	return &orders[0], nil
}

func (r *repository) List(
	ctx context.Context,
	params ListOrdersParams,
) ([]Order, int, error) {
	params.Normalize()

	conditions := []string{"TRUE"}
	var args []any
	argIdx := 1

	if params.UserID != "" {
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", argIdx))
		args = append(args, params.UserID)
		argIdx++
	}

	if params.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, params.Status)
		argIdx++
	}

	whereClause := strings.Join(conditions, " AND ")

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM orders WHERE %s", whereClause)
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM orders
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`,
		orderColumns, whereClause, argIdx, argIdx+1)

	args = append(args, params.PageSize, params.Offset())

	orders := []Order{}
	if err := r.db.SelectContext(ctx, &orders, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}

	if err := r.attachItems(ctx, orders); err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

// ListPendingWithInvoice returns the oldest-updated pending orders that
// already have an invoice, the candidates for a reconciliation sweep.
func (r *repository) ListPendingWithInvoice(
	ctx context.Context,
	limit int,
) ([]Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE status = $1 AND payment_invoice_number IS NOT NULL
		ORDER BY updated_at ASC
		LIMIT $2`

	orders := []Order{}
	if err := r.db.SelectContext(ctx, &orders, query, StatusPending, limit); err != nil {
		return nil, fmt.Errorf("list pending orders: %w", err)
	}

	return orders, nil
}

func (r *repository) attachItems(ctx context.Context, orders []Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]string, 0, len(orders))
	byID := make(map[string]int, len(orders))
	for i := range orders {
		orders[i].Items = []Item{}
		ids = append(ids, orders[i].ID)
		byID[orders[i].ID] = i
	}

	query, args, err := sqlx.In(
		`SELECT `+itemColumns+` FROM order_items WHERE order_id IN (?) ORDER BY order_id, position`,
		ids,
	)
	if err != nil {
		return fmt.Errorf("build items query: %w", err)
	}

	var items []Item
	if err := r.db.SelectContext(ctx, &items, r.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("load order items: %w", err)
	}

	for _, it := range items {
		if i, ok := byID[it.OrderID]; ok {
			orders[i].Items = append(orders[i].Items, it)
		}
	}

	return nil
}

// Transition moves the order from one status to another only if it is
// still in from. It reports false when the precondition no longer holds.
func (r *repository) Transition(
	ctx context.Context,
	id, from, to string,
) (bool, error) {
	if !CanTransition(from, to) {
		return false, fmt.Errorf("transition %s to %s: %w", from, to, core.ErrConflict)
	}
	if to == StatusPaid {
		return r.ApplyPayment(ctx, PaymentUpdate{
			OrderID:       id,
			FromStatus:    from,
			ToStatus:      to,
			PaymentStatus: PaymentPaid,
		})
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2`,
		id, from, to,
	)
	if err != nil {
		return false, fmt.Errorf("transition order: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("transition order: %w", err)
	}

	return rows == 1, nil
}

// ApplyPayment writes payment fields and the optional status change as one
// conditional update. Entering paid also stamps paid_at and takes the
// items out of stock inside the same transaction, so a second attempt that
// loses the status check cannot decrement again.
func (r *repository) ApplyPayment(
	ctx context.Context,
	u PaymentUpdate,
) (bool, error) {
	if u.ToStatus != u.FromStatus && !CanTransition(u.FromStatus, u.ToStatus) {
		return false, fmt.Errorf(
			"apply payment %s to %s: %w",
			u.FromStatus, u.ToStatus, core.ErrConflict,
		)
	}

	enteringPaid := u.ToStatus == StatusPaid && u.FromStatus != StatusPaid
	applied := false

	err := core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE orders
			SET status = $3,
				payment_status = $4,
				payment_channel = COALESCE($5, payment_channel),
				paid_at = CASE WHEN $6 THEN NOW() ELSE paid_at END,
				updated_at = NOW()
			WHERE id = $1 AND status = $2`,
			u.OrderID,
			u.FromStatus,
			u.ToStatus,
			u.PaymentStatus,
			u.PaymentChannel,
			enteringPaid,
		)
		if err != nil {
			return fmt.Errorf("apply payment: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("apply payment: %w", err)
		}
		if rows == 0 {
			return nil
		}

		if enteringPaid {
			if _, err := tx.ExecContext(ctx, `
				UPDATE products p
				SET stock = p.stock - oi.quantity
				FROM order_items oi
				WHERE oi.order_id = $1 AND oi.product_id = p.id`,
				u.OrderID,
			); err != nil {
				return fmt.Errorf("decrement stock: %w", err)
			}
		}

		applied = true
		return nil
	})
	if err != nil {
		return false, err
	}

	return applied, nil
}

// SetInvoice attaches the gateway invoice to a pending order that has none.
// It reports false when another request attached one first.
func (r *repository) SetInvoice(
	ctx context.Context,
	id, number, url string,
) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET payment_invoice_number = $2,
			payment_invoice_url = $3,
			payment_status = $4,
			updated_at = NOW()
		WHERE id = $1
			AND status = $5
			AND payment_invoice_number IS NULL`,
		id, number, url, PaymentPending, StatusPending,
	)
	if err != nil {
		return false, fmt.Errorf("set invoice: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("set invoice: %w", err)
	}

	return rows == 1, nil
}

func (r *repository) CountByStatus(ctx context.Context) (map[string]int, error) {
	var rows []struct {
		Status string `db:"status"`
		Count  int    `db:"count"`
	}

	if err := r.db.SelectContext(ctx, &rows,
		`SELECT status, COUNT(*) AS count FROM orders GROUP BY status`,
	); err != nil {
		return nil, fmt.Errorf("count orders by status: %w", err)
	}

	counts := map[string]int{
		StatusPending:   0,
		StatusPaid:      0,
		StatusCancelled: 0,
		StatusFulfilled: 0,
	}
	for _, row := range rows {
		counts[row.Status] = row.Count
	}

	return counts, nil
}
