// AngelaMos | 2026
// service.go

package order

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/google/uuid"

	"github.com/carterperez-dev/templates/storefront/internal/core"
)

// CheckoutEnabledSetting names the setting that closes checkout when set
// to a false value.
const CheckoutEnabledSetting = "checkout.enabled"

type SettingReader interface {
	Lookup(ctx context.Context, key string) (string, bool, error)
}

type Service struct {
	repo     Repository
	settings SettingReader
	logger   *slog.Logger
}

func NewService(
	repo Repository,
	settings SettingReader,
	logger *slog.Logger,
) *Service {
	return &Service{repo: repo, settings: settings, logger: logger}
}

func (s *Service) Create(
	ctx context.Context,
	userID string,
	lines []Line,
) (*Order, error) {
	if err := s.checkoutOpen(ctx); err != nil {
		return nil, err
	}

	o := &Order{
		ID:     uuid.New().String(),
		UserID: userID,
	}

	if err := s.repo.Create(ctx, o, MergeLines(lines)); err != nil {
		return nil, err
	}

	core.OrdersCreated.Inc()
	s.logger.InfoContext(ctx, "order created",
		"order_id", o.ID,
		"user_id", userID,
		"total_cents", o.TotalCents,
	)

	return o, nil
}

func (s *Service) checkoutOpen(ctx context.Context) error {
	value, ok, err := s.settings.Lookup(ctx, CheckoutEnabledSetting)
	if err != nil {
		return fmt.Errorf("read checkout setting: %w", err)
	}
	if !ok {
		return nil
	}

	enabled, err := strconv.ParseBool(value)
	if err != nil {
		s.logger.WarnContext(ctx, "ignoring malformed setting",
			"key", CheckoutEnabledSetting,
			"value", value,
		)
		return nil
	}
	if !enabled {
		return core.ConflictError("checkout is currently closed")
	}

	return nil
}

func (s *Service) Get(ctx context.Context, userID, id string) (*Order, error) {
	return s.repo.GetForUser(ctx, id, userID)
}

func (s *Service) List(
	ctx context.Context,
	userID string,
	params ListOrdersParams,
) ([]Order, int, error) {
	params.UserID = userID
	return s.listOrders(ctx, params)
}

// PaymentStatus reads the order's statuses without contacting the gateway.
func (s *Service) PaymentStatus(
	ctx context.Context,
	userID, id string,
) (*PaymentStatusResponse, error) {
	o, err := s.repo.GetForUser(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	return &PaymentStatusResponse{
		OrderID:       o.ID,
		Status:        o.Status,
		PaymentStatus: o.PaymentStatus,
	}, nil
}

func (s *Service) AdminGet(ctx context.Context, id string) (*Order, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) AdminList(
	ctx context.Context,
	params ListOrdersParams,
) ([]Order, int, error) {
	return s.listOrders(ctx, params)
}

func (s *Service) listOrders(
	ctx context.Context,
	params ListOrdersParams,
) ([]Order, int, error) {
	if params.Status != "" && !validStatus(params.Status) {
		return nil, 0, core.ValidationError("unknown order status " + params.Status)
	}

	return s.repo.List(ctx, params)
}

func (s *Service) Cancel(ctx context.Context, id string) (*Order, error) {
	return s.moveTo(ctx, id, StatusCancelled)
}

func (s *Service) Fulfill(ctx context.Context, id string) (*Order, error) {
	return s.moveTo(ctx, id, StatusFulfilled)
}

func (s *Service) Stats(ctx context.Context) (map[string]int, error) {
	return s.repo.CountByStatus(ctx)
}

// moveTo applies an administrative transition. Repeating it once the order
// is already in the target status succeeds without writing.
func (s *Service) moveTo(ctx context.Context, id, to string) (*Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if o.Status == to {
		return o, nil
	}

	if !CanTransition(o.Status, to) {
		return nil, core.ConflictError(
			fmt.Sprintf("order is %s and cannot become %s", o.Status, to),
		)
	}

	ok, err := s.repo.Transition(ctx, id, o.Status, to)
	if err != nil {
		return nil, err
	}

	fresh, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !ok && fresh.Status != to {
		return nil, core.ConflictError(
			fmt.Sprintf("order changed to %s concurrently", fresh.Status),
		)
	}

	s.logger.InfoContext(ctx, "order status changed",
		"order_id", id,
		"from", o.Status,
		"to", fresh.Status,
	)

	return fresh, nil
}

func validStatus(status string) bool {
	switch status {
	case StatusPending, StatusPaid, StatusCancelled, StatusFulfilled:
		return true
	}
	return false
}
