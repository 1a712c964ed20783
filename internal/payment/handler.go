// AngelaMos | 2026
// handler.go

package payment

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/templates/storefront/internal/core"
	"github.com/carterperez-dev/templates/storefront/internal/middleware"
	"github.com/carterperez-dev/templates/storefront/internal/order"
)

const (
	CallbackTokenHeader = "X-Callback-Token"
	maxNotificationSize = 64 << 10
)

type Handler struct {
	service       *Service
	callbackToken string
	logger        *slog.Logger
	validator     *validator.Validate
}

func NewHandler(service *Service, callbackToken string, logger *slog.Logger) *Handler {
	return &Handler{
		service:       service,
		callbackToken: callbackToken,
		logger:        logger,
		validator:     validator.New(validator.WithRequiredStructEnabled()),
	}
}

// RegisterWebhook mounts the public gateway notification endpoint.
func (h *Handler) RegisterWebhook(r chi.Router) {
	r.Post("/payments/notifications", h.Notification)
}

// OrderRoutes hangs under /orders/{orderID} for the order's owner.
func (h *Handler) OrderRoutes(r chi.Router) {
	r.Post("/invoice", h.CreateInvoice)
	r.Post("/reconcile", h.Reconcile)
}

// AdminOrderRoutes hangs under /admin/orders/{orderID}.
func (h *Handler) AdminOrderRoutes(r chi.Router) {
	r.Post("/reconcile", h.AdminReconcile)
}

func (h *Handler) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	inv, err := h.service.CreateInvoice(
		ctx,
		middleware.GetUserID(ctx),
		middleware.GetUserEmail(ctx),
		chi.URLParam(r, "orderID"),
	)
	if err != nil {
		core.JSONError(w, core.ToAppError(err, "order"))
		return
	}

	core.OK(w, inv)
}

func (h *Handler) Reconcile(w http.ResponseWriter, r *http.Request) {
	o, err := h.service.ReconcileForUser(
		r.Context(),
		middleware.GetUserID(r.Context()),
		chi.URLParam(r, "orderID"),
	)
	if err != nil {
		core.JSONError(w, core.ToAppError(err, "order"))
		return
	}

	core.OK(w, order.ToOrderResponse(o))
}

func (h *Handler) AdminReconcile(w http.ResponseWriter, r *http.Request) {
	o, err := h.service.ReconcileAny(r.Context(), chi.URLParam(r, "orderID"))
	if err != nil {
		core.JSONError(w, core.ToAppError(err, "order"))
		return
	}

	core.OK(w, order.ToOrderResponse(o))
}

// Notification accepts the gateway's invoice callback. An empty configured
// token rejects every delivery.
func (h *Handler) Notification(w http.ResponseWriter, r *http.Request) {
	token := r.Header.Get(CallbackTokenHeader)
	if h.callbackToken == "" || !core.ConstantTimeEquals(token, h.callbackToken) {
		h.logger.WarnContext(r.Context(), "rejected payment notification",
			"remote_addr", r.RemoteAddr,
		)
		core.Unauthorized(w, "invalid callback token")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxNotificationSize)

	var inv Invoice
	if err := json.NewDecoder(r.Body).Decode(&inv); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(inv); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	o, err := h.service.HandleNotification(r.Context(), &inv)
	if err != nil {
		core.JSONError(w, core.ToAppError(err, "order"))
		return
	}

	core.OK(w, NotificationResponse{
		OrderID:       o.ID,
		Status:        o.Status,
		PaymentStatus: o.PaymentStatus,
	})
}
