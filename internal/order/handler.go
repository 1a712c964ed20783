// AngelaMos | 2026
// handler.go

package order

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/carterperez-dev/templates/storefront/internal/core"
	"github.com/carterperez-dev/templates/storefront/internal/middleware"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// RegisterRoutes mounts the caller-scoped order endpoints. extra lets
// other packages hang routes under /orders/{orderID}.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
	extra ...func(chi.Router),
) {
	r.Route("/orders", func(r chi.Router) {
		r.Use(authenticator)

		r.Post("/", h.Create)
		r.Get("/", h.List)

		r.Route("/{orderID}", func(r chi.Router) {
			r.Use(requireOrderID)
			r.Get("/", h.Get)
			r.Get("/payment-status", h.PaymentStatus)

			for _, fn := range extra {
				fn(r)
			}
		})
	})
}

// RegisterAdminRoutes mounts order management under an already gated
// admin router.
func (h *Handler) RegisterAdminRoutes(r chi.Router, extra ...func(chi.Router)) {
	r.Route("/orders", func(r chi.Router) {
		r.Get("/", h.AdminList)

		r.Route("/{orderID}", func(r chi.Router) {
			r.Use(requireOrderID)
			r.Get("/", h.AdminGet)
			r.Post("/cancel", h.Cancel)
			r.Post("/fulfill", h.Fulfill)

			for _, fn := range extra {
				fn(r)
			}
		})
	})
}

// requireOrderID answers 404 for ids that cannot name an order.
func requireOrderID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := uuid.Parse(chi.URLParam(r, "orderID")); err != nil {
			core.NotFound(w, "order")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	userID := middleware.GetUserID(r.Context())

	o, err := h.service.Create(r.Context(), userID, req.Lines())
	if err != nil {
		core.JSONError(w, core.ToAppError(err, "order"))
		return
	}

	core.Created(w, ToOrderResponse(o))
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	params := listParams(r)
	userID := middleware.GetUserID(r.Context())

	orders, total, err := h.service.List(r.Context(), userID, params)
	if err != nil {
		core.JSONError(w, core.ToAppError(err, "order"))
		return
	}

	core.Paginated(w, ToOrderResponseList(orders), params.Page, params.PageSize, total)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	o, err := h.service.Get(r.Context(), userID, chi.URLParam(r, "orderID"))
	if err != nil {
		core.JSONError(w, core.ToAppError(err, "order"))
		return
	}

	core.OK(w, ToOrderResponse(o))
}

func (h *Handler) PaymentStatus(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	status, err := h.service.PaymentStatus(r.Context(), userID, chi.URLParam(r, "orderID"))
	if err != nil {
		core.JSONError(w, core.ToAppError(err, "order"))
		return
	}

	core.OK(w, status)
}

func (h *Handler) AdminList(w http.ResponseWriter, r *http.Request) {
	params := listParams(r)
	params.UserID = r.URL.Query().Get("user_id")

	orders, total, err := h.service.AdminList(r.Context(), params)
	if err != nil {
		core.JSONError(w, core.ToAppError(err, "order"))
		return
	}

	core.Paginated(w, ToOrderResponseList(orders), params.Page, params.PageSize, total)
}

func (h *Handler) AdminGet(w http.ResponseWriter, r *http.Request) {
	o, err := h.service.AdminGet(r.Context(), chi.URLParam(r, "orderID"))
	if err != nil {
		core.JSONError(w, core.ToAppError(err, "order"))
		return
	}

	core.OK(w, ToOrderResponse(o))
}

func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	o, err := h.service.Cancel(r.Context(), chi.URLParam(r, "orderID"))
	if err != nil {
		core.JSONError(w, core.ToAppError(err, "order"))
		return
	}

	core.OK(w, ToOrderResponse(o))
}

func (h *Handler) Fulfill(w http.ResponseWriter, r *http.Request) {
	o, err := h.service.Fulfill(r.Context(), chi.URLParam(r, "orderID"))
	if err != nil {
		core.JSONError(w, core.ToAppError(err, "order"))
		return
	}

	core.OK(w, ToOrderResponse(o))
}

func listParams(r *http.Request) ListOrdersParams {
	params := ListOrdersParams{
		Page:     core.QueryInt(r, "page", 1),
		PageSize: core.QueryInt(r, "page_size", 20),
		Status:   r.URL.Query().Get("status"),
	}
	params.Normalize()
	return params
}
