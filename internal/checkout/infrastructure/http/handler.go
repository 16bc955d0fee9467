package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	validatorv10 "github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	carthttp "github.com/dmehra2102/chipstore/internal/cart/infrastructure/http"
	"github.com/dmehra2102/chipstore/internal/checkout/application"
	"github.com/dmehra2102/chipstore/internal/checkout/domain"
	"github.com/dmehra2102/chipstore/pkg/httpx"
	"github.com/dmehra2102/chipstore/pkg/validation"
)

// CustomerFunc resolves the signed-in customer for a request, or nil for a
// guest.
type CustomerFunc func(r *http.Request) *application.Customer

type Handler struct {
	log      *slog.Logger
	service  *application.Service
	customer CustomerFunc
	validate *validatorv10.Validate
	tracer   trace.Tracer
}

func NewHandler(log *slog.Logger, service *application.Service, customer CustomerFunc) *Handler {
	if customer == nil {
		customer = func(*http.Request) *application.Customer { return nil }
	}
	return &Handler{
		log:      log,
		service:  service,
		customer: customer,
		validate: validation.New(),
		tracer:   otel.Tracer("checkout-http"),
	}
}

type shippingReq struct {
	domain.ShippingDetails
	ShippingMethod domain.ShippingMethod `json:"shippingMethod"`
}

type paymentReq struct {
	PaymentMethod domain.PaymentMethod `json:"paymentMethod"`
}

type confirmResp struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	application.Result
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Post("/", h.start)
	r.Get("/", h.view)
	r.Post("/shipping", h.submitShipping)
	r.Post("/payment", h.selectPayment)
	r.Post("/back", h.back)
	r.Post("/confirm", h.confirm)
	return r
}

func (h *Handler) start(w http.ResponseWriter, r *http.Request) {
	v, err := h.service.Start(r.Context(), carthttp.SessionFromContext(r.Context()), h.customer(r))
	h.respond(w, v, err)
}

func (h *Handler) view(w http.ResponseWriter, r *http.Request) {
	v, err := h.service.View(r.Context(), carthttp.SessionFromContext(r.Context()))
	h.respond(w, v, err)
}

func (h *Handler) submitShipping(w http.ResponseWriter, r *http.Request) {
	var req shippingReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request_body: "+err.Error())
		return
	}
	if err := h.validate.Struct(req.ShippingDetails); err != nil {
		httpx.WriteFieldErrors(w, validation.FieldErrors(err))
		return
	}
	v, err := h.service.SubmitShipping(r.Context(), carthttp.SessionFromContext(r.Context()), req.ShippingDetails, req.ShippingMethod)
	h.respond(w, v, err)
}

func (h *Handler) selectPayment(w http.ResponseWriter, r *http.Request) {
	var req paymentReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request_body: "+err.Error())
		return
	}
	v, err := h.service.SelectPayment(r.Context(), carthttp.SessionFromContext(r.Context()), req.PaymentMethod)
	h.respond(w, v, err)
}

func (h *Handler) back(w http.ResponseWriter, r *http.Request) {
	v, err := h.service.Back(r.Context(), carthttp.SessionFromContext(r.Context()))
	h.respond(w, v, err)
}

func (h *Handler) confirm(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ConfirmCheckout")
	defer span.End()

	customer := h.customer(r)
	span.SetAttributes(attribute.Bool("guest", customer == nil))

	res, err := h.service.Confirm(ctx, carthttp.SessionFromContext(ctx), customer)
	if err != nil {
		span.RecordError(err)
		h.fail(w, err)
		return
	}
	span.SetAttributes(attribute.String("order_id", res.OrderID))
	httpx.WriteJSON(w, http.StatusOK, confirmResp{Success: true, Message: "Order Placed Successfully", Result: res})
}

func (h *Handler) respond(w http.ResponseWriter, v application.View, err error) {
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, v)
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrIncompleteShipping),
		errors.Is(err, domain.ErrInvalidShippingMethod),
		errors.Is(err, domain.ErrInvalidPaymentMethod):
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, application.ErrNoCheckout):
		httpx.WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, application.ErrEmptyCart),
		errors.Is(err, domain.ErrWrongStage),
		errors.Is(err, domain.ErrSubmissionInFlight):
		httpx.WriteError(w, http.StatusConflict, err.Error())
	case errors.Is(err, application.ErrSubmissionFailed):
		httpx.WriteError(w, http.StatusBadGateway, err.Error())
	default:
		h.log.Error("checkout request failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, err.Error())
	}
}
