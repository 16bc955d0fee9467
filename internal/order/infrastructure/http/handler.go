package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	validatorv10 "github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmehra2102/chipstore/internal/order/application"
	"github.com/dmehra2102/chipstore/internal/order/domain"
	"github.com/dmehra2102/chipstore/pkg/httpx"
	"github.com/dmehra2102/chipstore/pkg/idempotency"
	"github.com/dmehra2102/chipstore/pkg/validation"
)

var corsAllowHeaders = strings.Join([]string{
	"authorization", "x-client-info", "apikey", "content-type", strings.ToLower(idempotency.HeaderKey),
}, ", ")

type Handler struct {
	log      *slog.Logger
	service  *application.Service
	idem     *idempotency.Store
	validate *validatorv10.Validate
	tracer   trace.Tracer
}

// NewHandler builds the order endpoint. idem may be nil, in which case the
// Idempotency-Key header is ignored.
func NewHandler(log *slog.Logger, service *application.Service, idem *idempotency.Store) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		idem:     idem,
		validate: validation.New(),
		tracer:   otel.Tracer("order-http"),
	}
}

type placeOrderReq struct {
	CustomerName string            `json:"customer_name" validate:"required"`
	Phone        string            `json:"phone" validate:"required"`
	Email        string            `json:"email" validate:"omitempty,email"`
	Address      string            `json:"address" validate:"required"`
	Products     []domain.LineItem `json:"products" validate:"required,min=1,dive"`
	TotalAmount  int64             `json:"total_amount" validate:"gt=0"`
	DeliveryNote string            `json:"delivery_note"`
	UserID       *string           `json:"user_id" validate:"omitempty,uuid"`
}

type placeOrderResp struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Order   domain.Order `json:"order"`
	OrderID string       `json:"order_id"`
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(cors)
	r.Options("/", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	if h.idem != nil {
		r.With(idempotency.Middleware(h.log, h.idem, "orders")).Post("/", h.placeOrder)
	} else {
		r.Post("/", h.placeOrder)
	}
	return r
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", corsAllowHeaders)
		w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "PlaceOrder")
	defer span.End()

	var req placeOrderReq
	if err := validation.DecodeAndValidate(w, r, &req, h.validate); err != nil {
		span.RecordError(err)
		return
	}

	p := domain.Placement{
		CustomerName: req.CustomerName,
		Phone:        req.Phone,
		Email:        req.Email,
		Address:      req.Address,
		Products:     req.Products,
		TotalAmount:  req.TotalAmount,
		DeliveryNote: req.DeliveryNote,
	}
	if req.UserID != nil {
		p.UserID = *req.UserID
	}

	o, err := h.service.ProcessOrder(ctx, p)
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, application.ErrInvalidOrder) {
			httpx.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.log.Error("error processing order", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	span.SetAttributes(attribute.String("order_id", o.ID), attribute.Int64("total_amount", o.TotalAmount))

	httpx.WriteJSON(w, http.StatusOK, placeOrderResp{
		Success: true,
		Message: "Order received successfully",
		Order:   o,
		OrderID: o.ID,
	})
}
