package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	validatorv10 "github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmehra2102/chipstore/internal/cart/application"
	"github.com/dmehra2102/chipstore/internal/cart/domain"
	catalog "github.com/dmehra2102/chipstore/internal/catalog/domain"
	"github.com/dmehra2102/chipstore/pkg/httpx"
	"github.com/dmehra2102/chipstore/pkg/validation"
)

type Handler struct {
	log      *slog.Logger
	service  *application.Service
	validate *validatorv10.Validate
	tracer   trace.Tracer
}

func NewHandler(log *slog.Logger, service *application.Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validation.New(),
		tracer:   otel.Tracer("cart-http"),
	}
}

type addItemReq struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  *int   `json:"quantity,omitempty"`
}

type updateQuantityReq struct {
	Quantity int `json:"quantity"`
}

// View is the cart as returned to clients.
type View struct {
	Session        string        `json:"session"`
	Items          []domain.Line `json:"items"`
	TotalItems     int           `json:"totalItems"`
	TotalPrice     int64         `json:"totalPrice"`
	FormattedTotal string        `json:"formattedTotal"`
	Message        string        `json:"message,omitempty"`
}

func NewView(session string, c *domain.Cart) View {
	items := c.Lines()
	if items == nil {
		items = []domain.Line{}
	}
	return View{
		Session:        session,
		Items:          items,
		TotalItems:     c.TotalItems(),
		TotalPrice:     c.TotalPrice(),
		FormattedTotal: catalog.FormatCurrency(c.TotalPrice()),
	}
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.getCart)
	r.Delete("/", h.clearCart)
	r.Post("/items", h.addItem)
	r.Patch("/items/{id}", h.updateQuantity)
	r.Delete("/items/{id}", h.removeItem)
	return r
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	session := SessionFromContext(r.Context())
	c, err := h.service.Get(r.Context(), session)
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, NewView(session, c))
}

func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "AddCartItem")
	defer span.End()

	var req addItemReq
	if err := validation.DecodeAndValidate(w, r, &req, h.validate); err != nil {
		return
	}
	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}
	span.SetAttributes(attribute.String("product_id", req.ProductID), attribute.Int("quantity", qty))

	session := SessionFromContext(ctx)
	c, line, err := h.service.AddItem(ctx, session, req.ProductID, qty)
	if err != nil {
		span.RecordError(err)
		h.fail(w, err)
		return
	}

	view := NewView(session, c)
	if line.Quantity == qty {
		view.Message = fmt.Sprintf("%s added to your cart", line.Name)
	} else {
		view.Message = fmt.Sprintf("%s quantity increased to %d", line.Name, line.Quantity)
	}
	httpx.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) updateQuantity(w http.ResponseWriter, r *http.Request) {
	var req updateQuantityReq
	if err := validation.DecodeAndValidate(w, r, &req, h.validate); err != nil {
		return
	}
	session := SessionFromContext(r.Context())
	c, err := h.service.UpdateQuantity(r.Context(), session, chi.URLParam(r, "id"), req.Quantity)
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, NewView(session, c))
}

func (h *Handler) removeItem(w http.ResponseWriter, r *http.Request) {
	session := SessionFromContext(r.Context())
	c, err := h.service.RemoveItem(r.Context(), session, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, NewView(session, c))
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	session := SessionFromContext(r.Context())
	if err := h.service.Clear(r.Context(), session); err != nil {
		h.fail(w, err)
		return
	}
	view := NewView(session, domain.New())
	view.Message = "All items have been removed from your cart"
	httpx.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, application.ErrProductNotFound):
		httpx.WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, application.ErrProductUnavailable):
		httpx.WriteError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrInvalidQuantity):
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
	default:
		h.log.Error("cart request failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, err.Error())
	}
}
