package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmehra2102/chipstore/internal/order/application"
	"github.com/dmehra2102/chipstore/internal/order/domain"
	"github.com/dmehra2102/chipstore/pkg/httpx"
)

type updateStatusReq struct {
	Status string `json:"status"`
}

// AdminRoutes serves the order management view. Callers mount it behind an
// admin-only guard.
func (h *Handler) AdminRoutes() http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.listOrders)
	r.Get("/{id}", h.getOrder)
	r.Patch("/{id}/status", h.updateStatus)
	return r
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.ListOrders(r.Context(), application.ListFilter{
		Status: r.URL.Query().Get("status"),
		Query:  r.URL.Query().Get("q"),
	})
	if err != nil {
		h.adminFail(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.service.GetOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.adminFail(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, o)
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "UpdateOrderStatus")
	defer span.End()

	var req updateStatusReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request_body: "+err.Error())
		return
	}

	o, err := h.service.UpdateStatus(ctx, chi.URLParam(r, "id"), req.Status)
	if err != nil {
		span.RecordError(err)
		h.adminFail(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Order status updated to " + string(o.Status),
		"order":   o,
	})
}

func (h *Handler) adminFail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidStatus):
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrMalformedProducts):
		httpx.WriteError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		h.log.Error("admin order request failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, err.Error())
	}
}
