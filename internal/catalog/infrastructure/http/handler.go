package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmehra2102/chipstore/internal/catalog/domain"
	"github.com/dmehra2102/chipstore/pkg/httpx"
)

type Handler struct {
	log     *slog.Logger
	catalog *domain.Catalog
}

func NewHandler(log *slog.Logger, catalog *domain.Catalog) *Handler {
	return &Handler{log: log, catalog: catalog}
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.listProducts)
	r.Get("/{id}", h.getProduct)
	return r
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	products := h.catalog.Filter(domain.Query{
		Type:         domain.ProductType(q.Get("type")),
		Size:         domain.Size(q.Get("size")),
		Sort:         domain.SortOption(q.Get("sort")),
		FeaturedOnly: q.Get("featured") == "true",
	})
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"products": products})
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	p, ok := h.catalog.Get(chi.URLParam(r, "id"))
	if !ok {
		httpx.WriteError(w, http.StatusNotFound, "product not found")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, p)
}
