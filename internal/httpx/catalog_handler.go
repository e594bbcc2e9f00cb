package httpx

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mealdrop/go-delivery-orders/internal/catalog"
)

type CatalogService interface {
	ListActiveRestaurants(ctx context.Context) ([]catalog.Restaurant, error)
	GetRestaurant(ctx context.Context, id string) (catalog.Restaurant, error)
	ListDishes(ctx context.Context, restaurantID string) ([]catalog.Dish, error)
}

// CatalogHandler publik: katalog bisa dibrowse tanpa login.
type CatalogHandler struct {
	Catalog CatalogService
}

func (h *CatalogHandler) RegisterPublic(r chi.Router) {
	r.Get("/restaurants", h.listRestaurants)
	r.Get("/restaurants/{id}", h.getRestaurant)
	r.Get("/restaurants/{id}/dishes", h.listDishes)
}

func (h *CatalogHandler) listRestaurants(w http.ResponseWriter, r *http.Request) {
	out, err := h.Catalog.ListActiveRestaurants(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if out == nil {
		out = []catalog.Restaurant{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *CatalogHandler) getRestaurant(w http.ResponseWriter, r *http.Request) {
	rt, err := h.Catalog.GetRestaurant(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rt)
}

func (h *CatalogHandler) listDishes(w http.ResponseWriter, r *http.Request) {
	out, err := h.Catalog.ListDishes(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if out == nil {
		out = []catalog.Dish{}
	}
	writeJSON(w, http.StatusOK, out)
}
