package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mealdrop/go-delivery-orders/internal/auth"
	"github.com/mealdrop/go-delivery-orders/internal/orders"
)

type OrderService interface {
	Create(ctx context.Context, ident auth.Identity, restaurantID, traceID string) (orders.Order, error)
	AddItem(ctx context.Context, ident auth.Identity, orderID, dishID string, qty int) (orders.Item, error)
	SetItemQuantity(ctx context.Context, ident auth.Identity, orderID, dishID string, qty int) (orders.Item, error)
	RemoveItem(ctx context.Context, ident auth.Identity, orderID, dishID string) error
	ChangeStatus(ctx context.Context, ident auth.Identity, orderID, rawStatus, traceID string) (orders.Order, error)
	Get(ctx context.Context, ident auth.Identity, orderID string) (orders.Order, error)
	ListForUser(ctx context.Context, ident auth.Identity) ([]orders.Order, error)
	GetStatus(ctx context.Context, ident auth.Identity, orderID string) (orders.Status, error)
}

type OrdersHandler struct {
	Svc OrderService
}

func (h *OrdersHandler) RegisterProtected(r chi.Router) {
	r.Post("/orders", h.create)
	r.Get("/orders", h.list)
	r.Get("/orders/{id}", h.get)
	r.Get("/orders/{id}/status", h.getStatus)
	r.Put("/orders/{id}/status", h.changeStatus)
	r.Post("/orders/{id}/items", h.addItem)
	r.Put("/orders/{id}/items/{dishID}", h.setItemQuantity)
	r.Delete("/orders/{id}/items/{dishID}", h.removeItem)
}

type createOrderReq struct {
	RestaurantID string `json:"restaurant_id"`
}

func (h *OrdersHandler) create(w http.ResponseWriter, r *http.Request) {
	ident, ok := auth.FromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing identity"})
		return
	}
	var req createOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.Svc.Create(ctx, ident, req.RestaurantID, r.Header.Get("X-Request-Id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, o)
}

type addItemReq struct {
	DishID   string `json:"dish_id"`
	Quantity int    `json:"quantity"`
}

func (h *OrdersHandler) addItem(w http.ResponseWriter, r *http.Request) {
	ident, ok := auth.FromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing identity"})
		return
	}
	var req addItemReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	it, err := h.Svc.AddItem(ctx, ident, chi.URLParam(r, "id"), req.DishID, req.Quantity)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, it)
}

type setQuantityReq struct {
	Quantity int `json:"quantity"`
}

func (h *OrdersHandler) setItemQuantity(w http.ResponseWriter, r *http.Request) {
	ident, ok := auth.FromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing identity"})
		return
	}
	var req setQuantityReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	it, err := h.Svc.SetItemQuantity(ctx, ident, chi.URLParam(r, "id"), chi.URLParam(r, "dishID"), req.Quantity)
	if err != nil {
		writeError(w, err)
		return
	}
	if it.Quantity == 0 {
		writeJSON(w, http.StatusOK, map[string]any{"dish_id": it.DishID, "removed": true})
		return
	}
	writeJSON(w, http.StatusOK, it)
}

func (h *OrdersHandler) removeItem(w http.ResponseWriter, r *http.Request) {
	ident, ok := auth.FromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing identity"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	dishID := chi.URLParam(r, "dishID")
	if err := h.Svc.RemoveItem(ctx, ident, chi.URLParam(r, "id"), dishID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"dish_id": dishID, "removed": true})
}

type changeStatusReq struct {
	Status string `json:"status"`
}

func (h *OrdersHandler) changeStatus(w http.ResponseWriter, r *http.Request) {
	ident, ok := auth.FromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing identity"})
		return
	}
	var req changeStatusReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.Svc.ChangeStatus(ctx, ident, chi.URLParam(r, "id"), req.Status, r.Header.Get("X-Request-Id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) list(w http.ResponseWriter, r *http.Request) {
	ident, ok := auth.FromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing identity"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	out, err := h.Svc.ListForUser(ctx, ident)
	if err != nil {
		writeError(w, err)
		return
	}
	if out == nil {
		out = []orders.Order{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *OrdersHandler) get(w http.ResponseWriter, r *http.Request) {
	ident, ok := auth.FromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing identity"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	o, err := h.Svc.Get(ctx, ident, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) getStatus(w http.ResponseWriter, r *http.Request) {
	ident, ok := auth.FromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing identity"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	st, err := h.Svc.GetStatus(ctx, ident, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": string(st)})
}
