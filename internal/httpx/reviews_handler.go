package httpx

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mealdrop/go-delivery-orders/internal/auth"
	"github.com/mealdrop/go-delivery-orders/internal/reviews"
)

type ReviewService interface {
	CreateRestaurantReview(ctx context.Context, ident auth.Identity, restaurantID string, rating int, comment string) (reviews.Review, error)
	CreateDishReview(ctx context.Context, ident auth.Identity, dishID string, rating int, comment string) (reviews.Review, error)
	ListRestaurantReviews(ctx context.Context, restaurantID string) ([]reviews.Review, error)
	ListDishReviews(ctx context.Context, dishID string) ([]reviews.Review, error)
}

type ReviewsHandler struct {
	Svc ReviewService
}

// Listing publik, submit butuh login.
func (h *ReviewsHandler) RegisterPublic(r chi.Router) {
	r.Get("/restaurants/{id}/reviews", h.listRestaurantReviews)
	r.Get("/dishes/{id}/reviews", h.listDishReviews)
}

func (h *ReviewsHandler) RegisterProtected(r chi.Router) {
	r.Post("/restaurants/{id}/reviews", h.createRestaurantReview)
	r.Post("/dishes/{id}/reviews", h.createDishReview)
}

type createReviewReq struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

func (h *ReviewsHandler) createRestaurantReview(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, func(ctx context.Context, ident auth.Identity, req createReviewReq) (reviews.Review, error) {
		return h.Svc.CreateRestaurantReview(ctx, ident, chi.URLParam(r, "id"), req.Rating, req.Comment)
	})
}

func (h *ReviewsHandler) createDishReview(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, func(ctx context.Context, ident auth.Identity, req createReviewReq) (reviews.Review, error) {
		return h.Svc.CreateDishReview(ctx, ident, chi.URLParam(r, "id"), req.Rating, req.Comment)
	})
}

func (h *ReviewsHandler) create(w http.ResponseWriter, r *http.Request,
	fn func(context.Context, auth.Identity, createReviewReq) (reviews.Review, error)) {
	ident, ok := auth.FromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing identity"})
		return
	}
	var req createReviewReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	rv, err := fn(r.Context(), ident, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rv)
}

func (h *ReviewsHandler) listRestaurantReviews(w http.ResponseWriter, r *http.Request) {
	out, err := h.Svc.ListRestaurantReviews(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if out == nil {
		out = []reviews.Review{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *ReviewsHandler) listDishReviews(w http.ResponseWriter, r *http.Request) {
	out, err := h.Svc.ListDishReviews(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if out == nil {
		out = []reviews.Review{}
	}
	writeJSON(w, http.StatusOK, out)
}
