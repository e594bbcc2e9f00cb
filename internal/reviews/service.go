package reviews

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/mealdrop/go-delivery-orders/internal/apperr"
	"github.com/mealdrop/go-delivery-orders/internal/auth"
	"github.com/mealdrop/go-delivery-orders/internal/catalog"
	kafkax "github.com/mealdrop/go-delivery-orders/internal/kafka"
)

const (
	TopicReviewCreated = "review.created"
	EventReviewCreated = "ReviewCreated"
)

type ReviewCreatedPayload struct {
	ReviewID     string `json:"review_id"`
	RestaurantID string `json:"restaurant_id,omitempty"`
	DishID       string `json:"dish_id,omitempty"`
	UserID       string `json:"user_id"`
	Rating       int    `json:"rating"`
}

type Repository interface {
	InsertRestaurantReview(ctx context.Context, rv *Review) error
	InsertDishReview(ctx context.Context, rv *Review) error
	ListRestaurantReviews(ctx context.Context, restaurantID string) ([]Review, error)
	ListDishReviews(ctx context.Context, dishID string) ([]Review, error)
}

type DishFinder interface {
	FindDish(ctx context.Context, id string) (catalog.Dish, error)
}

type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

type Service struct {
	repo        Repository
	dishes      DishFinder
	publisher   Publisher
	serviceName string
}

func NewService(repo Repository, dishes DishFinder, publisher Publisher, serviceName string) *Service {
	return &Service{repo: repo, dishes: dishes, publisher: publisher, serviceName: serviceName}
}

func (s *Service) CreateRestaurantReview(ctx context.Context, ident auth.Identity, restaurantID string, rating int, comment string) (Review, error) {
	if restaurantID == "" {
		return Review{}, fmt.Errorf("%w: restaurant_id required", apperr.ErrInvalidInput)
	}
	if err := checkRating(rating); err != nil {
		return Review{}, err
	}
	rv := Review{
		ID:           uuid.NewString(),
		RestaurantID: restaurantID,
		UserID:       ident.UserID,
		Rating:       rating,
		Comment:      comment,
	}
	if err := s.repo.InsertRestaurantReview(ctx, &rv); err != nil {
		return Review{}, err
	}
	s.publishCreated(rv)
	return rv, nil
}

// CreateDishReview juga butuh dish-nya ada (availability tidak dicek:
// dish yang sedang off-menu tetap boleh direview).
func (s *Service) CreateDishReview(ctx context.Context, ident auth.Identity, dishID string, rating int, comment string) (Review, error) {
	if dishID == "" {
		return Review{}, fmt.Errorf("%w: dish_id required", apperr.ErrInvalidInput)
	}
	if err := checkRating(rating); err != nil {
		return Review{}, err
	}
	if _, err := s.dishes.FindDish(ctx, dishID); err != nil {
		return Review{}, err
	}
	rv := Review{
		ID:      uuid.NewString(),
		DishID:  dishID,
		UserID:  ident.UserID,
		Rating:  rating,
		Comment: comment,
	}
	if err := s.repo.InsertDishReview(ctx, &rv); err != nil {
		return Review{}, err
	}
	s.publishCreated(rv)
	return rv, nil
}

func (s *Service) ListRestaurantReviews(ctx context.Context, restaurantID string) ([]Review, error) {
	return s.repo.ListRestaurantReviews(ctx, restaurantID)
}

func (s *Service) ListDishReviews(ctx context.Context, dishID string) ([]Review, error) {
	return s.repo.ListDishReviews(ctx, dishID)
}

func checkRating(rating int) error {
	if rating < 1 || rating > 5 {
		return fmt.Errorf("%w: rating must be an integer 1..5", apperr.ErrInvalidInput)
	}
	return nil
}

func (s *Service) publishCreated(rv Review) {
	if s.publisher == nil {
		return
	}
	env := kafkax.NewEnvelope(EventReviewCreated, s.serviceName, "", rv.ID, ReviewCreatedPayload{
		ReviewID:     rv.ID,
		RestaurantID: rv.RestaurantID,
		DishID:       rv.DishID,
		UserID:       rv.UserID,
		Rating:       rv.Rating,
	})
	s.publisher.Publish([]byte(rv.ID), kafkax.MustMarshal(env),
		kafkago.Header{Key: "x-event-type", Value: []byte(EventReviewCreated)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
