package catalog

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"github.com/mealdrop/go-delivery-orders/internal/redisx"
)

type Repository interface {
	ListActiveRestaurants(ctx context.Context) ([]Restaurant, error)
	FindActiveRestaurant(ctx context.Context, id string) (Restaurant, error)
	ListAvailableDishes(ctx context.Context, restaurantID string) ([]Dish, error)
	FindDish(ctx context.Context, id string) (Dish, error)
}

// Service menaruh cache Redis di depan listing restoran;
// lookup per-id langsung ke DB (murah, satu row).
type Service struct {
	repo  Repository
	redis *redis.Client
}

func NewService(repo Repository, rdb *redis.Client) *Service {
	return &Service{repo: repo, redis: rdb}
}

func (s *Service) ListActiveRestaurants(ctx context.Context) ([]Restaurant, error) {
	if s.redis != nil {
		if raw, err := s.redis.Get(ctx, redisx.KeyActiveRestaurants).Result(); err == nil && raw != "" {
			var cached []Restaurant
			if json.Unmarshal([]byte(raw), &cached) == nil {
				return cached, nil
			}
		}
	}

	out, err := s.repo.ListActiveRestaurants(ctx)
	if err != nil {
		return nil, err
	}
	if s.redis != nil {
		if b, err := json.Marshal(out); err == nil {
			_ = s.redis.Set(ctx, redisx.KeyActiveRestaurants, b, redisx.TTLRestaurantCache).Err()
		}
	}
	return out, nil
}

func (s *Service) GetRestaurant(ctx context.Context, id string) (Restaurant, error) {
	return s.repo.FindActiveRestaurant(ctx, id)
}

func (s *Service) ListDishes(ctx context.Context, restaurantID string) ([]Dish, error) {
	if _, err := s.repo.FindActiveRestaurant(ctx, restaurantID); err != nil {
		return nil, err
	}
	return s.repo.ListAvailableDishes(ctx, restaurantID)
}

func (s *Service) FindActiveRestaurant(ctx context.Context, id string) (Restaurant, error) {
	return s.repo.FindActiveRestaurant(ctx, id)
}

// FindDish tidak memfilter availability; caller yang memutuskan
// dish off-menu itu error macam apa.
func (s *Service) FindDish(ctx context.Context, id string) (Dish, error) {
	return s.repo.FindDish(ctx, id)
}
