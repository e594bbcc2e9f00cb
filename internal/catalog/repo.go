package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mealdrop/go-delivery-orders/internal/apperr"
)

// Repo hanya baca: katalog dikelola di luar service ini.
type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) ListActiveRestaurants(ctx context.Context) ([]Restaurant, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, name, cuisine, location_x, location_y, is_active
		FROM restaurants WHERE is_active = true ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Restaurant
	for rows.Next() {
		var rt Restaurant
		if err := rows.Scan(&rt.ID, &rt.Name, &rt.Cuisine, &rt.LocX, &rt.LocY, &rt.IsActive); err != nil {
			return nil, err
		}
		out = append(out, rt)
	}
	return out, rows.Err()
}

func (r *Repo) FindActiveRestaurant(ctx context.Context, id string) (Restaurant, error) {
	var rt Restaurant
	err := r.DB.QueryRow(ctx, `
		SELECT id, name, cuisine, location_x, location_y, is_active
		FROM restaurants WHERE id=$1 AND is_active = true`, id).
		Scan(&rt.ID, &rt.Name, &rt.Cuisine, &rt.LocX, &rt.LocY, &rt.IsActive)
	if errors.Is(err, pgx.ErrNoRows) {
		return Restaurant{}, fmt.Errorf("%w: restaurant", apperr.ErrNotFound)
	}
	return rt, err
}

func (r *Repo) ListAvailableDishes(ctx context.Context, restaurantID string) ([]Dish, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, restaurant_id, name, description, price_cents, is_available
		FROM dishes WHERE restaurant_id=$1 AND is_available = true ORDER BY name`, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Dish
	for rows.Next() {
		var d Dish
		if err := rows.Scan(&d.ID, &d.RestaurantID, &d.Name, &d.Description, &d.PriceCents, &d.IsAvailable); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// FindDish tidak memfilter availability; dipakai validasi review
// dan cart (dish off-menu perlu dibedakan dari dish yang tidak ada).
func (r *Repo) FindDish(ctx context.Context, id string) (Dish, error) {
	var d Dish
	err := r.DB.QueryRow(ctx, `
		SELECT id, restaurant_id, name, description, price_cents, is_available
		FROM dishes WHERE id=$1`, id).
		Scan(&d.ID, &d.RestaurantID, &d.Name, &d.Description, &d.PriceCents, &d.IsAvailable)
	if errors.Is(err, pgx.ErrNoRows) {
		return Dish{}, fmt.Errorf("%w: dish", apperr.ErrNotFound)
	}
	return d, err
}
