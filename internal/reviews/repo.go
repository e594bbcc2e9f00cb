package reviews

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) InsertRestaurantReview(ctx context.Context, rv *Review) error {
	return r.DB.QueryRow(ctx, `
		INSERT INTO restaurant_reviews(id, restaurant_id, user_id, rating, comment)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING created_at`,
		rv.ID, rv.RestaurantID, rv.UserID, rv.Rating, rv.Comment,
	).Scan(&rv.CreatedAt)
}

func (r *Repo) InsertDishReview(ctx context.Context, rv *Review) error {
	return r.DB.QueryRow(ctx, `
		INSERT INTO dish_reviews(id, dish_id, user_id, rating, comment)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING created_at`,
		rv.ID, rv.DishID, rv.UserID, rv.Rating, rv.Comment,
	).Scan(&rv.CreatedAt)
}

func (r *Repo) ListRestaurantReviews(ctx context.Context, restaurantID string) ([]Review, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, restaurant_id, user_id, rating, comment, created_at
		FROM restaurant_reviews WHERE restaurant_id=$1 ORDER BY created_at DESC`, restaurantID)
	if err != nil {
		return nil, err
	}
	return scanReviews(rows, false)
}

func (r *Repo) ListDishReviews(ctx context.Context, dishID string) ([]Review, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, dish_id, user_id, rating, comment, created_at
		FROM dish_reviews WHERE dish_id=$1 ORDER BY created_at DESC`, dishID)
	if err != nil {
		return nil, err
	}
	return scanReviews(rows, true)
}

func scanReviews(rows pgx.Rows, dish bool) ([]Review, error) {
	defer rows.Close()
	var out []Review
	for rows.Next() {
		var rv Review
		target := &rv.RestaurantID
		if dish {
			target = &rv.DishID
		}
		if err := rows.Scan(&rv.ID, target, &rv.UserID, &rv.Rating, &rv.Comment, &rv.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}
