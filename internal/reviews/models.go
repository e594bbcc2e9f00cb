package reviews

import "time"

// Review append-only: tidak ada edit/hapus, dan tidak ada batasan satu
// review per user per target.
type Review struct {
	ID           string    `json:"id"`
	RestaurantID string    `json:"restaurant_id,omitempty"`
	DishID       string    `json:"dish_id,omitempty"`
	UserID       string    `json:"user_id"`
	Rating       int       `json:"rating"`
	Comment      string    `json:"comment,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
