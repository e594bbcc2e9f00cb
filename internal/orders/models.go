package orders

import "time"

type Order struct {
	ID                   string    `json:"id"`
	UserID               string    `json:"user_id"`
	RestaurantID         string    `json:"restaurant_id"`
	Status               Status    `json:"status"`
	EstimatedDeliveryMin int       `json:"estimated_delivery_min"`
	TotalCents           int       `json:"total_cents"` // derived: sum(qty * snapshot price)
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
	Items                []Item    `json:"items,omitempty"`
}

// Item identitasnya komposit (order_id, dish_id): satu dish maksimal
// satu row per order. Quantity nol dimodelkan sebagai tidak ada row.
type Item struct {
	OrderID           string `json:"order_id"`
	DishID            string `json:"dish_id"`
	Quantity          int    `json:"quantity"`
	PriceCentsAtOrder int    `json:"price_cents_at_order"`
}
