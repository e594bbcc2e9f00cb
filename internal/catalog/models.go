package catalog

type Restaurant struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Cuisine  string `json:"cuisine"`
	LocX     int    `json:"location_x"`
	LocY     int    `json:"location_y"`
	IsActive bool   `json:"is_active"`
}

type Dish struct {
	ID           string `json:"id"`
	RestaurantID string `json:"restaurant_id"`
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	PriceCents   int    `json:"price_cents"`
	IsAvailable  bool   `json:"is_available"`
}
