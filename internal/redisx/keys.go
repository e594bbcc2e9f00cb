package redisx

import "time"

const (
	// Cache status order, di-scope pemilik supaya fast path hanya kena
	// untuk dia: order_status:{order_id}:{owner_user_id} -> "PLACED" | ...
	KeyOrderStatus = "order_status:%s:%s"

	// Cache daftar restoran aktif (satu key global, JSON array).
	KeyActiveRestaurants = "restaurants:active"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLStatusCache     = 5 * time.Minute
	TTLRestaurantCache = 2 * time.Minute
	TTLDedup           = 48 * time.Hour
)
