package orders

const (
	EventOrderCreated       = "OrderCreated"
	EventOrderStatusChanged = "OrderStatusChanged"
)

type OrderCreatedPayload struct {
	OrderID              string `json:"order_id"`
	UserID               string `json:"user_id"`
	RestaurantID         string `json:"restaurant_id"`
	EstimatedDeliveryMin int    `json:"estimated_delivery_min"`
}

type OrderStatusChangedPayload struct {
	OrderID      string `json:"order_id"`
	UserID       string `json:"user_id"`
	RestaurantID string `json:"restaurant_id"`
	OldStatus    Status `json:"old_status"`
	NewStatus    Status `json:"new_status"`
	ChangedBy    string `json:"changed_by"` // user id pelaku
}
