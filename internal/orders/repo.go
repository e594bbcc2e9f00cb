package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mealdrop/go-delivery-orders/internal/apperr"
)

type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) Insert(ctx context.Context, o *Order) error {
	return r.DB.QueryRow(ctx, `
		INSERT INTO orders(id, user_id, restaurant_id, status, estimated_delivery_min)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING created_at, updated_at`,
		o.ID, o.UserID, o.RestaurantID, o.Status, o.EstimatedDeliveryMin,
	).Scan(&o.CreatedAt, &o.UpdatedAt)
}

// Get mengembalikan order + items + total turunan. Total tidak pernah
// dipersist; selalu dihitung dari snapshot price per item.
func (r *Repo) Get(ctx context.Context, orderID string) (Order, error) {
	var o Order
	err := r.DB.QueryRow(ctx, `
		SELECT id, user_id, restaurant_id, status, estimated_delivery_min, created_at, updated_at
		FROM orders WHERE id=$1`, orderID).
		Scan(&o.ID, &o.UserID, &o.RestaurantID, &o.Status, &o.EstimatedDeliveryMin, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, fmt.Errorf("%w: order", apperr.ErrNotFound)
	}
	if err != nil {
		return Order{}, err
	}

	rows, err := r.DB.Query(ctx, `
		SELECT order_id, dish_id, quantity, price_cents_at_order
		FROM order_items WHERE order_id=$1 ORDER BY dish_id`, orderID)
	if err != nil {
		return Order{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.OrderID, &it.DishID, &it.Quantity, &it.PriceCentsAtOrder); err != nil {
			return Order{}, err
		}
		o.TotalCents += it.Quantity * it.PriceCentsAtOrder
		o.Items = append(o.Items, it)
	}
	return o, rows.Err()
}

func (r *Repo) ListForUser(ctx context.Context, userID string) ([]Order, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT o.id, o.user_id, o.restaurant_id, o.status, o.estimated_delivery_min,
		       o.created_at, o.updated_at,
		       COALESCE(SUM(i.quantity * i.price_cents_at_order), 0)
		FROM orders o
		LEFT JOIN order_items i ON i.order_id = o.id
		WHERE o.user_id = $1
		GROUP BY o.id
		ORDER BY o.created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.RestaurantID, &o.Status, &o.EstimatedDeliveryMin,
			&o.CreatedAt, &o.UpdatedAt, &o.TotalCents); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// UpsertItem: additive upsert dalam SATU statement supaya dua AddItem
// konkuren untuk (order_id, dish_id) yang sama tidak saling menimpa.
// Snapshot price hanya di-set saat insert pertama; DO UPDATE tidak
// menyentuh price_cents_at_order.
func (r *Repo) UpsertItem(ctx context.Context, orderID, dishID string, qty, priceCents int) (Item, error) {
	it := Item{OrderID: orderID, DishID: dishID}
	err := r.DB.QueryRow(ctx, `
		INSERT INTO order_items(order_id, dish_id, quantity, price_cents_at_order)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (order_id, dish_id)
		DO UPDATE SET quantity = order_items.quantity + EXCLUDED.quantity
		RETURNING quantity, price_cents_at_order`,
		orderID, dishID, qty, priceCents,
	).Scan(&it.Quantity, &it.PriceCentsAtOrder)
	return it, err
}

func (r *Repo) SetItemQuantity(ctx context.Context, orderID, dishID string, qty int) (Item, error) {
	it := Item{OrderID: orderID, DishID: dishID, Quantity: qty}
	err := r.DB.QueryRow(ctx, `
		UPDATE order_items SET quantity=$3
		WHERE order_id=$1 AND dish_id=$2
		RETURNING price_cents_at_order`,
		orderID, dishID, qty,
	).Scan(&it.PriceCentsAtOrder)
	if errors.Is(err, pgx.ErrNoRows) {
		return Item{}, fmt.Errorf("%w: order item", apperr.ErrNotFound)
	}
	return it, err
}

func (r *Repo) DeleteItem(ctx context.Context, orderID, dishID string) error {
	ct, err := r.DB.Exec(ctx,
		`DELETE FROM order_items WHERE order_id=$1 AND dish_id=$2`, orderID, dishID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("%w: order item", apperr.ErrNotFound)
	}
	return nil
}

// UpdateStatus conditional pada status lama: kalau ada transisi konkuren
// yang menang duluan, update ini jadi no-op dan dilaporkan sebagai invalid.
func (r *Repo) UpdateStatus(ctx context.Context, orderID string, from, to Status) error {
	ct, err := r.DB.Exec(ctx,
		`UPDATE orders SET status=$3, updated_at=now() WHERE id=$1 AND status=$2`,
		orderID, from, to)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("%w: order status changed", apperr.ErrInvalidInput)
	}
	return nil
}

func (r *Repo) IsStaffOf(ctx context.Context, userID, restaurantID string) (bool, error) {
	var ok bool
	err := r.DB.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM restaurant_staff WHERE user_id=$1 AND restaurant_id=$2
		)`, userID, restaurantID).Scan(&ok)
	return ok, err
}
