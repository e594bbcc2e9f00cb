package notify

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	OrderID   string    `json:"order_id"`
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) Insert(ctx context.Context, n *Notification) error {
	return r.DB.QueryRow(ctx, `
		INSERT INTO notifications(id, user_id, order_id, status, message)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING created_at`,
		n.ID, n.UserID, n.OrderID, n.Status, n.Message,
	).Scan(&n.CreatedAt)
}
