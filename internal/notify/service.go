package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/mealdrop/go-delivery-orders/internal/kafka"
	"github.com/mealdrop/go-delivery-orders/internal/orders"
	"github.com/mealdrop/go-delivery-orders/internal/redisx"
)

type Repository interface {
	Insert(ctx context.Context, n *Notification) error
}

// Service mencatat notifikasi pelanggan dari event perubahan status.
// Consumer kafka at-least-once, jadi dedup per event_id lewat Redis.
type Service struct {
	Repo  Repository
	Redis *redis.Client
}

// HandleStatusChanged dipasang sebagai handler consumer.
func (s *Service) HandleStatusChanged(ctx context.Context, m kafkago.Message) error {
	var env kafkax.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != orders.EventOrderStatusChanged {
		return nil // ignore
	}

	dkey := fmt.Sprintf(redisx.KeyDedup, "notify", env.EventID)
	if exists, _ := redisx.Exists(ctx, s.Redis, dkey); exists {
		return nil
	}

	p, err := kafkax.UnwrapPayload[orders.OrderStatusChangedPayload](env.Payload)
	if err != nil {
		return err
	}

	n := Notification{
		ID:      uuid.NewString(),
		UserID:  p.UserID,
		OrderID: p.OrderID,
		Status:  string(p.NewStatus),
		Message: messageFor(p.NewStatus),
	}
	if err := s.Repo.Insert(ctx, &n); err != nil {
		return err
	}

	// marker dedup di-set setelah insert sukses; gagal di tengah berarti
	// event diproses ulang, bukan hilang
	_ = s.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()
	return nil
}

func messageFor(st orders.Status) string {
	switch st {
	case orders.StatusAccepted:
		return "Your order was accepted by the restaurant."
	case orders.StatusPreparing:
		return "The kitchen is preparing your order."
	case orders.StatusReady:
		return "Your order is ready and waiting for a courier."
	case orders.StatusDispatched:
		return "Your order is on its way."
	case orders.StatusDelivered:
		return "Your order was delivered. Enjoy!"
	case orders.StatusRejected:
		return "Sorry, the restaurant rejected your order."
	case orders.StatusCancelled:
		return "Your order was cancelled."
	default:
		return "Your order status changed to " + string(st) + "."
	}
}
