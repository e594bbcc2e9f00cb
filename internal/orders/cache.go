package orders

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/mealdrop/go-delivery-orders/internal/redisx"
)

// StatusCache hanya shortcut baca; DB tetap jadi kebenaran.
// Key di-scope user id pemilik: Get dengan user lain selalu miss,
// jadi cache tidak pernah melompati cek kepemilikan.
type StatusCache struct{ R *redis.Client }

func (c *StatusCache) Get(ctx context.Context, orderID, userID string) (Status, bool) {
	if c == nil || c.R == nil {
		return "", false
	}
	s, err := c.R.Get(ctx, fmt.Sprintf(redisx.KeyOrderStatus, orderID, userID)).Result()
	if err != nil || s == "" {
		return "", false
	}
	st, ok := ParseStatus(s)
	if !ok {
		return "", false
	}
	return st, true
}

func (c *StatusCache) Set(ctx context.Context, orderID, ownerID string, st Status) {
	if c == nil || c.R == nil {
		return
	}
	_ = c.R.Set(ctx, fmt.Sprintf(redisx.KeyOrderStatus, orderID, ownerID), string(st), redisx.TTLStatusCache).Err()
}
