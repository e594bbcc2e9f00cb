package orders

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/mealdrop/go-delivery-orders/internal/apperr"
	"github.com/mealdrop/go-delivery-orders/internal/auth"
	"github.com/mealdrop/go-delivery-orders/internal/catalog"
	kafkax "github.com/mealdrop/go-delivery-orders/internal/kafka"
)

type Repository interface {
	Insert(ctx context.Context, o *Order) error
	Get(ctx context.Context, orderID string) (Order, error)
	ListForUser(ctx context.Context, userID string) ([]Order, error)
	UpsertItem(ctx context.Context, orderID, dishID string, qty, priceCents int) (Item, error)
	SetItemQuantity(ctx context.Context, orderID, dishID string, qty int) (Item, error)
	DeleteItem(ctx context.Context, orderID, dishID string) error
	UpdateStatus(ctx context.Context, orderID string, from, to Status) error
	IsStaffOf(ctx context.Context, userID, restaurantID string) (bool, error)
}

type Catalog interface {
	FindActiveRestaurant(ctx context.Context, id string) (catalog.Restaurant, error)
	FindDish(ctx context.Context, id string) (catalog.Dish, error)
}

type UserLocator interface {
	Location(ctx context.Context, userID string) (x, y int, err error)
}

type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

// statusPermissions: tabel otorisasi eksplisit per role, bukan branching
// inline. CUSTOMER hanya boleh CANCELLED (di order miliknya); staff boleh
// menggerakkan lifecycle dapur tapi tidak membatalkan atas nama pelanggan.
var staffStatuses = map[Status]bool{
	StatusAccepted:   true,
	StatusPreparing:  true,
	StatusReady:      true,
	StatusDispatched: true,
	StatusDelivered:  true,
	StatusRejected:   true,
}

var statusPermissions = map[auth.Role]map[Status]bool{
	auth.RoleCustomer: {StatusCancelled: true},
	auth.RoleOwner:    staffStatuses,
	auth.RoleAdmin:    staffStatuses,
}

type Service struct {
	repo    Repository
	catalog Catalog
	users   UserLocator
	cache   *StatusCache

	createdProducer Publisher
	statusProducer  Publisher
	serviceName     string
}

func NewService(repo Repository, cat Catalog, users UserLocator, cache *StatusCache,
	createdProducer, statusProducer Publisher, serviceName string) *Service {
	return &Service{
		repo:            repo,
		catalog:         cat,
		users:           users,
		cache:           cache,
		createdProducer: createdProducer,
		statusProducer:  statusProducer,
		serviceName:     serviceName,
	}
}

// Create memulai checkout: satu order per satu restoran, status PLACED,
// estimasi antar dihitung sekali dari lokasi saat ini lalu dibekukan.
func (s *Service) Create(ctx context.Context, ident auth.Identity, restaurantID, traceID string) (Order, error) {
	if restaurantID == "" {
		return Order{}, fmt.Errorf("%w: restaurant_id required", apperr.ErrInvalidInput)
	}
	ux, uy, err := s.users.Location(ctx, ident.UserID)
	if err != nil {
		return Order{}, err
	}
	rest, err := s.catalog.FindActiveRestaurant(ctx, restaurantID)
	if err != nil {
		return Order{}, err
	}

	o := Order{
		ID:                   uuid.NewString(),
		UserID:               ident.UserID,
		RestaurantID:         rest.ID,
		Status:               StatusPlaced,
		EstimatedDeliveryMin: EstimateDeliveryMin(ux, uy, rest.LocX, rest.LocY),
	}
	if err := s.repo.Insert(ctx, &o); err != nil {
		return Order{}, err
	}

	s.cache.Set(ctx, o.ID, o.UserID, o.Status)
	s.publish(s.createdProducer, EventOrderCreated, traceID, o.ID, OrderCreatedPayload{
		OrderID:              o.ID,
		UserID:               o.UserID,
		RestaurantID:         o.RestaurantID,
		EstimatedDeliveryMin: o.EstimatedDeliveryMin,
	})
	return o, nil
}

// AddItem: additive upsert. Dish harus available dan milik restoran
// order; snapshot price diambil dari katalog saat insert pertama saja.
// Dish yang ada tapi sedang tidak available = bad input, bukan NotFound.
func (s *Service) AddItem(ctx context.Context, ident auth.Identity, orderID, dishID string, qty int) (Item, error) {
	if dishID == "" || qty <= 0 {
		return Item{}, fmt.Errorf("%w: dish_id and positive quantity required", apperr.ErrInvalidInput)
	}
	o, err := s.mutableOrder(ctx, ident, orderID)
	if err != nil {
		return Item{}, err
	}
	dish, err := s.catalog.FindDish(ctx, dishID)
	if err != nil {
		return Item{}, err
	}
	if !dish.IsAvailable {
		return Item{}, fmt.Errorf("%w: dish is not available", apperr.ErrInvalidInput)
	}
	if dish.RestaurantID != o.RestaurantID {
		return Item{}, fmt.Errorf("%w: dish does not belong to this order restaurant", apperr.ErrInvalidInput)
	}
	return s.repo.UpsertItem(ctx, o.ID, dish.ID, qty, dish.PriceCents)
}

// SetItemQuantity mengganti quantity persis (bukan additive);
// nol berarti hapus item.
func (s *Service) SetItemQuantity(ctx context.Context, ident auth.Identity, orderID, dishID string, qty int) (Item, error) {
	if dishID == "" || qty < 0 {
		return Item{}, fmt.Errorf("%w: dish_id and non-negative quantity required", apperr.ErrInvalidInput)
	}
	o, err := s.mutableOrder(ctx, ident, orderID)
	if err != nil {
		return Item{}, err
	}
	if qty == 0 {
		if err := s.repo.DeleteItem(ctx, o.ID, dishID); err != nil {
			return Item{}, err
		}
		return Item{OrderID: o.ID, DishID: dishID, Quantity: 0}, nil
	}
	return s.repo.SetItemQuantity(ctx, o.ID, dishID, qty)
}

func (s *Service) RemoveItem(ctx context.Context, ident auth.Identity, orderID, dishID string) error {
	o, err := s.mutableOrder(ctx, ident, orderID)
	if err != nil {
		return err
	}
	return s.repo.DeleteItem(ctx, o.ID, dishID)
}

// ChangeStatus: transisi dicek dulu terhadap state machine (terminal state
// tidak bisa digerakkan siapa pun), lalu role gate lewat statusPermissions.
// OWNER juga harus terdaftar sebagai staff restoran order tersebut.
func (s *Service) ChangeStatus(ctx context.Context, ident auth.Identity, orderID, rawStatus, traceID string) (Order, error) {
	to, ok := ParseStatus(rawStatus)
	if !ok {
		return Order{}, fmt.Errorf("%w: unknown status %q", apperr.ErrInvalidInput, rawStatus)
	}
	o, err := s.repo.Get(ctx, orderID)
	if err != nil {
		return Order{}, err
	}

	switch ident.Role {
	case auth.RoleCustomer:
		// order orang lain tidak boleh kelihatan ada
		if o.UserID != ident.UserID {
			return Order{}, fmt.Errorf("%w: order", apperr.ErrNotFound)
		}
	case auth.RoleOwner:
		staff, err := s.repo.IsStaffOf(ctx, ident.UserID, o.RestaurantID)
		if err != nil {
			return Order{}, err
		}
		if !staff {
			return Order{}, fmt.Errorf("%w: not staff of this restaurant", apperr.ErrForbidden)
		}
	case auth.RoleAdmin:
	default:
		return Order{}, fmt.Errorf("%w: unknown role", apperr.ErrForbidden)
	}
	if !statusPermissions[ident.Role][to] {
		return Order{}, fmt.Errorf("%w: role %s may not set status %s", apperr.ErrForbidden, ident.Role, to)
	}
	if !CanTransition(o.Status, to) {
		return Order{}, fmt.Errorf("%w: cannot change status from %s to %s", apperr.ErrInvalidInput, o.Status, to)
	}

	if err := s.repo.UpdateStatus(ctx, o.ID, o.Status, to); err != nil {
		return Order{}, err
	}
	old := o.Status
	o.Status = to

	s.cache.Set(ctx, o.ID, o.UserID, to)
	s.publish(s.statusProducer, EventOrderStatusChanged, traceID, o.ID, OrderStatusChangedPayload{
		OrderID:      o.ID,
		UserID:       o.UserID,
		RestaurantID: o.RestaurantID,
		OldStatus:    old,
		NewStatus:    to,
		ChangedBy:    ident.UserID,
	})
	return o, nil
}

// Get: pemilik selalu boleh; staff hanya untuk restoran mereka; ADMIN bebas.
func (s *Service) Get(ctx context.Context, ident auth.Identity, orderID string) (Order, error) {
	o, err := s.repo.Get(ctx, orderID)
	if err != nil {
		return Order{}, err
	}
	if o.UserID == ident.UserID || ident.Role == auth.RoleAdmin {
		return o, nil
	}
	if ident.Role == auth.RoleOwner {
		staff, err := s.repo.IsStaffOf(ctx, ident.UserID, o.RestaurantID)
		if err != nil {
			return Order{}, err
		}
		if staff {
			return o, nil
		}
	}
	return Order{}, fmt.Errorf("%w: order", apperr.ErrNotFound)
}

func (s *Service) ListForUser(ctx context.Context, ident auth.Identity) ([]Order, error) {
	return s.repo.ListForUser(ctx, ident.UserID)
}

// GetStatus melayani polling UI. Fast path dari cache hanya untuk
// pemilik (key di-scope user id); staff dan admin lewat Get yang
// mengecek visibility di DB.
func (s *Service) GetStatus(ctx context.Context, ident auth.Identity, orderID string) (Status, error) {
	if st, ok := s.cache.Get(ctx, orderID, ident.UserID); ok {
		return st, nil
	}
	o, err := s.Get(ctx, ident, orderID)
	if err != nil {
		return "", err
	}
	s.cache.Set(ctx, o.ID, o.UserID, o.Status)
	return o.Status, nil
}

func (s *Service) publish(p Publisher, eventType, traceID, orderID string, payload any) {
	if p == nil {
		return
	}
	env := kafkax.NewEnvelope(eventType, s.serviceName, traceID, orderID, payload)
	p.Publish(PartitionKey(orderID), kafkax.MustMarshal(env),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

// mutableOrder: gate bersama semua mutasi cart. Order harus ada, milik
// caller, dan masih PLACED; lolos gate dulu baru ada SQL yang menulis.
func (s *Service) mutableOrder(ctx context.Context, ident auth.Identity, orderID string) (Order, error) {
	o, err := s.repo.Get(ctx, orderID)
	if err != nil {
		return Order{}, err
	}
	if o.UserID != ident.UserID {
		return Order{}, fmt.Errorf("%w: order", apperr.ErrNotFound)
	}
	if o.Status != StatusPlaced {
		return Order{}, fmt.Errorf("%w: order can no longer be modified", apperr.ErrInvalidInput)
	}
	return o, nil
}
