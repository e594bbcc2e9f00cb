package orders

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mealdrop/go-delivery-orders/internal/apperr"
	"github.com/mealdrop/go-delivery-orders/internal/auth"
	"github.com/mealdrop/go-delivery-orders/internal/catalog"
	kafkax "github.com/mealdrop/go-delivery-orders/internal/kafka"
)

// ---- fakes in-memory, semantik meniru SQL di repo.go ----

type fakeRepo struct {
	orders map[string]*Order
	items  map[string]map[string]*Item // orderID -> dishID -> item
	staff  map[string]bool             // "userID/restaurantID"
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		orders: map[string]*Order{},
		items:  map[string]map[string]*Item{},
		staff:  map[string]bool{},
	}
}

func (f *fakeRepo) Insert(_ context.Context, o *Order) error {
	o.CreatedAt = time.Now()
	o.UpdatedAt = o.CreatedAt
	cp := *o
	f.orders[o.ID] = &cp
	return nil
}

func (f *fakeRepo) Get(_ context.Context, orderID string) (Order, error) {
	o, ok := f.orders[orderID]
	if !ok {
		return Order{}, fmt.Errorf("%w: order", apperr.ErrNotFound)
	}
	out := *o
	out.Items = nil
	out.TotalCents = 0
	for _, it := range f.items[orderID] {
		out.Items = append(out.Items, *it)
		out.TotalCents += it.Quantity * it.PriceCentsAtOrder
	}
	return out, nil
}

func (f *fakeRepo) ListForUser(_ context.Context, userID string) ([]Order, error) {
	var out []Order
	for _, o := range f.orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (f *fakeRepo) UpsertItem(_ context.Context, orderID, dishID string, qty, priceCents int) (Item, error) {
	if f.items[orderID] == nil {
		f.items[orderID] = map[string]*Item{}
	}
	it, ok := f.items[orderID][dishID]
	if ok {
		it.Quantity += qty // snapshot price tidak disentuh
	} else {
		it = &Item{OrderID: orderID, DishID: dishID, Quantity: qty, PriceCentsAtOrder: priceCents}
		f.items[orderID][dishID] = it
	}
	return *it, nil
}

func (f *fakeRepo) SetItemQuantity(_ context.Context, orderID, dishID string, qty int) (Item, error) {
	it, ok := f.items[orderID][dishID]
	if !ok {
		return Item{}, fmt.Errorf("%w: order item", apperr.ErrNotFound)
	}
	it.Quantity = qty
	return *it, nil
}

func (f *fakeRepo) DeleteItem(_ context.Context, orderID, dishID string) error {
	if _, ok := f.items[orderID][dishID]; !ok {
		return fmt.Errorf("%w: order item", apperr.ErrNotFound)
	}
	delete(f.items[orderID], dishID)
	return nil
}

func (f *fakeRepo) UpdateStatus(_ context.Context, orderID string, from, to Status) error {
	o, ok := f.orders[orderID]
	if !ok || o.Status != from {
		return fmt.Errorf("%w: order status changed", apperr.ErrInvalidInput)
	}
	o.Status = to
	o.UpdatedAt = time.Now()
	return nil
}

func (f *fakeRepo) IsStaffOf(_ context.Context, userID, restaurantID string) (bool, error) {
	return f.staff[userID+"/"+restaurantID], nil
}

type fakeCatalog struct {
	restaurants map[string]catalog.Restaurant
	dishes      map[string]catalog.Dish
}

func (f *fakeCatalog) FindActiveRestaurant(_ context.Context, id string) (catalog.Restaurant, error) {
	r, ok := f.restaurants[id]
	if !ok || !r.IsActive {
		return catalog.Restaurant{}, fmt.Errorf("%w: restaurant", apperr.ErrNotFound)
	}
	return r, nil
}

func (f *fakeCatalog) FindDish(_ context.Context, id string) (catalog.Dish, error) {
	d, ok := f.dishes[id]
	if !ok {
		return catalog.Dish{}, fmt.Errorf("%w: dish", apperr.ErrNotFound)
	}
	return d, nil
}

type fakeLocator struct{ loc map[string][2]int }

func (f *fakeLocator) Location(_ context.Context, userID string) (int, int, error) {
	p, ok := f.loc[userID]
	if !ok {
		return 0, 0, fmt.Errorf("%w: user", apperr.ErrNotFound)
	}
	return p[0], p[1], nil
}

type capturePublisher struct{ envelopes []kafkax.Envelope }

func (c *capturePublisher) Publish(_, value []byte, _ ...kafkago.Header) {
	var env kafkax.Envelope
	if json.Unmarshal(value, &env) == nil {
		c.envelopes = append(c.envelopes, env)
	}
}

// ---- fixture ----

const (
	custID     = "user-1"
	otherCust  = "user-2"
	ownerID    = "owner-1"
	adminID    = "admin-1"
	restID     = "rest-1"
	otherRest  = "rest-2"
	dishID     = "dish-1"
	foreignDid = "dish-foreign"
)

var (
	customer = auth.Identity{UserID: custID, Role: auth.RoleCustomer}
	stranger = auth.Identity{UserID: otherCust, Role: auth.RoleCustomer}
	owner    = auth.Identity{UserID: ownerID, Role: auth.RoleOwner}
	admin    = auth.Identity{UserID: adminID, Role: auth.RoleAdmin}
)

func newFixture() (*Service, *fakeRepo, *fakeCatalog, *capturePublisher, *capturePublisher) {
	repo := newFakeRepo()
	repo.staff[ownerID+"/"+restID] = true
	cat := &fakeCatalog{
		restaurants: map[string]catalog.Restaurant{
			restID:    {ID: restID, Name: "Warung Satu", LocX: 0, LocY: 0, IsActive: true},
			otherRest: {ID: otherRest, Name: "Warung Dua", LocX: 9, LocY: 9, IsActive: true},
			"closed":  {ID: "closed", Name: "Tutup", IsActive: false},
		},
		dishes: map[string]catalog.Dish{
			dishID:     {ID: dishID, RestaurantID: restID, Name: "Nasi Goreng", PriceCents: 500, IsAvailable: true},
			foreignDid: {ID: foreignDid, RestaurantID: otherRest, Name: "Sate", PriceCents: 800, IsAvailable: true},
			"offmenu":  {ID: "offmenu", RestaurantID: restID, Name: "Es Teh", PriceCents: 200, IsAvailable: false},
		},
	}
	loc := &fakeLocator{loc: map[string][2]int{custID: {2, 1}, otherCust: {5, 5}}}
	created := &capturePublisher{}
	status := &capturePublisher{}
	svc := NewService(repo, cat, loc, nil, created, status, "test-api")
	return svc, repo, cat, created, status
}

func placeOrder(t *testing.T, svc *Service) Order {
	t.Helper()
	o, err := svc.Create(context.Background(), customer, restID, "")
	require.NoError(t, err)
	return o
}

// ---- create ----

func TestCreate(t *testing.T) {
	svc, _, _, created, _ := newFixture()
	ctx := context.Background()

	o, err := svc.Create(ctx, customer, restID, "trace-1")
	require.NoError(t, err)
	assert.Equal(t, StatusPlaced, o.Status)
	assert.Equal(t, custID, o.UserID)
	assert.Equal(t, restID, o.RestaurantID)
	// user (2,1), restoran (0,0) -> jarak 3 -> 20 menit
	assert.Equal(t, 20, o.EstimatedDeliveryMin)

	require.Len(t, created.envelopes, 1)
	env := created.envelopes[0]
	assert.Equal(t, EventOrderCreated, env.EventType)
	assert.Equal(t, o.ID, env.CorrelationID)
	assert.Equal(t, "trace-1", env.TraceID)

	p, err := kafkax.UnwrapPayload[OrderCreatedPayload](env.Payload)
	require.NoError(t, err)
	assert.Equal(t, 20, p.EstimatedDeliveryMin)
}

func TestCreate_Errors(t *testing.T) {
	svc, _, _, _, _ := newFixture()
	ctx := context.Background()

	_, err := svc.Create(ctx, customer, "", "")
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	_, err = svc.Create(ctx, customer, "closed", "")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = svc.Create(ctx, customer, "no-such", "")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = svc.Create(ctx, auth.Identity{UserID: "ghost", Role: auth.RoleCustomer}, restID, "")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestCreate_EstimateFrozen(t *testing.T) {
	svc, _, cat, _, _ := newFixture()
	ctx := context.Background()

	o := placeOrder(t, svc)
	assert.Equal(t, 20, o.EstimatedDeliveryMin)

	// restoran pindah jauh; order lama tidak berubah
	r := cat.restaurants[restID]
	r.LocX, r.LocY = 50, 50
	cat.restaurants[restID] = r

	got, err := svc.Get(ctx, customer, o.ID)
	require.NoError(t, err)
	assert.Equal(t, 20, got.EstimatedDeliveryMin)
}

// ---- cart ----

func TestAddItem_AdditiveWithPriceSnapshot(t *testing.T) {
	svc, _, cat, _, _ := newFixture()
	ctx := context.Background()
	o := placeOrder(t, svc)

	it, err := svc.AddItem(ctx, customer, o.ID, dishID, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, it.Quantity)
	assert.Equal(t, 500, it.PriceCentsAtOrder)

	// harga katalog naik; snapshot tidak ikut
	d := cat.dishes[dishID]
	d.PriceCents = 700
	cat.dishes[dishID] = d

	it, err = svc.AddItem(ctx, customer, o.ID, dishID, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, it.Quantity)
	assert.Equal(t, 500, it.PriceCentsAtOrder)

	got, err := svc.Get(ctx, customer, o.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, 3*500, got.TotalCents)

	// set 0 = hapus; add lagi = snapshot baru dari harga sekarang
	_, err = svc.SetItemQuantity(ctx, customer, o.ID, dishID, 0)
	require.NoError(t, err)

	got, err = svc.Get(ctx, customer, o.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Items)

	it, err = svc.AddItem(ctx, customer, o.ID, dishID, 1)
	require.NoError(t, err)
	assert.Equal(t, 700, it.PriceCentsAtOrder)
}

func TestAddItem_Validation(t *testing.T) {
	svc, _, _, _, _ := newFixture()
	ctx := context.Background()
	o := placeOrder(t, svc)

	_, err := svc.AddItem(ctx, customer, o.ID, dishID, 0)
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	_, err = svc.AddItem(ctx, customer, o.ID, dishID, -2)
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	// dish ada tapi off-menu -> bad input; NotFound khusus dish yang tidak ada
	_, err = svc.AddItem(ctx, customer, o.ID, "offmenu", 1)
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
	assert.Contains(t, err.Error(), "not available")

	_, err = svc.AddItem(ctx, customer, o.ID, "no-such-dish", 1)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	// dish milik restoran lain
	_, err = svc.AddItem(ctx, customer, o.ID, foreignDid, 1)
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
	assert.Contains(t, err.Error(), "does not belong")
}

func TestCartMutation_OwnershipAndStatusGate(t *testing.T) {
	svc, repo, _, _, _ := newFixture()
	ctx := context.Background()
	o := placeOrder(t, svc)
	_, err := svc.AddItem(ctx, customer, o.ID, dishID, 1)
	require.NoError(t, err)

	// bukan pemilik: order tidak kelihatan ada
	_, err = svc.AddItem(ctx, stranger, o.ID, dishID, 1)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = svc.SetItemQuantity(ctx, stranger, o.ID, dishID, 2)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	err = svc.RemoveItem(ctx, stranger, o.ID, dishID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	// order sudah jalan: mutasi cart ditolak, termasuk untuk pemiliknya
	repo.orders[o.ID].Status = StatusAccepted
	_, err = svc.AddItem(ctx, customer, o.ID, dishID, 1)
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
	_, err = svc.SetItemQuantity(ctx, customer, o.ID, dishID, 5)
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
	err = svc.RemoveItem(ctx, customer, o.ID, dishID)
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
}

func TestSetItemQuantity(t *testing.T) {
	svc, _, _, _, _ := newFixture()
	ctx := context.Background()
	o := placeOrder(t, svc)

	_, err := svc.SetItemQuantity(ctx, customer, o.ID, dishID, -1)
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	// set pada item yang belum ada -> NotFound (set bukan add)
	_, err = svc.SetItemQuantity(ctx, customer, o.ID, dishID, 3)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = svc.SetItemQuantity(ctx, customer, o.ID, dishID, 0)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = svc.AddItem(ctx, customer, o.ID, dishID, 2)
	require.NoError(t, err)

	// replace persis, bukan additive
	it, err := svc.SetItemQuantity(ctx, customer, o.ID, dishID, 7)
	require.NoError(t, err)
	assert.Equal(t, 7, it.Quantity)
	assert.Equal(t, 500, it.PriceCentsAtOrder)
}

func TestRemoveItem_Missing(t *testing.T) {
	svc, _, _, _, _ := newFixture()
	o := placeOrder(t, svc)
	err := svc.RemoveItem(context.Background(), customer, o.ID, dishID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

// ---- status ----

func TestChangeStatus_CustomerCancelOnly(t *testing.T) {
	svc, _, _, _, statusPub := newFixture()
	ctx := context.Background()
	o := placeOrder(t, svc)

	// customer tidak boleh set status staff, walau transisinya valid
	_, err := svc.ChangeStatus(ctx, customer, o.ID, "ACCEPTED", "")
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	// order orang lain -> NotFound, bukan Forbidden
	_, err = svc.ChangeStatus(ctx, stranger, o.ID, "CANCELLED", "")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	got, err := svc.ChangeStatus(ctx, customer, o.ID, "CANCELLED", "")
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, got.Status)

	require.Len(t, statusPub.envelopes, 1)
	p, err := kafkax.UnwrapPayload[OrderStatusChangedPayload](statusPub.envelopes[0].Payload)
	require.NoError(t, err)
	assert.Equal(t, StatusPlaced, p.OldStatus)
	assert.Equal(t, StatusCancelled, p.NewStatus)
	assert.Equal(t, custID, p.ChangedBy)
}

func TestChangeStatus_StaffScope(t *testing.T) {
	svc, _, _, _, _ := newFixture()
	ctx := context.Background()
	o := placeOrder(t, svc)

	// owner terdaftar sebagai staff restoran order -> boleh
	got, err := svc.ChangeStatus(ctx, owner, o.ID, "ACCEPTED", "")
	require.NoError(t, err)
	assert.Equal(t, StatusAccepted, got.Status)

	// owner tidak boleh membatalkan atas nama pelanggan
	_, err = svc.ChangeStatus(ctx, owner, o.ID, "CANCELLED", "")
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	// owner restoran lain -> Forbidden
	outsider := auth.Identity{UserID: "owner-2", Role: auth.RoleOwner}
	_, err = svc.ChangeStatus(ctx, outsider, o.ID, "PREPARING", "")
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	// admin tidak perlu membership
	got, err = svc.ChangeStatus(ctx, admin, o.ID, "PREPARING", "")
	require.NoError(t, err)
	assert.Equal(t, StatusPreparing, got.Status)
}

func TestChangeStatus_TransitionRules(t *testing.T) {
	svc, repo, _, _, _ := newFixture()
	ctx := context.Background()
	o := placeOrder(t, svc)

	// lompat state -> invalid
	_, err := svc.ChangeStatus(ctx, admin, o.ID, "DELIVERED", "")
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	// string tak dikenal -> invalid
	_, err = svc.ChangeStatus(ctx, admin, o.ID, "OUT_FOR_DELIVERY", "")
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	// terminal state beku untuk semua role
	repo.orders[o.ID].Status = StatusCancelled
	_, err = svc.ChangeStatus(ctx, admin, o.ID, "ACCEPTED", "")
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
	_, err = svc.ChangeStatus(ctx, customer, o.ID, "CANCELLED", "")
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	_, err = svc.ChangeStatus(ctx, admin, "no-such-order", "ACCEPTED", "")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestChangeStatus_FullHappyPath(t *testing.T) {
	svc, _, _, _, statusPub := newFixture()
	ctx := context.Background()
	o := placeOrder(t, svc)

	for _, st := range []string{"ACCEPTED", "PREPARING", "READY", "DISPATCHED", "DELIVERED"} {
		got, err := svc.ChangeStatus(ctx, owner, o.ID, st, "")
		require.NoError(t, err, "to %s", st)
		assert.Equal(t, Status(st), got.Status)
	}
	assert.Len(t, statusPub.envelopes, 5)

	// DELIVERED terminal
	_, err := svc.ChangeStatus(ctx, owner, o.ID, "DISPATCHED", "")
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
}

// ---- reads ----

func TestGet_Visibility(t *testing.T) {
	svc, _, _, _, _ := newFixture()
	ctx := context.Background()
	o := placeOrder(t, svc)

	_, err := svc.Get(ctx, customer, o.ID)
	assert.NoError(t, err)
	_, err = svc.Get(ctx, owner, o.ID)
	assert.NoError(t, err)
	_, err = svc.Get(ctx, admin, o.ID)
	assert.NoError(t, err)

	_, err = svc.Get(ctx, stranger, o.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	outsider := auth.Identity{UserID: "owner-2", Role: auth.RoleOwner}
	_, err = svc.Get(ctx, outsider, o.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestGetStatus_CacheScopedToOwner(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	repo := newFakeRepo()
	repo.staff[ownerID+"/"+restID] = true
	cat := &fakeCatalog{
		restaurants: map[string]catalog.Restaurant{
			restID: {ID: restID, Name: "Warung Satu", IsActive: true},
		},
		dishes: map[string]catalog.Dish{},
	}
	loc := &fakeLocator{loc: map[string][2]int{custID: {2, 1}}}
	svc := NewService(repo, cat, loc, &StatusCache{R: rdb}, nil, nil, "test-api")
	ctx := context.Background()

	o, err := svc.Create(ctx, customer, restID, "")
	require.NoError(t, err)

	// cache hangat buat pemilik setelah Create
	st, err := svc.GetStatus(ctx, customer, o.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPlaced, st)

	// user lain tetap ditolak walau cache hangat
	_, err = svc.GetStatus(ctx, stranger, o.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	// staff restoran dapat status lewat jalur DB
	st, err = svc.GetStatus(ctx, owner, o.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPlaced, st)

	_, err = svc.GetStatus(ctx, customer, "no-such-order")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestListForUser(t *testing.T) {
	svc, _, _, _, _ := newFixture()
	ctx := context.Background()
	placeOrder(t, svc)
	placeOrder(t, svc)

	out, err := svc.ListForUser(ctx, customer)
	require.NoError(t, err)
	assert.Len(t, out, 2)

	out, err = svc.ListForUser(ctx, stranger)
	require.NoError(t, err)
	assert.Empty(t, out)
}
