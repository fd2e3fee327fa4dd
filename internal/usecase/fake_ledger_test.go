package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

// =====================
// インメモリのトランザクション付きストア
// =====================

var errInjected = errors.New("injected failure")

type ledgerState struct {
	products      map[int64]model.Product
	customers     []model.Customer
	orders        []model.Order
	orderItems    []model.OrderItem
	visits        []model.CustomerVisit
	movements     []model.InventoryMovement
	notifications []model.StockNotification
	nextID        int64
}

func (s ledgerState) clone() ledgerState {
	out := s
	out.products = make(map[int64]model.Product, len(s.products))
	for k, v := range s.products {
		out.products[k] = v
	}
	out.customers = append([]model.Customer(nil), s.customers...)
	out.orders = append([]model.Order(nil), s.orders...)
	out.orderItems = append([]model.OrderItem(nil), s.orderItems...)
	out.visits = append([]model.CustomerVisit(nil), s.visits...)
	out.movements = append([]model.InventoryMovement(nil), s.movements...)
	out.notifications = append([]model.StockNotification(nil), s.notifications...)
	return out
}

// fakeLedger は WithinTx を1本ずつ直列に実行し、失敗したら丸ごと捨てる。
// fail に操作名を入れるとその操作がエラーを返す。
// "inventory.decrease.short:<商品ID>" は減算が0行だった（ok=false）ことにする。
type fakeLedger struct {
	mu    sync.Mutex
	state ledgerState
	fail  map[string]error
	txs   int
}

func newFakeLedger(products ...model.Product) *fakeLedger {
	l := &fakeLedger{
		state: ledgerState{products: map[int64]model.Product{}, nextID: 1000},
		fail:  map[string]error{},
	}
	for _, p := range products {
		l.state.products[p.ID] = p
	}
	return l
}

func (l *fakeLedger) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.txs++

	work := l.state.clone()
	tx := &fakeTx{l: l, s: &work}
	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	l.state = work
	return nil
}

// 確定済みの状態を読む（テスト用）
func (l *fakeLedger) snapshot() ledgerState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state.clone()
}

func (l *fakeLedger) product(id int64) model.Product {
	return l.snapshot().products[id]
}

func (l *fakeLedger) addCustomer(c model.Customer) model.Customer {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.state.nextID++
	c.ID = l.state.nextID
	l.state.customers = append(l.state.customers, c)
	return c
}

type fakeTx struct {
	l *fakeLedger
	s *ledgerState
}

func (t *fakeTx) id() int64 {
	t.s.nextID++
	return t.s.nextID
}

func (t *fakeTx) failed(op string) error {
	return t.l.fail[op]
}

func (t *fakeTx) Orders() repo.OrderRepository               { return fakeOrders{t} }
func (t *fakeTx) OrderItems() repo.OrderItemRepository       { return fakeOrderItems{t} }
func (t *fakeTx) Customers() repo.CustomerRepository         { return fakeCustomers{t} }
func (t *fakeTx) Inventory() repo.InventoryRepository        { return fakeInventory{t} }
func (t *fakeTx) Products() repo.ProductRepository           { return fakeProducts{t} }
func (t *fakeTx) Notifications() repo.NotificationRepository { return fakeNotifications{t} }

// 失敗したらSAVEPOINT時点まで戻す
func (t *fakeTx) Savepoint(ctx context.Context, fn func(r repo.TxRepos) error) error {
	saved := t.s.clone()
	if err := fn(t); err != nil {
		*t.s = saved
		return err
	}
	return nil
}

// =====================
// repositories
// =====================

type fakeProducts struct{ t *fakeTx }

func (r fakeProducts) FindByID(ctx context.Context, tenantID int64, productID int64) (model.Product, error) {
	p, ok := r.t.s.products[productID]
	if !ok || p.TenantID != tenantID {
		return model.Product{}, repo.ErrNotFound
	}
	return p, nil
}

func (r fakeProducts) FindByIDForUpdate(ctx context.Context, tenantID int64, productID int64) (model.Product, error) {
	return r.FindByID(ctx, tenantID, productID)
}

func (r fakeProducts) Hide(ctx context.Context, tenantID int64, productID int64) error {
	if err := r.t.failed("products.hide"); err != nil {
		return err
	}
	p, err := r.FindByID(ctx, tenantID, productID)
	if err != nil {
		return err
	}
	p.IsActive = false
	r.t.s.products[productID] = p
	return nil
}

type fakeInventory struct{ t *fakeTx }

func (r fakeInventory) DecreaseStockIfEnough(ctx context.Context, tenantID int64, productID int64, qty int64) (int64, bool, error) {
	if err := r.t.failed("inventory.decrease"); err != nil {
		return 0, false, err
	}
	if _, short := r.t.l.fail[fmt.Sprintf("inventory.decrease.short:%d", productID)]; short {
		return 0, false, nil
	}
	p, ok := r.t.s.products[productID]
	if !ok || p.TenantID != tenantID || p.Stock < qty {
		return 0, false, nil
	}
	p.Stock -= qty
	r.t.s.products[productID] = p
	return p.Stock, true, nil
}

func (r fakeInventory) CreateMovement(ctx context.Context, m model.InventoryMovement) error {
	if err := r.t.failed("inventory.movement"); err != nil {
		return err
	}
	m.ID = r.t.id()
	r.t.s.movements = append(r.t.s.movements, m)
	return nil
}

type fakeCustomers struct{ t *fakeTx }

func (r fakeCustomers) FindActiveByID(ctx context.Context, tenantID int64, customerID int64) (model.Customer, error) {
	for _, c := range r.t.s.customers {
		if c.ID == customerID && c.TenantID == tenantID && c.IsActive {
			return c, nil
		}
	}
	return model.Customer{}, repo.ErrNotFound
}

func (r fakeCustomers) FindActiveByEmail(ctx context.Context, tenantID int64, email string) (model.Customer, error) {
	for _, c := range r.t.s.customers {
		if c.TenantID == tenantID && c.Email != nil && *c.Email == email && c.IsActive {
			return c, nil
		}
	}
	return model.Customer{}, repo.ErrNotFound
}

func (r fakeCustomers) Create(ctx context.Context, c model.Customer) (model.Customer, error) {
	if err := r.t.failed("customers.create"); err != nil {
		return model.Customer{}, err
	}
	if c.Email != nil {
		for _, ex := range r.t.s.customers {
			if ex.TenantID == c.TenantID && ex.Email != nil && *ex.Email == *c.Email {
				return model.Customer{}, repo.ErrConflict
			}
		}
	}
	c.ID = r.t.id()
	r.t.s.customers = append(r.t.s.customers, c)
	return c, nil
}

func (r fakeCustomers) GetOrCreateGeneric(ctx context.Context, tenantID int64) (model.Customer, error) {
	for _, c := range r.t.s.customers {
		if c.TenantID == tenantID && c.GenericKey != nil {
			return c, nil
		}
	}
	key := model.GenericCustomerKey
	c := model.Customer{
		ID:         r.t.id(),
		TenantID:   tenantID,
		Name:       model.GenericCustomerName,
		GenericKey: &key,
		IsActive:   true,
	}
	r.t.s.customers = append(r.t.s.customers, c)
	return c, nil
}

func (r fakeCustomers) CreateVisit(ctx context.Context, v model.CustomerVisit) error {
	if err := r.t.failed("customers.visit"); err != nil {
		return err
	}
	v.ID = r.t.id()
	r.t.s.visits = append(r.t.s.visits, v)
	return nil
}

type fakeOrders struct{ t *fakeTx }

func (r fakeOrders) FindByID(ctx context.Context, tenantID int64, orderID int64) (model.Order, error) {
	for _, o := range r.t.s.orders {
		if o.ID == orderID && o.TenantID == tenantID {
			return o, nil
		}
	}
	return model.Order{}, repo.ErrNotFound
}

func (r fakeOrders) Create(ctx context.Context, o model.Order) (int64, error) {
	if err := r.t.failed("orders.create"); err != nil {
		return 0, err
	}
	o.ID = r.t.id()
	r.t.s.orders = append(r.t.s.orders, o)
	return o.ID, nil
}

type fakeOrderItems struct{ t *fakeTx }

func (r fakeOrderItems) CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error {
	if err := r.t.failed("order_items.create"); err != nil {
		return err
	}
	for _, it := range items {
		it.ID = r.t.id()
		it.OrderID = orderID
		r.t.s.orderItems = append(r.t.s.orderItems, it)
	}
	return nil
}

func (r fakeOrderItems) ListByOrder(ctx context.Context, tenantID int64, orderID int64) ([]model.OrderItem, error) {
	if _, err := (fakeOrders{r.t}).FindByID(ctx, tenantID, orderID); err != nil {
		return []model.OrderItem{}, nil
	}
	out := []model.OrderItem{}
	for _, it := range r.t.s.orderItems {
		if it.OrderID == orderID {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeNotifications struct{ t *fakeTx }

func (r fakeNotifications) Create(ctx context.Context, n model.StockNotification) error {
	if err := r.t.failed("notifications.create"); err != nil {
		return err
	}
	n.ID = r.t.id()
	r.t.s.notifications = append(r.t.s.notifications, n)
	return nil
}

func (r fakeNotifications) ListUnpublished(ctx context.Context, limit int) ([]model.StockNotification, error) {
	out := []model.StockNotification{}
	for _, n := range r.t.s.notifications {
		if n.PublishedAt == nil && len(out) < limit {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r fakeNotifications) MarkPublished(ctx context.Context, id int64, at time.Time) error {
	for i, n := range r.t.s.notifications {
		if n.ID == id && n.PublishedAt == nil {
			r.t.s.notifications[i].PublishedAt = &at
			return nil
		}
	}
	return repo.ErrNotFound
}
