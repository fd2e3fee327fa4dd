package cartstore

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"storefront/internal/domain/model"

	"github.com/google/uuid"
)

var (
	ErrCartNotFound    = errors.New("cart not found")
	ErrLineNotFound    = errors.New("cart line not found")
	ErrInvalidQuantity = errors.New("quantity must be > 0")
)

// 追加する商品（カタログから読んだ時点の値）
type Item struct {
	ProductID int64
	Name      string
	UnitPrice int64
	Quantity  int64
	Stock     int64
}

// カート1件ごとのロック
// removedは削除済みで、取得できても使ってはいけない印。
type entry struct {
	mu      sync.Mutex
	cart    model.Cart
	removed bool
}

// Store はプロセス内のカート置き場。
// 同じカートIDの操作は直列、別IDの操作は互いに待たない。
// mapのロックは検索・追加・削除のときだけ短く持つ。
// プロセス再起動で消え、複数インスタンス間でも共有されない。
type Store struct {
	mu    sync.RWMutex
	carts map[string]*entry

	newID func() string
	now   func() time.Time
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

func New(opts ...Option) *Store {
	s := &Store{
		carts: make(map[string]*entry),
		newID: uuid.NewString,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ロック済みのentryを返す。無い・削除済み・別テナントならnil
func (s *Store) acquire(tenantID int64, cartID string) *entry {
	s.mu.RLock()
	e := s.carts[cartID]
	s.mu.RUnlock()
	if e == nil {
		return nil
	}

	e.mu.Lock()
	if e.removed || e.cart.TenantID != tenantID {
		e.mu.Unlock()
		return nil
	}
	return e
}

// e.muを持った状態で呼ぶ
func (s *Store) remove(e *entry) {
	e.removed = true
	s.mu.Lock()
	if s.carts[e.cart.ID] == e {
		delete(s.carts, e.cart.ID)
	}
	s.mu.Unlock()
}

// 新しいカートを登録する（ロックは持たない状態で返す）
func (s *Store) create(tenantID int64, hint string, line model.CartLine) model.Cart {
	now := s.now()
	cart := model.Cart{
		TenantID:     tenantID,
		Lines:        []model.CartLine{line},
		CustomerHint: hint,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	cart.Recalculate()

	s.mu.Lock()
	defer s.mu.Unlock()
	for {
		cart.ID = s.newID()
		if _, exists := s.carts[cart.ID]; !exists {
			break
		}
	}
	s.carts[cart.ID] = &entry{cart: cart}
	return cart.Clone()
}

// AddItem は商品を追加する。cartIDが空・未知なら新しいカートを作る。
// 同じ商品は数量を足す（価格は最初の追加時のまま）。
func (s *Store) AddItem(tenantID int64, cartID string, item Item, customerHint string) (model.Cart, error) {
	if item.Quantity <= 0 {
		return model.Cart{}, ErrInvalidQuantity
	}

	line := model.CartLine{
		ProductID:     item.ProductID,
		Name:          item.Name,
		UnitPrice:     item.UnitPrice,
		Quantity:      item.Quantity,
		StockSnapshot: item.Stock,
	}

	var e *entry
	if cartID != "" {
		e = s.acquire(tenantID, cartID)
	}
	if e == nil {
		return s.create(tenantID, customerHint, line), nil
	}
	defer e.mu.Unlock()

	if i := e.cart.LineIndex(item.ProductID); i >= 0 {
		if e.cart.Lines[i].Quantity > math.MaxInt64-item.Quantity {
			return model.Cart{}, ErrInvalidQuantity
		}
		e.cart.Lines[i].Quantity += item.Quantity
		e.cart.Lines[i].StockSnapshot = item.Stock
	} else {
		e.cart.Lines = append(e.cart.Lines, line)
	}
	if customerHint != "" {
		e.cart.CustomerHint = customerHint
	}
	e.cart.UpdatedAt = s.now()
	e.cart.Recalculate()

	return e.cart.Clone(), nil
}

// UpdateQuantity は明細の数量を置き換える
func (s *Store) UpdateQuantity(tenantID int64, cartID string, productID int64, qty int64) (model.Cart, error) {
	if qty <= 0 {
		return model.Cart{}, ErrInvalidQuantity
	}

	e := s.acquire(tenantID, cartID)
	if e == nil {
		return model.Cart{}, ErrCartNotFound
	}
	defer e.mu.Unlock()

	i := e.cart.LineIndex(productID)
	if i < 0 {
		return model.Cart{}, ErrLineNotFound
	}
	e.cart.Lines[i].Quantity = qty
	e.cart.UpdatedAt = s.now()
	e.cart.Recalculate()

	return e.cart.Clone(), nil
}

// RemoveItem は明細を削除する。最後の1件でもカート自体は残す
func (s *Store) RemoveItem(tenantID int64, cartID string, productID int64) (model.Cart, error) {
	e := s.acquire(tenantID, cartID)
	if e == nil {
		return model.Cart{}, ErrCartNotFound
	}
	defer e.mu.Unlock()

	i := e.cart.LineIndex(productID)
	if i < 0 {
		return model.Cart{}, ErrLineNotFound
	}
	e.cart.Lines = append(e.cart.Lines[:i], e.cart.Lines[i+1:]...)
	e.cart.UpdatedAt = s.now()
	e.cart.Recalculate()

	return e.cart.Clone(), nil
}

func (s *Store) Get(tenantID int64, cartID string) (model.Cart, error) {
	e := s.acquire(tenantID, cartID)
	if e == nil {
		return model.Cart{}, ErrCartNotFound
	}
	defer e.mu.Unlock()

	return e.cart.Clone(), nil
}

// Clear は何度呼んでもエラーにしない
func (s *Store) Clear(tenantID int64, cartID string) {
	e := s.acquire(tenantID, cartID)
	if e == nil {
		return
	}
	defer e.mu.Unlock()

	s.remove(e)
}

// Consume はカートのロックを持ったままfnを実行する。
// fnが成功したときだけカートを消す。失敗ならカートはそのまま。
func (s *Store) Consume(tenantID int64, cartID string, fn func(cart model.Cart) error) error {
	e := s.acquire(tenantID, cartID)
	if e == nil {
		return ErrCartNotFound
	}
	defer e.mu.Unlock()

	if err := fn(e.cart.Clone()); err != nil {
		return err
	}
	s.remove(e)
	return nil
}

// Len は保持しているカート数
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.carts)
}

// Sweep はidleTTL以上更新されていないカートを捨てる。
// 使用中（チェックアウト中など）のカートは飛ばす。
func (s *Store) Sweep(now time.Time, idleTTL time.Duration) int {
	s.mu.RLock()
	entries := make([]*entry, 0, len(s.carts))
	for _, e := range s.carts {
		entries = append(entries, e)
	}
	s.mu.RUnlock()

	removed := 0
	for _, e := range entries {
		if !e.mu.TryLock() {
			continue
		}
		if !e.removed && now.Sub(e.cart.UpdatedAt) >= idleTTL {
			s.remove(e)
			removed++
		}
		e.mu.Unlock()
	}
	return removed
}

// RunSweeper はctxが終わるまで定期的にSweepする
func (s *Store) RunSweeper(ctx context.Context, interval time.Duration, idleTTL time.Duration, onSweep func(removed int)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			n := s.Sweep(s.now(), idleTTL)
			if onSweep != nil {
				onSweep(n)
			}
		case <-ctx.Done():
			return
		}
	}
}
