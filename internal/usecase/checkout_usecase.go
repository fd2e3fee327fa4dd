package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"storefront/internal/cartstore"
	"storefront/internal/domain/model"
	"storefront/internal/metrics"
	repo "storefront/internal/repository"
)

const maxPaymentMethodLen = 50

// CheckoutUsecase はカートを注文に変換する。
// 注文・明細・在庫減算・非公開化は1つのTxで確定し、
// 通知と監査ログはSAVEPOINTで囲んで失敗しても注文は通す。
type CheckoutUsecase struct {
	tx        repo.TransactionManager
	carts     *cartstore.Store
	cache     ProductCacheInvalidator
	threshold int64
	timeout   time.Duration
	metrics   *metrics.Metrics
	log       *slog.Logger
	now       func() time.Time
}

type CheckoutConfig struct {
	LowStockThreshold int64
	Timeout           time.Duration
}

// cacheはnilでもよい
func NewCheckoutUsecase(tx repo.TransactionManager, carts *cartstore.Store, cache ProductCacheInvalidator, cfg CheckoutConfig, m *metrics.Metrics, log *slog.Logger) *CheckoutUsecase {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &CheckoutUsecase{
		tx:        tx,
		carts:     carts,
		cache:     cache,
		threshold: cfg.LowStockThreshold,
		timeout:   timeout,
		metrics:   m,
		log:       log,
		now:       time.Now,
	}
}

type CheckoutInput struct {
	TenantID      int64
	CartID        string
	Customer      CustomerInput
	PaymentMethod string
}

type SoldLine struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int64  `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
	Subtotal  int64  `json:"subtotal"`
}

type CheckoutOutput struct {
	OrderID       int64      `json:"order_id"`
	Total         int64      `json:"total"`
	CustomerID    int64      `json:"customer_id"`
	PaymentMethod string     `json:"payment_method"`
	Status        string     `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	Lines         []SoldLine `json:"lines"`
}

func (u *CheckoutUsecase) Checkout(ctx context.Context, in CheckoutInput) (CheckoutOutput, error) {
	start := time.Now()
	out, err := u.checkout(ctx, in)
	u.metrics.ObserveCheckout(checkoutResult(err), time.Since(start))
	return out, err
}

func (u *CheckoutUsecase) checkout(ctx context.Context, in CheckoutInput) (CheckoutOutput, error) {
	if in.TenantID <= 0 {
		return CheckoutOutput{}, NewHTTPError(http.StatusBadRequest, "invalid tenant")
	}
	payment := strings.TrimSpace(in.PaymentMethod)
	if payment == "" || len(payment) > maxPaymentMethodLen {
		return CheckoutOutput{}, NewHTTPError(http.StatusBadRequest, "invalid payment_method")
	}
	in.PaymentMethod = payment

	var out CheckoutOutput

	// カートのロックはcommitまで持つ。失敗したらカートはそのまま残る
	err := u.carts.Consume(in.TenantID, in.CartID, func(cart model.Cart) error {
		if cart.IsEmpty() {
			return errEmptyCart()
		}

		txCtx, cancel := context.WithTimeout(ctx, u.timeout)
		defer cancel()

		return u.tx.WithinTx(txCtx, func(r repo.TxRepos) error {
			var err error
			out, err = u.placeOrder(txCtx, r, cart, in)
			return err
		})
	})
	if errors.Is(err, cartstore.ErrCartNotFound) {
		return CheckoutOutput{}, errEmptyCart()
	}
	if err != nil {
		if _, ok := AsInsufficientStock(err); ok {
			return CheckoutOutput{}, err
		}
		if _, ok := AsHTTPError(err); ok {
			return CheckoutOutput{}, err
		}
		u.log.ErrorContext(ctx, "checkout rolled back", "tenant_id", in.TenantID, "cart_id", in.CartID, "err", err)
		return CheckoutOutput{}, errCheckoutFailed()
	}

	u.log.InfoContext(ctx, "checkout committed",
		"tenant_id", in.TenantID,
		"order_id", out.OrderID,
		"customer_id", out.CustomerID,
		"total", out.Total,
	)
	u.metrics.SetOpenCarts(u.carts.Len())

	// commit後なので失敗しても注文には影響しない
	if u.cache != nil {
		for _, l := range out.Lines {
			if err := u.cache.Invalidate(ctx, in.TenantID, l.ProductID); err != nil {
				u.log.WarnContext(ctx, "product cache invalidate failed", "tenant_id", in.TenantID, "product_id", l.ProductID, "err", err)
			}
		}
	}

	return out, nil
}

// Tx内の処理本体。ここでエラーを返すと全部rollbackされる
func (u *CheckoutUsecase) placeOrder(ctx context.Context, r repo.TxRepos, cart model.Cart, in CheckoutInput) (CheckoutOutput, error) {
	customer, strategy, err := resolveCustomer(ctx, r, in.TenantID, in.Customer)
	if err != nil {
		return CheckoutOutput{}, fmt.Errorf("resolve customer: %w", err)
	}
	u.log.DebugContext(ctx, "customer resolved", "tenant_id", in.TenantID, "customer_id", customer.ID, "strategy", strategy)

	// 書き込む前に全明細の在庫を確認（行ロック）
	locked, err := u.verifyStock(ctx, r, in.TenantID, cart)
	if err != nil {
		return CheckoutOutput{}, err
	}

	now := u.now()
	orderID, err := r.Orders().Create(ctx, model.Order{
		TenantID:      in.TenantID,
		CustomerID:    customer.ID,
		Status:        model.OrderStatusCompleted,
		PaymentMethod: in.PaymentMethod,
		TotalPrice:    cart.Total,
		CreatedAt:     now,
	})
	if err != nil {
		return CheckoutOutput{}, fmt.Errorf("create order: %w", err)
	}

	items := make([]model.OrderItem, 0, len(cart.Lines))
	sold := make([]SoldLine, 0, len(cart.Lines))
	for _, l := range cart.Lines {
		items = append(items, model.OrderItem{
			ProductID:           l.ProductID,
			ProductNameSnapshot: l.Name,
			UnitPriceSnapshot:   l.UnitPrice,
			Quantity:            l.Quantity,
			Subtotal:            l.Subtotal,
			CreatedAt:           now,
		})
		sold = append(sold, SoldLine{
			ProductID: l.ProductID,
			Name:      l.Name,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Subtotal:  l.Subtotal,
		})
	}
	if err := r.OrderItems().CreateBulk(ctx, orderID, items); err != nil {
		return CheckoutOutput{}, fmt.Errorf("create order items: %w", err)
	}

	// 在庫減算（カートの並び順）
	movements := make([]model.InventoryMovement, 0, len(cart.Lines))
	for _, l := range cart.Lines {
		newStock, ok, err := r.Inventory().DecreaseStockIfEnough(ctx, in.TenantID, l.ProductID, l.Quantity)
		if err != nil {
			return CheckoutOutput{}, fmt.Errorf("decrease stock %d: %w", l.ProductID, err)
		}
		if !ok {
			// 行ロック中なので通常は起きない
			return CheckoutOutput{}, &InsufficientStockError{
				ProductID: l.ProductID,
				Name:      l.Name,
				Available: locked[l.ProductID].Stock,
				Requested: l.Quantity,
			}
		}

		switch {
		case newStock == 0:
			if err := r.Products().Hide(ctx, in.TenantID, l.ProductID); err != nil {
				return CheckoutOutput{}, fmt.Errorf("hide product %d: %w", l.ProductID, err)
			}
			u.emit(ctx, r, model.StockNotification{
				TenantID:  in.TenantID,
				ProductID: l.ProductID,
				Kind:      model.StockNotificationOutOfStock,
				Message:   fmt.Sprintf("%s is out of stock and was hidden from the catalog", l.Name),
				CreatedAt: now,
			})
		case newStock <= u.threshold:
			u.emit(ctx, r, model.StockNotification{
				TenantID:  in.TenantID,
				ProductID: l.ProductID,
				Kind:      model.StockNotificationLowStock,
				Message:   fmt.Sprintf("%s is low on stock (%d left)", l.Name, newStock),
				CreatedAt: now,
			})
		}

		movements = append(movements, model.InventoryMovement{
			TenantID:   in.TenantID,
			ProductID:  l.ProductID,
			OrderID:    orderID,
			Kind:       model.MovementKindExit,
			Quantity:   l.Quantity,
			StockAfter: newStock,
			Reason:     fmt.Sprintf("sale order #%d", orderID),
			CreatedAt:  now,
		})
	}

	u.audit(ctx, r, model.CustomerVisit{
		TenantID:   in.TenantID,
		CustomerID: customer.ID,
		OrderID:    orderID,
		Amount:     cart.Total,
		CreatedAt:  now,
	}, movements)

	return CheckoutOutput{
		OrderID:       orderID,
		Total:         cart.Total,
		CustomerID:    customer.ID,
		PaymentMethod: in.PaymentMethod,
		Status:        string(model.OrderStatusCompleted),
		CreatedAt:     now,
		Lines:         sold,
	}, nil
}

// verifyStock は商品ID昇順で行ロックを取り、足りない明細があれば最初の1件を返す。
// 昇順にするのは同時チェックアウト同士でデッドロックしないため。
func (u *CheckoutUsecase) verifyStock(ctx context.Context, r repo.TxRepos, tenantID int64, cart model.Cart) (map[int64]model.Product, error) {
	ids := make([]int64, 0, len(cart.Lines))
	for _, l := range cart.Lines {
		ids = append(ids, l.ProductID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	locked := make(map[int64]model.Product, len(ids))
	for _, id := range ids {
		p, err := r.Products().FindByIDForUpdate(ctx, tenantID, id)
		if errors.Is(err, repo.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("lock product %d: %w", id, err)
		}
		locked[id] = p
	}

	for _, l := range cart.Lines {
		available := locked[l.ProductID].Available()
		if available < l.Quantity {
			return nil, &InsufficientStockError{
				ProductID: l.ProductID,
				Name:      l.Name,
				Available: available,
				Requested: l.Quantity,
			}
		}
	}
	return locked, nil
}

// 通知は失敗してもログだけ
func (u *CheckoutUsecase) emit(ctx context.Context, r repo.TxRepos, n model.StockNotification) {
	err := r.Savepoint(ctx, func(sp repo.TxRepos) error {
		return sp.Notifications().Create(ctx, n)
	})
	if err != nil {
		u.log.WarnContext(ctx, "stock notification not recorded",
			"tenant_id", n.TenantID,
			"product_id", n.ProductID,
			"kind", n.Kind,
			"err", err,
		)
	}
}

// 来店記録と出庫履歴。こちらも失敗しても注文は通す
func (u *CheckoutUsecase) audit(ctx context.Context, r repo.TxRepos, visit model.CustomerVisit, movements []model.InventoryMovement) {
	err := r.Savepoint(ctx, func(sp repo.TxRepos) error {
		return sp.Customers().CreateVisit(ctx, visit)
	})
	if err != nil {
		u.log.WarnContext(ctx, "customer visit not recorded", "tenant_id", visit.TenantID, "order_id", visit.OrderID, "err", err)
	}

	err = r.Savepoint(ctx, func(sp repo.TxRepos) error {
		for _, m := range movements {
			if err := sp.Inventory().CreateMovement(ctx, m); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		u.log.WarnContext(ctx, "inventory movements not recorded", "tenant_id", visit.TenantID, "order_id", visit.OrderID, "err", err)
	}
}

func checkoutResult(err error) string {
	if err == nil {
		return metrics.ResultCommitted
	}
	if _, ok := AsInsufficientStock(err); ok {
		return metrics.ResultInsufficientStock
	}
	if he, ok := AsHTTPError(err); ok {
		switch he.Status {
		case http.StatusUnprocessableEntity:
			return metrics.ResultEmptyCart
		case http.StatusServiceUnavailable:
			return metrics.ResultFailed
		}
		return metrics.ResultRejected
	}
	return metrics.ResultFailed
}
