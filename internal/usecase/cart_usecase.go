package usecase

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"storefront/internal/cartstore"
	"storefront/internal/domain/model"
	"storefront/internal/metrics"
	repo "storefront/internal/repository"
)

// CartUsecase は /cart の業務ロジックです。
// 入力チェックとカタログ確認をしてからCartStoreに渡す。
type CartUsecase struct {
	carts   *cartstore.Store
	catalog ProductCatalog
	metrics *metrics.Metrics
	log     *slog.Logger
}

func NewCartUsecase(carts *cartstore.Store, catalog ProductCatalog, m *metrics.Metrics, log *slog.Logger) *CartUsecase {
	return &CartUsecase{
		carts:   carts,
		catalog: catalog,
		metrics: m,
		log:     log,
	}
}

type AddItemInput struct {
	CartID       string
	TenantID     int64
	ProductID    int64
	Quantity     int64
	CustomerHint string
}

type AddItemOutput struct {
	CartID string     `json:"cart_id"`
	Cart   model.Cart `json:"cart"`
}

const maxCustomerHintLen = 255

// AddItem はカートに追加（同一商品は数量加算）。
// カートIDが無ければ新しく作る。
func (u *CartUsecase) AddItem(ctx context.Context, in AddItemInput) (AddItemOutput, error) {
	if in.TenantID <= 0 {
		return AddItemOutput{}, NewHTTPError(http.StatusBadRequest, "invalid tenant")
	}
	if in.ProductID <= 0 {
		return AddItemOutput{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}
	if in.Quantity < 1 {
		return AddItemOutput{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}
	hint := strings.TrimSpace(in.CustomerHint)
	if len(hint) > maxCustomerHintLen {
		return AddItemOutput{}, NewHTTPError(http.StatusBadRequest, "customer_hint too long")
	}

	// 商品チェック（公開のみ）
	p, err := u.catalog.FindByID(ctx, in.TenantID, in.ProductID)
	if errors.Is(err, repo.ErrNotFound) {
		return AddItemOutput{}, NewHTTPError(http.StatusNotFound, "product not found")
	}
	if err != nil {
		u.log.ErrorContext(ctx, "catalog lookup failed", "tenant_id", in.TenantID, "product_id", in.ProductID, "err", err)
		return AddItemOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !p.IsActive {
		return AddItemOutput{}, NewHTTPError(http.StatusNotFound, "product not found")
	}

	// 既存数量と合わせて在庫を超えないか（ここは参考値、確定はチェックアウト時）
	var existingQty int64
	if in.CartID != "" {
		if cart, err := u.carts.Get(in.TenantID, in.CartID); err == nil {
			if i := cart.LineIndex(in.ProductID); i >= 0 {
				existingQty = cart.Lines[i].Quantity
			}
		}
	}
	// 足し算はオーバーフローするので引き算で比べる
	if in.Quantity > p.Stock-existingQty {
		return AddItemOutput{}, NewHTTPError(http.StatusBadRequest, "stock exceeded")
	}

	cart, err := u.carts.AddItem(in.TenantID, in.CartID, cartstore.Item{
		ProductID: p.ID,
		Name:      p.Name,
		UnitPrice: p.Price,
		Quantity:  in.Quantity,
		Stock:     p.Stock,
	}, hint)
	if err != nil {
		return AddItemOutput{}, toCartError(err)
	}

	u.metrics.CartOp("add")
	u.metrics.SetOpenCarts(u.carts.Len())
	return AddItemOutput{CartID: cart.ID, Cart: cart}, nil
}

func (u *CartUsecase) GetCart(ctx context.Context, tenantID int64, cartID string) (model.Cart, error) {
	if tenantID <= 0 {
		return model.Cart{}, NewHTTPError(http.StatusBadRequest, "invalid tenant")
	}

	cart, err := u.carts.Get(tenantID, cartID)
	if err != nil {
		return model.Cart{}, toCartError(err)
	}
	return cart, nil
}

// 数量変更（在庫チェック付き）。
func (u *CartUsecase) UpdateQuantity(ctx context.Context, tenantID int64, cartID string, productID int64, qty int64) (model.Cart, error) {
	if tenantID <= 0 {
		return model.Cart{}, NewHTTPError(http.StatusBadRequest, "invalid tenant")
	}
	if productID <= 0 {
		return model.Cart{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}
	if qty < 1 {
		return model.Cart{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}

	p, err := u.catalog.FindByID(ctx, tenantID, productID)
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		u.log.ErrorContext(ctx, "catalog lookup failed", "tenant_id", tenantID, "product_id", productID, "err", err)
		return model.Cart{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if err == nil && !p.IsActive {
		return model.Cart{}, NewHTTPError(http.StatusNotFound, "product not found")
	}
	if err == nil && qty > p.Stock {
		return model.Cart{}, NewHTTPError(http.StatusBadRequest, "stock exceeded")
	}

	cart, err := u.carts.UpdateQuantity(tenantID, cartID, productID, qty)
	if err != nil {
		return model.Cart{}, toCartError(err)
	}

	u.metrics.CartOp("update")
	return cart, nil
}

// 明細削除
func (u *CartUsecase) RemoveItem(ctx context.Context, tenantID int64, cartID string, productID int64) (model.Cart, error) {
	if tenantID <= 0 {
		return model.Cart{}, NewHTTPError(http.StatusBadRequest, "invalid tenant")
	}
	if productID <= 0 {
		return model.Cart{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}

	cart, err := u.carts.RemoveItem(tenantID, cartID, productID)
	if err != nil {
		return model.Cart{}, toCartError(err)
	}

	u.metrics.CartOp("remove")
	return cart, nil
}

// 空にする（無くても成功）
func (u *CartUsecase) Clear(ctx context.Context, tenantID int64, cartID string) error {
	if tenantID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid tenant")
	}

	u.carts.Clear(tenantID, cartID)
	u.metrics.CartOp("clear")
	u.metrics.SetOpenCarts(u.carts.Len())
	return nil
}

func toCartError(err error) error {
	switch {
	case errors.Is(err, cartstore.ErrCartNotFound):
		return NewHTTPError(http.StatusNotFound, "cart not found")
	case errors.Is(err, cartstore.ErrLineNotFound):
		return NewHTTPError(http.StatusNotFound, "cart item not found")
	case errors.Is(err, cartstore.ErrInvalidQuantity):
		return NewHTTPError(http.StatusBadRequest, "invalid quantity")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}
