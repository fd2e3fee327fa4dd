package usecase

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

// 確定済み注文の参照だけ（更新はしない）
type OrderUsecase struct {
	tx  repo.TransactionManager
	log *slog.Logger
}

func NewOrderUsecase(tx repo.TransactionManager, log *slog.Logger) *OrderUsecase {
	return &OrderUsecase{tx: tx, log: log}
}

type OrderItemOutput struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int64  `json:"quantity"`
	Subtotal  int64  `json:"subtotal"`
}

type OrderOutput struct {
	ID            int64             `json:"id"`
	TenantID      int64             `json:"tenant_id"`
	CustomerID    int64             `json:"customer_id"`
	Status        string            `json:"status"`
	PaymentMethod string            `json:"payment_method"`
	TotalPrice    int64             `json:"total_price"`
	CreatedAt     time.Time         `json:"created_at"`
	Items         []OrderItemOutput `json:"items"`
}

func (u *OrderUsecase) GetOrder(ctx context.Context, tenantID int64, orderID int64) (OrderOutput, error) {
	if tenantID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid tenant")
	}
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out OrderOutput

	// 注文と明細を同じスナップショットで読む
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, tenantID, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			//他テナントの注文も「存在しない扱い」
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return err
		}

		items, err := r.OrderItems().ListByOrder(ctx, tenantID, orderID)
		if err != nil {
			return err
		}

		out = toOrderOutput(o, items)
		return nil
	})

	if err != nil {
		if _, ok := AsHTTPError(err); ok {
			return OrderOutput{}, err
		}
		u.log.ErrorContext(ctx, "get order failed", "tenant_id", tenantID, "order_id", orderID, "err", err)
		return OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return out, nil
}

func toOrderOutput(o model.Order, items []model.OrderItem) OrderOutput {
	outItems := make([]OrderItemOutput, 0, len(items))
	for _, it := range items {
		outItems = append(outItems, OrderItemOutput{
			ProductID: it.ProductID,
			Name:      it.ProductNameSnapshot,
			UnitPrice: it.UnitPriceSnapshot,
			Quantity:  it.Quantity,
			Subtotal:  it.Subtotal,
		})
	}

	return OrderOutput{
		ID:            o.ID,
		TenantID:      o.TenantID,
		CustomerID:    o.CustomerID,
		Status:        string(o.Status),
		PaymentMethod: o.PaymentMethod,
		TotalPrice:    o.TotalPrice,
		CreatedAt:     o.CreatedAt,
		Items:         outItems,
	}
}
