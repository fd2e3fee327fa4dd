package usecase

import (
	"errors"
	"fmt"
	"net/http"
)

type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

// 在庫不足。どの商品が何個足りないかを返す
type InsufficientStockError struct {
	ProductID int64
	Name      string
	Available int64
	Requested int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock: product %d available=%d requested=%d", e.ProductID, e.Available, e.Requested)
}

func AsInsufficientStock(err error) (*InsufficientStockError, bool) {
	var ie *InsufficientStockError
	ok := errors.As(err, &ie)
	return ie, ok
}

const (
	msgEmptyCart      = "empty or missing cart"
	msgCheckoutFailed = "checkout failed, retry"
)

func errEmptyCart() error {
	return NewHTTPError(http.StatusUnprocessableEntity, msgEmptyCart)
}

// Tx内の想定外エラーはまとめてこれにする（カートは残るので再試行できる）
func errCheckoutFailed() error {
	return NewHTTPError(http.StatusServiceUnavailable, msgCheckoutFailed)
}
