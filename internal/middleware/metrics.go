package middleware

import (
	"strconv"
	"time"

	"storefront/internal/metrics"

	"github.com/labstack/echo/v4"
)

// リクエスト数とレイテンシを記録する。
// ラベルはルートのパターン（/cart/:cart_id）なのでIDで増えない。
func RequestMetrics(m *metrics.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				// echoのエラーハンドラより先にステータスを確定させる
				c.Error(err)
			}

			path := c.Path()
			if path == "" {
				path = "unknown"
			}
			m.ObserveRequest(path, strconv.Itoa(c.Response().Status), time.Since(start))
			return nil
		}
	}
}
