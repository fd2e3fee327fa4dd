package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

const (
	HeaderTenantID = "X-Tenant-ID"
	CtxTenantIDKey = "tenant_id" // int64
)

// テナントIDをヘッダから取り出してcontextへ入れる。
// 認証は外側（ゲートウェイ）で済んでいる前提。
func TenantScope() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := strings.TrimSpace(c.Request().Header.Get(HeaderTenantID))
			if raw == "" {
				return c.JSON(http.StatusBadRequest, errorJSON("missing tenant"))
			}

			tenantID, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || tenantID <= 0 {
				return c.JSON(http.StatusBadRequest, errorJSON("invalid tenant"))
			}

			c.Set(CtxTenantIDKey, tenantID)
			return next(c)
		}
	}
}

// TenantID はTenantScopeが入れた値を取り出す
func TenantID(c echo.Context) (int64, bool) {
	v, ok := c.Get(CtxTenantIDKey).(int64)
	if !ok || v <= 0 {
		return 0, false
	}
	return v, true
}

type errorResponse struct {
	Error string `json:"error"`
}

func errorJSON(msg string) errorResponse {
	return errorResponse{Error: msg}
}
