package handler

import (
	"net/http"

	"storefront/internal/middleware"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// 在庫不足のときだけ詳細を付ける
type InsufficientStockResponse struct {
	Error     string `json:"error"`
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Available int64  `json:"available"`
	Requested int64  `json:"requested"`
}

type SuccessResponse struct {
	Message string `json:"message"`
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if se, ok := usecase.AsInsufficientStock(err); ok {
		return c.JSON(http.StatusConflict, InsufficientStockResponse{
			Error:     "insufficient stock",
			ProductID: se.ProductID,
			Name:      se.Name,
			Available: se.Available,
			Requested: se.Requested,
		})
	}
	if he, ok := usecase.AsHTTPError(err); ok {
		return c.JSON(he.Status, ErrorResponse{Error: he.Message})
	}

	//500
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

// middleware.TenantScope が c.Set した値を取り出す
func getTenantIDFromContext(c echo.Context) (int64, bool) {
	return middleware.TenantID(c)
}
