package server

import (
	"net/http"

	"rental/internal/handler"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo, locationH *handler.LocationHandler, catalogH *handler.CatalogHandler) {
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	locationH.RegisterRoutes(e)
	catalogH.RegisterRoutes(e)
}
