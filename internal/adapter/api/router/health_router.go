package router

import (
	"github.com/labstack/echo/v4"

	"chatwave/internal/adapter/api/handler"
)

// SetupHealthRouter initializes the health check route
func SetupHealthRouter(e *echo.Echo) {
	healthHandler := handler.NewHealthHandler()

	e.GET("/health", healthHandler.Check)
}
