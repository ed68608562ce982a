package router

import (
	"github.com/labstack/echo/v4"

	"chatwave/internal/adapter/api/handler"
	"chatwave/internal/adapter/api/middleware"
)

// SetupUserRouter initializes user routes
func SetupUserRouter(e *echo.Echo, userHandler *handler.UserHandler, authMiddleware *middleware.AuthMiddleware) {
	userGroup := e.Group("/v1/users")
	userGroup.Use(authMiddleware.Authenticate)

	userGroup.GET("", userHandler.Search)                  // GET /v1/users?search=... - Find users to chat with
	userGroup.GET("/me", userHandler.Me)                   // GET /v1/users/me - Current profile
	userGroup.POST("/me/avatar", userHandler.UploadAvatar) // POST /v1/users/me/avatar - Update profile picture
}
