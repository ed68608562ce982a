package router

import (
	"github.com/labstack/echo/v4"

	"chatwave/internal/adapter/api/handler"
	"chatwave/internal/adapter/api/middleware"
)

// SetupMessageRouter sets up message routes
func SetupMessageRouter(e *echo.Echo, messageHandler *handler.MessageHandler, authMiddleware *middleware.AuthMiddleware) {
	messageGroup := e.Group("/v1/messages")
	messageGroup.Use(authMiddleware.Authenticate)

	messageGroup.POST("", messageHandler.Send)              // POST /v1/messages - Persist a message
	messageGroup.GET("/:chatId", messageHandler.ListByChat) // GET /v1/messages/:chatId - Full chat history
}
