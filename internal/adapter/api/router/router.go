package router

import (
	"github.com/labstack/echo/v4"

	"chatwave/internal/adapter/api/handler"
	"chatwave/internal/adapter/api/middleware"
)

func Setup(
	e *echo.Echo,
	authMiddleware *middleware.AuthMiddleware,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	chatHandler *handler.ChatHandler,
	messageHandler *handler.MessageHandler,
	wsHandler *handler.WebSocketHandler,
) {
	SetupAuthRouter(e, authHandler)
	SetupUserRouter(e, userHandler, authMiddleware)
	SetupChatRouter(e, chatHandler, authMiddleware)
	SetupMessageRouter(e, messageHandler, authMiddleware)
	SetupWebSocketRouter(e, wsHandler)
	SetupHealthRouter(e)
}
