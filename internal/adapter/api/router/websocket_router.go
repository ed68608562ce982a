package router

import (
	"github.com/labstack/echo/v4"

	"chatwave/internal/adapter/api/handler"
)

// SetupWebSocketRouter sets up the realtime endpoint. Authentication happens
// inside the handler so browser clients can pass the token as a query param.
func SetupWebSocketRouter(e *echo.Echo, wsHandler *handler.WebSocketHandler) {
	e.GET("/ws", wsHandler.HandleWebSocket)
}
