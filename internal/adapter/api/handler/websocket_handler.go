package handler

import (
	"net/http"
	"strings"

	gorillaws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	ws "chatwave/internal/infrastructure/websocket"
	"chatwave/internal/usecase"
	"chatwave/pkg/errors"
	"chatwave/pkg/logger"
	"chatwave/pkg/response"
)

type WebSocketHandler struct {
	wsManager    *ws.Manager
	tokenManager usecase.TokenManager
}

var upgrader = gorillaws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Restrict this in production
	},
}

func NewWebSocketHandler(wsManager *ws.Manager, tokenManager usecase.TokenManager) *WebSocketHandler {
	return &WebSocketHandler{
		wsManager:    wsManager,
		tokenManager: tokenManager,
	}
}

// HandleWebSocket authenticates the request, upgrades it and hands the
// connection to the manager. Browsers cannot set headers on websocket
// requests, so the token may also come as a query parameter.
func (h *WebSocketHandler) HandleWebSocket(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		authHeader := c.Request().Header.Get("Authorization")
		if strings.HasPrefix(authHeader, "Bearer ") {
			token = strings.TrimPrefix(authHeader, "Bearer ")
		}
	}
	if token == "" {
		return response.Error(c, errors.Unauthorized("Authentication required", nil))
	}

	userID, err := h.tokenManager.Verify(token)
	if err != nil {
		return response.Error(c, errors.Unauthorized("Invalid or expired token", err))
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return errors.Internal("Failed to upgrade connection", err)
	}

	logger.Info("WebSocket connected: user %s", userID)

	client := h.wsManager.Connect(userID, conn)
	go client.WritePump()
	go client.ReadPump()

	return nil
}
