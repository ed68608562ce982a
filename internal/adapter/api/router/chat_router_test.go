package router

import (
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"chatwave/internal/adapter/api/handler"
	"chatwave/internal/adapter/api/middleware"
)

func TestChatRoutesRegistered(t *testing.T) {
	e := echo.New()
	SetupChatRouter(e, handler.NewChatHandler(nil), middleware.NewAuthMiddleware(nil))

	registered := make(map[string]bool)
	for _, r := range e.Routes() {
		registered[r.Method+" "+r.Path] = true
	}

	for _, route := range []string{
		http.MethodPost + " /v1/chats",
		http.MethodGet + " /v1/chats",
		http.MethodGet + " /v1/chats/:id",
		http.MethodPost + " /v1/chats/group",
		http.MethodPut + " /v1/chats/:id/rename",
		http.MethodPut + " /v1/chats/:id/members",
		http.MethodDelete + " /v1/chats/:id/members/:userId",
	} {
		assert.True(t, registered[route], route)
	}
}
