package router

import (
	"github.com/labstack/echo/v4"

	"chatwave/internal/adapter/api/handler"
	"chatwave/internal/adapter/api/middleware"
)

// SetupChatRouter sets up all chat-related routes (excluding WebSocket)
func SetupChatRouter(e *echo.Echo, chatHandler *handler.ChatHandler, authMiddleware *middleware.AuthMiddleware) {
	chatGroup := e.Group("/v1/chats")
	chatGroup.Use(authMiddleware.Authenticate)

	// Chat management
	chatGroup.POST("", chatHandler.Access) // POST /v1/chats - Open (or create) a direct chat
	chatGroup.GET("", chatHandler.List)    // GET /v1/chats - Get user's chats
	chatGroup.GET("/:id", chatHandler.Get) // GET /v1/chats/:id - Get specific chat

	// Group management
	chatGroup.POST("/group", chatHandler.CreateGroup)                  // POST /v1/chats/group - Create group chat
	chatGroup.PUT("/:id/rename", chatHandler.Rename)                   // PUT /v1/chats/:id/rename - Rename group
	chatGroup.PUT("/:id/members", chatHandler.AddMember)               // PUT /v1/chats/:id/members - Add member
	chatGroup.DELETE("/:id/members/:userId", chatHandler.RemoveMember) // DELETE /v1/chats/:id/members/:userId - Remove member or leave
}
