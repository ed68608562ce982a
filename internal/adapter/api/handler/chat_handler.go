package handler

import (
	"github.com/labstack/echo/v4"

	"chatwave/internal/usecase"
	"chatwave/pkg/response"
)

type ChatHandler struct {
	chatUseCase *usecase.ChatUseCase
}

func NewChatHandler(chatUseCase *usecase.ChatUseCase) *ChatHandler {
	return &ChatHandler{
		chatUseCase: chatUseCase,
	}
}

type accessChatRequest struct {
	UserID string `json:"user_id" validate:"required"`
}

type createGroupRequest struct {
	Name      string   `json:"name" validate:"required,min=2"`
	MemberIDs []string `json:"member_ids" validate:"required,min=2,dive,required"`
}

type renameGroupRequest struct {
	Name string `json:"name" validate:"required,min=2"`
}

type memberRequest struct {
	UserID string `json:"user_id" validate:"required"`
}

// Access returns the direct chat with the given user, creating it on first
// contact.
func (h *ChatHandler) Access(c echo.Context) error {
	userID := c.Get("uid").(string)

	var req accessChatRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	chat, err := h.chatUseCase.AccessChat(c.Request().Context(), userID, req.UserID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, chat)
}

func (h *ChatHandler) List(c echo.Context) error {
	userID := c.Get("uid").(string)

	chats, err := h.chatUseCase.ListChats(c.Request().Context(), userID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, chats)
}

func (h *ChatHandler) Get(c echo.Context) error {
	userID := c.Get("uid").(string)
	chatID := c.Param("id")

	chat, err := h.chatUseCase.GetChat(c.Request().Context(), userID, chatID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, chat)
}

func (h *ChatHandler) CreateGroup(c echo.Context) error {
	userID := c.Get("uid").(string)

	var req createGroupRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	chat, err := h.chatUseCase.CreateGroupChat(c.Request().Context(), userID, usecase.CreateGroupChatInput{
		Name:      req.Name,
		MemberIDs: req.MemberIDs,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, chat)
}

func (h *ChatHandler) Rename(c echo.Context) error {
	userID := c.Get("uid").(string)
	chatID := c.Param("id")

	var req renameGroupRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	chat, err := h.chatUseCase.RenameGroup(c.Request().Context(), userID, chatID, req.Name)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, chat)
}

func (h *ChatHandler) AddMember(c echo.Context) error {
	userID := c.Get("uid").(string)
	chatID := c.Param("id")

	var req memberRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	chat, err := h.chatUseCase.AddMember(c.Request().Context(), userID, chatID, req.UserID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, chat)
}

func (h *ChatHandler) RemoveMember(c echo.Context) error {
	userID := c.Get("uid").(string)
	chatID := c.Param("id")
	memberID := c.Param("userId")

	chat, err := h.chatUseCase.RemoveMember(c.Request().Context(), userID, chatID, memberID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, chat)
}
