package handler

import (
	"github.com/labstack/echo/v4"

	"chatwave/internal/usecase"
	"chatwave/pkg/errors"
	"chatwave/pkg/response"
)

type UserHandler struct {
	userUseCase *usecase.UserUseCase
}

func NewUserHandler(userUseCase *usecase.UserUseCase) *UserHandler {
	return &UserHandler{
		userUseCase: userUseCase,
	}
}

// Search finds users to start a chat with. Matches name or email substring
// and never returns the caller.
func (h *UserHandler) Search(c echo.Context) error {
	userID := c.Get("uid").(string)
	keyword := c.QueryParam("search")

	users, err := h.userUseCase.Search(c.Request().Context(), userID, keyword)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, users)
}

func (h *UserHandler) Me(c echo.Context) error {
	userID := c.Get("uid").(string)

	user, err := h.userUseCase.GetByID(c.Request().Context(), userID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, user)
}

// UploadAvatar accepts a multipart image and updates the caller's profile
// picture.
func (h *UserHandler) UploadAvatar(c echo.Context) error {
	userID := c.Get("uid").(string)

	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		return response.Error(c, errors.BadRequest("avatar file is required", err))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return response.Error(c, errors.Internal("Failed to open uploaded file", err))
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")

	user, err := h.userUseCase.UpdateAvatar(c.Request().Context(), userID, file, contentType)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, user)
}
