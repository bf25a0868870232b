package handler

import (
	"github.com/labstack/echo/v4"

	"hiichat/internal/usecase"
	"hiichat/pkg/response"
)

type UserHandler struct {
	directoryUseCase *usecase.DirectoryUseCase
	notifierUseCase  *usecase.NotifierUseCase
}

func NewUserHandler(directoryUseCase *usecase.DirectoryUseCase, notifierUseCase *usecase.NotifierUseCase) *UserHandler {
	return &UserHandler{
		directoryUseCase: directoryUseCase,
		notifierUseCase:  notifierUseCase,
	}
}

// ListUsers returns the peer directory: every known user except the caller,
// each carrying its live unseen badge count.
func (h *UserHandler) ListUsers(c echo.Context) error {
	uid := c.Get("uid").(string)

	unseen := h.notifierUseCase.UnseenCounts(uid)

	entries, err := h.directoryUseCase.ListPeers(c.Request().Context(), uid, unseen)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, entries)
}

// GetUnseenCounts returns the caller's current peer to badge-count mapping.
func (h *UserHandler) GetUnseenCounts(c echo.Context) error {
	uid := c.Get("uid").(string)

	return response.Success(c, h.notifierUseCase.UnseenCounts(uid))
}
