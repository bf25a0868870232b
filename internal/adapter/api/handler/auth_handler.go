package handler

import (
	"github.com/labstack/echo/v4"

	"hiichat/internal/usecase"
	"hiichat/pkg/response"
)

type AuthHandler struct {
	authUseCase *usecase.AuthUseCase
}

func NewAuthHandler(authUseCase *usecase.AuthUseCase) *AuthHandler {
	return &AuthHandler{
		authUseCase: authUseCase,
	}
}

type registerTokenRequest struct {
	Token string `json:"token" validate:"required"`
}

// SyncSignIn upserts the signed-in identity into the user directory. The
// client calls this once per sign-in.
func (h *AuthHandler) SyncSignIn(c echo.Context) error {
	uid := c.Get("uid").(string)

	user, err := h.authUseCase.SyncSignIn(c.Request().Context(), uid)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, user)
}

// RegisterPushToken stores the device's push registration token. Failures
// degrade push to disabled rather than erroring the client.
func (h *AuthHandler) RegisterPushToken(c echo.Context) error {
	var req registerTokenRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	uid := c.Get("uid").(string)

	if err := h.authUseCase.RegisterPushToken(c.Request().Context(), uid, req.Token); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{"status": "registered"})
}
