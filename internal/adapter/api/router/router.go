package router

import (
	"github.com/labstack/echo/v4"

	"hiichat/internal/adapter/api/handler"
	"hiichat/internal/adapter/api/middleware"
)

func Setup(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	SetupAuthRouter(e, authMiddleware)
	SetupUserRouter(e, authMiddleware)
	SetupChatRouter(e, handler.GetChatHandler(), authMiddleware)
	SetupHealthRouter(e)
}

func SetupHealthRouter(e *echo.Echo) {
	e.GET("/health", handler.HealthCheck)
}
