package router

import (
	"github.com/labstack/echo/v4"

	"hiichat/internal/adapter/api/handler"
	"hiichat/internal/adapter/api/middleware"
)

func SetupAuthRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	authHandler := handler.GetAuthHandler()

	authGroup := e.Group("/v1/auth")
	authGroup.Use(authMiddleware.Authenticate)

	authGroup.POST("/sync", authHandler.SyncSignIn)

	notificationGroup := e.Group("/v1/notifications")
	notificationGroup.Use(authMiddleware.Authenticate)

	notificationGroup.POST("/token", authHandler.RegisterPushToken)
}
