package router

import (
	"github.com/labstack/echo/v4"

	"hiichat/internal/adapter/api/handler"
	"hiichat/internal/adapter/api/middleware"
)

func SetupUserRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	userHandler := handler.GetUserHandler()

	userGroup := e.Group("/v1/users")
	userGroup.Use(authMiddleware.Authenticate)

	userGroup.GET("", userHandler.ListUsers) // Directory excluding self, with badges

	unseenGroup := e.Group("/v1/unseen")
	unseenGroup.Use(authMiddleware.Authenticate)

	unseenGroup.GET("", userHandler.GetUnseenCounts)
}
