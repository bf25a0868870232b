package router

import (
	"github.com/labstack/echo/v4"

	"hiichat/internal/adapter/api/handler"
)

func SetupWebSocketRouter(e *echo.Echo, wsHandler *handler.WebSocketHandler) {
	// Token is verified inside the handler (query parameter), not by the
	// header middleware.
	e.GET("/ws", wsHandler.HandleWebSocket)
}
