package router

import (
	"github.com/labstack/echo/v4"

	"hiichat/internal/adapter/api/handler"
	"hiichat/internal/adapter/api/middleware"
)

// SetupChatRouter wires the conversation endpoints. All of them are scoped
// to a peer: the conversation is the unordered pair {caller, peer}.
func SetupChatRouter(e *echo.Echo, chatHandler *handler.ChatHandler, authMiddleware *middleware.AuthMiddleware) {
	chatGroup := e.Group("/v1/conversations")
	chatGroup.Use(authMiddleware.Authenticate)

	chatGroup.GET("/:peerId/messages", chatHandler.GetConversation) // One-shot ordered read
	chatGroup.POST("/:peerId/messages", chatHandler.SendText)       // Append text message
	chatGroup.POST("/:peerId/media", chatHandler.SendMedia)         // Upload then append media message
	chatGroup.POST("/:peerId/seen", chatHandler.MarkSeen)           // Atomic seen batch
}
