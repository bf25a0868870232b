package handler

import (
	"context"
	"encoding/json"
	"net/http"

	gorillaws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"hiichat/internal/adapter/api/middleware"
	ws "hiichat/internal/infrastructure/websocket"
	"hiichat/internal/usecase"
	"hiichat/pkg/errors"
	"hiichat/pkg/logger"
)

// WebSocketHandler is the live surface: one connection per signed-in
// session, carrying conversation snapshots, unseen badge updates and
// notifications outbound, and peer selection inbound.
type WebSocketHandler struct {
	wsManager           *ws.Manager
	authMiddleware      *middleware.AuthMiddleware
	conversationUseCase *usecase.ConversationUseCase
	messageUseCase      *usecase.MessageUseCase
	notifierUseCase     *usecase.NotifierUseCase
}

var upgrader = gorillaws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Restrict this in production
	},
}

func NewWebSocketHandler(
	wsManager *ws.Manager,
	authMiddleware *middleware.AuthMiddleware,
	conversationUseCase *usecase.ConversationUseCase,
	messageUseCase *usecase.MessageUseCase,
	notifierUseCase *usecase.NotifierUseCase,
) *WebSocketHandler {
	return &WebSocketHandler{
		wsManager:           wsManager,
		authMiddleware:      authMiddleware,
		conversationUseCase: conversationUseCase,
		messageUseCase:      messageUseCase,
		notifierUseCase:     notifierUseCase,
	}
}

// clientCommand is what the client sends over the socket: a peer selection
// or a deselection.
type clientCommand struct {
	Type   string `json:"type"` // "subscribe" or "unsubscribe"
	PeerID string `json:"peer_id,omitempty"`
}

func (h *WebSocketHandler) HandleWebSocket(c echo.Context) error {
	// Browsers cannot set headers on websocket upgrades, so the ID token
	// travels as a query parameter here.
	token := c.QueryParam("token")
	if token == "" {
		return errors.Unauthorized("Authentication required", nil)
	}

	userID, err := h.authMiddleware.GetUIDFromToken(c.Request().Context(), token)
	if err != nil {
		return errors.Unauthorized("Invalid or expired token", err)
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return errors.Internal("Failed to upgrade connection", err)
	}

	client := &ws.Client{
		UserID: userID,
		Conn:   conn,
		Send:   make(chan []byte, 256),
	}

	h.wsManager.Register <- client

	// The notifier session lives as long as the signed-in connection.
	sessionCtx, cancelSession := context.WithCancel(context.Background())
	h.notifierUseCase.StartSession(sessionCtx, userID)

	go client.WritePump()
	go h.readPump(sessionCtx, cancelSession, client)

	return nil
}

func (h *WebSocketHandler) readPump(ctx context.Context, cancel context.CancelFunc, client *ws.Client) {
	resolver := h.conversationUseCase.NewResolver(client.UserID)

	defer func() {
		resolver.Close()
		cancel()
		h.notifierUseCase.StopSession(client.UserID)
		h.wsManager.Unregister <- client
		client.Conn.Close()
	}()

	for {
		_, raw, err := client.Conn.ReadMessage()
		if err != nil {
			if gorillaws.IsUnexpectedCloseError(err, gorillaws.CloseGoingAway, gorillaws.CloseNormalClosure) {
				logger.Warn("Websocket read for %s failed: %v", client.UserID, err)
			}
			return
		}

		var cmd clientCommand
		if err := json.Unmarshal(raw, &cmd); err != nil {
			logger.Debug("Ignoring malformed command from %s: %v", client.UserID, err)
			continue
		}

		switch cmd.Type {
		case "subscribe":
			h.subscribe(ctx, client, resolver, cmd.PeerID)
		case "unsubscribe":
			resolver.Clear()
		default:
			logger.Debug("Ignoring unknown command %q from %s", cmd.Type, client.UserID)
		}
	}
}

// subscribe switches the live conversation view to the chosen peer. Opening
// a conversation is also the moment its inbound messages become seen.
func (h *WebSocketHandler) subscribe(ctx context.Context, client *ws.Client, resolver *usecase.ConversationResolver, peerID string) {
	sub := resolver.Select(ctx, peerID)
	if sub == nil {
		return
	}

	if _, err := h.messageUseCase.MarkSeen(ctx, client.UserID, peerID); err != nil {
		// Counts stay stale until the next open; not fatal.
		logger.Warn("Mark-seen on open for %s/%s failed: %v", client.UserID, peerID, err)
	}

	go func() {
		for ev := range sub.Events {
			payload, err := json.Marshal(conversationFrame(ev))
			if err != nil {
				logger.Error("Failed to encode conversation event for %s: %v", client.UserID, err)
				continue
			}
			h.wsManager.SendToUser(client.UserID, payload)
		}
	}()
}

func conversationFrame(ev usecase.ConversationEvent) map[string]interface{} {
	frame := map[string]interface{}{
		"type":    "conversation",
		"peer_id": ev.PeerID,
	}
	switch {
	case ev.Err != nil:
		frame["error"] = ev.Err.Error()
	case ev.Loading:
		frame["loading"] = true
	default:
		frame["empty"] = ev.Empty
		frame["messages"] = ev.Messages
	}
	return frame
}
