package handler

import (
	"github.com/labstack/echo/v4"

	"hiichat/internal/usecase"
	"hiichat/pkg/errors"
	"hiichat/pkg/response"
)

type ChatHandler struct {
	conversationUseCase *usecase.ConversationUseCase
	messageUseCase      *usecase.MessageUseCase
}

func NewChatHandler(conversationUseCase *usecase.ConversationUseCase, messageUseCase *usecase.MessageUseCase) *ChatHandler {
	return &ChatHandler{
		conversationUseCase: conversationUseCase,
		messageUseCase:      messageUseCase,
	}
}

type sendTextRequest struct {
	Text string `json:"text" validate:"required"`
}

// GetConversation is the one-shot read of the ordered bidirectional stream
// with a peer. Live consumers use the websocket surface instead.
func (h *ChatHandler) GetConversation(c echo.Context) error {
	uid := c.Get("uid").(string)
	peerID := c.Param("peerId")

	messages, err := h.conversationUseCase.History(c.Request().Context(), uid, peerID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{
		"peer_id":  peerID,
		"messages": messages,
		"empty":    len(messages) == 0,
	})
}

// SendText appends a text message. A whitespace-only body is accepted and
// dropped without creating anything.
func (h *ChatHandler) SendText(c echo.Context) error {
	var req sendTextRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	uid := c.Get("uid").(string)
	peerID := c.Param("peerId")

	message, err := h.messageUseCase.SendText(c.Request().Context(), uid, peerID, req.Text)
	if err != nil {
		return response.Error(c, err)
	}

	if message == nil {
		// Validation skip: nothing was written.
		return response.Success(c, map[string]string{"status": "skipped"})
	}

	return response.Created(c, message)
}

// SendMedia uploads the multipart file and appends a media message once the
// URL resolved. A failed upload writes nothing.
func (h *ChatHandler) SendMedia(c echo.Context) error {
	uid := c.Get("uid").(string)
	peerID := c.Param("peerId")

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return response.Error(c, errors.BadRequest("A file is required", err))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return response.Error(c, errors.Internal("Failed to open uploaded file", err))
	}
	defer file.Close()

	message, err := h.messageUseCase.SendMedia(
		c.Request().Context(),
		uid,
		peerID,
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		file,
	)
	if err != nil {
		return response.Error(c, err)
	}

	if message == nil {
		return response.Success(c, map[string]string{"status": "skipped"})
	}

	return response.Created(c, message)
}

// MarkSeen flips every unseen message from the peer in one atomic batch.
func (h *ChatHandler) MarkSeen(c echo.Context) error {
	uid := c.Get("uid").(string)
	peerID := c.Param("peerId")

	updated, err := h.messageUseCase.MarkSeen(c.Request().Context(), uid, peerID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{
		"updated": updated,
	})
}
