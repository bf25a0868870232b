package usecase

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"hiichat/internal/domain/entity"
	"hiichat/internal/domain/repository"
	"hiichat/internal/infrastructure/ratelimit"
	"hiichat/pkg/errors"
	"hiichat/pkg/logger"
)

type MessageUseCase struct {
	messageRepo repository.MessageRepository
	userRepo    repository.UserRepository
	uploader    MediaUploader
	rateLimiter *ratelimit.RateLimiter
}

func NewMessageUseCase(
	messageRepo repository.MessageRepository,
	userRepo repository.UserRepository,
	uploader MediaUploader,
) *MessageUseCase {
	return &MessageUseCase{
		messageRepo: messageRepo,
		userRepo:    userRepo,
		uploader:    uploader,
		rateLimiter: ratelimit.NewRateLimiter(),
	}
}

// SendText appends a text message to the pair's conversation. Whitespace-only
// text or a missing participant is a silent no-op, not an error. Delivery is
// at-least-once: there is no idempotency key, so a double tap writes twice.
func (uc *MessageUseCase) SendText(ctx context.Context, selfID, peerID, text string) (*entity.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" || selfID == "" || peerID == "" {
		return nil, nil
	}

	allowed, waitTime := uc.rateLimiter.Allow(selfID, "send_message")
	if !allowed {
		logger.Warn("SendText rate limited: user %s must wait %v", selfID, waitTime)
		return nil, errors.TooManyRequests("Rate limit exceeded. Please wait before sending another message")
	}

	message := &entity.Message{
		SenderID:     selfID,
		ReceiverID:   peerID,
		SenderName:   uc.senderName(ctx, selfID),
		Participants: []string{selfID, peerID},
		Text:         text,
		Seen:         entity.Bool(false),
	}

	if err := uc.messageRepo.Create(ctx, message); err != nil {
		return nil, err
	}

	return message, nil
}

// SendMedia uploads the payload first and only appends the message once a
// durable URL came back; a failed upload leaves no message behind. Media
// messages carry no seen field and are never counted as unseen.
func (uc *MessageUseCase) SendMedia(ctx context.Context, selfID, peerID, filename, contentType string, r io.Reader) (*entity.Message, error) {
	if selfID == "" || peerID == "" || filename == "" {
		return nil, nil
	}

	allowed, waitTime := uc.rateLimiter.Allow(selfID, "send_media")
	if !allowed {
		logger.Warn("SendMedia rate limited: user %s must wait %v", selfID, waitTime)
		return nil, errors.TooManyRequests("Rate limit exceeded. Please wait before uploading more media")
	}

	body := r
	if contentType == "" {
		header := make([]byte, 3072)
		n, err := io.ReadFull(r, header)
		if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
			return nil, errors.Internal("Failed to read media payload", err)
		}
		contentType = mimetype.Detect(header[:n]).String()
		body = io.MultiReader(bytes.NewReader(header[:n]), r)
	}

	// Millisecond prefix plus original filename. Not guaranteed unique for
	// concurrent same-name uploads in the same millisecond; accepted risk.
	objectPath := fmt.Sprintf("media/%d_%s", time.Now().UnixMilli(), filename)

	url, err := uc.uploader.Upload(ctx, objectPath, contentType, body)
	if err != nil {
		logger.Error("SendMedia upload for %s failed: %v", selfID, err)
		return nil, errors.Internal("Failed to upload media", err)
	}

	message := &entity.Message{
		SenderID:     selfID,
		ReceiverID:   peerID,
		SenderName:   uc.senderName(ctx, selfID),
		Participants: []string{selfID, peerID},
		MediaURL:     url,
	}

	if err := uc.messageRepo.Create(ctx, message); err != nil {
		return nil, err
	}

	return message, nil
}

// MarkSeen flips every unseen message from peerID to selfID in one atomic
// batch. Invoked when the conversation is opened; idempotent when nothing
// matches. On failure counts simply stay stale until the next open.
func (uc *MessageUseCase) MarkSeen(ctx context.Context, selfID, peerID string) (int, error) {
	if selfID == "" || peerID == "" {
		return 0, nil
	}

	updated, err := uc.messageRepo.MarkConversationSeen(ctx, peerID, selfID)
	if err != nil {
		logger.Error("MarkSeen for %s<-%s failed: %v", selfID, peerID, err)
		return 0, err
	}

	if updated > 0 {
		logger.Debug("MarkSeen: %d messages from %s seen by %s", updated, peerID, selfID)
	}

	return updated, nil
}

func (uc *MessageUseCase) senderName(ctx context.Context, selfID string) string {
	user, err := uc.userRepo.GetByID(ctx, selfID)
	if err != nil {
		logger.Warn("Sender lookup for %s failed: %v", selfID, err)
		return ""
	}
	return user.DisplayName
}
