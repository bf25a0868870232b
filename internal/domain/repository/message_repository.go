package repository

import (
	"context"

	"hiichat/internal/domain/entity"
)

// ConversationEvent is one emission of a live conversation query: the full
// refreshed ordered message set, or a terminal error.
type ConversationEvent struct {
	Messages []*entity.Message
	Err      error
}

// UnseenEvent is one emission of a live unseen-inbound query.
type UnseenEvent struct {
	Messages []*entity.Message
	Err      error
}

type MessageRepository interface {
	Create(ctx context.Context, message *entity.Message) error

	// ListConversation is a one-shot read of the bidirectional stream
	// between selfID and peerID, ordered by timestamp ascending.
	ListConversation(ctx context.Context, selfID, peerID string) ([]*entity.Message, error)

	// ListenConversation opens a live query over the same view. Every
	// qualifying create or mutate pushes a fresh event; the channel is
	// closed when ctx is cancelled or after a terminal error event.
	ListenConversation(ctx context.Context, selfID, peerID string) <-chan ConversationEvent

	// ListenUnseen opens a live query over all messages with
	// receiverId=receiverID and seen=false, process-wide.
	ListenUnseen(ctx context.Context, receiverID string) <-chan UnseenEvent

	// MarkConversationSeen flips seen to true on every message from
	// senderID to receiverID still marked unseen, in one atomic batch.
	// Returns the number of messages transitioned; zero matches is a no-op.
	MarkConversationSeen(ctx context.Context, senderID, receiverID string) (int, error)
}
