package usecase

import (
	"context"
	"sync"

	"hiichat/internal/domain/entity"
	"hiichat/internal/domain/repository"
	"hiichat/pkg/logger"
)

// ConversationEvent is one emission of a resolver subscription. Loading is
// set on the event published before the initial snapshot arrives; Empty is
// set on snapshots with zero documents so consumers can render "say hello"
// instead of a spinner. Err carries store failures (permission denied is
// surfaced here, never shown as an empty conversation).
type ConversationEvent struct {
	PeerID   string            `json:"peer_id"`
	Loading  bool              `json:"loading,omitempty"`
	Empty    bool              `json:"empty,omitempty"`
	Messages []*entity.Message `json:"messages,omitempty"`
	Err      error             `json:"-"`
}

// ConversationSubscription is one live handle on a peer-pair view. The
// Events channel closes once the subscription is cancelled or hits a
// terminal error.
type ConversationSubscription struct {
	PeerID string
	Events <-chan ConversationEvent
	cancel context.CancelFunc
}

func (s *ConversationSubscription) Cancel() {
	s.cancel()
}

type ConversationUseCase struct {
	messageRepo repository.MessageRepository
}

func NewConversationUseCase(messageRepo repository.MessageRepository) *ConversationUseCase {
	return &ConversationUseCase{
		messageRepo: messageRepo,
	}
}

// History is the one-shot read of the ordered bidirectional stream.
func (uc *ConversationUseCase) History(ctx context.Context, selfID, peerID string) ([]*entity.Message, error) {
	return uc.messageRepo.ListConversation(ctx, selfID, peerID)
}

// NewResolver creates a per-session resolver holding at most one live
// subscription at a time for the given identity.
func (uc *ConversationUseCase) NewResolver(selfID string) *ConversationResolver {
	return &ConversationResolver{
		selfID:      selfID,
		messageRepo: uc.messageRepo,
	}
}

// ConversationResolver owns exactly one live conversation handle. Selecting
// a peer tears the previous handle down before the new one attaches, so a
// stale subscription can never leak messages into the new view.
type ConversationResolver struct {
	selfID      string
	messageRepo repository.MessageRepository

	mu      sync.Mutex
	current *ConversationSubscription
}

// Select switches the live view to peerID. The previous subscription is
// cancelled first; its channel closes and the consumer abandons it. An empty
// peerID just clears the selection (idle state, no subscription active).
func (r *ConversationResolver) Select(ctx context.Context, peerID string) *ConversationSubscription {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current != nil {
		r.current.cancel()
		r.current = nil
	}

	if peerID == "" {
		return nil
	}

	subCtx, cancel := context.WithCancel(ctx)
	repoEvents := r.messageRepo.ListenConversation(subCtx, r.selfID, peerID)

	out := make(chan ConversationEvent, 1)
	sub := &ConversationSubscription{
		PeerID: peerID,
		Events: out,
		cancel: cancel,
	}

	go func() {
		defer close(out)

		// Initial-load signal, distinct from an empty conversation.
		if !emit(subCtx, out, ConversationEvent{PeerID: peerID, Loading: true}) {
			return
		}

		for ev := range repoEvents {
			if ev.Err != nil {
				logger.Error("Conversation view %s/%s errored: %v", r.selfID, peerID, ev.Err)
				emit(subCtx, out, ConversationEvent{PeerID: peerID, Err: ev.Err})
				return
			}

			event := ConversationEvent{
				PeerID:   peerID,
				Empty:    len(ev.Messages) == 0,
				Messages: ev.Messages,
			}
			if !emit(subCtx, out, event) {
				return
			}
		}
	}()

	r.current = sub
	return sub
}

// Clear drops the current selection without attaching a new one.
func (r *ConversationResolver) Clear() {
	r.Select(context.Background(), "")
}

// Close releases the resolver and any live subscription.
func (r *ConversationResolver) Close() {
	r.Clear()
}

func emit(ctx context.Context, ch chan<- ConversationEvent, ev ConversationEvent) bool {
	select {
	case ch <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
