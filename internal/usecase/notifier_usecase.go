package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"hiichat/internal/domain/repository"
	"hiichat/pkg/logger"
)

// NotifierUseCase is the process-wide observer over unseen inbound
// messages. Per signed-in session it runs the live query
// receiverId=self AND seen=false twice — one consumer dispatches
// notifications, the other maintains the per-peer badge counts — matching
// the two independent registrations the product runs over the same query.
type NotifierUseCase struct {
	messageRepo repository.MessageRepository
	userRepo    repository.UserRepository
	local       LocalNotifier
	push        PushSender // nil when push is unsupported in this deployment

	mu       sync.Mutex
	sessions map[string]*notifierSession
}

type notifierSession struct {
	cancel context.CancelFunc

	mu     sync.RWMutex
	counts map[string]int
}

func NewNotifierUseCase(
	messageRepo repository.MessageRepository,
	userRepo repository.UserRepository,
	local LocalNotifier,
	push PushSender,
) *NotifierUseCase {
	return &NotifierUseCase{
		messageRepo: messageRepo,
		userRepo:    userRepo,
		local:       local,
		push:        push,
		sessions:    make(map[string]*notifierSession),
	}
}

// StartSession begins observing unseen inbound messages for selfID. It is
// idempotent while the session is active and runs until StopSession or ctx
// cancellation; the subscription lives as long as the signed-in identity.
func (uc *NotifierUseCase) StartSession(ctx context.Context, selfID string) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if _, active := uc.sessions[selfID]; active {
		return
	}

	sessionCtx, cancel := context.WithCancel(ctx)
	session := &notifierSession{
		cancel: cancel,
		counts: make(map[string]int),
	}
	uc.sessions[selfID] = session

	go uc.dispatchLoop(sessionCtx, selfID)
	go uc.trackLoop(sessionCtx, selfID, session)

	logger.Info("Notifier session started for %s", selfID)
}

// StopSession tears the observer down, e.g. on sign-out.
func (uc *NotifierUseCase) StopSession(selfID string) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if session, active := uc.sessions[selfID]; active {
		session.cancel()
		delete(uc.sessions, selfID)
		logger.Info("Notifier session stopped for %s", selfID)
	}
}

// UnseenCounts returns the current peer to badge-count mapping for selfID.
func (uc *NotifierUseCase) UnseenCounts(selfID string) map[string]int {
	uc.mu.Lock()
	session, active := uc.sessions[selfID]
	uc.mu.Unlock()

	if !active {
		return map[string]int{}
	}

	session.mu.RLock()
	defer session.mu.RUnlock()

	counts := make(map[string]int, len(session.counts))
	for peer, n := range session.counts {
		counts[peer] = n
	}
	return counts
}

// dispatchLoop raises one notification per unseen document per snapshot.
// There is no message-id dedup across snapshots: a document still unseen on
// the next emission notifies again, as the product specifies.
func (uc *NotifierUseCase) dispatchLoop(ctx context.Context, selfID string) {
	for ev := range uc.messageRepo.ListenUnseen(ctx, selfID) {
		if ev.Err != nil {
			logger.Warn("Notification stream for %s degraded: %v", selfID, ev.Err)
			return
		}

		token := uc.pushToken(ctx, selfID)

		for _, msg := range ev.Messages {
			title := "New Message"
			body := fmt.Sprintf("You have a new message from %s", msg.SenderName)

			payload, err := json.Marshal(map[string]interface{}{
				"type":       "notification",
				"title":      title,
				"body":       body,
				"sender_id":  msg.SenderID,
				"message_id": msg.ID,
			})
			if err == nil {
				uc.local.SendToUser(selfID, payload)
			}

			if uc.push != nil && token != "" {
				// Best effort; a failed push never breaks the session.
				uc.push.SendToToken(ctx, token, title, body, map[string]string{
					"senderId":  msg.SenderID,
					"messageId": msg.ID,
				})
			}
		}
	}
}

// trackLoop recomputes the badge counts from scratch on every snapshot. A
// peer's count drops to zero only when a snapshot carries no unseen
// documents from that peer, i.e. after mark-seen has propagated.
func (uc *NotifierUseCase) trackLoop(ctx context.Context, selfID string, session *notifierSession) {
	for ev := range uc.messageRepo.ListenUnseen(ctx, selfID) {
		if ev.Err != nil {
			logger.Warn("Unseen tracker for %s degraded: %v", selfID, ev.Err)
			return
		}

		counts := make(map[string]int)
		for _, msg := range ev.Messages {
			counts[msg.SenderID]++
		}

		session.mu.Lock()
		session.counts = counts
		session.mu.Unlock()

		payload, err := json.Marshal(map[string]interface{}{
			"type":   "unseen",
			"counts": counts,
		})
		if err == nil {
			uc.local.SendToUser(selfID, payload)
		}
	}
}

func (uc *NotifierUseCase) pushToken(ctx context.Context, selfID string) string {
	if uc.push == nil {
		return ""
	}

	user, err := uc.userRepo.GetByID(ctx, selfID)
	if err != nil {
		logger.Debug("Push token lookup for %s failed: %v", selfID, err)
		return ""
	}
	return user.FCMToken
}
