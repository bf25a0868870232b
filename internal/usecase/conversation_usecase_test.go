package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hiichat/internal/domain/entity"
	"hiichat/internal/domain/repository"
	"hiichat/pkg/errors"
)

func nextEvent(t *testing.T, sub *ConversationSubscription) ConversationEvent {
	t.Helper()
	select {
	case ev, ok := <-sub.Events:
		require.True(t, ok, "subscription closed unexpectedly")
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for conversation event")
		return ConversationEvent{}
	}
}

func messageIDs(messages []*entity.Message) []string {
	ids := make([]string, 0, len(messages))
	for _, msg := range messages {
		ids = append(ids, msg.ID)
	}
	return ids
}

func TestConversationIsSymmetric(t *testing.T) {
	x, y := testUsers()
	messageRepo := newFakeMessageRepo()
	users := newFakeUserRepo(x, y)
	messages := NewMessageUseCase(messageRepo, users, &fakeUploader{})
	conversations := NewConversationUseCase(messageRepo)

	ctx := context.Background()
	_, err := messages.SendText(ctx, x.UID, y.UID, "hello")
	require.NoError(t, err)
	_, err = messages.SendText(ctx, y.UID, x.UID, "hi back")
	require.NoError(t, err)
	_, err = messages.SendText(ctx, x.UID, y.UID, "how are you")
	require.NoError(t, err)

	fromX, err := conversations.History(ctx, x.UID, y.UID)
	require.NoError(t, err)
	fromY, err := conversations.History(ctx, y.UID, x.UID)
	require.NoError(t, err)

	// Same message set, same order, regardless of which side asks.
	assert.Equal(t, messageIDs(fromX), messageIDs(fromY))
	require.Len(t, fromX, 3)
	assert.True(t, fromX[0].Timestamp.Before(fromX[1].Timestamp))
	assert.True(t, fromX[1].Timestamp.Before(fromX[2].Timestamp))
}

func TestResolverEmitsLoadingThenEmpty(t *testing.T) {
	x, y := testUsers()
	messageRepo := newFakeMessageRepo()
	conversations := NewConversationUseCase(messageRepo)

	resolver := conversations.NewResolver(x.UID)
	defer resolver.Close()

	sub := resolver.Select(context.Background(), y.UID)
	require.NotNil(t, sub)

	first := nextEvent(t, sub)
	assert.True(t, first.Loading)

	// Initial snapshot with zero documents is "empty", not "loading".
	second := nextEvent(t, sub)
	assert.False(t, second.Loading)
	assert.True(t, second.Empty)
	assert.Empty(t, second.Messages)
}

func TestResolverPushesLiveUpdates(t *testing.T) {
	x, y := testUsers()
	messageRepo := newFakeMessageRepo()
	users := newFakeUserRepo(x, y)
	messages := NewMessageUseCase(messageRepo, users, &fakeUploader{})
	conversations := NewConversationUseCase(messageRepo)

	resolver := conversations.NewResolver(y.UID)
	defer resolver.Close()

	sub := resolver.Select(context.Background(), x.UID)
	require.NotNil(t, sub)

	nextEvent(t, sub) // loading
	nextEvent(t, sub) // initial empty snapshot

	_, err := messages.SendText(context.Background(), x.UID, y.UID, "ping")
	require.NoError(t, err)

	update := nextEvent(t, sub)
	require.Len(t, update.Messages, 1)
	assert.Equal(t, "ping", update.Messages[0].Text)
	assert.False(t, update.Empty)
}

func TestSelectingNewPeerTearsDownOldSubscription(t *testing.T) {
	x, y := testUsers()
	z := &entity.User{UID: "uid-z", DisplayName: "Zoe"}
	messageRepo := newFakeMessageRepo()
	users := newFakeUserRepo(x, y, z)
	messages := NewMessageUseCase(messageRepo, users, &fakeUploader{})
	conversations := NewConversationUseCase(messageRepo)

	ctx := context.Background()
	_, err := messages.SendText(ctx, y.UID, x.UID, "old peer message")
	require.NoError(t, err)

	resolver := conversations.NewResolver(x.UID)
	defer resolver.Close()

	oldSub := resolver.Select(ctx, y.UID)
	require.NotNil(t, oldSub)
	nextEvent(t, oldSub) // loading
	initial := nextEvent(t, oldSub)
	require.Len(t, initial.Messages, 1)

	newSub := resolver.Select(ctx, z.UID)
	require.NotNil(t, newSub)

	// The old channel drains and closes; no further events arrive on it.
	require.Eventually(t, func() bool {
		for {
			select {
			case _, ok := <-oldSub.Events:
				if !ok {
					return true
				}
			default:
				return false
			}
		}
	}, 2*time.Second, 10*time.Millisecond)

	nextEvent(t, newSub) // loading
	snapshot := nextEvent(t, newSub)
	assert.True(t, snapshot.Empty)

	// A message in the old conversation must never surface in the new view.
	_, err = messages.SendText(ctx, y.UID, x.UID, "late old-peer message")
	require.NoError(t, err)
	_, err = messages.SendText(ctx, z.UID, x.UID, "new peer message")
	require.NoError(t, err)

	var sawNewPeerMessage bool
	for i := 0; i < 4 && !sawNewPeerMessage; i++ {
		update := nextEvent(t, newSub)
		for _, msg := range update.Messages {
			assert.True(t, msg.BelongsTo(x.UID, z.UID), "message %s leaked across peer switch", msg.ID)
			if msg.Text == "new peer message" {
				sawNewPeerMessage = true
			}
		}
	}
	assert.True(t, sawNewPeerMessage)
}

func TestResolverClearLeavesNoActiveSubscription(t *testing.T) {
	x, y := testUsers()
	messageRepo := newFakeMessageRepo()
	conversations := NewConversationUseCase(messageRepo)

	resolver := conversations.NewResolver(x.UID)
	sub := resolver.Select(context.Background(), y.UID)
	require.NotNil(t, sub)

	resolver.Clear()

	require.Eventually(t, func() bool {
		messageRepo.mu.Lock()
		defer messageRepo.mu.Unlock()
		return len(messageRepo.convSubs) == 0
	}, 2*time.Second, 10*time.Millisecond)

	assert.Nil(t, resolver.Select(context.Background(), ""))
}

func TestResolverSurfacesStoreErrors(t *testing.T) {
	x, y := testUsers()
	messageRepo := newFakeMessageRepo()
	conversations := NewConversationUseCase(messageRepo)

	resolver := conversations.NewResolver(x.UID)
	defer resolver.Close()

	sub := resolver.Select(context.Background(), y.UID)
	require.NotNil(t, sub)
	nextEvent(t, sub) // loading
	nextEvent(t, sub) // initial snapshot

	denied := errors.Forbidden("Not allowed to read this conversation", nil)
	messageRepo.mu.Lock()
	for convSub := range messageRepo.convSubs {
		convSub.ch <- repository.ConversationEvent{Err: denied}
	}
	messageRepo.mu.Unlock()

	ev := nextEvent(t, sub)
	require.Error(t, ev.Err)
	assert.True(t, errors.Is(ev.Err, "FORBIDDEN"))
	assert.Empty(t, ev.Messages, "a denied query must not masquerade as an empty conversation")
}
