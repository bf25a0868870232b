package usecase

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"hiichat/internal/domain/entity"
	"hiichat/internal/domain/repository"
	"hiichat/pkg/errors"
)

// In-memory stand-ins for the Firestore-backed repositories, reproducing
// the live-query behavior the usecases depend on: every write pushes a
// fresh snapshot to all matching subscriptions.

type convSub struct {
	selfID string
	peerID string
	ch     chan repository.ConversationEvent
}

type unseenSub struct {
	receiverID string
	ch         chan repository.UnseenEvent
}

type fakeMessageRepo struct {
	mu         sync.Mutex
	messages   []*entity.Message
	seq        int
	base       time.Time
	convSubs   map[*convSub]struct{}
	unseenSubs map[*unseenSub]struct{}

	failCreate   error
	failMarkSeen error
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{
		base:       time.Now(),
		convSubs:   make(map[*convSub]struct{}),
		unseenSubs: make(map[*unseenSub]struct{}),
	}
}

func (f *fakeMessageRepo) Create(_ context.Context, message *entity.Message) error {
	f.mu.Lock()
	if f.failCreate != nil {
		err := f.failCreate
		f.mu.Unlock()
		return err
	}

	f.seq++
	if message.ID == "" {
		message.ID = fmt.Sprintf("msg-%d", f.seq)
	}
	message.Timestamp = f.base.Add(time.Duration(f.seq) * time.Millisecond)
	f.messages = append(f.messages, message)
	f.mu.Unlock()

	f.broadcast()
	return nil
}

func (f *fakeMessageRepo) ListConversation(_ context.Context, selfID, peerID string) ([]*entity.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.conversationLocked(selfID, peerID), nil
}

func (f *fakeMessageRepo) ListenConversation(ctx context.Context, selfID, peerID string) <-chan repository.ConversationEvent {
	sub := &convSub{
		selfID: selfID,
		peerID: peerID,
		ch:     make(chan repository.ConversationEvent, 64),
	}

	f.mu.Lock()
	f.convSubs[sub] = struct{}{}
	sub.ch <- repository.ConversationEvent{Messages: f.conversationLocked(selfID, peerID)}
	f.mu.Unlock()

	go func() {
		<-ctx.Done()
		f.mu.Lock()
		delete(f.convSubs, sub)
		close(sub.ch)
		f.mu.Unlock()
	}()

	return sub.ch
}

func (f *fakeMessageRepo) ListenUnseen(ctx context.Context, receiverID string) <-chan repository.UnseenEvent {
	sub := &unseenSub{
		receiverID: receiverID,
		ch:         make(chan repository.UnseenEvent, 64),
	}

	f.mu.Lock()
	f.unseenSubs[sub] = struct{}{}
	sub.ch <- repository.UnseenEvent{Messages: f.unseenLocked(receiverID)}
	f.mu.Unlock()

	go func() {
		<-ctx.Done()
		f.mu.Lock()
		delete(f.unseenSubs, sub)
		close(sub.ch)
		f.mu.Unlock()
	}()

	return sub.ch
}

func (f *fakeMessageRepo) MarkConversationSeen(_ context.Context, senderID, receiverID string) (int, error) {
	f.mu.Lock()
	if f.failMarkSeen != nil {
		err := f.failMarkSeen
		f.mu.Unlock()
		return 0, err
	}

	updated := 0
	for _, msg := range f.messages {
		if msg.SenderID == senderID && msg.ReceiverID == receiverID && msg.Unseen() {
			msg.Seen = entity.Bool(true)
			updated++
		}
	}
	f.mu.Unlock()

	if updated > 0 {
		f.broadcast()
	}
	return updated, nil
}

func (f *fakeMessageRepo) unseen(receiverID string) []*entity.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.unseenLocked(receiverID)
}

func (f *fakeMessageRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.messages)
}

func (f *fakeMessageRepo) conversationLocked(selfID, peerID string) []*entity.Message {
	var out []*entity.Message
	for _, msg := range f.messages {
		if msg.BelongsTo(selfID, peerID) {
			out = append(out, msg)
		}
	}
	return out
}

func (f *fakeMessageRepo) unseenLocked(receiverID string) []*entity.Message {
	var out []*entity.Message
	for _, msg := range f.messages {
		if msg.ReceiverID == receiverID && msg.Unseen() {
			out = append(out, msg)
		}
	}
	return out
}

func (f *fakeMessageRepo) broadcast() {
	f.mu.Lock()
	defer f.mu.Unlock()

	for sub := range f.convSubs {
		sub.ch <- repository.ConversationEvent{Messages: f.conversationLocked(sub.selfID, sub.peerID)}
	}
	for sub := range f.unseenSubs {
		sub.ch <- repository.UnseenEvent{Messages: f.unseenLocked(sub.receiverID)}
	}
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*entity.User
}

func newFakeUserRepo(users ...*entity.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: make(map[string]*entity.User)}
	for _, user := range users {
		repo.users[user.UID] = user
	}
	return repo
}

func (f *fakeUserRepo) Upsert(_ context.Context, user *entity.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if existing, ok := f.users[user.UID]; ok {
		existing.DisplayName = user.DisplayName
		existing.Email = user.Email
		existing.PhotoURL = user.PhotoURL
		existing.LastSeen = user.LastSeen
		return nil
	}
	clone := *user
	f.users[user.UID] = &clone
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, uid string) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[uid]
	if !ok {
		return nil, errors.NotFound("User", nil)
	}
	return user, nil
}

func (f *fakeUserRepo) List(_ context.Context) ([]*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.User
	for _, user := range f.users {
		out = append(out, user)
	}
	return out, nil
}

func (f *fakeUserRepo) SetFCMToken(_ context.Context, uid, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if user, ok := f.users[uid]; ok {
		user.FCMToken = token
	}
	return nil
}

type fakeUploader struct {
	fail  error
	paths []string
}

func (f *fakeUploader) Upload(_ context.Context, objectPath, _ string, r io.Reader) (string, error) {
	if f.fail != nil {
		return "", f.fail
	}
	io.Copy(io.Discard, r)
	f.paths = append(f.paths, objectPath)
	return "https://storage.example.com/" + objectPath, nil
}

type fakeLocalNotifier struct {
	mu       sync.Mutex
	payloads map[string][][]byte
}

func newFakeLocalNotifier() *fakeLocalNotifier {
	return &fakeLocalNotifier{payloads: make(map[string][][]byte)}
}

func (f *fakeLocalNotifier) SendToUser(userID string, payload []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payloads[userID] = append(f.payloads[userID], append([]byte(nil), payload...))
}

func (f *fakeLocalNotifier) sent(userID string) [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]byte, len(f.payloads[userID]))
	copy(out, f.payloads[userID])
	return out
}

type fakePushSender struct {
	mu    sync.Mutex
	sends []string
	fail  error
}

func (f *fakePushSender) SendToToken(_ context.Context, token, _, _ string, _ map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return f.fail
	}
	f.sends = append(f.sends, token)
	return nil
}

func newPNGReader() io.Reader {
	return strings.NewReader("\x89PNG\r\n\x1a\nfakeimagedata")
}
