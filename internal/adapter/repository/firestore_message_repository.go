package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"hiichat/internal/domain/entity"
	"hiichat/internal/domain/repository"
	"hiichat/pkg/errors"
	"hiichat/pkg/logger"
)

type firestoreMessageRepository struct {
	client *firestore.Client
}

func NewFirestoreMessageRepository(client *firestore.Client) repository.MessageRepository {
	return &firestoreMessageRepository{
		client: client,
	}
}

func (r *firestoreMessageRepository) Create(ctx context.Context, message *entity.Message) error {
	if message.ID == "" {
		message.ID = uuid.New().String()
	}

	// Timestamp stays zero here; the serverTimestamp tag makes Firestore
	// assign the commit time on write.
	_, err := r.client.Collection("messages").Doc(message.ID).Set(ctx, message)
	if err != nil {
		return errors.Internal("Failed to create message", err)
	}

	return nil
}

// conversationQuery builds the bidirectional pair filter: messages where
// (senderId=self AND receiverId=peer) OR (senderId=peer AND receiverId=self),
// ordered by server timestamp ascending.
func (r *firestoreMessageRepository) conversationQuery(selfID, peerID string) firestore.Query {
	return r.client.Collection("messages").
		WhereEntity(firestore.OrFilter{
			Filters: []firestore.EntityFilter{
				firestore.AndFilter{
					Filters: []firestore.EntityFilter{
						firestore.PropertyFilter{Path: "senderId", Operator: "==", Value: selfID},
						firestore.PropertyFilter{Path: "receiverId", Operator: "==", Value: peerID},
					},
				},
				firestore.AndFilter{
					Filters: []firestore.EntityFilter{
						firestore.PropertyFilter{Path: "senderId", Operator: "==", Value: peerID},
						firestore.PropertyFilter{Path: "receiverId", Operator: "==", Value: selfID},
					},
				},
			},
		}).
		OrderBy("timestamp", firestore.Asc)
}

func (r *firestoreMessageRepository) unseenQuery(receiverID string) firestore.Query {
	return r.client.Collection("messages").
		Where("receiverId", "==", receiverID).
		Where("seen", "==", false)
}

func (r *firestoreMessageRepository) ListConversation(ctx context.Context, selfID, peerID string) ([]*entity.Message, error) {
	docs, err := r.conversationQuery(selfID, peerID).Documents(ctx).GetAll()
	if err != nil {
		if status.Code(err) == codes.PermissionDenied {
			return nil, errors.Forbidden("Not allowed to read this conversation", err)
		}
		return nil, errors.Internal("Failed to fetch conversation", err)
	}

	return parseMessages(docs), nil
}

func (r *firestoreMessageRepository) ListenConversation(ctx context.Context, selfID, peerID string) <-chan repository.ConversationEvent {
	events := make(chan repository.ConversationEvent, 1)

	go func() {
		defer close(events)

		snaps := r.conversationQuery(selfID, peerID).Snapshots(ctx)
		defer snaps.Stop()

		for {
			snap, err := snaps.Next()
			if err != nil {
				if ctx.Err() != nil || status.Code(err) == codes.Canceled {
					return
				}
				if status.Code(err) == codes.PermissionDenied {
					// Surfaced, never treated as an empty conversation.
					sendConversation(ctx, events, repository.ConversationEvent{
						Err: errors.Forbidden("Not allowed to read this conversation", err),
					})
					return
				}
				logger.Error("Conversation listener for %s/%s failed: %v", selfID, peerID, err)
				sendConversation(ctx, events, repository.ConversationEvent{
					Err: errors.Internal("Conversation subscription failed", err),
				})
				return
			}

			docs, err := snap.Documents.GetAll()
			if err != nil {
				logger.Error("Failed to read conversation snapshot for %s/%s: %v", selfID, peerID, err)
				sendConversation(ctx, events, repository.ConversationEvent{
					Err: errors.Internal("Failed to read conversation snapshot", err),
				})
				return
			}

			if !sendConversation(ctx, events, repository.ConversationEvent{Messages: parseMessages(docs)}) {
				return
			}
		}
	}()

	return events
}

func (r *firestoreMessageRepository) ListenUnseen(ctx context.Context, receiverID string) <-chan repository.UnseenEvent {
	events := make(chan repository.UnseenEvent, 1)

	go func() {
		defer close(events)

		snaps := r.unseenQuery(receiverID).Snapshots(ctx)
		defer snaps.Stop()

		for {
			snap, err := snaps.Next()
			if err != nil {
				if ctx.Err() != nil || status.Code(err) == codes.Canceled {
					return
				}
				logger.Error("Unseen listener for %s failed: %v", receiverID, err)
				sendUnseen(ctx, events, repository.UnseenEvent{
					Err: errors.Internal("Unseen subscription failed", err),
				})
				return
			}

			docs, err := snap.Documents.GetAll()
			if err != nil {
				logger.Error("Failed to read unseen snapshot for %s: %v", receiverID, err)
				sendUnseen(ctx, events, repository.UnseenEvent{
					Err: errors.Internal("Failed to read unseen snapshot", err),
				})
				return
			}

			if !sendUnseen(ctx, events, repository.UnseenEvent{Messages: parseMessages(docs)}) {
				return
			}
		}
	}()

	return events
}

func (r *firestoreMessageRepository) MarkConversationSeen(ctx context.Context, senderID, receiverID string) (int, error) {
	docs, err := r.client.Collection("messages").
		Where("senderId", "==", senderID).
		Where("receiverId", "==", receiverID).
		Where("seen", "==", false).
		Documents(ctx).GetAll()
	if err != nil {
		if status.Code(err) == codes.PermissionDenied {
			return 0, errors.Forbidden("Not allowed to update this conversation", err)
		}
		return 0, errors.Internal("Failed to query unseen messages", err)
	}

	if len(docs) == 0 {
		return 0, nil
	}

	// WriteBatch commits all-or-nothing; a partial seen transition must
	// never be observable.
	batch := r.client.Batch()
	for _, doc := range docs {
		batch.Update(doc.Ref, []firestore.Update{
			{Path: "seen", Value: true},
		})
	}

	if _, err := batch.Commit(ctx); err != nil {
		return 0, errors.Internal("Failed to commit seen batch", err)
	}

	return len(docs), nil
}

func parseMessages(docs []*firestore.DocumentSnapshot) []*entity.Message {
	var messages []*entity.Message
	for _, doc := range docs {
		var message entity.Message
		if err := doc.DataTo(&message); err != nil {
			logger.Warn("Skipping malformed message document %s: %v", doc.Ref.ID, err)
			continue
		}
		message.ID = doc.Ref.ID
		messages = append(messages, &message)
	}
	return messages
}

func sendConversation(ctx context.Context, ch chan<- repository.ConversationEvent, ev repository.ConversationEvent) bool {
	select {
	case ch <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

func sendUnseen(ctx context.Context, ch chan<- repository.UnseenEvent, ev repository.UnseenEvent) bool {
	select {
	case ch <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
