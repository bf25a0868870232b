package usecase

import (
	"context"
	"io"

	"hiichat/internal/infrastructure/firebase"
)

// FirebaseAuthClient resolves verified identities. Token verification for
// requests happens in the HTTP middleware; usecases only need the lookup.
type FirebaseAuthClient interface {
	Lookup(ctx context.Context, uid string) (*firebase.Identity, error)
}

// MediaUploader is the binary object store: upload under a caller-chosen
// path, get back a durable retrieval URL.
type MediaUploader interface {
	Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error)
}

// PushSender is the external push gateway. Implementations are best-effort;
// failures are logged by the caller and never fatal.
type PushSender interface {
	SendToToken(ctx context.Context, token, title, body string, data map[string]string) error
}

// LocalNotifier delivers in-app payloads to a signed-in user's live
// connection, if any.
type LocalNotifier interface {
	SendToUser(userID string, payload []byte)
}
