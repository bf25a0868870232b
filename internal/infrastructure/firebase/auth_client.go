package firebase

import (
	"context"

	"firebase.google.com/go/v4/auth"
)

// Identity is what the identity provider hands us on a verified sign-in.
type Identity struct {
	UID         string
	DisplayName string
	Email       string
	PhotoURL    string
}

type FirebaseAuthClient struct {
	client *auth.Client
}

func NewFirebaseAuthClient(client *auth.Client) *FirebaseAuthClient {
	return &FirebaseAuthClient{
		client: client,
	}
}

// Lookup resolves the full identity record for a uid from the provider.
func (f *FirebaseAuthClient) Lookup(ctx context.Context, uid string) (*Identity, error) {
	record, err := f.client.GetUser(ctx, uid)
	if err != nil {
		return nil, err
	}

	return &Identity{
		UID:         record.UID,
		DisplayName: record.DisplayName,
		Email:       record.Email,
		PhotoURL:    record.PhotoURL,
	}, nil
}
