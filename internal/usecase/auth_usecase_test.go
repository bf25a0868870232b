package usecase

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hiichat/internal/infrastructure/firebase"
)

type fakeAuthClient struct {
	identities map[string]*firebase.Identity
}

func (f *fakeAuthClient) Lookup(_ context.Context, uid string) (*firebase.Identity, error) {
	identity, ok := f.identities[uid]
	if !ok {
		return nil, fmt.Errorf("no user record for %s", uid)
	}
	return identity, nil
}

func TestSyncSignInUpsertsIdentity(t *testing.T) {
	users := newFakeUserRepo()
	auth := &fakeAuthClient{identities: map[string]*firebase.Identity{
		"uid-x": {UID: "uid-x", DisplayName: "Xena", Email: "xena@example.com"},
	}}
	uc := NewAuthUseCase(users, auth)

	user, err := uc.SyncSignIn(context.Background(), "uid-x")
	require.NoError(t, err)
	assert.Equal(t, "Xena", user.DisplayName)
	assert.False(t, user.LastSeen.IsZero())

	stored, err := users.GetByID(context.Background(), "uid-x")
	require.NoError(t, err)
	assert.Equal(t, "xena@example.com", stored.Email)

	// A repeat sign-in refreshes rather than duplicating.
	again, err := uc.SyncSignIn(context.Background(), "uid-x")
	require.NoError(t, err)
	assert.True(t, !again.LastSeen.Before(user.LastSeen))

	all, err := users.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSyncSignInUnknownIdentityFails(t *testing.T) {
	uc := NewAuthUseCase(newFakeUserRepo(), &fakeAuthClient{identities: map[string]*firebase.Identity{}})

	_, err := uc.SyncSignIn(context.Background(), "uid-ghost")
	require.Error(t, err)
}

func TestRegisterPushTokenStoresToken(t *testing.T) {
	x, _ := testUsers()
	users := newFakeUserRepo(x)
	uc := NewAuthUseCase(users, &fakeAuthClient{})

	require.NoError(t, uc.RegisterPushToken(context.Background(), x.UID, "device-token-1"))

	stored, err := users.GetByID(context.Background(), x.UID)
	require.NoError(t, err)
	assert.Equal(t, "device-token-1", stored.FCMToken)

	// A missing token degrades to a no-op, never an error.
	require.NoError(t, uc.RegisterPushToken(context.Background(), x.UID, ""))
	stored, err = users.GetByID(context.Background(), x.UID)
	require.NoError(t, err)
	assert.Equal(t, "device-token-1", stored.FCMToken)
}

func TestListPeersExcludesSelf(t *testing.T) {
	x, y := testUsers()
	uc := NewDirectoryUseCase(newFakeUserRepo(x, y))

	entries, err := uc.ListPeers(context.Background(), x.UID, map[string]int{y.UID: 3})
	require.NoError(t, err)

	require.Len(t, entries, 1)
	assert.Equal(t, y.UID, entries[0].UID)
	assert.Equal(t, 3, entries[0].UnseenCount)
}
