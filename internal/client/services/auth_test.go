package services

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/posqueue/internal/client/client"
	"github.com/dmitrijs2005/posqueue/internal/client/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---- fake client ----

type fakeClient struct {
	LoginRet *client.LoginResult
	LoginErr error
	PingErr  error
	CloseErr error

	gotUser, gotPass string
}

func (f *fakeClient) Login(_ context.Context, u, p string) (*client.LoginResult, error) {
	f.gotUser, f.gotPass = u, p
	return f.LoginRet, f.LoginErr
}
func (f *fakeClient) Ping(context.Context) error { return f.PingErr }
func (f *fakeClient) Close() error               { return f.CloseErr }
func (f *fakeClient) SubmitOrder(context.Context, string, json.RawMessage) (string, error) {
	return "", nil
}

// ---- helpers ----

func newService(t *testing.T, c client.Client) (*authService, *store.Store) {
	t.Helper()
	st := store.New(filepath.Join(t.TempDir(), "auth.db"))
	require.NoError(t, st.Initialize(context.Background()))
	t.Cleanup(func() { _ = st.Close() })

	svc := NewAuthService(c, st).(*authService)
	svc.now = func() time.Time { return time.UnixMilli(1000) }
	return svc, st
}

func TestOnlineLogin_CachesSession(t *testing.T) {
	fc := &fakeClient{LoginRet: &client.LoginResult{UserID: "u1", DisplayName: "Anna"}}
	svc, st := newService(t, fc)
	ctx := context.Background()

	s, err := svc.OnlineLogin(ctx, "anna", []byte("pw"))
	require.NoError(t, err)
	assert.Equal(t, "anna", fc.gotUser)
	assert.Equal(t, "pw", fc.gotPass)
	assert.Equal(t, int64(1000), s.CapturedAt)

	cached, err := st.GetCachedUser(ctx, "anna")
	require.NoError(t, err)
	assert.Equal(t, s, cached)
}

func TestOnlineLogin_Error(t *testing.T) {
	svc, st := newService(t, &fakeClient{LoginErr: client.ErrUnauthorized})

	_, err := svc.OnlineLogin(context.Background(), "anna", []byte("bad"))
	require.ErrorIs(t, err, client.ErrUnauthorized)

	_, err = st.GetCachedUser(context.Background(), "anna")
	require.Error(t, err)
}

func TestOfflineLogin_NoCachedSession(t *testing.T) {
	svc, _ := newService(t, &fakeClient{})

	_, err := svc.OfflineLogin(context.Background(), "ghost")
	require.ErrorIs(t, err, client.ErrLocalDataNotAvailable)
}

func TestLogin_FallsBackWhenServerUnavailable(t *testing.T) {
	fc := &fakeClient{LoginRet: &client.LoginResult{UserID: "u1"}}
	svc, _ := newService(t, fc)
	ctx := context.Background()

	_, offline, err := svc.Login(ctx, "anna", []byte("pw"))
	require.NoError(t, err)
	assert.False(t, offline)

	fc.LoginErr = client.ErrUnavailable
	s, offline, err := svc.Login(ctx, "anna", []byte("pw"))
	require.NoError(t, err)
	assert.True(t, offline)
	assert.Equal(t, "u1", s.UserID)

	_, _, err = svc.Login(ctx, "bob", []byte("pw"))
	require.ErrorIs(t, err, client.ErrUnavailable)
	require.ErrorIs(t, err, client.ErrLocalDataNotAvailable)
}

func TestLogin_RefusedCredentialsDoNotFallBack(t *testing.T) {
	fc := &fakeClient{LoginRet: &client.LoginResult{UserID: "u1"}}
	svc, _ := newService(t, fc)
	ctx := context.Background()

	_, _, err := svc.Login(ctx, "anna", []byte("pw"))
	require.NoError(t, err)

	fc.LoginErr = client.ErrUnauthorized
	_, _, err = svc.Login(ctx, "anna", []byte("wrong"))
	require.ErrorIs(t, err, client.ErrUnauthorized)
}

func TestPingAndClose(t *testing.T) {
	fc := &fakeClient{PingErr: client.ErrUnavailable, CloseErr: errors.New("closed")}
	svc, _ := newService(t, fc)

	require.ErrorIs(t, svc.Ping(context.Background()), client.ErrUnavailable)
	require.Error(t, svc.Close(context.Background()))
}
