package proto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"
)

func TestLoginRequest_StructRoundTrip(t *testing.T) {
	s, err := LoginRequest{Username: "anna", Password: "pw"}.ToStruct()
	require.NoError(t, err)

	got, err := LoginRequestFromStruct(s)
	require.NoError(t, err)
	assert.Equal(t, LoginRequest{Username: "anna", Password: "pw"}, got)
}

func TestLoginResponseFromStruct_RequiresToken(t *testing.T) {
	_, err := LoginResponseFromStruct(nil)
	require.ErrorIs(t, err, ErrMalformedLogin)

	s, err := structpb.NewStruct(map[string]any{FieldUserID: "u1"})
	require.NoError(t, err)
	_, err = LoginResponseFromStruct(s)
	require.ErrorIs(t, err, ErrMalformedLogin)

	s, err = LoginResponse{AccessToken: "t", UserID: "u1", DisplayName: "Anna"}.ToStruct()
	require.NoError(t, err)
	got, err := LoginResponseFromStruct(s)
	require.NoError(t, err)
	assert.Equal(t, "Anna", got.DisplayName)
}
