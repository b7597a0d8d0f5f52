package proto

import (
	"errors"

	"google.golang.org/protobuf/types/known/structpb"
)

// Field names of the Login request and response structs.
const (
	FieldUsername    = "username"
	FieldPassword    = "password"
	FieldAccessToken = "access_token"
	FieldUserID      = "user_id"
	FieldDisplayName = "display_name"
)

var ErrMalformedLogin = errors.New("malformed login message")

type LoginRequest struct {
	Username string
	Password string
}

type LoginResponse struct {
	AccessToken string
	UserID      string
	DisplayName string
}

func (r LoginRequest) ToStruct() (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		FieldUsername: r.Username,
		FieldPassword: r.Password,
	})
}

func LoginRequestFromStruct(s *structpb.Struct) (LoginRequest, error) {
	var r LoginRequest
	if s == nil {
		return r, ErrMalformedLogin
	}
	r.Username = s.GetFields()[FieldUsername].GetStringValue()
	r.Password = s.GetFields()[FieldPassword].GetStringValue()
	return r, nil
}

func (r LoginResponse) ToStruct() (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		FieldAccessToken: r.AccessToken,
		FieldUserID:      r.UserID,
		FieldDisplayName: r.DisplayName,
	})
}

func LoginResponseFromStruct(s *structpb.Struct) (LoginResponse, error) {
	var r LoginResponse
	if s == nil {
		return r, ErrMalformedLogin
	}
	f := s.GetFields()
	r.AccessToken = f[FieldAccessToken].GetStringValue()
	r.UserID = f[FieldUserID].GetStringValue()
	r.DisplayName = f[FieldDisplayName].GetStringValue()
	if r.AccessToken == "" {
		return r, ErrMalformedLogin
	}
	return r, nil
}
