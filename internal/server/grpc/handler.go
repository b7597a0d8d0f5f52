package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/posqueue/internal/common"
	pb "github.com/dmitrijs2005/posqueue/internal/proto"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

func (s *GRPCServer) Ping(ctx context.Context, _ *emptypb.Empty) (*wrapperspb.StringValue, error) {

	return wrapperspb.String(common.PingStatusOK), nil

}

func (s *GRPCServer) Login(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {

	req, err := pb.LoginRequestFromStruct(in)
	if err != nil || req.Username == "" {
		return nil, status.Error(codes.InvalidArgument, "username and password required")
	}

	res, err := s.users.Login(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			s.logger.Warn(ctx, "login refused", "username", req.Username)
			return nil, status.Error(codes.Unauthenticated, "unauthorized")
		}
		s.logger.Error(ctx, "login failed", "error", err)
		return nil, status.Error(codes.Internal, "internal error")
	}

	out, err := pb.LoginResponse{
		AccessToken: res.AccessToken,
		UserID:      res.User.ID,
		DisplayName: res.User.DisplayName,
	}.ToStruct()
	if err != nil {
		return nil, status.Error(codes.Internal, "internal error")
	}

	s.logger.Info(ctx, "Logged in", "username", req.Username)
	return out, nil

}

func (s *GRPCServer) SubmitOrder(ctx context.Context, in *wrapperspb.BytesValue) (*wrapperspb.StringValue, error) {

	userID, ok := userIDFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "unauthorized")
	}
	clientRef := firstMetadata(ctx, common.ClientRefHeaderName)

	id, created, err := s.orders.Submit(ctx, userID, clientRef, in.GetValue())
	if err != nil {
		if errors.Is(err, common.ErrValidation) {
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}
		s.logger.Error(ctx, "order not stored", "error", err)
		return nil, status.Error(codes.Internal, "internal error")
	}

	s.logger.Info(ctx, "Order accepted", "id", id, "client_ref", clientRef, "replay", !created)
	return wrapperspb.String(id), nil

}
