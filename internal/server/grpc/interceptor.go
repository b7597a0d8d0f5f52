package grpc

import (
	"context"

	"github.com/dmitrijs2005/posqueue/internal/common"
	pb "github.com/dmitrijs2005/posqueue/internal/proto"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const userIDKey ctxKey = "userID"

// protectedMethods need a valid access token.
var protectedMethods = map[string]bool{
	pb.OrderIntake_SubmitOrder_FullMethodName: true,
}

func firstMetadata(ctx context.Context, key string) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(key); len(values) > 0 {
			return values[0]
		}
	}
	return ""
}

func userIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {

	if protectedMethods[info.FullMethod] {

		accessToken := firstMetadata(ctx, common.AccessTokenHeaderName)
		if len(accessToken) == 0 {
			return nil, status.Error(codes.Unauthenticated, "missing token")
		}

		userID, err := s.users.Authenticate(accessToken)
		if err != nil {
			return nil, status.Error(codes.Unauthenticated, "invalid or expired token")
		}

		ctx = context.WithValue(ctx, userIDKey, userID)

	}

	return handler(ctx, req)
}
