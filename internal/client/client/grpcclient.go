package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/posqueue/internal/common"
	pb "github.com/dmitrijs2005/posqueue/internal/proto"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      pb.OrderIntakeClient

	mu          sync.RWMutex
	accessToken string
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.AccessTokenHeaderName)
	if token != "" {
		md.Set(common.AccessTokenHeaderName, token)
	}

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

func (s *GRPCClient) setToken(t string) {
	s.mu.Lock()
	s.accessToken = t
	s.mu.Unlock()
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	ctx = withAccessToken(ctx, s.token())
	return invoker(ctx, method, req, reply, cc, opts...)
}

func NewGRPCClient(endpointURL string, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL}
	if err := c.InitGRPCClient(opts...); err != nil {
		return nil, err
	}
	return c, nil
}

// InitGRPCClient creates the connection. Extra dial options are appended
// after the defaults (tests pass a bufconn dialer here).
func (s *GRPCClient) InitGRPCClient(opts ...grpc.DialOption) error {
	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(s.accessTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(s.endpointURL, dialOpts...)
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = pb.NewOrderIntakeClient(conn)
	return nil
}

func (s *GRPCClient) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	req, err := pb.LoginRequest{Username: username, Password: password}.ToStruct()
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Login(ctx, req)
	if err != nil {
		return nil, s.mapError(err)
	}

	lr, err := pb.LoginResponseFromStruct(resp)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRejected, err)
	}

	s.setToken(lr.AccessToken)
	return &LoginResult{UserID: lr.UserID, DisplayName: lr.DisplayName}, nil
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	resp, err := s.client.Ping(ctx, &emptypb.Empty{})
	if err != nil {
		return s.mapError(err)
	}

	if resp.GetValue() != common.PingStatusOK {
		return ErrUnavailable
	}
	return nil
}

func (s *GRPCClient) SubmitOrder(ctx context.Context, clientRef string, payload json.RawMessage) (string, error) {
	if clientRef != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, common.ClientRefHeaderName, clientRef)
	}

	resp, err := s.client.SubmitOrder(ctx, wrapperspb.Bytes(payload))
	if err != nil {
		return "", s.mapError(err)
	}
	return resp.GetValue(), nil
}

func (s *GRPCClient) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return fmt.Errorf("%w: %s", ErrUnauthorized, st.Message())
	case codes.Unavailable:
		return fmt.Errorf("%w: %s", ErrUnavailable, st.Message())
	case codes.DeadlineExceeded:
		return fmt.Errorf("%w: %w", ErrUnavailable, context.DeadlineExceeded)
	case codes.Canceled:
		return context.Canceled
	default:
		return fmt.Errorf("%w: %s", ErrRejected, st.Message())
	}
}
