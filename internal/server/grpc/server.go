package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/posqueue/internal/logging"
	pb "github.com/dmitrijs2005/posqueue/internal/proto"
	"github.com/dmitrijs2005/posqueue/internal/server/services"
	"google.golang.org/grpc"
)

type UserService interface {
	Login(ctx context.Context, userName, password string) (*services.LoginResult, error)
	Authenticate(accessToken string) (string, error)
}

type OrderService interface {
	Submit(ctx context.Context, userID, clientRef string, payload []byte) (string, bool, error)
}

type GRPCServer struct {
	pb.UnimplementedOrderIntakeServer
	address string
	users   UserService
	orders  OrderService
	logger  logging.Logger
}

func NewGRPCServer(a string, l logging.Logger, us UserService, ors OrderService) *GRPCServer {
	return &GRPCServer{
		address: a,
		logger:  l.With("module", "grpc_server"),
		users:   us,
		orders:  ors,
	}
}

// Run listens on the configured address and serves until ctx is done.
func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.Serve(ctx, listen)
}

// Serve serves on lis until ctx is done, then stops gracefully.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.accessTokenInterceptor))
	pb.RegisterOrderIntakeServer(srv, s)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(lis); err != nil {
		return err
	}

	return nil
}
