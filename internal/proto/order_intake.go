// Package proto declares the pos.v1.OrderIntake gRPC service.
//
// The service has no .proto-generated messages of its own: every method
// exchanges protobuf well-known types, so the descriptors below are written
// by hand in the shape protoc-gen-go-grpc would produce.
//
//	Ping        (google.protobuf.Empty)       returns (google.protobuf.StringValue)
//	Login       (google.protobuf.Struct)      returns (google.protobuf.Struct)
//	SubmitOrder (google.protobuf.BytesValue)  returns (google.protobuf.StringValue)
//
// SubmitOrder carries the raw order JSON; the access token and the client
// reference travel in request metadata.
package proto

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	OrderIntake_Ping_FullMethodName        = "/pos.v1.OrderIntake/Ping"
	OrderIntake_Login_FullMethodName       = "/pos.v1.OrderIntake/Login"
	OrderIntake_SubmitOrder_FullMethodName = "/pos.v1.OrderIntake/SubmitOrder"
)

// OrderIntakeClient is the client API for the OrderIntake service.
type OrderIntakeClient interface {
	Ping(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*wrapperspb.StringValue, error)
	Login(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	SubmitOrder(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*wrapperspb.StringValue, error)
}

type orderIntakeClient struct {
	cc grpc.ClientConnInterface
}

func NewOrderIntakeClient(cc grpc.ClientConnInterface) OrderIntakeClient {
	return &orderIntakeClient{cc}
}

func (c *orderIntakeClient) Ping(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	out := new(wrapperspb.StringValue)
	if err := c.cc.Invoke(ctx, OrderIntake_Ping_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *orderIntakeClient) Login(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, OrderIntake_Login_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *orderIntakeClient) SubmitOrder(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	out := new(wrapperspb.StringValue)
	if err := c.cc.Invoke(ctx, OrderIntake_SubmitOrder_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// OrderIntakeServer is the server API for the OrderIntake service.
type OrderIntakeServer interface {
	Ping(context.Context, *emptypb.Empty) (*wrapperspb.StringValue, error)
	Login(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SubmitOrder(context.Context, *wrapperspb.BytesValue) (*wrapperspb.StringValue, error)
}

// UnimplementedOrderIntakeServer can be embedded to have forward compatible implementations.
type UnimplementedOrderIntakeServer struct{}

func (UnimplementedOrderIntakeServer) Ping(context.Context, *emptypb.Empty) (*wrapperspb.StringValue, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Ping not implemented")
}

func (UnimplementedOrderIntakeServer) Login(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Login not implemented")
}

func (UnimplementedOrderIntakeServer) SubmitOrder(context.Context, *wrapperspb.BytesValue) (*wrapperspb.StringValue, error) {
	return nil, status.Errorf(codes.Unimplemented, "method SubmitOrder not implemented")
}

func RegisterOrderIntakeServer(s grpc.ServiceRegistrar, srv OrderIntakeServer) {
	s.RegisterService(&OrderIntake_ServiceDesc, srv)
}

func _OrderIntake_Ping_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(OrderIntakeServer).Ping(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: OrderIntake_Ping_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(OrderIntakeServer).Ping(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func _OrderIntake_Login_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(OrderIntakeServer).Login(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: OrderIntake_Login_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(OrderIntakeServer).Login(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func _OrderIntake_SubmitOrder_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.BytesValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(OrderIntakeServer).SubmitOrder(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: OrderIntake_SubmitOrder_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(OrderIntakeServer).SubmitOrder(ctx, req.(*wrapperspb.BytesValue))
	}
	return interceptor(ctx, in, info, handler)
}

// OrderIntake_ServiceDesc is the grpc.ServiceDesc for the OrderIntake service.
var OrderIntake_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "pos.v1.OrderIntake",
	HandlerType: (*OrderIntakeServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Ping", Handler: _OrderIntake_Ping_Handler},
		{MethodName: "Login", Handler: _OrderIntake_Login_Handler},
		{MethodName: "SubmitOrder", Handler: _OrderIntake_SubmitOrder_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "pos/v1/order_intake.proto",
}
