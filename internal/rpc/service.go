package rpc

import (
	"context"

	"google.golang.org/grpc"
)

const ServiceName = "keycustody.service.KeyCustodyService"

// Full method names, as seen by interceptors.
const (
	MethodRegister           = "/" + ServiceName + "/Register"
	MethodLogin              = "/" + ServiceName + "/Login"
	MethodRefreshToken       = "/" + ServiceName + "/RefreshToken"
	MethodLogout             = "/" + ServiceName + "/Logout"
	MethodGetIdentity        = "/" + ServiceName + "/GetIdentity"
	MethodGetPublicKey       = "/" + ServiceName + "/GetPublicKey"
	MethodGrantVaultKey      = "/" + ServiceName + "/GrantVaultKey"
	MethodListVaultKeyGrants = "/" + ServiceName + "/ListVaultKeyGrants"
	MethodPing               = "/" + ServiceName + "/Ping"
)

// KeyCustodyServiceServer is implemented by the gRPC handler.
type KeyCustodyServiceServer interface {
	Register(context.Context, *RegisterRequest) (*RegisterResponse, error)
	Login(context.Context, *LoginRequest) (*LoginResponse, error)
	RefreshToken(context.Context, *RefreshTokenRequest) (*RefreshTokenResponse, error)
	Logout(context.Context, *LogoutRequest) (*LogoutResponse, error)
	GetIdentity(context.Context, *GetIdentityRequest) (*GetIdentityResponse, error)
	GetPublicKey(context.Context, *GetPublicKeyRequest) (*GetPublicKeyResponse, error)
	GrantVaultKey(context.Context, *GrantVaultKeyRequest) (*GrantVaultKeyResponse, error)
	ListVaultKeyGrants(context.Context, *ListVaultKeyGrantsRequest) (*ListVaultKeyGrantsResponse, error)
	Ping(context.Context, *PingRequest) (*PingResponse, error)
}

// RegisterKeyCustodyServiceServer attaches srv to s.
func RegisterKeyCustodyServiceServer(s grpc.ServiceRegistrar, srv KeyCustodyServiceServer) {
	s.RegisterService(&KeyCustodyServiceDesc, srv)
}

// KeyCustodyServiceDesc describes the service for grpc.Server.
var KeyCustodyServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*KeyCustodyServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Register", Handler: unary(MethodRegister, KeyCustodyServiceServer.Register)},
		{MethodName: "Login", Handler: unary(MethodLogin, KeyCustodyServiceServer.Login)},
		{MethodName: "RefreshToken", Handler: unary(MethodRefreshToken, KeyCustodyServiceServer.RefreshToken)},
		{MethodName: "Logout", Handler: unary(MethodLogout, KeyCustodyServiceServer.Logout)},
		{MethodName: "GetIdentity", Handler: unary(MethodGetIdentity, KeyCustodyServiceServer.GetIdentity)},
		{MethodName: "GetPublicKey", Handler: unary(MethodGetPublicKey, KeyCustodyServiceServer.GetPublicKey)},
		{MethodName: "GrantVaultKey", Handler: unary(MethodGrantVaultKey, KeyCustodyServiceServer.GrantVaultKey)},
		{MethodName: "ListVaultKeyGrants", Handler: unary(MethodListVaultKeyGrants, KeyCustodyServiceServer.ListVaultKeyGrants)},
		{MethodName: "Ping", Handler: unary(MethodPing, KeyCustodyServiceServer.Ping)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "keycustody.proto",
}

// unary adapts a typed method to grpc.MethodHandler, routing through the
// server's interceptor chain when one is installed.
func unary[Req, Resp any](fullMethod string, call func(KeyCustodyServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(KeyCustodyServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(KeyCustodyServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}
