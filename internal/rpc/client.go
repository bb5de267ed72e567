package rpc

import (
	"context"

	"google.golang.org/grpc"
)

// KeyCustodyServiceClient is the typed client side of the service.
type KeyCustodyServiceClient interface {
	Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*RegisterResponse, error)
	Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*LoginResponse, error)
	RefreshToken(ctx context.Context, in *RefreshTokenRequest, opts ...grpc.CallOption) (*RefreshTokenResponse, error)
	Logout(ctx context.Context, in *LogoutRequest, opts ...grpc.CallOption) (*LogoutResponse, error)
	GetIdentity(ctx context.Context, in *GetIdentityRequest, opts ...grpc.CallOption) (*GetIdentityResponse, error)
	GetPublicKey(ctx context.Context, in *GetPublicKeyRequest, opts ...grpc.CallOption) (*GetPublicKeyResponse, error)
	GrantVaultKey(ctx context.Context, in *GrantVaultKeyRequest, opts ...grpc.CallOption) (*GrantVaultKeyResponse, error)
	ListVaultKeyGrants(ctx context.Context, in *ListVaultKeyGrantsRequest, opts ...grpc.CallOption) (*ListVaultKeyGrantsResponse, error)
	Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error)
}

type keyCustodyServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewKeyCustodyServiceClient(cc grpc.ClientConnInterface) KeyCustodyServiceClient {
	return &keyCustodyServiceClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *keyCustodyServiceClient) Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*RegisterResponse, error) {
	return invoke[RegisterResponse](ctx, c.cc, MethodRegister, in, opts)
}

func (c *keyCustodyServiceClient) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*LoginResponse, error) {
	return invoke[LoginResponse](ctx, c.cc, MethodLogin, in, opts)
}

func (c *keyCustodyServiceClient) RefreshToken(ctx context.Context, in *RefreshTokenRequest, opts ...grpc.CallOption) (*RefreshTokenResponse, error) {
	return invoke[RefreshTokenResponse](ctx, c.cc, MethodRefreshToken, in, opts)
}

func (c *keyCustodyServiceClient) Logout(ctx context.Context, in *LogoutRequest, opts ...grpc.CallOption) (*LogoutResponse, error) {
	return invoke[LogoutResponse](ctx, c.cc, MethodLogout, in, opts)
}

func (c *keyCustodyServiceClient) GetIdentity(ctx context.Context, in *GetIdentityRequest, opts ...grpc.CallOption) (*GetIdentityResponse, error) {
	return invoke[GetIdentityResponse](ctx, c.cc, MethodGetIdentity, in, opts)
}

func (c *keyCustodyServiceClient) GetPublicKey(ctx context.Context, in *GetPublicKeyRequest, opts ...grpc.CallOption) (*GetPublicKeyResponse, error) {
	return invoke[GetPublicKeyResponse](ctx, c.cc, MethodGetPublicKey, in, opts)
}

func (c *keyCustodyServiceClient) GrantVaultKey(ctx context.Context, in *GrantVaultKeyRequest, opts ...grpc.CallOption) (*GrantVaultKeyResponse, error) {
	return invoke[GrantVaultKeyResponse](ctx, c.cc, MethodGrantVaultKey, in, opts)
}

func (c *keyCustodyServiceClient) ListVaultKeyGrants(ctx context.Context, in *ListVaultKeyGrantsRequest, opts ...grpc.CallOption) (*ListVaultKeyGrantsResponse, error) {
	return invoke[ListVaultKeyGrantsResponse](ctx, c.cc, MethodListVaultKeyGrants, in, opts)
}

func (c *keyCustodyServiceClient) Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error) {
	return invoke[PingResponse](ctx, c.cc, MethodPing, in, opts)
}
