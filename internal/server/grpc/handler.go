package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/keycustody/internal/common"
	"github.com/dmitrijs2005/keycustody/internal/rpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func (s *GRPCServer) Register(ctx context.Context, req *rpc.RegisterRequest) (*rpc.RegisterResponse, error) {
	account, err := s.users.Register(ctx, req.Username, req.Password)

	switch {
	case err == nil:
		return &rpc.RegisterResponse{Status: rpc.RegisterStatusOK, AccountID: account.ID}, nil
	case errors.Is(err, common.ErrMissingCredentials):
		return &rpc.RegisterResponse{Status: rpc.RegisterStatusMissingCredentials}, nil
	case errors.Is(err, common.ErrUsernameExists):
		return &rpc.RegisterResponse{Status: rpc.RegisterStatusUsernameExists}, nil
	}
	return nil, toStatus(err)
}

func (s *GRPCServer) Login(ctx context.Context, req *rpc.LoginRequest) (*rpc.LoginResponse, error) {
	tokens, err := s.users.Login(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrAuthenticationFailed) {
			return nil, status.Error(codes.Unauthenticated, "authentication failed")
		}
		return nil, toStatus(err)
	}

	return &rpc.LoginResponse{AccessToken: tokens.AccessToken, RefreshToken: tokens.RefreshToken}, nil
}

func (s *GRPCServer) RefreshToken(ctx context.Context, req *rpc.RefreshTokenRequest) (*rpc.RefreshTokenResponse, error) {
	tokens, err := s.users.RefreshToken(ctx, req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrRefreshTokenExpired):
			return nil, status.Error(codes.Unauthenticated, "refresh token expired")
		case errors.Is(err, common.ErrInvalidToken):
			return nil, status.Error(codes.Unauthenticated, "invalid refresh token")
		}
		return nil, toStatus(err)
	}

	return &rpc.RefreshTokenResponse{AccessToken: tokens.AccessToken, RefreshToken: tokens.RefreshToken}, nil
}

// Logout revokes the refresh token. It needs no access token: holding the
// refresh token is what entitles the caller to drop it.
func (s *GRPCServer) Logout(ctx context.Context, req *rpc.LogoutRequest) (*rpc.LogoutResponse, error) {
	if err := s.users.Logout(ctx, req.RefreshToken); err != nil {
		if errors.Is(err, common.ErrInvalidToken) {
			return nil, status.Error(codes.InvalidArgument, "refresh token required")
		}
		return nil, toStatus(err)
	}
	return &rpc.LogoutResponse{}, nil
}

func (s *GRPCServer) GetIdentity(ctx context.Context, _ *rpc.GetIdentityRequest) (*rpc.GetIdentityResponse, error) {
	accountID, ok := accountIDFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	account, err := s.users.GetIdentity(ctx, accountID)
	if err != nil {
		return nil, toStatus(err)
	}

	return &rpc.GetIdentityResponse{
		AccountID:           account.ID,
		Username:            account.UserName,
		Salt:                account.Salt,
		KDFVersion:          int(account.KDFVersion),
		KeyAlgorithm:        string(account.KeyAlgorithm),
		PublicKey:           account.PublicKey,
		EncryptedPrivateKey: account.EncryptedPrivateKey,
	}, nil
}

func (s *GRPCServer) GetPublicKey(ctx context.Context, req *rpc.GetPublicKeyRequest) (*rpc.GetPublicKeyResponse, error) {
	if req.Username == "" {
		return nil, status.Error(codes.InvalidArgument, "username required")
	}

	key, err := s.users.GetPublicKey(ctx, req.Username)
	if err != nil {
		return nil, toStatus(err)
	}

	return &rpc.GetPublicKeyResponse{
		AccountID:    key.AccountID,
		KeyAlgorithm: string(key.Algorithm),
		PublicKey:    key.Key,
	}, nil
}

func (s *GRPCServer) GrantVaultKey(ctx context.Context, req *rpc.GrantVaultKeyRequest) (*rpc.GrantVaultKeyResponse, error) {
	accountID, ok := accountIDFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	if err := s.vaults.Grant(ctx, accountID, req.VaultID, req.GranteeUsername, req.WrappedVaultKey); err != nil {
		return nil, toStatus(err)
	}
	return &rpc.GrantVaultKeyResponse{}, nil
}

func (s *GRPCServer) ListVaultKeyGrants(ctx context.Context, _ *rpc.ListVaultKeyGrantsRequest) (*rpc.ListVaultKeyGrantsResponse, error) {
	accountID, ok := accountIDFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	grants, err := s.vaults.ListGrants(ctx, accountID)
	if err != nil {
		return nil, toStatus(err)
	}

	resp := &rpc.ListVaultKeyGrantsResponse{Grants: make([]*rpc.VaultKeyGrant, 0, len(grants))}
	for _, g := range grants {
		resp.Grants = append(resp.Grants, &rpc.VaultKeyGrant{
			VaultID:          g.VaultID,
			GranterAccountID: g.GranterAccountID,
			WrappedVaultKey:  g.WrappedVaultKey,
			CreatedAt:        g.CreatedAt,
		})
	}
	return resp, nil
}

func (s *GRPCServer) Ping(ctx context.Context, _ *rpc.PingRequest) (*rpc.PingResponse, error) {
	return &rpc.PingResponse{Status: "OK"}, nil
}

// toStatus maps the remaining service sentinels to fixed gRPC statuses.
// Anything unexpected becomes a bare Internal.
func toStatus(err error) error {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return status.FromContextError(err).Err()
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, "not found")
	case errors.Is(err, common.ErrInvalidInput):
		return status.Error(codes.InvalidArgument, "invalid argument")
	case errors.Is(err, common.ErrForbidden):
		return status.Error(codes.PermissionDenied, "permission denied")
	}
	return status.Error(codes.Internal, "internal error")
}
