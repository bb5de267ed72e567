package client

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/keycustody/internal/client/models"
	"github.com/dmitrijs2005/keycustody/internal/common"
	"github.com/dmitrijs2005/keycustody/internal/cryptox"
	"github.com/dmitrijs2005/keycustody/internal/rpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      rpc.KeyCustodyServiceClient

	mu           sync.Mutex
	accessToken  string
	refreshToken string
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

func (s *GRPCClient) tokens() (string, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken, s.refreshToken
}

func (s *GRPCClient) setTokens(access, refresh string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = access
	s.refreshToken = refresh
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	accessToken, refreshToken := s.tokens()

	err := invoker(withAccessToken(ctx, accessToken), method, req, reply, cc, opts...)
	if err == nil {
		return nil
	}

	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	if st.Code() != codes.Unauthenticated || st.Message() != common.ErrTokenExpired.Error() {
		return err
	}
	if refreshToken == "" {
		return err
	}

	resp, err := s.client.RefreshToken(ctx, &rpc.RefreshTokenRequest{RefreshToken: refreshToken})
	if err != nil {
		return err
	}
	s.setTokens(resp.AccessToken, resp.RefreshToken)

	// tokens rotated, retry once with the new access token
	return invoker(withAccessToken(ctx, resp.AccessToken), method, req, reply, cc, opts...)
}

// NewKeyCustodyClient connects lazily to endpointURL. No RPC is made until
// the first call.
func NewKeyCustodyClient(endpointURL string, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL}
	if err := c.initGRPCClient(opts...); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) initGRPCClient(extra ...grpc.DialOption) error {
	opts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(s.accessTokenInterceptor),
	}, extra...)

	conn, err := grpc.NewClient(s.endpointURL, opts...)
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = rpc.NewKeyCustodyServiceClient(conn)
	return nil
}

// Register creates an account and returns its id. A taken name and empty
// credentials come back as common.ErrUsernameExists and
// common.ErrMissingCredentials.
func (s *GRPCClient) Register(ctx context.Context, userName string, password []byte) (string, error) {
	resp, err := s.client.Register(ctx, &rpc.RegisterRequest{Username: userName, Password: string(password)})
	if err != nil {
		return "", s.mapError(err)
	}

	switch resp.Status {
	case rpc.RegisterStatusOK:
		return resp.AccountID, nil
	case rpc.RegisterStatusUsernameExists:
		return "", common.ErrUsernameExists
	case rpc.RegisterStatusMissingCredentials:
		return "", common.ErrMissingCredentials
	default:
		return "", fmt.Errorf("unexpected register status %v", resp.Status)
	}
}

func (s *GRPCClient) Login(ctx context.Context, userName string, password []byte) error {
	resp, err := s.client.Login(ctx, &rpc.LoginRequest{Username: userName, Password: string(password)})
	if err != nil {
		return s.mapError(err)
	}

	s.setTokens(resp.AccessToken, resp.RefreshToken)
	return nil
}

// Logout revokes the refresh token on the server and forgets the token
// pair. The local pair is dropped even when the revocation fails.
func (s *GRPCClient) Logout(ctx context.Context) error {
	_, refresh := s.tokens()
	s.setTokens("", "")
	if refresh == "" {
		return nil
	}

	if _, err := s.client.Logout(ctx, &rpc.LogoutRequest{RefreshToken: refresh}); err != nil {
		return s.mapError(err)
	}
	return nil
}

func (s *GRPCClient) Identity(ctx context.Context) (*models.Identity, error) {
	resp, err := s.client.GetIdentity(ctx, &rpc.GetIdentityRequest{})
	if err != nil {
		return nil, s.mapError(err)
	}

	alg, err := cryptox.ParseKeyAlgorithm(resp.KeyAlgorithm)
	if err != nil {
		return nil, err
	}

	return &models.Identity{
		AccountID:           resp.AccountID,
		UserName:            resp.Username,
		Salt:                resp.Salt,
		KDFVersion:          cryptox.KDFVersion(resp.KDFVersion),
		KeyAlgorithm:        alg,
		PublicKey:           resp.PublicKey,
		EncryptedPrivateKey: resp.EncryptedPrivateKey,
	}, nil
}

func (s *GRPCClient) PublicKey(ctx context.Context, userName string) (*models.RecipientKey, error) {
	resp, err := s.client.GetPublicKey(ctx, &rpc.GetPublicKeyRequest{Username: userName})
	if err != nil {
		return nil, s.mapError(err)
	}

	alg, err := cryptox.ParseKeyAlgorithm(resp.KeyAlgorithm)
	if err != nil {
		return nil, err
	}

	return &models.RecipientKey{
		AccountID:    resp.AccountID,
		UserName:     userName,
		KeyAlgorithm: alg,
		PublicKey:    resp.PublicKey,
	}, nil
}

func (s *GRPCClient) GrantVaultKey(ctx context.Context, vaultID, granteeUserName string, wrapped []byte) error {
	req := &rpc.GrantVaultKeyRequest{VaultID: vaultID, GranteeUsername: granteeUserName, WrappedVaultKey: wrapped}
	if _, err := s.client.GrantVaultKey(ctx, req); err != nil {
		return s.mapError(err)
	}
	return nil
}

func (s *GRPCClient) ListGrants(ctx context.Context) ([]*models.VaultKeyGrant, error) {
	resp, err := s.client.ListVaultKeyGrants(ctx, &rpc.ListVaultKeyGrantsRequest{})
	if err != nil {
		return nil, s.mapError(err)
	}

	grants := make([]*models.VaultKeyGrant, 0, len(resp.Grants))
	for _, g := range resp.Grants {
		grants = append(grants, &models.VaultKeyGrant{
			VaultID:          g.VaultID,
			GranterAccountID: g.GranterAccountID,
			WrappedVaultKey:  g.WrappedVaultKey,
			CreatedAt:        g.CreatedAt,
		})
	}
	return grants, nil
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	resp, err := s.client.Ping(ctx, &rpc.PingRequest{})
	if err != nil {
		return s.mapError(err)
	}

	if resp.Status != "OK" {
		return ErrUnavailable
	}
	return nil
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
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated:
		return ErrUnauthorized
	case codes.PermissionDenied:
		return ErrForbidden
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	case codes.NotFound:
		return ErrNotFound
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", ErrRejected, st.Message())
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
