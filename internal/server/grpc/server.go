// Package grpc exposes the key-custody services over gRPC.
package grpc

import (
	"context"
	"errors"
	"net"

	"github.com/dmitrijs2005/keycustody/internal/logging"
	"github.com/dmitrijs2005/keycustody/internal/rpc"
	"github.com/dmitrijs2005/keycustody/internal/server/models"
	"github.com/dmitrijs2005/keycustody/internal/server/services"
	"google.golang.org/grpc"
)

// UserService is the account side the handlers need.
type UserService interface {
	Register(ctx context.Context, userName, password string) (*models.Account, error)
	Login(ctx context.Context, userName, password string) (*services.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	GetIdentity(ctx context.Context, accountID string) (*models.Account, error)
	GetPublicKey(ctx context.Context, userName string) (*services.PublicKey, error)
}

// VaultKeyService is the vault key relay.
type VaultKeyService interface {
	Grant(ctx context.Context, granterID, vaultID, granteeUserName string, wrapped []byte) error
	ListGrants(ctx context.Context, accountID string) ([]*models.VaultKeyGrant, error)
}

// TokenVerifier resolves an access token to an account id.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

type GRPCServer struct {
	address  string
	users    UserService
	vaults   VaultKeyService
	verifier TokenVerifier
	logger   logging.Logger
}

func NewGRPCServer(a string, l logging.Logger, us UserService, vs VaultKeyService, v TokenVerifier) *GRPCServer {
	return &GRPCServer{
		address:  a,
		logger:   l.With("module", "grpc_server"),
		users:    us,
		vaults:   vs,
		verifier: v,
	}
}

// Run listens on the configured address and serves until ctx ends.
func (s *GRPCServer) Run(ctx context.Context) error {
	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve serves on lis until ctx ends, then stops gracefully.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.accessTokenInterceptor))

	rpc.RegisterKeyCustodyServiceServer(srv, s)

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	err := srv.Serve(lis)
	if err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		srv.Stop()
		return err
	}

	<-stopped
	return nil
}
