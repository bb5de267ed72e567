package grpc

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/keycustody/internal/common"
	"github.com/dmitrijs2005/keycustody/internal/rpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const accountIDKey ctxKey = "accountID"

// protectedMethods need a valid access token.
var protectedMethods = map[string]struct{}{
	rpc.MethodGetIdentity:        {},
	rpc.MethodGetPublicKey:       {},
	rpc.MethodGrantVaultKey:      {},
	rpc.MethodListVaultKeyGrants: {},
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if _, ok := protectedMethods[info.FullMethod]; !ok {
		return handler(ctx, req)
	}

	var accessToken string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		values := md.Get(common.AccessTokenHeaderName)
		if len(values) > 0 {
			accessToken = values[0]
		}
	}
	if len(accessToken) == 0 {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	accountID, err := s.verifier.Verify(accessToken)
	if err != nil {
		if errors.Is(err, common.ErrTokenExpired) {
			return nil, status.Error(codes.Unauthenticated, "token expired")
		}
		return nil, status.Error(codes.Unauthenticated, "invalid token")
	}

	return handler(context.WithValue(ctx, accountIDKey, accountID), req)
}

// loggingInterceptor records method, status code and latency. Payloads are
// never logged: they carry passwords and key material.
func (s *GRPCServer) loggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)

	args := []any{"method", info.FullMethod, "code", status.Code(err).String(), "duration", time.Since(start)}
	if status.Code(err) == codes.Internal {
		s.logger.Error(ctx, "request failed", args...)
	} else {
		s.logger.Info(ctx, "request handled", args...)
	}
	return resp, err
}

func accountIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(accountIDKey).(string)
	return id, ok && id != ""
}
