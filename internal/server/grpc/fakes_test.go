package grpc

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/dmitrijs2005/keycustody/internal/logging"
	"github.com/dmitrijs2005/keycustody/internal/rpc"
	"github.com/dmitrijs2005/keycustody/internal/server/auth"
	"github.com/dmitrijs2005/keycustody/internal/server/models"
	"github.com/dmitrijs2005/keycustody/internal/server/services"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"
)

// ---- fakes ----

type fakeUsers struct {
	regResp *models.Account
	regErr  error

	loginResp *services.TokenPair
	loginErr  error

	refreshResp *services.TokenPair
	refreshErr  error

	logoutErr error
	loggedOut string

	identityResp *models.Account
	identityErr  error
	identityFor  string

	keyResp *services.PublicKey
	keyErr  error
}

func (f *fakeUsers) Register(context.Context, string, string) (*models.Account, error) {
	return f.regResp, f.regErr
}

func (f *fakeUsers) Login(context.Context, string, string) (*services.TokenPair, error) {
	return f.loginResp, f.loginErr
}

func (f *fakeUsers) RefreshToken(context.Context, string) (*services.TokenPair, error) {
	return f.refreshResp, f.refreshErr
}

func (f *fakeUsers) Logout(_ context.Context, refreshToken string) error {
	f.loggedOut = refreshToken
	return f.logoutErr
}

func (f *fakeUsers) GetIdentity(_ context.Context, accountID string) (*models.Account, error) {
	f.identityFor = accountID
	return f.identityResp, f.identityErr
}

func (f *fakeUsers) GetPublicKey(context.Context, string) (*services.PublicKey, error) {
	return f.keyResp, f.keyErr
}

type fakeVaults struct {
	grantErr   error
	granter    string
	grantee    string
	listResp   []*models.VaultKeyGrant
	listErr    error
	listedFor  string
	grantCalls int
}

func (f *fakeVaults) Grant(_ context.Context, granterID, _, granteeUserName string, _ []byte) error {
	f.grantCalls++
	f.granter, f.grantee = granterID, granteeUserName
	return f.grantErr
}

func (f *fakeVaults) ListGrants(_ context.Context, accountID string) ([]*models.VaultKeyGrant, error) {
	f.listedFor = accountID
	return f.listResp, f.listErr
}

// ---- harness ----

func testIssuer(t *testing.T) *auth.Issuer {
	t.Helper()
	iss, err := auth.NewIssuer(auth.IssuerConfig{
		Algorithm: auth.AlgHS256,
		Secret:    []byte("secret"),
		Issuer:    "keycustody",
		Validity:  time.Hour,
	})
	require.NoError(t, err)
	return iss
}

// startBufconn serves s on an in-memory listener and returns a client.
func startBufconn(t *testing.T, s *GRPCServer) rpc.KeyCustodyServiceClient {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, lis) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = conn.Close()
		cancel()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Error("server did not stop")
		}
	})

	return rpc.NewKeyCustodyServiceClient(conn)
}

func newServer(t *testing.T, us UserService, vs VaultKeyService) *GRPCServer {
	t.Helper()
	return NewGRPCServer("127.0.0.1:0", logging.Nop{}, us, vs, testIssuer(t))
}
