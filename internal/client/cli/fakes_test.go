package cli

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/keycustody/internal/client/config"
	"github.com/dmitrijs2005/keycustody/internal/client/models"
	"github.com/fatih/color"
)

func init() {
	// assertions match plain text
	color.NoColor = true
}

type fakeKeyring struct {
	user string

	regUser string
	regPass []byte
	regErr  error

	loginUser string
	loginPass []byte
	loginErr  error

	createID  string
	createErr error

	sharedVault string
	sharedWith  string
	shareErr    error

	vaults    []*models.Vault
	vaultsErr error

	pingErr error

	loggedOut bool
	logoutErr error
	closed    bool
}

func (f *fakeKeyring) Register(_ context.Context, user string, pass []byte) (string, error) {
	f.regUser, f.regPass = user, append([]byte(nil), pass...)
	return "id", f.regErr
}
func (f *fakeKeyring) Login(_ context.Context, user string, pass []byte) error {
	f.loginUser, f.loginPass = user, append([]byte(nil), pass...)
	if f.loginErr == nil {
		f.user = user
	}
	return f.loginErr
}
func (f *fakeKeyring) Logout(context.Context) error {
	f.loggedOut, f.user = true, ""
	return f.logoutErr
}
func (f *fakeKeyring) UserName() string { return f.user }
func (f *fakeKeyring) CreateVault(context.Context) (string, error) {
	return f.createID, f.createErr
}
func (f *fakeKeyring) ShareVault(_ context.Context, vaultID, grantee string) error {
	f.sharedVault, f.sharedWith = vaultID, grantee
	return f.shareErr
}
func (f *fakeKeyring) Vaults(context.Context) ([]*models.Vault, error) { return f.vaults, f.vaultsErr }
func (f *fakeKeyring) Ping(context.Context) error                      { return f.pingErr }
func (f *fakeKeyring) Close() error                                    { f.closed = true; return nil }

func newTestApp(k *fakeKeyring, input string) (*App, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return &App{
		config:  &config.Config{ServerEndpointAddr: "test", RequestTimeout: time.Second},
		keyring: k,
		reader:  bufio.NewReader(strings.NewReader(input)),
		out:     out,
	}, out
}

func stubInputs(t *testing.T, username string, password []byte) {
	t.Helper()
	origST, origGP := getSimpleText, getPassword
	getSimpleText = func(_ *bufio.Reader, _ string, _ io.Writer) (string, error) { return username, nil }
	getPassword = func(_ io.Writer) ([]byte, error) { return password, nil }
	t.Cleanup(func() {
		getSimpleText = origST
		getPassword = origGP
	})
}

func silencePrintln(t *testing.T) {
	t.Helper()
	orig := printlnFn
	printlnFn = func(...any) (int, error) { return 0, nil }
	t.Cleanup(func() { printlnFn = orig })
}
