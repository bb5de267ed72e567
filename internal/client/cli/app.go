package cli

import (
	"bufio"
	"context"
	"io"
	"os"

	"github.com/dmitrijs2005/keycustody/internal/client/client"
	"github.com/dmitrijs2005/keycustody/internal/client/config"
	"github.com/dmitrijs2005/keycustody/internal/client/services"
)

type App struct {
	config  *config.Config
	keyring services.KeyringService
	reader  *bufio.Reader
	out     io.Writer
}

func NewApp(c *config.Config) (*App, error) {
	apiClient, err := client.NewKeyCustodyClient(c.ServerEndpointAddr)
	if err != nil {
		return nil, err
	}

	ks := services.NewKeyringService(apiClient)

	return &App{config: c, keyring: ks, reader: bufio.NewReader(os.Stdin), out: os.Stdout}, nil
}

// Run starts the REPL and blocks until the user leaves or ctx ends.
func (a *App) Run(ctx context.Context) {
	defer a.keyring.Close()
	a.Root(ctx)
}

func (a *App) isLoggedIn() bool {
	return a.keyring.UserName() != ""
}

// withTimeout bounds one command's RPCs by the configured request timeout.
func (a *App) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, a.config.RequestTimeout)
}

func (a *App) getStatus() string {
	if name := a.keyring.UserName(); name != "" {
		return "(" + name + ")"
	}
	return ""
}

// Root runs the REPL on the app's reader.
func (a *App) Root(ctx context.Context) {
	printlnFn("Welcome to keycustody CLI (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, a.reader)
}
