package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface is the command surface the REPL drives. App satisfies it;
// tests provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	NewVault(ctx context.Context) error
	Share(ctx context.Context, vaultID, grantee string) error
	Vaults(ctx context.Context) error
	Ping(ctx context.Context) error
}

// runREPL reads commands line by line from reader and dispatches them to a.
// The loop ends on EOF, on "exit"/"quit" or when ctx is cancelled.
//
//	Not logged in:
//	  register, login, ping, help, exit | quit
//
//	Logged in:
//	  newvault                     create a vault key held by you
//	  share <vault-id> <username>  grant a vault key you hold to another user
//	  vaults                       list the vault keys granted to you
//	  logout, ping, help, exit | quit
//
// Handler errors are logged and the loop carries on.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}

		printlnFn(fmt.Sprintf("kc %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var cmdErr error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: newvault, share <vault-id> <username>, vaults, ping, logout, exit")
			} else {
				printlnFn("Available commands: register, login, ping, exit")
			}

		case "register":
			cmdErr = a.Register(ctx)

		case "login":
			cmdErr = a.Login(ctx)

		case "logout":
			cmdErr = a.Logout(ctx)

		case "newvault":
			cmdErr = a.NewVault(ctx)

		case "share":
			if len(args) != 2 {
				printlnFn("Usage: share <vault-id> <username>")
				continue
			}
			cmdErr = a.Share(ctx, args[0], args[1])

		case "vaults":
			cmdErr = a.Vaults(ctx)

		case "ping":
			cmdErr = a.Ping(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil {
			log.Printf("%s: %v", cmd, cmdErr)
		}
	}
}
