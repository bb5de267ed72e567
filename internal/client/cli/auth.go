package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/keycustody/internal/common"
	"github.com/fatih/color"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

func (a *App) readCredentials() (string, []byte, error) {
	userName, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return "", nil, err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return "", nil, err
	}
	return userName, password, nil
}

// Register prompts for a username and password and creates the account.
// The password is wiped before returning.
func (a *App) Register(ctx context.Context) error {
	userName, password, err := a.readCredentials()
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	if _, err := a.keyring.Register(ctx, userName, password); err != nil {
		switch {
		case errors.Is(err, common.ErrUsernameExists):
			fmt.Fprintln(a.out, color.RedString("✗")+" That username is taken.")
			return nil
		case errors.Is(err, common.ErrMissingCredentials):
			fmt.Fprintln(a.out, color.RedString("✗")+" Username and password are required.")
			return nil
		}
		return err
	}

	fmt.Fprintln(a.out, color.GreenString("✓")+" Success!\n"+
		color.CyanString("→")+" Run "+color.YellowString("login")+" to unlock your keys")
	return nil
}

// Login authenticates and unlocks the private key locally. A failed login
// prints one message whatever the cause on the server side.
func (a *App) Login(ctx context.Context) error {
	userName, password, err := a.readCredentials()
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	if err := a.keyring.Login(ctx, userName, password); err != nil {
		fmt.Fprintln(a.out, color.RedString("✗")+" Login unsuccessful.")
		return err
	}

	fmt.Fprintln(a.out, color.GreenString("✓")+" Logged in as "+color.YellowString(a.keyring.UserName()))
	return nil
}

// Logout drops the token pair and the unlocked private key and revokes the
// session on the server. A failed revocation only warns: the local state is
// gone either way.
func (a *App) Logout(ctx context.Context) error {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	if err := a.keyring.Logout(ctx); err != nil {
		fmt.Fprintln(a.out, color.YellowString("!")+" Server session not revoked: "+err.Error())
	}
	fmt.Fprintln(a.out, color.GreenString("✓")+" Logged out")
	return nil
}
