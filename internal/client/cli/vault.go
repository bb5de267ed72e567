package cli

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
)

// NewVault creates a vault key held by the current user and prints its id.
func (a *App) NewVault(ctx context.Context) error {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	vaultID, err := a.keyring.CreateVault(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, color.GreenString("✓")+" Vault "+color.YellowString(vaultID)+" created\n"+
		color.CyanString("→")+" Use "+color.YellowString("share "+vaultID+" <username>")+" to grant it")
	return nil
}

// Share grants the key of vaultID to grantee.
func (a *App) Share(ctx context.Context, vaultID, grantee string) error {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	if err := a.keyring.ShareVault(ctx, vaultID, grantee); err != nil {
		return err
	}

	fmt.Fprintln(a.out, color.GreenString("✓")+" Vault "+vaultID+" shared with "+color.YellowString(grantee))
	return nil
}

// Vaults prints the vault keys granted to the current user.
func (a *App) Vaults(ctx context.Context) error {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	vaults, err := a.keyring.Vaults(ctx)
	if err != nil {
		return err
	}

	if len(vaults) == 0 {
		fmt.Fprintln(a.out, "No vaults")
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "VAULT\tKEY\tGRANTED BY\tGRANTED AT")
	for _, v := range vaults {
		fp := v.Fingerprint
		if fp == "" {
			fp = "(unreadable)"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", v.VaultID, fp, v.GranterAccountID, v.CreatedAt.Format(time.RFC3339))
	}
	return w.Flush()
}

// Ping reports whether the server answers.
func (a *App) Ping(ctx context.Context) error {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	if err := a.keyring.Ping(ctx); err != nil {
		fmt.Fprintln(a.out, color.RedString("✗")+" Server unavailable")
		return err
	}
	fmt.Fprintln(a.out, color.GreenString("✓")+" Server OK")
	return nil
}
