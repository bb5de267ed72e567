package vaultkeys

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/keycustody/internal/common"
	"github.com/dmitrijs2005/keycustody/internal/dbx"
	"github.com/dmitrijs2005/keycustody/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Upsert(ctx context.Context, grant *models.VaultKeyGrant) error {
	query := `
		INSERT INTO vault_key_grants (vault_id, grantee_account_id, granter_account_id, wrapped_vault_key)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (vault_id, grantee_account_id) DO UPDATE
		SET wrapped_vault_key = EXCLUDED.wrapped_vault_key,
			created_at = now()
		WHERE vault_key_grants.granter_account_id = EXCLUDED.granter_account_id
	`

	res, err := r.db.ExecContext(ctx, query,
		grant.VaultID, grant.GranteeAccountID, grant.GranterAccountID, grant.WrappedVaultKey)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	// the conflicting row belongs to another granter
	if n == 0 {
		return common.ErrForbidden
	}
	return nil
}

func (r *PostgresRepository) Exists(ctx context.Context, vaultID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM vault_key_grants WHERE vault_id = $1)`
	return r.exists(ctx, query, vaultID)
}

func (r *PostgresRepository) Holds(ctx context.Context, vaultID, accountID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM vault_key_grants WHERE vault_id = $1 AND grantee_account_id = $2)`
	return r.exists(ctx, query, vaultID, accountID)
}

func (r *PostgresRepository) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var ok bool
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&ok); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return ok, nil
}

func (r *PostgresRepository) ListForGrantee(ctx context.Context, accountID string) ([]*models.VaultKeyGrant, error) {
	query := `
		SELECT vault_id, grantee_account_id, granter_account_id, wrapped_vault_key, created_at
		FROM vault_key_grants
		WHERE grantee_account_id = $1
		ORDER BY created_at, vault_id
	`

	rows, err := r.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var grants []*models.VaultKeyGrant
	for rows.Next() {
		g := &models.VaultKeyGrant{}
		if err := rows.Scan(&g.VaultID, &g.GranteeAccountID, &g.GranterAccountID, &g.WrappedVaultKey, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		grants = append(grants, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return grants, nil
}
