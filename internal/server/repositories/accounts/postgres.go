package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/keycustody/internal/common"
	"github.com/dmitrijs2005/keycustody/internal/cryptox"
	"github.com/dmitrijs2005/keycustody/internal/dbx"
	"github.com/dmitrijs2005/keycustody/internal/server/models"
)

const selectAccount = `
		SELECT id, username, salt, kdf_version, key_algorithm, public_key, encrypted_private_key, created_at
		FROM accounts
	`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	query := `
		INSERT INTO accounts (username, salt, kdf_version, key_algorithm, public_key, encrypted_private_key)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := r.db.QueryRowContext(ctx, query,
		account.UserName,
		account.Salt,
		int(account.KDFVersion),
		string(account.KeyAlgorithm),
		account.PublicKey,
		account.EncryptedPrivateKey,
	).Scan(&account.ID, &account.CreatedAt)

	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrUsernameExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return account, nil
}

func (r *PostgresRepository) GetByUserName(ctx context.Context, userName string) (*models.Account, error) {
	return r.scanOne(r.db.QueryRowContext(ctx, selectAccount+"WHERE username = $1", userName))
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	return r.scanOne(r.db.QueryRowContext(ctx, selectAccount+"WHERE id = $1", id))
}

func (r *PostgresRepository) scanOne(row *sql.Row) (*models.Account, error) {
	var (
		account    models.Account
		kdfVersion int
		algorithm  string
	)

	err := row.Scan(
		&account.ID,
		&account.UserName,
		&account.Salt,
		&kdfVersion,
		&algorithm,
		&account.PublicKey,
		&account.EncryptedPrivateKey,
		&account.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	account.KDFVersion = cryptox.KDFVersion(kdfVersion)
	account.KeyAlgorithm = cryptox.KeyAlgorithm(algorithm)

	return &account, nil
}
