package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dmitrijs2005/keycustody/internal/common"
	"github.com/dmitrijs2005/keycustody/internal/cryptox"
	"github.com/dmitrijs2005/keycustody/internal/dbx"
	"github.com/dmitrijs2005/keycustody/internal/logging"
	"github.com/dmitrijs2005/keycustody/internal/server/models"
	"github.com/dmitrijs2005/keycustody/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// VaultKeyService relays vault keys that clients wrapped for each other.
// It checks the shape of a grant against the grantee's public key but can
// never open it.
type VaultKeyService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewVaultKeyService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *VaultKeyService {
	return &VaultKeyService{db: db, repomanager: m, logger: logger}
}

// Grant stores wrapped for granteeUserName under vaultID.
//
// Only a current holder of the vault may grant it. The one exception is the
// first grant of a vault nobody holds yet, which must go to the granter
// itself. A grant from another granter is never replaced. Violations
// return common.ErrForbidden.
func (s *VaultKeyService) Grant(ctx context.Context, granterID, vaultID, granteeUserName string, wrapped []byte) error {
	if _, err := uuid.Parse(vaultID); err != nil {
		return common.ErrInvalidInput
	}
	if granteeUserName == "" || len(wrapped) == 0 {
		return common.ErrInvalidInput
	}

	grantee, err := s.repomanager.Accounts(s.db).GetByUserName(ctx, granteeUserName)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		s.logger.Error(ctx, "grantee lookup failed", "error", err)
		return common.ErrStorageFailure
	}

	size, err := cryptox.WrappedVaultKeySize(grantee.KeyAlgorithm, grantee.PublicKey)
	if err != nil {
		s.logger.Error(ctx, "grantee public key unusable", "grantee_id", grantee.ID, "error", err)
		return common.ErrStorageFailure
	}
	if len(wrapped) != size {
		return common.ErrInvalidInput
	}

	grant := &models.VaultKeyGrant{
		VaultID:          vaultID,
		GranteeAccountID: grantee.ID,
		GranterAccountID: granterID,
		WrappedVaultKey:  wrapped,
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.VaultKeys(tx)

		holds, err := repo.Holds(ctx, vaultID, granterID)
		if err != nil {
			return err
		}
		if !holds {
			exists, err := repo.Exists(ctx, vaultID)
			if err != nil {
				return err
			}
			if exists || grantee.ID != granterID {
				return common.ErrForbidden
			}
		}

		return repo.Upsert(ctx, grant)
	})

	switch {
	case err == nil:
	case errors.Is(err, common.ErrForbidden):
		s.logger.Info(ctx, "vault key grant refused", "vault_id", vaultID, "granter_id", granterID, "grantee_id", grantee.ID)
		return common.ErrForbidden
	default:
		s.logger.Error(ctx, "grant insert failed", "error", err)
		return common.ErrStorageFailure
	}

	s.logger.Info(ctx, "vault key granted", "vault_id", vaultID, "granter_id", granterID, "grantee_id", grantee.ID)
	return nil
}

// ListGrants returns the grants addressed to accountID.
func (s *VaultKeyService) ListGrants(ctx context.Context, accountID string) ([]*models.VaultKeyGrant, error) {
	grants, err := s.repomanager.VaultKeys(s.db).ListForGrantee(ctx, accountID)
	if err != nil {
		s.logger.Error(ctx, "grant list failed", "error", err)
		return nil, common.ErrStorageFailure
	}
	return grants, nil
}
