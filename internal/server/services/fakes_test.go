package services

import (
	"context"
	"database/sql"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/keycustody/internal/common"
	"github.com/dmitrijs2005/keycustody/internal/dbx"
	"github.com/dmitrijs2005/keycustody/internal/server/models"
	"github.com/dmitrijs2005/keycustody/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/keycustody/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/keycustody/internal/server/repositories/vaultkeys"
	_ "modernc.org/sqlite"
)

// memStore is an in-memory stand-in for the three tables. The *sql.DB the
// services get is a bare sqlite handle used only for BEGIN/COMMIT.
type memStore struct {
	mu       sync.Mutex
	seq      int
	accounts map[string]*models.Account
	tokens   map[string]*models.RefreshToken
	grants   map[string]*models.VaultKeyGrant

	lookupErr error
	createErr error
	tokenErr  error
	grantErr  error
}

func newMemStore() *memStore {
	return &memStore{
		accounts: map[string]*models.Account{},
		tokens:   map[string]*models.RefreshToken{},
		grants:   map[string]*models.VaultKeyGrant{},
	}
}

func (m *memStore) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *memStore) Accounts(dbx.DBTX) accounts.Repository { return (*memAccounts)(m) }

func (m *memStore) RefreshTokens(dbx.DBTX) refreshtokens.Repository { return (*memTokens)(m) }

func (m *memStore) VaultKeys(dbx.DBTX) vaultkeys.Repository { return (*memGrants)(m) }

func (m *memStore) account(userName string) *models.Account {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.accounts[userName]
}

func (m *memStore) accountCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.accounts)
}

type memAccounts memStore

func (r *memAccounts) Create(_ context.Context, a *models.Account) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return nil, r.createErr
	}
	if _, ok := r.accounts[a.UserName]; ok {
		return nil, common.ErrUsernameExists
	}
	r.seq++
	a.ID = "acc-" + strconv.Itoa(r.seq)
	a.CreatedAt = time.Now()
	r.accounts[a.UserName] = a
	return a, nil
}

func (r *memAccounts) GetByUserName(_ context.Context, userName string) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.lookupErr != nil {
		return nil, r.lookupErr
	}
	a, ok := r.accounts[userName]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *memAccounts) GetByID(_ context.Context, id string) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.ID == id {
			cp := *a
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

type memTokens memStore

func (r *memTokens) Create(_ context.Context, accountID, token string, validity time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.tokenErr != nil {
		return r.tokenErr
	}
	r.tokens[token] = &models.RefreshToken{AccountID: accountID, Token: token, Expires: time.Now().Add(validity)}
	return nil
}

func (r *memTokens) Consume(_ context.Context, token string) (*models.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.tokenErr != nil {
		return nil, r.tokenErr
	}
	t, ok := r.tokens[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	delete(r.tokens, token)
	return t, nil
}

func (r *memTokens) Delete(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.tokenErr != nil {
		return r.tokenErr
	}
	delete(r.tokens, token)
	return nil
}

type memGrants memStore

func (r *memGrants) Upsert(_ context.Context, g *models.VaultKeyGrant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.grantErr != nil {
		return r.grantErr
	}
	key := g.VaultID + "/" + g.GranteeAccountID
	if prev, ok := r.grants[key]; ok && prev.GranterAccountID != g.GranterAccountID {
		return common.ErrForbidden
	}
	r.seq++
	g.CreatedAt = time.Now().Add(time.Duration(r.seq))
	r.grants[key] = g
	return nil
}

func (r *memGrants) Exists(_ context.Context, vaultID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.grantErr != nil {
		return false, r.grantErr
	}
	for _, g := range r.grants {
		if g.VaultID == vaultID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memGrants) Holds(_ context.Context, vaultID, accountID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.grantErr != nil {
		return false, r.grantErr
	}
	_, ok := r.grants[vaultID+"/"+accountID]
	return ok, nil
}

func (r *memGrants) ListForGrantee(_ context.Context, accountID string) ([]*models.VaultKeyGrant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.grantErr != nil {
		return nil, r.grantErr
	}
	var out []*models.VaultKeyGrant
	for _, g := range r.grants {
		if g.GranteeAccountID == accountID {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}
