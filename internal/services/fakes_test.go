package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/paltabank/bank-api/internal/models"
	repo "github.com/paltabank/bank-api/internal/repository"
)

// fakeBalances keeps balances in a map and mimics the transactional
// semantics of the Postgres store: work inside InTx happens on a staged
// copy that only replaces the real rows when fn succeeds.
type fakeBalances struct {
	mu         sync.Mutex
	rows       map[string]models.Balance
	conflictOn map[string]int // remaining forced CAS failures per user
}

func newFakeBalances() *fakeBalances {
	return &fakeBalances{rows: map[string]models.Balance{}, conflictOn: map[string]int{}}
}

func (f *fakeBalances) seed(userID string, amount string) {
	f.rows[userID] = models.Balance{UserID: userID, Amount: decimal.RequireFromString(amount)}
}

func (f *fakeBalances) amount(userID string) decimal.Decimal {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rows[userID].Amount
}

func (f *fakeBalances) Get(_ context.Context, userID string) (models.Balance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.rows[userID]
	if !ok {
		return models.Balance{}, repo.ErrNotFound
	}
	return b, nil
}

func (f *fakeBalances) InTx(_ context.Context, fn func(repo.BalanceTx) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	staged := make(map[string]models.Balance, len(f.rows))
	for k, v := range f.rows {
		staged[k] = v
	}
	if err := fn(&fakeBalanceTx{f: f, staged: staged}); err != nil {
		return err
	}
	f.rows = staged
	return nil
}

type fakeBalanceTx struct {
	f      *fakeBalances
	staged map[string]models.Balance
}

func (t *fakeBalanceTx) Get(_ context.Context, userID string) (models.Balance, error) {
	b, ok := t.staged[userID]
	if !ok {
		return models.Balance{}, repo.ErrNotFound
	}
	return b, nil
}

func (t *fakeBalanceTx) CompareAndSet(_ context.Context, userID string, expected, next decimal.Decimal) error {
	if n := t.f.conflictOn[userID]; n > 0 {
		t.f.conflictOn[userID] = n - 1
		return repo.ErrConflict
	}
	b, ok := t.staged[userID]
	if !ok || !b.Amount.Equal(expected) {
		return repo.ErrConflict
	}
	b.Amount = next
	b.UpdatedAt = time.Now()
	t.staged[userID] = b
	return nil
}

type fakeAuditLogs struct {
	mu      sync.Mutex
	entries []models.AuditLog
}

func (f *fakeAuditLogs) Create(_ context.Context, l models.AuditLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, l)
	return nil
}

type fakeUsers struct {
	mu      sync.Mutex
	byID    map[string]models.User
	byEmail map[string]models.User
	bal     *fakeBalances
}

func newFakeUsers(bal *fakeBalances) *fakeUsers {
	return &fakeUsers{byID: map[string]models.User{}, byEmail: map[string]models.User{}, bal: bal}
}

func (f *fakeUsers) CreateWithBalance(_ context.Context, u models.User) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byEmail[u.Email]; ok {
		return models.User{}, repo.ErrDuplicate
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	f.byID[u.ID] = u
	f.byEmail[u.Email] = u
	if f.bal != nil {
		f.bal.seed(u.ID, "0")
	}
	return u, nil
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return models.User{}, repo.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byEmail[email]
	if !ok {
		return models.User{}, repo.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) ExistsByEmail(_ context.Context, email string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.byEmail[email]
	return ok, nil
}

func (f *fakeUsers) List(_ context.Context) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.User, 0, len(f.byID))
	for _, u := range f.byID {
		out = append(out, u)
	}
	return out, nil
}

func (f *fakeUsers) delete(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.byID[id]; ok {
		delete(f.byEmail, u.Email)
		delete(f.byID, id)
	}
}

type fakeRefreshTokens struct {
	mu   sync.Mutex
	rows map[string]models.RefreshToken // keyed by token value
}

func newFakeRefreshTokens() *fakeRefreshTokens {
	return &fakeRefreshTokens{rows: map[string]models.RefreshToken{}}
}

func (f *fakeRefreshTokens) Create(_ context.Context, t models.RefreshToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t.ID == "" {
		t.ID = "rt-" + t.Token[:8]
	}
	f.rows[t.Token] = t
	return nil
}

func (f *fakeRefreshTokens) Rotate(_ context.Context, presented, fresh string, expiresAt time.Time) (models.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[presented]
	if !ok || row.Expired(time.Now()) {
		return models.RefreshToken{}, repo.ErrNotFound
	}
	delete(f.rows, presented)
	row.Token = fresh
	row.ExpiresAt = expiresAt
	f.rows[fresh] = row
	return row, nil
}

func (f *fakeRefreshTokens) expire(token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if row, ok := f.rows[token]; ok {
		row.ExpiresAt = time.Now().Add(-time.Minute)
		f.rows[token] = row
	}
}
