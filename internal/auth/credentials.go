package auth

import (
	"context"

	"github.com/paltabank/bank-api/internal/models"
	repo "github.com/paltabank/bank-api/internal/repository"
)

// CredentialStore owns identity lookup and password checking so the
// services never touch raw hashes.
type CredentialStore struct {
	users repo.Users
}

func NewCredentialStore(users repo.Users) *CredentialStore {
	return &CredentialStore{users: users}
}

func (s *CredentialStore) FindByEmail(ctx context.Context, email string) (models.User, error) {
	return s.users.GetByEmail(ctx, email)
}

func (s *CredentialStore) CheckPassword(u models.User, password string) bool {
	return VerifyPassword(password, u.PasswordHash) == nil
}

// Create registers the account with its zero balance in one unit.
func (s *CredentialStore) Create(ctx context.Context, email, password string) (models.User, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return models.User{}, err
	}
	u := models.User{Email: email, PasswordHash: hash, Role: models.RoleUser}
	if err := u.Validate(); err != nil {
		return models.User{}, err
	}
	return s.users.CreateWithBalance(ctx, u)
}

func (s *CredentialStore) GetRoles(ctx context.Context, u models.User) ([]string, error) {
	if u.Role == "" {
		return []string{models.RoleUser}, nil
	}
	return []string{u.Role}, nil
}
