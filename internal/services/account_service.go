package services

import (
	"context"
	"errors"
	"time"

	"github.com/paltabank/bank-api/internal/apperr"
	"github.com/paltabank/bank-api/internal/metrics"
	"github.com/paltabank/bank-api/internal/models"
	repo "github.com/paltabank/bank-api/internal/repository"
)

// CredentialProvider hides identity storage and password checking from the
// account flows. Raw passwords stop here.
type CredentialProvider interface {
	FindByEmail(ctx context.Context, email string) (models.User, error)
	CheckPassword(u models.User, password string) bool
	Create(ctx context.Context, email, password string) (models.User, error)
	GetRoles(ctx context.Context, u models.User) ([]string, error)
}

// TokenIssuer mints the signed access token and the opaque refresh value.
type TokenIssuer interface {
	CreateAccessToken(u models.User, roles []string) (string, time.Time, error)
	GenerateRefreshToken() (string, error)
	RefreshTokenTTL() time.Duration
}

type AuthResult struct {
	User             models.User
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}

type AccountService struct {
	creds   CredentialProvider
	tokens  TokenIssuer
	refresh repo.RefreshTokens
	users   repo.Users
	bal     repo.Balances
}

func NewAccountService(creds CredentialProvider, tokens TokenIssuer, refresh repo.RefreshTokens, users repo.Users, bal repo.Balances) *AccountService {
	return &AccountService{creds: creds, tokens: tokens, refresh: refresh, users: users, bal: bal}
}

func (s *AccountService) Signup(ctx context.Context, email, password string) (AuthResult, error) {
	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return AuthResult{}, err
	}
	if exists {
		return AuthResult{}, apperr.Conflict("Email already exist")
	}

	u, err := s.creds.Create(ctx, email, password)
	if errors.Is(err, repo.ErrDuplicate) {
		// Lost the race against a concurrent signup with the same email.
		return AuthResult{}, apperr.Conflict("Email already exist")
	}
	if err != nil {
		return AuthResult{}, apperr.BadRequest(err.Error())
	}
	return s.issueTokens(ctx, u)
}

// Login fails the same way for an unknown email and a wrong password, so the
// response never reveals which half was wrong.
func (s *AccountService) Login(ctx context.Context, email, password string) (AuthResult, error) {
	u, err := s.creds.FindByEmail(ctx, email)
	if errors.Is(err, repo.ErrNotFound) {
		metrics.LoginsTotal.WithLabelValues("rejected").Inc()
		return AuthResult{}, apperr.Unauthorized("Invalid email or password")
	}
	if err != nil {
		return AuthResult{}, err
	}
	if !s.creds.CheckPassword(u, password) {
		metrics.LoginsTotal.WithLabelValues("rejected").Inc()
		return AuthResult{}, apperr.Unauthorized("Invalid email or password")
	}
	metrics.LoginsTotal.WithLabelValues("ok").Inc()
	return s.issueTokens(ctx, u)
}

// Refresh rotates the presented token in place and issues a fresh access
// token for the account's current roles. The rotation is a single guarded
// update, so a token can be spent exactly once.
func (s *AccountService) Refresh(ctx context.Context, presented string) (AuthResult, error) {
	fresh, err := s.tokens.GenerateRefreshToken()
	if err != nil {
		return AuthResult{}, err
	}
	row, err := s.refresh.Rotate(ctx, presented, fresh, time.Now().Add(s.tokens.RefreshTokenTTL()))
	if errors.Is(err, repo.ErrNotFound) {
		metrics.TokenRefreshesTotal.WithLabelValues("rejected").Inc()
		return AuthResult{}, apperr.Unauthorized("Refresh token has expired.")
	}
	if err != nil {
		return AuthResult{}, err
	}

	u, err := s.users.GetByID(ctx, row.UserID)
	if errors.Is(err, repo.ErrNotFound) {
		// The session row outlived its account; the token is dead with it.
		metrics.TokenRefreshesTotal.WithLabelValues("rejected").Inc()
		return AuthResult{}, apperr.Unauthorized("Refresh token has expired.")
	}
	if err != nil {
		return AuthResult{}, err
	}

	roles, err := s.creds.GetRoles(ctx, u)
	if err != nil {
		return AuthResult{}, err
	}
	access, exp, err := s.tokens.CreateAccessToken(u, roles)
	if err != nil {
		return AuthResult{}, err
	}
	metrics.TokenRefreshesTotal.WithLabelValues("ok").Inc()
	return AuthResult{
		User:             u,
		AccessToken:      access,
		AccessExpiresAt:  exp,
		RefreshToken:     row.Token,
		RefreshExpiresAt: row.ExpiresAt,
	}, nil
}

func (s *AccountService) GetAccount(ctx context.Context, id string) (models.User, models.Balance, error) {
	u, err := s.users.GetByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return models.User{}, models.Balance{}, apperr.NotFound("User not found")
	}
	if err != nil {
		return models.User{}, models.Balance{}, err
	}
	b, err := s.bal.Get(ctx, id)
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return models.User{}, models.Balance{}, err
	}
	return u, b, nil
}

func (s *AccountService) ListAccounts(ctx context.Context) ([]models.User, error) {
	return s.users.List(ctx)
}

func (s *AccountService) issueTokens(ctx context.Context, u models.User) (AuthResult, error) {
	roles, err := s.creds.GetRoles(ctx, u)
	if err != nil {
		return AuthResult{}, err
	}
	access, exp, err := s.tokens.CreateAccessToken(u, roles)
	if err != nil {
		return AuthResult{}, err
	}
	refresh, err := s.tokens.GenerateRefreshToken()
	if err != nil {
		return AuthResult{}, err
	}
	refreshExp := time.Now().Add(s.tokens.RefreshTokenTTL())
	if err := s.refresh.Create(ctx, models.RefreshToken{
		UserID:    u.ID,
		Token:     refresh,
		ExpiresAt: refreshExp,
	}); err != nil {
		return AuthResult{}, err
	}
	return AuthResult{
		User:             u,
		AccessToken:      access,
		AccessExpiresAt:  exp,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExp,
	}, nil
}
