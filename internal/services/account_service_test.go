package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paltabank/bank-api/internal/apperr"
	"github.com/paltabank/bank-api/internal/auth"
)

type accountFixture struct {
	svc     *AccountService
	users   *fakeUsers
	refresh *fakeRefreshTokens
	bal     *fakeBalances
	tokens  *auth.TokenProvider
}

func newAccountFixture(t *testing.T) *accountFixture {
	t.Helper()
	bal := newFakeBalances()
	users := newFakeUsers(bal)
	refresh := newFakeRefreshTokens()
	tokens := auth.NewTokenProvider("test-secret", "bank-api-test", "bank-api-clients", 15*time.Minute, 24*time.Hour)
	creds := auth.NewCredentialStore(users)
	return &accountFixture{
		svc:     NewAccountService(creds, tokens, refresh, users, bal),
		users:   users,
		refresh: refresh,
		bal:     bal,
		tokens:  tokens,
	}
}

func TestSignup(t *testing.T) {
	ctx := context.Background()

	t.Run("creates account with zero balance and issues both tokens", func(t *testing.T) {
		fx := newAccountFixture(t)

		res, err := fx.svc.Signup(ctx, "alice@example.com", "s3cret-pass")
		require.NoError(t, err)

		assert.Equal(t, "alice@example.com", res.User.Email)
		assert.NotEmpty(t, res.RefreshToken)

		claims, err := fx.tokens.VerifyAccessToken(res.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, res.User.ID, claims.Subject)
		assert.Equal(t, "alice@example.com", claims.Email)
		assert.Contains(t, claims.Roles, "user")

		b, err := fx.bal.Get(ctx, res.User.ID)
		require.NoError(t, err)
		assert.True(t, b.Amount.IsZero())
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		fx := newAccountFixture(t)

		_, err := fx.svc.Signup(ctx, "alice@example.com", "s3cret-pass")
		require.NoError(t, err)

		_, err = fx.svc.Signup(ctx, "alice@example.com", "other-pass")
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindConflict))
		assert.EqualError(t, err, "Email already exist")
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown email and wrong password fail identically", func(t *testing.T) {
		fx := newAccountFixture(t)
		_, err := fx.svc.Signup(ctx, "alice@example.com", "s3cret-pass")
		require.NoError(t, err)

		_, errUnknown := fx.svc.Login(ctx, "nobody@example.com", "whatever")
		_, errWrongPw := fx.svc.Login(ctx, "alice@example.com", "wrong-pass")

		require.Error(t, errUnknown)
		require.Error(t, errWrongPw)
		assert.True(t, apperr.IsKind(errUnknown, apperr.KindUnauthorized))
		assert.True(t, apperr.IsKind(errWrongPw, apperr.KindUnauthorized))
		assert.Equal(t, errUnknown.Error(), errWrongPw.Error())
		assert.EqualError(t, errUnknown, "Invalid email or password")
	})

	t.Run("valid credentials issue tokens", func(t *testing.T) {
		fx := newAccountFixture(t)
		signedUp, err := fx.svc.Signup(ctx, "alice@example.com", "s3cret-pass")
		require.NoError(t, err)

		res, err := fx.svc.Login(ctx, "alice@example.com", "s3cret-pass")
		require.NoError(t, err)
		assert.Equal(t, signedUp.User.ID, res.User.ID)
		assert.NotEmpty(t, res.RefreshToken)
		// a login is a new session, not a reuse of the signup session
		assert.NotEqual(t, signedUp.RefreshToken, res.RefreshToken)

		_, err = fx.tokens.VerifyAccessToken(res.AccessToken)
		assert.NoError(t, err)
	})
}

func TestRefresh(t *testing.T) {
	ctx := context.Background()

	t.Run("rotates the token in place", func(t *testing.T) {
		fx := newAccountFixture(t)
		signedUp, err := fx.svc.Signup(ctx, "alice@example.com", "s3cret-pass")
		require.NoError(t, err)

		res, err := fx.svc.Refresh(ctx, signedUp.RefreshToken)
		require.NoError(t, err)
		assert.NotEqual(t, signedUp.RefreshToken, res.RefreshToken)
		assert.Equal(t, signedUp.User.ID, res.User.ID)

		_, err = fx.tokens.VerifyAccessToken(res.AccessToken)
		assert.NoError(t, err)
	})

	t.Run("a spent token cannot be used twice", func(t *testing.T) {
		fx := newAccountFixture(t)
		signedUp, err := fx.svc.Signup(ctx, "alice@example.com", "s3cret-pass")
		require.NoError(t, err)

		first, err := fx.svc.Refresh(ctx, signedUp.RefreshToken)
		require.NoError(t, err)

		_, err = fx.svc.Refresh(ctx, signedUp.RefreshToken)
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindUnauthorized))
		assert.EqualError(t, err, "Refresh token has expired.")

		// the rotated-in value still works
		_, err = fx.svc.Refresh(ctx, first.RefreshToken)
		assert.NoError(t, err)
	})

	t.Run("expired token fails like an unknown one", func(t *testing.T) {
		fx := newAccountFixture(t)
		signedUp, err := fx.svc.Signup(ctx, "alice@example.com", "s3cret-pass")
		require.NoError(t, err)
		fx.refresh.expire(signedUp.RefreshToken)

		_, errExpired := fx.svc.Refresh(ctx, signedUp.RefreshToken)
		_, errUnknown := fx.svc.Refresh(ctx, "never-issued")

		require.Error(t, errExpired)
		require.Error(t, errUnknown)
		assert.Equal(t, errUnknown.Error(), errExpired.Error())
		assert.True(t, apperr.IsKind(errExpired, apperr.KindUnauthorized))
	})

	t.Run("token of a deleted account is unusable", func(t *testing.T) {
		fx := newAccountFixture(t)
		signedUp, err := fx.svc.Signup(ctx, "alice@example.com", "s3cret-pass")
		require.NoError(t, err)
		fx.users.delete(signedUp.User.ID)

		_, err = fx.svc.Refresh(ctx, signedUp.RefreshToken)
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindUnauthorized))
	})
}

func TestAccountQueries(t *testing.T) {
	ctx := context.Background()

	t.Run("get account returns user and balance", func(t *testing.T) {
		fx := newAccountFixture(t)
		signedUp, err := fx.svc.Signup(ctx, "alice@example.com", "s3cret-pass")
		require.NoError(t, err)

		u, b, err := fx.svc.GetAccount(ctx, signedUp.User.ID)
		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", u.Email)
		assert.True(t, b.Amount.IsZero())
	})

	t.Run("unknown account is not found", func(t *testing.T) {
		fx := newAccountFixture(t)
		_, _, err := fx.svc.GetAccount(ctx, "missing")
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
		assert.EqualError(t, err, "User not found")
	})

	t.Run("list returns all accounts", func(t *testing.T) {
		fx := newAccountFixture(t)
		_, err := fx.svc.Signup(ctx, "a@example.com", "s3cret-pass")
		require.NoError(t, err)
		_, err = fx.svc.Signup(ctx, "b@example.com", "s3cret-pass")
		require.NoError(t, err)

		users, err := fx.svc.ListAccounts(ctx)
		require.NoError(t, err)
		assert.Len(t, users, 2)
	})
}
