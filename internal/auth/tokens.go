package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/paltabank/bank-api/internal/models"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims is the access-token payload. The refresh token is deliberately not
// a JWT: it is an opaque random value whose only meaning is the store row it
// matches.
type Claims struct {
	Email string   `json:"email"`
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

type TokenProvider struct {
	secret     []byte
	issuer     string
	audience   string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewTokenProvider(secret, issuer, audience string, accessTTL, refreshTTL time.Duration) *TokenProvider {
	return &TokenProvider{
		secret:     []byte(secret),
		issuer:     issuer,
		audience:   audience,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

func (tp *TokenProvider) CreateAccessToken(u models.User, roles []string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(tp.accessTTL)
	claims := Claims{
		Email: u.Email,
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			Issuer:    tp.issuer,
			Audience:  jwt.ClaimStrings{tp.audience},
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tp.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// VerifyAccessToken checks signature, issuer, audience and the time window.
// jwt/v5 applies no leeway unless asked for, so expiry is exact.
func (tp *TokenProvider) VerifyAccessToken(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims,
		func(t *jwt.Token) (any, error) { return tp.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tp.issuer),
		jwt.WithAudience(tp.audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// GenerateRefreshToken returns 256 bits from crypto/rand, base64 encoded.
// Uniqueness is enforced by the store's unique constraint on the value.
func (tp *TokenProvider) GenerateRefreshToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

func (tp *TokenProvider) RefreshTokenTTL() time.Duration { return tp.refreshTTL }
