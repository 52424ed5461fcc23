package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/paltabank/bank-api/internal/models"
	repo "github.com/paltabank/bank-api/internal/repository"
)

type refreshTokensRepo struct{ pool *pgxpool.Pool }

func (r *refreshTokensRepo) Create(ctx context.Context, t models.RefreshToken) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO refresh_tokens(id, user_id, token, expires_at) VALUES($1,$2,$3,$4)`,
		t.ID, t.UserID, t.Token, t.ExpiresAt,
	)
	return err
}

// Rotate is the whole single-use protocol: one UPDATE keyed on the exact
// presented value. A token that was already rotated away, never existed, or
// sits past its expiry misses the predicate the same way, so the caller
// cannot distinguish the three.
func (r *refreshTokensRepo) Rotate(ctx context.Context, presented, fresh string, expiresAt time.Time) (models.RefreshToken, error) {
	var t models.RefreshToken
	err := r.pool.QueryRow(ctx,
		`UPDATE refresh_tokens
		    SET token = $2,
		        expires_at = $3
		  WHERE token = $1
		    AND expires_at >= now()
		 RETURNING id, user_id, token, expires_at`,
		presented, fresh, expiresAt,
	).Scan(&t.ID, &t.UserID, &t.Token, &t.ExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.RefreshToken{}, repo.ErrNotFound
	}
	return t, err
}
