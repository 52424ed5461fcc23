package services

import (
	"context"
	"errors"

	"github.com/paltabank/bank-api/internal/apperr"
	"github.com/paltabank/bank-api/internal/models"
	repo "github.com/paltabank/bank-api/internal/repository"
)

type BalanceService struct {
	r repo.Balances
}

func NewBalanceService(r repo.Balances) *BalanceService { return &BalanceService{r: r} }

func (s *BalanceService) Current(ctx context.Context, userID string) (models.Balance, error) {
	b, err := s.r.Get(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return models.Balance{}, apperr.NotFound("Balance for user not found")
	}
	return b, err
}
