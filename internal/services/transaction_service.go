package services

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/paltabank/bank-api/internal/apperr"
	"github.com/paltabank/bank-api/internal/metrics"
	"github.com/paltabank/bank-api/internal/models"
	repo "github.com/paltabank/bank-api/internal/repository"
	"github.com/paltabank/bank-api/internal/worker"
)

// TransactionService applies deposit, withdraw and transfer against the
// balance store. Every operation re-reads the balance inside the same
// database transaction it writes in and pushes the guarded update through
// CompareAndSet, so a concurrent mutation surfaces as a conflict instead of
// a lost update. The service itself holds no locks.
type TransactionService struct {
	bal repo.Balances
	log repo.AuditLogs
	wp  *worker.Pool
}

func NewTransactionService(bal repo.Balances, log repo.AuditLogs, wp *worker.Pool) *TransactionService {
	return &TransactionService{bal: bal, log: log, wp: wp}
}

func (s *TransactionService) Deposit(ctx context.Context, userID string, amount decimal.Decimal) error {
	err := s.bal.InTx(ctx, func(tx repo.BalanceTx) error {
		b, err := tx.Get(ctx, userID)
		if errors.Is(err, repo.ErrNotFound) {
			return apperr.NotFound("Balance for user not found")
		}
		if err != nil {
			return err
		}
		if amount.Sign() <= 0 {
			return apperr.BadRequest("Amount must be greater than zero")
		}
		if err := tx.CompareAndSet(ctx, userID, b.Amount, b.Amount.Add(amount)); err != nil {
			if errors.Is(err, repo.ErrConflict) {
				return apperr.BadRequest("Failed to complete the deposit")
			}
			return err
		}
		return nil
	})
	return s.finish("deposit", userID, amount, err)
}

func (s *TransactionService) Withdraw(ctx context.Context, userID string, amount decimal.Decimal) error {
	err := s.bal.InTx(ctx, func(tx repo.BalanceTx) error {
		b, err := tx.Get(ctx, userID)
		if errors.Is(err, repo.ErrNotFound) {
			return apperr.NotFound("Balance for user not found")
		}
		if err != nil {
			return err
		}
		if amount.Sign() <= 0 {
			return apperr.BadRequest("Amount must be greater than zero")
		}
		if b.Amount.LessThan(amount) {
			return apperr.BadRequest("Not enough funds")
		}
		if err := tx.CompareAndSet(ctx, userID, b.Amount, b.Amount.Sub(amount)); err != nil {
			if errors.Is(err, repo.ErrConflict) {
				return apperr.BadRequest("Failed to complete the withdrawal")
			}
			return err
		}
		return nil
	})
	return s.finish("withdraw", userID, amount, err)
}

// Transfer debits the sender and credits the recipient inside one database
// transaction; a failed guard on either side rolls back both writes.
func (s *TransactionService) Transfer(ctx context.Context, fromUserID, toUserID string, amount decimal.Decimal) error {
	if fromUserID == toUserID {
		metrics.TransactionsFailed.WithLabelValues("transfer").Inc()
		return apperr.BadRequest("Cannot transfer funds to the same user")
	}
	err := s.bal.InTx(ctx, func(tx repo.BalanceTx) error {
		from, err := tx.Get(ctx, fromUserID)
		if errors.Is(err, repo.ErrNotFound) {
			return apperr.NotFound("Balance for sender user not found")
		}
		if err != nil {
			return err
		}
		to, err := tx.Get(ctx, toUserID)
		if errors.Is(err, repo.ErrNotFound) {
			return apperr.NotFound("Balance for recipient user not found")
		}
		if err != nil {
			return err
		}
		if from.Amount.LessThan(amount) {
			return apperr.BadRequest("Not enough funds for transfer")
		}
		if err := tx.CompareAndSet(ctx, fromUserID, from.Amount, from.Amount.Sub(amount)); err != nil {
			if errors.Is(err, repo.ErrConflict) {
				return apperr.BadRequest("Failed to complete the transfer")
			}
			return err
		}
		if err := tx.CompareAndSet(ctx, toUserID, to.Amount, to.Amount.Add(amount)); err != nil {
			if errors.Is(err, repo.ErrConflict) {
				return apperr.BadRequest("Failed to complete the transfer")
			}
			return err
		}
		return nil
	})
	return s.finish("transfer", fromUserID, amount, err)
}

func (s *TransactionService) finish(op, userID string, amount decimal.Decimal, err error) error {
	if err != nil {
		metrics.TransactionsFailed.WithLabelValues(op).Inc()
		return err
	}
	metrics.TransactionsTotal.WithLabelValues(op).Inc()
	s.audit(op, userID, amount)
	return nil
}

// audit writes the trail off the request path; a lost audit row never fails
// an applied operation.
func (s *TransactionService) audit(action, userID string, amount decimal.Decimal) {
	entityID := userID
	s.wp.Submit(func() {
		_ = s.log.Create(context.Background(), models.AuditLog{
			EntityType: "balance",
			EntityID:   &entityID,
			Action:     action,
			Details:    map[string]any{"amount": amount.String()},
		})
	})
}
