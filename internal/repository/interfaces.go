package repository

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/paltabank/bank-api/internal/models"
)

var (
	// ErrNotFound is returned when the referenced row does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique constraint rejects a write.
	ErrDuplicate = errors.New("duplicate record")
	// ErrConflict is returned when a guarded write affects zero rows, i.e.
	// the row changed under us since it was read in the same transaction.
	ErrConflict = errors.New("write conflict")
)

type Users interface {
	// CreateWithBalance inserts the user row and its zero balance as one
	// atomic unit. ErrDuplicate when the email is already registered.
	CreateWithBalance(ctx context.Context, u models.User) (models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	List(ctx context.Context) ([]models.User, error)
}

// BalanceTx is the view of the balance store inside one database
// transaction. Reads and conditional writes made through it either all
// commit or all roll back.
type BalanceTx interface {
	Get(ctx context.Context, userID string) (models.Balance, error)
	// CompareAndSet moves the balance from expected to next only if the
	// stored amount still equals expected. ErrConflict otherwise.
	CompareAndSet(ctx context.Context, userID string, expected, next decimal.Decimal) error
}

type Balances interface {
	Get(ctx context.Context, userID string) (models.Balance, error)
	// InTx runs fn inside a single serializable transaction; returning an
	// error rolls everything back.
	InTx(ctx context.Context, fn func(BalanceTx) error) error
}

type RefreshTokens interface {
	Create(ctx context.Context, t models.RefreshToken) error
	// Rotate overwrites the live row matching presented with a fresh token
	// value and expiry, returning the rotated row. Unknown, already
	// rotated and expired tokens all miss the row: ErrNotFound.
	Rotate(ctx context.Context, presented, fresh string, expiresAt time.Time) (models.RefreshToken, error)
}

type AuditLogs interface {
	Create(ctx context.Context, l models.AuditLog) error
}
