package postgres

import (
	"github.com/jackc/pgx/v5/pgxpool"

	repo "github.com/paltabank/bank-api/internal/repository"
)

type Repositories struct {
	Users         repo.Users
	Balances      repo.Balances
	RefreshTokens repo.RefreshTokens
	AuditLogs     repo.AuditLogs
}

func NewRepositories(pool *pgxpool.Pool) Repositories {
	return Repositories{
		Users:         &usersRepo{pool},
		Balances:      &balancesRepo{pool},
		RefreshTokens: &refreshTokensRepo{pool},
		AuditLogs:     &auditLogsRepo{pool},
	}
}
