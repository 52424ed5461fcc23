package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/paltabank/bank-api/internal/api/httpx"
	"github.com/paltabank/bank-api/internal/middleware"
	"github.com/paltabank/bank-api/internal/models"
	"github.com/paltabank/bank-api/internal/services"
	"github.com/shopspring/decimal"
)

type AccountsHandler struct {
	accounts *services.AccountService
	balances *services.BalanceService
}

func NewAccountsHandler(accounts *services.AccountService, balances *services.BalanceService) *AccountsHandler {
	return &AccountsHandler{accounts: accounts, balances: balances}
}

type accountResp struct {
	User    models.User     `json:"user"`
	Balance decimal.Decimal `json:"balance"`
}

// Get serves one account. Callers may read their own; everything else needs
// the admin role.
func (h *AccountsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	claims, ok := middleware.ClaimsFrom(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token", nil)
		return
	}
	if claims.Subject != id && !hasRole(claims.Roles, models.RoleAdmin) {
		httpx.WriteError(w, http.StatusForbidden, "forbidden", "forbidden", nil)
		return
	}

	u, b, err := h.accounts.GetAccount(r.Context(), id)
	if err != nil {
		httpx.WriteFailure(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, accountResp{User: u, Balance: b.Amount})
}

func (h *AccountsHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.accounts.ListAccounts(r.Context())
	if err != nil {
		httpx.WriteFailure(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, users)
}

func (h *AccountsHandler) CurrentBalance(w http.ResponseWriter, r *http.Request) {
	uid, ok := middleware.UserID(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token", nil)
		return
	}
	b, err := h.balances.Current(r.Context(), uid)
	if err != nil {
		httpx.WriteFailure(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, b)
}

func hasRole(roles []string, want string) bool {
	for _, r := range roles {
		if r == want {
			return true
		}
	}
	return false
}
