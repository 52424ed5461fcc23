package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/paltabank/bank-api/internal/api/httpx"
	"github.com/paltabank/bank-api/internal/api/validate"
	"github.com/paltabank/bank-api/internal/middleware"
	"github.com/paltabank/bank-api/internal/services"
)

// TransactionsHandler exposes the balance operations. The authenticated
// user is always the account being debited or deposited into; only transfer
// names a second party.
type TransactionsHandler struct {
	txns *services.TransactionService
}

func NewTransactionsHandler(txns *services.TransactionService) *TransactionsHandler {
	return &TransactionsHandler{txns: txns}
}

type amountReq struct {
	Amount decimal.Decimal `json:"amount"`
}

type transferReq struct {
	ToUserID string          `json:"to_user_id"`
	Amount   decimal.Decimal `json:"amount"`
}

func (h *TransactionsHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	uid, req, ok := h.amountRequest(w, r)
	if !ok {
		return
	}
	if err := h.txns.Deposit(r.Context(), uid, req.Amount); err != nil {
		httpx.WriteFailure(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, httpx.Success{Message: "Deposit successful"})
}

func (h *TransactionsHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	uid, req, ok := h.amountRequest(w, r)
	if !ok {
		return
	}
	if err := h.txns.Withdraw(r.Context(), uid, req.Amount); err != nil {
		httpx.WriteFailure(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, httpx.Success{Message: "Withdrawal successful"})
}

func (h *TransactionsHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	uid, ok := middleware.UserID(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token", nil)
		return
	}
	var req transferReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid request body", nil)
		return
	}
	if err := validate.Collect(
		validate.Required("to_user_id", req.ToUserID),
		validate.PositiveAmount("amount", req.Amount),
	); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", err.Error(), nil)
		return
	}
	if err := h.txns.Transfer(r.Context(), uid, req.ToUserID, req.Amount); err != nil {
		httpx.WriteFailure(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, httpx.Success{Message: "Transfer successful"})
}

func (h *TransactionsHandler) amountRequest(w http.ResponseWriter, r *http.Request) (string, amountReq, bool) {
	uid, ok := middleware.UserID(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token", nil)
		return "", amountReq{}, false
	}
	var req amountReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid request body", nil)
		return "", amountReq{}, false
	}
	if err := validate.Collect(validate.PositiveAmount("amount", req.Amount)); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", err.Error(), nil)
		return "", amountReq{}, false
	}
	return uid, req, true
}
