package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/paltabank/bank-api/internal/api/httpx"
	"github.com/paltabank/bank-api/internal/api/validate"
	"github.com/paltabank/bank-api/internal/models"
	"github.com/paltabank/bank-api/internal/services"
)

const refreshCookieName = "refreshToken"

type AuthHandler struct {
	accounts     *services.AccountService
	secureCookie bool
}

func NewAuthHandler(accounts *services.AccountService, env string) *AuthHandler {
	return &AuthHandler{accounts: accounts, secureCookie: env == "prod"}
}

type credentialsReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResp struct {
	Token        string      `json:"token"`
	ExpiresAt    time.Time   `json:"expires_at"`
	RefreshToken string      `json:"refresh_token"`
	User         models.User `json:"user"`
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req credentialsReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid request body", nil)
		return
	}
	if err := validate.Collect(
		validate.Required("email", req.Email),
		validate.Email("email", req.Email),
		validate.Required("password", req.Password),
		validate.MinLen("password", req.Password, 8),
	); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", err.Error(), nil)
		return
	}

	res, err := h.accounts.Signup(r.Context(), req.Email, req.Password)
	if err != nil {
		httpx.WriteFailure(w, err)
		return
	}
	h.writeAuth(w, http.StatusCreated, res)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid request body", nil)
		return
	}
	res, err := h.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		httpx.WriteFailure(w, err)
		return
	}
	h.writeAuth(w, http.StatusOK, res)
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

// Refresh reads the token from the HTTP-only cookie, falling back to the
// body for clients that cannot carry cookies.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	presented := ""
	if c, err := r.Cookie(refreshCookieName); err == nil {
		presented = c.Value
	}
	if presented == "" {
		var req refreshReq
		_ = json.NewDecoder(r.Body).Decode(&req)
		presented = req.RefreshToken
	}
	if presented == "" {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "missing refresh token", nil)
		return
	}

	res, err := h.accounts.Refresh(r.Context(), presented)
	if err != nil {
		httpx.WriteFailure(w, err)
		return
	}
	h.writeAuth(w, http.StatusOK, res)
}

func (h *AuthHandler) writeAuth(w http.ResponseWriter, status int, res services.AuthResult) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    res.RefreshToken,
		Path:     "/api/v1/auth",
		Expires:  res.RefreshExpiresAt,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteStrictMode,
	})
	httpx.WriteJSON(w, status, authResp{
		Token:        res.AccessToken,
		ExpiresAt:    res.AccessExpiresAt,
		RefreshToken: res.RefreshToken,
		User:         res.User,
	})
}
