package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/9-8-7-6/vito/internal/httputil"
	"github.com/9-8-7-6/vito/internal/ledger"
	"github.com/9-8-7-6/vito/internal/middleware"
	"github.com/9-8-7-6/vito/internal/models"
	"github.com/9-8-7-6/vito/internal/store"
)

type Handler struct {
	svc       *ledger.Service
	store     store.LedgerStore
	jwtSecret string
	log       *zap.Logger
}

func New(svc *ledger.Service, st store.LedgerStore, jwtSecret string, log *zap.Logger) *Handler {
	return &Handler{svc: svc, store: st, jwtSecret: jwtSecret, log: log}
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

type CreateTransactionRequest struct {
	Type        models.TransactionType `json:"type"`
	Amount      decimal.Decimal        `json:"amount"`
	Asset       string                 `json:"asset,omitempty"`
	FromAccount string                 `json:"from_account,omitempty"`
	ToAccount   string                 `json:"to_account,omitempty"`
	Note        string                 `json:"note,omitempty"`
}

type UpdateTransactionRequest struct {
	Type        *models.TransactionType `json:"type,omitempty"`
	Amount      *decimal.Decimal        `json:"amount,omitempty"`
	Asset       *string                 `json:"asset,omitempty"`
	FromAccount *string                 `json:"from_account,omitempty"`
	ToAccount   *string                 `json:"to_account,omitempty"`
	Note        *string                 `json:"note,omitempty"`
}

type CreateAssetRequest struct {
	Account   string          `json:"account"`
	AssetType string          `json:"asset_type"`
	Balance   decimal.Decimal `json:"balance"`
}

type UpdateAssetRequest struct {
	Balance decimal.Decimal `json:"balance"`
}

// writeLedgerError maps the ledger error taxonomy onto HTTP status codes.
func (h *Handler) writeLedgerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledger.ErrValidation):
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ledger.ErrInsufficientBalance):
		httputil.WriteError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, ledger.ErrNotFound):
		httputil.WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ledger.ErrConstraint):
		httputil.WriteError(w, http.StatusConflict, err.Error())
	default:
		h.log.Error("ledger operation failed", zap.Error(err))
		httputil.WriteError(w, http.StatusInternalServerError, "internal error")
	}
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Email == "" || req.Password == "" {
		httputil.WriteError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	user, err := h.store.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		httputil.WriteError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		httputil.WriteError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	claims := jwt.MapClaims{
		"sub": user.ID,
		"exp": time.Now().Add(24 * time.Hour).Unix(),
		"iat": time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(h.jwtSecret))
	if err != nil {
		h.log.Error("failed to sign jwt", zap.Error(err))
		httputil.WriteError(w, http.StatusInternalServerError, "failed to create token")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, LoginResponse{Token: signed})
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		httputil.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	user, err := h.store.GetUser(r.Context(), userID)
	if err != nil {
		httputil.WriteError(w, http.StatusNotFound, "user not found")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, user)
}

func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.svc.ListAccounts(r.Context())
	if err != nil {
		h.writeLedgerError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, accounts)
}

func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	account, err := h.svc.GetAccount(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		h.writeLedgerError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, account)
}

func (h *Handler) ListAssets(w http.ResponseWriter, r *http.Request) {
	assets, err := h.svc.ListAssets(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		h.writeLedgerError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, assets)
}

func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	records, err := h.svc.ListTransactions(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		h.writeLedgerError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, records)
}

func (h *Handler) CreateAsset(w http.ResponseWriter, r *http.Request) {
	var req CreateAssetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	asset, err := h.svc.CreateAsset(r.Context(), req.Account, req.AssetType, req.Balance)
	if err != nil {
		h.writeLedgerError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, asset)
}

func (h *Handler) UpdateAsset(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid asset id")
		return
	}
	var req UpdateAssetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	asset, err := h.svc.UpdateAsset(r.Context(), id, req.Balance)
	if err != nil {
		h.writeLedgerError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, asset)
}

func (h *Handler) DeleteAsset(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid asset id")
		return
	}
	if err := h.svc.DeleteAsset(r.Context(), id); err != nil {
		h.writeLedgerError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req CreateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	record, err := h.svc.CreateTransaction(r.Context(), ledger.CreateTransactionInput{
		Type:        req.Type,
		Amount:      req.Amount,
		AssetType:   req.Asset,
		FromAccount: req.FromAccount,
		ToAccount:   req.ToAccount,
		Note:        req.Note,
	})
	if err != nil {
		h.writeLedgerError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, record)
}

func (h *Handler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid transaction id")
		return
	}
	record, err := h.svc.GetTransaction(r.Context(), id)
	if err != nil {
		h.writeLedgerError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, record)
}

func (h *Handler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid transaction id")
		return
	}
	var req UpdateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	record, err := h.svc.UpdateTransaction(r.Context(), id, ledger.TransactionPatch{
		Type:        req.Type,
		Amount:      req.Amount,
		AssetType:   req.Asset,
		FromAccount: req.FromAccount,
		ToAccount:   req.ToAccount,
		Note:        req.Note,
	})
	if err != nil {
		h.writeLedgerError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, record)
}

func (h *Handler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid transaction id")
		return
	}
	if err := h.svc.DeleteTransaction(r.Context(), id); err != nil {
		h.writeLedgerError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseID(s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
