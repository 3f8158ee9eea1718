package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/GregMSThompson/wallet-sync/internal/dto"
	"github.com/GregMSThompson/wallet-sync/internal/errs"
	"github.com/GregMSThompson/wallet-sync/internal/middleware"
	"github.com/GregMSThompson/wallet-sync/internal/models"
	"github.com/GregMSThompson/wallet-sync/internal/response"
)

const syncSuccessMessage = "Wallet synchronized successfully"

type walletService interface {
	ListWallets(ctx context.Context, uid string) ([]*models.Wallet, error)
	GetWallet(ctx context.Context, uid, walletID string) (*models.Wallet, error)
	LinkBankWallet(ctx context.Context, uid string, req dto.LinkWalletRequest) (*models.Wallet, error)
}

type syncService interface {
	SyncWallet(ctx context.Context, uid, walletID string) (dto.SyncResult, error)
}

type transactionService interface {
	ListTransactions(ctx context.Context, uid, walletID string, p dto.TransactionListParams) (dto.TransactionListResult, error)
}

type walletHandlers struct {
	ResponseHandler response.ResponseHandler
	WalletSvc       walletService
	SyncSvc         syncService
	TransactionSvc  transactionService
}

func NewWalletHandlers(deps *Deps) *walletHandlers {
	return &walletHandlers{
		ResponseHandler: deps.ResponseHandler,
		WalletSvc:       deps.WalletSvc,
		SyncSvc:         deps.SyncSvc,
		TransactionSvc:  deps.TransactionSvc,
	}
}

func (h *walletHandlers) WalletRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ListWallets)
	r.Post("/", h.LinkWallet)
	r.Get("/{walletId}", h.GetWallet)
	r.Post("/{walletId}/sync", h.SyncWallet)
	r.Get("/{walletId}/transactions", h.ListTransactions)
	return r
}

// uid returns the caller or writes a 401 when the request carries no session.
func (h *walletHandlers) uid(w http.ResponseWriter, r *http.Request) (string, bool) {
	uid := middleware.UID(r.Context())
	if uid == "" {
		h.ResponseHandler.HandleError(w, r, errs.NewUnauthenticatedError("authentication required"))
		return "", false
	}
	return uid, true
}

func (h *walletHandlers) ListWallets(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.uid(w, r)
	if !ok {
		return
	}

	wallets, err := h.WalletSvc.ListWallets(r.Context(), uid)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, wallets)
}

func (h *walletHandlers) GetWallet(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.uid(w, r)
	if !ok {
		return
	}

	wallet, err := h.WalletSvc.GetWallet(r.Context(), uid, chi.URLParam(r, "walletId"))
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, wallet)
}

func (h *walletHandlers) LinkWallet(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.uid(w, r)
	if !ok {
		return
	}

	var body dto.LinkWalletRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.ResponseHandler.HandleError(w, r, errs.NewValidationError("invalid request body"))
		return
	}

	wallet, err := h.WalletSvc.LinkBankWallet(r.Context(), uid, body)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	h.ResponseHandler.WriteSuccess(w, r, http.StatusCreated, wallet)
}

// SyncWallet takes no body; everything it needs is on the stored wallet.
func (h *walletHandlers) SyncWallet(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.uid(w, r)
	if !ok {
		return
	}

	res, err := h.SyncSvc.SyncWallet(r.Context(), uid, chi.URLParam(r, "walletId"))
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	h.ResponseHandler.WriteJSON(w, r, http.StatusOK, dto.SyncResponse{
		Success: true,
		Message: syncSuccessMessage,
		Wallet:  res.Wallet,
		Data: dto.SyncData{
			TransactionCount: res.TransactionCount,
			Balance:          res.Balance,
			TotalRecords:     res.TotalRecords,
			Warnings:         res.Warnings,
		},
	})
}

func (h *walletHandlers) ListTransactions(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.uid(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	params := dto.TransactionListParams{
		DateFrom: query.Get("from"),
		DateTo:   query.Get("to"),
		Type:     query.Get("type"),
		Order:    query.Get("order"),
	}
	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			h.ResponseHandler.HandleError(w, r, errs.NewValidationError("limit must be a number"))
			return
		}
		params.Limit = limit
	}

	res, err := h.TransactionSvc.ListTransactions(r.Context(), uid, chi.URLParam(r, "walletId"), params)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, res)
}
