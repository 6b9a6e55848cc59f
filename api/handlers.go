/*
handlers.go - HTTP API handlers for the investment core

PURPOSE:
  Exposes the investment core via REST. Handles HTTP request/response and
  JSON serialization, then delegates to the domain service. The read
  endpoints (wallet fetch, investment fetch, investor wallet list) are the
  lazy-settlement trigger surface: the service reconciles the owner's due
  installments before answering.

ENDPOINTS:
  Wallets:
    POST   /api/wallets                      Deposit (creates wallet on first funding)
    GET    /api/wallets/{id}                 Get wallet (triggers reconcile)
    POST   /api/wallets/{id}/withdrawals     Withdraw available balance
    POST   /api/wallets/{id}/investments     Commit capital to a miner

  Investments:
    GET    /api/investments/{id}             Get investment (triggers reconcile)
    GET    /api/investments/{id}/payments    List the installment schedule

  Investors:
    GET    /api/investors/{id}/wallets       Post-login refresh (triggers reconcile)
    POST   /api/investors/{id}/reconcile     Explicit reconciliation

  Miners:
    GET    /api/miners                       List catalog
    GET    /api/miners/{name}                Get one product
    POST   /api/miners                       Seed/update a product (admin)

ERROR HANDLING:
  - 400: Validation errors (bad amount, capital tier rejected)
  - 404: Resource not found
  - 500: Persistence errors (settlement transactions abort all-or-nothing)

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/warp/yield-engine/invest"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Service *invest.Service
	Log     *zap.Logger
}

// NewHandler creates a new handler over the domain service.
func NewHandler(service *invest.Service, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{Service: service, Log: log}
}

// =============================================================================
// WALLETS
// =============================================================================

// Deposit handles POST /api/wallets.
func (h *Handler) Deposit(w http.ResponseWriter, r *http.Request) {
	var req DepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Owner == "" || req.Currency == "" {
		writeError(w, http.StatusBadRequest, "owner and currency are required")
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid amount")
		return
	}

	wallet, err := h.Service.Deposit(r.Context(), invest.InvestorID(req.Owner), req.Currency, amount)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toWalletDTO(wallet))
}

// GetWallet handles GET /api/wallets/{id}. Settlement of anything due for
// the owner is attempted before the response is built.
func (h *Handler) GetWallet(w http.ResponseWriter, r *http.Request) {
	id := invest.WalletID(chi.URLParam(r, "id"))
	wallet, err := h.Service.GetWallet(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toWalletDTO(wallet))
}

// Withdraw handles POST /api/wallets/{id}/withdrawals.
func (h *Handler) Withdraw(w http.ResponseWriter, r *http.Request) {
	id := invest.WalletID(chi.URLParam(r, "id"))

	var req WithdrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid amount")
		return
	}

	wallet, err := h.Service.Withdraw(r.Context(), id, amount)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toWalletDTO(wallet))
}

// Invest handles POST /api/wallets/{id}/investments.
func (h *Handler) Invest(w http.ResponseWriter, r *http.Request) {
	id := invest.WalletID(chi.URLParam(r, "id"))

	var req InvestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Miner == "" {
		writeError(w, http.StatusBadRequest, "miner is required")
		return
	}
	capital, err := decimal.NewFromString(req.Capital)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid capital")
		return
	}

	investment, err := h.Service.Invest(r.Context(), id, req.Miner, capital)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toInvestmentDTO(investment))
}

// =============================================================================
// INVESTMENTS
// =============================================================================

// GetInvestment handles GET /api/investments/{id}. Triggers reconciliation
// for the owner before answering.
func (h *Handler) GetInvestment(w http.ResponseWriter, r *http.Request) {
	id := invest.InvestmentID(chi.URLParam(r, "id"))
	investment, err := h.Service.GetInvestment(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toInvestmentDTO(investment))
}

// ListPayments handles GET /api/investments/{id}/payments.
func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	id := invest.InvestmentID(chi.URLParam(r, "id"))

	// Reconcile-then-read, same as the investment fetch.
	investment, err := h.Service.GetInvestment(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	payments, err := h.Service.Store.PaymentsByInvestment(r.Context(), investment.ID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	dtos := make([]PaymentDTO, len(payments))
	for i, p := range payments {
		dtos[i] = toPaymentDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// INVESTORS
// =============================================================================

// ListWallets handles GET /api/investors/{id}/wallets - the post-login
// refresh path.
func (h *Handler) ListWallets(w http.ResponseWriter, r *http.Request) {
	owner := invest.InvestorID(chi.URLParam(r, "id"))
	wallets, err := h.Service.WalletsByOwner(r.Context(), owner)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	dtos := make([]WalletDTO, len(wallets))
	for i, wl := range wallets {
		dtos[i] = toWalletDTO(wl)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// Reconcile handles POST /api/investors/{id}/reconcile. Unlike the read
// paths this surfaces settlement errors to the caller.
func (h *Handler) Reconcile(w http.ResponseWriter, r *http.Request) {
	owner := invest.InvestorID(chi.URLParam(r, "id"))
	if err := h.Service.Reconcile(r.Context(), owner); err != nil {
		h.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// MINERS
// =============================================================================

// ListMiners handles GET /api/miners.
func (h *Handler) ListMiners(w http.ResponseWriter, r *http.Request) {
	miners, err := h.Service.Catalog.ListMiners(r.Context())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	dtos := make([]MinerDTO, len(miners))
	for i, m := range miners {
		dtos[i] = toMinerDTO(m)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetMiner handles GET /api/miners/{name}.
func (h *Handler) GetMiner(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	miner, err := h.Service.Catalog.GetMiner(r.Context(), name)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toMinerDTO(miner))
}

// CreateMiner handles POST /api/miners.
func (h *Handler) CreateMiner(w http.ResponseWriter, r *http.Request) {
	var req CreateMinerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" || len(req.AcceptedCapitals) == 0 {
		writeError(w, http.StatusBadRequest, "name and accepted_capitals are required")
		return
	}

	miner := &invest.Miner{Name: req.Name}
	for _, raw := range req.AcceptedCapitals {
		c, err := decimal.NewFromString(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid capital tier: "+raw)
			return
		}
		miner.AcceptedCapitals = append(miner.AcceptedCapitals, c)
	}
	if err := h.Service.Store.PutMiner(r.Context(), miner); err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toMinerDTO(miner))
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case invest.IsClientError(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case invest.IsNotFound(err):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		h.Log.Error("request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorDTO{Error: msg})
}
