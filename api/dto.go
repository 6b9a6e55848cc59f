/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  JSON structures for API communication, decoupling the domain model from
  the external contract. All money travels as decimal strings - never JSON
  numbers - so clients see exactly what the ledger holds.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.
*/
package api

import (
	"time"

	"github.com/warp/yield-engine/invest"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// WalletDTO represents a wallet in API responses.
type WalletDTO struct {
	ID          string   `json:"id"`
	Owner       string   `json:"owner"`
	Currency    string   `json:"currency"`
	Holdings    string   `json:"holdings"`
	Available   string   `json:"available"`
	Total       string   `json:"total"`
	Investments []string `json:"investments"`
	UpdatedAt   string   `json:"updated_at"`
}

// DepositRequest funds (and on first funding creates) the owner's wallet.
type DepositRequest struct {
	Owner    string `json:"owner"`
	Currency string `json:"currency"`
	Amount   string `json:"amount"`
}

// WithdrawRequest debits the wallet's available balance.
type WithdrawRequest struct {
	Amount string `json:"amount"`
}

// InvestRequest commits capital from the wallet to a miner.
type InvestRequest struct {
	Miner   string `json:"miner"`
	Capital string `json:"capital"`
}

// InvestmentDTO represents an investment in API responses.
type InvestmentDTO struct {
	ID            string   `json:"id"`
	Investor      string   `json:"investor"`
	WalletID      string   `json:"wallet_id"`
	Miner         string   `json:"miner"`
	Currency      string   `json:"currency"`
	Capital       string   `json:"capital"`
	Interest      string   `json:"interest"`
	Total         string   `json:"total"`
	Status        string   `json:"status"`
	LastPaidIndex *int     `json:"last_interest_payment_index"`
	Payments      []string `json:"payments"`
	MaturityDate  string   `json:"maturity_date"`
	CreatedAt     string   `json:"created_at"`
}

// PaymentDTO represents one installment in API responses.
type PaymentDTO struct {
	ID           string `json:"id"`
	InvestmentID string `json:"investment_id"`
	Index        int    `json:"index"`
	Amount       string `json:"amount"`
	Date         string `json:"date"`
	Status       string `json:"status"`
}

// MinerDTO represents a catalog entry.
type MinerDTO struct {
	Name             string   `json:"name"`
	AcceptedCapitals []string `json:"accepted_capitals"`
}

// CreateMinerRequest seeds or updates a catalog entry.
type CreateMinerRequest struct {
	Name             string   `json:"name"`
	AcceptedCapitals []string `json:"accepted_capitals"`
}

// ErrorDTO is the uniform error envelope.
type ErrorDTO struct {
	Error string `json:"error"`
}

// =============================================================================
// MAPPERS
// =============================================================================

func toWalletDTO(w *invest.Wallet) WalletDTO {
	investments := make([]string, len(w.Investments))
	for i, id := range w.Investments {
		investments[i] = string(id)
	}
	return WalletDTO{
		ID:          string(w.ID),
		Owner:       string(w.Owner),
		Currency:    w.Currency,
		Holdings:    w.Breakdown.Holdings.String(),
		Available:   w.Breakdown.Available.String(),
		Total:       w.Breakdown.Total.String(),
		Investments: investments,
		UpdatedAt:   w.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func toInvestmentDTO(inv *invest.Investment) InvestmentDTO {
	payments := make([]string, len(inv.Payments))
	for i, id := range inv.Payments {
		payments[i] = string(id)
	}
	var lastPaid *int
	if inv.LastPaidIndex != nil {
		idx := *inv.LastPaidIndex
		lastPaid = &idx
	}
	return InvestmentDTO{
		ID:            string(inv.ID),
		Investor:      string(inv.Investor),
		WalletID:      string(inv.WalletID),
		Miner:         inv.Miner,
		Currency:      inv.Currency,
		Capital:       inv.Capital.String(),
		Interest:      inv.Interest.String(),
		Total:         inv.Total.String(),
		Status:        string(inv.Status),
		LastPaidIndex: lastPaid,
		Payments:      payments,
		MaturityDate:  inv.MaturityDate.UTC().Format(time.RFC3339),
		CreatedAt:     inv.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toPaymentDTO(p *invest.Payment) PaymentDTO {
	return PaymentDTO{
		ID:           string(p.ID),
		InvestmentID: string(p.InvestmentID),
		Index:        p.Index,
		Amount:       p.Amount.String(),
		Date:         p.Date.UTC().Format(time.RFC3339),
		Status:       string(p.Status),
	}
}

func toMinerDTO(m *invest.Miner) MinerDTO {
	capitals := make([]string, len(m.AcceptedCapitals))
	for i, c := range m.AcceptedCapitals {
		capitals[i] = c.String()
	}
	return MinerDTO{Name: m.Name, AcceptedCapitals: capitals}
}
