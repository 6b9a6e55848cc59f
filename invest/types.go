/*
Package invest implements the investment and interest-settlement core.

PURPOSE:
  Users commit capital to named "miners", earn interest disbursed on a fixed
  bi-weekly schedule over a fixed number of installments, and withdraw liquid
  balance. There is no background scheduler: due installments are applied
  lazily whenever resulting data is read (wallet fetch, investment fetch,
  post-login refresh), with idempotency and ledger-consistency guarantees
  standing in for a cron job.

KEY CONCEPTS IN THIS FILE (types.go):
  - Wallet:     Per (owner, currency) balance container with a three-field
                breakdown: Holdings, Available, Total
  - Investment: One capital commitment with a fixed payment schedule
  - Payment:    One scheduled installment, settled exactly once
  - Miner:      A named product defining accepted capital tiers
  - Terms:      Deployment-wide interest rate and schedule shape

DESIGN PRINCIPLES:
  1. Precision: All money uses decimal.Decimal, never float64
  2. Type Safety: Strong ID types prevent mixing wallet/investment/payment IDs
  3. One-way states: Payments move on_queue -> paid once; investments end in
     completed or cancelled and never come back

SEE ALSO:
  - ledger.go:     The three-balance arithmetic over Wallet.Breakdown
  - schedule.go:   Payment schedule generation
  - settlement.go: The settlement state machine
  - lifecycle.go:  Invest/deposit/withdraw orchestration
*/
package invest

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type InvestorID string
type WalletID string
type InvestmentID string
type PaymentID string

func NewWalletID() WalletID         { return WalletID(uuid.NewString()) }
func NewInvestmentID() InvestmentID { return InvestmentID(uuid.NewString()) }
func NewPaymentID() PaymentID       { return PaymentID(uuid.NewString()) }

// =============================================================================
// TERMS - Deployment-wide product parameters
// =============================================================================

// Terms fixes the interest rate and schedule shape for every investment
// created by this deployment. The rate is per-deployment, not per-investment.
type Terms struct {
	// Rate is the total interest in percent applied once at commit time.
	// interest = capital * Rate / 100
	Rate decimal.Decimal

	// Installments is the number of payments the interest+capital return is
	// split into.
	Installments int

	// Interval is the spacing between installment due dates.
	Interval time.Duration
}

// DefaultTerms returns the standard product: 22% total interest over 8
// bi-weekly installments.
func DefaultTerms() Terms {
	return Terms{
		Rate:         decimal.NewFromInt(22),
		Installments: 8,
		Interval:     14 * 24 * time.Hour,
	}
}

// roundTo3 is the canonical rounding for installment amounts.
func roundTo3(d decimal.Decimal) decimal.Decimal { return d.Round(3) }

// =============================================================================
// WALLET - Per (owner, currency) balance container
// =============================================================================

// Breakdown is the wallet's three-field balance.
//
// INVARIANT: Total == Holdings + Available after every mutation.
type Breakdown struct {
	// Holdings is capital plus anticipated interest reserved against active
	// investments. Not withdrawable.
	Holdings decimal.Decimal

	// Available is the liquid, withdrawable balance.
	Available decimal.Decimal

	// Total is always recomputed as Holdings + Available.
	Total decimal.Decimal
}

// Wallet is created on first funding or first investment for a given
// (owner, currency) pair. It is never deleted, only balance-mutated.
type Wallet struct {
	ID          WalletID
	Owner       InvestorID
	Currency    string
	Breakdown   Breakdown
	Investments []InvestmentID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewWallet returns an empty wallet for the pair.
func NewWallet(owner InvestorID, currency string, at time.Time) *Wallet {
	return &Wallet{
		ID:        NewWalletID(),
		Owner:     owner,
		Currency:  currency,
		CreatedAt: at,
		UpdatedAt: at,
	}
}

// =============================================================================
// INVESTMENT - One capital commitment
// =============================================================================

type InvestmentStatus string

const (
	InvestmentActive    InvestmentStatus = "active"
	InvestmentCompleted InvestmentStatus = "completed"
	InvestmentCancelled InvestmentStatus = "cancelled"
)

// Investment is created atomically with its full payment schedule. Only the
// settlement engine advances LastPaidIndex/Status; cancellation is an
// administrative action outside the settlement path.
type Investment struct {
	ID       InvestmentID
	Investor InvestorID
	WalletID WalletID
	Miner    string
	Currency string

	Capital  decimal.Decimal
	Interest decimal.Decimal // computed once at commit time
	Total    decimal.Decimal // Capital + Interest

	Status InvestmentStatus

	// LastPaidIndex is the highest settled installment index. Nil until the
	// first installment settles; monotonically non-decreasing after that.
	LastPaidIndex *int

	// Payments holds exactly Terms.Installments payment IDs in ascending
	// index order.
	Payments []PaymentID

	// MaturityDate is the due date of the final installment.
	MaturityDate time.Time

	CreatedAt time.Time
}

// lastPaid returns the highest settled index, or -1 if nothing settled yet.
func (inv *Investment) lastPaid() int {
	if inv.LastPaidIndex == nil {
		return -1
	}
	return *inv.LastPaidIndex
}

// =============================================================================
// PAYMENT - One scheduled installment
// =============================================================================

type PaymentStatus string

const (
	PaymentOnQueue PaymentStatus = "on_queue"
	PaymentPaid    PaymentStatus = "paid"
)

// Payment is created once at invest time and mutated exactly once, from
// on_queue to paid, by the settlement engine. Never deleted.
type Payment struct {
	ID           PaymentID
	InvestmentID InvestmentID
	WalletID     WalletID

	// Index is the schedule position, dense over [0, N-1].
	Index int

	Amount decimal.Decimal
	Date   time.Time // due date
	Status PaymentStatus
}

// Due reports whether the installment's due date has passed at the given
// instant.
func (p *Payment) Due(now time.Time) bool { return !p.Date.After(now) }

// =============================================================================
// MINER - Named product with accepted capital tiers
// =============================================================================

// Miner defines which capital amounts a product accepts. Read-only from the
// core's point of view.
type Miner struct {
	Name             string
	AcceptedCapitals []decimal.Decimal
}

// Accepts reports whether capital matches one of the miner's tiers exactly.
func (m *Miner) Accepts(capital decimal.Decimal) bool {
	for _, c := range m.AcceptedCapitals {
		if c.Equal(capital) {
			return true
		}
	}
	return false
}
