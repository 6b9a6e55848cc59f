/*
errors.go - Centralized error types for the investment core

PURPOSE:
  All error types in one place for consistency and discoverability.
  The taxonomy mirrors how callers must react:

  1. Validation errors  - Rejected input, no state mutated (400)
  2. Not-found errors   - Missing wallet/investment/payment/miner (404)
  3. Conflict errors    - A settlement status guard lost a race; benign,
                          swallowed inside the engine, never surfaced
  4. Persistence errors - Transaction aborted all-or-nothing, surfaced as
                          fatal to the triggering request (500)

  Notification failures are NOT errors of this package: the Notifier contract
  is fire-and-forget, its failures are logged and never abort a settlement.

USAGE:
  if errors.Is(err, invest.ErrCapitalNotAccepted) { ... }

SEE ALSO:
  - settlement.go: Swallows ErrSettlementConflict
  - api/handlers.go: Maps these to HTTP status codes
*/
package invest

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrCapitalNotAccepted is returned by Invest when the capital amount is
	// not one of the miner's accepted tiers.
	ErrCapitalNotAccepted = errors.New("capital not accepted")

	// ErrInsufficientAvailable is returned when a withdrawal exceeds the
	// wallet's liquid balance.
	ErrInsufficientAvailable = errors.New("insufficient available balance")

	// ErrNonPositiveAmount is returned for zero or negative deposit and
	// withdrawal amounts.
	ErrNonPositiveAmount = errors.New("amount must be positive")

	// ErrSettlementConflict is returned inside a settlement transaction when
	// the payment's on_queue -> paid guard fails because a concurrent
	// settlement already won. The engine treats it as a benign no-op.
	ErrSettlementConflict = errors.New("payment already settled concurrently")

	// ErrWalletNotFound indicates a missing wallet.
	ErrWalletNotFound = errors.New("wallet not found")

	// ErrInvestmentNotFound indicates a missing investment.
	ErrInvestmentNotFound = errors.New("investment not found")

	// ErrPaymentNotFound indicates a missing payment.
	ErrPaymentNotFound = errors.New("payment not found")

	// ErrMinerNotFound indicates an unknown miner name.
	ErrMinerNotFound = errors.New("miner not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// CapitalNotAcceptedError reports which tiers the miner would have accepted.
type CapitalNotAcceptedError struct {
	Miner    string
	Capital  decimal.Decimal
	Accepted []decimal.Decimal
}

func (e *CapitalNotAcceptedError) Error() string {
	return fmt.Sprintf("miner %q does not accept capital %s (accepted: %v)",
		e.Miner, e.Capital, e.Accepted)
}

func (e *CapitalNotAcceptedError) Unwrap() error { return ErrCapitalNotAccepted }

// InsufficientAvailableError reports the shortfall of a rejected withdrawal.
type InsufficientAvailableError struct {
	WalletID  WalletID
	Available decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientAvailableError) Error() string {
	return fmt.Sprintf("wallet %s: available %s, requested %s",
		e.WalletID, e.Available, e.Requested)
}

func (e *InsufficientAvailableError) Unwrap() error { return ErrInsufficientAvailable }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrCapitalNotAccepted) ||
		errors.Is(err, ErrInsufficientAvailable) ||
		errors.Is(err, ErrNonPositiveAmount)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrWalletNotFound) ||
		errors.Is(err, ErrInvestmentNotFound) ||
		errors.Is(err, ErrPaymentNotFound) ||
		errors.Is(err, ErrMinerNotFound)
}

// IsRetryable returns true if the error might succeed on retry.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrSettlementConflict)
}
