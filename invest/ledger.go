/*
ledger.go - Three-balance wallet arithmetic

PURPOSE:
  Pure arithmetic over a Wallet's Breakdown. No I/O: callers apply a Mutation
  to a value, then persist the updated wallet exactly once as the last step of
  whatever atomic transaction invoked it.

THE FOUR RECOGNIZED MUTATIONS:
  holdings/add        Commit path. Holdings gains Amount (capital + interest)
                      while Available loses only Debit (the capital). The
                      difference - the anticipated interest - is pre-reserved
                      into Holdings, so Total grows at commit time. Amount and
                      Debit are deliberately NOT required to match.
  holdings/subtract   Release path. Amount returns from Holdings to Available.
  available/add with InvestmentWallet set
                      Settlement credit. Available gains Amount AND Holdings
                      releases the same Amount; Total is unchanged. This is
                      how a realized installment reaches the liquid balance.
  available/add|subtract (plain)
                      Deposits and withdrawals. Only Available moves.

  Anything else is an unrecognized combination and applies as the identity;
  rejection of bad requests happens upstream in the settlement engine, not
  here.

INVARIANT:
  Total == Holdings + Available is re-established after every Apply.
*/
package invest

import "github.com/shopspring/decimal"

// =============================================================================
// MUTATION - One balance movement request
// =============================================================================

type Where string

const (
	WhereHoldings  Where = "holdings"
	WhereAvailable Where = "available"
)

type Action string

const (
	ActionAdd      Action = "add"
	ActionSubtract Action = "subtract"
)

// Mutation describes one movement over a wallet breakdown.
type Mutation struct {
	Where  Where
	Action Action
	Amount decimal.Decimal

	// Debit applies only to holdings/add: the amount taken out of Available
	// when capital is committed. Zero for every other combination.
	Debit decimal.Decimal

	// InvestmentWallet marks a settlement credit: available/add also releases
	// the same amount from Holdings, keeping Total constant.
	InvestmentWallet bool
}

// =============================================================================
// APPLY - Pure (Breakdown, Mutation) -> Breakdown
// =============================================================================

// Apply returns the breakdown after the mutation. Unrecognized where/action
// combinations return the input unchanged.
func (b Breakdown) Apply(m Mutation) Breakdown {
	out := b
	switch {
	case m.Where == WhereHoldings && m.Action == ActionAdd:
		out.Holdings = b.Holdings.Add(m.Amount)
		out.Available = b.Available.Sub(m.Debit)

	case m.Where == WhereHoldings && m.Action == ActionSubtract:
		out.Holdings = b.Holdings.Sub(m.Amount)
		out.Available = b.Available.Add(m.Amount)

	case m.Where == WhereAvailable && m.Action == ActionAdd && m.InvestmentWallet:
		out.Available = b.Available.Add(m.Amount)
		out.Holdings = b.Holdings.Sub(m.Amount)

	case m.Where == WhereAvailable && m.Action == ActionAdd:
		out.Available = b.Available.Add(m.Amount)

	case m.Where == WhereAvailable && m.Action == ActionSubtract:
		out.Available = b.Available.Sub(m.Amount)

	default:
		return b
	}

	out.Total = out.Holdings.Add(out.Available)
	return out
}

// Consistent reports whether the invariant Total == Holdings + Available
// holds. Used by tests and the stores' sanity checks.
func (b Breakdown) Consistent() bool {
	return b.Total.Equal(b.Holdings.Add(b.Available))
}
