/*
settlement.go - The interest-settlement state machine

PURPOSE:
  Applies due installments to the wallet ledger with at-most-once semantics,
  regardless of when or how often it runs. There is no scheduler thread: the
  engine executes synchronously inside whichever request triggered a
  reconciliation-eligible read.

STATE TRANSITIONS:
  Payment:    on_queue -> paid                (one-way, exactly once)
  Investment: active -> completed             (when the final index settles)
              active -> cancelled             (administrative, not here)

ENTRY POINTS:
  SettleOne   One target installment. Detects and catches up any skipped,
              still-due installments BEFORE the target so indices settle in
              non-decreasing order.
  SettleMany  A batch: each qualifying installment flips exactly once, the
              wallet receives ONE ledger credit of the summed amount, and the
              investor receives ONE batched notification (or a single one if
              only one installment qualified).
  Reconcile   Applies every currently-due, unsettled installment across all
              of an investor's active investments. Every read-triggering
              endpoint calls this before returning data.

CONCURRENCY:
  Two concurrent triggers may both observe the same due payment as on_queue.
  Every transition runs through the store's MarkPaymentPaid guard inside one
  transaction; the loser observes the guard failure and becomes a no-op
  instead of double-crediting the wallet. Wallet and investment state backing
  the transaction's writes is read through the transaction itself, never from
  a snapshot taken before it, so settlements of distinct installments against
  one wallet compound instead of overwriting each other.

FAILURE SEMANTICS:
  Any persistence or ledger error aborts the whole settlement transaction -
  no partial Payment/Investment/Wallet mutation survives. Notifications are
  dispatched after the financial writes commit; a failed dispatch is logged
  and never invalidates the settlement.

SEE ALSO:
  - ledger.go:    The credit arithmetic (available/add, investment wallet)
  - lifecycle.go: The read paths that trigger Reconcile
*/
package invest

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// =============================================================================
// ENGINE
// =============================================================================

// Engine is the settlement state machine. Safe for concurrent use as long as
// the Store honors its transactional and guard contracts.
type Engine struct {
	Store    TxStore
	Notifier Notifier
	Log      *zap.Logger
	Terms    Terms

	// Now is injectable for tests; defaults to time.Now.
	Now func() time.Time
}

func NewEngine(store TxStore, notifier Notifier, log *zap.Logger, terms Terms) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		Store:    store,
		Notifier: notifier,
		Log:      log,
		Terms:    terms,
		Now:      time.Now,
	}
}

// =============================================================================
// RECONCILE - Apply everything currently due for one investor
// =============================================================================

// Reconcile loads the investor's active investments and settles every due,
// unsettled installment. Each investment settles in its own transaction;
// a failure on one does not block the others. Returns the first error for
// callers that asked for reconciliation explicitly - read paths treat any
// error as "serve the prior consistent state".
func (e *Engine) Reconcile(ctx context.Context, investor InvestorID) error {
	investments, err := e.Store.ActiveInvestmentsByInvestor(ctx, investor)
	if err != nil {
		return fmt.Errorf("load active investments: %w", err)
	}

	var firstErr error
	for _, inv := range investments {
		if err := e.reconcileInvestment(ctx, inv); err != nil {
			e.Log.Error("settlement failed",
				zap.String("investor", string(investor)),
				zap.String("investment", string(inv.ID)),
				zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (e *Engine) reconcileInvestment(ctx context.Context, inv *Investment) error {
	now := e.Now()

	payments, err := e.Store.PaymentsByInvestment(ctx, inv.ID)
	if err != nil {
		return err
	}

	var due []*Payment
	for _, p := range payments {
		if p.Index > inv.lastPaid() && p.Status == PaymentOnQueue && p.Due(now) {
			due = append(due, p)
		}
	}

	switch len(due) {
	case 0:
		return nil
	case 1:
		return e.SettleOne(ctx, due[0])
	default:
		ids := make([]PaymentID, len(due))
		for i, p := range due {
			ids[i] = p.ID
		}
		return e.SettleMany(ctx, ids, inv, false)
	}
}

// =============================================================================
// SETTLE ONE - Single-payment settlement with backlog catch-up
// =============================================================================

// SettleOne settles a single installment. No-op unless the payment is still
// on_queue and due. If earlier installments were skipped and are themselves
// due, they are batch-settled first so the paid indices never skip a gap.
func (e *Engine) SettleOne(ctx context.Context, p *Payment) error {
	now := e.Now()
	if p.Status != PaymentOnQueue || !p.Due(now) {
		return nil
	}

	inv, err := e.Store.GetInvestment(ctx, p.InvestmentID)
	if err != nil {
		return err
	}

	// Backlog detection: settle the contiguous slice of skipped, still-due
	// installments between lastPaid and the target before touching the
	// target itself.
	if p.Index > 0 && inv.lastPaid() < p.Index-1 {
		all, err := e.Store.PaymentsByInvestment(ctx, inv.ID)
		if err != nil {
			return err
		}
		var backlog []PaymentID
		for _, q := range all {
			if q.Index > inv.lastPaid() && q.Index < p.Index &&
				q.Status == PaymentOnQueue && q.Due(now) {
				backlog = append(backlog, q.ID)
			}
		}
		if len(backlog) > 0 {
			if err := e.SettleMany(ctx, backlog, inv, true); err != nil {
				return err
			}
		}
	}

	completed := false
	err = e.Store.WithTx(ctx, func(s Store) error {
		won, err := s.MarkPaymentPaid(ctx, p.ID)
		if err != nil {
			return err
		}
		if !won {
			return ErrSettlementConflict
		}
		p.Status = PaymentPaid

		// Investment and wallet are read through the transaction, not from
		// pre-transaction snapshots: a parallel settlement of a sibling
		// installment must not be overwritten here.
		fresh, err := s.GetInvestment(ctx, p.InvestmentID)
		if err != nil {
			return err
		}
		if fresh.lastPaid() < p.Index {
			idx := p.Index
			fresh.LastPaidIndex = &idx
		}
		if fresh.lastPaid()+1 == len(fresh.Payments) {
			fresh.Status = InvestmentCompleted
			completed = true
		}
		if err := s.PutInvestment(ctx, fresh); err != nil {
			return err
		}

		wallet, err := s.GetWallet(ctx, p.WalletID)
		if err != nil {
			return err
		}
		wallet.Breakdown = wallet.Breakdown.Apply(Mutation{
			Where:            WhereAvailable,
			Action:           ActionAdd,
			Amount:           p.Amount,
			InvestmentWallet: true,
		})
		wallet.UpdatedAt = now
		return s.PutWallet(ctx, wallet)
	})
	if errors.Is(err, ErrSettlementConflict) {
		// A concurrent trigger settled it first. Benign.
		e.Log.Debug("settlement lost status guard",
			zap.String("payment", string(p.ID)))
		return nil
	}
	if err != nil {
		return err
	}

	e.notifyInstallment(ctx, inv, p)
	if completed {
		e.notifyCompleted(ctx, inv)
	}
	return nil
}

// =============================================================================
// SETTLE MANY - Batch settlement (and backlog catch-up)
// =============================================================================

// SettleMany settles every referenced installment that is still on_queue and
// due. A backlog of K installments produces exactly one ledger credit of the
// summed amount, not K. The wallet and investment rows the credit lands on
// are read inside the transaction. With backlog=true this is a pure catch-up
// pass: the caller owns the investment's index advance.
func (e *Engine) SettleMany(ctx context.Context, ids []PaymentID, inv *Investment, backlog bool) error {
	now := e.Now()

	var due []*Payment
	for _, id := range ids {
		p, err := e.Store.GetPayment(ctx, id)
		if err != nil {
			return err
		}
		if p.Status == PaymentOnQueue && p.Due(now) {
			due = append(due, p)
		}
	}
	if len(due) == 0 {
		return nil
	}
	sort.Slice(due, func(i, j int) bool { return due[i].Index < due[j].Index })

	var settled []*Payment
	completed := false
	err := e.Store.WithTx(ctx, func(s Store) error {
		settled = settled[:0]
		total := decimal.Zero
		maxIndex := -1

		for _, p := range due {
			won, err := s.MarkPaymentPaid(ctx, p.ID)
			if err != nil {
				return err
			}
			if !won {
				// A concurrent settlement took this one; drop it from the
				// batch so the wallet is credited only for what we settled.
				continue
			}
			p.Status = PaymentPaid
			settled = append(settled, p)
			total = total.Add(p.Amount)
			if p.Index > maxIndex {
				maxIndex = p.Index
			}
		}
		if len(settled) == 0 {
			return nil
		}

		if !backlog {
			fresh, err := s.GetInvestment(ctx, inv.ID)
			if err != nil {
				return err
			}
			if fresh.lastPaid() < maxIndex {
				idx := maxIndex
				fresh.LastPaidIndex = &idx
			}
			if fresh.lastPaid()+1 == len(fresh.Payments) {
				fresh.Status = InvestmentCompleted
				completed = true
			}
			if err := s.PutInvestment(ctx, fresh); err != nil {
				return err
			}
		}

		wallet, err := s.GetWallet(ctx, inv.WalletID)
		if err != nil {
			return err
		}
		wallet.Breakdown = wallet.Breakdown.Apply(Mutation{
			Where:            WhereAvailable,
			Action:           ActionAdd,
			Amount:           total,
			InvestmentWallet: true,
		})
		wallet.UpdatedAt = now
		return s.PutWallet(ctx, wallet)
	})
	if err != nil {
		return err
	}
	if len(settled) == 0 {
		return nil
	}

	if len(settled) == 1 {
		e.notifyInstallment(ctx, inv, settled[0])
	} else {
		notices := make([]Notice, len(settled))
		for i, p := range settled {
			notices[i] = Notice{
				Subject: string(p.ID),
				Comment: installmentComment(inv, p),
			}
		}
		if err := e.Notifier.NotifyBatch(ctx, inv.Investor, notices); err != nil {
			e.Log.Warn("batch notification failed",
				zap.String("investment", string(inv.ID)), zap.Error(err))
		}
	}
	if completed {
		e.notifyCompleted(ctx, inv)
	}
	return nil
}

// =============================================================================
// NOTIFICATION DISPATCH - Fire-and-forget
// =============================================================================

func (e *Engine) notifyInstallment(ctx context.Context, inv *Investment, p *Payment) {
	err := e.Notifier.NotifyOne(ctx, inv.Investor, string(p.ID), installmentComment(inv, p))
	if err != nil {
		e.Log.Warn("installment notification failed",
			zap.String("payment", string(p.ID)), zap.Error(err))
	}
}

func (e *Engine) notifyCompleted(ctx context.Context, inv *Investment) {
	comment := fmt.Sprintf("investment in %s completed: all %d installments paid",
		inv.Miner, len(inv.Payments))
	if err := e.Notifier.NotifyOne(ctx, inv.Investor, string(inv.ID), comment); err != nil {
		e.Log.Warn("completion notification failed",
			zap.String("investment", string(inv.ID)), zap.Error(err))
	}
}

func installmentComment(inv *Investment, p *Payment) string {
	return fmt.Sprintf("installment %d/%d of %s %s from %s paid",
		p.Index+1, len(inv.Payments), p.Amount, inv.Currency, inv.Miner)
}
