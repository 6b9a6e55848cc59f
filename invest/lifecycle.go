/*
lifecycle.go - Investment lifecycle and trigger surface

PURPOSE:
  Orchestrates capital commitment (Invest), wallet funding (Deposit/Withdraw)
  and the lazy-settlement trigger surface: every read path attempts a
  best-effort reconciliation for the owner before returning data, giving the
  illusion of a live scheduler without a background timer.

COMMIT ACCOUNTING:
  Invest reserves capital + anticipated interest into Holdings while only the
  capital leaves Available, so the wallet's Total grows by the interest at
  commit time. This pre-reservation is deliberate product policy; the
  settlement credits later move exactly the realized installment amounts from
  Holdings back to Available.

READ RESILIENCE:
  Reads never fail merely because settlement is pending. Reconciliation is
  attempted first; if it fails, the error is logged and the prior consistent
  state is served.

SEE ALSO:
  - settlement.go: The engine the trigger surface invokes
  - schedule.go:   Schedule generation used by Invest
*/
package invest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// =============================================================================
// SERVICE
// =============================================================================

// Service is the external surface of the investment core.
type Service struct {
	Store   TxStore
	Catalog MinerCatalog
	Engine  *Engine
	Log     *zap.Logger
	Terms   Terms

	// Now is injectable for tests; defaults to time.Now. Shared with the
	// engine so commit timestamps and due checks agree.
	Now func() time.Time
}

// NewService wires a service and its settlement engine over one store.
func NewService(store TxStore, catalog MinerCatalog, notifier Notifier, log *zap.Logger, terms Terms) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	engine := NewEngine(store, notifier, log, terms)
	s := &Service{
		Store:   store,
		Catalog: catalog,
		Engine:  engine,
		Log:     log,
		Terms:   terms,
		Now:     time.Now,
	}
	engine.Now = func() time.Time { return s.Now() }
	return s
}

// =============================================================================
// INVEST - Capital commitment
// =============================================================================

// Invest commits capital from the wallet to the named miner. The investment,
// its full payment schedule, the ledger reservation and the wallet's
// investment list are created in one atomic unit - an investment never
// exists without its schedule or its ledger effect. Capital must not exceed
// the wallet's liquid balance; the check runs against the wallet state read
// inside the transaction.
func (s *Service) Invest(ctx context.Context, walletID WalletID, minerName string, capital decimal.Decimal) (*Investment, error) {
	miner, err := s.Catalog.GetMiner(ctx, minerName)
	if err != nil {
		return nil, err
	}
	if !miner.Accepts(capital) {
		return nil, &CapitalNotAcceptedError{
			Miner:    miner.Name,
			Capital:  capital,
			Accepted: miner.AcceptedCapitals,
		}
	}

	wallet, err := s.Store.GetWallet(ctx, walletID)
	if err != nil {
		return nil, err
	}

	now := s.Now()
	interest := roundTo3(capital.Mul(s.Terms.Rate).Div(decimal.NewFromInt(100)))
	total := capital.Add(interest)

	inv := &Investment{
		ID:        NewInvestmentID(),
		Investor:  wallet.Owner,
		WalletID:  wallet.ID,
		Miner:     miner.Name,
		Currency:  wallet.Currency,
		Capital:   capital,
		Interest:  interest,
		Total:     total,
		Status:    InvestmentActive,
		CreatedAt: now,
	}

	schedule := BuildSchedule(wallet, inv, now, s.Terms)
	inv.MaturityDate = schedule.Maturity
	for _, p := range schedule.Payments {
		inv.Payments = append(inv.Payments, p.ID)
	}

	err = s.Store.WithTx(ctx, func(st Store) error {
		// Authoritative wallet state: re-read through the transaction so a
		// settlement or withdrawal committed since the pre-read is neither
		// overwritten nor double-spent.
		w, err := st.GetWallet(ctx, wallet.ID)
		if err != nil {
			return err
		}
		if w.Breakdown.Available.LessThan(capital) {
			return &InsufficientAvailableError{
				WalletID:  w.ID,
				Available: w.Breakdown.Available,
				Requested: capital,
			}
		}

		if err := st.PutInvestment(ctx, inv); err != nil {
			return err
		}
		for _, p := range schedule.Payments {
			if err := st.PutPayment(ctx, p); err != nil {
				return err
			}
		}
		w.Investments = append(w.Investments, inv.ID)
		w.Breakdown = w.Breakdown.Apply(Mutation{
			Where:  WhereHoldings,
			Action: ActionAdd,
			Amount: total,
			Debit:  capital,
		})
		w.UpdatedAt = now
		return st.PutWallet(ctx, w)
	})
	if err != nil {
		return nil, fmt.Errorf("commit investment: %w", err)
	}

	s.Log.Info("investment created",
		zap.String("investment", string(inv.ID)),
		zap.String("miner", inv.Miner),
		zap.String("capital", capital.String()),
		zap.String("total", total.String()))
	return inv, nil
}

// =============================================================================
// DEPOSIT / WITHDRAW - Plain available-balance movements
// =============================================================================

// Deposit credits the owner's wallet for the currency, creating the wallet
// on first funding.
func (s *Service) Deposit(ctx context.Context, owner InvestorID, currency string, amount decimal.Decimal) (*Wallet, error) {
	if !amount.IsPositive() {
		return nil, ErrNonPositiveAmount
	}

	now := s.Now()
	var wallet *Wallet
	err := s.Store.WithTx(ctx, func(st Store) error {
		w, err := st.WalletByOwner(ctx, owner, currency)
		if errors.Is(err, ErrWalletNotFound) {
			w = NewWallet(owner, currency, now)
		} else if err != nil {
			return err
		}
		w.Breakdown = w.Breakdown.Apply(Mutation{
			Where:  WhereAvailable,
			Action: ActionAdd,
			Amount: amount,
		})
		w.UpdatedAt = now
		wallet = w
		return st.PutWallet(ctx, w)
	})
	if err != nil {
		return nil, err
	}
	return wallet, nil
}

// Withdraw debits the wallet's liquid balance. Holdings are untouchable.
func (s *Service) Withdraw(ctx context.Context, walletID WalletID, amount decimal.Decimal) (*Wallet, error) {
	if !amount.IsPositive() {
		return nil, ErrNonPositiveAmount
	}

	now := s.Now()
	var wallet *Wallet
	err := s.Store.WithTx(ctx, func(st Store) error {
		w, err := st.GetWallet(ctx, walletID)
		if err != nil {
			return err
		}
		if w.Breakdown.Available.LessThan(amount) {
			return &InsufficientAvailableError{
				WalletID:  w.ID,
				Available: w.Breakdown.Available,
				Requested: amount,
			}
		}
		w.Breakdown = w.Breakdown.Apply(Mutation{
			Where:  WhereAvailable,
			Action: ActionSubtract,
			Amount: amount,
		})
		w.UpdatedAt = now
		wallet = w
		return st.PutWallet(ctx, w)
	})
	if err != nil {
		return nil, err
	}
	return wallet, nil
}

// =============================================================================
// TRIGGER SURFACE - Reads that reconcile first
// =============================================================================

// GetWallet settles anything due for the wallet's owner, then returns the
// fresh wallet. Reconciliation failure is logged, not surfaced.
func (s *Service) GetWallet(ctx context.Context, id WalletID) (*Wallet, error) {
	w, err := s.Store.GetWallet(ctx, id)
	if err != nil {
		return nil, err
	}
	s.reconcileBestEffort(ctx, w.Owner)
	return s.Store.GetWallet(ctx, id)
}

// GetInvestment settles anything due for the investment's owner, then
// returns the fresh investment.
func (s *Service) GetInvestment(ctx context.Context, id InvestmentID) (*Investment, error) {
	inv, err := s.Store.GetInvestment(ctx, id)
	if err != nil {
		return nil, err
	}
	s.reconcileBestEffort(ctx, inv.Investor)
	return s.Store.GetInvestment(ctx, id)
}

// WalletsByOwner is the post-login refresh path: reconcile, then list.
func (s *Service) WalletsByOwner(ctx context.Context, owner InvestorID) ([]*Wallet, error) {
	s.reconcileBestEffort(ctx, owner)
	return s.Store.WalletsByOwner(ctx, owner)
}

// Reconcile applies every currently-due installment for the investor.
// Unlike the read paths, the caller asked for it explicitly and gets the
// error back.
func (s *Service) Reconcile(ctx context.Context, investor InvestorID) error {
	return s.Engine.Reconcile(ctx, investor)
}

func (s *Service) reconcileBestEffort(ctx context.Context, owner InvestorID) {
	if err := s.Engine.Reconcile(ctx, owner); err != nil {
		s.Log.Warn("reconciliation failed, serving prior state",
			zap.String("investor", string(owner)), zap.Error(err))
	}
}
