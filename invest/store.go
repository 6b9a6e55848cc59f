/*
store.go - Persistence and collaborator interfaces

PURPOSE:
  Defines the contracts between the investment core and its collaborators.
  The core never talks to a concrete database or delivery channel; it talks
  to these interfaces.

KEY INTERFACES:
  Store:        Read/write of Wallet, Investment, Payment, Miner
  TxStore:      Store plus atomic multi-write transactions
  MinerCatalog: Read-only miner lookup used by Invest
  Notifier:     Outbound installment/completion notifications

THE STATUS GUARD:
  MarkPaymentPaid is the compare-and-swap at the heart of settlement
  correctness: it transitions a payment to paid ONLY if it is still on_queue,
  and reports whether this caller won. Two concurrent settlements of the same
  payment therefore produce exactly one paid transition and one ledger
  credit; the loser observes false and backs out. This is a requirement of
  the settlement transaction boundary, not an optimization.

IMPLEMENTATIONS:
  - invest/store/memory.go: In-memory (tests, dev)
  - store/sqlite/sqlite.go: Production SQLite

SEE ALSO:
  - settlement.go: The only caller of MarkPaymentPaid
*/
package invest

import "context"

// =============================================================================
// STORE - Transactional persistence
// =============================================================================

// Store handles persistence of the core entities. Reads return copies that
// the caller owns; nothing aliases store-internal state.
type Store interface {
	// Wallets. PutWallet is an upsert and must be the single wallet write of
	// its enclosing transaction.
	GetWallet(ctx context.Context, id WalletID) (*Wallet, error)
	WalletByOwner(ctx context.Context, owner InvestorID, currency string) (*Wallet, error)
	WalletsByOwner(ctx context.Context, owner InvestorID) ([]*Wallet, error)
	PutWallet(ctx context.Context, w *Wallet) error

	// Investments.
	GetInvestment(ctx context.Context, id InvestmentID) (*Investment, error)
	ActiveInvestmentsByInvestor(ctx context.Context, investor InvestorID) ([]*Investment, error)
	PutInvestment(ctx context.Context, inv *Investment) error

	// Payments. PaymentsByInvestment returns ascending index order.
	GetPayment(ctx context.Context, id PaymentID) (*Payment, error)
	PaymentsByInvestment(ctx context.Context, id InvestmentID) ([]*Payment, error)
	PutPayment(ctx context.Context, p *Payment) error

	// MarkPaymentPaid atomically transitions the payment from on_queue to
	// paid. Returns false (without error) if the payment was no longer
	// on_queue - the caller lost a concurrent settlement race.
	MarkPaymentPaid(ctx context.Context, id PaymentID) (bool, error)

	// Miners.
	GetMiner(ctx context.Context, name string) (*Miner, error)
	ListMiners(ctx context.Context) ([]*Miner, error)
	PutMiner(ctx context.Context, m *Miner) error
}

// TxStore wraps Store with transaction support.
// If fn returns an error the transaction rolls back and none of its writes
// survive; otherwise everything commits together.
type TxStore interface {
	Store

	WithTx(ctx context.Context, fn func(Store) error) error
}

// =============================================================================
// MINER CATALOG - Read-only product lookup
// =============================================================================

// MinerCatalog is the narrow lookup Invest needs. Both stores satisfy it; a
// deployment may also back it with a static product list.
type MinerCatalog interface {
	GetMiner(ctx context.Context, name string) (*Miner, error)
	ListMiners(ctx context.Context) ([]*Miner, error)
}

// =============================================================================
// NOTIFIER - Outbound notifications
// =============================================================================

// Notice is one notification line in a batch dispatch.
type Notice struct {
	Subject string // reference to the settled payment or investment
	Comment string
}

// Notifier delivers settlement notifications to investors. Delivery is
// fire-and-forget from the engine's point of view: a Notifier error is
// logged, never propagated as a settlement failure. Callers settling a
// backlog receive ONE batched dispatch, not one per installment.
type Notifier interface {
	NotifyOne(ctx context.Context, investor InvestorID, subject, comment string) error
	NotifyBatch(ctx context.Context, investor InvestorID, notices []Notice) error
}
