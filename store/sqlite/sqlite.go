/*
Package sqlite provides a SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  Implements invest.Store and invest.TxStore using SQLite. In production the
  same patterns apply to PostgreSQL - only minor SQL dialect differences.

KEY TABLES:
  wallets:      One row per (owner, currency), three-balance breakdown
  investments:  Capital commitments with last_paid_index progress
  payments:     The installment schedule; UNIQUE(investment_id, idx)
  miners:       Product catalog with accepted capital tiers (JSON)

THE STATUS GUARD:
  MarkPaymentPaid is implemented as a conditional UPDATE:

    UPDATE payments SET status = 'paid' WHERE id = ? AND status = 'on_queue'

  RowsAffected tells the caller whether it won the transition. Combined with
  the store mutex (and SQLite's single WAL writer) this serializes
  settlements so a losing concurrent attempt backs out instead of
  double-crediting the wallet.

WALLET INVESTMENT LIST:
  The wallet's ordered investment list is derived from the investments table
  (wallet_id + created_at) rather than duplicated in its own table; PutWallet
  writes balances only.

MONEY:
  All amounts are stored as decimal strings, never floats.

WAL MODE:
  SQLite is opened with WAL for better concurrency: readers don't block, one
  writer at a time, better crash recovery.

USAGE:
  st, err := sqlite.New("./data/yield.db")
  ...
  defer st.Close()

SEE ALSO:
  - invest/store.go: Interface definitions
  - invest/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/yield-engine/invest"
)

// Store implements invest.TxStore using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite has a single writer; one pooled connection also keeps :memory:
	// databases coherent across calls.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS wallets (
		id TEXT PRIMARY KEY,
		owner TEXT NOT NULL,
		currency TEXT NOT NULL,
		holdings TEXT NOT NULL,
		available TEXT NOT NULL,
		total TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		UNIQUE(owner, currency)
	);

	CREATE INDEX IF NOT EXISTS idx_wallets_owner ON wallets(owner);

	CREATE TABLE IF NOT EXISTS investments (
		id TEXT PRIMARY KEY,
		investor TEXT NOT NULL,
		wallet_id TEXT NOT NULL,
		miner TEXT NOT NULL,
		currency TEXT NOT NULL,
		capital TEXT NOT NULL,
		interest TEXT NOT NULL,
		total TEXT NOT NULL,
		status TEXT NOT NULL,
		last_paid_index INTEGER,
		maturity_date TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_investments_investor_status
		ON investments(investor, status);
	CREATE INDEX IF NOT EXISTS idx_investments_wallet
		ON investments(wallet_id);

	CREATE TABLE IF NOT EXISTS payments (
		id TEXT PRIMARY KEY,
		investment_id TEXT NOT NULL,
		wallet_id TEXT NOT NULL,
		idx INTEGER NOT NULL,
		amount TEXT NOT NULL,
		due_date TEXT NOT NULL,
		status TEXT NOT NULL,
		UNIQUE(investment_id, idx)
	);

	CREATE INDEX IF NOT EXISTS idx_payments_investment
		ON payments(investment_id, idx);
	CREATE INDEX IF NOT EXISTS idx_payments_status_due
		ON payments(status, due_date);

	CREATE TABLE IF NOT EXISTS miners (
		name TEXT PRIMARY KEY,
		accepted_capitals TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

var _ invest.TxStore = (*Store)(nil)

// queryer is satisfied by both *sql.DB and *sql.Tx so every statement can run
// standalone or inside WithTx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// =============================================================================
// WALLETS
// =============================================================================

func (s *Store) GetWallet(ctx context.Context, id invest.WalletID) (*invest.Wallet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getWallet(ctx, s.db, id)
}

func getWallet(ctx context.Context, q queryer, id invest.WalletID) (*invest.Wallet, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, owner, currency, holdings, available, total, created_at, updated_at
		FROM wallets WHERE id = ?`, string(id))
	return scanWallet(ctx, q, row)
}

func (s *Store) WalletByOwner(ctx context.Context, owner invest.InvestorID, currency string) (*invest.Wallet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return walletByOwner(ctx, s.db, owner, currency)
}

func walletByOwner(ctx context.Context, q queryer, owner invest.InvestorID, currency string) (*invest.Wallet, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, owner, currency, holdings, available, total, created_at, updated_at
		FROM wallets WHERE owner = ? AND currency = ?`, string(owner), currency)
	return scanWallet(ctx, q, row)
}

func (s *Store) WalletsByOwner(ctx context.Context, owner invest.InvestorID) ([]*invest.Wallet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return walletsByOwner(ctx, s.db, owner)
}

func walletsByOwner(ctx context.Context, q queryer, owner invest.InvestorID) ([]*invest.Wallet, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id FROM wallets WHERE owner = ? ORDER BY created_at ASC`, string(owner))
	if err != nil {
		return nil, fmt.Errorf("failed to query wallets: %w", err)
	}
	defer rows.Close()

	var ids []invest.WalletID
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, invest.WalletID(id))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	wallets := make([]*invest.Wallet, 0, len(ids))
	for _, id := range ids {
		w, err := getWallet(ctx, q, id)
		if err != nil {
			return nil, err
		}
		wallets = append(wallets, w)
	}
	return wallets, nil
}

func scanWallet(ctx context.Context, q queryer, row *sql.Row) (*invest.Wallet, error) {
	var (
		id, owner, currency        string
		holdings, available, total string
		createdAt, updatedAt       string
	)
	err := row.Scan(&id, &owner, &currency, &holdings, &available, &total, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, invest.ErrWalletNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan wallet: %w", err)
	}

	w := &invest.Wallet{
		ID:       invest.WalletID(id),
		Owner:    invest.InvestorID(owner),
		Currency: currency,
	}
	if w.Breakdown.Holdings, err = decimal.NewFromString(holdings); err != nil {
		return nil, err
	}
	if w.Breakdown.Available, err = decimal.NewFromString(available); err != nil {
		return nil, err
	}
	if w.Breakdown.Total, err = decimal.NewFromString(total); err != nil {
		return nil, err
	}
	if w.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, err
	}
	if w.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, err
	}

	// The wallet's ordered investment list is derived, not duplicated.
	rows, err := q.QueryContext(ctx, `
		SELECT id FROM investments WHERE wallet_id = ? ORDER BY created_at ASC, id ASC`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query wallet investments: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var invID string
		if err := rows.Scan(&invID); err != nil {
			return nil, err
		}
		w.Investments = append(w.Investments, invest.InvestmentID(invID))
	}
	return w, rows.Err()
}

func (s *Store) PutWallet(ctx context.Context, w *invest.Wallet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return putWallet(ctx, s.db, w)
}

func putWallet(ctx context.Context, q queryer, w *invest.Wallet) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO wallets (id, owner, currency, holdings, available, total, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			holdings = excluded.holdings,
			available = excluded.available,
			total = excluded.total,
			updated_at = excluded.updated_at`,
		string(w.ID), string(w.Owner), w.Currency,
		w.Breakdown.Holdings.String(), w.Breakdown.Available.String(), w.Breakdown.Total.String(),
		w.CreatedAt.UTC().Format(time.RFC3339Nano), w.UpdatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to put wallet: %w", err)
	}
	return nil
}

// =============================================================================
// INVESTMENTS
// =============================================================================

const investmentColumns = `id, investor, wallet_id, miner, currency, capital,
	interest, total, status, last_paid_index, maturity_date, created_at`

func (s *Store) GetInvestment(ctx context.Context, id invest.InvestmentID) (*invest.Investment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getInvestment(ctx, s.db, id)
}

func getInvestment(ctx context.Context, q queryer, id invest.InvestmentID) (*invest.Investment, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+investmentColumns+` FROM investments WHERE id = ?`, string(id))
	if err != nil {
		return nil, fmt.Errorf("failed to query investment: %w", err)
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, invest.ErrInvestmentNotFound
	}
	inv, err := scanInvestment(rows)
	if err != nil {
		return nil, err
	}
	rows.Close()
	return attachPaymentIDs(ctx, q, inv)
}

func (s *Store) ActiveInvestmentsByInvestor(ctx context.Context, investor invest.InvestorID) ([]*invest.Investment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return activeInvestmentsByInvestor(ctx, s.db, investor)
}

func activeInvestmentsByInvestor(ctx context.Context, q queryer, investor invest.InvestorID) ([]*invest.Investment, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+investmentColumns+` FROM investments
		 WHERE investor = ? AND status = ?
		 ORDER BY created_at ASC, id ASC`,
		string(investor), string(invest.InvestmentActive))
	if err != nil {
		return nil, fmt.Errorf("failed to query investments: %w", err)
	}
	defer rows.Close()

	var out []*invest.Investment
	for rows.Next() {
		inv, err := scanInvestment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	for i, inv := range out {
		if out[i], err = attachPaymentIDs(ctx, q, inv); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func scanInvestment(rows *sql.Rows) (*invest.Investment, error) {
	var (
		id, investor, walletID, miner, currency string
		capital, interest, total, status        string
		lastPaid                                sql.NullInt64
		maturity, createdAt                     string
	)
	err := rows.Scan(&id, &investor, &walletID, &miner, &currency,
		&capital, &interest, &total, &status, &lastPaid, &maturity, &createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to scan investment: %w", err)
	}

	inv := &invest.Investment{
		ID:       invest.InvestmentID(id),
		Investor: invest.InvestorID(investor),
		WalletID: invest.WalletID(walletID),
		Miner:    miner,
		Currency: currency,
		Status:   invest.InvestmentStatus(status),
	}
	if inv.Capital, err = decimal.NewFromString(capital); err != nil {
		return nil, err
	}
	if inv.Interest, err = decimal.NewFromString(interest); err != nil {
		return nil, err
	}
	if inv.Total, err = decimal.NewFromString(total); err != nil {
		return nil, err
	}
	if lastPaid.Valid {
		idx := int(lastPaid.Int64)
		inv.LastPaidIndex = &idx
	}
	if inv.MaturityDate, err = time.Parse(time.RFC3339Nano, maturity); err != nil {
		return nil, err
	}
	if inv.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, err
	}
	return inv, nil
}

func attachPaymentIDs(ctx context.Context, q queryer, inv *invest.Investment) (*invest.Investment, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id FROM payments WHERE investment_id = ? ORDER BY idx ASC`, string(inv.ID))
	if err != nil {
		return nil, fmt.Errorf("failed to query payment ids: %w", err)
	}
	defer rows.Close()
	inv.Payments = nil
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		inv.Payments = append(inv.Payments, invest.PaymentID(id))
	}
	return inv, rows.Err()
}

func (s *Store) PutInvestment(ctx context.Context, inv *invest.Investment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return putInvestment(ctx, s.db, inv)
}

func putInvestment(ctx context.Context, q queryer, inv *invest.Investment) error {
	var lastPaid sql.NullInt64
	if inv.LastPaidIndex != nil {
		lastPaid = sql.NullInt64{Int64: int64(*inv.LastPaidIndex), Valid: true}
	}
	_, err := q.ExecContext(ctx, `
		INSERT INTO investments (id, investor, wallet_id, miner, currency,
			capital, interest, total, status, last_paid_index, maturity_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			last_paid_index = excluded.last_paid_index`,
		string(inv.ID), string(inv.Investor), string(inv.WalletID), inv.Miner, inv.Currency,
		inv.Capital.String(), inv.Interest.String(), inv.Total.String(),
		string(inv.Status), lastPaid,
		inv.MaturityDate.UTC().Format(time.RFC3339Nano),
		inv.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to put investment: %w", err)
	}
	return nil
}

// =============================================================================
// PAYMENTS
// =============================================================================

func (s *Store) GetPayment(ctx context.Context, id invest.PaymentID) (*invest.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getPayment(ctx, s.db, id)
}

func getPayment(ctx context.Context, q queryer, id invest.PaymentID) (*invest.Payment, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, investment_id, wallet_id, idx, amount, due_date, status
		FROM payments WHERE id = ?`, string(id))
	if err != nil {
		return nil, fmt.Errorf("failed to query payment: %w", err)
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, invest.ErrPaymentNotFound
	}
	return scanPayment(rows)
}

func (s *Store) PaymentsByInvestment(ctx context.Context, id invest.InvestmentID) ([]*invest.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return paymentsByInvestment(ctx, s.db, id)
}

func paymentsByInvestment(ctx context.Context, q queryer, id invest.InvestmentID) ([]*invest.Payment, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, investment_id, wallet_id, idx, amount, due_date, status
		FROM payments WHERE investment_id = ? ORDER BY idx ASC`, string(id))
	if err != nil {
		return nil, fmt.Errorf("failed to query payments: %w", err)
	}
	defer rows.Close()

	var out []*invest.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanPayment(rows *sql.Rows) (*invest.Payment, error) {
	var (
		id, investmentID, walletID string
		idx                        int
		amount, dueDate, status    string
	)
	if err := rows.Scan(&id, &investmentID, &walletID, &idx, &amount, &dueDate, &status); err != nil {
		return nil, fmt.Errorf("failed to scan payment: %w", err)
	}

	p := &invest.Payment{
		ID:           invest.PaymentID(id),
		InvestmentID: invest.InvestmentID(investmentID),
		WalletID:     invest.WalletID(walletID),
		Index:        idx,
		Status:       invest.PaymentStatus(status),
	}
	var err error
	if p.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, err
	}
	if p.Date, err = time.Parse(time.RFC3339Nano, dueDate); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Store) PutPayment(ctx context.Context, p *invest.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return putPayment(ctx, s.db, p)
}

func putPayment(ctx context.Context, q queryer, p *invest.Payment) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO payments (id, investment_id, wallet_id, idx, amount, due_date, status)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET status = excluded.status`,
		string(p.ID), string(p.InvestmentID), string(p.WalletID), p.Index,
		p.Amount.String(), p.Date.UTC().Format(time.RFC3339Nano), string(p.Status))
	if err != nil {
		return fmt.Errorf("failed to put payment: %w", err)
	}
	return nil
}

// MarkPaymentPaid transitions on_queue -> paid only if the payment is still
// on_queue. The return value reports whether this caller won.
func (s *Store) MarkPaymentPaid(ctx context.Context, id invest.PaymentID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return markPaymentPaid(ctx, s.db, id)
}

func markPaymentPaid(ctx context.Context, q queryer, id invest.PaymentID) (bool, error) {
	res, err := q.ExecContext(ctx, `
		UPDATE payments SET status = ? WHERE id = ? AND status = ?`,
		string(invest.PaymentPaid), string(id), string(invest.PaymentOnQueue))
	if err != nil {
		return false, fmt.Errorf("failed to mark payment paid: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		// Either already paid (benign) or missing (caller error).
		if _, err := getPayment(ctx, q, id); err != nil {
			return false, err
		}
		return false, nil
	}
	return true, nil
}

// =============================================================================
// MINERS
// =============================================================================

func (s *Store) GetMiner(ctx context.Context, name string) (*invest.Miner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getMiner(ctx, s.db, name)
}

func getMiner(ctx context.Context, q queryer, name string) (*invest.Miner, error) {
	var capitalsJSON string
	err := q.QueryRowContext(ctx,
		`SELECT accepted_capitals FROM miners WHERE name = ?`, name).Scan(&capitalsJSON)
	if err == sql.ErrNoRows {
		return nil, invest.ErrMinerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query miner: %w", err)
	}
	return decodeMiner(name, capitalsJSON)
}

func (s *Store) ListMiners(ctx context.Context) ([]*invest.Miner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listMiners(ctx, s.db)
}

func listMiners(ctx context.Context, q queryer) ([]*invest.Miner, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT name, accepted_capitals FROM miners ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query miners: %w", err)
	}
	defer rows.Close()

	var out []*invest.Miner
	for rows.Next() {
		var name, capitalsJSON string
		if err := rows.Scan(&name, &capitalsJSON); err != nil {
			return nil, err
		}
		m, err := decodeMiner(name, capitalsJSON)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func decodeMiner(name, capitalsJSON string) (*invest.Miner, error) {
	var raw []string
	if err := json.Unmarshal([]byte(capitalsJSON), &raw); err != nil {
		return nil, fmt.Errorf("failed to decode miner %q capitals: %w", name, err)
	}
	m := &invest.Miner{Name: name}
	for _, s := range raw {
		d, err := decimal.NewFromString(s)
		if err != nil {
			return nil, err
		}
		m.AcceptedCapitals = append(m.AcceptedCapitals, d)
	}
	return m, nil
}

func (s *Store) PutMiner(ctx context.Context, m *invest.Miner) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return putMiner(ctx, s.db, m)
}

func putMiner(ctx context.Context, q queryer, m *invest.Miner) error {
	raw := make([]string, len(m.AcceptedCapitals))
	for i, c := range m.AcceptedCapitals {
		raw[i] = c.String()
	}
	capitalsJSON, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx, `
		INSERT INTO miners (name, accepted_capitals)
		VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET accepted_capitals = excluded.accepted_capitals`,
		m.Name, string(capitalsJSON))
	if err != nil {
		return fmt.Errorf("failed to put miner: %w", err)
	}
	return nil
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

// WithTx executes fn within a database transaction. If fn returns an error
// the transaction rolls back and none of its writes survive. The store lock
// is held for the duration, serializing concurrent settlement units against
// the same wallet.
func (s *Store) WithTx(ctx context.Context, fn func(invest.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&txView{tx: tx}); err != nil {
		return err
	}
	return tx.Commit()
}

// txView routes store calls through the open transaction.
type txView struct {
	tx *sql.Tx
}

var _ invest.Store = (*txView)(nil)

func (v *txView) GetWallet(ctx context.Context, id invest.WalletID) (*invest.Wallet, error) {
	return getWallet(ctx, v.tx, id)
}

func (v *txView) WalletByOwner(ctx context.Context, owner invest.InvestorID, currency string) (*invest.Wallet, error) {
	return walletByOwner(ctx, v.tx, owner, currency)
}

func (v *txView) WalletsByOwner(ctx context.Context, owner invest.InvestorID) ([]*invest.Wallet, error) {
	return walletsByOwner(ctx, v.tx, owner)
}

func (v *txView) PutWallet(ctx context.Context, w *invest.Wallet) error {
	return putWallet(ctx, v.tx, w)
}

func (v *txView) GetInvestment(ctx context.Context, id invest.InvestmentID) (*invest.Investment, error) {
	return getInvestment(ctx, v.tx, id)
}

func (v *txView) ActiveInvestmentsByInvestor(ctx context.Context, investor invest.InvestorID) ([]*invest.Investment, error) {
	return activeInvestmentsByInvestor(ctx, v.tx, investor)
}

func (v *txView) PutInvestment(ctx context.Context, inv *invest.Investment) error {
	return putInvestment(ctx, v.tx, inv)
}

func (v *txView) GetPayment(ctx context.Context, id invest.PaymentID) (*invest.Payment, error) {
	return getPayment(ctx, v.tx, id)
}

func (v *txView) PaymentsByInvestment(ctx context.Context, id invest.InvestmentID) ([]*invest.Payment, error) {
	return paymentsByInvestment(ctx, v.tx, id)
}

func (v *txView) PutPayment(ctx context.Context, p *invest.Payment) error {
	return putPayment(ctx, v.tx, p)
}

func (v *txView) MarkPaymentPaid(ctx context.Context, id invest.PaymentID) (bool, error) {
	return markPaymentPaid(ctx, v.tx, id)
}

func (v *txView) GetMiner(ctx context.Context, name string) (*invest.Miner, error) {
	return getMiner(ctx, v.tx, name)
}

func (v *txView) ListMiners(ctx context.Context) ([]*invest.Miner, error) {
	return listMiners(ctx, v.tx)
}

func (v *txView) PutMiner(ctx context.Context, m *invest.Miner) error {
	return putMiner(ctx, v.tx, m)
}
