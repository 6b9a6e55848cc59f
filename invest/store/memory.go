// Package store provides in-memory Store implementations for tests and dev.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/warp/yield-engine/invest"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory keeps every entity in maps guarded by one mutex. All reads return
// deep copies so callers never alias store-internal state; that is what
// makes the snapshot rollback in TxMemory sound.
type Memory struct {
	mu          sync.RWMutex
	wallets     map[invest.WalletID]*invest.Wallet
	investments map[invest.InvestmentID]*invest.Investment
	payments    map[invest.PaymentID]*invest.Payment
	miners      map[string]*invest.Miner
}

func NewMemory() *Memory {
	return &Memory{
		wallets:     make(map[invest.WalletID]*invest.Wallet),
		investments: make(map[invest.InvestmentID]*invest.Investment),
		payments:    make(map[invest.PaymentID]*invest.Payment),
		miners:      make(map[string]*invest.Miner),
	}
}

var _ invest.Store = (*Memory)(nil)

// -----------------------------------------------------------------------------
// Wallets
// -----------------------------------------------------------------------------

func (m *Memory) GetWallet(_ context.Context, id invest.WalletID) (*invest.Wallet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getWalletLocked(id)
}

func (m *Memory) getWalletLocked(id invest.WalletID) (*invest.Wallet, error) {
	w, ok := m.wallets[id]
	if !ok {
		return nil, invest.ErrWalletNotFound
	}
	return copyWallet(w), nil
}

func (m *Memory) WalletByOwner(_ context.Context, owner invest.InvestorID, currency string) (*invest.Wallet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.walletByOwnerLocked(owner, currency)
}

func (m *Memory) walletByOwnerLocked(owner invest.InvestorID, currency string) (*invest.Wallet, error) {
	for _, w := range m.wallets {
		if w.Owner == owner && w.Currency == currency {
			return copyWallet(w), nil
		}
	}
	return nil, invest.ErrWalletNotFound
}

func (m *Memory) WalletsByOwner(_ context.Context, owner invest.InvestorID) ([]*invest.Wallet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.walletsByOwnerLocked(owner), nil
}

func (m *Memory) walletsByOwnerLocked(owner invest.InvestorID) []*invest.Wallet {
	var out []*invest.Wallet
	for _, w := range m.wallets {
		if w.Owner == owner {
			out = append(out, copyWallet(w))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (m *Memory) PutWallet(_ context.Context, w *invest.Wallet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.wallets[w.ID] = copyWallet(w)
	return nil
}

// -----------------------------------------------------------------------------
// Investments
// -----------------------------------------------------------------------------

func (m *Memory) GetInvestment(_ context.Context, id invest.InvestmentID) (*invest.Investment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getInvestmentLocked(id)
}

func (m *Memory) getInvestmentLocked(id invest.InvestmentID) (*invest.Investment, error) {
	inv, ok := m.investments[id]
	if !ok {
		return nil, invest.ErrInvestmentNotFound
	}
	return copyInvestment(inv), nil
}

func (m *Memory) ActiveInvestmentsByInvestor(_ context.Context, investor invest.InvestorID) ([]*invest.Investment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.activeInvestmentsLocked(investor), nil
}

func (m *Memory) activeInvestmentsLocked(investor invest.InvestorID) []*invest.Investment {
	var out []*invest.Investment
	for _, inv := range m.investments {
		if inv.Investor == investor && inv.Status == invest.InvestmentActive {
			out = append(out, copyInvestment(inv))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (m *Memory) PutInvestment(_ context.Context, inv *invest.Investment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.investments[inv.ID] = copyInvestment(inv)
	return nil
}

// -----------------------------------------------------------------------------
// Payments
// -----------------------------------------------------------------------------

func (m *Memory) GetPayment(_ context.Context, id invest.PaymentID) (*invest.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getPaymentLocked(id)
}

func (m *Memory) getPaymentLocked(id invest.PaymentID) (*invest.Payment, error) {
	p, ok := m.payments[id]
	if !ok {
		return nil, invest.ErrPaymentNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *Memory) PaymentsByInvestment(_ context.Context, id invest.InvestmentID) ([]*invest.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.paymentsByInvestmentLocked(id), nil
}

func (m *Memory) paymentsByInvestmentLocked(id invest.InvestmentID) []*invest.Payment {
	var out []*invest.Payment
	for _, p := range m.payments {
		if p.InvestmentID == id {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

func (m *Memory) PutPayment(_ context.Context, p *invest.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.payments[p.ID] = &cp
	return nil
}

// MarkPaymentPaid is the status guard: only one caller ever observes the
// on_queue -> paid transition.
func (m *Memory) MarkPaymentPaid(_ context.Context, id invest.PaymentID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.markPaymentPaidLocked(id)
}

func (m *Memory) markPaymentPaidLocked(id invest.PaymentID) (bool, error) {
	p, ok := m.payments[id]
	if !ok {
		return false, invest.ErrPaymentNotFound
	}
	if p.Status != invest.PaymentOnQueue {
		return false, nil
	}
	p.Status = invest.PaymentPaid
	return true, nil
}

// -----------------------------------------------------------------------------
// Miners
// -----------------------------------------------------------------------------

func (m *Memory) GetMiner(_ context.Context, name string) (*invest.Miner, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getMinerLocked(name)
}

func (m *Memory) getMinerLocked(name string) (*invest.Miner, error) {
	mn, ok := m.miners[name]
	if !ok {
		return nil, invest.ErrMinerNotFound
	}
	return copyMiner(mn), nil
}

func (m *Memory) ListMiners(_ context.Context) ([]*invest.Miner, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listMinersLocked(), nil
}

func (m *Memory) listMinersLocked() []*invest.Miner {
	var out []*invest.Miner
	for _, mn := range m.miners {
		out = append(out, copyMiner(mn))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (m *Memory) PutMiner(_ context.Context, mn *invest.Miner) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.miners[mn.Name] = copyMiner(mn)
	return nil
}

// =============================================================================
// TRANSACTIONAL MEMORY STORE
// =============================================================================

// TxMemory wraps Memory with transaction support.
type TxMemory struct {
	*Memory
}

func NewTxMemory() *TxMemory {
	return &TxMemory{Memory: NewMemory()}
}

var _ invest.TxStore = (*TxMemory)(nil)

// WithTx executes fn within a transaction, simulated with a snapshot +
// rollback on error. Holding the write lock for the duration also serializes
// concurrent settlements against the same wallet, matching the row-level
// locking a SQL store would provide.
func (tm *TxMemory) WithTx(_ context.Context, fn func(invest.Store) error) error {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	snapshot := tm.snapshot()
	if err := fn(&txMemoryView{parent: tm.Memory}); err != nil {
		tm.restore(snapshot)
		return err
	}
	return nil
}

type memorySnapshot struct {
	wallets     map[invest.WalletID]*invest.Wallet
	investments map[invest.InvestmentID]*invest.Investment
	payments    map[invest.PaymentID]*invest.Payment
	miners      map[string]*invest.Miner
}

func (tm *TxMemory) snapshot() memorySnapshot {
	s := memorySnapshot{
		wallets:     make(map[invest.WalletID]*invest.Wallet, len(tm.wallets)),
		investments: make(map[invest.InvestmentID]*invest.Investment, len(tm.investments)),
		payments:    make(map[invest.PaymentID]*invest.Payment, len(tm.payments)),
		miners:      make(map[string]*invest.Miner, len(tm.miners)),
	}
	for k, v := range tm.wallets {
		s.wallets[k] = copyWallet(v)
	}
	for k, v := range tm.investments {
		s.investments[k] = copyInvestment(v)
	}
	for k, v := range tm.payments {
		cp := *v
		s.payments[k] = &cp
	}
	for k, v := range tm.miners {
		s.miners[k] = copyMiner(v)
	}
	return s
}

func (tm *TxMemory) restore(s memorySnapshot) {
	tm.wallets = s.wallets
	tm.investments = s.investments
	tm.payments = s.payments
	tm.miners = s.miners
}

// txMemoryView routes store calls to the parent's unlocked internals while
// WithTx holds the lock.
type txMemoryView struct {
	parent *Memory
}

func (tv *txMemoryView) GetWallet(_ context.Context, id invest.WalletID) (*invest.Wallet, error) {
	return tv.parent.getWalletLocked(id)
}

func (tv *txMemoryView) WalletByOwner(_ context.Context, owner invest.InvestorID, currency string) (*invest.Wallet, error) {
	return tv.parent.walletByOwnerLocked(owner, currency)
}

func (tv *txMemoryView) WalletsByOwner(_ context.Context, owner invest.InvestorID) ([]*invest.Wallet, error) {
	return tv.parent.walletsByOwnerLocked(owner), nil
}

func (tv *txMemoryView) PutWallet(_ context.Context, w *invest.Wallet) error {
	tv.parent.wallets[w.ID] = copyWallet(w)
	return nil
}

func (tv *txMemoryView) GetInvestment(_ context.Context, id invest.InvestmentID) (*invest.Investment, error) {
	return tv.parent.getInvestmentLocked(id)
}

func (tv *txMemoryView) ActiveInvestmentsByInvestor(_ context.Context, investor invest.InvestorID) ([]*invest.Investment, error) {
	return tv.parent.activeInvestmentsLocked(investor), nil
}

func (tv *txMemoryView) PutInvestment(_ context.Context, inv *invest.Investment) error {
	tv.parent.investments[inv.ID] = copyInvestment(inv)
	return nil
}

func (tv *txMemoryView) GetPayment(_ context.Context, id invest.PaymentID) (*invest.Payment, error) {
	return tv.parent.getPaymentLocked(id)
}

func (tv *txMemoryView) PaymentsByInvestment(_ context.Context, id invest.InvestmentID) ([]*invest.Payment, error) {
	return tv.parent.paymentsByInvestmentLocked(id), nil
}

func (tv *txMemoryView) PutPayment(_ context.Context, p *invest.Payment) error {
	cp := *p
	tv.parent.payments[p.ID] = &cp
	return nil
}

func (tv *txMemoryView) MarkPaymentPaid(_ context.Context, id invest.PaymentID) (bool, error) {
	return tv.parent.markPaymentPaidLocked(id)
}

func (tv *txMemoryView) GetMiner(_ context.Context, name string) (*invest.Miner, error) {
	return tv.parent.getMinerLocked(name)
}

func (tv *txMemoryView) ListMiners(_ context.Context) ([]*invest.Miner, error) {
	return tv.parent.listMinersLocked(), nil
}

func (tv *txMemoryView) PutMiner(_ context.Context, mn *invest.Miner) error {
	tv.parent.miners[mn.Name] = copyMiner(mn)
	return nil
}

// =============================================================================
// DEEP COPIES
// =============================================================================

func copyWallet(w *invest.Wallet) *invest.Wallet {
	cp := *w
	cp.Investments = append([]invest.InvestmentID(nil), w.Investments...)
	return &cp
}

func copyInvestment(inv *invest.Investment) *invest.Investment {
	cp := *inv
	cp.Payments = append([]invest.PaymentID(nil), inv.Payments...)
	if inv.LastPaidIndex != nil {
		idx := *inv.LastPaidIndex
		cp.LastPaidIndex = &idx
	}
	return &cp
}

func copyMiner(m *invest.Miner) *invest.Miner {
	cp := *m
	cp.AcceptedCapitals = append([]decimal.Decimal(nil), m.AcceptedCapitals...)
	return &cp
}
