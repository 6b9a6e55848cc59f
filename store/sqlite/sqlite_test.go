package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/yield-engine/invest"
	"github.com/warp/yield-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	st, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func testWallet(owner invest.InvestorID) *invest.Wallet {
	now := time.Now().UTC().Truncate(time.Second)
	w := invest.NewWallet(owner, "USD", now)
	w.Breakdown = invest.Breakdown{
		Holdings:  dec("12.2"),
		Available: dec("90"),
		Total:     dec("102.2"),
	}
	return w
}

func testInvestment(w *invest.Wallet) *invest.Investment {
	now := time.Now().UTC().Truncate(time.Second)
	return &invest.Investment{
		ID:           invest.NewInvestmentID(),
		Investor:     w.Owner,
		WalletID:     w.ID,
		Miner:        "antminer-s9",
		Currency:     w.Currency,
		Capital:      dec("10"),
		Interest:     dec("2.2"),
		Total:        dec("12.2"),
		Status:       invest.InvestmentActive,
		MaturityDate: now.Add(8 * 14 * 24 * time.Hour),
		CreatedAt:    now,
	}
}

// =============================================================================
// WALLETS
// =============================================================================

func TestWalletRoundTrip(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	w := testWallet("alice")
	require.NoError(t, st.PutWallet(ctx, w))

	got, err := st.GetWallet(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, w.ID, got.ID)
	assert.Equal(t, invest.InvestorID("alice"), got.Owner)
	assert.Equal(t, "USD", got.Currency)
	assert.True(t, got.Breakdown.Holdings.Equal(dec("12.2")))
	assert.True(t, got.Breakdown.Available.Equal(dec("90")))
	assert.True(t, got.Breakdown.Total.Equal(dec("102.2")))
	assert.True(t, got.Breakdown.Consistent())
}

func TestWalletUpsertByID(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	w := testWallet("alice")
	require.NoError(t, st.PutWallet(ctx, w))

	w.Breakdown.Available = dec("50")
	w.Breakdown.Total = dec("62.2")
	require.NoError(t, st.PutWallet(ctx, w))

	got, err := st.GetWallet(ctx, w.ID)
	require.NoError(t, err)
	assert.True(t, got.Breakdown.Available.Equal(dec("50")))
}

func TestWalletByOwnerAndCurrency(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	usd := testWallet("alice")
	require.NoError(t, st.PutWallet(ctx, usd))

	eur := invest.NewWallet("alice", "EUR", time.Now().UTC())
	require.NoError(t, st.PutWallet(ctx, eur))

	got, err := st.WalletByOwner(ctx, "alice", "EUR")
	require.NoError(t, err)
	assert.Equal(t, eur.ID, got.ID)

	_, err = st.WalletByOwner(ctx, "alice", "GBP")
	assert.ErrorIs(t, err, invest.ErrWalletNotFound)

	all, err := st.WalletsByOwner(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestWalletNotFound(t *testing.T) {
	st := newTestStore(t)

	_, err := st.GetWallet(context.Background(), invest.WalletID("missing"))
	assert.ErrorIs(t, err, invest.ErrWalletNotFound)
}

func TestWalletInvestmentListDerived(t *testing.T) {
	// The wallet's investment list comes from the investments table, ordered
	// by creation time.
	st := newTestStore(t)
	ctx := context.Background()

	w := testWallet("alice")
	require.NoError(t, st.PutWallet(ctx, w))

	first := testInvestment(w)
	first.CreatedAt = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	second := testInvestment(w)
	second.CreatedAt = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	require.NoError(t, st.PutInvestment(ctx, second))
	require.NoError(t, st.PutInvestment(ctx, first))

	got, err := st.GetWallet(ctx, w.ID)
	require.NoError(t, err)
	require.Len(t, got.Investments, 2)
	assert.Equal(t, first.ID, got.Investments[0])
	assert.Equal(t, second.ID, got.Investments[1])
}

// =============================================================================
// INVESTMENTS
// =============================================================================

func TestInvestmentRoundTrip(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	w := testWallet("alice")
	require.NoError(t, st.PutWallet(ctx, w))
	inv := testInvestment(w)
	require.NoError(t, st.PutInvestment(ctx, inv))

	got, err := st.GetInvestment(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, inv.ID, got.ID)
	assert.Equal(t, "antminer-s9", got.Miner)
	assert.True(t, got.Capital.Equal(dec("10")))
	assert.True(t, got.Interest.Equal(dec("2.2")))
	assert.Equal(t, invest.InvestmentActive, got.Status)
	assert.Nil(t, got.LastPaidIndex)
	assert.True(t, got.MaturityDate.Equal(inv.MaturityDate))
}

func TestInvestmentLastPaidIndexRoundTrip(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	w := testWallet("alice")
	inv := testInvestment(w)
	idx := 3
	inv.LastPaidIndex = &idx
	require.NoError(t, st.PutInvestment(ctx, inv))

	got, err := st.GetInvestment(ctx, inv.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastPaidIndex)
	assert.Equal(t, 3, *got.LastPaidIndex)
}

func TestActiveInvestmentsFilter(t *testing.T) {
	// Completed and foreign investments are excluded from the reconcile set.
	st := newTestStore(t)
	ctx := context.Background()

	w := testWallet("alice")
	active := testInvestment(w)
	require.NoError(t, st.PutInvestment(ctx, active))

	done := testInvestment(w)
	done.Status = invest.InvestmentCompleted
	require.NoError(t, st.PutInvestment(ctx, done))

	other := testWallet("bob")
	foreign := testInvestment(other)
	require.NoError(t, st.PutInvestment(ctx, foreign))

	got, err := st.ActiveInvestmentsByInvestor(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, active.ID, got[0].ID)
}

// =============================================================================
// PAYMENTS
// =============================================================================

func putSchedule(t *testing.T, st *sqlite.Store, inv *invest.Investment, n int) []*invest.Payment {
	t.Helper()
	ctx := context.Background()
	var out []*invest.Payment
	for i := 0; i < n; i++ {
		p := &invest.Payment{
			ID:           invest.NewPaymentID(),
			InvestmentID: inv.ID,
			WalletID:     inv.WalletID,
			Index:        i,
			Amount:       dec("1.525"),
			Date:         inv.CreatedAt.Add(time.Duration(i+1) * 14 * 24 * time.Hour),
			Status:       invest.PaymentOnQueue,
		}
		require.NoError(t, st.PutPayment(ctx, p))
		out = append(out, p)
	}
	return out
}

func TestPaymentsByInvestmentOrdering(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	inv := testInvestment(testWallet("alice"))
	putSchedule(t, st, inv, 8)

	got, err := st.PaymentsByInvestment(ctx, inv.ID)
	require.NoError(t, err)
	require.Len(t, got, 8)
	for i, p := range got {
		assert.Equal(t, i, p.Index)
		assert.True(t, p.Amount.Equal(dec("1.525")))
	}
}

func TestMarkPaymentPaidGuard(t *testing.T) {
	// GIVEN: An on_queue payment
	// WHEN: Two sequential guard attempts run
	// THEN: Only the first wins; a missing ID errors

	st := newTestStore(t)
	ctx := context.Background()

	inv := testInvestment(testWallet("alice"))
	ps := putSchedule(t, st, inv, 1)

	won, err := st.MarkPaymentPaid(ctx, ps[0].ID)
	require.NoError(t, err)
	assert.True(t, won)

	got, err := st.GetPayment(ctx, ps[0].ID)
	require.NoError(t, err)
	assert.Equal(t, invest.PaymentPaid, got.Status)

	won, err = st.MarkPaymentPaid(ctx, ps[0].ID)
	require.NoError(t, err)
	assert.False(t, won)

	_, err = st.MarkPaymentPaid(ctx, invest.PaymentID("missing"))
	assert.ErrorIs(t, err, invest.ErrPaymentNotFound)
}

// =============================================================================
// MINERS
// =============================================================================

func TestMinerRoundTrip(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	m := &invest.Miner{
		Name:             "antminer-s19",
		AcceptedCapitals: []decimal.Decimal{dec("50"), dec("100"), dec("200")},
	}
	require.NoError(t, st.PutMiner(ctx, m))

	got, err := st.GetMiner(ctx, "antminer-s19")
	require.NoError(t, err)
	require.Len(t, got.AcceptedCapitals, 3)
	assert.True(t, got.Accepts(dec("100")))
	assert.False(t, got.Accepts(dec("75")))

	_, err = st.GetMiner(ctx, "missing")
	assert.ErrorIs(t, err, invest.ErrMinerNotFound)

	all, err := st.ListMiners(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

func TestWithTxCommits(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	w := testWallet("alice")
	err := st.WithTx(ctx, func(s invest.Store) error {
		return s.PutWallet(ctx, w)
	})
	require.NoError(t, err)

	got, err := st.GetWallet(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, w.ID, got.ID)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	// GIVEN: A committed wallet and schedule
	// WHEN: A transaction flips a payment, mutates the wallet, then fails
	// THEN: Neither mutation survives

	st := newTestStore(t)
	ctx := context.Background()

	w := testWallet("alice")
	require.NoError(t, st.PutWallet(ctx, w))
	inv := testInvestment(w)
	require.NoError(t, st.PutInvestment(ctx, inv))
	ps := putSchedule(t, st, inv, 1)

	boom := errors.New("boom")
	err := st.WithTx(ctx, func(s invest.Store) error {
		won, err := s.MarkPaymentPaid(ctx, ps[0].ID)
		if err != nil {
			return err
		}
		if !won {
			return invest.ErrSettlementConflict
		}
		w.Breakdown.Available = dec("0")
		if err := s.PutWallet(ctx, w); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	gotP, err := st.GetPayment(ctx, ps[0].ID)
	require.NoError(t, err)
	assert.Equal(t, invest.PaymentOnQueue, gotP.Status)

	gotW, err := st.GetWallet(ctx, w.ID)
	require.NoError(t, err)
	assert.True(t, gotW.Breakdown.Available.Equal(dec("90")))
}
