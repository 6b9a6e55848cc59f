package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/warp/yield-engine/api"
	"github.com/warp/yield-engine/invest"
	"github.com/warp/yield-engine/invest/store"
	"github.com/warp/yield-engine/notify"
)

// =============================================================================
// TEST SETUP
// =============================================================================

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type apiFixture struct {
	t      *testing.T
	router http.Handler
	clock  *fakeClock
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	mem := store.NewTxMemory()
	clk := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}

	svc := invest.NewService(mem, mem, notify.NewLogger(zap.NewNop()), zap.NewNop(), invest.DefaultTerms())
	svc.Now = clk.Now

	ten, _ := decimal.NewFromString("10")
	twenty, _ := decimal.NewFromString("20")
	require.NoError(t, mem.PutMiner(context.Background(), &invest.Miner{
		Name:             "antminer-s9",
		AcceptedCapitals: []decimal.Decimal{ten, twenty},
	}))

	h := api.NewHandler(svc, zap.NewNop())
	return &apiFixture{t: t, router: api.NewRouter(h), clock: clk}
}

func (f *apiFixture) do(method, path string, body any) *httptest.ResponseRecorder {
	f.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(f.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func (f *apiFixture) deposit(owner, amount string) api.WalletDTO {
	f.t.Helper()
	rec := f.do(http.MethodPost, "/api/wallets", api.DepositRequest{
		Owner: owner, Currency: "USD", Amount: amount,
	})
	require.Equal(f.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[api.WalletDTO](f.t, rec)
}

func (f *apiFixture) invest(walletID, capital string) api.InvestmentDTO {
	f.t.Helper()
	rec := f.do(http.MethodPost, "/api/wallets/"+walletID+"/investments", api.InvestRequest{
		Miner: "antminer-s9", Capital: capital,
	})
	require.Equal(f.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[api.InvestmentDTO](f.t, rec)
}

// =============================================================================
// WALLETS
// =============================================================================

func TestDeposit_CreatesWallet(t *testing.T) {
	f := newAPIFixture(t)

	w := f.deposit("alice", "100")

	assert.NotEmpty(t, w.ID)
	assert.Equal(t, "alice", w.Owner)
	assert.Equal(t, "USD", w.Currency)
	assert.Equal(t, "100", w.Available)
	assert.Equal(t, "0", w.Holdings)
	assert.Equal(t, "100", w.Total)
}

func TestDeposit_Validation(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(http.MethodPost, "/api/wallets", api.DepositRequest{Currency: "USD", Amount: "10"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodPost, "/api/wallets", api.DepositRequest{Owner: "alice", Currency: "USD", Amount: "not-a-number"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodPost, "/api/wallets", api.DepositRequest{Owner: "alice", Currency: "USD", Amount: "-5"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotEmpty(t, decode[api.ErrorDTO](t, rec).Error)
}

func TestGetWallet_NotFound(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(http.MethodGet, "/api/wallets/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWithdraw_InsufficientAvailable(t *testing.T) {
	f := newAPIFixture(t)
	w := f.deposit("alice", "100")
	f.invest(w.ID, "10")

	rec := f.do(http.MethodPost, "/api/wallets/"+w.ID+"/withdrawals", api.WithdrawRequest{Amount: "95"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodPost, "/api/wallets/"+w.ID+"/withdrawals", api.WithdrawRequest{Amount: "50"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "40", decode[api.WalletDTO](t, rec).Available)
}

// =============================================================================
// INVESTMENTS
// =============================================================================

func TestInvest_CreatesInvestmentWithSchedule(t *testing.T) {
	f := newAPIFixture(t)
	w := f.deposit("alice", "100")

	inv := f.invest(w.ID, "10")

	assert.Equal(t, "10", inv.Capital)
	assert.Equal(t, "2.2", inv.Interest)
	assert.Equal(t, "12.2", inv.Total)
	assert.Equal(t, "active", inv.Status)
	assert.Nil(t, inv.LastPaidIndex)
	assert.Len(t, inv.Payments, 8)

	rec := f.do(http.MethodGet, "/api/wallets/"+w.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[api.WalletDTO](t, rec)
	assert.Equal(t, "12.2", got.Holdings)
	assert.Equal(t, "90", got.Available)
	assert.Equal(t, []string{inv.ID}, got.Investments)
}

func TestInvest_RejectsBadCapitalTier(t *testing.T) {
	f := newAPIFixture(t)
	w := f.deposit("alice", "100")

	rec := f.do(http.MethodPost, "/api/wallets/"+w.ID+"/investments", api.InvestRequest{
		Miner: "antminer-s9", Capital: "15",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodPost, "/api/wallets/"+w.ID+"/investments", api.InvestRequest{
		Miner: "no-such-rig", Capital: "10",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListPayments_ReturnsOrderedSchedule(t *testing.T) {
	f := newAPIFixture(t)
	w := f.deposit("alice", "100")
	inv := f.invest(w.ID, "10")

	rec := f.do(http.MethodGet, "/api/investments/"+inv.ID+"/payments", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	ps := decode[[]api.PaymentDTO](t, rec)
	require.Len(t, ps, 8)
	for i, p := range ps {
		assert.Equal(t, i, p.Index)
		assert.Equal(t, "1.525", p.Amount)
		assert.Equal(t, "on_queue", p.Status)
	}
}

// =============================================================================
// LAZY SETTLEMENT THROUGH THE API
// =============================================================================

func TestGetWallet_SettlesDueInstallments(t *testing.T) {
	// GIVEN: An investment whose first installment falls due
	// WHEN: The wallet is fetched over HTTP
	// THEN: The response already reflects the settlement credit

	f := newAPIFixture(t)
	w := f.deposit("alice", "100")
	inv := f.invest(w.ID, "10")

	f.clock.Advance(14*24*time.Hour + time.Hour)

	rec := f.do(http.MethodGet, "/api/wallets/"+w.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[api.WalletDTO](t, rec)
	assert.Equal(t, "91.525", got.Available)
	assert.Equal(t, "10.675", got.Holdings)
	assert.Equal(t, "102.2", got.Total)

	rec = f.do(http.MethodGet, "/api/investments/"+inv.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	fresh := decode[api.InvestmentDTO](t, rec)
	require.NotNil(t, fresh.LastPaidIndex)
	assert.Equal(t, 0, *fresh.LastPaidIndex)
}

func TestReconcileEndpoint_SettlesEverythingDue(t *testing.T) {
	f := newAPIFixture(t)
	w := f.deposit("alice", "100")
	inv := f.invest(w.ID, "10")

	f.clock.Advance(8 * 15 * 24 * time.Hour)

	rec := f.do(http.MethodPost, "/api/investors/alice/reconcile", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(http.MethodGet, "/api/investments/"+inv.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "completed", decode[api.InvestmentDTO](t, rec).Status)

	rec = f.do(http.MethodGet, "/api/investors/alice/wallets", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	wallets := decode[[]api.WalletDTO](t, rec)
	require.Len(t, wallets, 1)
	assert.Equal(t, w.ID, wallets[0].ID)
	assert.Equal(t, "102.2", wallets[0].Available)
	assert.Equal(t, "0", wallets[0].Holdings)
}

// =============================================================================
// MINERS
// =============================================================================

func TestMinerCatalogEndpoints(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(http.MethodPost, "/api/miners", api.CreateMinerRequest{
		Name:             "whatsminer-m30",
		AcceptedCapitals: []string{"100", "250", "500"},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(http.MethodGet, "/api/miners/whatsminer-m30", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	m := decode[api.MinerDTO](t, rec)
	assert.Equal(t, []string{"100", "250", "500"}, m.AcceptedCapitals)

	rec = f.do(http.MethodGet, "/api/miners", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]api.MinerDTO](t, rec), 2)

	rec = f.do(http.MethodGet, "/api/miners/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(http.MethodPost, "/api/miners", api.CreateMinerRequest{Name: "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodPost, "/api/miners", api.CreateMinerRequest{
		Name: "x", AcceptedCapitals: []string{"abc"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUnknownRoute(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(http.MethodGet, "/api/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
