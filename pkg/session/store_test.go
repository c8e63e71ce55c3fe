package session

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mock-swap/pkg/history"
	"mock-swap/pkg/observability"
	"mock-swap/pkg/quote"
	"mock-swap/pkg/swap"
	"mock-swap/pkg/types"
	"mock-swap/pkg/wallet"
)

// stubExecutor settles immediately, or once release is closed when set
type stubExecutor struct {
	release chan struct{}
	err     error
	calls   atomic.Int32
	last    atomic.Pointer[types.SwapRequest]
}

func (e *stubExecutor) Execute(ctx context.Context, req *types.SwapRequest) (*types.SwapReceipt, error) {
	e.calls.Add(1)
	e.last.Store(req)

	if e.release != nil {
		select {
		case <-e.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if e.err != nil {
		return nil, e.err
	}
	return &types.SwapReceipt{
		TxHash:      "0xfeed",
		AmountIn:    req.Amount,
		AmountOut:   req.ExpectedOutput,
		SourceToken: req.SourceToken,
		DestToken:   req.DestToken,
		CompletedAt: time.Now(),
	}, nil
}

// gatedConnector blocks Connect until gate is closed
type gatedConnector struct {
	gate        chan struct{}
	disconnects atomic.Int32
}

func (c *gatedConnector) Connect(ctx context.Context) (string, error) {
	select {
	case <-c.gate:
		return wallet.DefaultAddress, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (c *gatedConnector) Disconnect() {
	c.disconnects.Add(1)
}

func newTestStore(t *testing.T, exec swap.Executor, mutate ...func(*Options)) *Store {
	t.Helper()

	connector, err := wallet.NewMockConnector(wallet.DefaultAddress, false)
	require.NoError(t, err)

	opts := Options{
		Connector: connector,
		Executor:  exec,
		Metrics:   observability.NewMetrics("", nil),
		Logger:    log.New(io.Discard),
	}
	for _, m := range mutate {
		m(&opts)
	}

	store, err := NewStore(opts)
	require.NoError(t, err)
	return store
}

// readyStore returns a connected store with "1" ETH entered
func readyStore(t *testing.T, exec swap.Executor, mutate ...func(*Options)) *Store {
	t.Helper()
	store := newTestStore(t, exec, mutate...)
	require.NoError(t, store.Connect(context.Background()))
	require.NoError(t, store.SetFromAmount("1"))
	return store
}

func waitOutcome(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("swap did not finish")
		return nil
	}
}

func TestNewStore_Defaults(t *testing.T) {
	store := newTestStore(t, &stubExecutor{})

	s := store.Snapshot()
	assert.Equal(t, "ETH", s.FromToken.Symbol)
	assert.Equal(t, "USDC", s.ToToken.Symbol)
	assert.Equal(t, TaskIdle, s.Task)
	assert.NotNil(t, store.Catalog())
	assert.NotNil(t, store.Ledger())
}

func TestNewStore_Validation(t *testing.T) {
	_, err := NewStore(Options{Executor: &stubExecutor{}})
	assert.Error(t, err)

	connector, err := wallet.NewMockConnector("", false)
	require.NoError(t, err)

	_, err = NewStore(Options{Connector: connector})
	assert.Error(t, err)

	_, err = NewStore(Options{Connector: connector, Executor: &stubExecutor{}, DefaultFrom: "DOGE"})
	assert.Error(t, err)

	_, err = NewStore(Options{
		Connector:       connector,
		Executor:        &stubExecutor{},
		DefaultFrom:     "ETH",
		DefaultTo:       "eth",
		SameTokenPolicy: RejectSameToken,
	})
	assert.True(t, errors.Is(err, ErrSameToken))
}

func TestStore_ConnectAndDisconnect(t *testing.T) {
	store := newTestStore(t, &stubExecutor{})

	require.NoError(t, store.Connect(context.Background()))
	s := store.Snapshot()
	assert.True(t, s.WalletConnected)
	assert.False(t, s.WalletConnecting)
	assert.Equal(t, "0x1234000000000000000000000000000000005678", s.WalletAddress)

	// connecting again is a no-op
	require.NoError(t, store.Connect(context.Background()))

	store.Disconnect()
	store.Disconnect()
	s = store.Snapshot()
	assert.False(t, s.WalletConnected)
	assert.Empty(t, s.WalletAddress)
}

func TestStore_ConnectRejected(t *testing.T) {
	metrics := observability.NewMetrics("", nil)
	store := newTestStore(t, &stubExecutor{}, func(o *Options) {
		c, err := wallet.NewMockConnector("", true)
		require.NoError(t, err)
		o.Connector = c
		o.Metrics = metrics
	})

	err := store.Connect(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, wallet.ErrWalletConnectionFailed))

	s := store.Snapshot()
	assert.False(t, s.WalletConnected)
	assert.False(t, s.WalletConnecting)
	assert.NotEmpty(t, s.WalletError)
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.WalletConnections.WithLabelValues("failed")))
}

func TestStore_DisconnectWhileConnecting(t *testing.T) {
	connector := &gatedConnector{gate: make(chan struct{})}
	store := newTestStore(t, &stubExecutor{}, func(o *Options) { o.Connector = connector })

	result := make(chan error, 1)
	go func() { result <- store.Connect(context.Background()) }()

	require.Eventually(t, func() bool { return store.Snapshot().WalletConnecting }, time.Second, time.Millisecond)

	store.Disconnect()
	close(connector.gate)

	require.NoError(t, <-result)
	s := store.Snapshot()
	assert.False(t, s.WalletConnected)
	assert.False(t, s.WalletConnecting)
	assert.Equal(t, int32(2), connector.disconnects.Load())
}

func TestStore_FormTransitions(t *testing.T) {
	store := newTestStore(t, &stubExecutor{})

	require.NoError(t, store.SetFromAmount("2"))
	store.OpenSelector(SelectorFrom)
	assert.Equal(t, SelectorFrom, store.Snapshot().ActiveSelector)

	require.NoError(t, store.Pick("wbtc"))
	store.OpenSelector(SelectorTo)
	require.NoError(t, store.Pick("UNI"))

	s := store.Snapshot()
	assert.Equal(t, SelectorNone, s.ActiveSelector)
	assert.Equal(t, "10236.686391", s.ToAmount)

	err := store.SelectToken(SelectorTo, "DOGE")
	assert.Error(t, err)

	err = store.Pick("ETH")
	assert.Error(t, err, "no picker open")

	store.OpenSelector(SelectorTo)
	store.CloseSelector()
	assert.Equal(t, SelectorNone, store.Snapshot().ActiveSelector)

	require.NoError(t, store.Invert())
	s = store.Snapshot()
	assert.Equal(t, "UNI", s.FromToken.Symbol)
	assert.Equal(t, "10236.686391", s.FromAmount)
	assert.Equal(t, "2.000000", s.ToAmount)

	assert.Error(t, store.SetFromAmount("ten"))
	assert.Equal(t, "10236.686391", store.Snapshot().FromAmount)

	store.ToggleSettings()
	assert.True(t, store.Snapshot().SettingsOpen)

	applied := store.SetSlippage(decimal.RequireFromString("0.05"))
	assert.True(t, applied.Equal(decimal.RequireFromString("0.1")))
	assert.True(t, store.Snapshot().Slippage.Equal(MinSlippage))
}

func TestStore_SubmitGuardIsNoop(t *testing.T) {
	exec := &stubExecutor{}
	store := newTestStore(t, exec)

	before := store.Snapshot()
	_, done, err := store.Submit(context.Background())
	assert.Nil(t, done)
	assert.True(t, errors.Is(err, ErrNotReady))
	assert.Equal(t, before, store.Snapshot())

	require.NoError(t, store.Connect(context.Background()))
	_, _, err = store.Submit(context.Background())
	assert.True(t, errors.Is(err, ErrNotReady))

	assert.Equal(t, int32(0), exec.calls.Load())
	assert.Empty(t, store.Ledger().List())
}

func TestStore_SubmitSuccess(t *testing.T) {
	metrics := observability.NewMetrics("", nil)
	exec := &stubExecutor{release: make(chan struct{})}
	store := readyStore(t, exec, func(o *Options) { o.Metrics = metrics })

	id, done, err := store.Submit(context.Background())
	require.NoError(t, err)

	s := store.Snapshot()
	assert.True(t, s.IsSwapping())
	assert.Equal(t, "Swapping…", Button(s).Label)
	assert.Equal(t, id, s.LastSwapID)

	// a second submit while running is refused
	_, _, err = store.Submit(context.Background())
	assert.True(t, errors.Is(err, ErrSwapInProgress))
	assert.True(t, errors.Is(store.Invert(), ErrSwapInProgress))

	close(exec.release)
	require.NoError(t, waitOutcome(t, done))

	s = store.Snapshot()
	assert.False(t, s.IsSwapping())
	assert.Equal(t, TaskSucceeded, s.Task)
	assert.Equal(t, "", s.FromAmount)
	assert.Equal(t, "", s.ToAmount)
	assert.Equal(t, int32(1), exec.calls.Load())

	req := exec.last.Load()
	require.NotNil(t, req)
	assert.Equal(t, "1", req.Amount)
	assert.Equal(t, "2340.500000", req.ExpectedOutput)
	assert.Equal(t, "0.5", req.Slippage)

	entry, err := store.Ledger().Get(s.LastSwapID)
	require.NoError(t, err)
	assert.Equal(t, history.ExecutionCompleted, entry.Status)
	assert.Equal(t, "0xfeed", entry.TxHash)
	assert.Equal(t, "2340.500000", entry.Rate)

	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.SwapOutcomes.WithLabelValues("succeeded")))
	assert.Equal(t, float64(0), testutil.ToFloat64(metrics.SwapsInFlight))

	// editing the form clears the finished status
	require.NoError(t, store.SetFromAmount("3"))
	assert.Equal(t, TaskIdle, store.Snapshot().Task)
}

func TestStore_SubmitReturnsOwnLedgerID(t *testing.T) {
	store := readyStore(t, &stubExecutor{})

	first, done, err := store.Submit(context.Background())
	require.NoError(t, err)
	require.NoError(t, waitOutcome(t, done))

	// a second swap settles before the first ID is looked up
	require.NoError(t, store.SetFromAmount("2"))
	second, done, err := store.Submit(context.Background())
	require.NoError(t, err)
	require.NoError(t, waitOutcome(t, done))

	assert.NotEqual(t, first, second)
	assert.Equal(t, second, store.Snapshot().LastSwapID)

	entry, err := store.Ledger().Get(first)
	require.NoError(t, err)
	assert.Equal(t, "1", entry.AmountIn)
	entry, err = store.Ledger().Get(second)
	require.NoError(t, err)
	assert.Equal(t, "2", entry.AmountIn)
}

func TestStore_SubmitFailure(t *testing.T) {
	exec := &stubExecutor{err: errors.New("pool drained")}
	store := readyStore(t, exec)

	_, done, err := store.Submit(context.Background())
	require.NoError(t, err)

	err = waitOutcome(t, done)
	require.Error(t, err)
	assert.True(t, errors.Is(err, swap.ErrSwapExecutionFailed))

	s := store.Snapshot()
	assert.Equal(t, TaskFailed, s.Task)
	assert.Contains(t, s.TaskError, "pool drained")
	assert.Equal(t, "1", s.FromAmount)
	assert.Equal(t, "2340.500000", s.ToAmount)
	assert.Equal(t, "Swap", Button(s).Label)

	entry, err := store.Ledger().Get(s.LastSwapID)
	require.NoError(t, err)
	assert.Equal(t, history.ExecutionFailed, entry.Status)
}

func TestStore_SubmitTimeout(t *testing.T) {
	exec := &stubExecutor{release: make(chan struct{})}
	store := readyStore(t, exec, func(o *Options) { o.SwapTimeout = 20 * time.Millisecond })

	_, done, err := store.Submit(context.Background())
	require.NoError(t, err)

	err = waitOutcome(t, done)
	assert.True(t, errors.Is(err, swap.ErrSwapExecutionFailed))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Equal(t, TaskFailed, store.Snapshot().Task)
}

func TestStore_SubmitOutlivesRequestContext(t *testing.T) {
	exec := &stubExecutor{release: make(chan struct{})}
	store := readyStore(t, exec)

	ctx, cancel := context.WithCancel(context.Background())
	_, done, err := store.Submit(ctx)
	require.NoError(t, err)
	cancel()

	close(exec.release)
	require.NoError(t, waitOutcome(t, done))
}

func TestStore_Cancel(t *testing.T) {
	assert.False(t, newTestStore(t, &stubExecutor{}).Cancel())

	exec := &stubExecutor{release: make(chan struct{})}
	store := readyStore(t, exec)

	_, done, err := store.Submit(context.Background())
	require.NoError(t, err)
	assert.True(t, store.Cancel())

	err = waitOutcome(t, done)
	assert.True(t, errors.Is(err, ErrSwapCancelled))

	s := store.Snapshot()
	assert.Equal(t, TaskIdle, s.Task)
	assert.False(t, s.IsSwapping())
	assert.Equal(t, "1", s.FromAmount)

	entry, err := store.Ledger().Get(s.LastSwapID)
	require.NoError(t, err)
	assert.Equal(t, history.ExecutionCancelled, entry.Status)
}

func TestStore_DisconnectCancelsSwap(t *testing.T) {
	exec := &stubExecutor{release: make(chan struct{})}
	store := readyStore(t, exec)

	_, done, err := store.Submit(context.Background())
	require.NoError(t, err)

	store.Disconnect()
	assert.True(t, errors.Is(waitOutcome(t, done), ErrSwapCancelled))

	s := store.Snapshot()
	assert.False(t, s.WalletConnected)
	assert.Equal(t, TaskIdle, s.Task)
	assert.Equal(t, "Connect Wallet", Button(s).Label)
}

func TestStore_Subscribe(t *testing.T) {
	store := newTestStore(t, &stubExecutor{})

	updates, unsubscribe := store.Subscribe()
	first := <-updates
	assert.Equal(t, store.Snapshot(), first)

	require.NoError(t, store.SetFromAmount("1"))
	require.NoError(t, store.Invert())

	next := <-updates
	assert.Equal(t, "2340.500000", next.ToAmount)
	next = <-updates
	assert.Equal(t, "USDC", next.FromToken.Symbol)

	unsubscribe()
	unsubscribe()
	_, open := <-updates
	assert.False(t, open)

	// publishing after unsubscribe must not panic
	require.NoError(t, store.SetFromAmount("2"))
}

func TestStore_SlowSubscriberGetsLatest(t *testing.T) {
	store := newTestStore(t, &stubExecutor{})

	updates, unsubscribe := store.Subscribe()
	defer unsubscribe()

	for i := 1; i <= 3*subscriberBuffer; i++ {
		require.NoError(t, store.SetFromAmount(decimal.NewFromInt(int64(i)).String()))
	}

	var last State
	for len(updates) > 0 {
		last = <-updates
	}
	assert.Equal(t, "24", last.FromAmount)
}

func TestStore_SnapshotsKeepDerivedAmount(t *testing.T) {
	exec := &stubExecutor{}
	store := newTestStore(t, exec)

	updates, unsubscribe := store.Subscribe()
	defer unsubscribe()

	var seen []State
	collect := func() {
		for len(updates) > 0 {
			seen = append(seen, <-updates)
		}
	}

	require.NoError(t, store.Connect(context.Background()))
	collect()
	require.NoError(t, store.SetFromAmount("0.75"))
	collect()
	store.OpenSelector(SelectorTo)
	require.NoError(t, store.Pick("LINK"))
	collect()
	require.NoError(t, store.Invert())
	collect()
	_, done, err := store.Submit(context.Background())
	require.NoError(t, err)
	require.NoError(t, waitOutcome(t, done))
	collect()

	require.NotEmpty(t, seen)
	for _, s := range seen {
		want := quote.ComputeToAmount(s.FromAmount, s.FromToken.Price, s.ToToken.Price)
		assert.Equal(t, want, s.ToAmount)
	}
}

func TestStore_Fill(t *testing.T) {
	store := newTestStore(t, &stubExecutor{}, func(o *Options) { o.SameTokenPolicy = RejectSameToken })

	require.NoError(t, store.Fill("USDC", "ETH", "2340.5"))
	s := store.Snapshot()
	assert.Equal(t, "USDC", s.FromToken.Symbol)
	assert.Equal(t, "ETH", s.ToToken.Symbol)
	assert.Equal(t, "1.000000", s.ToAmount)

	assert.ErrorIs(t, store.Fill("ETH", "eth", "1"), ErrSameToken)
	assert.Error(t, store.Fill("DOGE", "ETH", "1"))
	assert.Equal(t, s, store.Snapshot())
}
