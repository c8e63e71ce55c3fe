package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/shopspring/decimal"

	"mock-swap/pkg/catalog"
	"mock-swap/pkg/history"
	"mock-swap/pkg/observability"
	"mock-swap/pkg/quote"
	"mock-swap/pkg/swap"
	"mock-swap/pkg/types"
	"mock-swap/pkg/wallet"
)

const subscriberBuffer = 8

// Options configures a Store
type Options struct {
	Catalog   *catalog.Catalog
	Connector wallet.Connector
	Executor  swap.Executor
	Ledger    *history.Ledger
	Metrics   *observability.Metrics
	Logger    *log.Logger

	DefaultFrom     string
	DefaultTo       string
	Slippage        decimal.Decimal
	SameTokenPolicy SameTokenPolicy
	SwapTimeout     time.Duration
}

// Store owns the single session state and applies transitions to it
type Store struct {
	catalog   *catalog.Catalog
	connector wallet.Connector
	executor  swap.Executor
	ledger    *history.Ledger
	metrics   *observability.Metrics
	logger    *log.Logger
	policy    SameTokenPolicy
	timeout   time.Duration

	mu      sync.Mutex
	state   State
	subs    map[int]chan State
	nextSub int
	task    *swapTask
}

// swapTask tracks the in-flight submission
type swapTask struct {
	cancel    context.CancelFunc
	cancelled bool
	ledgerID  string
	started   time.Time
	done      chan error
}

// NewStore creates a store with the default token pair selected
func NewStore(opts Options) (*Store, error) {
	if opts.Catalog == nil {
		opts.Catalog = catalog.Default()
	}
	if opts.Connector == nil {
		return nil, fmt.Errorf("wallet connector is required")
	}
	if opts.Executor == nil {
		return nil, fmt.Errorf("swap executor is required")
	}
	if opts.Ledger == nil {
		opts.Ledger = history.NewLedger()
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.DefaultFrom == "" {
		opts.DefaultFrom = "ETH"
	}
	if opts.DefaultTo == "" {
		opts.DefaultTo = "USDC"
	}
	if opts.Slippage.IsZero() {
		opts.Slippage = DefaultSlippage
	}
	if opts.SameTokenPolicy == "" {
		opts.SameTokenPolicy = AllowSameToken
	}
	if opts.SwapTimeout <= 0 {
		opts.SwapTimeout = swap.DefaultTimeout
	}

	from, err := opts.Catalog.Lookup(opts.DefaultFrom)
	if err != nil {
		return nil, fmt.Errorf("default from token: %w", err)
	}
	to, err := opts.Catalog.Lookup(opts.DefaultTo)
	if err != nil {
		return nil, fmt.Errorf("default to token: %w", err)
	}
	if opts.SameTokenPolicy == RejectSameToken && from.Equal(to) {
		return nil, fmt.Errorf("%w: default pair %s/%s", ErrSameToken, from.Symbol, to.Symbol)
	}

	return &Store{
		catalog:   opts.Catalog,
		connector: opts.Connector,
		executor:  opts.Executor,
		ledger:    opts.Ledger,
		metrics:   opts.Metrics,
		logger:    opts.Logger.WithPrefix("session"),
		policy:    opts.SameTokenPolicy,
		timeout:   opts.SwapTimeout,
		state:     NewState(from, to, opts.Slippage),
		subs:      make(map[int]chan State),
	}, nil
}

// Snapshot returns the current state
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Catalog returns the token catalog backing the session
func (s *Store) Catalog() *catalog.Catalog {
	return s.catalog
}

// Ledger returns the session's swap history
func (s *Store) Ledger() *history.Ledger {
	return s.ledger
}

// Subscribe returns a channel of snapshots, starting with the current one.
// When the subscriber falls behind, older snapshots are dropped in favor of
// the latest. The returned func unsubscribes and closes the channel.
func (s *Store) Subscribe() (<-chan State, func()) {
	ch := make(chan State, subscriberBuffer)

	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	ch <- s.state
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
			close(ch)
		})
	}
}

// publish installs next as the current state (must be called with lock held)
func (s *Store) publish(next State, action string) {
	prev := s.state
	s.state = next

	if next.ToAmount != "" && next.ToAmount != prev.ToAmount {
		s.metrics.ObserveQuote()
	}
	s.metrics.ObserveTransition(action)
	s.logger.Debug("transition", "action", action, "from", next.FromToken.Symbol, "to", next.ToToken.Symbol,
		"from_amount", next.FromAmount, "to_amount", next.ToAmount, "task", next.Task)

	for _, ch := range s.subs {
		select {
		case ch <- next:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- next:
			default:
			}
		}
	}
}

// Connect asks the connector for an address. Calling it while connected or
// connecting is a no-op.
func (s *Store) Connect(ctx context.Context) error {
	s.mu.Lock()
	if s.state.WalletConnected || s.state.WalletConnecting {
		s.mu.Unlock()
		return nil
	}
	s.publish(BeginConnect(s.state), "connect")
	s.mu.Unlock()

	address, err := s.connector.Connect(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.state.WalletConnecting {
		// disconnected while the connector was working
		if err == nil {
			s.connector.Disconnect()
		}
		return nil
	}

	if err != nil {
		if !errors.Is(err, wallet.ErrWalletConnectionFailed) {
			err = fmt.Errorf("%w: %v", wallet.ErrWalletConnectionFailed, err)
		}
		s.metrics.ObserveWallet(false)
		s.logger.Warn("wallet connection failed", "err", err)
		s.publish(ConnectFailed(s.state, err), "connect_failed")
		return err
	}

	s.metrics.ObserveWallet(true)
	s.logger.Info("wallet connected", "address", wallet.ShortAddress(address))
	s.publish(Connected(s.state, address), "connected")
	return nil
}

// Disconnect clears the wallet connection and cancels a running swap
func (s *Store) Disconnect() {
	s.mu.Lock()
	if s.task != nil {
		s.task.cancelled = true
		s.task.cancel()
	}
	s.publish(Disconnected(s.state), "disconnect")
	s.mu.Unlock()

	s.connector.Disconnect()
}

// SetFromAmount updates the input amount and the derived output
func (s *Store) SetFromAmount(amount string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := SetFromAmount(s.state, amount)
	if err != nil {
		return err
	}
	s.publish(next, "set_amount")
	return nil
}

// OpenSelector opens the token picker for role; SelectorNone closes it
func (s *Store) OpenSelector(role Selector) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.publish(OpenSelector(s.state, role), "open_selector")
}

// CloseSelector closes the token picker
func (s *Store) CloseSelector() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.publish(CloseSelector(s.state), "close_selector")
}

// SelectToken sets the token for role. SelectorNone uses the open picker.
func (s *Store) SelectToken(role Selector, symbol string) error {
	token, err := s.catalog.Lookup(symbol)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := SelectToken(s.state, role, token, s.policy)
	if err != nil {
		return err
	}
	s.publish(next, "select_token")
	return nil
}

// Pick selects symbol for whichever picker is open
func (s *Store) Pick(symbol string) error {
	return s.SelectToken(SelectorNone, symbol)
}

// Fill sets the pair and amount at once, as typed in "1 ETH to USDC"
func (s *Store) Fill(fromSymbol, toSymbol, amount string) error {
	from, err := s.catalog.Lookup(fromSymbol)
	if err != nil {
		return err
	}
	to, err := s.catalog.Lookup(toSymbol)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := Fill(s.state, from, to, amount, s.policy)
	if err != nil {
		return err
	}
	s.publish(next, "fill")
	return nil
}

// Invert swaps the two sides of the form
func (s *Store) Invert() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := Invert(s.state)
	if err != nil {
		return err
	}
	s.publish(next, "invert")
	return nil
}

// ToggleSettings opens or closes the settings panel
func (s *Store) ToggleSettings() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.publish(ToggleSettings(s.state), "toggle_settings")
}

// SetSlippage stores the slippage tolerance and returns the applied value
func (s *Store) SetSlippage(value decimal.Decimal) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := SetSlippage(s.state, value)
	s.publish(next, "set_slippage")
	return next.Slippage
}

// Submit starts the swap task and returns its ledger ID. The returned channel
// receives the outcome: nil on success, ErrSwapCancelled on cancel, or an
// error wrapping swap.ErrSwapExecutionFailed.
func (s *Store) Submit(ctx context.Context) (string, <-chan error, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := BeginSwap(s.state)
	if err != nil {
		return "", nil, err
	}

	rate, _ := quote.Rate(next.FromToken.Price, next.ToToken.Price)
	req := &types.SwapRequest{
		Amount:         next.FromAmount,
		SourceToken:    next.FromToken.Symbol,
		DestToken:      next.ToToken.Symbol,
		ExpectedOutput: next.ToAmount,
		Slippage:       next.Slippage.String(),
		WalletAddress:  next.WalletAddress,
	}

	next.LastSwapID = s.ledger.Add(history.Execution{
		FromToken:       req.SourceToken,
		ToToken:         req.DestToken,
		AmountIn:        req.Amount,
		EstimatedOutput: req.ExpectedOutput,
		Rate:            quote.FormatRate(rate),
		Slippage:        req.Slippage,
		WalletAddress:   req.WalletAddress,
	})

	taskCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	t := &swapTask{
		cancel:   cancel,
		ledgerID: next.LastSwapID,
		started:  time.Now(),
		done:     make(chan error, 1),
	}
	s.task = t

	s.metrics.SwapStarted()
	s.logger.Info("swap submitted", "id", t.ledgerID, "amount", req.Amount, "from", req.SourceToken, "to", req.DestToken)
	s.publish(next, "submit")

	go s.run(taskCtx, t, req)

	return t.ledgerID, t.done, nil
}

// Cancel stops the running swap. It returns false when nothing is running.
func (s *Store) Cancel() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.task == nil {
		return false
	}
	s.task.cancelled = true
	s.task.cancel()
	return true
}

func (s *Store) run(ctx context.Context, t *swapTask, req *types.SwapRequest) {
	receipt, err := s.executor.Execute(ctx, req)
	t.cancel()

	s.mu.Lock()
	outcome := s.finish(t, receipt, err)
	s.mu.Unlock()

	t.done <- outcome
	close(t.done)
}

// finish applies the task outcome (must be called with lock held)
func (s *Store) finish(t *swapTask, receipt *types.SwapReceipt, err error) error {
	if s.task != t {
		return ErrSwapCancelled
	}
	s.task = nil
	elapsed := time.Since(t.started)

	switch {
	case t.cancelled:
		s.updateLedger(t.ledgerID, history.ExecutionCancelled, "", ErrSwapCancelled.Error())
		s.metrics.SwapFinished("cancelled", elapsed)
		s.logger.Info("swap cancelled", "id", t.ledgerID)
		s.publish(SwapCancelled(s.state), "swap_cancelled")
		return ErrSwapCancelled

	case err != nil:
		if !errors.Is(err, swap.ErrSwapExecutionFailed) {
			err = fmt.Errorf("%w: %w", swap.ErrSwapExecutionFailed, err)
		}
		s.updateLedger(t.ledgerID, history.ExecutionFailed, "", err.Error())
		s.metrics.SwapFinished("failed", elapsed)
		s.logger.Error("swap failed", "id", t.ledgerID, "err", err)
		s.publish(SwapFailed(s.state, err), "swap_failed")
		return err

	default:
		txHash := ""
		if receipt != nil {
			txHash = receipt.TxHash
		}
		s.updateLedger(t.ledgerID, history.ExecutionCompleted, txHash, "")
		s.metrics.SwapFinished("succeeded", elapsed)
		s.logger.Info("swap completed", "id", t.ledgerID, "tx", txHash, "elapsed", elapsed.Round(time.Millisecond))
		s.publish(SwapSucceeded(s.state), "swap_succeeded")
		return nil
	}
}

func (s *Store) updateLedger(id string, status history.ExecutionStatus, txHash, errorMsg string) {
	if err := s.ledger.UpdateStatus(id, status, txHash, errorMsg); err != nil {
		s.logger.Warn("ledger update failed", "id", id, "err", err)
	}
}
