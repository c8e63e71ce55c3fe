package swap

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	"mock-swap/pkg/types"
)

const (
	DefaultDelay   = 2 * time.Second  // Simulated settlement time
	DefaultTimeout = 30 * time.Second // Upper bound for one swap
)

// ErrSwapExecutionFailed wraps every executor failure
var ErrSwapExecutionFailed = errors.New("swap execution failed")

// Executor settles a swap request
type Executor interface {
	Execute(ctx context.Context, req *types.SwapRequest) (*types.SwapReceipt, error)
}

// SimulatedExecutor pretends to settle swaps after a fixed delay
type SimulatedExecutor struct {
	delay       time.Duration
	failureRate float64
	logger      *log.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulatedExecutor creates an executor that waits delay and then fails
// with probability failureRate
func NewSimulatedExecutor(delay time.Duration, failureRate float64, logger *log.Logger) *SimulatedExecutor {
	if delay < 0 {
		delay = 0
	}
	if failureRate < 0 {
		failureRate = 0
	}
	if failureRate > 1 {
		failureRate = 1
	}
	if logger == nil {
		logger = log.Default()
	}

	return &SimulatedExecutor{
		delay:       delay,
		failureRate: failureRate,
		logger:      logger.WithPrefix("executor"),
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Execute waits for the configured delay unless ctx ends first
func (e *SimulatedExecutor) Execute(ctx context.Context, req *types.SwapRequest) (*types.SwapReceipt, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: empty request", ErrSwapExecutionFailed)
	}

	e.logger.Debug("simulating swap", "amount", req.Amount, "from", req.SourceToken, "to", req.DestToken, "delay", e.delay)

	timer := time.NewTimer(e.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w", ErrSwapExecutionFailed, ctx.Err())
	case <-timer.C:
	}

	if e.shouldFail() {
		return nil, fmt.Errorf("%w: simulated backend error", ErrSwapExecutionFailed)
	}

	return &types.SwapReceipt{
		TxHash:      fakeTxHash(),
		AmountIn:    req.Amount,
		AmountOut:   req.ExpectedOutput,
		SourceToken: req.SourceToken,
		DestToken:   req.DestToken,
		CompletedAt: time.Now(),
	}, nil
}

func (e *SimulatedExecutor) shouldFail() bool {
	if e.failureRate == 0 {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rng.Float64() < e.failureRate
}

// fakeTxHash builds a 32-byte hash-shaped identifier from two random UUIDs
func fakeTxHash() string {
	a, b := uuid.New(), uuid.New()
	return common.BytesToHash(append(a[:], b[:]...)).Hex()
}
