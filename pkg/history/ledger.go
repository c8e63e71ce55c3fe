package history

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrExecutionNotFound is returned for unknown execution IDs
var ErrExecutionNotFound = errors.New("execution not found")

// Ledger keeps the swap executions of one session in memory
type Ledger struct {
	mu         sync.RWMutex
	executions []*Execution
	byID       map[string]*Execution
	now        func() time.Time
}

// NewLedger creates an empty ledger
func NewLedger() *Ledger {
	return &Ledger{
		byID: make(map[string]*Execution),
		now:  time.Now,
	}
}

// Add records a new execution and returns its ID
func (l *Ledger) Add(execution Execution) string {
	l.mu.Lock()
	defer l.mu.Unlock()

	execution.ID = uuid.New().String()
	execution.Timestamp = l.now()
	if execution.Status == "" {
		execution.Status = ExecutionPending
	}

	e := &execution
	l.executions = append(l.executions, e)
	l.byID[e.ID] = e

	return e.ID
}

// UpdateStatus moves an execution to a new status
func (l *Ledger) UpdateStatus(id string, status ExecutionStatus, txHash, errorMsg string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, exists := l.byID[id]
	if !exists {
		return fmt.Errorf("%w: '%s'", ErrExecutionNotFound, id)
	}
	if e.IsTerminal() {
		return fmt.Errorf("execution '%s' is already %s", id, e.Status)
	}

	e.Status = status
	if txHash != "" {
		e.TxHash = txHash
	}
	if errorMsg != "" {
		e.ErrorMessage = errorMsg
	}
	if e.IsTerminal() {
		now := l.now()
		e.CompletionTime = &now
	}

	return nil
}

// Get retrieves a copy of an execution by ID
func (l *Ledger) Get(id string) (Execution, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	e, exists := l.byID[id]
	if !exists {
		return Execution{}, fmt.Errorf("%w: '%s'", ErrExecutionNotFound, id)
	}
	return *e, nil
}

// List returns copies of all executions, most recent first
func (l *Ledger) List() []Execution {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Execution, 0, len(l.executions))
	for i := len(l.executions) - 1; i >= 0; i-- {
		out = append(out, *l.executions[i])
	}
	return out
}

// Stats counts executions per status
func (l *Ledger) Stats() Stats {
	l.mu.RLock()
	defer l.mu.RUnlock()

	stats := Stats{Total: len(l.executions)}
	for _, e := range l.executions {
		switch e.Status {
		case ExecutionPending:
			stats.Pending++
		case ExecutionCompleted:
			stats.Completed++
		case ExecutionFailed:
			stats.Failed++
		case ExecutionCancelled:
			stats.Cancelled++
		}
	}
	return stats
}
