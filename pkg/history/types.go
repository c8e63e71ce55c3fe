package history

import "time"

// ExecutionStatus defines the status of a single swap execution
type ExecutionStatus string

const (
	ExecutionPending   ExecutionStatus = "pending"   // Swap submitted
	ExecutionCompleted ExecutionStatus = "completed" // Swap settled
	ExecutionFailed    ExecutionStatus = "failed"    // Executor returned an error
	ExecutionCancelled ExecutionStatus = "cancelled" // User cancelled before settlement
)

// Execution represents one submitted swap within the session
type Execution struct {
	ID              string          `json:"id"`
	Timestamp       time.Time       `json:"timestamp"`
	FromToken       string          `json:"from_token"`
	ToToken         string          `json:"to_token"`
	AmountIn        string          `json:"amount_in"`
	EstimatedOutput string          `json:"estimated_output"`
	Rate            string          `json:"rate"`
	Slippage        string          `json:"slippage"`
	WalletAddress   string          `json:"wallet_address"`
	Status          ExecutionStatus `json:"status"`
	TxHash          string          `json:"tx_hash,omitempty"`
	ErrorMessage    string          `json:"error_message,omitempty"`
	CompletionTime  *time.Time      `json:"completion_time,omitempty"`
}

// IsTerminal returns true once the execution can no longer change
func (e *Execution) IsTerminal() bool {
	return e.Status == ExecutionCompleted || e.Status == ExecutionFailed || e.Status == ExecutionCancelled
}

// Stats summarizes the executions of a session
type Stats struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
	Cancelled int `json:"cancelled"`
}
