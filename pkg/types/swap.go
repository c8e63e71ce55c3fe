package types

import "time"

// SwapRequest represents a swap the user submitted from the form
type SwapRequest struct {
	Amount         string
	SourceToken    string
	DestToken      string
	ExpectedOutput string
	Slippage       string // percent
	WalletAddress  string
}

// SwapReceipt is returned by an executor once a swap settles
type SwapReceipt struct {
	TxHash      string    `json:"tx_hash"`
	AmountIn    string    `json:"amount_in"`
	AmountOut   string    `json:"amount_out"`
	SourceToken string    `json:"source_token"`
	DestToken   string    `json:"dest_token"`
	CompletedAt time.Time `json:"completed_at"`
}
