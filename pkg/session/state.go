// Package session holds the swap form state. Every change goes through a pure
// transition function; the Store serializes them and publishes immutable
// snapshots to subscribers.
package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"mock-swap/pkg/catalog"
)

var (
	// ErrSameToken is returned when the same-token policy rejects a selection
	ErrSameToken = errors.New("cannot select the same token on both sides")
	// ErrNotReady is returned when a swap is submitted before the form is complete
	ErrNotReady = errors.New("swap not ready")
	// ErrSwapInProgress is returned while a swap is running
	ErrSwapInProgress = errors.New("swap already in progress")
	// ErrNoSelector is returned when picking a token with no picker open
	ErrNoSelector = errors.New("no token selector is open")
	// ErrSwapCancelled is delivered to the submitter when the swap is cancelled
	ErrSwapCancelled = errors.New("swap cancelled")
)

// Slippage bounds and step, in percent
var (
	MinSlippage     = decimal.RequireFromString("0.1")
	MaxSlippage     = decimal.RequireFromString("5.0")
	DefaultSlippage = decimal.RequireFromString("0.5")
)

// Selector names which token picker is open
type Selector string

const (
	SelectorNone Selector = "none"
	SelectorFrom Selector = "from"
	SelectorTo   Selector = "to"
)

// ParseSelector converts "from", "to" or "none"
func ParseSelector(s string) (Selector, error) {
	switch Selector(strings.ToLower(strings.TrimSpace(s))) {
	case SelectorFrom:
		return SelectorFrom, nil
	case SelectorTo:
		return SelectorTo, nil
	case SelectorNone, "":
		return SelectorNone, nil
	default:
		return SelectorNone, fmt.Errorf("invalid selector '%s', must be 'from', 'to' or 'none'", s)
	}
}

// TaskStatus is the state of the swap submission task
type TaskStatus string

const (
	TaskIdle      TaskStatus = "idle"
	TaskRunning   TaskStatus = "running"
	TaskSucceeded TaskStatus = "succeeded"
	TaskFailed    TaskStatus = "failed"
)

// SameTokenPolicy decides whether both sides may hold the same token
type SameTokenPolicy string

const (
	AllowSameToken  SameTokenPolicy = "allow"
	RejectSameToken SameTokenPolicy = "reject"
)

// ParseSameTokenPolicy converts a configuration value
func ParseSameTokenPolicy(s string) (SameTokenPolicy, error) {
	switch SameTokenPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case AllowSameToken, "":
		return AllowSameToken, nil
	case RejectSameToken:
		return RejectSameToken, nil
	default:
		return "", fmt.Errorf("invalid same-token policy '%s', must be 'allow' or 'reject'", s)
	}
}

// State is one snapshot of the swap form. Values are never shared mutably.
type State struct {
	WalletConnected  bool   `json:"wallet_connected"`
	WalletConnecting bool   `json:"wallet_connecting"`
	WalletAddress    string `json:"wallet_address"`
	WalletError      string `json:"wallet_error,omitempty"`

	FromToken  catalog.Token `json:"from_token"`
	ToToken    catalog.Token `json:"to_token"`
	FromAmount string        `json:"from_amount"`
	ToAmount   string        `json:"to_amount"` // derived

	Slippage decimal.Decimal `json:"slippage"` // percent

	Task       TaskStatus `json:"task"`
	TaskError  string     `json:"task_error,omitempty"`
	LastSwapID string     `json:"last_swap_id,omitempty"`

	ActiveSelector Selector `json:"active_selector"`
	SettingsOpen   bool     `json:"settings_open"`
}

// IsSwapping returns true while the swap task runs
func (s State) IsSwapping() bool {
	return s.Task == TaskRunning
}

// ButtonState is the label and enablement of the swap button
type ButtonState struct {
	Label   string `json:"label"`
	Enabled bool   `json:"enabled"`
}

// Button evaluates the swap button in precedence order
func Button(s State) ButtonState {
	switch {
	case s.IsSwapping():
		return ButtonState{Label: "Swapping…"}
	case !s.WalletConnected:
		return ButtonState{Label: "Connect Wallet"}
	case s.FromAmount == "" || s.ToAmount == "":
		return ButtonState{Label: "Enter an amount"}
	default:
		return ButtonState{Label: "Swap", Enabled: true}
	}
}
