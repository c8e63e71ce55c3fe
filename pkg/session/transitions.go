package session

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"mock-swap/pkg/catalog"
	"mock-swap/pkg/quote"
)

// NewState builds the initial snapshot
func NewState(from, to catalog.Token, slippage decimal.Decimal) State {
	return State{
		FromToken:      from,
		ToToken:        to,
		Slippage:       ClampSlippage(slippage),
		Task:           TaskIdle,
		ActiveSelector: SelectorNone,
	}
}

// derive restores the ToAmount invariant
func derive(s State) State {
	s.ToAmount = quote.ComputeToAmount(s.FromAmount, s.FromToken.Price, s.ToToken.Price)
	return s
}

// settle drops a finished task outcome once the user edits the form
func settle(s State) State {
	if s.Task == TaskSucceeded || s.Task == TaskFailed {
		s.Task = TaskIdle
		s.TaskError = ""
	}
	return s
}

// SetFromAmount stores a new input amount. Non-empty input must be a
// non-negative decimal.
func SetFromAmount(s State, amount string) (State, error) {
	amount = strings.TrimSpace(amount)
	if amount != "" {
		if _, err := quote.ParseAmount(amount); err != nil {
			return s, err
		}
	}

	s.FromAmount = amount
	return derive(settle(s)), nil
}

// OpenSelector opens the token picker for role, closing any other
func OpenSelector(s State, role Selector) State {
	s.ActiveSelector = role
	return s
}

// CloseSelector closes the token picker
func CloseSelector(s State) State {
	s.ActiveSelector = SelectorNone
	return s
}

// SelectToken assigns token to role and closes the picker. SelectorNone
// means the role of the open picker.
func SelectToken(s State, role Selector, token catalog.Token, policy SameTokenPolicy) (State, error) {
	if role == SelectorNone {
		role = s.ActiveSelector
	}

	switch role {
	case SelectorFrom:
		if policy == RejectSameToken && token.Equal(s.ToToken) {
			return s, fmt.Errorf("%w: %s", ErrSameToken, token.Symbol)
		}
		s.FromToken = token
	case SelectorTo:
		if policy == RejectSameToken && token.Equal(s.FromToken) {
			return s, fmt.Errorf("%w: %s", ErrSameToken, token.Symbol)
		}
		s.ToToken = token
	default:
		return s, ErrNoSelector
	}

	s.ActiveSelector = SelectorNone
	return derive(settle(s)), nil
}

// Fill sets both tokens and the input amount in one step
func Fill(s State, from, to catalog.Token, amount string, policy SameTokenPolicy) (State, error) {
	if s.IsSwapping() {
		return s, ErrSwapInProgress
	}
	if policy == RejectSameToken && from.Equal(to) {
		return s, fmt.Errorf("%w: %s", ErrSameToken, from.Symbol)
	}

	next, err := SetFromAmount(s, amount)
	if err != nil {
		return s, err
	}
	next.FromToken = from
	next.ToToken = to
	next.ActiveSelector = SelectorNone
	return derive(next), nil
}

// Invert swaps both tokens and both amounts, then recomputes the derived
// amount from the new pair in the same step.
func Invert(s State) (State, error) {
	if s.IsSwapping() {
		return s, ErrSwapInProgress
	}

	s.FromToken, s.ToToken = s.ToToken, s.FromToken
	s.FromAmount, s.ToAmount = s.ToAmount, s.FromAmount
	return derive(settle(s)), nil
}

// ToggleSettings opens or closes the settings panel
func ToggleSettings(s State) State {
	s.SettingsOpen = !s.SettingsOpen
	return s
}

// SetSlippage stores a clamped slippage tolerance
func SetSlippage(s State, value decimal.Decimal) State {
	s.Slippage = ClampSlippage(value)
	return s
}

// ClampSlippage bounds value to [MinSlippage, MaxSlippage] in 0.1 steps
func ClampSlippage(value decimal.Decimal) decimal.Decimal {
	if value.LessThan(MinSlippage) {
		return MinSlippage
	}
	if value.GreaterThan(MaxSlippage) {
		return MaxSlippage
	}
	return value.Round(1)
}

// BeginConnect marks a wallet connection attempt
func BeginConnect(s State) State {
	s.WalletConnecting = true
	s.WalletError = ""
	return s
}

// Connected records a successful wallet connection
func Connected(s State, address string) State {
	s.WalletConnected = true
	s.WalletConnecting = false
	s.WalletAddress = address
	s.WalletError = ""
	return s
}

// ConnectFailed records a failed wallet connection
func ConnectFailed(s State, err error) State {
	s.WalletConnected = false
	s.WalletConnecting = false
	s.WalletAddress = ""
	s.WalletError = err.Error()
	return s
}

// Disconnected resets the wallet fields. Idempotent.
func Disconnected(s State) State {
	s.WalletConnected = false
	s.WalletConnecting = false
	s.WalletAddress = ""
	s.WalletError = ""
	return s
}

// CanSubmit checks the submission guard
func CanSubmit(s State) error {
	if s.IsSwapping() {
		return ErrSwapInProgress
	}
	if !s.WalletConnected {
		return fmt.Errorf("%w: wallet not connected", ErrNotReady)
	}
	if s.FromAmount == "" || s.ToAmount == "" {
		return fmt.Errorf("%w: enter an amount", ErrNotReady)
	}
	return nil
}

// BeginSwap moves the task to running
func BeginSwap(s State) (State, error) {
	if err := CanSubmit(s); err != nil {
		return s, err
	}
	s.Task = TaskRunning
	s.TaskError = ""
	return s, nil
}

// SwapSucceeded finishes the task and clears both amounts
func SwapSucceeded(s State) State {
	s.Task = TaskSucceeded
	s.TaskError = ""
	s.FromAmount = ""
	s.ToAmount = ""
	return s
}

// SwapFailed finishes the task with an error, keeping the amounts
func SwapFailed(s State, err error) State {
	s.Task = TaskFailed
	s.TaskError = err.Error()
	return s
}

// SwapCancelled returns the task to idle, keeping the amounts
func SwapCancelled(s State) State {
	s.Task = TaskIdle
	s.TaskError = ""
	return s
}
