// Package quote derives the "to" side of a swap from the "from" side using
// static token prices, and formats the values the swap form displays.
package quote

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// AmountPlaces is the precision of computed amounts and exchange rates
	AmountPlaces = 6
	// USDPlaces is the precision of USD-equivalent values
	USDPlaces = 2
	// BalancePlaces is the precision of token balances
	BalancePlaces = 4
	// MaxAmountLength bounds the characters of an entered amount
	MaxAmountLength = 40
)

// amountPattern is a plain fixed-point decimal: no sign, no exponent
var amountPattern = regexp.MustCompile(`^(\d+\.?\d*|\.\d+)$`)

var (
	// ErrInvalidAmount is returned for non-numeric or negative amounts
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrQuoteUnavailable is returned when no usable price exists for a token
	ErrQuoteUnavailable = errors.New("quote unavailable")
)

// ParseAmount parses a user-entered amount. Only digits with an optional
// decimal point are accepted. Empty input is not an amount.
func ParseAmount(amount string) (decimal.Decimal, error) {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return decimal.Zero, fmt.Errorf("%w: amount is empty", ErrInvalidAmount)
	}
	if len(amount) > MaxAmountLength {
		return decimal.Zero, fmt.Errorf("%w: amount is longer than %d characters", ErrInvalidAmount, MaxAmountLength)
	}
	if !amountPattern.MatchString(amount) {
		return decimal.Zero, fmt.Errorf("%w: '%s' is not a number", ErrInvalidAmount, amount)
	}

	value, err := decimal.NewFromString(amount)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: '%s' is not a number", ErrInvalidAmount, amount)
	}
	if value.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: '%s' is negative", ErrInvalidAmount, amount)
	}

	return value, nil
}

// ComputeToAmount converts fromAmount at the fromPrice/toPrice rate, rounded to
// six places. It returns "" when the amount is empty or unparseable, and when
// toPrice is not positive.
func ComputeToAmount(fromAmount string, fromPrice, toPrice decimal.Decimal) string {
	if strings.TrimSpace(fromAmount) == "" || !toPrice.IsPositive() {
		return ""
	}

	value, err := ParseAmount(fromAmount)
	if err != nil {
		return ""
	}

	return value.Mul(fromPrice).DivRound(toPrice, AmountPlaces).StringFixed(AmountPlaces)
}

// Rate returns how many "to" units one "from" unit buys
func Rate(fromPrice, toPrice decimal.Decimal) (decimal.Decimal, error) {
	if !toPrice.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: destination price must be greater than 0", ErrQuoteUnavailable)
	}
	return fromPrice.DivRound(toPrice, 16), nil
}

// FormatRate renders an exchange rate with six fractional digits
func FormatRate(rate decimal.Decimal) string {
	return rate.StringFixed(AmountPlaces)
}

// FormatUSD renders a USD value with two fractional digits
func FormatUSD(value decimal.Decimal) string {
	return value.StringFixed(USDPlaces)
}

// FormatBalance renders a token balance with four fractional digits
func FormatBalance(balance decimal.Decimal) string {
	return balance.StringFixed(BalancePlaces)
}

// USDValue renders amount*price in USD, or "0.00" when the amount is empty or invalid
func USDValue(amount string, price decimal.Decimal) string {
	value, err := ParseAmount(amount)
	if err != nil {
		return FormatUSD(decimal.Zero)
	}
	return FormatUSD(value.Mul(price))
}
