package quote

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// PriceImpact is the fixed price impact label shown by the mock
const PriceImpact = "<0.01%"

// Quote is a priced conversion between two tokens
type Quote struct {
	FromSymbol string `json:"from_symbol"`
	ToSymbol   string `json:"to_symbol"`
	AmountIn   string `json:"amount_in"`
	AmountOut  string `json:"amount_out"`
	Rate       string `json:"rate"`
	FromUSD    string `json:"from_usd"`
	ToUSD      string `json:"to_usd"`
	Impact     string `json:"price_impact"`
}

// Service prices conversions through an Oracle
type Service struct {
	oracle Oracle
}

// NewService creates a quote service
func NewService(oracle Oracle) *Service {
	return &Service{oracle: oracle}
}

// Quote converts amount of fromSymbol into toSymbol at current oracle prices
func (s *Service) Quote(ctx context.Context, amount, fromSymbol, toSymbol string) (*Quote, error) {
	if _, err := ParseAmount(amount); err != nil {
		return nil, err
	}

	fromPrice, err := s.price(ctx, fromSymbol)
	if err != nil {
		return nil, err
	}
	toPrice, err := s.price(ctx, toSymbol)
	if err != nil {
		return nil, err
	}

	rate, err := Rate(fromPrice, toPrice)
	if err != nil {
		return nil, err
	}

	amountOut := ComputeToAmount(amount, fromPrice, toPrice)

	return &Quote{
		FromSymbol: strings.ToUpper(fromSymbol),
		ToSymbol:   strings.ToUpper(toSymbol),
		AmountIn:   strings.TrimSpace(amount),
		AmountOut:  amountOut,
		Rate:       FormatRate(rate),
		FromUSD:    USDValue(amount, fromPrice),
		ToUSD:      USDValue(amountOut, toPrice),
		Impact:     PriceImpact,
	}, nil
}

func (s *Service) price(ctx context.Context, symbol string) (decimal.Decimal, error) {
	price, err := s.oracle.Price(ctx, symbol)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to get price for %s: %w", strings.ToUpper(symbol), err)
	}
	if !price.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: no positive price for %s", ErrQuoteUnavailable, strings.ToUpper(symbol))
	}
	return price, nil
}
