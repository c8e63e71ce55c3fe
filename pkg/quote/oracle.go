package quote

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"mock-swap/pkg/catalog"
)

// Oracle provides the USD price of a token
type Oracle interface {
	Price(ctx context.Context, symbol string) (decimal.Decimal, error)
}

// CatalogOracle serves the fixed prices of a catalog
type CatalogOracle struct {
	catalog *catalog.Catalog
}

// NewCatalogOracle creates an oracle backed by the given catalog
func NewCatalogOracle(c *catalog.Catalog) *CatalogOracle {
	return &CatalogOracle{catalog: c}
}

// Price returns the catalog price of symbol
func (o *CatalogOracle) Price(ctx context.Context, symbol string) (decimal.Decimal, error) {
	if err := ctx.Err(); err != nil {
		return decimal.Zero, err
	}

	token, err := o.catalog.Lookup(symbol)
	if err != nil {
		if errors.Is(err, catalog.ErrTokenNotFound) {
			return decimal.Zero, fmt.Errorf("%w: %w", ErrQuoteUnavailable, err)
		}
		return decimal.Zero, err
	}

	return token.Price, nil
}
