package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrTokenNotFound is returned when a symbol is not part of the catalog
var ErrTokenNotFound = errors.New("token not found")

// Token is an immutable catalog entry
type Token struct {
	Symbol  string          `json:"symbol"`
	Name    string          `json:"name"`
	Icon    string          `json:"icon"`
	Price   decimal.Decimal `json:"price"`   // USD
	Balance decimal.Decimal `json:"balance"` // mock holdings
	Address string          `json:"address"`
}

// Catalog is the fixed, ordered list of tradable tokens
type Catalog struct {
	tokens []Token
	index  map[string]int
}

// New validates the tokens and builds a catalog preserving their order
func New(tokens ...Token) (*Catalog, error) {
	if len(tokens) == 0 {
		return nil, fmt.Errorf("catalog must contain at least one token")
	}

	c := &Catalog{
		tokens: make([]Token, 0, len(tokens)),
		index:  make(map[string]int, len(tokens)),
	}

	for _, token := range tokens {
		if err := token.Validate(); err != nil {
			return nil, err
		}

		key := strings.ToUpper(token.Symbol)
		if _, exists := c.index[key]; exists {
			return nil, fmt.Errorf("duplicate token symbol '%s'", token.Symbol)
		}

		c.index[key] = len(c.tokens)
		c.tokens = append(c.tokens, token)
	}

	return c, nil
}

// Validate checks the invariants every catalog entry must hold
func (t Token) Validate() error {
	if strings.TrimSpace(t.Symbol) == "" {
		return fmt.Errorf("token symbol is required")
	}
	if !t.Price.IsPositive() {
		return fmt.Errorf("token '%s': price must be greater than 0", t.Symbol)
	}
	if t.Balance.IsNegative() {
		return fmt.Errorf("token '%s': balance cannot be negative", t.Symbol)
	}
	return nil
}

// Equal reports whether two tokens are the same catalog entry
func (t Token) Equal(other Token) bool {
	return strings.EqualFold(t.Symbol, other.Symbol)
}

// Lookup finds a token by symbol, ignoring case
func (c *Catalog) Lookup(symbol string) (Token, error) {
	i, ok := c.index[strings.ToUpper(strings.TrimSpace(symbol))]
	if !ok {
		return Token{}, fmt.Errorf("%w: '%s'", ErrTokenNotFound, symbol)
	}
	return c.tokens[i], nil
}

// Tokens returns a copy of the catalog in its fixed order
func (c *Catalog) Tokens() []Token {
	out := make([]Token, len(c.tokens))
	copy(out, c.tokens)
	return out
}

// Len returns the number of tokens
func (c *Catalog) Len() int {
	return len(c.tokens)
}

// Filter returns tokens whose symbol or name contains the query
func (c *Catalog) Filter(query string) []Token {
	query = strings.ToUpper(strings.TrimSpace(query))
	if query == "" {
		return c.Tokens()
	}

	var out []Token
	for _, token := range c.tokens {
		if strings.Contains(strings.ToUpper(token.Symbol), query) ||
			strings.Contains(strings.ToUpper(token.Name), query) {
			out = append(out, token)
		}
	}
	return out
}
