package catalog

import "github.com/shopspring/decimal"

// DefaultTokens is the built-in mock token list
func DefaultTokens() []Token {
	return []Token{
		{Symbol: "ETH", Name: "Ethereum", Icon: "⟠", Price: decimal.RequireFromString("2340.5"), Balance: decimal.RequireFromString("1.2345"), Address: "0x..."},
		{Symbol: "USDC", Name: "USD Coin", Icon: "💵", Price: decimal.RequireFromString("1.0"), Balance: decimal.RequireFromString("1250.0"), Address: "0x..."},
		{Symbol: "USDT", Name: "Tether", Icon: "₮", Price: decimal.RequireFromString("1.0"), Balance: decimal.RequireFromString("890.5"), Address: "0x..."},
		{Symbol: "WBTC", Name: "Wrapped Bitcoin", Icon: "₿", Price: decimal.RequireFromString("43250.0"), Balance: decimal.RequireFromString("0.0234"), Address: "0x..."},
		{Symbol: "UNI", Name: "Uniswap", Icon: "🦄", Price: decimal.RequireFromString("8.45"), Balance: decimal.RequireFromString("125.67"), Address: "0x..."},
		{Symbol: "LINK", Name: "Chainlink", Icon: "🔗", Price: decimal.RequireFromString("14.23"), Balance: decimal.RequireFromString("45.89"), Address: "0x..."},
	}
}

// Default builds the built-in catalog. The built-in list is known to be valid.
func Default() *Catalog {
	c, err := New(DefaultTokens()...)
	if err != nil {
		panic(err)
	}
	return c
}
