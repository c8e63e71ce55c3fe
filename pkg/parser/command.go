package parser

import (
	"fmt"
	"regexp"
	"strings"

	"mock-swap/pkg/types"
)

var swapPattern = regexp.MustCompile(`^(\d+\.?\d*|\.\d+)\s+([A-Z0-9]+)\s+(?:TO|FOR|->)\s+([A-Z0-9]+)$`)

// ParseSwapCommand parses a natural language swap command
// Examples:
//   - "swap 1 ETH to USDC"
//   - "1.5 wbtc to uni"
//   - "100 USDC for LINK"
func ParseSwapCommand(command string) (*types.SwapRequest, error) {
	command = strings.Join(strings.Fields(strings.ToUpper(command)), " ")
	command = strings.TrimPrefix(command, "SWAP ")

	matches := swapPattern.FindStringSubmatch(command)
	if matches == nil {
		return nil, fmt.Errorf("invalid swap command format. Expected: 'swap <amount> <token> to <token>' (e.g., 'swap 1 ETH to USDC')")
	}

	return &types.SwapRequest{
		Amount:      matches[1],
		SourceToken: NormalizeTokenSymbol(matches[2]),
		DestToken:   NormalizeTokenSymbol(matches[3]),
	}, nil
}

// ValidateSwapRequest validates that a swap request has all required fields
func ValidateSwapRequest(req *types.SwapRequest) error {
	if req.Amount == "" {
		return fmt.Errorf("amount is required")
	}
	if req.SourceToken == "" {
		return fmt.Errorf("source token is required")
	}
	if req.DestToken == "" {
		return fmt.Errorf("destination token is required")
	}
	return nil
}

// NormalizeTokenSymbol maps common aliases onto catalog symbols
func NormalizeTokenSymbol(symbol string) string {
	symbol = strings.TrimSpace(strings.ToUpper(symbol))

	aliases := map[string]string{
		"BTC":  "WBTC",
		"WETH": "ETH",
		"USD":  "USDC",
	}

	if normalized, exists := aliases[symbol]; exists {
		return normalized
	}

	return symbol
}
