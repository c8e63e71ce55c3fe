package wallet

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// DefaultAddress is the placeholder account handed out by the mock connector
const DefaultAddress = "0x1234000000000000000000000000000000005678"

// ErrWalletConnectionFailed is returned when a connector cannot connect
var ErrWalletConnectionFailed = errors.New("wallet connection failed")

// Connector connects the session to a wallet
type Connector interface {
	Connect(ctx context.Context) (string, error)
	Disconnect()
}

// MockConnector hands out a fixed address without touching any chain
type MockConnector struct {
	address common.Address
	reject  bool
}

// NewMockConnector creates a mock connector for the given hex address.
// When reject is set every Connect call fails.
func NewMockConnector(address string, reject bool) (*MockConnector, error) {
	if address == "" {
		address = DefaultAddress
	}
	if !common.IsHexAddress(address) {
		return nil, fmt.Errorf("invalid wallet address '%s'", address)
	}

	return &MockConnector{
		address: common.HexToAddress(address),
		reject:  reject,
	}, nil
}

// Connect returns the configured address
func (m *MockConnector) Connect(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrWalletConnectionFailed, err)
	}
	if m.reject {
		return "", fmt.Errorf("%w: request rejected by user", ErrWalletConnectionFailed)
	}

	return m.address.Hex(), nil
}

// Disconnect is a no-op: the mock holds no session
func (m *MockConnector) Disconnect() {}

// ShortAddress renders an address as 0x1234...5678
func ShortAddress(address string) string {
	if !common.IsHexAddress(address) {
		return address
	}

	hex := common.HexToAddress(address).Hex()
	return hex[:6] + "..." + hex[len(hex)-4:]
}
