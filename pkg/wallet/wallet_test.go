package wallet

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockConnector_ConnectDefault(t *testing.T) {
	c, err := NewMockConnector("", false)
	require.NoError(t, err)

	addr, err := c.Connect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "0x1234...5678", ShortAddress(addr))

	c.Disconnect()
	c.Disconnect()

	again, err := c.Connect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, addr, again)
}

func TestMockConnector_Reject(t *testing.T) {
	c, err := NewMockConnector(DefaultAddress, true)
	require.NoError(t, err)

	_, err = c.Connect(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrWalletConnectionFailed))
}

func TestMockConnector_CancelledContext(t *testing.T) {
	c, err := NewMockConnector("", false)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = c.Connect(ctx)
	assert.True(t, errors.Is(err, ErrWalletConnectionFailed))
}

func TestNewMockConnector_InvalidAddress(t *testing.T) {
	_, err := NewMockConnector("not-an-address", false)
	require.Error(t, err)
}

func TestShortAddress(t *testing.T) {
	assert.Equal(t, "0x1111...2222", ShortAddress("0x1111000000000000000000000000000000002222"))
	assert.Equal(t, "alice.near", ShortAddress("alice.near"))
}
