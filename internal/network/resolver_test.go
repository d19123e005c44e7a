package network

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dxbchain/dxbforge/internal/chain"
	"github.com/dxbchain/dxbforge/internal/event"
	"github.com/dxbchain/dxbforge/internal/wallet"
	"github.com/dxbchain/dxbforge/internal/walletconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

// chainIDServer answers eth_chainId with the given ID.
func chainIDServer(t *testing.T, chainID int64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID int `json:"id"`
		}
		json.NewDecoder(r.Body).Decode(&req) //nolint:errcheck
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{ //nolint:errcheck
			"jsonrpc": "2.0", "id": req.ID,
			"result": "0x" + bigHex(chainID),
		})
	}))
}

func bigHex(n int64) string {
	const digits = "0123456789abcdef"
	if n == 0 {
		return "0"
	}
	var out []byte
	for n > 0 {
		out = append([]byte{digits[n%16]}, out...)
		n /= 16
	}
	return string(out)
}

func fastRetry() chain.RetryConfig {
	return chain.RetryConfig{
		MaxAttempts:    1,
		RetryDelay:     time.Millisecond,
		RequestTimeout: 2 * time.Second,
		PollInterval:   time.Millisecond,
	}
}

// ---------------------------------------------------------------------------
// Derive
// ---------------------------------------------------------------------------

func TestDeriveDisconnected(t *testing.T) {
	reg := NewRegistry(nil)
	res := Derive(reg, walletconn.State{})

	assert.False(t, res.IsConnected)
	assert.False(t, res.IsSupported)
	assert.False(t, res.IsReady)
	require.NotNil(t, res.Profile, "display default still available when disconnected")
	assert.Equal(t, Testnet, res.Profile.Name)
	assert.NotEmpty(t, res.Advisory)
}

func TestDeriveUnsupportedChain(t *testing.T) {
	reg := NewRegistry(nil)
	res := Derive(reg, walletconn.State{ChainID: 1, IsConnected: true})

	assert.True(t, res.IsConnected)
	assert.False(t, res.IsSupported)
	assert.False(t, res.IsReady)
	assert.Nil(t, res.Profile)
	assert.Contains(t, res.Advisory, "not supported")
}

func TestDeriveSupportedNotReady(t *testing.T) {
	reg := NewRegistry(nil)
	res := Derive(reg, walletconn.State{ChainID: 7131, IsConnected: true})

	assert.True(t, res.IsSupported)
	assert.False(t, res.IsReady)
	require.NotNil(t, res.Profile)
	assert.Equal(t, Mainnet, res.Profile.Name)
	assert.Contains(t, res.Advisory, "not deployed")
}

func TestDeriveReady(t *testing.T) {
	reg := NewRegistry(nil)
	res := Derive(reg, walletconn.State{ChainID: 1999, IsConnected: true})

	assert.True(t, res.IsSupported)
	assert.True(t, res.IsReady)
	assert.Empty(t, res.Advisory, "advisory clears once supported and ready")
}

// ---------------------------------------------------------------------------
// Resolver wiring
// ---------------------------------------------------------------------------

func TestResolverPublishesNetworkChanged(t *testing.T) {
	srv := chainIDServer(t, 1999)
	defer srv.Close()

	reg := NewRegistry(nil)
	lookup := func(int64) (string, error) { return srv.URL, nil }
	conn := walletconn.NewConnection(lookup, fastRetry())
	bus := event.NewBus()

	resolver := NewResolver(reg, conn, bus)
	defer resolver.Close()

	var got []*Resolved
	unsub := bus.Subscribe(event.NetworkChanged, func(payload any) {
		got = append(got, payload.(*Resolved))
	})
	defer unsub()

	signer, err := wallet.NewHexSigner(testKey)
	require.NoError(t, err)
	require.NoError(t, conn.Connect(context.Background(), walletconn.KindInjected, signer, 1999))

	require.Len(t, got, 1)
	assert.True(t, got[0].IsReady)
	assert.Equal(t, int64(1999), got[0].ChainID)

	conn.Disconnect()
	require.Len(t, got, 2)
	assert.False(t, got[1].IsConnected)
}

func TestResolverCurrentTracksConnection(t *testing.T) {
	reg := NewRegistry(nil)
	conn := walletconn.NewConnection(func(int64) (string, error) { return "", nil }, fastRetry())
	bus := event.NewBus()

	resolver := NewResolver(reg, conn, bus)
	defer resolver.Close()

	res := resolver.Current()
	assert.False(t, res.IsConnected)
}

func TestResolverSwitchToUnsupportedChain(t *testing.T) {
	reg := NewRegistry(nil)
	conn := walletconn.NewConnection(func(int64) (string, error) { return "", nil }, fastRetry())
	bus := event.NewBus()

	resolver := NewResolver(reg, conn, bus)
	defer resolver.Close()

	err := resolver.SwitchToChain(context.Background(), 42)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedChain)
}

func TestResolverRefreshPublishes(t *testing.T) {
	reg := NewRegistry(nil)
	conn := walletconn.NewConnection(func(int64) (string, error) { return "", nil }, fastRetry())
	bus := event.NewBus()

	resolver := NewResolver(reg, conn, bus)
	defer resolver.Close()

	fired := 0
	unsub := bus.Subscribe(event.NetworkRefresh, func(any) { fired++ })
	defer unsub()

	resolver.Refresh()
	assert.Equal(t, 1, fired)
}
