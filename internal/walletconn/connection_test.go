package walletconn

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dxbchain/dxbforge/internal/chain"
	"github.com/dxbchain/dxbforge/internal/wallet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

func fastRetry() chain.RetryConfig {
	return chain.RetryConfig{
		MaxAttempts:    1,
		RetryDelay:     time.Millisecond,
		RequestTimeout: 2 * time.Second,
		PollInterval:   time.Millisecond,
	}
}

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
			"result": fmt.Sprintf("0x%x", chainID),
		})
	}))
}

func testSigner(t *testing.T) *wallet.Signer {
	t.Helper()
	signer, err := wallet.NewHexSigner(testKey)
	require.NoError(t, err)
	return signer
}

// ---------------------------------------------------------------------------
// ConnectorKind
// ---------------------------------------------------------------------------

func TestConnectorKindRoundTrip(t *testing.T) {
	for _, kind := range AvailableConnectors() {
		assert.Equal(t, kind, ParseConnectorKind(kind.String()))
		assert.NotEmpty(t, kind.DisplayName())
	}
}

func TestParseConnectorKindUnknownFallsBack(t *testing.T) {
	assert.Equal(t, KindInjected, ParseConnectorKind("walletfoo"))
	assert.Equal(t, KindInjected, ParseConnectorKind(""))
}

// ---------------------------------------------------------------------------
// Connect / Disconnect
// ---------------------------------------------------------------------------

func TestConnectSuccess(t *testing.T) {
	srv := chainIDServer(t, 1999)
	defer srv.Close()

	conn := NewConnection(func(int64) (string, error) { return srv.URL, nil }, fastRetry())
	signer := testSigner(t)

	var states []State
	conn.OnChange(func(st State) { states = append(states, st) })

	require.NoError(t, conn.Connect(context.Background(), KindMetaMask, signer, 1999))

	st := conn.State()
	assert.True(t, st.IsConnected)
	assert.Equal(t, int64(1999), st.ChainID)
	assert.Equal(t, signer.Address(), st.Address)
	assert.Equal(t, KindMetaMask, conn.Kind())
	assert.NotNil(t, conn.Client())
	assert.NotNil(t, conn.Signer())

	require.Len(t, states, 1)
	assert.True(t, states[0].IsConnected)
}

func TestConnectChainMismatch(t *testing.T) {
	srv := chainIDServer(t, 7131) // endpoint is on the wrong chain
	defer srv.Close()

	conn := NewConnection(func(int64) (string, error) { return srv.URL, nil }, fastRetry())
	err := conn.Connect(context.Background(), KindInjected, testSigner(t), 1999)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reports chain 7131")
	assert.False(t, conn.State().IsConnected)
}

func TestConnectLookupFailure(t *testing.T) {
	conn := NewConnection(func(id int64) (string, error) {
		return "", fmt.Errorf("unsupported chain %d", id)
	}, fastRetry())

	err := conn.Connect(context.Background(), KindInjected, testSigner(t), 42)
	require.Error(t, err)
	assert.False(t, conn.State().IsConnected)
}

func TestConnectRequiresSigner(t *testing.T) {
	conn := NewConnection(func(int64) (string, error) { return "", nil }, fastRetry())
	err := conn.Connect(context.Background(), KindInjected, nil, 1999)
	require.Error(t, err)
}

func TestDisconnectNotifiesOnce(t *testing.T) {
	srv := chainIDServer(t, 1999)
	defer srv.Close()

	conn := NewConnection(func(int64) (string, error) { return srv.URL, nil }, fastRetry())
	require.NoError(t, conn.Connect(context.Background(), KindInjected, testSigner(t), 1999))

	notifications := 0
	conn.OnChange(func(State) { notifications++ })

	conn.Disconnect()
	assert.Equal(t, 1, notifications)
	assert.False(t, conn.State().IsConnected)
	assert.Nil(t, conn.Client())

	conn.Disconnect() // already disconnected; no second notification
	assert.Equal(t, 1, notifications)
}

// ---------------------------------------------------------------------------
// SwitchChain
// ---------------------------------------------------------------------------

func TestSwitchChainSuccess(t *testing.T) {
	testnetSrv := chainIDServer(t, 1999)
	defer testnetSrv.Close()
	mainnetSrv := chainIDServer(t, 7131)
	defer mainnetSrv.Close()

	lookup := func(id int64) (string, error) {
		switch id {
		case 1999:
			return testnetSrv.URL, nil
		case 7131:
			return mainnetSrv.URL, nil
		}
		return "", fmt.Errorf("unsupported chain %d", id)
	}

	conn := NewConnection(lookup, fastRetry())
	require.NoError(t, conn.Connect(context.Background(), KindInjected, testSigner(t), 1999))

	var chainIDs []int64
	conn.OnChange(func(st State) { chainIDs = append(chainIDs, st.ChainID) })

	require.NoError(t, conn.SwitchChain(context.Background(), 7131))
	assert.Equal(t, int64(7131), conn.State().ChainID)
	assert.Equal(t, []int64{7131}, chainIDs, "confirmation arrives via the change feed")
}

func TestSwitchChainFailureKeepsState(t *testing.T) {
	srv := chainIDServer(t, 1999)
	defer srv.Close()

	lookup := func(id int64) (string, error) {
		if id == 1999 {
			return srv.URL, nil
		}
		return "", fmt.Errorf("unsupported chain %d", id)
	}

	conn := NewConnection(lookup, fastRetry())
	require.NoError(t, conn.Connect(context.Background(), KindInjected, testSigner(t), 1999))

	notified := false
	conn.OnChange(func(State) { notified = true })

	err := conn.SwitchChain(context.Background(), 42)
	require.Error(t, err)
	assert.Equal(t, int64(1999), conn.State().ChainID, "failed switch leaves the session untouched")
	assert.True(t, conn.State().IsConnected)
	assert.False(t, notified, "no state change, no notification")
}

func TestSwitchChainSameChainNoop(t *testing.T) {
	srv := chainIDServer(t, 1999)
	defer srv.Close()

	conn := NewConnection(func(int64) (string, error) { return srv.URL, nil }, fastRetry())
	require.NoError(t, conn.Connect(context.Background(), KindInjected, testSigner(t), 1999))

	notified := false
	conn.OnChange(func(State) { notified = true })

	require.NoError(t, conn.SwitchChain(context.Background(), 1999))
	assert.False(t, notified)
}

func TestSwitchChainWhileDisconnected(t *testing.T) {
	conn := NewConnection(func(int64) (string, error) { return "", nil }, fastRetry())
	err := conn.SwitchChain(context.Background(), 1999)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not connected")
}

// ---------------------------------------------------------------------------
// Close / unsubscribe
// ---------------------------------------------------------------------------

func TestOnChangeUnsubscribe(t *testing.T) {
	srv := chainIDServer(t, 1999)
	defer srv.Close()

	conn := NewConnection(func(int64) (string, error) { return srv.URL, nil }, fastRetry())

	fired := 0
	unsub := conn.OnChange(func(State) { fired++ })
	unsub()

	require.NoError(t, conn.Connect(context.Background(), KindInjected, testSigner(t), 1999))
	assert.Equal(t, 0, fired)
}

func TestCloseStopsEverything(t *testing.T) {
	srv := chainIDServer(t, 1999)
	defer srv.Close()

	conn := NewConnection(func(int64) (string, error) { return srv.URL, nil }, fastRetry())
	require.NoError(t, conn.Connect(context.Background(), KindInjected, testSigner(t), 1999))

	conn.Close()
	assert.False(t, conn.State().IsConnected)
	assert.Nil(t, conn.Client())

	err := conn.Connect(context.Background(), KindInjected, testSigner(t), 1999)
	require.Error(t, err, "closed connection rejects reconnects")
}
