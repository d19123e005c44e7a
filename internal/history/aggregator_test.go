package history

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dxbchain/dxbforge/internal/chain"
	"github.com/dxbchain/dxbforge/internal/event"
	"github.com/dxbchain/dxbforge/internal/network"
	"github.com/dxbchain/dxbforge/internal/wallet"
	"github.com/dxbchain/dxbforge/internal/walletconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

// ERC-20 selectors (EIP-20).
const (
	selName        = "0x06fdde03"
	selSymbol      = "0x95d89b41"
	selTotalSupply = "0x18160ddd"
)

var (
	addrA = "0x" + strings.Repeat("aa", 20)
	addrB = "0x" + strings.Repeat("bb", 20)
	addrC = "0x" + strings.Repeat("cc", 20)
)

type tokenMeta struct {
	name   string
	symbol string
	supply string // hex word body, wei
}

func word(hexBody string) string {
	return strings.Repeat("0", 64-len(hexBody)) + hexBody
}

func stringResult(s string) string {
	return "0x" + word("20") + word(fmt.Sprintf("%x", len(s))) +
		hex.EncodeToString([]byte(s)) + strings.Repeat("0", 64-2*len(s)%64)
}

// historyNode serves the factory token list plus per-token ERC-20 metadata.
// Tokens absent from meta fail all their reads.
type historyNode struct {
	mu     sync.Mutex
	tokens []string
	meta   map[string]tokenMeta
	lists  int // getAllUserTokens call count
	srv    *httptest.Server
}

func newHistoryNode(t *testing.T) *historyNode {
	t.Helper()
	n := &historyNode{
		tokens: []string{addrA, addrB, addrC},
		meta: map[string]tokenMeta{
			addrA: {name: "Alpha", symbol: "AAA", supply: "3635c9adc5dea00000"}, // 1000
			addrC: {name: "Gamma", symbol: "GGG", supply: "6c6b935b8bbd400000"}, // 2000
		},
	}
	n.srv = httptest.NewServer(http.HandlerFunc(n.handle))
	t.Cleanup(n.srv.Close)
	return n
}

func (n *historyNode) listCalls() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.lists
}

func (n *historyNode) setTokens(tokens []string) {
	n.mu.Lock()
	n.tokens = tokens
	n.mu.Unlock()
}

type rpcReq struct {
	Method string            `json:"method"`
	ID     int               `json:"id"`
	Params []json.RawMessage `json:"params"`
}

func (n *historyNode) handle(w http.ResponseWriter, r *http.Request) {
	var raw json.RawMessage
	json.NewDecoder(r.Body).Decode(&raw) //nolint:errcheck
	w.Header().Set("Content-Type", "application/json")

	if len(raw) > 0 && raw[0] == '[' {
		var reqs []rpcReq
		json.Unmarshal(raw, &reqs) //nolint:errcheck
		out := make([]map[string]interface{}, len(reqs))
		for i, req := range reqs {
			out[i] = n.answerCall(req)
		}
		json.NewEncoder(w).Encode(out) //nolint:errcheck
		return
	}

	var req rpcReq
	json.Unmarshal(raw, &req) //nolint:errcheck

	switch req.Method {
	case "eth_chainId":
		json.NewEncoder(w).Encode(map[string]interface{}{ //nolint:errcheck
			"jsonrpc": "2.0", "id": req.ID, "result": "0x7cf",
		})
	case "eth_call":
		// The only single eth_call in the history flow is the token list.
		n.mu.Lock()
		n.lists++
		tokens := n.tokens
		n.mu.Unlock()

		result := "0x" + word("20") + word(fmt.Sprintf("%x", len(tokens)))
		for _, addr := range tokens {
			result += word(strings.TrimPrefix(addr, "0x"))
		}
		json.NewEncoder(w).Encode(map[string]interface{}{ //nolint:errcheck
			"jsonrpc": "2.0", "id": req.ID, "result": result,
		})
	default:
		json.NewEncoder(w).Encode(map[string]interface{}{ //nolint:errcheck
			"jsonrpc": "2.0", "id": req.ID,
			"error": map[string]interface{}{"code": -32601, "message": "method not found"},
		})
	}
}

func (n *historyNode) answerCall(req rpcReq) map[string]interface{} {
	var call struct {
		To   string `json:"to"`
		Data string `json:"data"`
	}
	if len(req.Params) > 0 {
		json.Unmarshal(req.Params[0], &call) //nolint:errcheck
	}

	n.mu.Lock()
	meta, known := n.meta[strings.ToLower(call.To)]
	n.mu.Unlock()

	if !known {
		return map[string]interface{}{
			"jsonrpc": "2.0", "id": req.ID,
			"error": map[string]interface{}{"code": -32000, "message": "execution reverted"},
		}
	}

	var result string
	sel := call.Data
	if len(sel) > 10 {
		sel = sel[:10]
	}
	switch sel {
	case selName:
		result = stringResult(meta.name)
	case selSymbol:
		result = stringResult(meta.symbol)
	case selTotalSupply:
		result = "0x" + word(meta.supply)
	default:
		return map[string]interface{}{
			"jsonrpc": "2.0", "id": req.ID,
			"error": map[string]interface{}{"code": -32601, "message": "unknown selector"},
		}
	}
	return map[string]interface{}{"jsonrpc": "2.0", "id": req.ID, "result": result}
}

func connectedAggregator(t *testing.T, node *historyNode) (*Aggregator, *event.Bus, *walletconn.Connection) {
	t.Helper()
	reg := network.NewRegistry(nil)
	retry := chain.RetryConfig{
		MaxAttempts:    1,
		RetryDelay:     time.Millisecond,
		RequestTimeout: 2 * time.Second,
		PollInterval:   time.Millisecond,
	}
	conn := walletconn.NewConnection(func(int64) (string, error) { return node.srv.URL, nil }, retry)

	signer, err := wallet.NewHexSigner(testKey)
	require.NoError(t, err)
	require.NoError(t, conn.Connect(context.Background(), walletconn.KindInjected, signer, 1999))

	bus := event.NewBus()
	agg := NewAggregator(reg, conn, bus)
	t.Cleanup(agg.Close)
	t.Cleanup(conn.Close)
	return agg, bus, conn
}

// ---------------------------------------------------------------------------
// Refresh
// ---------------------------------------------------------------------------

func TestRefreshNewestFirstWithPlaceholders(t *testing.T) {
	node := newHistoryNode(t)
	agg, _, _ := connectedAggregator(t, node)

	require.NoError(t, agg.Refresh())
	tokens := agg.Tokens()
	require.Len(t, tokens, 3)

	// The factory appends on deploy, so [A, B, C] displays as [C, B, A].
	assert.Equal(t, addrC, tokens[0].Address)
	assert.Equal(t, addrB, tokens[1].Address)
	assert.Equal(t, addrA, tokens[2].Address)

	assert.Equal(t, "Gamma", tokens[0].Name)
	assert.Equal(t, "GGG", tokens[0].Symbol)
	assert.Equal(t, "2000", tokens[0].TotalSupply)

	// B's metadata reads fail; it still appears with placeholders.
	assert.Equal(t, UnknownName, tokens[1].Name)
	assert.Equal(t, UnknownSymbol, tokens[1].Symbol)
	assert.Equal(t, "0", tokens[1].TotalSupply)

	assert.Equal(t, "Alpha", tokens[2].Name)
	assert.Equal(t, "1000", tokens[2].TotalSupply)
}

func TestRefreshEmptyList(t *testing.T) {
	node := newHistoryNode(t)
	node.setTokens(nil)
	agg, _, _ := connectedAggregator(t, node)

	require.NoError(t, agg.Refresh())
	assert.Empty(t, agg.Tokens())
}

func TestRefreshDisconnectedClearsWithoutRPC(t *testing.T) {
	node := newHistoryNode(t)
	reg := network.NewRegistry(nil)
	conn := walletconn.NewConnection(func(int64) (string, error) { return node.srv.URL, nil }, chain.DefaultRetryConfig())
	bus := event.NewBus()

	agg := NewAggregator(reg, conn, bus)
	defer agg.Close()

	require.NoError(t, agg.Refresh())
	assert.Empty(t, agg.Tokens())
	assert.Equal(t, 0, node.listCalls(), "no RPC traffic while disconnected")
}

// ---------------------------------------------------------------------------
// Event-driven refresh
// ---------------------------------------------------------------------------

func TestTokenDeployedTriggersRefresh(t *testing.T) {
	node := newHistoryNode(t)
	agg, bus, _ := connectedAggregator(t, node)

	before := node.listCalls()
	bus.Publish(event.TokenDeployed, nil)
	assert.Equal(t, before+1, node.listCalls())
	assert.Len(t, agg.Tokens(), 3)
}

func TestNetworkRefreshTriggersRefetch(t *testing.T) {
	node := newHistoryNode(t)
	_, bus, _ := connectedAggregator(t, node)

	before := node.listCalls()
	bus.Publish(event.NetworkRefresh, nil)
	assert.Equal(t, before+1, node.listCalls())
}

func TestCloseStopsRefreshes(t *testing.T) {
	node := newHistoryNode(t)
	agg, bus, _ := connectedAggregator(t, node)

	agg.Close()
	before := node.listCalls()
	bus.Publish(event.TokenDeployed, nil)
	assert.Equal(t, before, node.listCalls(), "closed aggregator ignores events")
}

// ---------------------------------------------------------------------------
// Filter
// ---------------------------------------------------------------------------

func TestFilter(t *testing.T) {
	node := newHistoryNode(t)
	agg, _, _ := connectedAggregator(t, node)
	require.NoError(t, agg.Refresh())

	assert.Len(t, agg.Filter(""), 3)
	assert.Len(t, agg.Filter("alpha"), 1, "name match is case-insensitive")
	assert.Len(t, agg.Filter("GGG"), 1)
	assert.Len(t, agg.Filter("0xbb"), 1, "address substring matches")
	assert.Len(t, agg.Filter("unknown"), 1, "placeholder tokens are findable")
	assert.Empty(t, agg.Filter("zzz"))
}

func TestTokensReturnsCopy(t *testing.T) {
	node := newHistoryNode(t)
	agg, _, _ := connectedAggregator(t, node)
	require.NoError(t, agg.Refresh())

	tokens := agg.Tokens()
	tokens[0].Name = "mutated"
	assert.NotEqual(t, "mutated", agg.Tokens()[0].Name)
}
