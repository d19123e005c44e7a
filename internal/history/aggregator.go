// Package history maintains the connected wallet's deployment history: the
// factory's token list plus per-token metadata, refreshed on deploys, network
// changes, and explicit refresh requests.
package history

import (
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/dxbchain/dxbforge/internal/chain"
	"github.com/dxbchain/dxbforge/internal/contract"
	"github.com/dxbchain/dxbforge/internal/event"
	"github.com/dxbchain/dxbforge/internal/network"
	"github.com/dxbchain/dxbforge/internal/walletconn"
)

// Placeholders shown when a token's metadata reads fail. The address is
// always real; only the details degrade.
const (
	UnknownName   = "Unknown Token"
	UnknownSymbol = "UNK"
)

// Token is one deployed token in the history view.
type Token struct {
	Address     string
	Name        string
	Symbol      string
	TotalSupply string // whole tokens, truncated
	Deployer    string
	FetchedAt   time.Time
}

// Aggregator keeps the token history for the connected wallet current.
type Aggregator struct {
	reg  *network.Registry
	conn *walletconn.Connection

	mu     sync.Mutex
	tokens []Token
	closed bool

	unsubs []func()
}

// NewAggregator wires an aggregator to the bus and connection feed. Every
// confirmed deploy, network change, or refresh request triggers a re-fetch.
func NewAggregator(reg *network.Registry, conn *walletconn.Connection, bus *event.Bus) *Aggregator {
	a := &Aggregator{reg: reg, conn: conn}
	refetch := func(any) { a.Refresh() }
	a.unsubs = append(a.unsubs,
		bus.Subscribe(event.TokenDeployed, refetch),
		bus.Subscribe(event.NetworkChanged, refetch),
		bus.Subscribe(event.NetworkRefresh, refetch),
		conn.OnChange(func(walletconn.State) { a.Refresh() }),
	)
	return a
}

// Refresh re-reads the wallet's token list and metadata from the chain.
// When the wallet is disconnected, on an unsupported chain, or the factory is
// not deployed, the history is cleared without any RPC traffic. Per-token
// metadata failures degrade to placeholders; only a failed token-list read
// surfaces as an error.
func (a *Aggregator) Refresh() error {
	st := a.conn.State()
	if !st.IsConnected {
		a.setTokens(nil)
		return nil
	}
	p, err := a.reg.ByChainID(st.ChainID)
	if err != nil || !p.Ready() {
		a.setTokens(nil)
		return nil
	}

	client := a.conn.Client()
	factory := contract.NewCaller(client, contract.FactoryABI)

	addrs, err := factory.Call(p.ContractAddress, "getAllUserTokens", st.Address)
	if err != nil {
		return err
	}

	tokens := a.fetchDetails(client, addrs, st.Address)

	// Factory appends on deploy; display newest first.
	for i, j := 0, len(tokens)-1; i < j; i, j = i+1, j-1 {
		tokens[i], tokens[j] = tokens[j], tokens[i]
	}

	a.setTokens(tokens)
	return nil
}

// fetchDetails reads name, symbol, and totalSupply for every address in one
// batched round trip. A token whose reads fail still appears, with
// placeholder details.
func (a *Aggregator) fetchDetails(client *chain.EVMClient, addrs []string, deployer string) []Token {
	if len(addrs) == 0 {
		return nil
	}

	erc20 := contract.NewCaller(client, contract.ERC20ABI)
	reqs := make([]contract.BatchRequest, 0, len(addrs)*3)
	for _, addr := range addrs {
		reqs = append(reqs,
			contract.BatchRequest{Contract: addr, Func: "name"},
			contract.BatchRequest{Contract: addr, Func: "symbol"},
			contract.BatchRequest{Contract: addr, Func: "totalSupply"},
		)
	}

	results, err := erc20.BatchCall(reqs)
	now := time.Now()

	tokens := make([]Token, len(addrs))
	for i, addr := range addrs {
		t := Token{
			Address:     addr,
			Name:        UnknownName,
			Symbol:      UnknownSymbol,
			TotalSupply: "0",
			Deployer:    deployer,
			FetchedAt:   now,
		}
		if err == nil {
			base := i * 3
			if v, ok := firstValue(results[base]); ok {
				t.Name = v
			}
			if v, ok := firstValue(results[base+1]); ok {
				t.Symbol = v
			}
			if v, ok := firstValue(results[base+2]); ok {
				if supply, good := new(big.Int).SetString(v, 10); good {
					t.TotalSupply = chain.TruncateUnits(supply, 18)
				}
			}
		}
		tokens[i] = t
	}
	return tokens
}

// Tokens returns a copy of the current history, newest first.
func (a *Aggregator) Tokens() []Token {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]Token, len(a.tokens))
	copy(out, a.tokens)
	return out
}

// Filter returns tokens whose name, symbol, or address contains q,
// case-insensitively. An empty query returns everything.
func (a *Aggregator) Filter(q string) []Token {
	q = strings.ToLower(strings.TrimSpace(q))
	all := a.Tokens()
	if q == "" {
		return all
	}
	var out []Token
	for _, t := range all {
		if strings.Contains(strings.ToLower(t.Name), q) ||
			strings.Contains(strings.ToLower(t.Symbol), q) ||
			strings.Contains(strings.ToLower(t.Address), q) {
			out = append(out, t)
		}
	}
	return out
}

// Close detaches the aggregator; late refresh results are discarded.
func (a *Aggregator) Close() {
	a.mu.Lock()
	a.closed = true
	a.mu.Unlock()
	for _, unsub := range a.unsubs {
		unsub()
	}
	a.unsubs = nil
}

func (a *Aggregator) setTokens(tokens []Token) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}
	a.tokens = tokens
}

func firstValue(r contract.BatchCallResult) (string, bool) {
	if r.Err != nil || len(r.Values) == 0 {
		return "", false
	}
	return r.Values[0], true
}
