package walletconn

import (
	"context"
	"fmt"
	"sync"

	"github.com/dxbchain/dxbforge/internal/chain"
	"github.com/dxbchain/dxbforge/internal/wallet"
)

// RPCLookup resolves a chain ID to its RPC endpoint.
type RPCLookup func(chainID int64) (string, error)

// State is an immutable snapshot of the connection.
type State struct {
	ChainID     int64
	Address     string
	IsConnected bool
}

// Connection tracks the active wallet session: connector kind, signer,
// current chain, and a live RPC client for that chain. Chain switches only
// take effect after the target endpoint answers; callers observe the change
// through OnChange, not through the SwitchChain return.
type Connection struct {
	mu     sync.Mutex
	lookup RPCLookup
	retry  chain.RetryConfig

	kind   ConnectorKind
	signer *wallet.Signer
	client *chain.EVMClient
	state  State

	subs    map[int]func(State)
	nextSub int
	closed  bool
}

// NewConnection creates a disconnected Connection.
func NewConnection(lookup RPCLookup, retry chain.RetryConfig) *Connection {
	return &Connection{
		lookup: lookup,
		retry:  retry,
		subs:   make(map[int]func(State)),
	}
}

// Connect establishes a session on chainID with the given connector and
// signer. The endpoint is probed and its reported chain ID must match.
func (c *Connection) Connect(ctx context.Context, kind ConnectorKind, signer *wallet.Signer, chainID int64) error {
	if signer == nil {
		return fmt.Errorf("connect: signer is required")
	}

	client, err := c.dial(ctx, chainID)
	if err != nil {
		return err
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return fmt.Errorf("connection is closed")
	}
	c.kind = kind
	c.signer = signer
	c.client = client
	c.state = State{ChainID: chainID, Address: signer.Address(), IsConnected: true}
	st := c.state
	c.mu.Unlock()

	c.notify(st)
	return nil
}

// Disconnect tears down the session. Safe to call when not connected.
func (c *Connection) Disconnect() {
	c.mu.Lock()
	wasConnected := c.state.IsConnected
	c.kind = KindInjected
	c.signer = nil
	c.client = nil
	c.state = State{}
	st := c.state
	c.mu.Unlock()

	if wasConnected {
		c.notify(st)
	}
}

// SwitchChain moves the session to another chain. The target endpoint is
// probed first; on any failure the current session is left untouched and the
// error is returned for the caller to surface. Success is announced via the
// change feed.
func (c *Connection) SwitchChain(ctx context.Context, chainID int64) error {
	c.mu.Lock()
	if !c.state.IsConnected {
		c.mu.Unlock()
		return fmt.Errorf("not connected")
	}
	if c.state.ChainID == chainID {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	client, err := c.dial(ctx, chainID)
	if err != nil {
		return fmt.Errorf("switching to chain %d: %w", chainID, err)
	}

	c.mu.Lock()
	if c.closed || !c.state.IsConnected {
		c.mu.Unlock()
		return fmt.Errorf("connection lost during switch")
	}
	c.client = client
	c.state.ChainID = chainID
	st := c.state
	c.mu.Unlock()

	c.notify(st)
	return nil
}

// State returns the current connection snapshot.
func (c *Connection) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Client returns the RPC client for the connected chain, or nil when
// disconnected.
func (c *Connection) Client() *chain.EVMClient {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.client
}

// Signer returns the active signer, or nil when disconnected.
func (c *Connection) Signer() *wallet.Signer {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.signer
}

// Kind returns the connector kind of the active session.
func (c *Connection) Kind() ConnectorKind {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.kind
}

// OnChange registers fn to run on every state transition and returns its
// unsubscribe func.
func (c *Connection) OnChange(fn func(State)) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subs, id)
	}
}

// Close disconnects and stops all notifications permanently.
func (c *Connection) Close() {
	c.mu.Lock()
	c.closed = true
	c.signer = nil
	c.client = nil
	c.state = State{}
	c.subs = make(map[int]func(State))
	c.mu.Unlock()
}

// dial resolves the endpoint for chainID, opens a client, and verifies the
// node reports the expected chain ID.
func (c *Connection) dial(ctx context.Context, chainID int64) (*chain.EVMClient, error) {
	url, err := c.lookup(chainID)
	if err != nil {
		return nil, err
	}

	client := chain.NewEVMClient(url, c.retry)
	_, reported, err := client.Ping(ctx)
	if err != nil {
		return nil, fmt.Errorf("probing %s: %w", url, err)
	}
	if reported != chainID {
		return nil, fmt.Errorf("endpoint %s reports chain %d, expected %d", url, reported, chainID)
	}
	return client, nil
}

func (c *Connection) notify(st State) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	fns := make([]func(State), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(st)
	}
}
