package network

import (
	"context"
	"fmt"

	"github.com/dxbchain/dxbforge/internal/event"
	"github.com/dxbchain/dxbforge/internal/walletconn"
)

// Resolved is the app-facing answer to "what network are we on right now".
// When the wallet sits on an unsupported or not-ready chain, Profile still
// carries the closest match (or nil) and Advisory explains what to do.
type Resolved struct {
	Profile     *Profile
	ChainID     int64
	IsConnected bool
	IsSupported bool
	IsReady     bool
	Advisory    string
}

// Derive computes the resolution for a connection state against a registry.
// Pure function; the resolver's Current() is just this applied to live state.
func Derive(reg *Registry, st walletconn.State) Resolved {
	res := Resolved{ChainID: st.ChainID, IsConnected: st.IsConnected}
	if !st.IsConnected {
		res.Profile = reg.Default()
		res.Advisory = "Connect a wallet to deploy tokens."
		return res
	}

	p, err := reg.ByChainID(st.ChainID)
	if err != nil {
		res.Advisory = fmt.Sprintf("Chain %d is not supported. Switch to %s.", st.ChainID, reg.Default().DisplayName)
		return res
	}

	res.Profile = p
	res.IsSupported = true
	if !p.Ready() {
		res.Advisory = fmt.Sprintf("The token factory is not deployed on %s yet.", p.DisplayName)
		return res
	}

	res.IsReady = true
	return res
}

// Resolver keeps the current network resolution in sync with the wallet
// connection and announces transitions on the bus.
type Resolver struct {
	reg  *Registry
	conn *walletconn.Connection
	bus  *event.Bus

	unsub func()
}

// NewResolver wires a resolver to the connection's change feed. Every state
// transition publishes a NetworkChanged carrying the fresh *Resolved.
func NewResolver(reg *Registry, conn *walletconn.Connection, bus *event.Bus) *Resolver {
	r := &Resolver{reg: reg, conn: conn, bus: bus}
	r.unsub = conn.OnChange(func(st walletconn.State) {
		res := Derive(reg, st)
		bus.Publish(event.NetworkChanged, &res)
	})
	return r
}

// Current derives the resolution from the live connection state.
func (r *Resolver) Current() Resolved {
	return Derive(r.reg, r.conn.State())
}

// SwitchToNetwork asks the wallet connection to move to the named network.
// Failures are recoverable: the connection keeps its previous chain and the
// error describes why the switch did not happen.
func (r *Resolver) SwitchToNetwork(ctx context.Context, t Type) error {
	p, err := r.reg.ByName(t)
	if err != nil {
		return err
	}
	return r.conn.SwitchChain(ctx, p.ChainID)
}

// SwitchToChain asks the wallet connection to move to a chain by ID. The
// target must be a supported network.
func (r *Resolver) SwitchToChain(ctx context.Context, chainID int64) error {
	if _, err := r.reg.ByChainID(chainID); err != nil {
		return err
	}
	return r.conn.SwitchChain(ctx, chainID)
}

// Refresh asks network-dependent consumers to re-run their fetches without a
// state transition.
func (r *Resolver) Refresh() {
	r.bus.Publish(event.NetworkRefresh, nil)
}

// Close detaches the resolver from the connection feed.
func (r *Resolver) Close() {
	if r.unsub != nil {
		r.unsub()
		r.unsub = nil
	}
}
